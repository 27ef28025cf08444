package testkit

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/sha1n/mcp-scripture-server/internal/app"
	"github.com/sha1n/mcp-scripture-server/internal/config"
	"github.com/spf13/pflag"
)

// Service represents a test service that can be started and stopped
type Service interface {
	Start() (map[string]any, error)
	Stop() error
	GetName() string
}

// TestEnvContext provides access to properties collected during environment startup
type TestEnvContext interface {
	GetProperties() map[string]any
	GetProperty(name string) (any, bool)
}

// TestEnv manages the lifecycle of test services
type TestEnv interface {
	Start() (map[string]any, error)
	Stop() error
	GetContext() TestEnvContext
}

type testEnvContextImpl struct {
	properties map[string]any
}

func (c *testEnvContextImpl) GetProperties() map[string]any {
	return c.properties
}

func (c *testEnvContextImpl) GetProperty(name string) (any, bool) {
	val, ok := c.properties[name]
	return val, ok
}

type testEnvImpl struct {
	services []Service
	context  *testEnvContextImpl
}

// NewTestEnv creates a new test environment with the given services
func NewTestEnv(services ...Service) TestEnv {
	return &testEnvImpl{
		services: services,
		context:  &testEnvContextImpl{properties: make(map[string]any)},
	}
}

func (e *testEnvImpl) Start() (map[string]any, error) {
	for _, s := range e.services {
		props, err := s.Start()
		if err != nil {
			return nil, err
		}
		for k, v := range props {
			e.context.properties[k] = v
		}
	}
	return e.context.properties, nil
}

func (e *testEnvImpl) Stop() error {
	var lastErr error
	// Stop in reverse order
	for i := len(e.services) - 1; i >= 0; i-- {
		if err := e.services[i].Stop(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (e *testEnvImpl) GetContext() TestEnvContext {
	return e.context
}

// GetFreePort returns a free port from the kernel
func GetFreePort() (int, error) {
	return getFreePortWithAddr("localhost:0")
}

// MustGetFreePort returns a free port or fails the test
func MustGetFreePort(t testing.TB) int {
	t.Helper()
	port, err := GetFreePort()
	if err != nil {
		t.Fatalf("Failed to get free port: %v", err)
	}
	return port
}

func getFreePortWithAddr(addrStr string) (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", addrStr)
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer func() { _ = l.Close() }()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// FlagOptions configures NewTestFlags
type FlagOptions struct {
	Port      int    // Uses free port if 0
	Transport string // Defaults to "sse"
	AuthType  string // Defaults to "none"
	Host      string // Defaults to "localhost"

	APIKeys       []string // Set with AuthType "apikey"
	CatalogDriver string   // Defaults to "json"
	CatalogDir    string   // JSON catalog directory
	CatalogDSN    string   // SQLite catalog file
	Language      string   // Defaults to "eng"
}

// NewTestFlags creates a configured pflag.FlagSet for testing
func NewTestFlags(t testing.TB, opts *FlagOptions) *pflag.FlagSet {
	t.Helper()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	app.RegisterFlags(flags)

	o := FlagOptions{
		Transport:     "sse",
		AuthType:      config.AuthTypeNone,
		Host:          "localhost",
		CatalogDriver: config.CatalogDriverJSON,
		Language:      "eng",
	}

	if opts != nil {
		if opts.Port != 0 {
			o.Port = opts.Port
		}
		if opts.Transport != "" {
			o.Transport = opts.Transport
		}
		if opts.AuthType != "" {
			o.AuthType = opts.AuthType
		}
		if opts.Host != "" {
			o.Host = opts.Host
		}
		if opts.CatalogDriver != "" {
			o.CatalogDriver = opts.CatalogDriver
		}
		if opts.Language != "" {
			o.Language = opts.Language
		}
		o.APIKeys = opts.APIKeys
		o.CatalogDir = opts.CatalogDir
		o.CatalogDSN = opts.CatalogDSN
	}

	if o.Port == 0 {
		o.Port = MustGetFreePort(t)
	}

	_ = flags.Set("port", fmt.Sprintf("%d", o.Port))
	_ = flags.Set("transport", o.Transport)
	_ = flags.Set("auth-type", o.AuthType)
	_ = flags.Set("host", o.Host)
	_ = flags.Set("catalog-driver", o.CatalogDriver)
	_ = flags.Set("language", o.Language)
	if len(o.APIKeys) > 0 {
		_ = flags.Set("auth-api-keys", strings.Join(o.APIKeys, ","))
	}
	if o.CatalogDir != "" {
		_ = flags.Set("catalog-dir", o.CatalogDir)
	}
	if o.CatalogDSN != "" {
		_ = flags.Set("catalog-dsn", o.CatalogDSN)
	}

	return flags
}

// SSEServer runs the full MCP server over SSE for the lifetime of a test env.
// Start publishes "base_url" and "sse_url" properties.
type SSEServer struct {
	flags   *pflag.FlagSet
	srv     *http.Server
	cleanup func()
	done    chan error
}

// NewSSEServer creates an SSE server service configured by flags
func NewSSEServer(flags *pflag.FlagSet) *SSEServer {
	return &SSEServer{flags: flags}
}

// GetName returns the service name
func (s *SSEServer) GetName() string {
	return "sse-server"
}

// Start loads settings from the flags, starts listening and waits until
// the health endpoint answers.
func (s *SSEServer) Start() (map[string]any, error) {
	settings, err := config.LoadSettingsWithFlags(s.flags)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if err := config.ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	mcpServer, cleanup, err := app.CreateMCPServer(settings)
	if err != nil {
		return nil, err
	}
	s.cleanup = cleanup

	srv, err := app.NewSSEServer(mcpServer, settings)
	if err != nil {
		s.runCleanup()
		return nil, err
	}
	s.srv = srv

	s.done = make(chan error, 1)
	go func() {
		s.done <- srv.ListenAndServe()
	}()

	baseURL := fmt.Sprintf("http://%s:%d", settings.Host, settings.Port)
	if err := waitForHealth(baseURL+app.HealthPath, 5*time.Second); err != nil {
		_ = s.Stop()
		return nil, err
	}

	return map[string]any{
		"base_url": baseURL,
		"sse_url":  baseURL + app.SSEPath,
	}, nil
}

// Stop shuts the HTTP server down and releases the scripture service
func (s *SSEServer) Stop() error {
	defer s.runCleanup()

	if s.srv == nil {
		return nil
	}

	// SSE streams stay open, so close rather than wait for them to drain
	closeErr := s.srv.Close()
	if err := <-s.done; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.srv = nil
	return closeErr
}

func (s *SSEServer) runCleanup() {
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
}

// waitForHealth polls url until it answers 200 or the timeout expires
func waitForHealth(url string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	return fmt.Errorf("server at %s not healthy after %s", url, timeout)
}
