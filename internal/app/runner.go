package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/mcp-scripture-server/internal/catalog"
	"github.com/sha1n/mcp-scripture-server/internal/config"
	mcputil "github.com/sha1n/mcp-scripture-server/internal/mcp"
	"github.com/sha1n/mcp-scripture-server/internal/scripture"
	"github.com/spf13/pflag"
)

// ServerName is the MCP implementation name reported to clients
const ServerName = "scripture-mcp"

// RunParams contains dependencies for the run function
type RunParams struct {
	LoadSettings      func(*pflag.FlagSet) (*config.Settings, error)
	ValidSettings     func(*config.Settings) error
	StartSSEServer    func(*mcp.Server, *config.Settings) error
	CreateServer      func(*config.Settings) (*mcp.Server, func(), error)
	CustomIOTransport mcp.Transport // Optional: for testing with custom IO
}

// DefaultRunParams returns production dependencies
func DefaultRunParams() RunParams {
	return RunParams{
		LoadSettings:   config.LoadSettingsWithFlags,
		ValidSettings:  config.ValidateSettings,
		StartSSEServer: StartSSEServer,
		CreateServer:   CreateMCPServer,
	}
}

// RunWithDeps executes the server with the provided dependencies
func RunWithDeps(ctx context.Context, params RunParams, flags *pflag.FlagSet, version string) error {
	settings, err := loadValidSettings(params, flags)
	if err != nil {
		return err
	}

	// Configure logging - always use stderr to avoid buffering issues
	ConfigureLogging(os.Stderr, settings)

	slog.Info("Starting scripture MCP server", "version", version)
	config.Log(settings)

	mcpServer, cleanup, err := params.CreateServer(settings)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	// Start server
	if settings.Transport == "stdio" {
		// Use custom transport if provided (for testing), otherwise use stdio
		transport := params.CustomIOTransport
		if transport == nil {
			transport = &mcp.StdioTransport{}
		}
		return mcpServer.Run(ctx, transport)
	} else {
		slog.Info("Starting SSE server", "host", settings.Host, "port", settings.Port)
		return params.StartSSEServer(mcpServer, settings)
	}
}

// loadValidSettings loads the settings and rejects conflicting configurations
func loadValidSettings(params RunParams, flags *pflag.FlagSet) (*config.Settings, error) {
	settings, err := params.LoadSettings(flags)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if err := params.ValidSettings(settings); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return settings, nil
}

// ConfigureLogging installs the default text logger at the configured level
func ConfigureLogging(w io.Writer, settings *config.Settings) {
	level, err := config.ParseLogLevel(settings.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// OpenService opens the configured catalog and creates the scripture service
func OpenService(settings *config.Settings) (*scripture.Service, error) {
	provider, err := catalog.Open(&settings.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	svc, err := scripture.NewService(settings, provider)
	if err != nil {
		_ = provider.Close()
		return nil, fmt.Errorf("failed to create scripture service: %w", err)
	}
	return svc, nil
}

// CreateMCPServer creates the MCP server with registered tools
func CreateMCPServer(settings *config.Settings) (*mcp.Server, func(), error) {
	svc, err := OpenService(settings)
	if err != nil {
		return nil, nil, err
	}

	// Load the preferred language up front so catalog problems surface at startup
	if v, err := svc.DefaultVersion(context.Background(), ""); err != nil {
		slog.Error("Catalog warm-up failed", "language", settings.Preferences.Language, "error", err)
	} else {
		slog.Info("Catalog ready", "language", settings.Preferences.Language, "default_version", v.Name)
	}

	cleanup := func() {
		if err := svc.Close(); err != nil {
			slog.Error("Failed to close scripture service", "error", err)
		}
	}

	server := mcputil.CreateServer(mcputil.ServerConfig{
		Name:    ServerName,
		Version: "1.0.0",
		Service: svc,
	})

	return server, cleanup, nil
}
