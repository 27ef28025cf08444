// Package auth guards the SSE transport with basic or API key authentication.
package auth

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sha1n/mcp-scripture-server/internal/config"
)

const (
	// Realm is reported in basic auth challenges
	Realm = "scripture-mcp"

	// APIKeyHeader carries an API key
	APIKeyHeader = "X-API-Key"

	bearerPrefix = "Bearer "
)

// excludedPaths are paths that bypass authentication (e.g., health checks)
var excludedPaths = map[string]bool{
	"/health": true,
}

// isExcludedPath checks if the request path should bypass authentication
func isExcludedPath(path string) bool {
	return excludedPaths[path]
}

// NewMiddleware creates a new authentication middleware based on settings
func NewMiddleware(settings config.AuthSettings) (func(http.Handler) http.Handler, error) {
	switch settings.Type {
	case config.AuthTypeNone, "":
		return func(next http.Handler) http.Handler {
			return next
		}, nil
	case config.AuthTypeBasic:
		if settings.Basic.Username == "" || settings.Basic.Password == "" {
			return nil, fmt.Errorf("basic auth requires non-empty username and password")
		}
		return withExclusions(basicAuthMiddleware(settings.Basic)), nil
	case config.AuthTypeAPIKey:
		if len(settings.APIKeys) == 0 {
			return nil, fmt.Errorf("apikey auth requires at least one API key")
		}
		return withExclusions(apiKeyMiddleware(settings.APIKeys)), nil
	default:
		return nil, fmt.Errorf("unknown auth type: %s", settings.Type)
	}
}

// withExclusions wraps an auth middleware to skip auth for excluded paths
func withExclusions(authMiddleware func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		authedHandler := authMiddleware(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isExcludedPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			authedHandler.ServeHTTP(w, r)
		})
	}
}

func basicAuthMiddleware(settings config.BasicAuthSettings) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			userMatch := constantTimeEqual(user, settings.Username)
			passMatch := constantTimeEqual(pass, settings.Password)
			if !ok || !userMatch || !passMatch {
				w.Header().Set("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", Realm))
				reject(w, r, "basic credentials rejected")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func apiKeyMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := requestAPIKey(r)
			if key == "" {
				reject(w, r, "missing API key")
				return
			}

			valid := false
			for _, validKey := range apiKeys {
				if constantTimeEqual(key, validKey) {
					valid = true
					break
				}
			}

			if !valid {
				reject(w, r, "unknown API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestAPIKey reads the key from X-API-Key, falling back to a bearer token
func requestAPIKey(r *http.Request) string {
	if key := r.Header.Get(APIKeyHeader); key != "" {
		return key
	}
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(authz, bearerPrefix))
	}
	return ""
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func reject(w http.ResponseWriter, r *http.Request, reason string) {
	slog.Debug("Request rejected", "reason", reason, "path", r.URL.Path, "remote_addr", r.RemoteAddr)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}
