package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Auth type constants
const (
	AuthTypeNone   = "none"
	AuthTypeBasic  = "basic"
	AuthTypeAPIKey = "apikey"
)

// AuthSettings configuration for authentication
type AuthSettings struct {
	Type    string            `mapstructure:"type"` // AuthTypeNone, AuthTypeBasic, or AuthTypeAPIKey
	Basic   BasicAuthSettings `mapstructure:"basic"`
	APIKeys []string          `mapstructure:"api_keys"`
}

// BasicAuthSettings configuration for basic auth
type BasicAuthSettings struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Catalog driver constants
const (
	CatalogDriverJSON   = "json"
	CatalogDriverSQLite = "sqlite"
)

// CatalogSettings configuration for the catalog data source
type CatalogSettings struct {
	Driver string `mapstructure:"driver"` // CatalogDriverJSON or CatalogDriverSQLite
	Dir    string `mapstructure:"dir"`    // directory of JSON catalog files
	DSN    string `mapstructure:"dsn"`    // SQLite database file
}

// PreferenceSettings holds the preferred language and version.
// A zero Version selects the catalog's default version.
type PreferenceSettings struct {
	Language string `mapstructure:"language"`
	Version  int    `mapstructure:"version"`
}

// ReferenceSettings configuration for building reference URLs
type ReferenceSettings struct {
	BaseURL string `mapstructure:"base_url"`
}

// Settings application settings
type Settings struct {
	Transport   string             `mapstructure:"transport"`
	Host        string             `mapstructure:"host"`
	Port        int                `mapstructure:"port"`
	LogLevel    string             `mapstructure:"log_level"`
	MaxResults  int                `mapstructure:"max_results"`
	Auth        AuthSettings       `mapstructure:"auth"`
	Catalog     CatalogSettings    `mapstructure:"catalog"`
	Preferences PreferenceSettings `mapstructure:"preferences"`
	Reference   ReferenceSettings  `mapstructure:"reference"`
}

// LoadSettings loads settings from environment variables and optional .env file
func LoadSettings() (*Settings, error) {
	return LoadSettingsWithFlags(nil)
}

// LoadSettingsWithFlags loads settings with optional CLI flag overrides.
// Priority: CLI flags > environment variables > .env file > defaults.
// If flags is nil, only env vars and defaults are used.
func LoadSettingsWithFlags(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()

	// Default values
	v.SetDefault("transport", "stdio")
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", LogLevelInfo)
	v.SetDefault("max_results", 20)
	v.SetDefault("auth.type", AuthTypeNone)

	// Catalog and preference defaults
	v.SetDefault("catalog.driver", CatalogDriverJSON)
	v.SetDefault("catalog.dir", defaultCatalogDir())
	v.SetDefault("catalog.dsn", "")
	v.SetDefault("preferences.language", "eng")
	v.SetDefault("preferences.version", 111)
	v.SetDefault("reference.base_url", "https://www.bible.com/bible/")

	// Environment variables
	v.SetEnvPrefix("SCRIPTURE_MCP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind specific env vars for nested config
	_ = v.BindEnv("auth.type", "SCRIPTURE_MCP_AUTH_TYPE")
	_ = v.BindEnv("auth.basic.username", "SCRIPTURE_MCP_AUTH_BASIC_USERNAME")
	_ = v.BindEnv("auth.basic.password", "SCRIPTURE_MCP_AUTH_BASIC_PASSWORD")
	_ = v.BindEnv("auth.api_keys", "SCRIPTURE_MCP_AUTH_API_KEYS")

	_ = v.BindEnv("catalog.driver", "SCRIPTURE_MCP_CATALOG_DRIVER")
	_ = v.BindEnv("catalog.dir", "SCRIPTURE_MCP_CATALOG_DIR")
	_ = v.BindEnv("catalog.dsn", "SCRIPTURE_MCP_CATALOG_DSN")
	_ = v.BindEnv("preferences.language", "SCRIPTURE_MCP_PREFERENCES_LANGUAGE")
	_ = v.BindEnv("preferences.version", "SCRIPTURE_MCP_PREFERENCES_VERSION")
	_ = v.BindEnv("reference.base_url", "SCRIPTURE_MCP_REFERENCE_BASE_URL")

	// Bind CLI flags if provided (highest priority)
	if flags != nil {
		_ = v.BindPFlag("transport", flags.Lookup("transport"))
		_ = v.BindPFlag("host", flags.Lookup("host"))
		_ = v.BindPFlag("port", flags.Lookup("port"))
		_ = v.BindPFlag("log_level", flags.Lookup("log-level"))
		_ = v.BindPFlag("max_results", flags.Lookup("max-results"))
		_ = v.BindPFlag("auth.type", flags.Lookup("auth-type"))
		_ = v.BindPFlag("auth.basic.username", flags.Lookup("auth-basic-username"))
		_ = v.BindPFlag("auth.basic.password", flags.Lookup("auth-basic-password"))
		_ = v.BindPFlag("auth.api_keys", flags.Lookup("auth-api-keys"))

		_ = v.BindPFlag("catalog.driver", flags.Lookup("catalog-driver"))
		_ = v.BindPFlag("catalog.dir", flags.Lookup("catalog-dir"))
		_ = v.BindPFlag("catalog.dsn", flags.Lookup("catalog-dsn"))
		_ = v.BindPFlag("preferences.language", flags.Lookup("language"))
		_ = v.BindPFlag("preferences.version", flags.Lookup("version-id"))
		_ = v.BindPFlag("reference.base_url", flags.Lookup("base-url"))
	}

	// Helper to look for .env file
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if .env doesn't exist

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, err
	}

	// Handle explicit parsing of API keys if provided via env var as comma-separated string
	apiKeysEnv := os.Getenv("SCRIPTURE_MCP_AUTH_API_KEYS")
	if apiKeysEnv != "" {
		if len(settings.Auth.APIKeys) == 0 || (len(settings.Auth.APIKeys) == 1 && strings.Contains(settings.Auth.APIKeys[0], ",")) {
			settings.Auth.APIKeys = strings.Split(apiKeysEnv, ",")
		}
	}

	// Trim spaces from API keys
	for i := range settings.Auth.APIKeys {
		settings.Auth.APIKeys[i] = strings.TrimSpace(settings.Auth.APIKeys[i])
	}
	settings.Auth.APIKeys = filterEmptyStrings(settings.Auth.APIKeys)

	settings.LogLevel = strings.ToLower(strings.TrimSpace(settings.LogLevel))
	settings.Catalog.Dir = expandHomeDir(settings.Catalog.Dir)
	settings.Catalog.DSN = expandHomeDir(settings.Catalog.DSN)

	return &settings, nil
}

// defaultCatalogDir returns the default directory of JSON catalog files
func defaultCatalogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".scripture-mcp", "catalog")
	}
	return filepath.Join(home, ".scripture-mcp", "catalog")
}

// expandHomeDir expands ~ to the user's home directory
func expandHomeDir(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	return path
}

// filterEmptyStrings removes empty strings from a slice
func filterEmptyStrings(s []string) []string {
	var result []string
	for _, str := range s {
		if str != "" {
			result = append(result, str)
		}
	}
	return result
}

// ValidateSettings checks for conflicting configurations.
// Returns an error if the settings contain mutually exclusive or incomplete auth config.
func ValidateSettings(s *Settings) error {
	// Validate transport type
	switch s.Transport {
	case "stdio", "sse":
		// valid
	default:
		return errors.New("transport must be 'stdio' or 'sse', got: " + s.Transport)
	}

	if _, err := ParseLogLevel(s.LogLevel); err != nil {
		return err
	}

	if s.MaxResults <= 0 {
		return errors.New("max-results must be positive")
	}

	hasBasicCreds := s.Auth.Basic.Username != "" || s.Auth.Basic.Password != ""
	hasAPIKeys := len(s.Auth.APIKeys) > 0

	switch s.Auth.Type {
	case AuthTypeNone, "":
		if hasBasicCreds || hasAPIKeys {
			return errors.New("auth-type 'none' is incompatible with auth credentials")
		}
	case AuthTypeBasic:
		if hasAPIKeys {
			return errors.New("auth-type 'basic' is mutually exclusive with auth-api-keys")
		}
		if s.Auth.Basic.Username == "" || s.Auth.Basic.Password == "" {
			return errors.New("auth-type 'basic' requires both username and password")
		}
	case AuthTypeAPIKey:
		if hasBasicCreds {
			return errors.New("auth-type 'apikey' is mutually exclusive with basic auth credentials")
		}
		if !hasAPIKeys {
			return errors.New("auth-type 'apikey' requires at least one API key")
		}
	default:
		return errors.New("unknown auth-type: " + s.Auth.Type)
	}

	if err := validateCatalogSettings(&s.Catalog); err != nil {
		return err
	}

	return validatePreferenceSettings(&s.Preferences)
}

// validateCatalogSettings validates the catalog source configuration
func validateCatalogSettings(c *CatalogSettings) error {
	switch c.Driver {
	case CatalogDriverJSON:
		if c.Dir == "" {
			return errors.New("catalog-driver 'json' requires catalog-dir")
		}
	case CatalogDriverSQLite:
		if c.DSN == "" {
			return errors.New("catalog-driver 'sqlite' requires catalog-dsn")
		}
	default:
		return errors.New("catalog-driver must be 'json' or 'sqlite', got: " + c.Driver)
	}
	return nil
}

// validatePreferenceSettings validates the preferred language and version
func validatePreferenceSettings(p *PreferenceSettings) error {
	if strings.TrimSpace(p.Language) == "" {
		return errors.New("language cannot be empty")
	}
	if p.Version < 0 {
		return errors.New("version-id cannot be negative")
	}
	return nil
}
