package app

import "github.com/spf13/pflag"

// RegisterFlags registers all CLI flags on the given FlagSet
func RegisterFlags(flags *pflag.FlagSet) {
	flags.StringP("transport", "t", "", "Transport type: stdio or sse")
	flags.StringP("host", "H", "", "Host for SSE transport")
	flags.IntP("port", "p", 0, "Port for SSE transport")
	flags.StringP("auth-type", "a", "", "Authentication type: none, basic, or apikey")
	flags.StringP("auth-basic-username", "u", "", "Basic auth username")
	flags.StringP("auth-basic-password", "P", "", "Basic auth password")
	flags.StringSliceP("auth-api-keys", "k", nil, "API keys (comma-separated)")
	flags.String("log-level", "", "Log level: debug, info, warn, or error")
	flags.Int("max-results", 0, "Maximum number of version search results")

	flags.String("catalog-driver", "", "Catalog source: json or sqlite")
	flags.StringP("catalog-dir", "d", "", "Directory of JSON catalog files")
	flags.String("catalog-dsn", "", "SQLite catalog database file")
	flags.StringP("language", "l", "", "Catalog language id (e.g. eng)")
	flags.Int("version-id", 0, "Preferred version id, 0 for the catalog default")
	flags.String("base-url", "", "Base URL of reference links")
}
