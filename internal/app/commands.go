package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sha1n/mcp-scripture-server/internal/catalog"
	"github.com/sha1n/mcp-scripture-server/internal/domain"
	"github.com/sha1n/mcp-scripture-server/internal/scripture"
	"github.com/spf13/cobra"
)

// NewCommands returns the CLI subcommands. They read the persistent flags
// registered on the root command.
func NewCommands() []*cobra.Command {
	return []*cobra.Command{
		newResolveCommand(),
		newLookupCommand(),
		newVersionsCommand(),
		newLanguagesCommand(),
		newExportSQLiteCommand(),
	}
}

func newResolveCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "resolve QUERY...",
		Short: "Resolve a free-text scripture reference",
		Example: `  scripture-mcp resolve john 3 16
  scripture-mcp resolve "1 Co 13:4-7 kjv" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *scripture.Service) error {
				refs, err := svc.Search(ctx, strings.Join(args, " "), scripture.Options{})
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if asJSON {
					if refs == nil {
						refs = []domain.Reference{}
					}
					return writeJSON(w, refs)
				}
				if len(refs) == 0 {
					_, err := fmt.Fprintln(w, "No references found")
					return err
				}
				for i, ref := range refs {
					if _, err := fmt.Fprintf(w, "%d. %s  %s\n", i+1, ref.String(), ref.URL); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print references as JSON")
	return cmd
}

func newLookupCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "lookup ID|URL",
		Short: "Resolve a reference id or bible.com URL",
		Example: `  scripture-mcp lookup 111/JHN.3.16
  scripture-mcp lookup https://www.bible.com/bible/111/JHN.3.16.NIV`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *scripture.Service) error {
				ref, err := svc.Lookup(ctx, args[0], "")
				if err != nil {
					return err
				}

				if asJSON {
					return writeJSON(cmd.OutOrStdout(), ref)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", ref.String(), ref.URL)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the reference as JSON")
	return cmd
}

func newVersionsCommand() *cobra.Command {
	var (
		asJSON bool
		query  string
	)
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List or search the versions of the preferred language",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *scripture.Service) error {
				var (
					versions []domain.Version
					err      error
				)
				if query != "" {
					versions, err = svc.SearchVersions(ctx, "", query)
				} else {
					versions, err = svc.Versions(ctx, "")
				}
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(w, versions)
				}

				defaultID := 0
				if v, err := svc.DefaultVersion(ctx, ""); err == nil {
					defaultID = v.ID
				}
				for _, v := range versions {
					marker := " "
					if v.ID == defaultID {
						marker = "*"
					}
					if _, err := fmt.Fprintf(w, "%s %-6d %-10s %s\n", marker, v.ID, v.Name, v.FullName); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print versions as JSON")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Full-text search over version names")
	return cmd
}

func newLanguagesCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List the catalog languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *scripture.Service) error {
				languages, err := svc.Languages(ctx)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(w, languages)
				}
				for _, lang := range languages {
					if _, err := fmt.Fprintf(w, "%s\t%s\n", lang.ID, lang.Name); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print languages as JSON")
	return cmd
}

func newExportSQLiteCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-sqlite",
		Short: "Copy the configured catalog into a SQLite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadValidSettings(DefaultRunParams(), cmd.Flags())
			if err != nil {
				return err
			}
			ConfigureLogging(cmd.ErrOrStderr(), settings)

			provider, err := catalog.Open(&settings.Catalog)
			if err != nil {
				return fmt.Errorf("failed to open catalog: %w", err)
			}
			defer func() { _ = provider.Close() }()

			if err := catalog.ExportSQLite(cmd.Context(), provider, out); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Exported catalog to %s\n", out)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output SQLite file")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

// withService loads the settings and runs fn against an open service
func withService(cmd *cobra.Command, fn func(context.Context, *scripture.Service) error) error {
	settings, err := loadValidSettings(DefaultRunParams(), cmd.Flags())
	if err != nil {
		return err
	}
	ConfigureLogging(cmd.ErrOrStderr(), settings)

	svc, err := OpenService(settings)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	return fn(cmd.Context(), svc)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
