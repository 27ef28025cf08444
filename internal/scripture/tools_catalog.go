package scripture

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/mcp-scripture-server/internal/domain"
)

// ListVersionsArgument defines list_versions parameters.
type ListVersionsArgument struct {
	Language string `json:"language,omitempty" jsonschema:"Catalog language id; defaults to the configured language"`
}

// SearchVersionsArgument defines search_versions parameters.
type SearchVersionsArgument struct {
	Query    string `json:"query" jsonschema:"Words or prefixes of a version name (e.g. 'king james' or 'niv')"`
	Language string `json:"language,omitempty" jsonschema:"Catalog language id; defaults to the configured language"`
}

// ListLanguagesArgument takes no parameters.
type ListLanguagesArgument struct{}

// CatalogHandler handles the catalog browsing MCP tools.
type CatalogHandler struct {
	service *Service
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(service *Service) *CatalogHandler {
	return &CatalogHandler{
		service: service,
	}
}

// HandleListVersions lists the versions of a language.
func (h *CatalogHandler) HandleListVersions(ctx context.Context, req *mcp.CallToolRequest, args ListVersionsArgument) (*mcp.CallToolResult, any, error) {
	versions, err := h.service.Versions(ctx, args.Language)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to list versions: %s", err)), nil, nil
	}

	defaultID := 0
	if v, err := h.service.DefaultVersion(ctx, args.Language); err == nil {
		defaultID = v.ID
	}

	return formatVersions(versions, defaultID, fmt.Sprintf("%d versions available", len(versions))), nil, nil
}

// HandleSearchVersions full-text searches the versions of a language.
func (h *CatalogHandler) HandleSearchVersions(ctx context.Context, req *mcp.CallToolRequest, args SearchVersionsArgument) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.Query) == "" {
		return errorResult("Query cannot be empty"), nil, nil
	}

	versions, err := h.service.SearchVersions(ctx, args.Language, args.Query)
	if err != nil {
		return errorResult(fmt.Sprintf("Version search failed: %s", err)), nil, nil
	}
	if len(versions) == 0 {
		return textResult(fmt.Sprintf("No versions found for query: %s", args.Query)), nil, nil
	}

	return formatVersions(versions, 0, fmt.Sprintf("Found %d versions for '%s'", len(versions), args.Query)), nil, nil
}

// HandleListLanguages lists the catalog languages.
func (h *CatalogHandler) HandleListLanguages(ctx context.Context, req *mcp.CallToolRequest, args ListLanguagesArgument) (*mcp.CallToolResult, any, error) {
	languages, err := h.service.Languages(ctx)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to list languages: %s", err)), nil, nil
	}
	if len(languages) == 0 {
		return textResult("No languages available"), nil, nil
	}

	preferred := h.service.Settings().Preferences.Language

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d languages available:\n\n", len(languages)))
	for _, lang := range languages {
		sb.WriteString(fmt.Sprintf("- %s: %s", lang.ID, lang.Name))
		if lang.ID == preferred {
			sb.WriteString(" (default)")
		}
		sb.WriteString("\n")
	}
	return textResult(sb.String()), nil, nil
}

// formatVersions renders versions one per line, marking the default.
func formatVersions(versions []domain.Version, defaultID int, header string) *mcp.CallToolResult {
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString(":\n\n")
	for _, v := range versions {
		sb.WriteString(fmt.Sprintf("- %d %s: %s", v.ID, v.Name, v.FullName))
		if v.ID == defaultID {
			sb.WriteString(" (default)")
		}
		sb.WriteString("\n")
	}
	return textResult(sb.String())
}

// RegisterCatalogTools registers the version and language tools with an MCP server.
func RegisterCatalogTools(server *mcp.Server, service *Service) {
	handler := NewCatalogHandler(service)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_versions",
		Description: "List the Bible versions available in a catalog language with their numeric ids",
	}, handler.HandleListVersions)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_versions",
		Description: "Search Bible versions by abbreviation or full name",
	}, handler.HandleSearchVersions)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_languages",
		Description: "List the catalog languages",
	}, handler.HandleListLanguages)
}

// RegisterTools registers every scripture tool with an MCP server.
func RegisterTools(server *mcp.Server, service *Service) {
	RegisterResolveTool(server, service)
	RegisterLookupTool(server, service)
	RegisterCatalogTools(server, service)
}
