package scripture

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/mcp-scripture-server/internal/catalog"
	"github.com/sha1n/mcp-scripture-server/internal/domain"
	"github.com/sha1n/mcp-scripture-server/internal/reference"
)

// LookupArgument defines lookup parameters.
type LookupArgument struct {
	Reference string `json:"reference" jsonschema:"Reference id (e.g. 111/JHN.3.16-17) or bible.com URL"`
	Language  string `json:"language,omitempty" jsonschema:"Catalog language id; defaults to the configured language"`
}

// LookupHandler handles the lookup_reference MCP tool.
type LookupHandler struct {
	service *Service
}

// NewLookupHandler creates a new lookup handler.
func NewLookupHandler(service *Service) *LookupHandler {
	return &LookupHandler{
		service: service,
	}
}

// Handle resolves a reference id or URL into one reference.
func (h *LookupHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args LookupArgument) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.Reference) == "" {
		return errorResult("Reference cannot be empty"), nil, nil
	}

	ref, err := h.service.Lookup(ctx, args.Reference, args.Language)
	switch {
	case err == nil:
	case errors.Is(err, reference.ErrInvalidID):
		return errorResult(fmt.Sprintf("Invalid reference %q: expected a form like 111/JHN.3.16 or a bible.com URL", args.Reference)), nil, nil
	case errors.Is(err, ErrUnknownVersion), errors.Is(err, ErrUnknownBook), errors.Is(err, catalog.ErrLanguageNotFound):
		return errorResult(fmt.Sprintf("Reference not found: %s", err)), nil, nil
	default:
		return errorResult(fmt.Sprintf("Failed to look up reference: %s", err)), nil, nil
	}

	return textResult(formatReference(ref)), nil, nil
}

// formatReference renders one reference with its parts.
func formatReference(ref domain.Reference) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s\n\n", ref.String()))
	sb.WriteString(fmt.Sprintf("- **ID**: %s\n", ref.ID))
	sb.WriteString(fmt.Sprintf("- **URL**: %s\n", ref.URL))
	sb.WriteString(fmt.Sprintf("- **Book**: %s (%s)\n", ref.Book.Name, strings.ToUpper(ref.Book.ID)))
	sb.WriteString(fmt.Sprintf("- **Version**: %s (%d)\n", versionLabel(ref.Version), ref.Version.ID))
	return sb.String()
}

// versionLabel prefers the full version name.
func versionLabel(v domain.Version) string {
	if v.FullName == "" {
		return v.Name
	}
	return v.FullName + " - " + v.Name
}

// GetToolDefinition returns the MCP tool definition.
func (h *LookupHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "lookup_reference",
		Description: "Resolve a canonical reference id or bible.com reference URL back into a reference",
	}
}

// RegisterLookupTool registers the lookup tool with an MCP server.
func RegisterLookupTool(server *mcp.Server, service *Service) {
	handler := NewLookupHandler(service)
	mcp.AddTool(server, handler.GetToolDefinition(), handler.Handle)
}
