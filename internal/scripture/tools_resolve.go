package scripture

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/mcp-scripture-server/internal/domain"
)

// ResolveArgument defines resolve parameters.
type ResolveArgument struct {
	Query     string `json:"query" jsonschema:"Free-text reference such as 'jn 3 16 niv' or '1 Co 13:4-7'"`
	Language  string `json:"language,omitempty" jsonschema:"Catalog language id (e.g. eng, spa); defaults to the configured language"`
	VersionID int    `json:"version_id,omitempty" jsonschema:"Version id used when the query names no version (e.g. 111 for NIV)"`
}

// ResolveHandler handles the resolve_reference MCP tool.
type ResolveHandler struct {
	service *Service
}

// NewResolveHandler creates a new resolve handler.
func NewResolveHandler(service *Service) *ResolveHandler {
	return &ResolveHandler{
		service: service,
	}
}

// Handle resolves the query and returns the ranked references.
func (h *ResolveHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ResolveArgument) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.Query) == "" {
		return textResult("No references found"), nil, nil
	}

	refs, err := h.service.Search(ctx, args.Query, Options{
		LanguageID: args.Language,
		VersionID:  args.VersionID,
	})
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to resolve reference: %s", err)), nil, nil
	}

	return formatReferences(refs, args.Query), nil, nil
}

// formatReferences renders references as a numbered list.
func formatReferences(refs []domain.Reference, queryStr string) *mcp.CallToolResult {
	if len(refs) == 0 {
		return textResult(fmt.Sprintf("No references found for query: %s", queryStr))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d references for '%s':\n\n", len(refs), queryStr))
	for i, ref := range refs {
		sb.WriteString(fmt.Sprintf("%d. %s %s\n", i+1, ref.String(), ref.URL))
	}

	return textResult(sb.String())
}

// GetToolDefinition returns the MCP tool definition.
func (h *ResolveHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        "resolve_reference",
		Description: "Resolve a free-text scripture reference into canonical references with ids and bible.com URLs, best match first",
	}
}

// RegisterResolveTool registers the resolve tool with an MCP server.
func RegisterResolveTool(server *mcp.Server, service *Service) {
	handler := NewResolveHandler(service)
	mcp.AddTool(server, handler.GetToolDefinition(), handler.Handle)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		IsError: true,
	}
}
