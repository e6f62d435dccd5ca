package label

import (
	"context"
	"encoding/json"
	"fmt"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// MCPProvider implements Provider by calling a "generate_label" tool on
// a remote MCP server — the external text-generation service the core
// spec treats as an opaque collaborator. It is the client-side
// counterpart of the tool-registration pattern the teacher exposes
// tools *with*, used here to consume one instead.
type MCPProvider struct {
	client   *mcpclient.Client
	toolName string
}

// NewMCPProvider wraps an already-initialized MCP client. toolName
// defaults to "generate_label" when empty.
func NewMCPProvider(client *mcpclient.Client, toolName string) MCPProvider {
	if toolName == "" {
		toolName = "generate_label"
	}
	return MCPProvider{client: client, toolName: toolName}
}

// generateLabelResponse is the JSON shape expected back from the tool.
type generateLabelResponse struct {
	Handle   string  `json:"handle"`
	Gloss    string  `json:"gloss"`
	Guidance *string `json:"guidance,omitempty"`
}

// GenerateLabel implements Provider by invoking the configured MCP
// tool with the category's summary statistics as arguments and parsing
// its text response as JSON.
func (p MCPProvider) GenerateLabel(ctx context.Context, input ProviderInput) (ProviderOutput, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = p.toolName
	req.Params.Arguments = map[string]any{
		"category_id":         input.CategoryID,
		"avg_degree":          input.Summary.AvgDegree,
		"avg_clustering":      input.Summary.AvgClustering,
		"member_count":        len(input.Summary.Members),
		"top_feature_indices": input.Summary.TopFeatureIndices,
		"snapshot_time":       input.SnapshotTime,
	}

	result, err := p.client.CallTool(ctx, req)
	if err != nil {
		return ProviderOutput{}, fmt.Errorf("label: mcp %s: %w", p.toolName, err)
	}
	if result.IsError {
		return ProviderOutput{}, fmt.Errorf("label: mcp %s: tool reported an error", p.toolName)
	}
	if len(result.Content) == 0 {
		return ProviderOutput{}, fmt.Errorf("label: mcp %s: empty response", p.toolName)
	}
	text, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		return ProviderOutput{}, fmt.Errorf("label: mcp %s: unexpected content type", p.toolName)
	}

	var parsed generateLabelResponse
	if err := json.Unmarshal([]byte(text.Text), &parsed); err != nil {
		return ProviderOutput{}, fmt.Errorf("label: mcp %s: decode response: %w", p.toolName, err)
	}
	return ProviderOutput{Handle: parsed.Handle, Gloss: parsed.Gloss, Guidance: parsed.Guidance}, nil
}
