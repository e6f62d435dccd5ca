package label_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	mcpclient "github.com/mark3labs/mcp-go/client"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"

	"github.com/cathexis-net/cathexis/internal/label"
	"github.com/cathexis-net/cathexis/internal/summary"
)

// newTestGenerateLabelServer starts an in-process MCP server exposing a
// single "generate_label" tool whose text reply is built by respond
// from the call arguments, and returns the HTTP test server hosting it.
func newTestGenerateLabelServer(t *testing.T, respond func(args map[string]any) string) *httptest.Server {
	t.Helper()

	srv := mcpserver.NewMCPServer("test-label-provider", "test")
	srv.AddTool(
		mcplib.NewTool("generate_label",
			mcplib.WithNumber("category_id"),
		),
		func(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
			args, _ := req.Params.Arguments.(map[string]any)
			text := respond(args)
			return &mcplib.CallToolResult{
				Content: []mcplib.Content{mcplib.TextContent{Type: "text", Text: text}},
			}, nil
		},
	)

	httpSrv := httptest.NewServer(mcpserver.NewStreamableHTTPServer(srv))
	t.Cleanup(httpSrv.Close)
	return httpSrv
}

func newTestClient(t *testing.T, url string) *mcpclient.Client {
	t.Helper()
	c, err := mcpclient.NewStreamableHttpClient(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	_, err = c.Initialize(ctx, mcplib.InitializeRequest{
		Params: mcplib.InitializeParams{
			ClientInfo: mcplib.Implementation{Name: "cathexis-test-client", Version: "1.0"},
		},
	})
	require.NoError(t, err)
	return c
}

func TestMCPProviderGenerateLabelParsesResponse(t *testing.T) {
	httpSrv := newTestGenerateLabelServer(t, func(args map[string]any) string {
		resp, _ := json.Marshal(map[string]any{
			"handle":   "Steady Collaborators",
			"gloss":    "Agents with consistent mutual trust and low churn.",
			"guidance": "Prefer these agents for long-running delegation chains.",
		})
		return string(resp)
	})
	client := newTestClient(t, httpSrv.URL)

	provider := label.NewMCPProvider(client, "")
	out, err := provider.GenerateLabel(context.Background(), label.ProviderInput{
		CategoryID: 3,
		Summary: summary.CategorySummary{
			CategoryID:    3,
			Members:       []string{"alice", "bob"},
			AvgDegree:     2.5,
			AvgClustering: 0.4,
		},
		SnapshotTime: 100,
	})
	require.NoError(t, err)
	require.Equal(t, "Steady Collaborators", out.Handle)
	require.Equal(t, "Agents with consistent mutual trust and low churn.", out.Gloss)
	require.NotNil(t, out.Guidance)
	require.Equal(t, "Prefer these agents for long-running delegation chains.", *out.Guidance)
}

func TestMCPProviderGenerateLabelMalformedResponse(t *testing.T) {
	httpSrv := newTestGenerateLabelServer(t, func(args map[string]any) string {
		return "not json"
	})
	client := newTestClient(t, httpSrv.URL)

	provider := label.NewMCPProvider(client, "")
	_, err := provider.GenerateLabel(context.Background(), label.ProviderInput{
		CategoryID:   1,
		Summary:      summary.CategorySummary{CategoryID: 1},
		SnapshotTime: 1,
	})
	require.Error(t, err)
}
