// Command sierra-mcp exposes the Sierra Outfitters customer service
// tools over MCP stdio, so other agents can look up orders, check
// discounts, and get recommendations without going through the chat
// model. Results are byte-identical to what the chat engine's
// dispatcher would feed back.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/invopop/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sierra-outfitters/sierra-agent/internal/catalog"
	"github.com/sierra-outfitters/sierra-agent/internal/config"
	"github.com/sierra-outfitters/sierra-agent/internal/discounts"
	"github.com/sierra-outfitters/sierra-agent/internal/tools"
)

const serverVersion = "1.0.0"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "sierra.toml", "path to the TOML config file")
	flag.Parse()

	// stdout carries the protocol, so everything else goes to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("configuration failed", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, cleanup, err := newServer(ctx, cfg)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return 1
	}
	defer cleanup()

	logger.Info("sierra mcp server listening on stdio")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		logger.Error("server stopped", "error", err)
		return 1
	}
	return 0
}

// newServer loads the catalog and registers the three customer service
// tools. No model client is involved: callers bring their own.
func newServer(ctx context.Context, cfg *config.Config) (*mcp.Server, func(), error) {
	store, err := catalog.Open(cfg.CatalogDBPath())
	if err != nil {
		return nil, nil, err
	}

	orderSvc, productSvc, err := catalog.BuildServices(ctx, store, cfg.OrdersPath(), cfg.ProductsPath())
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	discountSvc, err := discounts.NewService()
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	server := mcp.NewServer(&mcp.Implementation{Name: "sierra-outfitters", Version: serverVersion}, nil)

	specs := []tools.Spec{
		catalog.LookupOrderSpec(orderSvc, productSvc),
		discounts.CheckPromotionalDiscountSpec(discountSvc),
		catalog.RecommendProductsSpec(productSvc),
	}
	for _, spec := range specs {
		if err := addSpec(server, spec); err != nil {
			store.Close()
			return nil, nil, err
		}
	}

	return server, func() { store.Close() }, nil
}

// addSpec registers one tool spec with the MCP server, reusing the
// spec's schema, implementation, and result serialization.
func addSpec(server *mcp.Server, spec tools.Spec) error {
	schema, err := toInputSchema(spec.Parameters)
	if err != nil {
		return fmt.Errorf("schema for tool %q: %w", spec.Name, err)
	}

	run := spec.Run
	name := spec.Name
	server.AddTool(&mcp.Tool{
		Name:        name,
		Description: spec.Description,
		InputSchema: schema,
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := run(ctx, json.RawMessage(req.Params.Arguments))
		if err != nil {
			return errorResult(name, err), nil
		}
		text, err := tools.RenderResult(result)
		if err != nil {
			return errorResult(name, err), nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, nil
	})
	return nil
}

// errorResult reports a failed call the same way the chat dispatcher
// would, as text the caller can surface.
func errorResult(name string, err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Error executing tool '%s': %v", name, err)}},
	}
}

// toInputSchema converts a generated argument schema into the map form
// the MCP SDK advertises to clients.
func toInputSchema(schema *jsonschema.Schema) (map[string]any, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
