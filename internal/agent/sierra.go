package agent

import (
	"context"
	"log/slog"

	"github.com/sierra-outfitters/sierra-agent/internal/catalog"
	"github.com/sierra-outfitters/sierra-agent/internal/config"
	"github.com/sierra-outfitters/sierra-agent/internal/discounts"
	"github.com/sierra-outfitters/sierra-agent/internal/llm"
	"github.com/sierra-outfitters/sierra-agent/internal/prompt"
	"github.com/sierra-outfitters/sierra-agent/internal/stats"
	"github.com/sierra-outfitters/sierra-agent/internal/tools"
)

// errorApology is what customers see when a send fails for good, in the
// same voice as everything else the agent says.
const errorApology = "🏔️ Sorry, I encountered an error processing your request. " +
	"Please try again! Onward into the unknown!"

// Sierra is the packaged customer service agent: catalog data, discount
// service, the three tools, and a conversation engine behind one
// message-in, answer-out surface.
type Sierra struct {
	engine    *Engine
	store     *catalog.Store
	collector *stats.Collector
	logger    *slog.Logger
}

// NewSierra loads the catalog, wires the domain services and tools, and
// builds the conversation engine for the configured provider.
func NewSierra(cfg *config.Config, logger *slog.Logger) (*Sierra, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := catalog.Open(cfg.CatalogDBPath())
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	orderSvc, productSvc, err := loadCatalog(ctx, cfg, store)
	if err != nil {
		store.Close()
		return nil, err
	}

	discountSvc, err := discounts.NewService()
	if err != nil {
		store.Close()
		return nil, err
	}

	client, err := llm.New(cfg)
	if err != nil {
		store.Close()
		return nil, err
	}

	collector := stats.NewCollector()
	engine := NewEngine(&EngineConfig{
		Client:       client,
		Instructions: prompt.NewBuilder(productSvc.CatalogText()).Build(),
		Stats:        collector,
		Logger:       logger,
	})

	specs := []tools.Spec{
		catalog.LookupOrderSpec(orderSvc, productSvc),
		discounts.CheckPromotionalDiscountSpec(discountSvc),
		catalog.RecommendProductsSpec(productSvc),
	}
	for _, spec := range specs {
		if err := engine.RegisterTool(spec); err != nil {
			store.Close()
			return nil, err
		}
	}

	logger.Info("sierra agent ready",
		"model", client.Name(),
		"orders", orderSvc.Len(),
		"products", productSvc.Len(),
		"tools", len(specs))

	return &Sierra{
		engine:    engine,
		store:     store,
		collector: collector,
		logger:    logger,
	}, nil
}

// loadCatalog ingests the seed files configured under data.dir and
// returns lookup services over what the store holds.
func loadCatalog(ctx context.Context, cfg *config.Config, store *catalog.Store) (*catalog.OrderService, *catalog.ProductService, error) {
	return catalog.BuildServices(ctx, store, cfg.OrdersPath(), cfg.ProductsPath())
}

// ProcessMessage runs one customer message through the engine. Fatal
// model failures come back as a branded apology instead of an error;
// the conversation keeps whatever was appended before the failure.
func (s *Sierra) ProcessMessage(ctx context.Context, text string) string {
	answer, err := s.engine.Send(ctx, text)
	if err != nil {
		s.logger.Error("message processing failed", "error", err)
		return errorApology
	}
	return answer
}

// ResetConversation clears the conversation history. Tools and the
// system prompt stay.
func (s *Sierra) ResetConversation() {
	s.engine.Reset()
	s.logger.Info("conversation history reset")
}

// Stats returns a snapshot of model usage for this session.
func (s *Sierra) Stats() stats.Stats {
	return s.collector.Snapshot()
}

// Close releases the catalog database.
func (s *Sierra) Close() error {
	return s.store.Close()
}
