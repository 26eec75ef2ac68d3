// Package agent runs the Sierra Outfitters conversation loop: ship the
// conversation to the model, execute any tool calls it requests, feed
// the results back, and repeat until the model answers in plain text.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sierra-outfitters/sierra-agent/internal/chat"
	apperrors "github.com/sierra-outfitters/sierra-agent/internal/errors"
	"github.com/sierra-outfitters/sierra-agent/internal/llm"
	"github.com/sierra-outfitters/sierra-agent/internal/stats"
	"github.com/sierra-outfitters/sierra-agent/internal/tools"
)

// fallbackAnswer is returned when the model yields no usable text in
// its final round, or when the round cap trips.
const fallbackAnswer = "I'm sorry, I couldn't process your request properly."

// maxToolRounds caps model invocations per send so a model that keeps
// re-requesting tools cannot loop forever.
const maxToolRounds = 10

// Engine owns one conversation. A send runs to completion on the
// calling goroutine; concurrent sends against the same engine are not
// supported. The registry may be shared read-only across engines.
type Engine struct {
	client       llm.Client
	registry     *tools.Registry
	dispatcher   *tools.Dispatcher
	history      *chat.History
	instructions string
	collector    *stats.Collector
	logger       *slog.Logger

	// Tool schemas are marshaled once on first send; registration is
	// complete by then.
	defsOnce sync.Once
	defs     []llm.ToolDef
	defsErr  error
}

// EngineConfig configures an Engine.
type EngineConfig struct {
	Client       llm.Client
	Registry     *tools.Registry // nil for a fresh private registry
	Instructions string
	Stats        *stats.Collector
	Logger       *slog.Logger
}

// NewEngine creates an engine with an empty conversation.
func NewEngine(cfg *EngineConfig) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := cfg.Registry
	if registry == nil {
		registry = tools.NewRegistry()
	}
	collector := cfg.Stats
	if collector == nil {
		collector = stats.NewCollector()
	}
	return &Engine{
		client:       cfg.Client,
		registry:     registry,
		dispatcher:   tools.NewDispatcher(registry, logger),
		history:      chat.NewHistory(),
		instructions: cfg.Instructions,
		collector:    collector,
		logger:       logger,
	}
}

// RegisterTool adds a tool to the engine's registry. All registration
// must happen before the first Send.
func (e *Engine) RegisterTool(spec tools.Spec) error {
	return e.registry.Register(spec)
}

// Send runs one user message through the conversation loop and returns
// the model's final text. A model failure after exhausted retries
// propagates; everything appended up to that point stays in history and
// the caller decides whether to reset.
func (e *Engine) Send(ctx context.Context, userText string) (string, error) {
	e.history.Append(chat.UserTurn(userText))

	for round := 1; round <= maxToolRounds; round++ {
		resp, err := e.complete(ctx)
		if err != nil {
			return "", err
		}
		e.history.Append(resp.Turns...)

		var calls []chat.ToolCall
		for _, turn := range resp.Turns {
			calls = append(calls, turn.ToolCalls...)
		}
		if len(calls) == 0 {
			return finalText(resp.Turns), nil
		}

		e.logger.Debug("dispatching tool calls", "round", round, "calls", len(calls))
		e.history.Append(e.dispatcher.Dispatch(ctx, calls)...)
	}

	e.logger.Warn("tool round cap reached", "rounds", maxToolRounds)
	return fallbackAnswer, nil
}

// Reset clears the conversation. Registered tools and the system
// instructions stay.
func (e *Engine) Reset() {
	e.history.Reset()
}

// History returns a copy of the conversation log.
func (e *Engine) History() []chat.Turn {
	return e.history.Turns()
}

// complete invokes the model with the full conversation state and
// records usage.
func (e *Engine) complete(ctx context.Context) (*llm.Response, error) {
	defs, err := e.toolDefs()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := e.client.Complete(ctx, &llm.Request{
		Instructions: e.instructions,
		History:      e.history.Turns(),
		Tools:        defs,
	})
	duration := time.Since(start)

	if err != nil {
		e.collector.Record(0, duration, err)
		return nil, err
	}
	e.collector.Record(resp.Usage.TotalTokens, duration, nil)
	e.logger.Debug("model call complete",
		"model", resp.Model, "duration", duration, "tokens", resp.Usage.TotalTokens)
	return resp, nil
}

// toolDefs marshals registered schemas into provider-neutral tool
// definitions, once.
func (e *Engine) toolDefs() ([]llm.ToolDef, error) {
	e.defsOnce.Do(func() {
		specs := e.registry.Specs()
		defs := make([]llm.ToolDef, 0, len(specs))
		for _, spec := range specs {
			params, err := json.Marshal(spec.Parameters)
			if err != nil {
				e.defsErr = apperrors.Wrap(err, apperrors.CodeToolInvalidParams,
					fmt.Sprintf("marshal schema for tool %q", spec.Name), apperrors.CategoryPermanent)
				return
			}
			defs = append(defs, llm.ToolDef{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  params,
			})
		}
		e.defs = defs
	})
	return e.defs, e.defsErr
}

// finalText picks the reply out of the final round's batch: the most
// recent turn carrying non-empty text wins, otherwise the fixed
// fallback.
func finalText(batch []chat.Turn) string {
	for i := len(batch) - 1; i >= 0; i-- {
		if batch[i].Text != "" {
			return batch[i].Text
		}
	}
	return fallbackAnswer
}
