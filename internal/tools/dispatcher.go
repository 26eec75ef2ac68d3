package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/sierra-outfitters/sierra-agent/internal/chat"
)

// Dispatcher resolves and executes model-requested tool calls,
// converting every outcome into a tool-result turn.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(registry *Registry, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		registry: registry,
		logger:   logger,
	}
}

// Dispatch executes every request sequentially and returns exactly one
// tool turn per request, in input order. A failing call never affects
// its siblings: unknown tools, bad arguments, and implementation
// failures all become error text fed back to the model.
func (d *Dispatcher) Dispatch(ctx context.Context, calls []chat.ToolCall) []chat.Turn {
	results := make([]chat.Turn, 0, len(calls))
	for _, call := range calls {
		results = append(results, d.dispatchOne(ctx, call))
	}
	return results
}

func (d *Dispatcher) dispatchOne(ctx context.Context, call chat.ToolCall) chat.Turn {
	spec, err := d.registry.Resolve(call.Name)
	if err != nil {
		d.logger.Warn("tool not found", "tool", call.Name, "call_id", call.ID)
		return chat.ToolResultTurn(call.ID, fmt.Sprintf("Tool '%s' not found", call.Name))
	}

	result, err := d.invoke(ctx, spec, call)
	if err != nil {
		d.logger.Warn("tool execution failed", "tool", call.Name, "call_id", call.ID, "error", err)
		return chat.ToolResultTurn(call.ID, fmt.Sprintf("Error executing tool '%s': %v", call.Name, err))
	}

	text, err := RenderResult(result)
	if err != nil {
		d.logger.Warn("tool result not serializable", "tool", call.Name, "call_id", call.ID, "error", err)
		return chat.ToolResultTurn(call.ID, fmt.Sprintf("Error executing tool '%s': %v", call.Name, err))
	}

	return chat.ToolResultTurn(call.ID, text)
}

// invoke runs the implementation, converting panics into errors so one
// misbehaving tool cannot abort the batch.
func (d *Dispatcher) invoke(ctx context.Context, spec Spec, call chat.ToolCall) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return spec.Run(ctx, json.RawMessage(call.RawArgs))
}

// RenderResult turns a tool's return value into result text: strings
// pass through verbatim, everything else is JSON-serialized. The MCP
// server reuses it so both surfaces emit identical payloads.
func RenderResult(result any) (string, error) {
	if s, ok := result.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("serializing result: %w", err)
	}
	return string(b), nil
}
