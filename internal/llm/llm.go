// Package llm adapts the conversation log to hosted model APIs.
//
// Two providers are supported: any OpenAI-compatible chat completions
// endpoint and the Anthropic Messages API. Both honor the same contract:
// the system prompt is prepended when the history does not already open
// with one, sampling temperature is pinned, and transient failures are
// retried with exponential backoff before the error reaches the caller.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sierra-outfitters/sierra-agent/internal/chat"
	"github.com/sierra-outfitters/sierra-agent/internal/config"
	apperrors "github.com/sierra-outfitters/sierra-agent/internal/errors"
)

// defaultTemperature keeps answers consistent across turns. Shipping
// status and discount eligibility should not vary between identical
// questions.
const defaultTemperature = 0.1

// ToolDef describes one callable tool in provider-neutral form.
// Parameters holds the JSON Schema for the tool's arguments.
type ToolDef struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// Request is a single completion call: the system instructions, the
// conversation so far, and the tools the model may invoke.
type Request struct {
	Instructions string
	History      []chat.Turn
	Tools        []ToolDef
}

// Usage reports token consumption for one completion call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response carries the assistant turns produced by one completion
// call, in provider order. Providers normally return a single turn,
// but the contract is a batch and the engine treats it as one.
type Response struct {
	Turns []chat.Turn
	Model string
	Usage Usage
}

// Client is implemented by each provider adapter.
type Client interface {
	// Complete sends the conversation to the model and returns the
	// assistant's reply. Transient provider failures are retried
	// internally; the returned error is final.
	Complete(ctx context.Context, req *Request) (*Response, error)

	// Name identifies the backing model for logs and stats.
	Name() string
}

// New builds the client selected by cfg.LLM.Provider.
func New(cfg *config.Config) (Client, error) {
	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.LLM.OpenAI), nil
	case config.ProviderAnthropic:
		return NewAnthropicClient(cfg.LLM.Anthropic), nil
	default:
		return nil, apperrors.User(apperrors.CodeConfigInvalid,
			fmt.Sprintf("unknown LLM provider %q", cfg.LLM.Provider))
	}
}

// completionRetryPolicy bounds provider retries: three attempts total,
// waiting one second before the first retry and two before the second.
// Only transient and rate-limit failures are retried; auth and request
// errors surface immediately.
func completionRetryPolicy() *apperrors.Policy {
	return &apperrors.Policy{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		RetryIf: func(err error) bool {
			switch apperrors.GetCategory(err) {
			case apperrors.CategoryTemporary, apperrors.CategoryRateLimit:
				return true
			default:
				return false
			}
		},
	}
}
