package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sierra-outfitters/sierra-agent/internal/chat"
	"github.com/sierra-outfitters/sierra-agent/internal/config"
	apperrors "github.com/sierra-outfitters/sierra-agent/internal/errors"
)

const defaultOpenAITimeout = 30 * time.Second

// OpenAIClient implements Client against any OpenAI-compatible chat
// completions endpoint. Only the base URL and model name change between
// providers that speak this protocol.
type OpenAIClient struct {
	cfg    config.OpenAIConfig
	client *http.Client
	retry  *apperrors.Policy
}

// NewOpenAIClient creates a client for the configured endpoint.
func NewOpenAIClient(cfg config.OpenAIConfig) *OpenAIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	timeout := defaultOpenAITimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &OpenAIClient{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		retry:  completionRetryPolicy(),
	}
}

// Name returns the configured model name.
func (c *OpenAIClient) Name() string {
	return c.cfg.Model
}

// Complete sends the conversation to the chat completions endpoint.
func (c *OpenAIClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	body, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeModelBadRequest,
			"failed to marshal completion request", apperrors.CategoryPermanent)
	}

	respBody, err := apperrors.DoWithResult(ctx, c.retry, func() ([]byte, error) {
		return c.post(ctx, body)
	})
	if err != nil {
		return nil, err
	}

	var parsed oaiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, apperrors.NewBuilder(apperrors.CodeModelInvalidResponse, "failed to parse completion response").
			Permanent().
			Wrap(err).
			WithContext("response_body", string(respBody)).
			Build()
	}

	if len(parsed.Choices) == 0 {
		return nil, apperrors.Permanent(apperrors.CodeModelInvalidResponse,
			"completion response contained no choices")
	}

	turns := make([]chat.Turn, 0, len(parsed.Choices))
	for _, choice := range parsed.Choices {
		msg := choice.Message
		calls := make([]chat.ToolCall, 0, len(msg.ToolCalls))
		for _, tc := range msg.ToolCalls {
			if tc.Type != "" && tc.Type != "function" {
				continue
			}
			calls = append(calls, chat.ToolCall{
				ID:      tc.ID,
				Name:    tc.Function.Name,
				RawArgs: tc.Function.Arguments,
			})
		}
		turns = append(turns, chat.AssistantTurn(msg.Content, calls...))
	}

	model := parsed.Model
	if model == "" {
		model = c.cfg.Model
	}

	return &Response{
		Turns: turns,
		Model: model,
		Usage: Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		},
	}, nil
}

// post performs one HTTP attempt and classifies failures so the retry
// policy can tell transient from permanent.
func (c *OpenAIClient) post(ctx context.Context, body []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeModelUnavailable,
			"failed to create HTTP request", apperrors.CategoryPermanent)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	r, err := c.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeModelUnavailable,
			"completion request failed", apperrors.CategoryTemporary)
	}

	b, readErr := io.ReadAll(r.Body)
	r.Body.Close()
	if readErr != nil {
		return nil, apperrors.Wrap(readErr, apperrors.CodeModelUnavailable,
			"failed to read completion response", apperrors.CategoryTemporary)
	}

	switch r.StatusCode {
	case http.StatusOK:
		return b, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, apperrors.NewBuilder(apperrors.CodeModelAuthFailed, "provider rejected the API key").
			User().
			WithContext("status", r.StatusCode).
			Build()
	case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
		return nil, apperrors.NewBuilder(apperrors.CodeModelBadRequest, "provider rejected the request").
			User().
			WithContext("status", r.StatusCode).
			WithContext("response", string(b)).
			Build()
	case http.StatusTooManyRequests:
		return nil, rateLimitError(r)
	case http.StatusRequestTimeout, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return nil, apperrors.Temporary(apperrors.CodeModelUnavailable,
			fmt.Sprintf("provider unavailable: %s", r.Status))
	default:
		return nil, apperrors.Temporary(apperrors.CodeModelUnavailable,
			fmt.Sprintf("provider error (status %d): %s", r.StatusCode, string(b)))
	}
}

// rateLimitError carries the provider's Retry-After hint when present.
// The header is either delay seconds or an HTTP date.
func rateLimitError(r *http.Response) error {
	var retryAfter time.Duration
	if v := r.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			retryAfter = time.Duration(secs) * time.Second
		} else if at, err := http.ParseTime(v); err == nil {
			if d := time.Until(at); d > 0 {
				retryAfter = d
			}
		}
	}
	return apperrors.RateLimit(apperrors.CodeModelRateLimit, "rate limited by provider", retryAfter)
}

func (c *OpenAIClient) buildRequest(req *Request) oaiRequest {
	out := oaiRequest{
		Model:       c.cfg.Model,
		Messages:    buildMessages(req),
		Temperature: defaultTemperature,
	}
	if len(req.Tools) > 0 {
		out.Tools = make([]oaiTool, 0, len(req.Tools))
		for _, def := range req.Tools {
			out.Tools = append(out.Tools, oaiTool{
				Type: "function",
				Function: oaiToolFunction{
					Name:        def.Name,
					Description: def.Description,
					Parameters:  def.Parameters,
				},
			})
		}
		out.ToolChoice = "auto"
	}
	return out
}

// buildMessages flattens the conversation into wire form. The system
// prompt is prepended only when the history does not already open with
// a system turn.
func buildMessages(req *Request) []oaiMessage {
	msgs := make([]oaiMessage, 0, len(req.History)+1)
	if len(req.History) == 0 || req.History[0].Role != chat.RoleSystem {
		msgs = append(msgs, oaiMessage{Role: "system", Content: req.Instructions})
	}

	for _, turn := range req.History {
		msg := oaiMessage{Role: string(turn.Role), Content: turn.Text}
		switch turn.Role {
		case chat.RoleAssistant:
			for _, call := range turn.ToolCalls {
				msg.ToolCalls = append(msg.ToolCalls, oaiToolCall{
					ID:   call.ID,
					Type: "function",
					Function: oaiFunctionCall{
						Name:      call.Name,
						Arguments: call.RawArgs,
					},
				})
			}
		case chat.RoleTool:
			msg.ToolCallID = turn.ToolCallID
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

// ============================================================
// Chat Completions Wire Types
// ============================================================

type oaiRequest struct {
	Model       string       `json:"model"`
	Messages    []oaiMessage `json:"messages"`
	Temperature float64      `json:"temperature"`
	Tools       []oaiTool    `json:"tools,omitempty"`
	ToolChoice  string       `json:"tool_choice,omitempty"`
}

type oaiMessage struct {
	Role       string        `json:"role"`
	Content    string        `json:"content"`
	ToolCalls  []oaiToolCall `json:"tool_calls,omitempty"`
	ToolCallID string        `json:"tool_call_id,omitempty"`
}

type oaiToolCall struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Function oaiFunctionCall `json:"function"`
}

type oaiFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type oaiTool struct {
	Type     string          `json:"type"`
	Function oaiToolFunction `json:"function"`
}

type oaiToolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type oaiResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int        `json:"index"`
		Message      oaiMessage `json:"message"`
		FinishReason string     `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}
