package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/sierra-outfitters/sierra-agent/internal/chat"
	"github.com/sierra-outfitters/sierra-agent/internal/config"
	apperrors "github.com/sierra-outfitters/sierra-agent/internal/errors"
)

const defaultAnthropicMaxTokens = 1024

// AnthropicClient implements Client on the Anthropic Messages API.
type AnthropicClient struct {
	cfg    config.AnthropicConfig
	client anthropic.Client
	retry  *apperrors.Policy
}

// NewAnthropicClient creates a client for the Messages API. SDK-internal
// retries are disabled so the shared retry policy controls attempts.
func NewAnthropicClient(cfg config.AnthropicConfig, opts ...option.RequestOption) *AnthropicClient {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultAnthropicMaxTokens
	}
	reqOpts := append([]option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}, opts...)
	return &AnthropicClient{
		cfg:    cfg,
		client: anthropic.NewClient(reqOpts...),
		retry:  completionRetryPolicy(),
	}
}

// Name returns the configured model name.
func (c *AnthropicClient) Name() string {
	return c.cfg.Model
}

// Complete sends the conversation to the Messages API.
func (c *AnthropicClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	params, err := c.buildParams(req)
	if err != nil {
		return nil, err
	}

	msg, err := apperrors.DoWithResult(ctx, c.retry, func() (*anthropic.Message, error) {
		m, err := c.client.Messages.New(ctx, *params)
		if err != nil {
			return nil, classifyAnthropicError(err)
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}

	turn := chat.Turn{Role: chat.RoleAssistant}
	var texts []string
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			texts = append(texts, v.Text)
		case anthropic.ToolUseBlock:
			turn.ToolCalls = append(turn.ToolCalls, chat.ToolCall{
				ID:      v.ID,
				Name:    v.Name,
				RawArgs: v.JSON.Input.Raw(),
			})
		}
	}
	turn.Text = strings.Join(texts, "\n")

	return &Response{
		Turns: []chat.Turn{turn},
		Model: string(msg.Model),
		Usage: Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}, nil
}

// buildParams maps the provider-neutral request onto Messages API
// params. A leading system turn in the history wins over Instructions;
// tool results ride in user messages as the API requires.
func (c *AnthropicClient) buildParams(req *Request) (*anthropic.MessageNewParams, error) {
	system := req.Instructions
	history := req.History
	if len(history) > 0 && history[0].Role == chat.RoleSystem {
		system = history[0].Text
		history = history[1:]
	}

	msgs := make([]anthropic.MessageParam, 0, len(history))
	for _, turn := range history {
		switch turn.Role {
		case chat.RoleUser:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(turn.Text)))
		case chat.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if turn.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(turn.Text))
			}
			for _, call := range turn.ToolCalls {
				var input any
				if err := json.Unmarshal([]byte(call.RawArgs), &input); err != nil {
					input = map[string]any{}
				}
				toolUse := anthropic.ToolUseBlockParam{ID: call.ID, Name: call.Name, Input: input}
				blocks = append(blocks, anthropic.ContentBlockParamUnion{OfToolUse: &toolUse})
			}
			if len(blocks) == 0 {
				continue
			}
			msgs = append(msgs, anthropic.NewAssistantMessage(blocks...))
		case chat.RoleTool:
			msgs = append(msgs, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(turn.ToolCallID, turn.Text, false)))
		}
	}

	params := &anthropic.MessageNewParams{
		Model:       anthropic.Model(c.cfg.Model),
		MaxTokens:   int64(c.cfg.MaxTokens),
		Temperature: anthropic.Float(defaultTemperature),
		Messages:    msgs,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	if len(req.Tools) > 0 {
		tools := make([]anthropic.ToolUnionParam, 0, len(req.Tools))
		for _, def := range req.Tools {
			schema, err := toolInputSchema(def.Parameters)
			if err != nil {
				return nil, apperrors.Wrap(err, apperrors.CodeToolInvalidParams,
					fmt.Sprintf("invalid schema for tool %q", def.Name), apperrors.CategoryPermanent)
			}
			tools = append(tools, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
				Name:        def.Name,
				Description: anthropic.String(def.Description),
				InputSchema: schema,
			}})
		}
		params.Tools = tools
	}

	return params, nil
}

// toolInputSchema lifts properties and required out of a full JSON
// Schema document; the Messages API supplies type "object" itself.
func toolInputSchema(raw json.RawMessage) (anthropic.ToolInputSchemaParam, error) {
	var doc struct {
		Properties json.RawMessage `json:"properties"`
		Required   []string        `json:"required"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return anthropic.ToolInputSchemaParam{}, err
	}
	var props any
	if len(doc.Properties) > 0 {
		if err := json.Unmarshal(doc.Properties, &props); err != nil {
			return anthropic.ToolInputSchemaParam{}, err
		}
	}
	return anthropic.ToolInputSchemaParam{Properties: props, Required: doc.Required}, nil
}

func classifyAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return apperrors.Wrap(err, apperrors.CodeModelUnavailable,
			"completion request failed", apperrors.CategoryTemporary)
	}

	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.Wrap(err, apperrors.CodeModelAuthFailed,
			"provider rejected the API key", apperrors.CategoryUser)
	case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
		return apperrors.Wrap(err, apperrors.CodeModelBadRequest,
			"provider rejected the request", apperrors.CategoryUser)
	case http.StatusTooManyRequests:
		e := apperrors.Wrap(err, apperrors.CodeModelRateLimit,
			"rate limited by provider", apperrors.CategoryRateLimit)
		if apiErr.Response != nil {
			if v := apiErr.Response.Header.Get("Retry-After"); v != "" {
				if secs, perr := strconv.Atoi(v); perr == nil {
					e.RetryAfter = time.Duration(secs) * time.Second
				}
			}
		}
		return e
	default:
		return apperrors.Wrap(err, apperrors.CodeModelUnavailable,
			fmt.Sprintf("provider error (status %d)", apiErr.StatusCode), apperrors.CategoryTemporary)
	}
}
