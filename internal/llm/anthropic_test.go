package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sierra-outfitters/sierra-agent/internal/chat"
	"github.com/sierra-outfitters/sierra-agent/internal/config"
	apperrors "github.com/sierra-outfitters/sierra-agent/internal/errors"
)

// fakeTransport intercepts SDK requests so no network is touched.
// Extra requests repeat the last step.
type fakeTransport struct {
	mu       sync.Mutex
	steps    []scriptedStep
	requests [][]byte
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		req.Body.Close()
	}

	f.mu.Lock()
	f.requests = append(f.requests, body)
	idx := len(f.requests) - 1
	if idx >= len(f.steps) {
		idx = len(f.steps) - 1
	}
	step := f.steps[idx]
	f.mu.Unlock()

	resp := &http.Response{
		StatusCode: step.status,
		Body:       io.NopCloser(bytes.NewReader([]byte(step.body))),
		Header:     make(http.Header),
	}
	for k, vs := range step.header {
		for _, v := range vs {
			resp.Header.Add(k, v)
		}
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

func (f *fakeTransport) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeTransport) requestBody(t *testing.T, i int) map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.Greater(t, len(f.requests), i)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(f.requests[i], &decoded))
	return decoded
}

func newTestAnthropicClient(ft *fakeTransport, rec *sleepRecorder) *AnthropicClient {
	c := NewAnthropicClient(config.AnthropicConfig{
		APIKey:    "test-key",
		Model:     "claude-sonnet-4-5",
		MaxTokens: 1024,
	}, option.WithHTTPClient(&http.Client{Transport: ft}))
	if rec != nil {
		c.retry.Sleep = rec.sleep
	}
	return c
}

const anthropicToolUseResponse = `{
	"id": "msg_1",
	"type": "message",
	"role": "assistant",
	"model": "claude-sonnet-4-5",
	"content": [
		{"type": "text", "text": "Let me check that order."},
		{"type": "tool_use", "id": "toolu_1", "name": "lookup_order", "input": {"email": "john.doe@example.com", "order_number": "#W001"}}
	],
	"stop_reason": "tool_use",
	"usage": {"input_tokens": 210, "output_tokens": 40}
}`

const anthropicTextResponse = `{
	"id": "msg_2",
	"type": "message",
	"role": "assistant",
	"model": "claude-sonnet-4-5",
	"content": [{"type": "text", "text": "Your order has been delivered."}],
	"stop_reason": "end_turn",
	"usage": {"input_tokens": 230, "output_tokens": 12}
}`

func TestAnthropicCompleteParsesBlocks(t *testing.T) {
	ft := &fakeTransport{steps: []scriptedStep{{status: 200, body: anthropicToolUseResponse}}}
	c := newTestAnthropicClient(ft, nil)

	resp, err := c.Complete(context.Background(), &Request{
		Instructions: "You are a customer service agent.",
		History:      []chat.Turn{chat.UserTurn("Where is my order?")},
	})
	require.NoError(t, err)

	require.Len(t, resp.Turns, 1)
	turn := resp.Turns[0]
	assert.Equal(t, chat.RoleAssistant, turn.Role)
	assert.Equal(t, "Let me check that order.", turn.Text)
	require.Len(t, turn.ToolCalls, 1)
	assert.Equal(t, "toolu_1", turn.ToolCalls[0].ID)
	assert.Equal(t, "lookup_order", turn.ToolCalls[0].Name)
	assert.JSONEq(t, `{"email":"john.doe@example.com","order_number":"#W001"}`, turn.ToolCalls[0].RawArgs)
	assert.Equal(t, 210, resp.Usage.PromptTokens)
	assert.Equal(t, 40, resp.Usage.CompletionTokens)
	assert.Equal(t, 250, resp.Usage.TotalTokens)
	assert.Equal(t, "claude-sonnet-4-5", resp.Model)
}

func TestAnthropicCompleteSendsSystemToolsAndTemperature(t *testing.T) {
	ft := &fakeTransport{steps: []scriptedStep{{status: 200, body: anthropicTextResponse}}}
	c := newTestAnthropicClient(ft, nil)

	_, err := c.Complete(context.Background(), &Request{
		Instructions: "You are a customer service agent.",
		History:      []chat.Turn{chat.UserTurn("hi")},
		Tools: []ToolDef{{
			Name:        "lookup_order",
			Description: "Look up an order",
			Parameters:  json.RawMessage(`{"type":"object","properties":{"email":{"type":"string"}},"required":["email"],"additionalProperties":false}`),
		}},
	})
	require.NoError(t, err)

	body := ft.requestBody(t, 0)
	assert.Equal(t, "claude-sonnet-4-5", body["model"])
	assert.InDelta(t, 0.1, body["temperature"], 1e-9)
	assert.InDelta(t, 1024, body["max_tokens"], 0)

	system := body["system"].([]any)
	require.Len(t, system, 1)
	assert.Equal(t, "You are a customer service agent.", system[0].(map[string]any)["text"])

	toolList := body["tools"].([]any)
	require.Len(t, toolList, 1)
	tool := toolList[0].(map[string]any)
	assert.Equal(t, "lookup_order", tool["name"])
	schema := tool["input_schema"].(map[string]any)
	assert.Contains(t, schema["properties"].(map[string]any), "email")
	assert.Contains(t, schema["required"].([]any), "email")
}

func TestAnthropicToolExchangeRidesInMessages(t *testing.T) {
	ft := &fakeTransport{steps: []scriptedStep{{status: 200, body: anthropicTextResponse}}}
	c := newTestAnthropicClient(ft, nil)

	history := []chat.Turn{
		chat.UserTurn("Where is my order?"),
		chat.AssistantTurn("", chat.ToolCall{ID: "toolu_1", Name: "lookup_order", RawArgs: `{"email":"a@b.c"}`}),
		chat.ToolResultTurn("toolu_1", `{"Status":"delivered"}`),
	}
	_, err := c.Complete(context.Background(), &Request{Instructions: "sys", History: history})
	require.NoError(t, err)

	msgs := ft.requestBody(t, 0)["messages"].([]any)
	require.Len(t, msgs, 3)

	assistant := msgs[1].(map[string]any)
	assert.Equal(t, "assistant", assistant["role"])
	blocks := assistant["content"].([]any)
	require.Len(t, blocks, 1)
	toolUse := blocks[0].(map[string]any)
	assert.Equal(t, "tool_use", toolUse["type"])
	assert.Equal(t, "toolu_1", toolUse["id"])
	assert.Equal(t, "lookup_order", toolUse["name"])

	result := msgs[2].(map[string]any)
	assert.Equal(t, "user", result["role"])
	resultBlocks := result["content"].([]any)
	require.Len(t, resultBlocks, 1)
	toolResult := resultBlocks[0].(map[string]any)
	assert.Equal(t, "tool_result", toolResult["type"])
	assert.Equal(t, "toolu_1", toolResult["tool_use_id"])
}

func TestAnthropicCompleteRetriesServerErrors(t *testing.T) {
	ft := &fakeTransport{steps: []scriptedStep{
		{status: 500, body: `{"type":"error","error":{"type":"api_error","message":"boom"}}`},
		{status: 200, body: anthropicTextResponse},
	}}
	rec := &sleepRecorder{}
	c := newTestAnthropicClient(ft, rec)

	resp, err := c.Complete(context.Background(), &Request{
		Instructions: "sys",
		History:      []chat.Turn{chat.UserTurn("hi")},
	})
	require.NoError(t, err)
	require.Len(t, resp.Turns, 1)
	assert.Equal(t, "Your order has been delivered.", resp.Turns[0].Text)
	assert.Equal(t, 2, ft.requestCount())
	assert.Equal(t, []time.Duration{time.Second}, rec.delays)
}

func TestAnthropicCompleteDoesNotRetryBadRequest(t *testing.T) {
	ft := &fakeTransport{steps: []scriptedStep{
		{status: 400, body: `{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`},
	}}
	rec := &sleepRecorder{}
	c := newTestAnthropicClient(ft, rec)

	_, err := c.Complete(context.Background(), &Request{
		Instructions: "sys",
		History:      []chat.Turn{chat.UserTurn("hi")},
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeModelBadRequest, appErr.Code)
	assert.Equal(t, 1, ft.requestCount())
	assert.Empty(t, rec.delays)
}
