package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sierra-outfitters/sierra-agent/internal/chat"
)

type echoArgs struct {
	Text string `json:"text"`
}

func testDispatcher(t *testing.T) *Dispatcher {
	t.Helper()

	r := NewRegistry()
	require.NoError(t, r.Register(Spec{
		Name: "echo",
		Run: func(_ context.Context, raw json.RawMessage) (any, error) {
			var args echoArgs
			if err := UnmarshalArgs(raw, &args); err != nil {
				return nil, err
			}
			return args.Text, nil
		},
	}))
	require.NoError(t, r.Register(Spec{
		Name: "stock",
		Run: func(context.Context, json.RawMessage) (any, error) {
			return map[string]any{"sku": "SOBP001", "in_stock": true}, nil
		},
	}))
	require.NoError(t, r.Register(Spec{
		Name: "broken",
		Run: func(context.Context, json.RawMessage) (any, error) {
			return nil, errors.New("backend offline")
		},
	}))
	require.NoError(t, r.Register(Spec{
		Name: "panicky",
		Run: func(context.Context, json.RawMessage) (any, error) {
			panic("unexpected nil")
		},
	}))

	return NewDispatcher(r, nil)
}

func TestDispatchReturnsOneResultPerCallInOrder(t *testing.T) {
	d := testDispatcher(t)

	calls := []chat.ToolCall{
		{ID: "c1", Name: "echo", RawArgs: `{"text":"first"}`},
		{ID: "c2", Name: "broken", RawArgs: `{}`},
		{ID: "c3", Name: "echo", RawArgs: `{"text":"third"}`},
	}

	results := d.Dispatch(context.Background(), calls)
	require.Len(t, results, 3)

	assert.Equal(t, "c1", results[0].ToolCallID)
	assert.Equal(t, "c2", results[1].ToolCallID)
	assert.Equal(t, "c3", results[2].ToolCallID)

	assert.Equal(t, "first", results[0].Text)
	assert.Equal(t, "Error executing tool 'broken': backend offline", results[1].Text)
	assert.Equal(t, "third", results[2].Text)

	for _, turn := range results {
		assert.Equal(t, chat.RoleTool, turn.Role)
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	d := testDispatcher(t)

	results := d.Dispatch(context.Background(), []chat.ToolCall{
		{ID: "c1", Name: "teleport_order", RawArgs: `{}`},
	})

	require.Len(t, results, 1)
	assert.Equal(t, "Tool 'teleport_order' not found", results[0].Text)
	assert.Equal(t, "c1", results[0].ToolCallID)
}

func TestDispatchMalformedArguments(t *testing.T) {
	d := testDispatcher(t)

	results := d.Dispatch(context.Background(), []chat.ToolCall{
		{ID: "c1", Name: "echo", RawArgs: `{"text":`},
	})

	require.Len(t, results, 1)
	assert.Contains(t, results[0].Text, "Error executing tool 'echo'")
}

func TestDispatchRecoversFromPanic(t *testing.T) {
	d := testDispatcher(t)

	results := d.Dispatch(context.Background(), []chat.ToolCall{
		{ID: "c1", Name: "panicky", RawArgs: `{}`},
		{ID: "c2", Name: "echo", RawArgs: `{"text":"still here"}`},
	})

	require.Len(t, results, 2)
	assert.Contains(t, results[0].Text, "Error executing tool 'panicky'")
	assert.Contains(t, results[0].Text, "unexpected nil")
	assert.Equal(t, "still here", results[1].Text)
}

func TestDispatchStringResultVerbatim(t *testing.T) {
	d := testDispatcher(t)

	results := d.Dispatch(context.Background(), []chat.ToolCall{
		{ID: "c1", Name: "echo", RawArgs: `{"text":"plain text, no quotes added"}`},
	})

	require.Len(t, results, 1)
	assert.Equal(t, "plain text, no quotes added", results[0].Text)
}

func TestDispatchStructResultSerialized(t *testing.T) {
	d := testDispatcher(t)

	results := d.Dispatch(context.Background(), []chat.ToolCall{
		{ID: "a1", Name: "stock", RawArgs: `{}`},
	})

	require.Len(t, results, 1)
	assert.Equal(t, "a1", results[0].ToolCallID)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(results[0].Text), &decoded))
	assert.Equal(t, "SOBP001", decoded["sku"])
	assert.Equal(t, true, decoded["in_stock"])
}

func TestDispatchEmptyBatch(t *testing.T) {
	d := testDispatcher(t)
	assert.Empty(t, d.Dispatch(context.Background(), nil))
}

func TestDispatchManyCalls(t *testing.T) {
	d := testDispatcher(t)

	var calls []chat.ToolCall
	for i := 0; i < 10; i++ {
		calls = append(calls, chat.ToolCall{
			ID:      fmt.Sprintf("c%d", i),
			Name:    "echo",
			RawArgs: fmt.Sprintf(`{"text":"msg-%d"}`, i),
		})
	}

	results := d.Dispatch(context.Background(), calls)
	require.Len(t, results, 10)
	for i, turn := range results {
		assert.Equal(t, fmt.Sprintf("c%d", i), turn.ToolCallID)
		assert.Equal(t, fmt.Sprintf("msg-%d", i), turn.Text)
	}
}
