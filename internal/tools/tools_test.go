package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopRun(context.Context, json.RawMessage) (any, error) {
	return "ok", nil
}

func TestRegistryRegisterAndResolve(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Spec{Name: "lookup_order", Description: "Look up an order", Run: noopRun}))

	spec, err := r.Resolve("lookup_order")
	require.NoError(t, err)
	assert.Equal(t, "lookup_order", spec.Name)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Spec{Name: "lookup_order", Run: noopRun}))

	err := r.Register(Spec{Name: "lookup_order", Run: noopRun})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateTool)
}

func TestRegistryUnknownTool(t *testing.T) {
	r := NewRegistry()

	_, err := r.Resolve("teleport_order")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestRegistryRejectsInvalidSpecs(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(Spec{Name: "", Run: noopRun}))
	assert.Error(t, r.Register(Spec{Name: "no_impl"}))
}

func TestRegistrySpecsKeepRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"lookup_order", "check_promotional_discount", "recommend_products"} {
		require.NoError(t, r.Register(Spec{Name: name, Run: noopRun}))
	}

	specs := r.Specs()
	require.Len(t, specs, 3)
	assert.Equal(t, "lookup_order", specs[0].Name)
	assert.Equal(t, "check_promotional_discount", specs[1].Name)
	assert.Equal(t, "recommend_products", specs[2].Name)
}
