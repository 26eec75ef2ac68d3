// Package tools provides the tool registry and dispatcher the
// conversation engine uses to execute model-requested tool calls.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"
)

var (
	// ErrDuplicateTool is returned when registering a name twice.
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrUnknownTool is returned when resolving an unregistered name.
	ErrUnknownTool = errors.New("unknown tool")
)

// RunFunc executes a tool. It receives the raw serialized arguments
// from the model and returns either a string (used verbatim as the
// result text) or any JSON-serializable value.
type RunFunc func(ctx context.Context, args json.RawMessage) (any, error)

// Spec describes one registered tool: its name, the description and
// parameter schema advertised to the model, and the implementation.
type Spec struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
	Run         RunFunc
}

// Registry maps tool names to specs. Registration happens once at
// startup before the first send; the registry is immutable afterwards
// and safe to share read-only across engines.
type Registry struct {
	specs map[string]Spec
	order []string
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		specs: make(map[string]Spec),
	}
}

// Register adds a tool spec. Registering an already-taken name fails
// with ErrDuplicateTool.
func (r *Registry) Register(spec Spec) error {
	if spec.Name == "" {
		return fmt.Errorf("register tool: name must not be empty")
	}
	if spec.Run == nil {
		return fmt.Errorf("register tool %q: implementation must not be nil", spec.Name)
	}
	if _, exists := r.specs[spec.Name]; exists {
		return fmt.Errorf("register tool %q: %w", spec.Name, ErrDuplicateTool)
	}

	r.specs[spec.Name] = spec
	r.order = append(r.order, spec.Name)
	return nil
}

// Resolve looks up a tool by name, failing with ErrUnknownTool when
// the name was never registered.
func (r *Registry) Resolve(name string) (Spec, error) {
	spec, ok := r.specs[name]
	if !ok {
		return Spec{}, fmt.Errorf("resolve tool %q: %w", name, ErrUnknownTool)
	}
	return spec, nil
}

// Specs returns all registered specs in registration order, so the
// schema list sent to the provider is deterministic.
func (r *Registry) Specs() []Spec {
	out := make([]Spec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.specs[name])
	}
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.specs)
}
