package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lumenlearn/lumen/internal/domain"
)

// Argument kinds a tool schema can require.
const (
	ArgString = "string"
	ArgNumber = "number"
)

// ArgSpec declares one tool argument.
type ArgSpec struct {
	Name     string
	Kind     string
	Required bool
}

// Handler executes a tool. The returned value is JSON-marshaled into
// the trace.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Tool is a named, schema-validated function the orchestrator may
// invoke. Arguments are validated against Schema before Handler runs.
type Tool struct {
	Name    string
	Schema  []ArgSpec
	Handler Handler
}

// Registry maps tool names to their schema and handler. Registration
// happens once at startup; lookups are read-only afterwards.
type Registry struct {
	tools       map[string]Tool
	invocations *prometheus.CounterVec
}

func NewRegistry(invocations *prometheus.CounterVec) *Registry {
	return &Registry{tools: map[string]Tool{}, invocations: invocations}
}

// Register adds a tool. Duplicate names are a wiring bug.
func (r *Registry) Register(t Tool) error {
	if _, ok := r.tools[t.Name]; ok {
		return fmt.Errorf("tool %q already registered", t.Name)
	}
	r.tools[t.Name] = t
	return nil
}

// Invoke validates args against the tool's schema and dispatches.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTool, name)
	}

	if err := validateArgs(tool.Schema, args); err != nil {
		r.incInvocation(name, "invalid_args")
		return nil, err
	}

	result, err := tool.Handler(ctx, args)
	if err != nil {
		r.incInvocation(name, "error")
		return nil, err
	}
	r.incInvocation(name, "ok")

	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal %s result: %w", name, err)
	}
	return data, nil
}

func (r *Registry) incInvocation(tool, status string) {
	if r.invocations != nil {
		r.invocations.WithLabelValues(tool, status).Inc()
	}
}

func validateArgs(schema []ArgSpec, args json.RawMessage) error {
	var m map[string]any
	if err := json.Unmarshal(args, &m); err != nil {
		return fmt.Errorf("%w: not a JSON object: %v", domain.ErrInvalidArguments, err)
	}

	for _, spec := range schema {
		v, present := m[spec.Name]
		if !present {
			if spec.Required {
				return fmt.Errorf("%w: missing %s", domain.ErrInvalidArguments, spec.Name)
			}
			continue
		}
		switch spec.Kind {
		case ArgString:
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("%w: %s must be a string", domain.ErrInvalidArguments, spec.Name)
			}
			if spec.Required && s == "" {
				return fmt.Errorf("%w: %s must not be empty", domain.ErrInvalidArguments, spec.Name)
			}
		case ArgNumber:
			if _, ok := v.(float64); !ok {
				return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidArguments, spec.Name)
			}
		}
	}
	return nil
}
