package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"newsdigest/internal/domain"
	"newsdigest/internal/metrics"
)

// ErrUnknownTool is returned when a call names a tool that was never registered.
var ErrUnknownTool = errors.New("unknown tool")

// Handler executes one tool call with its raw JSON arguments.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Tool describes a callable operation exposed to the classification actor.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
	Handler     Handler        `json:"-"`
}

// Registry keeps a mapping from tool names to their implementations.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: map[string]Tool{}}
}

// Register adds or replaces a tool.
func (r *Registry) Register(tool Tool) {
	if r.tools == nil {
		r.tools = map[string]Tool{}
	}
	r.tools[tool.Name] = tool
}

// Resolve returns a tool by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Tool, error) {
	if tool, ok := r.tools[name]; ok {
		return tool, nil
	}
	return Tool{}, fmt.Errorf("%w: %s is not registered", ErrUnknownTool, name)
}

// List returns registered tools ordered by name.
func (r *Registry) List() []Tool {
	out := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		out = append(out, tool)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Call resolves and runs a tool, recording its outcome.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) (any, error) {
	tool, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	result, err := tool.Handler(ctx, args)
	metrics.RecordToolCall(name, callStatus(err), time.Since(started).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return result, nil
}

func callStatus(err error) string {
	if err == nil {
		return "ok"
	}
	if _, ok := domain.AsValidationError(err); ok {
		return "rejected"
	}
	return "error"
}

// decodeArgs unmarshals tool arguments; an empty body decodes to the zero value.
func decodeArgs(args json.RawMessage, into any) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, into); err != nil {
		return domain.NewValidationError("arguments", "malformed JSON arguments: %v", err)
	}
	return nil
}
