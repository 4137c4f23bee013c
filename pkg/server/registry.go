package server

import (
	"context"

	mcperrors "github.com/ajitpratap0/logic-gates-mcp/pkg/errors"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/protocol"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/schema"
)

// Handler computes the textual result of a tool from arguments that have
// already passed the tool's input schema
type Handler func(ctx context.Context, args schema.Values) (string, error)

// Tool is a named operation exposed through tools/list and tools/call
type Tool struct {
	Name        string
	Description string
	InputSchema *schema.Schema
	Handler     Handler
}

// Registry is the fixed set of tools known to a server. It is built once
// and never mutated, so it is safe for concurrent use.
type Registry struct {
	tools       []Tool
	index       map[string]int
	descriptors []protocol.Tool
}

// NewRegistry builds a registry from tools, keeping their order for
// discovery. Names must be unique and every tool needs a schema and a
// handler.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{
		tools:       make([]Tool, 0, len(tools)),
		index:       make(map[string]int, len(tools)),
		descriptors: make([]protocol.Tool, 0, len(tools)),
	}

	for _, tool := range tools {
		switch {
		case tool.Name == "":
			return nil, mcperrors.ToolRegistrationFailed(tool.Name, "name is empty")
		case tool.InputSchema == nil:
			return nil, mcperrors.ToolRegistrationFailed(tool.Name, "input schema is nil")
		case tool.Handler == nil:
			return nil, mcperrors.ToolRegistrationFailed(tool.Name, "handler is nil")
		}
		if _, exists := r.index[tool.Name]; exists {
			return nil, mcperrors.ToolRegistrationFailed(tool.Name, "duplicate name")
		}

		r.index[tool.Name] = len(r.tools)
		r.tools = append(r.tools, tool)
		r.descriptors = append(r.descriptors, protocol.Tool{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: tool.InputSchema.Descriptor(),
		})
	}

	return r, nil
}

// List returns the discovery descriptors in registration order
func (r *Registry) List() []protocol.Tool {
	return append([]protocol.Tool(nil), r.descriptors...)
}

// Lookup finds a tool by name
func (r *Registry) Lookup(name string) (Tool, error) {
	i, ok := r.index[name]
	if !ok {
		return Tool{}, mcperrors.UnknownTool(name)
	}
	return r.tools[i], nil
}

// Len returns the number of registered tools
func (r *Registry) Len() int {
	return len(r.tools)
}
