package server

import (
	"context"
	"encoding/json"

	mcperrors "github.com/ajitpratap0/logic-gates-mcp/pkg/errors"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/protocol"
)

// ToolsProvider answers the tool methods of the protocol
type ToolsProvider interface {
	// ListTools returns every available tool
	ListTools(ctx context.Context) []protocol.Tool

	// Dispatch executes a tool call and returns the result envelope together
	// with the failure it reports, if any. The envelope is never nil.
	Dispatch(ctx context.Context, name string, args json.RawMessage) (*protocol.CallToolResult, mcperrors.MCPError)
}

// Dispatcher routes tool calls through a Registry. Failures of any kind
// are reported inside the result envelope; nothing escapes as a Go error
// or a panic.
type Dispatcher struct {
	registry *Registry
}

// NewDispatcher creates a dispatcher over registry
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Registry returns the registry the dispatcher routes to
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// HandleList answers a discovery request
func (d *Dispatcher) HandleList() *protocol.ListToolsResult {
	return &protocol.ListToolsResult{Tools: d.registry.List()}
}

// ListTools implements ToolsProvider
func (d *Dispatcher) ListTools(ctx context.Context) []protocol.Tool {
	return d.registry.List()
}

// HandleCall answers a tool call. It is Dispatch without the classified
// failure.
func (d *Dispatcher) HandleCall(ctx context.Context, name string, args json.RawMessage) *protocol.CallToolResult {
	result, _ := d.Dispatch(ctx, name, args)
	return result
}

// Dispatch looks up name, validates args against the tool's schema and runs
// its handler. Unknown tools and invalid arguments are rendered with their
// own message; handler errors and panics are prefixed with "Error: ".
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args json.RawMessage) (result *protocol.CallToolResult, failure mcperrors.MCPError) {
	defer func() {
		if r := recover(); r != nil {
			failure = mcperrors.HandlerPanic(name, r)
			result = renderFailure(failure)
		}
	}()

	tool, err := d.registry.Lookup(name)
	if err != nil {
		failure = mcperrors.ConvertStandardError(err)
		return protocol.NewErrorResult(failure.Message()), failure
	}

	values, err := tool.InputSchema.Validate(args)
	if err != nil {
		failure = mcperrors.InvalidArguments(name, err)
		return protocol.NewErrorResult(failure.Message()), failure
	}

	if err := ctx.Err(); err != nil {
		failure = mcperrors.ConvertStandardError(err).WithContext(&mcperrors.Context{ToolName: name, Operation: "execute"})
		return renderFailure(failure), failure
	}

	text, err := tool.Handler(ctx, values)
	if err != nil {
		failure = mcperrors.HandlerFailure(name, err)
		return renderFailure(failure), failure
	}

	return protocol.NewTextResult(text), nil
}

func renderFailure(err mcperrors.MCPError) *protocol.CallToolResult {
	return protocol.NewErrorResult("Error: " + err.Message())
}
