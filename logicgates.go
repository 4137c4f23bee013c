package logicgates

import (
	"github.com/ajitpratap0/logic-gates-mcp/pkg/gates"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/server"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/transport"
)

// Server identity reported by initialize
const (
	Name    = "logic-gates"
	Version = "1.0.0"
)

// Transport constructors
var (
	NewStdioTransport = transport.NewStdioTransport
	NewHTTPTransport  = transport.NewHTTPTransport
)

// Server options
var (
	WithInstructions = server.WithInstructions
	WithLogger       = server.WithLogger
	WithMetrics      = server.WithMetrics
	WithTracing      = server.WithTracing
)

// NewServer creates a server on t with the gate tools registered. Options
// are applied after the defaults, so WithName and WithVersion still
// override the identity.
func NewServer(t transport.Transport, opts ...server.ServerOption) (*server.Server, error) {
	options := []server.ServerOption{
		server.WithName(Name),
		server.WithVersion(Version),
		server.WithTools(gates.Tools()...),
	}
	return server.New(t, append(options, opts...)...)
}
