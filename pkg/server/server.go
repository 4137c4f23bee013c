package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	mcperrors "github.com/ajitpratap0/logic-gates-mcp/pkg/errors"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/logging"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/observability"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/protocol"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/transport"
)

// Server binds a ToolsProvider to a transport and answers the MCP
// lifecycle and tool methods
type Server struct {
	transport    transport.Transport
	name         string
	version      string
	instructions string

	tools         []Tool
	toolsProvider ToolsProvider

	logger  logging.Logger
	metrics observability.MetricsProvider
	tracing *observability.TracingProvider

	// Server state
	initialized     bool
	initializedLock sync.RWMutex
	clientInfo      *protocol.Implementation
	protocolVersion string
}

// ServerOption defines options for creating a server
type ServerOption func(*Server)

// WithName sets the server name reported by initialize
func WithName(name string) ServerOption {
	return func(s *Server) {
		s.name = name
	}
}

// WithVersion sets the server version reported by initialize
func WithVersion(version string) ServerOption {
	return func(s *Server) {
		s.version = version
	}
}

// WithInstructions sets the usage hint returned to clients on initialize
func WithInstructions(instructions string) ServerOption {
	return func(s *Server) {
		s.instructions = instructions
	}
}

// WithTools registers tools in a Registry served by a Dispatcher
func WithTools(tools ...Tool) ServerOption {
	return func(s *Server) {
		s.tools = append(s.tools, tools...)
	}
}

// WithToolsProvider serves tools from provider instead of a Registry
func WithToolsProvider(provider ToolsProvider) ServerOption {
	return func(s *Server) {
		s.toolsProvider = provider
	}
}

// WithLogger sets the logger
func WithLogger(logger logging.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics records request and tool call metrics with provider
func WithMetrics(provider observability.MetricsProvider) ServerOption {
	return func(s *Server) {
		s.metrics = provider
	}
}

// WithTracing wraps every request in a span started by provider
func WithTracing(provider *observability.TracingProvider) ServerOption {
	return func(s *Server) {
		s.tracing = provider
	}
}

// New creates a server on t and registers its handlers. Tools come either
// from WithTools or from WithToolsProvider, not both.
func New(t transport.Transport, options ...ServerOption) (*Server, error) {
	s := &Server{
		transport: t,
		name:      "logic-gates",
		version:   "1.0.0",
	}

	for _, option := range options {
		option(s)
	}

	if s.logger == nil {
		s.logger = logging.GetGlobalLogger()
	}
	s.logger = s.logger.WithFields(logging.String("component", "Server"))

	if s.toolsProvider != nil && len(s.tools) > 0 {
		return nil, mcperrors.InvalidConfiguration("tools", "", "WithTools and WithToolsProvider cannot be combined")
	}
	if s.toolsProvider == nil {
		registry, err := NewRegistry(s.tools...)
		if err != nil {
			return nil, err
		}
		s.toolsProvider = NewDispatcher(registry)
	}

	t.RegisterRequestHandler(protocol.MethodInitialize, s.instrument(protocol.MethodInitialize, s.handleInitialize))
	t.RegisterNotificationHandler(protocol.MethodInitialized, s.handleInitialized)
	t.RegisterNotificationHandler(protocol.MethodCancelled, s.handleCancelled)
	t.RegisterRequestHandler(protocol.MethodPing, s.instrument(protocol.MethodPing, s.handlePing))
	t.RegisterRequestHandler(protocol.MethodListTools, s.instrument(protocol.MethodListTools, s.handleListTools))
	t.RegisterRequestHandler(protocol.MethodCallTool, s.instrument(protocol.MethodCallTool, s.handleCallTool))

	return s, nil
}

// Start initializes and starts the transport (blocking)
func (s *Server) Start(ctx context.Context) error {
	if err := s.transport.Initialize(ctx); err != nil {
		return mcperrors.TransportError("server", "initialization", err).
			WithContext(&mcperrors.Context{
				Component: "Server",
				Operation: "Start",
				Timestamp: time.Now(),
			}).
			WithDetail(fmt.Sprintf("Transport type: %T", s.transport))
	}

	s.logger.Info("Server starting",
		logging.String("name", s.name),
		logging.String("version", s.version),
		logging.String("transport", fmt.Sprintf("%T", s.transport)),
	)

	return s.transport.Start(ctx)
}

// Stop shuts the transport down
func (s *Server) Stop(ctx context.Context) error {
	return s.transport.Stop(ctx)
}

// ToolsProvider returns the provider answering tools/list and tools/call
func (s *Server) ToolsProvider() ToolsProvider {
	return s.toolsProvider
}

// IsInitialized reports whether a client has completed initialize
func (s *Server) IsInitialized() bool {
	s.initializedLock.RLock()
	defer s.initializedLock.RUnlock()
	return s.initialized
}

// ClientInfo returns the client identity sent with initialize, or nil
func (s *Server) ClientInfo() *protocol.Implementation {
	s.initializedLock.RLock()
	defer s.initializedLock.RUnlock()
	return s.clientInfo
}

// instrument wraps a request handler with a span, request metrics and
// failure logging
func (s *Server) instrument(method string, handler transport.RequestHandler) transport.RequestHandler {
	return func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		start := time.Now()

		if s.tracing != nil {
			var span trace.Span
			ctx, span = s.tracing.StartMethodSpan(ctx, method)
			defer span.End()
		}

		result, err := handler(ctx, params)

		status := "success"
		if err != nil {
			status = observability.ErrorType(err)
			if s.tracing != nil {
				s.tracing.RecordError(ctx, err)
			}
			if s.metrics != nil {
				s.metrics.RecordError(ctx, status, method)
			}
			s.logger.WithContext(ctx).WithError(err).Warn("Request failed", logging.String("method", method))
		}
		if s.metrics != nil {
			s.metrics.RecordIncomingRequest(ctx, method, status, time.Since(start))
		}

		return result, err
	}
}

// decodeParams unmarshals params into target. Absent params leave target
// at its zero value.
func decodeParams(method string, params json.RawMessage, target interface{}) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, target); err != nil {
		return mcperrors.CreateInvalidParamsError(method, nil, err.Error())
	}
	return nil
}

func (s *Server) handleInitialize(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var initParams protocol.InitializeParams
	if err := decodeParams(protocol.MethodInitialize, params, &initParams); err != nil {
		return nil, err
	}

	version := protocol.NegotiateProtocolVersion(initParams.ProtocolVersion)

	s.initializedLock.Lock()
	clientInfo := initParams.ClientInfo
	s.clientInfo = &clientInfo
	s.protocolVersion = version
	s.initializedLock.Unlock()

	s.logger.WithContext(ctx).Info("Initializing connection",
		logging.String("client", clientInfo.Name),
		logging.String("client_version", clientInfo.Version),
		logging.String("protocol_version", version),
	)

	return &protocol.InitializeResult{
		ProtocolVersion: version,
		Capabilities: protocol.ServerCapabilities{
			Tools: &protocol.ToolsCapability{},
		},
		ServerInfo: protocol.Implementation{
			Name:    s.name,
			Version: s.version,
		},
		Instructions: s.instructions,
	}, nil
}

func (s *Server) handleInitialized(ctx context.Context, params json.RawMessage) error {
	s.initializedLock.Lock()
	s.initialized = true
	s.initializedLock.Unlock()

	s.logger.Info("Connection initialized")
	return nil
}

// Tool calls run to completion synchronously, so there is nothing to abort.
func (s *Server) handleCancelled(ctx context.Context, params json.RawMessage) error {
	s.logger.Debug("Ignoring cancellation notice", logging.String("params", string(params)))
	return nil
}

func (s *Server) handlePing(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return &protocol.PingResult{}, nil
}

func (s *Server) handleListTools(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var listParams protocol.ListToolsParams
	if err := decodeParams(protocol.MethodListTools, params, &listParams); err != nil {
		return nil, err
	}

	return &protocol.ListToolsResult{Tools: s.toolsProvider.ListTools(ctx)}, nil
}

func (s *Server) handleCallTool(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var callParams protocol.CallToolParams
	if err := decodeParams(protocol.MethodCallTool, params, &callParams); err != nil {
		return nil, err
	}

	start := time.Now()
	result, failure := s.toolsProvider.Dispatch(ctx, callParams.Name, callParams.Arguments)

	status := "success"
	if failure != nil {
		status = string(failure.Category())
		s.logger.WithContext(ctx).WithError(failure).Warn("Tool call failed",
			logging.String("tool", callParams.Name),
		)
	}

	if s.tracing != nil {
		s.tracing.SetAttributes(ctx,
			observability.AttrToolName.String(callParams.Name),
			observability.AttrToolIsError.Bool(result.IsError),
		)
		if failure != nil {
			s.tracing.SetAttributes(ctx, observability.AttrErrorCategory.String(string(failure.Category())))
		}
	}
	if s.metrics != nil {
		s.metrics.RecordToolCall(ctx, callParams.Name, status, time.Since(start))
	}

	return result, nil
}
