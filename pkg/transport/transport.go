// Package transport carries JSON-RPC 2.0 messages between an MCP client
// and the server.
//
// Transports are created from a TransportConfig:
//
//	config := transport.DefaultTransportConfig(transport.TransportTypeHTTP)
//	config.HTTP.Addr = ":8080"
//	t, err := transport.NewTransport(config)
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	mcperrors "github.com/ajitpratap0/logic-gates-mcp/pkg/errors"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/logging"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/protocol"
)

// Transport is the server side of an MCP connection. It decodes inbound
// messages, routes them to registered handlers and writes the replies.
type Transport interface {
	// Initialize prepares the transport for use
	Initialize(ctx context.Context) error

	// Handler registration
	RegisterRequestHandler(method string, handler RequestHandler)
	RegisterNotificationHandler(method string, handler NotificationHandler)

	// Lifecycle management. Start blocks until the transport stops.
	Start(ctx context.Context) error
	Stop(ctx context.Context) error

	// Message handling
	HandleRequest(ctx context.Context, request *protocol.Request) (*protocol.Response, error)
	HandleNotification(ctx context.Context, notification *protocol.Notification) error
	HandleMessage(ctx context.Context, data []byte) ([]byte, error)
}

// RequestHandler handles incoming requests
type RequestHandler func(ctx context.Context, params json.RawMessage) (interface{}, error)

// NotificationHandler handles incoming notifications
type NotificationHandler func(ctx context.Context, params json.RawMessage) error

// TransportType identifies the transport implementation
type TransportType string

const (
	TransportTypeStdio TransportType = "stdio"
	TransportTypeHTTP  TransportType = "http"
)

// TransportConfig is the unified configuration for all transports
type TransportConfig struct {
	// Type of transport to create
	Type TransportType `json:"type"`

	// Custom reader and writer for stdio; default to os.Stdin and os.Stdout
	StdioReader io.Reader `json:"-"`
	StdioWriter io.Writer `json:"-"`

	HTTP        HTTPConfig        `json:"http"`
	Performance PerformanceConfig `json:"performance"`

	// Logger receives transport diagnostics; nil discards them
	Logger logging.Logger `json:"-"`
}

// HTTPConfig configures the HTTP transport
type HTTPConfig struct {
	Addr              string        `json:"addr"`
	Path              string        `json:"path"`
	AllowedOrigins    []string      `json:"allowed_origins,omitempty"`
	ReadHeaderTimeout time.Duration `json:"read_header_timeout"`
	ReadTimeout       time.Duration `json:"read_timeout"`
	WriteTimeout      time.Duration `json:"write_timeout"`
	IdleTimeout       time.Duration `json:"idle_timeout"`

	// ShutdownTimeout bounds the graceful shutdown started by context
	// cancellation
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// PerformanceConfig bounds message processing
type PerformanceConfig struct {
	// MaxMessageSize is the largest accepted message in bytes
	MaxMessageSize int `json:"max_message_size"`
	// RequestTimeout bounds the handling of a single message; zero disables it
	RequestTimeout time.Duration `json:"request_timeout"`
}

// Errors
var (
	ErrUnsupportedMethod        = errors.New("unsupported method")
	ErrUnsupportedTransportType = errors.New("unsupported transport type")
)

// DefaultTransportConfig returns a transport configuration with sensible defaults
func DefaultTransportConfig(transportType TransportType) TransportConfig {
	return TransportConfig{
		Type: transportType,
		HTTP: HTTPConfig{
			Addr:              ":8080",
			Path:              "/mcp",
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
			ShutdownTimeout:   5 * time.Second,
		},
		Performance: PerformanceConfig{
			MaxMessageSize: 4 << 20,
			RequestTimeout: 30 * time.Second,
		},
	}
}

// NewTransport creates a new transport with the specified configuration
func NewTransport(config TransportConfig) (Transport, error) {
	if err := validateTransportConfig(config); err != nil {
		return nil, err
	}

	switch config.Type {
	case TransportTypeStdio:
		return NewStdioTransport(config), nil
	case TransportTypeHTTP:
		return NewHTTPTransport(config), nil
	default:
		return nil, ErrUnsupportedTransportType
	}
}

func validateTransportConfig(config TransportConfig) error {
	switch config.Type {
	case TransportTypeStdio:
		return nil
	case TransportTypeHTTP:
		if config.HTTP.Addr == "" {
			return mcperrors.InvalidConfiguration("http.addr", "", "address is required for the HTTP transport")
		}
		if config.HTTP.Path == "" || config.HTTP.Path[0] != '/' {
			return mcperrors.InvalidConfiguration("http.path", config.HTTP.Path, "path must start with /")
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedTransportType, config.Type)
	}
}

// BaseTransport provides handler registration and message routing shared
// by all transports
type BaseTransport struct {
	sync.RWMutex
	requestHandlers      map[string]RequestHandler
	notificationHandlers map[string]NotificationHandler
	logger               logging.Logger
}

// NewBaseTransport creates a new BaseTransport. A nil logger discards
// diagnostics.
func NewBaseTransport(logger logging.Logger) *BaseTransport {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &BaseTransport{
		requestHandlers:      make(map[string]RequestHandler),
		notificationHandlers: make(map[string]NotificationHandler),
		logger:               logger,
	}
}

// RegisterRequestHandler registers a handler for incoming requests
func (t *BaseTransport) RegisterRequestHandler(method string, handler RequestHandler) {
	t.Lock()
	defer t.Unlock()
	t.requestHandlers[method] = handler
}

// RegisterNotificationHandler registers a handler for incoming notifications
func (t *BaseTransport) RegisterNotificationHandler(method string, handler NotificationHandler) {
	t.Lock()
	defer t.Unlock()
	t.notificationHandlers[method] = handler
}

// HandleRequest processes an incoming request with panic recovery. Handler
// failures are returned as JSON-RPC error responses; the error result is
// reserved for requests no handler is registered for.
func (t *BaseTransport) HandleRequest(ctx context.Context, request *protocol.Request) (resp *protocol.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.WithContext(ctx).Error("Panic while handling request",
				logging.String("method", request.Method),
				logging.Any("panic", r),
			)
			resp = protocol.NewErrorResponse(request.ID, protocol.InternalError,
				fmt.Sprintf("Internal server error processing %s", request.Method), nil)
			err = nil
		}
	}()

	t.RLock()
	handler, ok := t.requestHandlers[request.Method]
	t.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, request.Method)
	}

	result, handlerErr := handler(ctx, request.Params)
	if handlerErr != nil {
		return mcperrors.ToJSONRPCResponse(handlerErr, request.ID), nil
	}

	resp, marshalErr := protocol.NewResponse(request.ID, result)
	if marshalErr != nil {
		return mcperrors.ToJSONRPCResponse(mcperrors.CreateInternalError("marshal_result", marshalErr), request.ID), nil
	}
	return resp, nil
}

// HandleNotification processes an incoming notification with panic recovery
func (t *BaseTransport) HandleNotification(ctx context.Context, notification *protocol.Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error processing notification %s: %v", notification.Method, r)
		}
	}()

	t.RLock()
	handler, ok := t.notificationHandlers[notification.Method]
	t.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedMethod, notification.Method)
	}

	return handler(ctx, notification.Params)
}

// HandleMessage decodes a single message or a batch, dispatches it and
// returns the encoded reply. The reply is nil when the input held only
// notifications or responses.
func (t *BaseTransport) HandleMessage(ctx context.Context, data []byte) ([]byte, error) {
	if !protocol.IsBatch(data) {
		resp := t.handleSingle(ctx, data)
		if resp == nil {
			return nil, nil
		}
		return json.Marshal(resp)
	}

	items, err := protocol.ParseBatch(data)
	if err != nil {
		return json.Marshal(parseErrorResponse(err))
	}
	if len(items) == 0 {
		return json.Marshal(mcperrors.ToJSONRPCResponse(mcperrors.CreateInvalidRequestError("empty batch"), nil))
	}

	responses := make([]*protocol.Response, 0, len(items))
	for _, item := range items {
		if resp := t.handleSingle(ctx, item); resp != nil {
			responses = append(responses, resp)
		}
	}
	if len(responses) == 0 {
		return nil, nil
	}
	return json.Marshal(responses)
}

func (t *BaseTransport) handleSingle(ctx context.Context, data []byte) *protocol.Response {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) || !json.Valid(bytes.TrimSpace(data)) {
			return parseErrorResponse(err)
		}
		return mcperrors.ToJSONRPCResponse(mcperrors.CreateInvalidRequestError(err.Error()), nil)
	}

	if err := msg.Validate(); err != nil {
		return mcperrors.ToJSONRPCResponse(mcperrors.CreateInvalidRequestError(err.Error()), msg.RequestID())
	}

	switch {
	case msg.IsRequest():
		req := msg.ToRequest()
		resp, err := t.HandleRequest(ctx, req)
		if err != nil {
			if errors.Is(err, ErrUnsupportedMethod) {
				return mcperrors.ToJSONRPCResponse(mcperrors.CreateMethodNotFoundError(req.Method, req.ID), req.ID)
			}
			return mcperrors.ToJSONRPCResponse(err, req.ID)
		}
		return resp

	case msg.IsNotification():
		notif := msg.ToNotification()
		if err := t.HandleNotification(ctx, notif); err != nil {
			if errors.Is(err, ErrUnsupportedMethod) {
				t.logger.Debug("Ignoring notification for unregistered method", logging.String("method", notif.Method))
			} else {
				t.logger.WithContext(ctx).WithError(err).Warn("Notification handler failed", logging.String("method", notif.Method))
			}
		}
		return nil

	default:
		// Responses to server-initiated requests; the server never sends any.
		t.logger.Debug("Ignoring unsolicited response")
		return nil
	}
}

func parseErrorResponse(err error) *protocol.Response {
	return mcperrors.ToJSONRPCResponse(mcperrors.CreateParseError(err.Error()), nil)
}
