package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	mcperrors "github.com/ajitpratap0/logic-gates-mcp/pkg/errors"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/logging"
)

// HTTPTransport serves JSON-RPC messages posted to a single endpoint.
// Every POST carries one message or batch and receives the reply in the
// response body.
type HTTPTransport struct {
	*BaseTransport
	config         HTTPConfig
	maxMessageSize int
	requestTimeout time.Duration

	router      *chi.Mux
	middlewares []func(http.Handler) http.Handler
	routes      []route

	mu      sync.Mutex
	server  *http.Server
	running bool
}

type route struct {
	pattern string
	handler http.Handler
}

// HTTPOption customizes an HTTPTransport
type HTTPOption func(*HTTPTransport)

// WithMiddleware appends middleware that runs after request ID assignment
// and access logging
func WithMiddleware(mw ...func(http.Handler) http.Handler) HTTPOption {
	return func(t *HTTPTransport) {
		t.middlewares = append(t.middlewares, mw...)
	}
}

// WithRoute serves handler on pattern next to the MCP endpoint
func WithRoute(pattern string, handler http.Handler) HTTPOption {
	return func(t *HTTPTransport) {
		t.routes = append(t.routes, route{pattern: pattern, handler: handler})
	}
}

// NewHTTPTransport creates an HTTP transport from config
func NewHTTPTransport(config TransportConfig, opts ...HTTPOption) *HTTPTransport {
	defaults := DefaultTransportConfig(TransportTypeHTTP)
	if config.HTTP.Addr == "" {
		config.HTTP.Addr = defaults.HTTP.Addr
	}
	if config.HTTP.Path == "" {
		config.HTTP.Path = defaults.HTTP.Path
	}
	if config.HTTP.ShutdownTimeout <= 0 {
		config.HTTP.ShutdownTimeout = defaults.HTTP.ShutdownTimeout
	}
	if config.Performance.MaxMessageSize <= 0 {
		config.Performance.MaxMessageSize = defaults.Performance.MaxMessageSize
	}

	logger := config.Logger
	if logger != nil {
		logger = logger.WithFields(logging.String("component", "HTTPTransport"))
	}

	t := &HTTPTransport{
		BaseTransport:  NewBaseTransport(logger),
		config:         config.HTTP,
		maxMessageSize: config.Performance.MaxMessageSize,
		requestTimeout: config.Performance.RequestTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.router = t.buildRouter()
	return t
}

func (t *HTTPTransport) buildRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(logging.RequestIDMiddleware(logging.UUIDGenerator{}))
	r.Use(logging.HTTPMiddleware(t.logger))
	r.Use(middleware.Recoverer)
	for _, mw := range t.middlewares {
		r.Use(mw)
	}

	r.Get("/health", t.handleHealth)
	r.With(t.checkOrigin).Post(t.config.Path, t.handlePost)
	for _, rt := range t.routes {
		r.Handle(rt.pattern, rt.handler)
	}
	return r
}

// Handler returns the transport's router
func (t *HTTPTransport) Handler() http.Handler {
	return t.router
}

// Addr returns the configured listen address
func (t *HTTPTransport) Addr() string {
	return t.config.Addr
}

// Initialize is a no-op; the listener is opened by Start
func (t *HTTPTransport) Initialize(ctx context.Context) error {
	return nil
}

// Start listens on the configured address and serves until ctx is done or
// Stop is called
func (t *HTTPTransport) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return mcperrors.TransportAlreadyRunning("http")
	}
	server := &http.Server{
		Addr:              t.config.Addr,
		Handler:           t.router,
		ReadHeaderTimeout: t.config.ReadHeaderTimeout,
		ReadTimeout:       t.config.ReadTimeout,
		WriteTimeout:      t.config.WriteTimeout,
		IdleTimeout:       t.config.IdleTimeout,
		ErrorLog:          logging.NewStdLogger(t.logger, logging.WarnLevel),
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	t.server = server
	t.running = true
	t.mu.Unlock()

	t.logger.Info("HTTP transport listening",
		logging.String("addr", t.config.Addr),
		logging.String("path", t.config.Path),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		t.markStopped()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return mcperrors.HTTPTransportError("listen", t.config.Addr, 0, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), t.config.ShutdownTimeout)
		defer cancel()
		return t.Stop(shutdownCtx)
	}
}

// Stop gracefully shuts the server down. Stopping a transport that is not
// running is a no-op.
func (t *HTTPTransport) Stop(ctx context.Context) error {
	t.mu.Lock()
	server := t.server
	t.mu.Unlock()

	if server == nil {
		return nil
	}
	defer t.markStopped()
	if err := server.Shutdown(ctx); err != nil {
		return mcperrors.HTTPTransportError("shutdown", t.config.Addr, 0, err)
	}
	return nil
}

func (t *HTTPTransport) markStopped() {
	t.mu.Lock()
	t.running = false
	t.mu.Unlock()
}

func (t *HTTPTransport) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (t *HTTPTransport) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, int64(t.maxMessageSize)))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, mcperrors.MessageTooLarge("http", t.maxMessageSize))
			return
		}
		writeJSONError(w, http.StatusBadRequest, mcperrors.HTTPTransportError("read_body", t.config.Path, http.StatusBadRequest, err))
		return
	}

	ctx := r.Context()
	if t.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.requestTimeout)
		defer cancel()
	}

	reply, err := t.HandleMessage(ctx, body)
	if err != nil {
		t.logger.WithContext(ctx).WithError(err).Error("Failed to encode reply")
		writeJSONError(w, http.StatusInternalServerError, mcperrors.CreateInternalError("encode_reply", err))
		return
	}
	if reply == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(reply); err != nil {
		t.logger.WithContext(ctx).WithError(err).Warn("Failed to write reply")
	}
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(mcperrors.ToJSONRPCResponse(err, nil))
}

// checkOrigin rejects browser requests from origins outside the allow list.
// Requests without an Origin header come from non-browser clients and pass.
func (t *HTTPTransport) checkOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && !t.isOriginAllowed(origin) {
			t.logger.WithContext(r.Context()).Warn("Rejected request origin", logging.String("origin", origin))
			http.Error(w, "Origin not allowed", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (t *HTTPTransport) isOriginAllowed(origin string) bool {
	for _, allowed := range t.config.AllowedOrigins {
		if allowed == "*" || matchOrigin(allowed, origin) {
			return true
		}
	}
	return false
}

// matchOrigin compares exactly, except that a localhost entry admits the
// same host on any port
func matchOrigin(allowed, origin string) bool {
	if allowed == origin {
		return true
	}
	return isLocalhostPattern(allowed) && strings.HasPrefix(origin, allowed+":")
}

func isLocalhostPattern(allowed string) bool {
	switch allowed {
	case "http://localhost", "https://localhost",
		"http://127.0.0.1", "https://127.0.0.1",
		"http://[::1]", "https://[::1]":
		return true
	}
	return false
}
