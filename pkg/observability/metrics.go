package observability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mcperrors "github.com/ajitpratap0/logic-gates-mcp/pkg/errors"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/protocol"
)

// MetricsConfig configures the metrics provider
type MetricsConfig struct {
	// Service identification
	ServiceName    string
	ServiceVersion string
	Environment    string

	// Endpoint served by Start
	Addr        string // listen address (default: :9090)
	MetricsPath string // HTTP path for metrics endpoint (default: /metrics)

	// Metric options
	Namespace        string    // Prometheus namespace (default: mcp)
	Subsystem        string    // Prometheus subsystem
	HistogramBuckets []float64 // Custom histogram buckets for latency

	// Labels to add to all metrics
	ConstLabels prometheus.Labels

	// Registry receives the collectors. When nil a private registry with
	// the Go runtime and process collectors is created.
	Registry *prometheus.Registry
}

// MetricsProvider records server metrics
type MetricsProvider interface {
	// RecordIncomingRequest records a handled JSON-RPC request
	RecordIncomingRequest(ctx context.Context, method, status string, duration time.Duration)
	// RecordToolCall records a tools/call dispatch
	RecordToolCall(ctx context.Context, tool, status string, duration time.Duration)
	// RecordError counts a failure of type errType while serving method
	RecordError(ctx context.Context, errType, method string)

	// Handler exposes the collected metrics in the Prometheus text format
	Handler() http.Handler

	// Start serves Handler on the configured address until ctx is done
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// PrometheusMetricsProvider implements MetricsProvider using Prometheus
type PrometheusMetricsProvider struct {
	config   MetricsConfig
	registry *prometheus.Registry

	mu     sync.Mutex
	server *http.Server

	incomingRequestDuration *prometheus.HistogramVec
	incomingRequestTotal    *prometheus.CounterVec
	toolCallDuration        *prometheus.HistogramVec
	toolCallTotal           *prometheus.CounterVec
	errorTotal              *prometheus.CounterVec
}

// NewMetricsProvider creates a new Prometheus metrics provider
func NewMetricsProvider(config MetricsConfig) (*PrometheusMetricsProvider, error) {
	if config.Namespace == "" {
		config.Namespace = "mcp"
	}
	if config.MetricsPath == "" {
		config.MetricsPath = "/metrics"
	}
	if config.Addr == "" {
		config.Addr = ":9090"
	}
	if config.HistogramBuckets == nil {
		// Default buckets for milliseconds
		config.HistogramBuckets = []float64{0.1, 0.5, 1, 5, 10, 25, 50, 100, 250, 500, 1000}
	}

	labels := prometheus.Labels{}
	for k, v := range config.ConstLabels {
		labels[k] = v
	}
	labels["service"] = config.ServiceName
	labels["version"] = config.ServiceVersion
	labels["environment"] = config.Environment
	config.ConstLabels = labels

	registry := config.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	provider := &PrometheusMetricsProvider{
		config:   config,
		registry: registry,
	}
	provider.initializeMetrics()

	if err := provider.registerMetrics(); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	return provider, nil
}

func (p *PrometheusMetricsProvider) initializeMetrics() {
	p.incomingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   p.config.Subsystem,
			Name:        "incoming_request_duration_milliseconds",
			Help:        "Duration of incoming MCP requests in milliseconds",
			Buckets:     p.config.HistogramBuckets,
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"method", "status"},
	)

	p.incomingRequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   p.config.Subsystem,
			Name:        "incoming_request_total",
			Help:        "Total number of incoming MCP requests",
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"method", "status"},
	)

	p.toolCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   p.config.Subsystem,
			Name:        "tool_call_duration_milliseconds",
			Help:        "Duration of tool calls in milliseconds",
			Buckets:     p.config.HistogramBuckets,
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"tool", "status"},
	)

	p.toolCallTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   p.config.Subsystem,
			Name:        "tool_call_total",
			Help:        "Total number of tool calls",
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"tool", "status"},
	)

	p.errorTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   p.config.Namespace,
			Subsystem:   p.config.Subsystem,
			Name:        "error_total",
			Help:        "Total number of errors",
			ConstLabels: p.config.ConstLabels,
		},
		[]string{"type", "method"},
	)
}

func (p *PrometheusMetricsProvider) registerMetrics() error {
	for _, collector := range []prometheus.Collector{
		p.incomingRequestDuration,
		p.incomingRequestTotal,
		p.toolCallDuration,
		p.toolCallTotal,
		p.errorTotal,
	} {
		if err := p.registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// RecordIncomingRequest records an incoming request
func (p *PrometheusMetricsProvider) RecordIncomingRequest(ctx context.Context, method, status string, duration time.Duration) {
	p.incomingRequestDuration.WithLabelValues(method, status).Observe(milliseconds(duration))
	p.incomingRequestTotal.WithLabelValues(method, status).Inc()
}

// RecordToolCall records a tool call
func (p *PrometheusMetricsProvider) RecordToolCall(ctx context.Context, tool, status string, duration time.Duration) {
	p.toolCallDuration.WithLabelValues(tool, status).Observe(milliseconds(duration))
	p.toolCallTotal.WithLabelValues(tool, status).Inc()
}

// RecordError counts an error
func (p *PrometheusMetricsProvider) RecordError(ctx context.Context, errType, method string) {
	p.errorTotal.WithLabelValues(errType, method).Inc()
}

// Registry returns the registry holding the provider's collectors
func (p *PrometheusMetricsProvider) Registry() *prometheus.Registry {
	return p.registry
}

// Path returns the HTTP path the metrics are served on
func (p *PrometheusMetricsProvider) Path() string {
	return p.config.MetricsPath
}

// Handler returns an HTTP handler for the provider's registry
func (p *PrometheusMetricsProvider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Start serves the metrics endpoint and blocks until ctx is done or the
// listener fails.
func (p *PrometheusMetricsProvider) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(p.config.MetricsPath, p.Handler())

	server := &http.Server{
		Addr:              p.config.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	p.mu.Lock()
	p.server = server
	p.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return p.Shutdown(shutdownCtx)
	}
}

// Shutdown gracefully shuts down the metrics server
func (p *PrometheusMetricsProvider) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	server := p.server
	p.mu.Unlock()

	if server != nil {
		return server.Shutdown(ctx)
	}
	return nil
}

// ErrorType classifies an error for the error_total metric
func ErrorType(err error) string {
	if err == nil {
		return ""
	}

	if mcpErr, ok := mcperrors.AsMCPError(err); ok {
		return string(mcpErr.Category())
	}

	var rpcErr *protocol.Error
	if errors.As(err, &rpcErr) {
		switch {
		case rpcErr.Code == protocol.ParseError:
			return "parse_error"
		case rpcErr.Code == protocol.InvalidRequest:
			return "invalid_request"
		case rpcErr.Code == protocol.MethodNotFound:
			return "method_not_found"
		case rpcErr.Code == protocol.InvalidParams:
			return "invalid_params"
		case rpcErr.Code == protocol.InternalError:
			return "internal_error"
		case rpcErr.Code >= -32099 && rpcErr.Code <= -32000:
			return "server_error"
		default:
			return "unknown_error"
		}
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "unknown"
	}
}
