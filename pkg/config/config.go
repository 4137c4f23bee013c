// Package config loads the server configuration from a .env file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	mcperrors "github.com/ajitpratap0/logic-gates-mcp/pkg/errors"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/logging"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/observability"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/protocol"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/transport"
)

// Config holds every setting of the logic-gates binary
type Config struct {
	Transport      string
	HTTPAddr       string
	HTTPPath       string
	AllowedOrigins []string

	LogLevel  string
	LogFormat string

	MetricsEnabled bool
	MetricsAddr    string
	MetricsPath    string

	TracingEnabled    bool
	TracingExporter   string
	TracingEndpoint   string
	TracingInsecure   bool
	TracingSampleRate float64

	ServiceName     string
	ServiceVersion  string
	Environment     string
	ShutdownTimeout time.Duration
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Transport:         string(transport.TransportTypeStdio),
		HTTPAddr:          ":8080",
		HTTPPath:          "/mcp",
		LogLevel:          "info",
		LogFormat:         logging.FormatText,
		MetricsAddr:       ":9090",
		MetricsPath:       "/metrics",
		TracingExporter:   string(observability.ExporterTypeOTLPGRPC),
		TracingSampleRate: 1.0,
		ServiceName:       "logic-gates",
		ServiceVersion:    "1.0.0",
		Environment:       "development",
		ShutdownTimeout:   10 * time.Second,
	}
}

// Load reads envFiles (".env" when none are given; missing files are
// skipped), then the environment, then args, and validates the result.
// Variables already present in the environment win over the files.
func Load(args []string, envFiles ...string) (Config, error) {
	if err := loadEnvFiles(envFiles...); err != nil {
		return Config{}, err
	}

	cfg, err := fromEnv(Default())
	if err != nil {
		return Config{}, err
	}

	flags := flag.NewFlagSet("logic-gates", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	cfg.bindFlags(flags)
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

func fromEnv(cfg Config) (Config, error) {
	var errs []error

	cfg.Transport = envOr("MCP_TRANSPORT", cfg.Transport)
	cfg.HTTPAddr = envOr("MCP_HTTP_ADDR", cfg.HTTPAddr)
	cfg.HTTPPath = envOr("MCP_HTTP_PATH", cfg.HTTPPath)
	if v := os.Getenv("MCP_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envOr("LOG_FORMAT", cfg.LogFormat)
	cfg.MetricsEnabled = envBool("METRICS_ENABLED", cfg.MetricsEnabled, &errs)
	cfg.MetricsAddr = envOr("METRICS_ADDR", cfg.MetricsAddr)
	cfg.MetricsPath = envOr("METRICS_PATH", cfg.MetricsPath)
	cfg.TracingEnabled = envBool("TRACING_ENABLED", cfg.TracingEnabled, &errs)
	cfg.TracingExporter = envOr("TRACING_EXPORTER", cfg.TracingExporter)
	cfg.TracingEndpoint = envOr("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.TracingEndpoint)
	cfg.TracingInsecure = envBool("TRACING_INSECURE", cfg.TracingInsecure, &errs)
	cfg.TracingSampleRate = envFloat("TRACING_SAMPLE_RATE", cfg.TracingSampleRate, &errs)
	cfg.ServiceName = envOr("SERVICE_NAME", cfg.ServiceName)
	cfg.ServiceVersion = envOr("SERVICE_VERSION", cfg.ServiceVersion)
	cfg.Environment = envOr("ENVIRONMENT", cfg.Environment)
	cfg.ShutdownTimeout = envDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout, &errs)

	return cfg, errors.Join(errs...)
}

func (c *Config) bindFlags(flags *flag.FlagSet) {
	flags.StringVar(&c.Transport, "transport", c.Transport, "transport to serve on (stdio or http)")
	flags.StringVar(&c.HTTPAddr, "http-addr", c.HTTPAddr, "HTTP listen address")
	flags.StringVar(&c.HTTPPath, "http-path", c.HTTPPath, "HTTP path of the MCP endpoint")
	flags.Func("allowed-origins", "comma-separated Origin allow list", func(v string) error {
		c.AllowedOrigins = splitList(v)
		return nil
	})
	flags.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format (text or json)")
	flags.BoolVar(&c.MetricsEnabled, "metrics", c.MetricsEnabled, "expose Prometheus metrics")
	flags.StringVar(&c.MetricsAddr, "metrics-addr", c.MetricsAddr, "metrics listen address for the stdio transport")
	flags.StringVar(&c.MetricsPath, "metrics-path", c.MetricsPath, "metrics HTTP path")
	flags.BoolVar(&c.TracingEnabled, "tracing", c.TracingEnabled, "export OpenTelemetry traces")
	flags.StringVar(&c.TracingExporter, "tracing-exporter", c.TracingExporter, "trace exporter (otlp-grpc, otlp-http or noop)")
	flags.StringVar(&c.TracingEndpoint, "tracing-endpoint", c.TracingEndpoint, "OTLP endpoint")
	flags.BoolVar(&c.TracingInsecure, "tracing-insecure", c.TracingInsecure, "disable TLS for the OTLP exporter")
	flags.Float64Var(&c.TracingSampleRate, "tracing-sample-rate", c.TracingSampleRate, "fraction of traces to sample")
	flags.StringVar(&c.Environment, "environment", c.Environment, "deployment environment label")
	flags.DurationVar(&c.ShutdownTimeout, "shutdown-timeout", c.ShutdownTimeout, "graceful shutdown timeout")
}

// Validate rejects settings the server cannot run with
func (c Config) Validate() error {
	switch transport.TransportType(c.Transport) {
	case transport.TransportTypeStdio:
	case transport.TransportTypeHTTP:
		if c.HTTPAddr == "" {
			return mcperrors.InvalidConfiguration("http-addr", c.HTTPAddr, "required for the http transport")
		}
		if !strings.HasPrefix(c.HTTPPath, "/") {
			return mcperrors.InvalidConfiguration("http-path", c.HTTPPath, "must start with /")
		}
	default:
		return mcperrors.InvalidConfiguration("transport", c.Transport, "must be stdio or http")
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return mcperrors.InvalidConfiguration("log-level", c.LogLevel, err.Error())
	}
	if _, err := logging.FormatterFor(c.LogFormat); err != nil {
		return mcperrors.InvalidConfiguration("log-format", c.LogFormat, err.Error())
	}

	if c.MetricsEnabled && !strings.HasPrefix(c.MetricsPath, "/") {
		return mcperrors.InvalidConfiguration("metrics-path", c.MetricsPath, "must start with /")
	}

	if c.TracingEnabled {
		if _, err := observability.ParseExporterType(c.TracingExporter); err != nil {
			return mcperrors.InvalidConfiguration("tracing-exporter", c.TracingExporter, err.Error())
		}
	}
	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		return mcperrors.InvalidConfiguration("tracing-sample-rate", strconv.FormatFloat(c.TracingSampleRate, 'f', -1, 64), "must be between 0 and 1")
	}

	if c.ShutdownTimeout <= 0 {
		return mcperrors.InvalidConfiguration("shutdown-timeout", c.ShutdownTimeout.String(), "must be positive")
	}
	return nil
}

// TransportConfig converts c into a transport configuration
func (c Config) TransportConfig(logger logging.Logger) transport.TransportConfig {
	tc := transport.DefaultTransportConfig(transport.TransportType(c.Transport))
	tc.HTTP.Addr = c.HTTPAddr
	tc.HTTP.Path = c.HTTPPath
	tc.HTTP.AllowedOrigins = c.AllowedOrigins
	tc.HTTP.ShutdownTimeout = c.ShutdownTimeout
	tc.Logger = logger
	return tc
}

// MetricsConfig converts c into a metrics configuration
func (c Config) MetricsConfig() observability.MetricsConfig {
	return observability.MetricsConfig{
		ServiceName:    c.ServiceName,
		ServiceVersion: c.ServiceVersion,
		Environment:    c.Environment,
		Addr:           c.MetricsAddr,
		MetricsPath:    c.MetricsPath,
	}
}

// TracingConfig converts c into a tracing configuration
func (c Config) TracingConfig() observability.TracingConfig {
	return observability.TracingConfig{
		ServiceName:    c.ServiceName,
		ServiceVersion: c.ServiceVersion,
		Environment:    c.Environment,
		ExporterType:   observability.ExporterType(c.TracingExporter),
		Endpoint:       c.TracingEndpoint,
		Insecure:       c.TracingInsecure,
		SampleRate:     c.TracingSampleRate,
		NeverSample:    []string{protocol.MethodPing},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, mcperrors.InvalidConfiguration(key, v, "expected a boolean"))
		return fallback
	}
	return b
}

func envFloat(key string, fallback float64, errs *[]error) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, mcperrors.InvalidConfiguration(key, v, "expected a number"))
		return fallback
	}
	return f
}

func envDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, mcperrors.InvalidConfiguration(key, v, "expected a duration such as 5s"))
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Usage writes the flag help to w
func Usage(w io.Writer) {
	cfg := Default()
	flags := flag.NewFlagSet("logic-gates", flag.ContinueOnError)
	flags.SetOutput(w)
	cfg.bindFlags(flags)
	fmt.Fprintln(w, "Usage of logic-gates:")
	flags.PrintDefaults()
}
