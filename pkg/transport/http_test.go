package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/logic-gates-mcp/pkg/protocol"
)

func newTestHTTP(t *testing.T, mutate func(*TransportConfig), opts ...HTTPOption) (*HTTPTransport, *httptest.Server) {
	t.Helper()
	config := DefaultTransportConfig(TransportTypeHTTP)
	config.HTTP.AllowedOrigins = []string{"http://localhost", "https://app.example.com"}
	if mutate != nil {
		mutate(&config)
	}
	tr := NewHTTPTransport(config, opts...)
	tr.RegisterRequestHandler(protocol.MethodPing, func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		return protocol.PingResult{}, nil
	})

	srv := httptest.NewServer(tr.Handler())
	t.Cleanup(srv.Close)
	return tr, srv
}

func post(t *testing.T, url, body string, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHTTPTransportPost(t *testing.T) {
	_, srv := newTestHTTP(t, nil)

	resp := post(t, srv.URL+"/mcp", `{"jsonrpc":"2.0","id":1,"method":"ping"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(1), body["id"])
	assert.Equal(t, map[string]interface{}{}, body["result"])
}

func TestHTTPTransportNotificationAccepted(t *testing.T) {
	_, srv := newTestHTTP(t, nil)

	resp := post(t, srv.URL+"/mcp", `{"jsonrpc":"2.0","method":"notifications/initialized"}`, nil)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestHTTPTransportBatch(t *testing.T) {
	_, srv := newTestHTTP(t, nil)

	resp := post(t, srv.URL+"/mcp", `[{"jsonrpc":"2.0","id":1,"method":"ping"},{"jsonrpc":"2.0","id":2,"method":"ping"}]`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 2)
	assert.Equal(t, float64(1), body[0]["id"])
	assert.Equal(t, float64(2), body[1]["id"])
}

func TestHTTPTransportRequestIDPropagation(t *testing.T) {
	_, srv := newTestHTTP(t, nil)

	resp := post(t, srv.URL+"/mcp", `{"jsonrpc":"2.0","id":1,"method":"ping"}`, map[string]string{"X-Request-ID": "req-123"})
	assert.Equal(t, "req-123", resp.Header.Get("X-Request-ID"))
}

func TestHTTPTransportOriginValidation(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		status int
	}{
		{"no origin", "", http.StatusOK},
		{"exact match", "https://app.example.com", http.StatusOK},
		{"localhost with port", "http://localhost:3000", http.StatusOK},
		{"localhost other scheme", "https://localhost:3000", http.StatusForbidden},
		{"foreign origin", "https://evil.example.com", http.StatusForbidden},
		{"suffix attack", "https://app.example.com.evil.net", http.StatusForbidden},
	}

	_, srv := newTestHTTP(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.origin != "" {
				headers["Origin"] = tt.origin
			}
			resp := post(t, srv.URL+"/mcp", `{"jsonrpc":"2.0","id":1,"method":"ping"}`, headers)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestHTTPTransportWildcardOrigin(t *testing.T) {
	_, srv := newTestHTTP(t, func(c *TransportConfig) {
		c.HTTP.AllowedOrigins = []string{"*"}
	})

	resp := post(t, srv.URL+"/mcp", `{"jsonrpc":"2.0","id":1,"method":"ping"}`, map[string]string{"Origin": "https://anything.test"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPTransportMessageTooLarge(t *testing.T) {
	_, srv := newTestHTTP(t, func(c *TransportConfig) {
		c.Performance.MaxMessageSize = 32
	})

	resp := post(t, srv.URL+"/mcp", `{"jsonrpc":"2.0","id":1,"method":"ping","params":{"pad":"`+strings.Repeat("x", 100)+`"}}`, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestHTTPTransportHealthAndMethods(t *testing.T) {
	_, srv := newTestHTTP(t, nil)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])

	getResp, err := http.Get(srv.URL + "/mcp")
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, getResp.StatusCode)
}

func TestHTTPTransportOptions(t *testing.T) {
	var sawMiddleware bool
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sawMiddleware = true
			next.ServeHTTP(w, r)
		})
	}
	extra := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "extra")
	})

	_, srv := newTestHTTP(t, nil, WithMiddleware(mw), WithRoute("/metrics", extra))

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "extra", string(body))
	assert.True(t, sawMiddleware)
}

func TestHTTPTransportStartStop(t *testing.T) {
	config := DefaultTransportConfig(TransportTypeHTTP)
	config.HTTP.Addr = "127.0.0.1:0"
	tr := NewHTTPTransport(config)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancellation")
	}
	assert.NoError(t, tr.Stop(context.Background()))
}

func TestHTTPTransportShutdownTimeout(t *testing.T) {
	tr := NewHTTPTransport(DefaultTransportConfig(TransportTypeHTTP))
	assert.Equal(t, 5*time.Second, tr.config.ShutdownTimeout)

	config := DefaultTransportConfig(TransportTypeHTTP)
	config.HTTP.ShutdownTimeout = 0
	tr = NewHTTPTransport(config)
	assert.Equal(t, 5*time.Second, tr.config.ShutdownTimeout, "zero selects the default")

	config.HTTP.ShutdownTimeout = 250 * time.Millisecond
	tr = NewHTTPTransport(config)
	assert.Equal(t, 250*time.Millisecond, tr.config.ShutdownTimeout)
}
