package server

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	mcperrors "github.com/ajitpratap0/logic-gates-mcp/pkg/errors"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/logging"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/observability"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/protocol"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/transport"
)

func newTestServer(t *testing.T, opts ...ServerOption) (*Server, *transport.StdioTransport) {
	t.Helper()
	tr := transport.NewStdioTransport(transport.DefaultTransportConfig(transport.TransportTypeStdio))
	opts = append([]ServerOption{WithTools(testTools()...), WithLogger(logging.NewNop())}, opts...)
	srv, err := New(tr, opts...)
	require.NoError(t, err)
	return srv, tr
}

func roundTrip(t *testing.T, tr transport.Transport, message string) map[string]interface{} {
	t.Helper()
	reply, err := tr.HandleMessage(context.Background(), []byte(message))
	require.NoError(t, err)
	require.NotNil(t, reply, "expected a reply to %s", message)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(reply, &resp))
	return resp
}

func TestServerInitialize(t *testing.T) {
	srv, tr := newTestServer(t, WithInstructions("Call the tools"))

	resp := roundTrip(t, tr, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"inspector","version":"0.9"}}}`)
	result := resp["result"].(map[string]interface{})

	assert.Equal(t, "2024-11-05", result["protocolVersion"])
	assert.Equal(t, map[string]interface{}{"tools": map[string]interface{}{}}, result["capabilities"])
	assert.Equal(t, map[string]interface{}{"name": "logic-gates", "version": "1.0.0"}, result["serverInfo"])
	assert.Equal(t, "Call the tools", result["instructions"])

	require.NotNil(t, srv.ClientInfo())
	assert.Equal(t, "inspector", srv.ClientInfo().Name)
	assert.False(t, srv.IsInitialized())

	reply, err := tr.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	require.NoError(t, err)
	assert.Nil(t, reply)
	assert.True(t, srv.IsInitialized())
}

func TestServerInitializeNegotiatesVersion(t *testing.T) {
	_, tr := newTestServer(t)

	resp := roundTrip(t, tr, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"1999-01-01"}}`)
	assert.Equal(t, protocol.ProtocolRevision, resp["result"].(map[string]interface{})["protocolVersion"])
}

func TestServerNameAndVersion(t *testing.T) {
	_, tr := newTestServer(t, WithName("custom"), WithVersion("2.3.4"))

	resp := roundTrip(t, tr, `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)
	assert.Equal(t, map[string]interface{}{"name": "custom", "version": "2.3.4"}, resp["result"].(map[string]interface{})["serverInfo"])
}

func TestServerPing(t *testing.T) {
	_, tr := newTestServer(t)

	resp := roundTrip(t, tr, `{"jsonrpc":"2.0","id":"p","method":"ping"}`)
	assert.Equal(t, "p", resp["id"])
	assert.Equal(t, map[string]interface{}{}, resp["result"])
}

func TestServerListTools(t *testing.T) {
	_, tr := newTestServer(t)

	resp := roundTrip(t, tr, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	tools := resp["result"].(map[string]interface{})["tools"].([]interface{})
	require.Len(t, tools, 4)

	first := tools[0].(map[string]interface{})
	assert.Equal(t, "echo", first["name"])
	assert.Equal(t, "Returns its input", first["description"])
	assert.Contains(t, first, "inputSchema")
}

func TestServerCallTool(t *testing.T) {
	_, tr := newTestServer(t)

	resp := roundTrip(t, tr, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"sum","arguments":{"a":4,"b":5}}}`)
	assert.Equal(t, map[string]interface{}{
		"content": []interface{}{map[string]interface{}{"type": "text", "text": "9"}},
	}, resp["result"])

	resp = roundTrip(t, tr, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"nand_gate","arguments":{}}}`)
	assert.NotContains(t, resp, "error", "tool failures are not protocol errors")
	assert.Equal(t, map[string]interface{}{
		"content": []interface{}{map[string]interface{}{"type": "text", "text": "Unknown tool: nand_gate"}},
		"isError": true,
	}, resp["result"])
}

func TestServerCallToolInvalidParams(t *testing.T) {
	_, tr := newTestServer(t)

	resp := roundTrip(t, tr, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":5}}`)
	errObj := resp["error"].(map[string]interface{})
	assert.Equal(t, float64(protocol.InvalidParams), errObj["code"])
}

func TestServerUnknownMethod(t *testing.T) {
	_, tr := newTestServer(t)

	resp := roundTrip(t, tr, `{"jsonrpc":"2.0","id":1,"method":"resources/list"}`)
	assert.Equal(t, float64(protocol.MethodNotFound), resp["error"].(map[string]interface{})["code"])
}

func TestServerOptionsConflict(t *testing.T) {
	reg, err := NewRegistry(testTools()...)
	require.NoError(t, err)

	tr := transport.NewStdioTransport(transport.DefaultTransportConfig(transport.TransportTypeStdio))
	_, err = New(tr, WithTools(testTools()...), WithToolsProvider(NewDispatcher(reg)))
	assert.True(t, mcperrors.IsCategory(err, mcperrors.CategoryConfig))

	_, err = New(tr, WithTools(testTools()[0], testTools()[0]))
	assert.True(t, mcperrors.IsCode(err, mcperrors.CodeToolRegistration))
}

func TestServerToolsProvider(t *testing.T) {
	reg, err := NewRegistry(testTools()[:1]...)
	require.NoError(t, err)
	provider := NewDispatcher(reg)

	tr := transport.NewStdioTransport(transport.DefaultTransportConfig(transport.TransportTypeStdio))
	srv, err := New(tr, WithToolsProvider(provider), WithLogger(logging.NewNop()))
	require.NoError(t, err)
	assert.Same(t, provider, srv.ToolsProvider())
}

func TestServerMetricsAndTracing(t *testing.T) {
	metrics, err := observability.NewMetricsProvider(observability.MetricsConfig{
		ServiceName:    "logic-gates",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		Registry:       prometheus.NewRegistry(),
	})
	require.NoError(t, err)

	exporter := tracetest.NewInMemoryExporter()
	tracing, err := observability.NewTracingProvider(observability.TracingConfig{Exporter: exporter, Synchronous: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tracing.Shutdown(context.Background()) })

	_, tr := newTestServer(t, WithMetrics(metrics), WithTracing(tracing))

	roundTrip(t, tr, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"echo","arguments":{"text":"a"}}}`)
	roundTrip(t, tr, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"sum","arguments":{"a":-1,"b":0}}}`)
	roundTrip(t, tr, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"nope"}}`)
	roundTrip(t, tr, `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":[]}`)

	expected := `
# HELP mcp_tool_call_total Total number of tool calls
# TYPE mcp_tool_call_total counter
mcp_tool_call_total{environment="test",service="logic-gates",status="not_found",tool="nope",version="1.0.0"} 1
mcp_tool_call_total{environment="test",service="logic-gates",status="success",tool="echo",version="1.0.0"} 1
mcp_tool_call_total{environment="test",service="logic-gates",status="validation",tool="sum",version="1.0.0"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected), "mcp_tool_call_total"))

	expected = `
# HELP mcp_error_total Total number of errors
# TYPE mcp_error_total counter
mcp_error_total{environment="test",method="tools/call",service="logic-gates",type="validation",version="1.0.0"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected), "mcp_error_total"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 4)
	for _, span := range spans {
		assert.Equal(t, "mcp.tools/call", span.Name)
	}

	attrs := map[string]interface{}{}
	for _, kv := range spans[1].Attributes {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "sum", attrs["mcp.tool.name"])
	assert.Equal(t, true, attrs["mcp.tool.is_error"])
	assert.Equal(t, "validation", attrs["mcp.error.category"])
}

func TestServerLogsToolFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, logging.NewJSONFormatter())

	_, tr := newTestServer(t, WithLogger(logger))
	roundTrip(t, tr, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"fail","arguments":{}}}`)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry), "log: %s", buf.String())
	assert.Equal(t, "Tool call failed", entry["message"])
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "fail", entry["tool"])
	assert.Equal(t, "tool", entry["error_category"])
}
