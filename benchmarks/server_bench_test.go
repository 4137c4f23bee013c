package benchmarks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	logicgates "github.com/ajitpratap0/logic-gates-mcp"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/gates"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/logging"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/server"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/transport"
)

// BenchmarkServerOperations benchmarks message handling through the full
// server stack
func BenchmarkServerOperations(b *testing.B) {
	b.Run("CallTool", func(b *testing.B) {
		benchmarkServerCallTool(b, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"xor_gate","arguments":{"leftHand":1,"rightHand":0}}}`)
	})

	b.Run("CallToolInvalidArguments", func(b *testing.B) {
		benchmarkServerCallTool(b, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"and_gate","arguments":{"leftHand":"yes"}}}`)
	})

	b.Run("ListTools", func(b *testing.B) {
		benchmarkServerCallTool(b, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	})

	b.Run("HandleBatchRequest/10", func(b *testing.B) {
		benchmarkServerHandleBatchRequest(b, 10)
	})

	b.Run("HandleBatchRequest/100", func(b *testing.B) {
		benchmarkServerHandleBatchRequest(b, 100)
	})

	b.Run("ConcurrentRequests/10", func(b *testing.B) {
		benchmarkServerConcurrentRequests(b, 10)
	})

	b.Run("ConcurrentRequests/100", func(b *testing.B) {
		benchmarkServerConcurrentRequests(b, 100)
	})
}

// BenchmarkDispatch benchmarks the dispatcher without JSON-RPC framing
func BenchmarkDispatch(b *testing.B) {
	registry, err := server.NewRegistry(gates.Tools()...)
	if err != nil {
		b.Fatal(err)
	}
	d := server.NewDispatcher(registry)
	ctx := context.Background()
	args := []byte(`{"leftHand":1,"rightHand":1}`)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if result := d.HandleCall(ctx, "and_gate", args); result.IsError {
			b.Fatal(result.Content)
		}
	}
}

func benchmarkServerCallTool(b *testing.B, message string) {
	ctx := context.Background()
	t := createTestServer(b)
	data := []byte(message)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := t.HandleMessage(ctx, data); err != nil {
			b.Fatal(err)
		}
	}
}

// benchmarkServerHandleBatchRequest benchmarks batch request handling
func benchmarkServerHandleBatchRequest(b *testing.B, batchSize int) {
	ctx := context.Background()
	t := createTestServer(b)

	names := []string{"and_gate", "or_gate", "xor_gate"}
	items := make([]string, batchSize)
	for i := range items {
		items[i] = fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"method":"tools/call","params":{"name":%q,"arguments":{"leftHand":%d,"rightHand":%d}}}`,
			i, names[i%len(names)], i%2, (i/2)%2)
	}
	data := []byte("[" + strings.Join(items, ",") + "]")

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := t.HandleMessage(ctx, data); err != nil {
			b.Fatal(err)
		}
	}
}

// benchmarkServerConcurrentRequests benchmarks concurrent request handling
func benchmarkServerConcurrentRequests(b *testing.B, concurrency int) {
	ctx := context.Background()
	t := createTestServer(b)
	data := []byte(`{"jsonrpc":"2.0","id":"c","method":"tools/call","params":{"name":"or_gate","arguments":{"leftHand":0,"rightHand":1}}}`)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		var wg sync.WaitGroup
		wg.Add(concurrency)
		for j := 0; j < concurrency; j++ {
			go func() {
				defer wg.Done()
				if _, err := t.HandleMessage(ctx, data); err != nil {
					b.Error(err)
				}
			}()
		}
		wg.Wait()
	}
}

func createTestServer(b *testing.B) *transport.StdioTransport {
	b.Helper()
	t := logicgates.NewStdioTransport(transport.DefaultTransportConfig(transport.TransportTypeStdio))
	if _, err := logicgates.NewServer(t, logicgates.WithLogger(logging.NewNop())); err != nil {
		b.Fatal(err)
	}
	return t
}
