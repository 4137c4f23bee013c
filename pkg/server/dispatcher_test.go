package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcperrors "github.com/ajitpratap0/logic-gates-mcp/pkg/errors"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/protocol"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	reg, err := NewRegistry(testTools()...)
	require.NoError(t, err)
	return NewDispatcher(reg)
}

func TestDispatcherHandleList(t *testing.T) {
	d := newTestDispatcher(t)

	result := d.HandleList()
	require.Len(t, result.Tools, 4)
	assert.Equal(t, "echo", result.Tools[0].Name)
	assert.Equal(t, "Returns its input", result.Tools[0].Description)
	assert.Equal(t, result, d.HandleList(), "discovery is idempotent")
	assert.Equal(t, result.Tools, d.ListTools(context.Background()))
}

func TestDispatcherHandleCall(t *testing.T) {
	tests := []struct {
		name     string
		tool     string
		args     string
		text     string
		isError  bool
		category mcperrors.Category
	}{
		{"success", "sum", `{"a": 2, "b": 3}`, "5", false, ""},
		{"extra fields ignored", "echo", `{"text": "hi", "other": 1}`, "hi", false, ""},
		{"unknown tool", "nand_gate", `{}`, "Unknown tool: nand_gate", true, mcperrors.CategoryNotFound},
		{"missing field", "sum", `{"a": 1}`, "Invalid arguments for sum: b: Required", true, mcperrors.CategoryValidation},
		{"out of range", "sum", `{"a": 10, "b": 0}`, "Invalid arguments for sum: a: Number must be less than or equal to 9", true, mcperrors.CategoryValidation},
		{"non-integer", "sum", `{"a": 1.5, "b": 0}`, "Invalid arguments for sum: a: Expected integer, received float", true, mcperrors.CategoryValidation},
		{"wrong kind", "echo", `{"text": 5}`, "Invalid arguments for echo: text: Expected string, received number", true, mcperrors.CategoryValidation},
		{"handler error", "fail", `{}`, "Error: backend unavailable", true, mcperrors.CategoryTool},
		{"handler panic", "explode", `{}`, "Error: kaboom", true, mcperrors.CategoryTool},
	}

	d := newTestDispatcher(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, failure := d.Dispatch(context.Background(), tt.tool, json.RawMessage(tt.args))
			require.NotNil(t, result)
			require.Len(t, result.Content, 1)
			assert.Equal(t, protocol.ContentTypeText, result.Content[0].Type)
			assert.Equal(t, tt.text, result.Content[0].Text)
			assert.Equal(t, tt.isError, result.IsError)

			if tt.isError {
				require.NotNil(t, failure)
				assert.Equal(t, tt.category, failure.Category())
			} else {
				assert.Nil(t, failure)
			}

			assert.Equal(t, result, d.HandleCall(context.Background(), tt.tool, json.RawMessage(tt.args)))
		})
	}
}

func TestDispatcherSuccessOmitsIsError(t *testing.T) {
	d := newTestDispatcher(t)

	data, err := json.Marshal(d.HandleCall(context.Background(), "echo", json.RawMessage(`{"text":"x"}`)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":[{"type":"text","text":"x"}]}`, string(data))
}

func TestDispatcherHandlerPanicIsCritical(t *testing.T) {
	d := newTestDispatcher(t)

	_, failure := d.Dispatch(context.Background(), "explode", json.RawMessage(`{}`))
	require.NotNil(t, failure)
	assert.Equal(t, mcperrors.SeverityCritical, failure.Severity())
	assert.Equal(t, mcperrors.CodeToolExecutionFailed, failure.Code())
}

func TestDispatcherCancelledContext(t *testing.T) {
	d := newTestDispatcher(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, failure := d.Dispatch(ctx, "echo", json.RawMessage(`{"text":"x"}`))
	require.NotNil(t, failure)
	assert.True(t, result.IsError)
	assert.Equal(t, mcperrors.CategoryCancelled, failure.Category())
	assert.Equal(t, "Error: Operation cancelled: request", result.Text())
}

func TestDispatcherRecoversOutsideHandler(t *testing.T) {
	tests := []struct {
		name string
		d    *Dispatcher
		ctx  context.Context
	}{
		{"nil context", newTestDispatcher(t), nil},
		{"nil registry", NewDispatcher(nil), context.Background()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result *protocol.CallToolResult
			var failure mcperrors.MCPError
			require.NotPanics(t, func() {
				result, failure = tt.d.Dispatch(tt.ctx, "echo", json.RawMessage(`{"text":"x"}`))
			})

			require.NotNil(t, failure)
			assert.Equal(t, mcperrors.SeverityCritical, failure.Severity())
			require.NotNil(t, result)
			assert.True(t, result.IsError)
			assert.True(t, strings.HasPrefix(result.Text(), "Error: "), result.Text())
		})
	}
}

// Arbitrary names and payloads never escape as panics
func TestDispatcherIsTotal(t *testing.T) {
	d := newTestDispatcher(t)

	payloads := []string{
		``, `null`, `[]`, `[1,2]`, `"text"`, `42`, `true`, `{`, `}{`, `{"a":`,
		`{"a": null, "b": null}`, `{"a": {}, "b": []}`, `{"a": 1e400, "b": -1e400}`,
		`{"a": 1} {"b": 2}`, `{"text": "\u0000"}`, "\xff\xfe",
	}
	names := []string{"", "sum", "echo", "fail", "explode", "SUM", "sum ", "../sum", "\x00"}

	for _, name := range names {
		for _, payload := range payloads {
			t.Run(fmt.Sprintf("%q/%q", name, payload), func(t *testing.T) {
				var result *protocol.CallToolResult
				assert.NotPanics(t, func() {
					result = d.HandleCall(context.Background(), name, json.RawMessage(payload))
				})
				require.NotNil(t, result)
				assert.Len(t, result.Content, 1)
			})
		}
	}
}

func TestDispatcherConcurrentCalls(t *testing.T) {
	d := newTestDispatcher(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := i%10, (i/10)%10
			result := d.HandleCall(context.Background(), "sum", json.RawMessage(fmt.Sprintf(`{"a":%d,"b":%d}`, a, b)))
			assert.False(t, result.IsError)
			assert.Equal(t, fmt.Sprintf("%d", a+b), result.Text())
			_ = d.HandleList()
		}(i)
	}
	wg.Wait()
}
