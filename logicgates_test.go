package logicgates

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/logic-gates-mcp/pkg/logging"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/transport"
)

func TestNewServerSession(t *testing.T) {
	tr := NewStdioTransport(transport.DefaultTransportConfig(transport.TransportTypeStdio))
	_, err := NewServer(tr, WithLogger(logging.NewNop()))
	require.NoError(t, err)

	batch := `[
		{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1"}}},
		{"jsonrpc":"2.0","method":"notifications/initialized"},
		{"jsonrpc":"2.0","id":2,"method":"tools/list"},
		{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"xor_gate","arguments":{"leftHand":1,"rightHand":1}}},
		{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"or_gate","arguments":{"leftHand":0,"rightHand":3}}}
	]`
	reply, err := tr.HandleMessage(context.Background(), []byte(batch))
	require.NoError(t, err)

	var responses []struct {
		ID     int             `json:"id"`
		Result json.RawMessage `json:"result"`
	}
	require.NoError(t, json.Unmarshal(reply, &responses))
	require.Len(t, responses, 4)

	assert.JSONEq(t, `{"protocolVersion":"2025-03-26","capabilities":{"tools":{}},"serverInfo":{"name":"logic-gates","version":"1.0.0"}}`, string(responses[0].Result))

	var list struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(responses[1].Result, &list))
	require.Len(t, list.Tools, 3)
	assert.Equal(t, "and_gate", list.Tools[0].Name)
	assert.Equal(t, "or_gate", list.Tools[1].Name)
	assert.Equal(t, "xor_gate", list.Tools[2].Name)

	assert.JSONEq(t, `{"content":[{"type":"text","text":"true XOR true = false"}]}`, string(responses[2].Result))
	assert.JSONEq(t, `{"content":[{"type":"text","text":"Invalid arguments for or_gate: rightHand: Number must be less than or equal to 1"}],"isError":true}`, string(responses[3].Result))
}
