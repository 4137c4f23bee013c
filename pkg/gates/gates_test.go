package gates

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/logic-gates-mcp/pkg/server"
)

func newDispatcher(t *testing.T) *server.Dispatcher {
	t.Helper()
	reg, err := server.NewRegistry(Tools()...)
	require.NoError(t, err)
	return server.NewDispatcher(reg)
}

func call(t *testing.T, d *server.Dispatcher, name string, left, right interface{}) (string, bool) {
	t.Helper()
	args, err := json.Marshal(map[string]interface{}{LeftHand: left, RightHand: right})
	require.NoError(t, err)
	result := d.HandleCall(context.Background(), name, args)
	return result.Text(), result.IsError
}

func TestTruthTables(t *testing.T) {
	tests := []struct {
		gate  string
		left  int
		right int
		want  string
	}{
		{"and_gate", 0, 0, "false AND false = false"},
		{"and_gate", 0, 1, "false AND true = false"},
		{"and_gate", 1, 0, "true AND false = false"},
		{"and_gate", 1, 1, "true AND true = true"},
		{"or_gate", 0, 0, "false OR false = false"},
		{"or_gate", 0, 1, "false OR true = true"},
		{"or_gate", 1, 0, "true OR false = true"},
		{"or_gate", 1, 1, "true OR true = true"},
		{"xor_gate", 0, 0, "false XOR false = false"},
		{"xor_gate", 0, 1, "false XOR true = true"},
		{"xor_gate", 1, 0, "true XOR false = true"},
		{"xor_gate", 1, 1, "true XOR true = false"},
	}

	d := newDispatcher(t)
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s(%d,%d)", tt.gate, tt.left, tt.right), func(t *testing.T) {
			text, isError := call(t, d, tt.gate, tt.left, tt.right)
			assert.False(t, isError)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestXorBothTrueOmitsIsError(t *testing.T) {
	d := newDispatcher(t)

	data, err := json.Marshal(d.HandleCall(context.Background(), "xor_gate", json.RawMessage(`{"leftHand":1,"rightHand":1}`)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":[{"type":"text","text":"true XOR true = false"}]}`, string(data))
}

func TestDiscovery(t *testing.T) {
	d := newDispatcher(t)

	tools := d.HandleList().Tools
	require.Len(t, tools, 3)

	wantDescriptor := `{
		"type": "object",
		"properties": {
			"leftHand": {"type": "number", "minimum": 0, "maximum": 1, "description": "Left hand value of logic gate, either 0 or 1. 0 is FALSE and 1 is TRUE"},
			"rightHand": {"type": "number", "minimum": 0, "maximum": 1, "description": "Right hand value of logic gate, either 0 or 1. 0 is FALSE and 1 is TRUE"}
		},
		"required": ["leftHand", "rightHand"],
		"additionalProperties": false,
		"$schema": "http://json-schema.org/draft-07/schema#"
	}`

	want := []struct{ name, description string }{
		{"and_gate", "Returns TRUE if both inputs are TRUE, otherwise returns FALSE"},
		{"or_gate", "Returns TRUE if either input is TRUE, otherwise returns FALSE"},
		{"xor_gate", "Returns TRUE if exactly one input is TRUE, otherwise returns FALSE"},
	}
	for i, w := range want {
		assert.Equal(t, w.name, tools[i].Name)
		assert.Equal(t, w.description, tools[i].Description)
		assert.JSONEq(t, wantDescriptor, string(tools[i].InputSchema))
	}

	assert.Equal(t, tools, d.HandleList().Tools)
}

func TestValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		args string
		want string
	}{
		{"missing field", `{"leftHand": 1}`, "Invalid arguments for and_gate: rightHand: Required"},
		{"non-numeric", `{"leftHand": "1", "rightHand": 0}`, "Invalid arguments for and_gate: leftHand: Expected number, received string"},
		{"below range", `{"leftHand": -1, "rightHand": 0}`, "Invalid arguments for and_gate: leftHand: Number must be greater than or equal to 0"},
		{"above range", `{"leftHand": 0, "rightHand": 2}`, "Invalid arguments for and_gate: rightHand: Number must be less than or equal to 1"},
		{"non-integer", `{"leftHand": 0.5, "rightHand": 1}`, "Invalid arguments for and_gate: leftHand: Expected integer, received float"},
		{"not an object", `[0, 1]`, "Invalid arguments for and_gate: Expected object, received array"},
	}

	d := newDispatcher(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := d.HandleCall(context.Background(), "and_gate", json.RawMessage(tt.args))
			assert.True(t, result.IsError)
			assert.Equal(t, tt.want, result.Text())
			assert.Contains(t, result.Text(), "and_gate")
		})
	}
}

func TestUnknownGate(t *testing.T) {
	d := newDispatcher(t)

	text, isError := call(t, d, "nand_gate", 1, 1)
	assert.True(t, isError)
	assert.Equal(t, "Unknown tool: nand_gate", text)
}

func TestApplyTreatsNonzeroAsTrue(t *testing.T) {
	assert.Equal(t, "true AND true = true", Gates[0].Apply(7, -2))
	assert.Equal(t, "false OR false = false", Gates[1].Apply(0, 0))
}

func TestRender(t *testing.T) {
	assert.Equal(t, "true XOR false = true", Render("XOR", true, false, true))
}
