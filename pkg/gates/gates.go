// Package gates provides the boolean logic gate tools: and_gate, or_gate
// and xor_gate. Each takes two operands, leftHand and rightHand, encoded as
// the numbers 0 (FALSE) and 1 (TRUE).
package gates

import (
	"context"
	"fmt"

	"github.com/ajitpratap0/logic-gates-mcp/pkg/schema"
	"github.com/ajitpratap0/logic-gates-mcp/pkg/server"
)

// Argument names shared by every gate
const (
	LeftHand  = "leftHand"
	RightHand = "rightHand"
)

// Gate is a two-input boolean operation
type Gate struct {
	Name        string
	Operator    string
	Description string
	Eval        func(left, right bool) bool
}

// Gates is the fixed gate table in discovery order
var Gates = []Gate{
	{
		Name:        "and_gate",
		Operator:    "AND",
		Description: "Returns TRUE if both inputs are TRUE, otherwise returns FALSE",
		Eval:        func(l, r bool) bool { return l && r },
	},
	{
		Name:        "or_gate",
		Operator:    "OR",
		Description: "Returns TRUE if either input is TRUE, otherwise returns FALSE",
		Eval:        func(l, r bool) bool { return l || r },
	},
	{
		Name:        "xor_gate",
		Operator:    "XOR",
		Description: "Returns TRUE if exactly one input is TRUE, otherwise returns FALSE",
		Eval:        func(l, r bool) bool { return l != r },
	},
}

// InputSchema is the argument schema of every gate
var InputSchema = schema.MustObject(
	operand(LeftHand, "Left"),
	operand(RightHand, "Right"),
)

func operand(name, side string) schema.Field {
	return schema.Number(name).
		Min(0).
		Max(1).
		Whole().
		Describe(fmt.Sprintf("%s hand value of logic gate, either 0 or 1. 0 is FALSE and 1 is TRUE", side))
}

// Render formats an evaluation as "<left> <OP> <right> = <result>"
func Render(operator string, left, right, result bool) string {
	return fmt.Sprintf("%t %s %t = %t", left, operator, right, result)
}

// Apply evaluates g on numeric operands; any nonzero value is TRUE
func (g Gate) Apply(left, right float64) string {
	l, r := left != 0, right != 0
	return Render(g.Operator, l, r, g.Eval(l, r))
}

// Tool returns g as a server tool
func (g Gate) Tool() server.Tool {
	return server.Tool{
		Name:        g.Name,
		Description: g.Description,
		InputSchema: InputSchema,
		Handler: func(ctx context.Context, args schema.Values) (string, error) {
			return g.Apply(args.Number(LeftHand), args.Number(RightHand)), nil
		},
	}
}

// Tools returns every gate as a server tool
func Tools() []server.Tool {
	tools := make([]server.Tool, len(Gates))
	for i, g := range Gates {
		tools[i] = g.Tool()
	}
	return tools
}
