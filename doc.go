// Package logicgates is a Model Context Protocol server exposing boolean
// logic gates as tools.
//
// Clients discover the tools with tools/list and call them with tools/call:
//
//   - and_gate: TRUE if both inputs are TRUE
//   - or_gate: TRUE if either input is TRUE
//   - xor_gate: TRUE if exactly one input is TRUE
//
// Every gate takes the arguments leftHand and rightHand, each 0 (FALSE) or
// 1 (TRUE), and answers with a single text block such as
// "true XOR true = false".
//
// # Packages
//
//   - pkg/server: tool registry, dispatcher and the MCP server
//   - pkg/gates: the gate table and its tools
//   - pkg/schema: input schemas, validation and JSON Schema descriptors
//   - pkg/transport: stdio and HTTP transports
//   - pkg/protocol: JSON-RPC 2.0 and MCP message types
//   - pkg/errors: structured errors and their JSON-RPC conversion
//   - pkg/logging, pkg/observability: logging, metrics and tracing
//   - pkg/config: configuration from .env, environment and flags
//
// # Running a Server
//
//	t := logicgates.NewStdioTransport(transport.DefaultTransportConfig(transport.TransportTypeStdio))
//	srv, err := logicgates.NewServer(t)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// The cmd/logic-gates binary wires configuration, logging, metrics and
// tracing around the same server.
package logicgates
