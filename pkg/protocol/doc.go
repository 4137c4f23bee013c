// Package protocol defines the wire types used by the logic-gates server.
//
// The server speaks JSON-RPC 2.0 carrying the Model Context Protocol (MCP)
// tool methods. This package holds the envelope types (requests, responses,
// notifications, errors), the lifecycle payloads, and the tool listing and
// invocation payloads.
//
// # Package Organization
//
//   - jsonrpc.go: JSON-RPC 2.0 envelopes, message classification and batches
//   - mcp.go: method names, protocol revision negotiation, initialize payloads
//   - tools.go: tool descriptors, tools/list and tools/call payloads
//
// # Message Flow
//
//  1. Client sends an initialize request
//  2. Server responds with its capabilities and server info
//  3. Client sends a notifications/initialized notification
//  4. Client lists tools with tools/list and invokes them with tools/call
//
// # Example Messages
//
// Tool call request:
//
//	{
//	    "jsonrpc": "2.0",
//	    "id": 2,
//	    "method": "tools/call",
//	    "params": {
//	        "name": "xor_gate",
//	        "arguments": {"leftHand": 1, "rightHand": 1}
//	    }
//	}
//
// Tool call response:
//
//	{
//	    "jsonrpc": "2.0",
//	    "id": 2,
//	    "result": {
//	        "content": [{"type": "text", "text": "true XOR true = false"}]
//	    }
//	}
//
// Tool failures are reported inside the result with "isError": true rather
// than as JSON-RPC errors. JSON-RPC errors are reserved for protocol faults
// such as malformed JSON or unknown methods.
package protocol
