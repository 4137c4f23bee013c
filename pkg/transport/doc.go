// Package transport moves JSON-RPC 2.0 messages between a client and the
// server's registered handlers.
//
// # Transport Types
//
// StdioTransport:
//   - Reads newline-delimited JSON from stdin and writes replies to stdout
//   - Processes messages one at a time in arrival order
//   - Ends cleanly at EOF or when its context is cancelled
//
// HTTPTransport:
//   - Accepts one message or batch per POST on a single endpoint
//   - Answers 202 Accepted when nothing needs a reply
//   - Validates the Origin header of browser requests
//   - Serves /health and any extra routes supplied with WithRoute
//
// # Usage
//
//	config := transport.DefaultTransportConfig(transport.TransportTypeStdio)
//	config.Logger = logger
//
//	t, err := transport.NewTransport(config)
//	if err != nil {
//		return err
//	}
//	t.RegisterRequestHandler("ping", handlePing)
//
//	if err := t.Start(ctx); err != nil {
//		return err
//	}
//
// # Message Handling
//
// Both transports delegate to BaseTransport.HandleMessage, which classifies
// each message, routes requests and notifications to their handlers and
// encodes the reply. Malformed input produces a JSON-RPC error response with
// a null id. Batches are answered with an array holding one response per
// request, in order, and notifications inside a batch are dropped from it.
// Handler panics become internal errors so one bad message cannot take the
// connection down.
package transport
