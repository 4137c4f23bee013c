// Package server implements the server side of the Model Context Protocol
// tool methods.
//
// The package includes:
//
//   - Registry: the fixed set of tools, each a name, description, input
//     schema and handler
//   - Dispatcher: routes tools/call through lookup, validation and the
//     handler, and reports every failure inside the result envelope
//   - Server: binds a ToolsProvider to a transport and answers initialize,
//     ping, tools/list and tools/call
//
// # Creating a Server
//
//	tool := server.Tool{
//	    Name:        "echo",
//	    Description: "Returns its input",
//	    InputSchema: schema.MustObject(schema.String("text")),
//	    Handler: func(ctx context.Context, args schema.Values) (string, error) {
//	        return args.String("text"), nil
//	    },
//	}
//
//	t := transport.NewStdioTransport(transport.DefaultTransportConfig(transport.TransportTypeStdio))
//	srv, err := server.New(t,
//	    server.WithName("echo"),
//	    server.WithTools(tool),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Failure handling
//
// Unknown tools, invalid arguments, handler errors and handler panics are
// tool failures: they are answered with a successful JSON-RPC response whose
// result has isError set. Only malformed protocol messages produce JSON-RPC
// errors.
package server
