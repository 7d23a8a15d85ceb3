// Package serve runs the devflow dispatch loop.
//
// A Server reads requests from a Transport one at a time, resolves each tool
// call against a registry, runs the handler to completion and writes the
// reply before reading the next request. NewStdioTransport speaks
// newline-delimited JSON-RPC 2.0 over a pair of streams, which is how MCP
// clients talk to a child process.
//
// Usage:
//
//	reg, _ := registry.New(workflow.Tools(opts)...)
//	srv := serve.New(reg, serve.WithLogger(logger))
//	err := srv.Serve(ctx, serve.NewStdioTransport(os.Stdin, os.Stdout, serve.ServerInfo{
//		Name:    "Specific workflow server",
//		Version: "0.1.0",
//	}))
package serve
