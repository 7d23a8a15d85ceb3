// Package devflow is a stdio tool server for developer workflows.
//
// It exposes commit-title formatting, a commit-plan prompt, Azure Web App
// deployment, dotnet publish and zip compression as tools an MCP client can
// list and call. The binary lives in cmd/devflow.
//
// Packages, leaf first:
//
//   - toolerr: structured errors with codes, classes and recovery hints
//   - exec: runs external commands and captures their output
//   - schema: JSON schemas for tool arguments, generated from Go structs
//   - tool: the Tool interface and the typed tool builder
//   - registry: the fixed set of tools, resolved by name
//   - guard: CEL expressions that can veto a call before it runs
//   - health: repository and binary checks
//   - config: YAML or TOML configuration
//   - workflow: the five workflow tools
//   - serve: the dispatch loop and the JSON-RPC stdio transport
package devflow
