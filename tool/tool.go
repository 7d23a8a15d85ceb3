package tool

import (
	"context"

	"github.com/zero-day-ai/devflow/schema"
)

// Tool is the interface for devflow tools.
// A tool is a named, schema-described action the dispatch server exposes.
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool does.
	Description() string

	// InputSchema returns the JSON schema the tool's arguments must satisfy.
	InputSchema() schema.JSON

	// Requires returns the external binaries the tool shells out to, if any.
	Requires() []string

	// Call validates args against InputSchema and runs the tool.
	// Argument validation failures are returned as *toolerr.Error with code
	// INVALID_INPUT before any handler code runs. A returned error is a tool
	// failure; a Result with IsError set is a successful call carrying a
	// diagnostic.
	Call(ctx context.Context, args map[string]any) (*Result, error)
}
