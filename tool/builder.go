package tool

import (
	"context"
	"errors"

	"github.com/zero-day-ai/devflow/schema"
	"github.com/zero-day-ai/devflow/toolerr"
)

// ExecuteFunc implements a tool over its raw, already validated arguments.
type ExecuteFunc func(ctx context.Context, input map[string]any) (*Result, error)

// Config holds the configuration for building a Tool.
type Config struct {
	name        string
	description string
	inputSchema schema.JSON
	requires    []string
	executeFunc ExecuteFunc
}

// NewConfig creates a new Config with an empty object input schema.
func NewConfig() *Config {
	return &Config{
		inputSchema: schema.Object(map[string]schema.JSON{}),
	}
}

// SetName sets the tool name.
func (c *Config) SetName(name string) *Config {
	c.name = name
	return c
}

// SetDescription sets the tool description.
func (c *Config) SetDescription(desc string) *Config {
	c.description = desc
	return c
}

// SetInputSchema sets the input schema.
func (c *Config) SetInputSchema(s schema.JSON) *Config {
	c.inputSchema = s
	return c
}

// SetRequires lists the external binaries the tool runs.
func (c *Config) SetRequires(binaries ...string) *Config {
	c.requires = binaries
	return c
}

// SetExecuteFunc sets the execution function.
func (c *Config) SetExecuteFunc(fn ExecuteFunc) *Config {
	c.executeFunc = fn
	return c
}

// sdkTool is the internal implementation of the Tool interface.
type sdkTool struct {
	name        string
	description string
	inputSchema schema.JSON
	requires    []string
	executeFunc ExecuteFunc
}

// New creates a new Tool from the provided Config.
// Returns an error if required fields (name, executeFunc) are missing.
func New(cfg *Config) (Tool, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.name == "" {
		return nil, errors.New("tool name is required")
	}

	if cfg.executeFunc == nil {
		return nil, errors.New("execute function is required")
	}

	return &sdkTool{
		name:        cfg.name,
		description: cfg.description,
		inputSchema: cfg.inputSchema,
		requires:    cfg.requires,
		executeFunc: cfg.executeFunc,
	}, nil
}

// Name returns the tool name.
func (t *sdkTool) Name() string {
	return t.name
}

// Description returns the tool description.
func (t *sdkTool) Description() string {
	return t.description
}

// InputSchema returns the input schema.
func (t *sdkTool) InputSchema() schema.JSON {
	return t.inputSchema
}

// Requires returns the binaries the tool depends on.
func (t *sdkTool) Requires() []string {
	return t.requires
}

// Call validates input and runs the tool's execution function.
func (t *sdkTool) Call(ctx context.Context, input map[string]any) (*Result, error) {
	if input == nil {
		input = map[string]any{}
	}

	if err := t.inputSchema.Validate(input); err != nil {
		return nil, toolerr.New(t.name, "validate", toolerr.ErrCodeInvalidInput, err.Error()).
			WithClass(toolerr.ErrorClassSemantic)
	}

	return t.executeFunc(ctx, input)
}
