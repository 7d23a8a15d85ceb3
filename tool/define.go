package tool

import (
	"context"
	"fmt"

	"github.com/zero-day-ai/devflow/schema"
	"github.com/zero-day-ai/devflow/toolerr"
)

// HandlerFunc implements a tool over its typed request.
type HandlerFunc[T any] func(ctx context.Context, req T) (*Result, error)

// Define builds a Tool whose input schema is generated from T and whose
// handler receives the arguments decoded into a T. T must be a struct;
// fields tagged omitempty are optional.
//
// Example:
//
//	type CommitPlanRequest struct {
//		ProjectName string `json:"project_name" description:"Name of the project"`
//		CommitTitle string `json:"commit_title" description:"Title for the commit"`
//	}
//
//	plan := tool.Define("commit_plan", "Commit plan prompt",
//		func(ctx context.Context, req CommitPlanRequest) (*tool.Result, error) {
//			return tool.Text(render(req)), nil
//		})
func Define[T any](name, description string, fn HandlerFunc[T], requires ...string) Tool {
	var zero T
	cfg := NewConfig().
		SetName(name).
		SetDescription(description).
		SetInputSchema(schema.FromType(zero)).
		SetRequires(requires...).
		SetExecuteFunc(func(ctx context.Context, input map[string]any) (*Result, error) {
			var req T
			if err := schema.Decode(input, &req); err != nil {
				return nil, toolerr.New(name, "decode", toolerr.ErrCodeInvalidInput, err.Error()).
					WithClass(toolerr.ErrorClassSemantic)
			}
			return fn(ctx, req)
		})

	t, err := New(cfg)
	if err != nil {
		// only reachable with an empty name
		panic(fmt.Sprintf("tool.Define(%q): %v", name, err))
	}
	return t
}
