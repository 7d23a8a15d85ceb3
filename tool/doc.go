// Package tool provides the Tool interface and builders for devflow tools.
//
// A Tool has a unique name, a description, a JSON schema for its arguments
// and a Call method. Call validates the arguments against the schema before
// any handler code runs.
//
// # Typed tools
//
// Most tools are declared with Define, which generates the schema from a
// request struct and hands the handler a decoded value:
//
//	type CommitTitleRequest struct {
//		TaskType  string `json:"task_type"`
//		TaskCode  string `json:"task_code"`
//		TaskTitle string `json:"task_title"`
//	}
//
//	title := tool.Define("get_commit_title", "Get the commit title for the specified task.",
//		func(ctx context.Context, req CommitTitleRequest) (*tool.Result, error) {
//			return tool.Text(req.TaskType + "#" + req.TaskCode + " : " + req.TaskTitle), nil
//		})
//
// # Raw tools
//
// The Config builder covers tools that want the raw argument map:
//
//	cfg := tool.NewConfig().
//		SetName("echo").
//		SetDescription("Echo a message").
//		SetInputSchema(schema.Object(map[string]schema.JSON{
//			"message": schema.String(),
//		}, "message")).
//		SetExecuteFunc(func(ctx context.Context, input map[string]any) (*tool.Result, error) {
//			return tool.Text(input["message"].(string)), nil
//		})
//
//	echo, err := tool.New(cfg)
//
// # Results and failures
//
// A Result with IsError set is a completed call carrying a diagnostic, for
// example the stderr of a failed subprocess. A returned error is a tool
// failure and is reported to the client as such.
//
// Tool instances are immutable after creation and safe for concurrent use.
package tool
