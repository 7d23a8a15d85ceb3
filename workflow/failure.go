package workflow

import (
	"errors"

	"github.com/zero-day-ai/devflow/tool"
	"github.com/zero-day-ai/devflow/toolerr"
)

// launchFailure turns an error from the Runner into an error-flagged text
// result attributed to toolName, with any registered recovery hints appended.
func launchFailure(toolName string, err error) *tool.Result {
	return tool.ErrorText(describe(toolName, "run", err))
}

func describe(toolName, operation string, err error) string {
	var te *toolerr.Error
	if errors.As(err, &te) {
		retagged := *te
		retagged.Tool = toolName
		retagged.Hints = append([]toolerr.RecoveryHint(nil), te.Hints...)
		te = &retagged
	} else {
		te = toolerr.New(toolName, operation, toolerr.ErrCodeExecutionFailed, "command failed").WithCause(err)
	}
	te = toolerr.EnrichError(te)

	text := te.Error()
	if hints := toolerr.FormatHints(te.Hints); hints != "" {
		text += "\n" + hints
	}
	return text
}
