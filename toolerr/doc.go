// Package toolerr provides structured error types for devflow tools.
//
// # Error Codes
//
// Validation failures happen before a handler body runs and are never fatal
// to the server:
//
//   - ErrCodeInvalidInput: arguments failed the tool's declared schema
//   - ErrCodeToolNotFound: the request named a tool that is not registered
//   - ErrCodeGuardDenied: a configured call guard rejected the arguments
//
// Execution failures come from external processes or the filesystem:
//
//   - ErrCodeBinaryNotFound: a required binary is not in PATH
//   - ErrCodeExecutionFailed: a process could not be launched or a filesystem
//     operation faulted
//
// Startup failures stop the server before it starts serving:
//
//   - ErrCodeInvalidRepository: the repository argument is not a git work tree
//   - ErrCodeConfig: the configuration file could not be loaded
//   - ErrCodeDuplicateTool: two tools were registered under the same name
//
// # Usage
//
//	err := toolerr.New("webapp_deploy", "run", toolerr.ErrCodeBinaryNotFound,
//	    "az binary not found in PATH").
//	    WithCause(execErr)
//
//	if toolerr.IsValidation(err) {
//	    // reject the request, keep serving
//	}
//
// Recovery hints registered with Register are attached by EnrichError so
// callers can print an actionable suggestion next to the failure.
package toolerr
