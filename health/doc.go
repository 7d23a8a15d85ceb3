// Package health checks the external dependencies of a devflow server.
//
//   - BinaryCheck: a binary exists in PATH (or at the given path)
//   - FileCheck: a file or directory exists
//   - RepositoryCheck: a directory is inside a git work tree
//   - ToolsCheck: every binary required by a set of tools is available
//   - Combine: aggregate several statuses
//
// Startup combines ToolsCheck and RepositoryCheck into the status logged
// when the server starts, and refuses to start on an invalid -repository
// argument.
package health
