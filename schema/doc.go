// Package schema provides JSON Schema types and validation for devflow tool arguments.
//
// Every tool advertises a JSON schema for its arguments, generated from its
// request struct:
//
//	type CommitPlanRequest struct {
//		ProjectName string `json:"project_name" description:"Name of the project"`
//		CommitTitle string `json:"commit_title" description:"Title for the commit"`
//	}
//
//	s := schema.FromType(CommitPlanRequest{})
//
// The same schema validates incoming arguments before the handler runs, and
// Decode then fills the request struct:
//
//	if err := s.Validate(args); err != nil {
//		// missing or mistyped argument
//	}
//	var req CommitPlanRequest
//	err := schema.Decode(args, &req)
//
// Validation covers type checks, required properties and enums.
package schema
