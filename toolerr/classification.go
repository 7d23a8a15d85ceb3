package toolerr

// ErrorClass categorizes errors by their nature.
type ErrorClass string

const (
	// ErrorClassInfrastructure indicates environment or setup issues
	// Examples: binary missing, not a git repository, unreadable config
	ErrorClassInfrastructure ErrorClass = "infrastructure"

	// ErrorClassSemantic indicates input issues
	// Examples: unknown tool, missing arguments, guard denial
	ErrorClassSemantic ErrorClass = "semantic"

	// ErrorClassTransient indicates failures that may resolve on their own
	ErrorClassTransient ErrorClass = "transient"

	// ErrorClassPermanent indicates non-recoverable failures
	ErrorClassPermanent ErrorClass = "permanent"
)

// RecoveryStrategy defines the type of recovery action that can be attempted.
type RecoveryStrategy string

const (
	// StrategyInstall indicates the missing dependency should be installed
	StrategyInstall RecoveryStrategy = "install"

	// StrategyModifyParams indicates changing parameters may help
	StrategyModifyParams RecoveryStrategy = "modify_params"

	// StrategyModifyConfig indicates changing server configuration may help
	StrategyModifyConfig RecoveryStrategy = "modify_config"
)

// RecoveryHint provides a concrete suggestion for recovering from an error.
type RecoveryHint struct {
	// Strategy indicates the type of recovery action
	Strategy RecoveryStrategy `json:"strategy"`

	// Params contains suggested parameter modifications when using StrategyModifyParams
	Params map[string]any `json:"params,omitempty"`

	// Reason explains the suggestion in one line
	Reason string `json:"reason"`

	// Priority determines the order to present hints (lower = first)
	Priority int `json:"priority"`
}

// DefaultClassForCode returns the default error class for a given error code.
func DefaultClassForCode(code string) ErrorClass {
	switch code {
	case ErrCodeBinaryNotFound, ErrCodeInvalidRepository, ErrCodeConfig:
		return ErrorClassInfrastructure
	case ErrCodeInvalidInput, ErrCodeToolNotFound, ErrCodeGuardDenied:
		return ErrorClassSemantic
	case ErrCodeDuplicateTool:
		return ErrorClassPermanent
	case ErrCodeExecutionFailed:
		// context-dependent; a rerun may well succeed
		return ErrorClassTransient
	default:
		return ErrorClassTransient
	}
}
