package toolerr

// Default recovery hints for the built-in workflow tools.

func init() {
	Register("webapp_deploy", ErrCodeBinaryNotFound,
		RecoveryHint{
			Strategy: StrategyInstall,
			Reason:   "install the Azure CLI and make sure az is on PATH",
			Priority: 1,
		},
		RecoveryHint{
			Strategy: StrategyModifyConfig,
			Params:   map[string]any{"binaries.az": "/path/to/az"},
			Reason:   "or point binaries.az in the devflow config at the az executable",
			Priority: 2,
		},
	)

	Register("code_publish", ErrCodeBinaryNotFound,
		RecoveryHint{
			Strategy: StrategyInstall,
			Reason:   "install the .NET SDK and make sure dotnet is on PATH",
			Priority: 1,
		},
		RecoveryHint{
			Strategy: StrategyModifyConfig,
			Params:   map[string]any{"toolchain.dotnet_root": "/path/to/dotnet"},
			Reason:   "or set toolchain.dotnet_root and binaries.dotnet in the devflow config",
			Priority: 2,
		},
	)

	Register("code_publish", ErrCodeExecutionFailed,
		RecoveryHint{
			Strategy: StrategyModifyParams,
			Reason:   "check that code_path points at an existing project file",
			Priority: 1,
		},
	)

	Register("compress_code", ErrCodeInvalidInput,
		RecoveryHint{
			Strategy: StrategyModifyParams,
			Reason:   "pass the version folder name as given to code_publish, relative to publish_destinationpath",
			Priority: 1,
		},
	)

	Register("compress_code", ErrCodeExecutionFailed,
		RecoveryHint{
			Strategy: StrategyModifyParams,
			Reason:   "publish the version first with code_publish so <destination>/<version> exists",
			Priority: 1,
		},
	)

	Register("devflow", ErrCodeInvalidRepository,
		RecoveryHint{
			Strategy: StrategyModifyParams,
			Reason:   "pass a directory inside a git work tree to -repository, or omit it",
			Priority: 1,
		},
	)
}
