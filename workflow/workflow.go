// Package workflow implements the developer-workflow tools devflow serves:
// commit-title formatting, the commit-plan prompt, Azure Web App deployment,
// dotnet publish and zip compression.
package workflow

import (
	"log/slog"

	"github.com/zero-day-ai/devflow/exec"
	"github.com/zero-day-ai/devflow/tool"
)

// Tool names.
const (
	GetCommitTitle = "get_commit_title"
	CommitPlan     = "commit_plan"
	WebappDeploy   = "webapp_deploy"
	CodePublish    = "code_publish"
	CompressCode   = "compress_code"
)

// Options wires the tools to their environment.
type Options struct {
	// Runner runs external commands. Required for the shell-backed tools.
	Runner exec.Runner

	// Az and Dotnet name the executables to run. Default "az" and "dotnet".
	Az     string
	Dotnet string

	// PublishConfiguration is passed to dotnet publish -c. Default "Release".
	PublishConfiguration string

	// PublishEnv is overlaid on the environment of dotnet publish only.
	PublishEnv map[string]string

	// ArchiveName is the zip file compress_code writes. Default "api.zip".
	ArchiveName string

	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Runner == nil {
		o.Runner = exec.New(exec.WithLogger(o.Logger))
	}
	if o.Az == "" {
		o.Az = "az"
	}
	if o.Dotnet == "" {
		o.Dotnet = "dotnet"
	}
	if o.PublishConfiguration == "" {
		o.PublishConfiguration = "Release"
	}
	if o.ArchiveName == "" {
		o.ArchiveName = "api.zip"
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	o.Logger = o.Logger.With("component", "workflow")
	return o
}

// Tools returns every workflow tool, in the order they are advertised.
func Tools(opts Options) []tool.Tool {
	opts = opts.withDefaults()
	return []tool.Tool{
		commitTitleTool(),
		commitPlanTool(),
		deployTool(opts),
		publishTool(opts),
		compressTool(opts),
	}
}
