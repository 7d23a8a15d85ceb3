package workflow

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/zero-day-ai/devflow/exec"
	"github.com/zero-day-ai/devflow/tool"
)

// PublishRequest are the arguments of code_publish.
type PublishRequest struct {
	CodePath               string `json:"code_path" description:"Path of the project or solution file to publish"`
	PublishDestinationPath string `json:"publish_destinationpath" description:"Directory that receives published versions"`
	Version                string `json:"version" description:"Version folder created under the destination"`
}

// OutputDir is where code_publish writes and compress_code reads.
func OutputDir(destination, version string) string {
	return filepath.Join(destination, version)
}

// PublishSpec returns the dotnet invocation for req. It runs from the
// directory that contains the project file.
func PublishSpec(dotnet, configuration string, env map[string]string, req PublishRequest) exec.Spec {
	return exec.Spec{
		Path: dotnet,
		Args: []string{
			"publish", req.CodePath,
			"-c", configuration,
			"-o", OutputDir(req.PublishDestinationPath, req.Version),
		},
		Dir: filepath.Dir(req.CodePath),
		Env: env,
	}
}

func publishTool(opts Options) tool.Tool {
	logger := opts.Logger.With("tool", CodePublish)
	return tool.Define(CodePublish,
		"Publish the code to the specified destination using dotnet publish.",
		func(ctx context.Context, req PublishRequest) (*tool.Result, error) {
			spec := PublishSpec(opts.Dotnet, opts.PublishConfiguration, opts.PublishEnv, req)
			outDir := OutputDir(req.PublishDestinationPath, req.Version)
			logger.Info("publishing", "project", req.CodePath, "output", outDir)

			out, err := opts.Runner.Run(ctx, spec)
			if err != nil {
				logger.Warn("publish could not run", "error", err)
				return launchFailure(CodePublish, err), nil
			}
			if out.Success() {
				return tool.Text(fmt.Sprintf("Code published successfully to %s\n%s", outDir, out.Stdout)), nil
			}
			logger.Info("publish exited non-zero", "exit_code", out.ExitCode)
			return tool.Text(fmt.Sprintf("Code publish failed with exit code %d\nstdout:\n%s\nstderr:\n%s",
				out.ExitCode, out.Stdout, out.Stderr)), nil
		}, opts.Dotnet)
}
