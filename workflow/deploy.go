package workflow

import (
	"context"
	"strconv"

	"github.com/zero-day-ai/devflow/exec"
	"github.com/zero-day-ai/devflow/tool"
)

// DeployRequest are the arguments of webapp_deploy.
type DeployRequest struct {
	ResourceGroup string  `json:"resource_group" description:"Name of the Azure resource group"`
	Name          string  `json:"name" description:"Name of the web app"`
	SlotName      *string `json:"slot_name,omitempty" description:"Deployment slot; the production slot when omitted"`
	SrcPath       string  `json:"src_path" description:"Path of the artifact to deploy"`
	Subscription  string  `json:"subscription" description:"Subscription name or id"`
	TargetPath    string  `json:"target_path" description:"Absolute path the artifact is deployed to"`
	Type          string  `json:"type" description:"Artifact type" enum:"war,jar,ear,lib,startup,static,zip"`
	Restart       *bool   `json:"restart,omitempty" description:"Restart the web app after deployment"`
	Async         *bool   `json:"isasync,omitempty" description:"Deploy asynchronously"`
}

// DeployArgs returns the az argument list for req. Optional flags are only
// present when the caller supplied them.
func DeployArgs(req DeployRequest) []string {
	args := []string{
		"webapp", "deploy",
		"--resource-group", req.ResourceGroup,
		"--name", req.Name,
		"--src-path", req.SrcPath,
		"--subscription", req.Subscription,
		"--target-path", req.TargetPath,
		"--type", req.Type,
	}
	if req.SlotName != nil {
		args = append(args, "--slot", *req.SlotName)
	}
	if req.Restart != nil {
		args = append(args, "--restart", strconv.FormatBool(*req.Restart))
	}
	if req.Async != nil {
		args = append(args, "--async", strconv.FormatBool(*req.Async))
	}
	return args
}

func deployTool(opts Options) tool.Tool {
	logger := opts.Logger.With("tool", WebappDeploy)
	return tool.Define(WebappDeploy,
		"Deploys a provided artifact to Azure Web Apps.",
		func(ctx context.Context, req DeployRequest) (*tool.Result, error) {
			spec := exec.Spec{Path: opts.Az, Args: DeployArgs(req)}
			logger.Info("deploying web app", "name", req.Name, "resource_group", req.ResourceGroup)

			out, err := opts.Runner.Run(ctx, spec)
			if err != nil {
				logger.Warn("deploy could not run", "error", err)
				return launchFailure(WebappDeploy, err), nil
			}
			if out.Success() {
				return tool.Text(out.Stdout), nil
			}
			logger.Info("deploy exited non-zero", "exit_code", out.ExitCode)
			return tool.Text(out.Stderr), nil
		}, opts.Az)
}
