package health

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	devexec "github.com/zero-day-ai/devflow/exec"
	"github.com/zero-day-ai/devflow/tool"
	"github.com/zero-day-ai/devflow/toolerr"
)

// BinaryCheck verifies that a binary exists and is executable. Names
// containing a path separator are checked directly instead of via PATH.
func BinaryCheck(name string) Status {
	if name == "" {
		return Unhealthy("binary name cannot be empty", nil)
	}

	path, err := devexec.BinaryPath(name)
	if err != nil {
		return Unhealthy(
			fmt.Sprintf("binary '%s' not found in PATH", name),
			map[string]any{
				"binary": name,
				"error":  err.Error(),
			},
		)
	}

	return Healthy(fmt.Sprintf("binary '%s' found at %s", name, path))
}

// FileCheck verifies that a file or directory exists.
func FileCheck(path string) Status {
	if path == "" {
		return Unhealthy("path cannot be empty", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Unhealthy(
				fmt.Sprintf("path '%s' does not exist", path),
				map[string]any{"path": path},
			)
		}
		return Unhealthy(
			fmt.Sprintf("failed to stat path '%s'", path),
			map[string]any{"path": path, "error": err.Error()},
		)
	}

	kind := "file"
	if info.IsDir() {
		kind = "directory"
	}
	return Healthy(fmt.Sprintf("%s '%s' exists", kind, path))
}

// RepositoryCheck asks git whether path is inside a work tree.
func RepositoryCheck(ctx context.Context, runner devexec.Runner, git, path string) Status {
	if st := FileCheck(path); !st.IsHealthy() {
		return st
	}

	outcome, err := runner.Run(ctx, devexec.Spec{
		Path: git,
		Args: []string{"-C", path, "rev-parse", "--is-inside-work-tree"},
	})
	if err != nil {
		return Unhealthy(
			fmt.Sprintf("could not run %s", git),
			map[string]any{"path": path, "error": err.Error()},
		)
	}
	if !outcome.Success() || strings.TrimSpace(outcome.Stdout) != "true" {
		return Unhealthy(
			fmt.Sprintf("'%s' is not a git work tree", path),
			map[string]any{
				"path":      path,
				"exit_code": outcome.ExitCode,
				"stderr":    strings.TrimSpace(outcome.Stderr),
			},
		)
	}
	return Healthy(fmt.Sprintf("'%s' is a git work tree", path))
}

// Startup runs the checks performed before serving and combines them into
// one status. An unusable repository is returned as an error; missing tool
// binaries only degrade the status. repository may be empty.
func Startup(ctx context.Context, runner devexec.Runner, git, repository string, tools []tool.Tool) (Status, error) {
	checks := []Status{ToolsCheck(tools)}
	if repository != "" {
		repo := RepositoryCheck(ctx, runner, git, repository)
		if !repo.IsHealthy() {
			return repo, toolerr.EnrichError(
				toolerr.New("devflow", "startup", toolerr.ErrCodeInvalidRepository, repo.Message).
					WithDetails(repo.Details),
			)
		}
		checks = append(checks, repo)
	}
	return Combine(checks...), nil
}

// ToolsCheck verifies the binaries every tool requires. A missing binary
// makes the result degraded, not unhealthy: the other tools still work.
func ToolsCheck(tools []tool.Tool) Status {
	users := make(map[string][]string)
	for _, t := range tools {
		for _, bin := range t.Requires() {
			users[bin] = append(users[bin], t.Name())
		}
	}
	if len(users) == 0 {
		return Healthy("no external binaries required")
	}

	bins := make([]string, 0, len(users))
	for bin := range users {
		bins = append(bins, bin)
	}
	sort.Strings(bins)

	missing := make(map[string]any)
	for _, bin := range bins {
		if st := BinaryCheck(bin); !st.IsHealthy() {
			missing[bin] = users[bin]
		}
	}
	if len(missing) > 0 {
		return Degraded(
			fmt.Sprintf("%d of %d required binaries missing", len(missing), len(bins)),
			missing,
		)
	}
	return Healthy(fmt.Sprintf("all %d required binaries found", len(bins)))
}

// Combine aggregates checks: unhealthy if any is unhealthy, degraded if any
// is degraded, healthy otherwise.
func Combine(checks ...Status) Status {
	if len(checks) == 0 {
		return Healthy("no checks provided")
	}

	var unhealthy, degraded []string
	for _, check := range checks {
		msg := check.Message
		if msg == "" {
			msg = "unnamed check"
		}
		switch check.Status {
		case StatusUnhealthy:
			unhealthy = append(unhealthy, msg)
		case StatusDegraded:
			degraded = append(degraded, msg)
		}
	}

	if len(unhealthy) > 0 {
		return Unhealthy(
			fmt.Sprintf("%d check(s) failed", len(unhealthy)),
			map[string]any{"failed_checks": unhealthy, "degraded_checks": degraded},
		)
	}
	if len(degraded) > 0 {
		return Degraded(
			fmt.Sprintf("%d check(s) degraded", len(degraded)),
			map[string]any{"degraded_checks": degraded},
		)
	}
	return Healthy(fmt.Sprintf("all %d check(s) passed", len(checks)))
}
