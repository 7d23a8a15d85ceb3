// Package exec runs external commands for devflow tools.
// It wraps os/exec with a context-aware API that captures stdout and stderr
// in full and reports the exit code without treating a non-zero exit as an error.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/zero-day-ai/devflow/toolerr"
)

// Spec describes one command invocation. It is built fresh for every call.
type Spec struct {
	// Path is the name or path of the executable (required)
	Path string

	// Args are the command-line arguments, in order
	Args []string

	// Dir is the working directory (optional, defaults to the server's)
	Dir string

	// Env is overlaid on the inherited environment (optional)
	Env map[string]string
}

// String renders the command line for logs.
func (s Spec) String() string {
	parts := make([]string, 0, len(s.Args)+1)
	parts = append(parts, s.Path)
	for _, a := range s.Args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Outcome is an immutable snapshot of one finished process.
type Outcome struct {
	// ExitCode is the process exit code, 0 on success
	ExitCode int

	// Stdout is everything the process wrote to standard output
	Stdout string

	// Stderr is everything the process wrote to standard error
	Stderr string

	// Duration is the wall time of the execution
	Duration time.Duration
}

// Success reports whether the process exited with code 0.
func (o *Outcome) Success() bool {
	return o != nil && o.ExitCode == 0
}

// Runner launches a command, waits for it and captures its output.
type Runner interface {
	Run(ctx context.Context, spec Spec) (*Outcome, error)
}

// Option configures an OSRunner.
type Option func(*OSRunner)

// WithEnv sets the base environment overlay applied to every command.
// Per-call Spec.Env entries win over these.
func WithEnv(env map[string]string) Option {
	return func(r *OSRunner) {
		r.env = env
	}
}

// WithTimeout bounds every command. Zero (the default) means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *OSRunner) {
		r.timeout = d
	}
}

// WithLogger sets the logger used for command tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(r *OSRunner) {
		r.logger = logger
	}
}

// OSRunner runs commands as child processes of the server.
type OSRunner struct {
	env     map[string]string
	timeout time.Duration
	logger  *slog.Logger
}

// New creates an OSRunner with the given options.
func New(opts ...Option) *OSRunner {
	r := &OSRunner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.logger = r.logger.With("component", "exec")
	return r
}

// Run executes spec and blocks until the process exits.
//
// A non-zero exit code is not treated as an error: the Outcome is returned
// with the exit code populated so the caller decides what it means. Only
// failures to run the process at all (binary not found, permission denied,
// timeout) return an error, as a *toolerr.Error.
func (r *OSRunner) Run(ctx context.Context, spec Spec) (*Outcome, error) {
	if spec.Path == "" {
		return nil, toolerr.New("exec", "run", toolerr.ErrCodeInvalidInput, "command path is required")
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)
	if spec.Dir != "" {
		cmd.Dir = spec.Dir
	}
	cmd.Env = MergeEnv(os.Environ(), r.env, spec.Env)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("running command", "command", spec.String(), "dir", spec.Dir)

	start := time.Now()
	err := cmd.Run()
	outcome := &Outcome{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return outcome, toolerr.New("exec", "run", toolerr.ErrCodeExecutionFailed,
				fmt.Sprintf("command timed out after %v", r.timeout)).WithCause(ctx.Err())
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			outcome.ExitCode = exitErr.ExitCode()
			r.logger.Debug("command exited", "command", spec.Path, "exit_code", outcome.ExitCode, "duration", outcome.Duration)
			return outcome, nil
		}

		if errors.Is(err, exec.ErrNotFound) {
			return outcome, binaryNotFound(spec, err)
		}

		// os.StartProcess reports a missing working directory as chdir
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) && pathErr.Op == "chdir" {
			return outcome, toolerr.New("exec", "run", toolerr.ErrCodeExecutionFailed,
				fmt.Sprintf("working directory %s is not usable", spec.Dir)).WithCause(err)
		}

		if errors.Is(err, os.ErrNotExist) {
			return outcome, binaryNotFound(spec, err)
		}

		return outcome, toolerr.New("exec", "run", toolerr.ErrCodeExecutionFailed,
			"command execution failed").WithCause(err)
	}

	r.logger.Debug("command exited", "command", spec.Path, "exit_code", 0, "duration", outcome.Duration)
	return outcome, nil
}

func binaryNotFound(spec Spec, cause error) error {
	return toolerr.New("exec", "run", toolerr.ErrCodeBinaryNotFound,
		fmt.Sprintf("%s binary not found", spec.Path)).WithCause(cause)
}

// MergeEnv overlays the given maps, in order, on a KEY=value environment.
// Later overlays win. When no overlay has entries, base is returned unchanged.
func MergeEnv(base []string, overlays ...map[string]string) []string {
	merged := make(map[string]string)
	for _, o := range overlays {
		for k, v := range o {
			merged[k] = v
		}
	}
	if len(merged) == 0 {
		return base
	}

	env := make([]string, 0, len(base)+len(merged))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, overridden := merged[key]; overridden {
			continue
		}
		env = append(env, kv)
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+merged[k])
	}
	return env
}

// BinaryPath returns the full path to a binary in the system PATH.
// It returns an error if the binary is not found.
func BinaryPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("binary %q not found in PATH: %w", name, err)
	}
	return path, nil
}
