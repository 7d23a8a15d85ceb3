package exec

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/devflow/toolerr"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestRun_Success(t *testing.T) {
	skipOnWindows(t)

	tests := []struct {
		name           string
		spec           Spec
		expectedStdout string
	}{
		{
			name:           "simple echo",
			spec:           Spec{Path: "echo", Args: []string{"hello", "world"}},
			expectedStdout: "hello world\n",
		},
		{
			name:           "echo without args",
			spec:           Spec{Path: "echo"},
			expectedStdout: "\n",
		},
		{
			name:           "stdout is not trimmed",
			spec:           Spec{Path: "printf", Args: []string{"  a\n\n"}},
			expectedStdout: "  a\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := New().Run(context.Background(), tt.spec)
			require.NoError(t, err)
			require.NotNil(t, outcome)

			assert.Equal(t, 0, outcome.ExitCode)
			assert.True(t, outcome.Success())
			assert.Equal(t, tt.expectedStdout, outcome.Stdout)
			assert.Empty(t, outcome.Stderr)
		})
	}
}

func TestRun_NonZeroExit(t *testing.T) {
	skipOnWindows(t)

	outcome, err := New().Run(context.Background(), Spec{
		Path: "sh",
		Args: []string{"-c", "echo partial; echo boom >&2; exit 42"},
	})

	// Non-zero exit is reported through the outcome, not as an error
	require.NoError(t, err)
	assert.Equal(t, 42, outcome.ExitCode)
	assert.False(t, outcome.Success())
	assert.Equal(t, "partial\n", outcome.Stdout)
	assert.Equal(t, "boom\n", outcome.Stderr)
}

func TestRun_Timeout(t *testing.T) {
	skipOnWindows(t)

	start := time.Now()
	outcome, err := New(WithTimeout(100*time.Millisecond)).Run(context.Background(), Spec{
		Path: "sleep",
		Args: []string{"10"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.Equal(t, toolerr.ErrCodeExecutionFailed, toolerr.Code(err))
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.NotNil(t, outcome)
}

func TestRun_WithDir(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()

	outcome, err := New().Run(context.Background(), Spec{Path: "pwd", Dir: dir})
	require.NoError(t, err)

	resolved, _ := os.Readlink(dir)
	got := strings.TrimSpace(outcome.Stdout)
	assert.True(t, strings.HasSuffix(got, dir) || (resolved != "" && strings.HasSuffix(got, resolved)),
		"expected working dir %q, got %q", dir, got)
}

func TestRun_EnvOverlay(t *testing.T) {
	skipOnWindows(t)
	t.Setenv("DEVFLOW_INHERITED", "from-parent")

	r := New(WithEnv(map[string]string{
		"DEVFLOW_BASE":     "base",
		"DEVFLOW_OVERRIDE": "base",
	}))

	outcome, err := r.Run(context.Background(), Spec{
		Path: "sh",
		Args: []string{"-c", "echo $DEVFLOW_INHERITED $DEVFLOW_BASE $DEVFLOW_OVERRIDE"},
		Env:  map[string]string{"DEVFLOW_OVERRIDE": "call"},
	})
	require.NoError(t, err)
	assert.Equal(t, "from-parent base call\n", outcome.Stdout)
}

func TestRun_BinaryNotFound(t *testing.T) {
	outcome, err := New().Run(context.Background(), Spec{Path: "this-binary-does-not-exist-12345"})

	require.Error(t, err)
	assert.Equal(t, toolerr.ErrCodeBinaryNotFound, toolerr.Code(err))
	assert.NotNil(t, outcome)
}

func TestRun_MissingWorkingDirectory(t *testing.T) {
	skipOnWindows(t)
	dir := filepath.Join(t.TempDir(), "gone")

	_, err := New().Run(context.Background(), Spec{Path: "sh", Args: []string{"-c", "true"}, Dir: dir})

	require.Error(t, err)
	assert.Equal(t, toolerr.ErrCodeExecutionFailed, toolerr.Code(err))
	assert.Contains(t, err.Error(), "working directory "+dir)
	assert.NotContains(t, err.Error(), "binary not found")
}

func TestRun_MissingBinaryByPath(t *testing.T) {
	skipOnWindows(t)
	missing := filepath.Join(t.TempDir(), "dotnet")

	_, err := New().Run(context.Background(), Spec{Path: missing, Dir: t.TempDir()})

	require.Error(t, err)
	assert.Equal(t, toolerr.ErrCodeBinaryNotFound, toolerr.Code(err))
}

func TestRun_EmptyPath(t *testing.T) {
	outcome, err := New().Run(context.Background(), Spec{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "command path is required")
	assert.Nil(t, outcome)
}

func TestMergeEnv(t *testing.T) {
	base := []string{"A=1", "B=2", "PATH=/bin"}

	assert.Equal(t, base, MergeEnv(base))
	assert.Equal(t, base, MergeEnv(base, nil, map[string]string{}))

	got := MergeEnv(base, map[string]string{"B": "x", "C": "3"}, map[string]string{"C": "4"})
	assert.Equal(t, []string{"A=1", "PATH=/bin", "B=x", "C=4"}, got)
}

func TestSpec_String(t *testing.T) {
	s := Spec{Path: "az", Args: []string{"webapp", "deploy", "--src-path", "C:\\my dir\\api.zip", "--slot", ""}}
	assert.Equal(t, `az webapp deploy --src-path "C:\\my dir\\api.zip" --slot ""`, s.String())
}

func TestRecorder(t *testing.T) {
	rec := &Recorder{Outcome: &Outcome{ExitCode: 1, Stderr: "boom"}}

	out, err := rec.Run(context.Background(), Spec{Path: "az", Args: []string{"login"}})
	require.NoError(t, err)
	assert.Equal(t, "boom", out.Stderr)

	_, _ = rec.Run(context.Background(), Spec{Path: "dotnet"})
	calls := rec.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "az", calls[0].Path)
	assert.Equal(t, "dotnet", calls[1].Path)

	empty := &Recorder{}
	out, err = empty.Run(context.Background(), Spec{Path: "git"})
	require.NoError(t, err)
	assert.True(t, out.Success())
}

func TestBinaryPath(t *testing.T) {
	_, err := BinaryPath("this-binary-does-not-exist-12345")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in PATH")

	if runtime.GOOS != "windows" {
		path, err := BinaryPath("sh")
		require.NoError(t, err)
		_, statErr := os.Stat(path)
		assert.NoError(t, statErr)
	}
}
