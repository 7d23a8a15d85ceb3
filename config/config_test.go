package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/devflow/toolerr"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "Specific workflow server", cfg.Server.Name)
	assert.Equal(t, "api.zip", cfg.Compress.ArchiveName)
	assert.Equal(t, "Release", cfg.Publish.Configuration)
	assert.Equal(t, "az", cfg.Binaries.Az)
	assert.NoError(t, cfg.Validate())
	assert.Empty(t, cfg.CommandEnv())
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "devflow.yaml", `
repository: /src/app
log:
  level: debug
binaries:
  az: /opt/az/bin/az
toolchain:
  dotnet_root: /usr/share/dotnet
  env:
    MSBuildSDKsPath: /usr/share/dotnet/sdk/8.0.100/Sdks
exec:
  timeout: 10m
publish:
  env:
    DOTNET_CLI_TELEMETRY_OPTOUT: "1"
guards:
  webapp_deploy: 'args.type == "zip"'
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/src/app", cfg.Repository)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format, "unset fields keep defaults")
	assert.Equal(t, "/opt/az/bin/az", cfg.Binaries.Az)
	assert.Equal(t, "git", cfg.Binaries.Git)
	assert.Equal(t, `args.type == "zip"`, cfg.Guards["webapp_deploy"])

	timeout, err := cfg.CommandTimeout()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, timeout)

	assert.Equal(t, map[string]string{
		"DOTNET_ROOT":     "/usr/share/dotnet",
		"MSBuildSDKsPath": "/usr/share/dotnet/sdk/8.0.100/Sdks",
	}, cfg.CommandEnv())
	assert.Equal(t, "Release", cfg.Publish.Configuration)
	assert.Equal(t, map[string]string{"DOTNET_CLI_TELEMETRY_OPTOUT": "1"}, cfg.Publish.Env)
	assert.NotContains(t, cfg.CommandEnv(), "DOTNET_CLI_TELEMETRY_OPTOUT")
}

func TestLoad_TOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "devflow.toml", `
repository = "/src/app"

[server]
name = "workflow"
version = "1.2.3"

[compress]
archive_name = "site.zip"

[publish.env]
NUGET_PACKAGES = "/cache/nuget"

[guards]
code_publish = 'args.version.startsWith("v")'
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "workflow", cfg.Server.Name)
	assert.Equal(t, "1.2.3", cfg.Server.Version)
	assert.Equal(t, "site.zip", cfg.Compress.ArchiveName)
	assert.Equal(t, "Release", cfg.Publish.Configuration)
	assert.Equal(t, "/cache/nuget", cfg.Publish.Env["NUGET_PACKAGES"])
	assert.Contains(t, cfg.Guards, "code_publish")
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    func() string
		wantErr string
	}{
		{
			name:    "missing path",
			path:    func() string { return filepath.Join(dir, "nope.yaml") },
			wantErr: "failed to stat path",
		},
		{
			name:    "directory without config",
			path:    func() string { return t.TempDir() },
			wantErr: "no devflow.yaml",
		},
		{
			name:    "malformed yaml",
			path:    func() string { return writeFile(t, dir, "bad.yaml", "log: [") },
			wantErr: "failed to parse config file",
		},
		{
			name:    "bad level",
			path:    func() string { return writeFile(t, dir, "level.yaml", "log: {level: loud}") },
			wantErr: "invalid log.level",
		},
		{
			name:    "bad format",
			path:    func() string { return writeFile(t, dir, "format.yaml", "log: {format: xml}") },
			wantErr: "invalid log.format",
		},
		{
			name:    "archive name with directory",
			path:    func() string { return writeFile(t, dir, "archive.yaml", "compress: {archive_name: ../api.zip}") },
			wantErr: "invalid compress.archive_name",
		},
		{
			name:    "bad timeout",
			path:    func() string { return writeFile(t, dir, "timeout.yaml", "exec: {timeout: soon}") },
			wantErr: "invalid exec.timeout",
		},
		{
			name:    "empty binary",
			path:    func() string { return writeFile(t, dir, "bin.yaml", "binaries: {az: \"\"}") },
			wantErr: "must not be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, toolerr.ErrCodeConfig, toolerr.Code(err))
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("trace")
	assert.Error(t, err)
}
