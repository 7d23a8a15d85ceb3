// Command devflow serves developer-workflow tools to an MCP client over
// stdin and stdout.
//
// Usage:
//
//	devflow [-repository PATH] [-config FILE] [-log-level LEVEL] [-log-format text|json] [-version]
//
// Logs go to stderr; stdout carries only protocol messages.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/zero-day-ai/devflow/config"
	"github.com/zero-day-ai/devflow/exec"
	"github.com/zero-day-ai/devflow/guard"
	"github.com/zero-day-ai/devflow/health"
	"github.com/zero-day-ai/devflow/registry"
	"github.com/zero-day-ai/devflow/serve"
	"github.com/zero-day-ai/devflow/toolerr"
	"github.com/zero-day-ai/devflow/workflow"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type flags struct {
	repository string
	config     string
	logLevel   string
	logFormat  string
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (*flags, error) {
	f := &flags{}
	fs := flag.NewFlagSet("devflow", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.repository, "repository", "", "git work tree the server is bound to (optional)")
	fs.StringVar(&f.config, "config", "", "config file or directory (default: devflow.yaml, devflow.yml or devflow.toml in the working directory)")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text or json")
	fs.BoolVar(&f.version, "version", false, "print the version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return f, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	for _, name := range config.FileNames {
		if _, err := os.Stat(name); err == nil {
			return config.Load(name)
		}
	}
	return config.Default(), nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level, _ := config.ParseLevel(cfg.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	f, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	cfg, err := loadConfig(f.config)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if f.repository != "" {
		cfg.Repository = f.repository
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if f.version {
		fmt.Fprintf(stdout, "%s %s\n", cfg.Server.Name, cfg.Server.Version)
		return 0
	}

	logger := newLogger(cfg, stderr)
	if err := serveStdio(ctx, cfg, stdin, stdout, logger); err != nil {
		logger.Error("devflow stopped", "error", err)
		var te *toolerr.Error
		if errors.As(err, &te) {
			if hints := toolerr.FormatHints(te.Hints); hints != "" {
				fmt.Fprintln(stderr, hints)
			}
		}
		return 1
	}
	return 0
}

// metricInterval is how often tool-call metrics are written to the log.
const metricInterval = time.Minute

func workflowOptions(cfg *config.Config, runner exec.Runner, logger *slog.Logger) workflow.Options {
	return workflow.Options{
		Runner:               runner,
		Az:                   cfg.Binaries.Az,
		Dotnet:               cfg.Binaries.Dotnet,
		PublishConfiguration: cfg.Publish.Configuration,
		PublishEnv:           cfg.Publish.Env,
		ArchiveName:          cfg.Compress.ArchiveName,
		Logger:               logger,
	}
}

func serveStdio(ctx context.Context, cfg *config.Config, stdin io.Reader, stdout io.Writer, logger *slog.Logger) error {
	timeout, _ := cfg.CommandTimeout()
	runner := exec.New(
		exec.WithEnv(cfg.CommandEnv()),
		exec.WithTimeout(timeout),
		exec.WithLogger(logger),
	)

	reg, err := registry.New(workflow.Tools(workflowOptions(cfg, runner, logger))...)
	if err != nil {
		return err
	}

	guards, err := guard.Compile(cfg.Guards)
	if err != nil {
		return err
	}
	if unknown := guards.Unknown(reg.Names()); len(unknown) > 0 {
		return toolerr.New("config", "guards", toolerr.ErrCodeConfig,
			fmt.Sprintf("guards configured for unknown tools: %s", strings.Join(unknown, ", ")))
	}

	st, err := health.Startup(ctx, runner, cfg.Binaries.Git, cfg.Repository, reg.Tools())
	if err != nil {
		return err
	}
	if st.IsHealthy() {
		logger.Info("startup checks passed", "message", st.Message, "repository", cfg.Repository)
	} else {
		logger.Warn("some tools will fail until their binaries are installed", "status", st.Status, "message", st.Message, "details", st.Details)
	}

	info := serve.ServerInfo{Name: cfg.Server.Name, Version: cfg.Server.Version}
	tp := serve.NewTracerProvider(info, serve.NewLogSpanExporter(logger, slog.LevelDebug), logger)
	mp := serve.NewMeterProvider(info, serve.NewLogMetricExporter(logger, slog.LevelDebug), metricInterval, logger)
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
		if err := mp.Shutdown(context.Background()); err != nil {
			logger.Warn("meter shutdown failed", "error", err)
		}
	}()

	srv := serve.New(reg,
		serve.WithLogger(logger),
		serve.WithGuards(guards),
		serve.WithTracerProvider(tp),
		serve.WithMeterProvider(mp),
	)
	err = srv.Serve(ctx, serve.NewStdioTransport(stdin, stdout, info, serve.WithStdioLogger(logger)))
	if errors.Is(err, context.Canceled) {
		logger.Info("shutting down")
		return nil
	}
	return err
}
