// ============================================================================
// autoves CLI - Command Line Interface
// ============================================================================
//
// Package: internal/cli
// File: cli.go
// Purpose: Cobra based command line for the vesti auto-compiler
//
// Command Structure:
//   autoves FILE                   # Watch FILE and recompile on change
//   ├── -L                         # latex
//   ├── -p                         # pdflatex (default)
//   ├── -x                         # xelatex
//   ├── -l                         # lualatex
//   ├── -S                         # FILE has subfiles
//   ├── --config, -c               # Optional YAML config file
//   ├── --log-level                # Override log level
//   └── --version
//
//   Mode precedence when several flags are given: -L > -p > -x > -l.
//
// Signal Handling:
//   SIGINT / SIGTERM print "exit autoves..." and return immediately with
//   exit status 0. A compiler that is still running is not waited for.
//
// Exit Codes:
//   0  interrupted by the user
//   1  config error, unreadable watched file, compiler cannot be started,
//      malformed compiler output
//
// ============================================================================

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/ChuLiYu/autoves/internal/controller"
	"github.com/ChuLiYu/autoves/internal/metrics"
	"github.com/ChuLiYu/autoves/internal/reporter"
	"github.com/ChuLiYu/autoves/internal/server"
	"github.com/ChuLiYu/autoves/internal/worker"
	"github.com/ChuLiYu/autoves/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// FarewellMessage is printed when the watcher is interrupted
const FarewellMessage = "exit autoves..."

var version = "dev"

// options holds the parsed command line
type options struct {
	configFile string
	logLevel   string
	flags      types.Flags
	hasSub     bool
}

// environment is everything run touches outside the process
type environment struct {
	stdout  io.Writer
	stderr  io.Writer
	goos    string
	signals <-chan os.Signal // nil subscribes to SIGINT/SIGTERM
}

// reportedError marks an error the reporter already showed to the user
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Execute runs the command line and returns the process exit code
func Execute() int {
	return execute(BuildCLI(), os.Stderr)
}

func execute(cmd *cobra.Command, stderr io.Writer) int {
	if err := cmd.Execute(); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprint(stderr, reporter.FormatFatal(err))
		}
		return 1
	}
	return 0
}

func BuildCLI() *cobra.Command {
	return buildCLI(environment{
		stdout: os.Stdout,
		stderr: os.Stderr,
		goos:   runtime.GOOS,
	})
}

func buildCLI(envr environment) *cobra.Command {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "autoves FILE",
		Short: "autoves: recompile a vesti file whenever it changes",
		Long: `autoves watches a single vesti source file and runs
"vesti compile" each time its modification time moves forward.
Failed compiles are reported and watching continues until Ctrl+C.`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0], opts, envr)
		},
	}

	f := rootCmd.Flags()
	f.BoolVarP(&opts.flags.Plain, "latex", "L", false, "compile with latex")
	f.BoolVarP(&opts.flags.Pdf, "pdflatex", "p", false, "compile with pdflatex")
	f.BoolVarP(&opts.flags.Xe, "xelatex", "x", false, "compile with xelatex")
	f.BoolVarP(&opts.flags.Lua, "lualatex", "l", false, "compile with lualatex")
	f.BoolVarP(&opts.hasSub, "subfiles", "S", false, "the vesti file has subfiles")
	f.StringVarP(&opts.configFile, "config", "c", "", "config file path (YAML)")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.SetOut(envr.stdout)
	rootCmd.SetErr(envr.stderr)

	return rootCmd
}

func run(ctx context.Context, filename string, opts options, envr environment) error {
	// 最先訂閱訊號，啟動期間的 Ctrl+C 也走正常的結束流程
	signals := envr.signals
	if signals == nil {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		signals = sigChan
	}

	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyEnv(cfg)
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	level, _ := parseLevel(cfg.Log.Level)
	logger := slog.New(slog.NewTextHandler(envr.stderr, &slog.HandlerOptions{Level: level}))

	mode := opts.flags.Resolve(cfg.defaultMode())
	rep := reporter.New(envr.goos, envr.stderr, filepath.Base(cfg.Compiler.Executable), logger)

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		collector = metrics.NewCollector(reg)
		go func() {
			logger.Info("Starting metrics server", "port", cfg.Metrics.Port)
			if err := metrics.StartServer(cfg.Metrics.Port, reg); err != nil {
				logger.Error("Metrics server error", "error", err)
			}
		}()
	}

	var health controller.StatusSink
	if cfg.Health.Enabled {
		srv := server.NewServer()
		defer srv.Stop()
		health = srv
		go func() {
			logger.Info("Starting health server", "port", cfg.Health.Port)
			if err := srv.ListenAndServe(cfg.Health.Port); err != nil {
				logger.Error("Health server error", "error", err)
			}
		}()
	}

	ctrl, err := controller.NewController(controller.Config{
		Filename:      filename,
		Mode:          mode,
		PlatformFlags: worker.PlatformFlags(envr.goos),
		HasSub:        opts.hasSub,
		Interval:      cfg.Watch.Interval,
		Timeout:       cfg.Compiler.Timeout,
		Invoker:       worker.NewWorker(cfg.Compiler.Executable, logger),
		Reporter:      rep,
		Status:        envr.stdout,
		Metrics:       collector,
		Health:        health,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create controller: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Run(ctx)
	}()

	select {
	case <-signals:
		cancel()
		fmt.Fprintln(envr.stdout, FarewellMessage)
		return nil

	case err := <-done:
		if err != nil {
			rep.ReportFatal(err)
			return &reportedError{err: err}
		}
		return nil
	}
}
