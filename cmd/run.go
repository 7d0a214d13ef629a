/*
Copyright © 2026 ソニーレベル <c7kali3@gmail.com>

*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sony-level/ktp-tester/internal/exec"
	"github.com/sony-level/ktp-tester/internal/logsink"
	"github.com/sony-level/ktp-tester/internal/pipeline"
	"github.com/sony-level/ktp-tester/internal/prereq"
)

// How long to wait for a terminated server to exit
const shutdownGrace = 10 * time.Second

var (
	keepWorkspace bool
	pythonPath    string
	usePTY        bool
	noBrowser     bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [repository]",
	Short: "Clone, install and run a repository",
	Long: `Clone a repository, create its virtual environment, install its
requirements and run its entry file.

The reference is a clone URL, optionally followed by /commit/<revision>
to check out a specific commit. Script projects run main.py to completion.
Streamlit projects are started as a server and stay up until Ctrl+C.
Without an argument the repository is asked for interactively.

Examples:
  ktp run https://github.com/user/repo
  ktp run https://github.com/user/repo/commit/1a2b3c4
  ktp run git@github.com:user/repo.git --keep
  ktp run https://github.com/user/repo --log-file run.log`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("python") {
			cfg.Python = pythonPath
		}
		if cmd.Flags().Changed("pty") {
			cfg.Runner.PTY = usePTY
		}

		if len(args) == 1 {
			return executeRun(args[0], keepWorkspace)
		}

		reference, keep, err := promptRequest(!cmd.Flags().Changed("keep"))
		if err != nil {
			return err
		}
		return executeRun(reference, keep)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&keepWorkspace, "keep", false, "Keep the checkout under the projects root (<projects_root>/<owner>/<name>)")
	runCmd.Flags().StringVar(&pythonPath, "python", "", "Base Python interpreter used to create the environment")
	runCmd.Flags().BoolVar(&usePTY, "pty", false, "Run scripts attached to a pseudo-terminal (Unix only)")
	runCmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Print the server URL instead of opening it")
}

func executeRun(reference string, keep bool) error {
	// An explicit interpreter is validated when the environment is built
	if cfg.Python == "" {
		if err := prereq.NewChecker().Preflight("python"); err != nil {
			return err
		}
	}

	sink, closeSink, err := buildSink()
	if err != nil {
		return err
	}
	defer closeSink()

	opener := exec.DefaultOpener
	if noBrowser {
		opener = func(url string) error {
			sink.Append("Server ready at "+url, logsink.TagSystem)
			return nil
		}
	}

	p, err := pipeline.New(&pipeline.Options{
		Config:  cfg,
		Sink:    sink,
		Logger:  logger,
		OpenURL: opener,
	})
	if err != nil {
		return err
	}

	// Interrupts cancel the run and tear down any server it started
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := p.Registry()
	defer func() {
		if err := registry.Shutdown(); err != nil {
			logger.Warn("failed to stop server", "err", err)
		}
	}()

	run := p.Start(ctx, pipeline.Request{Reference: reference, Retain: keep})
	result, err := run.Wait()
	if err != nil {
		return err
	}

	logger.Debug("run finished", "run", result.RunID, "duration", result.Duration)
	if result.Workspace != nil && result.Workspace.Retained {
		logger.Info("workspace kept", "path", result.Workspace.Root)
	}

	if result.Handle == nil {
		return nil
	}
	return waitServer(ctx, result, registry)
}

// waitServer blocks until the server exits or an interrupt arrives
func waitServer(ctx context.Context, result *pipeline.Result, registry *exec.Registry) error {
	h := result.Handle
	logger.Info("server running, press Ctrl+C to stop", "pid", h.PID)

	select {
	case <-h.Done():
	case <-ctx.Done():
		if err := registry.Shutdown(); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		select {
		case <-h.Done():
		case <-time.After(shutdownGrace):
			return fmt.Errorf("server (pid %d) did not exit within %s", h.PID, shutdownGrace)
		}
	}

	code, _ := h.ExitCode()
	logger.Debug("server stopped", "state", h.State(), "code", code)

	// The pipeline also removes it asynchronously; do it before the process exits
	if err := result.Workspace.Cleanup(); err != nil {
		logger.Warn("workspace cleanup failed", "err", err)
	}
	return nil
}

// buildSink returns the terminal sink, fanned out to --log-file when set
func buildSink() (logsink.Sink, func(), error) {
	terminal := logsink.NewTerminalSink(os.Stdout)
	if logFile == "" {
		return terminal, func() {}, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return logsink.Multi{terminal, logsink.NewWriterSink(f)}, func() { f.Close() }, nil
}
