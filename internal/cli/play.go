package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/listsync/internal/harness"
	"github.com/roach88/listsync/internal/journal"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Journal string
	Delay   time.Duration
	Inline  bool
}

// PlayResult is the play command's output payload.
type PlayResult struct {
	Script        string                 `json:"script"`
	Pass          bool                   `json:"pass"`
	RunID         string                 `json:"run_id,omitempty"`
	Notifications []harness.Notification `json:"notifications"`
	Steps         []harness.StepOutcome  `json:"steps"`
	FinalItems    []string               `json:"final_items"`
	Errors        []string               `json:"errors,omitempty"`
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play <script>",
		Short: "Play one script and print its notifications",
		Long: `Play a script against a fresh list machine.

Every mutation is applied in order by a single worker. Notifications are
delivered on a dedicated dispatcher loop (or inline with --inline) and
printed as they were recorded. With --journal each notification is also
written to a SQLite journal for later inspection with "listsync trace".

Exit codes:
  0 - Script passed
  1 - A step or assertion failed
  2 - Command error (script not found, journal unwritable, etc.)

Examples:
  listsync play ./scripts/reorder.yaml
  listsync play ./scripts/reorder.cue --delay 250ms
  listsync play ./scripts/reorder.yaml --journal ./listsync.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal to record notifications in")
	cmd.Flags().DurationVar(&opts.Delay, "delay", 0, "override the script's pacing delay")
	cmd.Flags().BoolVar(&opts.Inline, "inline", false, "deliver notifications on the worker goroutine")

	return cmd
}

func runPlay(opts *PlayOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	script, err := harness.LoadScript(path)
	if err != nil {
		_ = formatter.Error(ErrCodeLoadFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load script", err)
	}
	formatter.VerboseLog("Loaded script %s (%d steps)", script.Name, len(script.Steps))

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	runOpts := []harness.RunOption{harness.WithLogger(logger)}
	if !opts.Inline {
		runOpts = append(runOpts, harness.WithLoopDispatcher())
	}
	if cmd.Flags().Changed("delay") {
		runOpts = append(runOpts, harness.WithDelay(opts.Delay))
	}

	var recorder *journal.Recorder
	if opts.Journal != "" {
		j, err := journal.Open(opts.Journal)
		if err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				logger.Error("error closing journal", "error", closeErr)
			}
		}()

		runID, err := j.BeginRun(ctx, script.Name)
		if err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to start journal run", err)
		}
		recorder = j.NewRecorder(ctx, runID)
		runOpts = append(runOpts, harness.WithDelegate(recorder))
		logger.Debug("journal run started", "path", opts.Journal, "run_id", runID)
	}

	result, err := harness.Run(ctx, script, runOpts...)
	if err != nil {
		_ = formatter.Error(ErrCodeRunFailed, err.Error(), nil)
		return WrapExitError(ExitFailure, "script execution failed", err)
	}

	out := PlayResult{
		Script:        script.Name,
		Pass:          result.Pass,
		Notifications: result.Notifications,
		Steps:         result.Steps,
		FinalItems:    result.FinalItems,
		Errors:        result.Errors,
	}

	if recorder != nil {
		out.RunID = recorder.RunID()
		if err := recorder.Err(); err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to write journal", err)
		}
		logger.Debug("journal run recorded", "run_id", out.RunID, "notifications", recorder.Recorded())
	}

	if formatter.JSON() {
		if !out.Pass {
			if err := formatter.Failure(out, ErrCodeFailed, fmt.Sprintf("script %s failed", script.Name)); err != nil {
				return err
			}
			return NewExitError(ExitFailure, fmt.Sprintf("script %s failed", script.Name))
		}
		return formatter.Success(out)
	}

	return outputPlayText(cmd, out, logger)
}

func outputPlayText(cmd *cobra.Command, out PlayResult, logger *slog.Logger) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "▶ %s (%d steps)\n", out.Script, len(out.Steps))
	if len(out.Notifications) == 0 {
		fmt.Fprintln(w, "  (no notifications)")
	}
	for _, n := range out.Notifications {
		fmt.Fprintf(w, "  %s\n", n)
	}
	for _, s := range out.Steps {
		if s.Error != "" {
			fmt.Fprintf(w, "  step %d (%s) failed: %s\n", s.Step, s.Op, s.Error)
		}
	}
	fmt.Fprintf(w, "final: %q\n", out.FinalItems)
	if out.RunID != "" {
		fmt.Fprintf(w, "journal run: %s\n", out.RunID)
	}

	if !out.Pass {
		fmt.Fprintf(w, "✗ %s failed\n", out.Script)
		for _, e := range out.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
		logger.Debug("script failed", "script", out.Script, "errors", len(out.Errors))
		return NewExitError(ExitFailure, fmt.Sprintf("script %s failed", out.Script))
	}

	fmt.Fprintf(w, "✓ %s passed\n", out.Script)
	return nil
}
