package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/listsync/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update    bool   // regenerate golden files
	Filter    string // script filter (glob pattern)
	GoldenDir string // golden directory (default: <scripts-dir>/golden)
}

// ScriptResult holds the result of a single script execution.
type ScriptResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Golden string   `json:"golden,omitempty"` // "match", "updated" or "missing"
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scripts []ScriptResult `json:"scripts"`
	Passed  int            `json:"passed"`
	Failed  int            `json:"failed"`
	Total   int            `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scripts-dir>",
		Short: "Run every script and compare against golden snapshots",
		Long: `Run every script in a directory.

A script passes when its steps fail exactly where expect_error says and
all of its assertions hold. When a golden snapshot exists for the script
(<golden-dir>/<file-name>.golden), the run's snapshot must also match it
byte for byte.

Exit codes:
  0 - All scripts passed
  1 - One or more scripts failed
  2 - Command error (invalid paths, etc.)

Examples:
  listsync test ./scripts
  listsync test ./scripts --filter "move-*"
  listsync test ./scripts --update
  listsync test ./scripts --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scripts by glob pattern")
	cmd.Flags().StringVar(&opts.GoldenDir, "golden", "", "golden snapshot directory (default <scripts-dir>/golden)")

	return cmd
}

func runTests(opts *TestOptions, scriptsDir string, cmd *cobra.Command) error {
	info, err := os.Stat(scriptsDir)
	if err != nil || !info.IsDir() {
		return NewExitError(ExitCommandError, fmt.Sprintf("scripts directory not found: %s", scriptsDir))
	}

	goldenDir := opts.GoldenDir
	if goldenDir == "" {
		goldenDir = filepath.Join(scriptsDir, "golden")
	}

	scriptFiles, err := findScriptFiles(scriptsDir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scripts", err)
	}

	formatter := newFormatter(opts.RootOptions, cmd)

	if len(scriptFiles) == 0 {
		if formatter.JSON() {
			return formatter.Success(TestResult{Scripts: []ScriptResult{}})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scripts found.")
		return nil
	}

	result := TestResult{
		Scripts: make([]ScriptResult, 0, len(scriptFiles)),
		Total:   len(scriptFiles),
	}

	for _, scriptFile := range scriptFiles {
		scriptResult := runScript(cmd.Context(), scriptFile, goldenDir, opts, formatter)
		result.Scripts = append(result.Scripts, scriptResult)

		if scriptResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		printScriptResult(cmd, formatter, scriptResult)
	}

	if formatter.JSON() {
		if result.Failed > 0 {
			msg := fmt.Sprintf("%d script(s) failed", result.Failed)
			if err := formatter.Failure(result, ErrCodeFailed, msg); err != nil {
				return err
			}
			return NewExitError(ExitFailure, msg)
		}
		return formatter.Success(result)
	}

	return outputTestText(cmd, result)
}

// runScript executes a single script and returns the result.
func runScript(ctx context.Context, scriptFile, goldenDir string, opts *TestOptions, formatter *OutputFormatter) ScriptResult {
	if ctx == nil {
		ctx = context.Background()
	}

	sr := ScriptResult{Name: filepath.Base(scriptFile), File: scriptFile}

	script, err := harness.LoadScript(scriptFile)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("failed to load script: %v", err)}
		return sr
	}
	sr.Name = script.Name

	result, err := harness.Run(ctx, script)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("execution failed: %v", err)}
		return sr
	}
	formatter.VerboseLog("Ran %s: %d notifications", script.Name, len(result.Notifications))

	snapshot := harness.Snapshot(script.Name, result)
	goldenPath := goldenFilePath(goldenDir, scriptFile)

	if opts.Update {
		if err := writeGoldenFile(goldenPath, snapshot); err != nil {
			sr.Errors = []string{fmt.Sprintf("failed to update golden file: %v", err)}
			return sr
		}
		sr.Golden = "updated"
	} else {
		golden, err := os.ReadFile(goldenPath)
		switch {
		case os.IsNotExist(err):
			// No golden file - use assertion-based validation only
			sr.Golden = "missing"
		case err != nil:
			sr.Errors = []string{fmt.Sprintf("failed to read golden file: %v", err)}
			return sr
		case !bytes.Equal(golden, snapshot):
			sr.Errors = append(sr.Errors, "snapshot does not match golden file (run with --update to regenerate)")
		default:
			sr.Golden = "match"
		}
	}

	sr.Errors = append(sr.Errors, result.Errors...)
	sr.Pass = len(sr.Errors) == 0
	return sr
}

// goldenFilePath returns the golden file for a script: the script's file
// name with its extension replaced by .golden.
func goldenFilePath(goldenDir, scriptFile string) string {
	base := filepath.Base(scriptFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(goldenDir, name+".golden")
}

// writeGoldenFile writes snapshot, creating the golden directory if needed.
func writeGoldenFile(path string, snapshot []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, snapshot, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

func printScriptResult(cmd *cobra.Command, formatter *OutputFormatter, sr ScriptResult) {
	if formatter.JSON() {
		return
	}
	w := cmd.OutOrStdout()

	if sr.Pass {
		if sr.Golden == "updated" {
			fmt.Fprintf(w, "✓ %s (golden updated)\n", sr.Name)
			return
		}
		fmt.Fprintf(w, "✓ %s\n", sr.Name)
		return
	}

	fmt.Fprintf(w, "✗ %s\n", sr.Name)
	for _, e := range sr.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

// outputTestText outputs the test summary as text.
func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d script(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scripts passed")
	return nil
}
