package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/listsync/internal/harness"
)

// ScriptIssue is one script that failed to load.
type ScriptIssue struct {
	File    string `json:"file"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool          `json:"valid"`
	Scripts int           `json:"scripts"`
	Errors  []ScriptIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <script-or-dir>...",
		Short: "Check scripts without running them",
		Long: `Parse and validate scripts without running them.

Reports unknown fields, unknown ops, missing step arguments and malformed
assertions. CUE scripts are also checked for syntax errors and values that
are not concrete, with file positions where CUE provides them.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	var files []string
	for _, p := range paths {
		found, err := findScriptFiles(p, "")
		if err != nil {
			_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("path not found: %s", p), nil)
			return WrapExitError(ExitCommandError, "path not found", err)
		}
		files = append(files, found...)
	}

	if len(files) == 0 {
		_ = formatter.Error(ErrCodeNoScripts, "no script files found", nil)
		return NewExitError(ExitCommandError, "no script files found")
	}

	result := ValidationResult{Scripts: len(files)}
	for _, f := range files {
		formatter.VerboseLog("Validating %s", f)
		if _, err := harness.LoadScript(f); err != nil {
			result.Errors = append(result.Errors, issueFor(f, err))
		}
	}
	result.Valid = len(result.Errors) == 0

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// issueFor converts a load error, keeping the CUE position if there is one.
func issueFor(file string, err error) ScriptIssue {
	issue := ScriptIssue{File: file, Message: err.Error()}

	var scriptErr *harness.ScriptError
	if errors.As(err, &scriptErr) && scriptErr.Pos.IsValid() {
		issue.Line = scriptErr.Pos.Line()
		issue.Column = scriptErr.Pos.Column()
		issue.Message = scriptErr.Message
	}
	return issue
}

func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	msg := fmt.Sprintf("%d of %d script(s) invalid", len(result.Errors), result.Scripts)

	if formatter.JSON() {
		if err := formatter.Failure(result, ErrCodeLoadFailed, msg); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	w := formatter.Writer
	for _, issue := range result.Errors {
		if issue.Line > 0 {
			fmt.Fprintf(w, "✗ %s:%d:%d: %s\n", issue.File, issue.Line, issue.Column, issue.Message)
			continue
		}
		fmt.Fprintf(w, "✗ %s: %s\n", issue.File, issue.Message)
	}
	fmt.Fprintln(w, msg)
	return NewExitError(ExitFailure, msg)
}

func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}
	return formatter.Success(fmt.Sprintf("✓ %d script(s) valid", result.Scripts))
}
