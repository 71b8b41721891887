package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/listsync/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Journal string
	RunID   string
	Op      string // optional - filter to one mutation op
	List    bool   // list runs instead of tracing one
}

// TraceEntry is a single notification in the trace timeline.
type TraceEntry struct {
	Seq        int64  `json:"seq"`
	MutationID string `json:"mutation_id"`
	Op         string `json:"op"`
	Kind       string `json:"kind"`
	Event      string `json:"event"`
	Animation  string `json:"animation"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	RunID    string       `json:"run_id"`
	Name     string       `json:"name"`
	Timeline []TraceEntry `json:"timeline"`
	Stats    TraceStats   `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	Notifications int            `json:"notifications"`
	Mutations     int            `json:"mutations"`
	ByKind        map[string]int `json:"by_kind"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the notifications recorded in a journal",
		Long: `Show the notifications a view was sent during a recorded run.

Runs are recorded by "listsync play --journal". Without --run the most
recent run is shown. Notifications are listed in seq order, the order in
which the mutations were applied.

Examples:
  listsync trace --journal ./listsync.db
  listsync trace --journal ./listsync.db --list
  listsync trace --journal ./listsync.db --run <run-id> --op move
  listsync trace --journal ./listsync.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("journal")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run to trace (default: most recent)")
	cmd.Flags().StringVar(&opts.Op, "op", "", "filter to a mutation op, e.g. move_item")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list recorded runs")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	j, err := journal.Open(opts.Journal)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	runs, err := j.Runs(ctx)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if opts.List {
		return outputRuns(cmd, formatter, runs)
	}

	run, ok := selectRun(runs, opts.RunID)
	if !ok {
		if opts.RunID == "" {
			if formatter.JSON() {
				return formatter.Success(TraceResult{Timeline: []TraceEntry{}, Stats: TraceStats{ByKind: map[string]int{}}})
			}
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
			return nil
		}
		msg := fmt.Sprintf("run not found: %s", opts.RunID)
		_ = formatter.Error(ErrCodeNotFound, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	entries, err := j.Entries(ctx, run.ID)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read notifications", err)
	}

	result := buildTrace(run, entries, opts.Op)

	if formatter.JSON() {
		return formatter.Success(result)
	}
	return outputTraceText(cmd.OutOrStdout(), result, opts.Verbose)
}

// selectRun picks runID, or the most recent run when runID is empty.
func selectRun(runs []journal.Run, runID string) (journal.Run, bool) {
	if runID == "" {
		if len(runs) == 0 {
			return journal.Run{}, false
		}
		return runs[len(runs)-1], true
	}
	for _, r := range runs {
		if r.ID == runID {
			return r, true
		}
	}
	return journal.Run{}, false
}

// buildTrace converts journal entries to the timeline, keeping only
// opFilter's notifications when it is set.
func buildTrace(run journal.Run, entries []journal.Entry, opFilter string) TraceResult {
	result := TraceResult{
		RunID:    run.ID,
		Name:     run.Name,
		Timeline: []TraceEntry{},
		Stats:    TraceStats{ByKind: map[string]int{}},
	}

	mutations := make(map[string]bool)
	for _, e := range entries {
		ev := e.Event
		if opFilter != "" && ev.Origin.Op != opFilter {
			continue
		}

		result.Timeline = append(result.Timeline, TraceEntry{
			Seq:        ev.Origin.Seq,
			MutationID: ev.Origin.MutationID,
			Op:         ev.Origin.Op,
			Kind:       ev.Kind.String(),
			Event:      ev.String(),
			Animation:  string(ev.Animation),
		})
		result.Stats.ByKind[ev.Kind.String()]++
		mutations[ev.Origin.MutationID] = true
	}

	result.Stats.Notifications = len(result.Timeline)
	result.Stats.Mutations = len(mutations)
	return result
}

func outputRuns(cmd *cobra.Command, formatter *OutputFormatter, runs []journal.Run) error {
	if formatter.JSON() {
		return formatter.Success(runs)
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %-24s %3d notifications  %s\n", r.ID, r.Name, r.Notifications, r.CreatedAt)
	}
	return nil
}

// outputTraceText outputs the trace result as text.
func outputTraceText(w io.Writer, result TraceResult, verbose bool) error {
	fmt.Fprintf(w, "Trace for Run: %s (%s)\n", result.RunID, result.Name)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no notifications)")
	}
	for _, e := range result.Timeline {
		fmt.Fprintf(w, "  [%d] %-12s %s\n", e.Seq, e.Op, e.Event)
		if verbose {
			fmt.Fprintf(w, "       Mutation: %s  Animation: %s\n", truncateID(e.MutationID), e.Animation)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Notifications: %d\n", result.Stats.Notifications)
	fmt.Fprintf(w, "  Mutations:     %d\n", result.Stats.Mutations)
	if len(result.Stats.ByKind) > 0 {
		fmt.Fprintf(w, "  By kind:       %s\n", formatCounts(result.Stats.ByKind))
	}

	return nil
}

// formatCounts renders counts as "k=v" pairs with sorted keys for
// deterministic output.
func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return strings.Join(parts, " ")
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
