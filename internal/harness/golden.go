package harness

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders a result as stable text for golden comparison:
//
//	script: insert_then_move
//	notifications:
//	  2 mut-3 insert: insert [0:1]
//	view:
//	  reload_data
//	  insert 0:1
//	steps:
//	  [0] insert mut-3 ok
//	final: ["a" "x" "b"]
//
// Every line ends with a newline; empty lists render as "  (none)".
func Snapshot(name string, result *Result) []byte {
	var buf strings.Builder

	fmt.Fprintf(&buf, "script: %s\n", name)

	fmt.Fprintf(&buf, "notifications:\n")
	if len(result.Notifications) == 0 {
		fmt.Fprintf(&buf, "  (none)\n")
	}
	for _, n := range result.Notifications {
		fmt.Fprintf(&buf, "  %s\n", n)
	}

	fmt.Fprintf(&buf, "view:\n")
	if len(result.ViewCalls) == 0 {
		fmt.Fprintf(&buf, "  (none)\n")
	}
	for _, c := range result.ViewCalls {
		fmt.Fprintf(&buf, "  %s\n", c)
	}

	fmt.Fprintf(&buf, "steps:\n")
	if len(result.Steps) == 0 {
		fmt.Fprintf(&buf, "  (none)\n")
	}
	for _, s := range result.Steps {
		fmt.Fprintf(&buf, "  [%d] %s %s %s\n", s.Step, s.Op, s.MutationID, stepStatus(s))
	}

	fmt.Fprintf(&buf, "final: %q\n", result.FinalItems)

	return []byte(buf.String())
}

func stepStatus(s StepOutcome) string {
	switch {
	case s.Error != "":
		return s.Error
	case s.Completed:
		return "ok"
	default:
		return "pending"
	}
}

// RunWithGolden executes a script and compares its snapshot against
// testdata/golden/{script.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if script execution fails. Test failure (via goldie) occurs
// if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, script *Script, opts ...RunOption) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), script, opts...)
	if err != nil {
		return nil, err
	}

	AssertGolden(t, script.Name, result)
	return result, nil
}

// AssertGolden compares an existing result against the golden file for
// name without re-running the script.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Snapshot(name, result))
}
