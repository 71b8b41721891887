package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const passingScript = `name: two_appends
description: Appends two items
steps:
  - op: append
    item: a
  - op: append
    item: b
assertions:
  - type: final_items
    items: [a, b]
`

const failingScript = `name: wrong_order
description: Expects the wrong final order
steps:
  - op: append
    item: a
  - op: append
    item: b
assertions:
  - type: final_items
    items: [b, a]
`

const cueScript = `script: {
	name:        "cue_move"
	description: "Moves the last item to the front"
	initial: ["a", "b", "c"]
	steps: [{op: "move", from: 2, to: 0}]
	assertions: [{type: "notification_order", events: ["move 0:2 -> 0:0"]}]
}
`

// writeFile writes content to dir/name and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs cmd with args and returns stdout, stderr and the error.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
