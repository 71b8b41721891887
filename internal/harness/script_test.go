package harness

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScript_ValidYAML(t *testing.T) {
	s, err := LoadScript("testdata/scripts/insert_then_move.yaml")
	require.NoError(t, err)

	assert.Equal(t, "insert_then_move", s.Name)
	assert.Equal(t, "fade", s.Animation)
	assert.Equal(t, []string{"a", "b"}, s.Initial)
	require.Len(t, s.Steps, 2)
	assert.Equal(t, "insert", s.Steps[0].Op)
	require.NotNil(t, s.Steps[0].Index)
	assert.Equal(t, 1, *s.Steps[0].Index)
	assert.Nil(t, s.Steps[0].From)
	require.Len(t, s.Assertions, 3)
	assert.Equal(t, AssertViewCalls, s.Assertions[2].Type)
}

func TestLoadScript_ValidCUE(t *testing.T) {
	s, err := LoadScript("testdata/scripts/reorder_and_clear.cue")
	require.NoError(t, err)

	assert.Equal(t, "reorder_and_clear", s.Name)
	assert.Equal(t, "automatic", s.Animation)
	assert.Equal(t, []string{"one", "two", "three"}, s.Initial)
	require.Len(t, s.Steps, 3)
	assert.Equal(t, "move_updated", s.Steps[1].Op)
	require.NotNil(t, s.Steps[1].From)
	assert.Equal(t, 2, *s.Steps[1].From)
	assert.NotNil(t, s.Assertions[0].Items)
	assert.Empty(t, s.Assertions[0].Items)
}

func TestLoadScript_CUEReferences(t *testing.T) {
	path := writeScript(t, "refs.cue", `
#item: "shared"
script: {
	name:        "refs"
	description: "Uses a CUE definition"
	steps: [{op: "append", item: #item}]
	assertions: [{type: "final_items", items: [#item]}]
}
`)

	s, err := LoadScript(path)
	require.NoError(t, err)
	assert.Equal(t, "shared", s.Steps[0].Item)
	assert.Equal(t, []string{"shared"}, s.Assertions[0].Items)
}

func TestLoadScript_CUEErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{
			name:    "syntax",
			content: "script: {name: \n",
			wantMsg: "",
		},
		{
			name:    "missing script",
			content: "other: 1\n",
			wantMsg: "missing top-level \"script\" field",
		},
		{
			name: "incomplete",
			content: `script: {
	name:        string
	description: "x"
	steps: [{op: "clear"}]
	assertions: [{type: "error_count"}]
}
`,
			wantMsg: "",
		},
		{
			name: "invalid",
			content: `script: {
	name:        "bad"
	description: "x"
	steps: [{op: "explode"}]
	assertions: [{type: "error_count"}]
}
`,
			wantMsg: "unknown mutation op",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScript(t, "bad.cue", tt.content)

			_, err := LoadScript(path)
			require.Error(t, err)

			var scriptErr *ScriptError
			require.True(t, errors.As(err, &scriptErr), "want *ScriptError, got %T", err)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLoadScript_FileNotFound(t *testing.T) {
	_, err := LoadScript("testdata/scripts/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read script file")
}

func TestParseScript_UnknownField(t *testing.T) {
	_, err := ParseScript([]byte(`
name: typo
description: has a typo
steps:
  - op: clear
assertion:
  - type: error_count
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScript_Validation(t *testing.T) {
	const tail = `
assertions:
  - type: error_count
`
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"missing name", "description: d\nsteps: [{op: clear}]" + tail, "name is required"},
		{"missing description", "name: n\nsteps: [{op: clear}]" + tail, "description is required"},
		{"no steps", "name: n\ndescription: d\nsteps: []" + tail, "steps list is required"},
		{"no assertions", "name: n\ndescription: d\nsteps: [{op: clear}]\n", "assertions list is required"},
		{"negative section", "name: n\ndescription: d\nsection: -1\nsteps: [{op: clear}]" + tail, "section must be non-negative"},
		{"bad animation", "name: n\ndescription: d\nanimation: spin\nsteps: [{op: clear}]" + tail, "unknown animation"},
		{"bad delay", "name: n\ndescription: d\ndelay: soon\nsteps: [{op: clear}]" + tail, "delay"},
		{"negative delay", "name: n\ndescription: d\ndelay: -1s\nsteps: [{op: clear}]" + tail, "delay must be non-negative"},
		{"missing op", "name: n\ndescription: d\nsteps: [{item: a}]" + tail, "steps[0]: op is required"},
		{"unknown op", "name: n\ndescription: d\nsteps: [{op: shuffle}]" + tail, "unknown mutation op"},
		{"control op", "name: n\ndescription: d\nsteps: [{op: flush}]" + tail, "unknown mutation op"},
		{"insert without index", "name: n\ndescription: d\nsteps: [{op: insert, item: a}]" + tail, "index is required for insert"},
		{"append without item", "name: n\ndescription: d\nsteps: [{op: append}]" + tail, "item is required for append"},
		{"move without to", "name: n\ndescription: d\nsteps: [{op: move, from: 0}]" + tail, "to is required for move"},
		{"move_updated without from", "name: n\ndescription: d\nsteps: [{op: move_updated, item: a, to: 0}]" + tail, "from is required for move_updated"},
		{"stray items", "name: n\ndescription: d\nsteps: [{op: clear, items: [a]}]" + tail, "items is only valid for set_items"},
		{"bad expect_error", "name: n\ndescription: d\nsteps: [{op: clear, expect_error: BOOM}]" + tail, "unknown expect_error"},
		{"unknown assertion", "name: n\ndescription: d\nsteps: [{op: clear}]\nassertions: [{type: vibes}]\n", "unknown assertion type"},
		{"final_items without items", "name: n\ndescription: d\nsteps: [{op: clear}]\nassertions: [{type: final_items}]\n", "items is required"},
		{"order without events", "name: n\ndescription: d\nsteps: [{op: clear}]\nassertions: [{type: notification_order}]\n", "events list is required"},
		{"contains without event", "name: n\ndescription: d\nsteps: [{op: clear}]\nassertions: [{type: notification_contains}]\n", "event is required"},
		{"view_calls without calls", "name: n\ndescription: d\nsteps: [{op: clear}]\nassertions: [{type: view_calls}]\n", "calls is required"},
		{"negative count", "name: n\ndescription: d\nsteps: [{op: clear}]\nassertions: [{type: notification_count, count: -1}]\n", "count must be non-negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScript([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid script")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseScript_EmptyListsAllowed(t *testing.T) {
	s, err := ParseScript([]byte(`
name: empty
description: set_items to nothing
steps:
  - op: set_items
    items: []
assertions:
  - type: final_items
    items: []
  - type: view_calls
    calls: [reload_data, reload_data]
`))
	require.NoError(t, err)
	assert.NotNil(t, s.Assertions[0].Items)
}

func TestScript_DelayDuration(t *testing.T) {
	d, err := (&Script{}).DelayDuration()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), d)

	d, err = (&Script{Delay: "250ms"}).DelayDuration()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)
}
