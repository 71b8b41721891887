package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/listsync/internal/collection"
	"github.com/roach88/listsync/internal/engine"
	"github.com/roach88/listsync/internal/notify"
)

// Script is a scripted sequence of list mutations plus the assertions the
// resulting notifications and final contents must satisfy.
type Script struct {
	// Name uniquely identifies this script. Also names its golden file.
	Name string `yaml:"name" json:"name"`

	// Description explains what this script demonstrates.
	Description string `yaml:"description" json:"description"`

	// Section is the view section the list is bound to. Default: 0.
	Section int `yaml:"section,omitempty" json:"section,omitempty"`

	// Animation is passed through to the view. Default: "none".
	Animation string `yaml:"animation,omitempty" json:"animation,omitempty"`

	// Delay is the pacing delay as a Go duration string, e.g. "250ms".
	Delay string `yaml:"delay,omitempty" json:"delay,omitempty"`

	// Initial seeds the list before any sink is attached.
	Initial []string `yaml:"initial,omitempty" json:"initial,omitempty"`

	// Steps are submitted in order.
	Steps []Step `yaml:"steps" json:"steps"`

	// Assertions validate the run.
	Assertions []Assertion `yaml:"assertions" json:"assertions"`
}

// Step is one mutation. Which fields are required depends on Op.
type Step struct {
	// Op is the mutation name, e.g. "insert" or "move_item".
	Op string `yaml:"op" json:"op"`

	// Item is the subject of item-carrying ops.
	Item string `yaml:"item,omitempty" json:"item,omitempty"`

	// Items is the replacement contents for set_items.
	Items []string `yaml:"items,omitempty" json:"items,omitempty"`

	Index *int `yaml:"index,omitempty" json:"index,omitempty"`
	From  *int `yaml:"from,omitempty" json:"from,omitempty"`
	To    *int `yaml:"to,omitempty" json:"to,omitempty"`

	// ExpectError is the error code this step must fail with, e.g.
	// "ITEM_NOT_FOUND". Empty means the step must succeed.
	ExpectError string `yaml:"expect_error,omitempty" json:"expect_error,omitempty"`
}

// Assertion validates notifications, view calls or final contents.
type Assertion struct {
	// Type specifies the assertion type:
	// - "final_items": the list equals Items exactly
	// - "notification_count": exactly Count notifications were emitted
	// - "notification_order": Events appear in order (gaps allowed)
	// - "notification_contains": Event appears at least once
	// - "view_calls": the view received exactly Calls
	// - "error_count": exactly Count steps failed
	Type string `yaml:"type" json:"type"`

	Items  []string `yaml:"items,omitempty" json:"items,omitempty"`
	Count  int      `yaml:"count,omitempty" json:"count,omitempty"`
	Events []string `yaml:"events,omitempty" json:"events,omitempty"`
	Event  string   `yaml:"event,omitempty" json:"event,omitempty"`
	Calls  []string `yaml:"calls,omitempty" json:"calls,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalItems           = "final_items"
	AssertNotificationCount    = "notification_count"
	AssertNotificationOrder    = "notification_order"
	AssertNotificationContains = "notification_contains"
	AssertViewCalls            = "view_calls"
	AssertErrorCount           = "error_count"
)

// LoadScript reads and validates a script. Files ending in .cue are read
// with CUE (see LoadCUEScript); everything else is parsed as YAML.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or fails validation.
func LoadScript(path string) (*Script, error) {
	if filepath.Ext(path) == ".cue" {
		return LoadCUEScript(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script file: %w", err)
	}

	return ParseScript(data)
}

// ParseScript parses and validates a YAML script.
func ParseScript(data []byte) (*Script, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var script Script
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&script); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScript(&script); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}

	return &script, nil
}

// DelayDuration parses Delay. An empty Delay is zero.
func (s *Script) DelayDuration() (time.Duration, error) {
	if s.Delay == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.Delay)
	if err != nil {
		return 0, fmt.Errorf("delay: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("delay must be non-negative, got %s", s.Delay)
	}
	return d, nil
}

// validateScript checks that required fields are present and valid.
func validateScript(s *Script) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Section < 0 {
		return fmt.Errorf("section must be non-negative")
	}

	if s.Animation != "" && !validAnimation(notify.Animation(s.Animation)) {
		return fmt.Errorf("unknown animation %q", s.Animation)
	}

	if _, err := s.DelayDuration(); err != nil {
		return err
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep checks that a step carries exactly what its op needs.
func validateStep(index int, st *Step) error {
	if st.Op == "" {
		return fmt.Errorf("steps[%d]: op is required", index)
	}

	op, err := engine.ParseOp(st.Op)
	if err != nil {
		return fmt.Errorf("steps[%d]: %w", index, err)
	}

	var needItem, needIndex, needFrom, needTo bool
	switch op {
	case engine.OpSetItems, engine.OpClear:
	case engine.OpInsert, engine.OpUpdate:
		needItem, needIndex = true, true
	case engine.OpAppend, engine.OpUpdateItem, engine.OpRemoveItem:
		needItem = true
	case engine.OpRemove:
		needIndex = true
	case engine.OpMove:
		needFrom, needTo = true, true
	case engine.OpMoveItem:
		needItem, needTo = true, true
	case engine.OpMoveUpdated:
		needItem, needFrom, needTo = true, true, true
	}

	if needItem && st.Item == "" {
		return fmt.Errorf("steps[%d]: item is required for %s", index, op)
	}
	if needIndex && st.Index == nil {
		return fmt.Errorf("steps[%d]: index is required for %s", index, op)
	}
	if needFrom && st.From == nil {
		return fmt.Errorf("steps[%d]: from is required for %s", index, op)
	}
	if needTo && st.To == nil {
		return fmt.Errorf("steps[%d]: to is required for %s", index, op)
	}
	if op != engine.OpSetItems && st.Items != nil {
		return fmt.Errorf("steps[%d]: items is only valid for %s", index, engine.OpSetItems)
	}

	switch collection.ErrorCode(st.ExpectError) {
	case "", collection.CodeIndexOutOfRange, collection.CodeItemNotFound:
	default:
		return fmt.Errorf("steps[%d]: unknown expect_error %q", index, st.ExpectError)
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFinalItems:
		if a.Items == nil {
			return fmt.Errorf("assertions[%d]: items is required for final_items (use [] for empty)", index)
		}
	case AssertNotificationCount, AssertErrorCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertNotificationOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for notification_order", index)
		}
	case AssertNotificationContains:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for notification_contains", index)
		}
	case AssertViewCalls:
		if a.Calls == nil {
			return fmt.Errorf("assertions[%d]: calls is required for view_calls (use [] for none)", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

func validAnimation(a notify.Animation) bool {
	switch a {
	case notify.AnimationNone, notify.AnimationFade, notify.AnimationRight,
		notify.AnimationLeft, notify.AnimationTop, notify.AnimationBottom,
		notify.AnimationMiddle, notify.AnimationAutomatic:
		return true
	}
	return false
}
