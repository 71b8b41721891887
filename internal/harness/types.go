package harness

import "fmt"

// Notification is one delegate event, flattened for assertions and golden
// snapshots.
type Notification struct {
	Seq        int64  `json:"seq"`
	MutationID string `json:"mutation_id"`
	Op         string `json:"op"`
	Event      string `json:"event"`
}

// String renders the notification as a golden snapshot line.
func (n Notification) String() string {
	return fmt.Sprintf("%d %s %s: %s", n.Seq, n.MutationID, n.Op, n.Event)
}

// StepOutcome records how one scripted step ended.
type StepOutcome struct {
	Step       int    `json:"step"`
	Op         string `json:"op"`
	MutationID string `json:"mutation_id"`
	Completed  bool   `json:"completed"`
	Error      string `json:"error,omitempty"`
}

// Result is the outcome of a script execution.
type Result struct {
	// Pass is true when every step behaved as expected and every
	// assertion held.
	Pass bool `json:"pass"`

	// Notifications in delivery order.
	Notifications []Notification `json:"notifications"`

	// ViewCalls are the recorded view invocations, rendered as strings.
	ViewCalls []string `json:"view_calls"`

	// Steps has one outcome per scripted step.
	Steps []StepOutcome `json:"steps"`

	// FinalItems is the list after every step was applied.
	FinalItems []string `json:"final_items"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:          true,
		Notifications: []Notification{},
		ViewCalls:     []string{},
		Steps:         []StepOutcome{},
		FinalItems:    []string{},
		Errors:        []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// FailedSteps returns how many steps ended with an error.
func (r *Result) FailedSteps() int {
	n := 0
	for _, s := range r.Steps {
		if s.Error != "" {
			n++
		}
	}
	return n
}

// Events returns the rendered event of every notification.
func (r *Result) Events() []string {
	out := make([]string, len(r.Notifications))
	for i, n := range r.Notifications {
		out[i] = n.Event
	}
	return out
}
