package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type          string         // Assertion type for categorization
	Expected      string         // Human-readable expected outcome
	Actual        string         // Human-readable actual outcome
	Notifications []Notification // Full notification trail for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nNotifications:\n")
	if len(e.Notifications) == 0 {
		fmt.Fprintf(&buf, "  (none)\n")
	}
	for i, n := range e.Notifications {
		fmt.Fprintf(&buf, "  [%d] %s\n", i+1, n)
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion against result and returns the
// failure messages. An empty slice means all assertions held.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluateAssertion(result *Result, a Assertion) error {
	switch a.Type {
	case AssertFinalItems:
		return assertFinalItems(result, a)
	case AssertNotificationCount:
		return assertNotificationCount(result, a)
	case AssertNotificationOrder:
		return assertNotificationOrder(result, a)
	case AssertNotificationContains:
		return assertNotificationContains(result, a)
	case AssertViewCalls:
		return assertViewCalls(result, a)
	case AssertErrorCount:
		return assertErrorCount(result, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertFinalItems checks the final list exactly, order included.
func assertFinalItems(result *Result, a Assertion) error {
	if slices.Equal(result.FinalItems, a.Items) {
		return nil
	}
	return &AssertionError{
		Type:          AssertFinalItems,
		Expected:      fmt.Sprintf("%q", a.Items),
		Actual:        fmt.Sprintf("%q", result.FinalItems),
		Notifications: result.Notifications,
	}
}

func assertNotificationCount(result *Result, a Assertion) error {
	if len(result.Notifications) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:          AssertNotificationCount,
		Expected:      fmt.Sprintf("%d notifications", a.Count),
		Actual:        fmt.Sprintf("%d notifications", len(result.Notifications)),
		Notifications: result.Notifications,
	}
}

// assertNotificationOrder checks that a.Events occur in order. Other
// notifications may appear in between.
func assertNotificationOrder(result *Result, a Assertion) error {
	next := 0
	for _, n := range result.Notifications {
		if next < len(a.Events) && n.Event == a.Events[next] {
			next++
		}
	}
	if next == len(a.Events) {
		return nil
	}
	return &AssertionError{
		Type:          AssertNotificationOrder,
		Expected:      fmt.Sprintf("events in order: %q", a.Events),
		Actual:        fmt.Sprintf("matched %d of %d, missing %q", next, len(a.Events), a.Events[next]),
		Notifications: result.Notifications,
	}
}

func assertNotificationContains(result *Result, a Assertion) error {
	if slices.Contains(result.Events(), a.Event) {
		return nil
	}
	return &AssertionError{
		Type:          AssertNotificationContains,
		Expected:      fmt.Sprintf("event %q", a.Event),
		Actual:        "not found",
		Notifications: result.Notifications,
	}
}

// assertViewCalls checks the view's calls exactly, the attach reload
// included.
func assertViewCalls(result *Result, a Assertion) error {
	if slices.Equal(result.ViewCalls, a.Calls) {
		return nil
	}
	return &AssertionError{
		Type:          AssertViewCalls,
		Expected:      fmt.Sprintf("%q", a.Calls),
		Actual:        fmt.Sprintf("%q", result.ViewCalls),
		Notifications: result.Notifications,
	}
}

func assertErrorCount(result *Result, a Assertion) error {
	if got := result.FailedSteps(); got != a.Count {
		return &AssertionError{
			Type:          AssertErrorCount,
			Expected:      fmt.Sprintf("%d failed steps", a.Count),
			Actual:        fmt.Sprintf("%d failed steps", got),
			Notifications: result.Notifications,
		}
	}
	return nil
}
