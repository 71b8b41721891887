// Package harness runs scripted mutation sequences against an
// engine.Machine and checks what the view and delegate were told.
//
// # Script Format
//
// Scripts are YAML (or CUE, see LoadCUEScript) files with the following
// structure:
//
//	name: insert_then_move
//	description: "Inserts into a seeded list then moves the new item"
//	section: 0
//	animation: fade
//	delay: 0s
//	initial: [a, b]
//	steps:
//	  - op: insert
//	    item: x
//	    index: 1
//	  - op: remove_item
//	    item: zzz
//	    expect_error: ITEM_NOT_FOUND
//	assertions:
//	  - type: final_items
//	    items: [a, x, b]
//	  - type: notification_order
//	    events: ["insert [0:1]"]
//
// # Assertion Types
//
//   - final_items: the final list equals items, order included
//   - notification_count: exactly count notifications were emitted
//   - notification_order: events appear in order, gaps allowed
//   - notification_contains: event appears at least once
//   - view_calls: the view received exactly calls (attach reload included)
//   - error_count: exactly count steps failed
//
// # Deterministic Runs
//
// Every run uses a fresh machine with sequential mutation IDs ("mut-1",
// "mut-2", ...), so the same script always yields byte-identical
// snapshots. Initial items are seeded before any sink is attached and
// consume the first ID and seq; attaching the view consumes the next ID.
//
// # Usage
//
//	script, err := harness.LoadScript("testdata/scripts/insert_then_move.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, script)
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
