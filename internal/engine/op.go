package engine

import "fmt"

// Op names a mutation kind.
type Op int

const (
	OpSetItems Op = iota + 1
	OpClear
	OpInsert
	OpAppend
	OpUpdate
	OpUpdateItem
	OpRemove
	OpRemoveItem
	OpMove
	OpMoveItem
	OpMoveUpdated

	// opAttachView and opFlush are control entries; they never touch the store.
	opAttachView
	opFlush
)

var opNames = map[Op]string{
	OpSetItems:    "set_items",
	OpClear:       "clear",
	OpInsert:      "insert",
	OpAppend:      "append",
	OpUpdate:      "update",
	OpUpdateItem:  "update_item",
	OpRemove:      "remove",
	OpRemoveItem:  "remove_item",
	OpMove:        "move",
	OpMoveItem:    "move_item",
	OpMoveUpdated: "move_updated",
	opAttachView:  "attach_view",
	opFlush:       "flush",
}

// String returns the snake_case name used in logs, events and scripts.
func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// ParseOp resolves a mutation name such as "move_item".
func ParseOp(name string) (Op, error) {
	for op := OpSetItems; op <= OpMoveUpdated; op++ {
		if opNames[op] == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown mutation op %q", name)
}
