package collection

import "fmt"

// ChangeKind identifies the shape of a view update.
type ChangeKind int

const (
	// ChangeNone means the mutation succeeded without visible effect.
	ChangeNone ChangeKind = iota
	// ChangeReload means the whole sequence must be reloaded.
	ChangeReload
	// ChangeInsert means items were inserted at Indexes.
	ChangeInsert
	// ChangeUpdate means items at Indexes were replaced in place.
	ChangeUpdate
	// ChangeRemove means items at Indexes were removed.
	ChangeRemove
	// ChangeMove means the item at From now lives at To.
	ChangeMove
)

var changeKindNames = map[ChangeKind]string{
	ChangeNone:   "none",
	ChangeReload: "reload",
	ChangeInsert: "insert",
	ChangeUpdate: "update",
	ChangeRemove: "remove",
	ChangeMove:   "move",
}

// String returns the lowercase name of the kind.
func (k ChangeKind) String() string {
	if name, ok := changeKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ChangeKind(%d)", int(k))
}

// Change describes the view update produced by one successful mutation.
// Indexes are raw positions in the store; section scoping happens later.
type Change struct {
	Kind    ChangeKind
	Indexes []int

	// From and To are set for ChangeMove, both relative to the pre-move
	// sequence.
	From int
	To   int
}

// IsNone reports whether the change requires no notification.
func (c Change) IsNone() bool {
	return c.Kind == ChangeNone
}

func reloadChange() Change {
	return Change{Kind: ChangeReload}
}

func indexChange(kind ChangeKind, index int) Change {
	return Change{Kind: kind, Indexes: []int{index}}
}

func moveChange(from, to int) Change {
	return Change{Kind: ChangeMove, From: from, To: to}
}

// MarshalText encodes the kind by name.
func (k ChangeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseChangeKind resolves a kind name produced by String.
func ParseChangeKind(name string) (ChangeKind, error) {
	for kind, n := range changeKindNames {
		if n == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown change kind %q", name)
}

// UnmarshalText decodes a kind name.
func (k *ChangeKind) UnmarshalText(text []byte) error {
	kind, err := ParseChangeKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}
