package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SetAll(t *testing.T) {
	s := NewComparable[string]()

	input := []string{"A", "B", "C"}
	change := s.SetAll(input)

	assert.Equal(t, ChangeReload, change.Kind)
	assert.Equal(t, input, s.Items())

	// The store owns its copy.
	input[0] = "Z"
	assert.Equal(t, []string{"A", "B", "C"}, s.Items())
}

func TestStore_Clear_EmptyStillReloads(t *testing.T) {
	s := NewComparable[string]()

	change := s.Clear()

	assert.Equal(t, ChangeReload, change.Kind)
	assert.Equal(t, 0, s.Len())
}

func TestStore_Insert(t *testing.T) {
	s := NewComparable("A", "B")

	change, err := s.Insert("X", 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "X", "B"}, s.Items())
	assert.Equal(t, Change{Kind: ChangeInsert, Indexes: []int{1}}, change)
}

func TestStore_Insert_Bounds(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		wantErr bool
	}{
		{"head", 0, false},
		{"middle", 1, false},
		{"one past end", 2, false},
		{"negative", -1, true},
		{"beyond end", 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewComparable("A", "B")
			_, err := s.Insert("X", tt.index)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsIndexOutOfRange(err))
				assert.Equal(t, []string{"A", "B"}, s.Items(), "failed insert must not mutate")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 3, s.Len())
		})
	}
}

func TestStore_Insert_IntoEmpty(t *testing.T) {
	s := NewComparable[int]()

	change, err := s.Insert(7, 0)
	require.NoError(t, err)

	assert.Equal(t, []int{7}, s.Items())
	assert.Equal(t, []int{0}, change.Indexes)
}

func TestStore_InsertThenRemove_RoundTrip(t *testing.T) {
	s := NewComparable("A", "B", "C")
	before := s.Items()

	for i := 0; i <= len(before); i++ {
		_, err := s.Insert("X", i)
		require.NoError(t, err)
		_, err = s.Remove(i)
		require.NoError(t, err)
		assert.Equal(t, before, s.Items(), "index %d", i)
	}
}

func TestStore_Append_EquivalentToInsertAtLen(t *testing.T) {
	a := NewComparable("A", "B")
	b := NewComparable("A", "B")

	appended := a.Append("C")
	inserted, err := b.Insert("C", b.Len())
	require.NoError(t, err)

	assert.Equal(t, inserted, appended)
	assert.Equal(t, b.Items(), a.Items())
	assert.Equal(t, []int{2}, appended.Indexes)
}

func TestStore_Update(t *testing.T) {
	s := NewComparable("A", "B")

	change, err := s.Update("Z", 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "Z"}, s.Items())
	assert.Equal(t, Change{Kind: ChangeUpdate, Indexes: []int{1}}, change)
}

func TestStore_Update_AtLenFails(t *testing.T) {
	s := NewComparable("A", "B")

	_, err := s.Update("Z", s.Len())
	require.Error(t, err)

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, CodeIndexOutOfRange, se.Code)
	assert.Equal(t, "update", se.Op)
	assert.Equal(t, 2, se.Index)
	assert.Equal(t, 2, se.Len)
	assert.Equal(t, []string{"A", "B"}, s.Items())
}

type record struct {
	ID    int
	Title string
}

func sameID(a, b record) bool { return a.ID == b.ID }

func TestStore_UpdateItem_ByIdentity(t *testing.T) {
	s := New(sameID, record{1, "one"}, record{2, "two"})

	change, err := s.UpdateItem(record{2, "TWO"})
	require.NoError(t, err)

	assert.Equal(t, []int{1}, change.Indexes)
	got, err := s.At(1)
	require.NoError(t, err)
	assert.Equal(t, "TWO", got.Title)
}

func TestStore_UpdateItem_NotFound(t *testing.T) {
	s := New(sameID, record{1, "one"})

	_, err := s.UpdateItem(record{9, "nine"})
	require.Error(t, err)
	assert.True(t, IsItemNotFound(err))
	assert.Equal(t, CodeItemNotFound, CodeOf(err))
}

func TestStore_Remove(t *testing.T) {
	s := NewComparable("A", "B", "C")

	change, err := s.Remove(0)
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "C"}, s.Items())
	assert.Equal(t, Change{Kind: ChangeRemove, Indexes: []int{0}}, change)

	_, err = s.Remove(2)
	assert.True(t, IsIndexOutOfRange(err))
}

func TestStore_RemoveItem_FirstMatch(t *testing.T) {
	s := NewComparable("A", "B", "A")

	change, err := s.RemoveItem("A")
	require.NoError(t, err)

	assert.Equal(t, []int{0}, change.Indexes)
	assert.Equal(t, []string{"B", "A"}, s.Items())
}

func TestStore_RemoveItem_NotFound(t *testing.T) {
	s := NewComparable("A", "B")

	_, err := s.RemoveItem("X")
	require.Error(t, err)
	assert.True(t, IsItemNotFound(err))
	assert.Equal(t, []string{"A", "B"}, s.Items())
}

func TestStore_Move(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"head to tail", 0, 2, []string{"B", "C", "A"}},
		{"tail to head", 2, 0, []string{"C", "A", "B"}},
		{"adjacent forward", 0, 1, []string{"B", "A", "C"}},
		{"adjacent backward", 2, 1, []string{"A", "C", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewComparable("A", "B", "C")
			change, err := s.Move(tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Items())
			assert.Equal(t, Change{Kind: ChangeMove, From: tt.from, To: tt.to}, change)
		})
	}
}

func TestStore_Move_SameIndexIsNoop(t *testing.T) {
	s := NewComparable("A", "B", "C")

	change, err := s.Move(1, 1)
	require.NoError(t, err)

	assert.True(t, change.IsNone())
	assert.Equal(t, []string{"A", "B", "C"}, s.Items())
}

func TestStore_Move_OutOfRange(t *testing.T) {
	s := NewComparable("A", "B", "C")

	_, err := s.Move(0, 3)
	assert.True(t, IsIndexOutOfRange(err))

	_, err = s.Move(-1, 0)
	assert.True(t, IsIndexOutOfRange(err))

	// Even a same-index move is validated.
	_, err = s.Move(3, 3)
	assert.True(t, IsIndexOutOfRange(err))

	assert.Equal(t, []string{"A", "B", "C"}, s.Items())
}

func TestStore_MoveItem_ReplacesAndMoves(t *testing.T) {
	s := New(sameID, record{1, "a"}, record{2, "b"}, record{3, "c"})

	change, err := s.MoveItem(record{1, "a2"}, 2)
	require.NoError(t, err)

	assert.Equal(t, Change{Kind: ChangeMove, From: 0, To: 2}, change)
	assert.Equal(t, []record{{2, "b"}, {3, "c"}, {1, "a2"}}, s.Items())
}

func TestStore_MoveItem_SamePositionReportsUpdate(t *testing.T) {
	s := New(sameID, record{1, "a"}, record{2, "b"})

	change, err := s.MoveItem(record{2, "b2"}, 1)
	require.NoError(t, err)

	assert.Equal(t, Change{Kind: ChangeUpdate, Indexes: []int{1}}, change)
	assert.Equal(t, []record{{1, "a"}, {2, "b2"}}, s.Items())
}

func TestStore_MoveItem_Failures(t *testing.T) {
	s := New(sameID, record{1, "a"}, record{2, "b"})

	_, err := s.MoveItem(record{9, "z"}, 0)
	assert.True(t, IsItemNotFound(err))

	_, err = s.MoveItem(record{1, "a2"}, 5)
	assert.True(t, IsIndexOutOfRange(err))

	assert.Equal(t, []record{{1, "a"}, {2, "b"}}, s.Items(), "failed moves must not replace values")
}

func TestStore_MoveUpdated(t *testing.T) {
	s := NewComparable("A", "B", "C")

	change, err := s.MoveUpdated("c", 2, 0)
	require.NoError(t, err)

	assert.Equal(t, Change{Kind: ChangeMove, From: 2, To: 0}, change)
	assert.Equal(t, []string{"c", "A", "B"}, s.Items())

	_, err = s.MoveUpdated("x", 0, 3)
	assert.True(t, IsIndexOutOfRange(err))
	assert.Equal(t, []string{"c", "A", "B"}, s.Items())
}

func TestStore_Reads(t *testing.T) {
	s := NewComparable("A", "B", "A")

	assert.Equal(t, 3, s.Len())

	got, err := s.At(1)
	require.NoError(t, err)
	assert.Equal(t, "B", got)

	_, err = s.At(3)
	assert.True(t, IsIndexOutOfRange(err))

	idx, ok := s.IndexOf("A")
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = s.IndexOf("Z")
	assert.False(t, ok)
	assert.Equal(t, -1, idx)

	assert.True(t, s.Contains("B"))
	assert.False(t, s.Contains("Z"))
}

func TestStore_Items_IsSnapshot(t *testing.T) {
	s := NewComparable("A", "B")

	snap := s.Items()
	snap[0] = "Z"

	assert.Equal(t, []string{"A", "B"}, s.Items())
}

func TestNew_NilEqualPanics(t *testing.T) {
	assert.Panics(t, func() {
		New[string](nil)
	})
}

func TestNormalizedEqual(t *testing.T) {
	composed := "caf\u00e9"
	decomposed := "cafe\u0301"

	assert.True(t, NormalizedEqual(composed, decomposed))
	assert.True(t, NormalizedEqual("same", "same"))
	assert.False(t, NormalizedEqual("cafe", composed))

	s := New(NormalizedEqual, "tea", composed)
	idx, ok := s.IndexOf(decomposed)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestChangeKind_String(t *testing.T) {
	assert.Equal(t, "move", ChangeMove.String())
	assert.Equal(t, "reload", ChangeReload.String())
	assert.Equal(t, "ChangeKind(42)", ChangeKind(42).String())
}

func TestParseChangeKind(t *testing.T) {
	for kind := ChangeNone; kind <= ChangeMove; kind++ {
		parsed, err := ParseChangeKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	_, err := ParseChangeKind("shuffle")
	assert.Error(t, err)

	var k ChangeKind
	require.NoError(t, k.UnmarshalText([]byte("remove")))
	assert.Equal(t, ChangeRemove, k)
}
