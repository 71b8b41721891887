package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOp_StringRoundTrip(t *testing.T) {
	for op := OpSetItems; op <= OpMoveUpdated; op++ {
		parsed, err := ParseOp(op.String())
		require.NoError(t, err, op.String())
		assert.Equal(t, op, parsed)
	}
}

func TestParseOp_RejectsControlAndUnknown(t *testing.T) {
	_, err := ParseOp("flush")
	assert.Error(t, err)

	_, err = ParseOp("shuffle")
	assert.Error(t, err)

	assert.Equal(t, "Op(99)", Op(99).String())
}

func TestMutationError_Format(t *testing.T) {
	err := &MutationError{Code: ErrCodeItemNotFound, Op: OpRemoveItem, MutationID: "mut-3", Seq: 7}
	assert.Equal(t, "ITEM_NOT_FOUND: remove_item (mutation=mut-3, seq=7)", err.Error())
	assert.Equal(t, ErrorCode(""), CodeOf(assert.AnError))
}
