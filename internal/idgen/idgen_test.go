package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7IsSortable(t *testing.T) {
	gen := UUIDv7()
	prev := gen()
	for i := 0; i < 100; i++ {
		next := gen()
		require.Greater(t, next, prev, "UUIDv7 must increase within a process")
		prev = next
	}
}

func TestParse(t *testing.T) {
	id := New()
	got, err := Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = Parse("not-a-uuid")
	assert.Error(t, err)
}

func TestSequence(t *testing.T) {
	gen := Sequence("bm")
	assert.Equal(t, "bm-0001", gen())
	assert.Equal(t, "bm-0002", gen())
}
