package orm

import (
	"testing"

	"github.com/iov-one/custodia/custodiatest/assert"
	"github.com/iov-one/custodia/store"
)

func TestSequence(t *testing.T) {
	db := store.MemStore()
	s := NewSequence("badgers", "id")

	for i := int64(1); i <= 10; i++ {
		n, err := s.NextInt(db)
		assert.Nil(t, err)
		assert.Equal(t, i, n)
	}

	// Latest does not modify the state
	latest, raw, err := s.Latest(db)
	assert.Nil(t, err)
	assert.Equal(t, int64(10), latest)
	assert.Equal(t, EncodeSequence(10), raw)

	n, err := s.NextInt(db)
	assert.Nil(t, err)
	assert.Equal(t, int64(11), n)

	// a sequence with another name is independent
	other := NewSequence("badgers", "version")
	n, err = other.NextInt(db)
	assert.Nil(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSequenceEncoding(t *testing.T) {
	assert.Equal(t, int64(0), DecodeSequence(nil))
	for _, val := range []int64{1, 255, 256, 1 << 40} {
		assert.Equal(t, val, DecodeSequence(EncodeSequence(val)))
	}
}
