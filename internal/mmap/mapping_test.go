package mmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapAnon_ReadWriteClose(t *testing.T) {
	m, err := MapAnon(4096)
	require.NoError(t, err)

	assert.Equal(t, 4096, m.Size())
	assert.Len(t, m.Bytes(), 4096)

	words := m.Uint32s()
	require.Len(t, words, 1024)
	for _, w := range words {
		require.Zero(t, w)
	}

	words[0] = 0xDEADBEEF
	words[1023] = 1
	assert.Equal(t, uint32(0xDEADBEEF), m.Uint32s()[0])
	assert.Equal(t, uint32(1), m.Uint32s()[1023])

	require.NoError(t, m.Advise(AccessSequential))
	require.NoError(t, m.Advise(AccessWillNeed))

	require.NoError(t, m.Close())
	require.NoError(t, m.Close()) // idempotent

	assert.Nil(t, m.Bytes())
	assert.Nil(t, m.Uint32s())
	assert.ErrorIs(t, m.Advise(AccessRandom), ErrClosed)
}

func TestMapAnon_InvalidSize(t *testing.T) {
	_, err := MapAnon(0)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = MapAnon(-1)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestMapAnon_PartialWord(t *testing.T) {
	m, err := MapAnon(10)
	require.NoError(t, err)
	defer m.Close()

	assert.Len(t, m.Uint32s(), 2)
}
