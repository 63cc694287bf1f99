package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteRoundTrip(t *testing.T) {
	p := New()
	require.NoError(t, p.Connect())

	require.NoError(t, p.WriteDB(1, 4, []byte{0xDE, 0xAD}))

	got, err := p.ReadDB(1, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xDE, 0xAD}, got)
}

func TestUnwrittenMemoryReadsZero(t *testing.T) {
	p := New()
	require.NoError(t, p.Connect())

	got, err := p.ReadDB(7, 100, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, got)
}

func TestBlocksAreIndependent(t *testing.T) {
	p := New()
	require.NoError(t, p.Connect())

	require.NoError(t, p.WriteDB(1, 0, []byte{0xAA}))
	require.NoError(t, p.WriteDB(2, 0, []byte{0xBB}))

	assert.Equal(t, []byte{0xAA}, p.Block(1))
	assert.Equal(t, []byte{0xBB}, p.Block(2))
}

func TestRequiresConnection(t *testing.T) {
	p := New()

	_, err := p.ReadDB(1, 0, 1)
	assert.Error(t, err)
	assert.Error(t, p.WriteDB(1, 0, []byte{1}))

	require.NoError(t, p.Connect())
	require.NoError(t, p.WriteDB(1, 0, []byte{1}))

	require.NoError(t, p.Disconnect())
	_, err = p.ReadDB(1, 0, 1)
	assert.Error(t, err)
}

func TestSeedReplacesBlock(t *testing.T) {
	p := New()
	p.Seed(3, []byte{1, 2, 3})
	assert.Equal(t, []byte{1, 2, 3}, p.Block(3))

	p.Seed(3, []byte{9})
	assert.Equal(t, []byte{9}, p.Block(3))
}

func TestSeedCopiesInput(t *testing.T) {
	p := New()
	data := []byte{1, 2}
	p.Seed(1, data)
	data[0] = 0xFF
	assert.Equal(t, []byte{1, 2}, p.Block(1))
}

func TestWriteGrowsBlock(t *testing.T) {
	p := New()
	require.NoError(t, p.Connect())
	p.Seed(1, []byte{1, 2})

	require.NoError(t, p.WriteDB(1, 4, []byte{5}))
	assert.Equal(t, []byte{1, 2, 0, 0, 5}, p.Block(1))
}

func TestInvalidRanges(t *testing.T) {
	p := New()
	require.NoError(t, p.Connect())

	_, err := p.ReadDB(1, -1, 2)
	assert.Error(t, err)
	assert.Error(t, p.WriteDB(1, -1, []byte{1}))
}
