package blobstore

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	data := []byte("0123456789")
	require.NoError(t, store.Put("a", data))
	data[0] = 'x'

	blob, err := store.Open("a")
	require.NoError(t, err)
	assert.Equal(t, int64(10), blob.Size())

	buf := make([]byte, 4)
	n, err := blob.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "0123", string(buf))

	n, err = blob.ReadAt(buf, 8)
	assert.Equal(t, 2, n)
	assert.Equal(t, io.EOF, err)
	require.NoError(t, blob.Close())

	require.NoError(t, store.Put("b/1", nil))
	require.NoError(t, store.Put("b/0", nil))
	names, err := store.List("b/")
	require.NoError(t, err)
	assert.Equal(t, []string{"b/0", "b/1"}, names)

	require.NoError(t, store.Delete("a"))
	_, err = store.Open("a")
	assert.ErrorIs(t, err, ErrNotFound)
}
