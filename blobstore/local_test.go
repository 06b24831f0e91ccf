package blobstore

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	pax "github.com/zhangyue-hashdata/cloudberrydb-sub002"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/fs"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/mmap"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)

	data := []byte("hello world, this is a test blob")
	require.NoError(t, store.Put("parts/data-001.bin", data))

	_, err := os.Stat(filepath.Join(tmpDir, "parts", "data-001.bin"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(tmpDir, "parts", "data-001.bin.tmp"))
	assert.True(t, os.IsNotExist(err))

	blob, err := store.Open("parts/data-001.bin")
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(buf, 6)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "world", string(buf))

	mappable, ok := blob.(Mappable)
	require.True(t, ok)
	b, err := mappable.Bytes()
	require.NoError(t, err)
	assert.Equal(t, data, b)

	require.NoError(t, store.Put("parts/data-002.bin", nil))
	require.NoError(t, store.Put("other.bin", []byte{1}))

	names, err := store.List("parts/")
	require.NoError(t, err)
	assert.Equal(t, []string{"parts/data-001.bin", "parts/data-002.bin"}, names)

	require.NoError(t, store.Delete("other.bin"))
	require.NoError(t, store.Delete("other.bin"))
	_, err = store.Open("other.bin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "nope"))
	names, err := store.List("")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStore_PutFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	ffs := fs.NewFaultyFS(nil)
	ffs.Default = fs.Fault{FailAfterBytes: 4, FailReadAt: -1}
	store := NewLocalStore(dir, WithFileSystem(ffs))

	err := store.Put("blob.bin", []byte("too long for the fault"))
	assert.ErrorIs(t, err, fs.ErrInjected)

	names, err := store.List("")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func writePart(t *testing.T, rows int) []byte {
	t.Helper()
	var out bytes.Buffer
	w, err := pax.NewWriter(&out, pax.Schema{pax.KindInt64, pax.KindString}, pax.WithStripeRows(50))
	require.NoError(t, err)
	for i := range rows {
		require.NoError(t, w.WriteTuple(pax.Tuple{pax.Int64(int64(i)), pax.String(fmt.Sprint("row-", i))}))
	}
	require.NoError(t, w.Close())
	return out.Bytes()
}

func scanSum(store BlobStore, name string) (int64, error) {
	blob, err := store.Open(name)
	if err != nil {
		return 0, err
	}
	defer blob.Close()

	r, err := pax.Open(blob)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	var sum int64
	for {
		t, err := r.ReadTuple()
		if err == io.EOF {
			return sum, nil
		}
		if err != nil {
			return 0, err
		}
		sum += t[0].Int64()
	}
}

func TestStores_ConcurrentScans(t *testing.T) {
	stores := map[string]BlobStore{
		"local":  NewLocalStore(t.TempDir(), WithAccessPattern(mmap.AccessSequential)),
		"memory": NewMemoryStore(),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			for i := range 8 {
				require.NoError(t, store.Put(fmt.Sprintf("part-%d.pax", i), writePart(t, 100*(i+1))))
			}
			names, err := store.List("part-")
			require.NoError(t, err)
			require.Len(t, names, 8)

			sums := make([]int64, len(names))
			var g errgroup.Group
			for i, n := range names {
				g.Go(func() error {
					s, err := scanSum(store, n)
					sums[i] = s
					return err
				})
			}
			require.NoError(t, g.Wait())

			for i := range names {
				n := int64(100 * (i + 1))
				assert.Equal(t, n*(n-1)/2, sums[i], names[i])
			}
		})
	}
}
