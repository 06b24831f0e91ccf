package bitmap

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/errs"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/testutil"
)

func linearFind(ref []bool, offset int, value bool) (int, bool) {
	for i := max(offset, 0); i < len(ref); i++ {
		if ref[i] == value {
			return i, true
		}
	}
	return -1, false
}

func build(t *testing.T, kind string, ref []bool) Bitmap {
	t.Helper()
	n := len(ref)
	var bm Bitmap
	switch kind {
	case "fixed":
		bm = NewFixed(n)
	case "dynamic":
		bm = NewDynamic(n)
	case "roaring":
		bm = NewRoaring(nil, n)
	}
	for i, v := range ref {
		if v {
			require.NoError(t, bm.Set(i))
		}
	}
	return bm
}

var kinds = []string{"fixed", "dynamic", "roaring"}

func TestBitmap_MatchesLinearScan(t *testing.T) {
	rng := testutil.NewRNG(42)
	sizes := []int{0, 1, 7, 8, 9, 63, 64, 65, 127, 128, 129, 1000}
	densities := []float64{0, 0.01, 0.5, 0.99, 1}

	for _, kind := range kinds {
		t.Run(kind, func(t *testing.T) {
			for _, n := range sizes {
				for _, p := range densities {
					ref := rng.Bools(n, p)
					bm := build(t, kind, ref)
					require.Equal(t, n, bm.NumBits())

					for i := range n {
						got, err := bm.Test(i)
						require.NoError(t, err)
						require.Equal(t, ref[i], got, "n=%d bit=%d", n, i)
					}

					for off := -1; off <= n+1; off++ {
						for _, value := range []bool{true, false} {
							wantIdx, wantOK := linearFind(ref, off, value)
							gotIdx, gotOK := bm.FindFirst(off, value)
							require.Equal(t, wantOK, gotOK, "n=%d off=%d value=%v", n, off, value)
							require.Equal(t, wantIdx, gotIdx, "n=%d off=%d value=%v", n, off, value)
						}
					}
				}
			}
		})
	}
}

func TestBitmap_OutOfRange(t *testing.T) {
	for _, kind := range kinds {
		t.Run(kind, func(t *testing.T) {
			bm := build(t, kind, make([]bool, 10))

			assert.ErrorIs(t, bm.Set(10), errs.ErrOutOfRange)
			assert.ErrorIs(t, bm.Clear(11), errs.ErrOutOfRange)
			assert.ErrorIs(t, bm.Set(-1), errs.ErrOutOfRange)
			_, err := bm.Test(10)
			assert.ErrorIs(t, err, errs.ErrOutOfRange)
		})
	}
}

func TestBitmap_ClearAndReset(t *testing.T) {
	for _, kind := range kinds {
		t.Run(kind, func(t *testing.T) {
			bm := build(t, kind, []bool{true, true, false, true})

			require.NoError(t, bm.Clear(1))
			v, err := bm.Test(1)
			require.NoError(t, err)
			assert.False(t, v)

			bm.Reset()
			_, ok := bm.FindFirst(0, true)
			assert.False(t, ok)
			i, ok := bm.FindFirst(2, false)
			assert.True(t, ok)
			assert.Equal(t, 2, i)
		})
	}
}

func TestFixed_WireRoundTrip(t *testing.T) {
	rng := testutil.NewRNG(7)
	for _, n := range []int{1, 5, 8, 13, 64, 70, 200} {
		ref := rng.Bools(n, 0.5)
		f := build(t, "fixed", ref).(*Fixed)

		b := f.Bytes()
		require.Len(t, b, ByteLen(n))
		for i, v := range ref {
			assert.Equal(t, v, b[i/8]&(1<<(i%8)) != 0)
		}

		g, err := LoadFixed(b, n)
		require.NoError(t, err)
		assert.Equal(t, f.words, g.words)

		d := build(t, "dynamic", ref).(*Dynamic)
		assert.Equal(t, b, d.Bytes())
	}

	_, err := LoadFixed([]byte{0xff}, 9)
	assert.ErrorIs(t, err, errs.ErrInvalidFormat)
}

func TestFixed_LoadMasksPadding(t *testing.T) {
	f, err := LoadFixed([]byte{0xff}, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, f.Count())

	// The padding bits must not show up as clear-bit hits either.
	_, ok := f.FindFirst(0, false)
	assert.False(t, ok)
}

func TestFixed_SetAllAndCount(t *testing.T) {
	f := NewFixed(70)
	f.SetAll()
	assert.Equal(t, 70, f.Count())
	_, ok := f.FindFirst(0, false)
	assert.False(t, ok)

	require.NoError(t, f.Clear(69))
	i, ok := f.FindFirst(0, false)
	assert.True(t, ok)
	assert.Equal(t, 69, i)
}

func TestDynamic_AppendAndResize(t *testing.T) {
	d := NewDynamic(0)
	pattern := []bool{true, false, true, true, false}
	for range 40 {
		for _, v := range pattern {
			d.Append(v)
		}
	}
	require.Equal(t, 200, d.NumBits())
	assert.Equal(t, 120, d.Count())

	for i := range 200 {
		v, err := d.Test(i)
		require.NoError(t, err)
		assert.Equal(t, pattern[i%5], v)
	}

	d.Resize(3)
	assert.Equal(t, 3, d.NumBits())
	assert.Equal(t, 2, d.Count())

	d.Resize(100)
	i, ok := d.FindFirst(3, true)
	assert.False(t, ok, "grown bits must start clear, got %d", i)
	i, ok = d.FindFirst(3, false)
	assert.True(t, ok)
	assert.Equal(t, 3, i)

	d.Resize(0)
	assert.Equal(t, 0, d.NumBits())
	assert.Equal(t, []byte{}, d.Bytes())
}

func TestDynamic_FindClearPastMaterializedWords(t *testing.T) {
	d := NewDynamic(0)
	for range 64 {
		d.Append(true)
	}
	d.Resize(130)

	i, ok := d.FindFirst(10, false)
	assert.True(t, ok)
	assert.Equal(t, 64, i)
}

func TestRoaring_ViewOverExistingBitmap(t *testing.T) {
	rb := roaring.BitmapOf(2, 3, 4, 9)
	r := NewRoaring(rb, 10)

	i, ok := r.FindFirst(2, false)
	assert.True(t, ok)
	assert.Equal(t, 5, i)

	i, ok = r.FindFirst(5, true)
	assert.True(t, ok)
	assert.Equal(t, 9, i)

	// 9 is the last bit of the universe, nothing clear after it.
	_, ok = r.FindFirst(9, false)
	assert.False(t, ok)

	// Members past the universe are ignored.
	rb.Add(20)
	_, ok = r.FindFirst(10, true)
	assert.False(t, ok)
}

func TestIterator(t *testing.T) {
	ref := []bool{false, true, true, false, false, true, false, true}
	bm := build(t, "fixed", ref)
	it := NewIterator(bm)

	var got []int
	for i := it.Next(true); i != -1; i = it.Next(true) {
		got = append(got, i)
	}
	assert.Equal(t, []int{1, 2, 5, 7}, got)
	assert.Equal(t, -1, it.Next(true))

	it.SeekTo(3)
	assert.Equal(t, 3, it.Offset())
	assert.Equal(t, 3, it.Next(false))
	assert.Equal(t, 4, it.Next(false))
	assert.Equal(t, 5, it.Next(true))

	it.SeekTo(-5)
	assert.Equal(t, 0, it.Next(false))
}

func TestIterator_NeverGoesBackwards(t *testing.T) {
	rng := testutil.NewRNG(99)
	for _, kind := range kinds {
		ref := rng.Bools(300, 0.3)
		bm := build(t, kind, ref)
		it := NewIterator(bm)

		seek := rng.Intn(300)
		it.SeekTo(seek)
		last := seek - 1
		for {
			value := rng.Intn(2) == 0
			i := it.Next(value)
			if i == -1 {
				break
			}
			require.Greater(t, i, last, kind)
			require.Equal(t, value, ref[i], kind)
			last = i
		}
	}
}
