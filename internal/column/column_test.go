package column

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/bitmap"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/errs"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/testutil"
)

func TestKind(t *testing.T) {
	tests := []struct {
		kind  Kind
		width int
		name  string
	}{
		{Byte, 1, "int8"},
		{Short, 2, "int16"},
		{Int, 4, "int32"},
		{Long, 8, "int64"},
		{String, 0, "string"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.width, tt.kind.Width())
		assert.True(t, tt.kind.Valid())
		assert.Equal(t, tt.name, tt.kind.String())
		k, ok := ParseKind(tt.name)
		assert.True(t, ok)
		assert.Equal(t, tt.kind, k)
	}
	assert.False(t, Kind(12).Valid())
	_, ok := ParseKind("float")
	assert.False(t, ok)

	_, err := New(Kind(5))
	assert.ErrorIs(t, err, errs.ErrInvalidFormat)
}

func TestFixedColumn(t *testing.T) {
	c := NewFixed[int32](Int)
	for _, v := range []int64{7, -3, 1 << 30} {
		require.NoError(t, c.Append(EncodeInt(v, 4)))
	}
	assert.ErrorIs(t, c.Append([]byte{1, 2}), errs.ErrInvalidFormat)

	assert.Equal(t, 3, c.Rows())
	assert.Equal(t, 3, c.NonNullRows())
	assert.False(t, c.HasNull())
	assert.Nil(t, c.Nulls())

	v, err := c.Value(1)
	require.NoError(t, err)
	assert.Equal(t, int32(-3), v)

	b, err := c.GetBuffer(2)
	require.NoError(t, err)
	assert.Equal(t, int64(1<<30), DecodeInt(b))

	_, err = c.GetBuffer(3)
	assert.ErrorIs(t, err, errs.ErrOutOfRange)
}

func TestColumn_NullsAreLazyAndPresentPolarity(t *testing.T) {
	for _, kind := range []Kind{Byte, Long, String} {
		t.Run(kind.String(), func(t *testing.T) {
			c, err := New(kind)
			require.NoError(t, err)
			val := []byte("v")
			if w := kind.Width(); w > 0 {
				val = EncodeInt(5, w)
			}

			require.NoError(t, c.Append(val))
			require.NoError(t, c.Append(val))
			assert.Nil(t, c.Nulls())

			require.NoError(t, c.AppendNull())
			require.NoError(t, c.Append(val))
			require.NotNil(t, c.Nulls())

			assert.Equal(t, 4, c.Rows())
			assert.Equal(t, 3, c.NonNullRows())
			assert.Equal(t, 4, c.Nulls().NumBits())

			// 1 = present.
			assert.Equal(t, []byte{0b1011}, c.Nulls().Bytes())

			for row, want := range []bool{false, false, true, false} {
				isNull, err := c.IsNull(row)
				require.NoError(t, err)
				assert.Equal(t, want, isNull, "row %d", row)
			}
			_, err = c.IsNull(4)
			assert.ErrorIs(t, err, errs.ErrOutOfRange)

			// Non-null ordinals skip the null row.
			_, err = c.GetBuffer(2)
			assert.NoError(t, err)
			_, err = c.GetBuffer(3)
			assert.ErrorIs(t, err, errs.ErrOutOfRange)
		})
	}
}

func TestVariableColumn(t *testing.T) {
	c := NewVariable()
	values := [][]byte{[]byte("abc"), {}, []byte("hello"), []byte("x")}
	for _, v := range values {
		require.NoError(t, c.Append(v))
	}

	// Random access in both directions exercises the lazy offsets.
	for _, row := range []int{3, 0, 2, 1} {
		got, err := c.GetBuffer(row)
		require.NoError(t, err)
		assert.Equal(t, values[row], got)
	}

	require.NoError(t, c.Append([]byte("tail")))
	got, err := c.GetBuffer(4)
	require.NoError(t, err)
	assert.Equal(t, []byte("tail"), got)
	assert.Equal(t, Stats{Rows: 5}, c.Stats())
}

func TestFixedColumn_Stats(t *testing.T) {
	c := NewFixed[int64](Long)
	assert.Equal(t, Stats{}, c.Stats())

	for _, v := range []int64{4, -9, 12} {
		require.NoError(t, c.Append(EncodeInt(v, 8)))
	}
	require.NoError(t, c.AppendNull())

	s := c.Stats()
	assert.Equal(t, Stats{Rows: 4, HasNull: true, HasMinMax: true, Min: -9, Max: 12, HasSum: true, Sum: 7}, s)

	over := NewFixed[int64](Long)
	require.NoError(t, over.Append(EncodeInt(1<<62, 8)))
	require.NoError(t, over.Append(EncodeInt(1<<62, 8)))
	s = over.Stats()
	assert.True(t, s.HasMinMax)
	assert.False(t, s.HasSum)
}

func TestEncodeDecodeInt(t *testing.T) {
	for _, w := range []int{1, 2, 4, 8} {
		for _, v := range []int64{0, 1, -1, 100, -100} {
			assert.Equal(t, v, DecodeInt(EncodeInt(v, w)), "width %d", w)
		}
	}
	assert.Equal(t, int64(0), DecodeInt([]byte{1, 2, 3}))
}

// randomColumns fills a Columns with rows of random values and nulls and
// returns the expected cell contents (nil = null).
func randomColumns(t *testing.T, rng *testutil.RNG, kinds []Kind, rows int) (*Columns, [][][]byte) {
	t.Helper()
	cols, err := NewColumns(kinds)
	require.NoError(t, err)

	want := make([][][]byte, len(kinds))
	for ci, k := range kinds {
		nullRate := []float64{0, 0.3, 1}[rng.Intn(3)]
		want[ci] = make([][]byte, rows)
		for r := range rows {
			if rng.Float64() < nullRate {
				require.NoError(t, cols.AppendNull(ci))
				continue
			}
			var v []byte
			if w := k.Width(); w > 0 {
				v = rng.Fixed(w)
			} else {
				v = rng.Text(12)
			}
			require.NoError(t, cols.Append(ci, v))
			want[ci][r] = v
		}
	}
	return cols, want
}

func randomKinds(rng *testutil.RNG) []Kind {
	all := []Kind{Byte, Short, Int, Long, String}
	kinds := make([]Kind, 1+rng.Intn(6))
	for i := range kinds {
		kinds[i] = all[rng.Intn(len(all))]
	}
	return kinds
}

func TestColumns_PlanMatchesLayout(t *testing.T) {
	rng := testutil.NewRNG(2024)
	for range 50 {
		kinds := randomKinds(rng)
		cols, _ := randomColumns(t, rng, kinds, rng.Intn(40))

		plan := cols.Plan()
		assert.Equal(t, plan.Size(), cols.EncodedSize())
		data, streams := cols.Serialize()
		require.Len(t, data, plan.Size())

		// Walk the descriptors and check each one points at the bytes the
		// column itself would produce.
		off := uint64(0)
		for _, s := range streams {
			col := cols.At(s.Column)
			chunk := data[off : off+s.Length]
			switch s.Kind {
			case Present:
				require.True(t, col.HasNull())
				assert.Equal(t, col.Nulls().Bytes(), chunk)
			case Length:
				assert.Equal(t, uint64(8*col.NonNullRows()), s.Length)
			case Data:
				if w := col.Kind().Width(); w > 0 {
					assert.Equal(t, uint64(w*col.NonNullRows()), s.Length)
				}
			}
			off += s.Length
		}
		assert.Equal(t, uint64(len(data)), off)

		// Columns appear in schema order, PRESENT first.
		last := -1
		for i, s := range streams {
			require.GreaterOrEqual(t, s.Column, last)
			if s.Column != last && cols.At(s.Column).HasNull() {
				assert.Equal(t, Present, streams[i].Kind)
			}
			last = s.Column
		}
	}
}

func TestColumns_LoadRoundTrip(t *testing.T) {
	rng := testutil.NewRNG(77)
	for range 50 {
		kinds := randomKinds(rng)
		rows := rng.Intn(40)
		cols, want := randomColumns(t, rng, kinds, rows)
		data, streams := cols.Serialize()

		// Split the block back into per-column streams.
		type parts struct{ present, lengths, data []byte }
		byCol := make([]parts, len(kinds))
		off := uint64(0)
		for _, s := range streams {
			chunk := data[off : off+s.Length]
			switch s.Kind {
			case Present:
				byCol[s.Column].present = chunk
			case Length:
				byCol[s.Column].lengths = chunk
			case Data:
				byCol[s.Column].data = chunk
			}
			off += s.Length
		}

		for ci, k := range kinds {
			p := byCol[ci]
			got, err := Load(k, rows, p.present, p.lengths, p.data)
			require.NoError(t, err)
			require.Equal(t, rows, got.Rows())
			assert.Equal(t, cols.At(ci).Stats(), got.Stats())

			ordinal := 0
			for r := range rows {
				isNull, err := got.IsNull(r)
				require.NoError(t, err)
				if want[ci][r] == nil {
					assert.True(t, isNull)
					continue
				}
				assert.False(t, isNull)
				v, err := got.GetBuffer(ordinal)
				require.NoError(t, err)
				assert.Equal(t, want[ci][r], v)
				ordinal++
			}
		}
	}
}

func TestLoad_AliasesAndRefusesWrites(t *testing.T) {
	data := EncodeInt(42, 4)
	c, err := Load(Int, 1, nil, nil, data)
	require.NoError(t, err)

	b, err := c.GetBuffer(0)
	require.NoError(t, err)
	assert.Same(t, &data[0], &b[0])

	assert.ErrorIs(t, c.Append(EncodeInt(1, 4)), errs.ErrInvalidMemoryOperation)
	assert.ErrorIs(t, c.AppendNull(), errs.ErrInvalidMemoryOperation)

	s, err := Load(String, 0, nil, nil, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Append(nil), errs.ErrInvalidMemoryOperation)
}

func TestLoad_PresentStreamIsFixedBitmap(t *testing.T) {
	// rows 0, 2 and 9 are present
	present := []byte{0b0000_0101, 0b0000_0010}
	c, err := Load(Short, 10, present, nil, make([]byte, 6))
	require.NoError(t, err)
	require.True(t, c.HasNull())
	assert.Equal(t, 3, c.NonNullRows())
	assert.Equal(t, 10, c.Rows())

	f, ok := c.Nulls().(*bitmap.Fixed)
	require.True(t, ok, "loaded columns keep a fixed presence bitmap")
	assert.Equal(t, present, f.Bytes())

	i, found := f.FindFirst(3, true)
	require.True(t, found)
	assert.Equal(t, 9, i)

	// padding past the row count is ignored
	c, err = Load(Byte, 3, []byte{0xff}, nil, make([]byte, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, c.Nulls().Count())

	_, err = Load(Byte, 9, []byte{0xff}, nil, make([]byte, 8))
	assert.ErrorIs(t, err, errs.ErrInvalidFormat)
}

func TestLoad_RejectsInconsistentStreams(t *testing.T) {
	_, err := Load(Int, 2, nil, nil, make([]byte, 4))
	assert.ErrorIs(t, err, errs.ErrInvalidFormat)

	_, err = Load(String, 1, nil, make([]byte, 7), nil)
	assert.ErrorIs(t, err, errs.ErrInvalidFormat)

	_, err = Load(String, 1, nil, EncodeInt(5, 8), []byte("abc"))
	assert.ErrorIs(t, err, errs.ErrInvalidFormat)

	_, err = Load(String, 1, nil, EncodeInt(1, 8), []byte("abc"))
	assert.ErrorIs(t, err, errs.ErrInvalidFormat)

	_, err = Load(Byte, 9, []byte{0xff}, nil, nil)
	assert.ErrorIs(t, err, errs.ErrInvalidFormat)

	_, err = Load(Kind(9), 0, nil, nil, nil)
	assert.ErrorIs(t, err, errs.ErrInvalidFormat)
}

func TestColumns_Access(t *testing.T) {
	cols, err := NewColumns([]Kind{Int, String})
	require.NoError(t, err)
	assert.Equal(t, 2, cols.Len())

	assert.ErrorIs(t, cols.Append(2, nil), errs.ErrOutOfRange)
	cols.Set(1, nil)
	assert.ErrorIs(t, cols.AppendNull(1), errs.ErrLogic)

	require.NoError(t, cols.AppendNull(0))
	assert.Equal(t, 1, cols.Rows())
	assert.Equal(t, []Stats{{Rows: 1, HasNull: true}, {}}, cols.Stats())

	// The dropped column contributes no streams.
	for _, s := range cols.Plan().Streams() {
		assert.Equal(t, 0, s.Column)
	}

	_, err = NewColumns([]Kind{Int, Kind(0)})
	assert.ErrorIs(t, err, errs.ErrInvalidFormat)
}

func TestStreamPlan_CombineTooSmall(t *testing.T) {
	cols, err := NewColumns([]Kind{Long})
	require.NoError(t, err)
	require.NoError(t, cols.Append(0, EncodeInt(1, 8)))

	_, err = cols.Plan().Combine(make([]byte, 7))
	assert.ErrorIs(t, err, errs.ErrOutOfRange)
	assert.Equal(t, "DATA", Data.String())
	assert.Equal(t, "PRESENT", Present.String())
	assert.Equal(t, "LENGTH", Length.String())
}
