package pax

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/fs"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/testutil"
)

// memFile is a Source over an in-memory file.
type memFile struct{ *bytes.Reader }

func newMemFile(b []byte) memFile { return memFile{bytes.NewReader(b)} }

func randomTuples(rng *testutil.RNG, schema Schema, n int) []Tuple {
	rows := make([]Tuple, n)
	for i := range rows {
		t := make(Tuple, len(schema))
		for c, k := range schema {
			switch {
			case rng.Intn(4) == 0:
				t[c] = Null()
			case k.Width() > 0:
				t[c] = Bytes(rng.Fixed(k.Width()))
			default:
				t[c] = Bytes(rng.Text(16))
			}
		}
		rows[i] = t
	}
	return rows
}

func writeAll(t *testing.T, schema Schema, rows []Tuple, opts ...Option) []byte {
	t.Helper()
	var out bytes.Buffer
	w, err := NewWriter(&out, schema, opts...)
	require.NoError(t, err)
	for _, row := range rows {
		require.NoError(t, w.WriteTuple(row))
	}
	require.NoError(t, w.Close())
	return out.Bytes()
}

func readAll(t *testing.T, r *Reader) []Tuple {
	t.Helper()
	var rows []Tuple
	for {
		tu, err := r.ReadTuple()
		if err == io.EOF {
			return rows
		}
		require.NoError(t, err)
		rows = append(rows, tu.Clone())
	}
}

func assertTuples(t *testing.T, want, got []Tuple) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.Len(t, got[i], len(want[i]), "row %d", i)
		for c := range want[i] {
			assert.True(t, want[i][c].Equal(got[i][c]), "row %d col %d: want %v got %v", i, c, want[i][c], got[i][c])
		}
	}
}

func TestReadWrite_StringStringInt(t *testing.T) {
	schema := Schema{KindString, KindString, KindInt32}
	data := writeAll(t, schema, []Tuple{
		{String("abc"), String("xyz"), Int32(1)},
		{Null(), Null(), Int32(2)},
	})

	r, err := Open(newMemFile(data))
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, uint64(2), r.NumRows())
	assert.Equal(t, schema, r.Schema())

	first, err := r.ReadTuple()
	require.NoError(t, err)
	assert.Equal(t, "abc", first[0].String())
	assert.Equal(t, "xyz", first[1].String())
	assert.Equal(t, int64(1), first[2].Int64())
	assert.False(t, first[0].Null || first[1].Null || first[2].Null)

	second, err := r.ReadTuple()
	require.NoError(t, err)
	assert.True(t, second[0].Null)
	assert.True(t, second[1].Null)
	assert.False(t, second[2].Null)
	assert.Equal(t, int64(2), second[2].Int64())

	_, err = r.ReadTuple()
	assert.Equal(t, io.EOF, err)
}

func TestRoundTrip_Random(t *testing.T) {
	rng := testutil.NewRNG(42)
	all := []Kind{KindInt8, KindInt16, KindInt32, KindInt64, KindString}
	for range 20 {
		schema := make(Schema, 1+rng.Intn(6))
		for i := range schema {
			schema[i] = all[rng.Intn(len(all))]
		}
		rows := randomTuples(rng, schema, rng.Intn(300))
		data := writeAll(t, schema, rows, WithStripeRows(1+rng.Intn(100)))

		r, err := Open(newMemFile(data))
		require.NoError(t, err)
		assertTuples(t, rows, readAll(t, r))
		require.NoError(t, r.Close())
	}
}

func TestRoundTrip_ZeroRows(t *testing.T) {
	data := writeAll(t, Schema{KindInt64, KindString}, nil)
	r, err := Open(newMemFile(data))
	require.NoError(t, err)
	assert.Equal(t, 0, r.NumStripes())
	assert.Empty(t, readAll(t, r))
}

func TestMultiStripeContinuity(t *testing.T) {
	rng := testutil.NewRNG(3)
	schema := Schema{KindString, KindInt16, KindInt64}
	rows := randomTuples(rng, schema, 200)

	single := writeAll(t, schema, rows, WithStripeRows(0))

	var out bytes.Buffer
	w, err := NewWriter(&out, schema, WithStripeRows(0))
	require.NoError(t, err)
	for i, row := range rows {
		require.NoError(t, w.WriteTuple(row))
		if i == 60 || i == 61 || i == 150 {
			require.NoError(t, w.Flush())
		}
	}
	require.NoError(t, w.Flush(), "flush with no buffered rows is a no-op")
	require.NoError(t, w.Close())

	r1, err := Open(newMemFile(single))
	require.NoError(t, err)
	r2, err := Open(newMemFile(out.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 1, r1.NumStripes())
	assert.Equal(t, 4, r2.NumStripes())

	assertTuples(t, readAll(t, r1), readAll(t, r2))
}

func TestSeek(t *testing.T) {
	rng := testutil.NewRNG(8)
	schema := Schema{KindString, KindInt32, KindInt8}
	rows := randomTuples(rng, schema, 137)
	data := writeAll(t, schema, rows, WithStripeRows(25))

	r, err := Open(newMemFile(data))
	require.NoError(t, err)

	for range 60 {
		row := rng.Intn(len(rows))
		require.NoError(t, r.Seek(uint64(row)))

		// the null counters match a recount from the start of the stripe
		require.NotNil(t, r.cur)
		for c := range schema {
			col := r.cur.At(c)
			want := 0
			for i := range r.pos {
				null, err := col.IsNull(i)
				require.NoError(t, err)
				if null {
					want++
				}
			}
			assert.Equal(t, want, r.nulls[c], "col %d at row %d", c, row)
		}

		got, err := r.ReadTuple()
		require.NoError(t, err)
		assertTuples(t, rows[row:row+1], []Tuple{got})

		// resume sequentially
		if row+1 < len(rows) {
			got, err = r.ReadTuple()
			require.NoError(t, err)
			assertTuples(t, rows[row+1:row+2], []Tuple{got})
		}
	}

	require.NoError(t, r.Seek(uint64(len(rows))))
	_, err = r.ReadTuple()
	assert.Equal(t, io.EOF, err)

	err = r.Seek(uint64(len(rows) + 1))
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, uint64(0), r.Offset())
	got, err := r.ReadTuple()
	require.NoError(t, err)
	assertTuples(t, rows[:1], []Tuple{got})
}

func TestGetTuple(t *testing.T) {
	rng := testutil.NewRNG(12)
	schema := Schema{KindInt64, KindString}
	rows := randomTuples(rng, schema, 90)
	data := writeAll(t, schema, rows, WithStripeRows(32))

	r, err := Open(newMemFile(data))
	require.NoError(t, err)

	// random access does not move the scan
	first, err := r.ReadTuple()
	require.NoError(t, err)
	first = first.Clone()
	for _, row := range []uint64{89, 0, 33, 32, 31, 64} {
		got, err := r.GetTuple(row)
		require.NoError(t, err)
		assertTuples(t, rows[row:row+1], []Tuple{got})
	}
	second, err := r.ReadTuple()
	require.NoError(t, err)
	assertTuples(t, rows[:2], []Tuple{first, second})

	_, err = r.GetTuple(90)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestProjection(t *testing.T) {
	rng := testutil.NewRNG(21)
	schema := Schema{KindString, KindInt32, KindString, KindInt64}
	rows := randomTuples(rng, schema, 50)
	data := writeAll(t, schema, rows, WithStripeRows(20))

	counter := &fs.CountingReaderAt{R: bytes.NewReader(data)}
	r, err := open(counter, int64(len(data)), applyOptions([]Option{WithProjection([]bool{false, true, false, true})}))
	require.NoError(t, err)
	afterOpen := counter.Calls

	got := readAll(t, r)
	require.Len(t, got, len(rows))
	for i := range rows {
		assert.True(t, got[i][0].Null)
		assert.True(t, got[i][2].Null)
		assert.True(t, rows[i][1].Equal(got[i][1]))
		assert.True(t, rows[i][3].Equal(got[i][3]))
	}
	// per stripe: stripe footer plus one read per wanted column run
	assert.Equal(t, 3*3, counter.Calls-afterOpen)
}

func TestSchemaEvolution(t *testing.T) {
	data := writeAll(t, Schema{KindInt32, KindString}, []Tuple{
		{Int32(1), String("a")},
		{Int32(2), Null()},
	})

	t.Run("fewer columns are padded", func(t *testing.T) {
		r, err := Open(newMemFile(data),
			WithSchema(Schema{KindInt32, KindString, KindInt64, KindString}),
			WithMissingValue(2, Int64(-1)))
		require.NoError(t, err)
		assertTuples(t, []Tuple{
			{Int32(1), String("a"), Int64(-1), Null()},
			{Int32(2), Null(), Int64(-1), Null()},
		}, readAll(t, r))
	})

	t.Run("more columns are rejected", func(t *testing.T) {
		_, err := Open(newMemFile(data), WithSchema(Schema{KindInt32}))
		assert.ErrorIs(t, err, ErrSchemaNotMatch)
		var sm *SchemaMismatchError
		require.ErrorAs(t, err, &sm)
		assert.Equal(t, 2, sm.Actual)
	})

	t.Run("kind mismatch", func(t *testing.T) {
		_, err := Open(newMemFile(data), WithSchema(Schema{KindInt64, KindString}))
		assert.ErrorIs(t, err, ErrSchemaNotMatch)
	})

	t.Run("bad missing value", func(t *testing.T) {
		_, err := Open(newMemFile(data),
			WithSchema(Schema{KindInt32, KindString, KindInt64}),
			WithMissingValue(2, Int8(1)))
		assert.ErrorIs(t, err, ErrSchemaNotMatch)
	})
}

func TestVisibility(t *testing.T) {
	rng := testutil.NewRNG(5)
	schema := Schema{KindInt16, KindString}
	rows := randomTuples(rng, schema, 100)
	data := writeAll(t, schema, rows, WithStripeRows(30))

	deleted := roaring.BitmapOf(0, 1, 5, 29, 30, 31, 60, 99)
	deleted.AddRange(70, 95)
	r, err := Open(newMemFile(data), WithVisibility(deleted))
	require.NoError(t, err)

	var want []Tuple
	for i, row := range rows {
		if !deleted.Contains(uint32(i)) {
			want = append(want, row)
		}
	}
	assertTuples(t, want, readAll(t, r))

	all := roaring.New()
	all.AddRange(0, 100)
	r, err = Open(newMemFile(data), WithVisibility(all))
	require.NoError(t, err)
	_, err = r.ReadTuple()
	assert.Equal(t, io.EOF, err)
}

func TestReusableBuffer(t *testing.T) {
	rng := testutil.NewRNG(17)
	schema := Schema{KindString, KindInt64}
	rows := randomTuples(rng, schema, 120)
	data := writeAll(t, schema, rows, WithStripeRows(40))

	buf := NewBuffer(16)
	r, err := Open(newMemFile(data), WithReusableBuffer(buf))
	require.NoError(t, err)
	assertTuples(t, rows, readAll(t, r))
	assert.Greater(t, buf.Capacity(), 16)
}

func TestWriter_Errors(t *testing.T) {
	var out bytes.Buffer
	w, err := NewWriter(&out, Schema{KindInt32, KindString})
	require.NoError(t, err)

	err = w.WriteTuple(Tuple{Int32(1)})
	assert.ErrorIs(t, err, ErrSchemaNotMatch)

	err = w.WriteTuple(Tuple{Int64(1), String("a")})
	assert.ErrorIs(t, err, ErrSchemaNotMatch)
	assert.Equal(t, uint64(0), w.Rows(), "rejected tuples leave no trace")

	require.NoError(t, w.WriteTuple(Tuple{Int32(1), String("a")}))
	assert.Greater(t, w.EstimatedSize(), int64(0))
	require.NoError(t, w.Close())

	assert.ErrorIs(t, w.WriteTuple(Tuple{Int32(1), String("a")}), ErrLogic)
	assert.ErrorIs(t, w.Flush(), ErrLogic)
	assert.ErrorIs(t, w.Close(), ErrLogic)
}

func TestWriter_EstimatedSize(t *testing.T) {
	var out bytes.Buffer
	w, err := NewWriter(&out, Schema{KindInt64}, WithStripeRows(10))
	require.NoError(t, err)

	prev := w.EstimatedSize()
	for i := range 25 {
		require.NoError(t, w.WriteTuple(Tuple{Int64(int64(i))}))
		size := w.EstimatedSize()
		assert.GreaterOrEqual(t, size, prev)
		prev = size
	}
	assert.Equal(t, int64(out.Len())+5*8, w.EstimatedSize())
	require.NoError(t, w.Close())
	assert.Equal(t, int64(out.Len()), w.EstimatedSize())

	// strings add a length word per value; nulls only a presence bit
	out.Reset()
	w, err = NewWriter(&out, Schema{KindString})
	require.NoError(t, err)
	require.NoError(t, w.WriteTuple(Tuple{String("abc")}))
	assert.Equal(t, int64(8+3), w.EstimatedSize())
	require.NoError(t, w.WriteTuple(Tuple{Null()}))
	assert.Equal(t, int64(1+8+3), w.EstimatedSize())
}

func TestCreateAndOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "part.pax")
	schema := Schema{KindString, KindInt8}
	rows := randomTuples(testutil.NewRNG(1), schema, 40)

	w, err := Create(LocalFS, path, schema, WithStripeRows(16))
	require.NoError(t, err)
	for _, row := range rows {
		require.NoError(t, w.WriteTuple(row))
	}
	require.NoError(t, w.Close())

	r, err := OpenFile(LocalFS, path)
	require.NoError(t, err)
	assert.Equal(t, 3, r.NumStripes())
	assertTuples(t, rows, readAll(t, r))
	require.NoError(t, r.Close())
	assert.ErrorIs(t, r.Close(), ErrLogic)
}

func TestCreate_ShortWrite(t *testing.T) {
	dir := t.TempDir()
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("broken", fs.Fault{FailAfterBytes: 64, ShortWrite: true, FailReadAt: -1})

	schema := Schema{KindString}
	w, err := Create(ffs, filepath.Join(dir, "broken.pax"), schema, WithStripeRows(0))
	require.NoError(t, err)
	for range 50 {
		require.NoError(t, w.WriteTuple(Tuple{String("0123456789")}))
	}
	err = w.Close()
	assert.ErrorIs(t, err, ErrIO)
	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Less(t, ioErr.Got, ioErr.Want)

	_, err = OpenFile(ffs, filepath.Join(dir, "broken.pax"))
	assert.Error(t, err)
}

func TestOpenFile_ReadFault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.pax")
	rows := randomTuples(testutil.NewRNG(2), Schema{KindInt32}, 10)
	w, err := Create(LocalFS, path, Schema{KindInt32})
	require.NoError(t, err)
	for _, row := range rows {
		require.NoError(t, w.WriteTuple(row))
	}
	require.NoError(t, w.Close())

	ffs := fs.NewFaultyFS(nil)
	ffs.Default = fs.Fault{FailAfterBytes: -1, FailReadAt: 0}
	_, err = OpenFile(ffs, path)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, fs.ErrInjected)
}

func TestMetricsAndLogging(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	var logs bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	rows := randomTuples(testutil.NewRNG(9), Schema{KindInt32}, 25)
	data := writeAll(t, Schema{KindInt32}, rows,
		WithStripeRows(10), WithMetricsCollector(metrics), WithLogger(logger))

	stats := metrics.GetStats()
	assert.Equal(t, int64(3), stats.StripeWriteCount)
	assert.Equal(t, int64(25), stats.StripeWriteRows)
	assert.Zero(t, stats.StripeWriteErrors)
	assert.Less(t, stats.StripeWriteBytes, int64(len(data)))
	assert.Contains(t, logs.String(), `"msg":"stripe written","stripe":0,"rows":10`)
	assert.Contains(t, logs.String(), `"msg":"stripe written","stripe":2,"rows":5`)
	assert.Contains(t, logs.String(), `"msg":"file closed"`)

	r, err := Open(newMemFile(data), WithMetricsCollector(metrics), WithLogger(logger))
	require.NoError(t, err)
	assert.Len(t, readAll(t, r), 25)
	require.NoError(t, r.Close())

	stats = metrics.GetStats()
	assert.Equal(t, int64(3), stats.StripeReadCount)
	assert.Equal(t, int64(25), stats.StripeReadRows)
	assert.Equal(t, stats.StripeWriteBytes, stats.StripeReadBytes)
	assert.Equal(t, int64(25), stats.TupleReadCount)
	assert.Contains(t, logs.String(), `"msg":"stripe loaded","stripe":2,"rows":5`)
}

func TestGroupStats(t *testing.T) {
	data := writeAll(t, Schema{KindInt32, KindString}, []Tuple{
		{Int32(4), String("a")},
		{Int32(-7), Null()},
		{Null(), String("b")},
	})
	r, err := Open(newMemFile(data))
	require.NoError(t, err)

	stats, err := r.GroupStats(0)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, ColumnStats{Rows: 3, HasNull: true, HasMinMax: true, Min: -7, Max: 4, HasSum: true, Sum: -3}, stats[0])
	assert.True(t, stats[1].HasNull)
	assert.Equal(t, stats, r.FileStats())

	_, err = r.GroupStats(1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestParseSchema(t *testing.T) {
	s, err := ParseSchema("string, int32,int8")
	require.NoError(t, err)
	assert.Equal(t, Schema{KindString, KindInt32, KindInt8}, s)
	assert.Equal(t, "string,int32,int8", s.String())

	_, err = ParseSchema("string,float")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestValue(t *testing.T) {
	assert.Equal(t, int64(-3), Int8(-3).Int64())
	assert.Equal(t, int64(-300), Int16(-300).Int64())
	assert.Equal(t, int64(1<<20), Int32(1<<20).Int64())
	assert.Equal(t, int64(-1<<40), Int64(-1<<40).Int64())
	assert.Equal(t, "NULL", Null().Format(KindInt32))
	assert.Equal(t, "12", Int32(12).Format(KindInt32))
	assert.Equal(t, `"hi"`, String("hi").Format(KindString))
	assert.False(t, Null().Equal(String("")))
	assert.True(t, String("").Equal(Bytes(nil)))
}
