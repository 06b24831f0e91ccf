package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	pax "github.com/zhangyue-hashdata/cloudberrydb-sub002"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/blobstore"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/codec"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/mmap"
)

type globalFlags struct {
	format   string
	logLevel string
}

func (g *globalFlags) codec() (codec.Codec, error) {
	c, ok := codec.ByName(g.format)
	if !ok {
		return nil, fmt.Errorf("unknown format %q, want one of %s", g.format, strings.Join(codec.Names(), ", "))
	}
	return c, nil
}

func (g *globalFlags) logger() (*pax.Logger, error) {
	if g.logLevel == "" {
		return pax.NoopLogger(), nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(g.logLevel)); err != nil {
		return nil, err
	}
	return pax.NewTextLogger(level), nil
}

func newRootCommand(out io.Writer) *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "paxdump",
		Short:         "Inspect micro-partition files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&g.format, "format", "go-json", "Output encoding ("+strings.Join(codec.Names(), ", ")+")")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log to stderr at this level (debug, info, warn, error)")

	root.AddCommand(metaCommand(g), rowsCommand(g))
	return root
}

// openBlob opens path through a LocalStore rooted at its directory.
func openBlob(path string, pattern mmap.AccessPattern) (blobstore.Blob, error) {
	store := blobstore.NewLocalStore(filepath.Dir(path), blobstore.WithAccessPattern(pattern))
	return store.Open(filepath.Base(path))
}

type columnStats struct {
	Rows    int    `json:"rows"`
	HasNull bool   `json:"has_null"`
	Min     *int64 `json:"min,omitempty"`
	Max     *int64 `json:"max,omitempty"`
	Sum     *int64 `json:"sum,omitempty"`
}

func convertStats(in []pax.ColumnStats) []columnStats {
	out := make([]columnStats, len(in))
	for i, s := range in {
		out[i] = columnStats{Rows: s.Rows, HasNull: s.HasNull}
		if s.HasMinMax {
			out[i].Min, out[i].Max = &s.Min, &s.Max
		}
		if s.HasSum {
			out[i].Sum = &s.Sum
		}
	}
	return out
}

type stripeMeta struct {
	Index int           `json:"index"`
	Rows  int           `json:"rows"`
	Stats []columnStats `json:"stats"`
}

type fileMeta struct {
	Path    string        `json:"path"`
	Size    int64         `json:"size"`
	Rows    uint64        `json:"rows"`
	Schema  string        `json:"schema"`
	Stripes []stripeMeta  `json:"stripes"`
	Stats   []columnStats `json:"stats"`
}

func readMeta(path string, logger *pax.Logger) (*fileMeta, error) {
	blob, err := openBlob(path, mmap.AccessRandom)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	r, err := pax.Open(blob, pax.WithLogger(logger.WithPath(path)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer r.Close()

	m := &fileMeta{
		Path:   path,
		Size:   blob.Size(),
		Rows:   r.NumRows(),
		Schema: r.Schema().String(),
		Stats:  convertStats(r.FileStats()),
	}
	for i := range r.NumStripes() {
		rows, err := r.StripeRows(i)
		if err != nil {
			return nil, err
		}
		stats, err := r.GroupStats(i)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		m.Stripes = append(m.Stripes, stripeMeta{Index: i, Rows: rows, Stats: convertStats(stats)})
	}
	return m, nil
}

func metaCommand(g *globalFlags) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "meta FILE...",
		Short: "Print schema, stripes and statistics of each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.codec()
			if err != nil {
				return err
			}
			logger, err := g.logger()
			if err != nil {
				return err
			}

			metas := make([]*fileMeta, len(args))
			var eg errgroup.Group
			eg.SetLimit(max(workers, 1))
			for i, path := range args {
				eg.Go(func() error {
					m, err := readMeta(path, logger)
					metas[i] = m
					return err
				})
			}
			if err := eg.Wait(); err != nil {
				return err
			}

			lw := codec.NewLineWriter(cmd.OutOrStdout(), c)
			for _, m := range metas {
				if err := lw.Write(m); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "Files read concurrently")
	return cmd
}

// parseColumns turns "0,2" into a projection mask over n columns.
func parseColumns(s string, n int) ([]bool, error) {
	if s == "" {
		return nil, nil
	}
	mask := make([]bool, n)
	for _, part := range strings.Split(s, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("bad column %q: %w", part, err)
		}
		if i < 0 || i >= n {
			return nil, fmt.Errorf("column %d: %w", i, pax.ErrOutOfRange)
		}
		mask[i] = true
	}
	return mask, nil
}

type rowRecord struct {
	Row    uint64 `json:"row"`
	Values []any  `json:"values"`
}

func jsonValue(v pax.Value, k pax.Kind) any {
	switch {
	case v.Null:
		return nil
	case k.Width() > 0:
		return v.Int64()
	default:
		return v.String()
	}
}

func rowsCommand(g *globalFlags) *cobra.Command {
	var (
		columns string
		offset  uint64
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "rows FILE",
		Short: "Print the rows of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.codec()
			if err != nil {
				return err
			}
			logger, err := g.logger()
			if err != nil {
				return err
			}
			blob, err := openBlob(args[0], mmap.AccessSequential)
			if err != nil {
				return err
			}
			defer blob.Close()

			// open once for the column count, then with the projection
			probe, err := pax.Open(blob)
			if err != nil {
				return err
			}
			schema := probe.Schema()
			_ = probe.Close()
			proj, err := parseColumns(columns, len(schema))
			if err != nil {
				return err
			}

			r, err := pax.Open(blob,
				pax.WithProjection(proj),
				pax.WithReusableBuffer(pax.NewBuffer(64<<10)),
				pax.WithLogger(logger.WithPath(args[0])))
			if err != nil {
				return err
			}
			defer r.Close()
			if err := r.Seek(offset); err != nil {
				return err
			}

			lw := codec.NewLineWriter(cmd.OutOrStdout(), c)
			for n := 0; limit <= 0 || n < limit; n++ {
				row := r.Offset()
				t, err := r.ReadTuple()
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return err
				}
				rec := rowRecord{Row: row, Values: make([]any, 0, len(t))}
				for i, v := range t {
					if proj == nil || proj[i] {
						rec.Values = append(rec.Values, jsonValue(v, schema[i]))
					}
				}
				if err := lw.Write(rec); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&columns, "columns", "", "Comma separated column indices to print (default all)")
	cmd.Flags().Uint64Var(&offset, "offset", 0, "First row to print")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows to print (0 for all)")
	return cmd
}
