package pax

import (
	"fmt"
	"strings"

	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/column"
)

// Kind is the physical type of a column.
type Kind = column.Kind

const (
	KindInt8   = column.Byte
	KindInt16  = column.Short
	KindInt32  = column.Int
	KindInt64  = column.Long
	KindString = column.String
)

// Schema is the ordered list of column kinds of a file.
type Schema []Kind

// ParseSchema parses a comma separated list of kind names such as
// "string,string,int32".
func ParseSchema(s string) (Schema, error) {
	var schema Schema
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		k, ok := column.ParseKind(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown column kind %q", ErrInvalidFormat, name)
		}
		schema = append(schema, k)
	}
	return schema, nil
}

func (s Schema) String() string {
	names := make([]string, len(s))
	for i, k := range s {
		names[i] = k.String()
	}
	return strings.Join(names, ",")
}

// ColumnStats are the statistics of one column over a stripe or a file.
type ColumnStats = column.Stats
