package stripe

import (
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/column"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/orcproto"
)

func statsToProto(s column.Stats) orcproto.ColumnStatistics {
	p := orcproto.ColumnStatistics{
		NumberOfValues: uint64(s.Rows),
		HasNull:        s.HasNull,
	}
	if s.HasMinMax {
		p.IntStatistics = &orcproto.IntegerStatistics{
			Minimum: s.Min,
			Maximum: s.Max,
			HasSum:  s.HasSum,
			Sum:     s.Sum,
		}
	}
	return p
}

func statsFromProto(p orcproto.ColumnStatistics) column.Stats {
	s := column.Stats{
		Rows:    int(p.NumberOfValues),
		HasNull: p.HasNull,
	}
	if p.IntStatistics != nil {
		s.HasMinMax = true
		s.Min = p.IntStatistics.Minimum
		s.Max = p.IntStatistics.Maximum
		s.HasSum = p.IntStatistics.HasSum
		s.Sum = p.IntStatistics.Sum
	}
	return s
}

// mergeStats folds stripe statistics into file statistics.
func mergeStats(a, b column.Stats) column.Stats {
	out := column.Stats{
		Rows:    a.Rows + b.Rows,
		HasNull: a.HasNull || b.HasNull,
	}
	switch {
	case !a.HasMinMax && !b.HasMinMax:
		return out
	case !a.HasMinMax:
		out.HasMinMax, out.Min, out.Max = true, b.Min, b.Max
	case !b.HasMinMax:
		out.HasMinMax, out.Min, out.Max = true, a.Min, a.Max
	default:
		out.HasMinMax, out.Min, out.Max = true, min(a.Min, b.Min), max(a.Max, b.Max)
	}

	// A side without values contributes a valid zero sum.
	aOK := a.HasSum || !a.HasMinMax
	bOK := b.HasSum || !b.HasMinMax
	if aOK && bOK {
		sum := a.Sum + b.Sum
		if (b.Sum > 0 && sum < a.Sum) || (b.Sum < 0 && sum > a.Sum) {
			return out
		}
		out.HasSum, out.Sum = true, sum
	}
	return out
}
