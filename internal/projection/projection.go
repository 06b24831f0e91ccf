// Package projection turns a wanted-column mask into the column indices and
// merged read ranges a stripe reader needs.
package projection

// Range is an inclusive run of consecutive columns [Lo, Hi].
type Range struct {
	Lo int
	Hi int
}

// Info returns the indices of the wanted columns in physical order.
// A nil mask selects every column.
func Info(total int, wanted []bool) []int {
	indices := make([]int, 0, total)
	for i := range total {
		if wanted == nil || (i < len(wanted) && wanted[i]) {
			indices = append(indices, i)
		}
	}
	return indices
}

// BuildReadRanges merges runs of wanted columns into maximal ranges.
// A nil mask yields the single range [0, total-1]; total is ignored otherwise
// beyond bounding the mask.
func BuildReadRanges(wanted []bool, total int) []Range {
	if wanted == nil {
		if total <= 0 {
			return nil
		}
		return []Range{{Lo: 0, Hi: total - 1}}
	}

	n := min(len(wanted), total)
	var ranges []Range
	for i := 0; i < n; i++ {
		if !wanted[i] {
			continue
		}
		lo := i
		for i+1 < n && wanted[i+1] {
			i++
		}
		ranges = append(ranges, Range{Lo: lo, Hi: i})
	}
	return ranges
}

// ReadIndexOf returns the position of target in indices, or -1.
// indices is sorted, as produced by Info.
func ReadIndexOf(indices []int, target int) int {
	lo, hi := 0, len(indices)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if indices[mid] < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(indices) && indices[lo] == target {
		return lo
	}
	return -1
}
