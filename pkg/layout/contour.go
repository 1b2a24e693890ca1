package layout

import (
	"math"
	"sort"
)

// segment is one band of a subtree's outline: over the depth range
// [top, bottom) the subtree occupies breadth [lo, hi].
type segment struct {
	top, bottom float64
	lo, hi      float64
}

// contour is a subtree outline as depth-sorted, non-overlapping segments.
// Breadth values are relative to the subtree root's center.
type contour []segment

func (c contour) shifted(d float64) contour {
	out := make(contour, len(c))
	for i, s := range c {
		s.lo += d
		s.hi += d
		out[i] = s
	}
	return out
}

// separation returns the smallest breadth shift for right so that it does
// not overlap left anywhere the two share depth.
func separation(left, right contour) float64 {
	shift := math.Inf(-1)
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		l, r := left[i], right[j]
		if math.Max(l.top, r.top) < math.Min(l.bottom, r.bottom) {
			shift = math.Max(shift, l.hi-r.lo)
		}
		if l.bottom <= r.bottom {
			i++
		} else {
			j++
		}
	}
	if math.IsInf(shift, -1) {
		return 0
	}
	return shift
}

// merge returns the pointwise envelope of a and b.
func merge(a, b contour) contour {
	bounds := make([]float64, 0, 2*(len(a)+len(b)))
	for _, s := range a {
		bounds = append(bounds, s.top, s.bottom)
	}
	for _, s := range b {
		bounds = append(bounds, s.top, s.bottom)
	}
	sort.Float64s(bounds)

	var out contour
	ia, ib := 0, 0
	for k := 0; k+1 < len(bounds); k++ {
		y0, y1 := bounds[k], bounds[k+1]
		if y0 == y1 {
			continue
		}
		for ia < len(a) && a[ia].bottom <= y0 {
			ia++
		}
		for ib < len(b) && b[ib].bottom <= y0 {
			ib++
		}
		lo, hi := math.Inf(1), math.Inf(-1)
		if ia < len(a) && a[ia].top <= y0 {
			lo, hi = math.Min(lo, a[ia].lo), math.Max(hi, a[ia].hi)
		}
		if ib < len(b) && b[ib].top <= y0 {
			lo, hi = math.Min(lo, b[ib].lo), math.Max(hi, b[ib].hi)
		}
		if math.IsInf(lo, 1) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].bottom == y0 && out[n-1].lo == lo && out[n-1].hi == hi {
			out[n-1].bottom = y1
			continue
		}
		out = append(out, segment{top: y0, bottom: y1, lo: lo, hi: hi})
	}
	return out
}
