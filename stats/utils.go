package stats

func Uint64Max(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

func Uint64Min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// How many bytes do [l1, r1) and [l2, r2) share?
func RangeOverlap(l1, r1, l2, r2 uint64) uint64 {
	lo, hi := Uint64Max(l1, l2), Uint64Min(r1, r2)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// Signed distance from a to b.
func Distance(a, b uint64) float64 {
	if b >= a {
		return float64(b - a)
	}
	return -float64(a - b)
}
