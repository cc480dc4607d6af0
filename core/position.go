package core

// PositionStep is the spacing between ordering keys of freshly numbered
// lists. New tasks append at max+PositionStep; rebalanced lists come out
// as k*PositionStep.
const PositionStep = 100

// InsertPosition computes an ordering key strictly between prev and next
// (either may be nil for head/tail). When the gap is too tight to split it
// returns needRebalance=true; the caller renumbers the list and retries.
func InsertPosition(prev, next *int) (pos int, needRebalance bool) {
	switch {
	case prev == nil && next == nil:
		return PositionStep, false
	case prev == nil:
		p := *next - PositionStep
		if p < 1 {
			p = 1
		}
		return p, false
	case next == nil:
		return *prev + PositionStep, false
	}

	gap := *next - *prev
	if gap > 1 {
		return *prev + gap/2, false
	}
	return 0, true
}

// RebalancedPositions renumbers n slots densely: 100, 200, 300, ...
func RebalancedPositions(n int) []int {
	out := make([]int, n)
	for k := range out {
		out[k] = (k + 1) * PositionStep
	}
	return out
}

// ListConsistent reports whether positions (in list order) are usable:
// strictly increasing with a pairwise gap of at least two, so a midpoint
// insertion between any neighbours is possible.
func ListConsistent(positions []int) bool {
	for i := 1; i < len(positions); i++ {
		if positions[i]-positions[i-1] < 2 {
			return false
		}
	}
	return true
}

// listOrdered reports whether positions are unique and strictly increasing.
// A violation means concurrent writers corrupted the list.
func listOrdered(positions []int) bool {
	for i := 1; i < len(positions); i++ {
		if positions[i] <= positions[i-1] {
			return false
		}
	}
	return true
}
