// Package stats turns raw score records into personal and group statistics.
// Everything here is a pure function of its inputs; callers fetch the records.
package stats

import "sort"

// Rank assigns standard competition ranks ("1224") by descending total.
// Equal totals share the rank of the first entry holding that total, and the
// next distinct total is ranked by its position. ranks[i] belongs to totals[i].
func Rank(totals []int) []int {
	order := make([]int, len(totals))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return totals[order[a]] > totals[order[b]]
	})

	ranks := make([]int, len(totals))
	for pos, idx := range order {
		if pos > 0 {
			prev := order[pos-1]
			if totals[prev] == totals[idx] {
				ranks[idx] = ranks[prev]
				continue
			}
		}
		ranks[idx] = pos + 1
	}
	return ranks
}
