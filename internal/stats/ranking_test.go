package stats

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRank(t *testing.T) {
	tests := []struct {
		name   string
		totals []int
		want   []int
	}{
		{name: "tie at top skips next rank", totals: []int{10, 10, 5}, want: []int{1, 1, 3}},
		{name: "single player", totals: []int{7}, want: []int{1}},
		{name: "empty", totals: []int{}, want: []int{}},
		{name: "unsorted input", totals: []int{3, 5, 5, 1}, want: []int{3, 1, 1, 4}},
		{name: "tie in the middle", totals: []int{9, 4, 4, 2}, want: []int{1, 2, 2, 4}},
		{name: "all tied", totals: []int{2, 2, 2}, want: []int{1, 1, 1}},
		{name: "negative totals", totals: []int{-3, 0, -10}, want: []int{2, 1, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rank(tt.totals)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Rank(%v) mismatch (-want +got):\n%s", tt.totals, diff)
			}
		})
	}
}

func TestRankDoesNotReorderInput(t *testing.T) {
	totals := []int{1, 3, 2}
	_ = Rank(totals)
	if diff := cmp.Diff([]int{1, 3, 2}, totals); diff != "" {
		t.Fatalf("input mutated (-want +got):\n%s", diff)
	}
}
