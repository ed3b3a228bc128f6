package stats

import "github.com/Wakana-github/score-sheet-sub000/internal/domain"

type tally struct {
	first, second, third int
}

func (t *tally) add(rank int) {
	switch rank {
	case 1:
		t.first++
	case 2:
		t.second++
	case 3:
		t.third++
	}
}

func (t *tally) merge(o tally) {
	t.first += o.first
	t.second += o.second
	t.third += o.third
}

func (t tally) counts() domain.RankCounts {
	return domain.RankCounts{First: t.first, Second: t.second, Third: t.third}
}

// Accumulator is a running total for one identity or one game title.
// Extremes are absent until the first score arrives.
type Accumulator struct {
	plays   int
	total   int
	high    int
	low     int
	hasData bool
	ranks   tally
}

func (a *Accumulator) add(score, rank int) {
	a.plays++
	a.total += score
	if !a.hasData || score > a.high {
		a.high = score
	}
	if !a.hasData || score < a.low {
		a.low = score
	}
	a.hasData = true
	a.ranks.add(rank)
}

// Plays counts the scores added.
func (a *Accumulator) Plays() int { return a.plays }

// Average is the unrounded mean score, or 0 when nothing was recorded.
func (a *Accumulator) Average() float64 {
	if a.plays == 0 {
		return 0
	}
	return float64(a.total) / float64(a.plays)
}

// Highest returns the best score, or 0 when nothing was recorded.
func (a *Accumulator) Highest() int {
	if !a.hasData {
		return 0
	}
	return a.high
}

// Lowest returns the worst score, or 0 when nothing was recorded.
func (a *Accumulator) Lowest() int {
	if !a.hasData {
		return 0
	}
	return a.low
}

// Ranks returns the first, second and third place counts.
func (a *Accumulator) Ranks() domain.RankCounts { return a.ranks.counts() }

// ledger keeps accumulators keyed by identity in first-seen order.
type ledger struct {
	order []string
	byKey map[string]*Accumulator
}

func newLedger(seed []string) *ledger {
	l := &ledger{byKey: make(map[string]*Accumulator, len(seed))}
	for _, k := range seed {
		l.get(k)
	}
	return l
}

func (l *ledger) get(key string) *Accumulator {
	if a, ok := l.byKey[key]; ok {
		return a
	}
	a := &Accumulator{}
	l.byKey[key] = a
	l.order = append(l.order, key)
	return a
}

func (l *ledger) each(fn func(key string, a *Accumulator)) {
	for _, k := range l.order {
		fn(k, l.byKey[k])
	}
}
