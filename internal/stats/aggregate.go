package stats

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Wakana-github/score-sheet-sub000/internal/domain"
)

// ErrMalformedRecord wraps a record whose grid does not match its declared
// dimensions.
var ErrMalformedRecord = errors.New("malformed score record")

// Attribution resolves the identity credited with a player slot. Slots that
// return ok=false still take part in the record's ranking but are not
// accumulated per identity.
type Attribution func(rec domain.ScoreRecord, slot int) (identity string, ok bool)

type Options struct {
	Attribute Attribution
	// Seed pre-creates identity accumulators in this order.
	Seed []string
	// AllSlotsInGames credits every slot to the per-game summaries and the
	// overall rank tally. When false only attributed slots count.
	AllSlotsInGames bool
	// FocusGame, when set, keeps a second identity ledger restricted to
	// records of that title.
	FocusGame string
}

// Game is the per-title summary. Plays counts records; the score accumulator
// counts every credited slot.
type Game struct {
	Title  string
	plays  int
	scores Accumulator
}

// Plays is the number of records with this title.
func (g *Game) Plays() int { return g.plays }

// Ranks tallies the placings of every credited slot.
func (g *Game) Ranks() domain.RankCounts { return g.scores.Ranks() }

// Result holds the outcome of one Aggregate call.
type Result struct {
	Records int

	players *ledger
	focus   *ledger
	games   map[string]*Game
	titles  []string
	ranks   tally
}

// Aggregate runs one pass over records. Records are consumed in the given
// order, which decides most-played ties.
func Aggregate(records []domain.ScoreRecord, opts Options) (*Result, error) {
	if opts.Attribute == nil {
		return nil, errors.New("stats: nil attribution")
	}

	res := &Result{
		players: newLedger(opts.Seed),
		games:   make(map[string]*Game),
	}
	if opts.FocusGame != "" {
		res.focus = newLedger(opts.Seed)
	}

	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("%w: record %s: %v", ErrMalformedRecord, rec.ID, err)
		}
		res.Records++

		totals := rec.PlayerTotals()
		ranks := Rank(totals)
		game := res.game(rec.GameTitle)
		game.plays++
		inFocus := res.focus != nil && rec.GameTitle == opts.FocusGame

		for slot, total := range totals {
			id, ok := opts.Attribute(rec, slot)
			if ok || opts.AllSlotsInGames {
				game.scores.add(total, ranks[slot])
			}
			if !ok {
				continue
			}
			res.players.get(id).add(total, ranks[slot])
			if inFocus {
				res.focus.get(id).add(total, ranks[slot])
			}
		}
	}

	for _, t := range res.titles {
		res.ranks.merge(res.games[t].scores.ranks)
	}
	return res, nil
}

func (r *Result) game(title string) *Game {
	if g, ok := r.games[title]; ok {
		return g
	}
	g := &Game{Title: title}
	r.games[title] = g
	r.titles = append(r.titles, title)
	return g
}

// Game returns the summary for title, if any record had it.
func (r *Result) Game(title string) (*Game, bool) {
	g, ok := r.games[title]
	return g, ok
}

// Games returns the per-title summaries in first-seen order.
func (r *Result) Games() []*Game {
	out := make([]*Game, 0, len(r.titles))
	for _, t := range r.titles {
		out = append(out, r.games[t])
	}
	return out
}

// SortedTitles returns every distinct title in ascending order.
func (r *Result) SortedTitles() []string {
	out := append([]string(nil), r.titles...)
	sort.Strings(out)
	return out
}

// MostPlayed returns the first title reaching the highest play count.
func (r *Result) MostPlayed() (*Game, bool) {
	var best *Game
	for _, t := range r.titles {
		g := r.games[t]
		if best == nil || g.plays > best.plays {
			best = g
		}
	}
	return best, best != nil
}

// Ranks tallies the placings counted across all records.
func (r *Result) Ranks() domain.RankCounts { return r.ranks.counts() }

// Player returns the accumulator of an identity from the all-games ledger.
func (r *Result) Player(identity string) (*Accumulator, bool) {
	a, ok := r.players.byKey[identity]
	return a, ok
}
