package stats

import (
	"time"

	"github.com/Wakana-github/score-sheet-sub000/internal/domain"
)

var baseTime = time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

// sheet builds a valid record. Each row is one score item across players.
func sheet(id, title string, players []domain.Player, rows ...[]int) domain.ScoreRecord {
	items := make([]string, len(rows))
	for i := range rows {
		items[i] = "round"
	}
	return domain.ScoreRecord{
		ID:             id,
		UserID:         "user-1",
		GameTitle:      title,
		Players:        players,
		ScoreItemNames: items,
		Scores:         rows,
		NumPlayers:     len(players),
		NumScoreItems:  len(rows),
		CreatedAt:      baseTime,
	}
}

func named(names ...string) []domain.Player {
	out := make([]domain.Player, len(names))
	for i, n := range names {
		out[i] = domain.Player{Name: n}
	}
	return out
}

func members(ids ...string) []domain.Player {
	out := make([]domain.Player, len(ids))
	for i, id := range ids {
		out[i] = domain.Player{MemberID: id, Name: id}
	}
	return out
}
