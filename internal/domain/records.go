package domain

import (
	"fmt"
	"strings"
	"time"
)

// NoGameTitle is reported as the most played game when nothing was played.
const NoGameTitle = "N/A"

type Player struct {
	MemberID string `json:"memberId,omitempty"`
	Name     string `json:"name"`
}

// ScoreRecord is one saved play session. Scores is indexed [item][player].
type ScoreRecord struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	GroupID        string    `json:"groupId,omitempty"`
	GameTitle      string    `json:"gameTitle"`
	Players        []Player  `json:"playerNames"`
	ScoreItemNames []string  `json:"scoreItemNames"`
	Scores         [][]int   `json:"scores"`
	NumPlayers     int       `json:"numPlayers"`
	NumScoreItems  int       `json:"numScoreItems"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Validate checks that the grid matches the declared dimensions exactly.
func (r ScoreRecord) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(r.GameTitle) == "" {
		fields["gameTitle"] = "required"
	}
	if r.NumPlayers <= 0 {
		fields["numPlayers"] = "must be > 0"
	} else if len(r.Players) != r.NumPlayers {
		fields["playerNames"] = fmt.Sprintf("must have %d entries", r.NumPlayers)
	}
	if r.NumScoreItems <= 0 {
		fields["numScoreItems"] = "must be > 0"
	} else if len(r.ScoreItemNames) != r.NumScoreItems {
		fields["scoreItemNames"] = fmt.Sprintf("must have %d entries", r.NumScoreItems)
	}
	if len(r.Scores) != r.NumScoreItems {
		fields["scores"] = fmt.Sprintf("must have %d rows", r.NumScoreItems)
	} else {
		for i, row := range r.Scores {
			if len(row) != r.NumPlayers {
				fields["scores"] = fmt.Sprintf("row %d must have %d columns", i, r.NumPlayers)
				break
			}
		}
	}
	if len(fields) > 0 {
		return NewValidationError(fields)
	}
	return nil
}

// PlayerTotals sums every player's column over all score items.
func (r ScoreRecord) PlayerTotals() []int {
	totals := make([]int, r.NumPlayers)
	for _, row := range r.Scores {
		for p := 0; p < r.NumPlayers && p < len(row); p++ {
			totals[p] += row[p]
		}
	}
	return totals
}

type RecordInput struct {
	GroupID        string
	GameTitle      string
	Players        []Player
	ScoreItemNames []string
	Scores         [][]int
	NumPlayers     int
	NumScoreItems  int
}
