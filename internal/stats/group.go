package stats

import (
	"strconv"

	"github.com/Wakana-github/score-sheet-sub000/internal/domain"
)

// NonMemberPrefix marks synthesized identities for players recorded without
// a member id.
const NonMemberPrefix = "NonMember-"

// CurrentMembers credits a slot to its member id when that id is a current
// member of the group. Former members and ad hoc players are not credited.
func CurrentMembers(members map[string]string) Attribution {
	return func(rec domain.ScoreRecord, slot int) (string, bool) {
		id := rec.Players[slot].MemberID
		if id == "" {
			id = NonMemberPrefix + strconv.Itoa(slot)
		}
		_, ok := members[id]
		return id, ok
	}
}

// Group computes group statistics. selectedGame may be empty. Player names
// always come from the group's current roster, never from record snapshots.
func Group(group domain.Group, records []domain.ScoreRecord, selectedGame string) (domain.GroupStats, error) {
	if len(records) == 0 {
		return domain.EmptyGroupStats(group.GroupName), nil
	}

	names := group.MemberNames()
	seed := make([]string, 0, len(group.Members))
	for _, m := range group.Members {
		seed = append(seed, m.MemberID)
	}

	res, err := Aggregate(records, Options{
		Attribute:       CurrentMembers(names),
		Seed:            seed,
		AllSlotsInGames: true,
		FocusGame:       selectedGame,
	})
	if err != nil {
		return domain.GroupStats{}, err
	}

	out := domain.GroupStats{
		GroupName:          group.GroupName,
		TotalPlays:         res.Records,
		AvailableGames:     res.SortedTitles(),
		MostPlayedGame:     domain.MostPlayedGame{Title: domain.NoGameTitle},
		TotalGroupRankings: res.Ranks(),
		PlayerDetails:      playerDetails(res.players, names),
	}
	if g, ok := res.MostPlayed(); ok {
		out.MostPlayedGame = domain.MostPlayedGame{Title: g.Title, Plays: g.Plays()}
	}

	if selectedGame != "" {
		if g, ok := res.Game(selectedGame); ok && g.Plays() > 0 {
			out.SelectedGameStats = &domain.SelectedGameStats{
				GameTitle:     g.Title,
				TotalPlays:    g.Plays(),
				AverageScore:  g.scores.Average(),
				HighestScore:  g.scores.Highest(),
				LowestScore:   g.scores.Lowest(),
				Ranks:         g.Ranks(),
				PlayerDetails: playerDetails(res.focus, names),
			}
		}
	}
	return out, nil
}

func playerDetails(l *ledger, names map[string]string) []domain.PlayerDetail {
	out := make([]domain.PlayerDetail, 0, len(l.order))
	l.each(func(id string, a *Accumulator) {
		if a.Plays() == 0 {
			return
		}
		ranks := a.Ranks()
		out = append(out, domain.PlayerDetail{
			PlayerName:       names[id],
			TotalPlays:       a.Plays(),
			AverageScore:     a.Average(),
			HighestScore:     a.Highest(),
			LowestScore:      a.Lowest(),
			Ranks:            ranks,
			TotalFirstPlaces: ranks.First,
		})
	})
	return out
}
