package stats

import "github.com/Wakana-github/score-sheet-sub000/internal/domain"

const selfIdentity = "self"

// FirstSlot credits slot 0 to the record owner. The owner is always recorded
// as the first player.
func FirstSlot(_ domain.ScoreRecord, slot int) (string, bool) {
	return selfIdentity, slot == 0
}

// Personal computes the owner's statistics over their records.
func Personal(records []domain.ScoreRecord) (domain.PersonalStats, error) {
	res, err := Aggregate(records, Options{Attribute: FirstSlot})
	if err != nil {
		return domain.PersonalStats{}, err
	}

	out := domain.PersonalStats{
		TotalPlays:     res.Records,
		MostPlayedGame: domain.NoGameTitle,
		TotalRankings:  res.Ranks(),
		GameDetails:    make([]domain.GameDetail, 0, len(res.titles)),
	}
	if g, ok := res.MostPlayed(); ok {
		out.MostPlayedGame = g.Title
	}
	for _, g := range res.Games() {
		out.GameDetails = append(out.GameDetails, domain.GameDetail{
			GameTitle:    g.Title,
			Plays:        g.Plays(),
			AverageScore: g.scores.Average(),
			HighestScore: g.scores.Highest(),
			LowestScore:  g.scores.Lowest(),
			Ranks:        g.Ranks(),
		})
	}
	return out, nil
}
