package stats

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Wakana-github/score-sheet-sub000/internal/domain"
)

func TestPersonalAverageAndExtremes(t *testing.T) {
	records := []domain.ScoreRecord{
		sheet("r1", "Catan", named("me", "bob"), []int{5, 1}, []int{7, 20}),
		sheet("r2", "Catan", named("me", "bob"), []int{10, 3}, []int{8, 3}),
	}

	got, err := Personal(records)
	if err != nil {
		t.Fatalf("Personal: %v", err)
	}

	want := domain.PersonalStats{
		TotalPlays:     2,
		MostPlayedGame: "Catan",
		TotalRankings:  domain.RankCounts{First: 1, Second: 1},
		GameDetails: []domain.GameDetail{{
			GameTitle:    "Catan",
			Plays:        2,
			AverageScore: 15,
			HighestScore: 18,
			LowestScore:  12,
			Ranks:        domain.RankCounts{First: 1, Second: 1},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Personal mismatch (-want +got):\n%s", diff)
	}
}

func TestPersonalRanksOnlyFirstSlot(t *testing.T) {
	records := []domain.ScoreRecord{
		// me ties for first with carol, dan is third.
		sheet("r1", "Azul", named("me", "carol", "dan"), []int{10, 10, 5}),
		// me is third behind a tie.
		sheet("r2", "Azul", named("me", "carol", "dan"), []int{1, 4, 4}),
	}

	got, err := Personal(records)
	if err != nil {
		t.Fatalf("Personal: %v", err)
	}
	if diff := cmp.Diff(domain.RankCounts{First: 1, Third: 1}, got.TotalRankings); diff != "" {
		t.Fatalf("TotalRankings mismatch (-want +got):\n%s", diff)
	}
	if got.GameDetails[0].HighestScore != 10 || got.GameDetails[0].LowestScore != 1 {
		t.Fatalf("extremes must only use slot 0: %+v", got.GameDetails[0])
	}
}

func TestPersonalMostPlayedFirstSeenWinsTies(t *testing.T) {
	records := []domain.ScoreRecord{
		sheet("r1", "Alpha", named("me"), []int{1}),
		sheet("r2", "Beta", named("me"), []int{1}),
		sheet("r3", "Beta", named("me"), []int{1}),
		sheet("r4", "Alpha", named("me"), []int{1}),
	}

	got, err := Personal(records)
	if err != nil {
		t.Fatalf("Personal: %v", err)
	}
	if got.MostPlayedGame != "Alpha" {
		t.Fatalf("expected Alpha, got %q", got.MostPlayedGame)
	}
	if len(got.GameDetails) != 2 || got.GameDetails[0].GameTitle != "Alpha" || got.GameDetails[1].GameTitle != "Beta" {
		t.Fatalf("unexpected game order: %+v", got.GameDetails)
	}
}

func TestPersonalNoRecords(t *testing.T) {
	got, err := Personal(nil)
	if err != nil {
		t.Fatalf("Personal: %v", err)
	}
	want := domain.PersonalStats{
		MostPlayedGame: domain.NoGameTitle,
		GameDetails:    []domain.GameDetail{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Personal mismatch (-want +got):\n%s", diff)
	}
}

func TestPersonalSinglePlayerIsFirst(t *testing.T) {
	got, err := Personal([]domain.ScoreRecord{sheet("r1", "Solo", named("me"), []int{7})})
	if err != nil {
		t.Fatalf("Personal: %v", err)
	}
	if got.TotalRankings.First != 1 {
		t.Fatalf("expected a first place, got %+v", got.TotalRankings)
	}
}

func TestPersonalMalformedRecord(t *testing.T) {
	bad := sheet("r1", "Catan", named("me", "bob"), []int{1, 2})
	bad.Scores = [][]int{{1}}

	_, err := Personal([]domain.ScoreRecord{bad})
	if !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
	if errors.Is(err, domain.ErrValidation) {
		t.Fatalf("stored record failures must not surface as validation errors")
	}
}

func TestPersonalIsIdempotent(t *testing.T) {
	records := []domain.ScoreRecord{
		sheet("r1", "Catan", named("me", "bob"), []int{5, 1}),
		sheet("r2", "Azul", named("me", "bob"), []int{2, 9}),
	}
	first, err := Personal(records)
	if err != nil {
		t.Fatalf("Personal: %v", err)
	}
	second, err := Personal(records)
	if err != nil {
		t.Fatalf("Personal: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated run differs (-first +second):\n%s", diff)
	}
}
