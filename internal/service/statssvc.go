package service

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Wakana-github/score-sheet-sub000/internal/domain"
	"github.com/Wakana-github/score-sheet-sub000/internal/stats"
)

type RecordsReader interface {
	ListRecordsForUser(ctx context.Context, userID string) ([]domain.ScoreRecord, error)
	ListRecordsForGroup(ctx context.Context, groupID string) ([]domain.ScoreRecord, error)
}

type OwnedGroupGetter interface {
	GetOwnedGroup(ctx context.Context, groupID, userID string) (domain.Group, error)
}

type AccessPolicy interface {
	Entitlement(ctx context.Context, userID string) (domain.Entitlement, error)
}

type StatsRecorder interface {
	ObserveStats(kind, outcome string, records int, elapsed time.Duration)
}

type StatsService struct {
	Records RecordsReader
	Groups  OwnedGroupGetter
	Access  AccessPolicy
	Metrics StatsRecorder
	Logger  *slog.Logger
	Now     func() time.Time
}

func (s *StatsService) PersonalStats(ctx context.Context, userID string) (domain.PersonalStats, error) {
	start := s.now()

	entitled, err := s.entitled(ctx, userID)
	if err != nil {
		return domain.PersonalStats{}, s.fail("personal", start, err, "user_id", userID)
	}
	if !entitled {
		s.observe("personal", "restricted", 0, start)
		return domain.RestrictedPersonalStats(), nil
	}

	records, err := s.Records.ListRecordsForUser(ctx, userID)
	if err != nil {
		return domain.PersonalStats{}, s.fail("personal", start, err, "user_id", userID)
	}
	sortRecords(records)

	out, err := stats.Personal(records)
	if err != nil {
		return domain.PersonalStats{}, s.fail("personal", start, err, "user_id", userID)
	}
	s.observe("personal", "ok", len(records), start)
	return out, nil
}

// GroupStats aggregates every record of a group owned by userID. selectedGame
// is optional and adds a single-title breakdown.
func (s *StatsService) GroupStats(ctx context.Context, userID, groupID, selectedGame string) (domain.GroupStats, error) {
	start := s.now()

	entitled, err := s.entitled(ctx, userID)
	if err != nil {
		return domain.GroupStats{}, s.fail("group", start, err, "user_id", userID, "group_id", groupID)
	}
	if !entitled {
		s.observe("group", "restricted", 0, start)
		return domain.RestrictedGroupStats(), nil
	}

	groupID = strings.TrimSpace(groupID)
	if _, err := uuid.Parse(groupID); err != nil {
		s.observe("group", "invalid", 0, start)
		return domain.GroupStats{}, domain.NewValidationError(map[string]string{"groupId": "must be a valid id"})
	}

	group, err := s.Groups.GetOwnedGroup(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.observe("group", "not_found", 0, start)
			return domain.GroupStats{}, domain.ErrNotFound
		}
		return domain.GroupStats{}, s.fail("group", start, err, "user_id", userID, "group_id", groupID)
	}

	records, err := s.Records.ListRecordsForGroup(ctx, group.ID)
	if err != nil {
		return domain.GroupStats{}, s.fail("group", start, err, "user_id", userID, "group_id", groupID)
	}
	sortRecords(records)

	out, err := stats.Group(group, records, strings.TrimSpace(selectedGame))
	if err != nil {
		return domain.GroupStats{}, s.fail("group", start, err, "user_id", userID, "group_id", groupID)
	}
	s.observe("group", "ok", len(records), start)
	return out, nil
}

func (s *StatsService) entitled(ctx context.Context, userID string) (bool, error) {
	ent, err := s.Access.Entitlement(ctx, userID)
	if err != nil {
		// No billing row yet means the user never subscribed.
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return ent.Entitled(), nil
}

// fail logs the cause once and hands the caller a generic error.
func (s *StatsService) fail(kind string, start time.Time, err error, attrs ...any) error {
	s.observe(kind, "error", 0, start)
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error(kind+" stats failed", append(attrs, "err", err)...)
	return domain.ErrInternal
}

func (s *StatsService) observe(kind, outcome string, records int, start time.Time) {
	if s.Metrics == nil {
		return
	}
	s.Metrics.ObserveStats(kind, outcome, records, s.now().Sub(start))
}

func (s *StatsService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// sortRecords fixes the iteration order so most-played ties break by the
// earliest saved record, independent of store order.
func sortRecords(records []domain.ScoreRecord) {
	slices.SortStableFunc(records, func(a, b domain.ScoreRecord) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
