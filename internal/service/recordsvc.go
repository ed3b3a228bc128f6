package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Wakana-github/score-sheet-sub000/internal/domain"
)

const (
	maxGameTitleLen = 100
	maxNameLen      = 50
	maxPlayers      = 20
	maxScoreItems   = 50
)

type RecordsStore interface {
	RecordsReader
	CountRecordsForUser(ctx context.Context, userID string) (int, error)
	CreateRecord(ctx context.Context, rec domain.ScoreRecord) (domain.ScoreRecord, error)
	GetRecordForUser(ctx context.Context, userID, recordID string) (domain.ScoreRecord, error)
	ReplaceRecord(ctx context.Context, rec domain.ScoreRecord) (domain.ScoreRecord, error)
	DeleteRecord(ctx context.Context, userID, recordID string) error
}

type RecordService struct {
	Records RecordsStore
	Groups  OwnedGroupGetter
	// MaxRecords caps how many sheets one user may keep. Zero disables the cap.
	MaxRecords int
	Now        func() time.Time
}

func (s *RecordService) CreateRecord(ctx context.Context, userID string, in domain.RecordInput) (domain.ScoreRecord, error) {
	if s.Now == nil {
		s.Now = time.Now
	}

	rec, err := s.buildRecord(ctx, userID, in)
	if err != nil {
		return domain.ScoreRecord{}, err
	}

	if s.MaxRecords > 0 {
		n, err := s.Records.CountRecordsForUser(ctx, userID)
		if err != nil {
			return domain.ScoreRecord{}, err
		}
		if n >= s.MaxRecords {
			return domain.ScoreRecord{}, domain.ErrRecordLimit
		}
	}

	now := s.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return s.Records.CreateRecord(ctx, rec)
}

func (s *RecordService) ListRecords(ctx context.Context, userID string) ([]domain.ScoreRecord, error) {
	return s.Records.ListRecordsForUser(ctx, userID)
}

func (s *RecordService) GetRecord(ctx context.Context, userID, recordID string) (domain.ScoreRecord, error) {
	if _, err := uuid.Parse(recordID); err != nil {
		return domain.ScoreRecord{}, domain.ErrNotFound
	}
	return s.Records.GetRecordForUser(ctx, userID, recordID)
}

// ReplaceRecord overwrites names and grid of a record the user owns.
func (s *RecordService) ReplaceRecord(ctx context.Context, userID, recordID string, in domain.RecordInput) (domain.ScoreRecord, error) {
	if s.Now == nil {
		s.Now = time.Now
	}

	existing, err := s.GetRecord(ctx, userID, recordID)
	if err != nil {
		return domain.ScoreRecord{}, err
	}

	rec, err := s.buildRecord(ctx, userID, in)
	if err != nil {
		return domain.ScoreRecord{}, err
	}
	rec.ID = existing.ID
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = s.Now().UTC()
	return s.Records.ReplaceRecord(ctx, rec)
}

func (s *RecordService) DeleteRecord(ctx context.Context, userID, recordID string) error {
	if _, err := uuid.Parse(recordID); err != nil {
		return domain.ErrNotFound
	}
	return s.Records.DeleteRecord(ctx, userID, recordID)
}

func (s *RecordService) buildRecord(ctx context.Context, userID string, in domain.RecordInput) (domain.ScoreRecord, error) {
	rec := domain.ScoreRecord{
		UserID:         userID,
		GroupID:        strings.TrimSpace(in.GroupID),
		GameTitle:      strings.TrimSpace(in.GameTitle),
		Players:        make([]domain.Player, len(in.Players)),
		ScoreItemNames: make([]string, len(in.ScoreItemNames)),
		Scores:         in.Scores,
		NumPlayers:     in.NumPlayers,
		NumScoreItems:  in.NumScoreItems,
	}
	for i, p := range in.Players {
		rec.Players[i] = domain.Player{MemberID: strings.TrimSpace(p.MemberID), Name: strings.TrimSpace(p.Name)}
	}
	for i, n := range in.ScoreItemNames {
		rec.ScoreItemNames[i] = strings.TrimSpace(n)
	}

	if err := rec.Validate(); err != nil {
		return domain.ScoreRecord{}, err
	}

	fields := map[string]string{}
	if len(rec.GameTitle) > maxGameTitleLen {
		fields["gameTitle"] = "too long"
	}
	if rec.NumPlayers > maxPlayers {
		fields["numPlayers"] = "too many players"
	}
	if rec.NumScoreItems > maxScoreItems {
		fields["numScoreItems"] = "too many score items"
	}
	for _, p := range rec.Players {
		if p.Name == "" || len(p.Name) > maxNameLen {
			fields["playerNames"] = "names must be 1-50 characters"
			break
		}
	}
	for _, n := range rec.ScoreItemNames {
		if len(n) > maxNameLen {
			fields["scoreItemNames"] = "names must be at most 50 characters"
			break
		}
	}
	if len(fields) > 0 {
		return domain.ScoreRecord{}, domain.NewValidationError(fields)
	}

	if err := s.checkMembers(ctx, userID, rec); err != nil {
		return domain.ScoreRecord{}, err
	}
	return rec, nil
}

// checkMembers ensures member ids on a group record belong to that group and
// appear at most once. Records outside a group may not carry member ids.
func (s *RecordService) checkMembers(ctx context.Context, userID string, rec domain.ScoreRecord) error {
	hasMemberIDs := false
	for _, p := range rec.Players {
		if p.MemberID != "" {
			hasMemberIDs = true
			break
		}
	}

	if rec.GroupID == "" {
		if hasMemberIDs {
			return domain.NewValidationError(map[string]string{"playerNames": "member ids require a group"})
		}
		return nil
	}
	if _, err := uuid.Parse(rec.GroupID); err != nil {
		return domain.NewValidationError(map[string]string{"groupId": "must be a valid id"})
	}

	group, err := s.Groups.GetOwnedGroup(ctx, rec.GroupID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewValidationError(map[string]string{"groupId": "unknown group"})
		}
		return err
	}

	names := group.MemberNames()
	seen := make(map[string]bool, len(rec.Players))
	for _, p := range rec.Players {
		if p.MemberID == "" {
			continue
		}
		if _, ok := names[p.MemberID]; !ok {
			return domain.NewValidationError(map[string]string{"playerNames": "unknown member " + p.MemberID})
		}
		if seen[p.MemberID] {
			return domain.NewValidationError(map[string]string{"playerNames": "member listed twice"})
		}
		seen[p.MemberID] = true
	}
	return nil
}
