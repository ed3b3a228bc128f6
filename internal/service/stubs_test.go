package service

import (
	"context"
	"testing"
	"time"

	"github.com/Wakana-github/score-sheet-sub000/internal/domain"
)

// memRecords is an in-memory RecordsStore. With t set, the list methods fail
// the test when they are reached.
type memRecords struct {
	t        *testing.T
	noFetch  bool
	records  []domain.ScoreRecord
	listErr  error
	listed   int
	replaced domain.ScoreRecord
}

func (m *memRecords) ListRecordsForUser(_ context.Context, userID string) ([]domain.ScoreRecord, error) {
	m.fetched()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.ScoreRecord
	for _, r := range m.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRecords) ListRecordsForGroup(_ context.Context, groupID string) ([]domain.ScoreRecord, error) {
	m.fetched()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.ScoreRecord
	for _, r := range m.records {
		if r.GroupID == groupID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRecords) fetched() {
	m.listed++
	if m.noFetch {
		m.t.Fatalf("records fetched for a restricted caller")
	}
}

func (m *memRecords) CountRecordsForUser(_ context.Context, userID string) (int, error) {
	n := 0
	for _, r := range m.records {
		if r.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memRecords) CreateRecord(_ context.Context, rec domain.ScoreRecord) (domain.ScoreRecord, error) {
	rec.ID = "00000000-0000-0000-0000-0000000000aa"
	m.records = append(m.records, rec)
	return rec, nil
}

func (m *memRecords) GetRecordForUser(_ context.Context, userID, recordID string) (domain.ScoreRecord, error) {
	for _, r := range m.records {
		if r.ID == recordID && r.UserID == userID {
			return r, nil
		}
	}
	return domain.ScoreRecord{}, domain.ErrNotFound
}

func (m *memRecords) ReplaceRecord(_ context.Context, rec domain.ScoreRecord) (domain.ScoreRecord, error) {
	m.replaced = rec
	return rec, nil
}

func (m *memRecords) DeleteRecord(_ context.Context, userID, recordID string) error {
	for i, r := range m.records {
		if r.ID == recordID && r.UserID == userID {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type memGroups struct {
	groups   []domain.Group
	getErr   error
	replaced domain.Group
}

func (m *memGroups) GetOwnedGroup(_ context.Context, groupID, userID string) (domain.Group, error) {
	if m.getErr != nil {
		return domain.Group{}, m.getErr
	}
	for _, g := range m.groups {
		if g.ID == groupID && g.UserID == userID {
			return g, nil
		}
	}
	return domain.Group{}, domain.ErrNotFound
}

func (m *memGroups) CreateGroup(_ context.Context, g domain.Group) (domain.Group, error) {
	m.groups = append(m.groups, g)
	return g, nil
}

func (m *memGroups) ListGroupsForUser(_ context.Context, userID string) ([]domain.Group, error) {
	var out []domain.Group
	for _, g := range m.groups {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memGroups) ReplaceGroup(_ context.Context, g domain.Group) (domain.Group, error) {
	m.replaced = g
	return g, nil
}

func (m *memGroups) DeleteGroup(context.Context, string, string) error { return nil }

type staticAccess struct {
	status domain.SubscriptionStatus
	err    error
}

func (a staticAccess) Entitlement(_ context.Context, userID string) (domain.Entitlement, error) {
	if a.err != nil {
		return domain.Entitlement{}, a.err
	}
	return domain.Entitlement{UserID: userID, Status: a.status}, nil
}

type recordedStat struct {
	kind, outcome string
	records       int
}

type fakeRecorder struct {
	seen []recordedStat
}

func (f *fakeRecorder) ObserveStats(kind, outcome string, records int, _ time.Duration) {
	f.seen = append(f.seen, recordedStat{kind: kind, outcome: outcome, records: records})
}

const (
	testGroupID  = "7b0e3f0c-1c5f-4d61-9a57-2f3b8f0f9d10"
	testMemberA  = "0a4f6d8e-5a0f-4e1b-8c86-21d2b9b4f001"
	testMemberB  = "0a4f6d8e-5a0f-4e1b-8c86-21d2b9b4f002"
	testRecordID = "3d1f2b5a-6c7e-4f80-9a1b-2c3d4e5f6a70"
)

func sampleGroup() domain.Group {
	return domain.Group{
		ID:        testGroupID,
		UserID:    "user-1",
		GroupName: "Lunch",
		Members: []domain.Member{
			{MemberID: testMemberA, Name: "Ana"},
			{MemberID: testMemberB, Name: "Ben"},
		},
	}
}

func scoreRecord(id, groupID, title string, at time.Time, players []domain.Player, totals ...int) domain.ScoreRecord {
	return domain.ScoreRecord{
		ID:             id,
		UserID:         "user-1",
		GroupID:        groupID,
		GameTitle:      title,
		Players:        players,
		ScoreItemNames: []string{"total"},
		Scores:         [][]int{totals},
		NumPlayers:     len(players),
		NumScoreItems:  1,
		CreatedAt:      at,
	}
}
