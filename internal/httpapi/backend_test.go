package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Wakana-github/score-sheet-sub000/internal/auth"
	"github.com/Wakana-github/score-sheet-sub000/internal/domain"
	"github.com/Wakana-github/score-sheet-sub000/internal/metrics"
	"github.com/Wakana-github/score-sheet-sub000/internal/service"
)

// memBackend is one in-memory store behind every service the router uses.
type memBackend struct {
	mu       sync.Mutex
	seq      int
	users    map[string]domain.UserWithPassword
	sessions map[string]string
	records  []domain.ScoreRecord
	groups   map[string]domain.Group
	status   map[string]domain.SubscriptionStatus
}

func newMemBackend() *memBackend {
	return &memBackend{
		users:    map[string]domain.UserWithPassword{},
		sessions: map[string]string{},
		groups:   map[string]domain.Group{},
		status:   map[string]domain.SubscriptionStatus{},
	}
}

func (b *memBackend) next(prefix string) string {
	b.seq++
	return fmt.Sprintf("%s-%d", prefix, b.seq)
}

func (b *memBackend) CreateUser(_ context.Context, email, username, passwordHash string) (domain.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.Username == username {
			return domain.User{}, domain.ErrUsernameTaken
		}
	}
	u := domain.User{ID: b.next("user"), Email: email, Username: username, Status: domain.UserStatusActive}
	b.users[u.ID] = domain.UserWithPassword{User: u, PasswordHash: passwordHash}
	return u, nil
}

func (b *memBackend) GetUserByID(_ context.Context, id string) (domain.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u.User, nil
}

func (b *memBackend) GetUserByLogin(_ context.Context, login string) (domain.UserWithPassword, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.Username == login || (u.Email != "" && u.Email == strings.ToLower(login)) {
			return u, nil
		}
	}
	return domain.UserWithPassword{}, domain.ErrNotFound
}

func (b *memBackend) GetUserByEmail(_ context.Context, email string) (domain.UserWithPassword, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.Email != "" && u.Email == email {
			return u, nil
		}
	}
	return domain.UserWithPassword{}, domain.ErrNotFound
}

func (b *memBackend) GetUserByExternalAccount(context.Context, string, string) (domain.User, domain.ExternalAccount, error) {
	return domain.User{}, domain.ExternalAccount{}, domain.ErrNotFound
}

func (b *memBackend) CreateUserWithExternalAccount(ctx context.Context, provider, providerID, email, username, passwordHash string) (domain.User, domain.ExternalAccount, error) {
	u, err := b.CreateUser(ctx, email, username, passwordHash)
	return u, domain.ExternalAccount{UserID: u.ID, Provider: provider, ProviderID: providerID}, err
}

func (b *memBackend) LinkExternalAccount(_ context.Context, userID, provider, providerID, email string) (domain.ExternalAccount, error) {
	return domain.ExternalAccount{UserID: userID, Provider: provider, ProviderID: providerID, Email: email}, nil
}

func (b *memBackend) SetLastLogin(context.Context, string, time.Time) error { return nil }

func (b *memBackend) CreateSession(_ context.Context, userID string, _ time.Time, _, _ string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next("sess")
	b.sessions[id] = userID
	return id, nil
}

func (b *memBackend) GetSession(_ context.Context, sessionID string) (domain.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	userID, ok := b.sessions[sessionID]
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	return domain.Session{ID: sessionID, UserID: userID}, nil
}

func (b *memBackend) RevokeSession(_ context.Context, sessionID string, _ time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, sessionID)
	return nil
}

func (b *memBackend) ListRecordsForUser(_ context.Context, userID string) ([]domain.ScoreRecord, error) {
	return b.filterRecords(func(r domain.ScoreRecord) bool { return r.UserID == userID }), nil
}

func (b *memBackend) ListRecordsForGroup(_ context.Context, groupID string) ([]domain.ScoreRecord, error) {
	return b.filterRecords(func(r domain.ScoreRecord) bool { return r.GroupID == groupID }), nil
}

func (b *memBackend) filterRecords(keep func(domain.ScoreRecord) bool) []domain.ScoreRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []domain.ScoreRecord
	for _, r := range b.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (b *memBackend) CountRecordsForUser(ctx context.Context, userID string) (int, error) {
	recs, _ := b.ListRecordsForUser(ctx, userID)
	return len(recs), nil
}

func (b *memBackend) CreateRecord(_ context.Context, rec domain.ScoreRecord) (domain.ScoreRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec.ID = uuid.NewString()
	b.records = append(b.records, rec)
	return rec, nil
}

func (b *memBackend) GetRecordForUser(_ context.Context, userID, recordID string) (domain.ScoreRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.records {
		if r.ID == recordID && r.UserID == userID {
			return r, nil
		}
	}
	return domain.ScoreRecord{}, domain.ErrNotFound
}

func (b *memBackend) ReplaceRecord(_ context.Context, rec domain.ScoreRecord) (domain.ScoreRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, r := range b.records {
		if r.ID == rec.ID {
			b.records[i] = rec
			return rec, nil
		}
	}
	return domain.ScoreRecord{}, domain.ErrNotFound
}

func (b *memBackend) DeleteRecord(_ context.Context, userID, recordID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, r := range b.records {
		if r.ID == recordID && r.UserID == userID {
			b.records = append(b.records[:i], b.records[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (b *memBackend) GetOwnedGroup(_ context.Context, groupID, userID string) (domain.Group, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	g, ok := b.groups[groupID]
	if !ok || g.UserID != userID {
		return domain.Group{}, domain.ErrNotFound
	}
	return g, nil
}

func (b *memBackend) CreateGroup(_ context.Context, g domain.Group) (domain.Group, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.groups[g.ID] = g
	return g, nil
}

func (b *memBackend) ListGroupsForUser(_ context.Context, userID string) ([]domain.Group, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []domain.Group
	for _, g := range b.groups {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (b *memBackend) ReplaceGroup(_ context.Context, g domain.Group) (domain.Group, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.groups[g.ID] = g
	return g, nil
}

func (b *memBackend) DeleteGroup(_ context.Context, groupID, userID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	g, ok := b.groups[groupID]
	if !ok || g.UserID != userID {
		return domain.ErrNotFound
	}
	delete(b.groups, groupID)
	return nil
}

func (b *memBackend) Entitlement(_ context.Context, userID string) (domain.Entitlement, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.status[userID]
	if !ok {
		return domain.Entitlement{}, domain.ErrNotFound
	}
	return domain.Entitlement{UserID: userID, Status: s}, nil
}

var testCodec = auth.NewCookieCodec([]byte("test-secret-test-secret-test-secret"))

type testServer struct {
	t       *testing.T
	backend *memBackend
	metrics *metrics.Metrics
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	b := newMemBackend()
	m := metrics.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := NewRouter(RouterOpts{
		Logger:  logger,
		Auth:    &service.AuthService{Users: b, Sessions: b, SessionTTL: time.Hour},
		Records: &service.RecordService{Records: b, Groups: b, MaxRecords: 3},
		Groups:  &service.GroupService{Groups: b},
		Stats: &service.StatsService{
			Records: b,
			Groups:  b,
			Access:  b,
			Metrics: m,
			Logger:  logger,
		},
		Metrics:     m,
		CookieCodec: testCodec,
		SessionTTL:  time.Hour,
	})
	return &testServer{t: t, backend: b, metrics: m, handler: h}
}

// signIn creates a user with a live session and returns its bearer token.
func (s *testServer) signIn(username string, status domain.SubscriptionStatus) (string, string) {
	s.t.Helper()
	u, err := s.backend.CreateUser(context.Background(), "", username, "unused")
	if err != nil {
		s.t.Fatalf("CreateUser: %v", err)
	}
	if status != "" {
		s.backend.status[u.ID] = status
	}
	sessID, _ := s.backend.CreateSession(context.Background(), u.ID, time.Time{}, "", "")
	return u.ID, testCodec.EncodeSessionID(sessID)
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var rdr io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(v)
	default:
		buf, err := json.Marshal(v)
		if err != nil {
			s.t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, rdr)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status = %d, want %d; body=%s", rr.Code, want, rr.Body.String())
	}
}
