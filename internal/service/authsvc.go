package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/Wakana-github/score-sheet-sub000/internal/auth"
	"github.com/Wakana-github/score-sheet-sub000/internal/domain"
)

const (
	ProviderGoogle = "google"
	ProviderApple  = "apple"

	maxUsernameLen = 24
)

type UsersStore interface {
	CreateUser(ctx context.Context, email, username, passwordHash string) (domain.User, error)
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByLogin(ctx context.Context, login string) (domain.UserWithPassword, error)
	GetUserByEmail(ctx context.Context, email string) (domain.UserWithPassword, error)
	GetUserByExternalAccount(ctx context.Context, provider, providerID string) (domain.User, domain.ExternalAccount, error)
	CreateUserWithExternalAccount(ctx context.Context, provider, providerID, email, username, passwordHash string) (domain.User, domain.ExternalAccount, error)
	LinkExternalAccount(ctx context.Context, userID, provider, providerID, email string) (domain.ExternalAccount, error)
	SetLastLogin(ctx context.Context, userID string, when time.Time) error
}

type SessionsStore interface {
	CreateSession(ctx context.Context, userID string, expiresAt time.Time, ip, userAgent string) (string, error)
	GetSession(ctx context.Context, sessionID string) (domain.Session, error)
	RevokeSession(ctx context.Context, sessionID string, when time.Time) error
}

type TokenVerifier func(ctx context.Context, token, audience string) (*auth.ExternalTokenClaims, error)

type AuthService struct {
	Users      UsersStore
	Sessions   SessionsStore
	SessionTTL time.Duration
	Now        func() time.Time

	GoogleClientID string
	AppleServiceID string
	// Overridable in tests; nil means the real verifiers in package auth.
	VerifyGoogle TokenVerifier
	VerifyApple  TokenVerifier
}

func (s *AuthService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *AuthService) Register(ctx context.Context, email, username, password, ip, userAgent string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)

	fields := map[string]string{}
	if username == "" || len(username) > maxUsernameLen {
		fields["username"] = "must be 1-24 characters"
	}
	if email != "" && !strings.Contains(email, "@") {
		fields["email"] = "invalid"
	}
	if len(password) < 8 {
		fields["password"] = "must be at least 8 characters"
	}
	if len(fields) > 0 {
		return domain.User{}, "", domain.NewValidationError(fields)
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, "", err
	}

	u, err := s.Users.CreateUser(ctx, email, username, passwordHash)
	if err != nil {
		return domain.User{}, "", err
	}

	sessID, err := s.startSession(ctx, u.ID, ip, userAgent)
	if err != nil {
		return domain.User{}, "", err
	}
	return u, sessID, nil
}

func (s *AuthService) Login(ctx context.Context, login, password, ip, userAgent string) (domain.User, string, error) {
	u, err := s.Users.GetUserByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, "", domain.ErrInvalidCredentials
		}
		return domain.User{}, "", err
	}
	if u.Status == domain.UserStatusDisabled {
		return domain.User{}, "", domain.ErrUserDisabled
	}

	ok, err := auth.VerifyPassword(u.PasswordHash, password)
	if err != nil {
		return domain.User{}, "", err
	}
	if !ok {
		return domain.User{}, "", domain.ErrInvalidCredentials
	}

	sessID, err := s.startSession(ctx, u.ID, ip, userAgent)
	if err != nil {
		return domain.User{}, "", err
	}
	return u.User, sessID, nil
}

func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken, ip, userAgent string) (domain.User, string, error) {
	verify := s.VerifyGoogle
	if verify == nil {
		verify = auth.VerifyGoogleIDToken
	}
	return s.loginExternal(ctx, ProviderGoogle, verify, idToken, s.GoogleClientID, ip, userAgent)
}

func (s *AuthService) LoginWithApple(ctx context.Context, idToken, ip, userAgent string) (domain.User, string, error) {
	verify := s.VerifyApple
	if verify == nil {
		verify = auth.VerifyAppleIDToken
	}
	return s.loginExternal(ctx, ProviderApple, verify, idToken, s.AppleServiceID, ip, userAgent)
}

// loginExternal resolves a verified provider identity to a local user. Lookup
// order is linked account, then an existing user with the same email, then a
// freshly created user.
func (s *AuthService) loginExternal(ctx context.Context, provider string, verify TokenVerifier, idToken, audience, ip, userAgent string) (domain.User, string, error) {
	claims, err := verify(ctx, idToken, audience)
	if err != nil || claims == nil || claims.Subject == "" {
		return domain.User{}, "", domain.ErrInvalidCredentials
	}
	email := strings.TrimSpace(strings.ToLower(claims.Email))

	u, _, err := s.Users.GetUserByExternalAccount(ctx, provider, claims.Subject)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		u, err = s.linkOrCreate(ctx, provider, claims.Subject, email)
		if err != nil {
			return domain.User{}, "", err
		}
	default:
		return domain.User{}, "", err
	}
	if u.Status == domain.UserStatusDisabled {
		return domain.User{}, "", domain.ErrUserDisabled
	}

	sessID, err := s.startSession(ctx, u.ID, ip, userAgent)
	if err != nil {
		return domain.User{}, "", err
	}
	return u, sessID, nil
}

func (s *AuthService) linkOrCreate(ctx context.Context, provider, subject, email string) (domain.User, error) {
	if email != "" {
		existing, err := s.Users.GetUserByEmail(ctx, email)
		switch {
		case err == nil:
			if _, err := s.Users.LinkExternalAccount(ctx, existing.ID, provider, subject, email); err != nil {
				return domain.User{}, err
			}
			return existing.User, nil
		case !errors.Is(err, domain.ErrNotFound):
			return domain.User{}, err
		}
	}

	// External users never log in with a password; store an unguessable one.
	passwordHash, err := auth.HashPassword(uuid.NewString())
	if err != nil {
		return domain.User{}, err
	}
	u, _, err := s.Users.CreateUserWithExternalAccount(ctx, provider, subject, email, usernameFromEmail(email), passwordHash)
	return u, err
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.Sessions.RevokeSession(ctx, sessionID, s.now())
}

func (s *AuthService) GetUserForSession(ctx context.Context, sessionID string) (domain.User, error) {
	sess, err := s.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrUnauthorized
		}
		return domain.User{}, err
	}

	u, err := s.Users.GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrUnauthorized
		}
		return domain.User{}, err
	}
	if u.Status == domain.UserStatusDisabled {
		return domain.User{}, domain.ErrForbidden
	}
	return u, nil
}

func (s *AuthService) startSession(ctx context.Context, userID, ip, userAgent string) (string, error) {
	now := s.now()
	sessID, err := s.Sessions.CreateSession(ctx, userID, now.Add(s.SessionTTL), ip, userAgent)
	if err != nil {
		return "", err
	}
	_ = s.Users.SetLastLogin(ctx, userID, now)
	return sessID, nil
}

// usernameFromEmail builds "<local part>-<suffix>" from an email, keeping
// letters and digits only.
func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	var b strings.Builder
	for _, r := range local {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	base := b.String()
	if base == "" {
		base = "player"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	if len(base) > maxUsernameLen-len(suffix)-1 {
		base = base[:maxUsernameLen-len(suffix)-1]
	}
	return base + "-" + suffix
}
