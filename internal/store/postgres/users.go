package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Wakana-github/score-sheet-sub000/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersStore struct {
	pool *pgxpool.Pool
}

func NewUsersStore(pool *pgxpool.Pool) *UsersStore {
	return &UsersStore{pool: pool}
}

const userColumns = `id, email, username, status, created_at, updated_at, last_login_at`

func (s *UsersStore) CreateUser(ctx context.Context, email, username, passwordHash string) (domain.User, error) {
	q := `
		INSERT INTO users (email, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	u, err := scanUser(s.pool.QueryRow(ctx, q, nullIfEmpty(email), username, passwordHash))
	if err != nil {
		return domain.User{}, mapUserWriteError(err)
	}
	return u, nil
}

func (s *UsersStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// GetUserByLogin matches a username or an email, preferring the username.
func (s *UsersStore) GetUserByLogin(ctx context.Context, login string) (domain.UserWithPassword, error) {
	q := `
		SELECT ` + userColumns + `, password_hash
		FROM users
		WHERE username = $1 OR (email IS NOT NULL AND email = $1)
		ORDER BY (username = $1) DESC
		LIMIT 1
	`
	return s.getWithPassword(ctx, "get user by login", q, login)
}

func (s *UsersStore) GetUserByEmail(ctx context.Context, email string) (domain.UserWithPassword, error) {
	q := `SELECT ` + userColumns + `, password_hash FROM users WHERE email = $1 LIMIT 1`
	return s.getWithPassword(ctx, "get user by email", q, email)
}

func (s *UsersStore) GetUserByExternalAccount(ctx context.Context, provider, providerID string) (domain.User, domain.ExternalAccount, error) {
	const q = `
		SELECT u.id, u.email, u.username, u.status, u.created_at, u.updated_at, u.last_login_at,
			e.id, e.email, e.created_at
		FROM external_accounts e
		JOIN users u ON u.id = e.user_id
		WHERE e.provider = $1 AND e.provider_id = $2
	`

	var (
		u         domain.User
		uID       pgtype.UUID
		uEmail    pgtype.Text
		lastLogin pgtype.Timestamptz
		acct      domain.ExternalAccount
		acctID    pgtype.UUID
		acctEmail pgtype.Text
	)
	err := s.pool.QueryRow(ctx, q, provider, providerID).Scan(
		&uID, &uEmail, &u.Username, &u.Status, &u.CreatedAt, &u.UpdatedAt, &lastLogin,
		&acctID, &acctEmail, &acct.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ExternalAccount{}, domain.ErrNotFound
		}
		return domain.User{}, domain.ExternalAccount{}, fmt.Errorf("get user by external account: %w", err)
	}

	u.ID = uuidOrEmpty(uID)
	u.Email = textOrEmpty(uEmail)
	u.LastLoginAt = timestamptzPtr(lastLogin)
	acct.ID = uuidOrEmpty(acctID)
	acct.UserID = u.ID
	acct.Provider = provider
	acct.ProviderID = providerID
	acct.Email = textOrEmpty(acctEmail)
	return u, acct, nil
}

func (s *UsersStore) CreateUserWithExternalAccount(ctx context.Context, provider, providerID, email, username, passwordHash string) (domain.User, domain.ExternalAccount, error) {
	var (
		u    domain.User
		acct domain.ExternalAccount
	)
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		q := `
			INSERT INTO users (email, username, password_hash)
			VALUES ($1, $2, $3)
			RETURNING ` + userColumns
		var err error
		if u, err = scanUser(tx.QueryRow(ctx, q, nullIfEmpty(email), username, passwordHash)); err != nil {
			return mapUserWriteError(err)
		}
		acct, err = insertExternalAccount(ctx, tx, u.ID, provider, providerID, email)
		return err
	})
	if err != nil {
		return domain.User{}, domain.ExternalAccount{}, err
	}
	return u, acct, nil
}

func (s *UsersStore) LinkExternalAccount(ctx context.Context, userID, provider, providerID, email string) (domain.ExternalAccount, error) {
	return insertExternalAccount(ctx, s.pool, userID, provider, providerID, email)
}

func (s *UsersStore) SetLastLogin(ctx context.Context, userID string, when time.Time) error {
	const q = `UPDATE users SET last_login_at = $2, updated_at = now() WHERE id = $1`
	if _, err := s.pool.Exec(ctx, q, userID, when); err != nil {
		return fmt.Errorf("set last login: %w", err)
	}
	return nil
}

func (s *UsersStore) getWithPassword(ctx context.Context, op, q, arg string) (domain.UserWithPassword, error) {
	var (
		u         domain.UserWithPassword
		idUUID    pgtype.UUID
		emailText pgtype.Text
		lastLogin pgtype.Timestamptz
	)
	err := s.pool.QueryRow(ctx, q, arg).Scan(
		&idUUID, &emailText, &u.Username, &u.Status, &u.CreatedAt, &u.UpdatedAt, &lastLogin,
		&u.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserWithPassword{}, domain.ErrNotFound
		}
		return domain.UserWithPassword{}, fmt.Errorf("%s: %w", op, err)
	}
	u.ID = uuidOrEmpty(idUUID)
	u.Email = textOrEmpty(emailText)
	u.LastLoginAt = timestamptzPtr(lastLogin)
	return u, nil
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertExternalAccount(ctx context.Context, db queryRower, userID, provider, providerID, email string) (domain.ExternalAccount, error) {
	const q = `
		INSERT INTO external_accounts (user_id, provider, provider_id, email)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	acct := domain.ExternalAccount{UserID: userID, Provider: provider, ProviderID: providerID, Email: email}
	var idUUID pgtype.UUID
	if err := db.QueryRow(ctx, q, userID, provider, providerID, nullIfEmpty(email)).Scan(&idUUID, &acct.CreatedAt); err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23505" {
			return domain.ExternalAccount{}, domain.ErrExternalAccountExists
		}
		return domain.ExternalAccount{}, fmt.Errorf("link external account: %w", err)
	}
	acct.ID = uuidOrEmpty(idUUID)
	return acct, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		u         domain.User
		idUUID    pgtype.UUID
		emailText pgtype.Text
		lastLogin pgtype.Timestamptz
	)
	if err := row.Scan(&idUUID, &emailText, &u.Username, &u.Status, &u.CreatedAt, &u.UpdatedAt, &lastLogin); err != nil {
		return domain.User{}, err
	}
	u.ID = uuidOrEmpty(idUUID)
	u.Email = textOrEmpty(emailText)
	u.LastLoginAt = timestamptzPtr(lastLogin)
	return u, nil
}

func mapUserWriteError(err error) error {
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && pgerr.Code == "23505" {
		switch pgerr.ConstraintName {
		case "users_username_uq":
			return domain.ErrUsernameTaken
		case "users_email_uq":
			return domain.ErrEmailTaken
		default:
			return fmt.Errorf("unique violation (%s): %w", pgerr.ConstraintName, err)
		}
	}
	return fmt.Errorf("create user: %w", err)
}
