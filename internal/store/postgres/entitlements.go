package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Wakana-github/score-sheet-sub000/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EntitlementsStore reads the subscription state the billing sync writes onto
// users.subscription_status.
type EntitlementsStore struct {
	pool *pgxpool.Pool
}

func NewEntitlementsStore(pool *pgxpool.Pool) *EntitlementsStore {
	return &EntitlementsStore{pool: pool}
}

func (s *EntitlementsStore) Entitlement(ctx context.Context, userID string) (domain.Entitlement, error) {
	const q = `SELECT subscription_status FROM users WHERE id = $1`

	ent := domain.Entitlement{UserID: userID}
	if err := s.pool.QueryRow(ctx, q, userID).Scan(&ent.Status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Entitlement{}, domain.ErrNotFound
		}
		return domain.Entitlement{}, fmt.Errorf("get entitlement: %w", err)
	}
	return ent, nil
}
