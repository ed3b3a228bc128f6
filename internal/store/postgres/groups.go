package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Wakana-github/score-sheet-sub000/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GroupsStore struct {
	pool *pgxpool.Pool
}

func NewGroupsStore(pool *pgxpool.Pool) *GroupsStore {
	return &GroupsStore{pool: pool}
}

func (s *GroupsStore) CreateGroup(ctx context.Context, g domain.Group) (domain.Group, error) {
	const q = `
		INSERT INTO score_groups (id, user_id, group_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, q, g.ID, g.UserID, g.GroupName, g.CreatedAt, g.UpdatedAt); err != nil {
			return err
		}
		return insertMembers(ctx, tx, g.ID, g.Members)
	})
	if err != nil {
		return domain.Group{}, fmt.Errorf("create group: %w", err)
	}
	return g, nil
}

func (s *GroupsStore) GetOwnedGroup(ctx context.Context, groupID, userID string) (domain.Group, error) {
	const q = `
		SELECT id, user_id, group_name, created_at, updated_at
		FROM score_groups
		WHERE id = $1 AND user_id = $2
	`

	g, err := scanGroup(s.pool.QueryRow(ctx, q, groupID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Group{}, domain.ErrNotFound
		}
		return domain.Group{}, fmt.Errorf("get group: %w", err)
	}

	byGroup, err := s.members(ctx, []string{g.ID})
	if err != nil {
		return domain.Group{}, err
	}
	g.Members = byGroup[g.ID]
	return g, nil
}

func (s *GroupsStore) ListGroupsForUser(ctx context.Context, userID string) ([]domain.Group, error) {
	const q = `
		SELECT id, user_id, group_name, created_at, updated_at
		FROM score_groups
		WHERE user_id = $1
		ORDER BY created_at, id
	`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Group, 0)
	ids := make([]string, 0)
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("list groups: %w", err)
		}
		out = append(out, g)
		ids = append(ids, g.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	rows.Close()

	if len(ids) == 0 {
		return out, nil
	}
	byGroup, err := s.members(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Members = byGroup[out[i].ID]
	}
	return out, nil
}

// ReplaceGroup rewrites the name and the whole roster in one transaction.
func (s *GroupsStore) ReplaceGroup(ctx context.Context, g domain.Group) (domain.Group, error) {
	const q = `
		UPDATE score_groups
		SET group_name = $3, updated_at = $4
		WHERE id = $1 AND user_id = $2
	`

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, q, g.ID, g.UserID, g.GroupName, g.UpdatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM group_members WHERE group_id = $1`, g.ID); err != nil {
			return err
		}
		return insertMembers(ctx, tx, g.ID, g.Members)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Group{}, err
		}
		return domain.Group{}, fmt.Errorf("replace group: %w", err)
	}
	return g, nil
}

func (s *GroupsStore) DeleteGroup(ctx context.Context, groupID, userID string) error {
	const q = `DELETE FROM score_groups WHERE id = $1 AND user_id = $2`

	tag, err := s.pool.Exec(ctx, q, groupID, userID)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *GroupsStore) members(ctx context.Context, groupIDs []string) (map[string][]domain.Member, error) {
	const q = `
		SELECT group_id, member_id, name
		FROM group_members
		WHERE group_id = ANY($1::uuid[])
		ORDER BY group_id, position
	`

	rows, err := s.pool.Query(ctx, q, groupIDs)
	if err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.Member, len(groupIDs))
	for _, id := range groupIDs {
		out[id] = []domain.Member{}
	}
	for rows.Next() {
		var (
			groupUUID  pgtype.UUID
			memberUUID pgtype.UUID
			m          domain.Member
		)
		if err := rows.Scan(&groupUUID, &memberUUID, &m.Name); err != nil {
			return nil, fmt.Errorf("scan group member: %w", err)
		}
		m.MemberID = uuidOrEmpty(memberUUID)
		gid := uuidOrEmpty(groupUUID)
		out[gid] = append(out[gid], m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	return out, nil
}

func insertMembers(ctx context.Context, tx pgx.Tx, groupID string, members []domain.Member) error {
	if len(members) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, m := range members {
		batch.Queue(`INSERT INTO group_members (group_id, member_id, name, position) VALUES ($1, $2, $3, $4)`,
			groupID, m.MemberID, m.Name, i)
	}
	return tx.SendBatch(ctx, batch).Close()
}

func scanGroup(row pgx.Row) (domain.Group, error) {
	var (
		g        domain.Group
		idUUID   pgtype.UUID
		userUUID pgtype.UUID
	)
	if err := row.Scan(&idUUID, &userUUID, &g.GroupName, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return domain.Group{}, err
	}
	g.ID = uuidOrEmpty(idUUID)
	g.UserID = uuidOrEmpty(userUUID)
	return g, nil
}
