package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Wakana-github/score-sheet-sub000/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RecordsStore struct {
	pool *pgxpool.Pool
}

func NewRecordsStore(pool *pgxpool.Pool) *RecordsStore {
	return &RecordsStore{pool: pool}
}

const recordColumns = `id, user_id, group_id, game_title, players, score_item_names, scores, num_players, num_score_items, created_at, updated_at`

func (s *RecordsStore) CreateRecord(ctx context.Context, rec domain.ScoreRecord) (domain.ScoreRecord, error) {
	const q = `
		INSERT INTO score_records (user_id, group_id, game_title, players, score_item_names, scores, num_players, num_score_items, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + recordColumns

	row := s.pool.QueryRow(ctx, q,
		rec.UserID,
		nullIfEmpty(rec.GroupID),
		rec.GameTitle,
		rec.Players,
		rec.ScoreItemNames,
		rec.Scores,
		rec.NumPlayers,
		rec.NumScoreItems,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	out, err := scanRecord(row)
	if err != nil {
		return domain.ScoreRecord{}, mapRecordWriteError("create record", err)
	}
	return out, nil
}

func (s *RecordsStore) GetRecordForUser(ctx context.Context, userID, recordID string) (domain.ScoreRecord, error) {
	q := `SELECT ` + recordColumns + ` FROM score_records WHERE id = $1 AND user_id = $2`

	rec, err := scanRecord(s.pool.QueryRow(ctx, q, recordID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ScoreRecord{}, domain.ErrNotFound
		}
		return domain.ScoreRecord{}, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

func (s *RecordsStore) ListRecordsForUser(ctx context.Context, userID string) ([]domain.ScoreRecord, error) {
	q := `SELECT ` + recordColumns + ` FROM score_records WHERE user_id = $1 ORDER BY created_at, id`
	return s.list(ctx, "list records for user", q, userID)
}

func (s *RecordsStore) ListRecordsForGroup(ctx context.Context, groupID string) ([]domain.ScoreRecord, error) {
	q := `SELECT ` + recordColumns + ` FROM score_records WHERE group_id = $1 ORDER BY created_at, id`
	return s.list(ctx, "list records for group", q, groupID)
}

func (s *RecordsStore) CountRecordsForUser(ctx context.Context, userID string) (int, error) {
	const q = `SELECT count(*) FROM score_records WHERE user_id = $1`

	var n int
	if err := s.pool.QueryRow(ctx, q, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

func (s *RecordsStore) ReplaceRecord(ctx context.Context, rec domain.ScoreRecord) (domain.ScoreRecord, error) {
	const q = `
		UPDATE score_records
		SET group_id = $3,
			game_title = $4,
			players = $5,
			score_item_names = $6,
			scores = $7,
			num_players = $8,
			num_score_items = $9,
			updated_at = $10
		WHERE id = $1 AND user_id = $2
		RETURNING ` + recordColumns

	row := s.pool.QueryRow(ctx, q,
		rec.ID,
		rec.UserID,
		nullIfEmpty(rec.GroupID),
		rec.GameTitle,
		rec.Players,
		rec.ScoreItemNames,
		rec.Scores,
		rec.NumPlayers,
		rec.NumScoreItems,
		rec.UpdatedAt,
	)
	out, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ScoreRecord{}, domain.ErrNotFound
		}
		return domain.ScoreRecord{}, mapRecordWriteError("replace record", err)
	}
	return out, nil
}

func (s *RecordsStore) DeleteRecord(ctx context.Context, userID, recordID string) error {
	const q = `DELETE FROM score_records WHERE id = $1 AND user_id = $2`

	tag, err := s.pool.Exec(ctx, q, recordID, userID)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *RecordsStore) list(ctx context.Context, op, q string, arg string) ([]domain.ScoreRecord, error) {
	rows, err := s.pool.Query(ctx, q, arg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]domain.ScoreRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func scanRecord(row pgx.Row) (domain.ScoreRecord, error) {
	var (
		rec        domain.ScoreRecord
		idUUID     pgtype.UUID
		userUUID   pgtype.UUID
		groupUUID  pgtype.UUID
		players    []domain.Player
		itemNames  []string
		scoreTable [][]int
	)
	err := row.Scan(
		&idUUID,
		&userUUID,
		&groupUUID,
		&rec.GameTitle,
		&players,
		&itemNames,
		&scoreTable,
		&rec.NumPlayers,
		&rec.NumScoreItems,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return domain.ScoreRecord{}, err
	}

	rec.ID = uuidOrEmpty(idUUID)
	rec.UserID = uuidOrEmpty(userUUID)
	rec.GroupID = uuidOrEmpty(groupUUID)
	rec.Players = players
	rec.ScoreItemNames = itemNames
	rec.Scores = scoreTable
	return rec, nil
}

func mapRecordWriteError(op string, err error) error {
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && pgerr.Code == "23503" {
		// group_id points at a group that was deleted meanwhile
		return domain.NewValidationError(map[string]string{"groupId": "unknown group"})
	}
	return fmt.Errorf("%s: %w", op, err)
}
