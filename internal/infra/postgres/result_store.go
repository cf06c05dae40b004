package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"quiz-engine/internal/domain"

	"github.com/jackc/pgx/v4/pgxpool"
)

// ResultStore persists completed quiz results in the quiz_results table.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) SaveResult(ctx context.Context, rec domain.ResultRecord) error {
	data, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quiz_results (id, quiz_id, session_id, user_id, percentage, result, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.QuizID, rec.SessionID, rec.UserID, rec.Result.Percentage, data, rec.CompletedAt)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

// ListResults returns the newest results for a quiz; limit <= 0 returns all.
func (s *ResultStore) ListResults(ctx context.Context, quizID string, limit int) ([]domain.ResultRecord, error) {
	query := `SELECT id, quiz_id, session_id, user_id, result, completed_at
		FROM quiz_results WHERE quiz_id=$1 ORDER BY completed_at DESC`
	args := []interface{}{quizID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var out []domain.ResultRecord
	for rows.Next() {
		var (
			rec domain.ResultRecord
			raw []byte
		)
		if err := rows.Scan(&rec.ID, &rec.QuizID, &rec.SessionID, &rec.UserID, &raw, &rec.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if err := json.Unmarshal(raw, &rec.Result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
