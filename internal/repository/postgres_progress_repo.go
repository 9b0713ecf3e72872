package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/eduassist/internal/model"
)

// PostgresProgressRepo はPostgreSQLを使用した学習履歴リポジトリ。
type PostgresProgressRepo struct {
	db *sql.DB
}

// NewPostgresProgressRepo はPostgresProgressRepoを生成する。
func NewPostgresProgressRepo(db *sql.DB) *PostgresProgressRepo {
	return &PostgresProgressRepo{db: db}
}

// Create は学習履歴を1件追加する。
func (r *PostgresProgressRepo) Create(ctx context.Context, entry *model.ProgressEntry) error {
	var score sql.NullInt64
	if entry.Score != nil {
		score = sql.NullInt64{Int64: int64(*entry.Score), Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO progress (id, user_id, topic, activity_type, score, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.UserID, entry.Topic, string(entry.ActivityType), score, entry.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert progress: %w", err)
	}
	return nil
}

// ListByUserID はユーザーの学習履歴をcompleted_at降順で返す。
func (r *PostgresProgressRepo) ListByUserID(ctx context.Context, userID string) ([]*model.ProgressEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, topic, activity_type, score, completed_at
		 FROM progress
		 WHERE user_id = $1
		 ORDER BY completed_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	defer rows.Close()

	var entries []*model.ProgressEntry
	for rows.Next() {
		e := &model.ProgressEntry{}
		var (
			activity string
			score    sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Topic, &activity, &score, &e.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		e.ActivityType = model.ActivityType(activity)
		if score.Valid {
			s := int(score.Int64)
			e.Score = &s
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate progress rows: %w", err)
	}

	return entries, nil
}

// compile-time interface check
var _ ProgressRepository = (*PostgresProgressRepo)(nil)
