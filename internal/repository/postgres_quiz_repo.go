package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hitoshi/eduassist/internal/model"
)

// PostgresQuizRepo はPostgreSQLを使用したクイズリポジトリ。
// questionsはJSONBカラムに保存する。
type PostgresQuizRepo struct {
	db *sql.DB
}

// NewPostgresQuizRepo はPostgresQuizRepoを生成する。
func NewPostgresQuizRepo(db *sql.DB) *PostgresQuizRepo {
	return &PostgresQuizRepo{db: db}
}

// Create はクイズを作成する。
func (r *PostgresQuizRepo) Create(ctx context.Context, quiz *model.Quiz) error {
	questions, err := json.Marshal(nonNilQuestions(quiz.Questions))
	if err != nil {
		return fmt.Errorf("failed to encode questions: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO quizzes (id, user_id, topic, questions, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		quiz.ID, quiz.UserID, quiz.Topic, questions, quiz.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert quiz: %w", err)
	}
	return nil
}

// UpdateScore は所有者が一致するクイズのスコアと完了日時を設定する。
func (r *PostgresQuizRepo) UpdateScore(ctx context.Context, id, userID string, score int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE quizzes SET score = $3, completed_at = $4 WHERE id = $1 AND user_id = $2`,
		id, userID, score, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update quiz score: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// nonNilQuestions はnilスライスを空スライスに置き換える（JSONで null ではなく [] にするため）。
func nonNilQuestions(qs []model.QuizQuestion) []model.QuizQuestion {
	if qs == nil {
		return []model.QuizQuestion{}
	}
	return qs
}

// compile-time interface check
var _ QuizRepository = (*PostgresQuizRepo)(nil)
