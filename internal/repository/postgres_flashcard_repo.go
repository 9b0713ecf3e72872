package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hitoshi/eduassist/internal/model"
)

// PostgresFlashcardSetRepo はPostgreSQLを使用したフラッシュカードセットリポジトリ。
type PostgresFlashcardSetRepo struct {
	db *sql.DB
}

// NewPostgresFlashcardSetRepo はPostgresFlashcardSetRepoを生成する。
func NewPostgresFlashcardSetRepo(db *sql.DB) *PostgresFlashcardSetRepo {
	return &PostgresFlashcardSetRepo{db: db}
}

// Create はフラッシュカードセットを作成する。
func (r *PostgresFlashcardSetRepo) Create(ctx context.Context, set *model.FlashcardSet) error {
	cards := set.Flashcards
	if cards == nil {
		cards = []model.Flashcard{}
	}
	encoded, err := json.Marshal(cards)
	if err != nil {
		return fmt.Errorf("failed to encode flashcards: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO flashcard_sets (id, user_id, topic, flashcards, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		set.ID, set.UserID, set.Topic, encoded, set.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert flashcard set: %w", err)
	}
	return nil
}

// compile-time interface check
var _ FlashcardSetRepository = (*PostgresFlashcardSetRepo)(nil)
