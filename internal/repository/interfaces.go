// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/eduassist/internal/model"
)

var (
	// ErrDuplicate は主キーまたは一意制約の重複を表す。
	ErrDuplicate = errors.New("record already exists")
	// ErrNotFound は更新対象のレコードが存在しないことを表す。
	ErrNotFound = errors.New("record not found")
)

// UserRepository はユーザープロフィールの永続化インターフェース。
type UserRepository interface {
	// Create はプロフィールを作成する。同一IDが既に存在する場合はErrDuplicateを返す。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// UpdatePremium はプレミアムフラグを更新する。対象が無い場合はErrNotFoundを返す。
	UpdatePremium(ctx context.Context, id string, isPremium bool) error
}

// QuizRepository はクイズの永続化インターフェース。
type QuizRepository interface {
	// Create はクイズを作成する。
	Create(ctx context.Context, quiz *model.Quiz) error

	// UpdateScore は所有者が一致するクイズのスコアと完了日時を設定する。
	// 対象が無い場合はErrNotFoundを返す。
	UpdateScore(ctx context.Context, id, userID string, score int) error
}

// FlashcardSetRepository はフラッシュカードセットの永続化インターフェース。
type FlashcardSetRepository interface {
	// Create はフラッシュカードセットを作成する。
	Create(ctx context.Context, set *model.FlashcardSet) error
}

// ProgressRepository は学習履歴の永続化インターフェース。追記と一覧のみを提供する。
type ProgressRepository interface {
	// Create は学習履歴を1件追加する。
	Create(ctx context.Context, entry *model.ProgressEntry) error

	// ListByUserID はユーザーの学習履歴をcompleted_at降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.ProgressEntry, error)
}

// PaymentRepository は決済記録の永続化インターフェース。
type PaymentRepository interface {
	// Create は決済記録を作成する。
	Create(ctx context.Context, payment *model.Payment) error

	// UpdateStatusByTransactionID はゲートウェイのトランザクションIDで決済状態を更新し、
	// 更新件数を返す。
	UpdateStatusByTransactionID(ctx context.Context, transactionID string, status model.PaymentStatus) (int64, error)
}
