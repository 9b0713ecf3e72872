package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/eduassist/internal/model"
)

// PostgresPaymentRepo はPostgreSQLを使用した決済記録リポジトリ。
type PostgresPaymentRepo struct {
	db *sql.DB
}

// NewPostgresPaymentRepo はPostgresPaymentRepoを生成する。
func NewPostgresPaymentRepo(db *sql.DB) *PostgresPaymentRepo {
	return &PostgresPaymentRepo{db: db}
}

// Create は決済記録を作成する。
func (r *PostgresPaymentRepo) Create(ctx context.Context, payment *model.Payment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO payments (id, user_id, amount, currency, status, instasend_transaction_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		payment.ID, payment.UserID, payment.Amount, payment.Currency, string(payment.Status),
		payment.InstasendTransactionID, payment.CreatedAt, payment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// UpdateStatusByTransactionID はトランザクションIDで決済状態を更新する。
func (r *PostgresPaymentRepo) UpdateStatusByTransactionID(ctx context.Context, transactionID string, status model.PaymentStatus) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE payments SET status = $2, updated_at = $3 WHERE instasend_transaction_id = $1`,
		transactionID, string(status), time.Now(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update payment status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

// compile-time interface check
var _ PaymentRepository = (*PostgresPaymentRepo)(nil)
