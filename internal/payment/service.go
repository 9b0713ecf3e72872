// Package payment はプレミアム会員のモバイルマネー決済を提供する。
package payment

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/eduassist/internal/intasend"
	"github.com/hitoshi/eduassist/internal/model"
	"github.com/hitoshi/eduassist/internal/repository"
)

// Gateway は決済ゲートウェイのインターフェース。
type Gateway interface {
	InitiateMpesaPayment(ctx context.Context, amount float64, phoneNumber, email string) (map[string]any, error)
	CheckPaymentStatus(ctx context.Context, transactionID string) (map[string]any, error)
}

// PremiumMarker はプレミアム会員への昇格インターフェース。
type PremiumMarker interface {
	MarkPremium(ctx context.Context, userID string) error
}

// Service は決済のサービス層。
type Service struct {
	gateway     Gateway
	users       PremiumMarker
	paymentRepo repository.PaymentRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(gateway Gateway, users PremiumMarker, paymentRepo repository.PaymentRepository) *Service {
	return &Service{
		gateway:     gateway,
		users:       users,
		paymentRepo: paymentRepo,
	}
}

// Initiate はSTKプッシュを開始し、保留中の決済として記録する。
// 記録の失敗はログに残すだけで、ゲートウェイの応答はそのまま返す。
func (s *Service) Initiate(ctx context.Context, userID string, amount float64, phoneNumber, email string) (map[string]any, error) {
	phoneNumber = strings.TrimSpace(phoneNumber)
	email = strings.TrimSpace(email)
	switch {
	case amount <= 0:
		return nil, model.NewInvalidPaymentError("amount must be greater than 0")
	case phoneNumber == "":
		return nil, model.NewInvalidPaymentError("phone_number is required")
	case email == "":
		return nil, model.NewInvalidPaymentError("email is required")
	}

	data, err := s.gateway.InitiateMpesaPayment(ctx, amount, phoneNumber, email)
	if err != nil {
		var gwErr *intasend.GatewayError
		if errors.As(err, &gwErr) {
			return nil, model.NewPaymentFailedError(gwErr.Message)
		}
		return nil, model.NewPaymentFailedError("Payment service error")
	}

	now := time.Now()
	if err := s.paymentRepo.Create(ctx, &model.Payment{
		ID:                     uuid.New().String(),
		UserID:                 userID,
		Amount:                 amount,
		Currency:               model.DefaultCurrency,
		Status:                 model.PaymentStatusPending,
		InstasendTransactionID: intasend.TransactionID(data),
		CreatedAt:              now,
		UpdatedAt:              now,
	}); err != nil {
		slog.Error("決済記録の保存に失敗しました",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	slog.Info("決済を開始しました",
		slog.String("user_id", userID),
		slog.Float64("amount", amount),
	)
	return data, nil
}

// CheckStatus はトランザクションの状態を問い合わせる。
// 完了していれば呼び出したユーザーをプレミアム会員にし、決済記録を完了にする。
// トランザクションの所有者は照合しない。
func (s *Service) CheckStatus(ctx context.Context, userID, transactionID string) (map[string]any, error) {
	data, err := s.gateway.CheckPaymentStatus(ctx, transactionID)
	if err != nil {
		return nil, model.NewPaymentStatusError()
	}

	if status, _ := data["status"].(string); status == string(model.PaymentStatusCompleted) {
		if err := s.users.MarkPremium(ctx, userID); err != nil {
			slog.Error("プレミアム状態の更新に失敗しました",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
		n, err := s.paymentRepo.UpdateStatusByTransactionID(ctx, transactionID, model.PaymentStatusCompleted)
		if err != nil {
			slog.Error("決済記録の更新に失敗しました",
				slog.String("transaction_id", transactionID),
				slog.String("error", err.Error()),
			)
		} else if n == 0 {
			slog.Warn("更新対象の決済記録がありません",
				slog.String("transaction_id", transactionID),
			)
		}
	}
	return data, nil
}

// Plans はプレミアムプランの一覧を返す。
func (s *Service) Plans() []model.Plan {
	return intasend.Plans()
}
