// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, premium, upstream, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeInvalidTopic       = "INVALID_TOPIC"
	ErrCodeInvalidItemCount   = "INVALID_ITEM_COUNT"
	ErrCodeInvalidPayment     = "INVALID_PAYMENT"
	ErrCodePremiumRequired    = "PREMIUM_REQUIRED"
	ErrCodeSignUpFailed       = "SIGNUP_FAILED"
	ErrCodeSignOutFailed      = "SIGNOUT_FAILED"
	ErrCodePaymentFailed      = "PAYMENT_FAILED"
	ErrCodePaymentStatus      = "PAYMENT_STATUS_FAILED"
	ErrCodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewUnauthorizedError は認証失敗エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Invalid token",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewInvalidCredentialsError はサインイン失敗エラーを生成する。
// reasonにはIdPが返した理由をそのまま渡す。
func NewInvalidCredentialsError(reason string) *APIError {
	if reason == "" {
		reason = "Invalid credentials"
	}
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  reason,
		Category: "auth",
		Action:   "メールアドレスとパスワードを確認してください。",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewInvalidTopicError はトピック未指定エラーを生成する。
func NewInvalidTopicError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTopic,
		Message:  "トピックが空です。",
		Category: "validation",
		Action:   "学習したいトピックを入力してください。",
	}
}

// NewInvalidItemCountError は生成数が範囲外の場合のエラーを生成する。
// maxが0以下の場合は下限のみを案内する。
func NewInvalidItemCountError(n, max int) *APIError {
	action := "生成数は1以上で指定してください。"
	if max > 0 {
		action = fmt.Sprintf("生成数は1から%dの範囲で指定してください。", max)
	}
	return &APIError{
		Code:     ErrCodeInvalidItemCount,
		Message:  fmt.Sprintf("無効な生成数です: %d", n),
		Category: "validation",
		Action:   action,
	}
}

// NewInvalidPaymentError は決済リクエストの入力不備エラーを生成する。
func NewInvalidPaymentError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPayment,
		Message:  fmt.Sprintf("無効な決済リクエストです: %s", reason),
		Category: "validation",
		Action:   "金額・電話番号・メールアドレスを確認してください。",
	}
}

// NewPremiumRequiredError はプレミアム会員限定機能へのアクセスエラーを生成する。
// messageはクライアントにそのまま表示される。
func NewPremiumRequiredError(message string) *APIError {
	return &APIError{
		Code:     ErrCodePremiumRequired,
		Message:  message,
		Category: "premium",
		Action:   "プレミアムプランに登録してください。",
	}
}

// NewSignUpFailedError はユーザー登録失敗エラーを生成する。
func NewSignUpFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeSignUpFailed,
		Message:  reason,
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewSignOutFailedError はサインアウト失敗エラーを生成する。
func NewSignOutFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeSignOutFailed,
		Message:  reason,
		Category: "auth",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewPaymentFailedError は決済開始失敗エラーを生成する。
// reasonにはゲートウェイの応答メッセージを渡す。
func NewPaymentFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodePaymentFailed,
		Message:  reason,
		Category: "upstream",
		Action:   "電話番号を確認し、しばらく待ってから再度お試しください。",
	}
}

// NewPaymentStatusError は決済状態の取得失敗エラーを生成する。
func NewPaymentStatusError() *APIError {
	return &APIError{
		Code:     ErrCodePaymentStatus,
		Message:  "Failed to check payment status",
		Category: "upstream",
		Action:   "トランザクションIDを確認してください。",
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "Too many requests. Please try again later.",
		Category: "system",
		Action:   "Retry-Afterヘッダーの秒数だけ待ってから再度お試しください。",
	}
}

// NewInternalError は内部エラーを生成する。messageが空の場合は一般的なメッセージを使う。
func NewInternalError(message string) *APIError {
	if message == "" {
		message = "内部エラーが発生しました。"
	}
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  message,
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
