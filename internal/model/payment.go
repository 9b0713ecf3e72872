package model

import "time"

// PaymentStatus は支払いの状態。
type PaymentStatus string

const (
	// PaymentStatusPending はSTKプッシュ送信済みで完了未確認の状態。
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusCompleted はゲートウェイが完了を報告した状態。
	PaymentStatusCompleted PaymentStatus = "completed"
)

// DefaultCurrency は支払い通貨（ケニア・シリング）。
const DefaultCurrency = "KES"

// Payment はモバイルマネー決済の記録を表す。
type Payment struct {
	ID                     string
	UserID                 string
	Amount                 float64
	Currency               string
	Status                 PaymentStatus
	InstasendTransactionID string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Plan はプレミアムプランの定義。
type Plan struct {
	Name     string   `json:"name"`
	Price    int      `json:"price"`
	Currency string   `json:"currency"`
	Features []string `json:"features"`
	Duration string   `json:"duration"`
	Discount string   `json:"discount,omitempty"`
}
