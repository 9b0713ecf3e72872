// Package model はドメインモデルを定義する。
package model

import "time"

// User は学習者のプロフィールを表す。
// IDは外部IdP（Supabase Auth）が払い出したユーザーIDをそのまま使う。
type User struct {
	ID        string
	Email     string
	IsPremium bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
