// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// ID以外のフィールドはアカウント設定フロー（本コアの対象外）が更新し、
// 本コアは読み取りのみを行う。
type User struct {
	ID                   string
	Email                string
	Username             string // 未設定の場合は空文字列
	ShowSensitiveContent bool
	TwoFactorEnabled     bool
	Timezone             string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Identity は外部IdPとの紐付け情報を表す。
// 将来的に複数のIdP（Google, GitHub等）に対応可能な構造。
type Identity struct {
	ID             string
	UserID         string
	Provider       string
	ProviderUserID string
	CreatedAt      time.Time
}

// Session はユーザーのログインセッションを表す。
// TokenHashはクライアントに渡した生トークンのSHA-256ハッシュであり、
// 生トークンそのものは永続化しない。
// 有効条件: 行が存在し、かつ now < ExpiresAt であること。
type Session struct {
	TokenHash  string
	UserID     string
	IssuedAt   time.Time
	ExpiresAt  time.Time
	LastSeenAt *time.Time
}

// Expired はセッションが期限切れかどうかを判定する。
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
