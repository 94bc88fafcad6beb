// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, csrf, config, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeOAuthUnavailable = "OAUTH_UNAVAILABLE"
	ErrCodeInvalidState     = "INVALID_STATE"
	ErrCodeCSRFRejected     = "CSRF_REJECTED"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// NewOAuthUnavailableError は外部IdP連携が未設定の場合のエラーを生成する。
func NewOAuthUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeOAuthUnavailable,
		Message:  "外部ログイン連携が設定されていません。",
		Category: "config",
		Action:   "管理者に連絡してください。",
	}
}

// NewInvalidStateError はOAuth stateトークンの検証失敗エラーを生成する。
func NewInvalidStateError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidState,
		Message:  "ログイン要求の検証に失敗しました。",
		Category: "csrf",
		Action:   "最初からログインをやり直してください。",
	}
}

// NewCSRFRejectedError はオリジン検証失敗エラーを生成する。
func NewCSRFRejectedError() *APIError {
	return &APIError{
		Code:     ErrCodeCSRFRejected,
		Message:  "信頼されていないオリジンからのリクエストです。",
		Category: "csrf",
		Action:   "正規のサイトから操作してください。",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
// セッションの不在・期限切れ・失効はすべて同一のエラーとして扱い、
// どの理由で失敗したかをクライアントに開示しない。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証されていません。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}
