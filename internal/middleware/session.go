// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/takumi/authman/internal/cookie"
	"github.com/takumi/authman/internal/model"
)

// SessionCookieName は生セッショントークンを保持するCookieの名前。
const SessionCookieName = "session_token"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// SessionValidator はセッションの検証に必要なインターフェース。
// auth.Serviceの部分集合として定義する。
type SessionValidator interface {
	ValidateSession(ctx context.Context, rawToken string) (*model.Session, error)
}

// NewSessionMiddleware はHTTP Only Cookieから生セッショントークンを読み取り、
// 有効性を検証するミドルウェアを返す。
// 認証済みユーザーIDをリクエストコンテキストに注入する。
// トークンの不在・期限切れ・失効は区別せず401 Unauthorizedを返す。
// 永続化層の障害は未認証扱いにせず500を返す（認証済みとして通すことはない）。
func NewSessionMiddleware(validator SessionValidator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Cookieから生トークンを取得
			rawToken := cookie.Read(r, SessionCookieName)
			if rawToken == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			// 2. セッションの有効性を検証
			session, err := validator.ValidateSession(r.Context(), rawToken)
			if err != nil {
				slog.Error("failed to validate session",
					slog.String("error", err.Error()),
				)
				WriteInternalServerError(w)
				return
			}
			if session == nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			// 3. 認証済みユーザーIDをコンテキストに注入
			ctx := context.WithValue(r.Context(), userIDContextKey, session.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
