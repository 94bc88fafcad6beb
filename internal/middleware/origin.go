package middleware

import (
	"log/slog"
	"net/http"

	"github.com/takumi/authman/internal/model"
	"github.com/takumi/authman/internal/security"
)

// NewOriginCheckMiddleware は状態変更リクエストのオリジン検証ミドルウェアを返す。
// Cookieによる暗黙の認証に依存する変更系操作（ログアウト、退会等）の前段に
// 配置する。安全なメソッド（GET, HEAD, OPTIONS）は検証をスキップする。
// 検証に失敗したリクエストは副作用を一切起こさず403で拒否する。
func NewOriginCheckMiddleware(validator *security.OriginValidator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			if !validator.Validate(r) {
				slog.Warn("origin validation failed",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("origin", r.Header.Get("Origin")),
				)
				WriteErrorResponse(w, http.StatusForbidden, model.NewCSRFRejectedError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isSafeMethod はHTTPメソッドが安全（読み取り専用）かどうかを判定する。
func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}
