package middleware

import "net/http"

// NewSecurityHeadersMiddleware はセキュリティ関連のレスポンスヘッダーを付与する
// ミドルウェアを返す。認証レスポンス（セッション情報やリダイレクト）が
// 中間キャッシュに保存されないよう、Cache-Control: no-storeも常に付与する。
func NewSecurityHeadersMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			h.Set("Cache-Control", "no-store")
			next.ServeHTTP(w, r)
		})
	}
}
