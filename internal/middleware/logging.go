package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// HTTPStatusRecorder はレスポンスのステータスコードをメトリクスとして
// 記録するインターフェース。metrics.Collectorが満たす。
type HTTPStatusRecorder interface {
	RecordHTTPStatus(statusCode int)
}

// responseRecorder はhttp.ResponseWriterをラップし、最初に確定した
// ステータスコードを保持する。
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rr *responseRecorder) WriteHeader(code int) {
	if !rr.written {
		rr.statusCode = code
		rr.written = true
	}
	rr.ResponseWriter.WriteHeader(code)
}

// Write はWriteHeader未呼び出しの場合、暗黙の200を記録する。
func (rr *responseRecorder) Write(b []byte) (int, error) {
	if !rr.written {
		rr.statusCode = http.StatusOK
		rr.written = true
	}
	return rr.ResponseWriter.Write(b)
}

// NewLoggingMiddleware はリクエスト毎にJSON構造化ログを1行出力するミドルウェアを返す。
// フィールドはmethod / path / status / duration_ms、セッション確立済みの場合は
// user_idを含む。生トークンやCookie値は決してログに出さない。
// ログレベルは5xxでERROR、4xxでWARN、それ以外はINFO。
// statusesが非nilの場合、確定したステータスコードをメトリクスにも記録する。
func NewLoggingMiddleware(logger *slog.Logger, statuses HTTPStatusRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := &responseRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rec, r)

			if statuses != nil {
				statuses.RecordHTTPStatus(rec.statusCode)
			}

			durationMs := float64(time.Since(start).Nanoseconds()) / float64(time.Millisecond)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.statusCode),
				slog.Float64("duration_ms", durationMs),
			}
			if userID, err := UserIDFromContext(r.Context()); err == nil && userID != "" {
				attrs = append(attrs, slog.String("user_id", userID))
			}

			level := slog.LevelInfo
			switch {
			case rec.statusCode >= 500:
				level = slog.LevelError
			case rec.statusCode >= 400:
				level = slog.LevelWarn
			}

			logger.LogAttrs(r.Context(), level, "http_request", attrs...)
		})
	}
}
