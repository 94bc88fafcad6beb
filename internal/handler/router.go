package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/takumi/authman/internal/metrics"
	"github.com/takumi/authman/internal/middleware"
	"github.com/takumi/authman/internal/security"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// *sql.DB がそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionValidator  middleware.SessionValidator
	OriginValidator   *security.OriginValidator
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ユーザー
	UserService UserServiceInterface

	// 観測
	Health   HealthChecker
	Metrics  metrics.MetricsCollector
	Gatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Logging → CORS → OriginCheck
//	（/apiグループのみ追加で Session → RateLimit(General)）
//
// 認証ルート（/auth/*）はセッションミドルウェアの外に配置する。
// コールバックはその性質上クロスサイトで到達するため、オリジン検証の対象外とし、
// stateトークン検証がその代替となる。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Metrics))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.Metrics, deps.AuthConfig)
	userHandler := NewUserHandler(deps.UserService)
	originCheck := middleware.NewOriginCheckMiddleware(deps.OriginValidator)

	// --- 認証不要のルート ---

	// 認証ルート（OAuthフロー）
	r.Route("/auth", func(r chi.Router) {
		r.With(deps.RateLimiter.LoginMiddleware()).Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)

		// ログアウトはCookieの環境的権限に依存する変更系操作のため、
		// オリジン検証を前提条件とする。
		r.With(originCheck).Post("/logout", authHandler.Logout)
		r.Get("/session", authHandler.Session)
	})

	// ヘルスチェック
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Health.PingContext(r.Context()); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	// Prometheusメトリクス
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: OriginCheck → Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(originCheck)
		r.Use(middleware.NewSessionMiddleware(deps.SessionValidator))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// ユーザー管理
		r.Route("/api/users", func(r chi.Router) {
			r.Delete("/me", userHandler.Withdraw)
		})
	})

	return r
}
