// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/takumi/authman/internal/auth"
	"github.com/takumi/authman/internal/cookie"
	"github.com/takumi/authman/internal/metrics"
	"github.com/takumi/authman/internal/middleware"
	"github.com/takumi/authman/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	OAuthConfigured() bool
	GetLoginURL(state string) string
	HandleCallback(ctx context.Context, code string) (string, *model.Session, error)
	RevokeSession(ctx context.Context, rawToken string) error
	ResolveUser(ctx context.Context, rawToken string) (*model.User, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	BaseURL       string
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
	StateMaxAge   int // stateトークンCookieの有効期間（秒）
}

// AuthHandler はOAuth認証関連のHTTPハンドラー。
// 外部ログインの開始・コールバック・ログアウト・セッション照会を担う。
type AuthHandler struct {
	service      AuthServiceInterface
	states       *auth.StateManager
	collector    metrics.MetricsCollector
	config       AuthHandlerConfig
	cookieConfig cookie.Config
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, collector metrics.MetricsCollector, config AuthHandlerConfig) *AuthHandler {
	cookieConfig := cookie.Config{
		Secure: config.CookieSecure,
		Domain: config.CookieDomain,
	}
	return &AuthHandler{
		service:      service,
		states:       auth.NewStateManager(cookieConfig, config.StateMaxAge),
		collector:    collector,
		config:       config,
		cookieConfig: cookieConfig,
	}
}

// redirectLoginError は認証フローの失敗をログイン画面へのリダイレクトで通知する。
// OAuthフローはブラウザのトップレベル遷移で進行するため、JSONボディではなく
// errorクエリパラメータ（APIErrorコードの小文字表現）でエラーを伝える。
func (h *AuthHandler) redirectLoginError(w http.ResponseWriter, r *http.Request, apiErr *model.APIError) {
	http.Redirect(w, r, h.config.BaseURL+"/login?error="+strings.ToLower(apiErr.Code), http.StatusTemporaryRedirect)
}

// Login はGoogle OAuthフローを開始する。
// 連携が未設定の場合はプロバイダーではなくエラー表示先へリダイレクトする。
// GET /auth/google/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.service.OAuthConfigured() {
		apiErr := model.NewOAuthUnavailableError()
		slog.Warn("oauth login requested but integration is not configured", slog.String("code", apiErr.Code))
		h.collector.RecordLoginFailure("unconfigured")
		h.redirectLoginError(w, r, apiErr)
		return
	}

	state, err := auth.GenerateStateToken()
	if err != nil {
		slog.Error("failed to generate oauth state", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	// stateをCookieに保存（CSRF対策）
	h.states.Issue(w, state)

	url := h.service.GetLoginURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// Callback はOAuthコールバックを処理する。
// stateトークンは検証を1回試行したら成否にかかわらず破棄する（使い捨て）。
// GET /auth/google/callback?code=xxx&state=yyy
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	// 1. stateの検証（CSRF対策）。定数時間比較で行う。
	verified := h.states.Verify(r)

	// 検証の成否にかかわらずstateクッキーを破棄する
	h.states.Clear(w)

	if !verified {
		apiErr := model.NewInvalidStateError()
		slog.Warn("oauth state verification failed", slog.String("code", apiErr.Code))
		h.collector.RecordLoginFailure("invalid_state")
		h.redirectLoginError(w, r, apiErr)
		return
	}

	// 2. 認可コードの取得
	code := r.URL.Query().Get("code")
	if code == "" {
		h.collector.RecordLoginFailure("missing_code")
		http.Redirect(w, r, h.config.BaseURL+"/login?error=invalid_callback", http.StatusTemporaryRedirect)
		return
	}

	// 3. 認証処理
	rawToken, _, err := h.service.HandleCallback(r.Context(), code)
	if err != nil {
		slog.Error("oauth callback failed", slog.String("error", err.Error()))
		h.collector.RecordLoginFailure("exchange_failed")
		http.Redirect(w, r, h.config.BaseURL+"/login?error=auth_failed", http.StatusTemporaryRedirect)
		return
	}

	// 4. セッションCookieを設定（HTTP Only）
	http.SetCookie(w, cookie.Build(middleware.SessionCookieName, rawToken, h.config.SessionMaxAge, h.cookieConfig))

	h.collector.RecordLoginSuccess()
	h.collector.RecordSessionCreated()
	h.collector.RecordCallbackLatency(time.Since(start))

	// 5. 認証済みの着地先にリダイレクト
	http.Redirect(w, r, h.config.BaseURL, http.StatusTemporaryRedirect)
}

// Logout はセッションを失効させる。
// オリジン検証ミドルウェアの通過が前提条件（ルーターで適用）。
// セッションが存在しなくても成功として扱い、Cookieは常にクリアする。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// 失効が失敗してもブラウザに古いCookieを残さないよう、先にクリアを積む
	http.SetCookie(w, cookie.Clear(middleware.SessionCookieName, h.cookieConfig))

	rawToken := cookie.Read(r, middleware.SessionCookieName)
	if rawToken != "" {
		if err := h.service.RevokeSession(r.Context(), rawToken); err != nil {
			slog.Error("failed to revoke session", slog.String("error", err.Error()))
			middleware.WriteInternalServerError(w)
			return
		}
		h.collector.RecordSessionRevoked()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Session は現在のログイン状態を返す。
// 未認証は正常系であり、identityをnullにした200を返す（エラーにしない）。
// 500を返すのは永続化層の障害時のみ。
// GET /auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	rawToken := cookie.Read(r, middleware.SessionCookieName)

	user, err := h.service.ResolveUser(r.Context(), rawToken)
	if err != nil {
		slog.Error("failed to resolve user", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	if rawToken != "" {
		h.collector.RecordSessionValidation(user != nil)
	}

	w.Header().Set("Content-Type", "application/json")
	if user == nil {
		json.NewEncoder(w).Encode(map[string]any{"identity": nil})
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"identity": toIdentityResponse(user),
	})
}

// identityResponse はセッション照会のレスポンスに含めるユーザー表現。
type identityResponse struct {
	ID                   string `json:"id"`
	Email                string `json:"email"`
	Username             string `json:"username,omitempty"`
	ShowSensitiveContent bool   `json:"show_sensitive_content"`
	TwoFactorEnabled     bool   `json:"two_factor_enabled"`
	Timezone             string `json:"timezone"`
}

// toIdentityResponse はmodel.UserからAPIレスポンスに変換する。
func toIdentityResponse(user *model.User) identityResponse {
	return identityResponse{
		ID:                   user.ID,
		Email:                user.Email,
		Username:             user.Username,
		ShowSensitiveContent: user.ShowSensitiveContent,
		TwoFactorEnabled:     user.TwoFactorEnabled,
		Timezone:             user.Timezone,
	}
}
