package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// OAuth
	// Google連携は任意設定。未設定の場合、ログイン開始時に
	// エラーページへリダイレクトする（起動は失敗させない）。
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// Session
	SessionMaxAge int // セッション有効期間（秒）

	// OAuth state
	StateMaxAge int // stateトークンCookieの有効期間（秒）

	// Rate Limit
	RateLimitGeneral int // API全般（req/min/user）
	RateLimitLogin   int // ログイン開始（req/min/IP）

	// Server
	ServerPort string
	BaseURL    string

	// Origin
	// 状態変更リクエストで許可するオリジンのリスト。
	TrustedOrigins []string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	cfg.GoogleRedirectURL = getEnvString("GOOGLE_REDIRECT_URL", strings.TrimSuffix(cfg.BaseURL, "/")+"/auth/google/callback")

	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", int((30*24*time.Hour)/time.Second))
	cfg.StateMaxAge = getEnvInt("STATE_MAX_AGE", 600)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitLogin = getEnvInt("RATE_LIMIT_LOGIN", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	// 信頼オリジンのリスト。未指定の場合はBASE_URLのオリジンのみ許可する。
	cfg.TrustedOrigins = splitAndTrim(getEnvString("TRUSTED_ORIGINS", cfg.BaseURL))

	return cfg, nil
}

// GoogleConfigured はGoogle OAuth連携に必要な設定が揃っているかを返す。
func (c *Config) GoogleConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}

func splitAndTrim(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}
