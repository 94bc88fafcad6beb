// Package cookie はセキュリティ属性付きHTTP Cookieの構築と読み取りを提供する。
package cookie

import "net/http"

// Config はCookie構築に共通する配備依存の属性を保持する。
type Config struct {
	Secure bool   // 本番（https配備）ではtrue
	Domain string // 空の場合はホスト限定Cookie
}

// Build は指定された名前・値・有効期間のCookieを構築する。
// HttpOnly、SameSite=Lax、Path=/ は常に付与する。
func Build(name, value string, maxAge int, config Config) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   config.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Clear は指定された名前のCookieを削除するためのCookieを構築する。
// 値を空にし、MaxAge=-1でブラウザに即時削除を指示する。
func Clear(name string, config Config) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   config.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Read はリクエストから指定された名前のCookie値を読み取る。
// Cookieが存在しない場合は空文字列を返す（エラーとして扱わない）。
func Read(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
