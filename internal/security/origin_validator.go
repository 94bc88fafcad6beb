// Package security はリクエスト検証のためのセキュリティ機構を提供する。
package security

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// OriginValidator は状態変更リクエストのオリジンを信頼リストと照合する。
// Cookieによる暗黙の認証だけでは同一サイトからの操作であることを
// 証明できないため、変更系の操作の前に必ず呼び出す。
type OriginValidator struct {
	trusted map[string]struct{}
}

// NewOriginValidator は信頼するオリジンのリストからOriginValidatorを生成する。
// 各要素は "https://example.com" のようなURLで指定し、
// scheme://host[:port] の形に正規化して保持する。
func NewOriginValidator(origins []string) (*OriginValidator, error) {
	if len(origins) == 0 {
		return nil, fmt.Errorf("at least one trusted origin is required")
	}

	trusted := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		normalized, err := normalizeOrigin(o)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted origin %q: %w", o, err)
		}
		trusted[normalized] = struct{}{}
	}

	return &OriginValidator{trusted: trusted}, nil
}

// Validate はリクエストのオリジンが信頼リストに含まれるかを判定する。
// Originヘッダーを優先し、欠落している場合はRefererヘッダーで代替する。
// 両方が欠落、または解析不能な場合はfalseを返す（フェイルクローズ）。
func (v *OriginValidator) Validate(r *http.Request) bool {
	raw := r.Header.Get("Origin")
	if raw == "" {
		raw = r.Header.Get("Referer")
	}
	if raw == "" {
		return false
	}

	normalized, err := normalizeOrigin(raw)
	if err != nil {
		return false
	}

	_, ok := v.trusted[normalized]
	return ok
}

// normalizeOrigin はURLを scheme://host[:port] の形に正規化する。
// schemeまたはhostを欠くURLはエラーとする。
func normalizeOrigin(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("missing scheme or host")
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), nil
}
