package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/takumi/authman/internal/cookie"
)

// StateCookieName はOAuth stateトークンを保持するCookieの名前。
// セッションCookieとは別物として扱う。
const StateCookieName = "oauth_state"

// StateManager は外部ログインのリダイレクト往復をCSRF・リプレイから防御する。
// stateトークンはCookieにのみ保持し、サーバー側には永続化しない。
// 使い捨て: 検証を1回試行したら、成否にかかわらずCookieを破棄する。
type StateManager struct {
	cookieConfig cookie.Config
	maxAge       int // stateトークンCookieの有効期間（秒）
}

// NewStateManager はStateManagerを生成する。
func NewStateManager(cookieConfig cookie.Config, maxAge int) *StateManager {
	return &StateManager{
		cookieConfig: cookieConfig,
		maxAge:       maxAge,
	}
}

// Issue はstateトークンをCookieとしてレスポンスに付与する。
func (m *StateManager) Issue(w http.ResponseWriter, token string) {
	http.SetCookie(w, cookie.Build(StateCookieName, token, m.maxAge, m.cookieConfig))
}

// Verify はコールバックのstateクエリパラメータとCookieの値を比較する。
// Cookieの欠落、パラメータの欠落、不一致のいずれもfalseを返す。
// 比較は定数時間で行う。呼び出し側は検証後ただちにClearを呼ぶこと。
func (m *StateManager) Verify(r *http.Request) bool {
	cookieValue := cookie.Read(r, StateCookieName)
	if cookieValue == "" {
		return false
	}

	paramValue := r.URL.Query().Get("state")
	if paramValue == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(cookieValue), []byte(paramValue)) == 1
}

// Clear はstateトークンCookieを破棄する。
func (m *StateManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, cookie.Clear(StateCookieName, m.cookieConfig))
}
