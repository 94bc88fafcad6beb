package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const (
	// sessionTokenBytes は生セッショントークンのバイト長（256ビット）。
	sessionTokenBytes = 32
	// stateTokenBytes はOAuth stateトークンのバイト長（128ビット）。
	stateTokenBytes = 16
)

// GenerateSessionToken は暗号的に安全な生セッショントークンを生成する。
// 生トークンはクライアントにのみ渡し、サーバー側にはハッシュのみ保存する。
func GenerateSessionToken() (string, error) {
	return generateToken(sessionTokenBytes)
}

// GenerateStateToken はOAuthコールバック検証用のstateトークンを生成する。
func GenerateStateToken() (string, error) {
	return generateToken(stateTokenBytes)
}

// HashToken は生トークンからストレージ用の一方向ハッシュを導出する。
// SHA-256のhex表現を返す。
func HashToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

// generateToken はnバイトの乱数をhexエンコードして返す。
// crypto/randは並行安全であり、ロックは不要。
func generateToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
