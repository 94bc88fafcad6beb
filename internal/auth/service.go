// Package auth はOAuth認証フロー、セッション管理を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/takumi/authman/internal/model"
	"github.com/takumi/authman/internal/repository"
)

// OAuthUserInfo はOAuthプロバイダーから取得したユーザー情報を表す。
type OAuthUserInfo struct {
	ProviderUserID string
	Email          string
	Name           string
	Provider       string // "google", "github" 等
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
// 将来的に複数IdP（Google, GitHub等）に対応するための抽象化。
type OAuthProvider interface {
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、ユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
// セッションの発行・検証・失効と、外部ログインのコールバック処理を担う。
// oauthがnilの場合、外部ログイン連携は未設定として扱う。
type Service struct {
	oauth       OAuthProvider
	userRepo    repository.UserRepository
	identRepo   repository.IdentityRepository
	sessionRepo repository.SessionRepository
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	oauth OAuthProvider,
	userRepo repository.UserRepository,
	identRepo repository.IdentityRepository,
	sessionRepo repository.SessionRepository,
	config ServiceConfig,
) *Service {
	return &Service{
		oauth:       oauth,
		userRepo:    userRepo,
		identRepo:   identRepo,
		sessionRepo: sessionRepo,
		config:      config,
	}
}

// OAuthConfigured は外部ログイン連携が利用可能かどうかを返す。
func (s *Service) OAuthConfigured() bool {
	return s.oauth != nil
}

// GetLoginURL はOAuth認証URLを生成する。
func (s *Service) GetLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// HandleCallback はOAuthコールバックを処理し、セッションを発行する。
// 未登録ユーザーの場合はusersレコードとidentitiesレコードを同時に自動作成する。
// 登録済みユーザーの場合はidentitiesテーブルで既存ユーザーを特定しログインする。
// 戻り値の生トークンはCookieに載せるためのもので、永続化してはならない。
func (s *Service) HandleCallback(ctx context.Context, code string) (string, *model.Session, error) {
	// 1. 認可コードをトークンに交換し、ユーザー情報を取得
	userInfo, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	// 2. identitiesテーブルで既存ユーザーを検索
	identity, err := s.identRepo.FindByProviderAndProviderUserID(ctx, userInfo.Provider, userInfo.ProviderUserID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to find identity: %w", err)
	}

	var userID string

	if identity != nil {
		// 3a. 既存ユーザー: identityからユーザーIDを取得
		userID = identity.UserID
		slog.Info("existing user logged in",
			slog.String("user_id", userID),
			slog.String("provider", userInfo.Provider),
		)
	} else {
		// 3b. 新規ユーザー: usersレコードとidentitiesレコードを同時に作成
		newUserID := uuid.New().String()
		newIdentityID := uuid.New().String()
		now := time.Now()

		newUser := &model.User{
			ID:        newUserID,
			Email:     userInfo.Email,
			Username:  userInfo.Name,
			Timezone:  "UTC",
			CreatedAt: now,
			UpdatedAt: now,
		}

		newIdentity := &model.Identity{
			ID:             newIdentityID,
			UserID:         newUserID,
			Provider:       userInfo.Provider,
			ProviderUserID: userInfo.ProviderUserID,
			CreatedAt:      now,
		}

		if err := s.userRepo.CreateWithIdentity(ctx, newUser, newIdentity); err != nil {
			return "", nil, fmt.Errorf("failed to create user and identity: %w", err)
		}

		userID = newUserID
		slog.Info("new user created",
			slog.String("user_id", userID),
			slog.String("provider", userInfo.Provider),
		)
	}

	// 4. セッションを発行
	rawToken, session, err := s.CreateSession(ctx, userID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	return rawToken, session, nil
}

// CreateSession は新しいセッションを発行し永続化する。
// 生トークンを生成してハッシュのみを保存し、生トークンと保存済みレコードを返す。
// 書き込みは単一INSERTで原子的に行われ、中途半端な行は残らない。
func (s *Service) CreateSession(ctx context.Context, userID string) (string, *model.Session, error) {
	rawToken, err := GenerateSessionToken()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := time.Now()
	session := &model.Session{
		TokenHash: HashToken(rawToken),
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", nil, fmt.Errorf("failed to save session: %w", err)
	}

	return rawToken, session, nil
}

// ValidateSession は提示された生トークンに対応する有効なセッションを返す。
// 不在・期限切れ・失効済みはすべて (nil, nil) で区別なく返す。
// エラーは永続化層の障害のみを表し、呼び出し側は未認証として扱った上で
// システムエラーを返すこと（認証済みとして扱ってはならない）。
func (s *Service) ValidateSession(ctx context.Context, rawToken string) (*model.Session, error) {
	if rawToken == "" {
		return nil, nil
	}

	session, err := s.sessionRepo.FindByTokenHash(ctx, HashToken(rawToken))
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	// リポジトリ側でも期限切れを除外しているが、検証時点の時刻でも
	// 判定し、行が物理的に残っていても無効として扱う。
	if session.Expired(time.Now()) {
		return nil, nil
	}

	return session, nil
}

// RevokeSession は提示された生トークンに対応するセッションを失効させる。
// 冪等: 存在しない・失効済みのトークンでもエラーにならない。
func (s *Service) RevokeSession(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}

	if err := s.sessionRepo.DeleteByTokenHash(ctx, HashToken(rawToken)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("session revoked")
	return nil
}

// ResolveUser はリクエストが提示した生トークンから現在のユーザーを解決する。
// トークン不在・セッション無効・ユーザー行の不在（非同期削除でセッション行が
// 残存している場合）はいずれも (nil, nil) を返す。エラーは永続化層の障害のみ。
func (s *Service) ResolveUser(ctx context.Context, rawToken string) (*model.User, error) {
	session, err := s.ValidateSession(ctx, rawToken)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		// アカウントが削除済みでセッション行だけが残っているケース。
		// 未認証として扱う。
		return nil, nil
	}

	return user, nil
}
