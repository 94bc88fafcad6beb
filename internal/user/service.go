// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/takumi/authman/internal/model"
	"github.com/takumi/authman/internal/repository"
)

// Service はユーザー管理のサービス層。
// 退会処理のビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
	}
}

// Withdraw はユーザーの退会処理を実行する。
// 削除順序: sessions → user（+ CASCADE: identities）
// 先に全セッションを失効させ、退会後に既存Cookieでアクセスできないようにする。
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	// ユーザー存在確認
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	slog.Info("user withdrawal started", slog.String("user_id", userID))

	// 全セッションを失効
	if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}

	// ユーザーを削除（identitiesはCASCADE削除）
	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	slog.Info("user withdrawal completed", slog.String("user_id", userID))
	return nil
}
