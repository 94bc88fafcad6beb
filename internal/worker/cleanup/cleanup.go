// Package cleanup は期限切れセッションの自動削除ジョブを提供する。
// 正当性は検証時の遅延判定が担保しており、このジョブは
// ストレージ肥大を防ぐためのハウスキーピングに過ぎない。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/takumi/authman/internal/repository"
)

// CleanupJob は期限切れセッションの自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	sessionRepo repository.SessionRepository
	logger      *slog.Logger
}

// NewCleanupJob は新しいCleanupJobを生成する。
func NewCleanupJob(sessionRepo repository.SessionRepository, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		sessionRepo: sessionRepo,
		logger:      logger,
	}
}

// Run は期限切れセッションを削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	deleted, err := j.sessionRepo.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("session cleanup job failed",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to run session cleanup: %w", err)
	}

	j.logger.Info("session cleanup job completed",
		slog.Int64("deleted_count", deleted),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)

	return nil
}
