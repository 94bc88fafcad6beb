package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/takumi/authman/internal/model"
)

// PostgresSessionRepo はPostgreSQLを使用したセッションリポジトリ。
// セッションはtoken_hash（生トークンのSHA-256）をキーとして保存する。
type PostgresSessionRepo struct {
	db *sql.DB
}

// NewPostgresSessionRepo はPostgresSessionRepoを生成する。
func NewPostgresSessionRepo(db *sql.DB) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db}
}

// Create はセッションを作成する。
// token_hashが主キーのため、INSERTは原子的なinsert-if-absentとなる。
func (r *PostgresSessionRepo) Create(ctx context.Context, session *model.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (token_hash, user_id, issued_at, expires_at)
		 VALUES ($1, $2, $3, $4)`,
		session.TokenHash, session.UserID, session.IssuedAt, session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByTokenHash は指定ハッシュのセッションを取得する。
// 見つからない場合・期限切れの場合はnilを返す。
// 期限切れ判定はクエリ内で行い、行が物理的に残っていても無効として扱う。
func (r *PostgresSessionRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error) {
	session := &model.Session{}
	var lastSeenAt sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT token_hash, user_id, issued_at, expires_at, last_seen_at
		 FROM sessions
		 WHERE token_hash = $1 AND expires_at > now()`,
		tokenHash,
	).Scan(&session.TokenHash, &session.UserID, &session.IssuedAt, &session.ExpiresAt, &lastSeenAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	if lastSeenAt.Valid {
		session.LastSeenAt = &lastSeenAt.Time
	}
	return session, nil
}

// DeleteByTokenHash は指定ハッシュのセッションを削除する。
// 冪等: 対象が存在しない場合もエラーにならない。
func (r *PostgresSessionRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE token_hash = $1`,
		tokenHash,
	)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteByUserID は指定ユーザーの全セッションを削除する。
func (r *PostgresSessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
func (r *PostgresSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= now()`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// compile-time interface check
var _ SessionRepository = (*PostgresSessionRepo)(nil)
