package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/takumi/authman/internal/model"
)

// PostgresIdentityRepo はidentitiesテーブルへのアクセスを提供する。
// identityは外部IdP上のアカウントとローカルユーザーの対応を表し、
// (provider, provider_user_id) の組で一意になる。
type PostgresIdentityRepo struct {
	db *sql.DB
}

// NewPostgresIdentityRepo はPostgresIdentityRepoを生成する。
func NewPostgresIdentityRepo(db *sql.DB) *PostgresIdentityRepo {
	return &PostgresIdentityRepo{db: db}
}

// FindByProviderAndProviderUserID は (provider, provider_user_id) でidentityを
// 検索する。未登録（初回ログイン）の場合は (nil, nil) を返す。
func (r *PostgresIdentityRepo) FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error) {
	const query = `
		SELECT id, user_id, provider, provider_user_id, created_at
		FROM identities
		WHERE provider = $1 AND provider_user_id = $2`

	identity := &model.Identity{}
	err := r.db.QueryRowContext(ctx, query, provider, providerUserID).Scan(
		&identity.ID,
		&identity.UserID,
		&identity.Provider,
		&identity.ProviderUserID,
		&identity.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}

	return identity, nil
}

// compile-time interface check
var _ IdentityRepository = (*PostgresIdentityRepo)(nil)
