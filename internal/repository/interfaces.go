// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"

	"github.com/takumi/authman/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するidentitiesはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// IdentityRepository は外部IdP紐付け情報の永続化インターフェース。
type IdentityRepository interface {
	// FindByProviderAndProviderUserID はproviderとprovider_user_idでidentityを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
// セッション行の所有者は本リポジトリのみであり、他のコンポーネントは
// ここを経由せずに行を変更しない。
type SessionRepository interface {
	// Create はセッションを作成する。単一のINSERTで原子的に書き込む。
	Create(ctx context.Context, session *model.Session) error
	// FindByTokenHash は指定ハッシュのセッションを取得する。
	// 見つからない場合・期限切れの場合はnilを返し、両者を区別しない。
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error)
	// DeleteByTokenHash は指定ハッシュのセッションを削除する。
	// 冪等: 対象が存在しない場合もエラーにならない。
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	// 正当性は検証時の遅延判定が担保するため、これはハウスキーピング専用。
	DeleteExpired(ctx context.Context) (int64, error)
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
