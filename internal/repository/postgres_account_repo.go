package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/hitoshi/idport/internal/model"
)

// uniqueViolation はPostgreSQLのSQLSTATE 23505（unique_violation）。
// 制約名の文字列一致ではなくエラークラスで判定することで、
// スキーマの命名変更に影響されない。
const uniqueViolation = pq.ErrorCode("23505")

// PostgresAccountRepo はPostgreSQLを使用したアカウントリポジトリ。
type PostgresAccountRepo struct {
	db *sql.DB
}

// NewPostgresAccountRepo はPostgresAccountRepoを生成する。
func NewPostgresAccountRepo(db *sql.DB) *PostgresAccountRepo {
	return &PostgresAccountRepo{db: db}
}

// Create はアカウントを作成する。
// handleの一意性はaccountsテーブルのUNIQUE制約のみで保証され、
// 同時登録でも成功は厳密に1件となる。
func (r *PostgresAccountRepo) Create(ctx context.Context, account *model.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, handle, display_name, credential_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		account.ID, account.Handle, account.DisplayName, account.CredentialHash,
		account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return classifyInsertError(err, account.Handle)
	}

	return nil
}

// Ping はストアへの到達性を確認する。
func (r *PostgresAccountRepo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return model.NewDatabaseError(err)
	}
	return nil
}

// classifyInsertError はINSERT失敗をConflictとDatabaseに分類する。
func classifyInsertError(err error, handle string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return model.NewConflictError(handle)
	}
	return model.NewDatabaseError(err)
}

// compile-time interface check
var _ AccountRepository = (*PostgresAccountRepo)(nil)
