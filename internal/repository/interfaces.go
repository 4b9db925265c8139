// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/idport/internal/model"
)

// AccountRepository はアカウントデータの永続化インターフェース。
type AccountRepository interface {
	// Create はアカウントを1回のINSERTで作成する。
	// handleの重複はストアのUNIQUE制約違反として検出し、
	// model.KindConflictのAppErrorを返す。事前の存在チェックは行わない
	// （チェックとINSERTの間のレースを排除するため）。
	// その他のストア障害はmodel.KindDatabaseのAppErrorを返す。
	Create(ctx context.Context, account *model.Account) error

	// Ping はストアへの軽量な到達性確認を行う。
	// readiness報告専用であり、アプリケーションデータには影響しない。
	Ping(ctx context.Context) error
}
