// Package account はアカウント登録のドメインロジックを提供する。
package account

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/idport/internal/model"
	"github.com/hitoshi/idport/internal/repository"
)

// CredentialHasher はパスワードの不可逆ハッシュ化インターフェース。
type CredentialHasher interface {
	// Hash は平文パスワードをソルト付きの自己記述文字列へ変換する。
	Hash(plaintext string) (string, error)
}

// Service はアカウント登録のサービス層。
// リクエストをまたぐ可変状態を持たないため、ロックなしで
// 複数ゴルーチンから同時に利用できる。
type Service struct {
	repo   repository.AccountRepository
	hasher CredentialHasher
}

// NewService はServiceを生成する。
func NewService(repo repository.AccountRepository, hasher CredentialHasher) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
	}
}

// Register は登録リクエストを処理する。
// 検証 → ハッシュ化 → 永続化の順に進み、失敗はすべてそのリクエストで
// 終端となる（リトライしない）。平文パスワードはハッシュ化完了後の
// 処理には引き渡されない。
func (s *Service) Register(ctx context.Context, req model.RegistrationRequest) (*model.Account, error) {
	// 1. display_nameのマークアップ除去と構造検証（短絡せず全件蓄積）
	displayName := SanitizeDisplayName(req.DisplayName)

	if violations := Validate(req.Handle, displayName, req.Password); len(violations) > 0 {
		return nil, model.NewValidationError(violations)
	}

	// 2. ハッシュ化。以降の処理は平文に触れない。
	credentialHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, model.NewInternalError(err)
	}

	// 3. 永続化。handleの一意性はストアのUNIQUE制約のみで保証される。
	now := time.Now().UTC()
	acc := &model.Account{
		ID:             uuid.New().String(),
		Handle:         req.Handle,
		DisplayName:    displayName,
		CredentialHash: credentialHash,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, acc); err != nil {
		return nil, err
	}

	slog.Info("account registered",
		slog.String("account_id", acc.ID),
		slog.String("handle", acc.Handle),
	)

	return acc, nil
}
