// Package model はドメインモデルを定義する。
package model

import "time"

// Account は登録済みアカウントを表す永続エンティティ。
// CredentialHashはArgon2idでエンコードされた不可逆表現であり、
// APIレスポンスには決して含めない。
type Account struct {
	ID             string
	Handle         string
	DisplayName    string
	CredentialHash string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RegistrationRequest は登録リクエストのリクエストスコープなデータ。
// Passwordは平文であり、ハッシュ化が完了した時点で以降の処理に
// 引き渡してはならない。永続化・ログ出力も禁止。
type RegistrationRequest struct {
	Handle      string
	DisplayName string
	Password    string
}

// AccountProfile はAccountの公開サブセット。
// 構造上CredentialHashを持たないため、レスポンスにハッシュが
// 混入することはない。
type AccountProfile struct {
	ID          string    `json:"id"`
	Handle      string    `json:"username"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewAccountProfile はAccountから公開プロフィールへ射影する。
func NewAccountProfile(a *Account) AccountProfile {
	return AccountProfile{
		ID:          a.ID,
		Handle:      a.Handle,
		DisplayName: a.DisplayName,
		CreatedAt:   a.CreatedAt,
	}
}
