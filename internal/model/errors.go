// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"strings"
)

// ErrorKind はアプリケーションエラーの分類を表す。
// ハンドラー層でHTTPステータスコードへ変換される。
type ErrorKind string

const (
	// KindValidation はクライアント入力の検証エラー（422）。
	KindValidation ErrorKind = "validation"
	// KindConflict はハンドル重複などの一意性制約違反（409）。
	KindConflict ErrorKind = "conflict"
	// KindUnauthorized は認証エラー（401）。現状の登録フローでは
	// 到達しない。将来のフロー向けに予約。
	KindUnauthorized ErrorKind = "unauthorized"
	// KindDatabase は一意性違反以外のストア障害（500）。
	KindDatabase ErrorKind = "database"
	// KindInternal はハッシュ化失敗等の未分類の内部エラー（500）。
	KindInternal ErrorKind = "internal"
)

// AppError は統一エラーフォーマットを表す。
// Messageはクライアントに返してよい文言のみを持ち、
// DatabaseとInternalの原因（Cause）はログにのみ出力する。
type AppError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// Error はerrorインターフェースを実装する。
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap はerrors.Is / errors.As のために原因エラーを返す。
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewValidationError は検証エラーを生成する。
// violationsは各フィールドの違反内容で、"; "で連結して返す。
func NewValidationError(violations []string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Message: strings.Join(violations, "; "),
	}
}

// NewConflictError はハンドル重複エラーを生成する。
// レスポンス文言は固定とし、重複したハンドルはCauseとしてログにのみ残す。
func NewConflictError(handle string) *AppError {
	return &AppError{
		Kind:    KindConflict,
		Message: "username already taken",
		Cause:   fmt.Errorf("handle %q already exists", handle),
	}
}

// NewDatabaseError はストア障害エラーを生成する。
// クライアントには一般的なメッセージのみを返す。
func NewDatabaseError(cause error) *AppError {
	return &AppError{
		Kind:    KindDatabase,
		Message: "internal server error",
		Cause:   cause,
	}
}

// NewInternalError は内部エラーを生成する。
// クライアントには一般的なメッセージのみを返す。
func NewInternalError(cause error) *AppError {
	return &AppError{
		Kind:    KindInternal,
		Message: "internal server error",
		Cause:   cause,
	}
}
