// Package handler はHTTPハンドラーとルーティングを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/idport/internal/metrics"
	"github.com/hitoshi/idport/internal/model"
)

// RegistrationServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type RegistrationServiceInterface interface {
	// Register は登録リクエストを検証・ハッシュ化・永続化する。
	Register(ctx context.Context, req model.RegistrationRequest) (*model.Account, error)
}

// AuthHandler はアカウント登録のHTTPハンドラー。
type AuthHandler struct {
	service  RegistrationServiceInterface
	recorder metrics.Recorder
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service RegistrationServiceInterface, recorder metrics.Recorder) *AuthHandler {
	return &AuthHandler{
		service:  service,
		recorder: recorder,
	}
}

// registerRequest は登録リクエストのボディ。
type registerRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

// errorResponse は統一エラーフォーマットのレスポンス。
type errorResponse struct {
	Error string `json:"error"`
}

// Register はアカウント登録を処理する。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.recorder.RecordRegistrationFailure(metrics.ReasonValidation)
		writeErrorResponse(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	acc, err := h.service.Register(r.Context(), model.RegistrationRequest{
		Handle:      req.Username,
		DisplayName: req.DisplayName,
		Password:    req.Password,
	})
	if err != nil {
		h.handleRegisterError(w, err)
		return
	}

	h.recorder.RecordRegistration()

	// レスポンスはAccountProfileへの射影のみ。credential_hashは
	// 構造上含まれない。
	writeJSONResponse(w, http.StatusCreated, model.NewAccountProfile(acc))
}

// handleRegisterError はサービス層のエラーをHTTPレスポンスに変換する。
// ValidationとConflictは具体的なメッセージを返し、Database/Internalは
// 詳細をログにのみ残して一般的なメッセージを返す。
func (h *AuthHandler) handleRegisterError(w http.ResponseWriter, err error) {
	var appErr *model.AppError
	if !errors.As(err, &appErr) {
		appErr = model.NewInternalError(err)
	}

	switch appErr.Kind {
	case model.KindValidation:
		h.recorder.RecordRegistrationFailure(metrics.ReasonValidation)
	case model.KindConflict:
		h.recorder.RecordRegistrationFailure(metrics.ReasonConflict)
	default:
		h.recorder.RecordRegistrationFailure(metrics.ReasonInternal)
		// 原因はサーバー側にのみ記録する
		slog.Error("registration failed",
			slog.String("kind", string(appErr.Kind)),
			slog.String("error", appErr.Error()),
		)
	}

	writeErrorResponse(w, mapAppErrorToHTTPStatus(appErr), appErr.Message)
}

// mapAppErrorToHTTPStatus はAppErrorの分類からHTTPステータスコードにマッピングする。
func mapAppErrorToHTTPStatus(appErr *model.AppError) int {
	switch appErr.Kind {
	case model.KindValidation:
		return http.StatusUnprocessableEntity
	case model.KindConflict:
		return http.StatusConflict
	case model.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		// KindDatabase / KindInternal / 未分類
		return http.StatusInternalServerError
	}
}

// --- ヘルパー関数 ---

// writeJSONResponse はJSONレスポンスを書き込む。
func writeJSONResponse(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// writeErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	writeJSONResponse(w, statusCode, errorResponse{Error: message})
}
