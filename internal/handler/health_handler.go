package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Prober はストア到達性確認のためのインターフェース。
// repository.AccountRepositoryを直接参照せず、最小限のインターフェース
// として定義する。
type Prober interface {
	// Ping はストアへの軽量な到達性確認を行う。
	Ping(ctx context.Context) error
}

// statusResponse はヘルスチェックのレスポンスボディ。
type statusResponse struct {
	Status string `json:"status"`
}

// HealthHandler はliveness/readinessプローブのHTTPハンドラー。
type HealthHandler struct {
	prober       Prober
	probeTimeout time.Duration
}

// NewHealthHandler はHealthHandlerを生成する。
// probeTimeoutはreadinessプローブの上限時間で、ストア側が応答しない
// 場合でもその時間内に503を返す。
func NewHealthHandler(prober Prober, probeTimeout time.Duration) *HealthHandler {
	return &HealthHandler{
		prober:       prober,
		probeTimeout: probeTimeout,
	}
}

// Healthz はプロセスのlivenessを報告する。依存チェックは行わず、
// プロセスが動いている限り常に200を返す。
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, statusResponse{Status: "ok"})
}

// Readyz はストア到達性を毎回プローブして報告する。
// 結果はキャッシュしない。
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.probeTimeout)
	defer cancel()

	if err := h.prober.Ping(ctx); err != nil {
		slog.Warn("readiness probe failed", slog.String("error", err.Error()))
		writeJSONResponse(w, http.StatusServiceUnavailable, statusResponse{Status: "unavailable"})
		return
	}

	writeJSONResponse(w, http.StatusOK, statusResponse{Status: "ok"})
}
