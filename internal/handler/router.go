package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/idport/internal/metrics"
	"github.com/hitoshi/idport/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// 登録
	RegistrationService RegistrationServiceInterface

	// ヘルスチェック
	Prober            Prober
	ReadyProbeTimeout time.Duration

	// 可観測性
	Logger   *slog.Logger
	Recorder metrics.Recorder
	Gatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを
// 構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RecoveryMiddleware → LoggingMiddleware → MetricsMiddleware
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewMetricsMiddleware(deps.Recorder))

	authHandler := NewAuthHandler(deps.RegistrationService, deps.Recorder)
	healthHandler := NewHealthHandler(deps.Prober, deps.ReadyProbeTimeout)

	// ヘルスチェック
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// アカウント登録
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
	})

	// Prometheusスクレイプ
	r.Handle("/metrics", metrics.Handler(deps.Gatherer))

	return r
}
