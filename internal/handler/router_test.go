package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/idport/internal/account"
	"github.com/hitoshi/idport/internal/handler"
	"github.com/hitoshi/idport/internal/metrics"
	"github.com/hitoshi/idport/internal/model"
	"github.com/hitoshi/idport/internal/password"
)

// memoryAccountRepo はテスト用のインメモリリポジトリ。
// ハンドル一意制約をマップで再現する。
type memoryAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*model.Account
	pingErr  error
}

func newMemoryAccountRepo() *memoryAccountRepo {
	return &memoryAccountRepo{accounts: make(map[string]*model.Account)}
}

func (r *memoryAccountRepo) Create(ctx context.Context, acc *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[acc.Handle]; exists {
		return model.NewConflictError(acc.Handle)
	}
	r.accounts[acc.Handle] = acc
	return nil
}

func (r *memoryAccountRepo) Ping(ctx context.Context) error {
	return r.pingErr
}

// newTestServer は実サービス・軽量ハッシャー・インメモリリポジトリで
// 構成したルーター一式を返す。
func newTestServer(t *testing.T) (http.Handler, *memoryAccountRepo) {
	t.Helper()

	repo := newMemoryAccountRepo()
	hasher := password.NewHasher(password.Params{
		MemoryKB:    8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	svc := account.NewService(repo, hasher)

	reg := prometheus.NewRegistry()
	deps := &handler.RouterDeps{
		RegistrationService: svc,
		Prober:              repo,
		ReadyProbeTimeout:   2 * time.Second,
		Logger:              slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Recorder:            metrics.NewCollector(reg),
		Gatherer:            reg,
	}
	return handler.NewRouter(deps), repo
}

func TestRouter_RegisterThenDuplicate(t *testing.T) {
	router, _ := newTestServer(t)

	body := `{"username":"ichiro","display_name":"Ichiro Suzuki","password":"verysecret123"}`

	// 1回目: 201
	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body)))
	if first.Result().StatusCode != http.StatusCreated {
		t.Fatalf("first registration: status = %d, want %d", first.Result().StatusCode, http.StatusCreated)
	}

	var profile map[string]interface{}
	if err := json.NewDecoder(first.Result().Body).Decode(&profile); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if profile["username"] != "ichiro" {
		t.Errorf("username = %q, want %q", profile["username"], "ichiro")
	}
	if profile["id"] == "" {
		t.Error("id should be populated")
	}

	// 2回目: 同一ハンドルは409
	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body)))
	if second.Result().StatusCode != http.StatusConflict {
		t.Fatalf("duplicate registration: status = %d, want %d", second.Result().StatusCode, http.StatusConflict)
	}

	var errResp map[string]string
	if err := json.NewDecoder(second.Result().Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if errResp["error"] != "username already taken" {
		t.Errorf("error = %q, want %q", errResp["error"], "username already taken")
	}
}

func TestRouter_RegisterStoresHashedCredential(t *testing.T) {
	router, repo := newTestServer(t)

	body := `{"username":"jiro","display_name":"Jiro","password":"plaintext-password"}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body)))
	if w.Result().StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusCreated)
	}

	stored := repo.accounts["jiro"]
	if stored == nil {
		t.Fatal("account not persisted")
	}
	if !strings.HasPrefix(stored.CredentialHash, "$argon2id$") {
		t.Errorf("credential hash should be argon2id PHC format: %q", stored.CredentialHash)
	}
	if strings.Contains(stored.CredentialHash, "plaintext-password") {
		t.Error("plaintext password must not appear in stored hash")
	}

	// レスポンスボディにもハッシュが現れないこと
	respBody := w.Body.String()
	if strings.Contains(respBody, "argon2id") {
		t.Error("credential hash must not appear in response body")
	}
}

func TestRouter_ValidationErrorThroughStack(t *testing.T) {
	router, _ := newTestServer(t)

	body := `{"username":"ab","display_name":"","password":"short"}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body)))

	resp := w.Result()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusUnprocessableEntity)
	}

	var errResp map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	// 3件の違反がすべて含まれること
	for _, want := range []string{"username", "display_name", "password"} {
		if !strings.Contains(errResp["error"], want) {
			t.Errorf("error message should mention %q: %q", want, errResp["error"])
		}
	}
}

func TestRouter_HealthEndpoints(t *testing.T) {
	router, repo := newTestServer(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("GET /healthz: status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("GET /readyz: status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	// ストア到達不能なら503
	repo.pingErr = context.DeadlineExceeded
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Result().StatusCode != http.StatusServiceUnavailable {
		t.Errorf("GET /readyz with unreachable store: status = %d, want %d",
			w.Result().StatusCode, http.StatusServiceUnavailable)
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router, _ := newTestServer(t)

	// 登録を1回成功させてからスクレイプする
	body := `{"username":"saburo","display_name":"Saburo","password":"password123"}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body)))
	if w.Result().StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusCreated)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("GET /metrics: status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	output := w.Body.String()
	if !strings.Contains(output, "idport_registrations_total") {
		t.Error("metrics output should contain idport_registrations_total")
	}
	if !strings.Contains(output, "idport_http_requests_total") {
		t.Error("metrics output should contain idport_http_requests_total")
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	router, _ := newTestServer(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/unknown", nil))
	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
}
