package wire

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"ppob-backend/internal/data/entity"
	"ppob-backend/internal/data/repository"
	"ppob-backend/internal/usecase"
	"ppob-backend/pkg/cache"
	"ppob-backend/pkg/digiflazz"
	"ppob-backend/pkg/token"
	"ppob-backend/pkg/utils"
)

type stubProvider struct {
	order func(req digiflazz.OrderRequest) (*digiflazz.OrderResult, error)
}

func (s *stubProvider) PriceList(context.Context, string) (json.RawMessage, error) {
	return json.RawMessage(`{"data":[]}`), nil
}

func (s *stubProvider) PlaceOrder(_ context.Context, req digiflazz.OrderRequest) (*digiflazz.OrderResult, error) {
	if s.order == nil {
		return nil, errors.New("no order stub")
	}
	return s.order(req)
}

func (s *stubProvider) Balance(context.Context) (*digiflazz.Balance, error) {
	return &digiflazz.Balance{Deposit: decimal.NewFromInt(100000), CheckedAt: time.Now()}, nil
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t        *testing.T
	router   http.Handler
	repo     *repository.Repository
	provider *stubProvider
}

func newTestServer(t *testing.T, opts ...func(*utils.Config)) *testServer {
	t.Helper()

	config := &utils.Config{
		App:       utils.AppConfig{Name: "ppob-test", Storage: "memory", CORSOrigins: []string{"*"}},
		JWT:       utils.JWTConfig{Secret: "test-secret", AccessTTL: time.Minute, RefreshTTL: time.Hour},
		Security:  utils.SecurityConfig{BcryptCost: bcrypt.MinCost},
		Digiflazz: utils.DigiflazzConfig{FailOnError: true},
		RateLimit: utils.RateLimitConfig{RPS: 100, Burst: 100},
	}
	for _, opt := range opts {
		opt(config)
	}
	repo := repository.NewMemoryRepository()
	provider := &stubProvider{}
	mem := cache.NewMemory()

	app := Wiring(repo, config, usecase.Dependencies{
		Tokens:   token.NewManager(config.JWT.Secret, config.JWT.AccessTTL, config.JWT.RefreshTTL),
		Provider: provider,
		Cache:    mem,
		Dedup:    mem,
	}, zap.NewNop())

	return &testServer{t: t, router: app.Router, repo: repo, provider: provider}
}

func (s *testServer) do(method, path, bearer string, body any) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	return s.doWithHeaders(method, path, bearer, body, nil)
}

func (s *testServer) doWithHeaders(method, path, bearer string, body any, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			if err := json.NewEncoder(&buf).Encode(b); err != nil {
				s.t.Fatal(err)
			}
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

// seedUser inserts a verified user and logs in through the API.
func (s *testServer) seedUser(role entity.UserRole) (string, *entity.User) {
	s.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
	if err != nil {
		s.t.Fatal(err)
	}
	now := time.Now()
	name := "u_" + uuid.NewString()[:8]
	u := &entity.User{
		Base:         entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
		Status:       entity.UserStatusVerified,
	}
	if err := s.repo.User.Create(context.Background(), u); err != nil {
		s.t.Fatal(err)
	}

	rec, env := s.do(http.MethodPost, "/auth/login", "", map[string]string{
		"email":    u.Email,
		"password": "rahasia123",
	})
	if rec.Code != http.StatusOK {
		s.t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var auth struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(env.Data, &auth); err != nil || auth.AccessToken == "" {
		s.t.Fatalf("login response without access token: %s", rec.Body.String())
	}
	return auth.AccessToken, u
}

func (s *testServer) seedProduct(sku string) *entity.Product {
	s.t.Helper()
	now := time.Now()
	p := &entity.Product{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		IDProvider:   sku,
		Name:         "Produk " + sku,
		Category:     "Pulsa",
		BasePrice:    decimal.NewFromInt(10000),
		SellingPrice: decimal.NewFromInt(11500),
	}
	p.RecalculateProfit()
	if err := s.repo.Product.Create(context.Background(), p); err != nil {
		s.t.Fatal(err)
	}
	return p
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec, env := s.do(http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK || !env.Status {
		t.Fatalf("health = %d %s", rec.Code, rec.Body.String())
	}
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	userToken, _ := s.seedUser(entity.RoleUser)
	adminToken, _ := s.seedUser(entity.RoleAdmin)

	tests := []struct {
		name   string
		method string
		path   string
		bearer string
		want   int
	}{
		{"users anonymous", http.MethodGet, "/users", "", http.StatusUnauthorized},
		{"users as user", http.MethodGet, "/users", userToken, http.StatusForbidden},
		{"users as admin", http.MethodGet, "/users", adminToken, http.StatusOK},
		{"branch as user", http.MethodGet, "/api/branch", userToken, http.StatusForbidden},
		{"branch as admin", http.MethodGet, "/api/branch", adminToken, http.StatusOK},
		{"nasabah as admin", http.MethodGet, "/api/nasabah", adminToken, http.StatusOK},
		{"reports as user", http.MethodGet, "/reports/dashboard", userToken, http.StatusForbidden},
		{"reports as admin", http.MethodGet, "/reports/dashboard", adminToken, http.StatusOK},
		{"balance as user", http.MethodGet, "/digiflazz/balance", userToken, http.StatusForbidden},
		{"balance as admin", http.MethodGet, "/digiflazz/balance", adminToken, http.StatusOK},
		{"pricelist as user", http.MethodGet, "/digiflazz/pricelist", userToken, http.StatusOK},
		{"products public", http.MethodGet, "/products", "", http.StatusOK},
		{"create product as user", http.MethodPost, "/products", userToken, http.StatusForbidden},
		{"transactions anonymous", http.MethodGet, "/transactions", "", http.StatusUnauthorized},
		{"transactions as user", http.MethodGet, "/transactions", userToken, http.StatusOK},
		{"garbage token", http.MethodGet, "/auth/me", "not-a-jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := s.do(tt.method, tt.path, tt.bearer, nil)
			if rec.Code != tt.want {
				t.Errorf("%s %s = %d, want %d (body %s)", tt.method, tt.path, rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestOrderThenWebhook(t *testing.T) {
	s := newTestServer(t)
	userToken, _ := s.seedUser(entity.RoleUser)
	p := s.seedProduct("xld10")

	s.provider.order = func(req digiflazz.OrderRequest) (*digiflazz.OrderResult, error) {
		raw := []byte(`{"data":{"ref_id":"` + req.RefID + `","status":"Pending","message":"Transaksi Pending"}}`)
		return &digiflazz.OrderResult{
			Data: digiflazz.OrderData{RefID: req.RefID, Status: "Pending", Message: "Transaksi Pending"},
			Raw:  raw,
		}, nil
	}

	rec, env := s.do(http.MethodPost, "/transactions/order", userToken, map[string]string{
		"product_id":  p.ID.String(),
		"customer_no": "081234567890",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("order = %d %s", rec.Code, rec.Body.String())
	}
	var order struct {
		Transaction struct {
			RefID  string `json:"ref_id"`
			Status string `json:"status"`
		} `json:"transaction"`
	}
	if err := json.Unmarshal(env.Data, &order); err != nil {
		t.Fatal(err)
	}
	if order.Transaction.Status != entity.TransactionStatusPending {
		t.Fatalf("status = %q, want %q", order.Transaction.Status, entity.TransactionStatusPending)
	}
	refID := order.Transaction.RefID

	callback := `{"data":{"ref_id":"` + refID + `","status":"Sukses","sn":"SN-123","message":"Transaksi Sukses"}}`
	rec, _ = s.do(http.MethodPost, "/api/digiflazz/webhook", "", callback)
	if rec.Code != http.StatusOK {
		t.Fatalf("webhook = %d %s", rec.Code, rec.Body.String())
	}

	rec, env = s.do(http.MethodGet, "/transactions/ref/"+refID+"/status", userToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status by ref = %d %s", rec.Code, rec.Body.String())
	}
	var status struct {
		Status string `json:"status"`
		SN     string `json:"sn"`
	}
	if err := json.Unmarshal(env.Data, &status); err != nil {
		t.Fatal(err)
	}
	if status.Status != entity.TransactionStatusSukses || status.SN != "SN-123" {
		t.Errorf("after webhook = %+v", status)
	}

	// stale pending after success is acknowledged but ignored
	stale := `{"data":{"ref_id":"` + refID + `","status":"Pending","message":"late"}}`
	rec, env = s.do(http.MethodPost, "/transactions/callback/digiflazz", "", stale)
	if rec.Code != http.StatusOK {
		t.Fatalf("stale webhook = %d %s", rec.Code, rec.Body.String())
	}
	var ack struct {
		Applied bool   `json:"applied"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &ack); err != nil {
		t.Fatal(err)
	}
	if ack.Applied || ack.Status != entity.TransactionStatusSukses {
		t.Errorf("stale ack = %+v", ack)
	}
}

func TestWebhookErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"data":`, http.StatusBadRequest},
		{"missing ref id", `{"data":{"status":"Sukses"}}`, http.StatusBadRequest},
		{"unknown ref id", `{"data":{"ref_id":"trx_nope","status":"Sukses"}}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := s.do(http.MethodPost, "/digiflazz/webhook", "", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestOrderProviderFailure(t *testing.T) {
	s := newTestServer(t)
	userToken, u := s.seedUser(entity.RoleUser)
	s.seedProduct("tsel5")

	s.provider.order = func(digiflazz.OrderRequest) (*digiflazz.OrderResult, error) {
		return nil, errors.New("connection refused")
	}

	rec, _ := s.do(http.MethodPost, "/transactions/order", userToken, map[string]string{
		"buyer_sku_code": "tsel5",
		"customer_no":    "0812",
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("order = %d, want 500 (body %s)", rec.Code, rec.Body.String())
	}

	list, err := s.repo.Transaction.FindAll(context.Background(), repository.TransactionFilter{UserID: &u.ID}, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Status != entity.TransactionStatusFailed {
		t.Fatalf("transactions after failure = %+v", list)
	}
}

func TestAuthRateLimitIgnoresForwardedFor(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		wantSecond int
	}{
		{"direct clients", false, http.StatusTooManyRequests},
		{"behind trusted proxy", true, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, func(c *utils.Config) {
				c.RateLimit = utils.RateLimitConfig{RPS: 0.001, Burst: 1}
				c.App.TrustProxy = tt.trustProxy
			})
			login := map[string]string{"email": "nobody@example.com", "password": "salah123"}

			rec, _ := s.doWithHeaders(http.MethodPost, "/auth/login", "", login,
				map[string]string{"X-Forwarded-For": "203.0.113.1"})
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("first attempt = %d, want 401", rec.Code)
			}

			rec, _ = s.doWithHeaders(http.MethodPost, "/auth/login", "", login,
				map[string]string{"X-Forwarded-For": "203.0.113.2"})
			if rec.Code != tt.wantSecond {
				t.Errorf("second attempt = %d, want %d", rec.Code, tt.wantSecond)
			}
		})
	}
}
