package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"ppob-backend/internal/data/entity"
	"ppob-backend/internal/data/repository"
	"ppob-backend/pkg/cache"
	"ppob-backend/pkg/digiflazz"
	"ppob-backend/pkg/events"
	"ppob-backend/pkg/token"
	"ppob-backend/pkg/utils"
)

// fakeProvider stands in for the Digiflazz client; nil funcs fail the test.
type fakeProvider struct {
	t          *testing.T
	placeOrder func(ctx context.Context, req digiflazz.OrderRequest) (*digiflazz.OrderResult, error)
	priceList  func(ctx context.Context, cmd string) (json.RawMessage, error)
	balance    func(ctx context.Context) (*digiflazz.Balance, error)
}

func (f *fakeProvider) PlaceOrder(ctx context.Context, req digiflazz.OrderRequest) (*digiflazz.OrderResult, error) {
	if f.placeOrder == nil {
		f.t.Fatal("unexpected PlaceOrder call")
	}
	return f.placeOrder(ctx, req)
}

func (f *fakeProvider) PriceList(ctx context.Context, cmd string) (json.RawMessage, error) {
	if f.priceList == nil {
		f.t.Fatal("unexpected PriceList call")
	}
	return f.priceList(ctx, cmd)
}

func (f *fakeProvider) Balance(ctx context.Context) (*digiflazz.Balance, error) {
	if f.balance == nil {
		f.t.Fatal("unexpected Balance call")
	}
	return f.balance(ctx)
}

type publishedEvent struct {
	Type    string
	Payload events.TransactionPayload
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, payload events.TransactionPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: eventType, Payload: payload})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type testEnv struct {
	svc      *Service
	repo     *repository.Repository
	provider *fakeProvider
	cache    *cache.Memory
	events   *recordingPublisher
	config   *utils.Config
}

type envOption func(*utils.Config)

func withWebhookSecret(secret string) envOption {
	return func(c *utils.Config) { c.Digiflazz.WebhookSecret = secret }
}

func withoutCompensation() envOption {
	return func(c *utils.Config) { c.Digiflazz.FailOnError = false }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	config := &utils.Config{
		App:       utils.AppConfig{Name: "ppob-test", Storage: "memory"},
		JWT:       utils.JWTConfig{Secret: "test-secret", AccessTTL: time.Minute, RefreshTTL: time.Hour},
		Security:  utils.SecurityConfig{BcryptCost: bcrypt.MinCost},
		Digiflazz: utils.DigiflazzConfig{FailOnError: true},
	}
	for _, opt := range opts {
		opt(config)
	}

	env := &testEnv{
		repo:     repository.NewMemoryRepository(),
		provider: &fakeProvider{t: t},
		cache:    cache.NewMemory(),
		events:   &recordingPublisher{},
		config:   config,
	}
	env.rebuild()
	return env
}

// rebuild recreates the services, picking up repositories swapped on e.repo.
func (e *testEnv) rebuild() {
	e.svc = NewService(e.repo, e.config, Dependencies{
		Tokens:   token.NewManager(e.config.JWT.Secret, e.config.JWT.AccessTTL, e.config.JWT.RefreshTTL),
		Provider: e.provider,
		Cache:    e.cache,
		Dedup:    e.cache,
		Events:   e.events,
	}, zap.NewNop())
}

func (e *testEnv) seedUser(t *testing.T, role entity.UserRole) *entity.User {
	t.Helper()
	now := time.Now()
	u := &entity.User{
		Base:     entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Username: "user_" + uuid.NewString()[:8],
		Role:     role,
		Status:   entity.UserStatusVerified,
	}
	u.Email = u.Username + "@example.com"
	if err := e.repo.User.Create(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	return u
}

func (e *testEnv) seedProduct(t *testing.T, sku string, base, selling int64) *entity.Product {
	t.Helper()
	now := time.Now()
	p := &entity.Product{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		IDProvider:   sku,
		Name:         "Produk " + sku,
		Category:     "Pulsa",
		BasePrice:    decimal.NewFromInt(base),
		SellingPrice: decimal.NewFromInt(selling),
	}
	p.RecalculateProfit()
	if err := e.repo.Product.Create(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	return p
}

func identityOf(u *entity.User) utils.Identity {
	return utils.Identity{UserID: u.ID, Role: string(u.Role)}
}

func assertKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("error = %v, want kind %v", err, kind)
	}
}
