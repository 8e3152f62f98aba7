package usecase

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"ppob-backend/internal/data/repository"
	"ppob-backend/pkg/cache"
	"ppob-backend/pkg/digiflazz"
	"ppob-backend/pkg/events"
	"ppob-backend/pkg/token"
	"ppob-backend/pkg/utils"
)

// ProviderClient is the part of the Digiflazz client the services use.
type ProviderClient interface {
	PriceList(ctx context.Context, cmd string) (json.RawMessage, error)
	PlaceOrder(ctx context.Context, req digiflazz.OrderRequest) (*digiflazz.OrderResult, error)
	Balance(ctx context.Context) (*digiflazz.Balance, error)
}

// Dependencies are the collaborators outside the repository layer. Nil cache,
// dedup and events fall back to their noop implementations.
type Dependencies struct {
	Tokens   *token.Manager
	Provider ProviderClient
	Cache    cache.StatusCache
	Dedup    cache.Deduper
	Events   events.Publisher
}

type Service struct {
	Token       TokenService
	Auth        AuthService
	User        UserService
	Product     ProductService
	Branch      BranchService
	Nasabah     NasabahService
	Transaction TransactionService
	Webhook     WebhookService
	Provider    ProviderService
	Report      ReportService
}

func NewService(repo *repository.Repository, config *utils.Config, deps Dependencies, log *zap.Logger) *Service {
	if deps.Cache == nil {
		deps.Cache = cache.Noop{}
	}
	if deps.Dedup == nil {
		deps.Dedup = cache.Noop{}
	}
	if deps.Events == nil {
		deps.Events = events.Noop{}
	}

	tokens := NewTokenService(deps.Tokens, repo.RefreshToken, log)
	notifier := newStatusNotifier(deps.Cache, deps.Events, log)

	return &Service{
		Token:       tokens,
		Auth:        NewAuthService(repo.User, tokens, config, log),
		User:        NewUserService(repo.User, config, log),
		Product:     NewProductService(repo.Product, log),
		Branch:      NewBranchService(repo.Branch, repo.Nasabah, log),
		Nasabah:     NewNasabahService(repo.Nasabah, repo.Branch, log),
		Transaction: NewTransactionService(repo, deps.Provider, deps.Cache, notifier, config.Digiflazz.FailOnError, log),
		Webhook:     NewWebhookService(repo.Transaction, deps.Dedup, notifier, config.Digiflazz.WebhookSecret, log),
		Provider:    NewProviderService(deps.Provider, log),
		Report:      NewReportService(repo.Report, log),
	}
}
