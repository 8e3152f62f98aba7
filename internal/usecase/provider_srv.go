package usecase

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"ppob-backend/internal/dto/response"
)

type ProviderService interface {
	// PriceList returns the provider price list unchanged; cmd is "prepaid"
	// (default) or "pasca".
	PriceList(ctx context.Context, cmd string) (json.RawMessage, error)
	Balance(ctx context.Context) (*response.BalanceResponse, error)
}

type providerService struct {
	client ProviderClient
	log    *zap.Logger
}

func NewProviderService(client ProviderClient, log *zap.Logger) ProviderService {
	return &providerService{
		client: client,
		log:    log.With(zap.String("service", "provider")),
	}
}

func (s *providerService) PriceList(ctx context.Context, cmd string) (json.RawMessage, error) {
	if cmd != "" && cmd != "prepaid" && cmd != "pasca" {
		return nil, validationError(map[string]string{"cmd": "Must be one of: prepaid, pasca"})
	}

	raw, err := s.client.PriceList(ctx, cmd)
	if err != nil {
		s.log.Error("Failed to fetch price list", zap.Error(err))
		return nil, &Error{Kind: ErrUpstream, Message: "failed to fetch price list"}
	}
	return raw, nil
}

func (s *providerService) Balance(ctx context.Context) (*response.BalanceResponse, error) {
	bal, err := s.client.Balance(ctx)
	if err != nil {
		s.log.Error("Failed to check provider balance", zap.Error(err))
		return nil, &Error{Kind: ErrUpstream, Message: "failed to check balance"}
	}
	return &response.BalanceResponse{Deposit: bal.Deposit, CheckedAt: bal.CheckedAt}, nil
}
