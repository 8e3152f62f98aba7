package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ppob-backend/internal/data/entity"
	"ppob-backend/internal/data/repository"
	"ppob-backend/pkg/token"
)

// TokenService issues access tokens and tracks refresh tokens in storage.
type TokenService interface {
	SignAccess(user *entity.User) (string, time.Time, error)
	VerifyAccess(raw string) (*token.AccessClaims, error)
	CreateRefresh(ctx context.Context, userID uuid.UUID) (string, time.Time, error)
	FindRefresh(ctx context.Context, raw string) (*entity.RefreshToken, error)
	// RevokeRefresh reports whether this call revoked the token; false means
	// it was unknown or already revoked.
	RevokeRefresh(ctx context.Context, raw string) (bool, error)
	// VerifyRefresh checks the JWT part of a refresh token and returns its user id.
	VerifyRefresh(raw string) (uuid.UUID, error)
	PruneExpired(ctx context.Context) (int64, error)
}

type tokenService struct {
	manager *token.Manager
	repo    repository.RefreshTokenRepository
	log     *zap.Logger
}

func NewTokenService(manager *token.Manager, repo repository.RefreshTokenRepository, log *zap.Logger) TokenService {
	return &tokenService{
		manager: manager,
		repo:    repo,
		log:     log.With(zap.String("service", "token")),
	}
}

func (s *tokenService) SignAccess(user *entity.User) (string, time.Time, error) {
	return s.manager.SignAccess(token.AccessClaims{UserID: user.ID, Role: string(user.Role)})
}

func (s *tokenService) VerifyAccess(raw string) (*token.AccessClaims, error) {
	return s.manager.VerifyAccess(raw)
}

func (s *tokenService) VerifyRefresh(raw string) (uuid.UUID, error) {
	return s.manager.VerifyRefresh(raw)
}

func (s *tokenService) CreateRefresh(ctx context.Context, userID uuid.UUID) (string, time.Time, error) {
	raw, expiresAt, err := s.manager.SignRefresh(userID)
	if err != nil {
		return "", time.Time{}, err
	}

	rt := &entity.RefreshToken{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		Token:     raw,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	if err := s.repo.Create(ctx, rt); err != nil {
		return "", time.Time{}, fmt.Errorf("store refresh token: %w", err)
	}

	return raw, expiresAt, nil
}

func (s *tokenService) FindRefresh(ctx context.Context, raw string) (*entity.RefreshToken, error) {
	return s.repo.FindByToken(ctx, raw)
}

func (s *tokenService) RevokeRefresh(ctx context.Context, raw string) (bool, error) {
	n, err := s.repo.Revoke(ctx, raw)
	if err != nil {
		return false, err
	}
	s.log.Debug("Refresh token revoked", zap.Int64("rows", n))
	return n > 0, nil
}

func (s *tokenService) PruneExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("Expired refresh tokens removed", zap.Int64("count", n))
	}
	return n, nil
}
