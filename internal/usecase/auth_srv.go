package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ppob-backend/internal/data/entity"
	"ppob-backend/internal/data/repository"
	"ppob-backend/internal/dto/request"
	"ppob-backend/internal/dto/response"
	"ppob-backend/pkg/utils"
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	// Refresh rotates a refresh token: a new pair is issued and the presented
	// token is revoked.
	Refresh(ctx context.Context, refreshToken string) (*response.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
}

type authService struct {
	users  repository.UserRepository
	tokens TokenService
	config *utils.Config
	log    *zap.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens TokenService,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		users:  users,
		tokens: tokens,
		config: config,
		log:    log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error) {
	// 1. Validasi input
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if err := validate(req); err != nil {
		s.log.Warn("Register validation failed", zap.Error(err))
		return nil, err
	}

	// 2-4. Cek duplikat, hash password, simpan user
	user, err := createUser(ctx, s.users, s.config.Security.BcryptCost, s.log, newUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     entity.RoleUser,
		Status:   entity.UserStatusUnverified,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	// 5. Auto login setelah register
	return s.issue(ctx, user)
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	if user == nil || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid login attempt", zap.String("email", req.Email))
		return nil, newError(ErrUnauthorized, "invalid credentials")
	}

	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	return s.issue(ctx, user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*response.AuthResponse, error) {
	if refreshToken == "" {
		return nil, newError(ErrUnauthorized, "refresh token required")
	}

	stored, err := s.tokens.FindRefresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if stored == nil || !stored.Usable(time.Now()) {
		s.log.Warn("Rejected refresh token: unknown, revoked or expired")
		return nil, newError(ErrUnauthorized, "invalid refresh token")
	}

	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil || userID != stored.UserID {
		s.log.Warn("Rejected refresh token: verification failed", zap.Error(err))
		return nil, newError(ErrUnauthorized, "invalid refresh token")
	}

	// role diambil dari data user terbaru, bukan dari token lama
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, newError(ErrUnauthorized, "invalid refresh token")
	}

	// Cabut dulu baru terbitkan: hanya satu request yang bisa memakai token ini
	revoked, err := s.tokens.RevokeRefresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if !revoked {
		s.log.Warn("Rejected refresh token: already used", zap.String("user_id", user.ID.String()))
		return nil, newError(ErrUnauthorized, "invalid refresh token")
	}

	resp, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info("Refresh token rotated", zap.String("user_id", user.ID.String()))
	return resp, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if _, err := s.tokens.RevokeRefresh(ctx, refreshToken); err != nil {
		return err
	}
	s.log.Info("User logged out")
	return nil
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, newError(ErrNotFound, "user not found")
	}
	resp := response.UserToResponse(user)
	return &resp, nil
}

// ==================== HELPER METHODS ====================

func (s *authService) issue(ctx context.Context, user *entity.User) (*response.AuthResponse, error) {
	access, accessExp, err := s.tokens.SignAccess(user)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.tokens.CreateRefresh(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &response.AuthResponse{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
		User:             response.UserToResponse(user),
	}, nil
}

type newUserInput struct {
	Username string
	Email    string
	Password string
	Role     entity.UserRole
	Status   entity.UserStatus
}

// createUser is shared by self-registration and admin user creation.
func createUser(ctx context.Context, users repository.UserRepository, cost int, log *zap.Logger, in newUserInput) (*entity.User, error) {
	existing, err := users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, newError(ErrConflict, "email already registered")
	}

	existing, err = users.FindByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, newError(ErrConflict, "username already taken")
	}

	hashed, err := utils.HashPassword(in.Password, cost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hashed,
		Role:         in.Role,
		Status:       in.Status,
	}

	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(ErrConflict, "username or email already registered")
		}
		return nil, err
	}

	return user, nil
}
