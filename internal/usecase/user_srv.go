package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ppob-backend/internal/data/entity"
	"ppob-backend/internal/data/repository"
	"ppob-backend/internal/dto/request"
	"ppob-backend/internal/dto/response"
	"ppob-backend/pkg/utils"
)

type UserService interface {
	GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error)
	CreateUser(ctx context.Context, req *request.CreateUserRequest) (*response.UserResponse, error)
	UpdateStatus(ctx context.Context, userID string, req *request.UpdateUserStatusRequest) (*response.UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
	config   *utils.Config
	log      *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, config *utils.Config, log *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		config:   config,
		log:      log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	req.Page, req.PerPage = utils.NormalizePage(req.Page, req.PerPage)

	users, err := us.userRepo.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		us.log.Error("Failed to get all users",
			zap.Error(err),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("get users: %w", err)
	}

	total, err := us.userRepo.CountAll(ctx)
	if err != nil {
		us.log.Error("Failed to count users", zap.Error(err))
		return nil, fmt.Errorf("count users: %w", err)
	}

	userResponses := make([]response.UserResponse, len(users))
	for i, user := range users {
		userResponses[i] = response.UserToResponse(user)
	}

	us.log.Info("Users retrieved",
		zap.Int("count", len(users)),
		zap.Int64("total", total),
		zap.Int("page", req.Page),
		zap.Int("per_page", req.PerPage),
	)

	return response.NewPaginatedResponse(userResponses, req.Page, req.PerPage, total), nil
}

func (us *userService) CreateUser(ctx context.Context, req *request.CreateUserRequest) (*response.UserResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if err := validate(req); err != nil {
		return nil, err
	}

	role := entity.RoleUser
	if req.Role != "" {
		role = entity.UserRole(req.Role)
	}
	status := entity.UserStatusUnverified
	if req.Status != "" {
		status = entity.UserStatus(req.Status)
	}

	user, err := createUser(ctx, us.userRepo, us.config.Security.BcryptCost, us.log, newUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
		Status:   status,
	})
	if err != nil {
		return nil, err
	}

	us.log.Info("User created by admin",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) UpdateStatus(ctx context.Context, userID string, req *request.UpdateUserStatusRequest) (*response.UserResponse, error) {
	id, err := parseID("user", userID)
	if err != nil {
		return nil, err
	}
	req.Status = strings.ToUpper(strings.TrimSpace(req.Status))
	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := us.userRepo.UpdateStatus(ctx, id, entity.UserStatus(req.Status))
	if err != nil {
		us.log.Error("Failed to update user status", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("update user status: %w", err)
	}
	if user == nil {
		return nil, newError(ErrNotFound, "user not found")
	}

	us.log.Info("User status updated",
		zap.String("user_id", user.ID.String()),
		zap.String("status", string(user.Status)))

	resp := response.UserToResponse(user)
	return &resp, nil
}
