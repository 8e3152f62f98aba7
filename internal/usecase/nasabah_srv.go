package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ppob-backend/internal/data/entity"
	"ppob-backend/internal/data/repository"
	"ppob-backend/internal/dto/request"
	"ppob-backend/internal/dto/response"
)

type NasabahService interface {
	GetAll(ctx context.Context) ([]response.NasabahResponse, error)
	GetByID(ctx context.Context, nasabahID string) (*response.NasabahResponse, error)
	Create(ctx context.Context, req *request.NasabahRequest) (*response.NasabahResponse, error)
	Update(ctx context.Context, nasabahID string, req *request.NasabahUpdateRequest) (*response.NasabahResponse, error)
	Delete(ctx context.Context, nasabahID string) error
}

type nasabahService struct {
	nasabahRepo repository.NasabahRepository
	branchRepo  repository.BranchRepository
	log         *zap.Logger
}

func NewNasabahService(nasabahRepo repository.NasabahRepository, branchRepo repository.BranchRepository, log *zap.Logger) NasabahService {
	return &nasabahService{
		nasabahRepo: nasabahRepo,
		branchRepo:  branchRepo,
		log:         log.With(zap.String("service", "nasabah")),
	}
}

func (s *nasabahService) GetAll(ctx context.Context) ([]response.NasabahResponse, error) {
	list, err := s.nasabahRepo.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to get nasabah", zap.Error(err))
		return nil, fmt.Errorf("get nasabah: %w", err)
	}

	out := make([]response.NasabahResponse, len(list))
	for i, n := range list {
		out[i] = response.NasabahToResponse(n)
	}
	return out, nil
}

func (s *nasabahService) GetByID(ctx context.Context, nasabahID string) (*response.NasabahResponse, error) {
	n, err := s.find(ctx, nasabahID)
	if err != nil {
		return nil, err
	}
	resp := response.NasabahToResponse(n)
	return &resp, nil
}

func (s *nasabahService) Create(ctx context.Context, req *request.NasabahRequest) (*response.NasabahResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	branchID := uuid.MustParse(req.BranchID) // sudah divalidasi tag uuid
	if err := s.ensureBranch(ctx, branchID); err != nil {
		return nil, err
	}

	balance := decimal.Zero
	if req.Balance != nil {
		balance = *req.Balance
	}

	now := time.Now()
	n := &entity.Nasabah{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:     req.Name,
		Balance:  balance,
		BranchID: branchID,
		Phone:    req.Phone,
	}

	if err := s.nasabahRepo.Create(ctx, n); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "branch not found")
		}
		s.log.Error("Failed to create nasabah", zap.Error(err))
		return nil, fmt.Errorf("create nasabah: %w", err)
	}

	s.log.Info("Nasabah created",
		zap.String("nasabah_id", n.ID.String()),
		zap.String("branch_id", n.BranchID.String()))

	resp := response.NasabahToResponse(n)
	return &resp, nil
}

func (s *nasabahService) Update(ctx context.Context, nasabahID string, req *request.NasabahUpdateRequest) (*response.NasabahResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	n, err := s.find(ctx, nasabahID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		n.Name = *req.Name
	}
	if req.Balance != nil {
		n.Balance = *req.Balance
	}
	if req.Phone != nil {
		n.Phone = *req.Phone
	}
	if req.BranchID != nil {
		branchID := uuid.MustParse(*req.BranchID)
		if err := s.ensureBranch(ctx, branchID); err != nil {
			return nil, err
		}
		n.BranchID = branchID
	}
	n.UpdatedAt = time.Now()

	if err := s.nasabahRepo.Update(ctx, n); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "nasabah not found")
		}
		s.log.Error("Failed to update nasabah", zap.Error(err), zap.String("nasabah_id", nasabahID))
		return nil, fmt.Errorf("update nasabah: %w", err)
	}

	resp := response.NasabahToResponse(n)
	return &resp, nil
}

func (s *nasabahService) Delete(ctx context.Context, nasabahID string) error {
	id, err := parseID("nasabah", nasabahID)
	if err != nil {
		return err
	}

	if err := s.nasabahRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newError(ErrNotFound, "nasabah not found")
		}
		s.log.Error("Failed to delete nasabah", zap.Error(err), zap.String("nasabah_id", nasabahID))
		return fmt.Errorf("delete nasabah: %w", err)
	}

	s.log.Info("Nasabah deleted", zap.String("nasabah_id", nasabahID))
	return nil
}

func (s *nasabahService) find(ctx context.Context, nasabahID string) (*entity.Nasabah, error) {
	id, err := parseID("nasabah", nasabahID)
	if err != nil {
		return nil, err
	}

	n, err := s.nasabahRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get nasabah: %w", err)
	}
	if n == nil {
		return nil, newError(ErrNotFound, "nasabah not found")
	}
	return n, nil
}

func (s *nasabahService) ensureBranch(ctx context.Context, id uuid.UUID) error {
	branch, err := s.branchRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get branch: %w", err)
	}
	if branch == nil {
		return newError(ErrNotFound, "branch not found")
	}
	return nil
}
