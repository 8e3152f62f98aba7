package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ppob-backend/internal/data/entity"
	"ppob-backend/internal/data/repository"
	"ppob-backend/internal/dto/request"
	"ppob-backend/internal/dto/response"
)

type BranchService interface {
	GetBranches(ctx context.Context) ([]response.BranchResponse, error)
	GetBranchByID(ctx context.Context, branchID string) (*response.BranchResponse, error)
	GetBranchNasabah(ctx context.Context, branchID string) (*response.BranchNasabahResponse, error)
	CreateBranch(ctx context.Context, req *request.BranchRequest) (*response.BranchResponse, error)
	UpdateBranch(ctx context.Context, branchID string, req *request.BranchUpdateRequest) (*response.BranchResponse, error)
	DeleteBranch(ctx context.Context, branchID string) error
}

type branchService struct {
	branchRepo  repository.BranchRepository
	nasabahRepo repository.NasabahRepository
	log         *zap.Logger
}

func NewBranchService(branchRepo repository.BranchRepository, nasabahRepo repository.NasabahRepository, log *zap.Logger) BranchService {
	return &branchService{
		branchRepo:  branchRepo,
		nasabahRepo: nasabahRepo,
		log:         log.With(zap.String("service", "branch")),
	}
}

func (s *branchService) GetBranches(ctx context.Context) ([]response.BranchResponse, error) {
	branches, err := s.branchRepo.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to get branches", zap.Error(err))
		return nil, fmt.Errorf("get branches: %w", err)
	}

	out := make([]response.BranchResponse, len(branches))
	for i, b := range branches {
		out[i] = response.BranchToResponse(b)
	}
	return out, nil
}

func (s *branchService) find(ctx context.Context, branchID string) (*entity.Branch, error) {
	id, err := parseID("branch", branchID)
	if err != nil {
		return nil, err
	}

	branch, err := s.branchRepo.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get branch", zap.Error(err), zap.String("branch_id", branchID))
		return nil, fmt.Errorf("get branch: %w", err)
	}
	if branch == nil {
		return nil, newError(ErrNotFound, "branch not found")
	}
	return branch, nil
}

func (s *branchService) GetBranchByID(ctx context.Context, branchID string) (*response.BranchResponse, error) {
	branch, err := s.find(ctx, branchID)
	if err != nil {
		return nil, err
	}
	resp := response.BranchToResponse(branch)
	return &resp, nil
}

func (s *branchService) GetBranchNasabah(ctx context.Context, branchID string) (*response.BranchNasabahResponse, error) {
	branch, err := s.find(ctx, branchID)
	if err != nil {
		return nil, err
	}

	list, err := s.nasabahRepo.FindByBranch(ctx, branch.ID)
	if err != nil {
		s.log.Error("Failed to get nasabah of branch", zap.Error(err), zap.String("branch_id", branchID))
		return nil, fmt.Errorf("get branch nasabah: %w", err)
	}

	nasabah := make([]response.NasabahResponse, len(list))
	for i, n := range list {
		nasabah[i] = response.NasabahToResponse(n)
	}

	return &response.BranchNasabahResponse{
		Branch:       response.BranchToResponse(branch),
		TotalNasabah: len(nasabah),
		Nasabah:      nasabah,
	}, nil
}

func (s *branchService) CreateBranch(ctx context.Context, req *request.BranchRequest) (*response.BranchResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	now := time.Now()
	branch := &entity.Branch{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:    req.Name,
		Address: req.Address,
	}

	if err := s.branchRepo.Create(ctx, branch); err != nil {
		s.log.Error("Failed to create branch", zap.Error(err), zap.String("name", req.Name))
		return nil, fmt.Errorf("create branch: %w", err)
	}

	s.log.Info("Branch created", zap.String("branch_id", branch.ID.String()), zap.String("name", branch.Name))

	resp := response.BranchToResponse(branch)
	return &resp, nil
}

func (s *branchService) UpdateBranch(ctx context.Context, branchID string, req *request.BranchUpdateRequest) (*response.BranchResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	branch, err := s.find(ctx, branchID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		branch.Name = *req.Name
	}
	if req.Address != nil {
		branch.Address = *req.Address
	}
	branch.UpdatedAt = time.Now()

	if err := s.branchRepo.Update(ctx, branch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrNotFound, "branch not found")
		}
		s.log.Error("Failed to update branch", zap.Error(err), zap.String("branch_id", branchID))
		return nil, fmt.Errorf("update branch: %w", err)
	}

	resp := response.BranchToResponse(branch)
	return &resp, nil
}

func (s *branchService) DeleteBranch(ctx context.Context, branchID string) error {
	id, err := parseID("branch", branchID)
	if err != nil {
		return err
	}

	if err := s.branchRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return newError(ErrNotFound, "branch not found")
		case errors.Is(err, repository.ErrInUse):
			return newError(ErrConflict, "branch still has nasabah")
		}
		s.log.Error("Failed to delete branch", zap.Error(err), zap.String("branch_id", branchID))
		return fmt.Errorf("delete branch: %w", err)
	}

	s.log.Info("Branch deleted", zap.String("branch_id", branchID))
	return nil
}
