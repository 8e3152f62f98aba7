package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"ppob-backend/internal/data/entity"
	"ppob-backend/pkg/database"
)

type BranchRepository interface {
	Create(ctx context.Context, branch *entity.Branch) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Branch, error)
	FindAll(ctx context.Context) ([]*entity.Branch, error)
	Update(ctx context.Context, branch *entity.Branch) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type branchRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBranchRepository(db database.PgxIface, log *zap.Logger) BranchRepository {
	return &branchRepository{
		db:  db,
		log: log.With(zap.String("repository", "branch")),
	}
}

func (r *branchRepository) Create(ctx context.Context, branch *entity.Branch) error {
	query := `
		INSERT INTO branches (id, name, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query,
		branch.ID,
		branch.Name,
		branch.Address,
		branch.CreatedAt,
		branch.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create branch", zap.Error(err), zap.String("name", branch.Name))
		return fmt.Errorf("failed to create branch: %w", err)
	}

	return nil
}

func (r *branchRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Branch, error) {
	query := `
		SELECT id, name, address, created_at, updated_at
		FROM branches
		WHERE id = $1
	`

	var b entity.Branch
	err := r.db.QueryRow(ctx, query, id).Scan(&b.ID, &b.Name, &b.Address, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find branch by ID", zap.Error(err), zap.String("branch_id", id.String()))
		return nil, fmt.Errorf("failed to find branch: %w", err)
	}

	return &b, nil
}

func (r *branchRepository) FindAll(ctx context.Context) ([]*entity.Branch, error) {
	query := `
		SELECT id, name, address, created_at, updated_at
		FROM branches
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to find all branches", zap.Error(err))
		return nil, fmt.Errorf("failed to find branches: %w", err)
	}
	defer rows.Close()

	var branches []*entity.Branch
	for rows.Next() {
		var b entity.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Address, &b.CreatedAt, &b.UpdatedAt); err != nil {
			r.log.Error("Failed to scan branch row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		branches = append(branches, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return branches, nil
}

func (r *branchRepository) Update(ctx context.Context, branch *entity.Branch) error {
	query := `
		UPDATE branches
		SET name = $2, address = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, branch.ID, branch.Name, branch.Address, branch.UpdatedAt)
	if err != nil {
		r.log.Error("Failed to update branch", zap.Error(err), zap.String("branch_id", branch.ID.String()))
		return fmt.Errorf("failed to update branch: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("branch %s: %w", branch.ID, ErrNotFound)
	}

	return nil
}

func (r *branchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM branches WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("branch %s: %w", id, ErrInUse)
	}
	if err != nil {
		r.log.Error("Failed to delete branch", zap.Error(err), zap.String("branch_id", id.String()))
		return fmt.Errorf("failed to delete branch: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("branch %s: %w", id, ErrNotFound)
	}

	return nil
}
