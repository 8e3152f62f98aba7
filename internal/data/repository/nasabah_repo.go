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

type NasabahRepository interface {
	Create(ctx context.Context, n *entity.Nasabah) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Nasabah, error)
	FindAll(ctx context.Context) ([]*entity.Nasabah, error)
	FindByBranch(ctx context.Context, branchID uuid.UUID) ([]*entity.Nasabah, error)
	Update(ctx context.Context, n *entity.Nasabah) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type nasabahRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewNasabahRepository(db database.PgxIface, log *zap.Logger) NasabahRepository {
	return &nasabahRepository{
		db:  db,
		log: log.With(zap.String("repository", "nasabah")),
	}
}

const nasabahColumns = `id, name, balance, branch_id, phone, created_at, updated_at`

func scanNasabah(row pgx.Row) (*entity.Nasabah, error) {
	var n entity.Nasabah
	if err := row.Scan(&n.ID, &n.Name, &n.Balance, &n.BranchID, &n.Phone, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *nasabahRepository) Create(ctx context.Context, n *entity.Nasabah) error {
	query := `
		INSERT INTO nasabah (id, name, balance, branch_id, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query, n.ID, n.Name, n.Balance, n.BranchID, n.Phone, n.CreatedAt, n.UpdatedAt)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("branch %s: %w", n.BranchID, ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to create nasabah", zap.Error(err), zap.String("name", n.Name))
		return fmt.Errorf("failed to create nasabah: %w", err)
	}

	return nil
}

func (r *nasabahRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Nasabah, error) {
	query := `SELECT ` + nasabahColumns + ` FROM nasabah WHERE id = $1`

	n, err := scanNasabah(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find nasabah by ID", zap.Error(err), zap.String("nasabah_id", id.String()))
		return nil, fmt.Errorf("failed to find nasabah: %w", err)
	}

	return n, nil
}

func (r *nasabahRepository) FindAll(ctx context.Context) ([]*entity.Nasabah, error) {
	return r.list(ctx, `SELECT `+nasabahColumns+` FROM nasabah ORDER BY name`)
}

func (r *nasabahRepository) FindByBranch(ctx context.Context, branchID uuid.UUID) ([]*entity.Nasabah, error) {
	return r.list(ctx, `SELECT `+nasabahColumns+` FROM nasabah WHERE branch_id = $1 ORDER BY name`, branchID)
}

func (r *nasabahRepository) list(ctx context.Context, query string, args ...any) ([]*entity.Nasabah, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list nasabah", zap.Error(err))
		return nil, fmt.Errorf("failed to list nasabah: %w", err)
	}
	defer rows.Close()

	var out []*entity.Nasabah
	for rows.Next() {
		n, err := scanNasabah(rows)
		if err != nil {
			r.log.Error("Failed to scan nasabah row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan nasabah: %w", err)
		}
		out = append(out, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return out, nil
}

func (r *nasabahRepository) Update(ctx context.Context, n *entity.Nasabah) error {
	query := `
		UPDATE nasabah
		SET name = $2, balance = $3, branch_id = $4, phone = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, n.ID, n.Name, n.Balance, n.BranchID, n.Phone, n.UpdatedAt)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("branch %s: %w", n.BranchID, ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to update nasabah", zap.Error(err), zap.String("nasabah_id", n.ID.String()))
		return fmt.Errorf("failed to update nasabah: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("nasabah %s: %w", n.ID, ErrNotFound)
	}

	return nil
}

func (r *nasabahRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM nasabah WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete nasabah", zap.Error(err), zap.String("nasabah_id", id.String()))
		return fmt.Errorf("failed to delete nasabah: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("nasabah %s: %w", id, ErrNotFound)
	}

	return nil
}
