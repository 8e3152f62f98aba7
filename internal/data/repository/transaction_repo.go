package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"ppob-backend/internal/data/entity"
	"ppob-backend/pkg/database"
)

type TransactionFilter struct {
	UserID *uuid.UUID
	Status string
}

// ProviderResult is what an order response or webhook writes back.
type ProviderResult struct {
	Status  string
	SN      string
	Message string
	Raw     string
}

type TransactionRepository interface {
	Create(ctx context.Context, trx *entity.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.TransactionDetail, error)
	FindByRefID(ctx context.Context, refID string) (*entity.Transaction, error)
	FindAll(ctx context.Context, filter TransactionFilter, limit, offset int) ([]*entity.TransactionDetail, error)
	Count(ctx context.Context, filter TransactionFilter) (int64, error)

	// UpdateProviderResult stores the synchronous order reply under the same
	// final-status guard as ApplyWebhook. When the guard rejects the write the
	// stored row is returned with applied false.
	UpdateProviderResult(ctx context.Context, id uuid.UUID, res ProviderResult) (trx *entity.Transaction, applied bool, err error)
	// MarkFailed moves a PENDING order to FAILED. Any other status is left
	// alone and applied is false.
	MarkFailed(ctx context.Context, id uuid.UUID, message string) (trx *entity.Transaction, applied bool, err error)
	// ApplyWebhook updates the order by ref id. An empty SN or Message keeps
	// the stored value. A non-final status never replaces a final one; in
	// that case nothing is written and applied is false.
	ApplyWebhook(ctx context.Context, refID string, res ProviderResult) (trx *entity.Transaction, applied bool, err error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*entity.Transaction, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type transactionRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTransactionRepository(db database.PgxIface, log *zap.Logger) TransactionRepository {
	return &transactionRepository{
		db:  db,
		log: log.With(zap.String("repository", "transaction")),
	}
}

const transactionColumns = `t.id, t.ref_id, t.user_id, t.product_id, t.buyer_sku_code, t.customer_no,
		       t.status, t.sn, t.message, t.raw_response, t.created_at, t.updated_at`

func scanTransaction(row pgx.Row, extra ...any) (*entity.Transaction, error) {
	var t entity.Transaction
	dest := []any{
		&t.ID,
		&t.RefID,
		&t.UserID,
		&t.ProductID,
		&t.BuyerSkuCode,
		&t.CustomerNo,
		&t.Status,
		&t.SN,
		&t.Message,
		&t.RawResponse,
		&t.CreatedAt,
		&t.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTransactionDetail(row pgx.Row) (*entity.TransactionDetail, error) {
	var productName, username string
	t, err := scanTransaction(row, &productName, &username)
	if err != nil {
		return nil, err
	}
	return &entity.TransactionDetail{Transaction: *t, ProductName: productName, Username: username}, nil
}

func (r *transactionRepository) Create(ctx context.Context, trx *entity.Transaction) error {
	query := `
		INSERT INTO transactions (id, ref_id, user_id, product_id, buyer_sku_code, customer_no,
		                          status, sn, message, raw_response, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Exec(ctx, query,
		trx.ID,
		trx.RefID,
		trx.UserID,
		trx.ProductID,
		trx.BuyerSkuCode,
		trx.CustomerNo,
		trx.Status,
		trx.SN,
		trx.Message,
		trx.RawResponse,
		trx.CreatedAt,
		trx.UpdatedAt,
	)

	if isUniqueViolation(err) {
		return fmt.Errorf("create transaction %s: %w", trx.RefID, ErrDuplicate)
	}
	if err != nil {
		r.log.Error("Failed to create transaction",
			zap.Error(err),
			zap.String("ref_id", trx.RefID),
			zap.String("user_id", trx.UserID.String()),
		)
		return fmt.Errorf("create transaction %s: %w", trx.RefID, err)
	}

	return nil
}

const detailSelect = `
		SELECT ` + transactionColumns + `,
		       COALESCE(p.name, ''), COALESCE(u.username, '')
		FROM transactions t
		LEFT JOIN products p ON p.id = t.product_id
		LEFT JOIN users u ON u.id = t.user_id`

func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.TransactionDetail, error) {
	trx, err := scanTransactionDetail(r.db.QueryRow(ctx, detailSelect+` WHERE t.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find transaction by ID",
			zap.Error(err),
			zap.String("transaction_id", id.String()),
		)
		return nil, fmt.Errorf("find transaction %s: %w", id, err)
	}

	return trx, nil
}

func (r *transactionRepository) FindByRefID(ctx context.Context, refID string) (*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions t WHERE t.ref_id = $1`

	trx, err := scanTransaction(r.db.QueryRow(ctx, query, refID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find transaction by ref id",
			zap.Error(err),
			zap.String("ref_id", refID),
		)
		return nil, fmt.Errorf("find transaction by ref %s: %w", refID, err)
	}

	return trx, nil
}

func buildFilter(filter TransactionFilter) (string, []any) {
	var where []string
	var args []any
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		where = append(where, fmt.Sprintf("t.user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("t.status = $%d", len(args)))
	}
	if len(where) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

func (r *transactionRepository) FindAll(ctx context.Context, filter TransactionFilter, limit, offset int) ([]*entity.TransactionDetail, error) {
	where, args := buildFilter(filter)
	query := detailSelect + where +
		fmt.Sprintf(" ORDER BY t.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list transactions", zap.Error(err))
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []*entity.TransactionDetail
	for rows.Next() {
		trx, err := scanTransactionDetail(rows)
		if err != nil {
			r.log.Error("Failed to scan transaction row", zap.Error(err))
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, trx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return out, nil
}

func (r *transactionRepository) Count(ctx context.Context, filter TransactionFilter) (int64, error) {
	where, args := buildFilter(filter)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions t`+where, args...).Scan(&total); err != nil {
		r.log.Error("Failed to count transactions", zap.Error(err))
		return 0, fmt.Errorf("count transactions: %w", err)
	}

	return total, nil
}

func (r *transactionRepository) UpdateProviderResult(ctx context.Context, id uuid.UUID, res ProviderResult) (*entity.Transaction, bool, error) {
	// Webhook bisa datang lebih dulu dari balasan sync; status final tidak boleh turun
	query := `
		UPDATE transactions t
		SET status = $2,
		    sn = COALESCE(NULLIF($3, ''), t.sn),
		    message = COALESCE(NULLIF($4, ''), t.message),
		    raw_response = $5,
		    updated_at = NOW()
		WHERE t.id = $1
		  AND ($2 = ANY($6::text[]) OR NOT (t.status = ANY($6::text[])))
		RETURNING ` + transactionColumns

	trx, err := scanTransaction(r.db.QueryRow(ctx, query,
		id, res.Status, res.SN, res.Message, res.Raw, entity.FinalStatuses))
	if errors.Is(err, pgx.ErrNoRows) {
		return r.current(ctx, id)
	}
	if err != nil {
		r.log.Error("Failed to store provider result",
			zap.Error(err),
			zap.String("transaction_id", id.String()),
		)
		return nil, false, fmt.Errorf("update transaction %s: %w", id, err)
	}

	return trx, true, nil
}

func (r *transactionRepository) MarkFailed(ctx context.Context, id uuid.UUID, message string) (*entity.Transaction, bool, error) {
	query := `
		UPDATE transactions t
		SET status = $2, message = $3, updated_at = NOW()
		WHERE t.id = $1 AND t.status = $4
		RETURNING ` + transactionColumns

	trx, err := scanTransaction(r.db.QueryRow(ctx, query,
		id, entity.TransactionStatusFailed, message, entity.TransactionStatusPending))
	if errors.Is(err, pgx.ErrNoRows) {
		return r.current(ctx, id)
	}
	if err != nil {
		r.log.Error("Failed to mark transaction failed",
			zap.Error(err),
			zap.String("transaction_id", id.String()),
		)
		return nil, false, fmt.Errorf("mark transaction %s failed: %w", id, err)
	}

	return trx, true, nil
}

// current loads the row a guarded update declined to touch.
func (r *transactionRepository) current(ctx context.Context, id uuid.UUID) (*entity.Transaction, bool, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions t WHERE t.id = $1`

	trx, err := scanTransaction(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, false, fmt.Errorf("find transaction %s: %w", id, err)
	}
	return trx, false, nil
}

func (r *transactionRepository) ApplyWebhook(ctx context.Context, refID string, res ProviderResult) (*entity.Transaction, bool, error) {
	// Guard dijalankan di dalam UPDATE supaya tetap benar walau ada writer lain
	query := `
		UPDATE transactions t
		SET status = $2,
		    sn = COALESCE(NULLIF($3, ''), t.sn),
		    message = COALESCE(NULLIF($4, ''), t.message),
		    raw_response = $5,
		    updated_at = NOW()
		WHERE t.ref_id = $1
		  AND ($2 = ANY($6::text[]) OR NOT (t.status = ANY($6::text[])))
		RETURNING ` + transactionColumns

	trx, err := scanTransaction(r.db.QueryRow(ctx, query,
		refID, res.Status, res.SN, res.Message, res.Raw, entity.FinalStatuses))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		r.log.Error("Failed to apply webhook",
			zap.Error(err),
			zap.String("ref_id", refID),
		)
		return nil, false, fmt.Errorf("apply webhook %s: %w", refID, err)
	}

	return trx, true, nil
}

func (r *transactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*entity.Transaction, error) {
	query := `
		UPDATE transactions t
		SET status = $2, updated_at = NOW()
		WHERE t.id = $1
		RETURNING ` + transactionColumns

	trx, err := scanTransaction(r.db.QueryRow(ctx, query, id, status))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to update transaction status",
			zap.Error(err),
			zap.String("transaction_id", id.String()),
		)
		return nil, fmt.Errorf("update transaction status %s: %w", id, err)
	}

	return trx, nil
}

func (r *transactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete transaction",
			zap.Error(err),
			zap.String("transaction_id", id.String()),
		)
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}

	return nil
}
