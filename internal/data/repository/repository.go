package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"ppob-backend/pkg/database"
)

var (
	// ErrDuplicate is returned when an insert hits a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotFound is returned by updates and deletes that matched no row.
	ErrNotFound = errors.New("record not found")
	// ErrInUse is returned when a delete is blocked by a foreign key.
	ErrInUse = errors.New("record is still referenced")
)

type Repository struct {
	User         UserRepository
	RefreshToken RefreshTokenRepository
	Product      ProductRepository
	Branch       BranchRepository
	Nasabah      NasabahRepository
	Transaction  TransactionRepository
	Report       ReportRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:         NewUserRepository(db, log),
		RefreshToken: NewRefreshTokenRepository(db, log),
		Product:      NewProductRepository(db, log),
		Branch:       NewBranchRepository(db, log),
		Nasabah:      NewNasabahRepository(db, log),
		Transaction:  NewTransactionRepository(db, log),
		Report:       NewReportRepository(db, log),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
