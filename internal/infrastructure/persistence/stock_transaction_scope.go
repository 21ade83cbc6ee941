package persistence

import (
	"context"
	"errors"
	"fmt"

	appstock "github.com/freshstock/backend/internal/application/stock"
	"github.com/freshstock/backend/internal/domain/reservation"
	"github.com/freshstock/backend/internal/domain/shared"
	"github.com/freshstock/backend/internal/domain/stock"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Every ledger append and its counter delta commit together or not at all.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appstock.TransactionalRepositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
	return translateContentionError(err)
}

// translateContentionError maps Postgres contention aborts to the retryable
// concurrency error. SQLSTATE 40001 is a serialization failure and 40P01 a
// deadlock; either way the whole unit rolled back and can be replayed.
func translateContentionError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return fmt.Errorf("%w (sqlstate %s)", shared.ErrConcurrencyConflict, pgErr.Code)
		}
	}
	return err
}

// gormTransactionalRepositories provides access to all repositories within a
// transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// MovementRepo returns the movement ledger repository scoped to the current
// transaction.
func (r *gormTransactionalRepositories) MovementRepo() stock.MovementRepository {
	return NewGormMovementRepository(r.tx)
}

// LevelRepo returns the stock level repository scoped to the current
// transaction.
func (r *gormTransactionalRepositories) LevelRepo() stock.StockLevelRepository {
	return NewGormStockLevelRepository(r.tx)
}

// BatchRepo returns the batch repository scoped to the current transaction.
func (r *gormTransactionalRepositories) BatchRepo() stock.BatchRepository {
	return NewGormBatchRepository(r.tx)
}

// ReservationRepo returns the reservation repository scoped to the current
// transaction.
func (r *gormTransactionalRepositories) ReservationRepo() reservation.Repository {
	return NewGormReservationRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appstock.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appstock.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
