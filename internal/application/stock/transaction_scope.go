package stock

import (
	"context"

	"github.com/freshstock/backend/internal/domain/reservation"
	"github.com/freshstock/backend/internal/domain/stock"
)

// TransactionScope provides transactional access to the stock repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all stock repositories within a transaction.
// All repositories returned share the same underlying database transaction.
//
// Aggregate boundary notes:
//   - MovementRepo: append-only repository for the movement ledger. Movements are
//     never updated or deleted once written.
//   - LevelRepo: repository for the derived per-key stock counters. Every movement
//     appended in a scope must be paired with the matching counter delta in the
//     same scope, otherwise the ledger and the counters drift apart.
//   - BatchRepo: repository for batch master records.
//   - ReservationRepo: repository for the reservation registry. Reservation state
//     changes that also touch the reserved counter go through the same scope.
type TransactionalRepositories interface {
	// MovementRepo returns the movement ledger repository scoped to the current transaction
	MovementRepo() stock.MovementRepository
	// LevelRepo returns the stock level repository scoped to the current transaction
	LevelRepo() stock.StockLevelRepository
	// BatchRepo returns the batch repository scoped to the current transaction
	BatchRepo() stock.BatchRepository
	// ReservationRepo returns the reservation repository scoped to the current transaction
	ReservationRepo() reservation.Repository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	movementRepo    stock.MovementRepository
	levelRepo       stock.StockLevelRepository
	batchRepo       stock.BatchRepository
	reservationRepo reservation.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	movementRepo stock.MovementRepository,
	levelRepo stock.StockLevelRepository,
	batchRepo stock.BatchRepository,
	reservationRepo reservation.Repository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		movementRepo:    movementRepo,
		levelRepo:       levelRepo,
		batchRepo:       batchRepo,
		reservationRepo: reservationRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// MovementRepo returns the movement ledger repository.
func (s *NoOpTransactionScope) MovementRepo() stock.MovementRepository {
	return s.movementRepo
}

// LevelRepo returns the stock level repository.
func (s *NoOpTransactionScope) LevelRepo() stock.StockLevelRepository {
	return s.levelRepo
}

// BatchRepo returns the batch repository.
func (s *NoOpTransactionScope) BatchRepo() stock.BatchRepository {
	return s.batchRepo
}

// ReservationRepo returns the reservation repository.
func (s *NoOpTransactionScope) ReservationRepo() reservation.Repository {
	return s.reservationRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
