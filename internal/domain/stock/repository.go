package stock

import (
	"context"
	"time"

	"github.com/freshstock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementRepository defines the append-only persistence contract for the
// movement ledger. There is deliberately no update or delete: corrections
// are new movements.
type MovementRepository interface {
	// Append durably stores a new movement
	Append(ctx context.Context, m *Movement) error

	// AppendAll stores several movements of one logical operation
	AppendAll(ctx context.Context, ms []*Movement) error

	// FindByID finds a movement by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Movement, error)

	// List finds movements matching the filter, paginated
	List(ctx context.Context, filter MovementFilter) ([]Movement, error)

	// Count counts movements matching the filter
	Count(ctx context.Context, filter MovementFilter) (int64, error)

	// FindBatchedSince finds batch-referencing movements recorded at or
	// after the given instant
	FindBatchedSince(ctx context.Context, since time.Time) ([]Movement, error)

	// SumByKey sums signed quantities for an exact aggregate key,
	// optionally restricted to the given types
	SumByKey(ctx context.Context, key LevelKey, types ...MovementType) (decimal.Decimal, error)

	// ExistsByReference reports whether a movement of the given type
	// already references the given movement
	ExistsByReference(ctx context.Context, refMovementID uuid.UUID, typ MovementType) (bool, error)
}

// MovementFilter extends shared.Filter with ledger-specific filters.
// Search matches the denormalized product name/code snapshots.
type MovementFilter struct {
	shared.Filter
	ProductID *uuid.UUID
	BatchID   *uuid.UUID
	Zone      *Zone
	Type      *MovementType
	OrderID   *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}

// StockLevelRepository defines the persistence contract for the derived
// stock aggregate.
type StockLevelRepository interface {
	// ApplyDelta atomically increments the record for the key, creating it
	// with zero defaults if absent. Implementations must perform the
	// addition in the store (no read-modify-write) so concurrent deltas on
	// the same key commute.
	ApplyDelta(ctx context.Context, key LevelKey, delta StockDelta) error

	// FindByKey finds the record for an exact key
	FindByKey(ctx context.Context, key LevelKey) (*StockLevel, error)

	// FindByProduct finds all records for a product across batches and zones
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]StockLevel, error)

	// FindByBatch finds all records for a batch across zones
	FindByBatch(ctx context.Context, batchID uuid.UUID) ([]StockLevel, error)

	// SumAvailableByBatch sums available quantity for a batch across zones
	SumAvailableByBatch(ctx context.Context, batchID uuid.UUID) (decimal.Decimal, error)

	// SumAvailableByProduct sums available quantity for a product across
	// all batches and zones
	SumAvailableByProduct(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error)

	// SumAvailableByProducts sums available quantity per product for the
	// given product IDs
	SumAvailableByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
}

// BatchRepository defines the persistence contract for the batch registry.
// Batches are never deleted; movement history may reference them.
type BatchRepository interface {
	// FindByID finds a batch by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Batch, error)

	// FindByIDs finds multiple batches by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Batch, error)

	// FindByProduct finds all batches of a product
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]Batch, error)

	// FindExpiringBefore finds batches whose expiry date is on or before
	// the cutoff day
	FindExpiringBefore(ctx context.Context, cutoff time.Time) ([]Batch, error)

	// Save creates or updates a batch
	Save(ctx context.Context, b *Batch) error
}
