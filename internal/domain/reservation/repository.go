package reservation

import (
	"context"
	"time"

	"github.com/freshstock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository defines the persistence contract for reservations
type Repository interface {
	// FindByID finds a reservation by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Reservation, error)

	// FindByOrder finds all reservations of an order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Reservation, error)

	// List finds reservations matching the filter, paginated
	List(ctx context.Context, filter Filter) ([]Reservation, error)

	// Count counts reservations matching the filter
	Count(ctx context.Context, filter Filter) (int64, error)

	// Save creates or updates a reservation
	Save(ctx context.Context, r *Reservation) error

	// SumActiveByProductDueBefore sums remaining ACTIVE quantities per
	// product for reservations due on or before the cutoff day
	SumActiveByProductDueBefore(ctx context.Context, cutoff time.Time) (map[uuid.UUID]decimal.Decimal, error)
}

// Filter extends shared.Filter with reservation-specific filters
type Filter struct {
	shared.Filter
	ProductID *uuid.UUID
	OrderID   *uuid.UUID
	Status    *Status
	DueBefore *time.Time
	DueAfter  *time.Time
}
