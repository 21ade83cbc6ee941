package reservation

import (
	"time"

	"github.com/freshstock/backend/internal/domain/shared"
	"github.com/freshstock/backend/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a reservation
type Status string

const (
	// StatusActive marks a live demand hold
	StatusActive Status = "ACTIVE"
	// StatusFulfilled marks a hold whose quantity was fully consumed
	StatusFulfilled Status = "FULFILLED"
	// StatusCancelled marks a cancelled hold. Terminal and idempotent.
	StatusCancelled Status = "CANCELLED"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for FULFILLED and CANCELLED
func (s Status) IsTerminal() bool {
	return s == StatusFulfilled || s == StatusCancelled
}

// Reservation is a demand hold against a future delivery date and order.
// It is independent of the stock aggregate's reserved counter: reservations
// are the source of truth for demand, the counter is informational.
type Reservation struct {
	shared.BaseEntity
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	BatchID      uuid.UUID       `gorm:"type:uuid;not null"` // uuid.Nil when not pinned to a batch
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Zone         stock.Zone      `gorm:"type:varchar(50)"` // optional; set when the hold is placed against a zone
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"` // remaining quantity while ACTIVE
	DeliveryDate time.Time       `gorm:"type:date;not null;index:idx_reservation_due,priority:1"`
	Status       Status          `gorm:"type:varchar(20);not null;index:idx_reservation_due,priority:2"`
}

// TableName returns the table name for GORM
func (Reservation) TableName() string {
	return "reservations"
}

// New creates an ACTIVE reservation
func New(productID, orderID uuid.UUID, deliveryDate time.Time, quantity decimal.Decimal) (*Reservation, error) {
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("product ID cannot be empty")
	}
	if orderID == uuid.Nil {
		return nil, shared.NewValidationError("order ID cannot be empty")
	}
	if deliveryDate.IsZero() {
		return nil, shared.NewValidationError("delivery date is required")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("quantity must be positive, got %s", quantity)
	}

	return &Reservation{
		BaseEntity:   shared.NewBaseEntity(),
		ProductID:    productID,
		OrderID:      orderID,
		Quantity:     quantity,
		DeliveryDate: deliveryDate,
		Status:       StatusActive,
	}, nil
}

// WithBatch pins the reservation to a batch
func (r *Reservation) WithBatch(batchID uuid.UUID) *Reservation {
	r.BatchID = batchID
	return r
}

// WithZone records the zone the hold was placed against
func (r *Reservation) WithZone(zone stock.Zone) *Reservation {
	r.Zone = zone
	return r
}

// IsActive returns true while the reservation holds demand
func (r *Reservation) IsActive() bool {
	return r.Status == StatusActive
}

// Fulfill consumes part of the remaining quantity. When the remainder
// reaches zero the reservation transitions to FULFILLED. Consuming more than
// the remainder, or fulfilling a non-ACTIVE reservation, is a caller defect.
func (r *Reservation) Fulfill(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("fulfillment quantity must be positive, got %s", quantity)
	}
	if r.Status != StatusActive {
		return shared.NewValidationError("reservation %s is %s, only ACTIVE reservations can be fulfilled", r.ID, r.Status)
	}
	if quantity.GreaterThan(r.Quantity) {
		return shared.NewValidationError("fulfillment quantity %s exceeds remaining %s", quantity, r.Quantity)
	}

	r.Quantity = r.Quantity.Sub(quantity)
	if r.Quantity.IsZero() {
		r.Status = StatusFulfilled
	}
	r.UpdatedAt = time.Now()
	return nil
}

// Cancel moves an ACTIVE reservation to CANCELLED. Cancelling a terminal
// reservation is a no-op; the returned flag reports whether state changed.
func (r *Reservation) Cancel() bool {
	if r.Status.IsTerminal() {
		return false
	}
	r.Status = StatusCancelled
	r.UpdatedAt = time.Now()
	return true
}
