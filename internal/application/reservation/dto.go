package reservation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/freshstock/backend/internal/domain/reservation"
	"github.com/freshstock/backend/internal/domain/stock"
)

// CreateReservationRequest places a demand hold for an order.
// Zone is optional; when given, the hold is also mirrored as a RESERVE
// movement on the reserved counter of that zone.
type CreateReservationRequest struct {
	ProductID    uuid.UUID       `json:"product_id" binding:"required"`
	OrderID      uuid.UUID       `json:"order_id" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	DeliveryDate time.Time       `json:"delivery_date" binding:"required"`
	BatchID      *uuid.UUID      `json:"batch_id"`
	Zone         *stock.Zone     `json:"zone"`
	ActorID      *uuid.UUID      `json:"actor_id"`
	Note         string          `json:"note"`
}

// FulfillReservationRequest consumes part of a reservation's remaining
// quantity without recording a pick. Physical picks go through the stock
// operations instead.
type FulfillReservationRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// ReservationResponse represents a reservation in API responses
type ReservationResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	BatchID      *uuid.UUID      `json:"batch_id,omitempty"`
	OrderID      uuid.UUID       `json:"order_id"`
	Zone         stock.Zone      `json:"zone,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"` // remaining while ACTIVE
	DeliveryDate time.Time       `json:"delivery_date"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ReservationListFilter represents filter options for the reservation list
type ReservationListFilter struct {
	ProductID *uuid.UUID `form:"product_id"`
	OrderID   *uuid.UUID `form:"order_id"`
	Status    string     `form:"status"`
	DueBefore *time.Time `form:"due_before" time_format:"2006-01-02"`
	DueAfter  *time.Time `form:"due_after" time_format:"2006-01-02"`
	Page      int        `form:"page" binding:"min=0"`
	PageSize  int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// toReservationResponse maps a reservation to its API representation.
func toReservationResponse(r *reservation.Reservation) ReservationResponse {
	resp := ReservationResponse{
		ID:           r.ID,
		ProductID:    r.ProductID,
		OrderID:      r.OrderID,
		Zone:         r.Zone,
		Quantity:     r.Quantity,
		DeliveryDate: r.DeliveryDate,
		Status:       r.Status.String(),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.BatchID != uuid.Nil {
		batchID := r.BatchID
		resp.BatchID = &batchID
	}
	return resp
}
