package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/freshstock/backend/internal/domain/stock"
)

// NewBatchRequest describes a batch to create on the fly during an operation.
type NewBatchRequest struct {
	ExpiryDate    time.Time  `json:"expiry_date" binding:"required"`
	SlaughterDate *time.Time `json:"slaughter_date"`
	IsFrozen      bool       `json:"is_frozen"`
	SupplierID    *uuid.UUID `json:"supplier_id"`
}

// ReceiveStockRequest represents a goods receipt.
// Either BatchID (existing batch) or NewBatch must be set; if both are empty
// the receipt is booked against the unbatched key.
type ReceiveStockRequest struct {
	ProductID      uuid.UUID        `json:"product_id" binding:"required"`
	Quantity       decimal.Decimal  `json:"quantity" binding:"required"`
	Zone           stock.Zone       `json:"zone" binding:"required"`
	BatchID        *uuid.UUID       `json:"batch_id"`
	NewBatch       *NewBatchRequest `json:"new_batch"`
	AnnouncementID *uuid.UUID       `json:"announcement_id"` // inbound announcement to complete
	ActorID        *uuid.UUID       `json:"actor_id"`
	Note           string           `json:"note"`
}

// AnnounceInboundRequest announces goods that are on their way to the warehouse.
type AnnounceInboundRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	Zone      stock.Zone      `json:"zone" binding:"required"`
	ActorID   *uuid.UUID      `json:"actor_id"`
	Note      string          `json:"note"`
}

// TransferStockRequest moves quantity from one batch/zone to another.
// The destination is either an existing batch or a batch created on the fly.
type TransferStockRequest struct {
	ProductID   uuid.UUID        `json:"product_id" binding:"required"`
	Quantity    decimal.Decimal  `json:"quantity" binding:"required"`
	FromBatchID uuid.UUID        `json:"from_batch_id" binding:"required"`
	FromZone    stock.Zone       `json:"from_zone" binding:"required"`
	ToBatchID   *uuid.UUID       `json:"to_batch_id"`
	ToNewBatch  *NewBatchRequest `json:"to_new_batch"`
	ToZone      stock.Zone       `json:"to_zone" binding:"required"`
	ActorID     *uuid.UUID       `json:"actor_id"`
	Note        string           `json:"note"`
}

// MergeBatchesRequest folds stock from a source batch into a target batch.
// A zero Quantity means "take everything available" at the source key.
type MergeBatchesRequest struct {
	ProductID     uuid.UUID       `json:"product_id" binding:"required"`
	SourceBatchID uuid.UUID       `json:"source_batch_id" binding:"required"`
	SourceZone    stock.Zone      `json:"source_zone" binding:"required"`
	TargetBatchID uuid.UUID       `json:"target_batch_id" binding:"required"`
	TargetZone    stock.Zone      `json:"target_zone" binding:"required"`
	Quantity      decimal.Decimal `json:"quantity"`
	ActorID       *uuid.UUID      `json:"actor_id"`
	Note          string          `json:"note"`
}

// WriteOffStockRequest records a stock loss.
type WriteOffStockRequest struct {
	ProductID uuid.UUID            `json:"product_id" binding:"required"`
	BatchID   *uuid.UUID           `json:"batch_id"`
	Zone      stock.Zone           `json:"zone" binding:"required"`
	Quantity  decimal.Decimal      `json:"quantity" binding:"required"`
	Reason    stock.WriteOffReason `json:"reason" binding:"required"`
	ActorID   *uuid.UUID           `json:"actor_id"`
	Note      string               `json:"note"`
}

// UndoWriteOffRequest reverses a previous write-off with a compensating correction.
type UndoWriteOffRequest struct {
	MovementID uuid.UUID  `json:"movement_id" binding:"required"`
	ActorID    *uuid.UUID `json:"actor_id"`
	Note       string     `json:"note"`
}

// CorrectStockRequest books a signed manual correction against a stock key.
type CorrectStockRequest struct {
	ProductID  uuid.UUID       `json:"product_id" binding:"required"`
	BatchID    *uuid.UUID      `json:"batch_id"`
	Zone       stock.Zone      `json:"zone" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity" binding:"required"` // signed, non-zero
	RefID      *uuid.UUID      `json:"ref_movement_id"`
	ActorID    *uuid.UUID      `json:"actor_id"`
	Note       string          `json:"note"`
}

// RecordPickRequest records a physical pick. A pick consumes available stock
// and releases the matching reserved quantity in one step; when ReservationID
// is set the reservation's remaining amount is reduced in the same transaction.
type RecordPickRequest struct {
	ProductID     uuid.UUID       `json:"product_id" binding:"required"`
	BatchID       *uuid.UUID      `json:"batch_id"`
	Zone          stock.Zone      `json:"zone" binding:"required"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required"`
	OrderID       *uuid.UUID      `json:"order_id"`
	ReservationID *uuid.UUID      `json:"reservation_id"`
	ActorID       *uuid.UUID      `json:"actor_id"`
	Note          string          `json:"note"`
}

// CreateBatchRequest creates a batch outside of a goods receipt.
type CreateBatchRequest struct {
	ProductID     uuid.UUID  `json:"product_id" binding:"required"`
	ExpiryDate    time.Time  `json:"expiry_date" binding:"required"`
	SlaughterDate *time.Time `json:"slaughter_date"`
	IsFrozen      bool       `json:"is_frozen"`
	SupplierID    *uuid.UUID `json:"supplier_id"`
}

// UpdateBatchRequest corrects the descriptive fields of a batch. The product
// binding is immutable and quantities are never touched here.
type UpdateBatchRequest struct {
	ExpiryDate    time.Time  `json:"expiry_date" binding:"required"`
	SlaughterDate *time.Time `json:"slaughter_date"`
	IsFrozen      bool       `json:"is_frozen"`
	SupplierID    *uuid.UUID `json:"supplier_id"`
}

// MovementResponse represents a ledger movement in API responses
type MovementResponse struct {
	ID            uuid.UUID       `json:"id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Type          string          `json:"type"`
	ProductID     uuid.UUID       `json:"product_id"`
	ProductName   string          `json:"product_name,omitempty"`
	ProductCode   string          `json:"product_code,omitempty"`
	BatchID       *uuid.UUID      `json:"batch_id,omitempty"`
	Zone          stock.Zone      `json:"zone"`
	Quantity      decimal.Decimal `json:"quantity"`
	OrderID       *uuid.UUID      `json:"order_id,omitempty"`
	RefMovementID *uuid.UUID      `json:"ref_movement_id,omitempty"`
	ActorID       *uuid.UUID      `json:"actor_id,omitempty"`
	Note          string          `json:"note,omitempty"`
	ExpiryDate    *time.Time      `json:"expiry_date,omitempty"`
	IsFrozen      *bool           `json:"is_frozen,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TransferResponse carries both legs of a relocation.
type TransferResponse struct {
	Out MovementResponse `json:"out"`
	In  MovementResponse `json:"in"`
}

// ReceiveResponse carries the goods-in movement plus the announcement
// completion, when one was closed by the receipt.
type ReceiveResponse struct {
	Movement  MovementResponse  `json:"movement"`
	Completed *MovementResponse `json:"completed,omitempty"`
	BatchID   *uuid.UUID        `json:"batch_id,omitempty"`
}

// StockLevelResponse represents a derived stock counter row
type StockLevelResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	BatchID   *uuid.UUID      `json:"batch_id,omitempty"`
	Zone      stock.Zone      `json:"zone"`
	Available decimal.Decimal `json:"available"`
	Reserved  decimal.Decimal `json:"reserved"`
	InTransit decimal.Decimal `json:"in_transit"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BatchResponse represents a batch in API responses
type BatchResponse struct {
	ID            uuid.UUID  `json:"id"`
	ProductID     uuid.UUID  `json:"product_id"`
	SupplierID    *uuid.UUID `json:"supplier_id,omitempty"`
	SupplierName  string     `json:"supplier_name,omitempty"`
	ExpiryDate    time.Time  `json:"expiry_date"`
	SlaughterDate *time.Time `json:"slaughter_date,omitempty"`
	IsFrozen      bool       `json:"is_frozen"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// MovementListFilter represents filter options for the movement list
type MovementListFilter struct {
	ProductID *uuid.UUID `form:"product_id"`
	BatchID   *uuid.UUID `form:"batch_id"`
	Zone      string     `form:"zone"`
	Type      string     `form:"type"`
	OrderID   *uuid.UUID `form:"order_id"`
	StartDate *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate   *time.Time `form:"end_date" time_format:"2006-01-02"`
	Search    string     `form:"search"`
	Page      int        `form:"page" binding:"min=0"`
	PageSize  int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ExpiryWarning is one row of the expiry report.
type ExpiryWarning struct {
	BatchID    uuid.UUID       `json:"batch_id"`
	ProductID  uuid.UUID       `json:"product_id"`
	ExpiryDate time.Time       `json:"expiry_date"`
	DaysLeft   int             `json:"days_left"` // negative when already expired
	Status     string          `json:"status"`    // NEAR or EXPIRED
	Available  decimal.Decimal `json:"available"`
}

// OverReservationWarning is one row of the over-reservation report.
type OverReservationWarning struct {
	ProductID uuid.UUID       `json:"product_id"`
	Reserved  decimal.Decimal `json:"reserved"`
	Available decimal.Decimal `json:"available"`
	Excess    decimal.Decimal `json:"excess"`
}

// ZoneMismatchWarning is one row of the zone mismatch report.
type ZoneMismatchWarning struct {
	MovementID  uuid.UUID  `json:"movement_id"`
	Type        string     `json:"type"`
	ProductID   uuid.UUID  `json:"product_id"`
	BatchID     uuid.UUID  `json:"batch_id"`
	Zone        stock.Zone `json:"zone"`
	BatchFrozen bool       `json:"batch_frozen"`
	ZoneFrozen  bool       `json:"zone_frozen"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

// toMovementResponse maps a ledger movement to its API representation.
func toMovementResponse(m *stock.Movement) MovementResponse {
	resp := MovementResponse{
		ID:            m.ID,
		OccurredAt:    m.OccurredAt,
		Type:          m.Type.String(),
		ProductID:     m.ProductID,
		ProductName:   m.ProductName,
		ProductCode:   m.ProductCode,
		Zone:          m.Zone,
		Quantity:      m.Quantity,
		OrderID:       m.OrderID,
		RefMovementID: m.RefMovementID,
		ActorID:       m.ActorID,
		Note:          m.Note,
		CreatedAt:     m.CreatedAt,
	}
	if m.IsBatched() {
		batchID := m.BatchID
		resp.BatchID = &batchID
		resp.ExpiryDate = m.ExpiryDate
		resp.IsFrozen = m.IsFrozen
	}
	return resp
}

// toStockLevelResponse maps a stock level row to its API representation.
func toStockLevelResponse(l *stock.StockLevel) StockLevelResponse {
	resp := StockLevelResponse{
		ProductID: l.ProductID,
		Zone:      l.Zone,
		Available: l.Available,
		Reserved:  l.Reserved,
		InTransit: l.InTransit,
		UpdatedAt: l.UpdatedAt,
	}
	if l.BatchID != uuid.Nil {
		batchID := l.BatchID
		resp.BatchID = &batchID
	}
	return resp
}

// toBatchResponse maps a batch to its API representation.
func toBatchResponse(b *stock.Batch) BatchResponse {
	return BatchResponse{
		ID:            b.ID,
		ProductID:     b.ProductID,
		SupplierID:    b.SupplierID,
		SupplierName:  b.SupplierName,
		ExpiryDate:    b.ExpiryDate,
		SlaughterDate: b.SlaughterDate,
		IsFrozen:      b.IsFrozen,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}
