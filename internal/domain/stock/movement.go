package stock

import (
	"time"

	"github.com/freshstock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType represents the type of a stock movement
type MovementType string

const (
	// MovementGoodsIn represents goods received into the warehouse
	MovementGoodsIn MovementType = "GOODS_IN"
	// MovementGoodsOut represents goods leaving the warehouse (shipment)
	MovementGoodsOut MovementType = "GOODS_OUT"
	// MovementReserve records a demand hold against available stock
	MovementReserve MovementType = "RESERVE"
	// MovementUnreserve releases a previously recorded hold
	MovementUnreserve MovementType = "UNRESERVE"
	// MovementPick represents picking reserved stock for an order
	MovementPick MovementType = "PICK"
	// MovementWriteOff represents a recorded loss (expiry, damage, spoilage)
	MovementWriteOff MovementType = "WRITE_OFF"
	// MovementStockCorrection represents a signed manual correction
	MovementStockCorrection MovementType = "STOCK_CORRECTION"
	// MovementTransferIn represents stock arriving from another zone or batch
	MovementTransferIn MovementType = "TRANSFER_IN"
	// MovementTransferOut represents stock leaving for another zone or batch
	MovementTransferOut MovementType = "TRANSFER_OUT"
	// MovementReturnFromCustomer represents returned goods restocked
	MovementReturnFromCustomer MovementType = "RETURN_FROM_CUSTOMER"
	// MovementReturnToSupplier represents goods sent back to the supplier
	MovementReturnToSupplier MovementType = "RETURN_TO_SUPPLIER"
	// MovementInboundRecorded represents an announced delivery not yet received
	MovementInboundRecorded MovementType = "INBOUND_RECORDED"
	// MovementInboundCompleted closes a previously announced delivery
	MovementInboundCompleted MovementType = "INBOUND_COMPLETED"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementGoodsIn,
		MovementGoodsOut,
		MovementReserve,
		MovementUnreserve,
		MovementPick,
		MovementWriteOff,
		MovementStockCorrection,
		MovementTransferIn,
		MovementTransferOut,
		MovementReturnFromCustomer,
		MovementReturnToSupplier,
		MovementInboundRecorded,
		MovementInboundCompleted:
		return true
	}
	return false
}

// Sign returns +1 for types that add quantity, -1 for types that remove it,
// and 0 for STOCK_CORRECTION, whose quantity carries its own sign.
func (t MovementType) Sign() int {
	switch t {
	case MovementGoodsIn, MovementTransferIn, MovementReturnFromCustomer,
		MovementReserve, MovementInboundRecorded:
		return 1
	case MovementGoodsOut, MovementPick, MovementWriteOff, MovementTransferOut,
		MovementReturnToSupplier, MovementUnreserve, MovementInboundCompleted:
		return -1
	}
	return 0
}

// AffectsAvailable returns true if the type changes the available counter
func (t MovementType) AffectsAvailable() bool {
	switch t {
	case MovementGoodsIn, MovementGoodsOut, MovementPick, MovementWriteOff,
		MovementStockCorrection, MovementTransferIn, MovementTransferOut,
		MovementReturnFromCustomer, MovementReturnToSupplier:
		return true
	}
	return false
}

// AffectsReserved returns true if the type changes the reserved counter.
// PICK both consumes available stock and releases the matching hold.
func (t MovementType) AffectsReserved() bool {
	switch t {
	case MovementReserve, MovementUnreserve, MovementPick:
		return true
	}
	return false
}

// AffectsInTransit returns true if the type changes the in-transit counter
func (t MovementType) AffectsInTransit() bool {
	return t == MovementInboundRecorded || t == MovementInboundCompleted
}

// Movement is an immutable, signed quantity event against a product, an
// optional batch and a storage zone. Once appended it is never updated or
// deleted; corrections are new movements referencing the original.
type Movement struct {
	shared.BaseEntity
	OccurredAt    time.Time       `gorm:"type:timestamptz;not null;index:idx_movement_product_time,priority:2"`
	ActorID       *uuid.UUID      `gorm:"type:uuid"`
	Type          MovementType    `gorm:"type:varchar(30);not null;index"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_product_time,priority:1"`
	ProductName   string          `gorm:"type:varchar(255)"` // denormalized snapshot at write time
	ProductCode   string          `gorm:"type:varchar(100)"` // denormalized snapshot at write time
	BatchID       uuid.UUID       `gorm:"type:uuid;not null;index"` // uuid.Nil when unbatched
	Zone          Zone            `gorm:"type:varchar(50);not null;index"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"` // signed per type convention
	OrderID       *uuid.UUID      `gorm:"type:uuid;index"`
	Note          string          `gorm:"type:varchar(500)"`
	RefMovementID *uuid.UUID      `gorm:"type:uuid;index"` // original movement for corrections
	ExpiryDate    *time.Time      `gorm:"type:date"`       // batch snapshot
	SlaughterDate *time.Time      `gorm:"type:date"`       // batch snapshot
	IsFrozen      *bool           // batch snapshot
}

// TableName returns the table name for GORM
func (Movement) TableName() string {
	return "movements"
}

// NewMovement creates a movement from a positive magnitude. The stored
// quantity is signed according to the type's convention.
func NewMovement(typ MovementType, productID uuid.UUID, zone Zone, magnitude decimal.Decimal) (*Movement, error) {
	if !typ.IsValid() {
		return nil, shared.NewValidationError("invalid movement type %q", typ)
	}
	if typ == MovementStockCorrection {
		return nil, shared.NewValidationError("stock corrections carry their own sign, use NewCorrectionMovement")
	}
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("product ID cannot be empty")
	}
	if zone.IsEmpty() {
		return nil, shared.NewValidationError("zone cannot be empty")
	}
	if magnitude.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("quantity must be positive, got %s", magnitude)
	}

	quantity := magnitude
	if typ.Sign() < 0 {
		quantity = magnitude.Neg()
	}

	return &Movement{
		BaseEntity: shared.NewBaseEntity(),
		OccurredAt: time.Now(),
		Type:       typ,
		ProductID:  productID,
		Zone:       zone,
		Quantity:   quantity,
	}, nil
}

// NewCorrectionMovement creates a STOCK_CORRECTION with an explicitly signed
// quantity. A zero quantity is rejected.
func NewCorrectionMovement(productID uuid.UUID, zone Zone, signedQuantity decimal.Decimal) (*Movement, error) {
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("product ID cannot be empty")
	}
	if zone.IsEmpty() {
		return nil, shared.NewValidationError("zone cannot be empty")
	}
	if signedQuantity.IsZero() {
		return nil, shared.NewValidationError("correction quantity cannot be zero")
	}

	return &Movement{
		BaseEntity: shared.NewBaseEntity(),
		OccurredAt: time.Now(),
		Type:       MovementStockCorrection,
		ProductID:  productID,
		Zone:       zone,
		Quantity:   signedQuantity,
	}, nil
}

// WithBatch attaches a batch and snapshots its descriptive fields onto the
// movement. The caller must have verified the batch belongs to the product.
func (m *Movement) WithBatch(b *Batch) *Movement {
	m.BatchID = b.ID
	m.ExpiryDate = ptrTime(b.ExpiryDate)
	m.SlaughterDate = b.SlaughterDate
	frozen := b.IsFrozen
	m.IsFrozen = &frozen
	return m
}

// WithProductSnapshot stores the denormalized product display fields
func (m *Movement) WithProductSnapshot(name, code string) *Movement {
	m.ProductName = name
	m.ProductCode = code
	return m
}

// WithActor records who performed the operation
func (m *Movement) WithActor(actorID uuid.UUID) *Movement {
	m.ActorID = &actorID
	return m
}

// WithOrder links the movement to an order
func (m *Movement) WithOrder(orderID uuid.UUID) *Movement {
	m.OrderID = &orderID
	return m
}

// WithNote sets the free-text note
func (m *Movement) WithNote(note string) *Movement {
	m.Note = note
	return m
}

// WithReference links the movement to the one it compensates
func (m *Movement) WithReference(movementID uuid.UUID) *Movement {
	m.RefMovementID = &movementID
	return m
}

// Magnitude returns the unsigned quantity
func (m *Movement) Magnitude() decimal.Decimal {
	return m.Quantity.Abs()
}

// IsBatched returns true if the movement references a batch
func (m *Movement) IsBatched() bool {
	return m.BatchID != uuid.Nil
}

// LevelKey returns the aggregate key this movement applies to
func (m *Movement) LevelKey() LevelKey {
	return LevelKey{ProductID: m.ProductID, BatchID: m.BatchID, Zone: m.Zone}
}

// StockDelta returns the aggregate delta justified by this movement
func (m *Movement) StockDelta() StockDelta {
	var d StockDelta
	switch {
	case m.Type.AffectsAvailable():
		d.Available = m.Quantity
	case m.Type.AffectsInTransit():
		d.InTransit = m.Quantity
	case m.Type.AffectsReserved():
		d.Reserved = m.Quantity
	}
	// Picking consumes the hold alongside the physical stock.
	if m.Type == MovementPick {
		d.Reserved = m.Quantity
	}
	return d
}

func ptrTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
