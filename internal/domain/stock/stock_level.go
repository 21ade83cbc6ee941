package stock

import (
	"time"

	"github.com/freshstock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LevelKey identifies one stock level record. BatchID is uuid.Nil for
// unbatched keys so the composite unique index covers every key with a
// single row (SQL NULLs would not conflict on upsert).
type LevelKey struct {
	ProductID uuid.UUID
	BatchID   uuid.UUID
	Zone      Zone
}

// Unbatched returns the key for the same product/zone without a batch
func (k LevelKey) Unbatched() LevelKey {
	return LevelKey{ProductID: k.ProductID, Zone: k.Zone}
}

// StockDelta is an additive change to one stock level record. Deltas
// commute, so concurrent writers on the same key converge regardless of
// interleaving.
type StockDelta struct {
	Available decimal.Decimal
	Reserved  decimal.Decimal
	InTransit decimal.Decimal
}

// IsZero returns true if the delta changes nothing
func (d StockDelta) IsZero() bool {
	return d.Available.IsZero() && d.Reserved.IsZero() && d.InTransit.IsZero()
}

// Add returns the component-wise sum of two deltas
func (d StockDelta) Add(o StockDelta) StockDelta {
	return StockDelta{
		Available: d.Available.Add(o.Available),
		Reserved:  d.Reserved.Add(o.Reserved),
		InTransit: d.InTransit.Add(o.InTransit),
	}
}

// StockLevel is the derived running total per (product, batch, zone) key.
// It is a cache over the movement ledger: available must equal the sum of
// signed movement quantities for the exact key at all times observable
// between completed operations. Records are created on first write and never
// deleted; an all-zero record is semantically empty but may persist.
type StockLevel struct {
	shared.BaseEntity
	ProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_level_key,priority:1"`
	BatchID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_level_key,priority:2"` // uuid.Nil when unbatched
	Zone      Zone            `gorm:"type:varchar(50);not null;uniqueIndex:idx_stock_level_key,priority:3"`
	Available decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Reserved  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // informational; reservations are the source of truth for demand
	InTransit decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (StockLevel) TableName() string {
	return "stock_levels"
}

// NewStockLevel creates a zeroed record for a key
func NewStockLevel(key LevelKey) *StockLevel {
	return &StockLevel{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  key.ProductID,
		BatchID:    key.BatchID,
		Zone:       key.Zone,
		Available:  decimal.Zero,
		Reserved:   decimal.Zero,
		InTransit:  decimal.Zero,
	}
}

// Key returns the level's key
func (l *StockLevel) Key() LevelKey {
	return LevelKey{ProductID: l.ProductID, BatchID: l.BatchID, Zone: l.Zone}
}

// Apply adds a delta in memory. Persistence goes through
// StockLevelRepository.ApplyDelta, which performs the same addition
// atomically in the store.
func (l *StockLevel) Apply(d StockDelta) {
	l.Available = l.Available.Add(d.Available)
	l.Reserved = l.Reserved.Add(d.Reserved)
	l.InTransit = l.InTransit.Add(d.InTransit)
	l.UpdatedAt = time.Now()
}

// IsEmpty returns true if all counters are zero
func (l *StockLevel) IsEmpty() bool {
	return l.Available.IsZero() && l.Reserved.IsZero() && l.InTransit.IsZero()
}
