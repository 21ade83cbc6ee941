package stock

import (
	"time"

	"github.com/freshstock/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Batch represents a charge: a lot of one product sharing an expiry date and
// origin. A batch belongs to exactly one product for its lifetime. Only the
// descriptive fields (expiry, slaughter date, frozen flag, supplier) may be
// corrected after creation; there is no deletion path because movement
// history may reference the batch.
type Batch struct {
	shared.BaseEntity
	ProductID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	SupplierID    *uuid.UUID `gorm:"type:uuid;index"`
	SupplierName  string     `gorm:"type:varchar(255)"` // denormalized snapshot at creation
	ExpiryDate    time.Time  `gorm:"type:date;not null;index"`
	SlaughterDate *time.Time `gorm:"type:date"`
	IsFrozen      bool       `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Batch) TableName() string {
	return "batches"
}

// NewBatch creates a new batch for a product
func NewBatch(productID uuid.UUID, expiryDate time.Time, isFrozen bool) (*Batch, error) {
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("product ID cannot be empty")
	}
	if expiryDate.IsZero() {
		return nil, shared.NewValidationError("expiry date is required")
	}

	return &Batch{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		ExpiryDate: expiryDate,
		IsFrozen:   isFrozen,
	}, nil
}

// WithSupplier attaches the supplier reference and display snapshot
func (b *Batch) WithSupplier(supplierID uuid.UUID, name string) *Batch {
	b.SupplierID = &supplierID
	b.SupplierName = name
	return b
}

// WithSlaughterDate sets the slaughter date
func (b *Batch) WithSlaughterDate(d time.Time) *Batch {
	b.SlaughterDate = &d
	return b
}

// BelongsTo returns true if the batch belongs to the given product
func (b *Batch) BelongsTo(productID uuid.UUID) bool {
	return b.ProductID == productID
}

// IsExpiredAt returns true if the batch is expired on the given day.
// A batch expiring today counts as expired.
func (b *Batch) IsExpiredAt(asOf time.Time) bool {
	return !b.ExpiryDate.After(truncateToDay(asOf))
}

// ExpiresWithin returns true if the batch expires within the given number of
// days from asOf (inclusive).
func (b *Batch) ExpiresWithin(asOf time.Time, days int) bool {
	cutoff := truncateToDay(asOf).AddDate(0, 0, days)
	return !b.ExpiryDate.After(cutoff)
}

// UpdateDetails corrects the descriptive fields of the batch. This is an
// administrative correction; quantities are never touched here.
func (b *Batch) UpdateDetails(expiryDate time.Time, slaughterDate *time.Time, isFrozen bool, supplierID *uuid.UUID, supplierName string) error {
	if expiryDate.IsZero() {
		return shared.NewValidationError("expiry date is required")
	}
	b.ExpiryDate = expiryDate
	b.SlaughterDate = slaughterDate
	b.IsFrozen = isFrozen
	b.SupplierID = supplierID
	if supplierName != "" {
		b.SupplierName = supplierName
	}
	b.UpdatedAt = time.Now()
	return nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
