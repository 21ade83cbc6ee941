package stock

import (
	"context"

	"github.com/google/uuid"
)

// ProductInfo is the product master data snapshot the stock operations need.
type ProductInfo struct {
	ID   uuid.UUID
	Name string
	Code string
}

// SupplierInfo is the supplier master data snapshot batches record.
type SupplierInfo struct {
	ID   uuid.UUID
	Name string
}

// ProductReader resolves product master data. Implementations return a
// NOT_FOUND domain error for unknown IDs; unavailable implementations may
// return whatever transport error applies.
type ProductReader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductInfo, error)
}

// SupplierReader resolves supplier master data.
type SupplierReader interface {
	GetSupplier(ctx context.Context, id uuid.UUID) (*SupplierInfo, error)
}
