package persistence

import (
	"context"
	"errors"

	appstock "github.com/freshstock/backend/internal/application/stock"
	"github.com/freshstock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Master data is owned by another system; these adapters only read the
// replicated products and suppliers tables to resolve names and codes.

type productRecord struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"type:varchar(255);not null"`
	Code string    `gorm:"type:varchar(100);not null"`
}

func (productRecord) TableName() string {
	return "products"
}

type supplierRecord struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"type:varchar(255);not null"`
}

func (supplierRecord) TableName() string {
	return "suppliers"
}

// GormProductReader implements ProductReader over the products table
type GormProductReader struct {
	db *gorm.DB
}

// NewGormProductReader creates a new GormProductReader
func NewGormProductReader(db *gorm.DB) *GormProductReader {
	return &GormProductReader{db: db}
}

// GetProduct returns the product snapshot for the given ID
func (r *GormProductReader) GetProduct(ctx context.Context, id uuid.UUID) (*appstock.ProductInfo, error) {
	var rec productRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("product %s not found", id)
		}
		return nil, err
	}
	return &appstock.ProductInfo{ID: rec.ID, Name: rec.Name, Code: rec.Code}, nil
}

// GormSupplierReader implements SupplierReader over the suppliers table
type GormSupplierReader struct {
	db *gorm.DB
}

// NewGormSupplierReader creates a new GormSupplierReader
func NewGormSupplierReader(db *gorm.DB) *GormSupplierReader {
	return &GormSupplierReader{db: db}
}

// GetSupplier returns the supplier snapshot for the given ID
func (r *GormSupplierReader) GetSupplier(ctx context.Context, id uuid.UUID) (*appstock.SupplierInfo, error) {
	var rec supplierRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("supplier %s not found", id)
		}
		return nil, err
	}
	return &appstock.SupplierInfo{ID: rec.ID, Name: rec.Name}, nil
}

// Ensure the readers implement the application ports
var (
	_ appstock.ProductReader  = (*GormProductReader)(nil)
	_ appstock.SupplierReader = (*GormSupplierReader)(nil)
)
