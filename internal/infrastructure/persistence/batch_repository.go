package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/freshstock/backend/internal/domain/shared"
	"github.com/freshstock/backend/internal/domain/stock"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBatchRepository implements BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByID finds a batch by its ID
func (r *GormBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.Batch, error) {
	var b stock.Batch
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// FindByIDs finds multiple batches by their IDs
func (r *GormBatchRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]stock.Batch, error) {
	if len(ids) == 0 {
		return []stock.Batch{}, nil
	}
	var batches []stock.Batch
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindByProduct finds all batches of a product
func (r *GormBatchRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]stock.Batch, error) {
	var batches []stock.Batch
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("expiry_date ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindExpiringBefore finds batches whose expiry date is on or before the
// cutoff day
func (r *GormBatchRepository) FindExpiringBefore(ctx context.Context, cutoff time.Time) ([]stock.Batch, error) {
	var batches []stock.Batch
	if err := r.db.WithContext(ctx).
		Where("expiry_date <= ?", cutoff).
		Order("expiry_date ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// Save creates or updates a batch
func (r *GormBatchRepository) Save(ctx context.Context, b *stock.Batch) error {
	return r.db.WithContext(ctx).Save(b).Error
}

// Ensure GormBatchRepository implements BatchRepository
var _ stock.BatchRepository = (*GormBatchRepository)(nil)
