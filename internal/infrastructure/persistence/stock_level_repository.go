package persistence

import (
	"context"
	"errors"

	"github.com/freshstock/backend/internal/domain/shared"
	"github.com/freshstock/backend/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockLevelRepository implements StockLevelRepository using GORM
type GormStockLevelRepository struct {
	db *gorm.DB
}

// NewGormStockLevelRepository creates a new GormStockLevelRepository
func NewGormStockLevelRepository(db *gorm.DB) *GormStockLevelRepository {
	return &GormStockLevelRepository{db: db}
}

// ApplyDelta atomically increments the record for the key, inserting a fresh
// row when none exists. The addition happens in the database via ON CONFLICT
// DO UPDATE, so concurrent deltas on the same key never lose updates.
func (r *GormStockLevelRepository) ApplyDelta(ctx context.Context, key stock.LevelKey, delta stock.StockDelta) error {
	if delta.IsZero() {
		return nil
	}

	level := stock.NewStockLevel(key)
	level.Apply(delta)

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "product_id"}, {Name: "batch_id"}, {Name: "zone"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"available":  gorm.Expr("stock_levels.available + ?", delta.Available),
				"reserved":   gorm.Expr("stock_levels.reserved + ?", delta.Reserved),
				"in_transit": gorm.Expr("stock_levels.in_transit + ?", delta.InTransit),
				"updated_at": level.UpdatedAt,
			}),
		}).
		Create(level).Error
}

// FindByKey finds the record for an exact key
func (r *GormStockLevelRepository) FindByKey(ctx context.Context, key stock.LevelKey) (*stock.StockLevel, error) {
	var level stock.StockLevel
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND batch_id = ? AND zone = ?", key.ProductID, key.BatchID, key.Zone).
		First(&level).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &level, nil
}

// FindByProduct finds all records for a product across batches and zones
func (r *GormStockLevelRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]stock.StockLevel, error) {
	var levels []stock.StockLevel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("zone ASC, batch_id ASC").
		Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// FindByBatch finds all records for a batch across zones
func (r *GormStockLevelRepository) FindByBatch(ctx context.Context, batchID uuid.UUID) ([]stock.StockLevel, error) {
	var levels []stock.StockLevel
	if err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("zone ASC").
		Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// SumAvailableByBatch sums available quantity for a batch across zones
func (r *GormStockLevelRepository) SumAvailableByBatch(ctx context.Context, batchID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&stock.StockLevel{}).
		Select("COALESCE(SUM(available), 0) as total").
		Where("batch_id = ?", batchID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// SumAvailableByProduct sums available quantity for a product across all
// batches and zones
func (r *GormStockLevelRepository) SumAvailableByProduct(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&stock.StockLevel{}).
		Select("COALESCE(SUM(available), 0) as total").
		Where("product_id = ?", productID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// SumAvailableByProducts sums available quantity per product for the given
// product IDs
func (r *GormStockLevelRepository) SumAvailableByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	sums := make(map[uuid.UUID]decimal.Decimal, len(productIDs))
	if len(productIDs) == 0 {
		return sums, nil
	}

	var rows []struct {
		ProductID uuid.UUID
		Total     decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&stock.StockLevel{}).
		Select("product_id, COALESCE(SUM(available), 0) as total").
		Where("product_id IN ?", productIDs).
		Group("product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		sums[row.ProductID] = row.Total
	}
	return sums, nil
}

// Ensure GormStockLevelRepository implements StockLevelRepository
var _ stock.StockLevelRepository = (*GormStockLevelRepository)(nil)
