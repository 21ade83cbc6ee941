package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/freshstock/backend/internal/domain/shared"
	"github.com/freshstock/backend/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormMovementRepository implements MovementRepository using GORM.
// The ledger is append-only; there are no update or delete paths here.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Append durably stores a new movement
func (r *GormMovementRepository) Append(ctx context.Context, m *stock.Movement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// AppendAll stores several movements of one logical operation
func (r *GormMovementRepository) AppendAll(ctx context.Context, ms []*stock.Movement) error {
	if len(ms) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(ms).Error
}

// FindByID finds a movement by its ID
func (r *GormMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.Movement, error) {
	var m stock.Movement
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// List finds movements matching the filter, paginated
func (r *GormMovementRepository) List(ctx context.Context, filter stock.MovementFilter) ([]stock.Movement, error) {
	var ms []stock.Movement
	query := r.applyFilter(r.db.WithContext(ctx).Model(&stock.Movement{}), filter)

	orderBy := ValidateSortField(filter.OrderBy, MovementSortFields, "occurred_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	if err := query.Offset(filter.Offset()).Limit(filter.Limit()).Find(&ms).Error; err != nil {
		return nil, err
	}
	return ms, nil
}

// Count counts movements matching the filter
func (r *GormMovementRepository) Count(ctx context.Context, filter stock.MovementFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&stock.Movement{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindBatchedSince finds batch-referencing movements recorded at or after
// the given instant
func (r *GormMovementRepository) FindBatchedSince(ctx context.Context, since time.Time) ([]stock.Movement, error) {
	var ms []stock.Movement
	if err := r.db.WithContext(ctx).
		Where("batch_id <> ? AND occurred_at >= ?", uuid.Nil, since).
		Order("occurred_at DESC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return ms, nil
}

// SumByKey sums signed quantities for an exact aggregate key, optionally
// restricted to the given types
func (r *GormMovementRepository) SumByKey(ctx context.Context, key stock.LevelKey, types ...stock.MovementType) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	query := r.db.WithContext(ctx).
		Model(&stock.Movement{}).
		Select("COALESCE(SUM(quantity), 0) as total").
		Where("product_id = ? AND batch_id = ? AND zone = ?", key.ProductID, key.BatchID, key.Zone)
	if len(types) > 0 {
		query = query.Where("type IN ?", types)
	}
	if err := query.Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// ExistsByReference reports whether a movement of the given type already
// references the given movement
func (r *GormMovementRepository) ExistsByReference(ctx context.Context, refMovementID uuid.UUID, typ stock.MovementType) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&stock.Movement{}).
		Where("ref_movement_id = ? AND type = ?", refMovementID, typ).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies ledger filter options to the query, without pagination
func (r *GormMovementRepository) applyFilter(query *gorm.DB, filter stock.MovementFilter) *gorm.DB {
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.BatchID != nil {
		query = query.Where("batch_id = ?", *filter.BatchID)
	}
	if filter.Zone != nil {
		query = query.Where("zone = ?", *filter.Zone)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.OrderID != nil {
		query = query.Where("order_id = ?", *filter.OrderID)
	}
	if filter.StartDate != nil {
		query = query.Where("occurred_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("occurred_at <= ?", *filter.EndDate)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("product_name ILIKE ? OR product_code ILIKE ?", pattern, pattern)
	}
	return query
}

// Ensure GormMovementRepository implements MovementRepository
var _ stock.MovementRepository = (*GormMovementRepository)(nil)
