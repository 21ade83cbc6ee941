package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/freshstock/backend/internal/domain/reservation"
	"github.com/freshstock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReservationRepository implements reservation.Repository using GORM
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GormReservationRepository
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// FindByID finds a reservation by its ID
func (r *GormReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	var res reservation.Reservation
	if err := r.db.WithContext(ctx).First(&res, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

// FindByOrder finds all reservations of an order
func (r *GormReservationRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]reservation.Reservation, error) {
	var reservations []reservation.Reservation
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// List finds reservations matching the filter, paginated
func (r *GormReservationRepository) List(ctx context.Context, filter reservation.Filter) ([]reservation.Reservation, error) {
	var reservations []reservation.Reservation
	query := r.applyFilter(r.db.WithContext(ctx).Model(&reservation.Reservation{}), filter)

	orderBy := ValidateSortField(filter.OrderBy, ReservationSortFields, "delivery_date")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	if err := query.Offset(filter.Offset()).Limit(filter.Limit()).Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// Count counts reservations matching the filter
func (r *GormReservationRepository) Count(ctx context.Context, filter reservation.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&reservation.Reservation{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a reservation
func (r *GormReservationRepository) Save(ctx context.Context, res *reservation.Reservation) error {
	return r.db.WithContext(ctx).Save(res).Error
}

// SumActiveByProductDueBefore sums remaining ACTIVE quantities per product
// for reservations due on or before the cutoff day
func (r *GormReservationRepository) SumActiveByProductDueBefore(ctx context.Context, cutoff time.Time) (map[uuid.UUID]decimal.Decimal, error) {
	var rows []struct {
		ProductID uuid.UUID
		Total     decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&reservation.Reservation{}).
		Select("product_id, COALESCE(SUM(quantity), 0) as total").
		Where("status = ? AND delivery_date <= ?", reservation.StatusActive, cutoff).
		Group("product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	sums := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, row := range rows {
		sums[row.ProductID] = row.Total
	}
	return sums, nil
}

// applyFilter applies reservation filter options to the query, without
// pagination
func (r *GormReservationRepository) applyFilter(query *gorm.DB, filter reservation.Filter) *gorm.DB {
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.OrderID != nil {
		query = query.Where("order_id = ?", *filter.OrderID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DueBefore != nil {
		query = query.Where("delivery_date <= ?", *filter.DueBefore)
	}
	if filter.DueAfter != nil {
		query = query.Where("delivery_date >= ?", *filter.DueAfter)
	}
	return query
}

// Ensure GormReservationRepository implements reservation.Repository
var _ reservation.Repository = (*GormReservationRepository)(nil)
