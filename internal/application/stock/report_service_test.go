package stock

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshstock/backend/internal/domain/reservation"
	"github.com/freshstock/backend/internal/domain/stock"
)

type reportFixture struct {
	scope   *memoryScope
	service *ReportService
}

func newReportFixture() *reportFixture {
	scope := newMemoryScope()
	repos := scope.repos()
	return &reportFixture{
		scope: scope,
		service: NewReportService(
			repos.BatchRepo(),
			repos.LevelRepo(),
			repos.MovementRepo(),
			repos.ReservationRepo(),
		),
	}
}

func (f *reportFixture) addBatch(t *testing.T, productID uuid.UUID, expiry time.Time, frozen bool) *stock.Batch {
	t.Helper()
	batch, err := stock.NewBatch(productID, expiry, frozen)
	require.NoError(t, err)
	require.NoError(t, f.scope.repos().BatchRepo().Save(context.Background(), batch))
	return batch
}

func (f *reportFixture) addStock(t *testing.T, key stock.LevelKey, available int64) {
	t.Helper()
	delta := stock.StockDelta{Available: decimal.NewFromInt(available)}
	require.NoError(t, f.scope.repos().LevelRepo().ApplyDelta(context.Background(), key, delta))
}

func TestReportService_ExpiryReport(t *testing.T) {
	ctx := context.Background()
	asOf := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	productID := uuid.New()

	f := newReportFixture()
	expiredBatch := f.addBatch(t, productID, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), false) // today
	nearBatch := f.addBatch(t, productID, time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC), false)    // +3 days
	f.addBatch(t, productID, time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC), false)                 // outside window

	f.addStock(t, stock.LevelKey{ProductID: productID, BatchID: expiredBatch.ID, Zone: stock.ZoneAmbient}, 12)
	f.addStock(t, stock.LevelKey{ProductID: productID, BatchID: nearBatch.ID, Zone: stock.ZoneAmbient}, 5)
	f.addStock(t, stock.LevelKey{ProductID: productID, BatchID: nearBatch.ID, Zone: stock.ZoneFrozen}, 3)

	warnings, err := f.service.ExpiryReport(ctx, asOf, 0) // 0 means default threshold

	require.NoError(t, err)
	require.Len(t, warnings, 2)

	// sorted by expiry, the batch expiring today first
	assert.Equal(t, expiredBatch.ID, warnings[0].BatchID)
	assert.Equal(t, ExpiryStatusExpired, warnings[0].Status)
	assert.Equal(t, 0, warnings[0].DaysLeft)
	assert.True(t, warnings[0].Available.Equal(decimal.NewFromInt(12)))

	// availability summed across zones
	assert.Equal(t, nearBatch.ID, warnings[1].BatchID)
	assert.Equal(t, ExpiryStatusNear, warnings[1].Status)
	assert.Equal(t, 3, warnings[1].DaysLeft)
	assert.True(t, warnings[1].Available.Equal(decimal.NewFromInt(8)))
}

func TestReportService_ExpiryReport_PastExpiry(t *testing.T) {
	ctx := context.Background()
	asOf := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	productID := uuid.New()

	f := newReportFixture()
	old := f.addBatch(t, productID, time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC), false)

	warnings, err := f.service.ExpiryReport(ctx, asOf, 5)

	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, old.ID, warnings[0].BatchID)
	assert.Equal(t, ExpiryStatusExpired, warnings[0].Status)
	assert.Equal(t, -4, warnings[0].DaysLeft)
	assert.True(t, warnings[0].Available.IsZero())
}

func TestReportService_OverReservationReport(t *testing.T) {
	ctx := context.Background()
	asOf := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	due := asOf.AddDate(0, 0, -1)

	shortProduct := uuid.New()
	coveredProduct := uuid.New()

	f := newReportFixture()
	f.addStock(t, stock.LevelKey{ProductID: shortProduct, Zone: stock.ZoneAmbient}, 100)
	f.addStock(t, stock.LevelKey{ProductID: coveredProduct, Zone: stock.ZoneAmbient}, 200)

	reserve := func(productID uuid.UUID, quantity int64) *reservation.Reservation {
		res, err := reservation.New(productID, uuid.New(), due, decimal.NewFromInt(quantity))
		require.NoError(t, err)
		require.NoError(t, f.scope.repos().ReservationRepo().Save(ctx, res))
		return res
	}
	reserve(shortProduct, 150)
	reserve(coveredProduct, 50)

	// cancelled demand does not count
	cancelled := reserve(shortProduct, 500)
	cancelled.Cancel()
	require.NoError(t, f.scope.repos().ReservationRepo().Save(ctx, cancelled))

	warnings, err := f.service.OverReservationReport(ctx, asOf)

	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, shortProduct, warnings[0].ProductID)
	assert.True(t, warnings[0].Reserved.Equal(decimal.NewFromInt(150)))
	assert.True(t, warnings[0].Available.Equal(decimal.NewFromInt(100)))
	assert.True(t, warnings[0].Excess.Equal(decimal.NewFromInt(50)))
}

func TestReportService_OverReservationReport_FutureDemandExcluded(t *testing.T) {
	ctx := context.Background()
	asOf := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	productID := uuid.New()

	f := newReportFixture()
	res, err := reservation.New(productID, uuid.New(), asOf.AddDate(0, 0, 7), decimal.NewFromInt(999))
	require.NoError(t, err)
	require.NoError(t, f.scope.repos().ReservationRepo().Save(ctx, res))

	warnings, err := f.service.OverReservationReport(ctx, asOf)

	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestReportService_OverReservationReport_SortedByExcess(t *testing.T) {
	ctx := context.Background()
	asOf := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	due := asOf.AddDate(0, 0, -1)

	smallGap := uuid.New()
	bigGap := uuid.New()

	f := newReportFixture()
	for _, spec := range []struct {
		productID uuid.UUID
		quantity  int64
	}{
		{smallGap, 10},
		{bigGap, 300},
	} {
		res, err := reservation.New(spec.productID, uuid.New(), due, decimal.NewFromInt(spec.quantity))
		require.NoError(t, err)
		require.NoError(t, f.scope.repos().ReservationRepo().Save(ctx, res))
	}

	warnings, err := f.service.OverReservationReport(ctx, asOf)

	require.NoError(t, err)
	require.Len(t, warnings, 2)
	assert.Equal(t, bigGap, warnings[0].ProductID)
	assert.Equal(t, smallGap, warnings[1].ProductID)
}

func TestReportService_ZoneMismatchReport(t *testing.T) {
	ctx := context.Background()
	asOf := time.Now()
	productID := uuid.New()

	f := newReportFixture()
	frozenBatch := f.addBatch(t, productID, asOf.AddDate(0, 0, 30), true)
	ambientBatch := f.addBatch(t, productID, asOf.AddDate(0, 0, 30), false)

	record := func(batch *stock.Batch, zone stock.Zone, occurredAt time.Time) *stock.Movement {
		m, err := stock.NewMovement(stock.MovementGoodsIn, productID, zone, decimal.NewFromInt(10))
		require.NoError(t, err)
		m.WithBatch(batch)
		m.OccurredAt = occurredAt
		require.NoError(t, f.scope.repos().MovementRepo().Append(ctx, m))
		return m
	}

	mismatch := record(frozenBatch, stock.ZoneAmbient, asOf.AddDate(0, 0, -2)) // frozen goods in ambient zone
	record(frozenBatch, stock.ZoneFrozen, asOf.AddDate(0, 0, -2))              // fine
	record(ambientBatch, "TK_MEAT", asOf.AddDate(0, 0, -2))                    // ambient goods in a TK sub-zone
	record(frozenBatch, stock.ZoneAmbient, asOf.AddDate(0, 0, -20))            // outside lookback

	warnings, err := f.service.ZoneMismatchReport(ctx, asOf, 0) // default lookback

	require.NoError(t, err)
	require.Len(t, warnings, 2)
	ids := []uuid.UUID{warnings[0].MovementID, warnings[1].MovementID}
	assert.Contains(t, ids, mismatch.ID)
	for _, w := range warnings {
		assert.NotEqual(t, w.BatchFrozen, w.ZoneFrozen)
	}
}

func TestReportService_ZoneMismatchReport_BatchCorrectionClearsWarning(t *testing.T) {
	ctx := context.Background()
	asOf := time.Now()
	productID := uuid.New()

	f := newReportFixture()
	batch := f.addBatch(t, productID, asOf.AddDate(0, 0, 30), true)

	m, err := stock.NewMovement(stock.MovementGoodsIn, productID, stock.ZoneAmbient, decimal.NewFromInt(10))
	require.NoError(t, err)
	m.WithBatch(batch)
	require.NoError(t, f.scope.repos().MovementRepo().Append(ctx, m))

	warnings, err := f.service.ZoneMismatchReport(ctx, asOf, 14)
	require.NoError(t, err)
	require.Len(t, warnings, 1)

	// the frozen flag turned out to be a data entry error; fixing the batch
	// clears the warning even though the movement snapshot still says frozen
	require.NoError(t, batch.UpdateDetails(batch.ExpiryDate, nil, false, nil, ""))
	require.NoError(t, f.scope.repos().BatchRepo().Save(ctx, batch))

	warnings, err = f.service.ZoneMismatchReport(ctx, asOf, 14)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}
