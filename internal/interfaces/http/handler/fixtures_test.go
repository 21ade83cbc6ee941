package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appres "github.com/freshstock/backend/internal/application/reservation"
	appstock "github.com/freshstock/backend/internal/application/stock"
	"github.com/freshstock/backend/internal/domain/reservation"
	"github.com/freshstock/backend/internal/domain/shared"
	"github.com/freshstock/backend/internal/domain/stock"
	"github.com/freshstock/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fakeMovementRepo records appended movements in order.
type fakeMovementRepo struct {
	movements []*stock.Movement
}

func (f *fakeMovementRepo) Append(_ context.Context, m *stock.Movement) error {
	stored := *m
	f.movements = append(f.movements, &stored)
	return nil
}

func (f *fakeMovementRepo) AppendAll(ctx context.Context, ms []*stock.Movement) error {
	for _, m := range ms {
		if err := f.Append(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeMovementRepo) FindByID(_ context.Context, id uuid.UUID) (*stock.Movement, error) {
	for _, m := range f.movements {
		if m.ID == id {
			found := *m
			return &found, nil
		}
	}
	return nil, shared.NewNotFoundError("movement %s not found", id)
}

func (f *fakeMovementRepo) List(_ context.Context, _ stock.MovementFilter) ([]stock.Movement, error) {
	out := make([]stock.Movement, 0, len(f.movements))
	for _, m := range f.movements {
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeMovementRepo) Count(_ context.Context, _ stock.MovementFilter) (int64, error) {
	return int64(len(f.movements)), nil
}

func (f *fakeMovementRepo) FindBatchedSince(_ context.Context, _ time.Time) ([]stock.Movement, error) {
	return nil, nil
}

func (f *fakeMovementRepo) SumByKey(_ context.Context, _ stock.LevelKey, _ ...stock.MovementType) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (f *fakeMovementRepo) ExistsByReference(_ context.Context, refMovementID uuid.UUID, typ stock.MovementType) (bool, error) {
	for _, m := range f.movements {
		if m.Type == typ && m.RefMovementID != nil && *m.RefMovementID == refMovementID {
			return true, nil
		}
	}
	return false, nil
}

// fakeLevelRepo accumulates deltas per key.
type fakeLevelRepo struct {
	deltas map[stock.LevelKey]stock.StockDelta
}

func newFakeLevelRepo() *fakeLevelRepo {
	return &fakeLevelRepo{deltas: make(map[stock.LevelKey]stock.StockDelta)}
}

func (f *fakeLevelRepo) ApplyDelta(_ context.Context, key stock.LevelKey, delta stock.StockDelta) error {
	f.deltas[key] = f.deltas[key].Add(delta)
	return nil
}

func (f *fakeLevelRepo) FindByKey(_ context.Context, key stock.LevelKey) (*stock.StockLevel, error) {
	delta, ok := f.deltas[key]
	if !ok {
		return nil, shared.NewNotFoundError("no stock level for key")
	}
	level := stock.NewStockLevel(key)
	level.Apply(delta)
	return level, nil
}

func (f *fakeLevelRepo) FindByProduct(_ context.Context, productID uuid.UUID) ([]stock.StockLevel, error) {
	var out []stock.StockLevel
	for key, delta := range f.deltas {
		if key.ProductID != productID {
			continue
		}
		level := stock.NewStockLevel(key)
		level.Apply(delta)
		out = append(out, *level)
	}
	return out, nil
}

func (f *fakeLevelRepo) FindByBatch(_ context.Context, _ uuid.UUID) ([]stock.StockLevel, error) {
	return nil, nil
}

func (f *fakeLevelRepo) SumAvailableByBatch(_ context.Context, _ uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (f *fakeLevelRepo) SumAvailableByProduct(_ context.Context, _ uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (f *fakeLevelRepo) SumAvailableByProducts(_ context.Context, _ []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	return map[uuid.UUID]decimal.Decimal{}, nil
}

// fakeBatchRepo is a map-backed batch store.
type fakeBatchRepo struct {
	batches map[uuid.UUID]*stock.Batch
}

func newFakeBatchRepo() *fakeBatchRepo {
	return &fakeBatchRepo{batches: make(map[uuid.UUID]*stock.Batch)}
}

func (f *fakeBatchRepo) FindByID(_ context.Context, id uuid.UUID) (*stock.Batch, error) {
	batch, ok := f.batches[id]
	if !ok {
		return nil, shared.NewNotFoundError("batch %s not found", id)
	}
	found := *batch
	return &found, nil
}

func (f *fakeBatchRepo) FindByIDs(_ context.Context, _ []uuid.UUID) ([]stock.Batch, error) {
	return nil, nil
}

func (f *fakeBatchRepo) FindByProduct(_ context.Context, _ uuid.UUID) ([]stock.Batch, error) {
	return nil, nil
}

func (f *fakeBatchRepo) FindExpiringBefore(_ context.Context, _ time.Time) ([]stock.Batch, error) {
	return nil, nil
}

func (f *fakeBatchRepo) Save(_ context.Context, b *stock.Batch) error {
	stored := *b
	f.batches[b.ID] = &stored
	return nil
}

// fakeReservationRepo is a map-backed reservation store.
type fakeReservationRepo struct {
	reservations map[uuid.UUID]*reservation.Reservation
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{reservations: make(map[uuid.UUID]*reservation.Reservation)}
}

func (f *fakeReservationRepo) FindByID(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	res, ok := f.reservations[id]
	if !ok {
		return nil, shared.NewNotFoundError("reservation %s not found", id)
	}
	found := *res
	return &found, nil
}

func (f *fakeReservationRepo) FindByOrder(_ context.Context, orderID uuid.UUID) ([]reservation.Reservation, error) {
	var out []reservation.Reservation
	for _, res := range f.reservations {
		if res.OrderID == orderID {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) List(_ context.Context, _ reservation.Filter) ([]reservation.Reservation, error) {
	var out []reservation.Reservation
	for _, res := range f.reservations {
		out = append(out, *res)
	}
	return out, nil
}

func (f *fakeReservationRepo) Count(_ context.Context, _ reservation.Filter) (int64, error) {
	return int64(len(f.reservations)), nil
}

func (f *fakeReservationRepo) Save(_ context.Context, res *reservation.Reservation) error {
	stored := *res
	f.reservations[res.ID] = &stored
	return nil
}

func (f *fakeReservationRepo) SumActiveByProductDueBefore(_ context.Context, _ time.Time) (map[uuid.UUID]decimal.Decimal, error) {
	return map[uuid.UUID]decimal.Decimal{}, nil
}

// stubProducts resolves product snapshots from a fixed map.
type stubProducts map[uuid.UUID]appstock.ProductInfo

func (s stubProducts) GetProduct(_ context.Context, id uuid.UUID) (*appstock.ProductInfo, error) {
	info, ok := s[id]
	if !ok {
		return nil, shared.NewNotFoundError("product %s not found", id)
	}
	return &info, nil
}

// stubSuppliers resolves supplier snapshots from a fixed map.
type stubSuppliers map[uuid.UUID]appstock.SupplierInfo

func (s stubSuppliers) GetSupplier(_ context.Context, id uuid.UUID) (*appstock.SupplierInfo, error) {
	info, ok := s[id]
	if !ok {
		return nil, shared.NewNotFoundError("supplier %s not found", id)
	}
	return &info, nil
}

// apiFixture wires the full handler stack over in-memory fakes.
type apiFixture struct {
	engine    *gin.Engine
	movements *fakeMovementRepo
	levels    *fakeLevelRepo
	batches   *fakeBatchRepo
	holds     *fakeReservationRepo
	productID uuid.UUID
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	movements := &fakeMovementRepo{}
	levels := newFakeLevelRepo()
	batches := newFakeBatchRepo()
	holds := newFakeReservationRepo()

	productID := uuid.New()
	products := stubProducts{
		productID: {ID: productID, Name: "Duck Breast", Code: "DKB-07"},
	}
	suppliers := stubSuppliers{}

	scope := appstock.NewNoOpTransactionScope(movements, levels, batches, holds)
	operations := appstock.NewOperationsService(scope, products, suppliers)
	queries := appstock.NewMovementQueryService(movements, levels)
	batchService := appstock.NewBatchService(batches, levels, products, suppliers)
	reportService := appstock.NewReportService(batches, levels, movements, holds)
	reservationService := appres.NewService(scope)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1")
	NewStockHandler(operations, queries).RegisterRoutes(api)
	NewMovementHandler(queries).RegisterRoutes(api)
	NewBatchHandler(batchService).RegisterRoutes(api)
	NewReservationHandler(reservationService).RegisterRoutes(api)
	NewReportHandler(reportService, 5, 14).RegisterRoutes(api)

	return &apiFixture{
		engine:    engine,
		movements: movements,
		levels:    levels,
		batches:   batches,
		holds:     holds,
		productID: productID,
	}
}

// do performs a request against the fixture engine
func (f *apiFixture) do(method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}
