package stock

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/freshstock/backend/internal/domain/reservation"
	"github.com/freshstock/backend/internal/domain/shared"
	"github.com/freshstock/backend/internal/domain/stock"
)

// memoryState is a plain in-memory image of the four stores. Reads hand out
// copies and writes replace entries, so states can share row pointers after a
// clone.
type memoryState struct {
	movements    []*stock.Movement
	levels       map[stock.LevelKey]*stock.StockLevel
	batches      map[uuid.UUID]*stock.Batch
	reservations map[uuid.UUID]*reservation.Reservation
}

func newMemoryState() *memoryState {
	return &memoryState{
		levels:       make(map[stock.LevelKey]*stock.StockLevel),
		batches:      make(map[uuid.UUID]*stock.Batch),
		reservations: make(map[uuid.UUID]*reservation.Reservation),
	}
}

func (s *memoryState) clone() *memoryState {
	c := newMemoryState()
	c.movements = append(c.movements, s.movements...)
	for k, v := range s.levels {
		c.levels[k] = v
	}
	for k, v := range s.batches {
		c.batches[k] = v
	}
	for k, v := range s.reservations {
		c.reservations[k] = v
	}
	return c
}

// memoryScope executes functions against a cloned state and swaps the clone
// in only on success, mirroring commit/rollback.
type memoryScope struct {
	state *memoryState

	failAppend     bool // next movement append fails
	failApplyDelta bool // next level delta fails
}

func newMemoryScope() *memoryScope {
	return &memoryScope{state: newMemoryState()}
}

func (s *memoryScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	working := s.state.clone()
	repos := &memoryRepos{state: working, scope: s}
	if err := fn(repos); err != nil {
		return err
	}
	s.state = working
	return nil
}

// repos gives tests direct, non-transactional access for setup and asserts.
func (s *memoryScope) repos() *memoryRepos {
	return &memoryRepos{state: s.state, scope: s}
}

type memoryRepos struct {
	state *memoryState
	scope *memoryScope
}

func (r *memoryRepos) MovementRepo() stock.MovementRepository  { return &memoryMovementRepo{r} }
func (r *memoryRepos) LevelRepo() stock.StockLevelRepository   { return &memoryLevelRepo{r} }
func (r *memoryRepos) BatchRepo() stock.BatchRepository        { return &memoryBatchRepo{r} }
func (r *memoryRepos) ReservationRepo() reservation.Repository { return &memoryReservationRepo{r} }

type memoryMovementRepo struct{ r *memoryRepos }

func (m *memoryMovementRepo) Append(_ context.Context, mv *stock.Movement) error {
	if m.r.scope.failAppend {
		m.r.scope.failAppend = false
		return shared.ErrConcurrencyConflict
	}
	stored := *mv
	m.r.state.movements = append(m.r.state.movements, &stored)
	return nil
}

func (m *memoryMovementRepo) AppendAll(ctx context.Context, mvs []*stock.Movement) error {
	for _, mv := range mvs {
		if err := m.Append(ctx, mv); err != nil {
			return err
		}
	}
	return nil
}

func (m *memoryMovementRepo) FindByID(_ context.Context, id uuid.UUID) (*stock.Movement, error) {
	for _, mv := range m.r.state.movements {
		if mv.ID == id {
			found := *mv
			return &found, nil
		}
	}
	return nil, shared.NewNotFoundError("movement %s not found", id)
}

func (m *memoryMovementRepo) List(_ context.Context, filter stock.MovementFilter) ([]stock.Movement, error) {
	matched := m.match(filter)
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].OccurredAt.After(matched[j].OccurredAt)
	})
	start := filter.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit()
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (m *memoryMovementRepo) Count(_ context.Context, filter stock.MovementFilter) (int64, error) {
	return int64(len(m.match(filter))), nil
}

func (m *memoryMovementRepo) FindBatchedSince(_ context.Context, since time.Time) ([]stock.Movement, error) {
	var out []stock.Movement
	for _, mv := range m.r.state.movements {
		if mv.IsBatched() && !mv.OccurredAt.Before(since) {
			out = append(out, *mv)
		}
	}
	return out, nil
}

func (m *memoryMovementRepo) SumByKey(_ context.Context, key stock.LevelKey, types ...stock.MovementType) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, mv := range m.r.state.movements {
		if mv.LevelKey() != key {
			continue
		}
		if len(types) > 0 && !containsType(types, mv.Type) {
			continue
		}
		sum = sum.Add(mv.Quantity)
	}
	return sum, nil
}

func (m *memoryMovementRepo) ExistsByReference(_ context.Context, refMovementID uuid.UUID, typ stock.MovementType) (bool, error) {
	for _, mv := range m.r.state.movements {
		if mv.Type == typ && mv.RefMovementID != nil && *mv.RefMovementID == refMovementID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryMovementRepo) match(filter stock.MovementFilter) []stock.Movement {
	var out []stock.Movement
	for _, mv := range m.r.state.movements {
		if filter.ProductID != nil && mv.ProductID != *filter.ProductID {
			continue
		}
		if filter.BatchID != nil && mv.BatchID != *filter.BatchID {
			continue
		}
		if filter.Zone != nil && mv.Zone != *filter.Zone {
			continue
		}
		if filter.Type != nil && mv.Type != *filter.Type {
			continue
		}
		if filter.OrderID != nil && (mv.OrderID == nil || *mv.OrderID != *filter.OrderID) {
			continue
		}
		if filter.StartDate != nil && mv.OccurredAt.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && mv.OccurredAt.After(*filter.EndDate) {
			continue
		}
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(mv.ProductName), strings.ToLower(filter.Search)) &&
			!strings.Contains(strings.ToLower(mv.ProductCode), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *mv)
	}
	return out
}

type memoryLevelRepo struct{ r *memoryRepos }

func (m *memoryLevelRepo) ApplyDelta(_ context.Context, key stock.LevelKey, delta stock.StockDelta) error {
	if m.r.scope.failApplyDelta {
		m.r.scope.failApplyDelta = false
		return shared.ErrConcurrencyConflict
	}
	level, ok := m.r.state.levels[key]
	if !ok {
		level = stock.NewStockLevel(key)
	}
	next := *level
	next.Apply(delta)
	m.r.state.levels[key] = &next
	return nil
}

func (m *memoryLevelRepo) FindByKey(_ context.Context, key stock.LevelKey) (*stock.StockLevel, error) {
	level, ok := m.r.state.levels[key]
	if !ok {
		return nil, shared.NewNotFoundError("no stock level for key")
	}
	found := *level
	return &found, nil
}

func (m *memoryLevelRepo) FindByProduct(_ context.Context, productID uuid.UUID) ([]stock.StockLevel, error) {
	var out []stock.StockLevel
	for _, level := range m.r.state.levels {
		if level.ProductID == productID {
			out = append(out, *level)
		}
	}
	return out, nil
}

func (m *memoryLevelRepo) FindByBatch(_ context.Context, batchID uuid.UUID) ([]stock.StockLevel, error) {
	var out []stock.StockLevel
	for _, level := range m.r.state.levels {
		if level.BatchID == batchID {
			out = append(out, *level)
		}
	}
	return out, nil
}

func (m *memoryLevelRepo) SumAvailableByBatch(_ context.Context, batchID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, level := range m.r.state.levels {
		if level.BatchID == batchID {
			sum = sum.Add(level.Available)
		}
	}
	return sum, nil
}

func (m *memoryLevelRepo) SumAvailableByProduct(_ context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, level := range m.r.state.levels {
		if level.ProductID == productID {
			sum = sum.Add(level.Available)
		}
	}
	return sum, nil
}

func (m *memoryLevelRepo) SumAvailableByProducts(_ context.Context, productIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	out := make(map[uuid.UUID]decimal.Decimal)
	for _, level := range m.r.state.levels {
		for _, productID := range productIDs {
			if level.ProductID == productID {
				out[productID] = out[productID].Add(level.Available)
			}
		}
	}
	return out, nil
}

type memoryBatchRepo struct{ r *memoryRepos }

func (m *memoryBatchRepo) FindByID(_ context.Context, id uuid.UUID) (*stock.Batch, error) {
	batch, ok := m.r.state.batches[id]
	if !ok {
		return nil, shared.NewNotFoundError("batch %s not found", id)
	}
	found := *batch
	return &found, nil
}

func (m *memoryBatchRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]stock.Batch, error) {
	var out []stock.Batch
	for _, id := range ids {
		if batch, ok := m.r.state.batches[id]; ok {
			out = append(out, *batch)
		}
	}
	return out, nil
}

func (m *memoryBatchRepo) FindByProduct(_ context.Context, productID uuid.UUID) ([]stock.Batch, error) {
	var out []stock.Batch
	for _, batch := range m.r.state.batches {
		if batch.ProductID == productID {
			out = append(out, *batch)
		}
	}
	return out, nil
}

func (m *memoryBatchRepo) FindExpiringBefore(_ context.Context, cutoff time.Time) ([]stock.Batch, error) {
	var out []stock.Batch
	for _, batch := range m.r.state.batches {
		if !batch.ExpiryDate.After(cutoff) {
			out = append(out, *batch)
		}
	}
	return out, nil
}

func (m *memoryBatchRepo) Save(_ context.Context, b *stock.Batch) error {
	stored := *b
	m.r.state.batches[b.ID] = &stored
	return nil
}

type memoryReservationRepo struct{ r *memoryRepos }

func (m *memoryReservationRepo) FindByID(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	res, ok := m.r.state.reservations[id]
	if !ok {
		return nil, shared.NewNotFoundError("reservation %s not found", id)
	}
	found := *res
	return &found, nil
}

func (m *memoryReservationRepo) FindByOrder(_ context.Context, orderID uuid.UUID) ([]reservation.Reservation, error) {
	var out []reservation.Reservation
	for _, res := range m.r.state.reservations {
		if res.OrderID == orderID {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (m *memoryReservationRepo) List(_ context.Context, filter reservation.Filter) ([]reservation.Reservation, error) {
	var out []reservation.Reservation
	for _, res := range m.r.state.reservations {
		if filter.ProductID != nil && res.ProductID != *filter.ProductID {
			continue
		}
		if filter.OrderID != nil && res.OrderID != *filter.OrderID {
			continue
		}
		if filter.Status != nil && res.Status != *filter.Status {
			continue
		}
		if filter.DueBefore != nil && res.DeliveryDate.After(*filter.DueBefore) {
			continue
		}
		if filter.DueAfter != nil && res.DeliveryDate.Before(*filter.DueAfter) {
			continue
		}
		out = append(out, *res)
	}
	return out, nil
}

func (m *memoryReservationRepo) Count(ctx context.Context, filter reservation.Filter) (int64, error) {
	matched, err := m.List(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

func (m *memoryReservationRepo) Save(_ context.Context, res *reservation.Reservation) error {
	stored := *res
	m.r.state.reservations[res.ID] = &stored
	return nil
}

func (m *memoryReservationRepo) SumActiveByProductDueBefore(_ context.Context, cutoff time.Time) (map[uuid.UUID]decimal.Decimal, error) {
	out := make(map[uuid.UUID]decimal.Decimal)
	for _, res := range m.r.state.reservations {
		if res.Status != reservation.StatusActive {
			continue
		}
		if res.DeliveryDate.After(cutoff) {
			continue
		}
		out[res.ProductID] = out[res.ProductID].Add(res.Quantity)
	}
	return out, nil
}

func containsType(types []stock.MovementType, t stock.MovementType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

// stubProducts and stubSuppliers back the master-data ports with fixed maps.
type stubProducts map[uuid.UUID]ProductInfo

func (p stubProducts) GetProduct(_ context.Context, id uuid.UUID) (*ProductInfo, error) {
	if info, ok := p[id]; ok {
		return &info, nil
	}
	return nil, shared.NewNotFoundError("product %s not found", id)
}

type stubSuppliers map[uuid.UUID]SupplierInfo

func (s stubSuppliers) GetSupplier(_ context.Context, id uuid.UUID) (*SupplierInfo, error) {
	if info, ok := s[id]; ok {
		return &info, nil
	}
	return nil, shared.NewNotFoundError("supplier %s not found", id)
}

var _ TransactionScope = (*memoryScope)(nil)
var _ TransactionalRepositories = (*memoryRepos)(nil)
