package stock

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/freshstock/backend/internal/domain/reservation"
	"github.com/freshstock/backend/internal/domain/stock"
)

const (
	// DefaultExpiryThresholdDays is the lookahead window for the expiry report
	DefaultExpiryThresholdDays = 5
	// DefaultMismatchLookbackDays is the history window for the zone mismatch report
	DefaultMismatchLookbackDays = 14
)

// Expiry report row statuses
const (
	ExpiryStatusNear    = "NEAR"
	ExpiryStatusExpired = "EXPIRED"
)

// ReportService computes the warning reports. Reports are read-only: they
// never write movements or touch stock levels, and a warning never blocks the
// operation that caused it.
type ReportService struct {
	batches      stock.BatchRepository
	levels       stock.StockLevelRepository
	movements    stock.MovementRepository
	reservations reservation.Repository
}

// NewReportService creates a new report service
func NewReportService(
	batches stock.BatchRepository,
	levels stock.StockLevelRepository,
	movements stock.MovementRepository,
	reservations reservation.Repository,
) *ReportService {
	return &ReportService{
		batches:      batches,
		levels:       levels,
		movements:    movements,
		reservations: reservations,
	}
}

// ExpiryReport lists batches that are expired or expire within the threshold,
// each joined with its summed availability across zones. A batch expiring on
// asOf counts as expired. Sorted by expiry date ascending.
func (s *ReportService) ExpiryReport(ctx context.Context, asOf time.Time, thresholdDays int) ([]ExpiryWarning, error) {
	if thresholdDays <= 0 {
		thresholdDays = DefaultExpiryThresholdDays
	}
	today := truncateToDay(asOf)
	cutoff := today.AddDate(0, 0, thresholdDays)

	batches, err := s.batches.FindExpiringBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	warnings := make([]ExpiryWarning, 0, len(batches))
	for i := range batches {
		batch := &batches[i]
		available, err := s.levels.SumAvailableByBatch(ctx, batch.ID)
		if err != nil {
			return nil, err
		}

		status := ExpiryStatusNear
		if batch.IsExpiredAt(asOf) {
			status = ExpiryStatusExpired
		}
		warnings = append(warnings, ExpiryWarning{
			BatchID:    batch.ID,
			ProductID:  batch.ProductID,
			ExpiryDate: batch.ExpiryDate,
			DaysLeft:   daysBetween(today, batch.ExpiryDate),
			Status:     status,
			Available:  available,
		})
	}

	sort.Slice(warnings, func(i, j int) bool {
		return warnings[i].ExpiryDate.Before(warnings[j].ExpiryDate)
	})
	return warnings, nil
}

// OverReservationReport lists products whose ACTIVE reservation demand due on
// or before asOf exceeds their total availability. Only positive excess shows
// up; sorted by excess descending so the worst shortage comes first.
func (s *ReportService) OverReservationReport(ctx context.Context, asOf time.Time) ([]OverReservationWarning, error) {
	demand, err := s.reservations.SumActiveByProductDueBefore(ctx, truncateToDay(asOf))
	if err != nil {
		return nil, err
	}
	if len(demand) == 0 {
		return []OverReservationWarning{}, nil
	}

	productIDs := make([]uuid.UUID, 0, len(demand))
	for productID := range demand {
		productIDs = append(productIDs, productID)
	}
	availability, err := s.levels.SumAvailableByProducts(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	warnings := make([]OverReservationWarning, 0)
	for productID, reserved := range demand {
		available := availability[productID] // zero when no stock level rows exist
		excess := reserved.Sub(available)
		if excess.LessThanOrEqual(decimal.Zero) {
			continue
		}
		warnings = append(warnings, OverReservationWarning{
			ProductID: productID,
			Reserved:  reserved,
			Available: available,
			Excess:    excess,
		})
	}

	sort.Slice(warnings, func(i, j int) bool {
		return warnings[i].Excess.GreaterThan(warnings[j].Excess)
	})
	return warnings, nil
}

// ZoneMismatchReport lists recent batched movements whose zone temperature
// disagrees with the batch's frozen flag, e.g. a frozen batch moved into an
// ambient zone. The batch's current flag decides, not the snapshot taken at
// movement time, so a later batch correction clears stale warnings.
func (s *ReportService) ZoneMismatchReport(ctx context.Context, asOf time.Time, lookbackDays int) ([]ZoneMismatchWarning, error) {
	if lookbackDays <= 0 {
		lookbackDays = DefaultMismatchLookbackDays
	}
	since := truncateToDay(asOf).AddDate(0, 0, -lookbackDays)

	movements, err := s.movements.FindBatchedSince(ctx, since)
	if err != nil {
		return nil, err
	}
	if len(movements) == 0 {
		return []ZoneMismatchWarning{}, nil
	}

	batchIDs := make([]uuid.UUID, 0, len(movements))
	seen := make(map[uuid.UUID]struct{}, len(movements))
	for i := range movements {
		if _, ok := seen[movements[i].BatchID]; ok {
			continue
		}
		seen[movements[i].BatchID] = struct{}{}
		batchIDs = append(batchIDs, movements[i].BatchID)
	}
	batches, err := s.batches.FindByIDs(ctx, batchIDs)
	if err != nil {
		return nil, err
	}
	frozenByBatch := make(map[uuid.UUID]bool, len(batches))
	for i := range batches {
		frozenByBatch[batches[i].ID] = batches[i].IsFrozen
	}

	warnings := make([]ZoneMismatchWarning, 0)
	for i := range movements {
		m := &movements[i]
		batchFrozen, ok := frozenByBatch[m.BatchID]
		if !ok {
			continue
		}
		zoneFrozen := m.Zone.IsFrozen()
		if batchFrozen == zoneFrozen {
			continue
		}
		warnings = append(warnings, ZoneMismatchWarning{
			MovementID:  m.ID,
			Type:        m.Type.String(),
			ProductID:   m.ProductID,
			BatchID:     m.BatchID,
			Zone:        m.Zone,
			BatchFrozen: batchFrozen,
			ZoneFrozen:  zoneFrozen,
			OccurredAt:  m.OccurredAt,
		})
	}

	sort.Slice(warnings, func(i, j int) bool {
		return warnings[i].OccurredAt.After(warnings[j].OccurredAt)
	})
	return warnings, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts whole days from one day to another; negative when
// target lies in the past.
func daysBetween(from, target time.Time) int {
	return int(truncateToDay(target).Sub(truncateToDay(from)).Hours() / 24)
}
