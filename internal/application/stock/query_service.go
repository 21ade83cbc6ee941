package stock

import (
	"context"

	"github.com/google/uuid"

	"github.com/freshstock/backend/internal/domain/shared"
	"github.com/freshstock/backend/internal/domain/stock"
)

// MovementQueryService serves read access to the movement ledger.
type MovementQueryService struct {
	movements stock.MovementRepository
	levels    stock.StockLevelRepository
}

// NewMovementQueryService creates a new movement query service
func NewMovementQueryService(movements stock.MovementRepository, levels stock.StockLevelRepository) *MovementQueryService {
	return &MovementQueryService{
		movements: movements,
		levels:    levels,
	}
}

// List finds movements matching the filter, paginated.
func (s *MovementQueryService) List(ctx context.Context, filter MovementListFilter) (*shared.Paginated[MovementResponse], error) {
	domainFilter, err := toMovementFilter(filter)
	if err != nil {
		return nil, err
	}

	movements, err := s.movements.List(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.movements.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		items = append(items, toMovementResponse(&movements[i]))
	}
	result := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// Get finds a single movement by ID.
func (s *MovementQueryService) Get(ctx context.Context, id uuid.UUID) (*MovementResponse, error) {
	movement, err := s.movements.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toMovementResponse(movement)
	return &resp, nil
}

// LevelsByProduct lists the stock level rows of a product across batches and
// zones.
func (s *MovementQueryService) LevelsByProduct(ctx context.Context, productID uuid.UUID) ([]StockLevelResponse, error) {
	levels, err := s.levels.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	responses := make([]StockLevelResponse, 0, len(levels))
	for i := range levels {
		responses = append(responses, toStockLevelResponse(&levels[i]))
	}
	return responses, nil
}

// toMovementFilter validates the transport filter and maps it to the domain
// filter.
func toMovementFilter(f MovementListFilter) (stock.MovementFilter, error) {
	domainFilter := stock.MovementFilter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  f.OrderBy,
			OrderDir: f.OrderDir,
			Search:   f.Search,
		},
		ProductID: f.ProductID,
		BatchID:   f.BatchID,
		OrderID:   f.OrderID,
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
	}
	if domainFilter.Page < 1 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize < 1 {
		domainFilter.PageSize = shared.DefaultPageSize
	}

	if f.Zone != "" {
		zone := stock.Zone(f.Zone)
		domainFilter.Zone = &zone
	}
	if f.Type != "" {
		movementType := stock.MovementType(f.Type)
		if !movementType.IsValid() {
			return stock.MovementFilter{}, shared.NewValidationError("invalid movement type %q", f.Type)
		}
		domainFilter.Type = &movementType
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return stock.MovementFilter{}, shared.NewValidationError("end date is before start date")
	}
	return domainFilter, nil
}
