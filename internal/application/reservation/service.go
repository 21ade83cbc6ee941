package reservation

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appstock "github.com/freshstock/backend/internal/application/stock"
	"github.com/freshstock/backend/internal/domain/reservation"
	"github.com/freshstock/backend/internal/domain/shared"
	"github.com/freshstock/backend/internal/domain/stock"
)

// Service manages the reservation registry. Reservations are the source of
// truth for demand; the stock aggregate's reserved counter is an
// informational mirror kept in step through RESERVE/UNRESERVE movements when
// the hold names a zone.
type Service struct {
	scope appstock.TransactionScope
}

// NewService creates a new reservation service
func NewService(scope appstock.TransactionScope) *Service {
	return &Service{scope: scope}
}

// Create places an ACTIVE reservation. When the request names a zone, a
// RESERVE movement raises the reserved counter of that zone in the same
// transaction.
func (s *Service) Create(ctx context.Context, req CreateReservationRequest) (*ReservationResponse, error) {
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("reservation quantity must be positive, got %s", req.Quantity)
	}

	var resp ReservationResponse
	err := s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		res, err := reservation.New(req.ProductID, req.OrderID, req.DeliveryDate, req.Quantity)
		if err != nil {
			return err
		}
		if req.BatchID != nil {
			batch, err := repos.BatchRepo().FindByID(ctx, *req.BatchID)
			if err != nil {
				return err
			}
			if !batch.BelongsTo(req.ProductID) {
				return shared.NewCrossReferenceError("batch %s belongs to product %s, not %s", batch.ID, batch.ProductID, req.ProductID)
			}
			res.WithBatch(batch.ID)
		}
		if req.Zone != nil {
			res.WithZone(*req.Zone)
		}

		if err := repos.ReservationRepo().Save(ctx, res); err != nil {
			return err
		}

		if req.Zone != nil {
			if err := s.appendHoldMovement(ctx, repos, res, stock.MovementReserve, req.Quantity, req.ActorID, req.Note); err != nil {
				return err
			}
		}
		resp = toReservationResponse(res)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// PartialFulfill shrinks a reservation's remaining quantity; at zero the
// reservation transitions to FULFILLED. This is the registry-only path used
// when the physical side is booked elsewhere; picks that should consume the
// reserved counter go through the stock operations.
func (s *Service) PartialFulfill(ctx context.Context, id uuid.UUID, req FulfillReservationRequest) (*ReservationResponse, error) {
	var resp ReservationResponse
	err := s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		res, err := repos.ReservationRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := res.Fulfill(req.Quantity); err != nil {
			return err
		}
		if err := repos.ReservationRepo().Save(ctx, res); err != nil {
			return err
		}
		resp = toReservationResponse(res)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Cancel moves a reservation to CANCELLED. Cancelling an already-terminal
// reservation is a no-op, not an error; repeated cancels converge on the same
// state. When the hold mirrored a zone's reserved counter, the remaining
// quantity is released with an UNRESERVE movement.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) (*ReservationResponse, error) {
	var resp ReservationResponse
	err := s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		res, err := repos.ReservationRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}

		remaining := res.Quantity
		if !res.Cancel() {
			resp = toReservationResponse(res)
			return nil
		}
		if err := repos.ReservationRepo().Save(ctx, res); err != nil {
			return err
		}

		if !res.Zone.IsEmpty() && remaining.GreaterThan(decimal.Zero) {
			if err := s.appendHoldMovement(ctx, repos, res, stock.MovementUnreserve, remaining, actorID, "reservation cancelled"); err != nil {
				return err
			}
		}
		resp = toReservationResponse(res)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get finds a reservation by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ReservationResponse, error) {
	var resp ReservationResponse
	err := s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		res, err := repos.ReservationRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		resp = toReservationResponse(res)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetByOrder lists all reservations of an order.
func (s *Service) GetByOrder(ctx context.Context, orderID uuid.UUID) ([]ReservationResponse, error) {
	var responses []ReservationResponse
	err := s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		reservations, err := repos.ReservationRepo().FindByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		responses = make([]ReservationResponse, 0, len(reservations))
		for i := range reservations {
			responses = append(responses, toReservationResponse(&reservations[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// List finds reservations matching the filter, paginated.
func (s *Service) List(ctx context.Context, filter ReservationListFilter) (*shared.Paginated[ReservationResponse], error) {
	domainFilter, err := toReservationFilter(filter)
	if err != nil {
		return nil, err
	}

	var result shared.Paginated[ReservationResponse]
	err = s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		reservations, err := repos.ReservationRepo().List(ctx, domainFilter)
		if err != nil {
			return err
		}
		total, err := repos.ReservationRepo().Count(ctx, domainFilter)
		if err != nil {
			return err
		}

		items := make([]ReservationResponse, 0, len(reservations))
		for i := range reservations {
			items = append(items, toReservationResponse(&reservations[i]))
		}
		result = shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// appendHoldMovement writes the RESERVE or UNRESERVE ledger entry mirroring a
// registry change, plus the matching reserved-counter delta.
func (s *Service) appendHoldMovement(ctx context.Context, repos appstock.TransactionalRepositories, res *reservation.Reservation, typ stock.MovementType, quantity decimal.Decimal, actorID *uuid.UUID, note string) error {
	movement, err := stock.NewMovement(typ, res.ProductID, res.Zone, quantity)
	if err != nil {
		return err
	}
	movement.WithOrder(res.OrderID).WithNote(note)
	if res.BatchID != uuid.Nil {
		batch, err := repos.BatchRepo().FindByID(ctx, res.BatchID)
		if err != nil {
			return err
		}
		movement.WithBatch(batch)
	}
	if actorID != nil {
		movement.WithActor(*actorID)
	}

	if err := repos.MovementRepo().Append(ctx, movement); err != nil {
		return err
	}
	return repos.LevelRepo().ApplyDelta(ctx, movement.LevelKey(), movement.StockDelta())
}

// toReservationFilter validates the transport filter and maps it to the
// domain filter.
func toReservationFilter(f ReservationListFilter) (reservation.Filter, error) {
	domainFilter := reservation.Filter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  f.OrderBy,
			OrderDir: f.OrderDir,
		},
		ProductID: f.ProductID,
		OrderID:   f.OrderID,
		DueBefore: f.DueBefore,
		DueAfter:  f.DueAfter,
	}
	if domainFilter.Page < 1 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize < 1 {
		domainFilter.PageSize = shared.DefaultPageSize
	}

	if f.Status != "" {
		status := reservation.Status(f.Status)
		switch status {
		case reservation.StatusActive, reservation.StatusFulfilled, reservation.StatusCancelled:
			domainFilter.Status = &status
		default:
			return reservation.Filter{}, shared.NewValidationError("invalid reservation status %q", f.Status)
		}
	}
	return domainFilter, nil
}
