package stock

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/freshstock/backend/internal/domain/shared"
	"github.com/freshstock/backend/internal/domain/stock"
)

// OperationsService implements the transactional warehouse operations. Every
// operation appends its movements and applies the matching stock level deltas
// within one transaction scope, so the ledger and the derived counters never
// diverge on a partial failure.
type OperationsService struct {
	scope     TransactionScope
	products  ProductReader
	suppliers SupplierReader
}

// NewOperationsService creates a new operations service
func NewOperationsService(scope TransactionScope, products ProductReader, suppliers SupplierReader) *OperationsService {
	return &OperationsService{
		scope:     scope,
		products:  products,
		suppliers: suppliers,
	}
}

// Receive books a goods receipt. The receipt may target an existing batch,
// create a new one on the fly, or stay unbatched. When an inbound
// announcement ID is given the announcement is closed in the same
// transaction and the announced quantity leaves in-transit.
func (s *OperationsService) Receive(ctx context.Context, req ReceiveStockRequest) (*ReceiveResponse, error) {
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("receipt quantity must be positive, got %s", req.Quantity)
	}
	if req.BatchID != nil && req.NewBatch != nil {
		return nil, shared.NewValidationError("batch_id and new_batch are mutually exclusive")
	}

	product, err := s.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	supplier, err := s.resolveSupplier(ctx, req.NewBatch)
	if err != nil {
		return nil, err
	}

	var resp ReceiveResponse
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		batch, err := s.resolveBatch(ctx, repos, req.ProductID, req.BatchID, req.NewBatch, supplier)
		if err != nil {
			return err
		}

		movement, err := stock.NewMovement(stock.MovementGoodsIn, req.ProductID, req.Zone, req.Quantity)
		if err != nil {
			return err
		}
		movement.WithProductSnapshot(product.Name, product.Code).WithNote(req.Note)
		if batch != nil {
			movement.WithBatch(batch)
			batchID := batch.ID
			resp.BatchID = &batchID
		}
		if req.ActorID != nil {
			movement.WithActor(*req.ActorID)
		}

		if err := repos.MovementRepo().Append(ctx, movement); err != nil {
			return err
		}
		if err := repos.LevelRepo().ApplyDelta(ctx, movement.LevelKey(), movement.StockDelta()); err != nil {
			return err
		}
		resp.Movement = toMovementResponse(movement)

		if req.AnnouncementID == nil {
			return nil
		}
		completed, err := s.completeAnnouncement(ctx, repos, *req.AnnouncementID, req.ProductID, req.Quantity, product, req.ActorID)
		if err != nil {
			return err
		}
		completedResp := toMovementResponse(completed)
		resp.Completed = &completedResp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// AnnounceInbound records goods that a supplier has confirmed but that have
// not physically arrived yet. The announced quantity is tracked on the
// in-transit counter of the unbatched key until a receipt closes it.
func (s *OperationsService) AnnounceInbound(ctx context.Context, req AnnounceInboundRequest) (*MovementResponse, error) {
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("announced quantity must be positive, got %s", req.Quantity)
	}

	product, err := s.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	var resp MovementResponse
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		movement, err := stock.NewMovement(stock.MovementInboundRecorded, req.ProductID, req.Zone, req.Quantity)
		if err != nil {
			return err
		}
		movement.WithProductSnapshot(product.Name, product.Code).WithNote(req.Note)
		if req.ActorID != nil {
			movement.WithActor(*req.ActorID)
		}

		if err := repos.MovementRepo().Append(ctx, movement); err != nil {
			return err
		}
		if err := repos.LevelRepo().ApplyDelta(ctx, movement.LevelKey(), movement.StockDelta()); err != nil {
			return err
		}
		resp = toMovementResponse(movement)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Transfer relocates quantity from a source batch/zone to a destination
// batch/zone as a TRANSFER_OUT/TRANSFER_IN pair. A frozen-flag mismatch
// between batch and zone never blocks the transfer; the zone mismatch report
// surfaces it afterwards.
func (s *OperationsService) Transfer(ctx context.Context, req TransferStockRequest) (*TransferResponse, error) {
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("transfer quantity must be positive, got %s", req.Quantity)
	}
	if req.ToBatchID == nil && req.ToNewBatch == nil {
		return nil, shared.NewValidationError("transfer destination requires to_batch_id or to_new_batch")
	}
	if req.ToBatchID != nil && req.ToNewBatch != nil {
		return nil, shared.NewValidationError("to_batch_id and to_new_batch are mutually exclusive")
	}

	product, err := s.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	supplier, err := s.resolveSupplier(ctx, req.ToNewBatch)
	if err != nil {
		return nil, err
	}

	var resp TransferResponse
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		source, err := s.mustFindBatch(ctx, repos, req.ProductID, req.FromBatchID)
		if err != nil {
			return err
		}
		dest, err := s.resolveBatch(ctx, repos, req.ProductID, req.ToBatchID, req.ToNewBatch, supplier)
		if err != nil {
			return err
		}

		out, in, err := s.appendTransferPair(ctx, repos, transferPair{
			product:  product,
			source:   source,
			dest:     dest,
			fromZone: req.FromZone,
			toZone:   req.ToZone,
			quantity: req.Quantity,
			actorID:  req.ActorID,
			note:     req.Note,
		})
		if err != nil {
			return err
		}
		resp = TransferResponse{Out: toMovementResponse(out), In: toMovementResponse(in)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// MergeBatches folds stock of a source batch into a target batch. An omitted
// quantity means "take everything": the source key's available amount is read
// inside the transaction, so a concurrent withdrawal cannot make the merge
// move more than what is actually there. The source batch record is retained;
// movement history still references it.
func (s *OperationsService) MergeBatches(ctx context.Context, req MergeBatchesRequest) (*TransferResponse, error) {
	if req.SourceBatchID == req.TargetBatchID {
		return nil, shared.NewValidationError("cannot merge a batch into itself")
	}
	if req.Quantity.IsNegative() {
		return nil, shared.NewValidationError("merge quantity cannot be negative, got %s", req.Quantity)
	}

	product, err := s.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	var resp TransferResponse
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		source, err := s.mustFindBatch(ctx, repos, req.ProductID, req.SourceBatchID)
		if err != nil {
			return err
		}
		target, err := s.mustFindBatch(ctx, repos, req.ProductID, req.TargetBatchID)
		if err != nil {
			return err
		}

		quantity := req.Quantity
		if quantity.IsZero() {
			sourceKey := stock.LevelKey{ProductID: req.ProductID, BatchID: source.ID, Zone: req.SourceZone}
			level, err := repos.LevelRepo().FindByKey(ctx, sourceKey)
			if err != nil {
				if shared.ErrorCode(err) == shared.CodeNotFound {
					return shared.NewValidationError("no stock to merge at source batch %s in zone %s", source.ID, req.SourceZone)
				}
				return err
			}
			quantity = level.Available
			if quantity.LessThanOrEqual(decimal.Zero) {
				return shared.NewValidationError("no stock to merge at source batch %s in zone %s", source.ID, req.SourceZone)
			}
		}

		out, in, err := s.appendTransferPair(ctx, repos, transferPair{
			product:  product,
			source:   source,
			dest:     target,
			fromZone: req.SourceZone,
			toZone:   req.TargetZone,
			quantity: quantity,
			actorID:  req.ActorID,
			note:     req.Note,
		})
		if err != nil {
			return err
		}
		resp = TransferResponse{Out: toMovementResponse(out), In: toMovementResponse(in)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// WriteOff books a stock loss. The reason code is embedded in the movement's
// note so the ledger carries the audit trail on its own.
func (s *OperationsService) WriteOff(ctx context.Context, req WriteOffStockRequest) (*MovementResponse, error) {
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("write-off quantity must be positive, got %s", req.Quantity)
	}
	if !req.Reason.IsValid() {
		return nil, shared.NewValidationError("invalid write-off reason %q", req.Reason)
	}

	product, err := s.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	var resp MovementResponse
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		movement, err := stock.NewMovement(stock.MovementWriteOff, req.ProductID, req.Zone, req.Quantity)
		if err != nil {
			return err
		}
		movement.WithProductSnapshot(product.Name, product.Code).WithNote(writeOffNote(req.Reason, req.Note))
		if req.BatchID != nil {
			batch, err := s.mustFindBatch(ctx, repos, req.ProductID, *req.BatchID)
			if err != nil {
				return err
			}
			movement.WithBatch(batch)
		}
		if req.ActorID != nil {
			movement.WithActor(*req.ActorID)
		}

		if err := repos.MovementRepo().Append(ctx, movement); err != nil {
			return err
		}
		if err := repos.LevelRepo().ApplyDelta(ctx, movement.LevelKey(), movement.StockDelta()); err != nil {
			return err
		}
		resp = toMovementResponse(movement)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// UndoWriteOff reverses a write-off with a compensating positive correction
// that references the original movement. The original stays in the ledger.
func (s *OperationsService) UndoWriteOff(ctx context.Context, req UndoWriteOffRequest) (*MovementResponse, error) {
	var resp MovementResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		original, err := repos.MovementRepo().FindByID(ctx, req.MovementID)
		if err != nil {
			return err
		}
		if original.Type != stock.MovementWriteOff {
			return shared.NewValidationError("movement %s is %s, only write-offs can be undone", original.ID, original.Type)
		}

		correction, err := stock.NewCorrectionMovement(original.ProductID, original.Zone, original.Magnitude())
		if err != nil {
			return err
		}
		correction.BatchID = original.BatchID
		correction.ExpiryDate = original.ExpiryDate
		correction.SlaughterDate = original.SlaughterDate
		correction.IsFrozen = original.IsFrozen
		correction.WithProductSnapshot(original.ProductName, original.ProductCode)
		correction.WithReference(original.ID)
		note := req.Note
		if note == "" {
			note = "reversal of write-off"
		}
		correction.WithNote(note)
		if req.ActorID != nil {
			correction.WithActor(*req.ActorID)
		}

		if err := repos.MovementRepo().Append(ctx, correction); err != nil {
			return err
		}
		if err := repos.LevelRepo().ApplyDelta(ctx, correction.LevelKey(), correction.StockDelta()); err != nil {
			return err
		}
		resp = toMovementResponse(correction)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CorrectStock books a signed manual correction against a stock key.
func (s *OperationsService) CorrectStock(ctx context.Context, req CorrectStockRequest) (*MovementResponse, error) {
	product, err := s.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	var resp MovementResponse
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		movement, err := stock.NewCorrectionMovement(req.ProductID, req.Zone, req.Quantity)
		if err != nil {
			return err
		}
		movement.WithProductSnapshot(product.Name, product.Code).WithNote(req.Note)
		if req.BatchID != nil {
			batch, err := s.mustFindBatch(ctx, repos, req.ProductID, *req.BatchID)
			if err != nil {
				return err
			}
			movement.WithBatch(batch)
		}
		if req.RefID != nil {
			movement.WithReference(*req.RefID)
		}
		if req.ActorID != nil {
			movement.WithActor(*req.ActorID)
		}

		if err := repos.MovementRepo().Append(ctx, movement); err != nil {
			return err
		}
		if err := repos.LevelRepo().ApplyDelta(ctx, movement.LevelKey(), movement.StockDelta()); err != nil {
			return err
		}
		resp = toMovementResponse(movement)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// RecordPick records a physical pick: available and reserved both drop by the
// picked quantity. When a reservation is named its remaining amount shrinks
// in the same transaction, transitioning to FULFILLED at zero.
func (s *OperationsService) RecordPick(ctx context.Context, req RecordPickRequest) (*MovementResponse, error) {
	if req.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("pick quantity must be positive, got %s", req.Quantity)
	}

	product, err := s.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	var resp MovementResponse
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		movement, err := stock.NewMovement(stock.MovementPick, req.ProductID, req.Zone, req.Quantity)
		if err != nil {
			return err
		}
		movement.WithProductSnapshot(product.Name, product.Code).WithNote(req.Note)
		if req.BatchID != nil {
			batch, err := s.mustFindBatch(ctx, repos, req.ProductID, *req.BatchID)
			if err != nil {
				return err
			}
			movement.WithBatch(batch)
		}
		if req.OrderID != nil {
			movement.WithOrder(*req.OrderID)
		}
		if req.ActorID != nil {
			movement.WithActor(*req.ActorID)
		}

		if req.ReservationID != nil {
			res, err := repos.ReservationRepo().FindByID(ctx, *req.ReservationID)
			if err != nil {
				return err
			}
			if res.ProductID != req.ProductID {
				return shared.NewCrossReferenceError("reservation %s does not belong to product %s", res.ID, req.ProductID)
			}
			if err := res.Fulfill(req.Quantity); err != nil {
				return err
			}
			if err := repos.ReservationRepo().Save(ctx, res); err != nil {
				return err
			}
			if req.OrderID == nil {
				movement.WithOrder(res.OrderID)
			}
		}

		if err := repos.MovementRepo().Append(ctx, movement); err != nil {
			return err
		}
		if err := repos.LevelRepo().ApplyDelta(ctx, movement.LevelKey(), movement.StockDelta()); err != nil {
			return err
		}
		resp = toMovementResponse(movement)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

type transferPair struct {
	product  *ProductInfo
	source   *stock.Batch
	dest     *stock.Batch
	fromZone stock.Zone
	toZone   stock.Zone
	quantity decimal.Decimal
	actorID  *uuid.UUID
	note     string
}

// appendTransferPair writes the OUT/IN legs and their level deltas. The IN
// leg references the OUT leg so the two stay pairable in the ledger.
func (s *OperationsService) appendTransferPair(ctx context.Context, repos TransactionalRepositories, p transferPair) (*stock.Movement, *stock.Movement, error) {
	out, err := stock.NewMovement(stock.MovementTransferOut, p.product.ID, p.fromZone, p.quantity)
	if err != nil {
		return nil, nil, err
	}
	out.WithBatch(p.source).WithProductSnapshot(p.product.Name, p.product.Code).WithNote(p.note)

	in, err := stock.NewMovement(stock.MovementTransferIn, p.product.ID, p.toZone, p.quantity)
	if err != nil {
		return nil, nil, err
	}
	in.WithBatch(p.dest).WithProductSnapshot(p.product.Name, p.product.Code).WithNote(p.note)
	in.WithReference(out.ID)

	if p.actorID != nil {
		out.WithActor(*p.actorID)
		in.WithActor(*p.actorID)
	}

	if err := repos.MovementRepo().AppendAll(ctx, []*stock.Movement{out, in}); err != nil {
		return nil, nil, err
	}
	if err := repos.LevelRepo().ApplyDelta(ctx, out.LevelKey(), out.StockDelta()); err != nil {
		return nil, nil, err
	}
	if err := repos.LevelRepo().ApplyDelta(ctx, in.LevelKey(), in.StockDelta()); err != nil {
		return nil, nil, err
	}
	return out, in, nil
}

// completeAnnouncement closes an inbound announcement inside a receipt's
// transaction: an INBOUND_COMPLETED movement takes the received quantity off
// the in-transit counter of the announcement's unbatched key.
func (s *OperationsService) completeAnnouncement(ctx context.Context, repos TransactionalRepositories, announcementID uuid.UUID, productID uuid.UUID, quantity decimal.Decimal, product *ProductInfo, actorID *uuid.UUID) (*stock.Movement, error) {
	announcement, err := repos.MovementRepo().FindByID(ctx, announcementID)
	if err != nil {
		return nil, err
	}
	if announcement.Type != stock.MovementInboundRecorded {
		return nil, shared.NewValidationError("movement %s is %s, not an inbound announcement", announcement.ID, announcement.Type)
	}
	if announcement.ProductID != productID {
		return nil, shared.NewCrossReferenceError("announcement %s does not belong to product %s", announcement.ID, productID)
	}
	alreadyCompleted, err := repos.MovementRepo().ExistsByReference(ctx, announcement.ID, stock.MovementInboundCompleted)
	if err != nil {
		return nil, err
	}
	if alreadyCompleted {
		return nil, shared.NewValidationError("announcement %s is already completed", announcement.ID)
	}

	completed, err := stock.NewMovement(stock.MovementInboundCompleted, productID, announcement.Zone, quantity)
	if err != nil {
		return nil, err
	}
	completed.WithProductSnapshot(product.Name, product.Code).WithReference(announcement.ID)
	if actorID != nil {
		completed.WithActor(*actorID)
	}

	if err := repos.MovementRepo().Append(ctx, completed); err != nil {
		return nil, err
	}
	if err := repos.LevelRepo().ApplyDelta(ctx, completed.LevelKey(), completed.StockDelta()); err != nil {
		return nil, err
	}
	return completed, nil
}

// resolveBatch returns the batch an operation targets: an existing one
// (validated against the product), a new one created from the inline spec, or
// nil for unbatched stock.
func (s *OperationsService) resolveBatch(ctx context.Context, repos TransactionalRepositories, productID uuid.UUID, batchID *uuid.UUID, newBatch *NewBatchRequest, supplier *SupplierInfo) (*stock.Batch, error) {
	if batchID != nil {
		return s.mustFindBatch(ctx, repos, productID, *batchID)
	}
	if newBatch == nil {
		return nil, nil
	}

	batch, err := stock.NewBatch(productID, newBatch.ExpiryDate, newBatch.IsFrozen)
	if err != nil {
		return nil, err
	}
	if newBatch.SlaughterDate != nil {
		batch.WithSlaughterDate(*newBatch.SlaughterDate)
	}
	if supplier != nil {
		batch.WithSupplier(supplier.ID, supplier.Name)
	}
	if err := repos.BatchRepo().Save(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// mustFindBatch loads a batch and verifies it belongs to the product.
func (s *OperationsService) mustFindBatch(ctx context.Context, repos TransactionalRepositories, productID, batchID uuid.UUID) (*stock.Batch, error) {
	batch, err := repos.BatchRepo().FindByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if !batch.BelongsTo(productID) {
		return nil, shared.NewCrossReferenceError("batch %s belongs to product %s, not %s", batch.ID, batch.ProductID, productID)
	}
	return batch, nil
}

// resolveSupplier looks up the supplier named in an inline batch spec.
// Master data reads stay outside the transaction scope.
func (s *OperationsService) resolveSupplier(ctx context.Context, newBatch *NewBatchRequest) (*SupplierInfo, error) {
	if newBatch == nil || newBatch.SupplierID == nil {
		return nil, nil
	}
	return s.suppliers.GetSupplier(ctx, *newBatch.SupplierID)
}

func writeOffNote(reason stock.WriteOffReason, note string) string {
	if note == "" {
		return reason.String()
	}
	return reason.String() + ": " + note
}
