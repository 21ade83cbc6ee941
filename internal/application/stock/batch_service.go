package stock

import (
	"context"

	"github.com/google/uuid"

	"github.com/freshstock/backend/internal/domain/stock"
)

// BatchService manages batch master records. Quantities never change here;
// everything quantitative goes through the movement ledger.
type BatchService struct {
	batches   stock.BatchRepository
	levels    stock.StockLevelRepository
	products  ProductReader
	suppliers SupplierReader
}

// NewBatchService creates a new batch service
func NewBatchService(batches stock.BatchRepository, levels stock.StockLevelRepository, products ProductReader, suppliers SupplierReader) *BatchService {
	return &BatchService{
		batches:   batches,
		levels:    levels,
		products:  products,
		suppliers: suppliers,
	}
}

// Create registers a batch for a product ahead of any receipt.
func (s *BatchService) Create(ctx context.Context, req CreateBatchRequest) (*BatchResponse, error) {
	if _, err := s.products.GetProduct(ctx, req.ProductID); err != nil {
		return nil, err
	}

	batch, err := stock.NewBatch(req.ProductID, req.ExpiryDate, req.IsFrozen)
	if err != nil {
		return nil, err
	}
	if req.SlaughterDate != nil {
		batch.WithSlaughterDate(*req.SlaughterDate)
	}
	if req.SupplierID != nil {
		supplier, err := s.suppliers.GetSupplier(ctx, *req.SupplierID)
		if err != nil {
			return nil, err
		}
		batch.WithSupplier(supplier.ID, supplier.Name)
	}

	if err := s.batches.Save(ctx, batch); err != nil {
		return nil, err
	}
	resp := toBatchResponse(batch)
	return &resp, nil
}

// Update corrects the descriptive fields of an existing batch.
func (s *BatchService) Update(ctx context.Context, id uuid.UUID, req UpdateBatchRequest) (*BatchResponse, error) {
	batch, err := s.batches.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	supplierName := ""
	if req.SupplierID != nil {
		supplier, err := s.suppliers.GetSupplier(ctx, *req.SupplierID)
		if err != nil {
			return nil, err
		}
		supplierName = supplier.Name
	}

	if err := batch.UpdateDetails(req.ExpiryDate, req.SlaughterDate, req.IsFrozen, req.SupplierID, supplierName); err != nil {
		return nil, err
	}
	if err := s.batches.Save(ctx, batch); err != nil {
		return nil, err
	}
	resp := toBatchResponse(batch)
	return &resp, nil
}

// Get finds a batch by ID.
func (s *BatchService) Get(ctx context.Context, id uuid.UUID) (*BatchResponse, error) {
	batch, err := s.batches.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toBatchResponse(batch)
	return &resp, nil
}

// ListByProduct lists all batches of a product.
func (s *BatchService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]BatchResponse, error) {
	batches, err := s.batches.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	responses := make([]BatchResponse, 0, len(batches))
	for i := range batches {
		responses = append(responses, toBatchResponse(&batches[i]))
	}
	return responses, nil
}

// Levels lists the stock level rows of a batch across zones.
func (s *BatchService) Levels(ctx context.Context, batchID uuid.UUID) ([]StockLevelResponse, error) {
	levels, err := s.levels.FindByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	responses := make([]StockLevelResponse, 0, len(levels))
	for i := range levels {
		responses = append(responses, toStockLevelResponse(&levels[i]))
	}
	return responses, nil
}
