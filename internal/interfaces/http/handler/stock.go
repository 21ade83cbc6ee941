package handler

import (
	appstock "github.com/freshstock/backend/internal/application/stock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StockHandler handles the transactional stock operations and the level
// query surface.
type StockHandler struct {
	BaseHandler
	operations *appstock.OperationsService
	queries    *appstock.MovementQueryService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(operations *appstock.OperationsService, queries *appstock.MovementQueryService) *StockHandler {
	return &StockHandler{
		operations: operations,
		queries:    queries,
	}
}

// RegisterRoutes registers stock operation routes
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	{
		stock.POST("/receipts", h.Receive)
		stock.POST("/inbound-announcements", h.AnnounceInbound)
		stock.POST("/transfers", h.Transfer)
		stock.POST("/merges", h.MergeBatches)
		stock.POST("/write-offs", h.WriteOff)
		stock.POST("/write-off-reversals", h.UndoWriteOff)
		stock.POST("/corrections", h.CorrectStock)
		stock.POST("/picks", h.RecordPick)
		stock.GET("/levels", h.Levels)
	}
}

// Receive books goods into stock, optionally creating a batch on the fly
// and completing a prior inbound announcement.
func (h *StockHandler) Receive(c *gin.Context) {
	var req appstock.ReceiveStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.operations.Receive(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// AnnounceInbound records an announced delivery as in-transit stock
func (h *StockHandler) AnnounceInbound(c *gin.Context) {
	var req appstock.AnnounceInboundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.operations.AnnounceInbound(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Transfer relocates a quantity between batch/zone keys
func (h *StockHandler) Transfer(c *gin.Context) {
	var req appstock.TransferStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.operations.Transfer(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// MergeBatches moves stock from a source batch into a target batch
func (h *StockHandler) MergeBatches(c *gin.Context) {
	var req appstock.MergeBatchesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.operations.MergeBatches(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// WriteOff removes stock with a categorized reason
func (h *StockHandler) WriteOff(c *gin.Context) {
	var req appstock.WriteOffStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.operations.WriteOff(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// UndoWriteOff appends a compensating correction for a prior write-off
func (h *StockHandler) UndoWriteOff(c *gin.Context) {
	var req appstock.UndoWriteOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.operations.UndoWriteOff(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// CorrectStock applies a signed manual correction
func (h *StockHandler) CorrectStock(c *gin.Context) {
	var req appstock.CorrectStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.operations.CorrectStock(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// RecordPick consumes stock for an order, optionally fulfilling a
// reservation.
func (h *StockHandler) RecordPick(c *gin.Context) {
	var req appstock.RecordPickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.operations.RecordPick(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Levels returns the stock level records of a product
func (h *StockHandler) Levels(c *gin.Context) {
	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		h.BadRequest(c, "product_id must be a valid UUID")
		return
	}

	levels, err := h.queries.LevelsByProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, levels)
}
