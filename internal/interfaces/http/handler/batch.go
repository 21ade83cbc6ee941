package handler

import (
	appstock "github.com/freshstock/backend/internal/application/stock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BatchHandler handles the batch registry endpoints
type BatchHandler struct {
	BaseHandler
	batches *appstock.BatchService
}

// NewBatchHandler creates a new BatchHandler
func NewBatchHandler(batches *appstock.BatchService) *BatchHandler {
	return &BatchHandler{batches: batches}
}

// RegisterRoutes registers batch registry routes
func (h *BatchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	batches := rg.Group("/batches")
	{
		batches.POST("", h.Create)
		batches.GET("", h.ListByProduct)
		batches.GET("/:id", h.Get)
		batches.PUT("/:id", h.Update)
		batches.GET("/:id/levels", h.Levels)
	}
}

// Create registers a batch ahead of any goods receipt
func (h *BatchHandler) Create(c *gin.Context) {
	var req appstock.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.batches.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Update corrects a batch's expiry date, frozen flag or supplier
func (h *BatchHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	var req appstock.UpdateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.batches.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get returns a single batch by ID
func (h *BatchHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	resp, err := h.batches.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByProduct returns all batches of a product
func (h *BatchHandler) ListByProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		h.BadRequest(c, "product_id must be a valid UUID")
		return
	}

	batches, err := h.batches.ListByProduct(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batches)
}

// Levels returns the per-zone stock levels of a batch
func (h *BatchHandler) Levels(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	levels, err := h.batches.Levels(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, levels)
}
