package handler

import (
	appstock "github.com/freshstock/backend/internal/application/stock"
	"github.com/gin-gonic/gin"
)

// MovementHandler exposes the read-only movement ledger
type MovementHandler struct {
	BaseHandler
	queries *appstock.MovementQueryService
}

// NewMovementHandler creates a new MovementHandler
func NewMovementHandler(queries *appstock.MovementQueryService) *MovementHandler {
	return &MovementHandler{queries: queries}
}

// RegisterRoutes registers movement query routes
func (h *MovementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	movements := rg.Group("/movements")
	{
		movements.GET("", h.List)
		movements.GET("/:id", h.Get)
	}
}

// List returns a filtered, paginated page of the ledger
func (h *MovementHandler) List(c *gin.Context) {
	var filter appstock.MovementListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.queries.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get returns a single movement by ID
func (h *MovementHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	m, err := h.queries.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, m)
}
