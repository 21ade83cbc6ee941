package handler

import (
	appres "github.com/freshstock/backend/internal/application/reservation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReservationHandler handles the reservation registry endpoints
type ReservationHandler struct {
	BaseHandler
	reservations *appres.Service
}

// NewReservationHandler creates a new ReservationHandler
func NewReservationHandler(reservations *appres.Service) *ReservationHandler {
	return &ReservationHandler{reservations: reservations}
}

// RegisterRoutes registers reservation routes
func (h *ReservationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reservations := rg.Group("/reservations")
	{
		reservations.POST("", h.Create)
		reservations.GET("", h.List)
		reservations.GET("/:id", h.Get)
		reservations.POST("/:id/fulfillments", h.PartialFulfill)
		reservations.POST("/:id/cancel", h.Cancel)
	}
	rg.GET("/orders/:id/reservations", h.GetByOrder)
}

// cancelRequest carries the optional actor for a cancellation
type cancelRequest struct {
	ActorID *uuid.UUID `json:"actor_id"`
}

// Create places a demand hold for an order position
func (h *ReservationHandler) Create(c *gin.Context) {
	var req appres.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.reservations.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// PartialFulfill consumes part of a reservation's remaining quantity
func (h *ReservationHandler) PartialFulfill(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	var req appres.FulfillReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.reservations.PartialFulfill(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel releases a reservation; repeated cancels are no-ops
func (h *ReservationHandler) Cancel(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	var req cancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindingError(c, err)
			return
		}
	}

	resp, err := h.reservations.Cancel(c.Request.Context(), id, req.ActorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByOrder returns every reservation placed for an order
func (h *ReservationHandler) GetByOrder(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	resp, err := h.reservations.GetByOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get returns a single reservation by ID
func (h *ReservationHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	resp, err := h.reservations.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List returns a filtered, paginated page of reservations
func (h *ReservationHandler) List(c *gin.Context) {
	var filter appres.ReservationListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.reservations.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
