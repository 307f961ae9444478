package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/erinpaul2002/careops-backend/middleware"
	"github.com/erinpaul2002/careops-backend/models"
	"github.com/erinpaul2002/careops-backend/services/booking"
	"github.com/erinpaul2002/careops-backend/utils"
)

// BookingHandler exposes the booking commands.
type BookingHandler struct {
	Svc booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{Svc: svc}
}

type createBookingRequest struct {
	ServiceID    string            `json:"service_id" binding:"required"`
	ContactID    string            `json:"contact_id" binding:"required"`
	Start        time.Time         `json:"start" binding:"required"`
	Notes        string            `json:"notes"`
	CustomFields map[string]string `json:"custom_fields"`
}

// CreateBookingHandler reserves a slot. Used by both the staff endpoint and
// the public endpoint (the latter behind the idempotency middleware).
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	b, err := h.Svc.Create(booking.CreateBookingInput{
		TenantID:     middleware.TenantID(c),
		ServiceID:    req.ServiceID,
		ContactID:    req.ContactID,
		Start:        req.Start,
		Notes:        req.Notes,
		CustomFields: req.CustomFields,
	})
	if err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// GetBookingHandler returns one booking.
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	b, err := h.Svc.Get(middleware.TenantID(c), c.Param("id"))
	if err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// RescheduleHandler moves a booking to a new start instant.
func (h *BookingHandler) RescheduleHandler(c *gin.Context) {
	var req struct {
		Start time.Time `json:"start" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	b, err := h.Svc.Reschedule(middleware.TenantID(c), c.Param("id"), req.Start)
	if err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// TransitionHandler drives the booking state machine.
func (h *BookingHandler) TransitionHandler(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	b, err := h.Svc.Transition(middleware.TenantID(c), c.Param("id"), models.BookingStatus(req.Status))
	if err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CancelBookingHandler is the soft delete.
func (h *BookingHandler) CancelBookingHandler(c *gin.Context) {
	b, err := h.Svc.Cancel(middleware.TenantID(c), c.Param("id"))
	if err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
