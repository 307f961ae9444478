package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/erinpaul2002/careops-backend/database"
	"github.com/erinpaul2002/careops-backend/middleware"
	"github.com/erinpaul2002/careops-backend/models"
	"github.com/erinpaul2002/careops-backend/utils"
)

// AdminHandler covers the thin administration surfaces: services, contacts
// and inventory items.
type AdminHandler struct {
	Store *database.Store
}

func NewAdminHandler(store *database.Store) *AdminHandler {
	return &AdminHandler{Store: store}
}

type serviceRequest struct {
	Name            string                        `json:"name" binding:"required"`
	DurationMinutes int                           `json:"duration_minutes" binding:"required"`
	LocationType    string                        `json:"location_type"`
	Timezone        string                        `json:"timezone" binding:"required"`
	FormTemplateID  string                        `json:"form_template_id"`
	Consumption     []models.InventoryConsumption `json:"consumption"`
}

// CreateServiceHandler registers a bookable service.
func (h *AdminHandler) CreateServiceHandler(c *gin.Context) {
	var req serviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	svc := &models.Service{
		ID:              uuid.New().String(),
		TenantID:        middleware.TenantID(c),
		Name:            req.Name,
		DurationMinutes: req.DurationMinutes,
		LocationType:    req.LocationType,
		Timezone:        req.Timezone,
		Active:          true,
		FormTemplateID:  req.FormTemplateID,
		Consumption:     req.Consumption,
	}
	if err := h.Store.PutService(svc); err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, svc)
}

// ListServicesHandler returns the tenant's services.
func (h *AdminHandler) ListServicesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"services": h.Store.ListServices(middleware.TenantID(c))})
}

// SetServiceActiveHandler opens or closes a service for booking. Inactive
// services keep their rules and history but resolve zero slots.
func (h *AdminHandler) SetServiceActiveHandler(c *gin.Context) {
	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	svc, err := h.Store.GetService(middleware.TenantID(c), c.Param("id"))
	if err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	svc.Active = *req.Active
	if err := h.Store.PutService(svc); err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

// DeleteServiceHandler removes a service and its rules as one unit.
func (h *AdminHandler) DeleteServiceHandler(c *gin.Context) {
	if err := h.Store.DeleteService(middleware.TenantID(c), c.Param("id")); err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateContactHandler registers a contact.
func (h *AdminHandler) CreateContactHandler(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	contact := &models.Contact{
		ID:       uuid.New().String(),
		TenantID: middleware.TenantID(c),
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
	}
	h.Store.PutContact(contact)
	c.JSON(http.StatusCreated, contact)
}

// UpsertInventoryItemHandler administers stock and thresholds.
func (h *AdminHandler) UpsertInventoryItemHandler(c *gin.Context) {
	var req struct {
		ID                string `json:"id"`
		Name              string `json:"name" binding:"required"`
		OnHand            int    `json:"on_hand"`
		LowStockThreshold int    `json:"low_stock_threshold"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	item := &models.InventoryItem{
		ID:                req.ID,
		TenantID:          middleware.TenantID(c),
		Name:              req.Name,
		OnHand:            req.OnHand,
		LowStockThreshold: req.LowStockThreshold,
	}
	h.Store.PutItem(item)
	c.JSON(http.StatusOK, item)
}

// ListEventsHandler exposes the tenant's domain event log.
func (h *AdminHandler) ListEventsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"events": h.Store.EventsByTenant(middleware.TenantID(c))})
}
