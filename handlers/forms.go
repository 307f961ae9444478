package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/erinpaul2002/careops-backend/database"
	"github.com/erinpaul2002/careops-backend/middleware"
	"github.com/erinpaul2002/careops-backend/utils"
)

// FormHandler serves intake form submission and lookup.
type FormHandler struct {
	Store *database.Store
}

func NewFormHandler(store *database.Store) *FormHandler {
	return &FormHandler{Store: store}
}

// SubmitFormHandler records a submission against a pending form request.
func (h *FormHandler) SubmitFormHandler(c *gin.Context) {
	var req struct {
		Fields map[string]string `json:"fields" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	form, err := h.Store.SubmitForm(middleware.TenantID(c), c.Param("id"), req.Fields)
	if err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// GetFormHandler returns a single form request.
func (h *FormHandler) GetFormHandler(c *gin.Context) {
	form, err := h.Store.GetForm(middleware.TenantID(c), c.Param("id"))
	if err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}
