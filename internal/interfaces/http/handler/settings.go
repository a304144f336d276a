package handler

import (
	"github.com/gin-gonic/gin"
	appsettings "github.com/posledger/backend/internal/application/settings"
)

// SettingsHandler handles business settings endpoints
type SettingsHandler struct {
	BaseHandler
	settings *appsettings.Service
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settings *appsettings.Service) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get godoc
// @ID           getSettings
// @Summary      Get business settings
// @Description  Invoice prefix, tax rate and currency symbol; defaults when never saved
// @Tags         settings
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (when no bearer token is sent)"
// @Success      200 {object} APIResponse[appsettings.SettingsResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	tenantID, _, ok := h.actor(c)
	if !ok {
		return
	}

	resp, err := h.settings.Get(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update godoc
// @ID           updateSettings
// @Summary      Update business settings
// @Description  Partial update. A new invoice prefix applies to bills numbered afterwards.
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (when no bearer token is sent)"
// @Param        request body appsettings.UpdateSettingsRequest true "Fields to change"
// @Success      200 {object} APIResponse[appsettings.SettingsResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	tenantID, _, ok := h.actor(c)
	if !ok {
		return
	}

	var req appsettings.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.settings.Update(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
