package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/services"
	"github.com/yigit/schooldesk/internal/middleware"
)

// SettingsController handles the school-wide schedule settings
type SettingsController struct {
	settingsService services.SettingsService
}

// NewSettingsController creates a new SettingsController
func NewSettingsController(settingsService services.SettingsService) *SettingsController {
	return &SettingsController{settingsService: settingsService}
}

// GetSettings returns the weekly schedule, period duration and derived time slots
// @Summary Get school settings
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.SettingsResponse}
// @Router /settings [get]
func (c *SettingsController) GetSettings(ctx *gin.Context) {
	settings, err := c.settingsService.Get(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(settings))
}

// UpdateSettings replaces the weekly schedule and period duration
// @Summary Update school settings
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateSettingsRequest true "Settings"
// @Success 200 {object} dto.APIResponse{data=dto.SettingsResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid schedule or duration"
// @Failure 403 {object} dto.ErrorResponse "Role not allowed"
// @Router /settings [put]
func (c *SettingsController) UpdateSettings(ctx *gin.Context) {
	var req dto.UpdateSettingsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	settings, err := c.settingsService.Update(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	response := dto.OK(settings)
	response.Message = "Settings saved"
	ctx.JSON(http.StatusOK, response)
}

// PreviewTimeSlots cuts a single window into labelled periods
// @Summary Preview time slots
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Param start query string true "Opening time, HH:MM or 24hours"
// @Param end query string true "Closing time, HH:MM or 24hours"
// @Param duration query int true "Period length in minutes"
// @Success 200 {object} dto.APIResponse{data=[]string}
// @Router /settings/time-slots [get]
func (c *SettingsController) PreviewTimeSlots(ctx *gin.Context) {
	var req dto.TimeSlotPreviewRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}

	labels, err := c.settingsService.PreviewSlots(&req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(labels))
}
