package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/services"
	"github.com/yigit/schooldesk/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RoutineController handles class routine grids
type RoutineController struct {
	routineService services.RoutineService
}

// NewRoutineController creates a new RoutineController
func NewRoutineController(routineService services.RoutineService) *RoutineController {
	return &RoutineController{routineService: routineService}
}

// GetRoutine returns the routine grid of a class
// @Summary Get class routine
// @Tags routines
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 200 {object} dto.APIResponse{data=dto.RoutineGridResponse}
// @Router /classes/{id}/routine [get]
func (c *RoutineController) GetRoutine(ctx *gin.Context) {
	grid, err := c.routineService.Grid(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(grid))
}

// SaveRoutine replaces the routine of a class
// @Summary Save class routine
// @Tags routines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Param request body dto.SaveRoutineRequest true "All cells of the routine"
// @Success 200 {object} dto.APIResponse{data=dto.RoutineGridResponse}
// @Failure 400 {object} dto.ErrorResponse "Cell outside the schedule or invalid assignment"
// @Failure 409 {object} dto.ErrorResponse "Teacher double-booked"
// @Router /classes/{id}/routine [put]
func (c *RoutineController) SaveRoutine(ctx *gin.Context) {
	var req dto.SaveRoutineRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	grid, err := c.routineService.Save(ctx.Request.Context(), ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(grid))
}

// GetAssignmentOptions returns the subjects and teachers a routine cell can take
// @Summary Routine cell options
// @Tags routines
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 200 {object} dto.APIResponse{data=dto.AssignmentOptionsResponse}
// @Router /classes/{id}/routine/options [get]
func (c *RoutineController) GetAssignmentOptions(ctx *gin.Context) {
	options, err := c.routineService.Options(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(options))
}

// ExportRoutine downloads the routine grid as a spreadsheet
// @Summary Export class routine
// @Tags routines
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 200 {file} file
// @Router /classes/{id}/routine/export [get]
func (c *RoutineController) ExportRoutine(ctx *gin.Context) {
	classID := ctx.Param("id")

	// Buffered so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := c.routineService.Export(ctx.Request.Context(), classID, &buf); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="routine-%s.xlsx"`, classID))
	ctx.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
