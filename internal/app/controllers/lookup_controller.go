package controllers

import (
	"github.com/gin-gonic/gin"
	appauth "github.com/yigit/schooldesk/internal/app/auth"
	"github.com/yigit/schooldesk/internal/app/services"
	"github.com/yigit/schooldesk/internal/middleware"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
)

// LookupController serves the dropdown data behind the admission and routine forms
type LookupController struct {
	lookupService *services.LookupService
	authz         *appauth.AuthorizationService
}

// NewLookupController creates a new LookupController
func NewLookupController(lookupService *services.LookupService, authz *appauth.AuthorizationService) *LookupController {
	return &LookupController{
		lookupService: lookupService,
		authz:         authz,
	}
}

// GetClasses lists the classes of the caller's organisation
// @Summary List classes
// @Tags lookups
// @Produce json
// @Security BearerAuth
// @Param orgId query string false "Organisation ID, defaults to the token's organisation"
// @Success 200 {object} dto.APIResponse{data=[]models.Class}
// @Failure 403 {object} dto.ErrorResponse "Organisation outside the token scope"
// @Router /classes [get]
func (c *LookupController) GetClasses(ctx *gin.Context) {
	scope := appauth.ScopeFromContext(ctx)
	orgID := ctx.Query("orgId")
	if orgID == "" {
		orgID = scope.OrgID
	}
	if orgID != scope.OrgID {
		middleware.HandleAPIError(ctx, apperrors.NewForbiddenError("organisation outside token scope"))
		return
	}

	respondResult(ctx, c.lookupService.Classes(ctx.Request.Context(), orgID))
}

// GetSections lists the sections of a class
// @Summary List sections of a class
// @Tags lookups
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Section}
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /classes/{id}/sections [get]
func (c *LookupController) GetSections(ctx *gin.Context) {
	respondResult(ctx, c.lookupService.Sections(ctx.Request.Context(), ctx.Param("id")))
}

// GetSubjects lists the subjects taught in a class
// @Summary List subjects of a class
// @Tags lookups
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Subject}
// @Router /classes/{id}/subjects [get]
func (c *LookupController) GetSubjects(ctx *gin.Context) {
	respondResult(ctx, c.lookupService.Subjects(ctx.Request.Context(), ctx.Param("id")))
}

// GetTeachers lists the teachers of a branch
// @Summary List teachers of a branch
// @Tags lookups
// @Produce json
// @Security BearerAuth
// @Param id path string true "Branch ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Teacher}
// @Failure 403 {object} dto.ErrorResponse "Branch outside the token scope"
// @Router /branches/{id}/teachers [get]
func (c *LookupController) GetTeachers(ctx *gin.Context) {
	branchID := ctx.Param("id")
	if err := c.authz.CanAccessBranch(appauth.ScopeFromContext(ctx), branchID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondResult(ctx, c.lookupService.Teachers(ctx.Request.Context(), branchID))
}
