package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	appauth "github.com/yigit/schooldesk/internal/app/auth"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/services"
	"github.com/yigit/schooldesk/internal/middleware"
)

// SessionController drives admission forms kept open on the server
type SessionController struct {
	sessionService services.SessionService
	authz          *appauth.AuthorizationService
}

// NewSessionController creates a new SessionController
func NewSessionController(sessionService services.SessionService, authz *appauth.AuthorizationService) *SessionController {
	return &SessionController{
		sessionService: sessionService,
		authz:          authz,
	}
}

// OpenSession starts a creation form, or an edit form when studentId is given
// @Summary Open an admission form
// @Tags admission-sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.OpenSessionRequest false "Student to edit"
// @Success 201 {object} dto.APIResponse{data=dto.SessionResponse}
// @Router /admission-sessions [post]
func (c *SessionController) OpenSession(ctx *gin.Context) {
	var req dto.OpenSessionRequest
	if ctx.Request.ContentLength != 0 && !middleware.BindJSON(ctx, &req) {
		return
	}
	if req.StudentID != "" {
		if err := c.authz.CanAccessStudent(ctx.Request.Context(), appauth.ScopeFromContext(ctx), req.StudentID); err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
	}

	session, err := c.sessionService.Open(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.OK(session))
}

// GetSession returns the current form state
// @Summary Get an admission form
// @Tags admission-sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse}
// @Failure 404 {object} dto.ErrorResponse "Session expired"
// @Router /admission-sessions/{id} [get]
func (c *SessionController) GetSession(ctx *gin.Context) {
	session, err := c.sessionService.Get(ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(session))
}

// SelectPlacement changes the class and section of a form
// @Summary Select class and section
// @Description applied=false means a newer selection superseded this one.
// @Tags admission-sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param request body dto.SelectPlacementRequest true "Selection"
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse}
// @Router /admission-sessions/{id}/placement [put]
func (c *SessionController) SelectPlacement(ctx *gin.Context) {
	var req dto.SelectPlacementRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	if req.ClassID != "" {
		if err := c.authz.CanAccessClass(ctx.Request.Context(), appauth.ScopeFromContext(ctx), req.ClassID); err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
	}

	session, err := c.sessionService.Select(ctx.Request.Context(), ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(session))
}

// SetRollNumber records a manual roll number
// @Summary Edit the roll number
// @Tags admission-sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param request body dto.SetRollNumberRequest true "Roll number"
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse}
// @Router /admission-sessions/{id}/roll-number [put]
func (c *SessionController) SetRollNumber(ctx *gin.Context) {
	var req dto.SetRollNumberRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	session, err := c.sessionService.SetRollNumber(ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.OK(session))
}

// SubmitSession commits the form and closes it
// @Summary Submit an admission form
// @Tags admission-sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param request body dto.SubmitSessionRequest false "Personal details for new students"
// @Success 200 {object} dto.APIResponse{data=dto.StudentDetailsResponse}
// @Failure 409 {object} dto.ErrorResponse "Roll number taken or lookup still running"
// @Router /admission-sessions/{id}/submit [post]
func (c *SessionController) SubmitSession(ctx *gin.Context) {
	var req dto.SubmitSessionRequest
	if ctx.Request.ContentLength != 0 && !middleware.BindJSON(ctx, &req) {
		return
	}

	student, err := c.sessionService.Submit(ctx.Request.Context(), ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	response := dto.OK(student)
	response.Message = "Student saved"
	ctx.JSON(http.StatusOK, response)
}

// CloseSession discards a form
// @Summary Cancel an admission form
// @Tags admission-sessions
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 204
// @Router /admission-sessions/{id} [delete]
func (c *SessionController) CloseSession(ctx *gin.Context) {
	c.sessionService.Close(ctx.Param("id"))
	ctx.Status(http.StatusNoContent)
}
