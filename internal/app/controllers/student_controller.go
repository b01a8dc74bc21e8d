package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	appauth "github.com/yigit/schooldesk/internal/app/auth"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/services"
	"github.com/yigit/schooldesk/internal/domain/rollnumber"
	"github.com/yigit/schooldesk/internal/middleware"
)

// StudentController handles admission and placement of students
type StudentController struct {
	admissionService services.AdmissionService
	generator        rollnumber.Generator
	authz            *appauth.AuthorizationService
}

// NewStudentController creates a new StudentController
func NewStudentController(admissionService services.AdmissionService, generator rollnumber.Generator, authz *appauth.AuthorizationService) *StudentController {
	return &StudentController{
		admissionService: admissionService,
		generator:        generator,
		authz:            authz,
	}
}

// GetStudent returns a student's record and placement
// @Summary Get student details
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.StudentDetailsResponse}
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	if err := c.authz.CanAccessStudent(ctx.Request.Context(), appauth.ScopeFromContext(ctx), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondResult(ctx, c.admissionService.StudentDetails(ctx.Request.Context(), ctx.Param("id")))
}

// AdmitStudent creates a student in a class and section
// @Summary Admit a student
// @Description Leave rollNumber empty to have one generated for the section.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AdmissionRequest true "Admission details"
// @Success 201 {object} dto.APIResponse{data=dto.StudentDetailsResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request or section not in class"
// @Failure 409 {object} dto.ErrorResponse "Roll number already taken"
// @Router /students [post]
func (c *StudentController) AdmitStudent(ctx *gin.Context) {
	var req dto.AdmissionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	if err := c.authz.CanAccessClass(ctx.Request.Context(), appauth.ScopeFromContext(ctx), req.ClassID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	student, err := c.admissionService.Admit(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.OK(student))
}

// ReassignStudent moves a student to another class or section
// @Summary Reassign a student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param request body dto.ReassignRequest true "New placement"
// @Success 200 {object} dto.APIResponse{data=dto.StudentDetailsResponse}
// @Failure 409 {object} dto.ErrorResponse "Roll number already taken"
// @Router /students/{id}/placement [put]
func (c *StudentController) ReassignStudent(ctx *gin.Context) {
	var req dto.ReassignRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	// Both the student's current class and the destination must be in scope.
	scope := appauth.ScopeFromContext(ctx)
	if err := c.authz.CanAccessStudent(ctx.Request.Context(), scope, ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if err := c.authz.CanAccessClass(ctx.Request.Context(), scope, req.ClassID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	student, err := c.admissionService.Reassign(ctx.Request.Context(), ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.OK(student))
}

// PreviewRollNumber returns the next roll number for a section without reserving it
// @Summary Preview the next roll number
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Section ID"
// @Success 200 {object} dto.APIResponse{data=dto.RollNumberResponse}
// @Failure 404 {object} dto.ErrorResponse "Section not found"
// @Failure 429 {object} dto.ErrorResponse "Too many requests"
// @Router /sections/{id}/roll-number [get]
func (c *StudentController) PreviewRollNumber(ctx *gin.Context) {
	sectionID := ctx.Param("id")
	if err := c.authz.CanAccessSection(ctx.Request.Context(), appauth.ScopeFromContext(ctx), sectionID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	roll, err := c.generator.Generate(ctx.Request.Context(), sectionID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.OK(dto.RollNumberResponse{SectionID: sectionID, RollNumber: roll}))
}
