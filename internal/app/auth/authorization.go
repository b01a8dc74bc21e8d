package auth

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto/enums"
	"github.com/yigit/schooldesk/internal/domain/rollnumber"
	"github.com/yigit/schooldesk/internal/middleware"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/logger"
)

// ClassReader loads classes and sections by id.
type ClassReader interface {
	GetClass(ctx context.Context, id string) (*models.Class, error)
	GetSection(ctx context.Context, id string) (*models.Section, error)
}

// StudentReader loads a student's stored placement.
type StudentReader interface {
	StudentAssignment(ctx context.Context, studentID string) (rollnumber.Assignment, error)
}

// Scope is the organisation and branch a staff token is bound to.
type Scope struct {
	Role     string
	OrgID    string
	BranchID string
}

// ScopeFromContext reads the scope JWTAuth stored on the request.
func ScopeFromContext(c *gin.Context) Scope {
	return Scope{
		Role:     c.GetString(middleware.ContextRole),
		OrgID:    c.GetString(middleware.ContextOrgID),
		BranchID: c.GetString(middleware.ContextBranchID),
	}
}

// AuthorizationService handles authorization operations
type AuthorizationService struct {
	classes  ClassReader
	students StudentReader
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(classes ClassReader, students StudentReader) *AuthorizationService {
	return &AuthorizationService{classes: classes, students: students}
}

// CanAccessClass checks the class belongs to the staff member's organisation and, for
// everyone but admins, to their branch when the token names one.
func (s *AuthorizationService) CanAccessClass(ctx context.Context, scope Scope, classID string) error {
	if _, err := uuid.Parse(classID); err != nil {
		return fmt.Errorf("%w: class id must be a UUID", apperrors.ErrValidationFailed)
	}
	class, err := s.classes.GetClass(ctx, classID)
	if err != nil {
		return err
	}

	if scope.OrgID == "" || class.OrgID != scope.OrgID {
		logger.Warn().Str("classId", classID).Str("orgId", scope.OrgID).Msg("Class outside staff organisation")
		return apperrors.NewForbiddenError("class belongs to another organisation")
	}
	if scope.Role != string(enums.RoleAdmin) && scope.BranchID != "" && class.BranchID != scope.BranchID {
		return apperrors.NewForbiddenError("class belongs to another branch")
	}
	return nil
}

// CanAccessSection checks the class the section belongs to.
func (s *AuthorizationService) CanAccessSection(ctx context.Context, scope Scope, sectionID string) error {
	if _, err := uuid.Parse(sectionID); err != nil {
		return fmt.Errorf("%w: section id must be a UUID", apperrors.ErrValidationFailed)
	}
	section, err := s.classes.GetSection(ctx, sectionID)
	if err != nil {
		return err
	}
	return s.CanAccessClass(ctx, scope, section.ClassID)
}

// CanAccessStudent checks the class the student is currently placed in. Students have no
// organisation of their own, so an unplaced student is left to admins.
func (s *AuthorizationService) CanAccessStudent(ctx context.Context, scope Scope, studentID string) error {
	if _, err := uuid.Parse(studentID); err != nil {
		return fmt.Errorf("%w: student id must be a UUID", apperrors.ErrValidationFailed)
	}
	placement, err := s.students.StudentAssignment(ctx, studentID)
	if err != nil {
		return err
	}
	if placement.ClassID == "" {
		if scope.OrgID != "" && scope.Role == string(enums.RoleAdmin) {
			return nil
		}
		return apperrors.NewForbiddenError("unplaced students can only be managed by admins")
	}
	return s.CanAccessClass(ctx, scope, placement.ClassID)
}

// CanAccessBranch checks a branch lookup against the staff member's branch.
func (s *AuthorizationService) CanAccessBranch(scope Scope, branchID string) error {
	if scope.Role == string(enums.RoleAdmin) || scope.BranchID == "" || scope.BranchID == branchID {
		return nil
	}
	return apperrors.NewForbiddenError("branch belongs to another staff scope")
}

// RequireClassAccess guards routes whose :param is a class id.
func (s *AuthorizationService) RequireClassAccess(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.CanAccessClass(c.Request.Context(), ScopeFromContext(c), c.Param(param)); err != nil {
			middleware.HandleAPIError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}
