package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/logger"
	"github.com/yigit/schooldesk/internal/pkg/validation"
)

type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// errorMappings is checked in order; domain sentinels precede the generic ones they wrap.
var errorMappings = []errorMapping{
	{apperrors.ErrRollNumberTaken, http.StatusConflict, dto.ErrorCodeRollTaken, "Roll number already assigned in this section"},
	{apperrors.ErrTeacherDoubleBooked, http.StatusConflict, dto.ErrorCodeTeacherConflict, "Teacher is already booked at this time"},
	{apperrors.ErrSectionNotInClass, http.StatusBadRequest, dto.ErrorCodeSectionMismatch, "Section does not belong to the selected class"},
	{apperrors.ErrSlotOutsideSchedule, http.StatusBadRequest, dto.ErrorCodeSlotOutOfWindow, "Time slot is outside the school schedule"},
	{apperrors.ErrSessionNotFound, http.StatusNotFound, dto.ErrorCodeSessionExpired, "Admission session not found or expired"},
	{apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Student not found"},
	{apperrors.ErrClassNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Class not found"},
	{apperrors.ErrSectionNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Section not found"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	var custom *apperrors.CustomError
	hasCustom := errors.As(err, &custom)

	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}

		errorDetail := dto.NewErrorDetail(m.code, m.message)
		switch {
		case hasCustom:
			if custom.Message != "" {
				errorDetail.Message = custom.Message
			}
			if custom.Code != "" {
				errorDetail.Code = dto.ErrorCode(custom.Code)
			}
			if custom.Details != nil {
				errorDetail = errorDetail.WithDetails(custom.Details)
			}
			if fields, ok := custom.Details["fields"].([]validation.FieldError); ok && len(fields) > 0 {
				errorDetail = errorDetail.WithField(fields[0].Field)
			}
		case err.Error() != m.target.Error():
			errorDetail = errorDetail.WithDetails(err.Error())
		}
		c.JSON(m.status, dto.NewErrorResponse(errorDetail))
		return
	}

	logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled API error")
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	if gin.Mode() != gin.ReleaseMode {
		errorDetail = errorDetail.WithDebugInfo("%v", err)
	}
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(errorDetail))
}
