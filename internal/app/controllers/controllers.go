package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/middleware"
	"github.com/yigit/schooldesk/internal/pkg/result"
)

// respondResult writes a lookup result: the data envelope on success, the mapped error
// otherwise.
func respondResult[T any](ctx *gin.Context, r result.Result[T]) {
	if r.IsOk() {
		ctx.JSON(http.StatusOK, dto.FromResult(r))
		return
	}
	if cause := r.Cause(); cause != nil {
		middleware.HandleAPIError(ctx, cause)
		return
	}
	ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
		dto.NewErrorDetail(dto.ErrorCodeInternalServer, r.Message()),
	))
}
