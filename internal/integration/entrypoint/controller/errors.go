package controller

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerror "github.com/finance-tracker/ledger/internal/domain/error"
	"github.com/finance-tracker/ledger/internal/integration/entrypoint/dto"
)

// statusForKind maps an error kind to an HTTP status code.
func statusForKind(kind domainerror.Kind) int {
	switch kind {
	case domainerror.KindValidation:
		return http.StatusBadRequest
	case domainerror.KindNotFound:
		return http.StatusNotFound
	case domainerror.KindForbidden:
		return http.StatusForbidden
	case domainerror.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as an ErrorResponse. Consistency and internal
// failures are logged and reported without their details.
func respondError(ctx *gin.Context, err error) {
	kind := domainerror.KindOf(err)
	code := domainerror.CodeOf(err)
	status := statusForKind(kind)

	if status == http.StatusInternalServerError {
		slog.Error("Request failed",
			"method", ctx.Request.Method,
			"path", ctx.FullPath(),
			"kind", kind.String(),
			"code", code,
			"error", err,
		)
		ctx.JSON(status, dto.ErrorResponse{
			Error: "An internal error occurred",
			Code:  code,
		})
		return
	}

	ctx.JSON(status, dto.ErrorResponse{
		Error: err.Error(),
		Code:  code,
	})
}

func badRequest(ctx *gin.Context, message, code string) {
	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
