package controller

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainerror "github.com/finance-tracker/ledger/internal/domain/error"
	"github.com/finance-tracker/ledger/internal/domain/valueobject"
	"github.com/finance-tracker/ledger/internal/integration/entrypoint/dto"
	"github.com/finance-tracker/ledger/internal/integration/entrypoint/middleware"
)

// requestScope returns the authenticated user and the dashboard from the path.
// It writes the error response and returns false when either is missing.
func requestScope(ctx *gin.Context) (userID, dashboardID uuid.UUID, ok bool) {
	userID, ok = middleware.GetUserIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "User not authenticated",
			Code:  string(domainerror.ErrCodeMissingToken),
		})
		return uuid.Nil, uuid.Nil, false
	}

	dashboardID, err := uuid.Parse(ctx.Param("dashboardId"))
	if err != nil {
		badRequest(ctx, "Invalid dashboard ID format", string(domainerror.ErrCodeInvalidDashboardID))
		return uuid.Nil, uuid.Nil, false
	}
	return userID, dashboardID, true
}

// pathID parses a UUID path parameter, writing a 400 on failure.
func pathID(ctx *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		badRequest(ctx, "Invalid "+label+" ID format", "")
		return uuid.Nil, false
	}
	return id, true
}

// optionalID parses an optional UUID. Empty strings are treated as absent.
func optionalID(raw *string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(raw))
}

func parseDate(raw string) (time.Time, error) {
	return valueobject.ParseDate(raw)
}

func optionalDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	d, err := parseDate(*raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
