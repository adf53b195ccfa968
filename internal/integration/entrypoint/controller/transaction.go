package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finance-tracker/ledger/internal/application/usecase/transaction"
	domainerror "github.com/finance-tracker/ledger/internal/domain/error"
	"github.com/finance-tracker/ledger/internal/integration/entrypoint/dto"
)

// TransactionController handles transaction endpoints.
type TransactionController struct {
	bulkDeleteUseCase *transaction.BulkDeleteTransactionsUseCase
}

// NewTransactionController creates a new transaction controller instance.
func NewTransactionController(bulkDeleteUseCase *transaction.BulkDeleteTransactionsUseCase) *TransactionController {
	return &TransactionController{
		bulkDeleteUseCase: bulkDeleteUseCase,
	}
}

// BulkDelete handles DELETE /dashboards/:dashboardId/transactions?ids=a,b requests.
// includeInstallments=true removes whole groups; includeFuture=true removes each
// selected installment and the later ones in its group.
func (c *TransactionController) BulkDelete(ctx *gin.Context) {
	userID, dashboardID, ok := requestScope(ctx)
	if !ok {
		return
	}

	var transactionIDs []uuid.UUID
	for _, idStr := range strings.Split(ctx.Query("ids"), ",") {
		idStr = strings.TrimSpace(idStr)
		if idStr == "" {
			continue
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			badRequest(ctx, "Invalid transaction ID format: "+idStr, string(domainerror.ErrCodeInvalidTransactionID))
			return
		}
		transactionIDs = append(transactionIDs, id)
	}

	output, err := c.bulkDeleteUseCase.Execute(ctx.Request.Context(), transaction.BulkDeleteTransactionsInput{
		DashboardID:         dashboardID,
		UserID:              userID,
		TransactionIDs:      transactionIDs,
		IncludeInstallments: ctx.Query("includeInstallments") == "true",
		IncludeFuture:       ctx.Query("includeFuture") == "true",
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.BulkDeleteTransactionsResponse{
		DeletedCount:    output.DeletedCount,
		RenumberedCount: output.RenumberedCount,
	})
}
