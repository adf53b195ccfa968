package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finance-tracker/ledger/internal/application/usecase/recurrence"
	"github.com/finance-tracker/ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/ledger/internal/domain/error"
	"github.com/finance-tracker/ledger/internal/integration/entrypoint/dto"
)

// ProcessNotifier asks the background scheduler for an early run.
type ProcessNotifier interface {
	Notify()
}

// ProcessRunner performs one processing pass.
type ProcessRunner interface {
	Execute(ctx context.Context, input recurrence.ProcessDueInput) (*recurrence.ProcessDueOutput, error)
}

// RecurrenceController handles recurrence endpoints.
type RecurrenceController struct {
	createUseCase *recurrence.CreateUseCase
	listUseCase   *recurrence.ListUseCase
	getUseCase    *recurrence.GetUseCase
	updateUseCase *recurrence.UpdateUseCase
	deleteUseCase *recurrence.DeleteUseCase
	processor     ProcessRunner
	notifier      ProcessNotifier
}

// NewRecurrenceController creates a new recurrence controller instance.
// notifier may be nil when no scheduler runs in process.
func NewRecurrenceController(
	createUseCase *recurrence.CreateUseCase,
	listUseCase *recurrence.ListUseCase,
	getUseCase *recurrence.GetUseCase,
	updateUseCase *recurrence.UpdateUseCase,
	deleteUseCase *recurrence.DeleteUseCase,
	processor ProcessRunner,
	notifier ProcessNotifier,
) *RecurrenceController {
	return &RecurrenceController{
		createUseCase: createUseCase,
		listUseCase:   listUseCase,
		getUseCase:    getUseCase,
		updateUseCase: updateUseCase,
		deleteUseCase: deleteUseCase,
		processor:     processor,
		notifier:      notifier,
	}
}

// Create handles POST /dashboards/:dashboardId/recurrences requests.
func (c *RecurrenceController) Create(ctx *gin.Context) {
	userID, dashboardID, ok := requestScope(ctx)
	if !ok {
		return
	}

	var req dto.CreateRecurrenceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body: "+err.Error(), string(domainerror.ErrCodeMissingRecurrenceFields))
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		badRequest(ctx, "Invalid amount", string(domainerror.ErrCodeInvalidRecurrenceAmount))
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		badRequest(ctx, "Invalid start date format. Use YYYY-MM-DD", string(domainerror.ErrCodeInvalidRecurrenceDate))
		return
	}
	endDate, err := optionalDate(req.EndDate)
	if err != nil {
		badRequest(ctx, "Invalid end date format. Use YYYY-MM-DD", string(domainerror.ErrCodeInvalidRecurrenceDate))
		return
	}
	categoryID, err := optionalID(req.CategoryID)
	if err != nil {
		badRequest(ctx, "Invalid category ID format", "")
		return
	}
	accountID, err := optionalID(req.AccountID)
	if err != nil {
		badRequest(ctx, "Invalid account ID format", "")
		return
	}

	output, err := c.createUseCase.Execute(ctx.Request.Context(), recurrence.CreateInput{
		DashboardID:      dashboardID,
		UserID:           userID,
		Description:      req.Description,
		Amount:           amount,
		Type:             entity.TransactionType(req.Type),
		CategoryID:       categoryID,
		AccountID:        accountID,
		Notes:            req.Notes,
		Frequency:        req.Frequency,
		Interval:         req.Interval,
		StartDate:        startDate,
		EndDate:          endDate,
		InstallmentCount: req.InstallmentCount,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	if c.notifier != nil {
		c.notifier.Notify()
	}
	ctx.JSON(http.StatusCreated, dto.ToRecurrenceResponse(output.Recurrence))
}

// List handles GET /dashboards/:dashboardId/recurrences requests.
func (c *RecurrenceController) List(ctx *gin.Context) {
	userID, dashboardID, ok := requestScope(ctx)
	if !ok {
		return
	}

	output, err := c.listUseCase.Execute(ctx.Request.Context(), recurrence.ListInput{
		DashboardID:     dashboardID,
		UserID:          userID,
		IncludeInactive: ctx.Query("includeInactive") == "true",
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToRecurrenceListResponse(output))
}

// Get handles GET /dashboards/:dashboardId/recurrences/:id requests.
func (c *RecurrenceController) Get(ctx *gin.Context) {
	userID, dashboardID, ok := requestScope(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "recurrence")
	if !ok {
		return
	}

	output, err := c.getUseCase.Execute(ctx.Request.Context(), recurrence.GetInput{
		DashboardID: dashboardID,
		UserID:      userID,
		ID:          id,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToRecurrenceResponse(output))
}

// Update handles PUT /dashboards/:dashboardId/recurrences/:id requests.
func (c *RecurrenceController) Update(ctx *gin.Context) {
	userID, dashboardID, ok := requestScope(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "recurrence")
	if !ok {
		return
	}

	var req dto.UpdateRecurrenceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body: "+err.Error(), string(domainerror.ErrCodeMissingRecurrenceFields))
		return
	}

	input := recurrence.UpdateInput{
		DashboardID:           dashboardID,
		UserID:                userID,
		ID:                    id,
		Description:           req.Description,
		Notes:                 req.Notes,
		ClearCategoryID:       req.ClearCategory,
		ClearAccountID:        req.ClearAccount,
		ClearEndDate:          req.ClearEndDate,
		InstallmentCount:      req.InstallmentCount,
		ClearInstallmentCount: req.ClearInstallmentCount,
		IsActive:              req.IsActive,
	}

	if req.Amount != nil {
		amount, err := parseAmount(*req.Amount)
		if err != nil {
			badRequest(ctx, "Invalid amount", string(domainerror.ErrCodeInvalidRecurrenceAmount))
			return
		}
		input.Amount = &amount
	}
	if req.Type != nil {
		txnType := entity.TransactionType(*req.Type)
		input.Type = &txnType
	}

	var err error
	if input.EndDate, err = optionalDate(req.EndDate); err != nil {
		badRequest(ctx, "Invalid end date format. Use YYYY-MM-DD", string(domainerror.ErrCodeInvalidRecurrenceDate))
		return
	}
	if input.CategoryID, err = optionalID(req.CategoryID); err != nil {
		badRequest(ctx, "Invalid category ID format", "")
		return
	}
	if input.AccountID, err = optionalID(req.AccountID); err != nil {
		badRequest(ctx, "Invalid account ID format", "")
		return
	}

	output, err := c.updateUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToRecurrenceResponse(output))
}

// Delete handles DELETE /dashboards/:dashboardId/recurrences/:id requests.
func (c *RecurrenceController) Delete(ctx *gin.Context) {
	userID, dashboardID, ok := requestScope(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id", "recurrence")
	if !ok {
		return
	}

	output, err := c.deleteUseCase.Execute(ctx.Request.Context(), recurrence.DeleteInput{
		DashboardID: dashboardID,
		UserID:      userID,
		ID:          id,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.DeleteRecurrenceResponse{
		Deleted:     output.Deleted,
		Deactivated: output.Deactivated,
	})
}

// Process handles POST /dashboards/:dashboardId/recurrences/process requests.
// The run covers only the dashboard in the path.
func (c *RecurrenceController) Process(ctx *gin.Context) {
	userID, dashboardID, ok := requestScope(ctx)
	if !ok {
		return
	}

	var req dto.ProcessRecurrencesRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			badRequest(ctx, "Invalid request body: "+err.Error(), "")
			return
		}
	}

	now, err := optionalDate(req.Now)
	if err != nil {
		badRequest(ctx, "Invalid date format. Use YYYY-MM-DD", string(domainerror.ErrCodeInvalidRecurrenceDate))
		return
	}

	output, err := c.processor.Execute(ctx.Request.Context(), recurrence.ProcessDueInput{
		Now:         now,
		DashboardID: &dashboardID,
		RequestedBy: &userID,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToProcessRecurrencesResponse(output))
}
