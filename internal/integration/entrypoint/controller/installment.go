package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finance-tracker/ledger/internal/application/usecase/installment"
	"github.com/finance-tracker/ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/ledger/internal/domain/error"
	"github.com/finance-tracker/ledger/internal/domain/valueobject"
	"github.com/finance-tracker/ledger/internal/integration/entrypoint/dto"
)

// InstallmentController handles installment group endpoints.
type InstallmentController struct {
	createUseCase *installment.CreatePlanUseCase
	getUseCase    *installment.GetGroupUseCase
	updateUseCase *installment.UpdateGroupUseCase
	deleteUseCase *installment.DeleteGroupUseCase
}

// NewInstallmentController creates a new installment controller instance.
func NewInstallmentController(
	createUseCase *installment.CreatePlanUseCase,
	getUseCase *installment.GetGroupUseCase,
	updateUseCase *installment.UpdateGroupUseCase,
	deleteUseCase *installment.DeleteGroupUseCase,
) *InstallmentController {
	return &InstallmentController{
		createUseCase: createUseCase,
		getUseCase:    getUseCase,
		updateUseCase: updateUseCase,
		deleteUseCase: deleteUseCase,
	}
}

// Create handles POST /dashboards/:dashboardId/installment-groups requests.
func (c *InstallmentController) Create(ctx *gin.Context) {
	userID, dashboardID, ok := requestScope(ctx)
	if !ok {
		return
	}

	var req dto.CreateInstallmentPlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body: "+err.Error(), string(domainerror.ErrCodeInvalidInstallmentFields))
		return
	}

	total, err := parseAmount(req.TotalAmount)
	if err != nil {
		badRequest(ctx, "Invalid total amount", string(domainerror.ErrCodeInvalidInstallmentAmount))
		return
	}
	firstDate, err := parseDate(req.FirstDate)
	if err != nil {
		badRequest(ctx, "Invalid first date format. Use YYYY-MM-DD", string(domainerror.ErrCodeInvalidInstallmentFields))
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

	var frequency valueobject.Frequency
	if strings.TrimSpace(req.Frequency) != "" {
		frequency, err = valueobject.ParseFrequency(req.Frequency)
		if err != nil {
			badRequest(ctx, err.Error(), string(domainerror.ErrCodeInvalidInstallmentStep))
			return
		}
	}

	output, err := c.createUseCase.Execute(ctx.Request.Context(), installment.CreatePlanInput{
		DashboardID: dashboardID,
		UserID:      userID,
		Description: req.Description,
		TotalAmount: total,
		Type:        entity.TransactionType(req.Type),
		CategoryID:  categoryID,
		AccountID:   accountID,
		Notes:       req.Notes,
		FirstDate:   firstDate,
		Count:       req.Count,
		Frequency:   frequency,
		Interval:    req.Interval,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToInstallmentGroupResponse(output.Group))
}

// Get handles GET /dashboards/:dashboardId/installment-groups/:groupId requests.
func (c *InstallmentController) Get(ctx *gin.Context) {
	userID, dashboardID, ok := requestScope(ctx)
	if !ok {
		return
	}
	groupID, ok := pathID(ctx, "groupId", "group")
	if !ok {
		return
	}

	output, err := c.getUseCase.Execute(ctx.Request.Context(), installment.GetGroupInput{
		DashboardID: dashboardID,
		UserID:      userID,
		GroupID:     groupID,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToInstallmentGroupResponse(output))
}

// Update handles PUT /dashboards/:dashboardId/installment-groups/:groupId requests.
// The scope and optional target come from the query string.
func (c *InstallmentController) Update(ctx *gin.Context) {
	userID, dashboardID, ok := requestScope(ctx)
	if !ok {
		return
	}
	groupID, ok := pathID(ctx, "groupId", "group")
	if !ok {
		return
	}
	scope, targetID, ok := scopeQuery(ctx)
	if !ok {
		return
	}

	var req dto.UpdateInstallmentGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body: "+err.Error(), string(domainerror.ErrCodeInvalidInstallmentFields))
		return
	}

	patch := entity.InstallmentPatch{
		Description:   req.Description,
		Notes:         req.Notes,
		ClearCategory: req.ClearCategory,
		ClearAccount:  req.ClearAccount,
	}
	if req.Amount != nil {
		amount, err := parseAmount(*req.Amount)
		if err != nil {
			badRequest(ctx, "Invalid amount", string(domainerror.ErrCodeInvalidInstallmentAmount))
			return
		}
		patch.Amount = &amount
	}
	if req.Type != nil {
		txnType := entity.TransactionType(*req.Type)
		patch.Type = &txnType
	}

	var err error
	if patch.Date, err = optionalDate(req.Date); err != nil {
		badRequest(ctx, "Invalid date format. Use YYYY-MM-DD", string(domainerror.ErrCodeInvalidInstallmentFields))
		return
	}
	if patch.CategoryID, err = optionalID(req.CategoryID); err != nil {
		badRequest(ctx, "Invalid category ID format", "")
		return
	}
	if patch.AccountID, err = optionalID(req.AccountID); err != nil {
		badRequest(ctx, "Invalid account ID format", "")
		return
	}

	output, err := c.updateUseCase.Execute(ctx.Request.Context(), installment.UpdateGroupInput{
		DashboardID:   dashboardID,
		UserID:        userID,
		GroupID:       groupID,
		TransactionID: targetID,
		Scope:         scope,
		Patch:         patch,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.UpdateInstallmentGroupResponse{
		Group:        dto.ToInstallmentGroupResponse(output.Group),
		UpdatedCount: output.UpdatedCount,
	})
}

// Delete handles DELETE /dashboards/:dashboardId/installment-groups/:groupId requests.
func (c *InstallmentController) Delete(ctx *gin.Context) {
	userID, dashboardID, ok := requestScope(ctx)
	if !ok {
		return
	}
	groupID, ok := pathID(ctx, "groupId", "group")
	if !ok {
		return
	}
	scope, targetID, ok := scopeQuery(ctx)
	if !ok {
		return
	}

	output, err := c.deleteUseCase.Execute(ctx.Request.Context(), installment.DeleteGroupInput{
		DashboardID:   dashboardID,
		UserID:        userID,
		GroupID:       groupID,
		TransactionID: targetID,
		Scope:         scope,
		IncludeFuture: ctx.Query("includeFuture") == "true",
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToDeleteInstallmentGroupResponse(output))
}

// scopeQuery reads ?scope= and the optional ?transactionId= target.
func scopeQuery(ctx *gin.Context) (entity.InstallmentScope, *uuid.UUID, bool) {
	scope, valid := entity.ParseInstallmentScope(ctx.Query("scope"))
	if !valid {
		badRequest(ctx, "scope must be one of single, remaining, all", string(domainerror.ErrCodeInvalidInstallmentScope))
		return scope, nil, false
	}

	raw := ctx.Query("transactionId")
	targetID, err := optionalID(&raw)
	if err != nil {
		badRequest(ctx, "Invalid transaction ID format", string(domainerror.ErrCodeInvalidTransactionID))
		return scope, nil, false
	}
	return scope, targetID, true
}
