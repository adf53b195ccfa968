package installment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/ledger/internal/application/adapter"
	"github.com/finance-tracker/ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/ledger/internal/domain/error"
	"github.com/finance-tracker/ledger/internal/domain/valueobject"
)

// CreatePlanInput represents the input for installment plan creation.
type CreatePlanInput struct {
	DashboardID uuid.UUID
	UserID      uuid.UUID
	Description string
	TotalAmount decimal.Decimal
	Type        entity.TransactionType
	CategoryID  *uuid.UUID
	AccountID   *uuid.UUID
	Notes       string
	FirstDate   time.Time
	Count       int
	Frequency   valueobject.Frequency // Optional, monthly when empty
	Interval    int                   // Optional, 1 when zero
}

// CreatePlanOutput represents the output of installment plan creation.
type CreatePlanOutput struct {
	Group *GroupOutput
}

// CreatePlanUseCase handles installment plan creation logic.
type CreatePlanUseCase struct {
	transactionRepo adapter.TransactionRepository
	permissions     adapter.PermissionGate
}

// NewCreatePlanUseCase creates a new CreatePlanUseCase instance.
func NewCreatePlanUseCase(
	transactionRepo adapter.TransactionRepository,
	permissions adapter.PermissionGate,
) *CreatePlanUseCase {
	return &CreatePlanUseCase{
		transactionRepo: transactionRepo,
		permissions:     permissions,
	}
}

// Execute validates the plan and stores every installment row in one transaction.
func (uc *CreatePlanUseCase) Execute(ctx context.Context, input CreatePlanInput) (*CreatePlanOutput, error) {
	if err := validatePlanFields(input.Description, input.Type); err != nil {
		return nil, err
	}

	if err := uc.permissions.CheckPermission(ctx, input.UserID, input.DashboardID, entity.MutatingRoles...); err != nil {
		return nil, err
	}

	var step valueobject.Step
	if input.Frequency != "" || input.Interval != 0 {
		step = valueobject.Step{Frequency: input.Frequency, Interval: input.Interval}
		if step.Frequency == "" {
			step.Frequency = valueobject.FrequencyMonthly
		}
		if step.Interval == 0 {
			step.Interval = 1
		}
	}

	rows, err := Plan(PlanInput{
		DashboardID: input.DashboardID,
		UserID:      input.UserID,
		Description: strings.TrimSpace(input.Description),
		Total:       input.TotalAmount,
		Type:        input.Type,
		CategoryID:  input.CategoryID,
		AccountID:   input.AccountID,
		Notes:       input.Notes,
		FirstDate:   input.FirstDate,
		Count:       input.Count,
		Step:        step,
	})
	if err != nil {
		return nil, err
	}

	if err := uc.transactionRepo.CreateBatch(ctx, rows); err != nil {
		return nil, fmt.Errorf("failed to create installment plan: %w", err)
	}

	groupID := *rows[0].GroupID
	slog.Info("Installment plan created",
		"dashboard_id", input.DashboardID,
		"group_id", groupID,
		"count", input.Count,
		"total", input.TotalAmount.StringFixed(2),
	)

	return &CreatePlanOutput{Group: toGroupOutput(groupID, rows)}, nil
}

func validatePlanFields(description string, transactionType entity.TransactionType) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return domainerror.NewInstallmentError(
			domainerror.ErrCodeInvalidInstallmentFields,
			"description is required",
			domainerror.ErrInvalidInstallmentFields,
		)
	}
	if len(description) > entity.MaxDescriptionLength {
		return domainerror.NewInstallmentError(
			domainerror.ErrCodeInvalidInstallmentFields,
			fmt.Sprintf("description must not exceed %d characters", entity.MaxDescriptionLength),
			domainerror.ErrInvalidInstallmentFields,
		)
	}
	if !transactionType.IsValid() {
		return domainerror.NewInstallmentError(
			domainerror.ErrCodeInvalidInstallmentFields,
			"type must be 'expense' or 'income'",
			domainerror.ErrInvalidInstallmentFields,
		)
	}
	return nil
}
