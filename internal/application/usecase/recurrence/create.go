package recurrence

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
)

// CreateInput represents the input for recurrence creation.
type CreateInput struct {
	DashboardID      uuid.UUID
	UserID           uuid.UUID
	Description      string
	Amount           decimal.Decimal
	Type             entity.TransactionType
	CategoryID       *uuid.UUID
	AccountID        *uuid.UUID
	Notes            string
	Frequency        string
	Interval         *int // Optional, 1 when nil
	StartDate        time.Time
	EndDate          *time.Time
	InstallmentCount *int
}

// CreateOutput represents the output of recurrence creation.
type CreateOutput struct {
	Recurrence *RecurrenceOutput
}

// CreateUseCase handles recurrence creation logic.
type CreateUseCase struct {
	recurrenceRepo adapter.RecurrenceRepository
	permissions    adapter.PermissionGate
}

// NewCreateUseCase creates a new CreateUseCase instance.
func NewCreateUseCase(
	recurrenceRepo adapter.RecurrenceRepository,
	permissions adapter.PermissionGate,
) *CreateUseCase {
	return &CreateUseCase{
		recurrenceRepo: recurrenceRepo,
		permissions:    permissions,
	}
}

// Execute validates the template and schedule and stores an active definition.
// The cursor starts at the start date, so a past start is caught up on the next run.
func (uc *CreateUseCase) Execute(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if err := validateTemplate(input.Description, input.Amount, input.Type); err != nil {
		return nil, err
	}

	frequency, err := parseFrequency(input.Frequency)
	if err != nil {
		return nil, err
	}

	interval := 1
	if input.Interval != nil {
		interval = *input.Interval
	}
	if err := validateInterval(interval); err != nil {
		return nil, err
	}
	if err := validateDateRange(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	if err := validateInstallmentCount(input.InstallmentCount, input.Amount); err != nil {
		return nil, err
	}

	if err := uc.permissions.CheckPermission(ctx, input.UserID, input.DashboardID, entity.MutatingRoles...); err != nil {
		return nil, err
	}

	definition := entity.NewRecurrenceDefinition(
		input.DashboardID,
		input.UserID,
		strings.TrimSpace(input.Description),
		input.Amount,
		input.Type,
		frequency,
		interval,
		input.StartDate,
		input.EndDate,
	)
	definition.CategoryID = input.CategoryID
	definition.AccountID = input.AccountID
	definition.Notes = input.Notes
	definition.InstallmentCount = input.InstallmentCount

	if err := uc.recurrenceRepo.Create(ctx, definition); err != nil {
		return nil, fmt.Errorf("failed to create recurrence: %w", err)
	}

	slog.Info("Recurrence created",
		"recurrence_id", definition.ID,
		"dashboard_id", definition.DashboardID,
		"frequency", definition.Frequency,
		"interval", definition.Interval,
	)

	return &CreateOutput{Recurrence: ToRecurrenceOutput(definition)}, nil
}
