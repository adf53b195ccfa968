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
	domainerror "github.com/finance-tracker/ledger/internal/domain/error"
	"github.com/finance-tracker/ledger/internal/domain/valueobject"
)

// UpdateInput represents the input for recurrence update.
// Nil fields are left unchanged. The schedule and the cursor cannot be edited.
type UpdateInput struct {
	DashboardID uuid.UUID
	UserID      uuid.UUID
	ID          uuid.UUID

	Description *string
	Amount      *decimal.Decimal
	Type        *entity.TransactionType
	CategoryID  *uuid.UUID
	AccountID   *uuid.UUID
	Notes       *string

	ClearCategoryID bool
	ClearAccountID  bool

	EndDate      *time.Time
	ClearEndDate bool

	InstallmentCount      *int
	ClearInstallmentCount bool

	IsActive *bool
}

// UpdateUseCase handles recurrence update logic.
type UpdateUseCase struct {
	recurrenceRepo adapter.RecurrenceRepository
	permissions    adapter.PermissionGate
	locks          DefinitionLocks
	clock          adapter.Clock
}

// NewUpdateUseCase creates a new UpdateUseCase instance.
func NewUpdateUseCase(
	recurrenceRepo adapter.RecurrenceRepository,
	permissions adapter.PermissionGate,
	locks DefinitionLocks,
	clock adapter.Clock,
) *UpdateUseCase {
	return &UpdateUseCase{
		recurrenceRepo: recurrenceRepo,
		permissions:    permissions,
		locks:          locks,
		clock:          clock,
	}
}

// Execute applies the changes under the definition lock.
// Moving the end date before the cursor deactivates the definition.
func (uc *UpdateUseCase) Execute(ctx context.Context, input UpdateInput) (*RecurrenceOutput, error) {
	if err := uc.permissions.CheckPermission(ctx, input.UserID, input.DashboardID, entity.MutatingRoles...); err != nil {
		return nil, err
	}

	var updated *entity.RecurrenceDefinition
	err := uc.locks.With(ctx, input.ID, func() error {
		definition, err := uc.recurrenceRepo.FindByID(ctx, input.ID, input.DashboardID)
		if err != nil {
			return notFoundError(err)
		}

		if err := applyUpdate(definition, input, uc.clock.Now()); err != nil {
			return err
		}

		if err := uc.recurrenceRepo.Update(ctx, definition); err != nil {
			return fmt.Errorf("failed to update recurrence: %w", err)
		}
		updated = definition
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Recurrence updated",
		"recurrence_id", updated.ID,
		"dashboard_id", updated.DashboardID,
		"is_active", updated.IsActive,
	)
	return ToRecurrenceOutput(updated), nil
}

func applyUpdate(d *entity.RecurrenceDefinition, input UpdateInput, now time.Time) error {
	if input.Description != nil {
		d.Description = strings.TrimSpace(*input.Description)
	}
	if input.Amount != nil {
		d.Amount = *input.Amount
	}
	if input.Type != nil {
		d.Type = *input.Type
	}
	if err := validateTemplate(d.Description, d.Amount, d.Type); err != nil {
		return err
	}

	if input.ClearCategoryID {
		d.CategoryID = nil
	} else if input.CategoryID != nil {
		d.CategoryID = input.CategoryID
	}
	if input.ClearAccountID {
		d.AccountID = nil
	} else if input.AccountID != nil {
		d.AccountID = input.AccountID
	}
	if input.Notes != nil {
		d.Notes = *input.Notes
	}

	if input.ClearInstallmentCount {
		d.InstallmentCount = nil
	} else if input.InstallmentCount != nil {
		d.InstallmentCount = input.InstallmentCount
	}
	if err := validateInstallmentCount(d.InstallmentCount, d.Amount); err != nil {
		return err
	}

	if input.ClearEndDate {
		d.EndDate = nil
	} else if input.EndDate != nil {
		end := valueobject.NormalizeDate(*input.EndDate)
		if err := validateDateRange(d.StartDate, &end); err != nil {
			return err
		}
		d.EndDate = &end
	}

	if input.IsActive != nil {
		if *input.IsActive && !d.IsActive {
			if d.IsExhausted() {
				return domainerror.NewRecurrenceError(
					domainerror.ErrCodeRecurrenceExhausted,
					"cannot resume a recurrence whose schedule has ended",
					domainerror.ErrRecurrenceExhausted,
				)
			}
			d.Activate(now)
		} else if !*input.IsActive {
			d.Deactivate(now)
		}
	}

	if d.IsActive && d.IsExhausted() {
		d.Deactivate(now)
	}
	d.UpdatedAt = now.UTC()
	return nil
}
