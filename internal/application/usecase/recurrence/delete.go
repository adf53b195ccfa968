package recurrence

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/finance-tracker/ledger/internal/application/adapter"
	"github.com/finance-tracker/ledger/internal/domain/entity"
)

// DeleteInput represents the input for recurrence deletion.
type DeleteInput struct {
	DashboardID uuid.UUID
	UserID      uuid.UUID
	ID          uuid.UUID
}

// DeleteOutput reports how the definition was removed.
type DeleteOutput struct {
	// Deleted is true when the definition was soft-deleted.
	Deleted bool
	// Deactivated is true when generated transactions reference the definition,
	// so it was only deactivated.
	Deactivated bool
}

// DeleteUseCase handles recurrence deletion logic.
type DeleteUseCase struct {
	recurrenceRepo  adapter.RecurrenceRepository
	transactionRepo adapter.TransactionRepository
	permissions     adapter.PermissionGate
	locks           DefinitionLocks
	clock           adapter.Clock
}

// NewDeleteUseCase creates a new DeleteUseCase instance.
func NewDeleteUseCase(
	recurrenceRepo adapter.RecurrenceRepository,
	transactionRepo adapter.TransactionRepository,
	permissions adapter.PermissionGate,
	locks DefinitionLocks,
	clock adapter.Clock,
) *DeleteUseCase {
	return &DeleteUseCase{
		recurrenceRepo:  recurrenceRepo,
		transactionRepo: transactionRepo,
		permissions:     permissions,
		locks:           locks,
		clock:           clock,
	}
}

// Execute soft-deletes an unreferenced definition and deactivates a referenced one.
func (uc *DeleteUseCase) Execute(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if err := uc.permissions.CheckPermission(ctx, input.UserID, input.DashboardID, entity.MutatingRoles...); err != nil {
		return nil, err
	}

	output := &DeleteOutput{}
	err := uc.locks.With(ctx, input.ID, func() error {
		definition, err := uc.recurrenceRepo.FindByID(ctx, input.ID, input.DashboardID)
		if err != nil {
			return notFoundError(err)
		}

		references, err := uc.transactionRepo.CountByRecurrenceID(ctx, definition.ID)
		if err != nil {
			return fmt.Errorf("failed to count generated transactions: %w", err)
		}

		if references == 0 {
			if err := uc.recurrenceRepo.SoftDelete(ctx, definition.ID, definition.DashboardID); err != nil {
				return notFoundError(err)
			}
			output.Deleted = true
			return nil
		}

		definition.Deactivate(uc.clock.Now())
		if err := uc.recurrenceRepo.Update(ctx, definition); err != nil {
			return fmt.Errorf("failed to deactivate recurrence: %w", err)
		}
		output.Deactivated = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Recurrence removed",
		"recurrence_id", input.ID,
		"dashboard_id", input.DashboardID,
		"deleted", output.Deleted,
		"deactivated", output.Deactivated,
	)
	return output, nil
}
