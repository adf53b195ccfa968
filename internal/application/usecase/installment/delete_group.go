package installment

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/finance-tracker/ledger/internal/application/adapter"
	"github.com/finance-tracker/ledger/internal/domain/entity"
)

// DeleteGroupInput represents the input for a scoped installment group deletion.
type DeleteGroupInput struct {
	DashboardID   uuid.UUID
	UserID        uuid.UUID
	GroupID       uuid.UUID
	TransactionID *uuid.UUID // Target row; required unless Scope is all
	Scope         entity.InstallmentScope
	// IncludeFuture is the caller's explicit flag. It is recorded with the
	// deletion; the scope alone selects the rows.
	IncludeFuture bool
}

// DeleteGroupOutput represents the output of a scoped installment group deletion.
type DeleteGroupOutput struct {
	DeletedCount int64
	// Remaining holds the surviving rows, nil once the whole group is gone.
	Remaining *GroupOutput
}

// DeleteGroupUseCase handles scoped installment group deletions.
type DeleteGroupUseCase struct {
	transactionRepo adapter.TransactionRepository
	permissions     adapter.PermissionGate
	locks           GroupLocks
	metrics         adapter.Metrics
}

// NewDeleteGroupUseCase creates a new DeleteGroupUseCase instance.
func NewDeleteGroupUseCase(
	transactionRepo adapter.TransactionRepository,
	permissions adapter.PermissionGate,
	locks GroupLocks,
	metrics adapter.Metrics,
) *DeleteGroupUseCase {
	return &DeleteGroupUseCase{
		transactionRepo: transactionRepo,
		permissions:     permissions,
		locks:           locks,
		metrics:         metrics,
	}
}

// Execute removes the rows selected by the scope and renumbers the survivors.
func (uc *DeleteGroupUseCase) Execute(ctx context.Context, input DeleteGroupInput) (*DeleteGroupOutput, error) {
	if !input.Scope.IsValid() {
		return nil, invalidScopeError()
	}
	if input.Scope != entity.ScopeAll && input.TransactionID == nil {
		return nil, targetRequiredError(input.Scope)
	}

	if err := uc.permissions.CheckPermission(ctx, input.UserID, input.DashboardID, entity.MutatingRoles...); err != nil {
		return nil, err
	}

	var result *adapter.GroupMutationResult
	err := uc.locks.With(ctx, []uuid.UUID{input.GroupID}, func() error {
		var mutateErr error
		result, mutateErr = uc.transactionRepo.MutateGroups(ctx, input.DashboardID, []uuid.UUID{input.GroupID},
			func(groups map[uuid.UUID][]*entity.Transaction) (*adapter.GroupChangeSet, error) {
				return PlanDelete(groups[input.GroupID], input.TransactionID, input.Scope)
			})
		return mutateErr
	})
	if err != nil {
		return nil, mapMutationError(err)
	}

	uc.metrics.IncGroupMutation("delete", input.Scope.String())
	slog.Info("Installment group rows deleted",
		"dashboard_id", input.DashboardID,
		"group_id", input.GroupID,
		"scope", input.Scope.String(),
		"include_future", input.IncludeFuture,
		"deleted", result.DeletedCount,
	)

	output := &DeleteGroupOutput{DeletedCount: result.DeletedCount}
	if survivors := result.Groups[input.GroupID]; len(survivors) > 0 {
		output.Remaining = toGroupOutput(input.GroupID, survivors)
	}
	return output, nil
}
