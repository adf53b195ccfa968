package installment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/finance-tracker/ledger/internal/application/adapter"
	"github.com/finance-tracker/ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/ledger/internal/domain/error"
)

// UpdateGroupInput represents the input for a scoped installment group update.
type UpdateGroupInput struct {
	DashboardID   uuid.UUID
	UserID        uuid.UUID
	GroupID       uuid.UUID
	TransactionID *uuid.UUID // Target row; required unless Scope is all
	Scope         entity.InstallmentScope
	Patch         entity.InstallmentPatch
}

// UpdateGroupOutput represents the output of a scoped installment group update.
type UpdateGroupOutput struct {
	Group        *GroupOutput
	UpdatedCount int
}

// UpdateGroupUseCase handles scoped installment group updates.
type UpdateGroupUseCase struct {
	transactionRepo adapter.TransactionRepository
	permissions     adapter.PermissionGate
	locks           GroupLocks
	metrics         adapter.Metrics
}

// NewUpdateGroupUseCase creates a new UpdateGroupUseCase instance.
func NewUpdateGroupUseCase(
	transactionRepo adapter.TransactionRepository,
	permissions adapter.PermissionGate,
	locks GroupLocks,
	metrics adapter.Metrics,
) *UpdateGroupUseCase {
	return &UpdateGroupUseCase{
		transactionRepo: transactionRepo,
		permissions:     permissions,
		locks:           locks,
		metrics:         metrics,
	}
}

// Execute applies the patch to the rows selected by the scope.
func (uc *UpdateGroupUseCase) Execute(ctx context.Context, input UpdateGroupInput) (*UpdateGroupOutput, error) {
	if !input.Scope.IsValid() {
		return nil, invalidScopeError()
	}
	if input.Patch.IsEmpty() {
		return nil, domainerror.NewInstallmentError(
			domainerror.ErrCodeEmptyInstallmentPatch,
			"at least one field must be provided",
			domainerror.ErrEmptyInstallmentPatch,
		)
	}
	if input.Scope != entity.ScopeAll && input.TransactionID == nil {
		return nil, targetRequiredError(input.Scope)
	}
	if err := validatePatch(input.Patch); err != nil {
		return nil, err
	}

	if err := uc.permissions.CheckPermission(ctx, input.UserID, input.DashboardID, entity.MutatingRoles...); err != nil {
		return nil, err
	}

	var result *adapter.GroupMutationResult
	err := uc.locks.With(ctx, []uuid.UUID{input.GroupID}, func() error {
		var mutateErr error
		result, mutateErr = uc.transactionRepo.MutateGroups(ctx, input.DashboardID, []uuid.UUID{input.GroupID},
			func(groups map[uuid.UUID][]*entity.Transaction) (*adapter.GroupChangeSet, error) {
				return PlanUpdate(groups[input.GroupID], input.TransactionID, input.Scope, input.Patch)
			})
		return mutateErr
	})
	if err != nil {
		return nil, mapMutationError(err)
	}

	uc.metrics.IncGroupMutation("update", input.Scope.String())
	slog.Info("Installment group updated",
		"dashboard_id", input.DashboardID,
		"group_id", input.GroupID,
		"scope", input.Scope.String(),
		"updated", result.UpdatedCount,
	)

	return &UpdateGroupOutput{
		Group:        toGroupOutput(input.GroupID, result.Groups[input.GroupID]),
		UpdatedCount: result.UpdatedCount,
	}, nil
}

func validatePatch(patch entity.InstallmentPatch) error {
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if description == "" || len(description) > entity.MaxDescriptionLength {
			return domainerror.NewInstallmentError(
				domainerror.ErrCodeInvalidInstallmentFields,
				fmt.Sprintf("description must be between 1 and %d characters", entity.MaxDescriptionLength),
				domainerror.ErrInvalidInstallmentFields,
			)
		}
	}
	if patch.Type != nil && !patch.Type.IsValid() {
		return domainerror.NewInstallmentError(
			domainerror.ErrCodeInvalidInstallmentFields,
			"type must be 'expense' or 'income'",
			domainerror.ErrInvalidInstallmentFields,
		)
	}
	if patch.Amount != nil {
		return validateAmount(*patch.Amount)
	}
	return nil
}
