package installment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/finance-tracker/ledger/internal/application/adapter"
	domainerror "github.com/finance-tracker/ledger/internal/domain/error"
)

// GetGroupInput represents the input for reading an installment group.
type GetGroupInput struct {
	DashboardID uuid.UUID
	UserID      uuid.UUID
	GroupID     uuid.UUID
}

// GetGroupUseCase handles reading an installment group.
type GetGroupUseCase struct {
	transactionRepo adapter.TransactionRepository
	permissions     adapter.PermissionGate
}

// NewGetGroupUseCase creates a new GetGroupUseCase instance.
func NewGetGroupUseCase(transactionRepo adapter.TransactionRepository, permissions adapter.PermissionGate) *GetGroupUseCase {
	return &GetGroupUseCase{
		transactionRepo: transactionRepo,
		permissions:     permissions,
	}
}

// Execute returns the live rows of the group ordered by installment number.
func (uc *GetGroupUseCase) Execute(ctx context.Context, input GetGroupInput) (*GroupOutput, error) {
	if err := uc.permissions.CheckPermission(ctx, input.UserID, input.DashboardID); err != nil {
		return nil, err
	}

	rows, err := uc.transactionRepo.FindByGroupID(ctx, input.GroupID, input.DashboardID)
	if err != nil {
		return nil, fmt.Errorf("failed to load installment group: %w", err)
	}
	if len(rows) == 0 {
		return nil, groupNotFoundError()
	}

	return toGroupOutput(input.GroupID, rows), nil
}

func groupNotFoundError() error {
	return domainerror.NewInstallmentError(
		domainerror.ErrCodeInstallmentGroupNotFound,
		"installment group not found",
		domainerror.ErrInstallmentGroupNotFound,
	)
}

// mapMutationError keeps coded errors and turns repository sentinels into coded ones.
func mapMutationError(err error) error {
	if domainerror.CodeOf(err) != "" {
		return err
	}
	if errors.Is(err, domainerror.ErrInstallmentGroupNotFound) {
		return groupNotFoundError()
	}
	return fmt.Errorf("failed to mutate installment group: %w", err)
}
