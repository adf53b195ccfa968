// Package transaction contains transaction-related use cases.
package transaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/finance-tracker/ledger/internal/application/adapter"
	"github.com/finance-tracker/ledger/internal/application/usecase/installment"
	"github.com/finance-tracker/ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/ledger/internal/domain/error"
)

// BulkDeleteTransactionsInput represents the input for bulk transaction deletion.
type BulkDeleteTransactionsInput struct {
	DashboardID    uuid.UUID
	UserID         uuid.UUID
	TransactionIDs []uuid.UUID
	// IncludeInstallments deletes the whole group of every selected installment.
	// Otherwise only the selected rows go and the survivors are renumbered.
	IncludeInstallments bool
	// IncludeFuture also deletes every later installment of each selected row.
	// IncludeInstallments takes precedence.
	IncludeFuture bool
}

// BulkDeleteTransactionsOutput represents the output of bulk transaction deletion.
type BulkDeleteTransactionsOutput struct {
	DeletedCount    int64
	RenumberedCount int
}

// BulkDeleteTransactionsUseCase handles bulk transaction deletion logic.
type BulkDeleteTransactionsUseCase struct {
	transactionRepo adapter.TransactionRepository
	permissions     adapter.PermissionGate
	locks           installment.GroupLocks
	metrics         adapter.Metrics
}

// NewBulkDeleteTransactionsUseCase creates a new BulkDeleteTransactionsUseCase instance.
func NewBulkDeleteTransactionsUseCase(
	transactionRepo adapter.TransactionRepository,
	permissions adapter.PermissionGate,
	locks installment.GroupLocks,
	metrics adapter.Metrics,
) *BulkDeleteTransactionsUseCase {
	return &BulkDeleteTransactionsUseCase{
		transactionRepo: transactionRepo,
		permissions:     permissions,
		locks:           locks,
		metrics:         metrics,
	}
}

// Execute deletes the selected transactions and repairs every installment group
// they touch, all in one atomic unit.
func (uc *BulkDeleteTransactionsUseCase) Execute(ctx context.Context, input BulkDeleteTransactionsInput) (*BulkDeleteTransactionsOutput, error) {
	ids := uniqueIDs(input.TransactionIDs)
	if len(ids) == 0 {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeEmptyTransactionIDs,
			"transaction IDs list cannot be empty",
			domainerror.ErrEmptyTransactionIDs,
		)
	}

	if err := uc.permissions.CheckPermission(ctx, input.UserID, input.DashboardID, entity.MutatingRoles...); err != nil {
		return nil, err
	}

	transactions, err := uc.transactionRepo.FindByIDs(ctx, ids, input.DashboardID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify transactions: %w", err)
	}
	if len(transactions) != len(ids) {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeTransactionIDsNotFound,
			"one or more transactions not found in dashboard",
			domainerror.ErrTransactionIDsNotFound,
		)
	}

	var standalone []uuid.UUID
	selected := make(map[uuid.UUID]bool, len(ids))
	groupSet := make(map[uuid.UUID]bool)
	for _, txn := range transactions {
		if txn.GroupID == nil {
			standalone = append(standalone, txn.ID)
			continue
		}
		selected[txn.ID] = true
		groupSet[*txn.GroupID] = true
	}

	groupIDs := make([]uuid.UUID, 0, len(groupSet))
	for groupID := range groupSet {
		groupIDs = append(groupIDs, groupID)
	}
	sort.Slice(groupIDs, func(i, j int) bool { return groupIDs[i].String() < groupIDs[j].String() })

	var result *adapter.GroupMutationResult
	err = uc.locks.With(ctx, groupIDs, func() error {
		var err error
		result, err = uc.transactionRepo.MutateGroups(ctx, input.DashboardID, groupIDs,
			func(groups map[uuid.UUID][]*entity.Transaction) (*adapter.GroupChangeSet, error) {
				changes := &adapter.GroupChangeSet{Deleted: append([]uuid.UUID{}, standalone...)}
				for _, groupID := range groupIDs {
					rows := groups[groupID]
					remove := selected
					switch {
					case input.IncludeInstallments:
						remove = make(map[uuid.UUID]bool, len(rows))
						for _, row := range rows {
							remove[row.ID] = true
						}
					case input.IncludeFuture:
						remove = make(map[uuid.UUID]bool, len(rows))
						for _, row := range rows {
							if selected[row.ID] {
								installment.FromTarget(rows, row.ID, remove)
							}
						}
					}
					groupChanges := installment.RemoveRows(rows, remove)
					changes.Updated = append(changes.Updated, groupChanges.Updated...)
					changes.Deleted = append(changes.Deleted, groupChanges.Deleted...)
				}
				return changes, nil
			})
		return err
	})
	if err != nil {
		return nil, mapDeleteError(err)
	}

	scope := entity.ScopeSingle.String()
	switch {
	case input.IncludeInstallments:
		scope = entity.ScopeAll.String()
	case input.IncludeFuture:
		scope = entity.ScopeRemaining.String()
	}
	for range groupIDs {
		uc.metrics.IncGroupMutation("bulk_delete", scope)
	}

	slog.Info("Transactions bulk deleted",
		"dashboard_id", input.DashboardID,
		"requested", len(ids),
		"deleted", result.DeletedCount,
		"groups", len(groupIDs),
		"include_installments", input.IncludeInstallments,
		"include_future", input.IncludeFuture,
	)

	return &BulkDeleteTransactionsOutput{
		DeletedCount:    result.DeletedCount,
		RenumberedCount: result.UpdatedCount,
	}, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func mapDeleteError(err error) error {
	if domainerror.CodeOf(err) != "" {
		return err
	}
	if errors.Is(err, domainerror.ErrInstallmentGroupNotFound) {
		return domainerror.NewTransactionError(
			domainerror.ErrCodeTransactionIDsNotFound,
			"one or more transactions were deleted concurrently",
			domainerror.ErrTransactionIDsNotFound,
		)
	}
	return fmt.Errorf("failed to bulk delete transactions: %w", err)
}
