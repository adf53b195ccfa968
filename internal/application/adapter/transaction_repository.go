// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/ledger/internal/domain/entity"
)

// GroupChangeSet describes the writes a group mutation performs.
type GroupChangeSet struct {
	// Updated rows are written back in full.
	Updated []*entity.Transaction
	// Deleted rows are soft-deleted. Standalone transactions may be listed too.
	Deleted []uuid.UUID
}

// IsEmpty reports whether the change set performs no writes.
func (c *GroupChangeSet) IsEmpty() bool {
	return c == nil || (len(c.Updated) == 0 && len(c.Deleted) == 0)
}

// GroupMutation computes a change set from the current rows of each locked group.
// It runs inside the repository's transaction and must not perform I/O.
type GroupMutation func(groups map[uuid.UUID][]*entity.Transaction) (*GroupChangeSet, error)

// GroupMutationResult reports the outcome of MutateGroups.
type GroupMutationResult struct {
	// Groups holds the surviving rows of every touched group, ordered by installment number.
	Groups       map[uuid.UUID][]*entity.Transaction
	UpdatedCount int
	DeletedCount int64
}

// TransactionRepository defines the interface for transaction persistence operations.
type TransactionRepository interface {
	// Create creates a new transaction in the database.
	Create(ctx context.Context, transaction *entity.Transaction) error

	// CreateBatch inserts all transactions in a single database transaction.
	// Either every row is stored or none is.
	CreateBatch(ctx context.Context, transactions []*entity.Transaction) error

	// FindByID retrieves a live transaction by its ID within a dashboard.
	FindByID(ctx context.Context, id uuid.UUID, dashboardID uuid.UUID) (*entity.Transaction, error)

	// FindByIDs retrieves the live transactions among ids within a dashboard.
	FindByIDs(ctx context.Context, ids []uuid.UUID, dashboardID uuid.UUID) ([]*entity.Transaction, error)

	// FindByGroupID retrieves the live rows of an installment group ordered by installment number.
	FindByGroupID(ctx context.Context, groupID uuid.UUID, dashboardID uuid.UUID) ([]*entity.Transaction, error)

	// FindByRecurrenceID retrieves the transactions generated by a recurrence, ordered by date.
	FindByRecurrenceID(ctx context.Context, recurrenceID uuid.UUID) ([]*entity.Transaction, error)

	// CountByRecurrenceID counts the transactions, including soft-deleted ones, that reference a recurrence.
	CountByRecurrenceID(ctx context.Context, recurrenceID uuid.UUID) (int64, error)

	// MutateGroups loads and locks the rows of groupIDs, applies the change set
	// computed by fn, and verifies every touched group before committing.
	// A group left inconsistent aborts the whole unit with a consistency error.
	MutateGroups(ctx context.Context, dashboardID uuid.UUID, groupIDs []uuid.UUID, fn GroupMutation) (*GroupMutationResult, error)
}
