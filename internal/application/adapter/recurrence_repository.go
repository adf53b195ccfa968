package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/ledger/internal/domain/entity"
)

// RecurrenceFilter defines filter options for listing recurrence definitions.
type RecurrenceFilter struct {
	DashboardID     uuid.UUID
	IncludeInactive bool
}

// DueFilter selects definitions for a processing run.
type DueFilter struct {
	// Today is the last calendar day that may be posted.
	Today time.Time
	// DashboardID restricts the run to one dashboard when set.
	DashboardID *uuid.UUID
}

// OccurrenceCommit is the unit of work that posts occurrences and advances the cursor.
type OccurrenceCommit struct {
	// Definition carries the new cursor state (NextDueDate, LastGeneratedAt, IsActive).
	Definition *entity.RecurrenceDefinition
	// ExpectedNextDueDate is the cursor value read before the occurrences were computed.
	ExpectedNextDueDate time.Time
	// Transactions are the rows to insert. Rows whose occurrence already exists are skipped.
	Transactions []*entity.Transaction
}

// OccurrenceCommitResult reports what a commit stored.
type OccurrenceCommitResult struct {
	Created []*entity.Transaction
	Skipped int
}

// RecurrenceRepository defines the interface for recurrence definition persistence operations.
type RecurrenceRepository interface {
	// Create creates a new recurrence definition.
	Create(ctx context.Context, definition *entity.RecurrenceDefinition) error

	// FindByID retrieves a non-deleted definition by its ID within a dashboard.
	FindByID(ctx context.Context, id uuid.UUID, dashboardID uuid.UUID) (*entity.RecurrenceDefinition, error)

	// List retrieves the non-deleted definitions of a dashboard.
	List(ctx context.Context, filter RecurrenceFilter) ([]*entity.RecurrenceDefinition, error)

	// Update writes template fields, the end date and the active flag.
	// The cursor is never written by Update.
	Update(ctx context.Context, definition *entity.RecurrenceDefinition) error

	// SoftDelete marks a definition deleted.
	SoftDelete(ctx context.Context, id uuid.UUID, dashboardID uuid.UUID) error

	// FindDue retrieves active definitions whose cursor is on or before the filter's day
	// and not past their end date, ordered by dashboard and cursor.
	FindDue(ctx context.Context, filter DueFilter) ([]*entity.RecurrenceDefinition, error)

	// FindExhausted retrieves active definitions whose cursor already passed their end date.
	FindExhausted(ctx context.Context, filter DueFilter) ([]*entity.RecurrenceDefinition, error)

	// CommitOccurrences inserts the occurrence rows and advances the cursor atomically.
	// It fails with a conflict error when the stored cursor no longer matches ExpectedNextDueDate.
	CommitOccurrences(ctx context.Context, commit OccurrenceCommit) (*OccurrenceCommitResult, error)
}
