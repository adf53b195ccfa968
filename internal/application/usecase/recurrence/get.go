package recurrence

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/finance-tracker/ledger/internal/application/adapter"
)

// GetInput represents the input for fetching one recurrence.
type GetInput struct {
	DashboardID uuid.UUID
	UserID      uuid.UUID
	ID          uuid.UUID
}

// GetUseCase returns one recurrence definition to any dashboard member.
type GetUseCase struct {
	recurrenceRepo adapter.RecurrenceRepository
	permissions    adapter.PermissionGate
}

// NewGetUseCase creates a new GetUseCase instance.
func NewGetUseCase(recurrenceRepo adapter.RecurrenceRepository, permissions adapter.PermissionGate) *GetUseCase {
	return &GetUseCase{recurrenceRepo: recurrenceRepo, permissions: permissions}
}

// Execute fetches the definition.
func (uc *GetUseCase) Execute(ctx context.Context, input GetInput) (*RecurrenceOutput, error) {
	if err := uc.permissions.CheckPermission(ctx, input.UserID, input.DashboardID); err != nil {
		return nil, err
	}

	definition, err := uc.recurrenceRepo.FindByID(ctx, input.ID, input.DashboardID)
	if err != nil {
		return nil, notFoundError(err)
	}
	return ToRecurrenceOutput(definition), nil
}

// ListInput represents the input for listing recurrences.
type ListInput struct {
	DashboardID     uuid.UUID
	UserID          uuid.UUID
	IncludeInactive bool
}

// ListOutput represents the output of listing recurrences.
type ListOutput struct {
	Recurrences []*RecurrenceOutput
}

// ListUseCase lists the recurrence definitions of a dashboard.
type ListUseCase struct {
	recurrenceRepo adapter.RecurrenceRepository
	permissions    adapter.PermissionGate
}

// NewListUseCase creates a new ListUseCase instance.
func NewListUseCase(recurrenceRepo adapter.RecurrenceRepository, permissions adapter.PermissionGate) *ListUseCase {
	return &ListUseCase{recurrenceRepo: recurrenceRepo, permissions: permissions}
}

// Execute lists definitions ordered by next due date.
func (uc *ListUseCase) Execute(ctx context.Context, input ListInput) (*ListOutput, error) {
	if err := uc.permissions.CheckPermission(ctx, input.UserID, input.DashboardID); err != nil {
		return nil, err
	}

	definitions, err := uc.recurrenceRepo.List(ctx, adapter.RecurrenceFilter{
		DashboardID:     input.DashboardID,
		IncludeInactive: input.IncludeInactive,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list recurrences: %w", err)
	}

	output := &ListOutput{Recurrences: make([]*RecurrenceOutput, len(definitions))}
	for i, d := range definitions {
		output.Recurrences[i] = ToRecurrenceOutput(d)
	}
	return output, nil
}
