// Package recurrence contains recurrence definition use cases and the due-transaction processor.
package recurrence

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/ledger/internal/domain/entity"
	"github.com/finance-tracker/ledger/internal/domain/valueobject"
)

// RecurrenceOutput represents a recurrence definition in use case output.
type RecurrenceOutput struct {
	ID               uuid.UUID
	DashboardID      uuid.UUID
	UserID           uuid.UUID
	Description      string
	Amount           decimal.Decimal
	Type             entity.TransactionType
	CategoryID       *uuid.UUID
	AccountID        *uuid.UUID
	Notes            string
	Frequency        valueobject.Frequency
	Interval         int
	StartDate        time.Time
	EndDate          *time.Time
	InstallmentCount *int
	NextDueDate      time.Time
	LastGeneratedAt  *time.Time
	IsActive         bool
	DeactivatedAt    *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ToRecurrenceOutput converts a recurrence definition to output.
func ToRecurrenceOutput(d *entity.RecurrenceDefinition) *RecurrenceOutput {
	return &RecurrenceOutput{
		ID:               d.ID,
		DashboardID:      d.DashboardID,
		UserID:           d.UserID,
		Description:      d.Description,
		Amount:           d.Amount,
		Type:             d.Type,
		CategoryID:       d.CategoryID,
		AccountID:        d.AccountID,
		Notes:            d.Notes,
		Frequency:        d.Frequency,
		Interval:         d.Interval,
		StartDate:        d.StartDate,
		EndDate:          d.EndDate,
		InstallmentCount: d.InstallmentCount,
		NextDueDate:      d.NextDueDate,
		LastGeneratedAt:  d.LastGeneratedAt,
		IsActive:         d.IsActive,
		DeactivatedAt:    d.DeactivatedAt,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}
