package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/ledger/internal/domain/valueobject"
)

// MaxRecurrenceInstallments bounds how many installments one occurrence may be split into.
const MaxRecurrenceInstallments = 480

// RecurrenceDefinition is a template that materialises transactions on a schedule.
type RecurrenceDefinition struct {
	ID          uuid.UUID
	DashboardID uuid.UUID
	UserID      uuid.UUID

	// Template
	Description string
	Amount      decimal.Decimal
	Type        TransactionType
	CategoryID  *uuid.UUID
	AccountID   *uuid.UUID
	Notes       string

	// Schedule
	Frequency valueobject.Frequency
	Interval  int
	StartDate time.Time
	EndDate   *time.Time

	// InstallmentCount splits every occurrence into an installment group when set.
	InstallmentCount *int

	// Cursor, advanced only by the processor.
	NextDueDate     time.Time
	LastGeneratedAt *time.Time

	IsActive      bool
	DeactivatedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// NewRecurrenceDefinition creates an active definition whose cursor starts at startDate.
func NewRecurrenceDefinition(
	dashboardID uuid.UUID,
	userID uuid.UUID,
	description string,
	amount decimal.Decimal,
	transactionType TransactionType,
	frequency valueobject.Frequency,
	interval int,
	startDate time.Time,
	endDate *time.Time,
) *RecurrenceDefinition {
	now := time.Now().UTC()
	start := valueobject.NormalizeDate(startDate)

	var end *time.Time
	if endDate != nil {
		e := valueobject.NormalizeDate(*endDate)
		end = &e
	}

	return &RecurrenceDefinition{
		ID:          uuid.New(),
		DashboardID: dashboardID,
		UserID:      userID,
		Description: description,
		Amount:      amount,
		Type:        transactionType,
		Frequency:   frequency,
		Interval:    interval,
		StartDate:   start,
		EndDate:     end,
		NextDueDate: start,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Step returns the definition's period step.
func (r *RecurrenceDefinition) Step() valueobject.Step {
	return valueobject.Step{Frequency: r.Frequency, Interval: r.Interval}
}

// WithinSchedule reports whether date is on or before the end date.
func (r *RecurrenceDefinition) WithinSchedule(date time.Time) bool {
	return r.EndDate == nil || !date.After(*r.EndDate)
}

// IsDue reports whether the cursor has an occurrence to post on or before today.
func (r *RecurrenceDefinition) IsDue(today time.Time) bool {
	return r.IsActive && r.DeletedAt == nil &&
		!r.NextDueDate.After(today) && r.WithinSchedule(r.NextDueDate)
}

// IsExhausted reports whether the cursor has moved past the end date.
func (r *RecurrenceDefinition) IsExhausted() bool {
	return !r.WithinSchedule(r.NextDueDate)
}

// IsSplit reports whether each occurrence becomes an installment group.
func (r *RecurrenceDefinition) IsSplit() bool {
	return r.InstallmentCount != nil && *r.InstallmentCount > 1
}

// Deactivate marks the definition inactive without deleting it.
func (r *RecurrenceDefinition) Deactivate(at time.Time) {
	if !r.IsActive {
		return
	}
	at = at.UTC()
	r.IsActive = false
	r.DeactivatedAt = &at
	r.UpdatedAt = at
}

// Activate resumes a paused definition.
func (r *RecurrenceDefinition) Activate(at time.Time) {
	r.IsActive = true
	r.DeactivatedAt = nil
	r.UpdatedAt = at.UTC()
}
