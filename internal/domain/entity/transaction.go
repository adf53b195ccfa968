// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/ledger/internal/domain/valueobject"
)

// TransactionType represents the type of transaction (expense or income).
type TransactionType string

const (
	TransactionTypeExpense TransactionType = "expense"
	TransactionTypeIncome  TransactionType = "income"
)

// IsValid reports whether t is a known transaction type.
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeExpense || t == TransactionTypeIncome
}

// MaxDescriptionLength is the longest description accepted on transactions and templates.
const MaxDescriptionLength = 255

// Transaction represents a financial transaction posted to a dashboard.
type Transaction struct {
	ID          uuid.UUID
	DashboardID uuid.UUID
	UserID      uuid.UUID
	Date        time.Time
	Description string
	Amount      decimal.Decimal // Positive magnitude; Type carries the sign
	Type        TransactionType
	CategoryID  *uuid.UUID
	AccountID   *uuid.UUID
	Notes       string

	// Installment membership, all set or all nil.
	GroupID           *uuid.UUID
	InstallmentNumber *int
	InstallmentTotal  *int
	InstallmentStep   *valueobject.Step

	// Set on rows materialised by the recurrence processor.
	RecurrenceID   *uuid.UUID
	OccurrenceDate *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time // Soft-delete support
}

// NewTransaction creates a new standalone Transaction entity.
func NewTransaction(
	dashboardID uuid.UUID,
	userID uuid.UUID,
	date time.Time,
	description string,
	amount decimal.Decimal,
	transactionType TransactionType,
	categoryID *uuid.UUID,
	accountID *uuid.UUID,
	notes string,
) *Transaction {
	now := time.Now().UTC()

	return &Transaction{
		ID:          uuid.New(),
		DashboardID: dashboardID,
		UserID:      userID,
		Date:        valueobject.NormalizeDate(date),
		Description: description,
		Amount:      amount,
		Type:        transactionType,
		CategoryID:  categoryID,
		AccountID:   accountID,
		Notes:       notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsInstallment reports whether the transaction belongs to an installment group.
func (t *Transaction) IsInstallment() bool {
	return t.GroupID != nil
}

// SignedAmount returns the amount with expenses negated.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Number returns the installment number, or 0 for standalone rows.
func (t *Transaction) Number() int {
	if t.InstallmentNumber == nil {
		return 0
	}
	return *t.InstallmentNumber
}

// SetInstallmentPosition sets the row's number and the group size.
func (t *Transaction) SetInstallmentPosition(number, total int) {
	t.InstallmentNumber = &number
	t.InstallmentTotal = &total
}
