package installment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/ledger/internal/domain/entity"
)

// TransactionOutput represents a transaction row in use case output.
type TransactionOutput struct {
	ID                uuid.UUID
	DashboardID       uuid.UUID
	UserID            uuid.UUID
	Date              time.Time
	Description       string
	Amount            decimal.Decimal
	Type              entity.TransactionType
	CategoryID        *uuid.UUID
	AccountID         *uuid.UUID
	Notes             string
	GroupID           *uuid.UUID
	InstallmentNumber *int
	InstallmentTotal  *int
	RecurrenceID      *uuid.UUID
	OccurrenceDate    *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// GroupOutput represents an installment group in use case output.
type GroupOutput struct {
	GroupID      uuid.UUID
	Total        decimal.Decimal
	Count        int
	Transactions []*TransactionOutput
}

// ToTransactionOutput converts a transaction entity to output.
func ToTransactionOutput(t *entity.Transaction) *TransactionOutput {
	return &TransactionOutput{
		ID:                t.ID,
		DashboardID:       t.DashboardID,
		UserID:            t.UserID,
		Date:              t.Date,
		Description:       t.Description,
		Amount:            t.Amount,
		Type:              t.Type,
		CategoryID:        t.CategoryID,
		AccountID:         t.AccountID,
		Notes:             t.Notes,
		GroupID:           t.GroupID,
		InstallmentNumber: t.InstallmentNumber,
		InstallmentTotal:  t.InstallmentTotal,
		RecurrenceID:      t.RecurrenceID,
		OccurrenceDate:    t.OccurrenceDate,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

// ToTransactionOutputs converts transaction entities to output.
func ToTransactionOutputs(transactions []*entity.Transaction) []*TransactionOutput {
	outputs := make([]*TransactionOutput, len(transactions))
	for i, t := range transactions {
		outputs[i] = ToTransactionOutput(t)
	}
	return outputs
}

func toGroupOutput(groupID uuid.UUID, rows []*entity.Transaction) *GroupOutput {
	group := entity.NewInstallmentGroup(groupID, uuid.Nil, rows)
	return &GroupOutput{
		GroupID:      groupID,
		Total:        group.Total(),
		Count:        len(group.Rows),
		Transactions: ToTransactionOutputs(group.Rows),
	}
}
