// Package installment contains installment plan and installment group use cases.
package installment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/ledger/internal/domain/error"
	"github.com/finance-tracker/ledger/internal/domain/valueobject"
)

// MinInstallmentAmount is the smallest amount a single installment may carry.
var MinInstallmentAmount = decimal.New(1, -2)

// PlanInput describes an installment plan to expand into rows.
type PlanInput struct {
	DashboardID uuid.UUID
	UserID      uuid.UUID
	Description string
	Total       decimal.Decimal
	Type        entity.TransactionType
	CategoryID  *uuid.UUID
	AccountID   *uuid.UUID
	Notes       string
	FirstDate   time.Time
	Count       int
	// Step spaces the installments. The zero value means monthly.
	Step valueobject.Step

	// Set when the plan materialises a recurrence occurrence.
	RecurrenceID   *uuid.UUID
	OccurrenceDate *time.Time
}

// Plan expands input into Count rows that share a fresh group id.
// Row k is due at the k-th step after FirstDate and the last row absorbs the rounding remainder.
func Plan(input PlanInput) ([]*entity.Transaction, error) {
	if input.Count < 1 || input.Count > entity.MaxRecurrenceInstallments {
		return nil, invalidCountError(input.Count)
	}

	step := input.Step
	if step == (valueobject.Step{}) {
		step = valueobject.MonthlyStep
	}
	if err := step.Validate(); err != nil {
		return nil, domainerror.NewInstallmentError(
			domainerror.ErrCodeInvalidInstallmentStep,
			err.Error(),
			domainerror.ErrInvalidInstallmentStep,
		)
	}

	amounts, err := SplitEvenly(input.Total, input.Count)
	if err != nil {
		return nil, err
	}

	first := valueobject.NormalizeDate(input.FirstDate)
	dates, err := valueobject.Schedule(step, first, input.Count)
	if err != nil {
		return nil, domainerror.NewInstallmentError(
			domainerror.ErrCodeInvalidInstallmentStep,
			err.Error(),
			domainerror.ErrInvalidInstallmentStep,
		)
	}

	groupID := uuid.New()
	rows := make([]*entity.Transaction, input.Count)
	for k := 0; k < input.Count; k++ {
		row := entity.NewTransaction(
			input.DashboardID,
			input.UserID,
			dates[k],
			input.Description,
			amounts[k],
			input.Type,
			input.CategoryID,
			input.AccountID,
			input.Notes,
		)
		rowStep := step
		row.GroupID = &groupID
		row.InstallmentStep = &rowStep
		row.SetInstallmentPosition(k+1, input.Count)
		row.RecurrenceID = input.RecurrenceID
		if input.OccurrenceDate != nil {
			occurrence := valueobject.NormalizeDate(*input.OccurrenceDate)
			row.OccurrenceDate = &occurrence
		}
		rows[k] = row
	}
	return rows, nil
}

// SplitEvenly divides total into count amounts of floor(total/count) at cent precision,
// giving the remainder to the last amount. The result always sums to total.
func SplitEvenly(total decimal.Decimal, count int) ([]decimal.Decimal, error) {
	if count < 1 || count > entity.MaxRecurrenceInstallments {
		return nil, invalidCountError(count)
	}
	if err := validateAmount(total); err != nil {
		return nil, err
	}

	per := total.Div(decimal.NewFromInt(int64(count))).RoundFloor(2)
	if per.LessThan(MinInstallmentAmount) {
		return nil, domainerror.NewInstallmentError(
			domainerror.ErrCodeInstallmentAmountTooSmall,
			fmt.Sprintf("%s cannot be split into %d installments of at least %s", total.StringFixed(2), count, MinInstallmentAmount.StringFixed(2)),
			domainerror.ErrInstallmentAmountTooSmall,
		)
	}

	amounts := make([]decimal.Decimal, count)
	for i := 0; i < count-1; i++ {
		amounts[i] = per
	}
	amounts[count-1] = total.Sub(per.Mul(decimal.NewFromInt(int64(count - 1))))
	return amounts, nil
}

// validateAmount accepts positive amounts with at most two decimal places.
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) {
		return domainerror.NewInstallmentError(
			domainerror.ErrCodeInvalidInstallmentAmount,
			"amount must be positive with at most two decimal places",
			domainerror.ErrInvalidInstallmentAmount,
		)
	}
	return nil
}

func invalidCountError(count int) error {
	return domainerror.NewInstallmentError(
		domainerror.ErrCodeInvalidInstallmentCount,
		fmt.Sprintf("installment count must be between 1 and %d, got %d", entity.MaxRecurrenceInstallments, count),
		domainerror.ErrInvalidInstallmentCount,
	)
}
