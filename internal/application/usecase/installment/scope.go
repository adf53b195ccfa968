package installment

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/ledger/internal/application/adapter"
	"github.com/finance-tracker/ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/ledger/internal/domain/error"
	"github.com/finance-tracker/ledger/internal/domain/valueobject"
)

// PlanUpdate computes the rows an update rewrites. rows must be the live rows
// of one group ordered by installment number; they are modified in place.
func PlanUpdate(rows []*entity.Transaction, targetID *uuid.UUID, scope entity.InstallmentScope, patch entity.InstallmentPatch) (*adapter.GroupChangeSet, error) {
	if patch.Amount != nil {
		if err := validateAmount(*patch.Amount); err != nil {
			return nil, err
		}
	}

	switch scope {
	case entity.ScopeSingle:
		idx, err := targetIndex(rows, targetID, scope)
		if err != nil {
			return nil, err
		}
		return updateSingle(rows, idx, patch)
	case entity.ScopeRemaining:
		idx, err := targetIndex(rows, targetID, scope)
		if err != nil {
			return nil, err
		}
		return updateRemaining(rows, idx, patch)
	case entity.ScopeAll:
		if targetID != nil {
			if _, err := targetIndex(rows, targetID, scope); err != nil {
				return nil, err
			}
		}
		return updateAll(rows, patch)
	default:
		return nil, invalidScopeError()
	}
}

// PlanDelete computes the rows a scoped delete removes and the survivors it rewrites.
// remaining removes the target and every higher installment number; the earlier
// rows keep their numbers and get the corrected total.
func PlanDelete(rows []*entity.Transaction, targetID *uuid.UUID, scope entity.InstallmentScope) (*adapter.GroupChangeSet, error) {
	remove := make(map[uuid.UUID]bool)

	switch scope {
	case entity.ScopeAll:
		for _, row := range rows {
			remove[row.ID] = true
		}
	case entity.ScopeSingle:
		idx, err := targetIndex(rows, targetID, scope)
		if err != nil {
			return nil, err
		}
		remove[rows[idx].ID] = true
	case entity.ScopeRemaining:
		idx, err := targetIndex(rows, targetID, scope)
		if err != nil {
			return nil, err
		}
		for _, row := range rows[idx:] {
			remove[row.ID] = true
		}
	default:
		return nil, invalidScopeError()
	}

	return RemoveRows(rows, remove), nil
}

// FromTarget marks every row from the one with targetID onward. It returns
// false when the target is not in rows.
func FromTarget(rows []*entity.Transaction, targetID uuid.UUID, remove map[uuid.UUID]bool) bool {
	for i, row := range rows {
		if row.ID != targetID {
			continue
		}
		for _, later := range rows[i:] {
			remove[later.ID] = true
		}
		return true
	}
	return false
}

// RemoveRows deletes the rows whose id is in remove and renumbers the survivors
// 1..M with total M, keeping their dates and amounts.
func RemoveRows(rows []*entity.Transaction, remove map[uuid.UUID]bool) *adapter.GroupChangeSet {
	changes := &adapter.GroupChangeSet{}
	survivors := make([]*entity.Transaction, 0, len(rows))
	for _, row := range rows {
		if remove[row.ID] {
			changes.Deleted = append(changes.Deleted, row.ID)
			continue
		}
		survivors = append(survivors, row)
	}
	if len(changes.Deleted) == 0 {
		return changes
	}

	for i, row := range survivors {
		if row.Number() == i+1 && row.InstallmentTotal != nil && *row.InstallmentTotal == len(survivors) {
			continue
		}
		row.SetInstallmentPosition(i+1, len(survivors))
		changes.Updated = append(changes.Updated, row)
	}
	return changes
}

func updateSingle(rows []*entity.Transaction, idx int, patch entity.InstallmentPatch) (*adapter.GroupChangeSet, error) {
	target := rows[idx]

	if patch.Date != nil {
		date := valueobject.NormalizeDate(*patch.Date)
		if idx > 0 && !date.After(rows[idx-1].Date) {
			return nil, dateOrderError(target.Number(), date)
		}
		if idx < len(rows)-1 && !date.Before(rows[idx+1].Date) {
			return nil, dateOrderError(target.Number(), date)
		}
		target.Date = date
	}

	patch.ApplyUniform(target)
	if patch.Amount != nil {
		target.Amount = *patch.Amount
	}
	return &adapter.GroupChangeSet{Updated: []*entity.Transaction{target}}, nil
}

func updateRemaining(rows []*entity.Transaction, idx int, patch entity.InstallmentPatch) (*adapter.GroupChangeSet, error) {
	affected := rows[idx:]

	if patch.Date != nil {
		anchor := valueobject.NormalizeDate(*patch.Date)
		if idx > 0 && !anchor.After(rows[idx-1].Date) {
			return nil, dateOrderError(rows[idx].Number(), anchor)
		}
		if err := reschedule(affected, groupStep(rows), anchor); err != nil {
			return nil, err
		}
	}

	if patch.Amount != nil {
		redistribute(rows, idx, *patch.Amount)
	}

	for _, row := range affected {
		patch.ApplyUniform(row)
	}
	return &adapter.GroupChangeSet{Updated: affected}, nil
}

func updateAll(rows []*entity.Transaction, patch entity.InstallmentPatch) (*adapter.GroupChangeSet, error) {
	if patch.Amount != nil {
		amounts, err := SplitEvenly(*patch.Amount, len(rows))
		if err != nil {
			return nil, err
		}
		for i, row := range rows {
			row.Amount = amounts[i]
		}
	}

	if patch.Date != nil {
		if err := reschedule(rows, groupStep(rows), valueobject.NormalizeDate(*patch.Date)); err != nil {
			return nil, err
		}
	}

	for _, row := range rows {
		patch.ApplyUniform(row)
	}
	return &adapter.GroupChangeSet{Updated: rows}, nil
}

// redistribute gives rows[idx] the new amount and spreads what is left of the
// group total evenly over the later rows. When the balance cannot cover a cent
// per later row, every row from idx on takes the new amount and the total changes.
func redistribute(rows []*entity.Transaction, idx int, amount decimal.Decimal) {
	groupTotal := decimal.Zero
	earlier := decimal.Zero
	for i, row := range rows {
		groupTotal = groupTotal.Add(row.Amount)
		if i < idx {
			earlier = earlier.Add(row.Amount)
		}
	}

	rows[idx].Amount = amount
	later := rows[idx+1:]
	if len(later) == 0 {
		return
	}

	balance := groupTotal.Sub(earlier).Sub(amount)
	amounts, err := SplitEvenly(balance, len(later))
	if err != nil {
		slog.Warn("Installment total cannot be preserved, applying amount to remaining rows",
			"group_id", *rows[idx].GroupID,
			"from_installment", rows[idx].Number(),
			"group_total", groupTotal.StringFixed(2),
			"amount", amount.StringFixed(2),
		)
		for _, row := range later {
			row.Amount = amount
		}
		return
	}
	for i, row := range later {
		row.Amount = amounts[i]
	}
}

// reschedule puts rows[k] at the k-th step after anchor.
func reschedule(rows []*entity.Transaction, step valueobject.Step, anchor time.Time) error {
	for k, row := range rows {
		date, err := valueobject.OccurrenceAt(step, anchor, k)
		if err != nil {
			return domainerror.NewInstallmentError(
				domainerror.ErrCodeInvalidInstallmentStep,
				err.Error(),
				domainerror.ErrInvalidInstallmentStep,
			)
		}
		row.Date = date
	}
	return nil
}

func groupStep(rows []*entity.Transaction) valueobject.Step {
	for _, row := range rows {
		if row.InstallmentStep != nil && row.InstallmentStep.Validate() == nil {
			return *row.InstallmentStep
		}
	}
	return valueobject.MonthlyStep
}

func targetIndex(rows []*entity.Transaction, targetID *uuid.UUID, scope entity.InstallmentScope) (int, error) {
	if targetID == nil {
		return -1, targetRequiredError(scope)
	}
	for i, row := range rows {
		if row.ID == *targetID {
			return i, nil
		}
	}
	return -1, domainerror.NewInstallmentError(
		domainerror.ErrCodeInstallmentNotInGroup,
		fmt.Sprintf("transaction %s is not part of the installment group", targetID),
		domainerror.ErrInstallmentNotInGroup,
	)
}

func targetRequiredError(scope entity.InstallmentScope) error {
	return domainerror.NewInstallmentError(
		domainerror.ErrCodeInstallmentTargetRequired,
		"transactionId is required for scope "+scope.String(),
		domainerror.ErrInstallmentTargetRequired,
	)
}

func dateOrderError(number int, date time.Time) error {
	return domainerror.NewInstallmentError(
		domainerror.ErrCodeInstallmentDateOutOfOrder,
		fmt.Sprintf("installment %d cannot move to %s without breaking the group's date order", number, date.Format(valueobject.DateLayout)),
		domainerror.ErrInstallmentDateOutOfOrder,
	)
}

func invalidScopeError() error {
	return domainerror.NewInstallmentError(
		domainerror.ErrCodeInvalidInstallmentScope,
		"scope must be one of single, remaining, all",
		domainerror.ErrInvalidInstallmentScope,
	)
}
