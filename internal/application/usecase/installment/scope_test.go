package installment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/ledger/internal/domain/error"
	"github.com/finance-tracker/ledger/internal/domain/valueobject"
)

// fiveOfHundred returns a monthly group of five 100.00 rows starting 2024-01-10.
func fiveOfHundred(t *testing.T) []*entity.Transaction {
	t.Helper()
	first, err := valueobject.ParseDate("2024-01-10")
	require.NoError(t, err)

	rows, err := Plan(PlanInput{
		DashboardID: uuid.New(),
		UserID:      uuid.New(),
		Description: "Fridge",
		Total:       dec("500.00"),
		Type:        entity.TransactionTypeExpense,
		FirstDate:   first,
		Count:       5,
	})
	require.NoError(t, err)
	return rows
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := valueobject.ParseDate(s)
	require.NoError(t, err)
	return d
}

func amountsOf(rows []*entity.Transaction) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row.Amount.StringFixed(2)
	}
	return out
}

func datesOf(rows []*entity.Transaction) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row.Date.Format(valueobject.DateLayout)
	}
	return out
}

func TestPlanUpdate_Single(t *testing.T) {
	t.Run("amount touches only the target", func(t *testing.T) {
		rows := fiveOfHundred(t)
		amount := dec("80.00")

		changes, err := PlanUpdate(rows, &rows[1].ID, entity.ScopeSingle, entity.InstallmentPatch{Amount: &amount})
		require.NoError(t, err)
		require.Len(t, changes.Updated, 1)
		assert.Equal(t, rows[1].ID, changes.Updated[0].ID)
		assert.Equal(t, []string{"100.00", "80.00", "100.00", "100.00", "100.00"}, amountsOf(rows))
	})

	t.Run("date within neighbours", func(t *testing.T) {
		rows := fiveOfHundred(t)
		date := day(t, "2024-02-20")

		_, err := PlanUpdate(rows, &rows[1].ID, entity.ScopeSingle, entity.InstallmentPatch{Date: &date})
		require.NoError(t, err)
		assert.Equal(t, "2024-02-20", rows[1].Date.Format(valueobject.DateLayout))
	})

	t.Run("date past the next installment", func(t *testing.T) {
		rows := fiveOfHundred(t)
		date := day(t, "2024-03-10")

		_, err := PlanUpdate(rows, &rows[1].ID, entity.ScopeSingle, entity.InstallmentPatch{Date: &date})
		assert.Equal(t, string(domainerror.ErrCodeInstallmentDateOutOfOrder), domainerror.CodeOf(err))
	})

	t.Run("description is uniform field", func(t *testing.T) {
		rows := fiveOfHundred(t)
		desc := "Fridge (Kitchen)"

		_, err := PlanUpdate(rows, &rows[4].ID, entity.ScopeSingle, entity.InstallmentPatch{Description: &desc})
		require.NoError(t, err)
		assert.Equal(t, "Fridge", rows[3].Description)
		assert.Equal(t, desc, rows[4].Description)
	})
}

func TestPlanUpdate_Remaining(t *testing.T) {
	t.Run("amount keeps the group total", func(t *testing.T) {
		rows := fiveOfHundred(t)
		amount := dec("50.00")

		changes, err := PlanUpdate(rows, &rows[2].ID, entity.ScopeRemaining, entity.InstallmentPatch{Amount: &amount})
		require.NoError(t, err)
		assert.Len(t, changes.Updated, 3)
		assert.Equal(t, []string{"100.00", "100.00", "50.00", "125.00", "125.00"}, amountsOf(rows))
		assert.True(t, entity.NewInstallmentGroup(uuid.Nil, uuid.Nil, rows).Total().Equal(dec("500")))
	})

	t.Run("uneven balance rounds into the last row", func(t *testing.T) {
		rows := fiveOfHundred(t)
		amount := dec("99.99")

		_, err := PlanUpdate(rows, &rows[1].ID, entity.ScopeRemaining, entity.InstallmentPatch{Amount: &amount})
		require.NoError(t, err)
		assert.Equal(t, []string{"100.00", "99.99", "100.00", "100.00", "100.01"}, amountsOf(rows))
	})

	t.Run("infeasible balance applies amount uniformly", func(t *testing.T) {
		rows := fiveOfHundred(t)
		amount := dec("400.00")

		_, err := PlanUpdate(rows, &rows[2].ID, entity.ScopeRemaining, entity.InstallmentPatch{Amount: &amount})
		require.NoError(t, err)
		assert.Equal(t, []string{"100.00", "100.00", "400.00", "400.00", "400.00"}, amountsOf(rows))
	})

	t.Run("last row only", func(t *testing.T) {
		rows := fiveOfHundred(t)
		amount := dec("10.00")

		changes, err := PlanUpdate(rows, &rows[4].ID, entity.ScopeRemaining, entity.InstallmentPatch{Amount: &amount})
		require.NoError(t, err)
		assert.Len(t, changes.Updated, 1)
		assert.Equal(t, "10.00", rows[4].Amount.StringFixed(2))
	})

	t.Run("date re-anchors later rows", func(t *testing.T) {
		rows := fiveOfHundred(t)
		date := day(t, "2024-03-31")

		_, err := PlanUpdate(rows, &rows[2].ID, entity.ScopeRemaining, entity.InstallmentPatch{Date: &date})
		require.NoError(t, err)
		assert.Equal(t, []string{"2024-01-10", "2024-02-10", "2024-03-31", "2024-04-30", "2024-05-31"}, datesOf(rows))
		assert.NoError(t, entity.VerifyInstallmentGroup(rows))
	})

	t.Run("date before the previous installment", func(t *testing.T) {
		rows := fiveOfHundred(t)
		date := day(t, "2024-02-10")

		_, err := PlanUpdate(rows, &rows[2].ID, entity.ScopeRemaining, entity.InstallmentPatch{Date: &date})
		assert.Equal(t, string(domainerror.ErrCodeInstallmentDateOutOfOrder), domainerror.CodeOf(err))
	})
}

func TestPlanUpdate_All(t *testing.T) {
	rows := fiveOfHundred(t)
	amount := dec("100.00")
	date := day(t, "2024-06-15")
	notes := "renegotiated"

	changes, err := PlanUpdate(rows, nil, entity.ScopeAll, entity.InstallmentPatch{Amount: &amount, Date: &date, Notes: &notes})
	require.NoError(t, err)
	assert.Len(t, changes.Updated, 5)
	assert.Equal(t, []string{"20.00", "20.00", "20.00", "20.00", "20.00"}, amountsOf(rows))
	assert.Equal(t, []string{"2024-06-15", "2024-07-15", "2024-08-15", "2024-09-15", "2024-10-15"}, datesOf(rows))
	for i, row := range rows {
		assert.Equal(t, i+1, row.Number())
		assert.Equal(t, notes, row.Notes)
	}

	t.Run("total too small for the group", func(t *testing.T) {
		rows := fiveOfHundred(t)
		tiny := dec("0.04")

		_, err := PlanUpdate(rows, nil, entity.ScopeAll, entity.InstallmentPatch{Amount: &tiny})
		assert.Equal(t, string(domainerror.ErrCodeInstallmentAmountTooSmall), domainerror.CodeOf(err))
	})
}

func TestPlanUpdate_Target(t *testing.T) {
	rows := fiveOfHundred(t)
	desc := "x"

	_, err := PlanUpdate(rows, nil, entity.ScopeSingle, entity.InstallmentPatch{Description: &desc})
	assert.Equal(t, string(domainerror.ErrCodeInstallmentTargetRequired), domainerror.CodeOf(err))

	stranger := uuid.New()
	_, err = PlanUpdate(rows, &stranger, entity.ScopeRemaining, entity.InstallmentPatch{Description: &desc})
	assert.Equal(t, string(domainerror.ErrCodeInstallmentNotInGroup), domainerror.CodeOf(err))
	assert.Equal(t, domainerror.KindNotFound, domainerror.KindOf(err))

	bad := dec("1.001")
	_, err = PlanUpdate(rows, &rows[0].ID, entity.ScopeSingle, entity.InstallmentPatch{Amount: &bad})
	assert.Equal(t, string(domainerror.ErrCodeInvalidInstallmentAmount), domainerror.CodeOf(err))
}

func TestPlanDelete(t *testing.T) {
	t.Run("remaining removes the target and the tail", func(t *testing.T) {
		rows := fiveOfHundred(t)

		changes, err := PlanDelete(rows, &rows[2].ID, entity.ScopeRemaining)
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{rows[2].ID, rows[3].ID, rows[4].ID}, changes.Deleted)
		require.Len(t, changes.Updated, 2)
		for i, row := range changes.Updated {
			assert.Equal(t, i+1, row.Number())
			assert.Equal(t, 2, *row.InstallmentTotal)
		}
		assert.NoError(t, entity.VerifyInstallmentGroup(changes.Updated))
	})

	t.Run("single renumbers survivors", func(t *testing.T) {
		rows := fiveOfHundred(t)
		dates := datesOf(rows)

		changes, err := PlanDelete(rows, &rows[1].ID, entity.ScopeSingle)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{rows[1].ID}, changes.Deleted)
		require.Len(t, changes.Updated, 4)

		survivors := []*entity.Transaction{rows[0], rows[2], rows[3], rows[4]}
		assert.NoError(t, entity.VerifyInstallmentGroup(survivors))
		assert.Equal(t, 2, rows[2].Number())
		assert.Equal(t, []string{dates[0], dates[2], dates[3], dates[4]}, datesOf(survivors))
	})

	t.Run("remaining from the last row removes only it", func(t *testing.T) {
		rows := fiveOfHundred(t)

		changes, err := PlanDelete(rows, &rows[4].ID, entity.ScopeRemaining)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{rows[4].ID}, changes.Deleted)
		require.Len(t, changes.Updated, 4)
		for i, row := range changes.Updated {
			assert.Equal(t, i+1, row.Number())
			assert.Equal(t, 4, *row.InstallmentTotal)
		}
	})

	t.Run("all ignores the target", func(t *testing.T) {
		rows := fiveOfHundred(t)

		changes, err := PlanDelete(rows, nil, entity.ScopeAll)
		require.NoError(t, err)
		assert.Len(t, changes.Deleted, 5)
		assert.Empty(t, changes.Updated)
	})

	t.Run("remaining from the first row empties the group", func(t *testing.T) {
		rows := fiveOfHundred(t)

		changes, err := PlanDelete(rows, &rows[0].ID, entity.ScopeRemaining)
		require.NoError(t, err)
		assert.Len(t, changes.Deleted, 5)
		assert.Empty(t, changes.Updated)
	})
}

func TestRemoveRows_NothingToRemove(t *testing.T) {
	rows := fiveOfHundred(t)

	changes := RemoveRows(rows, map[uuid.UUID]bool{uuid.New(): true})
	assert.True(t, changes.IsEmpty())
	assert.True(t, rows[0].Amount.Equal(decimal.NewFromInt(100)))
}
