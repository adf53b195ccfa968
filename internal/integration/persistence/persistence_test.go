package persistence

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/finance-tracker/ledger/config"
	"github.com/finance-tracker/ledger/internal/domain/entity"
	"github.com/finance-tracker/ledger/internal/domain/valueobject"
	"github.com/finance-tracker/ledger/internal/infra/db"
	"github.com/finance-tracker/ledger/internal/integration/persistence/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := db.NewConnection(&config.DatabaseConfig{
		Driver:       db.DriverSQLite,
		URL:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(model.All()...))
	t.Cleanup(func() { _ = database.Close() })

	return database.DB()
}

func date(s string) time.Time {
	d, err := valueobject.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// installmentRows builds a consistent monthly group of count rows worth each.
func installmentRows(dashboardID uuid.UUID, first time.Time, count int, each string) []*entity.Transaction {
	groupID := uuid.New()
	step := valueobject.MonthlyStep
	rows := make([]*entity.Transaction, count)
	for i := 0; i < count; i++ {
		d, _ := valueobject.OccurrenceAt(step, first, i)
		row := entity.NewTransaction(dashboardID, uuid.New(), d, "Sofa",
			decimal.RequireFromString(each), entity.TransactionTypeExpense, nil, nil, "")
		row.GroupID = &groupID
		row.InstallmentStep = &step
		row.SetInstallmentPosition(i+1, count)
		rows[i] = row
	}
	return rows
}
