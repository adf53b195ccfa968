package installment

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/ledger/config"
	"github.com/finance-tracker/ledger/internal/application/adapter"
	"github.com/finance-tracker/ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/ledger/internal/domain/error"
	"github.com/finance-tracker/ledger/internal/infra/db"
	"github.com/finance-tracker/ledger/internal/integration/adapters"
	"github.com/finance-tracker/ledger/internal/integration/metrics"
	"github.com/finance-tracker/ledger/internal/integration/persistence"
	"github.com/finance-tracker/ledger/internal/integration/persistence/model"
)

type testEnv struct {
	transactions adapter.TransactionRepository
	dashboards   adapter.DashboardRepository
	create       *CreatePlanUseCase
	get          *GetGroupUseCase
	update       *UpdateGroupUseCase
	remove       *DeleteGroupUseCase
	dashboardID  uuid.UUID
	editor       uuid.UUID
	viewer       uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database, err := db.NewConnection(&config.DatabaseConfig{
		Driver:       db.DriverSQLite,
		URL:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(model.All()...))
	t.Cleanup(func() { _ = database.Close() })

	transactions := persistence.NewTransactionRepository(database.DB())
	dashboards := persistence.NewDashboardRepository(database.DB())
	gate := adapters.NewPermissionGate(dashboards)
	locks := GroupLocks{
		Locker:        adapters.NewMemoryLocker(),
		TTL:           time.Minute,
		MaxRetries:    50,
		RetryInterval: 5 * time.Millisecond,
	}

	env := &testEnv{
		transactions: transactions,
		dashboards:   dashboards,
		create:       NewCreatePlanUseCase(transactions, gate),
		get:          NewGetGroupUseCase(transactions, gate),
		update:       NewUpdateGroupUseCase(transactions, gate, locks, metrics.NewNopMetrics()),
		remove:       NewDeleteGroupUseCase(transactions, gate, locks, metrics.NewNopMetrics()),
		dashboardID:  uuid.New(),
		editor:       uuid.New(),
		viewer:       uuid.New(),
	}

	ctx := context.Background()
	require.NoError(t, dashboards.AddMember(ctx, entity.NewDashboardMember(env.dashboardID, env.editor, entity.DashboardRoleEditor)))
	require.NoError(t, dashboards.AddMember(ctx, entity.NewDashboardMember(env.dashboardID, env.viewer, entity.DashboardRoleViewer)))
	return env
}

func (e *testEnv) createPlan(t *testing.T, total string, count int) *GroupOutput {
	t.Helper()
	out, err := e.create.Execute(context.Background(), CreatePlanInput{
		DashboardID: e.dashboardID,
		UserID:      e.editor,
		Description: "Television",
		TotalAmount: dec(total),
		Type:        entity.TransactionTypeExpense,
		FirstDate:   day(t, "2024-01-31"),
		Count:       count,
	})
	require.NoError(t, err)
	return out.Group
}

func TestCreatePlanUseCase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	group := env.createPlan(t, "100.00", 3)
	assert.Equal(t, 3, group.Count)
	assert.True(t, group.Total.Equal(dec("100")))

	stored, err := env.get.Execute(ctx, GetGroupInput{DashboardID: env.dashboardID, UserID: env.viewer, GroupID: group.GroupID})
	require.NoError(t, err)
	require.Len(t, stored.Transactions, 3)
	assert.True(t, stored.Transactions[2].Amount.Equal(dec("33.34")))
	assert.Equal(t, "2024-02-29", stored.Transactions[1].Date.Format("2006-01-02"))

	t.Run("viewer cannot create", func(t *testing.T) {
		_, err := env.create.Execute(ctx, CreatePlanInput{
			DashboardID: env.dashboardID,
			UserID:      env.viewer,
			Description: "Phone",
			TotalAmount: dec("10"),
			Type:        entity.TransactionTypeExpense,
			FirstDate:   day(t, "2024-01-01"),
			Count:       2,
		})
		assert.Equal(t, domainerror.KindForbidden, domainerror.KindOf(err))
	})

	t.Run("missing description", func(t *testing.T) {
		_, err := env.create.Execute(ctx, CreatePlanInput{
			DashboardID: env.dashboardID,
			UserID:      env.editor,
			TotalAmount: dec("10"),
			Type:        entity.TransactionTypeExpense,
			FirstDate:   day(t, "2024-01-01"),
			Count:       2,
		})
		assert.Equal(t, string(domainerror.ErrCodeInvalidInstallmentFields), domainerror.CodeOf(err))
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := env.get.Execute(ctx, GetGroupInput{DashboardID: env.dashboardID, UserID: env.viewer, GroupID: uuid.New()})
		assert.Equal(t, string(domainerror.ErrCodeInstallmentGroupNotFound), domainerror.CodeOf(err))
	})
}

func TestUpdateGroupUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("remaining amount persists redistribution", func(t *testing.T) {
		env := newTestEnv(t)
		group := env.createPlan(t, "500.00", 5)
		target := group.Transactions[2].ID
		amount := dec("50.00")

		out, err := env.update.Execute(ctx, UpdateGroupInput{
			DashboardID:   env.dashboardID,
			UserID:        env.editor,
			GroupID:       group.GroupID,
			TransactionID: &target,
			Scope:         entity.ScopeRemaining,
			Patch:         entity.InstallmentPatch{Amount: &amount},
		})
		require.NoError(t, err)
		assert.Equal(t, 3, out.UpdatedCount)
		assert.True(t, out.Group.Total.Equal(dec("500")))

		rows, err := env.transactions.FindByGroupID(ctx, group.GroupID, env.dashboardID)
		require.NoError(t, err)
		assert.Equal(t, []string{"100.00", "100.00", "50.00", "125.00", "125.00"}, amountsOf(rows))
	})

	t.Run("all scope without target", func(t *testing.T) {
		env := newTestEnv(t)
		group := env.createPlan(t, "90.00", 3)
		desc := "Television 55in"

		out, err := env.update.Execute(ctx, UpdateGroupInput{
			DashboardID: env.dashboardID,
			UserID:      env.editor,
			GroupID:     group.GroupID,
			Scope:       entity.ScopeAll,
			Patch:       entity.InstallmentPatch{Description: &desc},
		})
		require.NoError(t, err)
		for _, row := range out.Group.Transactions {
			assert.Equal(t, desc, row.Description)
		}
	})

	t.Run("rejections happen before any write", func(t *testing.T) {
		env := newTestEnv(t)
		group := env.createPlan(t, "90.00", 3)
		target := group.Transactions[0].ID
		desc := "x"

		_, err := env.update.Execute(ctx, UpdateGroupInput{
			DashboardID: env.dashboardID, UserID: env.editor, GroupID: group.GroupID,
			TransactionID: &target, Scope: entity.ScopeSingle,
		})
		assert.Equal(t, string(domainerror.ErrCodeEmptyInstallmentPatch), domainerror.CodeOf(err))

		_, err = env.update.Execute(ctx, UpdateGroupInput{
			DashboardID: env.dashboardID, UserID: env.editor, GroupID: group.GroupID,
			Scope: entity.ScopeSingle, Patch: entity.InstallmentPatch{Description: &desc},
		})
		assert.Equal(t, string(domainerror.ErrCodeInstallmentTargetRequired), domainerror.CodeOf(err))

		_, err = env.update.Execute(ctx, UpdateGroupInput{
			DashboardID: env.dashboardID, UserID: env.viewer, GroupID: group.GroupID,
			TransactionID: &target, Scope: entity.ScopeSingle, Patch: entity.InstallmentPatch{Description: &desc},
		})
		assert.Equal(t, domainerror.KindForbidden, domainerror.KindOf(err))

		_, err = env.update.Execute(ctx, UpdateGroupInput{
			DashboardID: env.dashboardID, UserID: env.editor, GroupID: uuid.New(),
			Scope: entity.ScopeAll, Patch: entity.InstallmentPatch{Description: &desc},
		})
		assert.Equal(t, string(domainerror.ErrCodeInstallmentGroupNotFound), domainerror.CodeOf(err))

		rows, err := env.transactions.FindByGroupID(ctx, group.GroupID, env.dashboardID)
		require.NoError(t, err)
		for _, row := range rows {
			assert.Equal(t, "Television", row.Description)
		}
	})

	t.Run("concurrent edits of one group serialise", func(t *testing.T) {
		env := newTestEnv(t)
		group := env.createPlan(t, "600.00", 6)

		var wg sync.WaitGroup
		errs := make([]error, 6)
		for i := 0; i < 6; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				target := group.Transactions[i].ID
				_, errs[i] = env.remove.Execute(ctx, DeleteGroupInput{
					DashboardID:   env.dashboardID,
					UserID:        env.editor,
					GroupID:       group.GroupID,
					TransactionID: &target,
					Scope:         entity.ScopeSingle,
				})
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			if err != nil {
				assert.Equal(t, string(domainerror.ErrCodeInstallmentGroupNotFound), domainerror.CodeOf(err))
			}
		}
		rows, err := env.transactions.FindByGroupID(ctx, group.GroupID, env.dashboardID)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestDeleteGroupUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("remaining removes the target and later installments", func(t *testing.T) {
		env := newTestEnv(t)
		group := env.createPlan(t, "100.00", 5)
		target := group.Transactions[2].ID

		out, err := env.remove.Execute(ctx, DeleteGroupInput{
			DashboardID:   env.dashboardID,
			UserID:        env.editor,
			GroupID:       group.GroupID,
			TransactionID: &target,
			Scope:         entity.ScopeRemaining,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), out.DeletedCount)
		require.NotNil(t, out.Remaining)
		assert.Equal(t, 2, out.Remaining.Count)

		rows, err := env.transactions.FindByGroupID(ctx, group.GroupID, env.dashboardID)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		for i, row := range rows {
			assert.Equal(t, group.Transactions[i].ID, row.ID)
			assert.Equal(t, i+1, row.Number())
			assert.Equal(t, 2, *row.InstallmentTotal)
			assert.Equal(t, "20.00", row.Amount.StringFixed(2))
		}
		assert.NoError(t, entity.VerifyInstallmentGroup(rows))
	})

	t.Run("includeFuture does not change the remaining selection", func(t *testing.T) {
		env := newTestEnv(t)
		group := env.createPlan(t, "100.00", 5)
		target := group.Transactions[2].ID

		out, err := env.remove.Execute(ctx, DeleteGroupInput{
			DashboardID:   env.dashboardID,
			UserID:        env.editor,
			GroupID:       group.GroupID,
			TransactionID: &target,
			Scope:         entity.ScopeRemaining,
			IncludeFuture: true,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), out.DeletedCount)
		require.NotNil(t, out.Remaining)
		assert.Equal(t, 2, out.Remaining.Count)
	})

	t.Run("all", func(t *testing.T) {
		env := newTestEnv(t)
		group := env.createPlan(t, "500.00", 5)

		out, err := env.remove.Execute(ctx, DeleteGroupInput{
			DashboardID: env.dashboardID,
			UserID:      env.editor,
			GroupID:     group.GroupID,
			Scope:       entity.ScopeAll,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(5), out.DeletedCount)
		assert.Nil(t, out.Remaining)

		_, err = env.get.Execute(ctx, GetGroupInput{DashboardID: env.dashboardID, UserID: env.editor, GroupID: group.GroupID})
		assert.Equal(t, domainerror.KindNotFound, domainerror.KindOf(err))
	})

	t.Run("other dashboard cannot see the group", func(t *testing.T) {
		env := newTestEnv(t)
		group := env.createPlan(t, "500.00", 5)
		otherDashboard := uuid.New()
		require.NoError(t, env.dashboards.AddMember(ctx, entity.NewDashboardMember(otherDashboard, env.editor, entity.DashboardRoleOwner)))

		_, err := env.remove.Execute(ctx, DeleteGroupInput{
			DashboardID: otherDashboard,
			UserID:      env.editor,
			GroupID:     group.GroupID,
			Scope:       entity.ScopeAll,
		})
		assert.Equal(t, string(domainerror.ErrCodeInstallmentGroupNotFound), domainerror.CodeOf(err))
	})
}
