package recurrence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

type testEnv struct {
	recurrences  adapter.RecurrenceRepository
	transactions adapter.TransactionRepository
	dashboards   adapter.DashboardRepository
	gate         adapter.PermissionGate
	locks        DefinitionLocks
	clock        *fakeClock
	create       *CreateUseCase
	get          *GetUseCase
	list         *ListUseCase
	update       *UpdateUseCase
	remove       *DeleteUseCase
	dashboardID  uuid.UUID
	admin        uuid.UUID
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

	recurrences := persistence.NewRecurrenceRepository(database.DB())
	transactions := persistence.NewTransactionRepository(database.DB())
	dashboards := persistence.NewDashboardRepository(database.DB())
	gate := adapters.NewPermissionGate(dashboards)
	clock := &fakeClock{now: time.Date(2024, 4, 15, 9, 30, 0, 0, time.UTC)}
	locks := DefinitionLocks{
		Locker:        adapters.NewMemoryLocker(),
		TTL:           time.Minute,
		MaxRetries:    50,
		RetryInterval: 5 * time.Millisecond,
	}

	env := &testEnv{
		recurrences:  recurrences,
		transactions: transactions,
		dashboards:   dashboards,
		gate:         gate,
		locks:        locks,
		clock:        clock,
		create:       NewCreateUseCase(recurrences, gate),
		get:          NewGetUseCase(recurrences, gate),
		list:         NewListUseCase(recurrences, gate),
		update:       NewUpdateUseCase(recurrences, gate, locks, clock),
		remove:       NewDeleteUseCase(recurrences, transactions, gate, locks, clock),
		dashboardID:  uuid.New(),
		admin:        uuid.New(),
		editor:       uuid.New(),
		viewer:       uuid.New(),
	}

	env.addMember(t, env.dashboardID, env.admin, entity.DashboardRoleAdmin)
	env.addMember(t, env.dashboardID, env.editor, entity.DashboardRoleEditor)
	env.addMember(t, env.dashboardID, env.viewer, entity.DashboardRoleViewer)
	return env
}

func (e *testEnv) addMember(t *testing.T, dashboardID, userID uuid.UUID, role entity.DashboardRole) {
	t.Helper()
	require.NoError(t, e.dashboards.AddMember(context.Background(), entity.NewDashboardMember(dashboardID, userID, role)))
}

func (e *testEnv) processor(settings ProcessorSettings) *ProcessDueUseCase {
	return NewProcessDueUseCase(e.recurrences, e.gate, e.locks, e.clock, metrics.NewNopMetrics(), settings)
}

func (e *testEnv) createRecurrence(t *testing.T, input CreateInput) *RecurrenceOutput {
	t.Helper()
	if input.DashboardID == uuid.Nil {
		input.DashboardID = e.dashboardID
	}
	if input.UserID == uuid.Nil {
		input.UserID = e.editor
	}
	if input.Description == "" {
		input.Description = "Rent"
	}
	if input.Amount.IsZero() {
		input.Amount = dec("100.00")
	}
	if input.Type == "" {
		input.Type = entity.TransactionTypeExpense
	}
	out, err := e.create.Execute(context.Background(), input)
	require.NoError(t, err)
	return out.Recurrence
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func ptr[T any](v T) *T {
	return &v
}

func TestCreateUseCase(t *testing.T) {
	env := newTestEnv(t)

	created := env.createRecurrence(t, CreateInput{
		Frequency: "monthly",
		StartDate: day(t, "2024-01-31"),
	})
	assert.Equal(t, "MONTHLY", string(created.Frequency))
	assert.Equal(t, 1, created.Interval)
	assert.True(t, created.IsActive)
	assert.Equal(t, created.StartDate, created.NextDueDate)

	tests := []struct {
		name  string
		input CreateInput
		code  string
	}{
		{
			name:  "missing description",
			input: CreateInput{Description: "  ", Amount: dec("10"), Type: entity.TransactionTypeExpense, Frequency: "DAILY"},
			code:  string(domainerror.ErrCodeMissingRecurrenceFields),
		},
		{
			name:  "non-positive amount",
			input: CreateInput{Description: "Gym", Amount: dec("0"), Type: entity.TransactionTypeExpense, Frequency: "DAILY"},
			code:  string(domainerror.ErrCodeInvalidRecurrenceAmount),
		},
		{
			name:  "three decimal places",
			input: CreateInput{Description: "Gym", Amount: dec("1.005"), Type: entity.TransactionTypeExpense, Frequency: "DAILY"},
			code:  string(domainerror.ErrCodeInvalidRecurrenceAmount),
		},
		{
			name:  "unknown type",
			input: CreateInput{Description: "Gym", Amount: dec("10"), Type: "transfer", Frequency: "DAILY"},
			code:  string(domainerror.ErrCodeInvalidRecurrenceType),
		},
		{
			name:  "unknown frequency",
			input: CreateInput{Description: "Gym", Amount: dec("10"), Type: entity.TransactionTypeExpense, Frequency: "HOURLY"},
			code:  string(domainerror.ErrCodeInvalidFrequency),
		},
		{
			name:  "negative interval",
			input: CreateInput{Description: "Gym", Amount: dec("10"), Type: entity.TransactionTypeExpense, Frequency: "DAILY", Interval: ptr(-1)},
			code:  string(domainerror.ErrCodeInvalidInterval),
		},
		{
			name:  "explicit zero interval",
			input: CreateInput{Description: "Gym", Amount: dec("10"), Type: entity.TransactionTypeExpense, Frequency: "DAILY", Interval: ptr(0)},
			code:  string(domainerror.ErrCodeInvalidInterval),
		},
		{
			name: "end before start",
			input: CreateInput{
				Description: "Gym", Amount: dec("10"), Type: entity.TransactionTypeExpense, Frequency: "DAILY",
				StartDate: day(t, "2024-02-01"), EndDate: ptr(day(t, "2024-01-01")),
			},
			code: string(domainerror.ErrCodeInvalidDateRange),
		},
		{
			name: "single installment",
			input: CreateInput{
				Description: "Gym", Amount: dec("10"), Type: entity.TransactionTypeExpense, Frequency: "DAILY",
				InstallmentCount: ptr(1),
			},
			code: string(domainerror.ErrCodeInvalidRecurrenceInstalls),
		},
		{
			name: "installments below one cent",
			input: CreateInput{
				Description: "Gym", Amount: dec("0.05"), Type: entity.TransactionTypeExpense, Frequency: "DAILY",
				InstallmentCount: ptr(10),
			},
			code: string(domainerror.ErrCodeInvalidRecurrenceInstalls),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.input.DashboardID = env.dashboardID
			tt.input.UserID = env.editor
			_, err := env.create.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.code, domainerror.CodeOf(err))
			assert.Equal(t, domainerror.KindValidation, domainerror.KindOf(err))
		})
	}

	t.Run("viewer cannot create", func(t *testing.T) {
		_, err := env.create.Execute(context.Background(), CreateInput{
			DashboardID: env.dashboardID,
			UserID:      env.viewer,
			Description: "Gym",
			Amount:      dec("10"),
			Type:        entity.TransactionTypeExpense,
			Frequency:   "DAILY",
			StartDate:   day(t, "2024-01-01"),
		})
		assert.Equal(t, domainerror.KindForbidden, domainerror.KindOf(err))
	})
}

func TestGetAndListUseCase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	active := env.createRecurrence(t, CreateInput{Frequency: "WEEKLY", StartDate: day(t, "2024-03-01")})
	paused := env.createRecurrence(t, CreateInput{Frequency: "DAILY", StartDate: day(t, "2024-01-01")})
	_, err := env.update.Execute(ctx, UpdateInput{DashboardID: env.dashboardID, UserID: env.editor, ID: paused.ID, IsActive: ptr(false)})
	require.NoError(t, err)

	got, err := env.get.Execute(ctx, GetInput{DashboardID: env.dashboardID, UserID: env.viewer, ID: active.ID})
	require.NoError(t, err)
	assert.Equal(t, active.ID, got.ID)

	listed, err := env.list.Execute(ctx, ListInput{DashboardID: env.dashboardID, UserID: env.viewer})
	require.NoError(t, err)
	require.Len(t, listed.Recurrences, 1)
	assert.Equal(t, active.ID, listed.Recurrences[0].ID)

	listed, err = env.list.Execute(ctx, ListInput{DashboardID: env.dashboardID, UserID: env.viewer, IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, listed.Recurrences, 2)

	t.Run("other dashboard is not found", func(t *testing.T) {
		other := uuid.New()
		env.addMember(t, other, env.viewer, entity.DashboardRoleViewer)
		_, err := env.get.Execute(ctx, GetInput{DashboardID: other, UserID: env.viewer, ID: active.ID})
		assert.Equal(t, string(domainerror.ErrCodeRecurrenceNotFound), domainerror.CodeOf(err))
	})

	t.Run("non-member is forbidden", func(t *testing.T) {
		_, err := env.list.Execute(ctx, ListInput{DashboardID: env.dashboardID, UserID: uuid.New()})
		assert.Equal(t, domainerror.KindForbidden, domainerror.KindOf(err))
	})
}

func TestUpdateUseCase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("template changes keep the cursor", func(t *testing.T) {
		created := env.createRecurrence(t, CreateInput{Frequency: "MONTHLY", StartDate: day(t, "2024-01-15")})

		updated, err := env.update.Execute(ctx, UpdateInput{
			DashboardID: env.dashboardID,
			UserID:      env.editor,
			ID:          created.ID,
			Description: ptr("New rent"),
			Amount:      ptr(dec("120.50")),
		})
		require.NoError(t, err)
		assert.Equal(t, "New rent", updated.Description)
		assert.True(t, updated.Amount.Equal(dec("120.50")))
		assert.Equal(t, created.NextDueDate, updated.NextDueDate)
	})

	t.Run("end date before the cursor deactivates", func(t *testing.T) {
		created := env.createRecurrence(t, CreateInput{Frequency: "DAILY", StartDate: day(t, "2024-04-01")})
		_, err := env.processor(ProcessorSettings{}).Execute(ctx, ProcessDueInput{})
		require.NoError(t, err)

		updated, err := env.update.Execute(ctx, UpdateInput{
			DashboardID: env.dashboardID,
			UserID:      env.editor,
			ID:          created.ID,
			EndDate:     ptr(day(t, "2024-04-10")),
		})
		require.NoError(t, err)
		assert.False(t, updated.IsActive)
		assert.NotNil(t, updated.DeactivatedAt)

		_, err = env.update.Execute(ctx, UpdateInput{
			DashboardID: env.dashboardID,
			UserID:      env.editor,
			ID:          created.ID,
			IsActive:    ptr(true),
		})
		assert.Equal(t, string(domainerror.ErrCodeRecurrenceExhausted), domainerror.CodeOf(err))
	})

	t.Run("pause and resume", func(t *testing.T) {
		created := env.createRecurrence(t, CreateInput{Frequency: "WEEKLY", StartDate: day(t, "2024-05-01")})

		paused, err := env.update.Execute(ctx, UpdateInput{DashboardID: env.dashboardID, UserID: env.editor, ID: created.ID, IsActive: ptr(false)})
		require.NoError(t, err)
		assert.False(t, paused.IsActive)

		resumed, err := env.update.Execute(ctx, UpdateInput{DashboardID: env.dashboardID, UserID: env.editor, ID: created.ID, IsActive: ptr(true)})
		require.NoError(t, err)
		assert.True(t, resumed.IsActive)
		assert.Nil(t, resumed.DeactivatedAt)
	})

	t.Run("invalid amount is rejected", func(t *testing.T) {
		created := env.createRecurrence(t, CreateInput{Frequency: "WEEKLY", StartDate: day(t, "2024-05-01")})
		_, err := env.update.Execute(ctx, UpdateInput{DashboardID: env.dashboardID, UserID: env.editor, ID: created.ID, Amount: ptr(dec("-3"))})
		assert.Equal(t, string(domainerror.ErrCodeInvalidRecurrenceAmount), domainerror.CodeOf(err))
	})

	t.Run("viewer cannot update", func(t *testing.T) {
		created := env.createRecurrence(t, CreateInput{Frequency: "WEEKLY", StartDate: day(t, "2024-05-01")})
		_, err := env.update.Execute(ctx, UpdateInput{DashboardID: env.dashboardID, UserID: env.viewer, ID: created.ID, Notes: ptr("x")})
		assert.Equal(t, domainerror.KindForbidden, domainerror.KindOf(err))
	})
}

func TestDeleteUseCase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("unreferenced definition is soft-deleted", func(t *testing.T) {
		created := env.createRecurrence(t, CreateInput{Frequency: "MONTHLY", StartDate: day(t, "2024-12-01")})

		out, err := env.remove.Execute(ctx, DeleteInput{DashboardID: env.dashboardID, UserID: env.editor, ID: created.ID})
		require.NoError(t, err)
		assert.True(t, out.Deleted)

		_, err = env.get.Execute(ctx, GetInput{DashboardID: env.dashboardID, UserID: env.editor, ID: created.ID})
		assert.Equal(t, domainerror.KindNotFound, domainerror.KindOf(err))
	})

	t.Run("referenced definition is only deactivated", func(t *testing.T) {
		created := env.createRecurrence(t, CreateInput{Frequency: "MONTHLY", StartDate: day(t, "2024-03-01")})
		_, err := env.processor(ProcessorSettings{}).Execute(ctx, ProcessDueInput{})
		require.NoError(t, err)

		out, err := env.remove.Execute(ctx, DeleteInput{DashboardID: env.dashboardID, UserID: env.editor, ID: created.ID})
		require.NoError(t, err)
		assert.True(t, out.Deactivated)

		got, err := env.get.Execute(ctx, GetInput{DashboardID: env.dashboardID, UserID: env.editor, ID: created.ID})
		require.NoError(t, err)
		assert.False(t, got.IsActive)

		rows, err := env.transactions.FindByRecurrenceID(ctx, created.ID)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("unknown definition", func(t *testing.T) {
		_, err := env.remove.Execute(ctx, DeleteInput{DashboardID: env.dashboardID, UserID: env.editor, ID: uuid.New()})
		assert.Equal(t, string(domainerror.ErrCodeRecurrenceNotFound), domainerror.CodeOf(err))
	})
}
