package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/ledger/internal/application/adapter"
	"github.com/finance-tracker/ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/ledger/internal/domain/error"
	"github.com/finance-tracker/ledger/internal/integration/persistence/model"
)

func TestTransactionRepository_CreateBatchIsAtomic(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	repo := NewTransactionRepository(database)
	dashboardID := uuid.New()

	// Rows 1 and 2 insert, row 3 repeats row 1's primary key.
	rows := installmentRows(dashboardID, date("2024-01-15"), 4, "25.00")
	rows[2].ID = rows[0].ID

	err := repo.CreateBatch(ctx, rows)
	require.Error(t, err)

	stored, err := repo.FindByGroupID(ctx, *rows[0].GroupID, dashboardID)
	require.NoError(t, err)
	assert.Empty(t, stored)

	var count int64
	require.NoError(t, database.Unscoped().Model(&model.TransactionModel{}).
		Where("group_id = ?", *rows[0].GroupID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestTransactionRepository_FindScopesByDashboard(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionRepository(newTestDB(t))
	dashboardID := uuid.New()

	txn := entity.NewTransaction(dashboardID, uuid.New(), date("2024-03-01"), "Rent",
		decimal.RequireFromString("1200.00"), entity.TransactionTypeExpense, nil, nil, "")
	require.NoError(t, repo.Create(ctx, txn))

	found, err := repo.FindByID(ctx, txn.ID, dashboardID)
	require.NoError(t, err)
	assert.True(t, found.Amount.Equal(decimal.RequireFromString("1200")))
	assert.True(t, found.Date.Equal(date("2024-03-01")))

	_, err = repo.FindByID(ctx, txn.ID, uuid.New())
	assert.ErrorIs(t, err, domainerror.ErrTransactionNotFound)
}

func TestTransactionRepository_MutateGroups(t *testing.T) {
	ctx := context.Background()

	t.Run("applies updates and deletes", func(t *testing.T) {
		repo := NewTransactionRepository(newTestDB(t))
		dashboardID := uuid.New()
		rows := installmentRows(dashboardID, date("2024-01-10"), 3, "50.00")
		require.NoError(t, repo.CreateBatch(ctx, rows))
		groupID := *rows[0].GroupID

		result, err := repo.MutateGroups(ctx, dashboardID, []uuid.UUID{groupID},
			func(groups map[uuid.UUID][]*entity.Transaction) (*adapter.GroupChangeSet, error) {
				current := groups[groupID]
				require.Len(t, current, 3)
				survivors := []*entity.Transaction{current[0], current[2]}
				for i, row := range survivors {
					row.SetInstallmentPosition(i+1, 2)
				}
				return &adapter.GroupChangeSet{
					Updated: survivors,
					Deleted: []uuid.UUID{current[1].ID},
				}, nil
			})
		require.NoError(t, err)
		assert.Equal(t, 2, result.UpdatedCount)
		assert.Equal(t, int64(1), result.DeletedCount)
		require.Len(t, result.Groups[groupID], 2)
		assert.Equal(t, rows[2].ID, result.Groups[groupID][1].ID)
		assert.Equal(t, 2, result.Groups[groupID][1].Number())
	})

	t.Run("rolls back a change set that breaks the group", func(t *testing.T) {
		repo := NewTransactionRepository(newTestDB(t))
		dashboardID := uuid.New()
		rows := installmentRows(dashboardID, date("2024-01-10"), 3, "50.00")
		require.NoError(t, repo.CreateBatch(ctx, rows))
		groupID := *rows[0].GroupID

		_, err := repo.MutateGroups(ctx, dashboardID, []uuid.UUID{groupID},
			func(groups map[uuid.UUID][]*entity.Transaction) (*adapter.GroupChangeSet, error) {
				return &adapter.GroupChangeSet{Deleted: []uuid.UUID{groups[groupID][1].ID}}, nil
			})
		require.Error(t, err)
		assert.ErrorIs(t, err, domainerror.ErrInstallmentConsistency)
		assert.Equal(t, domainerror.KindConsistency, domainerror.KindOf(err))

		stored, err := repo.FindByGroupID(ctx, groupID, dashboardID)
		require.NoError(t, err)
		assert.Len(t, stored, 3)
	})

	t.Run("propagates mutation errors without writing", func(t *testing.T) {
		repo := NewTransactionRepository(newTestDB(t))
		dashboardID := uuid.New()
		rows := installmentRows(dashboardID, date("2024-01-10"), 2, "50.00")
		require.NoError(t, repo.CreateBatch(ctx, rows))
		groupID := *rows[0].GroupID
		boom := errors.New("boom")

		_, err := repo.MutateGroups(ctx, dashboardID, []uuid.UUID{groupID},
			func(map[uuid.UUID][]*entity.Transaction) (*adapter.GroupChangeSet, error) {
				return nil, boom
			})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("unknown group", func(t *testing.T) {
		repo := NewTransactionRepository(newTestDB(t))

		_, err := repo.MutateGroups(ctx, uuid.New(), []uuid.UUID{uuid.New()},
			func(map[uuid.UUID][]*entity.Transaction) (*adapter.GroupChangeSet, error) {
				t.Fatal("mutation must not run for a missing group")
				return nil, nil
			})
		assert.ErrorIs(t, err, domainerror.ErrInstallmentGroupNotFound)
	})
}
