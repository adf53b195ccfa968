// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finance-tracker/ledger/internal/application/adapter"
	"github.com/finance-tracker/ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/ledger/internal/domain/error"
	"github.com/finance-tracker/ledger/internal/integration/persistence/model"
)

// transactionRepository implements the adapter.TransactionRepository interface.
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository instance.
func NewTransactionRepository(db *gorm.DB) adapter.TransactionRepository {
	return &transactionRepository{
		db: db,
	}
}

// Create creates a new transaction in the database.
func (r *transactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	transactionModel := model.TransactionFromEntity(transaction)
	result := r.db.WithContext(ctx).Create(transactionModel)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// CreateBatch inserts all transactions in a single database transaction.
func (r *transactionRepository) CreateBatch(ctx context.Context, transactions []*entity.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, txn := range transactions {
			if err := tx.Create(model.TransactionFromEntity(txn)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID retrieves a transaction by its ID.
func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID, dashboardID uuid.UUID) (*entity.Transaction, error) {
	var transactionModel model.TransactionModel
	result := r.db.WithContext(ctx).
		Where("id = ? AND dashboard_id = ?", id, dashboardID).
		First(&transactionModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrTransactionNotFound
		}
		return nil, result.Error
	}
	return transactionModel.ToEntity(), nil
}

// FindByIDs retrieves the live transactions among ids within a dashboard.
func (r *transactionRepository) FindByIDs(ctx context.Context, ids []uuid.UUID, dashboardID uuid.UUID) ([]*entity.Transaction, error) {
	if len(ids) == 0 {
		return []*entity.Transaction{}, nil
	}

	var transactionModels []model.TransactionModel
	result := r.db.WithContext(ctx).
		Where("id IN ? AND dashboard_id = ?", ids, dashboardID).
		Find(&transactionModels)
	if result.Error != nil {
		return nil, result.Error
	}
	return toEntities(transactionModels), nil
}

// FindByGroupID retrieves the live rows of an installment group.
func (r *transactionRepository) FindByGroupID(ctx context.Context, groupID uuid.UUID, dashboardID uuid.UUID) ([]*entity.Transaction, error) {
	var transactionModels []model.TransactionModel
	result := r.db.WithContext(ctx).
		Where("group_id = ? AND dashboard_id = ?", groupID, dashboardID).
		Order("installment_number ASC").
		Find(&transactionModels)
	if result.Error != nil {
		return nil, result.Error
	}
	return toEntities(transactionModels), nil
}

// FindByRecurrenceID retrieves the transactions generated by a recurrence.
func (r *transactionRepository) FindByRecurrenceID(ctx context.Context, recurrenceID uuid.UUID) ([]*entity.Transaction, error) {
	var transactionModels []model.TransactionModel
	result := r.db.WithContext(ctx).
		Where("recurrence_id = ?", recurrenceID).
		Order("date ASC, occurrence_key ASC").
		Find(&transactionModels)
	if result.Error != nil {
		return nil, result.Error
	}
	return toEntities(transactionModels), nil
}

// CountByRecurrenceID counts every row that references a recurrence, deleted rows included.
func (r *transactionRepository) CountByRecurrenceID(ctx context.Context, recurrenceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Unscoped().
		Model(&model.TransactionModel{}).
		Where("recurrence_id = ?", recurrenceID).
		Count(&count).Error
	return count, err
}

// MutateGroups applies a group mutation inside one database transaction.
func (r *transactionRepository) MutateGroups(
	ctx context.Context,
	dashboardID uuid.UUID,
	groupIDs []uuid.UUID,
	fn adapter.GroupMutation,
) (*adapter.GroupMutationResult, error) {
	var result *adapter.GroupMutationResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		groups, err := loadGroups(tx, dashboardID, groupIDs, true)
		if err != nil {
			return err
		}
		for _, groupID := range groupIDs {
			if len(groups[groupID]) == 0 {
				return domainerror.ErrInstallmentGroupNotFound
			}
		}

		changes, err := fn(groups)
		if err != nil {
			return err
		}

		result = &adapter.GroupMutationResult{}
		if changes.IsEmpty() {
			result.Groups = groups
			return nil
		}

		now := time.Now().UTC()
		for _, txn := range changes.Updated {
			res := tx.Model(&model.TransactionModel{}).
				Where("id = ? AND dashboard_id = ?", txn.ID, dashboardID).
				Updates(model.GroupRowUpdates(txn, now))
			if res.Error != nil {
				return res.Error
			}
			result.UpdatedCount += int(res.RowsAffected)
		}

		if len(changes.Deleted) > 0 {
			res := tx.Where("id IN ? AND dashboard_id = ?", changes.Deleted, dashboardID).
				Delete(&model.TransactionModel{})
			if res.Error != nil {
				return res.Error
			}
			result.DeletedCount = res.RowsAffected
		}

		after, err := loadGroups(tx, dashboardID, groupIDs, false)
		if err != nil {
			return err
		}
		for groupID, rows := range after {
			if len(rows) == 0 {
				continue
			}
			if verr := entity.VerifyInstallmentGroup(rows); verr != nil {
				slog.Error("Installment group mutation rejected",
					"dashboard_id", dashboardID,
					"group_id", groupID,
					"error", verr,
				)
				return domainerror.NewInstallmentError(
					domainerror.ErrCodeInstallmentConsistency,
					fmt.Sprintf("group %s: %v", groupID, verr),
					domainerror.ErrInstallmentConsistency,
				)
			}
		}
		result.Groups = after
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// loadGroups reads the live rows of every group, keyed by group id.
// Postgres takes row locks; SQLite serialises writers on its own.
func loadGroups(tx *gorm.DB, dashboardID uuid.UUID, groupIDs []uuid.UUID, lock bool) (map[uuid.UUID][]*entity.Transaction, error) {
	groups := make(map[uuid.UUID][]*entity.Transaction, len(groupIDs))
	if len(groupIDs) == 0 {
		return groups, nil
	}

	query := tx.Where("group_id IN ? AND dashboard_id = ?", groupIDs, dashboardID).
		Order("installment_number ASC")
	if lock && tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var transactionModels []model.TransactionModel
	if err := query.Find(&transactionModels).Error; err != nil {
		return nil, err
	}

	for _, groupID := range groupIDs {
		groups[groupID] = []*entity.Transaction{}
	}
	for i := range transactionModels {
		txn := transactionModels[i].ToEntity()
		groups[*txn.GroupID] = append(groups[*txn.GroupID], txn)
	}
	for _, rows := range groups {
		entity.SortInstallments(rows)
	}
	return groups, nil
}

func toEntities(transactionModels []model.TransactionModel) []*entity.Transaction {
	transactions := make([]*entity.Transaction, len(transactionModels))
	for i := range transactionModels {
		transactions[i] = transactionModels[i].ToEntity()
	}
	return transactions
}
