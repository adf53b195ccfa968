package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finance-tracker/ledger/internal/application/adapter"
	"github.com/finance-tracker/ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/ledger/internal/domain/error"
	"github.com/finance-tracker/ledger/internal/integration/persistence/model"
)

// recurrenceRepository implements the adapter.RecurrenceRepository interface.
type recurrenceRepository struct {
	db *gorm.DB
}

// NewRecurrenceRepository creates a new recurrence repository instance.
func NewRecurrenceRepository(db *gorm.DB) adapter.RecurrenceRepository {
	return &recurrenceRepository{
		db: db,
	}
}

// Create creates a new recurrence definition in the database.
func (r *recurrenceRepository) Create(ctx context.Context, definition *entity.RecurrenceDefinition) error {
	return r.db.WithContext(ctx).Create(model.RecurrenceFromEntity(definition)).Error
}

// FindByID retrieves a definition by its ID within a dashboard.
func (r *recurrenceRepository) FindByID(ctx context.Context, id uuid.UUID, dashboardID uuid.UUID) (*entity.RecurrenceDefinition, error) {
	var recurrenceModel model.RecurrenceModel
	result := r.db.WithContext(ctx).
		Where("id = ? AND dashboard_id = ?", id, dashboardID).
		First(&recurrenceModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrRecurrenceNotFound
		}
		return nil, result.Error
	}
	return recurrenceModel.ToEntity(), nil
}

// List retrieves the definitions of a dashboard ordered by their next due date.
func (r *recurrenceRepository) List(ctx context.Context, filter adapter.RecurrenceFilter) ([]*entity.RecurrenceDefinition, error) {
	query := r.db.WithContext(ctx).Where("dashboard_id = ?", filter.DashboardID)
	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}

	var recurrenceModels []model.RecurrenceModel
	if err := query.Order("next_due_date ASC, created_at ASC").Find(&recurrenceModels).Error; err != nil {
		return nil, err
	}
	return toDefinitions(recurrenceModels), nil
}

// Update writes the template, the end date and the active flag.
func (r *recurrenceRepository) Update(ctx context.Context, definition *entity.RecurrenceDefinition) error {
	result := r.db.WithContext(ctx).
		Model(&model.RecurrenceModel{}).
		Where("id = ? AND dashboard_id = ?", definition.ID, definition.DashboardID).
		Updates(map[string]interface{}{
			"description":       definition.Description,
			"amount":            definition.Amount,
			"type":              string(definition.Type),
			"category_id":       definition.CategoryID,
			"account_id":        definition.AccountID,
			"notes":             definition.Notes,
			"end_date":          definition.EndDate,
			"installment_count": definition.InstallmentCount,
			"is_active":         definition.IsActive,
			"deactivated_at":    definition.DeactivatedAt,
			"updated_at":        definition.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrRecurrenceNotFound
	}
	return nil
}

// SoftDelete marks a definition deleted.
func (r *recurrenceRepository) SoftDelete(ctx context.Context, id uuid.UUID, dashboardID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND dashboard_id = ?", id, dashboardID).
		Delete(&model.RecurrenceModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrRecurrenceNotFound
	}
	return nil
}

// FindDue retrieves the definitions that have an occurrence to post on or before filter.Today.
func (r *recurrenceRepository) FindDue(ctx context.Context, filter adapter.DueFilter) ([]*entity.RecurrenceDefinition, error) {
	query := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("next_due_date <= ?", filter.Today).
		Where("end_date IS NULL OR next_due_date <= end_date")
	if filter.DashboardID != nil {
		query = query.Where("dashboard_id = ?", *filter.DashboardID)
	}

	var recurrenceModels []model.RecurrenceModel
	if err := query.Order("dashboard_id ASC, next_due_date ASC").Find(&recurrenceModels).Error; err != nil {
		return nil, err
	}
	return toDefinitions(recurrenceModels), nil
}

// FindExhausted retrieves active definitions whose cursor already passed their end date.
func (r *recurrenceRepository) FindExhausted(ctx context.Context, filter adapter.DueFilter) ([]*entity.RecurrenceDefinition, error) {
	query := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("end_date IS NOT NULL AND next_due_date > end_date")
	if filter.DashboardID != nil {
		query = query.Where("dashboard_id = ?", *filter.DashboardID)
	}

	var recurrenceModels []model.RecurrenceModel
	if err := query.Order("dashboard_id ASC").Find(&recurrenceModels).Error; err != nil {
		return nil, err
	}
	return toDefinitions(recurrenceModels), nil
}

// CommitOccurrences inserts the occurrence rows and advances the cursor in one database transaction.
// Rows whose occurrence key is already stored are skipped. The cursor only moves
// when it still holds ExpectedNextDueDate and the definition is still active.
func (r *recurrenceRepository) CommitOccurrences(ctx context.Context, commit adapter.OccurrenceCommit) (*adapter.OccurrenceCommitResult, error) {
	definition := commit.Definition
	result := &adapter.OccurrenceCommitResult{Created: []*entity.Transaction{}}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]uuid.UUID, 0, len(commit.Transactions))
		for _, txn := range commit.Transactions {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(model.TransactionFromEntity(txn)).Error; err != nil {
				return err
			}
			ids = append(ids, txn.ID)
		}

		stored := make(map[uuid.UUID]bool, len(ids))
		if len(ids) > 0 {
			var storedIDs []uuid.UUID
			if err := tx.Model(&model.TransactionModel{}).
				Where("id IN ?", ids).
				Pluck("id", &storedIDs).Error; err != nil {
				return err
			}
			for _, id := range storedIDs {
				stored[id] = true
			}
		}
		for _, txn := range commit.Transactions {
			if stored[txn.ID] {
				result.Created = append(result.Created, txn)
			} else {
				result.Skipped++
			}
		}

		updates := map[string]interface{}{
			"next_due_date":     definition.NextDueDate,
			"last_generated_at": definition.LastGeneratedAt,
			"updated_at":        time.Now().UTC(),
		}
		if !definition.IsActive {
			updates["is_active"] = false
			updates["deactivated_at"] = definition.DeactivatedAt
		}

		res := tx.Model(&model.RecurrenceModel{}).
			Where("id = ? AND next_due_date = ? AND is_active = ?", definition.ID, commit.ExpectedNextDueDate, true).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domainerror.NewRecurrenceError(
				domainerror.ErrCodeCursorMoved,
				"recurrence cursor changed during processing",
				domainerror.ErrCursorMoved,
			)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func toDefinitions(recurrenceModels []model.RecurrenceModel) []*entity.RecurrenceDefinition {
	definitions := make([]*entity.RecurrenceDefinition, len(recurrenceModels))
	for i := range recurrenceModels {
		definitions[i] = recurrenceModels[i].ToEntity()
	}
	return definitions
}
