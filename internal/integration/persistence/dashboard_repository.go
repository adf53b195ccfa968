package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finance-tracker/ledger/internal/application/adapter"
	"github.com/finance-tracker/ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/ledger/internal/domain/error"
	"github.com/finance-tracker/ledger/internal/integration/persistence/model"
)

// dashboardRepository implements the adapter.DashboardRepository interface.
type dashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository creates a new dashboard repository instance.
func NewDashboardRepository(db *gorm.DB) adapter.DashboardRepository {
	return &dashboardRepository{
		db: db,
	}
}

// CreateDashboard creates a new dashboard in the database.
func (r *dashboardRepository) CreateDashboard(ctx context.Context, dashboard *entity.Dashboard) error {
	return r.db.WithContext(ctx).Create(model.DashboardFromEntity(dashboard)).Error
}

// FindDashboardByID retrieves a dashboard by its ID.
func (r *dashboardRepository) FindDashboardByID(ctx context.Context, id uuid.UUID) (*entity.Dashboard, error) {
	var dashboardModel model.DashboardModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&dashboardModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrDashboardNotFound
		}
		return nil, result.Error
	}
	return dashboardModel.ToEntity(), nil
}

// AddMember adds a member to a dashboard, replacing the role of an existing membership.
func (r *dashboardRepository) AddMember(ctx context.Context, member *entity.DashboardMember) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "dashboard_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role"}),
		}).
		Create(model.DashboardMemberFromEntity(member)).Error
}

// FindMember retrieves a member by dashboard and user ID.
func (r *dashboardRepository) FindMember(ctx context.Context, dashboardID, userID uuid.UUID) (*entity.DashboardMember, error) {
	var memberModel model.DashboardMemberModel
	result := r.db.WithContext(ctx).
		Where("dashboard_id = ? AND user_id = ?", dashboardID, userID).
		First(&memberModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return memberModel.ToEntity(), nil
}
