package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/ledger/internal/domain/entity"
)

// DashboardModel represents the dashboards table in the database.
type DashboardModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:varchar(100);not null"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the DashboardModel.
func (DashboardModel) TableName() string {
	return "dashboards"
}

// ToEntity converts a DashboardModel to a domain Dashboard entity.
func (m *DashboardModel) ToEntity() *entity.Dashboard {
	return &entity.Dashboard{
		ID:        m.ID,
		Name:      m.Name,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// DashboardFromEntity creates a DashboardModel from a domain Dashboard entity.
func DashboardFromEntity(dashboard *entity.Dashboard) *DashboardModel {
	return &DashboardModel{
		ID:        dashboard.ID,
		Name:      dashboard.Name,
		CreatedBy: dashboard.CreatedBy,
		CreatedAt: dashboard.CreatedAt,
		UpdatedAt: dashboard.UpdatedAt,
	}
}

// DashboardMemberModel represents the dashboard_members table in the database.
type DashboardMemberModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	DashboardID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_dashboard_members_user,priority:1"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_dashboard_members_user,priority:2"`
	Role        string    `gorm:"type:varchar(20);not null"`
	JoinedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for the DashboardMemberModel.
func (DashboardMemberModel) TableName() string {
	return "dashboard_members"
}

// ToEntity converts a DashboardMemberModel to a domain DashboardMember entity.
func (m *DashboardMemberModel) ToEntity() *entity.DashboardMember {
	return &entity.DashboardMember{
		ID:          m.ID,
		DashboardID: m.DashboardID,
		UserID:      m.UserID,
		Role:        entity.DashboardRole(m.Role),
		JoinedAt:    m.JoinedAt,
	}
}

// DashboardMemberFromEntity creates a DashboardMemberModel from a domain DashboardMember entity.
func DashboardMemberFromEntity(member *entity.DashboardMember) *DashboardMemberModel {
	return &DashboardMemberModel{
		ID:          member.ID,
		DashboardID: member.DashboardID,
		UserID:      member.UserID,
		Role:        string(member.Role),
		JoinedAt:    member.JoinedAt,
	}
}
