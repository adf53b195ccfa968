package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/finance-tracker/ledger/internal/domain/entity"
	"github.com/finance-tracker/ledger/internal/domain/valueobject"
)

// RecurrenceModel represents the recurrences table in the database.
type RecurrenceModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DashboardID uuid.UUID       `gorm:"type:uuid;not null;index"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(255);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Type        string          `gorm:"type:varchar(10);not null"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid"`
	AccountID   *uuid.UUID      `gorm:"type:uuid"`
	Notes       string          `gorm:"type:text"`

	Frequency        string     `gorm:"type:varchar(20);not null"`
	Interval         int        `gorm:"column:interval_count;not null;default:1"`
	StartDate        time.Time  `gorm:"type:date;not null"`
	EndDate          *time.Time `gorm:"type:date"`
	InstallmentCount *int       `gorm:"type:integer"`

	NextDueDate     time.Time  `gorm:"type:date;not null;index:idx_recurrences_due,priority:2"`
	LastGeneratedAt *time.Time `gorm:"type:timestamp"`
	IsActive        bool       `gorm:"not null;default:true;index:idx_recurrences_due,priority:1"`
	DeactivatedAt   *time.Time `gorm:"type:timestamp"`

	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for the RecurrenceModel.
func (RecurrenceModel) TableName() string {
	return "recurrences"
}

// ToEntity converts a RecurrenceModel to a domain RecurrenceDefinition entity.
func (m *RecurrenceModel) ToEntity() *entity.RecurrenceDefinition {
	var deletedAt *time.Time
	if m.DeletedAt.Valid {
		deletedAt = &m.DeletedAt.Time
	}

	var endDate *time.Time
	if m.EndDate != nil {
		d := valueobject.NormalizeDate(*m.EndDate)
		endDate = &d
	}

	return &entity.RecurrenceDefinition{
		ID:               m.ID,
		DashboardID:      m.DashboardID,
		UserID:           m.UserID,
		Description:      m.Description,
		Amount:           m.Amount,
		Type:             entity.TransactionType(m.Type),
		CategoryID:       m.CategoryID,
		AccountID:        m.AccountID,
		Notes:            m.Notes,
		Frequency:        valueobject.Frequency(m.Frequency),
		Interval:         m.Interval,
		StartDate:        valueobject.NormalizeDate(m.StartDate),
		EndDate:          endDate,
		InstallmentCount: m.InstallmentCount,
		NextDueDate:      valueobject.NormalizeDate(m.NextDueDate),
		LastGeneratedAt:  m.LastGeneratedAt,
		IsActive:         m.IsActive,
		DeactivatedAt:    m.DeactivatedAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
		DeletedAt:        deletedAt,
	}
}

// RecurrenceFromEntity creates a RecurrenceModel from a domain RecurrenceDefinition entity.
func RecurrenceFromEntity(definition *entity.RecurrenceDefinition) *RecurrenceModel {
	var deletedAt gorm.DeletedAt
	if definition.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *definition.DeletedAt, Valid: true}
	}

	return &RecurrenceModel{
		ID:               definition.ID,
		DashboardID:      definition.DashboardID,
		UserID:           definition.UserID,
		Description:      definition.Description,
		Amount:           definition.Amount,
		Type:             string(definition.Type),
		CategoryID:       definition.CategoryID,
		AccountID:        definition.AccountID,
		Notes:            definition.Notes,
		Frequency:        string(definition.Frequency),
		Interval:         definition.Interval,
		StartDate:        definition.StartDate,
		EndDate:          definition.EndDate,
		InstallmentCount: definition.InstallmentCount,
		NextDueDate:      definition.NextDueDate,
		LastGeneratedAt:  definition.LastGeneratedAt,
		IsActive:         definition.IsActive,
		DeactivatedAt:    definition.DeactivatedAt,
		CreatedAt:        definition.CreatedAt,
		UpdatedAt:        definition.UpdatedAt,
		DeletedAt:        deletedAt,
	}
}
