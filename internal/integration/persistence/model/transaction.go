// Package model defines database models for persistence layer.
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/finance-tracker/ledger/internal/domain/entity"
	"github.com/finance-tracker/ledger/internal/domain/valueobject"
)

// TransactionModel represents the transactions table in the database.
type TransactionModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	DashboardID uuid.UUID       `gorm:"type:uuid;not null;index"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Date        time.Time       `gorm:"type:date;not null;index"`
	Description string          `gorm:"type:varchar(255);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Type        string          `gorm:"type:varchar(10);not null;index"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index"`
	AccountID   *uuid.UUID      `gorm:"type:uuid;index"`
	Notes       string          `gorm:"type:text"`

	// Installment group fields
	GroupID              *uuid.UUID `gorm:"type:uuid;index"`
	InstallmentNumber    *int       `gorm:"type:integer"`
	InstallmentTotal     *int       `gorm:"type:integer"`
	InstallmentFrequency *string    `gorm:"type:varchar(20)"`
	InstallmentInterval  *int       `gorm:"type:integer"`

	// Recurrence fields. OccurrenceKey is written once on insert and never updated.
	RecurrenceID   *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_transactions_occurrence,priority:1"`
	OccurrenceDate *time.Time `gorm:"type:date"`
	OccurrenceKey  *string    `gorm:"type:varchar(20);uniqueIndex:idx_transactions_occurrence,priority:2"`

	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
	DeletedAt gorm.DeletedAt `gorm:"index"` // Soft-delete support
}

// TableName returns the table name for the TransactionModel.
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToEntity converts a TransactionModel to a domain Transaction entity.
func (m *TransactionModel) ToEntity() *entity.Transaction {
	var deletedAt *time.Time
	if m.DeletedAt.Valid {
		deletedAt = &m.DeletedAt.Time
	}

	var step *valueobject.Step
	if m.InstallmentFrequency != nil && m.InstallmentInterval != nil {
		step = &valueobject.Step{
			Frequency: valueobject.Frequency(*m.InstallmentFrequency),
			Interval:  *m.InstallmentInterval,
		}
	}

	var occurrenceDate *time.Time
	if m.OccurrenceDate != nil {
		d := valueobject.NormalizeDate(*m.OccurrenceDate)
		occurrenceDate = &d
	}

	return &entity.Transaction{
		ID:                m.ID,
		DashboardID:       m.DashboardID,
		UserID:            m.UserID,
		Date:              valueobject.NormalizeDate(m.Date),
		Description:       m.Description,
		Amount:            m.Amount,
		Type:              entity.TransactionType(m.Type),
		CategoryID:        m.CategoryID,
		AccountID:         m.AccountID,
		Notes:             m.Notes,
		GroupID:           m.GroupID,
		InstallmentNumber: m.InstallmentNumber,
		InstallmentTotal:  m.InstallmentTotal,
		InstallmentStep:   step,
		RecurrenceID:      m.RecurrenceID,
		OccurrenceDate:    occurrenceDate,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		DeletedAt:         deletedAt,
	}
}

// TransactionFromEntity creates a TransactionModel from a domain Transaction entity.
func TransactionFromEntity(transaction *entity.Transaction) *TransactionModel {
	var deletedAt gorm.DeletedAt
	if transaction.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *transaction.DeletedAt, Valid: true}
	}

	m := &TransactionModel{
		ID:                transaction.ID,
		DashboardID:       transaction.DashboardID,
		UserID:            transaction.UserID,
		Date:              transaction.Date,
		Description:       transaction.Description,
		Amount:            transaction.Amount,
		Type:              string(transaction.Type),
		CategoryID:        transaction.CategoryID,
		AccountID:         transaction.AccountID,
		Notes:             transaction.Notes,
		GroupID:           transaction.GroupID,
		InstallmentNumber: transaction.InstallmentNumber,
		InstallmentTotal:  transaction.InstallmentTotal,
		RecurrenceID:      transaction.RecurrenceID,
		OccurrenceDate:    transaction.OccurrenceDate,
		OccurrenceKey:     OccurrenceKey(transaction),
		CreatedAt:         transaction.CreatedAt,
		UpdatedAt:         transaction.UpdatedAt,
		DeletedAt:         deletedAt,
	}

	if transaction.InstallmentStep != nil {
		frequency := string(transaction.InstallmentStep.Frequency)
		interval := transaction.InstallmentStep.Interval
		m.InstallmentFrequency = &frequency
		m.InstallmentInterval = &interval
	}

	return m
}

// OccurrenceKey identifies one posted occurrence of a recurrence: the
// occurrence day, plus the installment number when the occurrence is split.
// Returns nil for rows not generated by a recurrence.
func OccurrenceKey(transaction *entity.Transaction) *string {
	if transaction.RecurrenceID == nil || transaction.OccurrenceDate == nil {
		return nil
	}
	key := transaction.OccurrenceDate.Format(valueobject.DateLayout)
	if transaction.InstallmentNumber != nil {
		key = fmt.Sprintf("%s#%d", key, *transaction.InstallmentNumber)
	}
	return &key
}

// GroupRowUpdates returns the columns a group mutation may rewrite on a row.
// Identity and occurrence columns are never rewritten.
func GroupRowUpdates(transaction *entity.Transaction, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"date":               transaction.Date,
		"description":        transaction.Description,
		"amount":             transaction.Amount,
		"type":               string(transaction.Type),
		"category_id":        transaction.CategoryID,
		"account_id":         transaction.AccountID,
		"notes":              transaction.Notes,
		"installment_number": transaction.InstallmentNumber,
		"installment_total":  transaction.InstallmentTotal,
		"updated_at":         now,
	}
}
