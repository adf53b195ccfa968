// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/ledger/internal/application/usecase/installment"
	"github.com/finance-tracker/ledger/internal/domain/valueobject"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// TransactionResponse represents a single transaction in API responses.
type TransactionResponse struct {
	ID                string    `json:"id"`
	DashboardID       string    `json:"dashboard_id"`
	UserID            string    `json:"user_id"`
	Date              string    `json:"date"`
	Description       string    `json:"description"`
	Amount            string    `json:"amount"`
	Type              string    `json:"type"`
	CategoryID        *string   `json:"category_id,omitempty"`
	AccountID         *string   `json:"account_id,omitempty"`
	Notes             string    `json:"notes"`
	GroupID           *string   `json:"group_id,omitempty"`
	InstallmentNumber *int      `json:"installment_number,omitempty"`
	InstallmentTotal  *int      `json:"installment_total,omitempty"`
	RecurrenceID      *string   `json:"recurrence_id,omitempty"`
	OccurrenceDate    *string   `json:"occurrence_date,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ToTransactionResponse converts a transaction output to a response DTO.
func ToTransactionResponse(t *installment.TransactionOutput) TransactionResponse {
	return TransactionResponse{
		ID:                t.ID.String(),
		DashboardID:       t.DashboardID.String(),
		UserID:            t.UserID.String(),
		Date:              t.Date.Format(valueobject.DateLayout),
		Description:       t.Description,
		Amount:            t.Amount.StringFixed(2),
		Type:              string(t.Type),
		CategoryID:        idString(t.CategoryID),
		AccountID:         idString(t.AccountID),
		Notes:             t.Notes,
		GroupID:           idString(t.GroupID),
		InstallmentNumber: t.InstallmentNumber,
		InstallmentTotal:  t.InstallmentTotal,
		RecurrenceID:      idString(t.RecurrenceID),
		OccurrenceDate:    dateString(t.OccurrenceDate),
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

// ToTransactionResponses converts transaction outputs to response DTOs.
func ToTransactionResponses(transactions []*installment.TransactionOutput) []TransactionResponse {
	responses := make([]TransactionResponse, len(transactions))
	for i, t := range transactions {
		responses[i] = ToTransactionResponse(t)
	}
	return responses
}

func idString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func dateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(valueobject.DateLayout)
	return &s
}
