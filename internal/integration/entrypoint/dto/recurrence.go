package dto

import (
	"time"

	"github.com/finance-tracker/ledger/internal/application/usecase/recurrence"
	domainerror "github.com/finance-tracker/ledger/internal/domain/error"
	"github.com/finance-tracker/ledger/internal/domain/valueobject"
)

// CreateRecurrenceRequest represents the request body for recurrence creation.
// Amounts are decimal strings.
type CreateRecurrenceRequest struct {
	Description      string  `json:"description" binding:"required,max=255"`
	Amount           string  `json:"amount" binding:"required"`
	Type             string  `json:"type" binding:"required"`
	CategoryID       *string `json:"category_id,omitempty"`
	AccountID        *string `json:"account_id,omitempty"`
	Notes            string  `json:"notes,omitempty" binding:"omitempty,max=1000"`
	Frequency        string  `json:"frequency" binding:"required"`
	Interval         *int    `json:"interval,omitempty"`
	StartDate        string  `json:"start_date" binding:"required"`
	EndDate          *string `json:"end_date,omitempty"`
	InstallmentCount *int    `json:"installment_count,omitempty"`
}

// UpdateRecurrenceRequest represents the request body for recurrence update.
type UpdateRecurrenceRequest struct {
	Description           *string `json:"description,omitempty" binding:"omitempty,min=1,max=255"`
	Amount                *string `json:"amount,omitempty"`
	Type                  *string `json:"type,omitempty"`
	CategoryID            *string `json:"category_id,omitempty"`
	ClearCategory         bool    `json:"clear_category,omitempty"`
	AccountID             *string `json:"account_id,omitempty"`
	ClearAccount          bool    `json:"clear_account,omitempty"`
	Notes                 *string `json:"notes,omitempty" binding:"omitempty,max=1000"`
	EndDate               *string `json:"end_date,omitempty"`
	ClearEndDate          bool    `json:"clear_end_date,omitempty"`
	InstallmentCount      *int    `json:"installment_count,omitempty"`
	ClearInstallmentCount bool    `json:"clear_installment_count,omitempty"`
	IsActive              *bool   `json:"is_active,omitempty"`
}

// ProcessRecurrencesRequest represents the optional body of a manual processing trigger.
type ProcessRecurrencesRequest struct {
	Now *string `json:"now,omitempty"`
}

// RecurrenceResponse represents a recurrence definition in API responses.
type RecurrenceResponse struct {
	ID               string     `json:"id"`
	DashboardID      string     `json:"dashboard_id"`
	UserID           string     `json:"user_id"`
	Description      string     `json:"description"`
	Amount           string     `json:"amount"`
	Type             string     `json:"type"`
	CategoryID       *string    `json:"category_id,omitempty"`
	AccountID        *string    `json:"account_id,omitempty"`
	Notes            string     `json:"notes"`
	Frequency        string     `json:"frequency"`
	Interval         int        `json:"interval"`
	StartDate        string     `json:"start_date"`
	EndDate          *string    `json:"end_date,omitempty"`
	InstallmentCount *int       `json:"installment_count,omitempty"`
	NextDueDate      string     `json:"next_due_date"`
	LastGeneratedAt  *time.Time `json:"last_generated_at,omitempty"`
	IsActive         bool       `json:"is_active"`
	DeactivatedAt    *time.Time `json:"deactivated_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// RecurrenceListResponse represents a list of recurrence definitions.
type RecurrenceListResponse struct {
	Recurrences []RecurrenceResponse `json:"recurrences"`
}

// DeleteRecurrenceResponse reports how a recurrence was removed.
type DeleteRecurrenceResponse struct {
	Deleted     bool `json:"deleted"`
	Deactivated bool `json:"deactivated"`
}

// OutcomeResponse reports what a processing run did with one definition.
type OutcomeResponse struct {
	RecurrenceID string         `json:"recurrence_id"`
	Created      int            `json:"created"`
	Skipped      int            `json:"skipped"`
	NextDueDate  string         `json:"next_due_date"`
	Deactivated  bool           `json:"deactivated"`
	Error        *ErrorResponse `json:"error,omitempty"`
}

// ProcessRecurrencesResponse represents the result of a processing run.
type ProcessRecurrencesResponse struct {
	Created  []TransactionResponse `json:"created"`
	Advanced int                   `json:"advanced"`
	Failed   int                   `json:"failed"`
	Outcomes []OutcomeResponse     `json:"outcomes"`
}

// ToRecurrenceResponse converts a recurrence output to a response DTO.
func ToRecurrenceResponse(r *recurrence.RecurrenceOutput) RecurrenceResponse {
	return RecurrenceResponse{
		ID:               r.ID.String(),
		DashboardID:      r.DashboardID.String(),
		UserID:           r.UserID.String(),
		Description:      r.Description,
		Amount:           r.Amount.StringFixed(2),
		Type:             string(r.Type),
		CategoryID:       idString(r.CategoryID),
		AccountID:        idString(r.AccountID),
		Notes:            r.Notes,
		Frequency:        string(r.Frequency),
		Interval:         r.Interval,
		StartDate:        r.StartDate.Format(valueobject.DateLayout),
		EndDate:          dateString(r.EndDate),
		InstallmentCount: r.InstallmentCount,
		NextDueDate:      r.NextDueDate.Format(valueobject.DateLayout),
		LastGeneratedAt:  r.LastGeneratedAt,
		IsActive:         r.IsActive,
		DeactivatedAt:    r.DeactivatedAt,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// ToRecurrenceListResponse converts a list output to a response DTO.
func ToRecurrenceListResponse(output *recurrence.ListOutput) RecurrenceListResponse {
	response := RecurrenceListResponse{Recurrences: make([]RecurrenceResponse, len(output.Recurrences))}
	for i, r := range output.Recurrences {
		response.Recurrences[i] = ToRecurrenceResponse(r)
	}
	return response
}

// ToProcessRecurrencesResponse converts a processing run output to a response DTO.
// Internal failure details are not exposed.
func ToProcessRecurrencesResponse(output *recurrence.ProcessDueOutput) ProcessRecurrencesResponse {
	response := ProcessRecurrencesResponse{
		Created:  ToTransactionResponses(output.Created),
		Advanced: output.Advanced,
		Failed:   output.Failed,
		Outcomes: make([]OutcomeResponse, len(output.Outcomes)),
	}
	for i, o := range output.Outcomes {
		outcome := OutcomeResponse{
			RecurrenceID: o.RecurrenceID.String(),
			Created:      o.Created,
			Skipped:      o.Skipped,
			NextDueDate:  o.NextDueDate.Format(valueobject.DateLayout),
			Deactivated:  o.Deactivated,
		}
		if o.Err != nil {
			message := "processing failed"
			if code := domainerror.CodeOf(o.Err); code != "" && domainerror.KindOf(o.Err) != domainerror.KindConsistency {
				message = o.Err.Error()
			}
			outcome.Error = &ErrorResponse{Error: message, Code: domainerror.CodeOf(o.Err)}
		}
		response.Outcomes[i] = outcome
	}
	return response
}
