package dto

import (
	"github.com/finance-tracker/ledger/internal/application/usecase/installment"
)

// CreateInstallmentPlanRequest represents the request body for installment plan creation.
type CreateInstallmentPlanRequest struct {
	Description string  `json:"description" binding:"required,max=255"`
	TotalAmount string  `json:"total_amount" binding:"required"`
	Type        string  `json:"type" binding:"required"`
	CategoryID  *string `json:"category_id,omitempty"`
	AccountID   *string `json:"account_id,omitempty"`
	Notes       string  `json:"notes,omitempty" binding:"omitempty,max=1000"`
	FirstDate   string  `json:"first_date" binding:"required"`
	Count       int     `json:"count" binding:"required"`
	Frequency   string  `json:"frequency,omitempty"`
	Interval    int     `json:"interval,omitempty"`
}

// UpdateInstallmentGroupRequest represents the request body for a scoped group update.
// Under scope "all" the amount is the new group total and the date is the new first date.
type UpdateInstallmentGroupRequest struct {
	Description   *string `json:"description,omitempty" binding:"omitempty,min=1,max=255"`
	Amount        *string `json:"amount,omitempty"`
	Date          *string `json:"date,omitempty"`
	Type          *string `json:"type,omitempty"`
	CategoryID    *string `json:"category_id,omitempty"`
	ClearCategory bool    `json:"clear_category,omitempty"`
	AccountID     *string `json:"account_id,omitempty"`
	ClearAccount  bool    `json:"clear_account,omitempty"`
	Notes         *string `json:"notes,omitempty" binding:"omitempty,max=1000"`
}

// InstallmentGroupResponse represents an installment group in API responses.
type InstallmentGroupResponse struct {
	GroupID      string                `json:"group_id"`
	Total        string                `json:"total"`
	Count        int                   `json:"count"`
	Transactions []TransactionResponse `json:"transactions"`
}

// UpdateInstallmentGroupResponse represents the result of a scoped group update.
type UpdateInstallmentGroupResponse struct {
	Group        InstallmentGroupResponse `json:"group"`
	UpdatedCount int                      `json:"updated_count"`
}

// DeleteInstallmentGroupResponse represents the result of a scoped group deletion.
type DeleteInstallmentGroupResponse struct {
	DeletedCount int64                     `json:"deleted_count"`
	Remaining    *InstallmentGroupResponse `json:"remaining,omitempty"`
}

// ToInstallmentGroupResponse converts a group output to a response DTO.
func ToInstallmentGroupResponse(g *installment.GroupOutput) InstallmentGroupResponse {
	return InstallmentGroupResponse{
		GroupID:      g.GroupID.String(),
		Total:        g.Total.StringFixed(2),
		Count:        g.Count,
		Transactions: ToTransactionResponses(g.Transactions),
	}
}

// ToDeleteInstallmentGroupResponse converts a delete output to a response DTO.
func ToDeleteInstallmentGroupResponse(output *installment.DeleteGroupOutput) DeleteInstallmentGroupResponse {
	response := DeleteInstallmentGroupResponse{DeletedCount: output.DeletedCount}
	if output.Remaining != nil {
		remaining := ToInstallmentGroupResponse(output.Remaining)
		response.Remaining = &remaining
	}
	return response
}
