package dto

import (
	"kasira/internal/core/types"
	"kasira/internal/domain/advance"
)

// IssueAdvanceRequest is the request body for issuing an employee advance.
type IssueAdvanceRequest struct {
	EmployeeName string      `json:"employeeName" binding:"required"`
	AccountID    string      `json:"accountId" binding:"required,uuid"`
	Amount       types.Money `json:"amount" binding:"required"`
	Notes        string      `json:"notes"`
}

// ToEntity converts DTO to domain entity.
func (r *IssueAdvanceRequest) ToEntity() *advance.Advance {
	return &advance.Advance{
		EmployeeName: r.EmployeeName,
		Amount:       r.Amount,
		Notes:        r.Notes,
	}
}

// RepayAdvanceRequest is the request body for repaying an advance.
type RepayAdvanceRequest struct {
	AccountID string      `json:"accountId" binding:"required,uuid"`
	Amount    types.Money `json:"amount" binding:"required"`
}
