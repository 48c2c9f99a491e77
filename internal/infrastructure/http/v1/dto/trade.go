package dto

import (
	"kasira/internal/core/apperror"
	"kasira/internal/core/id"
	"kasira/internal/core/types"
	"kasira/internal/domain/trade"
)

// OrderItemRequest is one line in a create-order request.
type OrderItemRequest struct {
	ProductID string         `json:"productId" binding:"required,uuid"`
	Name      string         `json:"name"`
	Quantity  types.Quantity `json:"quantity" binding:"required"`
	UnitPrice types.Money    `json:"unitPrice"`
}

// CreateOrderRequest is the request body for creating a customer order.
type CreateOrderRequest struct {
	CustomerName  string             `json:"customerName" binding:"required"`
	CustomerPhone string             `json:"customerPhone"`
	Notes         string             `json:"notes"`
	Items         []OrderItemRequest `json:"items" binding:"required"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateOrderRequest) ToEntity() (*trade.Order, error) {
	o := &trade.Order{
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		Notes:         r.Notes,
	}
	for _, item := range r.Items {
		productID, err := id.Parse(item.ProductID)
		if err != nil {
			return nil, apperror.NewValidation("invalid id").WithDetail("field", "productId")
		}
		o.Items = append(o.Items, trade.Item{
			ProductID: productID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return o, nil
}

// ChangeStatusRequest is the request body for a status transition.
type ChangeStatusRequest struct {
	Status trade.Status `json:"status" binding:"required"`
}

// OrderPaymentRequest is the request body for recording an order payment.
type OrderPaymentRequest struct {
	AccountID   string      `json:"accountId" binding:"required,uuid"`
	Amount      types.Money `json:"amount" binding:"required"`
	Description string      `json:"description"`
}

// OrderListQuery narrows order listing.
type OrderListQuery struct {
	Status       string `form:"status"`
	CustomerName string `form:"customerName"`
	From         string `form:"from"`
	To           string `form:"to"`
	Limit        int    `form:"limit"`
	Offset       int    `form:"offset"`
}
