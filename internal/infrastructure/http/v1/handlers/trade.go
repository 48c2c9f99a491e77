package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kasira/internal/domain/trade"
	"kasira/internal/infrastructure/http/v1/dto"
)

// TradeHandler serves customer order endpoints.
type TradeHandler struct {
	*BaseHandler
	service *trade.Service
	loc     *time.Location
}

// NewTradeHandler creates a new trade handler.
func NewTradeHandler(base *BaseHandler, service *trade.Service, loc *time.Location) *TradeHandler {
	return &TradeHandler{BaseHandler: base, service: service, loc: loc}
}

// Create handles POST /orders.
func (h *TradeHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := h.service.Create(c.Request.Context(), o); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

// Get handles GET /orders/:id.
func (h *TradeHandler) Get(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	o, err := h.service.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// List handles GET /orders.
func (h *TradeHandler) List(c *gin.Context) {
	var query dto.OrderListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter := trade.ListFilter{
		CustomerName: query.CustomerName,
		Limit:        query.Limit,
		Offset:       query.Offset,
	}
	if query.Status != "" {
		status := trade.Status(query.Status)
		filter.Status = &status
	}
	if from, ok := h.ParseDate(c, query.From, h.loc); !ok {
		return
	} else if !from.IsZero() {
		filter.From = &from
	}
	if to, ok := h.ParseDate(c, query.To, h.loc); !ok {
		return
	} else if !to.IsZero() {
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}

	orders, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": orders})
}

// ChangeStatus handles POST /orders/:id/status.
func (h *TradeHandler) ChangeStatus(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.ChangeStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := h.service.ChangeStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// RecordPayment handles POST /orders/:id/payments.
func (h *TradeHandler) RecordPayment(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.OrderPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	accountID, ok := h.ParseIDString(c, req.AccountID, "accountId")
	if !ok {
		return
	}

	o, err := h.service.RecordPayment(c.Request.Context(), orderID, accountID, req.Amount, req.Description)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
