package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kasira/internal/domain/purchase"
	"kasira/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler serves purchase order endpoints.
type PurchaseHandler struct {
	*BaseHandler
	service *purchase.Service
	loc     *time.Location
}

// NewPurchaseHandler creates a new purchase handler.
func NewPurchaseHandler(base *BaseHandler, service *purchase.Service, loc *time.Location) *PurchaseHandler {
	return &PurchaseHandler{BaseHandler: base, service: service, loc: loc}
}

// Create handles POST /purchase-orders.
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req dto.CreatePurchaseOrderRequest
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

// Get handles GET /purchase-orders/:id.
func (h *PurchaseHandler) Get(c *gin.Context) {
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

// List handles GET /purchase-orders.
func (h *PurchaseHandler) List(c *gin.Context) {
	var query dto.PurchaseListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter := purchase.ListFilter{
		SupplierName: query.SupplierName,
		Limit:        query.Limit,
		Offset:       query.Offset,
	}
	if query.Status != "" {
		status := purchase.Status(query.Status)
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

// Pay handles POST /purchase-orders/:id/pay.
func (h *PurchaseHandler) Pay(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.PayPurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	accountID, ok := h.ParseIDString(c, req.AccountID, "accountId")
	if !ok {
		return
	}

	o, err := h.service.Pay(c.Request.Context(), orderID, accountID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// Receive handles POST /purchase-orders/:id/receive.
func (h *PurchaseHandler) Receive(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	o, err := h.service.Receive(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
