package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kasira/internal/domain/account"
	"kasira/internal/infrastructure/http/v1/dto"
)

// AccountHandler serves account endpoints.
type AccountHandler struct {
	*BaseHandler
	service *account.Service
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(base *BaseHandler, service *account.Service) *AccountHandler {
	return &AccountHandler{BaseHandler: base, service: service}
}

// Create handles POST /accounts.
func (h *AccountHandler) Create(c *gin.Context) {
	var req dto.CreateAccountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	a := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), a); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// Get handles GET /accounts/:id.
func (h *AccountHandler) Get(c *gin.Context) {
	accountID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	a, err := h.service.GetByID(c.Request.Context(), accountID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Update handles PUT /accounts/:id.
func (h *AccountHandler) Update(c *gin.Context) {
	accountID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateAccountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	a, err := h.service.GetByID(c.Request.Context(), accountID)
	if err != nil {
		h.Error(c, err)
		return
	}
	req.ApplyTo(a)
	if err := h.service.Update(c.Request.Context(), a); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// List handles GET /accounts.
func (h *AccountHandler) List(c *gin.Context) {
	paymentOnly := c.Query("payment") == "true"

	var (
		accounts []account.Account
		err      error
	)
	if paymentOnly {
		accounts, err = h.service.ListPaymentAccounts(c.Request.Context())
	} else {
		accounts, err = h.service.List(c.Request.Context())
	}
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": accounts})
}
