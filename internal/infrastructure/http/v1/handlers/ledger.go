package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kasira/internal/domain/ledger"
	"kasira/internal/infrastructure/http/v1/dto"
)

// LedgerHandler serves cash ledger endpoints.
type LedgerHandler struct {
	*BaseHandler
	service *ledger.Service
	loc     *time.Location
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(base *BaseHandler, service *ledger.Service, loc *time.Location) *LedgerHandler {
	return &LedgerHandler{BaseHandler: base, service: service, loc: loc}
}

// RecordIn handles POST /ledger/in (kas masuk manual).
func (h *LedgerHandler) RecordIn(c *gin.Context) {
	var req dto.ManualEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	accountID, ok := h.ParseIDString(c, req.AccountID, "accountId")
	if !ok {
		return
	}

	e, err := h.service.RecordManualIn(c.Request.Context(), accountID, req.Amount, req.Description)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// RecordOut handles POST /ledger/out (kas keluar manual).
func (h *LedgerHandler) RecordOut(c *gin.Context) {
	var req dto.ManualEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	accountID, ok := h.ParseIDString(c, req.AccountID, "accountId")
	if !ok {
		return
	}

	e, err := h.service.RecordManualOut(c.Request.Context(), accountID, req.Amount, req.Description)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// Transfer handles POST /ledger/transfer.
func (h *LedgerHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if !h.BindJSON(c, &req) {
		return
	}
	fromID, ok := h.ParseIDString(c, req.FromAccountID, "fromAccountId")
	if !ok {
		return
	}
	toID, ok := h.ParseIDString(c, req.ToAccountID, "toAccountId")
	if !ok {
		return
	}

	out, in, err := h.service.Transfer(c.Request.Context(), fromID, toID, req.Amount, req.Description)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"out": out, "in": in})
}

// List handles GET /ledger.
func (h *LedgerHandler) List(c *gin.Context) {
	var query dto.LedgerListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter := ledger.ListFilter{
		Limit:  query.Limit,
		Offset: query.Offset,
	}
	if query.AccountID != "" {
		accountID, ok := h.ParseIDString(c, query.AccountID, "accountId")
		if !ok {
			return
		}
		filter.AccountID = &accountID
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
	if query.Category != "" {
		category := ledger.Category(query.Category)
		filter.Category = &category
	}

	entries, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}
