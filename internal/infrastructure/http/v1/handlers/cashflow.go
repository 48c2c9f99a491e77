package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kasira/internal/core/apperror"
	"kasira/internal/domain/cashflow"
)

// CashflowHandler serves balance reconciliation endpoints.
type CashflowHandler struct {
	*BaseHandler
	service *cashflow.Service
	loc     *time.Location
}

// NewCashflowHandler creates a new cashflow handler.
func NewCashflowHandler(base *BaseHandler, service *cashflow.Service, loc *time.Location) *CashflowHandler {
	return &CashflowHandler{BaseHandler: base, service: service, loc: loc}
}

// Today handles GET /cashflow/today.
func (h *CashflowHandler) Today(c *gin.Context) {
	summary, err := h.service.Today(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Day handles GET /cashflow/day?date=YYYY-MM-DD.
func (h *CashflowHandler) Day(c *gin.Context) {
	day, ok := h.ParseDate(c, c.Query("date"), h.loc)
	if !ok {
		return
	}
	if day.IsZero() {
		h.Error(c, apperror.NewValidation("date is required"))
		return
	}

	summary, err := h.service.ForDay(c.Request.Context(), day)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Range handles GET /cashflow/range?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *CashflowHandler) Range(c *gin.Context) {
	from, ok := h.ParseDate(c, c.Query("from"), h.loc)
	if !ok {
		return
	}
	to, ok := h.ParseDate(c, c.Query("to"), h.loc)
	if !ok {
		return
	}
	if from.IsZero() || to.IsZero() {
		h.Error(c, apperror.NewValidation("from and to are required"))
		return
	}

	totals, err := h.service.Range(c.Request.Context(), from, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}
