package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kasira/internal/domain/repair"
)

// RepairHandler serves admin repair endpoints.
type RepairHandler struct {
	*BaseHandler
	service *repair.Service
	loc     *time.Location
}

// NewRepairHandler creates a new repair handler.
func NewRepairHandler(base *BaseHandler, service *repair.Service, loc *time.Location) *RepairHandler {
	return &RepairHandler{BaseHandler: base, service: service, loc: loc}
}

// Backfill handles POST /admin/repair/backfill?date=YYYY-MM-DD.
// Defaults to today.
func (h *RepairHandler) Backfill(c *gin.Context) {
	day, ok := h.ParseDate(c, c.Query("date"), h.loc)
	if !ok {
		return
	}
	if day.IsZero() {
		day = time.Now().In(h.loc)
	}

	result, err := h.service.BackfillOrderPayments(c.Request.Context(), day)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Cleanup handles POST /admin/repair/cleanup.
func (h *RepairHandler) Cleanup(c *gin.Context) {
	result, err := h.service.CleanupOrphanEntries(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// VerifyBalances handles GET /admin/repair/verify-balances.
func (h *RepairHandler) VerifyBalances(c *gin.Context) {
	drifts, err := h.service.VerifyBalances(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"drifts": drifts, "clean": len(drifts) == 0})
}
