package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kasira/internal/domain/advance"
	"kasira/internal/infrastructure/http/v1/dto"
)

// AdvanceHandler serves employee advance endpoints.
type AdvanceHandler struct {
	*BaseHandler
	service *advance.Service
}

// NewAdvanceHandler creates a new advance handler.
func NewAdvanceHandler(base *BaseHandler, service *advance.Service) *AdvanceHandler {
	return &AdvanceHandler{BaseHandler: base, service: service}
}

// Issue handles POST /advances.
func (h *AdvanceHandler) Issue(c *gin.Context) {
	var req dto.IssueAdvanceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	accountID, ok := h.ParseIDString(c, req.AccountID, "accountId")
	if !ok {
		return
	}

	a := req.ToEntity()
	if err := h.service.Issue(c.Request.Context(), a, accountID); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// Repay handles POST /advances/:id/repay.
func (h *AdvanceHandler) Repay(c *gin.Context) {
	advanceID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.RepayAdvanceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	accountID, ok := h.ParseIDString(c, req.AccountID, "accountId")
	if !ok {
		return
	}

	a, err := h.service.Repay(c.Request.Context(), advanceID, accountID, req.Amount)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Get handles GET /advances/:id.
func (h *AdvanceHandler) Get(c *gin.Context) {
	advanceID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	a, err := h.service.GetByID(c.Request.Context(), advanceID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// List handles GET /advances.
func (h *AdvanceHandler) List(c *gin.Context) {
	openOnly := c.Query("open") == "true"

	var (
		advances []advance.Advance
		err      error
	)
	if openOnly {
		advances, err = h.service.ListOpen(c.Request.Context())
	} else {
		advances, err = h.service.List(c.Request.Context())
	}
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": advances})
}
