package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kasira/internal/infrastructure/storage/postgres"
)

// AuditHandler serves the admin audit trail.
type AuditHandler struct {
	*BaseHandler
	audit *postgres.AuditService
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, audit *postgres.AuditService) *AuditHandler {
	return &AuditHandler{BaseHandler: base, audit: audit}
}

// History handles GET /admin/audit/:entityType/:entityId?limit=N.
func (h *AuditHandler) History(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 50)

	entries, err := h.audit.GetEntityHistory(c.Request.Context(),
		c.Param("entityType"), c.Param("entityId"), limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
