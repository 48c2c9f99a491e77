package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kasira/internal/domain/material"
	"kasira/internal/infrastructure/http/v1/dto"
)

// MaterialHandler serves material catalog and movement endpoints.
type MaterialHandler struct {
	*BaseHandler
	service *material.Service
	loc     *time.Location
}

// NewMaterialHandler creates a new material handler.
func NewMaterialHandler(base *BaseHandler, service *material.Service, loc *time.Location) *MaterialHandler {
	return &MaterialHandler{BaseHandler: base, service: service, loc: loc}
}

// Create handles POST /materials.
func (h *MaterialHandler) Create(c *gin.Context) {
	var req dto.CreateMaterialRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), m); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// Get handles GET /materials/:id.
func (h *MaterialHandler) Get(c *gin.Context) {
	materialID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	m, err := h.service.GetByID(c.Request.Context(), materialID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// Update handles PUT /materials/:id.
func (h *MaterialHandler) Update(c *gin.Context) {
	materialID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateMaterialRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m, err := h.service.GetByID(c.Request.Context(), materialID)
	if err != nil {
		h.Error(c, err)
		return
	}
	req.ApplyTo(m)
	if err := h.service.Update(c.Request.Context(), m); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// List handles GET /materials.
func (h *MaterialHandler) List(c *gin.Context) {
	belowMin := c.Query("belowMinimum") == "true"

	var (
		materials []material.Material
		err       error
	)
	if belowMin {
		materials, err = h.service.ListBelowMinimum(c.Request.Context())
	} else {
		materials, err = h.service.List(c.Request.Context())
	}
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": materials})
}

// Adjust handles POST /materials/:id/adjust (stock opname).
func (h *MaterialHandler) Adjust(c *gin.Context) {
	materialID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	movement, err := h.service.Adjust(c.Request.Context(), materialID, req.NewQuantity, req.Note)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, movement)
}

// Movements handles GET /materials/movements.
func (h *MaterialHandler) Movements(c *gin.Context) {
	var query dto.MovementListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter := material.MovementFilter{
		Limit:  query.Limit,
		Offset: query.Offset,
	}
	if query.MaterialID != "" {
		materialID, ok := h.ParseIDString(c, query.MaterialID, "materialId")
		if !ok {
			return
		}
		filter.MaterialID = &materialID
	}
	if query.Type != "" {
		movementType, err := material.ParseMovementType(query.Type)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.Type = &movementType
	}
	if query.Reason != "" {
		reason, err := material.ParseMovementReason(query.Reason)
		if err != nil {
			h.Error(c, err)
			return
		}
		filter.Reason = &reason
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

	movements, err := h.service.ListMovements(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": movements})
}
