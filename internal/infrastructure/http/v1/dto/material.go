package dto

import (
	"kasira/internal/core/types"
	"kasira/internal/domain/material"
)

// CreateMaterialRequest is the request body for creating a material.
type CreateMaterialRequest struct {
	Name           string         `json:"name" binding:"required"`
	Kind           material.Kind  `json:"kind" binding:"required"`
	Unit           string         `json:"unit"`
	PricePerUnit   types.Money    `json:"pricePerUnit"`
	RemainingStock types.Quantity `json:"remainingStock"`
	MinStock       types.Quantity `json:"minStock"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateMaterialRequest) ToEntity() *material.Material {
	m := material.New(r.Name, r.Kind, r.Unit, r.PricePerUnit)
	m.RemainingStock = r.RemainingStock
	m.MinStock = r.MinStock
	return m
}

// UpdateMaterialRequest is the request body for updating a material.
// Counters are absent on purpose: they move only through the movement engine.
type UpdateMaterialRequest struct {
	Name         string        `json:"name" binding:"required"`
	Kind         material.Kind `json:"kind" binding:"required"`
	Unit         string        `json:"unit"`
	PricePerUnit types.Money   `json:"pricePerUnit"`
	MinStock     types.Quantity `json:"minStock"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateMaterialRequest) ApplyTo(m *material.Material) {
	m.Name = r.Name
	m.Kind = r.Kind
	m.Unit = r.Unit
	m.PricePerUnit = r.PricePerUnit
	m.MinStock = r.MinStock
}

// AdjustStockRequest is the request body for a stock opname adjustment.
type AdjustStockRequest struct {
	NewQuantity types.Quantity `json:"newQuantity"`
	Note        string         `json:"note"`
}

// MovementListQuery narrows movement history listing.
type MovementListQuery struct {
	MaterialID string `form:"materialId"`
	Type       string `form:"type"`
	Reason     string `form:"reason"`
	From       string `form:"from"`
	To         string `form:"to"`
	Limit      int    `form:"limit"`
	Offset     int    `form:"offset"`
}
