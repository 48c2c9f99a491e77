// Package material provides the material catalog and the stock movement
// accounting that keeps it consistent with production and purchasing.
package material

import (
	"context"
	"time"

	"kasira/internal/core/apperror"
	"kasira/internal/core/id"
	"kasira/internal/core/types"
)

// Kind classifies how a material's quantity is accounted.
//
// Stock materials hold physical inventory: RemainingStock is what is left on
// the shelf. Beli (bought per order) and Jasa (outsourced service) materials
// hold no inventory; for them only CumulativeUsage moves, counting how much
// has ever been consumed. The historical schema overloaded one `stock` column
// with both meanings; the two fields here replace that overload.
type Kind string

const (
	KindStock Kind = "stock"
	KindBeli  Kind = "beli"
	KindJasa  Kind = "jasa"
)

// Material is one catalog row.
type Material struct {
	ID   id.ID  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Kind Kind   `db:"kind" json:"kind"`
	Unit string `db:"unit" json:"unit"`

	PricePerUnit types.Money `db:"price_per_unit" json:"pricePerUnit"`

	// RemainingStock is on-hand inventory. Valid for KindStock only.
	RemainingStock types.Quantity `db:"remaining_stock" json:"remainingStock"`

	// CumulativeUsage counts total consumption. Valid for KindBeli/KindJasa.
	CumulativeUsage types.Quantity `db:"cumulative_usage" json:"cumulativeUsage"`

	// MinStock is the reorder threshold for KindStock materials.
	MinStock types.Quantity `db:"min_stock" json:"minStock"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a material with generated ID.
func New(name string, kind Kind, unit string, pricePerUnit types.Money) *Material {
	now := time.Now().UTC()
	return &Material{
		ID:           id.New(),
		Name:         name,
		Kind:         kind,
		Unit:         unit,
		PricePerUnit: pricePerUnit,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// TracksInventory reports whether the material carries on-hand stock.
func (m *Material) TracksInventory() bool {
	return m.Kind == KindStock
}

// IsBelowMinimum reports whether on-hand stock fell under the reorder threshold.
func (m *Material) IsBelowMinimum() bool {
	return m.TracksInventory() && !m.MinStock.IsZero() && m.RemainingStock < m.MinStock
}

// Validate implements invariant checks.
func (m *Material) Validate(ctx context.Context) error {
	if m.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	switch m.Kind {
	case KindStock, KindBeli, KindJasa:
	default:
		return apperror.NewValidation("invalid material kind").
			WithDetail("field", "kind").
			WithDetail("value", string(m.Kind))
	}
	if m.RemainingStock.IsNegative() || m.CumulativeUsage.IsNegative() {
		return apperror.NewValidation("stock counters cannot be negative")
	}
	return nil
}

// MovementType tags movement direction.
type MovementType string

const (
	MovementIn         MovementType = "IN"
	MovementOut        MovementType = "OUT"
	MovementAdjustment MovementType = "ADJUSTMENT"
)

// MovementReason tags why stock moved.
type MovementReason string

const (
	ReasonPurchase              MovementReason = "PURCHASE"
	ReasonProductionConsumption MovementReason = "PRODUCTION_CONSUMPTION"
	ReasonProductionAcquisition MovementReason = "PRODUCTION_ACQUISITION"
	ReasonAdjustment            MovementReason = "ADJUSTMENT"
)

// ParseMovementType validates a movement type literal from the API.
func ParseMovementType(s string) (MovementType, error) {
	switch t := MovementType(s); t {
	case MovementIn, MovementOut, MovementAdjustment:
		return t, nil
	}
	return "", apperror.NewValidation("invalid movement type").
		WithDetail("field", "type").
		WithDetail("value", s)
}

// ParseMovementReason validates a movement reason literal from the API.
// PRODUCTION_ACQUISITION appears only on rows migrated from the historical
// movement log, but it stays a queryable value.
func ParseMovementReason(s string) (MovementReason, error) {
	switch r := MovementReason(s); r {
	case ReasonPurchase, ReasonProductionConsumption, ReasonProductionAcquisition, ReasonAdjustment:
		return r, nil
	}
	return "", apperror.NewValidation("invalid movement reason").
		WithDetail("field", "reason").
		WithDetail("value", s)
}

// Movement is one append-only audit row of a stock change. PreviousStock and
// NewStock snapshot whichever counter moved: RemainingStock for stock-kind
// materials, CumulativeUsage for beli/jasa.
//
// For stock-kind rows NewStock == PreviousStock + quantity when Type is IN and
// PreviousStock - quantity when OUT (less any recorded Shortage). Beli/jasa
// consumption is the documented exception: the movement is OUT because it tags
// the semantic direction (consumption), yet the usage counter increases.
type Movement struct {
	ID         id.ID          `db:"id" json:"id"`
	MaterialID id.ID          `db:"material_id" json:"materialId"`
	Type       MovementType   `db:"movement_type" json:"type"`
	Reason     MovementReason `db:"reason" json:"reason"`

	Quantity      types.Quantity `db:"quantity" json:"quantity"`
	PreviousStock types.Quantity `db:"previous_stock" json:"previousStock"`
	NewStock      types.Quantity `db:"new_stock" json:"newStock"`

	// Shortage records the clamped portion when consumption exceeded on-hand
	// stock. Zero on every other row.
	Shortage types.Quantity `db:"shortage" json:"shortage,omitempty"`

	ReferenceID   *id.ID `db:"reference_id" json:"referenceId,omitempty"`
	ReferenceType string `db:"reference_type" json:"referenceType,omitempty"`
	Note          string `db:"note" json:"note,omitempty"`

	CreatedBy     string    `db:"created_by" json:"createdBy,omitempty"`
	CreatedByName string    `db:"created_by_name" json:"createdByName,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}
