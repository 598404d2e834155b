package domain

import (
	"slices"

	"github.com/google/uuid"
)

type MovementReason string

const (
	ReasonPurchase   MovementReason = "Purchase"
	ReasonSale       MovementReason = "Sale"
	ReasonAdjustment MovementReason = "Adjustment"
	ReasonReturn     MovementReason = "Return"
	ReasonDamage     MovementReason = "Damage"
	ReasonLoss       MovementReason = "Loss"
	ReasonTransfer   MovementReason = "Transfer"
)

var MovementReasons = []MovementReason{
	ReasonPurchase, ReasonSale, ReasonAdjustment, ReasonReturn, ReasonDamage, ReasonLoss, ReasonTransfer,
}

// InventoryMovement is an append-only stock ledger entry. Quantity is signed:
// positive adds stock, negative removes it. Only the notes may change later.
type InventoryMovement struct {
	ID          uuid.UUID      `json:"id"`
	VariantID   uuid.UUID      `json:"variant_id"`
	Quantity    int            `json:"quantity"`
	Reason      MovementReason `json:"reason"`
	PerformedBy uuid.UUID      `json:"performed_by"`
	Notes       *string        `json:"notes,omitempty" validate:"omitempty,max=500"`
	Auditable
}

func NewInventoryMovement(variantID uuid.UUID, quantity int, reason MovementReason, performedBy uuid.UUID, notes *string) (*InventoryMovement, error) {
	if err := requireID("inventory_movement.variant_id", variantID); err != nil {
		return nil, err
	}
	if err := requireID("inventory_movement.performed_by", performedBy); err != nil {
		return nil, err
	}
	if quantity == 0 {
		return nil, ErrZeroMovement
	}
	if quantity < -maxQuantity || quantity > maxQuantity {
		return nil, ErrQuantityOutOfRange
	}
	if !slices.Contains(MovementReasons, reason) {
		return nil, ErrUnknownStatus
	}
	m := &InventoryMovement{
		ID:          uuid.New(),
		VariantID:   variantID,
		Quantity:    quantity,
		Reason:      reason,
		PerformedBy: performedBy,
		Notes:       notes,
		Auditable:   newAuditable(),
	}
	if err := validateEntity("inventory_movement", m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *InventoryMovement) UpdateNotes(notes *string) error {
	next := *m
	next.Notes = notes
	if err := validateEntity("inventory_movement", &next); err != nil {
		return err
	}
	next.touch()
	*m = next
	return nil
}
