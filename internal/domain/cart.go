package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartStatus string

const (
	CartActive    CartStatus = "Active"
	CartAbandoned CartStatus = "Abandoned"
	CartConverted CartStatus = "Converted"
)

// CartStatuses lists every status in declaration order.
var CartStatuses = []CartStatus{CartActive, CartAbandoned, CartConverted}

// CartItem is a line owned by a cart.
type CartItem struct {
	Line
	CartID uuid.UUID `json:"cart_id"`
}

// Cart is a shopping basket, optionally tied to a user. Its total is not stored;
// it is computed from the current lines on demand.
type Cart struct {
	ID     uuid.UUID  `json:"id"`
	UserID *uuid.UUID `json:"user_id,omitempty"`
	Status CartStatus `json:"status"`
	Items  []CartItem `json:"items"`
	Auditable
}

func NewCart(userID *uuid.UUID) *Cart {
	return &Cart{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    CartActive,
		Items:     []CartItem{},
		Auditable: newAuditable(),
	}
}

// AddItem adds quantity of a variant, merging with an existing line for it.
func (c *Cart) AddItem(variantID uuid.UUID, quantity int, unitPrice decimal.Decimal) error {
	items, err := addLine(c.Items, variantID, quantity, unitPrice, func(l Line) CartItem {
		return CartItem{Line: l, CartID: c.ID}
	})
	if err != nil {
		return err
	}
	c.Items = items
	c.touch()
	return nil
}

// RemoveItem deletes the line for variantID and reports whether one existed.
func (c *Cart) RemoveItem(variantID uuid.UUID) bool {
	items, ok := removeLine(c.Items, variantID)
	if ok {
		c.Items = items
		c.touch()
	}
	return ok
}

// UpdateItemQuantity sets the quantity of a line; zero or less removes it. It
// reports whether the cart held a line for variantID.
func (c *Cart) UpdateItemQuantity(variantID uuid.UUID, quantity int) (bool, error) {
	items, ok, err := setLineQuantity(c.Items, variantID, quantity)
	if err != nil || !ok {
		return ok, err
	}
	c.Items = items
	c.touch()
	return true, nil
}

func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.touch()
}

func (c *Cart) MarkAbandoned() {
	c.Status = CartAbandoned
	c.touch()
}

func (c *Cart) MarkConverted() {
	c.Status = CartConverted
	c.touch()
}

// Total is the sum of the lines. Line mutators keep it within numeric(18,2).
func (c *Cart) Total() decimal.Decimal {
	return sumLines(c.Items)
}
