package domain

import (
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderDraft     OrderStatus = "Draft"
	OrderConfirmed OrderStatus = "Confirmed"
	OrderPaid      OrderStatus = "Paid"
	OrderShipped   OrderStatus = "Shipped"
	OrderDelivered OrderStatus = "Delivered"
	OrderCancelled OrderStatus = "Cancelled"
)

var OrderStatuses = []OrderStatus{OrderDraft, OrderConfirmed, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentPaid     PaymentStatus = "Paid"
	PaymentFailed   PaymentStatus = "Failed"
	PaymentRefunded PaymentStatus = "Refunded"
)

var PaymentStatuses = []PaymentStatus{PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded}

type ShippingStatus string

const (
	ShippingPending    ShippingStatus = "Pending"
	ShippingProcessing ShippingStatus = "Processing"
	ShippingShipped    ShippingStatus = "Shipped"
	ShippingInTransit  ShippingStatus = "InTransit"
	ShippingDelivered  ShippingStatus = "Delivered"
	ShippingFailed     ShippingStatus = "Failed"
)

var ShippingStatuses = []ShippingStatus{ShippingPending, ShippingProcessing, ShippingShipped, ShippingInTransit, ShippingDelivered, ShippingFailed}

// OrderItem is a line owned by an order.
type OrderItem struct {
	Line
	OrderID uuid.UUID `json:"order_id"`
}

// Order is the purchase aggregate. It owns its items, payments and shipments, and
// keeps Total equal to the sum of its lines after every line change.
type Order struct {
	ID             uuid.UUID       `json:"id"`
	Number         string          `json:"number" validate:"required,max=50"`
	UserID         *uuid.UUID      `json:"user_id,omitempty"`
	Total          decimal.Decimal `json:"total"`
	Status         OrderStatus     `json:"status"`
	PaymentStatus  PaymentStatus   `json:"payment_status"`
	ShippingStatus ShippingStatus  `json:"shipping_status"`
	Items          []OrderItem     `json:"items"`
	Payments       []*Payment      `json:"payments"`
	Shipments      []*Shipment     `json:"shipments"`
	Auditable
}

func NewOrder(number string, userID *uuid.UUID) (*Order, error) {
	o := &Order{
		ID:             uuid.New(),
		Number:         strings.TrimSpace(number),
		UserID:         userID,
		Total:          decimal.Zero,
		Status:         OrderDraft,
		PaymentStatus:  PaymentPending,
		ShippingStatus: ShippingPending,
		Items:          []OrderItem{},
		Payments:       []*Payment{},
		Shipments:      []*Shipment{},
		Auditable:      newAuditable(),
	}
	if err := validateEntity("order", o); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Order) AddItem(variantID uuid.UUID, quantity int, unitPrice decimal.Decimal) error {
	items, err := addLine(o.Items, variantID, quantity, unitPrice, func(l Line) OrderItem {
		return OrderItem{Line: l, OrderID: o.ID}
	})
	if err != nil {
		return err
	}
	o.Items = items
	o.recalculateTotal()
	return nil
}

func (o *Order) RemoveItem(variantID uuid.UUID) bool {
	items, ok := removeLine(o.Items, variantID)
	if ok {
		o.Items = items
		o.recalculateTotal()
	}
	return ok
}

// UpdateItemQuantity sets the quantity of a line; zero or less removes it. It
// reports whether the order held a line for variantID.
func (o *Order) UpdateItemQuantity(variantID uuid.UUID, quantity int) (bool, error) {
	items, ok, err := setLineQuantity(o.Items, variantID, quantity)
	if err != nil || !ok {
		return ok, err
	}
	o.Items = items
	o.recalculateTotal()
	return true, nil
}

func (o *Order) UpdateStatus(status OrderStatus) error {
	if !slices.Contains(OrderStatuses, status) {
		return ErrUnknownStatus
	}
	o.Status = status
	o.touch()
	return nil
}

func (o *Order) UpdatePaymentStatus(status PaymentStatus) error {
	if !slices.Contains(PaymentStatuses, status) {
		return ErrUnknownStatus
	}
	o.PaymentStatus = status
	o.touch()
	return nil
}

func (o *Order) UpdateShippingStatus(status ShippingStatus) error {
	if !slices.Contains(ShippingStatuses, status) {
		return ErrUnknownStatus
	}
	o.ShippingStatus = status
	o.touch()
	return nil
}

// AttachPayment creates a pending payment against this order. The returned
// payment is the one held in o.Payments.
func (o *Order) AttachPayment(provider PaymentProvider, amount decimal.Decimal, providerPaymentID *string) (*Payment, error) {
	p, err := NewPayment(o.ID, provider, amount, providerPaymentID)
	if err != nil {
		return nil, err
	}
	o.Payments = append(o.Payments, p)
	o.touch()
	return p, nil
}

// AttachShipment creates a pending shipment against this order.
func (o *Order) AttachShipment(provider ShipmentProvider, address string, cost decimal.Decimal) (*Shipment, error) {
	s, err := NewShipment(o.ID, provider, address, cost)
	if err != nil {
		return nil, err
	}
	o.Shipments = append(o.Shipments, s)
	o.touch()
	return s, nil
}

// Payment returns the attached payment with the given id.
func (o *Order) Payment(id uuid.UUID) (*Payment, bool) {
	for _, p := range o.Payments {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// recalculateTotal runs after line mutators that already bounded the total.
func (o *Order) recalculateTotal() {
	o.Total = sumLines(o.Items)
	o.touch()
}
