package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ShipmentProvider string

const (
	ProviderMercadoEnvios ShipmentProvider = "MercadoEnvios"
	ProviderCorreo        ShipmentProvider = "Correo"
	ProviderPickup        ShipmentProvider = "Pickup"
)

var ShipmentProviders = []ShipmentProvider{ProviderMercadoEnvios, ProviderCorreo, ProviderPickup}

type ShipmentMethodStatus string

const (
	ShipmentPending    ShipmentMethodStatus = "Pending"
	ShipmentProcessing ShipmentMethodStatus = "Processing"
	ShipmentShipped    ShipmentMethodStatus = "Shipped"
	ShipmentInTransit  ShipmentMethodStatus = "InTransit"
	ShipmentDelivered  ShipmentMethodStatus = "Delivered"
	ShipmentFailed     ShipmentMethodStatus = "Failed"
	ShipmentReturned   ShipmentMethodStatus = "Returned"
)

var ShipmentMethodStatuses = []ShipmentMethodStatus{
	ShipmentPending,
	ShipmentProcessing,
	ShipmentShipped,
	ShipmentInTransit,
	ShipmentDelivered,
	ShipmentFailed,
	ShipmentReturned,
}

// Address is the destination of a shipment. Only the street line is required.
type Address struct {
	Line       string  `json:"address" validate:"required,max=500"`
	City       *string `json:"city,omitempty" validate:"omitempty,max=100"`
	State      *string `json:"state,omitempty" validate:"omitempty,max=100"`
	PostalCode *string `json:"postal_code,omitempty" validate:"omitempty,max=20"`
	Country    *string `json:"country,omitempty" validate:"omitempty,max=100"`
}

type Shipment struct {
	ID                    uuid.UUID            `json:"id"`
	OrderID               uuid.UUID            `json:"order_id"`
	Provider              ShipmentProvider     `json:"provider"`
	TrackingCode          *string              `json:"tracking_code,omitempty" validate:"omitempty,max=100"`
	Address               Address              `json:"destination"`
	Cost                  decimal.Decimal      `json:"cost"`
	Status                ShipmentMethodStatus `json:"status"`
	EstimatedDeliveryDate *time.Time           `json:"estimated_delivery_date,omitempty"`
	ActualDeliveryDate    *time.Time           `json:"actual_delivery_date,omitempty"`
	Auditable
}

func NewShipment(orderID uuid.UUID, provider ShipmentProvider, address string, cost decimal.Decimal) (*Shipment, error) {
	if err := requireID("shipment.order_id", orderID); err != nil {
		return nil, err
	}
	if !slices.Contains(ShipmentProviders, provider) {
		return nil, ErrUnknownStatus
	}
	cost, err := normalizeMoney("shipment.cost", cost)
	if err != nil {
		return nil, err
	}
	s := &Shipment{
		ID:        uuid.New(),
		OrderID:   orderID,
		Provider:  provider,
		Address:   Address{Line: strings.TrimSpace(address)},
		Cost:      cost,
		Status:    ShipmentPending,
		Auditable: newAuditable(),
	}
	if err := validateEntity("shipment", s); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Shipment) UpdateAddress(addr Address) error {
	addr.Line = strings.TrimSpace(addr.Line)
	next := *s
	next.Address = addr
	if err := validateEntity("shipment", &next); err != nil {
		return err
	}
	next.touch()
	*s = next
	return nil
}

func (s *Shipment) SetTrackingCode(code string) error {
	next := *s
	next.TrackingCode = &code
	if err := validateEntity("shipment", &next); err != nil {
		return err
	}
	next.touch()
	*s = next
	return nil
}

// UpdateStatus moves the shipment to any status. The first transition into
// Delivered records the actual delivery date; later ones leave it alone.
func (s *Shipment) UpdateStatus(status ShipmentMethodStatus) error {
	if !slices.Contains(ShipmentMethodStatuses, status) {
		return ErrUnknownStatus
	}
	s.Status = status
	s.touch()
	if status == ShipmentDelivered && s.ActualDeliveryDate == nil {
		t := *s.ModifiedAt
		s.ActualDeliveryDate = &t
	}
	return nil
}

func (s *Shipment) SetEstimatedDelivery(at time.Time) {
	at = at.UTC()
	s.EstimatedDeliveryDate = &at
	s.touch()
}

func (s *Shipment) MarkDelivered() {
	// ShipmentDelivered is always a known status.
	_ = s.UpdateStatus(ShipmentDelivered)
}
