package domain

import (
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentProvider string

const (
	ProviderMercadoPago PaymentProvider = "MercadoPago"
	ProviderStripe      PaymentProvider = "Stripe"
	ProviderCash        PaymentProvider = "Cash"
)

var PaymentProviders = []PaymentProvider{ProviderMercadoPago, ProviderStripe, ProviderCash}

// PaymentMethodStatus is the lifecycle of a single payment attempt, as reported by
// its provider. The usual path is Pending, then Processing/Approved/Rejected/Cancelled,
// then Refunded, but transitions are not enforced.
type PaymentMethodStatus string

const (
	PaymentMethodPending    PaymentMethodStatus = "Pending"
	PaymentMethodProcessing PaymentMethodStatus = "Processing"
	PaymentMethodApproved   PaymentMethodStatus = "Approved"
	PaymentMethodRejected   PaymentMethodStatus = "Rejected"
	PaymentMethodCancelled  PaymentMethodStatus = "Cancelled"
	PaymentMethodRefunded   PaymentMethodStatus = "Refunded"
)

var PaymentMethodStatuses = []PaymentMethodStatus{
	PaymentMethodPending,
	PaymentMethodProcessing,
	PaymentMethodApproved,
	PaymentMethodRejected,
	PaymentMethodCancelled,
	PaymentMethodRefunded,
}

type Payment struct {
	ID                uuid.UUID           `json:"id"`
	OrderID           uuid.UUID           `json:"order_id"`
	Provider          PaymentProvider     `json:"provider"`
	ProviderPaymentID *string             `json:"provider_payment_id,omitempty" validate:"omitempty,max=100"`
	Amount            decimal.Decimal     `json:"amount"`
	Status            PaymentMethodStatus `json:"status"`
	FailureReason     *string             `json:"failure_reason,omitempty" validate:"omitempty,max=500"`
	Auditable
}

func NewPayment(orderID uuid.UUID, provider PaymentProvider, amount decimal.Decimal, providerPaymentID *string) (*Payment, error) {
	if err := requireID("payment.order_id", orderID); err != nil {
		return nil, err
	}
	if !slices.Contains(PaymentProviders, provider) {
		return nil, ErrUnknownStatus
	}
	amount, err := normalizeMoney("payment.amount", amount)
	if err != nil {
		return nil, err
	}
	p := &Payment{
		ID:                uuid.New(),
		OrderID:           orderID,
		Provider:          provider,
		ProviderPaymentID: providerPaymentID,
		Amount:            amount,
		Status:            PaymentMethodPending,
		Auditable:         newAuditable(),
	}
	if err := validateEntity("payment", p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateStatus moves the payment to any status and replaces the failure reason.
func (p *Payment) UpdateStatus(status PaymentMethodStatus, failureReason *string) error {
	if !slices.Contains(PaymentMethodStatuses, status) {
		return ErrUnknownStatus
	}
	next := *p
	next.Status = status
	next.FailureReason = failureReason
	if err := validateEntity("payment", &next); err != nil {
		return err
	}
	next.touch()
	*p = next
	return nil
}

func (p *Payment) SetProviderPaymentID(id string) error {
	next := *p
	next.ProviderPaymentID = &id
	if err := validateEntity("payment", &next); err != nil {
		return err
	}
	next.touch()
	*p = next
	return nil
}

func (p *Payment) Approve() {
	p.Status = PaymentMethodApproved
	p.FailureReason = nil
	p.touch()
}

func (p *Payment) Reject(reason string) error {
	return p.UpdateStatus(PaymentMethodRejected, &reason)
}

func (p *Payment) Refund() {
	p.Status = PaymentMethodRefunded
	p.touch()
}
