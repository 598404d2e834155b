package domain

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freezeClock pins now() for the duration of a test and returns a function that
// advances it.
func freezeClock(t *testing.T) func(time.Duration) {
	t.Helper()
	current := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	original := now
	now = func() time.Time { return current }
	t.Cleanup(func() { now = original })
	return func(d time.Duration) { current = current.Add(d) }
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewOrder_InitialState(t *testing.T) {
	freezeClock(t)

	order, err := NewOrder("ORD-0001", nil)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, order.ID)
	assert.Equal(t, OrderDraft, order.Status)
	assert.Equal(t, PaymentPending, order.PaymentStatus)
	assert.Equal(t, ShippingPending, order.ShippingStatus)
	assert.True(t, order.Total.IsZero())
	assert.Empty(t, order.Items)
	assert.Nil(t, order.ModifiedAt)
}

func TestNewOrder_RejectsEmptyNumber(t *testing.T) {
	_, err := NewOrder("   ", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestOrder_AddSameVariantTwiceMergesLine(t *testing.T) {
	advance := freezeClock(t)
	order, err := NewOrder("ORD-0001", nil)
	require.NoError(t, err)
	v1 := uuid.New()

	require.NoError(t, order.AddItem(v1, 2, dec("10.00")))
	firstTouch := *order.ModifiedAt
	advance(time.Minute)
	require.NoError(t, order.AddItem(v1, 3, dec("10.00")))

	require.Len(t, order.Items, 1)
	assert.Equal(t, 5, order.Items[0].Quantity)
	assert.Equal(t, order.ID, order.Items[0].OrderID)
	assert.True(t, dec("50.00").Equal(order.Total), "total was %s", order.Total)
	assert.True(t, order.ModifiedAt.After(firstTouch))
}

func TestOrder_TotalTracksEveryLineChange(t *testing.T) {
	order, err := NewOrder("ORD-0002", nil)
	require.NoError(t, err)
	v1, v2, v3 := uuid.New(), uuid.New(), uuid.New()

	require.NoError(t, order.AddItem(v1, 2, dec("19.99")))
	require.NoError(t, order.AddItem(v2, 1, dec("5.50")))
	require.NoError(t, order.AddItem(v3, 4, dec("0.25")))
	assert.True(t, dec("46.48").Equal(order.Total), "total was %s", order.Total)

	ok, err := order.UpdateItemQuantity(v2, 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, dec("57.48").Equal(order.Total), "total was %s", order.Total)

	assert.True(t, order.RemoveItem(v1))
	assert.True(t, dec("17.50").Equal(order.Total), "total was %s", order.Total)

	ok, err = order.UpdateItemQuantity(v3, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, order.Items, 1)
	assert.True(t, dec("16.50").Equal(order.Total), "total was %s", order.Total)
}

func TestOrder_UpdateQuantityToNegativeRemovesLine(t *testing.T) {
	order, err := NewOrder("ORD-0003", nil)
	require.NoError(t, err)
	v1 := uuid.New()
	require.NoError(t, order.AddItem(v1, 2, dec("3.00")))

	ok, err := order.UpdateItemQuantity(v1, -4)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, order.Items)
	assert.True(t, order.Total.IsZero())
}

func TestOrder_UnknownVariantIsNoop(t *testing.T) {
	order, err := NewOrder("ORD-0004", nil)
	require.NoError(t, err)

	assert.False(t, order.RemoveItem(uuid.New()))
	ok, err := order.UpdateItemQuantity(uuid.New(), 3)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, order.ModifiedAt)
}

func TestOrder_AddItemRejectsInvalidInput(t *testing.T) {
	order, err := NewOrder("ORD-0005", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, order.AddItem(uuid.New(), 0, dec("1.00")), ErrInvalidQuantity)
	assert.ErrorIs(t, order.AddItem(uuid.New(), 1, dec("-1.00")), ErrNegativeAmount)
	assert.ErrorIs(t, order.AddItem(uuid.Nil, 1, dec("1.00")), ErrMissingReference)
	assert.Empty(t, order.Items)
}

func TestOrder_StatusSettersAreUnguarded(t *testing.T) {
	order, err := NewOrder("ORD-0006", nil)
	require.NoError(t, err)

	require.NoError(t, order.UpdateStatus(OrderDelivered))
	require.NoError(t, order.UpdateStatus(OrderDraft))
	assert.Equal(t, OrderDraft, order.Status)

	require.NoError(t, order.UpdatePaymentStatus(PaymentRefunded))
	require.NoError(t, order.UpdateShippingStatus(ShippingInTransit))
	assert.ErrorIs(t, order.UpdateStatus("Teleported"), ErrUnknownStatus)
	assert.NotNil(t, order.ModifiedAt)
}

func TestOrder_AttachPaymentAndShipment(t *testing.T) {
	order, err := NewOrder("ORD-0007", nil)
	require.NoError(t, err)

	payment, err := order.AttachPayment(ProviderStripe, dec("12.345"), nil)
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodPending, payment.Status)
	assert.True(t, dec("12.35").Equal(payment.Amount), "amount was %s", payment.Amount)

	shipment, err := order.AttachShipment(ProviderCorreo, "Av. Siempre Viva 742", dec("4.00"))
	require.NoError(t, err)
	assert.Equal(t, order.ID, shipment.OrderID)

	assert.Len(t, order.Payments, 1)
	assert.Len(t, order.Shipments, 1)
}

func TestOrder_LineMutationsStayWithinColumnRanges(t *testing.T) {
	tests := []struct {
		name    string
		run     func(o *Order, v uuid.UUID) error
		wantErr error
	}{
		{
			name:    "quantity above integer range",
			run:     func(o *Order, v uuid.UUID) error { return o.AddItem(v, math.MaxInt32+1, dec("1.00")) },
			wantErr: ErrQuantityOutOfRange,
		},
		{
			name: "merged quantity above integer range",
			run: func(o *Order, v uuid.UUID) error {
				return o.AddItem(v, 1_147_483_648, dec("1.00"))
			},
			wantErr: ErrQuantityOutOfRange,
		},
		{
			name:    "total beyond numeric(18,2)",
			run:     func(o *Order, v uuid.UUID) error { return o.AddItem(uuid.New(), 2, dec("9000000000000000")) },
			wantErr: ErrAmountOutOfRange,
		},
		{
			name: "updated quantity above integer range",
			run: func(o *Order, v uuid.UUID) error {
				_, err := o.UpdateItemQuantity(v, math.MaxInt32+1)
				return err
			},
			wantErr: ErrQuantityOutOfRange,
		},
		{
			name: "updated quantity pushes total beyond numeric(18,2)",
			run: func(o *Order, v uuid.UUID) error {
				_, err := o.UpdateItemQuantity(v, 2_000_000_000)
				return err
			},
			wantErr: ErrAmountOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := NewOrder("ORD-0100", nil)
			require.NoError(t, err)
			v := uuid.New()
			require.NoError(t, order.AddItem(v, 1_000_000_000, dec("5000000.00")))
			beforeTouch := *order.ModifiedAt

			err = tt.run(order, v)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrValidation)

			require.Len(t, order.Items, 1)
			assert.Equal(t, 1_000_000_000, order.Items[0].Quantity)
			assert.True(t, dec("5000000000000000").Equal(order.Total), "total was %s", order.Total)
			assert.Equal(t, beforeTouch, *order.ModifiedAt)
		})
	}
}

func TestOrder_AttachedPaymentsStayLinked(t *testing.T) {
	order, err := NewOrder("ORD-0101", nil)
	require.NoError(t, err)

	first, err := order.AttachPayment(ProviderCash, dec("10.00"), nil)
	require.NoError(t, err)
	second, err := order.AttachPayment(ProviderStripe, dec("5.00"), nil)
	require.NoError(t, err)
	firstShipment, err := order.AttachShipment(ProviderPickup, "Local 1", dec("0"))
	require.NoError(t, err)
	_, err = order.AttachShipment(ProviderCorreo, "Calle 2", dec("3.00"))
	require.NoError(t, err)

	first.Approve()
	require.NoError(t, second.Reject("card declined"))
	firstShipment.MarkDelivered()

	assert.Equal(t, PaymentMethodApproved, order.Payments[0].Status)
	assert.Equal(t, PaymentMethodRejected, order.Payments[1].Status)
	assert.Equal(t, ShipmentDelivered, order.Shipments[0].Status)
	assert.Equal(t, ShipmentPending, order.Shipments[1].Status)

	found, ok := order.Payment(first.ID)
	require.True(t, ok)
	assert.Same(t, first, found)
	_, ok = order.Payment(uuid.New())
	assert.False(t, ok)
}
