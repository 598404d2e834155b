package domain

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCart_StartsActiveAndEmpty(t *testing.T) {
	freezeClock(t)
	userID := uuid.New()

	cart := NewCart(&userID)

	assert.Equal(t, CartActive, cart.Status)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.Total().IsZero())
	require.NotNil(t, cart.UserID)
	assert.Equal(t, userID, *cart.UserID)
}

func TestCart_AddSameVariantTwiceMergesLine(t *testing.T) {
	cart := NewCart(nil)
	v1 := uuid.New()

	require.NoError(t, cart.AddItem(v1, 1, dec("2.50")))
	require.NoError(t, cart.AddItem(v1, 4, dec("9.99")))

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	// The merged line keeps the price it was first added at.
	assert.True(t, dec("2.50").Equal(cart.Items[0].UnitPrice))
	assert.True(t, dec("12.50").Equal(cart.Total()), "total was %s", cart.Total())
}

func TestCart_UpdateQuantity(t *testing.T) {
	advance := freezeClock(t)
	cart := NewCart(nil)
	v1, v2 := uuid.New(), uuid.New()
	require.NoError(t, cart.AddItem(v1, 1, dec("1.00")))
	require.NoError(t, cart.AddItem(v2, 1, dec("2.00")))

	advance(time.Second)
	ok, err := cart.UpdateItemQuantity(v1, 7)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 7, cart.Items[0].Quantity)

	ok, err = cart.UpdateItemQuantity(v1, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, v2, cart.Items[0].VariantID)
	assert.True(t, dec("2.00").Equal(cart.Total()))
}

func TestCart_RemoveAndClear(t *testing.T) {
	cart := NewCart(nil)
	v1, v2 := uuid.New(), uuid.New()
	require.NoError(t, cart.AddItem(v1, 1, dec("1.00")))
	require.NoError(t, cart.AddItem(v2, 1, dec("1.00")))

	assert.True(t, cart.RemoveItem(v1))
	assert.False(t, cart.RemoveItem(v1))
	require.Len(t, cart.Items, 1)

	cart.Clear()
	assert.Empty(t, cart.Items)
}

func TestCart_StatusTransitions(t *testing.T) {
	cart := NewCart(nil)

	cart.MarkAbandoned()
	assert.Equal(t, CartAbandoned, cart.Status)
	cart.MarkConverted()
	assert.Equal(t, CartConverted, cart.Status)
	assert.NotNil(t, cart.ModifiedAt)
}

func TestCart_RejectsLinesOutsideColumnRanges(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		price    string
		wantErr  error
	}{
		{"max int quantity", math.MaxInt, "1.00", ErrQuantityOutOfRange},
		{"quantity just above integer range", math.MaxInt32 + 1, "1.00", ErrQuantityOutOfRange},
		{"merge overflows integer range", math.MaxInt32 - 1, "1.00", ErrQuantityOutOfRange},
		{"line total beyond numeric(18,2)", 2, "9000000000000000", ErrAmountOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := NewCart(nil)
			v := uuid.New()
			require.NoError(t, cart.AddItem(v, 2, dec("1.00")))

			err := cart.AddItem(v, tt.quantity, dec(tt.price))
			assert.ErrorIs(t, err, tt.wantErr)

			require.Len(t, cart.Items, 1)
			assert.Equal(t, 2, cart.Items[0].Quantity)
			assert.True(t, dec("2.00").Equal(cart.Total()), "total was %s", cart.Total())
		})
	}
}

func TestCart_MergeUpToIntegerLimit(t *testing.T) {
	cart := NewCart(nil)
	v := uuid.New()
	require.NoError(t, cart.AddItem(v, math.MaxInt32-1, dec("0.01")))
	require.NoError(t, cart.AddItem(v, 1, dec("0.01")))
	assert.Equal(t, math.MaxInt32, cart.Items[0].Quantity)

	ok, err := cart.UpdateItemQuantity(v, math.MaxInt32+1)
	assert.True(t, ok)
	assert.ErrorIs(t, err, ErrQuantityOutOfRange)
	assert.Equal(t, math.MaxInt32, cart.Items[0].Quantity)
}
