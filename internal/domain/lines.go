package domain

import (
	"math"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is the shape shared by cart and order items: a variant bought at a unit price.
type Line struct {
	ID        uuid.UUID       `json:"id"`
	VariantID uuid.UUID       `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// maxQuantity is the largest count the integer quantity and stock columns hold.
const maxQuantity = math.MaxInt32

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l *Line) line() *Line { return l }

// lineItem is satisfied by *CartItem and *OrderItem through the embedded Line.
type lineItem[T any] interface {
	*T
	line() *Line
}

func findLine[T any, P lineItem[T]](items []T, variantID uuid.UUID) int {
	for i := range items {
		if P(&items[i]).line().VariantID == variantID {
			return i
		}
	}
	return -1
}

// addLine merges into the existing line for variantID, keeping its unit price,
// or appends a new line built from the given price. The input slice is left
// untouched when the change is rejected.
func addLine[T any, P lineItem[T]](items []T, variantID uuid.UUID, quantity int, unitPrice decimal.Decimal, build func(Line) T) ([]T, error) {
	if err := requireID("line.variant_id", variantID); err != nil {
		return items, err
	}
	if quantity <= 0 {
		return items, ErrInvalidQuantity
	}
	if quantity > maxQuantity {
		return items, ErrQuantityOutOfRange
	}
	price, err := normalizeMoney("line.unit_price", unitPrice)
	if err != nil {
		return items, err
	}
	next := slices.Clone(items)
	if i := findLine[T, P](next, variantID); i >= 0 {
		l := P(&next[i]).line()
		if quantity > maxQuantity-l.Quantity {
			return items, ErrQuantityOutOfRange
		}
		l.Quantity += quantity
	} else {
		next = append(next, build(Line{
			ID:        uuid.New(),
			VariantID: variantID,
			Quantity:  quantity,
			UnitPrice: price,
		}))
	}
	if _, err := lineTotal[T, P](next); err != nil {
		return items, err
	}
	return next, nil
}

func removeLine[T any, P lineItem[T]](items []T, variantID uuid.UUID) ([]T, bool) {
	i := findLine[T, P](items, variantID)
	if i < 0 {
		return items, false
	}
	return slices.Delete(items, i, i+1), true
}

// setLineQuantity removes the line when quantity is zero or negative. It
// reports whether a line for variantID existed.
func setLineQuantity[T any, P lineItem[T]](items []T, variantID uuid.UUID, quantity int) ([]T, bool, error) {
	i := findLine[T, P](items, variantID)
	if i < 0 {
		return items, false, nil
	}
	if quantity <= 0 {
		return slices.Delete(items, i, i+1), true, nil
	}
	if quantity > maxQuantity {
		return items, true, ErrQuantityOutOfRange
	}
	next := slices.Clone(items)
	P(&next[i]).line().Quantity = quantity
	if _, err := lineTotal[T, P](next); err != nil {
		return items, true, err
	}
	return next, true, nil
}

func sumLines[T any, P lineItem[T]](items []T) decimal.Decimal {
	total := decimal.Zero
	for i := range items {
		total = total.Add(P(&items[i]).line().Subtotal())
	}
	return total
}

// lineTotal sums the lines and rejects a total the monetary columns cannot hold.
func lineTotal[T any, P lineItem[T]](items []T) (decimal.Decimal, error) {
	return normalizeMoney("total", sumLines[T, P](items))
}
