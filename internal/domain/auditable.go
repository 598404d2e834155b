package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// now is swapped in tests to make timestamps deterministic.
var now = func() time.Time { return time.Now().UTC() }

// Auditable carries the creation and modification stamps shared by every
// auditable entity. CreatedAt is set once by the factory; ModifiedAt is touched by
// every mutating operation.
type Auditable struct {
	CreatedAt  time.Time  `json:"created_at"`
	CreatedBy  *string    `json:"created_by,omitempty" validate:"omitempty,max=255"`
	ModifiedAt *time.Time `json:"modified_at,omitempty"`
	ModifiedBy *string    `json:"modified_by,omitempty" validate:"omitempty,max=255"`
}

func newAuditable() Auditable {
	return Auditable{CreatedAt: now()}
}

func (a *Auditable) touch() {
	t := now()
	a.ModifiedAt = &t
}

// StampCreator records who created the entity. It is a no-op once a creator is set.
func (a *Auditable) StampCreator(actor string) {
	if a.CreatedBy == nil && actor != "" {
		a.CreatedBy = &actor
	}
}

// StampModifier records who performed the latest modification.
func (a *Auditable) StampModifier(actor string) {
	if actor != "" {
		a.ModifiedBy = &actor
	}
}

const moneyScale = 2

// numeric(18,2) leaves sixteen integer digits.
var maxMoney = decimal.New(1, 16)

// normalizeMoney clamps v to two fractional digits and rejects values the
// monetary columns cannot hold.
func normalizeMoney(field string, v decimal.Decimal) (decimal.Decimal, error) {
	v = v.Round(moneyScale)
	if v.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrNegativeAmount, field)
	}
	if v.GreaterThanOrEqual(maxMoney) {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrAmountOutOfRange, field)
	}
	return v, nil
}
