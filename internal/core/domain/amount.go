package domain

import (
	"fmt"

	"github.com/ptbooks/journal_backend/internal/apperrors"
	"github.com/shopspring/decimal"
)

// PlainString renders a decimal with the scale it carries, keeping trailing
// fractional zeros. decimal.Decimal.String trims them, which would turn a
// written "1000.00" into "1000" and lose the declared scale.
func PlainString(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

// Amount is a signed exact quantity of a single commodity.
// The quantity keeps the scale it was constructed with; it is never
// normalized, so "1000.00" stays "1000.00" through arithmetic and
// serialization.
type Amount struct {
	Commodity string          `json:"commodity"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// NewAmount creates an amount for the given commodity code.
func NewAmount(commodity string, quantity decimal.Decimal) (Amount, error) {
	if commodity == "" {
		return Amount{}, fmt.Errorf("%w: commodity cannot be blank", apperrors.ErrValidation)
	}
	return Amount{Commodity: commodity, Quantity: quantity}, nil
}

// NewAmountFromString creates an amount from a decimal token as written in
// the source text, preserving its scale.
func NewAmountFromString(commodity, quantity string) (Amount, error) {
	q, err := decimal.NewFromString(quantity)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q", apperrors.ErrMalformedAmount, quantity)
	}
	return NewAmount(commodity, q)
}

// Negate returns the amount with its quantity negated.
func (a Amount) Negate() Amount {
	return Amount{Commodity: a.Commodity, Quantity: a.Quantity.Neg()}
}

// Add returns the sum of two amounts of the same commodity. The result keeps
// the larger of the two scales.
func (a Amount) Add(other Amount) (Amount, error) {
	if a.Commodity != other.Commodity {
		return Amount{}, fmt.Errorf("%w: cannot add %s and %s",
			apperrors.ErrCommodityMismatch, a.Commodity, other.Commodity)
	}
	return Amount{Commodity: a.Commodity, Quantity: a.Quantity.Add(other.Quantity)}, nil
}

// IsZero reports whether the quantity compares equal to zero, ignoring scale.
func (a Amount) IsZero() bool {
	return a.Quantity.IsZero()
}
