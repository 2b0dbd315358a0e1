package domain

import (
	"fmt"

	"github.com/ptbooks/journal_backend/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Commodity is a currency or unit declaration with its display precision.
// The precision is carried as a decimal so that the number of declared
// fractional digits survives a round trip (1000.00 declares 2 places).
type Commodity struct {
	Code             string          `json:"code"`
	DisplayPrecision decimal.Decimal `json:"displayPrecision"`
}

// NewCommodity creates a commodity declaration.
func NewCommodity(code string, displayPrecision decimal.Decimal) (Commodity, error) {
	if code == "" {
		return Commodity{}, fmt.Errorf("%w: commodity code cannot be blank", apperrors.ErrValidation)
	}
	return Commodity{Code: code, DisplayPrecision: displayPrecision}, nil
}

// DecimalPlaces returns the number of declared fractional digits.
// For 1000.00 this is 2, for 1000.000 it is 3.
func (c Commodity) DecimalPlaces() int32 {
	return -c.DisplayPrecision.Exponent()
}
