// Package baseunit converts token amounts between human precision and
// base-unit integer representation. All conversions round down so an amount
// that will be sent can never exceed what the caller holds.
package baseunit

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// ToBaseUnit converts a human-precision amount to base units at the given
// decimal exponent, rounding down.
func ToBaseUnit(amount decimal.Decimal, precision int32) *big.Int {
	return amount.Shift(precision).Floor().BigInt()
}

// FromBaseUnit converts a base-unit amount back to human precision.
func FromBaseUnit(amount *big.Int, precision int32) decimal.Decimal {
	return decimal.NewFromBigInt(amount, -precision)
}

// ConvertPrecision rescales a base-unit amount from one decimal exponent to
// another, rounding down when the target is coarser.
func ConvertPrecision(amount *big.Int, from, to int32) *big.Int {
	return ToBaseUnit(FromBaseUnit(amount, from), to)
}

// TruncatesAt reports whether rescaling amount from one exponent to a coarser
// one loses precision.
func TruncatesAt(amount *big.Int, from, to int32) bool {
	if to >= from {
		return false
	}
	back := ConvertPrecision(ConvertPrecision(amount, from, to), to, from)
	return back.Cmp(amount) != 0
}
