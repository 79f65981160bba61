package wallet

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// TokenDecimals is the ExpenseToken's decimals().
const TokenDecimals = 18

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount parses a positive token amount such as "12.50". More than
// TokenDecimals fractional digits cannot be represented on chain and are
// rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	if d.Exponent() < -TokenDecimals && !d.Equal(d.Truncate(TokenDecimals)) {
		return decimal.Zero, fmt.Errorf("%w: more than %d decimal places", ErrInvalidAmount, TokenDecimals)
	}
	return d, nil
}

// ToBaseUnits converts a token amount to integer base units, truncating
// anything below the smallest unit.
func ToBaseUnits(d decimal.Decimal, decimals int32) *big.Int {
	return d.Shift(decimals).Truncate(0).BigInt()
}

// FromBaseUnits converts integer base units (possibly negative, as returned
// by int256 balance views) to a token amount.
func FromBaseUnits(v *big.Int, decimals int32) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, -decimals)
}

// FormatAmount renders an amount with two decimals, keeping up to six when
// the value needs them.
func FormatAmount(d decimal.Decimal) string {
	if d.Equal(d.Truncate(2)) {
		return d.StringFixed(2)
	}
	return d.Truncate(6).String()
}
