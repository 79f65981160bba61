package calculator

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Precision is the number of decimal places shares are computed at. It
// matches the settlement token's decimals, so a share is always a whole
// number of base units.
const Precision = 18

// Share is one participant's portion of an expense amount.
type Share struct {
	Participant string
	Amount      decimal.Decimal
}

// SplitEqually divides amount among participants. Each share is the amount
// divided by the participant count, rounded down to Precision places; the
// leftover base units go one each to participants in list order, so the
// shares always add up to amount exactly.
func SplitEqually(amount decimal.Decimal, participants []string) ([]Share, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be greater than zero")
	}
	if len(participants) == 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if seen[p] {
			return nil, fmt.Errorf("duplicate participant %s", p)
		}
		seen[p] = true
	}

	units := amount.Shift(Precision).Truncate(0).BigInt()
	n := big.NewInt(int64(len(participants)))
	quotient, remainder := new(big.Int).QuoRem(units, n, new(big.Int))
	extra := remainder.Int64()

	shares := make([]Share, len(participants))
	for i, p := range participants {
		portion := new(big.Int).Set(quotient)
		if int64(i) < extra {
			portion.Add(portion, big.NewInt(1))
		}
		shares[i] = Share{
			Participant: p,
			Amount:      decimal.NewFromBigInt(portion, -Precision),
		}
	}
	return shares, nil
}
