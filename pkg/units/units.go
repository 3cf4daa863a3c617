// Package units converts between human-readable ether amounts and wei.
package units

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// EtherDecimals is the power of ten between ether and wei.
const EtherDecimals = 18

var (
	ErrEmptyAmount    = errors.New("amount is empty")
	ErrNegativeAmount = errors.New("amount is negative")
	ErrTooPrecise     = errors.New("fractional component exceeds decimals")
)

// ParseEther converts a decimal ether string ("1.5") to wei (1.5 x 10^18).
func ParseEther(amount string) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, ErrEmptyAmount
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if d.IsNegative() {
		return nil, ErrNegativeAmount
	}

	wei := d.Shift(EtherDecimals)
	if !wei.IsInteger() {
		return nil, ErrTooPrecise
	}
	return wei.BigInt(), nil
}

// FormatEther converts wei to ether units.
func FormatEther(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -EtherDecimals)
}
