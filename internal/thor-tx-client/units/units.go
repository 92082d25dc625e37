// Package units converts between human display amounts and the fixed-point wire
// representation. The two domains are distinct types so they never mix implicitly.
package units

import (
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"

	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/constants"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/txerr"
)

// DisplayAmount is a human-facing decimal string.
type DisplayAmount string

// WireAmount is a non-negative integer string at the fixed 10^8 scale.
type WireAmount string

func (d DisplayAmount) String() string { return string(d) }
func (w WireAmount) String() string    { return string(w) }

var maxWire = decimal.RequireFromString(strconv.FormatUint(math.MaxUint64, 10))

// ToWire scales a display amount by 10^8, flooring any excess precision so a transfer
// never spends more than was entered.
func ToWire(d DisplayAmount) (WireAmount, error) {
	v, err := parse(string(d))
	if err != nil {
		return "", err
	}
	w := v.Shift(constants.WireDecimals).Floor()
	if w.GreaterThan(maxWire) {
		return "", errors.Wrapf(txerr.ErrInvalidAmount, "amount %q overflows wire range", string(d))
	}
	return WireAmount(w.String()), nil
}

// ToDisplay divides a wire amount by 10^8 exactly and returns a trailing-zero-stripped decimal.
func ToDisplay(w WireAmount) (DisplayAmount, error) {
	v, err := parse(string(w))
	if err != nil {
		return "", err
	}
	if !v.IsInteger() {
		return "", errors.Wrapf(txerr.ErrInvalidAmount, "wire amount %q is not an integer", string(w))
	}
	return DisplayAmount(v.Shift(-constants.WireDecimals).String()), nil
}

// IsDust reports whether a display amount is below one wire unit.
func IsDust(d DisplayAmount) (bool, error) {
	w, err := ToWire(d)
	if err != nil {
		return false, err
	}
	return w.IsZero(), nil
}

// IsZero reports a zero wire amount.
func (w WireAmount) IsZero() bool {
	v, err := decimal.NewFromString(string(w))
	return err == nil && v.IsZero()
}

func parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errors.Wrap(txerr.ErrInvalidAmount, "amount is empty")
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.Wrapf(txerr.ErrInvalidAmount, "amount %q is not a finite decimal", s)
	}
	if v.IsNegative() {
		return decimal.Zero, errors.Wrapf(txerr.ErrInvalidAmount, "amount %q is negative", s)
	}
	return v, nil
}
