package money

import (
	"errors"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Amount is a monetary value in minor units (agorot). All arithmetic stays in
// integers; conversion to major units happens only when formatting.
type Amount int64

var (
	// ErrInvalidLineItem is returned for a non-positive quantity or a negative unit price.
	ErrInvalidLineItem = errors.New("invalid_line_item")
	// ErrAmountOverflow is returned when a computation would exceed the int64 range.
	ErrAmountOverflow = errors.New("amount_overflow")
)

// VATPercent is the VAT policy rate applied to quote subtotals.
const VATPercent = 18

// Line computes quantity * unitPrice with overflow detection.
func Line(quantity int, unitPrice Amount) (Amount, error) {
	if quantity < 1 || unitPrice < 0 {
		return 0, ErrInvalidLineItem
	}
	q := int64(quantity)
	p := int64(unitPrice)
	if p != 0 && q > math.MaxInt64/p {
		return 0, ErrAmountOverflow
	}
	return Amount(q * p), nil
}

// Add returns a+b, failing on overflow instead of wrapping.
func Add(a, b Amount) (Amount, error) {
	if b > 0 && a > Amount(math.MaxInt64)-b {
		return 0, ErrAmountOverflow
	}
	if b < 0 && a < Amount(math.MinInt64)-b {
		return 0, ErrAmountOverflow
	}
	return a + b, nil
}

// Sum adds a slice of amounts with overflow detection.
func Sum(amounts []Amount) (Amount, error) {
	var total Amount
	var err error
	for _, a := range amounts {
		total, err = Add(total, a)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

// Percent computes pct% of a, rounding half up. Half-up is the documented
// rounding mode for VAT on issued documents; it must never change once quotes
// are in the wild.
func Percent(a Amount, pct int) (Amount, error) {
	if a < 0 || pct < 0 {
		return 0, ErrInvalidLineItem
	}
	v := int64(a)
	p := int64(pct)
	if p != 0 && v > (math.MaxInt64-50)/p {
		return 0, ErrAmountOverflow
	}
	return Amount((v*p + 50) / 100), nil
}

var printer = message.NewPrinter(language.English)

// Format renders an amount in major units with digit grouping, e.g. 1234550 -> "12,345.50".
func Format(a Amount) string {
	neg := a < 0
	if neg {
		a = -a
	}
	major := int64(a) / 100
	minor := int64(a) % 100
	s := printer.Sprintf("%d.%02d", major, minor)
	if neg {
		return "-" + s
	}
	return s
}

// FormatILS renders an amount with the shekel symbol used on documents.
func FormatILS(a Amount) string {
	return "₪" + Format(a)
}
