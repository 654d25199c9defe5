package common

import (
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a configured currency code is unknown.
const DefaultCurrency = money.INR

// FormatMoney formats v in the given currency. INR amounts use Indian digit
// grouping ("₹ 12,34,567"); other currencies use the go-money formatter.
// Non-finite values format as zero.
func FormatMoney(v float64, currency string, decimals int) string {
	v = finite(v)
	cur := money.GetCurrency(strings.ToUpper(strings.TrimSpace(currency)))
	if cur == nil {
		cur = money.GetCurrency(DefaultCurrency)
	}

	if cur.Code != money.INR {
		minor := decimal.NewFromFloat(v).Shift(int32(cur.Fraction)).Round(0).IntPart()
		return cur.Formatter().Format(minor)
	}

	d := decimal.NewFromFloat(v).Round(int32(decimals))
	s := d.Abs().StringFixed(int32(decimals))

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i:]
	}

	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return fmt.Sprintf("%s%s %s%s", sign, cur.Grapheme, groupIndian(whole), frac)
}

// FormatINR formats v as whole rupees.
func FormatINR(v float64) string {
	return FormatMoney(v, money.INR, 0)
}

// FormatPct formats a percentage with the given precision.
func FormatPct(v float64, decimals int) string {
	return decimal.NewFromFloat(finite(v)).StringFixed(int32(decimals)) + "%"
}

// groupIndian inserts separators after the last three digits and then every two.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}

func finite(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}
