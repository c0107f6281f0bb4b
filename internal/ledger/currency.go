package ledger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits amounts are stored with.
// It covers every currency exponent in Currencies.
const AmountScale = 4

type CurrencyDef struct {
	Code     string
	Name     string
	Exponent int32 // 2 for USD (100 cents), 0 for JPY
}

var Currencies = map[string]CurrencyDef{
	"USD": {Code: "USD", Name: "US Dollar", Exponent: 2},
	"EUR": {Code: "EUR", Name: "Euro", Exponent: 2},
	"GBP": {Code: "GBP", Name: "Pound Sterling", Exponent: 2},
	"JPY": {Code: "JPY", Name: "Japanese Yen", Exponent: 0},
	"CHF": {Code: "CHF", Name: "Swiss Franc", Exponent: 2},
	"AUD": {Code: "AUD", Name: "Australian Dollar", Exponent: 2},
	"CAD": {Code: "CAD", Name: "Canadian Dollar", Exponent: 2},
	"CNY": {Code: "CNY", Name: "Chinese Yuan", Exponent: 2},
	"INR": {Code: "INR", Name: "Indian Rupee", Exponent: 2},
	"SGD": {Code: "SGD", Name: "Singapore Dollar", Exponent: 2},
	"HKD": {Code: "HKD", Name: "Hong Kong Dollar", Exponent: 2},
	"AED": {Code: "AED", Name: "UAE Dirham", Exponent: 2},
	"SAR": {Code: "SAR", Name: "Saudi Riyal", Exponent: 2},
	"KWD": {Code: "KWD", Name: "Kuwaiti Dinar", Exponent: 3},
	"BHD": {Code: "BHD", Name: "Bahraini Dinar", Exponent: 3},
	"OMR": {Code: "OMR", Name: "Omani Rial", Exponent: 3},
	"KRW": {Code: "KRW", Name: "South Korean Won", Exponent: 0},
	"BRL": {Code: "BRL", Name: "Brazilian Real", Exponent: 2},
	"ZAR": {Code: "ZAR", Name: "South African Rand", Exponent: 2},
}

func ValidCurrency(code string) bool {
	_, ok := Currencies[code]
	return ok
}

// NormalizeCurrency upper-cases code and checks it is supported.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !ValidCurrency(code) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	return code, nil
}

// CheckPrecision rejects amounts with more fractional digits than the
// currency's minor unit.
func CheckPrecision(amount decimal.Decimal, currency string) error {
	cur, ok := Currencies[currency]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
	}
	if !amount.Equal(amount.Truncate(cur.Exponent)) {
		return fmt.Errorf("%w: %s has more than %d decimal places for %s", ErrAmountPrecision, amount, cur.Exponent, currency)
	}
	return nil
}

// ToScaled converts an amount to its stored integer form, e.g. 10.5 -> 105000.
func ToScaled(amount decimal.Decimal) (int64, error) {
	shifted := amount.Shift(AmountScale)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s", ErrAmountPrecision, amount)
	}
	bi := shifted.BigInt()
	if !bi.IsInt64() {
		return 0, fmt.Errorf("%w: %s", ErrAmountOverflow, amount)
	}
	return bi.Int64(), nil
}

// FromScaled is the inverse of ToScaled.
func FromScaled(v int64) decimal.Decimal {
	return decimal.New(v, -AmountScale)
}

// FormatAmount renders an amount with the currency's minor-unit digits.
// E.g. 10.5 USD -> "10.50".
func FormatAmount(amount decimal.Decimal, currency string) string {
	cur, ok := Currencies[currency]
	if !ok {
		return amount.String()
	}
	return amount.StringFixed(cur.Exponent)
}

// CurrencyCodes returns a sorted list of supported currency codes.
func CurrencyCodes() []string {
	codes := make([]string, 0, len(Currencies))
	for code := range Currencies {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}
