// Package chain provides the payout network descriptor and shared chain utilities.
package chain

import (
	"math/big"
	"strconv"
	"strings"

	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

// decimalParts is a syntactically valid decimal string split at the point.
type decimalParts struct {
	negative bool
	intPart  string
	decPart  string
}

// splitDecimal validates a plain decimal string ("12", "12.5", ".5", "-3").
// Exponents, signs other than a leading "-", and separators are rejected.
func splitDecimal(amount string) (decimalParts, error) {
	amount = strings.TrimSpace(amount)
	var p decimalParts
	if strings.HasPrefix(amount, "-") {
		p.negative = true
		amount = amount[1:]
	}
	if amount == "" || amount == "." {
		return p, wiserr.ErrInvalidAmount
	}

	parts := strings.Split(amount, ".")
	if len(parts) > 2 {
		return p, wiserr.ErrInvalidAmount
	}
	p.intPart = parts[0]
	if len(parts) == 2 {
		p.decPart = parts[1]
	}
	if !allDigits(p.intPart) || !allDigits(p.decPart) {
		return p, wiserr.ErrInvalidAmount
	}
	if p.intPart == "" {
		p.intPart = "0"
	}
	return p, nil
}

func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// DecimalSign returns -1, 0 or +1 for a decimal amount string.
func DecimalSign(amount string) (int, error) {
	p, err := splitDecimal(amount)
	if err != nil {
		return 0, err
	}
	if strings.Trim(p.intPart, "0") == "" && strings.Trim(p.decPart, "0") == "" {
		return 0, nil
	}
	if p.negative {
		return -1, nil
	}
	return 1, nil
}

// ParseDecimalAmount parses a decimal amount string to big.Int with the given decimal places.
// For example, "12.5" with 6 decimals returns 12500000.
// Fractional digits beyond decimalPlaces are accepted only when they are zeros;
// anything else returns ErrAmountPrecision instead of being truncated.
func ParseDecimalAmount(amount string, decimalPlaces int) (*big.Int, error) {
	p, err := splitDecimal(amount)
	if err != nil {
		return nil, err
	}

	decPart := p.decPart
	if len(decPart) > decimalPlaces {
		if strings.Trim(decPart[decimalPlaces:], "0") != "" {
			return nil, wiserr.WithDetails(wiserr.ErrAmountPrecision, map[string]string{
				"amount":   amount,
				"decimals": strconv.Itoa(decimalPlaces),
			})
		}
		decPart = decPart[:decimalPlaces]
	}
	for len(decPart) < decimalPlaces {
		decPart += "0"
	}

	result, ok := new(big.Int).SetString(p.intPart+decPart, 10)
	if !ok {
		return nil, wiserr.ErrInvalidAmount
	}
	if p.negative {
		result.Neg(result)
	}
	return result, nil
}

// FormatDecimalAmount converts a big.Int to a human-readable string with the given decimal places.
// Trailing zeros after the decimal point are removed.
// For example, 12500000 with 6 decimals returns "12.5".
func FormatDecimalAmount(amount *big.Int, decimalPlaces int) string {
	if amount == nil {
		return "0"
	}
	if amount.Sign() < 0 {
		return "-" + FormatDecimalAmount(new(big.Int).Abs(amount), decimalPlaces)
	}

	str := amount.String()
	if decimalPlaces == 0 {
		return str
	}

	for len(str) <= decimalPlaces {
		str = "0" + str
	}

	decimalPos := len(str) - decimalPlaces
	result := str[:decimalPos] + "." + str[decimalPos:]

	result = strings.TrimRight(result, "0")
	return strings.TrimSuffix(result, ".")
}
