package payments

import (
	"regexp"
	"strings"
)

// AssetPrecision is the number of fractional digits the asset supports.
// One unit is 10^7 stroops.
const AssetPrecision = 7

var amountPattern = regexp.MustCompile(`^([0-9]+)(?:\.([0-9]+))?$`)

// amountToStroops converts a decimal amount string to an exact base-unit
// integer string. Inputs with more than AssetPrecision fractional digits are
// rejected rather than silently rounded; nothing here ever goes through a
// float.
func amountToStroops(amount string) (string, *ValidationError) {
	m := amountPattern.FindStringSubmatch(amount)
	if m == nil {
		return "", &ValidationError{Field: "amount", Reason: "must be a non-negative decimal number"}
	}

	whole, frac := m[1], m[2]
	if len(frac) > AssetPrecision {
		return "", &ValidationError{Field: "amount", Reason: "more fractional digits than the asset supports"}
	}
	frac += strings.Repeat("0", AssetPrecision-len(frac))

	stroops := strings.TrimLeft(whole+frac, "0")
	if stroops == "" {
		stroops = "0"
	}
	return stroops, nil
}
