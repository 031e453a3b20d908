package format

import (
	"strconv"
	"strings"
)

// Symbol is the display currency
const Symbol = "₩"

// Number formats n with comma separators
func Number(n int) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	str := strconv.Itoa(n)
	if len(str) <= 3 {
		return sign + str
	}

	var result strings.Builder
	result.WriteString(sign)
	remainder := len(str) % 3
	if remainder > 0 {
		result.WriteString(str[:remainder])
		result.WriteString(",")
	}

	for i := remainder; i < len(str); i += 3 {
		result.WriteString(str[i : i+3])
		if i+3 < len(str) {
			result.WriteString(",")
		}
	}

	return result.String()
}

// Currency prefixes the formatted amount with the currency symbol
func Currency(n int) string {
	return Symbol + " " + Number(n)
}
