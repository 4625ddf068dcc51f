package utils

import (
	"fmt"
	"strings"
)

// FormatCurrency renders amount with thousands separators, e.g. "1,250,000.50".
func FormatCurrency(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}
	formatted := fmt.Sprintf("%.2f", RoundMoney(amount))
	parts := strings.Split(formatted, ".")
	integerPart := parts[0]

	var groups []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerPart[start:i]}, groups...)
	}

	result := strings.Join(groups, ",") + "." + parts[1]
	if negative {
		return "-" + result
	}
	return result
}
