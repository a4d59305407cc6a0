package utils

import (
	"fmt"
	"math"
)

// Round2 rounds a monetary amount to 2 decimal places.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// FormatMoney keeps consistent decimal formatting for currency fields.
func FormatMoney(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// PointsFromAmount converts spend into loyalty points: 10 currency units = 1 point,
// fractions truncated. Negative amounts never accrue.
func PointsFromAmount(amount float64) int64 {
	if amount <= 0 {
		return 0
	}
	return int64(math.Floor(amount / 10))
}
