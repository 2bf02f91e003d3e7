// internal/services/commission.go
package services

import (
	"math"
)

// DefaultCommissionRate is the platform's flat cut of every sale.
const DefaultCommissionRate = 0.05

// CalculateCommission returns the platform commission for a gross
// amount, rounded to 2 decimal places with standard rounding.
func CalculateCommission(amount, rate float64) float64 {
	return math.Round(amount*rate*100) / 100
}
