// internal/services/commission_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateCommission(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		rate     float64
		expected float64
	}{
		{"round amount", 100.00, 0.05, 5.00},
		{"fractional amount", 29.90, 0.05, 1.50}, // 1.495 rounds up
		{"small amount", 0.99, 0.05, 0.05},
		{"rounds half up", 10.10, 0.05, 0.51}, // 0.505
		{"zero amount", 0, 0.05, 0},
		{"custom rate", 200.00, 0.10, 20.00},
		{"zero rate", 150.00, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateCommission(tt.amount, tt.rate))
		})
	}
}

func TestNetPlusCommissionEqualsGross(t *testing.T) {
	amounts := []float64{9.99, 29.90, 100.00, 1234.56}

	for _, amount := range amounts {
		commission := CalculateCommission(amount, DefaultCommissionRate)
		net := amount - commission

		assert.InDelta(t, amount, net+commission, 0.001)
		assert.GreaterOrEqual(t, commission, 0.0)
		assert.LessOrEqual(t, commission, amount)
	}
}
