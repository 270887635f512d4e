package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"10", 1000},
		{"10.99", 1099},
		{"0.015", 2},
		{"19.994", 1999},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ToMinorUnits(decimal.RequireFromString(tc.in)), tc.in)
	}

	assert.Equal(t, "12.34", FromMinorUnits(1234).StringFixed(2))
}
