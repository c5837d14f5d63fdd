package mathutil_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/watchonly/pkg/mathutil"
)

func TestFormatBtc(t *testing.T) {
	tests := []struct {
		sats     uint64
		expected string
	}{
		{0, "0.00000000"},
		{1, "0.00000001"},
		{12000, "0.00012000"},
		{100000000, "1.00000000"},
		{2100000000000000, "21000000.00000000"},
		{math.MaxUint64, "184467440737.09551615"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.expected, mathutil.FormatBtc(tt.sats))
	}
}

func TestSatsToBtc(t *testing.T) {
	require.True(t, decimal.RequireFromString("0.5").Equal(mathutil.SatsToBtc(50000000)))
	require.True(t, decimal.RequireFromString("0.00000001").Equal(mathutil.SatsToBtc(1)))
}
