package mathutil

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

const btcPrecision = 8

var (
	//BigOne represents a single unit of an asset with precision 8
	BigOne = uint64(math.Pow10(btcPrecision))
	//BigOneDecimal represents a single unit of an asset with precision 8 as decimal.Decimal
	BigOneDecimal = decimal.NewFromInt(int64(BigOne))
)

func init() {
	decimal.DivisionPrecision = btcPrecision
}

// SatsToBtc returns the given amount of satoshis in BTC units.
func SatsToBtc(sats uint64) decimal.Decimal {
	return fromUint64(sats).Div(BigOneDecimal)
}

// FormatBtc returns the given amount of satoshis in BTC units with all 8
// decimals, ie. 0.00012000.
func FormatBtc(sats uint64) string {
	return SatsToBtc(sats).StringFixed(btcPrecision)
}

func fromUint64(x uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(x), 0)
}
