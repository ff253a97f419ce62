package ledger

import (
	"math"

	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/shopspring/decimal"
)

// ratioFloor is the short exposure below which the long/short ratio is
// reported as +Inf.
const ratioFloor = 1e-9

// ComputeExposure returns long, short, gross and net notional of positions at
// prices, and the long/short ratio. Tickers without a price contribute zero.
func ComputeExposure(positions map[string]types.Position, prices map[string]float64) types.Exposure {
	long, short := decimal.Zero, decimal.Zero

	for ticker, pos := range positions {
		price, ok := prices[ticker]
		if !ok || math.IsNaN(price) {
			continue
		}

		px := decimal.NewFromFloat(price)
		long = long.Add(decimal.NewFromFloat(pos.Long).Mul(px))
		short = short.Add(decimal.NewFromFloat(pos.Short).Mul(px))
	}

	longF, shortF := long.InexactFloat64(), short.InexactFloat64()

	ratio := math.Inf(1)
	if shortF > ratioFloor {
		ratio = longF / shortF
	}

	return types.Exposure{
		Long:           longF,
		Short:          shortF,
		Gross:          long.Add(short).InexactFloat64(),
		Net:            long.Sub(short).InexactFloat64(),
		LongShortRatio: ratio,
	}
}
