package processors

import (
	"strconv"

	"github.com/username/tradefolio/backend/src/models"
)

type winLossCalculator struct{}

func NewWinLossCalculator() WinLossCalculator {
	return &winLossCalculator{}
}

// Calculate returns the share of trades with positive pnl, formatted with
// three fractional digits. When every trade won — which includes the empty
// set — the ratio is exactly "1".
func (c *winLossCalculator) Calculate(trades []models.Trade) string {
	winning := 0
	for _, trade := range trades {
		if trade.Pnl != nil && *trade.Pnl > 0 {
			winning++
		}
	}

	if winning-len(trades) == 0 {
		return "1"
	}
	return strconv.FormatFloat(float64(winning)/float64(len(trades)), 'f', 3, 64)
}
