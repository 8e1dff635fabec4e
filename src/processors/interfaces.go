package processors

import (
	"github.com/username/tradefolio/backend/src/models"
)

// TradeConsolidator folds an ordered sequence of raw fills into consolidated
// trades. Fills must be supplied in the exact order they were exported; the
// fold is not commutative.
type TradeConsolidator interface {
	Consolidate(fills []models.RawFill) ([]models.Trade, error)
}

// PnlWindowCalculator buckets closed trades into fixed 30-minute windows of
// the trading session by entry time.
type PnlWindowCalculator interface {
	Calculate(trades []models.Trade) []models.PnlWindow
}

// WinLossCalculator derives the share of winning trades as a formatted
// decimal string.
type WinLossCalculator interface {
	Calculate(trades []models.Trade) string
}

// PnlSummaryCalculator groups trade pnl by calendar period and computes
// overall totals.
type PnlSummaryCalculator interface {
	Calculate(trades []models.Trade, group string) []models.PnlSummaryEntry
	TotalPnl(trades []models.Trade) float64
	TotalPnlByType(trades []models.Trade) map[string]float64
}
