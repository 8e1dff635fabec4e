package processors

import (
	"fmt"
	"sort"
	"time"

	"github.com/username/tradefolio/backend/src/models"
	"github.com/username/tradefolio/backend/src/utils"
)

// Supported summary groups.
const (
	GroupDay   = "day"
	GroupWeek  = "week"
	GroupMonth = "month"
	GroupYear  = "year"
)

// ValidSummaryGroup reports whether group names a supported period.
func ValidSummaryGroup(group string) bool {
	switch group {
	case GroupDay, GroupWeek, GroupMonth, GroupYear:
		return true
	}
	return false
}

type pnlSummaryCalculator struct{}

func NewPnlSummaryCalculator() PnlSummaryCalculator {
	return &pnlSummaryCalculator{}
}

// Calculate groups trade pnl by entry-time calendar period, most recent
// period first. Unknown groups fall back to daily.
func (c *pnlSummaryCalculator) Calculate(trades []models.Trade, group string) []models.PnlSummaryEntry {
	totals := make(map[string]float64)
	for _, trade := range trades {
		if trade.Pnl == nil {
			continue
		}
		totals[periodKey(trade.EntryDateTime, group)] += *trade.Pnl
	}

	entries := make([]models.PnlSummaryEntry, 0, len(totals))
	for period, total := range totals {
		entries = append(entries, models.PnlSummaryEntry{
			Period:   period,
			TotalPnl: utils.RoundFloat(total, 2),
		})
	}
	sort.Slice(entries, func(a, b int) bool {
		return entries[a].Period > entries[b].Period
	})
	return entries
}

func (c *pnlSummaryCalculator) TotalPnl(trades []models.Trade) float64 {
	total := 0.0
	for _, trade := range trades {
		if trade.Pnl != nil {
			total += *trade.Pnl
		}
	}
	return utils.RoundFloat(total, 2)
}

// TotalPnlByType splits the total by the export's trade type (Long/Short).
func (c *pnlSummaryCalculator) TotalPnlByType(trades []models.Trade) map[string]float64 {
	totals := make(map[string]float64)
	for _, trade := range trades {
		if trade.Pnl != nil {
			totals[trade.TradeType] = utils.RoundFloat(totals[trade.TradeType]+*trade.Pnl, 2)
		}
	}
	return totals
}

// Period keys sort lexicographically in chronological order.
func periodKey(t time.Time, group string) string {
	switch group {
	case GroupWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case GroupMonth:
		return t.Format("2006-01")
	case GroupYear:
		return t.Format("2006")
	default:
		return t.Format("2006-01-02")
	}
}
