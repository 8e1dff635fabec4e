package processors

import (
	"sort"

	"github.com/username/tradefolio/backend/src/models"
)

const (
	sessionStartHour = 9
	sessionEndHour   = 16
	windowCount      = 30
	letterCount      = 13 // 'A' through 'M'
)

type pnlWindowCalculator struct{}

func NewPnlWindowCalculator() PnlWindowCalculator {
	return &pnlWindowCalculator{}
}

// Calculate buckets trades by entry time into fixed 30-minute windows of a
// session starting at 09:00. Trades outside the window range are skipped,
// not rejected. Only windows inside regular hours with nonzero aggregate pnl
// are returned, sorted descending by pnl; ties keep window order, so the
// sort must be stable.
func (c *pnlWindowCalculator) Calculate(trades []models.Trade) []models.PnlWindow {
	var sums [windowCount]float64
	for _, trade := range trades {
		if trade.Pnl == nil {
			continue
		}
		idx := (trade.EntryDateTime.Hour()-sessionStartHour)*2 + trade.EntryDateTime.Minute()/30
		if idx >= 0 && idx < windowCount {
			sums[idx] += *trade.Pnl
		}
	}

	results := []models.PnlWindow{}
	for i := 0; i < windowCount; i++ {
		hour := i/2 + sessionStartHour
		minute := (i % 2) * 30
		if hour < sessionStartHour || hour >= sessionEndHour || sums[i] == 0 {
			continue
		}
		// The opening 09:00 window carries no letter; 09:30 is 'A' onwards.
		periodLetter := ""
		if letterIndex := i - 1; letterIndex >= 0 && letterIndex < letterCount {
			periodLetter = string(rune('A' + letterIndex))
		}
		results = append(results, models.PnlWindow{
			Hour:         hour,
			Minute:       minute,
			Pnl:          sums[i],
			PeriodLetter: periodLetter,
		})
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Pnl > results[b].Pnl
	})
	return results
}
