package models

import "time"

// Step actions. A mid-position fill is an add when the export's max open
// quantity grew, otherwise a partial exit.
const (
	StepAddedToTrade = "Added to Trade"
	StepTookProfits  = "Took Profits"
)

// Trade status values, decided once from the opening fill's pnl column.
const (
	StatusWin  = "Win"
	StatusLose = "Lose"
)

// TradeStep is one partial action against an open trade. Steps are appended
// in arrival order and never mutated or reordered afterwards.
type TradeStep struct {
	DateTime time.Time `json:"dateTime"`
	Price    float64   `json:"price"`
	Quantity int       `json:"quantity"`
	Action   string    `json:"action"`
}

// Trade is a logical position reconstructed from a run of fills. Exit
// fields and Duration stay nil until the position closes; a trade flushed
// at end of stream keeps them nil.
type Trade struct {
	ID              string      `json:"tradeId"`
	UserID          int64       `json:"profileId,omitempty"`
	Symbol          string      `json:"symbol"`
	TradeType       string      `json:"tradeType"`
	EntryDateTime   time.Time   `json:"entryDateTime"`
	EntryPrice      float64     `json:"entryPrice"`
	TradeQuantity   int         `json:"tradeQuantity"`
	Pnl             *float64    `json:"pnl"`
	Status          string      `json:"status"`
	ExitDateTime    *time.Time  `json:"exitDateTime"`
	ExitPrice       *float64    `json:"exitPrice"`
	MaxOpenQuantity int         `json:"maxOpenQuantity"`
	Account         string      `json:"account"`
	Duration        *float64    `json:"duration"` // seconds between entry and exit
	Steps           []TradeStep `json:"steps"`
}

// Closed reports whether the trade was terminated by an end-position fill.
func (t *Trade) Closed() bool {
	return t.ExitDateTime != nil
}

// PnlWindow is one 30-minute session bucket of aggregated pnl. Windows map
// to letters 'A'..'M' starting at 09:30; the opening 09:00 window carries
// no letter.
type PnlWindow struct {
	Hour         int     `json:"hour"`
	Minute       int     `json:"minute"`
	Pnl          float64 `json:"pnl"`
	PeriodLetter string  `json:"periodLetter"`
}

// PnlSummaryEntry is the aggregated pnl for one calendar period
// (day, ISO week, month or year).
type PnlSummaryEntry struct {
	Period   string  `json:"period"`
	TotalPnl float64 `json:"totalPnl"`
}
