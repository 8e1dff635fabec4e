package models

// Column headers of the tab-delimited execution export. The exporter emits
// many more columns than these; everything else is ignored.
const (
	ColSymbol            = "Symbol"
	ColTradeType         = "Trade Type"
	ColEntryDateTime     = "Entry DateTime"
	ColExitDateTime      = "Exit DateTime"
	ColEntryPrice        = "Entry Price"
	ColExitPrice         = "Exit Price"
	ColTradeQuantity     = "Trade Quantity"
	ColMaxOpenQuantity   = "Max Open Quantity"
	ColMaxClosedQuantity = "Max Closed Quantity"
	ColProfitLoss        = "Profit/Loss (P)"
	ColAccount           = "Account"
)

// RawFill is a single execution row exactly as it appears in the export.
// Datetime fields keep their raw form (double-space separators, trailing
// " BP"/" EP" position markers) because the marker presence drives the
// consolidator's state transitions before the field is normalized.
type RawFill struct {
	Symbol            string `json:"symbol"`
	TradeType         string `json:"trade_type"`
	EntryDateTime     string `json:"entry_datetime"`
	ExitDateTime      string `json:"exit_datetime"`
	EntryPrice        string `json:"entry_price"`
	ExitPrice         string `json:"exit_price"`
	TradeQuantity     string `json:"trade_quantity"`
	MaxOpenQuantity   string `json:"max_open_quantity"`
	MaxClosedQuantity string `json:"max_closed_quantity"`
	ProfitLoss        string `json:"profit_loss"`
	Account           string `json:"account"` // optional column, "" when absent
}
