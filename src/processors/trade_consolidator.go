package processors

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/username/tradefolio/backend/src/models"
	"github.com/username/tradefolio/backend/src/utils"
)

// MalformedRowError reports a fill row missing its required fields or
// carrying an unparsable datetime. Consolidation aborts on the first such
// row: skipping it would corrupt step ordering and open/close pairing for
// everything after it.
type MalformedRowError struct {
	Row    int // zero-based index into the fill sequence
	Reason string
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("malformed fill row %d: %s", e.Row, e.Reason)
}

type tradeConsolidator struct{}

// NewTradeConsolidator returns a stateless consolidator. Each Consolidate
// call runs an independent pass, so one instance is safe for concurrent use.
func NewTradeConsolidator() TradeConsolidator {
	return &tradeConsolidator{}
}

// Consolidate folds the fill stream with a two-state machine: Idle (no open
// trade) and Open (one trade accumulating fills). A begin-position marker in
// the entry field opens a trade, an end-position marker in the exit field
// closes it, and any other row while a trade is open becomes a step. The
// output order is the order in which trades were closed or flushed.
func (c *tradeConsolidator) Consolidate(fills []models.RawFill) ([]models.Trade, error) {
	var current *models.Trade
	consolidated := []models.Trade{}

	for i, fill := range fills {
		if fill.Symbol == "" || fill.EntryDateTime == "" || fill.ExitDateTime == "" {
			return nil, &MalformedRowError{Row: i, Reason: "missing symbol or datetime field"}
		}

		opens := utils.HasBeginMarker(fill.EntryDateTime)
		closes := utils.HasEndMarker(fill.ExitDateTime)

		if opens {
			if current != nil {
				// Should not happen for well-formed input; flush rather than
				// silently dropping the still-open position.
				consolidated = append(consolidated, *current)
			}
			trade, err := newTrade(fill)
			if err != nil {
				return nil, &MalformedRowError{Row: i, Reason: err.Error()}
			}
			current = trade
		}

		if closes {
			if current == nil {
				return nil, &MalformedRowError{Row: i, Reason: "end-position row with no open trade"}
			}
			if err := closeTrade(current, fill); err != nil {
				return nil, &MalformedRowError{Row: i, Reason: err.Error()}
			}
			consolidated = append(consolidated, *current)
			current = nil
		} else if !opens && current != nil {
			if err := updateTrade(current, fill); err != nil {
				return nil, &MalformedRowError{Row: i, Reason: err.Error()}
			}
		}
	}

	// A stream may end while a position is still open. The partial trade is
	// flushed with nil exit fields rather than discarded.
	if current != nil {
		consolidated = append(consolidated, *current)
	}
	return consolidated, nil
}

// newTrade builds a trade from its begin-position fill. The opening fill
// itself never contributes a step.
func newTrade(fill models.RawFill) (*models.Trade, error) {
	entry, err := utils.ParseBrokerTime(fill.EntryDateTime)
	if err != nil {
		return nil, fmt.Errorf("entry datetime %q: %w", fill.EntryDateTime, err)
	}

	pnl := parsePnl(fill.ProfitLoss)
	// Win/Lose is decided once, from the opening fill's own pnl column, and
	// never recomputed from prices at close.
	status := models.StatusLose
	if pnl != nil && *pnl > 0 {
		status = models.StatusWin
	}

	account := fill.Account
	if account == "" {
		account = "default"
	}

	return &models.Trade{
		ID:              uuid.NewString(),
		Symbol:          fill.Symbol,
		TradeType:       fill.TradeType,
		EntryDateTime:   entry,
		EntryPrice:      parsePrice(fill.EntryPrice),
		TradeQuantity:   parseQuantity(fill.TradeQuantity),
		Pnl:             pnl,
		Status:          status,
		MaxOpenQuantity: parseQuantity(fill.MaxOpenQuantity),
		Account:         account,
		Steps:           []models.TradeStep{},
	}, nil
}

// updateTrade records a mid-position fill as a step. Growth of the max open
// quantity is the sole signal separating an add from a partial exit; the
// export carries no direction field for these rows.
func updateTrade(trade *models.Trade, fill models.RawFill) error {
	at, err := utils.ParseBrokerTime(fill.ExitDateTime)
	if err != nil {
		return fmt.Errorf("exit datetime %q: %w", fill.ExitDateTime, err)
	}

	newMaxOpen := parseQuantity(fill.MaxOpenQuantity)
	action := models.StepTookProfits
	if newMaxOpen > trade.MaxOpenQuantity {
		action = models.StepAddedToTrade
	}

	trade.Steps = append(trade.Steps, models.TradeStep{
		DateTime: at,
		Price:    parsePrice(fill.ExitPrice),
		Quantity: parseQuantity(fill.TradeQuantity),
		Action:   action,
	})
	trade.MaxOpenQuantity = newMaxOpen
	return nil
}

// closeTrade finalizes the open trade from its end-position fill and appends
// the mandatory final "Took Profits" step.
func closeTrade(trade *models.Trade, fill models.RawFill) error {
	exit, err := utils.ParseBrokerTime(fill.ExitDateTime)
	if err != nil {
		return fmt.Errorf("exit datetime %q: %w", fill.ExitDateTime, err)
	}

	exitPrice := parsePrice(fill.ExitPrice)
	duration := exit.Sub(trade.EntryDateTime).Seconds()

	trade.ExitDateTime = &exit
	trade.ExitPrice = &exitPrice
	trade.TradeQuantity = parseQuantity(fill.MaxClosedQuantity)
	trade.Duration = &duration
	trade.Steps = append(trade.Steps, models.TradeStep{
		DateTime: exit,
		Price:    exitPrice,
		Quantity: parseQuantity(fill.TradeQuantity),
		Action:   models.StepTookProfits,
	})
	return nil
}

// Field helpers. Malformed or missing numerics yield the zero value (pnl:
// nil) rather than failing the row.

func parseQuantity(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func parsePrice(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

func parsePnl(s string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &f
}
