package services

import (
	"errors"
	"io"

	"github.com/username/tradefolio/backend/src/models"
)

var (
	// ErrParsingFailed covers failures reading the export stream itself.
	ErrParsingFailed = errors.New("failed to parse execution export")
	// ErrConsolidationFailed wraps a MalformedRowError from the consolidator.
	ErrConsolidationFailed = errors.New("failed to consolidate fills")
	// ErrUnauthenticated is returned when the insertion path is invoked
	// without a resolved user. The engine never proceeds without one.
	ErrUnauthenticated = errors.New("user not authenticated")
	// ErrTradeNotFound is returned when a trade id does not exist for the user.
	ErrTradeNotFound = errors.New("trade not found")
	// ErrRuleListNotFound is returned when a rule list id does not exist for
	// the user, or is disabled where only enabled lists are visible.
	ErrRuleListNotFound = errors.New("rule list not found")
)

// ImportService is the boundary between the HTTP layer and the
// consolidation engine: it turns an uploaded execution export into
// consolidated trades for one user, persists them, and serves the derived
// analytics.
type ImportService interface {
	ProcessImport(fileReader io.Reader, userID int64) ([]models.Trade, error)
	GetTrades(userID int64) ([]models.Trade, error)
	GetTradeByID(userID int64, tradeID string) (*models.Trade, error)
	DeleteAllTrades(userID int64) error
	GetPnlWindows(userID int64) ([]models.PnlWindow, error)
	GetWinLossRatio(userID int64) (string, error)
	GetPnlSummary(userID int64, group string) ([]models.PnlSummaryEntry, error)
	GetTotalPnl(userID int64) (float64, map[string]float64, error)
	InvalidateUserCache(userID int64)
}

// RuleService manages per-user trading rule checklists. Lists are disabled
// rather than deleted; lookups and updates only see enabled lists.
type RuleService interface {
	CreateRuleList(userID int64, items []models.RuleItem) (*models.RuleList, error)
	GetEnabledRuleLists(userID int64) ([]models.RuleList, error)
	GetDisabledRuleLists(userID int64) ([]models.RuleList, error)
	GetRuleListByID(userID int64, id int64) (*models.RuleList, error)
	UpdateRuleList(userID int64, id int64, items []models.RuleItem) (*models.RuleList, error)
	DisableRuleList(userID int64, id int64) (*models.RuleList, error)
}
