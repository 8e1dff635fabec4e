package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/tradefolio/backend/src/database"
	"github.com/username/tradefolio/backend/src/logger"
	"github.com/username/tradefolio/backend/src/models"
	"github.com/username/tradefolio/backend/src/parsers"
	"github.com/username/tradefolio/backend/src/processors"
)

const (
	// Long-lived cache for the consolidated trade list
	ckUserTrades = "res_trades_user_%d"

	// Short-lived aggregate caches
	ckPnlWindows = "agg_pnl_windows_user_%d"
	ckWinLoss    = "agg_winloss_user_%d"
	ckPnlSummary = "agg_pnl_summary_%s_user_%d"
	ckTotalPnl   = "agg_total_pnl_user_%d"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

// entryTimeLayout is how trade timestamps are stored in sqlite; RFC3339
// strings sort lexicographically in chronological order.
const entryTimeLayout = time.RFC3339

type totalPnlResult struct {
	total  float64
	byType map[string]float64
}

type importServiceImpl struct {
	fillParser   parsers.FillParser
	consolidator processors.TradeConsolidator
	pnlWindows   processors.PnlWindowCalculator
	winLoss      processors.WinLossCalculator
	pnlSummary   processors.PnlSummaryCalculator
	reportCache  *cache.Cache
}

func NewImportService(
	fillParser parsers.FillParser,
	consolidator processors.TradeConsolidator,
	pnlWindows processors.PnlWindowCalculator,
	winLoss processors.WinLossCalculator,
	pnlSummary processors.PnlSummaryCalculator,
	reportCache *cache.Cache,
) ImportService {
	return &importServiceImpl{
		fillParser:   fillParser,
		consolidator: consolidator,
		pnlWindows:   pnlWindows,
		winLoss:      winLoss,
		pnlSummary:   pnlSummary,
		reportCache:  reportCache,
	}
}

// ProcessImport parses and consolidates an execution export, then inserts
// the complete, ordered result for the user inside one transaction. Nothing
// is persisted when any row fails: the consolidator fails whole rather than
// skipping rows.
func (s *importServiceImpl) ProcessImport(fileReader io.Reader, userID int64) ([]models.Trade, error) {
	if userID <= 0 {
		return nil, ErrUnauthenticated
	}

	overallStartTime := time.Now()
	logger.L.Info("ProcessImport START", "userID", userID)

	fills, err := s.fillParser.Parse(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParsingFailed, err)
	}

	trades, err := s.consolidator.Consolidate(fills)
	if err != nil {
		// Both the sentinel and the consolidator's row error stay in the
		// chain so callers can still reach the offending row index.
		return nil, fmt.Errorf("%w: %w", ErrConsolidationFailed, err)
	}

	dbTx, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.Prepare(`INSERT INTO trades (trade_id, user_id, symbol, trade_type, entry_datetime, entry_price, trade_quantity, pnl, status, exit_datetime, exit_price, max_open_quantity, account, duration, steps) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for i := range trades {
		trades[i].UserID = userID
		stepsJSON, err := json.Marshal(trades[i].Steps)
		if err != nil {
			return nil, fmt.Errorf("error serializing steps for trade %s: %w", trades[i].ID, err)
		}

		var exitDateTime interface{}
		if trades[i].ExitDateTime != nil {
			exitDateTime = trades[i].ExitDateTime.Format(entryTimeLayout)
		}

		_, err = stmt.Exec(
			trades[i].ID,
			userID,
			trades[i].Symbol,
			trades[i].TradeType,
			trades[i].EntryDateTime.Format(entryTimeLayout),
			trades[i].EntryPrice,
			trades[i].TradeQuantity,
			nullableFloat(trades[i].Pnl),
			trades[i].Status,
			exitDateTime,
			nullableFloat(trades[i].ExitPrice),
			trades[i].MaxOpenQuantity,
			trades[i].Account,
			nullableFloat(trades[i].Duration),
			string(stepsJSON),
		)
		if err != nil {
			return nil, fmt.Errorf("error inserting trade %s: %w", trades[i].ID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing trades: %w", err)
	}

	s.InvalidateUserCache(userID)

	logger.L.Info("ProcessImport END", "userID", userID, "trades", len(trades), "duration", time.Since(overallStartTime))
	return trades, nil
}

// InvalidateUserCache clears all cached data for a user, forcing a complete
// rebuild on the next request.
func (s *importServiceImpl) InvalidateUserCache(userID int64) {
	keysToDelete := []string{
		fmt.Sprintf(ckUserTrades, userID),
		fmt.Sprintf(ckPnlWindows, userID),
		fmt.Sprintf(ckWinLoss, userID),
		fmt.Sprintf(ckTotalPnl, userID),
	}
	for _, group := range []string{processors.GroupDay, processors.GroupWeek, processors.GroupMonth, processors.GroupYear} {
		keysToDelete = append(keysToDelete, fmt.Sprintf(ckPnlSummary, group, userID))
	}
	for _, key := range keysToDelete {
		s.reportCache.Delete(key)
	}
	logger.L.Info("Invalidated all caches for user", "userID", userID)
}

func (s *importServiceImpl) GetTrades(userID int64) ([]models.Trade, error) {
	cacheKey := fmt.Sprintf(ckUserTrades, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for user trades", "userID", userID)
		return cached.([]models.Trade), nil
	}

	logger.L.Info("Cache miss for user trades, fetching from DB", "userID", userID)
	trades, err := fetchUserTrades(userID)
	if err != nil {
		return nil, err
	}
	s.reportCache.Set(cacheKey, trades, cache.NoExpiration)
	return trades, nil
}

func (s *importServiceImpl) GetTradeByID(userID int64, tradeID string) (*models.Trade, error) {
	trades, err := s.GetTrades(userID)
	if err != nil {
		return nil, err
	}
	for i := range trades {
		if trades[i].ID == tradeID {
			return &trades[i], nil
		}
	}
	return nil, ErrTradeNotFound
}

func (s *importServiceImpl) DeleteAllTrades(userID int64) error {
	if userID <= 0 {
		return ErrUnauthenticated
	}
	_, err := database.DB.Exec(`DELETE FROM trades WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("error deleting trades for userID %d: %w", userID, err)
	}
	s.InvalidateUserCache(userID)
	return nil
}

func (s *importServiceImpl) GetPnlWindows(userID int64) ([]models.PnlWindow, error) {
	cacheKey := fmt.Sprintf(ckPnlWindows, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.([]models.PnlWindow), nil
	}

	trades, err := s.GetTrades(userID)
	if err != nil {
		return nil, err
	}
	windows := s.pnlWindows.Calculate(trades)
	s.reportCache.Set(cacheKey, windows, DefaultCacheExpiration)
	return windows, nil
}

func (s *importServiceImpl) GetWinLossRatio(userID int64) (string, error) {
	cacheKey := fmt.Sprintf(ckWinLoss, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(string), nil
	}

	trades, err := s.GetTrades(userID)
	if err != nil {
		return "", err
	}
	ratio := s.winLoss.Calculate(trades)
	s.reportCache.Set(cacheKey, ratio, DefaultCacheExpiration)
	return ratio, nil
}

func (s *importServiceImpl) GetPnlSummary(userID int64, group string) ([]models.PnlSummaryEntry, error) {
	cacheKey := fmt.Sprintf(ckPnlSummary, group, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.([]models.PnlSummaryEntry), nil
	}

	trades, err := s.GetTrades(userID)
	if err != nil {
		return nil, err
	}
	summary := s.pnlSummary.Calculate(trades, group)
	s.reportCache.Set(cacheKey, summary, DefaultCacheExpiration)
	return summary, nil
}

func (s *importServiceImpl) GetTotalPnl(userID int64) (float64, map[string]float64, error) {
	cacheKey := fmt.Sprintf(ckTotalPnl, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		result := cached.(totalPnlResult)
		return result.total, result.byType, nil
	}

	trades, err := s.GetTrades(userID)
	if err != nil {
		return 0, nil, err
	}
	result := totalPnlResult{
		total:  s.pnlSummary.TotalPnl(trades),
		byType: s.pnlSummary.TotalPnlByType(trades),
	}
	s.reportCache.Set(cacheKey, result, DefaultCacheExpiration)
	return result.total, result.byType, nil
}

// fetchUserTrades loads the user's consolidated trades most recent first,
// with the steps JSON round-tripped back into structs.
func fetchUserTrades(userID int64) ([]models.Trade, error) {
	logger.L.Debug("Fetching trades from DB", "userID", userID)
	rows, err := database.DB.Query(`SELECT trade_id, user_id, symbol, trade_type, entry_datetime, entry_price, trade_quantity, pnl, status, exit_datetime, exit_price, max_open_quantity, account, duration, steps FROM trades WHERE user_id = ? ORDER BY entry_datetime DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying trades for userID %d: %w", userID, err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		var trade models.Trade
		var entryDateTime string
		var exitDateTime sql.NullString
		var pnl, exitPrice, duration sql.NullFloat64
		var stepsJSON string

		scanErr := rows.Scan(
			&trade.ID, &trade.UserID, &trade.Symbol, &trade.TradeType,
			&entryDateTime, &trade.EntryPrice, &trade.TradeQuantity,
			&pnl, &trade.Status, &exitDateTime, &exitPrice,
			&trade.MaxOpenQuantity, &trade.Account, &duration, &stepsJSON,
		)
		if scanErr != nil {
			return nil, fmt.Errorf("error scanning trade row for userID %d: %w", userID, scanErr)
		}

		trade.EntryDateTime, err = time.Parse(entryTimeLayout, entryDateTime)
		if err != nil {
			return nil, fmt.Errorf("error parsing entry datetime for trade %s: %w", trade.ID, err)
		}
		if exitDateTime.Valid {
			exit, err := time.Parse(entryTimeLayout, exitDateTime.String)
			if err != nil {
				return nil, fmt.Errorf("error parsing exit datetime for trade %s: %w", trade.ID, err)
			}
			trade.ExitDateTime = &exit
		}
		trade.Pnl = floatPtr(pnl)
		trade.ExitPrice = floatPtr(exitPrice)
		trade.Duration = floatPtr(duration)

		if err := json.Unmarshal([]byte(stepsJSON), &trade.Steps); err != nil {
			return nil, fmt.Errorf("error deserializing steps for trade %s: %w", trade.ID, err)
		}
		trades = append(trades, trade)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over trade rows for userID %d: %w", userID, err)
	}
	logger.L.Info("DB fetch complete.", "userID", userID, "tradeCount", len(trades))
	return trades, nil
}

func nullableFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
