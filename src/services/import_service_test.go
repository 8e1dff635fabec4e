package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/tradefolio/backend/src/database"
	"github.com/username/tradefolio/backend/src/logger"
	"github.com/username/tradefolio/backend/src/models"
	"github.com/username/tradefolio/backend/src/parsers"
	"github.com/username/tradefolio/backend/src/processors"
)

const testExport = "Symbol\tTrade Type\tEntry DateTime\tExit DateTime\tEntry Price\tExit Price\tTrade Quantity\tMax Open Quantity\tMax Closed Quantity\tProfit/Loss (P)\tAccount\n" +
	"ES\tLong\t2024-03-01 09:30:00 BP\t2024-03-01 09:30:00\t5000.25\t\t2\t2\t0\t150\tsim01\n" +
	"ES\tLong\t2024-03-01 09:35:00\t2024-03-01 09:35:00\t\t5001.00\t1\t3\t0\t\t\n" +
	"ES\tLong\t2024-03-01 09:45:00\t2024-03-01 09:45:00 EP\t\t5003.50\t3\t0\t3\t\t\n" +
	"NQ\tShort\t2024-03-01 10:00:00 BP\t2024-03-01 10:00:00\t18000\t\t1\t1\t0\t-75.5\tsim01\n" +
	"NQ\tShort\t2024-03-01 10:20:00\t2024-03-01 10:20:00 EP\t\t18010\t1\t0\t1\t\t\n"

// newTestService wires the real parser and processors against a fresh
// in-memory database.
func newTestService(t *testing.T) ImportService {
	t.Helper()
	logger.InitLogger("error")
	database.InitDB(":memory:")
	t.Cleanup(func() { database.DB.Close() })

	return NewImportService(
		parsers.NewTSVParser(),
		processors.NewTradeConsolidator(),
		processors.NewPnlWindowCalculator(),
		processors.NewWinLossCalculator(),
		processors.NewPnlSummaryCalculator(),
		cache.New(DefaultCacheExpiration, CacheCleanupInterval),
	)
}

func TestProcessImport_EndToEnd(t *testing.T) {
	svc := newTestService(t)

	trades, err := svc.ProcessImport(strings.NewReader(testExport), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("expected 2 consolidated trades, got %d", len(trades))
	}

	first := trades[0]
	if first.Symbol != "ES" || first.UserID != 1 {
		t.Errorf("unexpected first trade: %+v", first)
	}
	if first.Pnl == nil || *first.Pnl != 150 {
		t.Errorf("expected pnl 150, got %v", first.Pnl)
	}
	if first.Status != models.StatusWin {
		t.Errorf("expected Win status, got %q", first.Status)
	}
	if len(first.Steps) != 2 {
		t.Errorf("expected 2 steps (mid fill + close), got %d", len(first.Steps))
	}
	if first.TradeQuantity != 3 {
		t.Errorf("expected closed quantity 3, got %d", first.TradeQuantity)
	}

	second := trades[1]
	if second.Status != models.StatusLose {
		t.Errorf("expected Lose status, got %q", second.Status)
	}
	if second.Duration == nil || *second.Duration != 1200 {
		t.Errorf("expected duration 1200s, got %v", second.Duration)
	}
}

func TestProcessImport_PersistedRoundTrip(t *testing.T) {
	svc := newTestService(t)

	imported, err := svc.ProcessImport(strings.NewReader(testExport), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Bust the cache so the fetch exercises the database path.
	svc.InvalidateUserCache(1)

	stored, err := svc.GetTrades(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stored) != len(imported) {
		t.Fatalf("expected %d stored trades, got %d", len(imported), len(stored))
	}
	if stored[0].Symbol != "NQ" || stored[1].Symbol != "ES" {
		t.Fatalf("stored trades must come back most recent first, got %q then %q", stored[0].Symbol, stored[1].Symbol)
	}

	esTrade := stored[1]
	want := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	if !esTrade.EntryDateTime.Equal(want) {
		t.Errorf("entry datetime did not round-trip: got %v", esTrade.EntryDateTime)
	}
	if esTrade.ExitDateTime == nil || !esTrade.ExitDateTime.Equal(time.Date(2024, 3, 1, 9, 45, 0, 0, time.UTC)) {
		t.Errorf("exit datetime did not round-trip: got %v", esTrade.ExitDateTime)
	}
	if len(esTrade.Steps) != 2 {
		t.Errorf("steps did not round-trip, got %d", len(esTrade.Steps))
	}
	if esTrade.Steps[0].Action != models.StepAddedToTrade {
		t.Errorf("expected first step action preserved, got %q", esTrade.Steps[0].Action)
	}
}

func TestProcessImport_Unauthenticated(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.ProcessImport(strings.NewReader(testExport), 0); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestProcessImport_EmptyFile(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ProcessImport(strings.NewReader(""), 1)
	if !errors.Is(err, ErrParsingFailed) {
		t.Errorf("expected ErrParsingFailed, got %v", err)
	}
	if !errors.Is(err, parsers.ErrEmptyExport) {
		t.Errorf("expected ErrEmptyExport in chain, got %v", err)
	}
}

func TestProcessImport_MalformedRowsPersistNothing(t *testing.T) {
	svc := newTestService(t)

	bad := "Symbol\tEntry DateTime\tExit DateTime\n" +
		"ES\t2024-03-01 09:30:00\t2024-03-01 09:45:00 EP\n"
	_, err := svc.ProcessImport(strings.NewReader(bad), 1)
	if !errors.Is(err, ErrConsolidationFailed) {
		t.Fatalf("expected ErrConsolidationFailed, got %v", err)
	}

	// The row error stays reachable through the wrapped chain.
	var malformed *processors.MalformedRowError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedRowError in chain, got %v", err)
	}
	if malformed.Row != 0 {
		t.Errorf("expected offending row 0, got %d", malformed.Row)
	}

	trades, err := svc.GetTrades(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trades) != 0 {
		t.Errorf("failed import must persist nothing, found %d trades", len(trades))
	}
}

func TestGetTradeByID(t *testing.T) {
	svc := newTestService(t)

	imported, err := svc.ProcessImport(strings.NewReader(testExport), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	trade, err := svc.GetTradeByID(1, imported[0].ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trade.Symbol != "ES" {
		t.Errorf("expected ES, got %q", trade.Symbol)
	}

	if _, err := svc.GetTradeByID(1, "no-such-trade"); !errors.Is(err, ErrTradeNotFound) {
		t.Errorf("expected ErrTradeNotFound, got %v", err)
	}
}

func TestDeleteAllTrades(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.ProcessImport(strings.NewReader(testExport), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.DeleteAllTrades(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	trades, err := svc.GetTrades(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trades) != 0 {
		t.Errorf("expected no trades after delete, got %d", len(trades))
	}
}

func TestTradesAreScopedPerUser(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.ProcessImport(strings.NewReader(testExport), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	trades, err := svc.GetTrades(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trades) != 0 {
		t.Errorf("user 2 must not see user 1's trades, got %d", len(trades))
	}
}

func TestAnalyticsGetters(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.ProcessImport(strings.NewReader(testExport), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ratio, err := svc.GetWinLossRatio(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ratio != "0.500" {
		t.Errorf("expected ratio 0.500, got %q", ratio)
	}

	windows, err := svc.GetPnlWindows(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(windows))
	}
	if windows[0].Pnl != 150 || windows[0].Hour != 9 || windows[0].Minute != 30 {
		t.Errorf("best window should be 09:30 with pnl 150, got %+v", windows[0])
	}
	if windows[1].PeriodLetter != "B" {
		t.Errorf("10:00 window carries letter B, got %q", windows[1].PeriodLetter)
	}

	summary, err := svc.GetPnlSummary(1, processors.GroupDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summary) != 1 || summary[0].Period != "2024-03-01" || summary[0].TotalPnl != 74.5 {
		t.Errorf("unexpected daily summary: %+v", summary)
	}

	total, byType, err := svc.GetTotalPnl(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 74.5 {
		t.Errorf("expected total 74.5, got %v", total)
	}
	if byType["Long"] != 150 || byType["Short"] != -75.5 {
		t.Errorf("unexpected per-type totals: %+v", byType)
	}
}

func TestImportInvalidatesCachedAnalytics(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.ProcessImport(strings.NewReader(testExport), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before, err := svc.GetWinLossRatio(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if before != "0.500" {
		t.Fatalf("expected ratio 0.500, got %q", before)
	}

	winners := "Symbol\tTrade Type\tEntry DateTime\tExit DateTime\tProfit/Loss (P)\n" +
		"ES\tLong\t2024-03-04 09:30:00 BP\t2024-03-04 09:30:00\t300\n" +
		"ES\tLong\t2024-03-04 09:40:00\t2024-03-04 09:40:00 EP\t\n"
	if _, err := svc.ProcessImport(strings.NewReader(winners), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after, err := svc.GetWinLossRatio(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after != "0.667" {
		t.Errorf("expected recomputed ratio 0.667, got %q", after)
	}
}
