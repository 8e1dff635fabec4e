package processors

import (
	"testing"
	"time"

	"github.com/username/tradefolio/backend/src/models"
)

func tradeOn(day string, pnl float64, tradeType string) models.Trade {
	entry, err := time.Parse("2006-01-02 15:04:05", day)
	if err != nil {
		panic(err)
	}
	return models.Trade{EntryDateTime: entry, Pnl: &pnl, TradeType: tradeType}
}

func TestPnlSummary_ByDay(t *testing.T) {
	trades := []models.Trade{
		tradeOn("2024-03-01 09:30:00", 100, "Long"),
		tradeOn("2024-03-01 11:00:00", -40.5, "Short"),
		tradeOn("2024-03-04 10:00:00", 200, "Long"),
	}

	entries := NewPnlSummaryCalculator().Calculate(trades, GroupDay)
	if len(entries) != 2 {
		t.Fatalf("expected 2 periods, got %d", len(entries))
	}
	if entries[0].Period != "2024-03-04" || entries[0].TotalPnl != 200 {
		t.Errorf("most recent period first, got %+v", entries[0])
	}
	if entries[1].Period != "2024-03-01" || entries[1].TotalPnl != 59.5 {
		t.Errorf("expected daily total 59.5, got %+v", entries[1])
	}
}

func TestPnlSummary_ByWeek(t *testing.T) {
	trades := []models.Trade{
		tradeOn("2024-03-01 09:30:00", 100, "Long"), // ISO week 9
		tradeOn("2024-03-04 10:00:00", 50, "Long"),  // ISO week 10
	}

	entries := NewPnlSummaryCalculator().Calculate(trades, GroupWeek)
	if len(entries) != 2 {
		t.Fatalf("expected 2 weeks, got %d", len(entries))
	}
	if entries[0].Period != "2024-W10" {
		t.Errorf("expected 2024-W10 first, got %q", entries[0].Period)
	}
	if entries[1].Period != "2024-W09" {
		t.Errorf("expected 2024-W09 second, got %q", entries[1].Period)
	}
}

func TestPnlSummary_ByMonthAndYear(t *testing.T) {
	trades := []models.Trade{
		tradeOn("2024-03-01 09:30:00", 100, "Long"),
		tradeOn("2024-04-01 09:30:00", 100, "Long"),
		tradeOn("2023-12-29 09:30:00", -50, "Short"),
	}

	calc := NewPnlSummaryCalculator()

	months := calc.Calculate(trades, GroupMonth)
	if len(months) != 3 || months[0].Period != "2024-04" || months[2].Period != "2023-12" {
		t.Errorf("unexpected monthly grouping: %+v", months)
	}

	years := calc.Calculate(trades, GroupYear)
	if len(years) != 2 {
		t.Fatalf("expected 2 years, got %d", len(years))
	}
	if years[0].Period != "2024" || years[0].TotalPnl != 200 {
		t.Errorf("unexpected yearly total: %+v", years[0])
	}
}

func TestPnlSummary_NilPnlSkipped(t *testing.T) {
	trades := []models.Trade{
		{EntryDateTime: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)},
	}

	entries := NewPnlSummaryCalculator().Calculate(trades, GroupDay)
	if len(entries) != 0 {
		t.Errorf("trades without pnl must not create periods, got %+v", entries)
	}
}

func TestValidSummaryGroup(t *testing.T) {
	for _, group := range []string{GroupDay, GroupWeek, GroupMonth, GroupYear} {
		if !ValidSummaryGroup(group) {
			t.Errorf("expected %q to be valid", group)
		}
	}
	if ValidSummaryGroup("hour") {
		t.Error("expected hour to be invalid")
	}
}

func TestTotalPnl(t *testing.T) {
	trades := []models.Trade{
		tradeOn("2024-03-01 09:30:00", 100, "Long"),
		tradeOn("2024-03-01 10:30:00", -30, "Short"),
		{EntryDateTime: time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)},
	}

	calc := NewPnlSummaryCalculator()
	if total := calc.TotalPnl(trades); total != 70 {
		t.Errorf("expected total 70, got %v", total)
	}

	byType := calc.TotalPnlByType(trades)
	if byType["Long"] != 100 || byType["Short"] != -30 {
		t.Errorf("unexpected per-type totals: %+v", byType)
	}
}
