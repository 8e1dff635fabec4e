package processors

import (
	"testing"
	"time"

	"github.com/username/tradefolio/backend/src/models"
)

func tradeAt(hour, minute int, pnl float64) models.Trade {
	return models.Trade{
		EntryDateTime: time.Date(2024, 3, 1, hour, minute, 0, 0, time.UTC),
		Pnl:           &pnl,
	}
}

func TestPnlWindows_Empty(t *testing.T) {
	windows := NewPnlWindowCalculator().Calculate(nil)
	if len(windows) != 0 {
		t.Errorf("expected no windows, got %d", len(windows))
	}
}

func TestPnlWindows_LettersAndDescendingSort(t *testing.T) {
	var trades []models.Trade
	for i := 0; i < 10; i++ {
		hour := 9 + i/2
		minute := (i % 2) * 30
		trades = append(trades, tradeAt(hour, minute, float64((i+1)*100)))
	}

	windows := NewPnlWindowCalculator().Calculate(trades)
	if len(windows) != 10 {
		t.Fatalf("expected 10 windows, got %d", len(windows))
	}

	wantLetters := []string{"I", "H", "G", "F", "E", "D", "C", "B", "A", ""}
	wantPnl := []float64{1000, 900, 800, 700, 600, 500, 400, 300, 200, 100}
	for i, window := range windows {
		if window.PeriodLetter != wantLetters[i] {
			t.Errorf("window %d: expected letter %q, got %q", i, wantLetters[i], window.PeriodLetter)
		}
		if window.Pnl != wantPnl[i] {
			t.Errorf("window %d: expected pnl %v, got %v", i, wantPnl[i], window.Pnl)
		}
	}

	if windows[0].Hour != 13 || windows[0].Minute != 30 {
		t.Errorf("best window expected 13:30, got %02d:%02d", windows[0].Hour, windows[0].Minute)
	}
	if windows[9].Hour != 9 || windows[9].Minute != 0 {
		t.Errorf("opening window expected 09:00, got %02d:%02d", windows[9].Hour, windows[9].Minute)
	}
}

func TestPnlWindows_SameWindowAggregates(t *testing.T) {
	trades := []models.Trade{
		tradeAt(10, 0, 100),
		tradeAt(10, 15, 50),
		tradeAt(10, 29, -25),
	}

	windows := NewPnlWindowCalculator().Calculate(trades)
	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
	if windows[0].Pnl != 125 {
		t.Errorf("expected aggregated pnl 125, got %v", windows[0].Pnl)
	}
	if windows[0].Hour != 10 || windows[0].Minute != 0 {
		t.Errorf("expected window 10:00, got %02d:%02d", windows[0].Hour, windows[0].Minute)
	}
}

func TestPnlWindows_OutsideSessionExcluded(t *testing.T) {
	trades := []models.Trade{
		tradeAt(8, 30, 500),
		tradeAt(16, 0, 500),
		tradeAt(23, 45, 500),
		tradeAt(9, 0, 100),
	}

	windows := NewPnlWindowCalculator().Calculate(trades)
	if len(windows) != 1 {
		t.Fatalf("expected only the in-session window, got %d", len(windows))
	}
	if windows[0].Hour != 9 || windows[0].Pnl != 100 {
		t.Errorf("expected 09:00 window with pnl 100, got %+v", windows[0])
	}
}

func TestPnlWindows_ZeroSumWindowDropped(t *testing.T) {
	trades := []models.Trade{
		tradeAt(10, 0, 100),
		tradeAt(10, 10, -100),
	}

	windows := NewPnlWindowCalculator().Calculate(trades)
	if len(windows) != 0 {
		t.Errorf("window netting to zero must be dropped, got %d", len(windows))
	}
}

func TestPnlWindows_NilPnlSkipped(t *testing.T) {
	trades := []models.Trade{
		{EntryDateTime: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		tradeAt(10, 5, 75),
	}

	windows := NewPnlWindowCalculator().Calculate(trades)
	if len(windows) != 1 || windows[0].Pnl != 75 {
		t.Errorf("nil pnl trades must not affect sums, got %+v", windows)
	}
}

func TestPnlWindows_TiesKeepWindowOrder(t *testing.T) {
	trades := []models.Trade{
		tradeAt(9, 30, 200),
		tradeAt(11, 0, 200),
	}

	windows := NewPnlWindowCalculator().Calculate(trades)
	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(windows))
	}
	if windows[0].Hour != 9 || windows[0].Minute != 30 {
		t.Errorf("equal pnl keeps earlier window first, got %02d:%02d", windows[0].Hour, windows[0].Minute)
	}
}
