package parsers

import (
	"errors"
	"strings"
	"testing"
)

const exportHeader = "Symbol\tTrade Type\tEntry DateTime\tExit DateTime\tEntry Price\tExit Price\tTrade Quantity\tMax Open Quantity\tMax Closed Quantity\tProfit/Loss (P)\tAccount"

func TestParse_MapsColumnsByHeaderName(t *testing.T) {
	input := exportHeader + "\n" +
		"ES\tLong\t2024-03-01 09:30:00  BP\t2024-03-01 09:30:00\t5000.25\t\t2\t2\t0\t\tsim01\n"

	fills, err := NewTSVParser().Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fills) != 1 {
		t.Fatalf("expected 1 fill, got %d", len(fills))
	}

	fill := fills[0]
	if fill.Symbol != "ES" {
		t.Errorf("expected symbol ES, got %q", fill.Symbol)
	}
	if fill.TradeType != "Long" {
		t.Errorf("expected trade type Long, got %q", fill.TradeType)
	}
	if fill.EntryDateTime != "2024-03-01 09:30:00  BP" {
		t.Errorf("entry datetime kept raw with marker, got %q", fill.EntryDateTime)
	}
	if fill.EntryPrice != "5000.25" {
		t.Errorf("expected entry price 5000.25, got %q", fill.EntryPrice)
	}
	if fill.Account != "sim01" {
		t.Errorf("expected account sim01, got %q", fill.Account)
	}
}

func TestParse_ColumnOrderDoesNotMatter(t *testing.T) {
	input := "Account\tSymbol\tEntry DateTime\tExit DateTime\n" +
		"live\tNQ\t2024-03-01 10:00:00 BP\t2024-03-01 10:00:00\n"

	fills, err := NewTSVParser().Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fills[0].Symbol != "NQ" || fills[0].Account != "live" {
		t.Errorf("columns not resolved by name: %+v", fills[0])
	}
}

func TestParse_RaggedRowsTolerated(t *testing.T) {
	input := exportHeader + "\n" +
		"ES\tLong\t2024-03-01 09:30:00 BP\n"

	fills, err := NewTSVParser().Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fills[0].Symbol != "ES" {
		t.Errorf("expected symbol ES, got %q", fills[0].Symbol)
	}
	if fills[0].ExitDateTime != "" {
		t.Errorf("truncated column should map to empty, got %q", fills[0].ExitDateTime)
	}
}

func TestParse_MissingColumnsMapToEmpty(t *testing.T) {
	input := "Symbol\tEntry DateTime\n" +
		"ES\t2024-03-01 09:30:00 BP\n"

	fills, err := NewTSVParser().Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fills[0].ProfitLoss != "" || fills[0].Account != "" {
		t.Errorf("absent columns should map to empty strings: %+v", fills[0])
	}
}

func TestParse_EmptyExport(t *testing.T) {
	_, err := NewTSVParser().Parse(strings.NewReader(""))
	if !errors.Is(err, ErrEmptyExport) {
		t.Errorf("expected ErrEmptyExport, got %v", err)
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	fills, err := NewTSVParser().Parse(strings.NewReader(exportHeader + "\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fills) != 0 {
		t.Errorf("expected no fills, got %d", len(fills))
	}
}

func TestParse_FieldsAreTrimmed(t *testing.T) {
	input := "Symbol\tEntry DateTime\tExit DateTime\n" +
		" ES \t2024-03-01 09:30:00 BP\t2024-03-01 09:30:00\n"

	fills, err := NewTSVParser().Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fills[0].Symbol != "ES" {
		t.Errorf("expected trimmed symbol, got %q", fills[0].Symbol)
	}
}
