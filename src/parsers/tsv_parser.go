package parsers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/username/tradefolio/backend/src/models"
)

// ErrEmptyExport is returned when the export contains no header row.
var ErrEmptyExport = errors.New("execution export is empty")

// TSVParser reads the broker's tab-delimited execution export. Columns are
// resolved by header name, so extra columns are ignored and ragged rows
// (fewer or more fields than the header) are tolerated: whatever named
// columns are still present get mapped, the rest stay empty.
type TSVParser struct{}

func NewTSVParser() *TSVParser {
	return &TSVParser{}
}

func (p *TSVParser) Parse(file io.Reader) ([]models.RawFill, error) {
	reader := csv.NewReader(file)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyExport
	}
	if err != nil {
		return nil, fmt.Errorf("reading header row: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	var fills []models.RawFill
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record %d: %w", len(fills), err)
		}
		fills = append(fills, models.RawFill{
			Symbol:            column(index, record, models.ColSymbol),
			TradeType:         column(index, record, models.ColTradeType),
			EntryDateTime:     column(index, record, models.ColEntryDateTime),
			ExitDateTime:      column(index, record, models.ColExitDateTime),
			EntryPrice:        column(index, record, models.ColEntryPrice),
			ExitPrice:         column(index, record, models.ColExitPrice),
			TradeQuantity:     column(index, record, models.ColTradeQuantity),
			MaxOpenQuantity:   column(index, record, models.ColMaxOpenQuantity),
			MaxClosedQuantity: column(index, record, models.ColMaxClosedQuantity),
			ProfitLoss:        column(index, record, models.ColProfitLoss),
			Account:           column(index, record, models.ColAccount),
		})
	}
	return fills, nil
}

// column extracts a named field from a possibly ragged record.
func column(index map[string]int, record []string, name string) string {
	i, ok := index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
