package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"runtimetrade/internal/domain"
)

var tradeCSVHeader = []string{"ticker", "side", "shares", "price", "commission", "kind", "created_at"}

// WriteTradesToCSV exports trade events for backup or spreadsheet use.
func WriteTradesToCSV(trades []*domain.TradeEvent, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write(tradeCSVHeader)
	for _, t := range trades {
		writer.Write([]string{
			t.Ticker,
			string(t.Side),
			strconv.FormatFloat(t.Shares, 'f', -1, 64),
			strconv.FormatFloat(t.Price, 'f', -1, 64),
			strconv.FormatFloat(t.Commission, 'f', -1, 64),
			string(t.Kind),
			t.CreatedAt.Format(time.RFC3339),
		})
	}
	return writer.Error()
}

// ReadTradesFromCSV parses a trade history export. IDs and user scoping
// are left empty for the caller to assign; rows must carry the same
// columns WriteTradesToCSV produces.
func ReadTradesFromCSV(filename string) ([]*domain.TradeEvent, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	trades := make([]*domain.TradeEvent, 0, len(rows)-1)
	for i, row := range rows[1:] { // skip header
		if len(row) != len(tradeCSVHeader) {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", i+2, len(tradeCSVHeader), len(row))
		}
		side, ok := domain.ParseSide(row[1])
		if !ok {
			return nil, fmt.Errorf("row %d: invalid side %q", i+2, row[1])
		}
		kind, ok := domain.ParseEventKind(row[5])
		if !ok {
			return nil, fmt.Errorf("row %d: invalid kind %q", i+2, row[5])
		}
		shares, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid shares: %w", i+2, err)
		}
		price, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid price: %w", i+2, err)
		}
		commission, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid commission: %w", i+2, err)
		}
		createdAt, err := time.Parse(time.RFC3339, row[6])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid created_at: %w", i+2, err)
		}
		trades = append(trades, &domain.TradeEvent{
			Ticker:     domain.NormalizeTicker(row[0]),
			Side:       side,
			Shares:     shares,
			Price:      price,
			Commission: commission,
			Kind:       kind,
			CreatedAt:  createdAt,
		})
	}
	return trades, nil
}
