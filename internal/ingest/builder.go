package ingest

import (
	"math"
	"sort"

	"github.com/vitos/trade_journal/internal/domain"
)

// BuildExecutions converts data rows (header excluded) into a normalized
// execution list sorted ascending by timestamp. Rows that fail validation
// (no symbol after cleaning, no side, non-positive price) are skipped
// silently; partial success is expected with real-world export noise.
//
// Unparsable timestamps resolve to ingestedAt plus the row index in
// milliseconds, so document order is preserved as the tiebreak instead of an
// epoch-0 sentinel sorting in front of real data.
func BuildExecutions(rows [][]string, cols ColumnMap, format FormatTag, ingestedAt int64) []domain.Execution {
	var execs []domain.Execution

	for i, row := range rows {
		ts := ParseTimestamp(cell(row, cols.Time))
		if ts == 0 {
			ts = ingestedAt + int64(i)
		}

		if format == FormatBybitClosedPnL {
			entry, exit, ok := synthesizeClosedPosition(row, cols, format, ts)
			if ok {
				execs = append(execs, entry, exit)
			}
			continue
		}

		symbol := CleanSymbol(cell(row, cols.Symbol), format)
		side := ParseSide(cell(row, cols.Side))
		price := ParseNumber(cell(row, cols.Price))
		if symbol == "" || side == "" || price <= 0 {
			continue
		}

		qty := 1.0
		if cols.Size >= 0 {
			qty = math.Abs(ParseNumber(cell(row, cols.Size)))
		}
		volume := ParseNumber(cell(row, cols.Volume))
		if volume == 0 {
			volume = price * qty
		}

		execs = append(execs, domain.Execution{
			Symbol:    symbol,
			Side:      side,
			Price:     price,
			Quantity:  qty,
			Timestamp: ts,
			Fee:       math.Abs(ParseNumber(cell(row, cols.Fee))),
			ClosedPnL: ParseNumber(cell(row, cols.PnL)),
			Volume:    volume,
		})
	}

	sort.SliceStable(execs, func(a, b int) bool {
		return execs[a].Timestamp < execs[b].Timestamp
	})
	return execs
}

// synthesizeClosedPosition expands a one-row-is-a-closed-trip record into a
// paired entry and exit. The closing direction tells us what the position
// was: a sell closes a long (entry=buy, exit=sell), a buy closes a short.
// The entry is backdated 1000ms, all reported P&L goes to the exit so
// downstream aggregation cannot double-count, and the fee is split evenly
// between the two legs — an approximation, the export gives no breakdown.
func synthesizeClosedPosition(row []string, cols ColumnMap, format FormatTag, ts int64) (domain.Execution, domain.Execution, bool) {
	var entry, exit domain.Execution

	symbol := CleanSymbol(cell(row, cols.Symbol), format)
	closeSide := ParseSide(cell(row, cols.CloseDirection))
	entryPrice := ParseNumber(cell(row, cols.EntryPrice))
	exitPrice := ParseNumber(cell(row, cols.ExitPrice))
	if symbol == "" || closeSide == "" || entryPrice <= 0 || exitPrice <= 0 {
		return entry, exit, false
	}

	qty := 1.0
	if cols.Size >= 0 {
		qty = math.Abs(ParseNumber(cell(row, cols.Size)))
	}
	fee := math.Abs(ParseNumber(cell(row, cols.Fee)))
	pnl := ParseNumber(cell(row, cols.PnL))

	entrySide := domain.SideBuy
	if closeSide == domain.SideBuy {
		entrySide = domain.SideSell
	}

	entry = domain.Execution{
		Symbol:    symbol,
		Side:      entrySide,
		Price:     entryPrice,
		Quantity:  qty,
		Timestamp: ts - 1000,
		Fee:       fee / 2,
		ClosedPnL: 0,
		Volume:    entryPrice * qty,
	}
	exit = domain.Execution{
		Symbol:    symbol,
		Side:      closeSide,
		Price:     exitPrice,
		Quantity:  qty,
		Timestamp: ts,
		Fee:       fee / 2,
		ClosedPnL: pnl,
		Volume:    exitPrice * qty,
	}
	return entry, exit, true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
