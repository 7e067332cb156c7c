package ingest

import (
	"testing"

	"github.com/vitos/trade_journal/internal/domain"
)

func TestBuildExecutions_Hyperliquid(t *testing.T) {
	header := []string{"Time", "Coin", "Dir", "Px", "Sz", "Fee", "Closed PnL"}
	format := Detect(header)
	cols, err := MapColumns(format, header)
	if err != nil {
		t.Fatalf("unexpected mapping error: %v", err)
	}

	rows := [][]string{
		{"03/15/2024 - 10:00:00", "BTC", "Open Long", "50000", "0.5", "1.2", "0"},
		{"03/15/2024 - 12:00:00", "BTC", "Close Long", "51000", "0.5", "1.3", "498.75"},
	}
	execs := BuildExecutions(rows, cols, format, 0)

	if len(execs) != 2 {
		t.Fatalf("expected 2 executions, got %d", len(execs))
	}
	first := execs[0]
	if first.Symbol != "BTC" || first.Side != domain.SideBuy || first.Price != 50000 || first.Quantity != 0.5 {
		t.Errorf("unexpected first execution: %+v", first)
	}
	if first.Volume != 25000 {
		t.Errorf("expected volume fallback price*qty = 25000, got %v", first.Volume)
	}
	second := execs[1]
	if second.Side != domain.SideSell || second.ClosedPnL != 498.75 {
		t.Errorf("unexpected second execution: %+v", second)
	}
	if first.Timestamp >= second.Timestamp {
		t.Errorf("executions not sorted: %d >= %d", first.Timestamp, second.Timestamp)
	}
}

func TestBuildExecutions_SkipsInvalidRows(t *testing.T) {
	header := []string{"Time", "Coin", "Dir", "Px", "Sz", "Fee", "Closed PnL"}
	format := Detect(header)
	cols, _ := MapColumns(format, header)

	rows := [][]string{
		{"03/15/2024 - 10:00:00", "", "buy", "100", "1", "0", "0"},     // no symbol
		{"03/15/2024 - 10:00:01", "BTC", "hold", "100", "1", "0", "0"}, // unknown side
		{"03/15/2024 - 10:00:02", "BTC", "buy", "0", "1", "0", "0"},    // zero price
		{"03/15/2024 - 10:00:03", "BTC", "buy", "100", "1", "0", "0"},  // valid
	}
	execs := BuildExecutions(rows, cols, format, 0)

	if len(execs) != 1 {
		t.Fatalf("expected 1 valid execution, got %d", len(execs))
	}
	if execs[0].Price != 100 {
		t.Errorf("wrong surviving row: %+v", execs[0])
	}
}

func TestBuildExecutions_UnparsableTimestampKeepsDocumentOrder(t *testing.T) {
	header := []string{"Time", "Coin", "Dir", "Px", "Sz", "Fee", "Closed PnL"}
	format := Detect(header)
	cols, _ := MapColumns(format, header)

	const ingestedAt = int64(1_700_000_000_000)
	rows := [][]string{
		{"???", "BTC", "buy", "100", "1", "0", "0"},
		{"???", "BTC", "sell", "110", "1", "0", "10"},
	}
	execs := BuildExecutions(rows, cols, format, ingestedAt)

	if len(execs) != 2 {
		t.Fatalf("expected 2 executions, got %d", len(execs))
	}
	if execs[0].Timestamp != ingestedAt || execs[1].Timestamp != ingestedAt+1 {
		t.Errorf("expected ingestion-time fallbacks in document order, got %d and %d",
			execs[0].Timestamp, execs[1].Timestamp)
	}
	if execs[0].Side != domain.SideBuy {
		t.Errorf("document order lost: first execution is %+v", execs[0])
	}
}

func TestBuildExecutions_DefaultQuantityWithoutSizeColumn(t *testing.T) {
	cols := ColumnMap{Time: 0, Symbol: 1, Side: 2, Price: 3, Size: -1, Fee: -1, PnL: -1, Volume: -1, EntryPrice: -1, ExitPrice: -1, CloseDirection: -1}
	rows := [][]string{{"2024-03-15 10:00:00", "BTC", "buy", "100"}}

	execs := BuildExecutions(rows, cols, FormatGeneric, 0)
	if len(execs) != 1 {
		t.Fatalf("expected 1 execution, got %d", len(execs))
	}
	if execs[0].Quantity != 1 {
		t.Errorf("expected default quantity 1, got %v", execs[0].Quantity)
	}
}

func TestBuildExecutions_SynthesizesClosedPosition(t *testing.T) {
	header := []string{"Symbol", "Qty", "Entry Price", "Exit Price", "Closed P&L", "Trade Time", "Closing Direction", "Trading Fee"}
	format := Detect(header)
	if format != FormatBybitClosedPnL {
		t.Fatalf("expected bybit-closed-pnl, got %s", format)
	}
	cols, err := MapColumns(format, header)
	if err != nil {
		t.Fatalf("unexpected mapping error: %v", err)
	}

	rows := [][]string{
		{"ETHUSDT", "2", "3000", "3100", "197.6", "2024-03-15 12:00:00", "Sell", "2.4"},
	}
	execs := BuildExecutions(rows, cols, format, 0)

	if len(execs) != 2 {
		t.Fatalf("expected entry+exit pair, got %d executions", len(execs))
	}
	entry, exit := execs[0], execs[1]

	// Closing by selling means the position was long.
	if entry.Side != domain.SideBuy || exit.Side != domain.SideSell {
		t.Errorf("expected buy entry / sell exit, got %s / %s", entry.Side, exit.Side)
	}
	if entry.Symbol != "ETH" || exit.Symbol != "ETH" {
		t.Errorf("expected cleaned symbol ETH, got %q / %q", entry.Symbol, exit.Symbol)
	}
	if entry.Price != 3000 || exit.Price != 3100 {
		t.Errorf("unexpected leg prices: %v / %v", entry.Price, exit.Price)
	}
	if exit.Timestamp-entry.Timestamp != 1000 {
		t.Errorf("expected entry backdated by 1000ms, got gap %d", exit.Timestamp-entry.Timestamp)
	}
	if entry.ClosedPnL != 0 {
		t.Errorf("entry leg must not carry reported P&L, got %v", entry.ClosedPnL)
	}
	if exit.ClosedPnL != 197.6 {
		t.Errorf("exit leg should carry the reported P&L, got %v", exit.ClosedPnL)
	}
	if entry.Fee != 1.2 || exit.Fee != 1.2 {
		t.Errorf("expected fee split evenly, got %v / %v", entry.Fee, exit.Fee)
	}
}

func TestBuildExecutions_SynthesisSkipsIncompleteRows(t *testing.T) {
	header := []string{"Symbol", "Qty", "Entry Price", "Exit Price", "Closed P&L", "Trade Time", "Closing Direction", "Trading Fee"}
	format := Detect(header)
	cols, _ := MapColumns(format, header)

	rows := [][]string{
		{"ETHUSDT", "2", "0", "3100", "100", "2024-03-15 12:00:00", "Sell", "1"},   // no entry price
		{"ETHUSDT", "2", "3000", "3100", "100", "2024-03-15 12:01:00", "", "1"},    // no direction
		{"BTCUSDT", "1", "60000", "61000", "998", "2024-03-15 12:02:00", "Sell", "2"},
	}
	execs := BuildExecutions(rows, cols, format, 0)

	if len(execs) != 2 {
		t.Fatalf("expected only the complete row to synthesize, got %d executions", len(execs))
	}
	if execs[0].Symbol != "BTC" {
		t.Errorf("wrong surviving row: %+v", execs[0])
	}
}
