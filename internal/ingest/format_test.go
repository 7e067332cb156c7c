package ingest

import (
	"strings"
	"testing"
)

func TestDetect_KnownFormats(t *testing.T) {
	cases := []struct {
		name   string
		header []string
		want   FormatTag
	}{
		{"hyperliquid", []string{"time", "coin", "dir", "px", "sz", "fee", "closedPnl"}, FormatHyperliquid},
		{"bybit closed pnl", []string{"Symbol", "Closing Direction", "Qty", "Entry Price", "Exit Price", "Closed P&L", "Trade Time"}, FormatBybitClosedPnL},
		{"binance spot", []string{"Date(UTC)", "Market", "Type", "Price", "Amount", "Total", "Fee", "Fee Coin"}, FormatBinanceSpot},
		{"binance futures", []string{"Date(UTC)", "Symbol", "Side", "Price", "Quantity", "Amount", "Fee", "Realized Profit"}, FormatBinanceFutures},
		{"okx", []string{"instId", "ts", "side", "fillPx", "fillSz", "fee"}, FormatOKX},
		{"generic", []string{"when", "ticker", "action", "cost"}, FormatGeneric},
	}

	for _, tc := range cases {
		if got := Detect(tc.header); got != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

// The same header row must always classify to the same tag.
func TestDetect_Deterministic(t *testing.T) {
	header := []string{"Symbol", "Entry Price", "Exit Price", "Closing Direction", "Qty"}
	first := Detect(header)
	for i := 0; i < 50; i++ {
		if got := Detect(header); got != first {
			t.Fatalf("detection flapped: %s then %s", first, got)
		}
	}
}

// Entry/exit price pairs must win over the generic fragments ("price",
// "fee") that appear in every export.
func TestDetect_SpecificBeforeGeneric(t *testing.T) {
	header := []string{"Time", "Symbol", "Qty", "Price", "Fee", "Entry Price", "Exit Price", "Closing Direction"}
	if got := Detect(header); got != FormatBybitClosedPnL {
		t.Errorf("expected bybit-closed-pnl, got %s", got)
	}
}

func TestMapColumns_Hyperliquid(t *testing.T) {
	header := []string{"time", "coin", "dir", "px", "sz", "fee", "closedPnl"}
	m, err := MapColumns(FormatHyperliquid, header)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.Time != 0 || m.Symbol != 1 || m.Side != 2 || m.Price != 3 || m.Size != 4 || m.Fee != 5 || m.PnL != 6 {
		t.Errorf("unexpected mapping: %+v", m)
	}
	if m.Volume != -1 {
		t.Errorf("expected volume unresolved, got %d", m.Volume)
	}
}

func TestMapColumns_ExactBeforeSubstring(t *testing.T) {
	// "price" must resolve to the exact "Price" column, not the earlier
	// "Entry Price" that contains it.
	header := []string{"Entry Price", "Price", "Symbol", "Side"}
	m, err := MapColumns(FormatGeneric, header)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Price != 1 {
		t.Errorf("expected price at index 1, got %d", m.Price)
	}
	if m.EntryPrice != 0 {
		t.Errorf("expected entry price at index 0, got %d", m.EntryPrice)
	}
}

// Scenario F: undetectable symbol/price columns surface a terminal error
// listing the raw headers with their original casing plus format hints.
func TestMapColumns_UnusableHeadersError(t *testing.T) {
	header := []string{"Foo", "BAR", "baz"}
	_, err := MapColumns(FormatGeneric, header)
	if err == nil {
		t.Fatal("expected an error for unusable headers")
	}

	msg := err.Error()
	for _, h := range header {
		if !strings.Contains(msg, h) {
			t.Errorf("error should list raw header %q: %s", h, msg)
		}
	}
	if !strings.Contains(msg, "Hyperliquid") || !strings.Contains(msg, "Bybit") {
		t.Errorf("error should name the supported formats: %s", msg)
	}
}

func TestMapColumns_GenericFallbackResolvesCustomExport(t *testing.T) {
	header := []string{"Timestamp", "Ticker", "Action", "Fill Price", "Units", "Fees"}
	m, err := MapColumns(FormatGeneric, header)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Time != 0 || m.Symbol != 1 || m.Side != 2 || m.Price != 3 || m.Size != 4 || m.Fee != 5 {
		t.Errorf("unexpected mapping: %+v", m)
	}
}
