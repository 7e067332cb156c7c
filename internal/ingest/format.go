package ingest

import (
	"fmt"
	"strings"
)

// FormatTag identifies the export shape a document was classified into.
type FormatTag string

const (
	FormatHyperliquid    FormatTag = "hyperliquid"
	FormatBinanceSpot    FormatTag = "binance-spot"
	FormatBinanceFutures FormatTag = "binance-futures"
	FormatBybitClosedPnL FormatTag = "bybit-closed-pnl"
	FormatOKX            FormatTag = "okx"
	FormatGeneric        FormatTag = "generic"
)

func normalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(h)), " ")
}

// Detect classifies a header row into a FormatTag. Rules are ordered from the
// most specific signature to the broadest: paired entry/exit price columns
// identify a closed-position-per-row export before fragments like "price" or
// "fee", which appear in every format. Never fails; unknown headers fall back
// to the generic format.
func Detect(header []string) FormatTag {
	norm := make([]string, len(header))
	for i, h := range header {
		norm[i] = normalizeHeader(h)
	}
	joined := "|" + strings.Join(norm, "|") + "|"
	has := func(frag string) bool { return strings.Contains(joined, frag) }

	switch {
	case (has("entry price") || has("entryprice")) && (has("exit price") || has("exitprice")):
		return FormatBybitClosedPnL
	case has("instid") || has("inst id") || has("instrument"):
		return FormatOKX
	case has("|coin|") && (has("closed pnl") || has("closedpnl") || has("|dir|")):
		return FormatHyperliquid
	case has("fee coin") || has("fee currency") || has("avg filled price") || has("avgprice"):
		return FormatBinanceSpot
	case has("realized profit") || has("realized pnl") || (has("quote") && (has("commission") || has("fee"))):
		return FormatBinanceFutures
	default:
		return FormatGeneric
	}
}

// ColumnMap holds the resolved index of each semantic column, -1 when the
// header row has no matching column.
type ColumnMap struct {
	Time           int
	Symbol         int
	Side           int
	Price          int
	Size           int
	Fee            int
	PnL            int
	Volume         int
	EntryPrice     int
	ExitPrice      int
	CloseDirection int
}

// columnCandidates lists, per semantic field, the ordered header-name
// fragments to try. Exact matches win over substring containment.
type columnCandidates struct {
	time           []string
	symbol         []string
	side           []string
	price          []string
	size           []string
	fee            []string
	pnl            []string
	volume         []string
	entryPrice     []string
	exitPrice      []string
	closeDirection []string
}

var formatColumns = map[FormatTag]columnCandidates{
	FormatHyperliquid: {
		time:   []string{"time", "date"},
		symbol: []string{"coin"},
		side:   []string{"dir", "direction", "side"},
		price:  []string{"px", "price"},
		size:   []string{"sz", "size"},
		fee:    []string{"fee"},
		pnl:    []string{"closedpnl", "closed pnl", "pnl"},
		volume: []string{"ntl", "notional", "value"},
	},
	FormatBinanceSpot: {
		time:   []string{"date(utc)", "date (utc)", "date", "time"},
		symbol: []string{"pair", "market", "symbol"},
		side:   []string{"type", "side"},
		price:  []string{"price", "avg filled price", "avgprice"},
		size:   []string{"amount", "executed", "qty", "quantity", "filled"},
		fee:    []string{"fee", "commission"},
		volume: []string{"total", "volume"},
	},
	FormatBinanceFutures: {
		time:   []string{"date(utc)", "date (utc)", "time", "date"},
		symbol: []string{"symbol", "pair"},
		side:   []string{"side", "type"},
		price:  []string{"price", "avg price"},
		size:   []string{"quantity", "qty", "size", "amount"},
		fee:    []string{"fee", "commission"},
		pnl:    []string{"realized profit", "realized pnl", "pnl"},
		volume: []string{"quote qty", "turnover", "amount"},
	},
	FormatBybitClosedPnL: {
		time:           []string{"trade time", "closed time", "time", "date"},
		symbol:         []string{"symbol", "contracts", "market"},
		size:           []string{"qty", "closed size", "quantity", "size"},
		fee:            []string{"trading fee", "fee"},
		pnl:            []string{"closed p&l", "closed pnl", "realized p&l", "realized pnl", "pnl"},
		entryPrice:     []string{"entry price", "avg entry price", "entryprice", "open price"},
		exitPrice:      []string{"exit price", "avg exit price", "exitprice", "close price"},
		closeDirection: []string{"closing direction", "trade type", "direction", "side"},
	},
	FormatOKX: {
		time:   []string{"ts", "time", "date"},
		symbol: []string{"instid", "inst id", "instrument", "symbol"},
		side:   []string{"side", "direction"},
		price:  []string{"fillpx", "fill px", "avgpx", "px", "price"},
		size:   []string{"fillsz", "fill sz", "sz", "size", "qty", "amount"},
		fee:    []string{"fee"},
		pnl:    []string{"pnl", "profit"},
		volume: []string{"value", "notional"},
	},
	// The generic fallback carries the union of every known format's
	// candidates, broadest first, so unrecognized custom exports still map.
	FormatGeneric: {
		time:           []string{"time", "date", "timestamp", "created", "ts", "filled time"},
		symbol:         []string{"symbol", "coin", "pair", "market", "instrument", "ticker", "contracts", "asset", "instid"},
		side:           []string{"side", "dir", "direction", "type", "action"},
		price:          []string{"price", "px", "avg filled price", "fill price", "avgprice", "rate"},
		size:           []string{"size", "qty", "quantity", "amount", "sz", "filled", "units"},
		fee:            []string{"fee", "commission"},
		pnl:            []string{"closed pnl", "closedpnl", "closed p&l", "realized profit", "realized pnl", "pnl", "profit"},
		volume:         []string{"total", "value", "notional", "turnover", "quote qty", "ntl", "volume"},
		entryPrice:     []string{"entry price", "entryprice", "avg entry price", "open price"},
		exitPrice:      []string{"exit price", "exitprice", "avg exit price", "close price"},
		closeDirection: []string{"closing direction", "trade type"},
	},
}

// MapColumns resolves the semantic column indices for the detected format.
// It fails only when the export is unusable: no symbol column, or neither a
// price nor an entry-price column. The error message preserves the raw header
// casing so the user can see exactly what was found.
func MapColumns(format FormatTag, header []string) (ColumnMap, error) {
	norm := make([]string, len(header))
	for i, h := range header {
		norm[i] = normalizeHeader(h)
	}

	c, ok := formatColumns[format]
	if !ok {
		c = formatColumns[FormatGeneric]
	}

	m := ColumnMap{
		Time:           resolveColumn(norm, c.time),
		Symbol:         resolveColumn(norm, c.symbol),
		Side:           resolveColumn(norm, c.side),
		Price:          resolveColumn(norm, c.price),
		Size:           resolveColumn(norm, c.size),
		Fee:            resolveColumn(norm, c.fee),
		PnL:            resolveColumn(norm, c.pnl),
		Volume:         resolveColumn(norm, c.volume),
		EntryPrice:     resolveColumn(norm, c.entryPrice),
		ExitPrice:      resolveColumn(norm, c.exitPrice),
		CloseDirection: resolveColumn(norm, c.closeDirection),
	}

	if m.Symbol < 0 || (m.Price < 0 && m.EntryPrice < 0) {
		return m, fmt.Errorf(
			"could not detect required columns in headers [%s]; supported exports: Hyperliquid trade history, Binance spot trade history, Binance futures trade history, Bybit closed P&L, OKX fills, or a generic CSV with at least symbol, side and price columns",
			strings.Join(header, ", "))
	}
	return m, nil
}

func resolveColumn(headers []string, candidates []string) int {
	for _, cand := range candidates {
		for i, h := range headers {
			if h == cand {
				return i
			}
		}
	}
	for _, cand := range candidates {
		for i, h := range headers {
			if strings.Contains(h, cand) {
				return i
			}
		}
	}
	return -1
}
