package ingest

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/vitos/trade_journal/internal/domain"
)

// ParseNumber turns a raw cell into a float. Currency symbols, thousands
// separators, internal whitespace and a trailing unit suffix (e.g. a coin
// ticker glued onto the number) are stripped. Returns 0 when the remainder is
// not a finite number; never fails.
func ParseNumber(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	var b strings.Builder
	for _, r := range s {
		if r == '$' || r == '€' || r == '£' || r == ',' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	s = b.String()

	end := len(s)
	for end > 0 {
		c := s[end-1]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			end--
			continue
		}
		break
	}
	s = s[:end]

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

var slashDate = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})(?:[ T]+(\d{1,2}):(\d{2})(?::(\d{2}))?)?$`)

// ParseTimestamp turns a raw cell into milliseconds since epoch. Grammars are
// tried in priority order; UTC is assumed unless an explicit offset is
// present. Bare numerics are scaled by magnitude (microseconds, milliseconds,
// seconds). Returns the 0 sentinel when nothing matches: callers must treat 0
// as "unknown" and substitute an ingestion-time default.
func ParseTimestamp(raw string) int64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	// Hyperliquid style: MM/DD/YYYY - HH:MM:SS
	if t, err := time.ParseInLocation("1/2/2006 - 15:04:05", s, time.UTC); err == nil {
		return t.UnixMilli()
	}

	// Ambiguous P1/P2/YYYY: the part larger than 12 is the day.
	if m := slashDate.FindStringSubmatch(s); m != nil {
		p1, _ := strconv.Atoi(m[1])
		p2, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		hour, _ := strconv.Atoi(m[4])
		min, _ := strconv.Atoi(m[5])
		sec, _ := strconv.Atoi(m[6])

		month, day := p1, p2
		if p1 > 12 {
			month, day = p2, p1
		}
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			return time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC).UnixMilli()
		}
		return 0
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UnixMilli()
	}

	iso := s
	if len(iso) >= 8 && iso[4] == '/' {
		iso = strings.Replace(iso, "/", "-", 2)
	}
	for _, layout := range []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	} {
		if t, err := time.ParseInLocation(layout, iso, time.UTC); err == nil {
			return t.UnixMilli()
		}
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		switch {
		case v > 1e15: // microseconds
			return int64(v / 1000)
		case v > 1e12: // milliseconds
			return int64(v)
		case v > 1e9: // seconds
			return int64(v * 1000)
		}
		return 0
	}

	for _, layout := range []string{
		time.RFC1123,
		time.RFC822,
		"Jan 2, 2006 15:04:05",
		"02 Jan 2006 15:04:05",
		"2006.01.02 15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}

// ParseSide resolves a raw side cell to buy or sell. Composite phrases like
// "Close Short" are checked before the bare keywords they contain.
// Unrecognized input returns the empty side and the row is rejected upstream.
func ParseSide(raw string) domain.Side {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	switch {
	case strings.Contains(s, "open long"), strings.Contains(s, "close short"):
		return domain.SideBuy
	case strings.Contains(s, "open short"), strings.Contains(s, "close long"):
		return domain.SideSell
	case strings.Contains(s, "buy"), strings.Contains(s, "long"), strings.Contains(s, "bid"):
		return domain.SideBuy
	case strings.Contains(s, "sell"), strings.Contains(s, "short"), strings.Contains(s, "ask"):
		return domain.SideSell
	}
	return ""
}

// quoteSuffixes is ordered so that longer suffixes strip before their
// prefixes (USDT before USD).
var quoteSuffixes = []string{
	"USDT", "USDC", "BUSD", "FDUSD", "TUSD", "USD",
	"EUR", "GBP", "JPY", "AUD",
	"BTC", "ETH", "BNB",
}

// CleanSymbol reduces an exchange-specific symbol to the base-asset ticker.
func CleanSymbol(raw string, format FormatTag) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	switch format {
	case FormatHyperliquid:
		// Already bare coin names.
		return s
	case FormatOKX:
		// BTC-USDT-SWAP -> BTC
		return strings.SplitN(s, "-", 2)[0]
	case FormatBinanceSpot, FormatBinanceFutures, FormatBybitClosedPnL:
		for _, q := range quoteSuffixes {
			if strings.HasSuffix(s, q) && len(s) > len(q) {
				return strings.TrimSuffix(s, q)
			}
		}
		return s
	default:
		cleaned := strings.NewReplacer("-", "", "_", "", "/", "", " ", "").Replace(s)
		for _, q := range []string{"USDT", "USDC", "BUSD", "FDUSD", "TUSD", "USD"} {
			cleaned = strings.Replace(cleaned, q, "", 1)
		}
		if cleaned == "" {
			return s
		}
		return cleaned
	}
}
