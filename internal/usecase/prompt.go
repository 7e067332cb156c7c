package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/vitos/trade_journal/internal/domain"
)

const (
	promptTopSymbols = 5
	promptLastGroups = 10
)

// BuildPrompt formats a snapshot into the plain-text block consumed by the
// narrative collaborator: headline metrics, top symbols, every bucketed
// breakdown and the most recent round trips, followed by the response schema.
func BuildPrompt(snap *domain.StatisticsSnapshot, groups []domain.PositionGroup) string {
	var b strings.Builder

	b.WriteString("You are reviewing a trader's closed round trips. Analyze the statistics below.\n\n")

	fmt.Fprintf(&b, "Trades: %d (winners %d, losers %d)\n", snap.TotalTrades, snap.Winners, snap.Losers)
	fmt.Fprintf(&b, "Win rate: %.1f%%\n", snap.WinRate)
	fmt.Fprintf(&b, "Total P&L: %.2f\n", snap.TotalPnL)
	fmt.Fprintf(&b, "Avg win: %.2f%%, avg loss: %.2f%%, risk/reward: %.2f\n", snap.AvgWinPct, snap.AvgLossPct, snap.RiskReward)
	fmt.Fprintf(&b, "Avg holding time: %s\n", snap.AvgHolding)
	fmt.Fprintf(&b, "Longest win streak: %d, longest loss streak: %d\n", snap.MaxWinStreak, snap.MaxLossStreak)
	if snap.Tilt.Trades > 0 {
		fmt.Fprintf(&b, "Post-losing-streak trades: %d, pnl %.2f, win rate %.1f%%\n", snap.Tilt.Trades, snap.Tilt.PnL, snap.Tilt.WinRate)
	}
	if snap.OpenPositions > 0 {
		fmt.Fprintf(&b, "Open positions excluded from statistics: %d\n", snap.OpenPositions)
	}

	b.WriteString("\nTop symbols:\n")
	for i, s := range snap.Symbols {
		if i >= promptTopSymbols {
			break
		}
		fmt.Fprintf(&b, "- %s: %d trades, pnl %.2f, win rate %.1f%%\n", s.Symbol, s.Trades, s.PnL, s.WinRate)
	}

	writeBuckets(&b, "Holding-time buckets", snap.HoldingBuckets)
	writeBuckets(&b, "Sessions (UTC)", snap.Sessions)
	writeBuckets(&b, "Days of week", snap.Weekdays)
	writeBuckets(&b, "Direction", snap.Directions)

	b.WriteString("\nMost recent round trips:\n")
	start := len(groups) - promptLastGroups
	if start < 0 {
		start = 0
	}
	for _, g := range groups[start:] {
		fmt.Fprintf(&b, "- %s %s %s qty %.4f entry %.4f exit %.4f pnl %.2f (%.2f%%)\n",
			time.UnixMilli(g.OpenedAt()).UTC().Format("2006-01-02 15:04"),
			g.Symbol, g.Direction, g.EntryQty, g.EntryAvg, g.ExitAvg, g.PnL, g.PnLPercent)
	}

	b.WriteString("\nRespond with a JSON object: {\"grade\": string, " +
		"\"scores\": [{\"category\": string, \"score\": 0-100, \"label\": string}], " +
		"\"strengths\": [2-3 strings], " +
		"\"mistakes\": [{\"description\": string, \"severity\": string} x 2-3], " +
		"\"actionItems\": [exactly 3 strings], " +
		"\"pattern\": one sentence describing the dominant behavioral pattern}\n")

	return b.String()
}

func writeBuckets(b *strings.Builder, title string, buckets []domain.BucketStat) {
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, s := range buckets {
		if s.Trades == 0 {
			continue
		}
		fmt.Fprintf(b, "- %s: %d trades, pnl %.2f, win rate %.1f%%, avg pnl %.2f\n",
			s.Label, s.Trades, s.PnL, s.WinRate, s.AvgPnL)
	}
}
