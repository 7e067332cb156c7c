package usecase

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vitos/trade_journal/internal/domain"
)

// Holding-time bucket thresholds in milliseconds.
const (
	holdScalp = 10 * 60 * 1000
	holdIntra = 4 * 60 * 60 * 1000
	holdDay   = 24 * 60 * 60 * 1000
	holdSwing = 7 * 24 * 60 * 60 * 1000
)

// ComputeStatistics derives the full snapshot from a chronologically ordered
// group list. Pure: same input, same output, no internal state.
func ComputeStatistics(groups []domain.PositionGroup, openPositions int) *domain.StatisticsSnapshot {
	snap := &domain.StatisticsSnapshot{
		OpenPositions: openPositions,
		AvgHolding:    "0s",
	}
	if len(groups) == 0 {
		return snap
	}

	snap.TotalTrades = len(groups)

	totalPnL := decimal.Zero
	var sumWinPct, sumLossPct float64
	var holdSum float64
	var holdCount int

	for _, g := range groups {
		totalPnL = totalPnL.Add(decimal.NewFromFloat(g.PnL))
		if g.PnL > 0 {
			snap.Winners++
			sumWinPct += g.PnLPercent
		} else {
			// A P&L of exactly zero counts as a loss.
			snap.Losers++
			sumLossPct += g.PnLPercent
		}
		if g.HoldingTime > 0 {
			holdSum += float64(g.HoldingTime)
			holdCount++
		}
	}

	snap.TotalPnL = totalPnL.InexactFloat64()
	snap.WinRate = float64(snap.Winners) / float64(snap.TotalTrades) * 100
	if snap.Winners > 0 {
		snap.AvgWinPct = sumWinPct / float64(snap.Winners)
	}
	if snap.Losers > 0 {
		snap.AvgLossPct = sumLossPct / float64(snap.Losers)
	}
	if snap.AvgLossPct != 0 {
		snap.RiskReward = math.Abs(snap.AvgWinPct / snap.AvgLossPct)
	}
	if holdCount > 0 {
		snap.AvgHoldingMs = holdSum / float64(holdCount)
		snap.AvgHolding = FormatDuration(snap.AvgHoldingMs)
	}

	snap.Symbols = symbolBreakdown(groups)
	snap.HoldingBuckets = bucketize(groups, holdingBucketLabels, holdingBucketOf)
	snap.Sessions = bucketize(groups, sessionLabels, sessionOf)
	snap.Weekdays = bucketize(groups, weekdayLabels, weekdayOf)
	snap.Directions = bucketize(groups, directionLabels, directionOf)
	snap.MaxWinStreak, snap.MaxLossStreak, snap.Tilt = streaks(groups)
	snap.Monthly = monthlyPnL(groups)
	snap.Equity = equityCurve(groups)
	return snap
}

// FormatDuration renders milliseconds as a human duration: seconds under a
// minute, minutes under an hour, then hours and days to one decimal.
func FormatDuration(ms float64) string {
	switch {
	case ms < 60_000:
		return fmt.Sprintf("%ds", int(ms/1000))
	case ms < 3_600_000:
		return fmt.Sprintf("%dm", int(ms/60_000))
	case ms < 86_400_000:
		return fmt.Sprintf("%.1fh", ms/3_600_000)
	default:
		return fmt.Sprintf("%.1fd", ms/86_400_000)
	}
}

func symbolBreakdown(groups []domain.PositionGroup) []domain.SymbolStat {
	type agg struct {
		trades int
		wins   int
		pnl    decimal.Decimal
	}
	bySymbol := make(map[string]*agg)
	for _, g := range groups {
		a := bySymbol[g.Symbol]
		if a == nil {
			a = &agg{pnl: decimal.Zero}
			bySymbol[g.Symbol] = a
		}
		a.trades++
		if g.PnL > 0 {
			a.wins++
		}
		a.pnl = a.pnl.Add(decimal.NewFromFloat(g.PnL))
	}

	stats := make([]domain.SymbolStat, 0, len(bySymbol))
	for sym, a := range bySymbol {
		stats = append(stats, domain.SymbolStat{
			Symbol:  sym,
			Trades:  a.trades,
			PnL:     a.pnl.InexactFloat64(),
			WinRate: float64(a.wins) / float64(a.trades) * 100,
		})
	}
	sort.Slice(stats, func(a, b int) bool {
		if stats[a].Trades != stats[b].Trades {
			return stats[a].Trades > stats[b].Trades
		}
		return stats[a].Symbol < stats[b].Symbol
	})
	return stats
}

var (
	holdingBucketLabels = []string{"scalps", "intraday", "day", "swing", "position"}
	sessionLabels       = []string{"asia", "europe", "us"}
	weekdayLabels       = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	directionLabels     = []string{"long", "short"}
)

func holdingBucketOf(g *domain.PositionGroup) string {
	switch {
	case g.HoldingTime < holdScalp:
		return "scalps"
	case g.HoldingTime < holdIntra:
		return "intraday"
	case g.HoldingTime < holdDay:
		return "day"
	case g.HoldingTime < holdSwing:
		return "swing"
	default:
		return "position"
	}
}

func sessionOf(g *domain.PositionGroup) string {
	hour := time.UnixMilli(g.OpenedAt()).UTC().Hour()
	switch {
	case hour < 8:
		return "asia"
	case hour < 16:
		return "europe"
	default:
		return "us"
	}
}

func weekdayOf(g *domain.PositionGroup) string {
	return time.UnixMilli(g.OpenedAt()).UTC().Weekday().String()
}

func directionOf(g *domain.PositionGroup) string {
	return string(g.Direction)
}

// bucketize aggregates groups into a fixed, ordered label set. Empty buckets
// are kept so the output shape is stable.
func bucketize(groups []domain.PositionGroup, labels []string, keyOf func(*domain.PositionGroup) string) []domain.BucketStat {
	type agg struct {
		trades int
		wins   int
		pnl    decimal.Decimal
	}
	byLabel := make(map[string]*agg, len(labels))
	for _, l := range labels {
		byLabel[l] = &agg{pnl: decimal.Zero}
	}

	for i := range groups {
		a := byLabel[keyOf(&groups[i])]
		if a == nil {
			continue
		}
		a.trades++
		if groups[i].PnL > 0 {
			a.wins++
		}
		a.pnl = a.pnl.Add(decimal.NewFromFloat(groups[i].PnL))
	}

	stats := make([]domain.BucketStat, 0, len(labels))
	for _, l := range labels {
		a := byLabel[l]
		s := domain.BucketStat{Label: l, Trades: a.trades, PnL: a.pnl.InexactFloat64()}
		if a.trades > 0 {
			s.WinRate = float64(a.wins) / float64(a.trades) * 100
			s.AvgPnL = s.PnL / float64(a.trades)
		}
		stats = append(stats, s)
	}
	return stats
}

// streaks scans groups in chronological order for the longest winner and
// loser runs, and tags the tilt subset: once a losing streak reaches three,
// every subsequent trade — further losses and the trade that breaks the
// streak — is counted toward the post-streak aggregate.
func streaks(groups []domain.PositionGroup) (maxWin, maxLoss int, tilt domain.TiltStat) {
	var winRun, lossRun int
	tiltPnL := decimal.Zero
	tiltWins := 0

	for _, g := range groups {
		if lossRun >= 3 {
			tilt.Trades++
			tiltPnL = tiltPnL.Add(decimal.NewFromFloat(g.PnL))
			if g.PnL > 0 {
				tiltWins++
			}
		}
		if g.PnL > 0 {
			winRun++
			lossRun = 0
		} else {
			lossRun++
			winRun = 0
		}
		if winRun > maxWin {
			maxWin = winRun
		}
		if lossRun > maxLoss {
			maxLoss = lossRun
		}
	}

	tilt.PnL = tiltPnL.InexactFloat64()
	if tilt.Trades > 0 {
		tilt.WinRate = float64(tiltWins) / float64(tilt.Trades) * 100
	}
	return maxWin, maxLoss, tilt
}

func monthlyPnL(groups []domain.PositionGroup) []domain.MonthlyPnL {
	byMonth := make(map[string]decimal.Decimal)
	for i := range groups {
		key := time.UnixMilli(groups[i].ClosedAt()).UTC().Format("2006-01")
		byMonth[key] = byMonth[key].Add(decimal.NewFromFloat(groups[i].PnL))
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]domain.MonthlyPnL, 0, len(months))
	for _, m := range months {
		out = append(out, domain.MonthlyPnL{Month: m, PnL: byMonth[m].InexactFloat64()})
	}
	return out
}

// equityCurve is the running P&L sum, downsampled to roughly 100 points by
// taking every Nth point; the final point is always kept.
func equityCurve(groups []domain.PositionGroup) []domain.EquityPoint {
	running := decimal.Zero
	full := make([]domain.EquityPoint, 0, len(groups))
	for i := range groups {
		running = running.Add(decimal.NewFromFloat(groups[i].PnL))
		full = append(full, domain.EquityPoint{
			Timestamp: groups[i].ClosedAt(),
			PnL:       running.InexactFloat64(),
		})
	}

	step := (len(full) + 99) / 100
	if step <= 1 {
		return full
	}
	var out []domain.EquityPoint
	for i := 0; i < len(full); i += step {
		out = append(out, full[i])
	}
	if out[len(out)-1] != full[len(full)-1] {
		out = append(out, full[len(full)-1])
	}
	return out
}
