package usecase

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/vitos/trade_journal/internal/domain"
)

const (
	// flatEpsilon is the tolerance for treating a running position size as
	// zero; exports round quantities, so exact zero cannot be relied on.
	flatEpsilon = 0.001
	// reportedPnLFloor is the minimum absolute exchange-reported P&L below
	// which we fall back to computing P&L from average prices.
	reportedPnLFloor = 0.01
)

// GroupRoundTrips reconstructs closed positions from a time-ordered execution
// stream. Each symbol is processed independently; the merged result is sorted
// by first entry timestamp. The second return value counts positions still
// open at end of stream, which are excluded from the output.
func GroupRoundTrips(execs []domain.Execution) ([]domain.PositionGroup, int) {
	bySymbol := make(map[string][]domain.Execution)
	for _, e := range execs {
		bySymbol[e.Symbol] = append(bySymbol[e.Symbol], e)
	}

	var groups []domain.PositionGroup
	open := 0
	for _, symExecs := range bySymbol {
		g, o := groupSymbol(symExecs)
		groups = append(groups, g...)
		open += o
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].OpenedAt() < groups[b].OpenedAt()
	})
	return groups, open
}

// groupSymbol runs the per-symbol state machine: a flat position opens a new
// group on the next execution, same-direction fills accumulate into entries,
// opposite fills into exits, and the group closes once the running size
// returns to within flatEpsilon of zero.
func groupSymbol(execs []domain.Execution) ([]domain.PositionGroup, int) {
	var out []domain.PositionGroup

	var position float64
	var direction domain.Direction
	var entries, exits []domain.Execution

	for _, e := range execs {
		delta := e.Quantity
		if e.Side == domain.SideSell {
			delta = -delta
		}

		if math.Abs(position) <= flatEpsilon {
			// A prior in-flight group that already has exits closed close
			// enough to flat; emit it before opening the next one.
			if len(entries) > 0 && len(exits) > 0 {
				out = append(out, finalizeGroup(direction, entries, exits))
			}
			direction = domain.DirectionLong
			if e.Side == domain.SideSell {
				direction = domain.DirectionShort
			}
			entries = []domain.Execution{e}
			exits = nil
			position = delta
			continue
		}

		adds := (direction == domain.DirectionLong && e.Side == domain.SideBuy) ||
			(direction == domain.DirectionShort && e.Side == domain.SideSell)
		if adds {
			entries = append(entries, e)
			position += delta
			continue
		}

		exits = append(exits, e)
		position += delta
		if math.Abs(position) <= flatEpsilon {
			out = append(out, finalizeGroup(direction, entries, exits))
			entries, exits = nil, nil
			direction = ""
			position = 0
		}
	}

	// End of stream: a group with exits is emitted even if not fully closed;
	// a group with entries only is an open position and is dropped.
	open := 0
	if len(entries) > 0 {
		if len(exits) > 0 {
			out = append(out, finalizeGroup(direction, entries, exits))
		} else {
			open = 1
		}
	}
	return out, open
}

func finalizeGroup(direction domain.Direction, entries, exits []domain.Execution) domain.PositionGroup {
	entryAvg, entryTotal := weightedAvgPrice(entries)
	exitAvg, exitTotal := weightedAvgPrice(exits)

	usedQty := math.Min(entryTotal, exitTotal)

	// Prefer the exchange's own realized P&L when it reported one.
	reported := decimal.Zero
	for _, e := range exits {
		reported = reported.Add(decimal.NewFromFloat(e.ClosedPnL))
	}

	var pnl float64
	if reported.Abs().GreaterThan(decimal.NewFromFloat(reportedPnLFloor)) {
		pnl = reported.InexactFloat64()
	} else {
		diff := decimal.NewFromFloat(exitAvg).Sub(decimal.NewFromFloat(entryAvg))
		if direction == domain.DirectionShort {
			diff = diff.Neg()
		}
		pnl = diff.Mul(decimal.NewFromFloat(usedQty)).InexactFloat64()
	}

	// Percentage return always comes from average prices, signed with the
	// direction, regardless of which P&L source was used.
	var pnlPercent float64
	if entryAvg != 0 {
		pnlPercent = (exitAvg - entryAvg) / entryAvg * 100
		if direction == domain.DirectionShort {
			pnlPercent = -pnlPercent
		}
	}

	return domain.PositionGroup{
		Symbol:      entries[0].Symbol,
		Direction:   direction,
		Entries:     entries,
		Exits:       exits,
		EntryAvg:    entryAvg,
		ExitAvg:     exitAvg,
		EntryQty:    usedQty,
		PnL:         pnl,
		PnLPercent:  pnlPercent,
		HoldingTime: exits[len(exits)-1].Timestamp - entries[0].Timestamp,
	}
}

// weightedAvgPrice returns the quantity-weighted average price and the total
// quantity across the executions.
func weightedAvgPrice(execs []domain.Execution) (float64, float64) {
	notional := decimal.Zero
	qty := decimal.Zero
	for _, e := range execs {
		q := decimal.NewFromFloat(e.Quantity)
		notional = notional.Add(decimal.NewFromFloat(e.Price).Mul(q))
		qty = qty.Add(q)
	}
	if qty.IsZero() {
		return 0, 0
	}
	return notional.Div(qty).InexactFloat64(), qty.InexactFloat64()
}
