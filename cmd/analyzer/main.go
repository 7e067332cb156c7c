package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/vitos/trade_journal/internal/infrastructure/logger"
	"github.com/vitos/trade_journal/internal/usecase"
)

// Offline analyzer: runs the full ingestion pipeline over an export file and
// prints the derived statistics, without the server, the store or the
// narrative collaborator.
func main() {
	showPrompt := flag.Bool("prompt", false, "print the narrative prompt instead of the summary")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Usage: analyzer [-prompt] <export.csv>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger("warn")
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	svc := usecase.NewAnalysisService(nil, nil, log)
	result, err := svc.Analyze(context.Background(), path, string(raw))
	if err != nil {
		fmt.Printf("Analysis failed: %v\n", err)
		os.Exit(1)
	}

	if *showPrompt {
		fmt.Println(usecase.BuildPrompt(result.Stats, result.Groups))
		return
	}

	s := result.Stats
	fmt.Printf("Format: %s\n", result.Format)
	fmt.Printf("Round trips: %d (winners %d, losers %d, open positions excluded %d)\n",
		s.TotalTrades, s.Winners, s.Losers, s.OpenPositions)
	fmt.Printf("Win rate: %.1f%%  Total P&L: %.2f\n", s.WinRate, s.TotalPnL)
	fmt.Printf("Avg win: %.2f%%  Avg loss: %.2f%%  Risk/reward: %.2f\n", s.AvgWinPct, s.AvgLossPct, s.RiskReward)
	fmt.Printf("Avg holding time: %s\n", s.AvgHolding)
	fmt.Printf("Streaks: %d wins / %d losses\n", s.MaxWinStreak, s.MaxLossStreak)
	if s.Tilt.Trades > 0 {
		fmt.Printf("Post-streak trades: %d, pnl %.2f, win rate %.1f%%\n", s.Tilt.Trades, s.Tilt.PnL, s.Tilt.WinRate)
	}

	fmt.Printf("\n%-12s | %-8s | %-12s | %s\n", "Symbol", "Trades", "P&L", "Win rate")
	fmt.Println("--------------------------------------------------")
	for _, sym := range s.Symbols {
		fmt.Printf("%-12s | %-8d | %-12.2f | %.1f%%\n", sym.Symbol, sym.Trades, sym.PnL, sym.WinRate)
	}

	fmt.Println("\nMonthly P&L:")
	for _, m := range s.Monthly {
		fmt.Printf("  %s: %.2f\n", m.Month, m.PnL)
	}
}
