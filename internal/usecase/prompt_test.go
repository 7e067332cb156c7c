package usecase_test

import (
	"strings"
	"testing"
	"time"

	"github.com/vitos/trade_journal/internal/domain"
	"github.com/vitos/trade_journal/internal/usecase"
)

func TestBuildPrompt(t *testing.T) {
	groups := []domain.PositionGroup{
		group("BTC", domain.DirectionLong, 100, 4, ts(2024, time.March, 4, 9), ts(2024, time.March, 4, 10)),
		group("ETH", domain.DirectionShort, -50, -2, ts(2024, time.March, 5, 9), ts(2024, time.March, 5, 10)),
	}
	snap := usecase.ComputeStatistics(groups, 1)

	prompt := usecase.BuildPrompt(snap, groups)

	for _, want := range []string{
		"Trades: 2 (winners 1, losers 1)",
		"Win rate: 50.0%",
		"Open positions excluded from statistics: 1",
		"Top symbols:",
		"- BTC: 1 trades",
		"Holding-time buckets",
		"Sessions (UTC)",
		"Days of week",
		"Direction",
		"Most recent round trips:",
		"2024-03-04 09:00 BTC long",
		"Respond with a JSON object",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q\n---\n%s", want, prompt)
		}
	}
}

func TestBuildPrompt_LimitsRecentGroups(t *testing.T) {
	var groups []domain.PositionGroup
	base := ts(2024, time.January, 1, 0)
	for i := 0; i < 25; i++ {
		opened := base + int64(i)*3_600_000
		groups = append(groups, group("BTC", domain.DirectionLong, 1, 1, opened, opened+60_000))
	}
	snap := usecase.ComputeStatistics(groups, 0)

	prompt := usecase.BuildPrompt(snap, groups)

	section := prompt[strings.Index(prompt, "Most recent round trips:"):]
	lines := strings.Count(section, "\n- ")
	if lines != 10 {
		t.Errorf("expected 10 recent round trips, got %d", lines)
	}
	// The last group opened at hour 24 of January 1 UTC, i.e. January 2 00:00.
	if !strings.Contains(section, "2024-01-02 00:00") {
		t.Errorf("expected the final group in the recent section:\n%s", section)
	}
}

func TestBuildPrompt_SkipsEmptyBuckets(t *testing.T) {
	groups := []domain.PositionGroup{
		group("BTC", domain.DirectionLong, 100, 4, ts(2024, time.March, 4, 9), ts(2024, time.March, 4, 10)),
	}
	snap := usecase.ComputeStatistics(groups, 0)

	prompt := usecase.BuildPrompt(snap, groups)
	if strings.Contains(prompt, "- short:") {
		t.Errorf("empty buckets should not be rendered:\n%s", prompt)
	}
}
