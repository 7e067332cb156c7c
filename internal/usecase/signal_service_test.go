package usecase_test

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/vitos/trade_journal/internal/domain"
	"github.com/vitos/trade_journal/internal/usecase"
)

type mockMarketData struct {
	candles     map[string][]domain.Candle
	err         error
	candleCalls int
}

func (m *mockMarketData) GetCandles(_ context.Context, symbol, _ string, _ int) ([]domain.Candle, error) {
	m.candleCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.candles[symbol], nil
}

func (m *mockMarketData) GetTickers(_ context.Context) ([]domain.Ticker, error) { return nil, nil }

func (m *mockMarketData) GetCurrentPrice(_ context.Context, _ string) (float64, error) {
	return 0, nil
}

func (m *mockMarketData) OnPriceUpdate(_ func(symbol string, price float64)) {}

func (m *mockMarketData) Subscribe(_ []string) error { return nil }

type mockSignalRepo struct {
	saved   map[string]*domain.SymbolSignal
	saveErr error
}

func (m *mockSignalRepo) SaveSignal(_ context.Context, sig *domain.SymbolSignal) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.saved == nil {
		m.saved = make(map[string]*domain.SymbolSignal)
	}
	m.saved[sig.Symbol] = sig
	return nil
}

func (m *mockSignalRepo) GetSignal(_ context.Context, symbol string) (*domain.SymbolSignal, error) {
	return m.saved[symbol], nil
}

func (m *mockSignalRepo) ListSignals(_ context.Context) ([]*domain.SymbolSignal, error) {
	out := make([]*domain.SymbolSignal, 0, len(m.saved))
	for _, s := range m.saved {
		out = append(out, s)
	}
	return out, nil
}

// risingCandles produces n candles with strictly increasing closes, which
// stacks the short averages above the long ones.
func risingCandles(n int) []domain.Candle {
	candles := make([]domain.Candle, n)
	for i := range candles {
		candles[i] = domain.Candle{Time: int64(i), Close: float64(100 + i)}
	}
	return candles
}

func fallingCandles(n int) []domain.Candle {
	candles := make([]domain.Candle, n)
	for i := range candles {
		candles[i] = domain.Candle{Time: int64(i), Close: float64(1000 - i)}
	}
	return candles
}

func TestSignalService_RefreshComputesAndStores(t *testing.T) {
	market := &mockMarketData{candles: map[string][]domain.Candle{
		"BTCUSDT": risingCandles(240),
		"ETHUSDT": fallingCandles(240),
	}}
	repo := &mockSignalRepo{}
	svc := usecase.NewSignalService(market, repo, zap.NewNop())

	if err := svc.Refresh(context.Background(), []string{"BTCUSDT", "ETHUSDT"}); err != nil {
		t.Fatalf("unexpected refresh error: %v", err)
	}

	btc := repo.saved["BTCUSDT"]
	if btc == nil {
		t.Fatal("expected a stored BTCUSDT signal")
	}
	if btc.Pattern != "golden-cross" {
		t.Errorf("rising closes should classify as golden-cross, got %s", btc.Pattern)
	}
	if !(btc.MA20 > btc.MA50 && btc.MA50 > btc.MA200) {
		t.Errorf("expected MA20 > MA50 > MA200, got %v / %v / %v", btc.MA20, btc.MA50, btc.MA200)
	}

	eth := repo.saved["ETHUSDT"]
	if eth == nil || eth.Pattern != "death-cross" {
		t.Errorf("falling closes should classify as death-cross, got %+v", eth)
	}
}

func TestSignalService_NotEnoughCandles(t *testing.T) {
	market := &mockMarketData{candles: map[string][]domain.Candle{
		"BTCUSDT": risingCandles(50),
	}}
	repo := &mockSignalRepo{}
	svc := usecase.NewSignalService(market, repo, zap.NewNop())

	err := svc.Refresh(context.Background(), []string{"BTCUSDT"})
	if err == nil {
		t.Fatal("expected an error for a short candle history")
	}
	if len(repo.saved) != 0 {
		t.Errorf("nothing should be stored on failure, got %d signals", len(repo.saved))
	}
}

func TestSignalService_OneBadSymbolDoesNotStarveOthers(t *testing.T) {
	market := &mockMarketData{candles: map[string][]domain.Candle{
		"BTCUSDT": risingCandles(240),
		// GOODUSDT deliberately absent: zero candles.
	}}
	repo := &mockSignalRepo{}
	svc := usecase.NewSignalService(market, repo, zap.NewNop())

	err := svc.Refresh(context.Background(), []string{"GOODUSDT", "BTCUSDT"})
	if err == nil {
		t.Fatal("expected the failing symbol's error to surface")
	}
	if repo.saved["BTCUSDT"] == nil {
		t.Error("healthy symbol must still be refreshed")
	}
}

func TestSignalService_CachesCandlesBetweenRefreshes(t *testing.T) {
	market := &mockMarketData{candles: map[string][]domain.Candle{
		"BTCUSDT": risingCandles(240),
	}}
	repo := &mockSignalRepo{}
	svc := usecase.NewSignalService(market, repo, zap.NewNop())

	ctx := context.Background()
	if err := svc.Refresh(ctx, []string{"BTCUSDT"}); err != nil {
		t.Fatalf("unexpected refresh error: %v", err)
	}
	if err := svc.Refresh(ctx, []string{"BTCUSDT"}); err != nil {
		t.Fatalf("unexpected refresh error: %v", err)
	}
	if market.candleCalls != 1 {
		t.Errorf("expected candles fetched once and cached, got %d calls", market.candleCalls)
	}

	svc.Invalidate("BTCUSDT")
	if err := svc.Refresh(ctx, []string{"BTCUSDT"}); err != nil {
		t.Fatalf("unexpected refresh error: %v", err)
	}
	if market.candleCalls != 2 {
		t.Errorf("invalidation should force a re-fetch, got %d calls", market.candleCalls)
	}
}
