package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/vitos/trade_journal/internal/cache"
	"github.com/vitos/trade_journal/internal/domain"
	"go.uber.org/zap"
)

const (
	signalInterval = "60" // hourly candles
	signalCandles  = 240
	signalCacheTTL = 5 * time.Minute
)

// SignalService precomputes moving averages and golden/death cross signals
// from collaborator candles and persists them for the dashboard. Candle
// fetches are memoized through an injected TTL cache.
type SignalService struct {
	market  domain.MarketData
	repo    domain.SignalRepository
	candles *cache.TTL
	logger  *zap.Logger
}

func NewSignalService(market domain.MarketData, repo domain.SignalRepository, logger *zap.Logger) *SignalService {
	return &SignalService{
		market:  market,
		repo:    repo,
		candles: cache.New(signalCacheTTL),
		logger:  logger,
	}
}

// Refresh recomputes and stores the signal for each symbol. Per-symbol
// failures are logged and skipped so one bad symbol cannot starve the rest.
func (s *SignalService) Refresh(ctx context.Context, symbols []string) error {
	var lastErr error
	for _, symbol := range symbols {
		sig, err := s.compute(ctx, symbol)
		if err != nil {
			s.logger.Warn("Failed to compute signal", zap.String("symbol", symbol), zap.Error(err))
			lastErr = err
			continue
		}
		if err := s.repo.SaveSignal(ctx, sig); err != nil {
			s.logger.Error("Failed to save signal", zap.String("symbol", symbol), zap.Error(err))
			lastErr = err
		}
	}
	return lastErr
}

func (s *SignalService) Signals(ctx context.Context) ([]*domain.SymbolSignal, error) {
	return s.repo.ListSignals(ctx)
}

// Invalidate drops the cached candles for a symbol so the next refresh
// re-fetches.
func (s *SignalService) Invalidate(symbol string) {
	s.candles.Invalidate(symbol)
}

func (s *SignalService) compute(ctx context.Context, symbol string) (*domain.SymbolSignal, error) {
	candles, err := s.getCandles(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(candles) < 200 {
		return nil, fmt.Errorf("not enough candles for %s: got %d, need 200", symbol, len(candles))
	}

	ma20 := sma(candles, 20)
	ma50 := sma(candles, 50)
	ma200 := sma(candles, 200)

	return &domain.SymbolSignal{
		Symbol:    symbol,
		MA20:      ma20,
		MA50:      ma50,
		MA200:     ma200,
		Pattern:   classifyCross(ma20, ma50, ma200),
		UpdatedAt: time.Now().UTC(),
	}, nil
}

func (s *SignalService) getCandles(ctx context.Context, symbol string) ([]domain.Candle, error) {
	if cached, ok := s.candles.Get(symbol); ok {
		return cached.([]domain.Candle), nil
	}
	candles, err := s.market.GetCandles(ctx, symbol, signalInterval, signalCandles)
	if err != nil {
		return nil, err
	}
	s.candles.Set(symbol, candles)
	return candles, nil
}

// sma is the simple moving average of the last n closes.
func sma(candles []domain.Candle, n int) float64 {
	if len(candles) < n || n <= 0 {
		return 0
	}
	sum := 0.0
	for _, c := range candles[len(candles)-n:] {
		sum += c.Close
	}
	return sum / float64(n)
}

// classifyCross reads the moving-average ordering: 20>50>200 is the bullish
// golden-cross stack, the reverse is the death cross.
func classifyCross(ma20, ma50, ma200 float64) string {
	switch {
	case ma20 > ma50 && ma50 > ma200:
		return "golden-cross"
	case ma20 < ma50 && ma50 < ma200:
		return "death-cross"
	default:
		return "neutral"
	}
}
