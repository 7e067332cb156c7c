package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vitos/trade_journal/internal/domain"
)

const (
	BybitBaseURL = "https://api.bybit.com"
	BybitWSURL   = "wss://stream.bybit.com/v5/public/linear"
)

// BybitAdapter is the market-data collaborator backed by Bybit's public V5
// API: REST for candles and tickers, websocket for a last-price stream. Only
// public endpoints are used; no keys, no order placement.
type BybitAdapter struct {
	baseURL   string
	wsURL     string
	client    *http.Client
	wsConn    *websocket.Conn
	callbacks []func(symbol string, price float64)
	mu        sync.Mutex
}

func NewBybitAdapter(baseURL, wsURL string) *BybitAdapter {
	if baseURL == "" {
		baseURL = BybitBaseURL
	}
	if wsURL == "" {
		wsURL = BybitWSURL
	}
	return &BybitAdapter{
		baseURL: baseURL,
		wsURL:   wsURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// --- REST API ---

func (b *BybitAdapter) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API error: %s", string(body))
	}
	return body, nil
}

func (b *BybitAdapter) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]domain.Candle, error) {
	path := fmt.Sprintf("/v5/market/kline?category=linear&symbol=%s&interval=%s&limit=%d", symbol, interval, limit)
	resp, err := b.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var result struct {
		RetCode int `json:"retCode"`
		Result  struct {
			List [][]string `json:"list"`
		} `json:"result"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, err
	}
	if result.RetCode != 0 {
		return nil, fmt.Errorf("bybit kline error: %d", result.RetCode)
	}

	var candles []domain.Candle
	for _, raw := range result.Result.List {
		// Format: [startTime, open, high, low, close, volume, turnover]
		if len(raw) < 6 {
			continue
		}

		ts, _ := strconv.ParseInt(raw[0], 10, 64)
		open, _ := strconv.ParseFloat(raw[1], 64)
		high, _ := strconv.ParseFloat(raw[2], 64)
		low, _ := strconv.ParseFloat(raw[3], 64)
		closePrice, _ := strconv.ParseFloat(raw[4], 64)
		volume, _ := strconv.ParseFloat(raw[5], 64)

		candles = append(candles, domain.Candle{
			Time:   ts / 1000,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	}

	// Bybit returns newest first; reverse to chronological order.
	for i, j := 0, len(candles)-1; i < j; i, j = i+1, j-1 {
		candles[i], candles[j] = candles[j], candles[i]
	}
	return candles, nil
}

func (b *BybitAdapter) GetTickers(ctx context.Context) ([]domain.Ticker, error) {
	resp, err := b.get(ctx, "/v5/market/tickers?category=linear")
	if err != nil {
		return nil, err
	}

	var result struct {
		RetCode int `json:"retCode"`
		Result  struct {
			List []struct {
				Symbol       string `json:"symbol"`
				LastPrice    string `json:"lastPrice"`
				Volume24h    string `json:"volume24h"`
				Price24hPcnt string `json:"price24hPcnt"`
			} `json:"list"`
		} `json:"result"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, err
	}
	if result.RetCode != 0 {
		return nil, fmt.Errorf("bybit tickers error: %d", result.RetCode)
	}

	tickers := make([]domain.Ticker, 0, len(result.Result.List))
	for _, t := range result.Result.List {
		last, _ := strconv.ParseFloat(t.LastPrice, 64)
		vol, _ := strconv.ParseFloat(t.Volume24h, 64)
		pcnt, _ := strconv.ParseFloat(t.Price24hPcnt, 64)
		tickers = append(tickers, domain.Ticker{
			Symbol:       t.Symbol,
			LastPrice:    last,
			Volume24h:    vol,
			Price24hPcnt: pcnt,
		})
	}
	return tickers, nil
}

func (b *BybitAdapter) GetCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	path := fmt.Sprintf("/v5/market/tickers?category=linear&symbol=%s", symbol)
	resp, err := b.get(ctx, path)
	if err != nil {
		return 0, err
	}

	var result struct {
		RetCode int `json:"retCode"`
		Result  struct {
			List []struct {
				LastPrice string `json:"lastPrice"`
			} `json:"list"`
		} `json:"result"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return 0, err
	}
	if result.RetCode != 0 || len(result.Result.List) == 0 {
		return 0, fmt.Errorf("bybit ticker error for %s", symbol)
	}
	return strconv.ParseFloat(result.Result.List[0].LastPrice, 64)
}

// --- WebSocket ---

func (b *BybitAdapter) OnPriceUpdate(callback func(symbol string, price float64)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.callbacks = append(b.callbacks, callback)
}

// Subscribe connects on first use and subscribes to ticker topics for the
// given symbols.
func (b *BybitAdapter) Subscribe(symbols []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.wsConn == nil {
		conn, _, err := websocket.DefaultDialer.Dial(b.wsURL, nil)
		if err != nil {
			return fmt.Errorf("failed to dial ws: %w", err)
		}
		b.wsConn = conn
		go b.readLoop(conn)
	}

	args := make([]string, 0, len(symbols))
	for _, s := range symbols {
		args = append(args, "tickers."+strings.ToUpper(s))
	}
	return b.wsConn.WriteJSON(map[string]interface{}{
		"op":   "subscribe",
		"args": args,
	})
}

func (b *BybitAdapter) readLoop(conn *websocket.Conn) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			b.mu.Lock()
			if b.wsConn == conn {
				b.wsConn = nil
			}
			b.mu.Unlock()
			return
		}

		var payload struct {
			Topic string `json:"topic"`
			Data  struct {
				Symbol    string `json:"symbol"`
				LastPrice string `json:"lastPrice"`
			} `json:"data"`
		}
		if err := json.Unmarshal(msg, &payload); err != nil {
			continue
		}
		if !strings.HasPrefix(payload.Topic, "tickers.") || payload.Data.LastPrice == "" {
			continue
		}

		price, err := strconv.ParseFloat(payload.Data.LastPrice, 64)
		if err != nil || price <= 0 {
			continue
		}

		b.mu.Lock()
		callbacks := make([]func(string, float64), len(b.callbacks))
		copy(callbacks, b.callbacks)
		b.mu.Unlock()

		for _, cb := range callbacks {
			cb(payload.Data.Symbol, price)
		}
	}
}
