package domain

import (
	"context"
	"time"
)

// MarketData defines the market-data collaborator: candle and ticker reads
// plus a push stream of last prices. How the data is sourced is up to the
// implementation.
type MarketData interface {
	GetCandles(ctx context.Context, symbol, interval string, limit int) ([]Candle, error)
	GetTickers(ctx context.Context) ([]Ticker, error)
	GetCurrentPrice(ctx context.Context, symbol string) (float64, error)
	OnPriceUpdate(callback func(symbol string, price float64))
	Subscribe(symbols []string) error
}

type Candle struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

type Ticker struct {
	Symbol       string  `json:"symbol"`
	LastPrice    float64 `json:"lastPrice"`
	Volume24h    float64 `json:"volume24h"`
	Price24hPcnt float64 `json:"price24hPcnt"`
}

// ImportRecord is one analyzed upload.
type ImportRecord struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	Format        string    `json:"format"`
	Trades        int       `json:"trades"`
	OpenPositions int       `json:"openPositions"`
	TotalPnL      float64   `json:"totalPnl"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ImportRepository defines storage operations for analyzed imports.
type ImportRepository interface {
	SaveImport(ctx context.Context, rec *ImportRecord, groups []PositionGroup) error
	ListImports(ctx context.Context, limit int) ([]*ImportRecord, error)
	ListGroups(ctx context.Context, importID string) ([]PositionGroup, error)
}

// SymbolSignal is a precomputed moving-average snapshot for one symbol.
type SymbolSignal struct {
	Symbol    string    `json:"symbol"`
	MA20      float64   `json:"ma20"`
	MA50      float64   `json:"ma50"`
	MA200     float64   `json:"ma200"`
	Pattern   string    `json:"pattern"` // golden-cross, death-cross, neutral
	UpdatedAt time.Time `json:"updatedAt"`
}

// SignalRepository defines storage operations for precomputed signals.
type SignalRepository interface {
	SaveSignal(ctx context.Context, sig *SymbolSignal) error
	GetSignal(ctx context.Context, symbol string) (*SymbolSignal, error)
	ListSignals(ctx context.Context) ([]*SymbolSignal, error)
}

// Narrator turns a prepared prompt into a structured trading review. Errors
// must degrade the narrative only, never the numeric statistics.
type Narrator interface {
	Review(ctx context.Context, prompt string) (*NarrativeReport, error)
}

type CategoryScore struct {
	Category string `json:"category"`
	Score    int    `json:"score"` // 0-100
	Label    string `json:"label"`
}

type Mistake struct {
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// NarrativeReport is the fixed schema expected back from the narrator. When
// the collaborator answers with free text instead, only Text is set.
type NarrativeReport struct {
	Grade       string          `json:"grade"`
	Scores      []CategoryScore `json:"scores"`
	Strengths   []string        `json:"strengths"`
	Mistakes    []Mistake       `json:"mistakes"`
	ActionItems []string        `json:"actionItems"`
	Pattern     string          `json:"pattern"`
	Text        string          `json:"text,omitempty"`
}
