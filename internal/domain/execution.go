package domain

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// Execution is one normalized fill as reported by an exchange export.
// Symbol is the cleaned base-asset ticker, Timestamp is milliseconds since epoch.
type Execution struct {
	Symbol    string  `json:"symbol"`
	Side      Side    `json:"side"`
	Price     float64 `json:"price"`
	Quantity  float64 `json:"quantity"`
	Timestamp int64   `json:"timestamp"`
	Fee       float64 `json:"fee"`
	ClosedPnL float64 `json:"closedPnl"`
	Volume    float64 `json:"volume"`
}
