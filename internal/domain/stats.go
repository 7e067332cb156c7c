package domain

// BucketStat is the common aggregate shape shared by holding-time, session,
// day-of-week and direction breakdowns.
type BucketStat struct {
	Label   string  `json:"label"`
	Trades  int     `json:"trades"`
	PnL     float64 `json:"pnl"`
	WinRate float64 `json:"winRate"`
	AvgPnL  float64 `json:"avgPnl"`
}

type SymbolStat struct {
	Symbol  string  `json:"symbol"`
	Trades  int     `json:"trades"`
	PnL     float64 `json:"pnl"`
	WinRate float64 `json:"winRate"`
}

type MonthlyPnL struct {
	Month string  `json:"month"` // YYYY-MM, UTC
	PnL   float64 `json:"pnl"`
}

type EquityPoint struct {
	Timestamp int64   `json:"timestamp"`
	PnL       float64 `json:"pnl"` // cumulative
}

// TiltStat aggregates the trades taken after a losing streak reached three,
// including the trade that finally broke the streak.
type TiltStat struct {
	Trades  int     `json:"trades"`
	PnL     float64 `json:"pnl"`
	WinRate float64 `json:"winRate"`
}

// StatisticsSnapshot is derived from the full group list on every call and
// carries no state of its own.
type StatisticsSnapshot struct {
	TotalTrades    int     `json:"totalTrades"`
	Winners        int     `json:"winners"`
	Losers         int     `json:"losers"`
	WinRate        float64 `json:"winRate"`
	TotalPnL       float64 `json:"totalPnl"`
	AvgWinPct      float64 `json:"avgWinPct"`
	AvgLossPct     float64 `json:"avgLossPct"`
	RiskReward     float64 `json:"riskReward"`
	AvgHoldingMs   float64 `json:"avgHoldingMs"`
	AvgHolding     string  `json:"avgHolding"` // human formatted
	MaxWinStreak   int     `json:"maxWinStreak"`
	MaxLossStreak  int     `json:"maxLossStreak"`
	OpenPositions  int     `json:"openPositions"` // in-flight groups excluded from stats
	Symbols        []SymbolStat  `json:"symbols"`
	HoldingBuckets []BucketStat  `json:"holdingBuckets"`
	Sessions       []BucketStat  `json:"sessions"`
	Weekdays       []BucketStat  `json:"weekdays"`
	Directions     []BucketStat  `json:"directions"`
	Tilt           TiltStat      `json:"tilt"`
	Monthly        []MonthlyPnL  `json:"monthly"`
	Equity         []EquityPoint `json:"equity"`
}

// AnalysisResult is the full payload returned by the ingestion entrypoint.
type AnalysisResult struct {
	Format    string              `json:"format"`
	Stats     *StatisticsSnapshot `json:"stats"`
	Groups    []PositionGroup     `json:"groups"`
	Narrative *NarrativeReport    `json:"narrative,omitempty"`
}
