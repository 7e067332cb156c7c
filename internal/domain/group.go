package domain

// PositionGroup is one fully closed round trip in one symbol, possibly built
// from multiple partial fills on each side.
type PositionGroup struct {
	Symbol      string      `json:"symbol"`
	Direction   Direction   `json:"direction"`
	Entries     []Execution `json:"entries"`
	Exits       []Execution `json:"exits"`
	EntryAvg    float64     `json:"entryAvg"`
	ExitAvg     float64     `json:"exitAvg"`
	EntryQty    float64     `json:"entryQty"`
	PnL         float64     `json:"pnl"`
	PnLPercent  float64     `json:"pnlPercent"`
	HoldingTime int64       `json:"holdingTime"` // milliseconds, first entry to last exit
}

// OpenedAt returns the timestamp of the first entry, 0 if the group is empty.
func (g *PositionGroup) OpenedAt() int64 {
	if len(g.Entries) == 0 {
		return 0
	}
	return g.Entries[0].Timestamp
}

// ClosedAt returns the timestamp of the last exit, falling back to OpenedAt.
func (g *PositionGroup) ClosedAt() int64 {
	if len(g.Exits) == 0 {
		return g.OpenedAt()
	}
	return g.Exits[len(g.Exits)-1].Timestamp
}
