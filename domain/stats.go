package domain

// Statistics are the engine's running counters. SuccessRate is derived on
// snapshot and expressed as a percentage.
type Statistics struct {
	Balance          float64 `json:"balance"`
	Profit           float64 `json:"profit"`
	TotalTrades      uint64  `json:"total_trades"`
	SuccessfulTrades uint64  `json:"successful_trades"`
	SuccessRate      float64 `json:"success_rate"`
}

func (statistics Statistics) WithSuccessRate() Statistics {
	if statistics.TotalTrades > 0 {
		statistics.SuccessRate = float64(statistics.SuccessfulTrades) / float64(statistics.TotalTrades) * 100
	}
	return statistics
}
