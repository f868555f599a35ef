package domain

import "time"

type TradeStatus string

const (
	TradeStatusPending   = TradeStatus("pending")
	TradeStatusActive    = TradeStatus("active")
	TradeStatusCompleted = TradeStatus("completed")
	TradeStatusCancelled = TradeStatus("cancelled")
)

// TradeIntent is a user-specified conditional order. A pending intent buys
// once the price drops to EntryPrice and sells once it rises to ExitPrice.
// Entry/exit ordering is deliberately not constrained: an intent whose exit
// is already reachable is sold directly without ever buying.
type TradeIntent struct {
	ID         uint64      `json:"id"`
	Symbol     string      `json:"symbol"`
	Amount     float64     `json:"amount"` // quote currency (USDT)
	EntryPrice float64     `json:"entry_price"`
	ExitPrice  float64     `json:"exit_price"`
	Status     TradeStatus `json:"status"`

	// Execution bookkeeping, owned by the engine.
	OrderInFlight bool    `json:"-"`
	BoughtQty     float64 `json:"-"` // base quantity filled by the entry order
	BoughtCost    float64 `json:"-"` // quote actually spent on the entry order
}

// PriceTick is a single trade-price update from the market-data stream.
type PriceTick struct {
	Symbol     string
	Price      float64
	ReceivedAt time.Time
}
