package domain

import "time"

type OrderSide string

const (
	OrderSideBuy  = OrderSide("BUY")
	OrderSideSell = OrderSide("SELL")
)

// OrderResult is the outcome of a submitted market order. Exchange
// rejections are reported here with Success=false, never as a Go error.
type OrderResult struct {
	Success      bool
	OrderID      int64
	ExecutedQty  float64 // base asset quantity filled
	CumQuote     float64 // quote currency actually exchanged
	ErrorCode    int
	ErrorMessage string
}

// OrderRecord is a persisted copy of an executed order leg.
type OrderRecord struct {
	ID          uint `gorm:"primarykey" json:"-"`
	OrderID     int64
	IntentID    uint64
	Symbol      string
	Side        OrderSide
	QuoteAmount float64
	ExecutedQty float64
	CumQuote    float64
	Profit      float64
	Timestamp   time.Time
}
