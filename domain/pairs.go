package domain

// AvailablePairs lists the instruments the bot accepts intents for.
var AvailablePairs = []string{"BTCUSDT", "ETHUSDT", "BNBUSDT", "ADAUSDT", "DOGEUSDT"}

const DefaultTradingPair = "BTCUSDT"

// MinTradeAmount is the minimum quote amount accepted per pair.
var MinTradeAmount = map[string]float64{
	"BTCUSDT":  0.001,
	"ETHUSDT":  0.01,
	"BNBUSDT":  0.1,
	"ADAUSDT":  1,
	"DOGEUSDT": 100,
}

func IsAvailablePair(symbol string) bool {
	for _, pair := range AvailablePairs {
		if pair == symbol {
			return true
		}
	}
	return false
}
