package services_test

import (
	"testing"

	"binance-trade-bot/services"

	"github.com/stretchr/testify/assert"
)

func TestSignKnownVector(t *testing.T) {
	// RFC 4231-style HMAC-SHA256 test vector
	signature := services.Sign("The quick brown fox jumps over the lazy dog", "key")

	assert.Equal(t, "f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8", signature)
}

func TestSignDeterministic(t *testing.T) {
	queryString := "symbol=BTCUSDT&side=BUY&type=MARKET&quoteOrderQty=50&timestamp=1700000000000"

	first := services.Sign(queryString, "secret")
	second := services.Sign(queryString, "secret")

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestSignSensitivity(t *testing.T) {
	queryString := "symbol=BTCUSDT&side=BUY&type=MARKET&quoteOrderQty=50&timestamp=1700000000000"
	base := services.Sign(queryString, "secret")

	assert.NotEqual(t, base, services.Sign(queryString+"1", "secret"))
	assert.NotEqual(t, base, services.Sign(queryString, "secret1"))
	assert.NotEqual(t, base, services.Sign(queryString[:len(queryString)-1]+"1", "secret"))
}
