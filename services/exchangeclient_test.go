package services_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"binance-trade-bot/domain"
	"binance-trade-bot/services"

	"github.com/stretchr/testify/assert"
)

type testExchangeCredentials struct {
	apiKey    string
	apiSecret string
	restURL   string
}

func (credentials *testExchangeCredentials) GetAPIKey() string    { return credentials.apiKey }
func (credentials *testExchangeCredentials) GetAPISecret() string { return credentials.apiSecret }
func (credentials *testExchangeCredentials) GetRESTURL() string   { return credentials.restURL }

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/api/v3/ping", req.URL.Path)
		resp.Write([]byte("{}"))
	}))
	defer server.Close()

	exchangeClient := services.NewExchangeClient(&testExchangeCredentials{restURL: server.URL})
	assert.Nil(t, exchangeClient.Ping(context.Background()))
}

func TestPingFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		resp.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	exchangeClient := services.NewExchangeClient(&testExchangeCredentials{restURL: server.URL})

	err := exchangeClient.Ping(context.Background())
	var connectivityError *domain.ConnectivityError
	assert.ErrorAs(t, err, &connectivityError)
}

func TestPlaceMarketOrder(t *testing.T) {
	const apiSecret = "NhqPtmdSJYdKjVHjA7PZj4Mge3R5YNiP1e3UZjInClVN65XAbvqqM6A7H5fATj0j"

	server := httptest.NewServer(http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "/api/v3/order", req.URL.Path)
		assert.Equal(t, "test-api-key", req.Header.Get("X-MBX-APIKEY"))

		query := req.URL.Query()
		assert.Equal(t, "BTCUSDT", query.Get("symbol"))
		assert.Equal(t, "BUY", query.Get("side"))
		assert.Equal(t, "MARKET", query.Get("type"))
		assert.Equal(t, "50", query.Get("quoteOrderQty"))
		assert.NotEmpty(t, query.Get("timestamp"))

		// The signature covers the query string minus the signature itself.
		rawQuery := req.URL.RawQuery
		signedPart := rawQuery[:strings.Index(rawQuery, "&signature=")]
		assert.Equal(t, services.Sign(signedPart, apiSecret), query.Get("signature"))

		resp.Write([]byte(`{"symbol":"BTCUSDT","orderId":28,"executedQty":"0.00083000","cummulativeQuoteQty":"49.99880000","status":"FILLED"}`))
	}))
	defer server.Close()

	exchangeClient := services.NewExchangeClient(&testExchangeCredentials{
		apiKey:    "test-api-key",
		apiSecret: apiSecret,
		restURL:   server.URL,
	})

	result, err := exchangeClient.PlaceMarketOrder(context.Background(), "BTCUSDT", domain.OrderSideBuy, 50)
	assert.Nil(t, err)
	assert.Equal(t, true, result.Success)
	assert.Equal(t, int64(28), result.OrderID)
	assert.Equal(t, 0.00083, result.ExecutedQty)
	assert.Equal(t, 49.9988, result.CumQuote)
}

func TestPlaceMarketOrderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		resp.WriteHeader(http.StatusBadRequest)
		resp.Write([]byte(`{"code":-2010,"msg":"Account has insufficient balance for requested action."}`))
	}))
	defer server.Close()

	exchangeClient := services.NewExchangeClient(&testExchangeCredentials{
		apiKey:    "key",
		apiSecret: "secret",
		restURL:   server.URL,
	})

	// Ordinary rejections are a failed result, not an error.
	result, err := exchangeClient.PlaceMarketOrder(context.Background(), "BTCUSDT", domain.OrderSideSell, 50)
	assert.Nil(t, err)
	assert.Equal(t, false, result.Success)
	assert.Equal(t, -2010, result.ErrorCode)
	assert.Equal(t, "Account has insufficient balance for requested action.", result.ErrorMessage)
}

func TestPlaceMarketOrderMissingCredentials(t *testing.T) {
	exchangeClient := services.NewExchangeClient(&testExchangeCredentials{restURL: "http://127.0.0.1:1"})

	_, err := exchangeClient.PlaceMarketOrder(context.Background(), "BTCUSDT", domain.OrderSideBuy, 50)
	assert.ErrorIs(t, err, domain.ErrMissingCredentials)
}

func TestPlaceMarketOrderMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		resp.Write([]byte("<html>gateway error</html>"))
	}))
	defer server.Close()

	exchangeClient := services.NewExchangeClient(&testExchangeCredentials{
		apiKey:    "key",
		apiSecret: "secret",
		restURL:   server.URL,
	})

	result, err := exchangeClient.PlaceMarketOrder(context.Background(), "BTCUSDT", domain.OrderSideBuy, 50)
	assert.Nil(t, err)
	assert.Equal(t, false, result.Success)
	assert.NotZero(t, result.ErrorCode)
}

func TestPlaceMarketOrderUnparseableQuantities(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		resp.Write([]byte(`{"orderId":28,"executedQty":"abc","cummulativeQuoteQty":"49.99880000"}`))
	}))
	defer server.Close()

	exchangeClient := services.NewExchangeClient(&testExchangeCredentials{
		apiKey:    "key",
		apiSecret: "secret",
		restURL:   server.URL,
	})

	// A filled response with garbage quantities must not pass as a zero-sized
	// success.
	result, err := exchangeClient.PlaceMarketOrder(context.Background(), "BTCUSDT", domain.OrderSideBuy, 50)
	assert.Nil(t, err)
	assert.Equal(t, false, result.Success)
	assert.NotZero(t, result.ErrorCode)
}

func TestPlaceMarketOrderNetworkError(t *testing.T) {
	exchangeClient := services.NewExchangeClient(&testExchangeCredentials{
		apiKey:    "key",
		apiSecret: "secret",
		restURL:   "http://127.0.0.1:1",
	})

	result, err := exchangeClient.PlaceMarketOrder(context.Background(), "BTCUSDT", domain.OrderSideBuy, 50)
	assert.Nil(t, err)
	assert.Equal(t, false, result.Success)
	assert.NotEmpty(t, result.ErrorMessage)
}

func TestTimestampsStrictlyIncreasing(t *testing.T) {
	var timestamps []int64

	server := httptest.NewServer(http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		timestamp, err := strconv.ParseInt(req.URL.Query().Get("timestamp"), 10, 64)
		assert.Nil(t, err)
		timestamps = append(timestamps, timestamp)
		resp.Write([]byte(`{"orderId":1,"executedQty":"1","cummulativeQuoteQty":"50"}`))
	}))
	defer server.Close()

	exchangeClient := services.NewExchangeClient(&testExchangeCredentials{
		apiKey:    "key",
		apiSecret: "secret",
		restURL:   server.URL,
	})

	for i := 0; i < 5; i++ {
		_, err := exchangeClient.PlaceMarketOrder(context.Background(), "BTCUSDT", domain.OrderSideBuy, 50)
		assert.Nil(t, err)
	}

	assert.Len(t, timestamps, 5)
	for i := 1; i < len(timestamps); i++ {
		assert.Greater(t, timestamps[i], timestamps[i-1])
	}
}
