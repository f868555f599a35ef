package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"binance-trade-bot/domain"
)

type exchangeCredentials interface {
	GetAPIKey() string
	GetAPISecret() string
	GetRESTURL() string
}

// ExchangeClient performs authenticated REST calls against Binance's spot
// trading API. Mutating calls carry the API key in the X-MBX-APIKEY header
// and a hex HMAC-SHA256 signature appended to the query string.
type ExchangeClient struct {
	credentials exchangeCredentials
	httpClient  *http.Client

	timestampMu   sync.Mutex
	lastTimestamp int64
}

func NewExchangeClient(exchangeCredentials exchangeCredentials) *ExchangeClient {
	return &ExchangeClient{
		credentials: exchangeCredentials,
		httpClient:  http.DefaultClient,
	}
}

// Ping performs the lightweight connectivity probe used before trusting the
// feed and order path.
func (exchangeClient *ExchangeClient) Ping(ctx context.Context) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, exchangeClient.credentials.GetRESTURL()+"/api/v3/ping", nil)
	if err != nil {
		return &domain.ConnectivityError{Err: err}
	}

	response, err := exchangeClient.httpClient.Do(request)
	if err != nil {
		return &domain.ConnectivityError{Err: err}
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return &domain.ConnectivityError{Err: fmt.Errorf("ping returned status %d", response.StatusCode)}
	}

	return nil
}

// orderResponse covers both the success and the error shape of POST /api/v3/order.
type orderResponse struct {
	OrderID     int64  `json:"orderId"`
	ExecutedQty string `json:"executedQty"`
	CumQuote    string `json:"cummulativeQuoteQty"`
	Code        int    `json:"code"`
	Msg         string `json:"msg"`
}

// PlaceMarketOrder submits a market order sized in the quote currency.
// Exchange rejections (insufficient balance, bad symbol, ...) come back as a
// failed OrderResult, not an error; the only error condition is missing
// credentials, which fails before any network traffic.
func (exchangeClient *ExchangeClient) PlaceMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quoteAmount float64) (domain.OrderResult, error) {
	apiKey := exchangeClient.credentials.GetAPIKey()
	apiSecret := exchangeClient.credentials.GetAPISecret()
	if apiKey == "" || apiSecret == "" {
		return domain.OrderResult{}, domain.ErrMissingCredentials
	}

	queryString := fmt.Sprintf("symbol=%s&side=%s&type=MARKET&quoteOrderQty=%s&timestamp=%d",
		symbol, side, strconv.FormatFloat(quoteAmount, 'f', -1, 64), exchangeClient.nextTimestamp())
	signature := Sign(queryString, apiSecret)

	orderURL := exchangeClient.credentials.GetRESTURL() + "/api/v3/order?" + queryString + "&signature=" + signature

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, orderURL, nil)
	if err != nil {
		return domain.OrderResult{Success: false, ErrorMessage: err.Error()}, nil
	}
	request.Header.Add("X-MBX-APIKEY", apiKey)

	response, err := exchangeClient.httpClient.Do(request)
	if err != nil {
		return domain.OrderResult{Success: false, ErrorMessage: err.Error()}, nil
	}
	defer response.Body.Close()

	bytesAnswer, err := io.ReadAll(response.Body)
	if err != nil {
		return domain.OrderResult{Success: false, ErrorMessage: err.Error()}, nil
	}

	var answer orderResponse
	if err := json.Unmarshal(bytesAnswer, &answer); err != nil {
		return domain.OrderResult{Success: false, ErrorCode: parseErrorCode, ErrorMessage: "unparseable exchange response"}, nil
	}

	if response.StatusCode != http.StatusOK {
		message := answer.Msg
		if message == "" {
			message = "unknown exchange error"
		}
		return domain.OrderResult{Success: false, ErrorCode: answer.Code, ErrorMessage: message}, nil
	}

	executedQty, qtyErr := strconv.ParseFloat(answer.ExecutedQty, 64)
	cumQuote, quoteErr := strconv.ParseFloat(answer.CumQuote, 64)
	if qtyErr != nil || quoteErr != nil {
		// Zero quantities must never leak into profit accounting.
		return domain.OrderResult{Success: false, ErrorCode: parseErrorCode, ErrorMessage: "unparseable exchange response"}, nil
	}

	return domain.OrderResult{
		Success:     true,
		OrderID:     answer.OrderID,
		ExecutedQty: executedQty,
		CumQuote:    cumQuote,
	}, nil
}

// parseErrorCode marks responses whose body could not be decoded.
const parseErrorCode = -1000000

// nextTimestamp returns a strictly increasing millisecond timestamp, as the
// exchange requires to reject replayed or stale requests.
func (exchangeClient *ExchangeClient) nextTimestamp() int64 {
	exchangeClient.timestampMu.Lock()
	defer exchangeClient.timestampMu.Unlock()

	timestamp := time.Now().UnixMilli()
	if timestamp <= exchangeClient.lastTimestamp {
		timestamp = exchangeClient.lastTimestamp + 1
	}
	exchangeClient.lastTimestamp = timestamp

	return timestamp
}
