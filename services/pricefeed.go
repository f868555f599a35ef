package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"binance-trade-bot/domain"

	"nhooyr.io/websocket"
)

type priceFeedCredentials interface {
	GetWebsocketURL() string
}

type priceFeedLogger interface {
	Debugf(format string, args ...interface{})
	Printf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// PriceFeed maintains at most one live market-data stream. Subscribe tears
// down any previous stream before dialing the new one; it never resumes a
// position in the old stream. The feed does not reconnect on its own — a
// dropped connection closes the tick channel and the decision to resubscribe
// belongs to the caller.
type PriceFeed struct {
	credentials priceFeedCredentials
	logger      priceFeedLogger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	dialCtx context.Context
}

func NewPriceFeed(ctx context.Context, priceFeedCredentials priceFeedCredentials, priceFeedLogger priceFeedLogger) *PriceFeed {
	return &PriceFeed{
		credentials: priceFeedCredentials,
		logger:      priceFeedLogger,
		dialCtx:     ctx,
	}
}

// tradeMessage is the subset of Binance's @trade stream payload we consume.
type tradeMessage struct {
	Symbol string `json:"s"`
	Price  string `json:"p"`
}

// Subscribe connects to the trade stream of the given instrument and returns
// a channel of price ticks. The channel is closed when the connection drops,
// the subscription is replaced, or the feed is closed.
func (priceFeed *PriceFeed) Subscribe(symbol string) (<-chan domain.PriceTick, error) {
	priceFeed.mu.Lock()
	defer priceFeed.mu.Unlock()
	priceFeed.teardown()

	streamURL := priceFeed.credentials.GetWebsocketURL() + "/" + strings.ToLower(symbol) + "@trade"

	ctx, cancel := context.WithCancel(priceFeed.dialCtx)

	connection, _, err := websocket.Dial(ctx, streamURL, nil)
	if err != nil {
		cancel()
		return nil, &domain.ConnectivityError{Err: err}
	}
	priceFeed.logger.Debugf("Subscribed to %s trade stream", symbol)

	ticks := make(chan domain.PriceTick)
	done := make(chan struct{})
	priceFeed.cancel = cancel
	priceFeed.done = done

	go func() {
		defer close(done)
		defer close(ticks)
		defer connection.Close(websocket.StatusNormalClosure, "")

		for {
			_, bytes, err := connection.Read(ctx)
			if err != nil {
				if ctx.Err() == nil {
					priceFeed.logger.Errorf("Trade stream for %s closed: %v", symbol, err)
				}
				return
			}

			var message tradeMessage
			if err := json.Unmarshal(bytes, &message); err != nil {
				priceFeed.logger.Printf("Dropping malformed stream message: %v", err)
				continue
			}

			price, err := strconv.ParseFloat(message.Price, 64)
			if err != nil || price <= 0 {
				priceFeed.logger.Printf("Dropping stream message without usable price: %q", message.Price)
				continue
			}

			tickSymbol := message.Symbol
			if tickSymbol == "" {
				tickSymbol = symbol
			}

			select {
			case <-ctx.Done():
				return
			case ticks <- domain.PriceTick{Symbol: tickSymbol, Price: price, ReceivedAt: time.Now()}:
			}
		}
	}()

	return ticks, nil
}

// Close tears down the current subscription, if any.
func (priceFeed *PriceFeed) Close() {
	priceFeed.mu.Lock()
	defer priceFeed.mu.Unlock()
	priceFeed.teardown()
}

func (priceFeed *PriceFeed) teardown() {
	if priceFeed.cancel == nil {
		return
	}
	priceFeed.cancel()
	<-priceFeed.done
	priceFeed.cancel = nil
	priceFeed.done = nil
}
