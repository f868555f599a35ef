package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"binance-trade-bot/domain"
)

type engineCredentials interface {
	HasAPIKeys() bool
}

type enginePriceFeed interface {
	Subscribe(symbol string) (<-chan domain.PriceTick, error)
	Close()
}

type engineExchangeClient interface {
	Ping(ctx context.Context) error
	PlaceMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quoteAmount float64) (domain.OrderResult, error)
}

type orderRecordStorage interface {
	SaveOrderRecords(records []domain.OrderRecord) error
}

type tradeNotifier interface {
	NotifyTradeCompleted(record domain.OrderRecord)
}

type engineEventLog interface {
	Info(message string)
	Error(message string)
}

// Engine is the trade-execution control loop. It consumes price ticks,
// transitions ledger entries, dispatches market orders without blocking the
// feed, and keeps the running statistics. All mutable state (ledger,
// statistics, selected instrument) is serialized behind a single mutex
// because the tick handler and the settlement loop interleave freely.
type Engine struct {
	credentials engineCredentials
	feed        enginePriceFeed
	client      engineExchangeClient
	store       orderRecordStorage
	notifier    tradeNotifier
	events      engineEventLog

	mu             sync.Mutex
	running        bool
	starting       bool
	instrument     string
	ledger         *TradeLedger
	stats          domain.Statistics
	pendingRecords []domain.OrderRecord
	nextID         uint64
	feedGen        uint64
	cancel         context.CancelFunc

	settleInterval time.Duration
	onStatsUpdate  func(statistics domain.Statistics)

	inFlight sync.WaitGroup
}

func NewEngine(engineCredentials engineCredentials, enginePriceFeed enginePriceFeed, engineExchangeClient engineExchangeClient, orderRecordStorage orderRecordStorage, tradeNotifier tradeNotifier, engineEventLog engineEventLog) *Engine {
	return &Engine{
		credentials:    engineCredentials,
		feed:           enginePriceFeed,
		client:         engineExchangeClient,
		store:          orderRecordStorage,
		notifier:       tradeNotifier,
		events:         engineEventLog,
		instrument:     domain.DefaultTradingPair,
		ledger:         NewTradeLedger(),
		settleInterval: 5 * time.Second,
	}
}

// SetSettleInterval overrides the period of the settlement loop. It has no
// effect on an already running engine.
func (engine *Engine) SetSettleInterval(interval time.Duration) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.settleInterval = interval
}

// SetOnStatsUpdate registers a callback invoked with a statistics snapshot
// after every statistics mutation and settlement pass.
func (engine *Engine) SetOnStatsUpdate(fn func(statistics domain.Statistics)) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.onStatsUpdate = fn
}

// Start checks connectivity, opens the price stream for the selected
// instrument and launches the tick and settlement loops. It fails only on
// missing credentials or an unreachable exchange. A Start overlapping an
// unfinished one is a no-op: the starting flag holds the re-entry guard
// across the connectivity calls so only one run ever owns the loops.
func (engine *Engine) Start(ctx context.Context) error {
	engine.mu.Lock()
	if engine.running || engine.starting {
		engine.mu.Unlock()
		return nil
	}
	if !engine.credentials.HasAPIKeys() {
		engine.mu.Unlock()
		engine.events.Error("Cannot start trading: " + domain.ErrMissingCredentials.Error())
		return domain.ErrMissingCredentials
	}
	engine.starting = true
	symbol := engine.instrument
	interval := engine.settleInterval
	engine.mu.Unlock()

	if err := engine.client.Ping(ctx); err != nil {
		engine.abortStart()
		engine.events.Error("Cannot start trading: " + err.Error())
		return err
	}

	ticks, err := engine.feed.Subscribe(symbol)
	if err != nil {
		engine.abortStart()
		engine.events.Error("Cannot start trading: " + err.Error())
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)

	engine.mu.Lock()
	engine.starting = false
	engine.running = true
	engine.cancel = cancel
	engine.feedGen++
	generation := engine.feedGen
	engine.mu.Unlock()

	go engine.consumeTicks(ticks, generation)
	go engine.settleLoop(runCtx, interval)

	engine.events.Info("Automated trading started on " + symbol)
	return nil
}

func (engine *Engine) abortStart() {
	engine.mu.Lock()
	engine.starting = false
	engine.mu.Unlock()
}

// Stop halts trading. The settlement loop exits before its next iteration
// and the price subscription is torn down promptly. Orders already in flight
// still apply their result exactly once; no new orders are dispatched.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	if !engine.running {
		engine.mu.Unlock()
		return
	}
	engine.running = false
	cancel := engine.cancel
	engine.cancel = nil
	engine.mu.Unlock()

	cancel()
	engine.feed.Close()
	engine.events.Info("Automated trading stopped")
}

// SelectInstrument switches the watched instrument. While running, the price
// stream is resubscribed; intents are never re-evaluated against the old
// instrument's last price because evaluation only happens on tick arrival.
func (engine *Engine) SelectInstrument(symbol string) error {
	if !domain.IsAvailablePair(symbol) {
		return domain.NewValidationError("unknown trading pair %q", symbol)
	}

	engine.mu.Lock()
	engine.instrument = symbol
	running := engine.running
	var generation uint64
	if running {
		engine.feedGen++
		generation = engine.feedGen
	}
	engine.mu.Unlock()

	if !running {
		engine.events.Info("Selected instrument " + symbol)
		return nil
	}

	// The old subscription is already gone at this point, so a failed dial
	// leaves the engine with no feed. The old consumer exits on a stale
	// generation and stays silent; report the lost stream here instead.
	ticks, err := engine.feed.Subscribe(symbol)
	if err != nil {
		engine.events.Error("Failed to resubscribe price stream, trading continues without ticks: " + err.Error())
		return err
	}
	go engine.consumeTicks(ticks, generation)

	engine.events.Info("Switched price stream to " + symbol)
	return nil
}

// SubmitTradeIntent validates and registers a new conditional trade.
func (engine *Engine) SubmitTradeIntent(symbol string, amount, entryPrice, exitPrice float64) (domain.TradeIntent, error) {
	if !domain.IsAvailablePair(symbol) {
		return domain.TradeIntent{}, domain.NewValidationError("unknown trading pair %q", symbol)
	}
	if amount <= 0 {
		return domain.TradeIntent{}, domain.NewValidationError("amount must be positive")
	}
	if entryPrice <= 0 || exitPrice <= 0 {
		return domain.TradeIntent{}, domain.NewValidationError("entry and exit prices must be positive")
	}
	if minimum, ok := domain.MinTradeAmount[symbol]; ok && amount < minimum {
		return domain.TradeIntent{}, domain.NewValidationError("amount %v is below the %s minimum of %v", amount, symbol, minimum)
	}

	engine.mu.Lock()
	engine.nextID++
	intent := &domain.TradeIntent{
		ID:         engine.nextID,
		Symbol:     symbol,
		Amount:     amount,
		EntryPrice: entryPrice,
		ExitPrice:  exitPrice,
		Status:     domain.TradeStatusPending,
	}
	engine.ledger.Add(intent)
	snapshot := *intent
	engine.mu.Unlock()

	engine.events.Info(fmt.Sprintf("New trade added: %s for %v USDT (entry %v, exit %v)", symbol, amount, entryPrice, exitPrice))
	return snapshot, nil
}

// CancelTradeIntent removes a pending or active intent. No further order is
// issued for it regardless of subsequent ticks.
func (engine *Engine) CancelTradeIntent(id uint64) error {
	engine.mu.Lock()
	ok := engine.ledger.Cancel(id)
	engine.mu.Unlock()

	if !ok {
		return domain.NewValidationError("no trade with id %d", id)
	}
	engine.events.Info(fmt.Sprintf("Trade %d cancelled", id))
	return nil
}

// Withdraw deducts the given percentage of the cumulative profit. This is
// local bookkeeping only: no exchange call is made and the balance is left
// untouched.
func (engine *Engine) Withdraw(percentage float64) (float64, error) {
	if percentage <= 0 || percentage > 100 {
		return 0, domain.NewValidationError("withdrawal percentage must be in (0, 100]")
	}

	engine.mu.Lock()
	withdrawn := engine.stats.Profit * percentage / 100
	engine.stats.Profit -= withdrawn
	statistics := engine.stats.WithSuccessRate()
	engine.mu.Unlock()

	engine.events.Info(fmt.Sprintf("Profits withdrawn: %.2f USDT", withdrawn))
	engine.notifyStats(statistics)
	return withdrawn, nil
}

// Stats returns a statistics snapshot for display.
func (engine *Engine) Stats() domain.Statistics {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.stats.WithSuccessRate()
}

// Trades returns a read-only copy of the ledger.
func (engine *Engine) Trades() []domain.TradeIntent {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.ledger.Snapshot()
}

func (engine *Engine) consumeTicks(ticks <-chan domain.PriceTick, generation uint64) {
	for tick := range ticks {
		engine.handleTick(tick)
	}

	engine.mu.Lock()
	streamLost := engine.running && generation == engine.feedGen
	engine.mu.Unlock()

	// A replaced subscription closes its channel too; only the current
	// generation going away while running is a feed failure. Reconnection is
	// the caller's decision (instrument change or a fresh Start).
	if streamLost {
		engine.events.Error("Price stream disconnected; trading continues without ticks")
	}
}

// handleTick evaluates every open intent against the tick. Order submission
// is dispatched asynchronously so a slow exchange call never stalls the
// evaluation of the remaining entries.
func (engine *Engine) handleTick(tick domain.PriceTick) {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	if !engine.running || tick.Symbol != engine.instrument {
		return
	}

	engine.ledger.ForEachOpen(func(intent *domain.TradeIntent) {
		if intent.OrderInFlight {
			return
		}

		switch intent.Status {
		case domain.TradeStatusPending:
			// Exit takes precedence: an immediately exitable pending trade is
			// sold directly and never transitions through active.
			if tick.Price >= intent.ExitPrice {
				engine.dispatchOrder(intent, domain.OrderSideSell)
			} else if tick.Price <= intent.EntryPrice {
				intent.Status = domain.TradeStatusActive
				engine.dispatchOrder(intent, domain.OrderSideBuy)
			}
		case domain.TradeStatusActive:
			if tick.Price >= intent.ExitPrice {
				engine.dispatchOrder(intent, domain.OrderSideSell)
			}
		}
	})
}

// dispatchOrder submits a market order for the intent in its own goroutine.
// Callers must hold the engine mutex.
func (engine *Engine) dispatchOrder(intent *domain.TradeIntent, side domain.OrderSide) {
	intent.OrderInFlight = true
	id, symbol, amount := intent.ID, intent.Symbol, intent.Amount

	engine.inFlight.Add(1)
	go func() {
		defer engine.inFlight.Done()

		result, err := engine.client.PlaceMarketOrder(context.Background(), symbol, side, amount)
		if err != nil {
			result = domain.OrderResult{Success: false, ErrorMessage: err.Error()}
		}
		engine.applyOrderResult(id, side, result)
	}()
}

// applyOrderResult finalizes a completed order call. It runs once per
// dispatched order, including orders that were still in flight when the
// engine stopped or whose intent was cancelled meanwhile.
func (engine *Engine) applyOrderResult(id uint64, side domain.OrderSide, result domain.OrderResult) {
	engine.mu.Lock()

	engine.stats.TotalTrades++
	if result.Success {
		engine.stats.SuccessfulTrades++
	}

	var completedRecord *domain.OrderRecord

	intent, ok := engine.ledger.Get(id)
	if ok {
		intent.OrderInFlight = false

		if side == domain.OrderSideBuy {
			if result.Success {
				intent.BoughtQty = result.ExecutedQty
				intent.BoughtCost = result.CumQuote
				engine.recordOrder(intent, side, result, 0)
			} else {
				// Revert so the entry can be retried on a future tick.
				intent.Status = domain.TradeStatusPending
			}
		} else {
			if result.Success {
				profit := 0.0
				if intent.Status == domain.TradeStatusActive {
					profit = result.CumQuote - intent.BoughtCost
				}
				engine.stats.Profit += profit
				engine.stats.Balance += profit

				intent.Status = domain.TradeStatusCompleted
				engine.ledger.Remove(intent.ID)
				completedRecord = engine.recordOrder(intent, side, result, profit)
			}
		}
	}

	statistics := engine.stats.WithSuccessRate()
	symbol := ""
	if intent != nil {
		symbol = intent.Symbol
	}
	engine.mu.Unlock()

	if result.Success {
		engine.events.Info(fmt.Sprintf("%s order executed: %v %s", side, result.ExecutedQty, symbol))
	} else {
		engine.events.Error(fmt.Sprintf("%s order failed: %s", side, result.ErrorMessage))
	}

	if completedRecord != nil && engine.notifier != nil {
		record := *completedRecord
		go engine.notifier.NotifyTradeCompleted(record)
	}
	engine.notifyStats(statistics)
}

// recordOrder buffers an executed leg for the settlement loop to persist.
// Callers must hold the engine mutex.
func (engine *Engine) recordOrder(intent *domain.TradeIntent, side domain.OrderSide, result domain.OrderResult, profit float64) *domain.OrderRecord {
	record := domain.OrderRecord{
		OrderID:     result.OrderID,
		IntentID:    intent.ID,
		Symbol:      intent.Symbol,
		Side:        side,
		QuoteAmount: intent.Amount,
		ExecutedQty: result.ExecutedQty,
		CumQuote:    result.CumQuote,
		Profit:      profit,
		Timestamp:   time.Now(),
	}
	if engine.store != nil {
		engine.pendingRecords = append(engine.pendingRecords, record)
	}
	return &record
}

func (engine *Engine) settleLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := engine.settle(); err != nil {
				engine.events.Error("Settlement pass failed: " + err.Error())
			}
		}
	}
}

// settle is the periodic best-effort pass: it flushes buffered order records
// to storage and pushes a statistics refresh. A pass that observes nothing
// new leaves the statistics unchanged. Errors never stop subsequent passes.
func (engine *Engine) settle() error {
	engine.mu.Lock()
	records := engine.pendingRecords
	engine.pendingRecords = nil
	statistics := engine.stats.WithSuccessRate()
	engine.mu.Unlock()

	if len(records) > 0 && engine.store != nil {
		if err := engine.store.SaveOrderRecords(records); err != nil {
			// Put the batch back so the next pass retries it.
			engine.mu.Lock()
			engine.pendingRecords = append(records, engine.pendingRecords...)
			engine.mu.Unlock()
			return err
		}
	}

	engine.notifyStats(statistics)
	return nil
}

func (engine *Engine) notifyStats(statistics domain.Statistics) {
	engine.mu.Lock()
	fn := engine.onStatsUpdate
	engine.mu.Unlock()

	if fn != nil {
		fn(statistics)
	}
}
