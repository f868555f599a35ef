package services

import "binance-trade-bot/domain"

// TradeLedger is the in-memory collection of trade intents, keyed by id with
// insertion order preserved for display. It is pure state: no operation
// blocks or performs I/O, and the engine serializes all access.
type TradeLedger struct {
	intents map[uint64]*domain.TradeIntent
	order   []uint64
}

func NewTradeLedger() *TradeLedger {
	return &TradeLedger{intents: make(map[uint64]*domain.TradeIntent)}
}

func (ledger *TradeLedger) Add(intent *domain.TradeIntent) {
	if _, exists := ledger.intents[intent.ID]; exists {
		return
	}
	ledger.intents[intent.ID] = intent
	ledger.order = append(ledger.order, intent.ID)
}

func (ledger *TradeLedger) Get(id uint64) (*domain.TradeIntent, bool) {
	intent, ok := ledger.intents[id]
	return intent, ok
}

func (ledger *TradeLedger) Remove(id uint64) bool {
	if _, ok := ledger.intents[id]; !ok {
		return false
	}
	delete(ledger.intents, id)
	for i, orderedID := range ledger.order {
		if orderedID == id {
			ledger.order = append(ledger.order[:i], ledger.order[i+1:]...)
			break
		}
	}
	return true
}

// Cancel marks a pending or active intent cancelled and removes it.
func (ledger *TradeLedger) Cancel(id uint64) bool {
	intent, ok := ledger.intents[id]
	if !ok {
		return false
	}
	intent.Status = domain.TradeStatusCancelled
	return ledger.Remove(id)
}

// ForEachOpen visits every pending and active intent in insertion order.
func (ledger *TradeLedger) ForEachOpen(fn func(intent *domain.TradeIntent)) {
	for _, id := range append([]uint64(nil), ledger.order...) {
		intent, ok := ledger.intents[id]
		if !ok {
			continue
		}
		if intent.Status == domain.TradeStatusPending || intent.Status == domain.TradeStatusActive {
			fn(intent)
		}
	}
}

// Snapshot returns a read-only copy of the ledger for external reporting.
func (ledger *TradeLedger) Snapshot() []domain.TradeIntent {
	snapshot := make([]domain.TradeIntent, 0, len(ledger.order))
	for _, id := range ledger.order {
		if intent, ok := ledger.intents[id]; ok {
			snapshot = append(snapshot, *intent)
		}
	}
	return snapshot
}

func (ledger *TradeLedger) Len() int {
	return len(ledger.intents)
}
