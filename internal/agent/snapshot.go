package agent

import (
	"context"

	"labelspool/internal/label"
	"labelspool/internal/logging"
	"labelspool/internal/store"
)

func (a *Agent) setLastOrder(order label.Order) {
	a.snapMu.Lock()
	defer a.snapMu.Unlock()
	clone := order.Clone()
	a.lastOrder = &clone
}

// LastOrder returns a copy of the most recently observed order. The second
// return is false until the agent has seen at least one order.
func (a *Agent) LastOrder() (label.Order, bool) {
	a.snapMu.RLock()
	defer a.snapMu.RUnlock()
	if a.lastOrder == nil {
		return label.Order{}, false
	}
	return a.lastOrder.Clone(), true
}

// TriggerTestNotify re-sends the notification for the last observed order so
// operators can verify the webhook end to end without waiting for new work.
func (a *Agent) TriggerTestNotify(ctx context.Context) error {
	order, ok := a.LastOrder()
	if !ok {
		return ErrNoOrderObserved
	}
	a.logger.Info("test notification requested",
		logging.String(logging.FieldOrderID, order.ID),
	)
	return a.notifier.OrderReceived(ctx, order)
}

// HistorySnapshot returns the most recent processed-order records.
func (a *Agent) HistorySnapshot(ctx context.Context, limit int) ([]store.ProcessedRecord, error) {
	return a.store.Processed(ctx, limit)
}

// QueueSnapshot returns the deferred labels currently waiting for an
// unblocked tick, oldest first.
func (a *Agent) QueueSnapshot(ctx context.Context) ([]store.DeferredLabel, error) {
	return a.store.DrainAll(ctx)
}
