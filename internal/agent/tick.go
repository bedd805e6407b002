package agent

import (
	"context"
	"fmt"

	"labelspool/internal/label"
	"labelspool/internal/logging"
	"labelspool/internal/store"
)

// Tick executes one scheduling pass: prune expired dedup records, drain the
// deferral queue when unblocked, then fetch and classify new orders. Errors
// from the order source or the store end the tick early; the loop retries on
// the next interval. The process never exits because a tick failed.
func (a *Agent) Tick(ctx context.Context) error {
	now := a.now()
	blocked := a.window.Blocked(now.Hour())

	pruned, err := a.store.Prune(ctx, now, a.cfg.ExpiryWindow())
	if err != nil {
		a.logger.Error("prune failed, skipping tick", logging.Error(err))
		return fmt.Errorf("prune processed records: %w", err)
	}
	if pruned > 0 {
		a.logger.Info("expired processed records pruned", logging.Int64("count", pruned))
	}

	if !blocked {
		if err := a.drainDeferred(ctx); err != nil {
			a.logger.Error("queue drain failed, skipping tick", logging.Error(err))
			return fmt.Errorf("drain deferred labels: %w", err)
		}
	}

	if err := a.pollOrders(ctx, blocked); err != nil {
		a.logger.Error("order poll aborted", logging.Error(err))
		return err
	}
	return nil
}

// drainDeferred attempts every queued label once. Successes are printed,
// marked processed, and removed; failures stay queued for the next unblocked
// tick. The surviving working set is committed in one transaction so a crash
// mid-drain never leaks a half-updated queue.
func (a *Agent) drainDeferred(ctx context.Context) error {
	entries, err := a.store.DrainAll(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	a.logger.Info("draining deferred labels", logging.Int("count", len(entries)))

	// Processed status is snapshotted before any entry runs. An entry whose
	// order was already processed when the drain started is stale (the order
	// printed on the immediate path after it was queued) and must not print
	// again; an order marked processed by an earlier entry of this same
	// drain still gets its remaining package labels printed.
	stale := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if _, seen := stale[entry.OrderID]; seen {
			continue
		}
		processed, err := a.store.IsProcessed(ctx, entry.OrderID)
		if err != nil {
			return fmt.Errorf("dedup check for order %s: %w", entry.OrderID, err)
		}
		stale[entry.OrderID] = processed
	}

	remaining := make([]store.DeferredLabel, 0, len(entries))
	for _, entry := range entries {
		if stale[entry.OrderID] {
			a.logger.Info("dropping stale deferred label",
				logging.String(logging.FieldOrderID, entry.OrderID),
				logging.Int64("entry_id", entry.ID),
			)
			continue
		}
		if err := a.processDeferred(ctx, entry); err != nil {
			a.logger.Error("deferred label failed, keeping queued",
				logging.String(logging.FieldOrderID, entry.OrderID),
				logging.Error(err),
			)
			remaining = append(remaining, entry)
		}
	}

	return a.store.PersistAll(ctx, remaining)
}

func (a *Agent) processDeferred(ctx context.Context, entry store.DeferredLabel) error {
	if err := a.printer.Print(entry.Payload, entry.Ext); err != nil {
		return fmt.Errorf("print: %w", err)
	}
	if err := a.notifier.OrderReceived(ctx, entry.Context); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	if err := a.store.MarkProcessed(ctx, entry.OrderID, a.now()); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	if _, err := a.store.Remove(ctx, entry.ID); err != nil {
		return fmt.Errorf("remove queued entry: %w", err)
	}
	a.logger.Info("deferred label printed", logging.String(logging.FieldOrderID, entry.OrderID))
	return nil
}

// pollOrders fetches pending orders and classifies each one. Source and
// store errors abort the remainder of the poll; malformed packages and
// missing labels only skip the affected item.
func (a *Agent) pollOrders(ctx context.Context, blocked bool) error {
	pending, err := a.source.ListPendingOrders(ctx, a.cfg.Source.StatusID)
	if err != nil {
		return fmt.Errorf("list pending orders: %w", err)
	}
	a.logger.Debug("pending orders fetched", logging.Int("count", len(pending)))

	queued, err := a.store.DeferredOrderIDs(ctx)
	if err != nil {
		return fmt.Errorf("list queued order ids: %w", err)
	}

	for _, order := range pending {
		// The snapshot updates for every observed order, processed or
		// not, so the manual re-notify trigger always has data.
		a.setLastOrder(order)

		processed, err := a.store.IsProcessed(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("dedup check for order %s: %w", order.ID, err)
		}
		if processed {
			continue
		}
		if _, waiting := queued[order.ID]; waiting {
			// The order already has labels parked in the queue; enqueueing
			// again on every blocked tick would print duplicates on drain.
			a.logger.Debug("order already queued",
				logging.String(logging.FieldOrderID, order.ID),
			)
			continue
		}

		a.logger.Info("processing order",
			logging.String(logging.FieldOrderID, order.ID),
			logging.String("customer", order.CustomerName),
		)

		packages, err := a.source.ListPackages(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("list packages for order %s: %w", order.ID, err)
		}

		for _, pkg := range packages {
			if !pkg.Valid() {
				a.logger.Warn("skipping package with missing id or courier code",
					logging.String(logging.FieldOrderID, order.ID),
				)
				continue
			}

			payload, ext, err := a.source.FetchLabel(ctx, pkg.CourierCode, pkg.PackageID)
			if err != nil {
				return fmt.Errorf("fetch label for package %s: %w", pkg.PackageID, err)
			}
			if payload == nil {
				// Not ready yet; the order stays unmarked and is
				// retried on the next tick.
				a.logger.Warn("label not ready",
					logging.String(logging.FieldOrderID, order.ID),
					logging.String(logging.FieldPackageID, pkg.PackageID),
				)
				continue
			}

			if blocked {
				if err := a.deferLabel(ctx, order, pkg, payload, ext); err != nil {
					return err
				}
				continue
			}

			if err := a.printAndNotify(ctx, order, pkg.PackageID, payload, ext); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *Agent) deferLabel(ctx context.Context, order label.Order, pkg label.Package, payload []byte, ext string) error {
	entry := store.DeferredLabel{
		OrderID:   order.ID,
		PackageID: pkg.PackageID,
		Courier:   pkg.CourierCode,
		Payload:   payload,
		Ext:       ext,
		Context:   order.Clone(),
	}
	if _, err := a.store.Enqueue(ctx, entry); err != nil {
		return fmt.Errorf("defer label for order %s: %w", order.ID, err)
	}
	a.logger.Info("quiet hours, label deferred",
		logging.String(logging.FieldOrderID, order.ID),
		logging.String(logging.FieldPackageID, pkg.PackageID),
	)
	return nil
}

// printAndNotify drives the immediate path. A failed print is logged but the
// order is still marked processed and the operator still notified; reprints
// after a print failure are a manual operation. Changing that would change
// retry semantics, so it stays deliberate.
func (a *Agent) printAndNotify(ctx context.Context, order label.Order, packageID string, payload []byte, ext string) error {
	if err := a.printer.Print(payload, ext); err != nil {
		a.logger.Error("label print failed",
			logging.String(logging.FieldOrderID, order.ID),
			logging.String(logging.FieldPackageID, packageID),
			logging.Error(err),
		)
	} else {
		a.logger.Info("label printed",
			logging.String(logging.FieldOrderID, order.ID),
			logging.String(logging.FieldPackageID, packageID),
		)
	}

	if err := a.store.MarkProcessed(ctx, order.ID, a.now()); err != nil {
		return fmt.Errorf("mark order %s processed: %w", order.ID, err)
	}

	if err := a.notifier.OrderReceived(ctx, order); err != nil {
		a.logger.Error("notification failed",
			logging.String(logging.FieldOrderID, order.ID),
			logging.Error(err),
		)
	}
	return nil
}
