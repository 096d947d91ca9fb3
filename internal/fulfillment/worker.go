package fulfillment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Skotchmaster/lab_inventory/internal/orderflow"
)

// Worker drains the queue and moves each order Processing -> Processed.
// A StateConflictError means the order already left Processing (for
// example it was cancelled while queued) and the id is skipped.
type Worker struct {
	Svc   *orderflow.Service
	Queue Queue
	Delay time.Duration
	Log   *slog.Logger
}

func (w *Worker) Run(ctx context.Context) error {
	log := w.Log
	if log == nil {
		log = slog.Default()
	}

	for {
		orderID, err := w.Queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if w.Delay > 0 {
			select {
			case <-time.After(w.Delay):
			case <-ctx.Done():
				return nil
			}
		}

		if _, err := w.Svc.Complete(ctx, orderID); err != nil {
			var conflict *orderflow.StateConflictError
			switch {
			case errors.As(err, &conflict):
				log.Info("worker: order skipped", "order_id", orderID, "status", conflict.Current)
			case errors.Is(err, orderflow.ErrNotFound):
				log.Warn("worker: queued order missing", "order_id", orderID)
			default:
				log.Error("worker: complete failed", "order_id", orderID, "error", err)
			}
			continue
		}
		log.Info("worker: order processed", "order_id", orderID)
	}
}
