package orchestrators

import (
	"context"
	"log/slog"
	"time"
)

// LoginCodePurgeStore defines the store interface needed by the purge worker.
type LoginCodePurgeStore interface {
	DeleteExpiredLoginCodes(ctx context.Context, before time.Time) (int, error)
}

// CodePurger removes expired and used login codes from storage.
type CodePurger struct {
	store LoginCodePurgeStore
}

// NewCodePurger creates a CodePurger backed by the given store.
func NewCodePurger(store LoginCodePurgeStore) *CodePurger {
	return &CodePurger{store: store}
}

// PurgeExpired deletes login codes that expired before now.
// POST: Expired and used codes are removed; count is logged
func (p *CodePurger) PurgeExpired(ctx context.Context) error {
	removed, err := p.store.DeleteExpiredLoginCodes(ctx, time.Now())
	if err != nil {
		return err
	}
	if removed > 0 {
		slog.Info("auth_event", "event", "codes_purged", "count", removed)
	}
	return nil
}

// StartBackgroundWorker runs the purger periodically until stopCh closes.
// Each run gets its own timeout so a stuck database cannot wedge the worker.
func StartBackgroundWorker(purger *CodePurger, interval time.Duration, stopCh <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				if err := purger.PurgeExpired(ctx); err != nil {
					slog.Error("code_purge_failed", "error", err.Error())
				}
				cancel()
			case <-stopCh:
				slog.Info("code_purge_worker_stopped")
				return
			}
		}
	}()
}
