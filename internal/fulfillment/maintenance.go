package fulfillment

import (
	"context"
	"log"
	"time"
)

// PendingSweeper marks stale pending checkout intents as abandoned.
type PendingSweeper interface {
	SweepAbandoned(ctx context.Context, cutoff time.Time) (int64, error)
}

// PassExpirer deactivates passes past their expiry date.
type PassExpirer interface {
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

// StartMaintenance runs the periodic sweeps until the context is cancelled:
// pending orders whose session was never completed become abandoned after
// abandonAfter, and expired passes are deactivated. One sweep runs
// immediately on start so a restart never leaves stale rows waiting a full
// interval.
func StartMaintenance(ctx context.Context, interval, abandonAfter time.Duration, pending PendingSweeper, passes PassExpirer) {
	sweep := func() {
		now := timeNow().UTC()
		if pending != nil {
			if n, err := pending.SweepAbandoned(ctx, now.Add(-abandonAfter)); err != nil {
				log.Printf("maintenance: sweep pending orders: %v", err)
			} else if n > 0 {
				log.Printf("maintenance: marked %d pending orders abandoned", n)
			}
		}
		if passes != nil {
			if n, err := passes.DeactivateExpired(ctx, now); err != nil {
				log.Printf("maintenance: deactivate expired passes: %v", err)
			} else if n > 0 {
				log.Printf("maintenance: deactivated %d expired passes", n)
			}
		}
	}

	sweep()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}
