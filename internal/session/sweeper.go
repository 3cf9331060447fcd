package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/chamroeunchet-blip/OneDeviceLoginProject/internal/domain"
	"github.com/chamroeunchet-blip/OneDeviceLoginProject/internal/metrics"
	"github.com/chamroeunchet-blip/OneDeviceLoginProject/internal/platform/correlation"
	"github.com/chamroeunchet-blip/OneDeviceLoginProject/internal/store"
)

// Sweeper periodically reclaims ownership of accounts whose owning device has
// gone silent for longer than the inactivity threshold. This is the only path
// that releases an abandoned session without an explicit logout.
type Sweeper struct {
	store     *store.Store
	clock     clockwork.Clock
	interval  time.Duration
	threshold time.Duration
	stopCh    chan struct{}
}

// NewSweeper creates the liveness sweeper background job.
func NewSweeper(st *store.Store, clock clockwork.Clock, interval, threshold time.Duration) *Sweeper {
	return &Sweeper{
		store:     st,
		clock:     clock,
		interval:  interval,
		threshold: threshold,
		stopCh:    make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called or ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			sweepCtx := correlation.WithID(ctx, correlation.NewID())
			if _, err := s.Sweep(sweepCtx); err != nil {
				slog.ErrorContext(sweepCtx, "Liveness sweep failed", "error", err)
			}
		case <-s.stopCh:
			slog.Info("Liveness sweeper stopped")
			return
		case <-ctx.Done():
			slog.Info("Liveness sweeper context cancelled")
			return
		}
	}
}

// Stop gracefully stops the sweep loop.
func (s *Sweeper) Stop() {
	close(s.stopCh)
}

// Sweep runs one reclamation pass and returns how many accounts were forced
// back to logged_out. All reclaims of a pass commit in a single batch write.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	start := time.Now()
	defer func() {
		metrics.SweepDuration.Observe(time.Since(start).Seconds())
	}()

	now := s.clock.Now()
	reclaimed := 0
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		tx.Each(func(username string, acct *domain.Account) {
			if acct.OwnerDevice == "" {
				return
			}
			if now.Sub(acct.LastActiveAt) <= s.threshold {
				return
			}

			acct.OwnerDevice = ""
			acct.SessionToken = ""
			acct.PendingDevice = ""
			acct.PendingRequestID = ""
			acct.Status = domain.StatusLoggedOut
			tx.MarkChanged()
			reclaimed++

			slog.InfoContext(ctx, "Reclaimed inactive session",
				"username", username,
				"last_active_at", acct.LastActiveAt,
				"threshold", s.threshold)
		})
		return nil
	})
	if err != nil {
		return 0, err
	}

	if reclaimed > 0 {
		metrics.SweepReclaimedTotal.Add(float64(reclaimed))
	}
	return reclaimed, nil
}
