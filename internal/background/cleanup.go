package background

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// PinStore clears PIN values whose expiry has passed
type PinStore interface {
	ScrubExpiredPins(ctx context.Context, now time.Time) (int64, error)
}

// PinScrubber periodically wipes expired MFA PINs from stored profiles.
// Expired PINs are already rejected at verification; this only limits how
// long the plaintext value stays at rest.
type PinScrubber struct {
	store    PinStore
	logger   *slog.Logger
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewPinScrubber creates a new PIN scrubber
func NewPinScrubber(store PinStore, logger *slog.Logger, interval time.Duration) *PinScrubber {
	if interval <= 0 {
		interval = time.Hour
	}
	return &PinScrubber{
		store:    store,
		logger:   logger,
		interval: interval,
		timeout:  30 * time.Second,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the scrub loop until Stop is called or ctx is cancelled
func (s *PinScrubber) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on startup
	s.runScrub(ctx)

	for {
		select {
		case <-ticker.C:
			s.runScrub(ctx)
		case <-s.stopCh:
			s.logger.Info("pin scrubber stopped")
			return
		case <-ctx.Done():
			s.logger.Info("pin scrubber context cancelled")
			return
		}
	}
}

func (s *PinScrubber) runScrub(ctx context.Context) {
	scrubCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.store.ScrubExpiredPins(scrubCtx, s.now())
	if err != nil {
		s.logger.Error("failed to scrub expired pins", slog.Any("error", err))
		return
	}

	if rows > 0 {
		s.logger.Info("expired pins scrubbed", slog.Int64("rows_updated", rows))
	}
}

// Stop signals the scrubber to stop. Safe to call more than once.
func (s *PinScrubber) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}
