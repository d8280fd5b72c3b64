/*
scheduler.go - Compensatory credit expiry scheduler

PURPOSE:
  Periodically marks active compensatory credits whose expiry date has
  passed as expired, so the credit list shows what can still be used.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on start
  - "Today" is taken in the configured location, like every other day
    boundary in the service
  - Expiry only changes the credit's status; the ledger still counts the
    credit in the month it was assigned

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour, CREDIT_EXPIRY_INTERVAL)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewCreditExpiryScheduler(store, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - store/sqlite/leave.go: ExpireCredits
  - handlers.go: CreateCredit
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/leave-ledger/generic"
)

// CreditExpirer is the store operation the scheduler drives.
type CreditExpirer interface {
	ExpireCredits(ctx context.Context, asOf generic.TimePoint) (int64, error)
}

// CreditExpiryScheduler sweeps expired compensatory credits.
type CreditExpiryScheduler struct {
	Store         CreditExpirer
	Logger        *slog.Logger
	Location      *time.Location
	CheckInterval time.Duration
	Enabled       bool
	Now           func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewCreditExpiryScheduler creates a new scheduler.
func NewCreditExpiryScheduler(store CreditExpirer, logger *slog.Logger) *CreditExpiryScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CreditExpiryScheduler{
		Store:         store,
		Logger:        logger.With("component", "credit_expiry"),
		Location:      time.UTC,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		Now:           time.Now,
	}
}

// Start begins the scheduler.
func (s *CreditExpiryScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.Logger.Info("scheduler disabled, not starting")
		return
	}
	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.stop = make(chan struct{})
	s.wg.Add(1)

	go s.run(s.ticker, s.stop)

	s.Logger.Info("scheduler started", "interval", s.CheckInterval)
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *CreditExpiryScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.ticker = nil
		s.Logger.Info("scheduler stopped")
	}
}

func (s *CreditExpiryScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer s.wg.Done()

	// Run immediately on start
	s.RunNow(context.Background())

	for {
		select {
		case <-ticker.C:
			s.RunNow(context.Background())
		case <-stop:
			return
		}
	}
}

// RunNow performs one sweep and returns how many credits expired.
func (s *CreditExpiryScheduler) RunNow(ctx context.Context) int64 {
	today := generic.DayOf(s.Now(), s.Location)

	n, err := s.Store.ExpireCredits(ctx, today)
	if err != nil {
		s.Logger.Error("expire credits", "as_of", today.String(), "err", err)
		return 0
	}
	if n > 0 {
		s.Logger.Info("credits expired", "count", n, "as_of", today.String())
	}
	return n
}

// NextRunTime returns when the next scheduled check will occur.
func (s *CreditExpiryScheduler) NextRunTime() time.Time {
	return s.Now().Add(s.CheckInterval)
}
