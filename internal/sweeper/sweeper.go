package sweeper

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"messenger-service/internal/observability"
)

// Store is the slice of the message repository the sweeper needs.
type Store interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Sweeper periodically purges messages whose expiry deadline has passed.
// It complements the lazy read-time compaction in the repository; between
// the two, no expired message is ever returned to a caller.
type Sweeper struct {
	store    Store
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// New constructs a Sweeper with the given sweep interval.
func New(store Store, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the background sweep loop.
func (s *Sweeper) Start() {
	go s.run()
}

// Stop terminates the loop and waits for the in-flight sweep to finish.
func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Sweeper) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.Sweep(context.Background())
		}
	}
}

// Sweep runs one purge pass.
func (s *Sweeper) Sweep(ctx context.Context) {
	n, err := s.store.DeleteExpired(ctx)
	if err != nil {
		logrus.WithError(err).Error("expiry sweep failed")
		return
	}
	if n > 0 {
		logrus.WithField("purged", n).Info("expired messages removed")
		observability.AddMessagesSwept(n)
	}
}
