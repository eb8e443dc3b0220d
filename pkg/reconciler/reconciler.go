package reconciler

import (
	"time"

	"github.com/roost-io/roost/pkg/clock"
	"github.com/roost-io/roost/pkg/log"
	"github.com/roost-io/roost/pkg/manager"
	"github.com/rs/zerolog"
)

// DefaultInterval is the rescheduler sweep period.
const DefaultInterval = 15 * time.Second

// Rescheduler retries placement of pending pods. It is the system's
// only retry mechanism: unconditional, no backoff, no attempt limit.
// A pod that fits nowhere is simply retried next cycle.
type Rescheduler struct {
	manager  *manager.Manager
	clock    clock.Clock
	interval time.Duration
	stopCh   chan struct{}
	logger   zerolog.Logger
}

// NewRescheduler creates a rescheduler sweeping at the given interval.
func NewRescheduler(mgr *manager.Manager, clk clock.Clock, interval time.Duration) *Rescheduler {
	if clk == nil {
		clk = clock.New()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Rescheduler{
		manager:  mgr,
		clock:    clk,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   log.WithComponent("rescheduler"),
	}
}

// Start begins the reschedule loop
func (r *Rescheduler) Start() {
	go r.run()
}

// Stop stops the rescheduler
func (r *Rescheduler) Stop() {
	close(r.stopCh)
}

func (r *Rescheduler) run() {
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C():
			r.sweep()
		case <-r.stopCh:
			return
		}
	}
}

// sweep runs one reschedule cycle. Errors are logged and swallowed;
// the next cycle retries from current state.
func (r *Rescheduler) sweep() {
	placed, err := r.manager.ReschedulePending()
	if err != nil {
		r.logger.Error().Err(err).Msg("Reschedule sweep failed")
		return
	}
	if placed > 0 {
		r.logger.Info().Int("placed_pods", placed).Msg("Reschedule sweep placed pending pods")
	}
}
