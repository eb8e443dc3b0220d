package health

import (
	"time"

	"github.com/roost-io/roost/pkg/clock"
	"github.com/roost-io/roost/pkg/log"
	"github.com/roost-io/roost/pkg/manager"
	"github.com/rs/zerolog"
)

// DefaultInterval is the detector sweep period.
const DefaultInterval = 10 * time.Second

// Detector periodically asks the manager to fail nodes whose
// heartbeat has gone stale. The staleness rule itself lives in the
// manager; this loop only supplies the cadence.
type Detector struct {
	manager  *manager.Manager
	clock    clock.Clock
	interval time.Duration
	stopCh   chan struct{}
	logger   zerolog.Logger
}

// NewDetector creates a detector sweeping at the given interval.
func NewDetector(mgr *manager.Manager, clk clock.Clock, interval time.Duration) *Detector {
	if clk == nil {
		clk = clock.New()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Detector{
		manager:  mgr,
		clock:    clk,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   log.WithComponent("detector"),
	}
}

// Start begins the sweep loop
func (d *Detector) Start() {
	go d.run()
}

// Stop stops the detector
func (d *Detector) Stop() {
	close(d.stopCh)
}

func (d *Detector) run() {
	ticker := d.clock.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C():
			d.sweep()
		case <-d.stopCh:
			return
		}
	}
}

// sweep runs one detection cycle. Errors are logged and swallowed;
// the next cycle retries from current state.
func (d *Detector) sweep() {
	failed, err := d.manager.DetectFailures()
	if err != nil {
		d.logger.Error().Err(err).Msg("Failure sweep failed")
		return
	}
	if failed > 0 {
		d.logger.Warn().Int("failed_nodes", failed).Msg("Failure sweep marked nodes unhealthy")
	}
}
