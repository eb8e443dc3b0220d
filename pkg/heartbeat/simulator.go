// Package heartbeat runs the synthetic heartbeat loop for
// single-process deployments where no worker agents phone in. Every
// tick stamps the heartbeat of every node, keeping the cluster alive
// from the detector's point of view. Status is never touched, so
// manual failures survive the refresh. Opt-in via config; a real
// cluster never runs it.
package heartbeat

import (
	"time"

	"github.com/roost-io/roost/pkg/clock"
	"github.com/roost-io/roost/pkg/log"
	"github.com/roost-io/roost/pkg/manager"
	"github.com/rs/zerolog"
)

// DefaultInterval is the simulator refresh period.
const DefaultInterval = 5 * time.Second

// Simulator periodically refreshes every node's heartbeat.
type Simulator struct {
	manager  *manager.Manager
	clock    clock.Clock
	interval time.Duration
	stopCh   chan struct{}
	logger   zerolog.Logger
}

// NewSimulator creates a simulator refreshing at the given interval.
func NewSimulator(mgr *manager.Manager, clk clock.Clock, interval time.Duration) *Simulator {
	if clk == nil {
		clk = clock.New()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Simulator{
		manager:  mgr,
		clock:    clk,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   log.WithComponent("heartbeat"),
	}
}

// Start begins the refresh loop
func (s *Simulator) Start() {
	go s.run()
}

// Stop stops the simulator
func (s *Simulator) Stop() {
	close(s.stopCh)
}

func (s *Simulator) run() {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C():
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

// sweep runs one refresh cycle. Errors are logged and swallowed.
func (s *Simulator) sweep() {
	if _, err := s.manager.RefreshHeartbeats(); err != nil {
		s.logger.Error().Err(err).Msg("Heartbeat refresh failed")
	}
}
