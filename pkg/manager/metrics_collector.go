package manager

import (
	"time"

	"github.com/roost-io/roost/pkg/metrics"
	"github.com/roost-io/roost/pkg/types"
)

// MetricsCollector periodically refreshes the Prometheus cluster
// gauges from manager state.
type MetricsCollector struct {
	manager *Manager
	stopCh  chan struct{}
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(mgr *Manager) *MetricsCollector {
	return &MetricsCollector{
		manager: mgr,
		stopCh:  make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *MetricsCollector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		// Collect immediately on start
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *MetricsCollector) Stop() {
	close(c.stopCh)
}

func (c *MetricsCollector) collect() {
	c.collectNodeMetrics()
	c.collectPodMetrics()
}

func (c *MetricsCollector) collectNodeMetrics() {
	nodes, err := c.manager.ListNodes()
	if err != nil {
		return
	}

	var healthy, unhealthy int
	var cpuTotal, cpuAvailable int
	for _, node := range nodes {
		switch node.Status {
		case types.NodeStatusHealthy:
			healthy++
			cpuAvailable += node.AvailableCPU
		case types.NodeStatusUnhealthy:
			unhealthy++
		}
		cpuTotal += node.TotalCPU
	}

	// Set every label value each cycle so counts that drop to zero
	// overwrite the stale gauge.
	metrics.NodesTotal.WithLabelValues(string(types.NodeStatusHealthy)).Set(float64(healthy))
	metrics.NodesTotal.WithLabelValues(string(types.NodeStatusUnhealthy)).Set(float64(unhealthy))
	metrics.CPUTotal.Set(float64(cpuTotal))
	metrics.CPUAvailable.Set(float64(cpuAvailable))
}

func (c *MetricsCollector) collectPodMetrics() {
	pods, err := c.manager.ListPods()
	if err != nil {
		return
	}

	var pending, running int
	for _, pod := range pods {
		switch pod.Status {
		case types.PodStatusPending:
			pending++
		case types.PodStatusRunning:
			running++
		}
	}

	metrics.PodsTotal.WithLabelValues(string(types.PodStatusPending)).Set(float64(pending))
	metrics.PodsTotal.WithLabelValues(string(types.PodStatusRunning)).Set(float64(running))
}
