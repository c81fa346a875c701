package casper

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the packet-handler counters. Both start at 0 when the node
// boots.
type Metrics struct {
	BlocksReceived      prometheus.Counter
	BlocksReceivedAgain prometheus.Counter
}

// NewMetrics creates the counters and registers them with reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BlocksReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "casper",
			Subsystem: "packet_handler",
			Name:      "blocks_received",
			Help:      "Blocks received while fully participating.",
		}),
		BlocksReceivedAgain: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "casper",
			Subsystem: "packet_handler",
			Name:      "blocks_received_again",
			Help:      "Blocks received that the Casper instance already contained.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.BlocksReceived, m.BlocksReceivedAgain)
	}

	return m
}
