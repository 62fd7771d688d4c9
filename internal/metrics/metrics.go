// Package metrics exposes pool activity as Prometheus metrics.
package metrics

import (
	"sync"

	"github.com/cimillas/ticketpool/internal/pool"
	"github.com/prometheus/client_golang/prometheus"
)

// PoolCollector counts pool events. It is a pool.Observer; register it once
// and share it between runs.
type PoolCollector struct {
	TicketsIssued   prometheus.Counter
	TicketsSold     prometheus.Counter
	CapacityRefused prometheus.Counter
	SoldOutSignals  prometheus.Counter
	Waits           prometheus.Counter
	WaitsCancelled  prometheus.Counter
	TicketPrice     prometheus.Histogram
	Available       *prometheus.GaugeVec

	mu       sync.Mutex
	versions map[string]int
}

// NewPoolCollector creates the collectors and registers them with reg.
func NewPoolCollector(reg prometheus.Registerer) (*PoolCollector, error) {
	c := &PoolCollector{
		TicketsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticketpool_tickets_issued_total",
			Help: "Tickets accepted into a pool",
		}),
		TicketsSold: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticketpool_tickets_sold_total",
			Help: "Tickets taken from a pool by customers",
		}),
		CapacityRefused: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticketpool_capacity_refusals_total",
			Help: "Add attempts refused because the pool reached capacity",
		}),
		SoldOutSignals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticketpool_sold_out_total",
			Help: "Take attempts answered with sold out",
		}),
		Waits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticketpool_customer_waits_total",
			Help: "Times a customer blocked on an empty pool",
		}),
		WaitsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ticketpool_customer_waits_cancelled_total",
			Help: "Blocked takes abandoned because the run was cancelled",
		}),
		TicketPrice: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ticketpool_sold_ticket_price",
			Help:    "Price of sold tickets",
			Buckets: prometheus.LinearBuckets(10, 20, 10),
		}),
		Available: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ticketpool_available_tickets",
			Help: "Tickets currently available per pool",
		}, []string{"pool"}),
		versions: make(map[string]int),
	}

	for _, col := range []prometheus.Collector{
		c.TicketsIssued, c.TicketsSold, c.CapacityRefused, c.SoldOutSignals,
		c.Waits, c.WaitsCancelled, c.TicketPrice, c.Available,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *PoolCollector) Observe(e pool.Event) {
	switch e.Kind {
	case pool.EventTicketAdded:
		c.TicketsIssued.Inc()
	case pool.EventTicketSold:
		c.TicketsSold.Inc()
		if e.Ticket != nil {
			c.TicketPrice.Observe(e.Ticket.Price)
		}
	case pool.EventCapacityReached:
		c.CapacityRefused.Inc()
	case pool.EventSoldOut:
		c.SoldOutSignals.Inc()
	case pool.EventCustomerWaiting:
		c.Waits.Inc()
	case pool.EventWaitCancelled:
		c.WaitsCancelled.Inc()
	}
	if e.Kind == pool.EventTicketAdded || e.Kind == pool.EventTicketSold {
		c.setAvailable(e.PoolID, e.Stats)
	}
}

// setAvailable ignores snapshots older than the last one applied. Events are
// delivered outside the pool lock and may arrive out of order, but every add
// or sale bumps TotalIssued+Sold by exactly one.
func (c *PoolCollector) setAvailable(poolID string, s pool.Stats) {
	version := s.TotalIssued + s.Sold
	c.mu.Lock()
	defer c.mu.Unlock()
	if last, ok := c.versions[poolID]; ok && version <= last {
		return
	}
	c.versions[poolID] = version
	c.Available.WithLabelValues(poolID).Set(float64(s.Available))
}

// Forget drops the per-pool gauge once a run is finished.
func (c *PoolCollector) Forget(poolID string) {
	c.mu.Lock()
	delete(c.versions, poolID)
	c.Available.DeleteLabelValues(poolID)
	c.mu.Unlock()
}
