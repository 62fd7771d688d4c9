// Package observe turns pool events into log lines and fans them out to
// several observers.
package observe

import (
	"log"

	"github.com/cimillas/ticketpool/internal/pool"
)

// LogObserver writes one line per pool event.
type LogObserver struct {
	logger  *log.Logger
	verbose bool
}

// NewLogObserver returns an observer logging to logger. Waiting events are
// only written when verbose is set; a busy run produces many of them.
func NewLogObserver(logger *log.Logger, verbose bool) *LogObserver {
	if logger == nil {
		logger = log.Default()
	}
	return &LogObserver{logger: logger, verbose: verbose}
}

func (o *LogObserver) Observe(e pool.Event) {
	s := e.Stats
	switch e.Kind {
	case pool.EventTicketAdded:
		o.logger.Printf("ticket added pool=%s vendor=%s price=%.2f available=%d issued=%d/%d",
			e.PoolID, e.ActorID, e.Ticket.Price, s.Available, s.TotalIssued, s.Capacity)
	case pool.EventTicketSold:
		o.logger.Printf("ticket sold pool=%s customer=%s ticket=%q price=%.2f available=%d sold=%d/%d",
			e.PoolID, e.ActorID, e.Ticket.TicketNumber, e.Ticket.Price, s.Available, s.Sold, s.Capacity)
	case pool.EventCapacityReached:
		o.logger.Printf("WARN: pool capacity reached pool=%s vendor=%s capacity=%d", e.PoolID, e.ActorID, s.Capacity)
	case pool.EventSoldOut:
		o.logger.Printf("WARN: no tickets left for sale pool=%s customer=%s sold=%d", e.PoolID, e.ActorID, s.Sold)
	case pool.EventWaitCancelled:
		o.logger.Printf("WARN: wait cancelled pool=%s customer=%s", e.PoolID, e.ActorID)
	case pool.EventCustomerWaiting:
		if o.verbose {
			o.logger.Printf("waiting for tickets pool=%s customer=%s", e.PoolID, e.ActorID)
		}
	}
}

// Multi forwards each event to every non-nil observer in order.
func Multi(observers ...pool.Observer) pool.Observer {
	list := make([]pool.Observer, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			list = append(list, o)
		}
	}
	return multi(list)
}

type multi []pool.Observer

func (m multi) Observe(e pool.Event) {
	for _, o := range m {
		o.Observe(e)
	}
}
