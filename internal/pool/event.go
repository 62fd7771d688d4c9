package pool

import (
	"time"

	"github.com/cimillas/ticketpool/internal/domain"
)

type EventKind string

const (
	EventTicketAdded     EventKind = "ticket_added"
	EventCapacityReached EventKind = "capacity_reached"
	EventCustomerWaiting EventKind = "customer_waiting"
	EventTicketSold      EventKind = "ticket_sold"
	EventSoldOut         EventKind = "sold_out"
	EventWaitCancelled   EventKind = "wait_cancelled"
)

// Event describes one observable change (or attempted change) of a pool.
// Stats is the snapshot taken under the lock at the moment of the change.
type Event struct {
	Kind    EventKind
	PoolID  string
	ActorID string
	Ticket  *domain.Ticket
	Stats   Stats
	At      time.Time
}

// Observer receives pool events. Observe is called after the pool lock is
// released, possibly from many goroutines at once, and must not block.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

type noopObserver struct{}

func (noopObserver) Observe(Event) {}
