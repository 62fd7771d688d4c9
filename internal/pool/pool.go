// Package pool implements the bounded ticket pool shared by vendor and
// customer workers.
//
// A single mutex serializes every mutation of the issued/sold counters and
// the set of available tickets. Customers that find the pool empty wait on a
// broadcast channel that is closed (and replaced) whenever a ticket arrives or
// the last ticket is sold, so every waiter wakes and re-checks both the empty
// and the sold-out condition. Waits honour context cancellation.
package pool

import (
	"container/heap"
	"context"
	"sort"
	"sync"

	"github.com/cimillas/ticketpool/internal/clock"
	"github.com/cimillas/ticketpool/internal/domain"
	"github.com/google/uuid"
)

// Stats is a consistent snapshot of the pool counters.
type Stats struct {
	Capacity    int `json:"capacity"`
	TotalIssued int `json:"total_issued"`
	Sold        int `json:"sold"`
	Available   int `json:"available"`
}

type TicketPool struct {
	id       string
	eventID  string
	capacity int
	clock    clock.Clock
	observer Observer

	mu          sync.Mutex
	totalIssued int
	sold        int
	seq         uint64
	items       ticketHeap
	changed     chan struct{}
}

type Option func(*TicketPool)

// WithClock sets the clock used to stamp purchases and events.
func WithClock(c clock.Clock) Option {
	return func(p *TicketPool) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithObserver registers the receiver of pool events.
func WithObserver(o Observer) Option {
	return func(p *TicketPool) {
		if o != nil {
			p.observer = o
		}
	}
}

// WithEventID binds the pool to an event; tickets added without an event id
// inherit it.
func WithEventID(id string) Option {
	return func(p *TicketPool) {
		p.eventID = id
	}
}

// WithID overrides the generated pool id.
func WithID(id string) Option {
	return func(p *TicketPool) {
		if id != "" {
			p.id = id
		}
	}
}

// maxPrealloc bounds the heap slots reserved up front; capacity itself is
// only a counter.
const maxPrealloc = 1024

// New returns an empty pool that will issue at most capacity tickets.
func New(capacity int, opts ...Option) (*TicketPool, error) {
	if capacity <= 0 {
		return nil, domain.ErrInvalidCapacity
	}
	p := &TicketPool{
		id:       uuid.NewString(),
		capacity: capacity,
		clock:    clock.NewSystem(),
		observer: noopObserver{},
		items:    make(ticketHeap, 0, min(capacity, maxPrealloc)),
		changed:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *TicketPool) ID() string { return p.id }

func (p *TicketPool) EventID() string { return p.eventID }

func (p *TicketPool) Capacity() int { return p.capacity }

// TryAdd offers a ticket to the pool. It returns false without touching the
// pool once capacity tickets have been issued; that is the vendor's signal to
// stop, not an error. A ticket whose price fails domain.ValidPrice is refused
// the same way without being issued.
func (p *TicketPool) TryAdd(t domain.Ticket) bool {
	if !domain.ValidPrice(t.Price) {
		return false
	}
	p.mu.Lock()
	if p.totalIssued >= p.capacity {
		stats := p.statsLocked()
		p.mu.Unlock()
		p.emit(EventCapacityReached, t.VendorID, nil, stats)
		return false
	}

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.EventID == "" {
		t.EventID = p.eventID
	}
	t.Available = true
	t.CustomerID = ""
	t.TicketNumber = ""
	t.PurchasedAt = nil

	p.seq++
	heap.Push(&p.items, entry{ticket: t, seq: p.seq})
	p.totalIssued++
	p.broadcastLocked()
	stats := p.statsLocked()
	p.mu.Unlock()

	p.emit(EventTicketAdded, t.VendorID, &t, stats)
	return true
}

// Take removes the cheapest available ticket and assigns it to customerID.
// While the pool is empty but not sold out it blocks until a vendor adds a
// ticket or ctx is done. It returns domain.ErrSoldOut once every ticket the
// pool can ever issue has been sold, and ctx.Err() when cancelled.
func (p *TicketPool) Take(ctx context.Context, customerID string) (domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return domain.Ticket{}, err
	}

	p.mu.Lock()
	for {
		if p.sold >= p.capacity {
			stats := p.statsLocked()
			p.mu.Unlock()
			p.emit(EventSoldOut, customerID, nil, stats)
			return domain.Ticket{}, domain.ErrSoldOut
		}
		if len(p.items) > 0 {
			break
		}

		wake := p.changed
		stats := p.statsLocked()
		p.mu.Unlock()
		p.emit(EventCustomerWaiting, customerID, nil, stats)

		select {
		case <-wake:
		case <-ctx.Done():
			p.emit(EventWaitCancelled, customerID, nil, p.Stats())
			return domain.Ticket{}, ctx.Err()
		}
		p.mu.Lock()
	}

	t := p.sellLocked(customerID)
	stats := p.statsLocked()
	p.mu.Unlock()

	p.emit(EventTicketSold, customerID, &t, stats)
	return t, nil
}

// TryTake is the non-blocking form of Take. A momentarily empty pool yields
// domain.ErrNoTicketsAvailable instead of a wait.
func (p *TicketPool) TryTake(customerID string) (domain.Ticket, error) {
	p.mu.Lock()
	if p.sold >= p.capacity {
		stats := p.statsLocked()
		p.mu.Unlock()
		p.emit(EventSoldOut, customerID, nil, stats)
		return domain.Ticket{}, domain.ErrSoldOut
	}
	if len(p.items) == 0 {
		p.mu.Unlock()
		return domain.Ticket{}, domain.ErrNoTicketsAvailable
	}

	t := p.sellLocked(customerID)
	stats := p.statsLocked()
	p.mu.Unlock()

	p.emit(EventTicketSold, customerID, &t, stats)
	return t, nil
}

func (p *TicketPool) TotalIssued() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalIssued
}

func (p *TicketPool) Sold() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sold
}

func (p *TicketPool) AvailableCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

func (p *TicketPool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.statsLocked()
}

// Available returns a copy of the unsold tickets in the order Take would hand
// them out.
func (p *TicketPool) Available() []domain.Ticket {
	p.mu.Lock()
	entries := make([]entry, len(p.items))
	copy(entries, p.items)
	p.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool { return before(entries[i], entries[j]) })
	out := make([]domain.Ticket, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ticket)
	}
	return out
}

func (p *TicketPool) sellLocked(customerID string) domain.Ticket {
	t := heap.Pop(&p.items).(entry).ticket

	purchasedAt := p.clock.Now()
	t.Available = false
	t.CustomerID = customerID
	t.TicketNumber = domain.TicketNumberFor(t.ID)
	t.PurchasedAt = &purchasedAt
	p.sold++

	// Waiters parked on an empty pool must observe the final sale as sold out.
	if p.sold == p.capacity {
		p.broadcastLocked()
	}
	return t
}

func (p *TicketPool) broadcastLocked() {
	close(p.changed)
	p.changed = make(chan struct{})
}

func (p *TicketPool) statsLocked() Stats {
	return Stats{
		Capacity:    p.capacity,
		TotalIssued: p.totalIssued,
		Sold:        p.sold,
		Available:   len(p.items),
	}
}

func (p *TicketPool) emit(kind EventKind, actorID string, t *domain.Ticket, stats Stats) {
	p.observer.Observe(Event{
		Kind:    kind,
		PoolID:  p.id,
		ActorID: actorID,
		Ticket:  t,
		Stats:   stats,
		At:      p.clock.Now(),
	})
}
