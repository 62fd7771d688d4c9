package pool

import "github.com/cimillas/ticketpool/internal/domain"

type entry struct {
	ticket domain.Ticket
	seq    uint64
}

// ticketHeap orders available tickets cheapest first, oldest first on ties.
type ticketHeap []entry

func (h ticketHeap) Len() int { return len(h) }

func (h ticketHeap) Less(i, j int) bool { return before(h[i], h[j]) }

func (h ticketHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *ticketHeap) Push(x any) {
	*h = append(*h, x.(entry))
}

func (h *ticketHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = entry{}
	*h = old[:n-1]
	return e
}

func before(a, b entry) bool {
	if a.ticket.Price != b.ticket.Price {
		return a.ticket.Price < b.ticket.Price
	}
	return a.seq < b.seq
}
