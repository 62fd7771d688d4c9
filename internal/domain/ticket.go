package domain

import (
	"math"
	"time"
)

// Ticket is one sellable unit. It is created available with no customer and
// changes exactly once, when a customer takes it from the pool.
type Ticket struct {
	ID           string
	TicketNumber string
	EventID      string
	VendorID     string
	CustomerID   string
	Price        float64
	Available    bool
	PurchasedAt  *time.Time
}

// TicketNumberFor formats the printable number stamped on a ticket at sale.
func TicketNumberFor(id string) string {
	return "TICKET - " + id
}

// ValidPrice reports whether p can be sold: finite and not negative. NaN
// would never compare as cheapest, so it is refused with the infinities.
func ValidPrice(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p >= 0
}
