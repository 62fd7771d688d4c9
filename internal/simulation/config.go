package simulation

import (
	"fmt"
	"time"

	"github.com/cimillas/ticketpool/internal/domain"
)

// Config is everything one run needs. It is read-only once Run starts.
type Config struct {
	EventID       string
	Capacity      int
	ReleaseRate   time.Duration
	RetrievalRate time.Duration
	Vendors       []Vendor
	Customers     []Customer
	// Timeout bounds the whole run; zero means no limit.
	Timeout time.Duration
}

// Validate rejects configurations that would make workers run in a logically
// invalid pool, before any worker starts.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("capacity %d: %w", c.Capacity, domain.ErrInvalidCapacity)
	}
	if c.ReleaseRate < 0 {
		return fmt.Errorf("release rate %s: %w", c.ReleaseRate, domain.ErrInvalidRate)
	}
	if c.RetrievalRate < 0 {
		return fmt.Errorf("retrieval rate %s: %w", c.RetrievalRate, domain.ErrInvalidRate)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout %s: %w", c.Timeout, domain.ErrInvalidTimeout)
	}
	// Customers with no vendor would wait forever on an empty pool.
	if len(c.Customers) > 0 && len(c.Vendors) == 0 {
		return domain.ErrNoVendors
	}

	seen := make(map[string]struct{}, len(c.Vendors)+len(c.Customers))
	claim := func(id string) error {
		if id == "" {
			return domain.ErrInvalidID
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%q: %w", id, domain.ErrDuplicateWorker)
		}
		seen[id] = struct{}{}
		return nil
	}
	for _, v := range c.Vendors {
		if err := claim(v.ID); err != nil {
			return fmt.Errorf("vendor: %w", err)
		}
		if !domain.ValidPrice(v.TicketPrice) {
			return fmt.Errorf("vendor %q price %.2f: %w", v.ID, v.TicketPrice, domain.ErrInvalidPrice)
		}
	}
	for _, cu := range c.Customers {
		if err := claim(cu.ID); err != nil {
			return fmt.Errorf("customer: %w", err)
		}
	}
	return nil
}
