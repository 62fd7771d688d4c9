package simulation

import (
	"context"
	"errors"
	"time"

	"github.com/cimillas/ticketpool/internal/clock"
	"github.com/cimillas/ticketpool/internal/domain"
)

// Pool is the part of the ticket pool the worker loops need.
type Pool interface {
	TryAdd(t domain.Ticket) bool
	Take(ctx context.Context, customerID string) (domain.Ticket, error)
}

// Vendor is a producer identity from the roster.
type Vendor struct {
	ID          string
	Name        string
	TicketPrice float64
}

// Customer is a consumer identity from the roster.
type Customer struct {
	ID   string
	Name string
}

// RunVendor offers one ticket per interval until the pool refuses a ticket
// (capacity reached) or ctx is done. Both are normal terminations.
func RunVendor(ctx context.Context, p Pool, v Vendor, interval time.Duration, clk clock.Clock) domain.WorkerReport {
	report := domain.WorkerReport{ID: v.ID, Name: v.Name, Role: domain.WorkerRoleVendor}
	for {
		if ctx.Err() != nil {
			report.StopReason = domain.StopCancelled
			return report
		}
		if !p.TryAdd(domain.Ticket{VendorID: v.ID, Price: v.TicketPrice}) {
			report.StopReason = domain.StopCapacityReached
			return report
		}
		report.Tickets++
		if err := pause(ctx, clk, interval); err != nil {
			report.StopReason = domain.StopCancelled
			return report
		}
	}
}

// RunCustomer takes one ticket per interval until the pool is sold out or
// ctx is done, and returns the tickets it bought. Only failures other than
// those two terminal conditions come back as an error.
func RunCustomer(ctx context.Context, p Pool, c Customer, interval time.Duration, clk clock.Clock) (domain.WorkerReport, []domain.Ticket, error) {
	report := domain.WorkerReport{ID: c.ID, Name: c.Name, Role: domain.WorkerRoleCustomer}
	var bought []domain.Ticket
	for {
		t, err := p.Take(ctx, c.ID)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrSoldOut):
			report.StopReason = domain.StopSoldOut
			return report, bought, nil
		case ctx.Err() != nil:
			report.StopReason = domain.StopCancelled
			return report, bought, nil
		default:
			report.StopReason = domain.StopCancelled
			return report, bought, err
		}

		bought = append(bought, t)
		report.Tickets++
		if err := pause(ctx, clk, interval); err != nil {
			report.StopReason = domain.StopCancelled
			return report, bought, nil
		}
	}
}

// pause waits for interval without holding anything the pool needs.
func pause(ctx context.Context, clk clock.Clock, interval time.Duration) error {
	if interval <= 0 {
		return ctx.Err()
	}
	select {
	case <-clk.After(interval):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
