package simulation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cimillas/ticketpool/internal/clock"
	"github.com/cimillas/ticketpool/internal/domain"
	"github.com/cimillas/ticketpool/internal/pool"
	"github.com/stretchr/testify/require"
)

func roster(vendors, customers int) ([]Vendor, []Customer) {
	vs := make([]Vendor, vendors)
	for i := range vs {
		vs[i] = Vendor{ID: fmt.Sprintf("v%d", i+1), Name: fmt.Sprintf("Vendor %d", i+1), TicketPrice: float64(100 - i*10)}
	}
	cs := make([]Customer, customers)
	for i := range cs {
		cs[i] = Customer{ID: fmt.Sprintf("c%d", i+1), Name: fmt.Sprintf("Customer %d", i+1)}
	}
	return vs, cs
}

func TestRun_AllWorkersFinish(t *testing.T) {
	t.Parallel()

	vendors, customers := roster(2, 3)
	res, err := Run(context.Background(), Config{
		Capacity:  3,
		Vendors:   vendors,
		Customers: customers,
	}, WithClock(clock.NewFixed(testNow)), WithRunID("run-1"))
	require.NoError(t, err)

	require.Equal(t, "run-1", res.RunID)
	require.Equal(t, domain.RunStatusCompleted, res.Status)
	require.Equal(t, 3, res.TotalIssued)
	require.Equal(t, 3, res.Sold)
	require.Equal(t, 0, res.AvailableCount)
	require.Len(t, res.Purchases, 3)
	require.Empty(t, res.Unsold)

	require.Len(t, res.Workers, 5)
	var issued, bought int
	for _, w := range res.Workers {
		switch w.Role {
		case domain.WorkerRoleVendor:
			require.Equal(t, domain.StopCapacityReached, w.StopReason)
			issued += w.Tickets
		case domain.WorkerRoleCustomer:
			require.Equal(t, domain.StopSoldOut, w.StopReason)
			bought += w.Tickets
		}
	}
	require.Equal(t, 3, issued)
	require.Equal(t, 3, bought)
}

func TestRun_PacedWorkersWithFixedClock(t *testing.T) {
	t.Parallel()

	vendors, customers := roster(3, 4)
	res, err := Run(context.Background(), Config{
		EventID:       "event-1",
		Capacity:      40,
		ReleaseRate:   time.Second,
		RetrievalRate: 2 * time.Second,
		Vendors:       vendors,
		Customers:     customers,
	}, WithClock(clock.NewFixed(testNow)))
	require.NoError(t, err)

	require.Equal(t, 40, res.TotalIssued)
	require.Equal(t, 40, res.Sold)
	require.Equal(t, time.Second, res.ReleaseRate)
	for _, tk := range res.Purchases {
		require.Equal(t, "event-1", tk.EventID)
		require.False(t, tk.Available)
	}

	run := res.Run()
	require.Equal(t, res.RunID, run.ID)
	require.Equal(t, 40, run.Sold)
	require.Len(t, run.Workers, 7)
}

func TestRun_ObserverSeesEveryTicket(t *testing.T) {
	t.Parallel()

	var added, sold atomic.Int64
	obs := pool.ObserverFunc(func(e pool.Event) {
		switch e.Kind {
		case pool.EventTicketAdded:
			added.Add(1)
		case pool.EventTicketSold:
			sold.Add(1)
		}
	})

	vendors, customers := roster(2, 2)
	_, err := Run(context.Background(), Config{Capacity: 25, Vendors: vendors, Customers: customers}, WithObserver(obs))
	require.NoError(t, err)
	require.Equal(t, int64(25), added.Load())
	require.Equal(t, int64(25), sold.Load())
}

func TestRun_TimeoutInterruptsAndLosesNothing(t *testing.T) {
	t.Parallel()

	vendors, customers := roster(2, 3)
	res, err := Run(context.Background(), Config{
		Capacity:      50,
		ReleaseRate:   time.Hour,
		RetrievalRate: 0,
		Vendors:       vendors,
		Customers:     customers,
		Timeout:       50 * time.Millisecond,
	})
	require.ErrorIs(t, err, domain.ErrInterrupted)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, domain.RunStatusInterrupted, res.Status)

	require.Equal(t, 2, res.TotalIssued)
	require.Equal(t, res.TotalIssued, res.Sold+res.AvailableCount)
	require.Len(t, res.Workers, 5)
	for _, w := range res.Workers {
		require.Equal(t, domain.StopCancelled, w.StopReason)
	}

	var ids []string
	for _, tk := range res.Purchases {
		ids = append(ids, tk.ID)
	}
	for _, tk := range res.Unsold {
		ids = append(ids, tk.ID)
	}
	sort.Strings(ids)
	require.Len(t, ids, res.TotalIssued)
	for i := 1; i < len(ids); i++ {
		require.NotEqual(t, ids[i-1], ids[i])
	}
}

func TestRun_ParentCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	vendors, customers := roster(1, 1)
	res, err := Run(ctx, Config{Capacity: 5, Vendors: vendors, Customers: customers})
	require.ErrorIs(t, err, domain.ErrInterrupted)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, domain.RunStatusInterrupted, res.Status)
	require.Zero(t, res.TotalIssued)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	vendors, customers := roster(1, 1)
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"zero capacity", Config{Capacity: 0, Vendors: vendors}, domain.ErrInvalidCapacity},
		{"negative capacity", Config{Capacity: -3, Vendors: vendors}, domain.ErrInvalidCapacity},
		{"negative release rate", Config{Capacity: 1, ReleaseRate: -time.Second, Vendors: vendors}, domain.ErrInvalidRate},
		{"negative retrieval rate", Config{Capacity: 1, RetrievalRate: -time.Second, Vendors: vendors}, domain.ErrInvalidRate},
		{"negative timeout", Config{Capacity: 1, Timeout: -time.Second, Vendors: vendors}, domain.ErrInvalidTimeout},
		{"customers without vendors", Config{Capacity: 1, Customers: customers}, domain.ErrNoVendors},
		{"negative price", Config{Capacity: 1, Vendors: []Vendor{{ID: "v1", TicketPrice: -1}}}, domain.ErrInvalidPrice},
		{"nan price", Config{Capacity: 1, Vendors: []Vendor{{ID: "v1", TicketPrice: math.NaN()}}}, domain.ErrInvalidPrice},
		{"infinite price", Config{Capacity: 1, Vendors: []Vendor{{ID: "v1", TicketPrice: math.Inf(1)}}}, domain.ErrInvalidPrice},
		{"zero price", Config{Capacity: 1, Vendors: []Vendor{{ID: "v1", TicketPrice: 0}}}, nil},
		{"missing id", Config{Capacity: 1, Vendors: []Vendor{{Name: "nameless"}}}, domain.ErrInvalidID},
		{"duplicate id", Config{Capacity: 1, Vendors: vendors, Customers: []Customer{{ID: vendors[0].ID}}}, domain.ErrDuplicateWorker},
		{"valid", Config{Capacity: 1, Vendors: vendors, Customers: customers}, nil},
		{"vendors only", Config{Capacity: 1, Vendors: vendors}, nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRun_InvalidConfigStartsNothing(t *testing.T) {
	t.Parallel()

	var events atomic.Int64
	_, err := Run(context.Background(), Config{Capacity: 0}, WithObserver(pool.ObserverFunc(func(pool.Event) {
		events.Add(1)
	})))
	require.ErrorIs(t, err, domain.ErrInvalidCapacity)
	require.Zero(t, events.Load())
}
