// Package simulation runs vendor and customer workers against one shared
// ticket pool and reports the final counts.
package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/cimillas/ticketpool/internal/clock"
	"github.com/cimillas/ticketpool/internal/domain"
	"github.com/cimillas/ticketpool/internal/pool"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one run. Purchases and Unsold together hold every
// ticket the pool ever issued.
type Result struct {
	RunID          string
	EventID        string
	Capacity       int
	ReleaseRate    time.Duration
	RetrievalRate  time.Duration
	TotalIssued    int
	Sold           int
	AvailableCount int
	Status         domain.RunStatus
	StartedAt      time.Time
	FinishedAt     time.Time
	Workers        []domain.WorkerReport
	Purchases      []domain.Ticket
	Unsold         []domain.Ticket
}

// Run converts the result into the persisted run summary.
func (r Result) Run() domain.SimulationRun {
	workers := make([]domain.WorkerReport, len(r.Workers))
	copy(workers, r.Workers)
	return domain.SimulationRun{
		ID:             r.RunID,
		EventID:        r.EventID,
		Capacity:       r.Capacity,
		ReleaseRate:    r.ReleaseRate,
		RetrievalRate:  r.RetrievalRate,
		TotalIssued:    r.TotalIssued,
		Sold:           r.Sold,
		AvailableCount: r.AvailableCount,
		Status:         r.Status,
		Workers:        workers,
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
	}
}

type runOptions struct {
	clock    clock.Clock
	observer pool.Observer
	runID    string
}

type Option func(*runOptions)

func WithClock(c clock.Clock) Option {
	return func(o *runOptions) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithObserver forwards every pool event of the run to obs.
func WithObserver(obs pool.Observer) Option {
	return func(o *runOptions) {
		o.observer = obs
	}
}

func WithRunID(id string) Option {
	return func(o *runOptions) {
		if id != "" {
			o.runID = id
		}
	}
}

// Run builds one pool, starts a goroutine per vendor and per customer, waits
// for all of them and reports the pool's final counts.
//
// A run cut short by ctx or cfg.Timeout still returns its partial Result,
// together with an error wrapping domain.ErrInterrupted.
func Run(ctx context.Context, cfg Config, opts ...Option) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	o := runOptions{clock: clock.NewSystem(), runID: uuid.NewString()}
	for _, opt := range opts {
		opt(&o)
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	p, err := pool.New(cfg.Capacity,
		pool.WithID(o.runID),
		pool.WithEventID(cfg.EventID),
		pool.WithClock(o.clock),
		pool.WithObserver(o.observer),
	)
	if err != nil {
		return Result{}, err
	}

	started := o.clock.Now()
	reports := make([]domain.WorkerReport, len(cfg.Vendors)+len(cfg.Customers))
	bought := make([][]domain.Ticket, len(cfg.Customers))

	g, gctx := errgroup.WithContext(ctx)
	for i, v := range cfg.Vendors {
		i, v := i, v
		g.Go(func() error {
			reports[i] = RunVendor(gctx, p, v, cfg.ReleaseRate, o.clock)
			return nil
		})
	}
	offset := len(cfg.Vendors)
	for i, c := range cfg.Customers {
		i, c := i, c
		g.Go(func() error {
			report, tickets, err := RunCustomer(gctx, p, c, cfg.RetrievalRate, o.clock)
			reports[offset+i] = report
			bought[i] = tickets
			if err != nil {
				return fmt.Errorf("customer %s: %w", c.ID, err)
			}
			return nil
		})
	}
	werr := g.Wait()

	stats := p.Stats()
	res := Result{
		RunID:          o.runID,
		EventID:        cfg.EventID,
		Capacity:       stats.Capacity,
		ReleaseRate:    cfg.ReleaseRate,
		RetrievalRate:  cfg.RetrievalRate,
		TotalIssued:    stats.TotalIssued,
		Sold:           stats.Sold,
		AvailableCount: stats.Available,
		Status:         domain.RunStatusCompleted,
		StartedAt:      started,
		FinishedAt:     o.clock.Now(),
		Workers:        reports,
		Unsold:         p.Available(),
	}
	for _, tickets := range bought {
		res.Purchases = append(res.Purchases, tickets...)
	}

	if werr != nil {
		res.Status = domain.RunStatusInterrupted
		return res, fmt.Errorf("run simulation: %w", werr)
	}
	for _, r := range reports {
		if r.StopReason == domain.StopCancelled {
			res.Status = domain.RunStatusInterrupted
			return res, fmt.Errorf("%w: %w", domain.ErrInterrupted, context.Cause(ctx))
		}
	}
	return res, nil
}
