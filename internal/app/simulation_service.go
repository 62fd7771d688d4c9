package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cimillas/ticketpool/internal/clock"
	"github.com/cimillas/ticketpool/internal/domain"
	"github.com/cimillas/ticketpool/internal/pool"
	"github.com/cimillas/ticketpool/internal/simulation"
)

type RunRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateRun(ctx context.Context, run domain.SimulationRun) error
	CreateTickets(ctx context.Context, runID string, tickets []domain.Ticket) error
	ListRuns(ctx context.Context) ([]domain.SimulationRun, error)
	GetRun(ctx context.Context, id string) (domain.SimulationRun, error)
	ListTicketsByRun(ctx context.Context, runID string) ([]domain.Ticket, error)
}

type SimulationService struct {
	repo           RunRepository
	clock          clock.Clock
	observer       pool.Observer
	defaultTimeout time.Duration
	onFinish       func(domain.SimulationRun)
}

const defaultRunTimeout = 5 * time.Minute

func NewSimulationService(repo RunRepository, clk clock.Clock, opts ...SimulationServiceOption) *SimulationService {
	svc := &SimulationService{
		repo:           repo,
		clock:          clk,
		defaultTimeout: defaultRunTimeout,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type SimulationServiceOption func(*SimulationService)

// WithObserver receives the pool events of every run started by the service.
func WithObserver(o pool.Observer) SimulationServiceOption {
	return func(s *SimulationService) {
		s.observer = o
	}
}

// WithDefaultTimeout bounds runs that do not set their own timeout.
func WithDefaultTimeout(d time.Duration) SimulationServiceOption {
	return func(s *SimulationService) {
		if d > 0 {
			s.defaultTimeout = d
		}
	}
}

// WithRunFinished registers a callback invoked after each run is stored.
func WithRunFinished(fn func(domain.SimulationRun)) SimulationServiceOption {
	return func(s *SimulationService) {
		s.onFinish = fn
	}
}

type RunSimulationInput struct {
	EventID       string
	Capacity      int
	ReleaseRate   time.Duration
	RetrievalRate time.Duration
	Vendors       []simulation.Vendor
	Customers     []simulation.Customer
	Timeout       time.Duration
}

// RunSimulation runs one simulation to completion and stores the run with
// every ticket it issued. An interrupted run is stored too; the returned
// error then wraps domain.ErrInterrupted alongside the stored run.
func (s *SimulationService) RunSimulation(ctx context.Context, in RunSimulationInput) (domain.SimulationRun, error) {
	cfg := simulation.Config{
		EventID:       in.EventID,
		Capacity:      in.Capacity,
		ReleaseRate:   in.ReleaseRate,
		RetrievalRate: in.RetrievalRate,
		Vendors:       in.Vendors,
		Customers:     in.Customers,
		Timeout:       in.Timeout,
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = s.defaultTimeout
	}

	res, runErr := simulation.Run(ctx, cfg,
		simulation.WithClock(s.clock),
		simulation.WithObserver(s.observer),
	)
	if runErr != nil && !errors.Is(runErr, domain.ErrInterrupted) {
		return domain.SimulationRun{}, runErr
	}

	run := res.Run()
	tickets := make([]domain.Ticket, 0, len(res.Purchases)+len(res.Unsold))
	tickets = append(tickets, res.Purchases...)
	tickets = append(tickets, res.Unsold...)

	// The caller may have gone away; the outcome is still recorded.
	storeCtx := context.WithoutCancel(ctx)
	err := s.repo.WithTx(storeCtx, func(txCtx context.Context) error {
		if err := s.repo.CreateRun(txCtx, run); err != nil {
			return err
		}
		return s.repo.CreateTickets(txCtx, run.ID, tickets)
	})
	if err != nil {
		return domain.SimulationRun{}, fmt.Errorf("store run %s: %w", run.ID, err)
	}

	if s.onFinish != nil {
		s.onFinish(run)
	}
	return run, runErr
}

func (s *SimulationService) ListRuns(ctx context.Context) ([]domain.SimulationRun, error) {
	return s.repo.ListRuns(ctx)
}

// GetRun returns a stored run and all tickets it issued, sold ones first.
func (s *SimulationService) GetRun(ctx context.Context, id string) (domain.SimulationRun, []domain.Ticket, error) {
	if id == "" {
		return domain.SimulationRun{}, nil, domain.ErrInvalidID
	}
	run, err := s.repo.GetRun(ctx, id)
	if err != nil {
		return domain.SimulationRun{}, nil, err
	}
	tickets, err := s.repo.ListTicketsByRun(ctx, id)
	if err != nil {
		return domain.SimulationRun{}, nil, err
	}
	return run, tickets, nil
}
