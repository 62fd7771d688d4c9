package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cimillas/ticketpool/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RunRepository struct {
	pool *pgxpool.Pool
}

func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

func (r *RunRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// CreateRun stores the run summary and its worker reports.
func (r *RunRepository) CreateRun(ctx context.Context, run domain.SimulationRun) error {
	const stmt = `
INSERT INTO simulation_runs (
	id, event_id, capacity, release_rate_ms, retrieval_rate_ms,
	total_issued, sold, available_count, status, started_at, finished_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	q := conn(ctx, r.pool)
	_, err := q.Exec(ctx, stmt,
		run.ID, run.EventID, run.Capacity,
		run.ReleaseRate.Milliseconds(), run.RetrievalRate.Milliseconds(),
		run.TotalIssued, run.Sold, run.AvailableCount, string(run.Status),
		run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrRunExists
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create run: %w", err)
	}

	if len(run.Workers) == 0 {
		return nil
	}
	const workerStmt = `
INSERT INTO run_workers (run_id, position, worker_id, name, role, tickets, stop_reason)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	batch := &pgx.Batch{}
	for i, w := range run.Workers {
		batch.Queue(workerStmt, run.ID, i, w.ID, w.Name, string(w.Role), w.Tickets, string(w.StopReason))
	}
	if err := q.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("create run workers: %w", err)
	}
	return nil
}

func (r *RunRepository) CreateTickets(ctx context.Context, runID string, tickets []domain.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	const stmt = `
INSERT INTO tickets (id, run_id, ticket_number, event_id, vendor_id, customer_id, price, available, purchased_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	batch := &pgx.Batch{}
	for _, t := range tickets {
		batch.Queue(stmt, t.ID, runID, t.TicketNumber, t.EventID, t.VendorID,
			nullable(t.CustomerID), t.Price, t.Available, t.PurchasedAt)
	}
	if err := conn(ctx, r.pool).SendBatch(ctx, batch).Close(); err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create tickets: %w", err)
	}
	return nil
}

const runColumns = `id, event_id, capacity, release_rate_ms, retrieval_rate_ms,
	total_issued, sold, available_count, status, started_at, finished_at`

// ListRuns returns run summaries, newest first. Worker reports are only
// loaded by GetRun.
func (r *RunRepository) ListRuns(ctx context.Context) ([]domain.SimulationRun, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+runColumns+` FROM simulation_runs ORDER BY started_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []domain.SimulationRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

func (r *RunRepository) GetRun(ctx context.Context, id string) (domain.SimulationRun, error) {
	q := conn(ctx, r.pool)
	run, err := scanRun(q.QueryRow(ctx, `SELECT `+runColumns+` FROM simulation_runs WHERE id = $1`, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.SimulationRun{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SimulationRun{}, domain.ErrRunNotFound
		}
		return domain.SimulationRun{}, fmt.Errorf("get run: %w", err)
	}

	const workersQuery = `
SELECT worker_id, name, role, tickets, stop_reason
FROM run_workers
WHERE run_id = $1
ORDER BY position`
	rows, err := q.Query(ctx, workersQuery, id)
	if err != nil {
		return domain.SimulationRun{}, fmt.Errorf("get run workers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var w domain.WorkerReport
		var role, reason string
		if err := rows.Scan(&w.ID, &w.Name, &role, &w.Tickets, &reason); err != nil {
			return domain.SimulationRun{}, fmt.Errorf("scan run worker: %w", err)
		}
		w.Role = domain.WorkerRole(role)
		w.StopReason = domain.StopReason(reason)
		run.Workers = append(run.Workers, w)
	}
	if err := rows.Err(); err != nil {
		return domain.SimulationRun{}, fmt.Errorf("get run workers: %w", err)
	}
	return run, nil
}

// ListTicketsByRun returns sold tickets in purchase order, then unsold ones
// cheapest first.
func (r *RunRepository) ListTicketsByRun(ctx context.Context, runID string) ([]domain.Ticket, error) {
	const query = `
SELECT id, ticket_number, event_id, vendor_id, COALESCE(customer_id, ''), price, available, purchased_at
FROM tickets
WHERE run_id = $1
ORDER BY available, purchased_at, price, id`

	rows, err := conn(ctx, r.pool).Query(ctx, query, runID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	tickets := []domain.Ticket{}
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(&t.ID, &t.TicketNumber, &t.EventID, &t.VendorID, &t.CustomerID, &t.Price, &t.Available, &t.PurchasedAt); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

func scanRun(row pgx.Row) (domain.SimulationRun, error) {
	var run domain.SimulationRun
	var releaseMS, retrievalMS int64
	var status string
	err := row.Scan(&run.ID, &run.EventID, &run.Capacity, &releaseMS, &retrievalMS,
		&run.TotalIssued, &run.Sold, &run.AvailableCount, &status, &run.StartedAt, &run.FinishedAt)
	if err != nil {
		return domain.SimulationRun{}, err
	}
	run.ReleaseRate = time.Duration(releaseMS) * time.Millisecond
	run.RetrievalRate = time.Duration(retrievalMS) * time.Millisecond
	run.Status = domain.RunStatus(status)
	return run, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
