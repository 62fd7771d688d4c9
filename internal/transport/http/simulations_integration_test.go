package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cimillas/ticketpool/internal/app"
	"github.com/cimillas/ticketpool/internal/clock"
	"github.com/cimillas/ticketpool/internal/domain"
	"github.com/cimillas/ticketpool/internal/storage/postgres"
	"github.com/cimillas/ticketpool/internal/testutil"
)

func TestSimulations_HTTPIntegration(t *testing.T) {
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, context.Background(), pool)
	repo := postgres.NewRunRepository(pool)
	now := time.Date(2025, 1, 4, 10, 0, 0, 0, time.UTC)
	svc := app.NewSimulationService(repo, clock.NewFixed(now))

	ctx := context.Background()
	testutil.TruncateAll(t, ctx, pool)

	body := []byte(`{"event_id":"gala","capacity":4,"release_rate_ms":0,"retrieval_rate_ms":0,"vendor_count":2,"customer_count":3,"ticket_price":25}`)
	req := httptest.NewRequest(http.MethodPost, "/simulations", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()

	HandleSimulations(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	var created runResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Status != string(domain.RunStatusCompleted) {
		t.Fatalf("expected completed run, got %s", created.Status)
	}
	if created.TotalIssued != 4 || created.Sold != 4 || created.AvailableCount != 0 {
		t.Fatalf("unexpected counts: %+v", created)
	}
	if !created.StartedAt.Equal(now) {
		t.Fatalf("expected started_at %v, got %v", now, created.StartedAt)
	}

	req = httptest.NewRequest(http.MethodGet, "/simulations/"+created.ID, nil)
	rec = httptest.NewRecorder()
	HandleSimulation(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var detail runDetailResponse
	if err := json.NewDecoder(rec.Body).Decode(&detail); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(detail.Tickets) != 4 {
		t.Fatalf("expected 4 tickets, got %d", len(detail.Tickets))
	}
	if len(detail.Workers) != 5 {
		t.Fatalf("expected 5 workers, got %d", len(detail.Workers))
	}
	for _, tk := range detail.Tickets {
		if tk.Available || tk.CustomerID == "" || tk.EventID != "gala" || tk.Price != 25 {
			t.Fatalf("unexpected ticket: %+v", tk)
		}
		if tk.TicketNumber != domain.TicketNumberFor(tk.ID) {
			t.Fatalf("unexpected ticket number %q", tk.TicketNumber)
		}
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE run_id = $1`, created.ID).Scan(&count); err != nil {
		t.Fatalf("query count: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 stored tickets, got %d", count)
	}
}
