package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cimillas/ticketpool/internal/app"
	"github.com/cimillas/ticketpool/internal/config"
	"github.com/cimillas/ticketpool/internal/domain"
	"github.com/cimillas/ticketpool/internal/simulation"
	"github.com/google/uuid"
)

// maxRosterSize caps generated rosters so one request cannot start an
// unbounded number of goroutines.
const maxRosterSize = 1000

// SimulationService is the minimal interface the simulation endpoints need.
type SimulationService interface {
	RunSimulation(ctx context.Context, in app.RunSimulationInput) (domain.SimulationRun, error)
	ListRuns(ctx context.Context) ([]domain.SimulationRun, error)
	GetRun(ctx context.Context, id string) (domain.SimulationRun, []domain.Ticket, error)
}

// DefaultsSource supplies the configuration a request falls back to for the
// fields it leaves out. *config.Store satisfies it.
type DefaultsSource interface {
	Get() *config.Config
}

// HandleSimulations serves POST (run and store a simulation) and GET (list
// stored runs) on /simulations.
func HandleSimulations(svc SimulationService, defaults DefaultsSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			runs, err := svc.ListRuns(r.Context())
			if err != nil {
				writeDomainError(w, err)
				return
			}
			resp := make([]runResponse, 0, len(runs))
			for _, run := range runs {
				resp = append(resp, newRunResponse(run))
			}
			writeJSON(w, http.StatusOK, resp)
		case http.MethodPost:
			var req createSimulationRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			base := config.Default()
			if defaults != nil {
				base = defaults.Get()
			}
			in, err := req.input(base)
			if err != nil {
				if errors.Is(err, errInvalidRoster) {
					writeError(w, http.StatusBadRequest, codeInvalidRoster, err.Error())
					return
				}
				writeDomainError(w, err)
				return
			}

			run, err := svc.RunSimulation(r.Context(), in)
			if err != nil && !errors.Is(err, domain.ErrInterrupted) {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, newRunResponse(run))
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleSimulation serves GET /simulations/{id}: one stored run with its
// tickets.
func HandleSimulation(svc SimulationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		id, ok := parseSimulationPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		run, tickets, err := svc.GetRun(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		resp := runDetailResponse{runResponse: newRunResponse(run), Tickets: make([]ticketResponse, 0, len(tickets))}
		for _, t := range tickets {
			resp.Tickets = append(resp.Tickets, newTicketResponse(t))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func parseSimulationPath(path string) (string, bool) {
	id, ok := strings.CutPrefix(path, "/simulations/")
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

var errInvalidRoster = errors.New("invalid roster")

// participantRequest leaves TicketPrice nil to take the request or
// configured price.
type participantRequest struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	TicketPrice *float64 `json:"ticket_price,omitempty"`
}

// createSimulationRequest overrides the configured defaults field by field.
// Rates and timeout are in milliseconds.
type createSimulationRequest struct {
	EventID         *string              `json:"event_id"`
	Capacity        *int                 `json:"capacity"`
	ReleaseRateMS   *int64               `json:"release_rate_ms"`
	RetrievalRateMS *int64               `json:"retrieval_rate_ms"`
	TimeoutMS       *int64               `json:"timeout_ms"`
	TicketPrice     *float64             `json:"ticket_price"`
	Vendors         []participantRequest `json:"vendors"`
	Customers       []participantRequest `json:"customers"`
	VendorCount     *int                 `json:"vendor_count"`
	CustomerCount   *int                 `json:"customer_count"`
}

func (req createSimulationRequest) input(base *config.Config) (app.RunSimulationInput, error) {
	timeout, err := base.GetTimeout()
	if err != nil {
		return app.RunSimulationInput{}, err
	}
	in := app.RunSimulationInput{
		EventID:       base.EventID,
		Capacity:      base.MaxCapacity,
		ReleaseRate:   base.GetReleaseRate(),
		RetrievalRate: base.GetRetrievalRate(),
		Timeout:       timeout,
	}
	if req.EventID != nil {
		in.EventID = *req.EventID
	}
	if req.Capacity != nil {
		if *req.Capacity > config.MaxCapacity {
			return app.RunSimulationInput{}, fmt.Errorf("capacity must be at most %d, got %d: %w",
				config.MaxCapacity, *req.Capacity, domain.ErrInvalidCapacity)
		}
		in.Capacity = *req.Capacity
	}
	if req.ReleaseRateMS != nil {
		in.ReleaseRate = time.Duration(*req.ReleaseRateMS) * time.Millisecond
	}
	if req.RetrievalRateMS != nil {
		in.RetrievalRate = time.Duration(*req.RetrievalRateMS) * time.Millisecond
	}
	if req.TimeoutMS != nil {
		in.Timeout = time.Duration(*req.TimeoutMS) * time.Millisecond
	}
	price := base.TicketPrice
	if req.TicketPrice != nil {
		price = *req.TicketPrice
	}

	vendors, err := roster(req.Vendors, req.VendorCount, base.Roster.Vendors, "Vendor")
	if err != nil {
		return app.RunSimulationInput{}, err
	}
	for _, v := range vendors {
		vendorPrice := price
		if v.TicketPrice != nil {
			vendorPrice = *v.TicketPrice
		}
		in.Vendors = append(in.Vendors, simulation.Vendor{ID: v.ID, Name: v.Name, TicketPrice: vendorPrice})
	}

	customers, err := roster(req.Customers, req.CustomerCount, base.Roster.Customers, "Customer")
	if err != nil {
		return app.RunSimulationInput{}, err
	}
	for _, c := range customers {
		in.Customers = append(in.Customers, simulation.Customer{ID: c.ID, Name: c.Name})
	}
	return in, nil
}

// roster picks, in order of precedence, the explicit list, a generated list
// of count entries, or the configured roster.
func roster(explicit []participantRequest, count *int, configured []config.Participant, label string) ([]participantRequest, error) {
	if explicit != nil {
		if len(explicit) > maxRosterSize {
			return nil, fmt.Errorf("%s roster of %d exceeds %d: %w", strings.ToLower(label), len(explicit), maxRosterSize, errInvalidRoster)
		}
		return explicit, nil
	}
	if count != nil {
		if *count < 0 || *count > maxRosterSize {
			return nil, fmt.Errorf("%s_count must be between 0 and %d: %w", strings.ToLower(label), maxRosterSize, errInvalidRoster)
		}
		out := make([]participantRequest, 0, *count)
		for i := 1; i <= *count; i++ {
			out = append(out, participantRequest{ID: uuid.NewString(), Name: fmt.Sprintf("%s %d", label, i)})
		}
		return out, nil
	}
	out := make([]participantRequest, 0, len(configured))
	for _, p := range configured {
		out = append(out, participantRequest{ID: p.ID, Name: p.Name, TicketPrice: p.TicketPrice})
	}
	return out, nil
}

type workerResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Tickets    int    `json:"tickets"`
	StopReason string `json:"stop_reason"`
}

type runResponse struct {
	ID              string           `json:"id"`
	EventID         string           `json:"event_id,omitempty"`
	Status          string           `json:"status"`
	Capacity        int              `json:"capacity"`
	ReleaseRateMS   int64            `json:"release_rate_ms"`
	RetrievalRateMS int64            `json:"retrieval_rate_ms"`
	TotalIssued     int              `json:"total_issued"`
	Sold            int              `json:"sold"`
	AvailableCount  int              `json:"available_count"`
	StartedAt       time.Time        `json:"started_at"`
	FinishedAt      time.Time        `json:"finished_at"`
	Workers         []workerResponse `json:"workers,omitempty"`
}

type runDetailResponse struct {
	runResponse
	Tickets []ticketResponse `json:"tickets"`
}

type ticketResponse struct {
	ID           string     `json:"id"`
	TicketNumber string     `json:"ticket_number,omitempty"`
	EventID      string     `json:"event_id,omitempty"`
	VendorID     string     `json:"vendor_id"`
	CustomerID   string     `json:"customer_id,omitempty"`
	Price        float64    `json:"price"`
	Available    bool       `json:"available"`
	PurchasedAt  *time.Time `json:"purchased_at,omitempty"`
}

func newRunResponse(run domain.SimulationRun) runResponse {
	resp := runResponse{
		ID:              run.ID,
		EventID:         run.EventID,
		Status:          string(run.Status),
		Capacity:        run.Capacity,
		ReleaseRateMS:   run.ReleaseRate.Milliseconds(),
		RetrievalRateMS: run.RetrievalRate.Milliseconds(),
		TotalIssued:     run.TotalIssued,
		Sold:            run.Sold,
		AvailableCount:  run.AvailableCount,
		StartedAt:       run.StartedAt,
		FinishedAt:      run.FinishedAt,
	}
	for _, w := range run.Workers {
		resp.Workers = append(resp.Workers, workerResponse{
			ID:         w.ID,
			Name:       w.Name,
			Role:       string(w.Role),
			Tickets:    w.Tickets,
			StopReason: string(w.StopReason),
		})
	}
	return resp
}

func newTicketResponse(t domain.Ticket) ticketResponse {
	return ticketResponse{
		ID:           t.ID,
		TicketNumber: t.TicketNumber,
		EventID:      t.EventID,
		VendorID:     t.VendorID,
		CustomerID:   t.CustomerID,
		Price:        t.Price,
		Available:    t.Available,
		PurchasedAt:  t.PurchasedAt,
	}
}
