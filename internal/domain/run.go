package domain

import "time"

type RunStatus string

const (
	RunStatusCompleted   RunStatus = "completed"
	RunStatusInterrupted RunStatus = "interrupted"
)

type WorkerRole string

const (
	WorkerRoleVendor   WorkerRole = "vendor"
	WorkerRoleCustomer WorkerRole = "customer"
)

type StopReason string

const (
	StopCapacityReached StopReason = "capacity_reached"
	StopSoldOut         StopReason = "sold_out"
	StopCancelled       StopReason = "cancelled"
)

// WorkerReport is what a vendor or customer worker hands back once its loop
// has exited.
type WorkerReport struct {
	ID         string
	Name       string
	Role       WorkerRole
	Tickets    int
	StopReason StopReason
}

// SimulationRun summarizes one end-to-end run over a single ticket pool.
type SimulationRun struct {
	ID             string
	EventID        string
	Capacity       int
	ReleaseRate    time.Duration
	RetrievalRate  time.Duration
	TotalIssued    int
	Sold           int
	AvailableCount int
	Status         RunStatus
	Workers        []WorkerReport
	StartedAt      time.Time
	FinishedAt     time.Time
}
