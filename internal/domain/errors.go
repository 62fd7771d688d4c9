package domain

import "errors"

var (
	// ErrSoldOut is returned by a take once every ticket the pool will ever
	// issue has been sold. It is a terminal signal, not a failure: callers
	// stop asking, the way readers stop at io.EOF.
	ErrSoldOut = errors.New("sold out")
	// ErrNoTicketsAvailable is returned by a non-blocking take when the pool
	// is momentarily empty but more tickets may still be issued.
	ErrNoTicketsAvailable = errors.New("no tickets available")
	// ErrInterrupted marks a run that was stopped before every worker reached
	// its natural terminal state (timeout or shutdown).
	ErrInterrupted = errors.New("simulation interrupted")

	ErrInvalidCapacity = errors.New("invalid capacity")
	ErrInvalidRate     = errors.New("invalid rate")
	ErrInvalidPrice    = errors.New("invalid ticket price")
	ErrNoVendors       = errors.New("customers configured without any vendor")
	ErrDuplicateWorker = errors.New("duplicate worker id")
	ErrInvalidTimeout  = errors.New("invalid timeout")
	ErrRunNotFound     = errors.New("simulation run not found")
	ErrInvalidID       = errors.New("invalid id")
	ErrRunExists       = errors.New("simulation run already stored")
)
