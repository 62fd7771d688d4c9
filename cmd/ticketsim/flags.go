package main

import (
	"github.com/cimillas/ticketpool/internal/config"
	"github.com/spf13/pflag"
)

// overrides holds flag values that replace fields of the loaded config.
type overrides struct {
	eventID       string
	capacity      int
	releaseRate   int
	retrievalRate int
	ticketPrice   float64
	timeout       string
	vendors       int
	customers     int
}

func addConfigFlags(fs *pflag.FlagSet, o *overrides) {
	fs.StringVar(&o.eventID, "event-id", "", "event the issued tickets belong to")
	fs.IntVar(&o.capacity, "capacity", 0, "maximum tickets the pool will ever issue")
	fs.IntVar(&o.releaseRate, "release-rate", 0, "seconds a vendor waits between tickets")
	fs.IntVar(&o.retrievalRate, "retrieval-rate", 0, "seconds a customer waits between purchases")
	fs.Float64Var(&o.ticketPrice, "price", 0, "default ticket price for vendors without one")
	fs.StringVar(&o.timeout, "timeout", "", "stop the run after this long (e.g. 30s); empty means no limit")
	fs.IntVar(&o.vendors, "vendors", 0, "replace the vendor roster with this many generated vendors")
	fs.IntVar(&o.customers, "customers", 0, "replace the customer roster with this many generated customers")
}

var overrideFlags = []string{
	"event-id", "capacity", "release-rate", "retrieval-rate", "price", "timeout", "vendors", "customers",
}

func (o *overrides) changed(fs *pflag.FlagSet) bool {
	for _, name := range overrideFlags {
		if fs.Changed(name) {
			return true
		}
	}
	return false
}

// apply copies every flag the user set onto cfg and validates the result.
func (o *overrides) apply(fs *pflag.FlagSet, cfg *config.Config) error {
	if fs.Changed("event-id") {
		cfg.EventID = o.eventID
	}
	if fs.Changed("capacity") {
		cfg.MaxCapacity = o.capacity
	}
	if fs.Changed("release-rate") {
		cfg.ReleaseRate = o.releaseRate
	}
	if fs.Changed("retrieval-rate") {
		cfg.RetrievalRate = o.retrievalRate
	}
	if fs.Changed("price") {
		cfg.TicketPrice = o.ticketPrice
	}
	if fs.Changed("timeout") {
		cfg.Timeout = o.timeout
	}

	vendors, customers := cfg.Roster.Vendors, cfg.Roster.Customers
	if fs.Changed("vendors") || fs.Changed("customers") {
		gen := cfg.Clone()
		gen.GenerateRoster(max(o.vendors, 0), max(o.customers, 0))
		if fs.Changed("vendors") {
			vendors = gen.Roster.Vendors
		}
		if fs.Changed("customers") {
			customers = gen.Roster.Customers
		}
	}
	cfg.Roster.Vendors, cfg.Roster.Customers = vendors, customers

	return cfg.Validate()
}
