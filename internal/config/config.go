// Package config loads the simulation configuration file: pool capacity,
// worker rates and the vendor/customer roster.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cimillas/ticketpool/internal/domain"
	"github.com/cimillas/ticketpool/internal/simulation"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Bounds accepted for operator-edited values.
const (
	MinCapacity = 1
	MaxCapacity = 500
	MaxRate     = 20
)

// DefaultTicketPrice is what a vendor charges when the roster sets no price.
const DefaultTicketPrice = 100.0

// Participant is one roster entry. A nil TicketPrice falls back to the
// file-wide price; an explicit zero is kept.
type Participant struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	TicketPrice *float64 `yaml:"ticket_price,omitempty"`
}

// Price returns the participant's own price, or fallback when none is set.
func (p Participant) Price(fallback float64) float64 {
	if p.TicketPrice != nil {
		return *p.TicketPrice
	}
	return fallback
}

// Config represents the simulation configuration file.
type Config struct {
	EventID       string  `yaml:"event_id,omitempty"`
	MaxCapacity   int     `yaml:"max_capacity"`
	ReleaseRate   int     `yaml:"release_rate"`
	RetrievalRate int     `yaml:"retrieval_rate"`
	TicketPrice   float64 `yaml:"ticket_price"`
	Timeout       string  `yaml:"timeout,omitempty"`

	Roster struct {
		Vendors   []Participant `yaml:"vendors"`
		Customers []Participant `yaml:"customers"`
	} `yaml:"roster"`
}

func setDefaults(config *Config) {
	config.MaxCapacity = 50
	config.ReleaseRate = 1
	config.RetrievalRate = 1
	config.TicketPrice = DefaultTicketPrice
}

// Default returns a configuration with defaults and an empty roster.
func Default() *Config {
	config := &Config{}
	setDefaults(config)
	return config
}

// LoadConfig loads configuration from a YAML file. A missing file yields the
// defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := Default()

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return config, nil
}

// Save writes the configuration back to configPath.
func (c *Config) Save(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if dir := filepath.Dir(configPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks operator-facing bounds.
func (c *Config) Validate() error {
	if c.MaxCapacity < MinCapacity || c.MaxCapacity > MaxCapacity {
		return fmt.Errorf("max_capacity must be between %d and %d, got %d: %w",
			MinCapacity, MaxCapacity, c.MaxCapacity, domain.ErrInvalidCapacity)
	}
	if c.ReleaseRate < 0 || c.ReleaseRate > MaxRate {
		return fmt.Errorf("release_rate must be between 0 and %d, got %d: %w", MaxRate, c.ReleaseRate, domain.ErrInvalidRate)
	}
	if c.RetrievalRate < 0 || c.RetrievalRate > MaxRate {
		return fmt.Errorf("retrieval_rate must be between 0 and %d, got %d: %w", MaxRate, c.RetrievalRate, domain.ErrInvalidRate)
	}
	if !domain.ValidPrice(c.TicketPrice) {
		return fmt.Errorf("ticket_price %v: %w", c.TicketPrice, domain.ErrInvalidPrice)
	}
	for _, v := range c.Roster.Vendors {
		if v.TicketPrice != nil && !domain.ValidPrice(*v.TicketPrice) {
			return fmt.Errorf("vendor %q ticket_price %v: %w", v.ID, *v.TicketPrice, domain.ErrInvalidPrice)
		}
	}
	if _, err := c.GetTimeout(); err != nil {
		return err
	}
	return nil
}

// GetReleaseRate returns the vendor interval as a time.Duration
func (c *Config) GetReleaseRate() time.Duration {
	return time.Duration(c.ReleaseRate) * time.Second
}

// GetRetrievalRate returns the customer interval as a time.Duration
func (c *Config) GetRetrievalRate() time.Duration {
	return time.Duration(c.RetrievalRate) * time.Second
}

// GetTimeout parses the optional run timeout.
func (c *Config) GetTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("timeout %q: %w", c.Timeout, domain.ErrInvalidTimeout)
	}
	return d, nil
}

// GenerateRoster replaces the roster with n vendors and m customers.
func (c *Config) GenerateRoster(vendors, customers int) {
	c.Roster.Vendors = make([]Participant, 0, vendors)
	for i := 1; i <= vendors; i++ {
		c.Roster.Vendors = append(c.Roster.Vendors, Participant{ID: uuid.NewString(), Name: fmt.Sprintf("Vendor %d", i)})
	}
	c.Roster.Customers = make([]Participant, 0, customers)
	for i := 1; i <= customers; i++ {
		c.Roster.Customers = append(c.Roster.Customers, Participant{ID: uuid.NewString(), Name: fmt.Sprintf("Customer %d", i)})
	}
}

// Simulation converts the file into a driver configuration.
func (c *Config) Simulation() (simulation.Config, error) {
	if err := c.Validate(); err != nil {
		return simulation.Config{}, err
	}
	timeout, _ := c.GetTimeout()

	out := simulation.Config{
		EventID:       c.EventID,
		Capacity:      c.MaxCapacity,
		ReleaseRate:   c.GetReleaseRate(),
		RetrievalRate: c.GetRetrievalRate(),
		Timeout:       timeout,
	}
	for _, v := range c.Roster.Vendors {
		out.Vendors = append(out.Vendors, simulation.Vendor{ID: v.ID, Name: v.Name, TicketPrice: v.Price(c.TicketPrice)})
	}
	for _, cu := range c.Roster.Customers {
		out.Customers = append(out.Customers, simulation.Customer{ID: cu.ID, Name: cu.Name})
	}
	return out, out.Validate()
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Roster.Vendors = append([]Participant(nil), c.Roster.Vendors...)
	out.Roster.Customers = append([]Participant(nil), c.Roster.Customers...)
	return &out
}

// Store holds the current configuration for concurrent readers.
type Store struct {
	mu     sync.RWMutex
	config *Config
}

func NewStore(config *Config) *Store {
	return &Store{config: config.Clone()}
}

// Get returns a copy of the current configuration.
func (s *Store) Get() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.Clone()
}

func (s *Store) Set(config *Config) {
	s.mu.Lock()
	s.config = config.Clone()
	s.mu.Unlock()
}
