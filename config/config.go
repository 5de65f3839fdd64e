// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// MaxTrialsPerPair bounds the trials of a single estimate.
const MaxTrialsPerPair = 1 << 20

var (
	ErrInvalidThreshold = errors.New("invalid quorum threshold")
	ErrInvalidTrials    = errors.New("invalid trials per pair")
	ErrInvalidMint      = errors.New("invalid mint amount")
	ErrNoSites          = errors.New("no sites configured")
	ErrDuplicateSite    = errors.New("duplicate site")
	ErrInvalidTimeout   = errors.New("invalid prepare timeout")
	ErrInvalidParallel  = errors.New("invalid parallel pair limit")
	ErrInvalidHistory   = errors.New("invalid history size")
	ErrInvalidPort      = errors.New("invalid port")
)

// Site is a coordination point.
type Site struct {
	Name      string  `yaml:"name"      json:"name"`
	Latitude  float64 `yaml:"latitude"  json:"latitude"`
	Longitude float64 `yaml:"longitude" json:"longitude"`
}

// HTTP configures the API server.
type HTTP struct {
	Host string `yaml:"host" json:"host"`
	Port uint16 `yaml:"port" json:"port"` // Default: 9650

	ReadHeaderTimeout time.Duration `yaml:"readHeaderTimeout" json:"readHeaderTimeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdownTimeout"   json:"shutdownTimeout"`

	AllowedOrigins []string `yaml:"allowedOrigins" json:"allowedOrigins"`
}

// Address returns host:port.
func (h HTTP) Address() string {
	return net.JoinHostPort(h.Host, strconv.Itoa(int(h.Port)))
}

// Config holds every engine parameter.
type Config struct {
	// Quorum
	QuorumThreshold int `yaml:"quorumThreshold" json:"quorumThreshold"` // Default: 144

	// Estimation
	TrialsPerPair int    `yaml:"trialsPerPair" json:"trialsPerPair"` // Default: 1024
	Seed          uint64 `yaml:"seed"          json:"seed"`

	// Credits
	MintAmount   float64 `yaml:"mintAmount"   json:"mintAmount"` // Default: 144000
	Originator   string  `yaml:"originator"   json:"originator"`
	CreditPrefix string  `yaml:"creditPrefix" json:"creditPrefix"`

	// Scheduling
	EventTime        time.Time     `yaml:"eventTime"        json:"eventTime"`
	PrepareTimeout   time.Duration `yaml:"prepareTimeout"   json:"prepareTimeout"`
	MaxParallelPairs int           `yaml:"maxParallelPairs" json:"maxParallelPairs"`
	HistorySize      int           `yaml:"historySize"      json:"historySize"`

	Sites []Site `yaml:"sites" json:"sites"`

	HTTP HTTP `yaml:"http" json:"http"`
}

// DefaultSites are the four vortex sites.
func DefaultSites() []Site {
	return []Site{
		{Name: "Great Pyramid", Latitude: 29.9792, Longitude: 31.1342},
		{Name: "Uluru", Latitude: -25.3444, Longitude: 131.0369},
		{Name: "Lake Titicaca", Latitude: -15.9254, Longitude: -69.3354},
		{Name: "Sedona Vortex", Latitude: 34.8658, Longitude: -111.7630},
	}
}

// DefaultConfig returns a config with default values.
func DefaultConfig() Config {
	return Config{
		QuorumThreshold:  144,
		TrialsPerPair:    1024,
		Seed:             144,
		MintAmount:       144000,
		Originator:       "RESONANCE_CORE",
		CreditPrefix:     "HEAL",
		EventTime:        time.Date(2025, time.December, 21, 11, 11, 0, 0, time.UTC),
		PrepareTimeout:   30 * time.Second,
		MaxParallelPairs: 8,
		HistorySize:      16,
		Sites:            DefaultSites(),
		HTTP: HTTP{
			Host:              "127.0.0.1",
			Port:              9650,
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			AllowedOrigins:    []string{"*"},
		},
	}
}

// SiteNames returns the configured site names in order.
func (c *Config) SiteNames() []string {
	names := make([]string, len(c.Sites))
	for i, s := range c.Sites {
		names[i] = s.Name
	}
	return names
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch {
	case c.QuorumThreshold <= 0:
		return fmt.Errorf("%w: %d", ErrInvalidThreshold, c.QuorumThreshold)
	case c.TrialsPerPair <= 0 || c.TrialsPerPair > MaxTrialsPerPair:
		return fmt.Errorf("%w: %d", ErrInvalidTrials, c.TrialsPerPair)
	case c.MintAmount <= 0:
		return fmt.Errorf("%w: %g", ErrInvalidMint, c.MintAmount)
	case c.PrepareTimeout < 0:
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, c.PrepareTimeout)
	case c.MaxParallelPairs <= 0:
		return fmt.Errorf("%w: %d", ErrInvalidParallel, c.MaxParallelPairs)
	case c.HistorySize <= 0:
		return fmt.Errorf("%w: %d", ErrInvalidHistory, c.HistorySize)
	case c.HTTP.Port == 0:
		return ErrInvalidPort
	case len(c.Sites) == 0:
		return ErrNoSites
	}

	seen := make(map[string]struct{}, len(c.Sites))
	for _, s := range c.Sites {
		if _, ok := seen[s.Name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateSite, s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return nil
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	c := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
