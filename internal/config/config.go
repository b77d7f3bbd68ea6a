// Package config holds the product service configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/productapi/pkg/config"
	"github.com/abgdnv/productapi/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	Store      StoreConfig             `koanf:"store"`
	Database   config.DatabaseConfig   `koanf:"database"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	GRPC       config.GrpcServerConfig `koanf:"grpc"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
	NATS       config.NATSConfig       `koanf:"nats"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	Metrics    config.MetricsConfig    `koanf:"metrics"`
	Resilience config.ResilienceConfig `koanf:"resilience"`
}

// StoreConfig selects the product store and its boot-time fixtures.
type StoreConfig struct {
	Driver string     `koanf:"driver"`
	Seed   SeedConfig `koanf:"seed"`
}

// SeedConfig controls the demo products inserted into an empty store at boot.
// A zero Random value picks a random seed.
type SeedConfig struct {
	Enabled bool   `koanf:"enabled"`
	Count   int    `koanf:"count"`
	Random  uint64 `koanf:"random"`
}

func (c *StoreConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Store ---\n")
	b.WriteString(fmt.Sprintf("  store.driver: %s\n", c.Driver))
	b.WriteString(fmt.Sprintf("  store.seed.enabled: %t\n", c.Seed.Enabled))
	b.WriteString(fmt.Sprintf("  store.seed.count: %d\n", c.Seed.Count))
	return b.String()
}

func (c *StoreConfig) Validate() error {
	switch c.Driver {
	case DriverMemory, DriverPostgres:
	default:
		return fmt.Errorf("unsupported store driver %q, expected %q or %q", c.Driver, DriverMemory, DriverPostgres)
	}
	if c.Seed.Enabled && c.Seed.Count <= 0 {
		return fmt.Errorf("store.seed.count must be greater than 0 when seeding is enabled")
	}
	return nil
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Store.String())
	if c.Store.Driver == DriverPostgres {
		b.WriteString(c.Database.String())
	}
	b.WriteString(c.GRPC.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.NATS.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Metrics.String())
	b.WriteString(c.Resilience.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid.
// The database section is only required by the postgres driver.
func (c *Config) Validate() error {
	validators := []interface{ Validate() error }{
		&c.HTTPServer,
		&c.Store,
		&c.Log,
		&c.PProf,
		&c.Shutdown,
		&c.GRPC,
		&c.NATS,
		&c.Telemetry,
		&c.Metrics,
		&c.Resilience,
	}
	if c.Store.Driver == DriverPostgres {
		validators = append(validators, &c.Database)
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
