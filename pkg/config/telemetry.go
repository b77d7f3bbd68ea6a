package config

import (
	"fmt"
	"strings"
	"time"
)

// TelemetryConfig controls span export. Metrics are always collected and served by the metrics listener.
type TelemetryConfig struct {
	Enabled bool         `koanf:"enabled"`
	Traces  TracesConfig `koanf:"traces"`
}

// TracesConfig holds the OTLP/HTTP collector settings and the share of root traces that are sampled.
// A zero SampleRatio samples everything.
type TracesConfig struct {
	SampleRatio float64        `koanf:"sampleratio"`
	OtlpHttp    OtlpHttpConfig `koanf:"otlphttp"`
}

type OtlpHttpConfig struct {
	Endpoint string        `koanf:"endpoint"`
	Insecure bool          `koanf:"insecure"`
	Timeout  time.Duration `koanf:"timeout"`
}

// EffectiveSampleRatio returns the configured ratio, or 1 when none is set.
func (c *TracesConfig) EffectiveSampleRatio() float64 {
	if c.SampleRatio == 0 {
		return 1
	}
	return c.SampleRatio
}

func (c *TelemetryConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Telemetry ---\n")
	b.WriteString(fmt.Sprintf("  telemetry.enabled: %t\n", c.Enabled))
	if !c.Enabled {
		return b.String()
	}
	b.WriteString(fmt.Sprintf("  telemetry.traces.sampleratio: %g\n", c.Traces.EffectiveSampleRatio()))
	b.WriteString(fmt.Sprintf("  telemetry.traces.otlphttp.endpoint: %s\n", c.Traces.OtlpHttp.Endpoint))
	b.WriteString(fmt.Sprintf("  telemetry.traces.otlphttp.insecure: %t\n", c.Traces.OtlpHttp.Insecure))
	b.WriteString(fmt.Sprintf("  telemetry.traces.otlphttp.timeout: %v\n", c.Traces.OtlpHttp.Timeout))
	return b.String()
}

func (c *TelemetryConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch {
	case c.Traces.OtlpHttp.Endpoint == "":
		return fmt.Errorf("telemetry.traces.otlphttp.endpoint is not configured")
	case c.Traces.OtlpHttp.Timeout <= 0:
		return fmt.Errorf("telemetry.traces.otlphttp.timeout must be greater than 0")
	case c.Traces.SampleRatio < 0 || c.Traces.SampleRatio > 1:
		return fmt.Errorf("telemetry.traces.sampleratio must be between 0 and 1, got %g", c.Traces.SampleRatio)
	}
	return nil
}
