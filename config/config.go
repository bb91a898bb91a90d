// Package config loads and validates the application configuration from
// yaml or json files, with environment-variable overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/mobilitylabs/evsim/core/metrics"
	"github.com/mobilitylabs/evsim/infra/mqtt"
)

type Config struct {
	Simulation SimulationConfig `json:"simulation"`
	Scenario   ScenarioConfig   `json:"scenario"`
	Network    NetworkConfig    `json:"network"`
	Agents     AgentConfig      `json:"agents"`
	Metrics    metrics.Config   `json:"metrics"`
	MQTT       mqtt.Config      `json:"mqtt"`
	Logging    LoggingConfig    `json:"logging"`
}

// Load reads the file at path and applies EVSIM_ environment overrides,
// e.g. EVSIM_SIMULATION__STEP_MINUTES=5.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("EVSIM_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "evsim_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Simulation.SetDefaults()
	cfg.Scenario.SetDefaults()
	cfg.Agents.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.MQTT.SetDefaults()
	cfg.Logging.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return err
	}
	if err := c.Scenario.Validate(); err != nil {
		return err
	}
	if err := c.Network.Validate(); err != nil {
		return err
	}
	if err := c.Agents.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.MQTT.Validate(); err != nil {
		return err
	}
	return c.Logging.Validate()
}

// SimulationConfig controls the step loop.
type SimulationConfig struct {
	// StepMinutes is the fixed simulation step size.
	StepMinutes int `json:"step_minutes"`
	// DurationMinutes is the total simulated time; runs may span days.
	DurationMinutes int `json:"duration_minutes"`
	// ReportIntervalMinutes is how often progress stats are logged.
	ReportIntervalMinutes int `json:"report_interval_minutes"`
}

func (c *SimulationConfig) SetDefaults() {
	if c.StepMinutes == 0 {
		c.StepMinutes = 10
	}
	if c.DurationMinutes == 0 {
		c.DurationMinutes = 24 * 60
	}
	if c.ReportIntervalMinutes == 0 {
		c.ReportIntervalMinutes = 120
	}
}

func (c SimulationConfig) Validate() error {
	if c.StepMinutes <= 0 {
		return fmt.Errorf("simulation step_minutes must be positive, got %d", c.StepMinutes)
	}
	if c.DurationMinutes < c.StepMinutes {
		return fmt.Errorf("simulation duration_minutes must cover at least one step")
	}
	if c.ReportIntervalMinutes < c.StepMinutes {
		return fmt.Errorf("simulation report_interval_minutes must cover at least one step")
	}
	// Progress reports fire when the clock lands exactly on the interval.
	if c.ReportIntervalMinutes%c.StepMinutes != 0 {
		return fmt.Errorf("simulation report_interval_minutes must be a multiple of step_minutes")
	}
	return nil
}

// ScenarioConfig controls random population generation.
type ScenarioConfig struct {
	NumAgents   int   `json:"num_agents"`
	NumStations int   `json:"num_stations"`
	Seed        int64 `json:"seed"`
}

func (c *ScenarioConfig) SetDefaults() {
	if c.NumAgents == 0 {
		c.NumAgents = 20
	}
	if c.NumStations == 0 {
		c.NumStations = 5
	}
}

func (c ScenarioConfig) Validate() error {
	if c.NumAgents <= 0 {
		return fmt.Errorf("scenario num_agents must be positive, got %d", c.NumAgents)
	}
	if c.NumStations < 0 {
		return fmt.Errorf("scenario num_stations must not be negative, got %d", c.NumStations)
	}
	return nil
}

// NetworkConfig points at the GeoJSON input files. StationsFile is
// optional; when empty, stations are generated on random network nodes.
type NetworkConfig struct {
	RoadsFile    string `json:"roads_file"`
	StationsFile string `json:"stations_file"`
}

func (c NetworkConfig) Validate() error {
	if c.RoadsFile == "" {
		return fmt.Errorf("network roads_file is required")
	}
	return nil
}

// AgentConfig overrides the vehicle parameters applied to every agent.
type AgentConfig struct {
	BatteryCapacityKWh     float64 `json:"battery_capacity_kwh"`
	LowBatteryThresholdPct float64 `json:"low_battery_threshold_pct"`
	ConsumptionKWhPerKm    float64 `json:"consumption_kwh_per_km"`
	ChargingRateKWhPerHour float64 `json:"charging_rate_kwh_per_hour"`
	SpeedKmh               float64 `json:"speed_kmh"`
}

func (c *AgentConfig) SetDefaults() {
	if c.BatteryCapacityKWh == 0 {
		c.BatteryCapacityKWh = 100
	}
	if c.LowBatteryThresholdPct == 0 {
		c.LowBatteryThresholdPct = 30
	}
	if c.ConsumptionKWhPerKm == 0 {
		c.ConsumptionKWhPerKm = 2
	}
	if c.ChargingRateKWhPerHour == 0 {
		c.ChargingRateKWhPerHour = 50
	}
	if c.SpeedKmh == 0 {
		c.SpeedKmh = 40
	}
}

func (c AgentConfig) Validate() error {
	if c.BatteryCapacityKWh <= 0 || c.ConsumptionKWhPerKm <= 0 || c.ChargingRateKWhPerHour <= 0 || c.SpeedKmh <= 0 {
		return fmt.Errorf("agent parameters must be positive")
	}
	if c.LowBatteryThresholdPct < 0 || c.LowBatteryThresholdPct > 100 {
		return fmt.Errorf("agent low_battery_threshold_pct must be in [0,100], got %v", c.LowBatteryThresholdPct)
	}
	return nil
}

// LoggingConfig controls the zerolog output.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `json:"level"`
}

func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

func (c LoggingConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "trace", "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("unknown logging level %q", c.Level)
}
