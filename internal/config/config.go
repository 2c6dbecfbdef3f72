package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Engine    EngineConfig    `toml:"engine"`
	Pipeline  PipelineConfig  `toml:"pipeline"`
	Scripting ScriptingConfig `toml:"scripting"`
	Network   NetworkConfig   `toml:"network"`
	Database  DatabaseConfig  `toml:"database"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Logging   LoggingConfig   `toml:"logging"`
}

type EngineConfig struct {
	Name          string        `toml:"name"`
	FrameInterval time.Duration `toml:"frame_interval"` // target frame pacing of the driving loop
	PhysicsStep   time.Duration `toml:"physics_step"`   // time per fixed-rate round
	MaxRounds     int           `toml:"max_rounds"`     // per-frame catch-up cap, 0 = unbounded
	Overflow      string        `toml:"overflow"`       // "carry" or "drop"
}

type PipelineConfig struct {
	OrderFile string `toml:"order_file"` // optional YAML stage order overlay
}

type ScriptingConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type NetworkConfig struct {
	Enabled         bool          `toml:"enabled"`
	BindAddress     string        `toml:"bind_address"`
	Charset         string        `toml:"charset"` // string field encoding, e.g. "utf-8", "big5"
	InQueueSize     int           `toml:"in_queue_size"`
	MaxMessagesTick int           `toml:"max_messages_per_tick"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type TelemetryConfig struct {
	Enabled    bool `toml:"enabled"`
	BatchSize  int  `toml:"batch_size"`  // frame reports per write
	QueueDepth int  `toml:"queue_depth"` // pending batches before dropping
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but returns the defaults when path does
// not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func (c *Config) Validate() error {
	if c.Engine.FrameInterval <= 0 {
		return errors.New("engine.frame_interval must be positive")
	}
	if c.Engine.PhysicsStep <= 0 {
		return errors.New("engine.physics_step must be positive")
	}
	if c.Engine.MaxRounds < 0 {
		return errors.New("engine.max_rounds must not be negative")
	}
	switch c.Engine.Overflow {
	case "", "carry", "drop":
	default:
		return fmt.Errorf("engine.overflow: unknown policy %q", c.Engine.Overflow)
	}
	if c.Network.Enabled && c.Network.InQueueSize <= 0 {
		return errors.New("network.in_queue_size must be positive")
	}
	if c.Telemetry.Enabled {
		if c.Database.DSN == "" {
			return errors.New("telemetry requires database.dsn")
		}
		if c.Telemetry.BatchSize <= 0 {
			return errors.New("telemetry.batch_size must be positive")
		}
	}
	return nil
}

func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Name:          "wraith",
			FrameInterval: 16 * time.Millisecond,
			PhysicsStep:   20 * time.Millisecond,
			Overflow:      "carry",
		},
		Scripting: ScriptingConfig{
			Enabled: true,
			Dir:     "scripts",
		},
		Network: NetworkConfig{
			BindAddress:     "0.0.0.0:7100",
			Charset:         "utf-8",
			InQueueSize:     256,
			MaxMessagesTick: 64,
			ReadTimeout:     60 * time.Second,
			WriteTimeout:    10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             "",
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Telemetry: TelemetryConfig{
			BatchSize:  300,
			QueueDepth: 8,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
