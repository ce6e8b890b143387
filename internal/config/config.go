package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/cashflow/internal/model"
	"github.com/cleared-dev/cashflow/internal/projection"
)

// FileName is the default config file looked up in the working directory.
const FileName = "cashflow.yaml"

// EnvPrefix prefixes environment overrides, e.g. CASHFLOW_PROJECTION_MONTHS_AHEAD.
const EnvPrefix = "CASHFLOW"

// Config represents the top-level cashflow.yaml configuration.
type Config struct {
	Currency   string           `yaml:"currency"`
	Projection ProjectionConfig `yaml:"projection"`
	Files      FilesConfig      `yaml:"files"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Scenarios  []ScenarioConfig `yaml:"scenarios,omitempty"`
}

// ProjectionConfig controls forecasting and statement import.
type ProjectionConfig struct {
	MonthsAhead    int  `yaml:"months_ahead"`
	NormalizeYears bool `yaml:"normalize_years"`
}

// FilesConfig locates session state and side files.
type FilesConfig struct {
	State       string `yaml:"state"`
	Archive     string `yaml:"archive"`
	ImportDir   string `yaml:"import_dir"`
	ActivityLog string `yaml:"activity_log"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// LoggingConfig selects the logrus level and formatter.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// ScenarioConfig renames or recolors one of the fixed scenarios.
type ScenarioConfig struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name,omitempty"`
	Color string `yaml:"color,omitempty"`
}

// Load reads a cashflow.yaml file from disk. Missing fields keep defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, returning defaults when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new workspace.
func Default() *Config {
	return &Config{
		Currency: "EUR",
		Projection: ProjectionConfig{
			MonthsAhead: 24,
		},
		Files: FilesConfig{
			State:       "cashflow-state.json",
			Archive:     "cashflow-archive.db",
			ImportDir:   "import",
			ActivityLog: "cashflow-activity.csv",
		},
		Server: ServerConfig{
			Address: "127.0.0.1:8080",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks ranges and scenario ids.
func (c *Config) Validate() error {
	if c.Projection.MonthsAhead < 1 || c.Projection.MonthsAhead > projection.MaxMonths {
		return fmt.Errorf("projection.months_ahead must be between 1 and %d, got %d", projection.MaxMonths, c.Projection.MonthsAhead)
	}
	if len(c.Currency) != 3 {
		return fmt.Errorf("currency must be an ISO 4217 code, got %q", c.Currency)
	}
	for _, sc := range c.Scenarios {
		if _, err := model.ParseScenarioID(sc.ID); err != nil {
			return fmt.Errorf("scenarios: %w", err)
		}
	}
	return nil
}

// ApplyScenarios copies configured names and colors onto matching scenarios.
func (c *Config) ApplyScenarios(list []*model.Scenario) {
	for _, sc := range c.Scenarios {
		id, err := model.ParseScenarioID(sc.ID)
		if err != nil {
			continue
		}
		for _, target := range list {
			if target == nil || target.ID != id {
				continue
			}
			if sc.Name != "" {
				target.Name = sc.Name
			}
			if sc.Color != "" {
				target.Color = sc.Color
			}
		}
	}
}

// NewViper returns a viper instance reading CASHFLOW_* environment variables
// with dotted keys mapped to underscores.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Overlay keys understood by Apply.
const (
	KeyCurrency       = "currency"
	KeyMonthsAhead    = "projection.months_ahead"
	KeyNormalizeYears = "projection.normalize_years"
	KeyState          = "files.state"
	KeyArchive        = "files.archive"
	KeyImportDir      = "files.import_dir"
	KeyActivityLog    = "files.activity_log"
	KeyServerAddress  = "server.address"
	KeyLogLevel       = "logging.level"
	KeyLogFormat      = "logging.format"
)

// Apply overrides cfg with every key set in v (flags or environment).
func (c *Config) Apply(v *viper.Viper) error {
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	str(KeyCurrency, &c.Currency)
	str(KeyState, &c.Files.State)
	str(KeyArchive, &c.Files.Archive)
	str(KeyImportDir, &c.Files.ImportDir)
	str(KeyActivityLog, &c.Files.ActivityLog)
	str(KeyServerAddress, &c.Server.Address)
	str(KeyLogLevel, &c.Logging.Level)
	str(KeyLogFormat, &c.Logging.Format)

	if v.IsSet(KeyMonthsAhead) {
		c.Projection.MonthsAhead = v.GetInt(KeyMonthsAhead)
	}
	if v.IsSet(KeyNormalizeYears) {
		c.Projection.NormalizeYears = v.GetBool(KeyNormalizeYears)
	}
	c.Currency = strings.ToUpper(c.Currency)
	return c.Validate()
}
