package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	appLog "shiftcal/internal/log"
)

const (
	defaultOutputDir = "./output"
	defaultTimezone  = "Europe/Berlin"
	defaultLogLevel  = "info"
	defaultListen    = "127.0.0.1:8080"

	envPrefix = "SHIFTCAL_"
)

// Config is the top-level application configuration.
type Config struct {
	// OutputDir receives generated calendar files.
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// Timezone is the IANA zone applied to every event (e.g. "Europe/Berlin").
	Timezone string `yaml:"timezone" json:"timezone"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Reminders lists display names that get a one-hour alarm.
	Reminders []string `yaml:"reminders" json:"reminders"`

	// Include/Exclude filter shifts by display name before writing.
	Include []string `yaml:"include" json:"include"`
	Exclude []string `yaml:"exclude" json:"exclude"`

	// IncludeSpecial keeps special (*) shifts when Include is set.
	IncludeSpecial bool `yaml:"include_special" json:"include_special"`

	// Listen is the HTTP listen address for serve mode.
	Listen string `yaml:"listen" json:"listen"`

	// Schedule is a cron spec (e.g. "*/30 * * * *") for watch mode.
	Schedule string `yaml:"schedule" json:"schedule"`

	// Inputs are the roster files converted by watch mode.
	Inputs []string `yaml:"inputs" json:"inputs"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		OutputDir: defaultOutputDir,
		Timezone:  defaultTimezone,
		LogLevel:  defaultLogLevel,
		Reminders: []string{},
		Include:   []string{},
		Exclude:   []string{},
		Listen:    defaultListen,
		Inputs:    []string{},
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.OutputDir == "" {
		c.OutputDir = defaultOutputDir
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	c.Reminders = cleanList(c.Reminders)
	c.Include = cleanList(c.Include)
	c.Exclude = cleanList(c.Exclude)
	c.Inputs = cleanList(c.Inputs)
	c.Schedule = strings.TrimSpace(c.Schedule)
}

// Location resolves Timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to UTC", err, "name", c.Timezone)
		return time.UTC
	}
	return loc
}

// Load loads configuration from the given YAML path and applies
// environment overrides (see ApplyEnv).
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	// A missing .env is normal.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				cfg.ApplyEnv()
				return cfg, err
			}
			cfg.ApplyEnv()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	cfg.ApplyEnv()

	return &cfg, nil
}

// ApplyEnv overrides fields from SHIFTCAL_* environment variables:
// OUTPUT_DIR, TIMEZONE, LOG_LEVEL, LISTEN, SCHEDULE, INCLUDE_SPECIAL and
// the comma-separated REMINDERS, INCLUDE, EXCLUDE and INPUTS.
func (c *Config) ApplyEnv() {
	if v, ok := lookupEnv("OUTPUT_DIR"); ok {
		c.OutputDir = v
	}
	if v, ok := lookupEnv("TIMEZONE"); ok {
		c.Timezone = v
	}
	if v, ok := lookupEnv("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := lookupEnv("LISTEN"); ok {
		c.Listen = v
	}
	if v, ok := lookupEnv("SCHEDULE"); ok {
		c.Schedule = v
	}
	if v, ok := lookupEnv("INCLUDE_SPECIAL"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.IncludeSpecial = b
		}
	}
	if v, ok := lookupEnv("REMINDERS"); ok {
		c.Reminders = SplitList(v)
	}
	if v, ok := lookupEnv("INCLUDE"); ok {
		c.Include = SplitList(v)
	}
	if v, ok := lookupEnv("EXCLUDE"); ok {
		c.Exclude = SplitList(v)
	}
	if v, ok := lookupEnv("INPUTS"); ok {
		c.Inputs = SplitList(v)
	}
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".shiftcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}

// SplitList splits a comma-separated value into trimmed, non-empty items.
func SplitList(s string) []string {
	return cleanList(strings.Split(s, ","))
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func lookupEnv(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}
