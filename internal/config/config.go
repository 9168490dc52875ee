package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"calgen/internal/model"
	"calgen/internal/recurrence"
)

// EnvConfigPath overrides the default config location.
const EnvConfigPath = "CALGEN_CONFIG"

// BasicAuthConfig holds HTTP Basic Auth credentials for the local server.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// LogConfig controls the global logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" json:"level"`
	// File, if set, receives a rotating copy of the log.
	File string `yaml:"file,omitempty" json:"file,omitempty"`
	JSON bool   `yaml:"json" json:"json"`
}

// CaptureConfig holds the headless browser settings used by capture.
type CaptureConfig struct {
	Width          int `yaml:"width" json:"width"`
	Height         int `yaml:"height" json:"height"`
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address of serve and open. Port 0 picks a
	// free port.
	Listen string `yaml:"listen" json:"listen"`

	// CalendarFile is the last calendar document used. It is updated
	// whenever a calendar is opened explicitly.
	CalendarFile string `yaml:"calendar_file" json:"calendar_file"`

	// Year is the year to render; 0 means the current year.
	Year int `yaml:"year" json:"year"`

	// Output is one of monthly, yearly, half-year, diary.
	Output string `yaml:"output" json:"output"`

	// Groups lists the titles of the selected event groups. Empty selects
	// every group.
	Groups []string `yaml:"groups" json:"groups"`

	// OnError is abort (default) or skip: what to do with an event that
	// fails to resolve.
	OnError string `yaml:"on_error" json:"on_error"`

	// ReloadCron is a cron-style schedule string (e.g. "@every 1m") for
	// re-reading CalendarFile while serving.
	ReloadCron string `yaml:"reload" json:"reload"`

	// CacheDir stores fetched ICS feeds.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	Log     LogConfig     `yaml:"log" json:"log"`
	Capture CaptureConfig `yaml:"capture" json:"capture"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:     "127.0.0.1:0",
		Output:     string(model.OutputMonthly),
		Groups:     []string{},
		OnError:    string(recurrence.PolicyAbort),
		ReloadCron: "@every 1m",
		CacheDir:   defaultCacheDir(),
		Log:        LogConfig{Level: "info"},
		Capture: CaptureConfig{
			Width:          1240,
			Height:         1754,
			TimeoutSeconds: 30,
		},
		BasicAuth: nil,
	}
}

// Normalize replaces missing or unknown values with the defaults.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if _, err := model.ParseOutput(c.Output); err != nil {
		// Unknown value; fall back to monthly to avoid surprising layouts.
		c.Output = def.Output
	}
	if c.Groups == nil {
		c.Groups = []string{}
	}
	if _, err := recurrence.ParsePolicy(c.OnError); err != nil || c.OnError == "" {
		c.OnError = def.OnError
	}
	if c.ReloadCron == "" {
		c.ReloadCron = def.ReloadCron
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Capture.Width <= 0 {
		c.Capture.Width = def.Capture.Width
	}
	if c.Capture.Height <= 0 {
		c.Capture.Height = def.Capture.Height
	}
	if c.Capture.TimeoutSeconds <= 0 {
		c.Capture.TimeoutSeconds = def.Capture.TimeoutSeconds
	}
	if c.Year < 0 {
		c.Year = 0
	}
}

// Validate reports settings Normalize cannot repair.
func (c *Config) Validate() error {
	if _, err := cron.ParseStandard(c.ReloadCron); err != nil {
		return fmt.Errorf("invalid reload schedule %q: %w", c.ReloadCron, err)
	}
	return nil
}

// EffectiveYear returns Year, or the current year when Year is 0.
func (c *Config) EffectiveYear(now time.Time) int {
	if c.Year > 0 {
		return c.Year
	}
	return now.Year()
}

// DefaultPath returns $CALGEN_CONFIG, or config.yaml under the user
// config directory.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "calgen", "config.yaml"), nil
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".", "cache", "ics")
	}
	return filepath.Join(dir, "calgen", "ics")
}

// Load reads the YAML config at path. A missing file is created with the
// defaults on first run.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			// cfg is usable even when the first write fails.
			return cfg, Save(path, cfg)
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save normalizes cfg and writes it to path with 0600 permissions,
// replacing the old file atomically.
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

	tmp, err := os.CreateTemp(dir, ".calgen-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

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

// Save writes c to path.
func (c *Config) Save(path string) error {
	return Save(path, c)
}

// RememberCalendarFile records file as the last used calendar and saves
// the config at path. Relative paths are made absolute first.
func (c *Config) RememberCalendarFile(path, file string) error {
	if file == "" {
		return errors.New("calendar file is empty")
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return err
	}
	if abs == c.CalendarFile {
		return nil
	}
	c.CalendarFile = abs
	return Save(path, c)
}
