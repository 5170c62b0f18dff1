package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vango-dev/tooltip/internal/errors"
	"github.com/vango-dev/tooltip/pkg/geometry"
	"github.com/vango-dev/tooltip/pkg/tooltip"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "tooltip.json"

	// DefaultAddr is the default bridge listen address.
	DefaultAddr = ":8080"

	// DefaultMaxMessageBytes caps a single client message.
	DefaultMaxMessageBytes = 64 * 1024
)

// Config represents the complete tooltip.json configuration.
type Config struct {
	// Server contains bridge server settings.
	Server ServerConfig `json:"server"`

	// Defaults are the ambient tooltip options for every session.
	Defaults DefaultsConfig `json:"defaults"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics"`

	// Log contains logging settings.
	Log LogConfig `json:"log"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains bridge server settings. Durations use
// time.ParseDuration syntax (e.g., "10s").
type ServerConfig struct {
	// Addr is the address to listen on.
	Addr string `json:"addr,omitempty"`

	// ReadTimeout is how long the server waits for a client message or pong.
	ReadTimeout string `json:"readTimeout,omitempty"`

	// WriteTimeout bounds a single write to the client.
	WriteTimeout string `json:"writeTimeout,omitempty"`

	// HeartbeatInterval is the ping period. It must be shorter than ReadTimeout.
	HeartbeatInterval string `json:"heartbeatInterval,omitempty"`

	// MaxMessageBytes caps a single client message.
	MaxMessageBytes int64 `json:"maxMessageBytes,omitempty"`

	// AllowedOrigins lists origins allowed to open a session. Empty means
	// same origin only.
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`
}

// DefaultsConfig mirrors tooltip.Options in a JSON-friendly form.
type DefaultsConfig struct {
	Padding      float64 `json:"padding"`
	Side         string  `json:"side"`
	ShowOn       string  `json:"showOn"`
	BorderRadius float64 `json:"borderRadius"`
	Class        string  `json:"class"`

	// Arrow enables the built-in arrow.
	Arrow bool `json:"arrow"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes metrics at Path.
	Enabled bool `json:"enabled"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty"`

	// Path is the HTTP path of the metrics endpoint.
	Path string `json:"path,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              DefaultAddr,
			ReadTimeout:       "60s",
			WriteTimeout:      "10s",
			HeartbeatInterval: "30s",
			MaxMessageBytes:   DefaultMaxMessageBytes,
		},
		Defaults: DefaultsConfig{
			Padding:      0,
			Side:         "top",
			ShowOn:       "hover",
			BorderRadius: 5,
			Arrow:        true,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "tooltip",
			Path:      "/metrics",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for tooltip.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path. Fields missing
// from the file keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("T040").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or run without --config to use the defaults")
		}
		return nil, errors.New("T040").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("T040").
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}
	cfg.configPath = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("T040").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("T040").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return "."
	}
	return filepath.Dir(c.configPath)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New("T040").WithDetailf(format, args...)
	}

	if c.Server.Addr == "" {
		return invalid("server.addr must not be empty")
	}
	durations := map[string]string{
		"server.readTimeout":       c.Server.ReadTimeout,
		"server.writeTimeout":      c.Server.WriteTimeout,
		"server.heartbeatInterval": c.Server.HeartbeatInterval,
	}
	for _, field := range []string{"server.readTimeout", "server.writeTimeout", "server.heartbeatInterval"} {
		d, err := time.ParseDuration(durations[field])
		if err != nil || d <= 0 {
			return invalid("%s must be a positive duration, got %q", field, durations[field])
		}
	}
	if c.Server.HeartbeatDuration() >= c.Server.ReadTimeoutDuration() {
		return invalid("server.heartbeatInterval (%s) must be shorter than server.readTimeout (%s)",
			c.Server.HeartbeatInterval, c.Server.ReadTimeout)
	}
	if c.Server.MaxMessageBytes <= 0 {
		return invalid("server.maxMessageBytes must be positive, got %d", c.Server.MaxMessageBytes)
	}

	if _, err := c.Defaults.Options(); err != nil {
		return err
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return invalid("metrics.path must start with /, got %q", c.Metrics.Path)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return invalid("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// ReadTimeoutDuration returns ReadTimeout, or 0 if it does not parse.
func (s ServerConfig) ReadTimeoutDuration() time.Duration { return parseDuration(s.ReadTimeout) }

// WriteTimeoutDuration returns WriteTimeout, or 0 if it does not parse.
func (s ServerConfig) WriteTimeoutDuration() time.Duration { return parseDuration(s.WriteTimeout) }

// HeartbeatDuration returns HeartbeatInterval, or 0 if it does not parse.
func (s ServerConfig) HeartbeatDuration() time.Duration { return parseDuration(s.HeartbeatInterval) }

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// Options converts the defaults to tooltip options.
func (d DefaultsConfig) Options() (tooltip.Options, error) {
	side, err := geometry.ParseSide(d.Side)
	if err != nil {
		return tooltip.Options{}, errors.New("T040").WithDetailf("defaults.side: %v", err)
	}
	showOn, err := tooltip.ParseShowOn(d.ShowOn)
	if err != nil {
		return tooltip.Options{}, errors.New("T040").WithDetailf("defaults.showOn: %v", err)
	}
	if d.Padding < 0 {
		return tooltip.Options{}, errors.New("T040").WithDetailf("defaults.padding must not be negative, got %v", d.Padding)
	}
	if d.BorderRadius < 0 {
		return tooltip.Options{}, errors.New("T040").WithDetailf("defaults.borderRadius must not be negative, got %v", d.BorderRadius)
	}

	o := tooltip.Options{
		Padding:      d.Padding,
		Side:         side,
		ShowOn:       showOn,
		BorderRadius: d.BorderRadius,
		Class:        d.Class,
	}
	if d.Arrow {
		o.Arrow = tooltip.DefaultArrow()
	}
	return o, nil
}

// ParseLevel parses a log level name.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, errors.New("T040").WithDetailf("log.level: unknown level %q", name)
	}
	return level, nil
}

// Logger builds the slog logger described by the log section.
func (l LogConfig) Logger(w io.Writer) *slog.Logger {
	level, _ := ParseLevel(l.Level)
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindConfigDir walks up from startDir to the first directory containing
// tooltip.json.
func FindConfigDir(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("T040").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads the nearest tooltip.json above the working
// directory, or the defaults when there is none.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	dir, err := FindConfigDir(wd)
	if err != nil {
		return New(), nil
	}
	return Load(dir)
}
