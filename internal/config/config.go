package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/socialchef/cocktail-studio/internal/flow"
	"gopkg.in/yaml.v3"
)

const (
	DispatcherMemory = "memory"
	DispatcherAsynq  = "asynq"
)

type Config struct {
	Env            string
	ServiceName    string
	ServiceVersion string

	Port           string
	AllowedOrigins []string

	RedisURL   string
	Dispatcher string

	OtelExporterOTLPEndpoint string
	OtelExporterOTLPHeaders  string
	SentryDSN                string

	Flows FlowsConfig
}

// FlowsConfig holds the simulated latency window of each flow.
type FlowsConfig struct {
	Ideas    WindowConfig `yaml:"ideas"`
	Visual   WindowConfig `yaml:"visual"`
	Research WindowConfig `yaml:"research"`
}

// WindowConfig is a latency window in milliseconds.
type WindowConfig struct {
	MinMs int `yaml:"min_ms"`
	MaxMs int `yaml:"max_ms"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:                      os.Getenv("ENV"),
		ServiceName:              os.Getenv("SERVICE_NAME"),
		ServiceVersion:           os.Getenv("SERVICE_VERSION"),
		Port:                     os.Getenv("PORT"),
		AllowedOrigins:           splitList(os.Getenv("ALLOWED_ORIGINS")),
		RedisURL:                 os.Getenv("REDIS_URL"),
		Dispatcher:               os.Getenv("DISPATCHER"),
		OtelExporterOTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OtelExporterOTLPHeaders:  os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"),
		SentryDSN:                os.Getenv("SENTRY_DSN"),
	}

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}

	// Load from YAML file if available
	if err := cfg.LoadFromYAML(path); err != nil {
		return nil, fmt.Errorf("failed to load YAML config: %w", err)
	}

	// Set defaults
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "cocktail-studio"
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = "1.0.0"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	if cfg.Dispatcher == "" {
		cfg.Dispatcher = DispatcherMemory
	}

	// Set flow defaults
	cfg.SetFlowDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

func (c *Config) LoadFromYAML(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File not found is not an error
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlConfig struct {
		Dispatcher string      `yaml:"dispatcher"`
		Flows      FlowsConfig `yaml:"flows"`
	}

	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	// Environment wins over the file for the dispatcher
	if yamlConfig.Dispatcher != "" && c.Dispatcher == "" {
		c.Dispatcher = yamlConfig.Dispatcher
	}

	mergeWindow(&c.Flows.Ideas, yamlConfig.Flows.Ideas)
	mergeWindow(&c.Flows.Visual, yamlConfig.Flows.Visual)
	mergeWindow(&c.Flows.Research, yamlConfig.Flows.Research)

	return nil
}

func mergeWindow(dst *WindowConfig, src WindowConfig) {
	if src.MinMs != 0 {
		dst.MinMs = src.MinMs
	}
	if src.MaxMs != 0 {
		dst.MaxMs = src.MaxMs
	}
}

// SetFlowDefaults fills unset windows from flow.DefaultWindows.
func (c *Config) SetFlowDefaults() {
	defaultWindow(&c.Flows.Ideas, flow.DefaultWindows[flow.KindIdeas])
	defaultWindow(&c.Flows.Visual, flow.DefaultWindows[flow.KindVisual])
	defaultWindow(&c.Flows.Research, flow.DefaultWindows[flow.KindResearch])
}

func defaultWindow(dst *WindowConfig, w flow.Window) {
	if dst.MinMs == 0 {
		dst.MinMs = int(w.Min.Milliseconds())
	}
	if dst.MaxMs == 0 {
		dst.MaxMs = int(w.Max.Milliseconds())
	}
}

// Window returns the configured latency window for kind.
func (c *Config) Window(kind flow.Kind) flow.Window {
	var w WindowConfig
	switch kind {
	case flow.KindIdeas:
		w = c.Flows.Ideas
	case flow.KindVisual:
		w = c.Flows.Visual
	case flow.KindResearch:
		w = c.Flows.Research
	default:
		return flow.Window{}
	}
	return flow.Window{
		Min: time.Duration(w.MinMs) * time.Millisecond,
		Max: time.Duration(w.MaxMs) * time.Millisecond,
	}
}

// Windows returns the latency window of every flow.
func (c *Config) Windows() map[flow.Kind]flow.Window {
	out := make(map[flow.Kind]flow.Window, len(flow.Kinds))
	for _, kind := range flow.Kinds {
		out[kind] = c.Window(kind)
	}
	return out
}

func (c *Config) validate() error {
	switch c.Dispatcher {
	case DispatcherMemory:
	case DispatcherAsynq:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when DISPATCHER=asynq")
		}
	default:
		return fmt.Errorf("unknown DISPATCHER %q", c.Dispatcher)
	}

	windows := map[string]WindowConfig{
		"ideas":    c.Flows.Ideas,
		"visual":   c.Flows.Visual,
		"research": c.Flows.Research,
	}
	for name, w := range windows {
		if w.MinMs < 0 || w.MaxMs < 0 {
			return fmt.Errorf("flows.%s: window must not be negative", name)
		}
		if w.MaxMs < w.MinMs {
			return fmt.Errorf("flows.%s: max_ms %d is below min_ms %d", name, w.MaxMs, w.MinMs)
		}
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
