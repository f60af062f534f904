// Package config loads agent settings from YAML files and REAGENT_ prefixed
// environment variables.
//
// Example file:
//
//	agent:
//	  name: assistant
//	  instructions: Answer briefly.
//	  max_iters: 8
//	  parallel: true
//	  structured_output: '{"type":"object","properties":{"title":{"type":"string"}},"required":["title"]}'
//	toolkit:
//	  cache_size: 256
//	  cache_ttl: 5m
//	memory:
//	  backend: redis
//	  redis:
//	    url: redis://localhost:6379/0
//	    key: reagent:session:42
//	    ttl: 24h
//	log:
//	  level: debug
//	  format: json
//
// Every key can be overridden from the environment, e.g.
// REAGENT_AGENT_MAX_ITERS=3 or REAGENT_MEMORY_REDIS_URL=redis://cache:6379.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rickchristie/reagent/schema"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Memory backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "REAGENT"

// Config is the full configuration of one agent.
type Config struct {
	Agent   AgentConfig   `yaml:"agent" mapstructure:"agent"`
	Toolkit ToolkitConfig `yaml:"toolkit" mapstructure:"toolkit"`
	Memory  MemoryConfig  `yaml:"memory" mapstructure:"memory"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// AgentConfig configures the ReAct loop.
type AgentConfig struct {
	Name         string `yaml:"name" mapstructure:"name"`
	Instructions string `yaml:"instructions" mapstructure:"instructions"`
	MaxIters     int    `yaml:"max_iters" mapstructure:"max_iters"`
	Parallel     bool   `yaml:"parallel" mapstructure:"parallel"`

	// Window limits the prompt to the last Window logged messages plus
	// pinned ones. Zero sends the whole log.
	Window int `yaml:"window" mapstructure:"window"`

	// StructuredOutput is a JSON Schema document, kept as text so that key
	// case survives environment and file loading.
	StructuredOutput string `yaml:"structured_output" mapstructure:"structured_output"`
}

// ToolkitConfig configures tool result caching. A zero CacheSize disables it.
type ToolkitConfig struct {
	CacheSize int           `yaml:"cache_size" mapstructure:"cache_size"`
	CacheTTL  time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// MemoryConfig selects the conversation log backend.
type MemoryConfig struct {
	Backend string      `yaml:"backend" mapstructure:"backend"`
	Redis   RedisConfig `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	URL string        `yaml:"url" mapstructure:"url"`
	Key string        `yaml:"key" mapstructure:"key"`
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// LogConfig configures the slog logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json, text
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Agent: AgentConfig{
			Name:     "assistant",
			MaxIters: 10,
		},
		Memory: MemoryConfig{
			Backend: BackendMemory,
			Redis:   RedisConfig{Key: "reagent:memory"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path over the defaults and applies
// environment overrides. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so that AutomaticEnv can override keys
// absent from the file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("agent.name", d.Agent.Name)
	v.SetDefault("agent.instructions", d.Agent.Instructions)
	v.SetDefault("agent.max_iters", d.Agent.MaxIters)
	v.SetDefault("agent.parallel", d.Agent.Parallel)
	v.SetDefault("agent.window", d.Agent.Window)
	v.SetDefault("agent.structured_output", d.Agent.StructuredOutput)
	v.SetDefault("toolkit.cache_size", d.Toolkit.CacheSize)
	v.SetDefault("toolkit.cache_ttl", d.Toolkit.CacheTTL)
	v.SetDefault("memory.backend", d.Memory.Backend)
	v.SetDefault("memory.redis.url", d.Memory.Redis.URL)
	v.SetDefault("memory.redis.key", d.Memory.Redis.Key)
	v.SetDefault("memory.redis.ttl", d.Memory.Redis.TTL)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// LoadYAML decodes data over the defaults without consulting the
// environment.
func LoadYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Agent.Name == "" {
		errs = append(errs, errors.New("agent.name is required"))
	}
	if c.Agent.MaxIters < 1 {
		errs = append(errs, fmt.Errorf("agent.max_iters must be positive, got %d", c.Agent.MaxIters))
	}
	if c.Agent.Window < 0 {
		errs = append(errs, fmt.Errorf("agent.window must not be negative, got %d", c.Agent.Window))
	}
	if c.Agent.StructuredOutput != "" {
		if _, err := c.Contract(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Toolkit.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("toolkit.cache_size must not be negative, got %d", c.Toolkit.CacheSize))
	}
	switch c.Memory.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Memory.Redis.URL == "" {
			errs = append(errs, errors.New("memory.redis.url is required for the redis backend"))
		}
		if c.Memory.Redis.Key == "" {
			errs = append(errs, errors.New("memory.redis.key is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("memory.backend must be %q or %q, got %q",
			BackendMemory, BackendRedis, c.Memory.Backend))
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of text, json", c.Log.Format))
	}
	return errors.Join(errs...)
}

// Contract compiles the structured-output schema. It returns nil when none
// is configured.
func (c *Config) Contract() (*schema.Schema, error) {
	if c.Agent.StructuredOutput == "" {
		return nil, nil
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(c.Agent.StructuredOutput), &raw); err != nil {
		return nil, fmt.Errorf("agent.structured_output: %w", err)
	}
	s, err := schema.Compile(raw)
	if err != nil {
		return nil, fmt.Errorf("agent.structured_output: %w", err)
	}
	return s, nil
}

// NewLogger builds the configured logger writing to w, or stderr when w is
// nil.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	level := slog.LevelInfo
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
