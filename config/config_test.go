package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
agent:
  name: planner
  instructions: Answer briefly.
  max_iters: 4
  parallel: true
  structured_output: '{"type":"object","properties":{"title":{"type":"string"}},"required":["title"]}'
toolkit:
  cache_size: 64
  cache_ttl: 5m
memory:
  backend: redis
  redis:
    url: redis://localhost:6379/0
    key: reagent:test
    ttl: 1h
log:
  level: debug
  format: json
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reagent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, AgentConfig{
		Name:             "planner",
		Instructions:     "Answer briefly.",
		MaxIters:         4,
		Parallel:         true,
		StructuredOutput: `{"type":"object","properties":{"title":{"type":"string"}},"required":["title"]}`,
	}, cfg.Agent)
	assert.Equal(t, ToolkitConfig{CacheSize: 64, CacheTTL: 5 * time.Minute}, cfg.Toolkit)
	assert.Equal(t, MemoryConfig{
		Backend: BackendRedis,
		Redis:   RedisConfig{URL: "redis://localhost:6379/0", Key: "reagent:test", TTL: time.Hour},
	}, cfg.Memory)
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("REAGENT_AGENT_MAX_ITERS", "2")
	t.Setenv("REAGENT_LOG_LEVEL", "warn")

	cfg, err := Load(writeConfig(t, "agent:\n  name: env\n"))
	require.NoError(t, err)

	assert.Equal(t, "env", cfg.Agent.Name)
	assert.Equal(t, 2, cfg.Agent.MaxIters)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.ErrorContains(t, err, "read config")
}

func TestLoadYAML(t *testing.T) {
	cfg, err := LoadYAML([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "planner", cfg.Agent.Name)
	assert.Equal(t, 5*time.Minute, cfg.Toolkit.CacheTTL)
	assert.Equal(t, time.Hour, cfg.Memory.Redis.TTL)
}

func TestLoadYAML_KeepsDefaults(t *testing.T) {
	cfg, err := LoadYAML([]byte("agent:\n  name: only-name\n"))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Agent.MaxIters)
	assert.Equal(t, BackendMemory, cfg.Memory.Backend)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		input    func(c *Config)
		expected []string
	}{
		{
			name:  "default is valid",
			input: func(*Config) {},
		},
		{
			name: "agent settings",
			input: func(c *Config) {
				c.Agent.Name = ""
				c.Agent.MaxIters = 0
			},
			expected: []string{"agent.name is required", "agent.max_iters must be positive"},
		},
		{
			name:     "bad contract",
			input:    func(c *Config) { c.Agent.StructuredOutput = "{not json" },
			expected: []string{"agent.structured_output"},
		},
		{
			name: "redis without url",
			input: func(c *Config) {
				c.Memory.Backend = BackendRedis
				c.Memory.Redis.Key = ""
			},
			expected: []string{"memory.redis.url is required", "memory.redis.key is required"},
		},
		{
			name:     "unknown backend",
			input:    func(c *Config) { c.Memory.Backend = "sqlite" },
			expected: []string{`got "sqlite"`},
		},
		{
			name: "logging",
			input: func(c *Config) {
				c.Log.Level = "trace"
				c.Log.Format = "xml"
			},
			expected: []string{`log.level "trace"`, `log.format "xml"`},
		},
		{
			name:     "negative cache",
			input:    func(c *Config) { c.Toolkit.CacheSize = -1 },
			expected: []string{"toolkit.cache_size must not be negative"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.input(cfg)

			err := cfg.Validate()

			if len(tt.expected) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, msg := range tt.expected {
				assert.ErrorContains(t, err, msg)
			}
		})
	}
}

func TestContract(t *testing.T) {
	cfg := Default()
	s, err := cfg.Contract()
	require.NoError(t, err)
	assert.Nil(t, s)

	cfg.Agent.StructuredOutput = `{"type":"object","properties":{"title":{"type":"string"}}}`
	s, err = cfg.Contract()
	require.NoError(t, err)
	assert.NoError(t, s.Validate(map[string]any{"title": "ok"}))
	assert.Error(t, s.Validate(map[string]any{"title": 5}))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	cfg.Log = LogConfig{Level: "warn", Format: "json"}

	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "agent", "a")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"agent":"a"`)
}
