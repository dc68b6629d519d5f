package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/keyflow"
	ConfigFileName    = "keyflow.yml"
)

// Config holds all keyflow settings. Values come from the YAML config file
// and are overridden by environment variables. Every field except
// AllowedFlows is fixed after Load; the flow allow-list may be swapped at
// runtime by the config watcher, so all access goes through FlowAllowed/Flows.
type Config struct {
	// BindAddress is the server listen address.
	BindAddress string `yaml:"bind_address"`

	// Port is the server listen port.
	Port string `yaml:"port"`

	// DatabaseURL is the connection string: a postgres:// URL or a path to a
	// sqlite database file.
	DatabaseURL string `yaml:"database_url"`

	// AllowedFlows is the administratively declared flow allow-list.
	// Submissions and lifecycle operations against any other flow are
	// rejected.
	AllowedFlows []string `yaml:"allowed_flows"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// RequestTimeoutSeconds bounds outbound client HTTP calls.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`

	mu             sync.RWMutex
	configFilePath string
}

func newDefault() *Config {
	return &Config{
		BindAddress:           "0.0.0.0",
		Port:                  "8372",
		LogLevel:              "info",
		RequestTimeoutSeconds: 30,
	}
}

// Load reads the config file (KEYFLOW_CONFIG_PATH or /etc/keyflow) when
// present and applies environment variable overrides on top. A missing file
// is not an error; a malformed one is.
func Load() (*Config, error) {
	cfg := newDefault()

	configPath := os.Getenv("KEYFLOW_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(cfg.configFilePath); err == nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", cfg.configFilePath, err)
		}
		cfg.applyFileConfig(&fileCfg)
	}

	cfg.applyEnvConfig()
	return cfg, nil
}

func (c *Config) applyFileConfig(file *Config) {
	if file.BindAddress != "" {
		c.BindAddress = file.BindAddress
	}
	if file.Port != "" {
		c.Port = file.Port
	}
	if file.DatabaseURL != "" {
		c.DatabaseURL = file.DatabaseURL
	}
	if len(file.AllowedFlows) > 0 {
		c.AllowedFlows = file.AllowedFlows
	}
	if file.LogLevel != "" {
		c.LogLevel = file.LogLevel
	}
	if file.RequestTimeoutSeconds != 0 {
		c.RequestTimeoutSeconds = file.RequestTimeoutSeconds
	}
}

func (c *Config) applyEnvConfig() {
	if val := os.Getenv("KEYFLOW_BIND_ADDRESS"); val != "" {
		c.BindAddress = val
	}
	if val := os.Getenv("KEYFLOW_PORT"); val != "" {
		c.Port = val
	}
	if val := os.Getenv("KEYFLOW_DATABASE_URL"); val != "" {
		c.DatabaseURL = val
	} else if val := os.Getenv("DATABASE_URL"); val != "" && c.DatabaseURL == "" {
		c.DatabaseURL = val
	}
	if val := os.Getenv("KEYFLOW_ALLOWED_FLOWS"); val != "" {
		c.AllowedFlows = splitAndTrim(val)
	}
	if val := os.Getenv("KEYFLOW_LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
	if val := os.Getenv("KEYFLOW_REQUEST_TIMEOUT_SECONDS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.RequestTimeoutSeconds = i
		}
	}
}

// ConfigFilePath returns the path of the config file this Config was read
// from, whether or not the file existed.
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// FlowAllowed reports whether name is on the flow allow-list.
func (c *Config) FlowAllowed(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, f := range c.AllowedFlows {
		if f == name {
			return true
		}
	}
	return false
}

// Flows returns a copy of the current allow-list.
func (c *Config) Flows() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.AllowedFlows))
	copy(out, c.AllowedFlows)
	return out
}

// SetFlows replaces the allow-list. Used by the config watcher.
func (c *Config) SetFlows(flows []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.AllowedFlows = flows
}

// RequestTimeout returns the outbound HTTP timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
