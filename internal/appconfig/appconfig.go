// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultLogsDir is where the safeguard harness writes its JSONL logs.
	defaultLogsDir = "logs"
	// defaultCacheTTL bounds how long merged results are served from cache.
	defaultCacheTTL = 60 * time.Second
	// defaultAddr is the dashboard listen address.
	defaultHost = "127.0.0.1"
	defaultPort = 8090
)

// Config represents the top-level application configuration.
type Config struct {
	LogsDir          string `json:"logsDir,omitempty"`
	StrictValidation bool   `json:"strictValidation"`
	ValidateRecords  bool   `json:"validateRecords"`
	CacheTTLSeconds  int    `json:"cacheTTL,omitempty" mapstructure:"cacheTTL"`
	Host             string `json:"host,omitempty"`
	Port             int    `json:"port,omitempty"`
	SessionSecret    string `json:"sessionSecret,omitempty"`
	ConsentCSV       string `json:"consentCSV,omitempty"`
	PolicyTable      string `json:"policyTable,omitempty"`
	LogFile          string `json:"logFile,omitempty"`
	Debug            bool   `json:"debug"`
	ConfigPath       string `json:"-"`
}

// LogsDirPath returns the logs directory, applying the default if not set.
func (c Config) LogsDirPath() string {
	if dir := strings.TrimSpace(c.LogsDir); dir != "" {
		return dir
	}
	return defaultLogsDir
}

// CacheTTL returns the bounded lifetime of cached merged results.
func (c Config) CacheTTL() time.Duration {
	if c.CacheTTLSeconds <= 0 {
		return defaultCacheTTL
	}
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Addr returns the host:port the dashboard server listens on.
func (c Config) Addr() string {
	host := strings.TrimSpace(c.Host)
	if host == "" {
		host = defaultHost
	}
	port := c.Port
	if port <= 0 {
		port = defaultPort
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "vigil.log"
}

// ConsentCSVPath returns the consent record file, applying a default if not set.
func (c Config) ConsentCSVPath() string {
	if path := strings.TrimSpace(c.ConsentCSV); path != "" {
		return path
	}
	return "data/consent.csv"
}

// Load reads the application configuration from the specified path. A
// missing file is not an error: defaults apply.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{ConfigPath: path}, nil
		}
		return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
	}
	defer file.Close()

	var config Config
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return Config{}, fmt.Errorf("could not parse config file %q: %w", path, err)
	}
	config.ConfigPath = path
	return config, nil
}
