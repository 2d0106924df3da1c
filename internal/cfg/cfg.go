package cfg

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"minesite/internal/common"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	ModelPath      string
	StrictSchema   bool
	CacheSize      int
	ListenPort     int
	MetricsPort    int
	DataPath       string
	LogLevel       string
	PrettyLogs     bool
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	// AllowedOrigins are cross-origin pages allowed to open /ws. The
	// server's own origin is always allowed.
	AllowedOrigins []string
}

type ConfigFile struct {
	Model struct {
		Path         string `yaml:"path"`
		StrictSchema bool   `yaml:"strictSchema"`
		CacheSize    int    `yaml:"cacheSize"`
	} `yaml:"model"`

	Server struct {
		ListenPort     int      `yaml:"listenPort"`
		ReadTimeout    string   `yaml:"readTimeout"`
		WriteTimeout   string   `yaml:"writeTimeout"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"server"`

	System struct {
		DataPath    string `yaml:"dataPath"`
		MetricsPort int    `yaml:"metricsPort"`
		LogLevel    string `yaml:"logLevel"`
		PrettyLogs  bool   `yaml:"prettyLogs"`
	} `yaml:"system"`
}

// Load reads settings from CONFIG_FILE when set, else from the environment.
// A .env file in the working directory is loaded first; it never overrides
// variables that are already set.
func Load() (Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Settings{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	// Try to load from YAML file first
	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	// Fallback to environment variables
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Parse durations
	readTimeout, err := time.ParseDuration(config.Server.ReadTimeout)
	if err != nil {
		readTimeout = 10 * time.Second
	}

	writeTimeout, err := time.ParseDuration(config.Server.WriteTimeout)
	if err != nil {
		writeTimeout = 10 * time.Second
	}

	modelPath := config.Model.Path
	if modelPath == "" {
		modelPath = common.DefaultModelPath
	}
	logLevel := config.System.LogLevel
	if logLevel == "" {
		logLevel = common.DefaultLogLevel
	}

	settings := Settings{
		ModelPath:      getEnvOrDefault(common.EnvModelPath, modelPath),
		StrictSchema:   getBoolFromEnvOrConfig(common.EnvStrictSchema, config.Model.StrictSchema),
		CacheSize:      getIntFromEnvOrConfig(common.EnvCacheSize, config.Model.CacheSize, common.DefaultCacheSize),
		ListenPort:     getIntFromEnvOrConfig(common.EnvListenPort, config.Server.ListenPort, common.DefaultListenPort),
		MetricsPort:    getIntFromEnvOrConfig(common.EnvMetricsPort, config.System.MetricsPort, common.DefaultMetricsPort),
		DataPath:       getEnvOrDefault(common.EnvDataPath, config.System.DataPath),
		LogLevel:       getEnvOrDefault(common.EnvLogLevel, logLevel),
		PrettyLogs:     getBoolFromEnvOrConfig(common.EnvPrettyLogs, config.System.PrettyLogs),
		ReadTimeout:    getDurationOrDefault(common.EnvReadTimeout, readTimeout),
		WriteTimeout:   getDurationOrDefault(common.EnvWriteTimeout, writeTimeout),
		AllowedOrigins: getListFromEnvOrConfig(common.EnvAllowedOrigins, config.Server.AllowedOrigins),
	}

	// Validate configuration
	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		ModelPath:      getEnvOrDefault(common.EnvModelPath, common.DefaultModelPath),
		StrictSchema:   getBoolOrDefault(common.EnvStrictSchema, false),
		CacheSize:      getIntOrDefault(common.EnvCacheSize, common.DefaultCacheSize),
		ListenPort:     getIntOrDefault(common.EnvListenPort, common.DefaultListenPort),
		MetricsPort:    getIntOrDefault(common.EnvMetricsPort, common.DefaultMetricsPort),
		DataPath:       os.Getenv(common.EnvDataPath), // optional
		LogLevel:       getEnvOrDefault(common.EnvLogLevel, common.DefaultLogLevel),
		PrettyLogs:     getBoolOrDefault(common.EnvPrettyLogs, false),
		ReadTimeout:    getDurationOrDefault(common.EnvReadTimeout, 10*time.Second),
		WriteTimeout:   getDurationOrDefault(common.EnvWriteTimeout, 10*time.Second),
		AllowedOrigins: getListFromEnvOrConfig(common.EnvAllowedOrigins, nil),
	}

	// Validate configuration
	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

// Level returns the parsed log level; validation guarantees it parses.
func (s Settings) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func getBoolFromEnvOrConfig(key string, configValue bool) bool {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseBool(env); err == nil {
			return val
		}
	}
	return configValue
}

// getListFromEnvOrConfig splits a comma separated env value, falling back to
// the config file list.
func getListFromEnvOrConfig(key string, configValue []string) []string {
	env := os.Getenv(key)
	if env == "" {
		return configValue
	}
	var out []string
	for _, item := range strings.Split(env, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// validateSettings performs validation of configuration values
func validateSettings(settings *Settings) error {
	if settings.ModelPath == "" {
		return fmt.Errorf("model path cannot be empty")
	}

	// Validate ports
	if settings.ListenPort < common.MinPort || settings.ListenPort > common.MaxPort {
		return fmt.Errorf("listen port must be between %d and %d, got %d", common.MinPort, common.MaxPort, settings.ListenPort)
	}
	if settings.MetricsPort < common.MinPort || settings.MetricsPort > common.MaxPort {
		return fmt.Errorf("metrics port must be between %d and %d, got %d", common.MinPort, common.MaxPort, settings.MetricsPort)
	}
	if settings.ListenPort == settings.MetricsPort {
		return fmt.Errorf("listen port and metrics port must differ, both are %d", settings.ListenPort)
	}

	// Validate time durations
	if settings.ReadTimeout < time.Second || settings.ReadTimeout > 5*time.Minute {
		return fmt.Errorf("read timeout must be between 1s and 5m, got %v", settings.ReadTimeout)
	}
	if settings.WriteTimeout < time.Second || settings.WriteTimeout > 5*time.Minute {
		return fmt.Errorf("write timeout must be between 1s and 5m, got %v", settings.WriteTimeout)
	}

	if settings.CacheSize < 0 || settings.CacheSize > common.MaxCacheSize {
		return fmt.Errorf("cache size must be between 0 and %d, got %d", common.MaxCacheSize, settings.CacheSize)
	}

	if _, err := zerolog.ParseLevel(settings.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", settings.LogLevel, err)
	}

	for _, origin := range settings.AllowedOrigins {
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("allowed origin %q must be scheme://host[:port]", origin)
		}
	}

	return nil
}
