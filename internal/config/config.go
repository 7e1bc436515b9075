// Package config loads jobboard settings from an optional TOML file and
// JOBBOARD_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"jobboard/internal/catalog"
	"jobboard/internal/errors"
	"jobboard/internal/gateway"
	"jobboard/internal/ledger"
	"jobboard/internal/localstore"
	"jobboard/internal/logger"
	"jobboard/internal/submission"
)

const (
	DefaultPath     = "config/jobboard.toml"
	EnvPrefix       = "JOBBOARD"
	DefaultDataDir  = "data"
	DefaultRedisURL = "redis://localhost:6379/0"
	DefaultLogLevel = "warn"
	defaultSQLiteDB = "jobboard.db"
	defaultTimeoutS = 10
	defaultRPM      = 60
	defaultDelayMS  = 2000
)

type Config struct {
	Source     SourceConfig     `mapstructure:"source" toml:"source" json:"source"`
	Fallback   FallbackConfig   `mapstructure:"fallback" toml:"fallback" json:"fallback"`
	Storage    StorageConfig    `mapstructure:"storage" toml:"storage" json:"storage"`
	Submission SubmissionConfig `mapstructure:"submission" toml:"submission" json:"submission"`
	Log        LogConfig        `mapstructure:"log" toml:"log" json:"log"`
}

type SourceConfig struct {
	BaseURL           string `mapstructure:"base_url" toml:"base_url" json:"base_url"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" toml:"timeout_seconds" json:"timeout_seconds"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute" toml:"requests_per_minute" json:"requests_per_minute"`
}

type FallbackConfig struct {
	// Policy is "fallback" (serve built-in postings) or "surface" (report
	// the failure).
	Policy string `mapstructure:"policy" toml:"policy" json:"policy"`
}

type StorageConfig struct {
	Backend    string `mapstructure:"backend" toml:"backend" json:"backend"`
	Dir        string `mapstructure:"dir" toml:"dir" json:"dir"`
	Key        string `mapstructure:"key" toml:"key" json:"key"`
	RedisURL   string `mapstructure:"redis_url" toml:"redis_url" json:"redis_url"`
	SQLitePath string `mapstructure:"sqlite_path" toml:"sqlite_path" json:"sqlite_path"`
}

type SubmissionConfig struct {
	// Endpoint receives applications as JSON; empty simulates acceptance.
	Endpoint         string `mapstructure:"endpoint" toml:"endpoint" json:"endpoint"`
	SimulatedDelayMS int    `mapstructure:"simulated_delay_ms" toml:"simulated_delay_ms" json:"simulated_delay_ms"`
}

type LogConfig struct {
	JSON  bool   `mapstructure:"json" toml:"json" json:"json"`
	Level string `mapstructure:"level" toml:"level" json:"level"`
	File  string `mapstructure:"file" toml:"file" json:"file"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("source.base_url", gateway.DefaultBaseURL)
	v.SetDefault("source.timeout_seconds", defaultTimeoutS)
	v.SetDefault("source.requests_per_minute", defaultRPM)

	v.SetDefault("fallback.policy", string(catalog.PolicyFallback))

	v.SetDefault("storage.backend", localstore.BackendFile)
	v.SetDefault("storage.dir", DefaultDataDir)
	v.SetDefault("storage.key", ledger.DefaultKey)
	v.SetDefault("storage.redis_url", DefaultRedisURL)
	v.SetDefault("storage.sqlite_path", filepath.Join(DefaultDataDir, defaultSQLiteDB))

	v.SetDefault("submission.endpoint", "")
	v.SetDefault("submission.simulated_delay_ms", defaultDelayMS)

	v.SetDefault("log.json", false)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.file", "")
}

// Default returns the configuration used when no file or env is present.
func Default() Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

// Load reads path (DefaultPath when empty) and applies env overrides. A
// missing file at the default path is not an error; a missing explicit path
// is.
func Load(path string) (Config, []string, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultPath
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		if explicit || !isNotExist(err) {
			return Config{}, nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, nil, errors.Wrapf(err, "decode config %s", path)
	}
	norm, warnings := Normalize(cfg)
	return norm, warnings, nil
}

// Normalize replaces invalid values with defaults and reports each
// replacement.
func Normalize(raw Config) (Config, []string) {
	def := Default()
	norm := raw
	var warnings []string
	warn := func(field string, got any) {
		warnings = append(warnings, fmt.Sprintf("invalid %s %#v, using default", field, got))
	}

	norm.Source.BaseURL = strings.TrimRight(strings.TrimSpace(norm.Source.BaseURL), "/")
	if norm.Source.BaseURL == "" {
		norm.Source.BaseURL = def.Source.BaseURL
	}
	if norm.Source.TimeoutSeconds <= 0 {
		if raw.Source.TimeoutSeconds != 0 {
			warn("source.timeout_seconds", raw.Source.TimeoutSeconds)
		}
		norm.Source.TimeoutSeconds = def.Source.TimeoutSeconds
	}
	if norm.Source.RequestsPerMinute < 0 {
		warn("source.requests_per_minute", raw.Source.RequestsPerMinute)
		norm.Source.RequestsPerMinute = 0
	}

	if p, err := catalog.ParsePolicy(norm.Fallback.Policy); err != nil {
		warn("fallback.policy", raw.Fallback.Policy)
		norm.Fallback.Policy = def.Fallback.Policy
	} else {
		norm.Fallback.Policy = string(p)
	}

	norm.Storage.Backend = strings.ToLower(strings.TrimSpace(norm.Storage.Backend))
	if !isKnownBackend(norm.Storage.Backend) {
		if norm.Storage.Backend != "" {
			warn("storage.backend", raw.Storage.Backend)
		}
		norm.Storage.Backend = def.Storage.Backend
	}
	norm.Storage.Dir = orDefault(norm.Storage.Dir, def.Storage.Dir)
	norm.Storage.Key = orDefault(norm.Storage.Key, def.Storage.Key)
	norm.Storage.RedisURL = orDefault(norm.Storage.RedisURL, def.Storage.RedisURL)
	norm.Storage.SQLitePath = orDefault(norm.Storage.SQLitePath, def.Storage.SQLitePath)

	norm.Submission.Endpoint = strings.TrimSpace(norm.Submission.Endpoint)
	if norm.Submission.SimulatedDelayMS < 0 {
		warn("submission.simulated_delay_ms", raw.Submission.SimulatedDelayMS)
		norm.Submission.SimulatedDelayMS = def.Submission.SimulatedDelayMS
	}

	norm.Log.File = strings.TrimSpace(norm.Log.File)
	if _, err := logger.ParseLevel(norm.Log.Level); err != nil {
		warn("log.level", raw.Log.Level)
		norm.Log.Level = def.Log.Level
	}
	norm.Log.Level = strings.ToLower(strings.TrimSpace(norm.Log.Level))
	if norm.Log.Level == "" {
		norm.Log.Level = def.Log.Level
	}

	return norm, warnings
}

func (c Config) SourceTimeout() time.Duration {
	return time.Duration(c.Source.TimeoutSeconds) * time.Second
}

func (c Config) SimulatedDelay() time.Duration {
	if c.Submission.SimulatedDelayMS < 0 {
		return submission.DefaultSimulatedDelay
	}
	return time.Duration(c.Submission.SimulatedDelayMS) * time.Millisecond
}

func (c Config) StoreOptions() localstore.Options {
	return localstore.Options{
		Backend:    c.Storage.Backend,
		Dir:        c.Storage.Dir,
		RedisURL:   c.Storage.RedisURL,
		SQLitePath: c.Storage.SQLitePath,
	}
}

func (c Config) LoggerOptions() logger.Options {
	return logger.Options{JSON: c.Log.JSON, Level: c.Log.Level, File: c.Log.File}
}

// Encode renders c as TOML.
func Encode(c Config) ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "encode config")
	}
	return data, nil
}

// WriteDefault writes the default configuration to path unless a file is
// already there and force is false. It reports whether a file was written.
func WriteDefault(path string, force bool) (bool, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err == nil && !force {
		return false, nil
	}
	data, err := Encode(Default())
	if err != nil {
		return false, err
	}
	if err := localstore.WriteBytes(path, data); err != nil {
		return false, errors.Wrapf(err, "write config %s", path)
	}
	return true, nil
}

func isKnownBackend(b string) bool {
	for _, known := range localstore.Backends {
		if b == known {
			return true
		}
	}
	return false
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || os.IsNotExist(err) || errors.Is(err, os.ErrNotExist)
}

func orDefault(v, def string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return def
}
