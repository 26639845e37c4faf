// Package config loads CLI settings from a YAML (or JSON) file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/flxbl-dev/kickass-cms-sub000/internal/logging"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/schema"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no file is given.
const DefaultPath = "cms.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CMS_"

// Config holds everything needed to reach the store and run the CLI.
type Config struct {
	BaseURL         string        `yaml:"baseUrl" json:"baseUrl"`
	Token           string        `yaml:"token" json:"token"`
	Timeout         time.Duration `yaml:"timeout" json:"timeout"`
	LogLevel        string        `yaml:"logLevel" json:"logLevel"`
	LogFormat       string        `yaml:"logFormat" json:"logFormat"`
	RedisAddr       string        `yaml:"redisAddr" json:"redisAddr"`
	RedisPassword   string        `yaml:"redisPassword" json:"redisPassword"`
	RedisDB         int           `yaml:"redisDb" json:"redisDb"`
	MetricsAddr     string        `yaml:"metricsAddr" json:"metricsAddr"`
	WorkflowCatalog string        `yaml:"workflowCatalog" json:"workflowCatalog"`
	// ExtraFields declares site-specific fields per entity, as type strings
	// such as "string?" or "enum(low|high)".
	ExtraFields map[string]map[string]string `yaml:"extraFields" json:"extraFields"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		BaseURL:   "http://localhost:8080",
		Timeout:   10 * time.Second,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads path over the defaults, applies CMS_* overrides from the
// environment and validates the result. A missing file is not an error.
// JSON is a subset of YAML, so .json files go through the same decoder.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment looked up through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	str("BASE_URL", &c.BaseURL)
	str("TOKEN", &c.Token)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("REDIS_ADDR", &c.RedisAddr)
	str("REDIS_PASSWORD", &c.RedisPassword)
	str("METRICS_ADDR", &c.MetricsAddr)
	str("WORKFLOW_CATALOG", &c.WorkflowCatalog)

	if v, ok := lookup(EnvPrefix + "TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err)
		}
		c.Timeout = d
	}
	if v, ok := lookup(EnvPrefix + "REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sREDIS_DB: %w", EnvPrefix, err)
		}
		c.RedisDB = n
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("baseUrl must be an absolute URL, got %q", c.BaseURL))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logFormat must be text or json, got %q", c.LogFormat))
	}
	if c.RedisDB < 0 {
		errs = append(errs, fmt.Errorf("redisDb must not be negative, got %d", c.RedisDB))
	}
	if _, err := c.Fields(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Fields parses ExtraFields into schemas keyed by entity name.
func (c Config) Fields() (map[string]schema.Schema, error) {
	out := make(map[string]schema.Schema, len(c.ExtraFields))
	var errs []error
	for entity, types := range c.ExtraFields {
		parsed, err := schema.ParseTypeMap(types)
		if err != nil {
			errs = append(errs, fmt.Errorf("extraFields.%s: %w", entity, err))
			continue
		}
		out[entity] = parsed
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}
