package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// HostnamePlaceholder in statsd_namespace is replaced by the local host name.
const HostnamePlaceholder = "(HOSTNAME)"

const (
	configName   = "haproxy-statsd"
	systemConfig = "/etc/haproxy-statsd"
)

type Config struct {
	HAProxyURL      string  `mapstructure:"haproxy_url"`
	HAProxyUser     string  `mapstructure:"haproxy_user"`
	HAProxyPassword string  `mapstructure:"haproxy_password"`
	StatsdHost      string  `mapstructure:"statsd_host"`
	StatsdPort      int     `mapstructure:"statsd_port"`
	StatsdNamespace string  `mapstructure:"statsd_namespace"`
	Interval        float64 `mapstructure:"interval"`
	MaxPacketSize   int     `mapstructure:"max_packet_size"`
	KeepGoing       bool    `mapstructure:"keep_going"`
	StatusAddr      string  `mapstructure:"status_addr"`
	LogLevel        string  `mapstructure:"log_level"`
	Environment     string  `mapstructure:"environment"`
}

var defaults = map[string]any{
	"haproxy_url":      "http://127.0.0.1:1936/;csv",
	"haproxy_user":     "",
	"haproxy_password": "",
	"statsd_host":      "127.0.0.1",
	"statsd_port":      8125,
	"statsd_namespace": "haproxy." + HostnamePlaceholder,
	"interval":         10.0,
	"max_packet_size":  1386,
	"keep_going":       false,
	"status_addr":      "",
	"log_level":        LogLevelInfo,
	"environment":      EnvDev,
}

// envVars maps config keys to the environment variables that override the
// built-in defaults. The config file still wins over both.
var envVars = map[string]string{
	"haproxy_url":      "HAPROXY_HOST",
	"haproxy_user":     "HAPROXY_USER",
	"haproxy_password": "HAPROXY_PASS",
	"statsd_host":      "STATSD_HOST",
	"statsd_port":      "STATSD_PORT",
	"statsd_namespace": "STATSD_NAMESPACE",
	"interval":         "INTERVAL",
	"max_packet_size":  "MAX_PACKET_SIZE",
	"keep_going":       "KEEP_GOING",
	"status_addr":      "STATUS_ADDR",
	"log_level":        "LOG_LEVEL",
	"environment":      "ENVIRONMENT",
}

// Load resolves the configuration from defaults, then environment variables,
// then the config file. With an empty path haproxy-statsd.{yaml,json,toml}
// is searched in the working directory and /etc/haproxy-statsd, and a
// missing file is not an error. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, env := range envVars {
		if value, ok := os.LookupEnv(env); ok {
			v.SetDefault(key, value)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		v.AddConfigPath(systemConfig)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, fmt.Errorf("read config: %w", err)
		}
		slog.Debug("config file not found, using defaults and environment variables")
	} else {
		slog.Debug("loaded config file", slog.String("file", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

// StatsdAddr is the host:port datagrams are sent to.
func (c *Config) StatsdAddr() string {
	return net.JoinHostPort(c.StatsdHost, strconv.Itoa(c.StatsdPort))
}

// IntervalDuration converts the interval in (fractional) seconds.
func (c *Config) IntervalDuration() time.Duration {
	return time.Duration(c.Interval * float64(time.Second))
}

// Namespace returns statsd_namespace with the host name placeholder resolved.
func (c *Config) Namespace() (string, error) {
	if !strings.Contains(c.StatsdNamespace, HostnamePlaceholder) {
		return c.StatsdNamespace, nil
	}

	hostname, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("resolve hostname: %w", err)
	}

	return ResolveNamespace(c.StatsdNamespace, hostname), nil
}

// ResolveNamespace replaces every host name placeholder in namespace.
func ResolveNamespace(namespace, hostname string) string {
	return strings.ReplaceAll(namespace, HostnamePlaceholder, hostname)
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.HAProxyURL,
			validation.Required,
			validation.By(validateServerURL),
		),
		validation.Field(&c.StatsdHost,
			validation.Required,
			is.Host,
		),
		validation.Field(&c.StatsdPort,
			validation.Required,
			validation.Min(1),
			validation.Max(65535),
		),
		validation.Field(&c.StatsdNamespace,
			validation.Required,
		),
		validation.Field(&c.Interval,
			validation.Required,
			validation.Min(0.0).Exclusive(),
		),
		validation.Field(&c.MaxPacketSize,
			validation.Required,
			validation.Min(1),
		),
		validation.Field(&c.StatusAddr,
			validation.By(validateHostPort),
		),
		validation.Field(&c.LogLevel,
			validation.Required,
			validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
		),
		validation.Field(&c.Environment,
			validation.Required,
			validation.In(EnvDev, EnvStaging, EnvProd),
		),
	)
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if addr == "" {
		return nil
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateServerURL(value interface{}) error {
	serverURL, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	parsedURL, err := url.Parse(serverURL)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}
