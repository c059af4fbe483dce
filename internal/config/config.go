package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPort        = "5001"
	DefaultTransport   = "servicebus"
	DefaultSendTimeout = 10 * time.Second
)

// Connection string variables, first non-empty wins.
var ConnectionStringKeys = []string{
	"QUEUE_CONNECTION_STRING",
	"SERVICE_BUS_CONNECTION_STRING",
}

type ErrorDetail string

const (
	ErrorDetailStack   ErrorDetail = "stack"
	ErrorDetailMessage ErrorDetail = "message"
	ErrorDetailNone    ErrorDetail = "none"
)

var ErrorMissingConnectionString = errors.New("server configuration error: queue connection string not set")

type Config struct {
	Env      string
	Port     string
	LogLevel string

	// Transport selects the queue implementation, see queue/factory.
	Transport        string
	ConnectionString string
	SendTimeout      time.Duration

	RequestValidation       bool
	ErrorDetail             ErrorDetail
	ValidateConfigOnStartup bool
	MetricsEnabled          bool
}

// Load reads the process environment. Call godotenv before it if a .env file
// should be honoured.
func Load() (*Config, error) {
	env := os.Getenv("ENV")

	defaultDetail := ErrorDetailStack
	if env == "production" {
		defaultDetail = ErrorDetailMessage
	}

	sendTimeout, err := getEnvDuration("QUEUE_SEND_TIMEOUT", DefaultSendTimeout)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:                     env,
		Port:                    getEnv("PORT", DefaultPort),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		Transport:               strings.ToLower(getEnv("QUEUE_TRANSPORT", DefaultTransport)),
		ConnectionString:        EnvProvider{}.ConnectionString(),
		SendTimeout:             sendTimeout,
		RequestValidation:       getEnvBool("REQUEST_VALIDATION", true),
		ErrorDetail:             ErrorDetail(strings.ToLower(getEnv("ERROR_DETAIL", string(defaultDetail)))),
		ValidateConfigOnStartup: getEnvBool("VALIDATE_CONFIG_ON_STARTUP", false),
		MetricsEnabled:          getEnvBool("METRICS_ENABLED", true),
	}

	return cfg, cfg.Validate()
}

// Validate checks static settings. A missing connection string is only an
// error when the service is asked to fail fast on startup, otherwise it is
// reported per request.
func (c *Config) Validate() error {
	var errs []error

	if port, err := strconv.Atoi(c.Port); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %q", c.Port))
	}

	if c.Transport == "" {
		errs = append(errs, errors.New("queue transport is required"))
	}

	if c.SendTimeout < 0 {
		errs = append(errs, errors.New("send timeout cannot be negative"))
	}

	switch c.ErrorDetail {
	case ErrorDetailStack, ErrorDetailMessage, ErrorDetailNone:
	default:
		errs = append(errs, fmt.Errorf("invalid error detail %q", c.ErrorDetail))
	}

	if c.ValidateConfigOnStartup && c.ConnectionString == "" {
		errs = append(errs, ErrorMissingConnectionString)
	}

	return errors.Join(errs...)
}

// Provider returns the connection string source handed to the gateway.
func (c *Config) Provider() Provider {
	if c.ValidateConfigOnStartup {
		return StaticProvider(c.ConnectionString)
	}
	return EnvProvider{}
}

func (c Config) String() string {
	copy := c
	if copy.ConnectionString != "" {
		copy.ConnectionString = RedactConnectionString(copy.ConnectionString)
	}
	type configAlias Config
	return fmt.Sprintf("%+v", configAlias(copy))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
