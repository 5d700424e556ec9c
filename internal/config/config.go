package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/logging"
)

const (
	envProjectID         = "GCP_PROJECT_ID"
	envPort              = "PORT"
	envCloudLogging      = "GCP_LOGGING"
	envLoggingProjectID  = "LOGGING_PROJECT_ID"
	envLogLevel          = "LOG_LEVEL"
	envServiceName       = "K_SERVICE"
	envRevision          = "K_REVISION"
	envSubscription      = "PUBSUB_SUBSCRIPTION"
	envBillingEndpoint   = "BILLING_API_ENDPOINT"
	envBillingTimeout    = "BILLING_TIMEOUT"
	envStrictPermissions = "KILLSWITCH_STRICT_PERMISSIONS"
	envSentryDSN         = "SENTRY_DSN"
	defaultPort          = "8080"
	defaultServiceName   = "killswitch"
	defaultRevision      = "local"
	defaultLogLevel      = "DEBUG"
)

var ErrMissingProjectID = errors.New(envProjectID + " environment variable is not set")

// Config is read once at startup and never mutated.
type Config struct {
	ProjectID string
	Port      string

	CloudLogging     bool
	LoggingProjectID string
	LogLevel         logging.Severity
	ServiceName      string
	Revision         string

	// Subscription enables pull delivery in addition to the push endpoint.
	Subscription string

	BillingEndpoint string
	BillingTimeout  time.Duration

	// StrictPermissions reports a permission denied billing update as a
	// failure instead of "Billing disabled".
	StrictPermissions bool

	SentryDSN string
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// FromEnv loads the configuration from the process environment.
func FromEnv() (Config, error) {
	return Load(os.LookupEnv)
}

// Load builds a Config from lookup. A missing project ID is an error.
func Load(lookup LookupFunc) (Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}

		return fallback
	}

	cfg := Config{
		ProjectID:       get(envProjectID, ""),
		Port:            get(envPort, defaultPort),
		ServiceName:     get(envServiceName, defaultServiceName),
		Revision:        get(envRevision, defaultRevision),
		Subscription:    get(envSubscription, ""),
		BillingEndpoint: get(envBillingEndpoint, ""),
		SentryDSN:       get(envSentryDSN, ""),
		LogLevel:        logging.ParseSeverity(get(envLogLevel, defaultLogLevel)),
	}

	if cfg.ProjectID == "" {
		return Config{}, ErrMissingProjectID
	}

	cfg.LoggingProjectID = get(envLoggingProjectID, cfg.ProjectID)

	var err error

	if cfg.CloudLogging, err = strconv.ParseBool(get(envCloudLogging, "false")); err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", envCloudLogging, err)
	}

	if cfg.StrictPermissions, err = strconv.ParseBool(get(envStrictPermissions, "false")); err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", envStrictPermissions, err)
	}

	if cfg.BillingTimeout, err = time.ParseDuration(get(envBillingTimeout, "0s")); err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", envBillingTimeout, err)
	}

	if cfg.BillingTimeout < 0 {
		return Config{}, fmt.Errorf("invalid %s: must not be negative", envBillingTimeout)
	}

	return cfg, nil
}

// Addr is the HTTP listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}
