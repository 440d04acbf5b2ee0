package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP API server.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeExecutor runs the background job executor.
	ServiceModeExecutor ServiceMode = "executor"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{ServiceModeHTTP, ServiceModeExecutor}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	for _, part := range strings.Split(servicesStr, ",") {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeHTTP, ServiceModeExecutor:
			services[mode] = true
		default:
			return nil, fmt.Errorf("invalid service name: %q (valid options: http, executor)", serviceName)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// ExecutorConfig contains job executor configuration.
type ExecutorConfig struct {
	// PollInterval is how often the executor polls for claimable jobs
	// when idle.
	PollInterval time.Duration `env:"EXECUTOR_POLL_INTERVAL" envDefault:"2s"`

	// Concurrency is the maximum number of jobs executing at once.
	Concurrency int `env:"EXECUTOR_CONCURRENCY" envDefault:"2"`

	// MailPoolSize is the maximum number of concurrent mail server sessions.
	MailPoolSize int `env:"EXECUTOR_MAIL_POOL_SIZE" envDefault:"2"`

	// MailAcquireTimeout bounds how long a job waits for a mail session.
	MailAcquireTimeout time.Duration `env:"EXECUTOR_MAIL_ACQUIRE_TIMEOUT" envDefault:"30s"`
}

// Sanitize applies guardrails to executor configuration values.
func (e *ExecutorConfig) Sanitize() {
	if e.PollInterval < 100*time.Millisecond {
		e.PollInterval = 100 * time.Millisecond
	}
	if e.Concurrency < 1 {
		e.Concurrency = 1
	}
	if e.MailPoolSize < 1 {
		e.MailPoolSize = 1
	}
	if e.MailAcquireTimeout < time.Second {
		e.MailAcquireTimeout = time.Second
	}
}
