// Package config provides configuration management for the sevsync toolchain.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	SevDesk SevDeskConfig
	State   StateConfig
	Debug   bool
}

// SevDeskConfig represents sevDesk API configuration.
type SevDeskConfig struct {
	APIURL         string
	Token          string
	TimeoutSeconds int64
	// RateLimit throttles outgoing API requests per second. Zero disables it.
	RateLimit float64
}

// Timeout returns the request timeout as a duration.
func (c SevDeskConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StateConfig represents local durable state locations. Empty fields are
// resolved to defaults under the state root by pathutil.
type StateConfig struct {
	Root           string
	LedgerPath     string
	RatesDBPath    string
	AccountMapping string
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	// Load .env file
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	timeoutSeconds, err := parseInt64Env("SEVDESK_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, fmt.Errorf("invalid SEVDESK_TIMEOUT_SECONDS: %w", err)
	}
	rateLimit, err := parseFloatEnv("SEVDESK_RATE_LIMIT", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid SEVDESK_RATE_LIMIT: %w", err)
	}

	config := &Config{
		SevDesk: SevDeskConfig{
			APIURL:         getEnvOrDefault("SEVDESK_API_URL", "http://localhost:8080/api/v1"),
			Token:          os.Getenv("SEVDESK_API_TOKEN"),
			TimeoutSeconds: timeoutSeconds,
			RateLimit:      rateLimit,
		},
		State: StateConfig{
			Root:           os.Getenv("SEVSYNC_STATE_ROOT"),
			LedgerPath:     os.Getenv("SEVSYNC_LEDGER_PATH"),
			RatesDBPath:    os.Getenv("SEVSYNC_RATES_DB"),
			AccountMapping: os.Getenv("SEVSYNC_ACCOUNT_MAPPING"),
		},
		Debug: os.Getenv("DEBUG") == "true",
	}

	return config, nil
}

// Validate validates the configuration.
// It checks if all required fields are set.
func (c *Config) Validate(required ...[]string) error {
	var missing []string

	for _, path := range required {
		if len(path) == 0 {
			continue
		}

		var value string
		switch path[0] {
		case "sevdesk":
			if len(path) < 2 {
				continue
			}
			switch path[1] {
			case "apiUrl":
				value = c.SevDesk.APIURL
			case "token":
				value = c.SevDesk.Token
			case "timeoutSeconds":
				if c.SevDesk.TimeoutSeconds == 0 {
					value = ""
				} else {
					value = "set"
				}
			}
		case "state":
			if len(path) < 2 {
				continue
			}
			switch path[1] {
			case "root":
				value = c.State.Root
			case "ledgerPath":
				value = c.State.LedgerPath
			case "ratesDb":
				value = c.State.RatesDBPath
			case "accountMapping":
				value = c.State.AccountMapping
			}
		}

		if value == "" {
			missing = append(missing, joinPath(path))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}

	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseInt64Env parses an int64 from an environment variable.
// Returns defaultValue if the environment variable is not set.
func parseInt64Env(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %s", key, value)
	}

	return parsed, nil
}

// parseFloatEnv parses a float64 from an environment variable.
// Returns defaultValue if the environment variable is not set.
func parseFloatEnv(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric value for %s: %s", key, value)
	}

	return parsed, nil
}

// joinPath joins a path slice into a dot-separated string.
func joinPath(path []string) string {
	result := ""
	for i, p := range path {
		if i > 0 {
			result += "."
		}
		result += p
	}
	return result
}
