//go:build integration

package integration

import (
	"os"
	"strconv"
	"time"

	"github.com/fivetwenty-io/awhere-client/pkg/awhere"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	Endpoint  string
	Key       string
	Secret    string
	Latitude  float64
	Longitude float64
	Timeout   time.Duration
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		Endpoint:  os.Getenv("AWHERE_API"),
		Key:       os.Getenv("AWHERE_KEY"),
		Secret:    os.Getenv("AWHERE_SECRET"),
		Latitude:  envFloat("AWHERE_TEST_LAT", 39.7392),
		Longitude: envFloat("AWHERE_TEST_LNG", -104.9903),
		Timeout:   2 * time.Minute,
	}
}

// Configured reports whether credentials are present.
func (c *TestConfig) Configured() bool {
	return c.Key != "" && c.Secret != ""
}

// ClientConfig builds the client configuration.
func (c *TestConfig) ClientConfig() *awhere.Config {
	return &awhere.Config{
		APIEndpoint: c.Endpoint,
		Key:         c.Key,
		Secret:      c.Secret,
		RetryMax:    2,
	}
}

func envFloat(name string, fallback float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(name), 64)
	if err != nil {
		return fallback
	}

	return value
}
