// Package awhereclient provides the main entry point for creating aWhere API clients
package awhereclient

import (
	"fmt"
	"strings"

	"github.com/fivetwenty-io/awhere-client/internal/client"
	"github.com/fivetwenty-io/awhere-client/pkg/awhere"
)

// New creates a new aWhere API client. An endpoint without a scheme is
// treated as HTTPS.
func New(config *awhere.Config) (awhere.Client, error) {
	if config == nil {
		return nil, awhere.ErrConfigRequired
	}

	normalized := *config
	normalized.APIEndpoint = normalizeEndpoint(config.APIEndpoint)

	awhereClient, err := client.New(&normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return awhereClient, nil
}

// normalizeEndpoint trims trailing slashes and adds https:// when no scheme
// is given.
func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSuffix(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return ""
	}

	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	return endpoint
}

// NewWithCredentials creates a client for the public API using an API key
// and secret.
func NewWithCredentials(key, secret string) (awhere.Client, error) {
	return New(&awhere.Config{
		Key:    key,
		Secret: secret,
	})
}

// NewWithEndpoint creates a client for a non-default endpoint, such as a
// staging deployment.
func NewWithEndpoint(endpoint, key, secret string) (awhere.Client, error) {
	return New(&awhere.Config{
		APIEndpoint: endpoint,
		Key:         key,
		Secret:      secret,
	})
}
