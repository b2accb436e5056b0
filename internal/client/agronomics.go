package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/awhere-client/internal/constants"
	"github.com/fivetwenty-io/awhere-client/pkg/awhere"
)

// AgronomicsClient implements awhere.AgronomicsClient.
type AgronomicsClient struct {
	api apiRequester
}

// NewAgronomicsClient creates a new agronomics client.
func NewAgronomicsClient(api apiRequester) *AgronomicsClient {
	return &AgronomicsClient{api: api}
}

// Values implements awhere.AgronomicsClient.Values.
func (c *AgronomicsClient) Values(ctx context.Context, fieldID string, params awhere.Params) (*awhere.AgronomicValues, error) {
	if fieldID == "" {
		return nil, constants.ErrFieldIDRequired
	}

	path := constants.APIPathAgronomics + "/fields/" + url.PathEscape(fieldID) + "/agronomicvalues"

	var values awhere.AgronomicValues

	err := doJSON(ctx, c.api, "GET", path, params, &values)
	if err != nil {
		return nil, fmt.Errorf("getting agronomic values: %w", err)
	}

	return &values, nil
}

// ModelResults implements awhere.AgronomicsClient.ModelResults.
func (c *AgronomicsClient) ModelResults(ctx context.Context, fieldID, modelID string, params awhere.Params) (*awhere.ModelResults, error) {
	if fieldID == "" {
		return nil, constants.ErrFieldIDRequired
	}

	if modelID == "" {
		return nil, constants.ErrModelIDRequired
	}

	path := constants.APIPathAgronomics + "/fields/" + url.PathEscape(fieldID) +
		"/models/" + url.PathEscape(modelID) + "/results"

	var results awhere.ModelResults

	err := doJSON(ctx, c.api, "GET", path, params, &results)
	if err != nil {
		return nil, fmt.Errorf("getting model results: %w", err)
	}

	return &results, nil
}
