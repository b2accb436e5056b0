package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/awhere-client/internal/constants"
	"github.com/fivetwenty-io/awhere-client/pkg/awhere"
)

// PlantingsClient implements awhere.PlantingsClient.
type PlantingsClient struct {
	api apiRequester
}

// NewPlantingsClient creates a new plantings client.
func NewPlantingsClient(api apiRequester) *PlantingsClient {
	return &PlantingsClient{api: api}
}

// List implements awhere.PlantingsClient.List. The response shape depends
// on the query: a listing for a field or account, or a single planting when
// PlantingID or Current is set, so the raw body is returned.
func (c *PlantingsClient) List(ctx context.Context, query *awhere.PlantingQuery) (json.RawMessage, error) {
	if query == nil {
		query = &awhere.PlantingQuery{}
	}

	raw, err := c.api.APIRequest(ctx, &awhere.RequestOptions{Path: plantingsPath(query)}, query.Params)
	if err != nil {
		return nil, fmt.Errorf("listing plantings: %w", err)
	}

	return raw, nil
}

// Current implements awhere.PlantingsClient.Current.
func (c *PlantingsClient) Current(ctx context.Context, fieldID string) (*awhere.Planting, error) {
	if fieldID == "" {
		return nil, constants.ErrFieldIDRequired
	}

	var planting awhere.Planting

	err := doJSON(ctx, c.api, "GET", plantingsPath(&awhere.PlantingQuery{FieldID: fieldID, Current: true}), nil, &planting)
	if err != nil {
		return nil, fmt.Errorf("getting current planting: %w", err)
	}

	return &planting, nil
}

// Create implements awhere.PlantingsClient.Create.
func (c *PlantingsClient) Create(ctx context.Context, fieldID string, request *awhere.PlantingRequest) (*awhere.Planting, error) {
	if fieldID == "" {
		return nil, constants.ErrFieldIDRequired
	}

	params, err := toParams(request)
	if err != nil {
		return nil, err
	}

	var planting awhere.Planting

	err = doJSON(ctx, c.api, "POST", plantingsPath(&awhere.PlantingQuery{FieldID: fieldID}), params, &planting)
	if err != nil {
		return nil, fmt.Errorf("creating planting: %w", err)
	}

	return &planting, nil
}

// Update implements awhere.PlantingsClient.Update. The service does not
// update plantings reliably, so the planting is deleted and created again.
func (c *PlantingsClient) Update(ctx context.Context, fieldID, plantingID string, request *awhere.PlantingRequest) (*awhere.Planting, error) {
	err := c.Delete(ctx, fieldID, plantingID)
	if err != nil {
		return nil, fmt.Errorf("updating planting: %w", err)
	}

	return c.Create(ctx, fieldID, request)
}

// Delete implements awhere.PlantingsClient.Delete. An empty plantingID
// deletes the current planting.
func (c *PlantingsClient) Delete(ctx context.Context, fieldID, plantingID string) error {
	if fieldID == "" {
		return constants.ErrFieldIDRequired
	}

	if plantingID == "" {
		plantingID = constants.CurrentPlantingRef
	}

	path := plantingsPath(&awhere.PlantingQuery{FieldID: fieldID, PlantingID: plantingID})

	err := doJSON(ctx, c.api, "DELETE", path, awhere.Params{}, nil)
	if err != nil {
		return fmt.Errorf("deleting planting: %w", err)
	}

	return nil
}

// GetOrCreate implements awhere.PlantingsClient.GetOrCreate. A missing
// current planting (404 or an empty record) is created from request.
func (c *PlantingsClient) GetOrCreate(ctx context.Context, fieldID string, request *awhere.PlantingRequest) (*awhere.Planting, error) {
	planting, err := c.Current(ctx, fieldID)
	if err != nil && !awhere.IsNotFound(err) {
		return nil, err
	}

	if err == nil && planting.ID != 0 {
		return planting, nil
	}

	return c.Create(ctx, fieldID, request)
}

func plantingsPath(query *awhere.PlantingQuery) string {
	var sb strings.Builder

	sb.WriteString(constants.APIPathAgronomics)

	if query.FieldID != "" {
		sb.WriteString("/fields/" + url.PathEscape(query.FieldID))
	}

	sb.WriteString("/" + constants.APIPathPlantings)

	if query.PlantingID != "" {
		sb.WriteString("/" + url.PathEscape(query.PlantingID))
	}

	if query.Current {
		sb.WriteString("/" + constants.CurrentPlantingRef)
	}

	return sb.String()
}
