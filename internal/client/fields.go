package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/fivetwenty-io/awhere-client/internal/constants"
	"github.com/fivetwenty-io/awhere-client/pkg/awhere"
)

// FieldsClient implements awhere.FieldsClient.
type FieldsClient struct {
	api apiRequester
}

// NewFieldsClient creates a new fields client.
func NewFieldsClient(api apiRequester) *FieldsClient {
	return &FieldsClient{api: api}
}

// List implements awhere.FieldsClient.List.
func (c *FieldsClient) List(ctx context.Context, params awhere.Params) (*awhere.FieldList, error) {
	var list awhere.FieldList

	err := doJSON(ctx, c.api, "GET", constants.APIPathFields, params, &list)
	if err != nil {
		return nil, fmt.Errorf("listing fields: %w", err)
	}

	return &list, nil
}

// Get implements awhere.FieldsClient.Get.
func (c *FieldsClient) Get(ctx context.Context, id string) (*awhere.Field, error) {
	if id == "" {
		return nil, constants.ErrFieldIDRequired
	}

	var field awhere.Field

	err := doJSON(ctx, c.api, "GET", fieldPath(id), nil, &field)
	if err != nil {
		return nil, fmt.Errorf("getting field: %w", err)
	}

	return &field, nil
}

// Create implements awhere.FieldsClient.Create. Missing values get defaults:
// a generated id, the id as farm id, "Untitled field" as name, acres from
// hectares and the center point from Latitude/Longitude.
func (c *FieldsClient) Create(ctx context.Context, request *awhere.FieldCreateRequest) (*awhere.Field, error) {
	if request == nil {
		request = &awhere.FieldCreateRequest{}
	}

	err := validate.Struct(request)
	if err != nil {
		return nil, fmt.Errorf("validating field: %w", err)
	}

	body := *request

	if body.ID == "" {
		body.ID = constants.GeneratedFieldIDPrefix + uuid.NewString()
	}

	if body.FarmID == "" {
		body.FarmID = body.ID
	}

	if body.Name == "" {
		body.Name = constants.DefaultFieldName
	}

	if body.Acres == 0 && body.Hectares > 0 {
		body.Acres = body.Hectares * constants.AcresInHectare
	}

	if body.CenterPoint == nil {
		body.CenterPoint = &awhere.CenterPoint{Latitude: body.Latitude, Longitude: body.Longitude}
	}

	params, err := toParams(&body)
	if err != nil {
		return nil, err
	}

	var field awhere.Field

	err = doJSON(ctx, c.api, "POST", constants.APIPathFields, params, &field)
	if err != nil {
		return nil, fmt.Errorf("creating field: %w", err)
	}

	return &field, nil
}

// Update implements awhere.FieldsClient.Update.
func (c *FieldsClient) Update(ctx context.Context, id string, request *awhere.FieldUpdateRequest) (*awhere.Field, error) {
	if id == "" {
		return nil, constants.ErrFieldIDRequired
	}

	params, err := toParams(request)
	if err != nil {
		return nil, err
	}

	var field awhere.Field

	err = doJSON(ctx, c.api, "PATCH", fieldPath(id), params, &field)
	if err != nil {
		return nil, fmt.Errorf("updating field: %w", err)
	}

	return &field, nil
}

// Delete implements awhere.FieldsClient.Delete.
func (c *FieldsClient) Delete(ctx context.Context, id string) error {
	if id == "" {
		return constants.ErrFieldIDRequired
	}

	err := doJSON(ctx, c.api, "DELETE", fieldPath(id), awhere.Params{}, nil)
	if err != nil {
		return fmt.Errorf("deleting field: %w", err)
	}

	return nil
}

func fieldPath(id string) string {
	return constants.APIPathFields + "/" + url.PathEscape(id)
}
