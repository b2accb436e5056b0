package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/fivetwenty-io/awhere-client/internal/constants"
	"github.com/fivetwenty-io/awhere-client/pkg/awhere"
)

// CropsClient implements awhere.CropsClient. The crop listing rarely
// changes, so the first successful listing is kept for the client's life.
type CropsClient struct {
	api apiRequester

	mutex  sync.Mutex
	cached *awhere.CropList
}

// NewCropsClient creates a new crops client.
func NewCropsClient(api apiRequester) *CropsClient {
	return &CropsClient{api: api}
}

// List implements awhere.CropsClient.List.
func (c *CropsClient) List(ctx context.Context, query *awhere.CropQuery) (*awhere.CropList, error) {
	if query == nil {
		query = &awhere.CropQuery{}
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.cached == nil {
		var list awhere.CropList

		err := doJSON(ctx, c.api, "GET", constants.APIPathCrops, withLimit(query.Params, query.Limit), &list)
		if err != nil {
			return nil, fmt.Errorf("listing crops: %w", err)
		}

		c.cached = &list
	}

	result := &awhere.CropList{Links: c.cached.Links}

	for _, crop := range c.cached.Crops {
		if query.DefaultsOnly && !crop.IsDefaultForCrop {
			continue
		}

		result.Crops = append(result.Crops, crop)
	}

	return result, nil
}

// Models implements awhere.CropsClient.Models.
func (c *CropsClient) Models(ctx context.Context, params awhere.Params) (*awhere.ModelList, error) {
	var list awhere.ModelList

	err := doJSON(ctx, c.api, "GET", constants.APIPathModels, withLimit(params, 0), &list)
	if err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}

	return &list, nil
}
