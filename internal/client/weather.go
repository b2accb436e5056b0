package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/awhere-client/internal/constants"
	"github.com/fivetwenty-io/awhere-client/pkg/awhere"
)

// WeatherClient implements awhere.WeatherClient.
type WeatherClient struct {
	api      apiRequester
	resolver awhere.FieldResolver
}

// NewWeatherClient creates a new weather client. The *At methods resolve
// coordinates to fields through resolver.
func NewWeatherClient(api apiRequester, resolver awhere.FieldResolver) *WeatherClient {
	return &WeatherClient{api: api, resolver: resolver}
}

// CurrentConditions implements awhere.WeatherClient.CurrentConditions.
func (c *WeatherClient) CurrentConditions(ctx context.Context, fieldID string) (*awhere.CurrentConditions, error) {
	if fieldID == "" {
		return nil, constants.ErrFieldIDRequired
	}

	var conditions awhere.CurrentConditions

	err := doJSON(ctx, c.api, "GET", weatherPath(fieldID, "currentconditions"), nil, &conditions)
	if err != nil {
		return nil, fmt.Errorf("getting current conditions: %w", err)
	}

	return &conditions, nil
}

// Forecasts implements awhere.WeatherClient.Forecasts. A query date narrows
// the forecast to that single day.
func (c *WeatherClient) Forecasts(ctx context.Context, fieldID string, query *awhere.ForecastQuery) (*awhere.ForecastList, error) {
	if fieldID == "" {
		return nil, constants.ErrFieldIDRequired
	}

	if query == nil {
		query = &awhere.ForecastQuery{}
	}

	path := weatherPath(fieldID, "forecasts")

	if query.Date != "" {
		date, err := awhere.NormalizeDate(query.Date)
		if err != nil {
			return nil, fmt.Errorf("getting forecasts: %w", err)
		}

		path += "/" + date + "," + date
	}

	raw, err := c.api.APIRequest(ctx, &awhere.RequestOptions{Path: path}, query.Params)
	if err != nil {
		return nil, fmt.Errorf("getting forecasts: %w", err)
	}

	var list awhere.ForecastList

	err = decodeList(raw, &list, func() bool { return list.Forecasts != nil }, func(day awhere.ForecastDay) {
		list.Forecasts = []awhere.ForecastDay{day}
	})
	if err != nil {
		return nil, fmt.Errorf("parsing forecasts: %w", err)
	}

	return &list, nil
}

// Observations implements awhere.WeatherClient.Observations. The date range
// applies only when both ends are set; the limit defaults to 120.
func (c *WeatherClient) Observations(ctx context.Context, fieldID string, query *awhere.ObservationQuery) (*awhere.ObservationList, error) {
	if fieldID == "" {
		return nil, constants.ErrFieldIDRequired
	}

	if query == nil {
		query = &awhere.ObservationQuery{}
	}

	path := weatherPath(fieldID, "observations")

	if query.StartDate != "" && query.EndDate != "" {
		start, err := awhere.NormalizeDate(query.StartDate)
		if err != nil {
			return nil, fmt.Errorf("getting observations: %w", err)
		}

		end, err := awhere.NormalizeDate(query.EndDate)
		if err != nil {
			return nil, fmt.Errorf("getting observations: %w", err)
		}

		path += "/" + start + "," + end
	}

	params := withLimit(query.Params, query.Limit)

	raw, err := c.api.APIRequest(ctx, &awhere.RequestOptions{Path: path}, params)
	if err != nil {
		return nil, fmt.Errorf("getting observations: %w", err)
	}

	var list awhere.ObservationList

	err = decodeList(raw, &list, func() bool { return list.Observations != nil }, func(day awhere.Observation) {
		list.Observations = []awhere.Observation{day}
	})
	if err != nil {
		return nil, fmt.Errorf("parsing observations: %w", err)
	}

	return &list, nil
}

// CurrentConditionsAt implements awhere.WeatherClient.CurrentConditionsAt.
func (c *WeatherClient) CurrentConditionsAt(ctx context.Context, latitude, longitude float64) (*awhere.CurrentConditions, error) {
	fieldID, err := c.resolve(ctx, latitude, longitude)
	if err != nil {
		return nil, err
	}

	return c.CurrentConditions(ctx, fieldID)
}

// ForecastsAt implements awhere.WeatherClient.ForecastsAt.
func (c *WeatherClient) ForecastsAt(ctx context.Context, latitude, longitude float64, query *awhere.ForecastQuery) (*awhere.ForecastList, error) {
	fieldID, err := c.resolve(ctx, latitude, longitude)
	if err != nil {
		return nil, err
	}

	return c.Forecasts(ctx, fieldID, query)
}

// ObservationsAt implements awhere.WeatherClient.ObservationsAt.
func (c *WeatherClient) ObservationsAt(ctx context.Context, latitude, longitude float64, query *awhere.ObservationQuery) (*awhere.ObservationList, error) {
	fieldID, err := c.resolve(ctx, latitude, longitude)
	if err != nil {
		return nil, err
	}

	return c.Observations(ctx, fieldID, query)
}

func (c *WeatherClient) resolve(ctx context.Context, latitude, longitude float64) (string, error) {
	field, err := c.resolver.Resolve(ctx, latitude, longitude)
	if err != nil {
		return "", err
	}

	if field == nil {
		return "", constants.ErrCoordinatesInvalid
	}

	return field.ID, nil
}

func weatherPath(fieldID, resource string) string {
	return constants.APIPathWeather + "/fields/" + url.PathEscape(fieldID) + "/" + resource
}

// decodeList unmarshals a listing. When the service answers with a single
// record instead of a list, the record is wrapped.
func decodeList[T any](raw json.RawMessage, list interface{}, hasItems func() bool, wrap func(T)) error {
	if len(raw) == 0 {
		return nil
	}

	err := json.Unmarshal(raw, list)
	if err != nil {
		return fmt.Errorf("decoding list: %w", err)
	}

	if hasItems() {
		return nil
	}

	var single struct {
		Date string `json:"date"`
	}

	if json.Unmarshal(raw, &single) != nil || single.Date == "" {
		return nil
	}

	var item T

	err = json.Unmarshal(raw, &item)
	if err != nil {
		return fmt.Errorf("decoding record: %w", err)
	}

	wrap(item)

	return nil
}
