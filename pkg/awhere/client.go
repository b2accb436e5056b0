package awhere

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Encoding selects how request parameters are put on the wire.
type Encoding int

const (
	// EncodingDefault derives the encoding from the method and Content-Type:
	// GET and HEAD use the query string; POST, PUT, PATCH and DELETE use a
	// form body, or a JSON body when Content-Type is application/json.
	EncodingDefault Encoding = iota
	// EncodingNone sends no parameters at all.
	EncodingNone
	// EncodingQuery appends parameters to the path as a query string.
	EncodingQuery
	// EncodingForm sends a form-url-encoded body.
	EncodingForm
	// EncodingJSON sends a JSON body.
	EncodingJSON
)

// String returns the encoding name.
func (e Encoding) String() string {
	switch e {
	case EncodingDefault:
		return "default"
	case EncodingNone:
		return "none"
	case EncodingQuery:
		return "query"
	case EncodingForm:
		return "form"
	case EncodingJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Params is a flat parameter bag. Values may be scalars, slices of scalars,
// or, for JSON bodies only, nested maps and structs.
type Params map[string]interface{}

// RequestOptions describes a single API call. Zero values fall back to the
// client defaults: GET, the configured host, HTTPS and a JSON content type.
type RequestOptions struct {
	Method   string
	Path     string
	Host     string
	Headers  map[string]string
	Encoding Encoding
}

// Callback receives the outcome of an asynchronous call. It is invoked
// exactly once per call.
type Callback[T any] func(result T, err error)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a Client.
//
// # Authentication
//
// Key and Secret are exchanged for a bearer token with the OAuth2
// client_credentials grant. Missing credentials are not rejected up front:
// the token endpoint refuses them and the call fails with ErrTokenUnavailable.
//
// # Retries
//
// Token requests are retried TokenRetryMax times (default 5) before the call
// fails. Other requests are not retried unless RetryMax is set.
type Config struct {
	// APIEndpoint: base URL for the API. Defaults to "https://api.awhere.com".
	APIEndpoint string `validate:"omitempty,url"`
	// Key: API key used as the Basic auth user for the token request.
	Key string
	// Secret: API secret used as the Basic auth password for the token request.
	Secret string
	// TokenURL: full token endpoint. Defaults to APIEndpoint + "/oauth/token".
	TokenURL string `validate:"omitempty,url"`

	// TokenRetryMax: retries after a failed token request. 0 uses the default.
	TokenRetryMax int `validate:"gte=0"`
	// RetryMax: transport retries for 5xx, 429 and connection errors.
	RetryMax int `validate:"gte=0"`
	// RetryWaitMin: minimum backoff between transport retries.
	RetryWaitMin time.Duration `validate:"gte=0"`
	// RetryWaitMax: maximum backoff between transport retries.
	RetryWaitMax time.Duration `validate:"gte=0"`
	// RequestsPerSecond: client-side rate limit. 0 disables limiting.
	RequestsPerSecond float64 `validate:"gte=0"`
	// MaxBodySize: response size limit in bytes. 0 uses 20,000,000.
	MaxBodySize int64 `validate:"gte=0"`

	// Debug: enables request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger. The client is silent without one.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// MetricsRegisterer: optional Prometheus registerer for request metrics.
	MetricsRegisterer prometheus.Registerer
}

// FieldsClient manages fields.
type FieldsClient interface {
	List(ctx context.Context, params Params) (*FieldList, error)
	Get(ctx context.Context, id string) (*Field, error)
	Create(ctx context.Context, request *FieldCreateRequest) (*Field, error)
	Update(ctx context.Context, id string, request *FieldUpdateRequest) (*Field, error)
	Delete(ctx context.Context, id string) error
}

// FieldResolver maps coordinates to fields, creating fields on demand.
type FieldResolver interface {
	Resolve(ctx context.Context, latitude, longitude float64) (*Field, error)
	ResolveAsync(ctx context.Context, latitude, longitude float64, callback Callback[*Field])
}

// PlantingsClient manages plantings.
type PlantingsClient interface {
	List(ctx context.Context, query *PlantingQuery) (json.RawMessage, error)
	Current(ctx context.Context, fieldID string) (*Planting, error)
	Create(ctx context.Context, fieldID string, request *PlantingRequest) (*Planting, error)
	Update(ctx context.Context, fieldID, plantingID string, request *PlantingRequest) (*Planting, error)
	Delete(ctx context.Context, fieldID, plantingID string) error
	GetOrCreate(ctx context.Context, fieldID string, request *PlantingRequest) (*Planting, error)
}

// WeatherClient provides weather data for a field.
type WeatherClient interface {
	CurrentConditions(ctx context.Context, fieldID string) (*CurrentConditions, error)
	Forecasts(ctx context.Context, fieldID string, query *ForecastQuery) (*ForecastList, error)
	Observations(ctx context.Context, fieldID string, query *ObservationQuery) (*ObservationList, error)
	CurrentConditionsAt(ctx context.Context, latitude, longitude float64) (*CurrentConditions, error)
	ForecastsAt(ctx context.Context, latitude, longitude float64, query *ForecastQuery) (*ForecastList, error)
	ObservationsAt(ctx context.Context, latitude, longitude float64, query *ObservationQuery) (*ObservationList, error)
}

// CropsClient provides crops and models.
type CropsClient interface {
	List(ctx context.Context, query *CropQuery) (*CropList, error)
	Models(ctx context.Context, params Params) (*ModelList, error)
}

// AgronomicsClient provides agronomic values and model results.
type AgronomicsClient interface {
	Values(ctx context.Context, fieldID string, params Params) (*AgronomicValues, error)
	ModelResults(ctx context.Context, fieldID, modelID string, params Params) (*ModelResults, error)
}

// JobsClient runs batch jobs.
type JobsClient interface {
	Get(ctx context.Context, jobID string) (*Job, error)
	Batch(ctx context.Context, requests []BatchRequest) ([]JobResult, error)
}

// Client is the aWhere API client.
type Client interface {
	Fields() FieldsClient
	Resolver() FieldResolver
	Plantings() PlantingsClient
	Weather() WeatherClient
	Crops() CropsClient
	Agronomics() AgronomicsClient
	Jobs() JobsClient

	// APIRequest sends an authenticated request and returns the decoded body.
	APIRequest(ctx context.Context, options *RequestOptions, params Params) (json.RawMessage, error)
	// APIRequestAsync runs APIRequest in the background and reports to callback.
	APIRequestAsync(ctx context.Context, options *RequestOptions, params Params, callback Callback[json.RawMessage])
	// GetToken returns a valid bearer token.
	GetToken(ctx context.Context) (string, error)
}
