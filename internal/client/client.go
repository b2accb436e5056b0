package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fivetwenty-io/awhere-client/internal/auth"
	"github.com/fivetwenty-io/awhere-client/internal/constants"
	"github.com/fivetwenty-io/awhere-client/internal/http"
	"github.com/fivetwenty-io/awhere-client/internal/metrics"
	"github.com/fivetwenty-io/awhere-client/pkg/awhere"
)

// apiRequester is the part of Client the resource clients depend on.
type apiRequester interface {
	APIRequest(ctx context.Context, options *awhere.RequestOptions, params awhere.Params) (json.RawMessage, error)
}

// Client implements the awhere.Client interface. Every piece of mutable
// state (token, field cache, crop memo) belongs to one Client.
type Client struct {
	transport *http.Client
	tokens    auth.TokenManager
	host      string
	secure    bool
	logger    awhere.Logger
	metrics   *metrics.Collector

	// Resource clients
	fields     *FieldsClient
	resolver   *FieldResolver
	plantings  *PlantingsClient
	weather    *WeatherClient
	crops      *CropsClient
	agronomics *AgronomicsClient
	jobs       *JobsClient
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// New creates a new aWhere API client.
func New(config *awhere.Config) (*Client, error) {
	return NewWithTokenManager(config, nil)
}

// NewWithTokenManager creates a client that takes its bearer tokens from
// tokens instead of the OAuth2 client_credentials flow. A nil tokens uses
// the flow with Config.Key and Config.Secret.
func NewWithTokenManager(config *awhere.Config, tokens auth.TokenManager) (*Client, error) {
	if config == nil {
		return nil, awhere.ErrConfigRequired
	}

	err := validate.Struct(config)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", awhere.ErrInvalidConfig, err)
	}

	endpoint := config.APIEndpoint
	if endpoint == "" {
		endpoint = constants.DefaultAPIEndpoint
	}

	parsed, err := url.Parse(strings.TrimSuffix(endpoint, "/"))
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %w: %q", awhere.ErrInvalidConfig, constants.ErrInvalidAPIEndpoint, endpoint)
	}

	collector := metrics.NewCollector()

	err = collector.Register(config.MetricsRegisterer)
	if err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}

	transport := http.NewClient(createHTTPClientOptions(config, collector)...)

	if tokens == nil {
		tokenURL := config.TokenURL
		if tokenURL == "" {
			tokenURL = parsed.Scheme + "://" + parsed.Host + constants.TokenPath
		}

		managerOpts := []auth.ManagerOption{auth.WithObserver(collector)}
		if config.Logger != nil {
			managerOpts = append(managerOpts, auth.WithLogger(config.Logger))
		}

		tokens = auth.NewOAuth2TokenManager(&auth.OAuth2Config{
			TokenURL:   tokenURL,
			Key:        config.Key,
			Secret:     config.Secret,
			MaxRetries: config.TokenRetryMax,
		}, transport, managerOpts...)
	}

	client := &Client{
		transport: transport,
		tokens:    tokens,
		host:      parsed.Host,
		secure:    parsed.Scheme != "http",
		logger:    config.Logger,
		metrics:   collector,
	}

	client.initializeResourceClients()

	return client, nil
}

// createHTTPClientOptions builds transport options from config.
func createHTTPClientOptions(config *awhere.Config, collector *metrics.Collector) []http.Option {
	httpOpts := []http.Option{http.WithObserver(collector)}

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	if config.RequestsPerSecond > 0 {
		httpOpts = append(httpOpts, http.WithRateLimit(config.RequestsPerSecond, 1))
	}

	if config.MaxBodySize > 0 {
		httpOpts = append(httpOpts, http.WithMaxBodySize(config.MaxBodySize))
	}

	return httpOpts
}

func (c *Client) initializeResourceClients() {
	c.fields = NewFieldsClient(c)
	c.resolver = NewFieldResolver(c.fields, c.metrics)
	c.plantings = NewPlantingsClient(c)
	c.weather = NewWeatherClient(c, c.resolver)
	c.crops = NewCropsClient(c)
	c.agronomics = NewAgronomicsClient(c)
	c.jobs = NewJobsClient(c)
}

// GetToken implements awhere.Client.GetToken.
func (c *Client) GetToken(ctx context.Context) (string, error) {
	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("getting token: %w", err)
	}

	return token, nil
}

// APIRequest implements awhere.Client.APIRequest. It authenticates, sends
// the request and classifies the response: a body that is not JSON is a
// *awhere.DecodeError, and any status other than 200, 201 or 204 is an
// *awhere.APIError carrying the decoded body. An empty body decodes to nil.
func (c *Client) APIRequest(ctx context.Context, options *awhere.RequestOptions, params awhere.Params) (json.RawMessage, error) {
	token, err := c.GetToken(ctx)
	if err != nil {
		return nil, err
	}

	defaults := &http.Request{
		Method: "GET",
		Host:   c.host,
		Secure: http.Bool(c.secure),
		Headers: map[string]string{
			"Authorization": "Bearer " + token,
			"Content-Type":  constants.ContentTypeJSON,
		},
	}

	resp, err := c.transport.Do(ctx, defaults.Merge(requestFromOptions(options)), params)
	if err != nil {
		return nil, err
	}

	var decoded interface{}

	if len(resp.Body) > 0 {
		err = json.Unmarshal(resp.Body, &decoded)
		if err != nil {
			return nil, &awhere.DecodeError{StatusCode: resp.StatusCode, Body: resp.Body, Err: err}
		}
	}

	if !isSuccess(resp.StatusCode) {
		return nil, awhere.NewAPIError(resp.StatusCode, resp.StatusMessage, resp.Body, decoded)
	}

	if len(resp.Body) == 0 {
		return nil, nil
	}

	return json.RawMessage(resp.Body), nil
}

// APIRequestAsync implements awhere.Client.APIRequestAsync. callback runs
// exactly once on a new goroutine; a nil callback discards the outcome.
func (c *Client) APIRequestAsync(ctx context.Context, options *awhere.RequestOptions, params awhere.Params, callback awhere.Callback[json.RawMessage]) {
	go func() {
		result, err := c.APIRequest(ctx, options, params)
		if callback != nil {
			callback(result, err)
		}
	}()
}

func requestFromOptions(options *awhere.RequestOptions) *http.Request {
	if options == nil {
		return nil
	}

	return &http.Request{
		Method:   options.Method,
		Host:     options.Host,
		Path:     options.Path,
		Headers:  options.Headers,
		Encoding: options.Encoding,
	}
}

func isSuccess(status int) bool {
	return status == 200 || status == 201 || status == 204
}

// Resource client accessors

// Fields implements awhere.Client.Fields.
func (c *Client) Fields() awhere.FieldsClient {
	return c.fields
}

// Resolver implements awhere.Client.Resolver.
func (c *Client) Resolver() awhere.FieldResolver {
	return c.resolver
}

// Plantings implements awhere.Client.Plantings.
func (c *Client) Plantings() awhere.PlantingsClient {
	return c.plantings
}

// Weather implements awhere.Client.Weather.
func (c *Client) Weather() awhere.WeatherClient {
	return c.weather
}

// Crops implements awhere.Client.Crops.
func (c *Client) Crops() awhere.CropsClient {
	return c.crops
}

// Agronomics implements awhere.Client.Agronomics.
func (c *Client) Agronomics() awhere.AgronomicsClient {
	return c.agronomics
}

// Jobs implements awhere.Client.Jobs.
func (c *Client) Jobs() awhere.JobsClient {
	return c.jobs
}

// doJSON sends a request and unmarshals the result into out when both are
// present.
func doJSON(ctx context.Context, api apiRequester, method, path string, params awhere.Params, out interface{}) error {
	raw, err := api.APIRequest(ctx, &awhere.RequestOptions{Method: method, Path: path}, params)
	if err != nil {
		return err
	}

	if out == nil || len(raw) == 0 {
		return nil
	}

	err = json.Unmarshal(raw, out)
	if err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}

	return nil
}

// toParams turns a request struct into a parameter bag for a JSON body.
func toParams(value interface{}) (awhere.Params, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	params := awhere.Params{}

	err = json.Unmarshal(data, &params)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	return params, nil
}

// mergeParams copies base and overlays extra, so caller params never mutate.
func mergeParams(base awhere.Params, extra awhere.Params) awhere.Params {
	merged := make(awhere.Params, len(base)+len(extra))
	for key, value := range base {
		merged[key] = value
	}

	for key, value := range extra {
		merged[key] = value
	}

	return merged
}

// withLimit returns a copy of params with "limit" set: an explicit limit
// wins, then a caller-supplied params["limit"], then the default.
func withLimit(params awhere.Params, limit int) awhere.Params {
	if limit > 0 {
		return mergeParams(params, awhere.Params{"limit": limit})
	}

	if _, ok := params["limit"]; ok {
		return mergeParams(params, nil)
	}

	return mergeParams(params, awhere.Params{"limit": constants.DefaultListLimit})
}
