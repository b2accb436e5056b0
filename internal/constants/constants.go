package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// API endpoints.
const (
	// DefaultAPIHost is the host of the aWhere API.
	DefaultAPIHost = "api.awhere.com"

	// DefaultAPIEndpoint is the base URL of the aWhere API.
	DefaultAPIEndpoint = "https://" + DefaultAPIHost

	// TokenPath is the OAuth2 token endpoint path.
	TokenPath = "/oauth/token"

	// GrantTypeClientCredentials is the only grant the API supports.
	GrantTypeClientCredentials = "client_credentials"

	// DefaultUserAgent is sent unless overridden.
	DefaultUserAgent = "awhere-client-go"
)

// API resource paths.
const (
	APIPathFields      = "/v2/fields"
	APIPathAgronomics  = "/v2/agronomics"
	APIPathWeather     = "/v2/weather"
	APIPathCrops       = "/v2/agronomics/crops"
	APIPathModels      = "/v2/agronomics/models"
	APIPathJobs        = "/v2/jobs"
	APIPathPlantings   = "plantings"
	CurrentPlantingRef = "current"
)

// Content types.
const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// Retry and size limits.
const (
	// TokenRetryMax is the number of retries after a failed token request.
	TokenRetryMax = 5

	// DefaultRetryMax is the default number of transport retries. Only token
	// acquisition retries by default.
	DefaultRetryMax = 0

	// DefaultRetryWaitMin is the minimum wait between opt-in transport retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait between opt-in transport retries.
	DefaultRetryWaitMax = 30 * time.Second

	// MaxResponseBodySize caps the accumulated response body in bytes.
	MaxResponseBodySize = 20 * 1000 * 1000
)

// Time intervals and delays.
const (
	// JobPollInterval is the delay between batch job status checks.
	JobPollInterval = 1 * time.Second

	// QuickPollInterval is used for fast polling in tests.
	QuickPollInterval = 10 * time.Millisecond
)

// Domain defaults.
const (
	// DefaultListLimit is applied to crops, models and observations listings.
	DefaultListLimit = 120

	// AcresInHectare converts hectares to acres.
	AcresInHectare = 2.47105

	// DefaultFieldName is used when a field is created without a name.
	DefaultFieldName = "Untitled field"

	// GeneratedFieldIDPrefix prefixes generated field identifiers.
	GeneratedFieldIDPrefix = "field-"
)

// Batch job states.
const (
	JobStatusCancelled = "cancelled"
	JobStatusPurged    = "purged"
	JobTypeBatch       = "batch"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Display helpers.
const (
	// NotAvailable is displayed for missing values.
	NotAvailable = "N/A"

	// MaskedSecret replaces secrets in output.
	MaskedSecret = "***"
)
