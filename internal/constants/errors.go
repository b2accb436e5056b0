package constants

import "errors"

// Configuration errors.
var (
	ErrConfigRequired      = errors.New("config is required")
	ErrInvalidAPIEndpoint  = errors.New("invalid API endpoint")
	ErrNoCredentials       = errors.New("no API key or secret configured. Use 'awhere config set key <key>' or set AWHERE_KEY/AWHERE_SECRET")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
	ErrUnknownOutputFormat = errors.New("unknown output format")
)

// Argument errors.
var (
	ErrFieldIDRequired    = errors.New("field ID is required")
	ErrModelIDRequired    = errors.New("model ID is required")
	ErrCoordinatesInvalid = errors.New("latitude and longitude must be non-zero numbers")
	ErrNoBatchRequests    = errors.New("at least one batch request is required")
)
