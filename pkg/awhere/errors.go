package awhere

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Common static errors that can be wrapped with context.
var (
	ErrTokenUnavailable    = errors.New("cannot obtain token")
	ErrBodyTooLarge        = errors.New("response size limit reached")
	ErrFieldListing        = errors.New("field listing failed")
	ErrFieldListMalformed  = errors.New("field listing response has no fields list")
	ErrConfigRequired      = errors.New("config is required")
	ErrInvalidConfig       = errors.New("invalid config")
	ErrJobFailed           = errors.New("batch job did not complete")
	ErrJobMissingID        = errors.New("batch job response has no job id")
	ErrUnsupportedEncoding = errors.New("unsupported request encoding")
)

// APIError is returned when the API answers with a status other than 200, 201
// or 204. The decoded response body is kept in Body so callers can inspect
// any field the service returned.
type APIError struct {
	StatusCode    int    `json:"-"`
	StatusMessage string `json:"-"`

	Code            int    `json:"statusCode,omitempty"`
	Name            string `json:"statusName,omitempty"`
	ErrorID         string `json:"errorId,omitempty"`
	SimpleMessage   string `json:"simpleMessage,omitempty"`
	DetailedMessage string `json:"detailedMessage,omitempty"`
	Message         string `json:"message,omitempty"`

	Body interface{}     `json:"-"`
	Raw  json.RawMessage `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.DetailedMessage
	if msg == "" {
		msg = e.SimpleMessage
	}

	if msg == "" {
		msg = e.Message
	}

	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}

	return fmt.Sprintf("aWhere API error (status: %d): %s", e.StatusCode, msg)
}

// NewAPIError builds an APIError from a decoded response body.
func NewAPIError(statusCode int, statusMessage string, raw []byte, body interface{}) *APIError {
	apiErr := &APIError{
		StatusCode:    statusCode,
		StatusMessage: statusMessage,
		Body:          body,
		Raw:           json.RawMessage(raw),
	}

	if _, ok := body.(map[string]interface{}); ok {
		// Known fields are best effort; the decoded body stays authoritative.
		_ = json.Unmarshal(raw, apiErr)
	}

	if apiErr.Code == 0 {
		apiErr.Code = statusCode
	}

	return apiErr
}

// DecodeError is returned when a response body is not valid JSON.
type DecodeError struct {
	StatusCode int
	Body       []byte
	Err        error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response (status: %d): %v", e.StatusCode, e.Err)
}

// Unwrap returns the underlying JSON error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// TransportError is returned when the HTTP exchange itself fails: connection
// errors, cancelled contexts and oversized bodies. Body holds whatever was
// received before the failure.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s %s", e.Method, e.URL)

	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, " (status: %d)", e.StatusCode)
	}

	fmt.Fprintf(&sb, ": %v", e.Err)

	return sb.String()
}

// Unwrap returns the underlying transport error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if the error is a 404 from the API.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error is a 401 from the API.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsTokenError checks if the error comes from exhausted token acquisition.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrTokenUnavailable)
}

// IsDecodeError checks if the error is an undecodable response body.
func IsDecodeError(err error) bool {
	decodeErr := &DecodeError{}

	return errors.As(err, &decodeErr)
}

// IsTransportError checks if the error is a transport level failure.
func IsTransportError(err error) bool {
	transportErr := &TransportError{}

	return errors.As(err, &transportErr)
}

func hasStatus(err error, status int) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}

	return false
}
