package http

import (
	"encoding/json"
	"fmt"
	"net/textproto"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/fivetwenty-io/awhere-client/internal/constants"
	"github.com/fivetwenty-io/awhere-client/pkg/awhere"
)

// Request describes a request before it is shaped for the wire.
type Request struct {
	Method   string
	Host     string
	Path     string
	Secure   *bool
	Protocol string
	Headers  map[string]string
	Username string
	Password string
	Encoding awhere.Encoding
}

// WireRequest is a request ready to be sent.
type WireRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
	Auth    string
}

// Bool returns a pointer to b, for Request.Secure.
func Bool(b bool) *bool {
	return &b
}

// IsSecure reports whether the request goes over TLS: the explicit Secure flag
// wins, otherwise the protocol decides.
func (r *Request) IsSecure() bool {
	if r.Secure != nil {
		return *r.Secure
	}

	return r.Protocol == "https:" || r.Protocol == "https"
}

// Header returns the value of a header, matching names case-insensitively.
func (r *Request) Header(name string) string {
	return lookupHeader(r.Headers, name)
}

// Merge returns a new request with the fields of override applied over r.
// Non-zero fields of override win; headers are merged key by key.
func (r *Request) Merge(override *Request) *Request {
	merged := &Request{
		Method:   r.Method,
		Host:     r.Host,
		Path:     r.Path,
		Secure:   r.Secure,
		Protocol: r.Protocol,
		Headers:  canonicalHeaders(r.Headers),
		Username: r.Username,
		Password: r.Password,
		Encoding: r.Encoding,
	}

	if override == nil {
		return merged
	}

	if override.Method != "" {
		merged.Method = override.Method
	}

	if override.Host != "" {
		merged.Host = override.Host
	}

	if override.Path != "" {
		merged.Path = override.Path
	}

	if override.Secure != nil {
		merged.Secure = override.Secure
	}

	if override.Protocol != "" {
		merged.Protocol = override.Protocol
	}

	if override.Username != "" {
		merged.Username = override.Username
	}

	if override.Password != "" {
		merged.Password = override.Password
	}

	if override.Encoding != awhere.EncodingDefault {
		merged.Encoding = override.Encoding
	}

	for key, value := range override.Headers {
		merged.Headers[textproto.CanonicalMIMEHeaderKey(key)] = value
	}

	return merged
}

// Build shapes a request and its parameters for the wire. It performs no I/O
// and produces the same output for the same input.
func Build(req *Request, params awhere.Params) (*WireRequest, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = "GET"
	}

	headers := canonicalHeaders(req.Headers)
	path := req.Path
	encoding := resolveEncoding(method, req.Encoding, headers["Content-Type"])

	var body []byte

	if params != nil {
		switch encoding {
		case awhere.EncodingQuery:
			query, err := EncodeQuery(params)
			if err != nil {
				return nil, err
			}

			if query != "" {
				separator := "?"
				if strings.Contains(path, "?") {
					separator = "&"
				}

				path += separator + query
			}
		case awhere.EncodingForm:
			form, err := EncodeQuery(params)
			if err != nil {
				return nil, err
			}

			body = []byte(form)
			headers["Content-Type"] = constants.ContentTypeForm
		case awhere.EncodingJSON:
			data, err := json.Marshal(params)
			if err != nil {
				return nil, fmt.Errorf("encoding JSON body: %w", err)
			}

			body = data

			if headers["Content-Type"] == "" {
				headers["Content-Type"] = constants.ContentTypeJSON
			}
		case awhere.EncodingNone, awhere.EncodingDefault:
		default:
			return nil, fmt.Errorf("%w: %s", awhere.ErrUnsupportedEncoding, encoding)
		}

		if body != nil {
			headers["Content-Length"] = strconv.Itoa(len(body))
		}
	}

	scheme := "http"
	if req.IsSecure() {
		scheme = "https"
	}

	wire := &WireRequest{
		Method:  method,
		URL:     scheme + "://" + req.Host + path,
		Headers: headers,
		Body:    body,
	}

	if req.Username != "" && req.Password != "" {
		wire.Auth = req.Username + ":" + req.Password
	}

	return wire, nil
}

// resolveEncoding picks the wire encoding. An explicit choice wins; otherwise
// read methods use the query string and write methods use a form body unless
// a content type is already set, in which case only JSON is serializable.
func resolveEncoding(method string, encoding awhere.Encoding, contentType string) awhere.Encoding {
	if encoding != awhere.EncodingDefault {
		return encoding
	}

	switch method {
	case "GET", "HEAD":
		return awhere.EncodingQuery
	case "POST", "PUT", "PATCH", "DELETE":
		if contentType == "" {
			return awhere.EncodingForm
		}

		if isJSONContentType(contentType) {
			return awhere.EncodingJSON
		}

		return awhere.EncodingNone
	default:
		return awhere.EncodingNone
	}
}

func isJSONContentType(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")

	return strings.EqualFold(strings.TrimSpace(mediaType), constants.ContentTypeJSON)
}

// EncodeQuery serializes params as a sorted, url-encoded query string.
// Slices become repeated keys; nil, maps and structs become empty values.
func EncodeQuery(params awhere.Params) (string, error) {
	values := url.Values{}

	for key, value := range params {
		if value == nil {
			values.Add(key, "")

			continue
		}

		kind := reflect.TypeOf(value).Kind()

		switch kind {
		case reflect.Slice, reflect.Array:
			items, err := cast.ToStringSliceE(value)
			if err != nil {
				return "", fmt.Errorf("encoding query parameter %q: %w", key, err)
			}

			for _, item := range items {
				values.Add(key, item)
			}
		case reflect.Map, reflect.Struct, reflect.Func, reflect.Chan:
			values.Add(key, "")
		default:
			str, err := cast.ToStringE(value)
			if err != nil {
				return "", fmt.Errorf("encoding query parameter %q: %w", key, err)
			}

			values.Add(key, str)
		}
	}

	return values.Encode(), nil
}

func canonicalHeaders(headers map[string]string) map[string]string {
	canonical := make(map[string]string, len(headers))
	for key, value := range headers {
		canonical[textproto.CanonicalMIMEHeaderKey(key)] = value
	}

	return canonical
}

func lookupHeader(headers map[string]string, name string) string {
	if value, ok := headers[name]; ok {
		return value
	}

	canonical := textproto.CanonicalMIMEHeaderKey(name)
	for key, value := range headers {
		if textproto.CanonicalMIMEHeaderKey(key) == canonical {
			return value
		}
	}

	return ""
}
