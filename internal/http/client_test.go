package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	awherehttp "github.com/fivetwenty-io/awhere-client/internal/http"
	"github.com/fivetwenty-io/awhere-client/pkg/awhere"
)

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

func (l *MockLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	msgs := make([]string, 0, len(l.logs))
	for _, entry := range l.logs {
		msg, _ := entry["msg"].(string)
		msgs = append(msgs, msg)
	}

	return msgs
}

type recordingObserver struct {
	requests atomic.Int32
	retries  atomic.Int32
	status   atomic.Int32
}

func (o *recordingObserver) ObserveRequest(_ string, statusCode int, _ time.Duration) {
	o.requests.Add(1)
	o.status.Store(int32(statusCode)) //nolint:gosec // status codes fit in int32
}

func (o *recordingObserver) ObserveRetry(string) {
	o.retries.Add(1)
}

func requestFor(server *httptest.Server, method, path string) *awherehttp.Request {
	return &awherehttp.Request{
		Method: method,
		Host:   strings.TrimPrefix(server.URL, "http://"),
		Path:   path,
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()

	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/v2/fields", request.URL.Path)
			assert.Equal(t, "limit=10", request.URL.RawQuery)
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "awhere-client-go", request.Header.Get("User-Agent"))

			writer.WriteHeader(http.StatusOK)
			_, _ = writer.Write([]byte(`{"fields":[]}`))
		}))
		defer server.Close()

		client := awherehttp.NewClient()

		resp, err := client.Do(context.Background(), requestFor(server, "GET", "/v2/fields"), awhere.Params{"limit": 10})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "OK", resp.StatusMessage)
		assert.JSONEq(t, `{"fields":[]}`, string(resp.Body))
	})

	t.Run("form body and basic auth", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "POST", request.Method)
			assert.Equal(t, "application/x-www-form-urlencoded", request.Header.Get("Content-Type"))
			assert.Equal(t, int64(29), request.ContentLength)

			username, password, ok := request.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "key", username)
			assert.Equal(t, "secret", password)

			assert.NoError(t, request.ParseForm())
			assert.Equal(t, "client_credentials", request.PostForm.Get("grant_type"))

			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		req := requestFor(server, "POST", "/oauth/token")
		req.Username = "key"
		req.Password = "secret"

		resp, err := awherehttp.NewClient().Do(context.Background(), req, awhere.Params{"grant_type": "client_credentials"})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.NotNil(t, resp.Body)
		assert.Empty(t, resp.Body)
	})

	t.Run("error statuses are not transport errors", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{"statusCode":404}`))
		}))
		defer server.Close()

		resp, err := awherehttp.NewClient().Do(context.Background(), requestFor(server, "GET", "/v2/fields/x"), nil)
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
		assert.Equal(t, "Not Found", resp.StatusMessage)
	})

	t.Run("custom headers and user agent", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "custom-value", request.Header.Get("X-Custom-Header"))
			assert.Equal(t, "agent/1.0", request.Header.Get("User-Agent"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		req := requestFor(server, "GET", "/v2/fields")
		req.Headers = map[string]string{"x-custom-header": "custom-value"}

		resp, err := awherehttp.NewClient(awherehttp.WithUserAgent("agent/1.0")).Do(context.Background(), req, nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("body over the limit fails", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
			_, _ = writer.Write([]byte(strings.Repeat("x", 100)))
		}))
		defer server.Close()

		client := awherehttp.NewClient(awherehttp.WithMaxBodySize(10))

		resp, err := client.Do(context.Background(), requestFor(server, "GET", "/big"), nil)
		require.Error(t, err)
		require.ErrorIs(t, err, awhere.ErrBodyTooLarge)
		assert.True(t, awhere.IsTransportError(err))
		assert.Equal(t, 200, resp.StatusCode)
		assert.Len(t, resp.Body, 10)
	})

	t.Run("body at the limit succeeds", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			_, _ = writer.Write([]byte(strings.Repeat("x", 10)))
		}))
		defer server.Close()

		client := awherehttp.NewClient(awherehttp.WithMaxBodySize(10))

		resp, err := client.Do(context.Background(), requestFor(server, "GET", "/exact"), nil)
		require.NoError(t, err)
		assert.Len(t, resp.Body, 10)
	})

	t.Run("connection failure returns empty response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		req := requestFor(server, "GET", "/v2/fields")
		server.Close()

		resp, err := awherehttp.NewClient().Do(context.Background(), req, nil)
		require.Error(t, err)

		transportErr := &awhere.TransportError{}
		require.ErrorAs(t, err, &transportErr)
		assert.Equal(t, "GET", transportErr.Method)
		require.NotNil(t, resp)
		assert.Equal(t, 0, resp.StatusCode)
		assert.NotNil(t, resp.Body)
		assert.Empty(t, resp.Body)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := awherehttp.NewClient().Do(ctx, requestFor(server, "GET", "/v2/fields"), nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
			_, _ = writer.Write([]byte(`{"result":"ok"}`))
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := awherehttp.NewClient(awherehttp.WithLogger(logger), awherehttp.WithDebug(true))

		_, err := client.Do(context.Background(), requestFor(server, "GET", "/v2/fields"), nil)
		require.NoError(t, err)

		msgs := logger.messages()
		assert.Contains(t, msgs, "HTTP Request")
		assert.Contains(t, msgs, "HTTP Response")
	})

	t.Run("observer sees every request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		observer := &recordingObserver{}
		client := awherehttp.NewClient(awherehttp.WithObserver(observer))

		for range 3 {
			_, err := client.Do(context.Background(), requestFor(server, "POST", "/v2/fields"), nil)
			require.NoError(t, err)
		}

		assert.Equal(t, int32(3), observer.requests.Load())
		assert.Equal(t, int32(0), observer.retries.Load())
		assert.Equal(t, int32(201), observer.status.Load())
	})

	t.Run("rate limit waits between requests", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := awherehttp.NewClient(awherehttp.WithRateLimit(20, 1))

		start := time.Now()

		for range 3 {
			_, err := client.Do(context.Background(), requestFor(server, "GET", "/v2/fields"), nil)
			require.NoError(t, err)
		}

		assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()

	t.Run("does not retry by default", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		resp, err := awherehttp.NewClient().Do(context.Background(), requestFor(server, "GET", "/test"), nil)
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)
		assert.Equal(t, int32(1), attempts.Load())
	})

	t.Run("retries on 5xx errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) < 3 {
				writer.WriteHeader(http.StatusInternalServerError)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		observer := &recordingObserver{}
		client := awherehttp.NewClient(
			awherehttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond),
			awherehttp.WithObserver(observer),
		)

		resp, err := client.Do(context.Background(), requestFor(server, "GET", "/test"), nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(3), attempts.Load())
		assert.Equal(t, int32(2), observer.retries.Load())
	})

	t.Run("retries on rate limiting", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) < 2 {
				writer.WriteHeader(http.StatusTooManyRequests)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := awherehttp.NewClient(awherehttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Do(context.Background(), requestFor(server, "GET", "/test"), nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(2), attempts.Load())
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := awherehttp.NewClient(awherehttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Do(context.Background(), requestFor(server, "GET", "/test"), nil)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, int32(1), attempts.Load())
	})
}
