package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/awhere-client/pkg/awhere"
)

const testToken = "test-token"

// fakeAPI is an httptest-backed aWhere API. It issues tokens on
// /oauth/token and dispatches everything else to registered routes.
type fakeAPI struct {
	t      *testing.T
	server *httptest.Server

	mutex  sync.Mutex
	routes map[string]http.HandlerFunc
	calls  map[string]int

	tokenHits atomic.Int32
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	api := &fakeAPI{
		t:      t,
		routes: make(map[string]http.HandlerFunc),
		calls:  make(map[string]int),
	}

	api.server = httptest.NewServer(http.HandlerFunc(api.serveHTTP))
	t.Cleanup(api.server.Close)

	return api
}

func (f *fakeAPI) serveHTTP(writer http.ResponseWriter, request *http.Request) {
	if request.URL.Path == "/oauth/token" {
		f.tokenHits.Add(1)
		writeJSON(writer, http.StatusOK, map[string]interface{}{"access_token": testToken, "expires_in": 3600})

		return
	}

	assert.Equal(f.t, "Bearer "+testToken, request.Header.Get("Authorization"))

	key := request.Method + " " + request.URL.Path

	f.mutex.Lock()
	f.calls[key]++
	handler, ok := f.routes[key]
	f.mutex.Unlock()

	if !ok {
		writeJSON(writer, http.StatusNotFound, map[string]interface{}{
			"statusCode":    404,
			"statusName":    "Not Found",
			"simpleMessage": "not found",
		})

		return
	}

	handler(writer, request)
}

// handle registers a handler for "METHOD /path".
func (f *fakeAPI) handle(method, path string, handler http.HandlerFunc) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.routes[method+" "+path] = handler
}

// respond registers a fixed JSON response.
func (f *fakeAPI) respond(method, path string, status int, body interface{}) {
	f.handle(method, path, func(writer http.ResponseWriter, _ *http.Request) {
		writeJSON(writer, status, body)
	})
}

func (f *fakeAPI) count(method, path string) int {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	return f.calls[method+" "+path]
}

func (f *fakeAPI) newClient() *Client {
	f.t.Helper()

	client, err := New(&awhere.Config{
		APIEndpoint: f.server.URL,
		Key:         "key",
		Secret:      "secret",
	})
	require.NoError(f.t, err)

	return client
}

func writeJSON(writer http.ResponseWriter, status int, body interface{}) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)

	if body != nil {
		_ = json.NewEncoder(writer).Encode(body)
	}
}

func decodeBody(t *testing.T, request *http.Request) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}

	assert.NoError(t, json.NewDecoder(request.Body).Decode(&body))

	return body
}
