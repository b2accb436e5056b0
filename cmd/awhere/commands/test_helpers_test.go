package commands_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// findSubcommand finds a subcommand by name within a cobra command.
func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

// fakeAPI serves the token endpoint plus whatever routes a test registers.
type fakeAPI struct {
	server *httptest.Server
	mutex  sync.Mutex
	routes map[string]http.HandlerFunc
	seen   []string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	api := &fakeAPI{routes: map[string]http.HandlerFunc{}}
	api.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.mutex.Lock()
		api.seen = append(api.seen, r.Method+" "+r.URL.RequestURI())
		handler := api.routes[r.Method+" "+r.URL.Path]
		api.mutex.Unlock()

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/oauth/token":
			writeJSON(w, http.StatusOK, map[string]interface{}{"access_token": "cli-token", "expires_in": 3600})
		case handler != nil:
			handler(w, r)
		default:
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"statusCode": 404, "simpleMessage": "not found"})
		}
	}))
	t.Cleanup(api.server.Close)

	return api
}

func (a *fakeAPI) respond(method, path string, status int, body interface{}) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.routes[method+" "+path] = func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, body)
	}
}

func (a *fakeAPI) requests() []string {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	return append([]string(nil), a.seen...)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// useAPI points the global configuration at api for the rest of the test.
// Tests calling it must not run in parallel.
func useAPI(t *testing.T, api *fakeAPI, output string) {
	t.Helper()

	viper.Reset()
	viper.Set("api", api.server.URL)
	viper.Set("key", "key")
	viper.Set("secret", "secret")
	viper.Set("output", output)
	t.Cleanup(viper.Reset)
}

// execute runs cmd with args and returns what it printed.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}
