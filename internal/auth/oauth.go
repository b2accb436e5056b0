package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cast"

	"github.com/fivetwenty-io/awhere-client/internal/constants"
	awherehttp "github.com/fivetwenty-io/awhere-client/internal/http"
	"github.com/fivetwenty-io/awhere-client/pkg/awhere"
)

// Static errors for err113 compliance.
var (
	ErrEmptyTokenResponse   = errors.New("token response body is empty")
	ErrInvalidTokenResponse = errors.New("token response has no access_token or expires_in")
	ErrInvalidTokenURL      = errors.New("invalid token URL")
)

// TokenManager provides bearer tokens.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
}

// Observer receives token fetch outcomes.
type Observer interface {
	ObserveTokenFetch(success bool)
}

// OAuth2Config holds the client_credentials settings.
type OAuth2Config struct {
	TokenURL   string
	Key        string
	Secret     string
	MaxRetries int
}

// OAuth2TokenManager fetches and caches client_credentials tokens.
type OAuth2TokenManager struct {
	config    *OAuth2Config
	transport *awherehttp.Client
	store     *TokenStore
	mutex     sync.Mutex
	logger    awherehttp.Logger
	observer  Observer
	now       func() time.Time
}

// ManagerOption configures the token manager.
type ManagerOption func(*OAuth2TokenManager)

// WithLogger sets the logger.
func WithLogger(logger awherehttp.Logger) ManagerOption {
	return func(m *OAuth2TokenManager) {
		m.logger = logger
	}
}

// WithObserver reports token fetches to observer.
func WithObserver(observer Observer) ManagerOption {
	return func(m *OAuth2TokenManager) {
		m.observer = observer
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *OAuth2TokenManager) {
		m.now = now
	}
}

// NewOAuth2TokenManager creates a token manager that sends its requests
// through transport.
func NewOAuth2TokenManager(config *OAuth2Config, transport *awherehttp.Client, opts ...ManagerOption) *OAuth2TokenManager {
	if config == nil {
		config = &OAuth2Config{}
	}

	if config.TokenURL == "" {
		config.TokenURL = constants.DefaultAPIEndpoint + constants.TokenPath
	}

	if config.MaxRetries <= 0 {
		config.MaxRetries = constants.TokenRetryMax
	}

	if transport == nil {
		transport = awherehttp.NewClient()
	}

	manager := &OAuth2TokenManager{
		config:    config,
		transport: transport,
		store:     NewTokenStore(),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(manager)
	}

	return manager
}

// GetToken returns the cached token while it is valid, otherwise fetches a
// new one. Concurrent callers share a single fetch.
func (m *OAuth2TokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if token.ValidAt(m.now()) {
		return token.AccessToken, nil
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	// Another caller may have refreshed while we waited.
	token = m.store.Get()
	if token.ValidAt(m.now()) {
		return token.AccessToken, nil
	}

	token, err := m.fetchWithRetry(ctx)
	if err != nil {
		return "", err
	}

	return token.AccessToken, nil
}

// RefreshToken fetches a new token even if the cached one is valid.
func (m *OAuth2TokenManager) RefreshToken(ctx context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	_, err := m.fetchWithRetry(ctx)

	return err
}

// SetToken manually sets the access token.
func (m *OAuth2TokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	})
}

// Token returns a copy of the cached token, or nil.
func (m *OAuth2TokenManager) Token() *Token {
	return m.store.Get()
}

// Clear forgets the cached token.
func (m *OAuth2TokenManager) Clear() {
	m.store.Clear()
}

// fetchWithRetry makes one attempt plus MaxRetries retries. The counter is
// local so failures never leak into later calls.
func (m *OAuth2TokenManager) fetchWithRetry(ctx context.Context) (*Token, error) {
	var lastErr error

	attempts := m.config.MaxRetries + 1

	for attempt := range attempts {
		token, err := m.fetch(ctx)
		if err == nil {
			m.store.Set(token)
			m.observe(true)

			return token, nil
		}

		m.observe(false)

		lastErr = err

		if ctx.Err() != nil {
			break
		}

		if m.logger != nil {
			m.logger.Debug("token request failed", map[string]interface{}{
				"attempt": attempt + 1,
				"of":      attempts,
				"error":   err.Error(),
			})
		}
	}

	if m.logger != nil {
		m.logger.Error("giving up on token request", map[string]interface{}{
			"token_url": m.config.TokenURL,
			"error":     lastErr.Error(),
		})
	}

	return nil, fmt.Errorf("%w: %w", awhere.ErrTokenUnavailable, lastErr)
}

func (m *OAuth2TokenManager) fetch(ctx context.Context) (*Token, error) {
	fetchStart := m.now()

	req, err := m.tokenRequest()
	if err != nil {
		return nil, err
	}

	resp, err := m.transport.Do(ctx, req, awhere.Params{"grant_type": constants.GrantTypeClientCredentials})
	if err != nil {
		return nil, fmt.Errorf("requesting token: %w", err)
	}

	if len(resp.Body) == 0 {
		return nil, fmt.Errorf("%w (status: %d)", ErrEmptyTokenResponse, resp.StatusCode)
	}

	var body map[string]interface{}

	err = json.Unmarshal(resp.Body, &body)
	if err != nil {
		return nil, fmt.Errorf("decoding token response: %w", err)
	}

	accessToken := cast.ToString(body["access_token"])
	expiresIn, expiresErr := cast.ToFloat64E(body["expires_in"])

	if accessToken == "" || expiresErr != nil || expiresIn <= 0 {
		return nil, fmt.Errorf("%w (status: %d)%s", ErrInvalidTokenResponse, resp.StatusCode, describeOAuthError(body))
	}

	tokenType := cast.ToString(body["token_type"])
	if tokenType == "" {
		tokenType = "bearer"
	}

	return &Token{
		AccessToken: accessToken,
		TokenType:   tokenType,
		ExpiresIn:   expiresIn,
		ExpiresAt:   fetchStart.Add(time.Duration(expiresIn * float64(time.Second))),
	}, nil
}

func (m *OAuth2TokenManager) tokenRequest() (*awherehttp.Request, error) {
	parsed, err := url.Parse(m.config.TokenURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTokenURL, m.config.TokenURL)
	}

	path := parsed.EscapedPath()
	if parsed.RawQuery != "" {
		path += "?" + parsed.RawQuery
	}

	return &awherehttp.Request{
		Method:   "POST",
		Host:     parsed.Host,
		Path:     path,
		Secure:   awherehttp.Bool(parsed.Scheme == "https"),
		Username: m.config.Key,
		Password: m.config.Secret,
	}, nil
}

func (m *OAuth2TokenManager) observe(success bool) {
	if m.observer != nil {
		m.observer.ObserveTokenFetch(success)
	}
}

func describeOAuthError(body map[string]interface{}) string {
	parts := make([]string, 0, 2)

	for _, key := range []string{"error", "error_description"} {
		if value := cast.ToString(body[key]); value != "" {
			parts = append(parts, value)
		}
	}

	if len(parts) == 0 {
		return ""
	}

	return ": " + strings.Join(parts, ": ")
}
