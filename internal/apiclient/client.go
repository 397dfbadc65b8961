// Package apiclient is the HTTP client for the WASAText API. Every request
// carries the stored identifier as a bearer credential when one is present.
package apiclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wasatext/internal/credential"
)

// DefaultBaseURL is the API root used when Config.BaseURL is empty.
// Set at build time with
// -ldflags "-X github.com/wasatext/internal/apiclient.DefaultBaseURL=https://api.example.com".
var DefaultBaseURL = "http://localhost:3000"

// DefaultTimeout bounds every request made by the client
const DefaultTimeout = 10 * time.Second

// Config holds client options
type Config struct {
	BaseURL string
}

// Client talks to the API on behalf of the stored identity
type Client struct {
	baseURL string
	store   credential.Store
	http    *http.Client
	logger  *slog.Logger
}

// New creates a client whose requests are authorized from store
func New(cfg Config, store credential.Store, logger *slog.Logger) (*Client, error) {
	if store == nil {
		return nil, errors.New("credential store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: want http(s)://host", base)
	}

	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		store:   store,
		http: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &bearerTransport{
				base:   http.DefaultTransport,
				creds:  store,
				logger: logger,
			},
		},
		logger: logger,
	}, nil
}

// BaseURL returns the API root requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-request timeout
func (c *Client) Timeout() time.Duration {
	return c.http.Timeout
}

// SetAuth stores identifier for subsequent requests. An empty identifier
// clears the stored credential.
func (c *Client) SetAuth(identifier string) error {
	if err := credential.Apply(c.store, identifier); err != nil {
		return fmt.Errorf("store identifier: %w", err)
	}
	return nil
}

// Identifier returns the stored identifier, if any
func (c *Client) Identifier() (string, bool) {
	return c.store.Identifier()
}

// NewRequest builds a request for path relative to the base URL
func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
}

// Do sends req. Transport and timeout errors come back exactly as the
// underlying http.Client reports them; non-2xx replies are not errors here.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.http.Do(req)
}

// bearerTransport sets the Authorization header from the credential store
// on every outgoing request
type bearerTransport struct {
	base   http.RoundTripper
	creds  credential.Reader
	logger *slog.Logger
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	identifier, ok := t.creds.Identifier()
	if ok {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+identifier)
	}

	t.logger.DebugContext(req.Context(), "api request",
		"method", req.Method,
		"url", req.URL.Redacted(),
		"authenticated", ok)

	return t.base.RoundTrip(req)
}
