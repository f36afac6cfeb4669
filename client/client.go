// Package client implements the HTTP capability the rest of the SDK is built
// on: a thin, retrying JSON transport bound to a single LabHub deployment.
// Higher layers only see the Doer interface, so any transport with the same
// shape (including test fakes) is pluggable.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	cleanhttp "github.com/hashicorp/go-cleanhttp"
	retryablehttp "github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// Environment overrides honored by DefaultConfig.
const (
	EnvAddress       = "LABHUB_ADDR"
	EnvAPIKey        = "LABHUB_API_KEY"
	EnvClientTimeout = "LABHUB_CLIENT_TIMEOUT"
	EnvMaxRetries    = "LABHUB_MAX_RETRIES"
)

// Doer is the transport capability consumed by repositories and entities.
// Only Get is needed for paged listings; Post exists for the write paths.
type Doer interface {
	Get(ctx context.Context, path string, query url.Values) (*Response, error)
	Post(ctx context.Context, path string, body any) (*Response, error)
}

// Response is the transport-agnostic view of a completed call: status,
// headers and the raw body. Decoding is left to the caller because the
// expected shape (object vs array) depends on the endpoint.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

// Config controls how a Client is built. Zero values fall back to the
// defaults from DefaultConfig.
type Config struct {
	// Address is the base URL of the LabHub deployment, e.g.
	// "https://api.labhub.io". Path segments are preserved and prefixed to
	// every request path.
	Address string `validate:"required,url"`

	// APIKey is sent as a bearer token on every request. Optional; some
	// deployments sit behind their own auth proxy.
	APIKey string

	// HttpClient is the underlying HTTP client. A pooled clean client is
	// used when nil; override only if you need custom TLS or proxies.
	HttpClient *http.Client

	// Timeout applies to the whole request including retries.
	Timeout time.Duration

	// MaxRetries controls retrying of transient failures (connection errors
	// and 5xx). Set to 0 to disable. Retrying lives here, in the transport;
	// the repositories above never retry on their own.
	MaxRetries int `validate:"gte=0"`

	// Backoff strategy between retries; linear jitter when nil.
	Backoff retryablehttp.Backoff

	// Headers are extra headers added to every request.
	Headers http.Header
}

// DefaultConfig returns a configuration pointed at the public API, with
// environment overrides applied. It is safe to modify the returned value.
func DefaultConfig() (*Config, error) {
	cfg := &Config{
		Address:    "https://api.labhub.io",
		HttpClient: cleanhttp.DefaultPooledClient(),
		Timeout:    60 * time.Second,
		MaxRetries: 2,
		Backoff:    retryablehttp.LinearJitterBackoff,
		Headers:    make(http.Header),
	}
	if v := os.Getenv(EnvAddress); v != "" {
		cfg.Address = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv(EnvClientTimeout); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("could not parse %s: %w", EnvClientTimeout, err)
		}
		cfg.Timeout = time.Duration(seconds) * time.Second
	}
	if v := os.Getenv(EnvMaxRetries); v != "" {
		retries, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("could not parse %s: %w", EnvMaxRetries, err)
		}
		cfg.MaxRetries = retries
	}
	return cfg, nil
}

// Client is the concrete Doer. A single Client may be shared by any number
// of repositories and result sequences; it holds no per-call state.
type Client struct {
	base    *url.URL
	apiKey  string
	headers http.Header
	inner   *retryablehttp.Client
	log     zerolog.Logger
}

var _ Doer = (*Client)(nil)

// New builds a Client from cfg. The logger is used for debug-level request
// tracing only; pass zerolog.Nop() if you don't care.
func New(cfg *Config, logger zerolog.Logger) (*Client, error) {
	if cfg == nil {
		var err error
		cfg, err = DefaultConfig()
		if err != nil {
			return nil, err
		}
	}

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return nil, fmt.Errorf("client config validation error: %w", err)
	}

	base, err := url.Parse(strings.TrimSuffix(cfg.Address, "/"))
	if err != nil {
		return nil, fmt.Errorf("could not parse address %q: %w", cfg.Address, err)
	}

	httpClient := cfg.HttpClient
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
	}
	if cfg.Timeout > 0 {
		httpClient.Timeout = cfg.Timeout
	}

	backoff := cfg.Backoff
	if backoff == nil {
		backoff = retryablehttp.LinearJitterBackoff
	}

	inner := retryablehttp.NewClient()
	inner.HTTPClient = httpClient
	inner.RetryMax = cfg.MaxRetries
	inner.Backoff = backoff
	inner.ErrorHandler = retryablehttp.PassthroughErrorHandler
	inner.Logger = nil

	l := logger.With().Str("module", "client").Str("host", base.Host).Logger()
	return &Client{
		base:    base,
		apiKey:  cfg.APIKey,
		headers: cfg.Headers,
		inner:   inner,
		log:     l,
	}, nil
}

// Get issues a GET to path under the base address. A non-2xx status is
// translated to an *APIError; the body is returned raw otherwise.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	u := c.resolve(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("could not build request for %s: %w", path, err)
	}
	return c.do(req)
}

// Post issues a POST with body marshaled as JSON.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("could not encode request body for %s: %w", path, err)
	}

	u := c.resolve(path)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("could not build request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *retryablehttp.Request) (*Response, error) {
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.inner.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("request failed")
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("request complete")

	if err := statusError(resp.StatusCode, body); err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// resolve joins path onto the base URL, keeping any base path prefix.
func (c *Client) resolve(path string) *url.URL {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	return &u
}
