// Package registry queries a package index for per-release metadata.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultURLTemplate is the public package index's per-release JSON endpoint.
const DefaultURLTemplate = "https://pypi.org/pypi/{package_name}/{package_version}/json"

// DefaultTimeout bounds one metadata request. Long manifests serialize many
// round trips, so this is configurable rather than hard-coded.
const DefaultTimeout = 30 * time.Second

// ErrNotFound is returned when the registry has no metadata for the requested
// package and version, or when the request could not be completed at all.
// Callers treat either case as permanent absence; there are no retries.
var ErrNotFound = errors.New("package metadata not found")

// Config configures a Client. It is built once at startup and passed in
// explicitly; the client never reads the process environment at call time.
type Config struct {
	// URLTemplate must contain {package_name} and {package_version}
	// placeholders.
	URLTemplate string

	// ProxyURL routes registry requests through an HTTPS proxy when set.
	// It applies to this transport only.
	ProxyURL string

	Timeout   time.Duration
	UserAgent string
}

// Client looks up package metadata over HTTP.
type Client struct {
	cfg  Config
	http *http.Client
	log  zerolog.Logger
}

// NewClient builds a Client from an explicit Config.
func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.URLTemplate == "" {
		cfg.URLTemplate = DefaultURLTemplate
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.ProxyURL != "" {
		proxy, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", cfg.ProxyURL, err)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		log: log,
	}, nil
}

// Lookup fetches the metadata document for one package version. Every call
// is one network request; results are not cached.
//
// All failure modes degrade to an error wrapping ErrNotFound rather than
// aborting the run: timeouts, DNS failures and non-2xx statuses all mean the
// same thing to the resolver, which proceeds with partial component data.
func (c *Client) Lookup(ctx context.Context, name, version string) (*Metadata, error) {
	reqURL := strings.NewReplacer(
		"{package_name}", url.PathEscape(name),
		"{package_version}", url.PathEscape(version),
	).Replace(c.cfg.URLTemplate)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s==%s: building request: %v", ErrNotFound, name, version, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	c.log.Debug().Str("url", reqURL).Msg("querying registry")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s==%s: %v", ErrNotFound, name, version, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s==%s: HTTP %d", ErrNotFound, name, version, resp.StatusCode)
	}

	var meta Metadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("%w: %s==%s: decoding response: %v", ErrNotFound, name, version, err)
	}
	return &meta, nil
}
