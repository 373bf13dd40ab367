// Package dashsdk is the typed HTTP client for the WatchDeck dashboard API.
// It covers the endpoints the watcher consumes: health, upload, listing and
// delete. Requests carry a bounded timeout and are never retried; the retry
// path for this system is the next filesystem event or a manual rerun.
package dashsdk

import (
	"fmt"
	"runtime"
	"time"

	"github.com/imroc/req/v3"
	"github.com/watchdeck/watchdeck/internal/utils"
	"github.com/watchdeck/watchdeck/internal/version"
)

const (
	HeaderUserAgent     = "User-Agent"
	HeaderClientVersion = "X-Watchdeck-Version"
	HeaderClientId      = "X-Watchdeck-Client-Id"
)

const (
	routeHealth      = "/health"
	routeUpload      = "/upload"
	routeFiles       = "/api/files"
	routeContent     = "/api/content"
	routeCollections = "/api/collections"

	DefaultTimeout = 30 * time.Second
)

var userAgent = fmt.Sprintf("WatchDeck/%s (%s; %s; %s)", version.Version, version.Revision, runtime.GOOS, runtime.GOARCH)

// Credentials are HTTP basic-auth credentials attached to individual requests
// behind the protected-content gate.
type Credentials struct {
	Username string
	Password string
}

type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// Client talks to a single dashboard target.
type Client struct {
	http    *req.Client
	baseURL string
}

// New builds a client for the given target base URL.
func New(baseURL string, opts ...Option) *Client {
	httpClient := req.C().
		SetBaseURL(baseURL).
		SetTimeout(DefaultTimeout).
		SetUserAgent(userAgent).
		SetCommonHeader(HeaderClientVersion, version.Version).
		SetCommonHeader(HeaderClientId, utils.HWID).
		SetCommonErrorResult(&APIError{}).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal)

	c := &Client{
		http:    httpClient,
		baseURL: baseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the target base URL this client was built for.
func (c *Client) BaseURL() string {
	return c.baseURL
}
