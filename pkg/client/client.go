// Package client is the typed HTTP SDK for the building service API.
//
// Each managed collection is exposed as a types.Collection under
// /api/v1/<plural>:
//
//	GET    /api/v1/residents        list, {"items": [...], "total": n}
//	POST   /api/v1/residents        create
//	PATCH  /api/v1/residents/{id}   partial update
//	DELETE /api/v1/residents/{id}   delete
//
// Every method accepts a context.Context for cancellation and timeouts.
// Non-2xx responses are parsed as RFC 9457 problem details and returned as
// *types.RemoteError, unwrapped, so the service's message reaches the caller
// verbatim.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/concierge/pkg/types"
)

// APIPrefix is the path prefix of every collection route.
const APIPrefix = "/api/v1"

// DefaultTimeout is the per-request timeout used when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Config holds the client configuration.
type Config struct {
	// BaseURL is the root URL of the API (e.g., "https://building.example.com").
	BaseURL string

	// Token is the Bearer token for authentication. If empty, requests are
	// sent without authorization.
	Token string

	// Timeout is the per-request timeout. Defaults to DefaultTimeout.
	Timeout time.Duration

	// HTTPClient is an optional custom http.Client. If nil, a default is used.
	HTTPClient *http.Client
}

// Client talks to the building service.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client
}

// New creates a Client. BaseURL is required.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("client: BaseURL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parsing BaseURL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("client: unsupported scheme %q", base.Scheme)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{base: base, token: cfg.Token, http: hc}, nil
}

// NewFromConfig creates a Client for an http backend configuration.
func NewFromConfig(cfg types.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Backend != types.BackendHTTP {
		return nil, fmt.Errorf("%w: %s", types.ErrBackendUnknown, cfg.Backend)
	}
	return New(Config{BaseURL: cfg.BaseURL, Token: cfg.Token, Timeout: cfg.Timeout})
}

// Residents returns the residents collection.
func (c *Client) Residents() types.Collection[types.Resident, types.CreateResidentRequest, types.UpdateResidentRequest] {
	return NewCollection[types.Resident, types.CreateResidentRequest, types.UpdateResidentRequest](c, types.ResidentsCollection)
}

// Packages returns the packages collection.
func (c *Client) Packages() types.Collection[types.Package, types.CreatePackageRequest, types.UpdatePackageRequest] {
	return NewCollection[types.Package, types.CreatePackageRequest, types.UpdatePackageRequest](c, types.PackagesCollection)
}

// Notifications returns the notifications collection.
func (c *Client) Notifications() types.Collection[types.Notification, types.CreateNotificationRequest, types.UpdateNotificationRequest] {
	return NewCollection[types.Notification, types.CreateNotificationRequest, types.UpdateNotificationRequest](c, types.NotificationsCollection)
}

// Posts returns the social posts collection.
func (c *Client) Posts() types.Collection[types.Post, types.CreatePostRequest, types.UpdatePostRequest] {
	return NewCollection[types.Post, types.CreatePostRequest, types.UpdatePostRequest](c, types.PostsCollection)
}

// do sends a JSON request and decodes a JSON response into out when out is
// non-nil. Non-2xx responses return *types.RemoteError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/problem+json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// parseError reads a problem details body. Detail is preferred over Title;
// a body that is not problem details contributes its text when short.
func parseError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	remote := &types.RemoteError{Status: resp.StatusCode}

	var problem types.ProblemDetail
	if err := json.Unmarshal(data, &problem); err == nil {
		switch {
		case problem.Detail != "":
			remote.Message = problem.Detail
		case problem.Title != "":
			remote.Message = problem.Title
		}
		return remote
	}

	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		text := strings.TrimSpace(string(data))
		if len(text) <= 200 {
			remote.Message = text
		}
	}
	return remote
}
