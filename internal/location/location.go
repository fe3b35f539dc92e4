// SPDX-License-Identifier: MPL-2.0

package location

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"
)

const (
	// PackagingAreaID is the resource area of the packaging service.
	PackagingAreaID = "7ab4e64e-c4d8-4f50-ae73-5ef2e21642a5"

	apiVersion      = "5.0-preview.1"
	defaultTries    = 3
	maxResponseSize = 1 << 20
)

// Protocol constants.
const (
	ProtocolV2 Protocol = iota + 2
	ProtocolV3
)

var (
	// ErrRequestFailed is returned when a location request does not succeed.
	ErrRequestFailed = errors.New("location request failed")
	// ErrInvalidResponse is returned when a response lacks the expected fields.
	ErrInvalidResponse = errors.New("invalid location response")
)

type (
	// Protocol is the NuGet feed protocol version.
	Protocol int

	// Client talks to the location and feed endpoints.
	Client struct {
		httpClient *http.Client
		newBackOff func() backoff.BackOff
		tries      uint
		logger     *log.Logger
	}

	// Option configures a Client.
	Option func(*Client)

	// PackagingLocation holds the packaging service URIs.
	PackagingLocation struct {
		// DefaultURI is the primary packaging URI.
		DefaultURI string
		// URIs are all URI prefixes the packaging service answers on.
		URIs []string
	}

	// StatusError is returned for a non-2xx response.
	StatusError struct {
		URL        string
		StatusCode int
	}
)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithBackOff sets the retry schedule and the number of attempts.
func WithBackOff(newBackOff func() backoff.BackOff, tries uint) Option {
	return func(cl *Client) {
		cl.newBackOff = newBackOff
		cl.tries = tries
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(cl *Client) { cl.logger = logger }
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		tries:      defaultTries,
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Unwrap returns ErrRequestFailed for use with errors.Is.
func (e *StatusError) Unwrap() error { return ErrRequestFailed }

// String returns "v2" or "v3".
func (p Protocol) String() string {
	return fmt.Sprintf("v%d", int(p))
}

// PackagingURIs looks up the packaging service of the given collection.
// A failure to list the additional access points is not an error.
func (c *Client) PackagingURIs(ctx context.Context, collectionURI, token string) (*PackagingLocation, error) {
	areaURL := joinURL(collectionURI, "_apis/resourceAreas", PackagingAreaID)
	body, err := c.get(ctx, areaURL, token)
	if err != nil {
		return nil, err
	}
	locationURL := gjson.GetBytes(body, "locationUrl").String()
	if locationURL == "" {
		return nil, fmt.Errorf("%w: %s has no locationUrl", ErrInvalidResponse, areaURL)
	}

	loc := &PackagingLocation{DefaultURI: locationURL, URIs: []string{locationURL}}

	connURL := joinURL(locationURL, "_apis/connectionData")
	body, err = c.get(ctx, connURL, token)
	if err != nil {
		c.logger.Debug("Unable to list packaging access points", "error", err)
		return loc, nil
	}
	for _, ap := range gjson.GetBytes(body, "locationServiceData.accessMappings.#.accessPoint").Array() {
		if uri := ap.String(); uri != "" && !slices.Contains(loc.URIs, uri) {
			loc.URIs = append(loc.URIs, uri)
		}
	}
	c.logger.Debug("Discovered packaging URIs", "uris", loc.URIs)
	return loc, nil
}

// FeedRegistryURL returns the push URL of a feed. feed is either "name" or
// "project/name".
func (c *Client) FeedRegistryURL(ctx context.Context, packagingURI, token, feed string, protocol Protocol) (string, error) {
	project, name, scoped := strings.Cut(feed, "/")
	if !scoped {
		project, name = "", feed
	}
	if name == "" {
		return "", fmt.Errorf("%w: empty feed name", ErrInvalidResponse)
	}

	scope := packagingURI
	if project != "" {
		scope = joinURL(packagingURI, url.PathEscape(project))
	}

	feedURL := joinURL(scope, "_apis/packaging/feeds", url.PathEscape(name))
	body, err := c.get(ctx, feedURL, token)
	if err != nil {
		return "", err
	}
	if canonical := gjson.GetBytes(body, "name").String(); canonical != "" {
		name = canonical
	}

	base := joinURL(scope, "_packaging", url.PathEscape(name), "nuget")
	if protocol == ProtocolV2 {
		return base + "/v2", nil
	}
	return base + "/v3/index.json", nil
}

// get performs a GET with retries. 4xx responses other than 429 are not retried.
func (c *Client) get(ctx context.Context, rawURL, token string) ([]byte, error) {
	op := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, withAPIVersion(rawURL), http.NoBody)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			statusErr := &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return nil, statusErr
			}
			return nil, backoff.Permanent(statusErr)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return nil, err
		}
		if !gjson.ValidBytes(body) {
			return nil, backoff.Permanent(fmt.Errorf("%w: %s returned malformed JSON", ErrInvalidResponse, rawURL))
		}
		return body, nil
	}

	body, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(c.tries),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.logger.Debug("Retrying location request", "url", rawURL, "error", err, "wait", wait)
		}),
	)
	if err != nil {
		if errors.Is(err, ErrRequestFailed) || errors.Is(err, ErrInvalidResponse) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: GET %s: %w", ErrRequestFailed, rawURL, err)
	}
	return body, nil
}

func joinURL(base string, parts ...string) string {
	return strings.TrimRight(base, "/") + "/" + strings.Join(parts, "/")
}

func withAPIVersion(rawURL string) string {
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + "api-version=" + apiVersion
}
