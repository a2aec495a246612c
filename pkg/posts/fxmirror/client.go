// Package fxmirror implements the posts.ContentFetcher capability on
// top of an fx-style mirror JSON API.
package fxmirror

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/postwing/postwing/pkg/logger"
	"github.com/postwing/postwing/pkg/posts"
	"github.com/postwing/postwing/pkg/telemetry"
)

const requestTimeout = 15 * time.Second

// Client fetches single posts from an fx mirror instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the given mirror base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// Post implements posts.ContentFetcher.
func (c *Client) Post(ctx context.Context, id string) (posts.Post, error) {
	var (
		post posts.Post
		err  error
	)
	telemetry.TimeFunc(telemetry.MirrorRequestDuration, func() {
		post, err = c.fetch(ctx, id)
	})
	return post, err
}

func (c *Client) fetch(ctx context.Context, id string) (posts.Post, error) {
	url := c.baseURL + "/status/" + id
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return posts.Post{}, fmt.Errorf("building mirror request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return posts.Post{}, fmt.Errorf("mirror request for post %s: %w: %w", id, posts.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode, id); err != nil {
		logger.WarnCF("fxmirror", "Mirror returned error status", map[string]any{
			"post_id": id,
			"status":  resp.StatusCode,
		})
		return posts.Post{}, err
	}

	var body statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return posts.Post{}, fmt.Errorf("decoding mirror response for post %s: %w: %w", id, posts.ErrUnknown, err)
	}

	if body.Code != http.StatusOK {
		return posts.Post{}, bodyError(body, id)
	}
	if body.Status == nil {
		return posts.Post{}, fmt.Errorf("post %s missing from mirror response: %w", id, posts.ErrPostNotFound)
	}

	return convert(body.Status, id), nil
}

// statusError maps transport-level HTTP status codes to the error
// taxonomy. 2xx maps to nil.
func statusError(code int, id string) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return fmt.Errorf("post %s: %w", id, posts.ErrPostNotFound)
	case code == http.StatusUnauthorized:
		return fmt.Errorf("post %s: %w", id, posts.ErrPrivatePost)
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("post %s: %w", id, posts.ErrRateLimited)
	default:
		return fmt.Errorf("post %s: mirror status %d: %w", id, code, posts.ErrServiceUnavailable)
	}
}

// bodyError maps the mirror's application-level error envelope.
func bodyError(body statusResponse, id string) error {
	switch body.Message {
	case "NOT_FOUND":
		return fmt.Errorf("post %s: %w", id, posts.ErrPostNotFound)
	case "PRIVATE_TWEET":
		return fmt.Errorf("post %s: %w", id, posts.ErrPrivatePost)
	case "API_FAIL":
		return fmt.Errorf("post %s: %w", id, posts.ErrServiceUnavailable)
	default:
		return fmt.Errorf("post %s: mirror error %q: %w", id, body.Message, posts.ErrServiceUnavailable)
	}
}
