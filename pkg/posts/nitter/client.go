// Package nitter resolves post ids and account info from a Nitter-style
// RSS mirror. It backs the IDResolver and AccountInfo capabilities; post
// content itself comes from the scraping mirror.
package nitter

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/postwing/postwing/pkg/posts"
)

const requestTimeout = 15 * time.Second

var (
	statusIDRe = regexp.MustCompile(`/status/(\d+)`)
	postURLRe  = regexp.MustCompile(`https?://(?:www\.)?(?:twitter|x)\.com/\w+/status/(\d+)`)
	handleRe   = regexp.MustCompile(`https?://(?:www\.)?(?:twitter|x)\.com/(\w+)`)
)

// Client talks to a single Nitter instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var (
	_ posts.IDResolver  = (*Client)(nil)
	_ posts.AccountInfo = (*Client)(nil)
)

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// RecentPostIDs returns up to limit post ids from the account's feed,
// newest first. Items whose link carries no status id are skipped.
func (c *Client) RecentPostIDs(ctx context.Context, handle string, limit int) ([]string, error) {
	f, err := c.fetchFeed(ctx, handle)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	ids := make([]string, 0, limit)
	for _, it := range f.Channel.Items {
		m := statusIDRe.FindStringSubmatch(it.Link)
		if m == nil {
			continue
		}
		if _, dup := seen[m[1]]; dup {
			continue
		}
		seen[m[1]] = struct{}{}
		ids = append(ids, m[1])
		if len(ids) == limit {
			break
		}
	}
	return ids, nil
}

// Account fetches the account behind handle. The display name comes from
// the feed title, which the mirror formats as "Name / @handle".
func (c *Client) Account(ctx context.Context, handle string) (posts.Account, error) {
	f, err := c.fetchFeed(ctx, handle)
	if err != nil {
		return posts.Account{}, err
	}

	name := f.Channel.Title
	if i := strings.LastIndex(name, " / @"); i >= 0 {
		name = name[:i]
	}
	return posts.Account{Handle: handle, DisplayName: name}, nil
}

// AccountExists reports whether the mirror knows the account. A missing
// account is a false result, not an error.
func (c *Client) AccountExists(ctx context.Context, handle string) (bool, error) {
	_, err := c.fetchFeed(ctx, handle)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, posts.ErrAccountNotFound) {
		return false, nil
	}
	return false, err
}

// PostID extracts the post id from a post URL.
func (c *Client) PostID(url string) (string, error) {
	m := postURLRe.FindStringSubmatch(url)
	if m == nil {
		return "", fmt.Errorf("no post id in %q: %w", url, posts.ErrPostNotFound)
	}
	return m[1], nil
}

// Handle extracts the account handle from a profile or post URL.
func (c *Client) Handle(url string) (string, error) {
	m := handleRe.FindStringSubmatch(url)
	if m == nil {
		return "", fmt.Errorf("no account handle in %q: %w", url, posts.ErrAccountNotFound)
	}
	return m[1], nil
}

func (c *Client) fetchFeed(ctx context.Context, handle string) (*feed, error) {
	url := c.baseURL + "/" + handle + "/with_replies/rss"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request for %s: %w", handle, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request for %s: %w: %w", handle, posts.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("account %s: %w", handle, posts.ErrAccountNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("account %s: %w", handle, posts.ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("account %s: mirror status %d: %w", handle, resp.StatusCode, posts.ErrServiceUnavailable)
	}

	var f feed
	if err := xml.NewDecoder(resp.Body).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode feed for %s: %w: %w", handle, posts.ErrServiceUnavailable, err)
	}
	return &f, nil
}
