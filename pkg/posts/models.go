// Package posts defines the post/thread domain model, the narrow
// capability interfaces implemented by upstream mirrors, and the
// Service facade that composes them into thread resolution.
package posts

import (
	"context"
	"time"
)

// PermalinkBase is the canonical public URL prefix for posts and profiles.
const PermalinkBase = "https://x.com"

// Post is a single mirrored post. Immutable once constructed; the id is
// treated as globally unique within the working set.
type Post struct {
	ID                string
	AuthorHandle      string
	AuthorDisplayName string
	Body              string
	CreatedAt         time.Time
	MediaURLs         []string
	VideoURLs         []string
	ReplyToPostID     string
	QuotedPostID      string
	RepostOfID        string
	Language          string
}

// Permalink returns the canonical URL of the post.
func (p Post) Permalink() string {
	return PermalinkBase + "/" + p.AuthorHandle + "/status/" + p.ID
}

// IsReply reports whether the post is a reply to another post.
func (p Post) IsReply() bool { return p.ReplyToPostID != "" }

// IsQuote reports whether the post quotes another post.
func (p Post) IsQuote() bool { return p.QuotedPostID != "" }

// Account returns the author account of the post.
func (p Post) Account() Account {
	return Account{Handle: p.AuthorHandle, DisplayName: p.AuthorDisplayName}
}

// Account is a mirrored account.
type Account struct {
	Handle      string
	DisplayName string
}

// ProfileURL returns the canonical URL of the account profile.
func (a Account) ProfileURL() string { return PermalinkBase + "/" + a.Handle }

// IDResolver resolves URLs to post ids and author handles, and lists
// recent post ids for an account. Implemented by the RSS mirror.
type IDResolver interface {
	RecentPostIDs(ctx context.Context, handle string, limit int) ([]string, error)
	PostID(url string) (string, error)
	Handle(url string) (string, error)
}

// ContentFetcher fetches a single post by id. Implemented by the
// scraping mirror.
type ContentFetcher interface {
	Post(ctx context.Context, id string) (Post, error)
}

// AccountInfo fetches and verifies accounts. Implemented by the RSS
// mirror.
type AccountInfo interface {
	Account(ctx context.Context, handle string) (Account, error)
	AccountExists(ctx context.Context, handle string) (bool, error)
}
