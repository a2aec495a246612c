package posts

import (
	"context"
	"fmt"

	"github.com/postwing/postwing/pkg/logger"
)

// Service composes the three provider capabilities into one facade.
// None of the upstreams alone is authoritative: the RSS mirror knows
// ids and accounts, the scraping mirror knows content. Service is
// stateless; every method is safe for concurrent use.
type Service struct {
	ids      IDResolver
	content  ContentFetcher
	accounts AccountInfo
}

// NewService builds a Service from the given providers.
func NewService(ids IDResolver, content ContentFetcher, accounts AccountInfo) *Service {
	return &Service{ids: ids, content: content, accounts: accounts}
}

// Post fetches one post by id.
func (s *Service) Post(ctx context.Context, id string) (Post, error) {
	post, err := s.content.Post(ctx, id)
	if err != nil {
		logger.WarnCF("posts", "Failed to fetch post", map[string]any{"post_id": id, "error": err.Error()})
		return Post{}, err
	}
	return post, nil
}

// Account fetches account info for a handle.
func (s *Service) Account(ctx context.Context, handle string) (Account, error) {
	account, err := s.accounts.Account(ctx, handle)
	if err != nil {
		logger.WarnCF("posts", "Failed to fetch account", map[string]any{"handle": handle, "error": err.Error()})
		return Account{}, err
	}
	return account, nil
}

// AccountExists checks whether a handle exists upstream.
func (s *Service) AccountExists(ctx context.Context, handle string) (bool, error) {
	return s.accounts.AccountExists(ctx, handle)
}

// RecentPostIDs lists up to limit recent post ids for a handle, newest
// first.
func (s *Service) RecentPostIDs(ctx context.Context, handle string, limit int) ([]string, error) {
	ids, err := s.ids.RecentPostIDs(ctx, handle, limit)
	if err != nil {
		logger.WarnCF("posts", "Failed to list recent posts", map[string]any{"handle": handle, "error": err.Error()})
		return nil, err
	}
	return ids, nil
}

// PostID extracts a post id from a URL.
func (s *Service) PostID(url string) (string, error) {
	return s.ids.PostID(url)
}

// Handle extracts an author handle from a URL.
func (s *Service) Handle(url string) (string, error) {
	return s.ids.Handle(url)
}

// Thread reconstructs the thread the post with the given id belongs to,
// as seen from the given account.
//
// The repost check dominates: when the fetched post's author differs
// from the requested account, the result is a RepostThread regardless
// of any reply or quote fields. Otherwise a reply chain is walked to
// its root (nearest parent first), a lone quote becomes a QuoteThread,
// and everything else is a SingleThread.
//
// Any fetch failure aborts the whole resolution; no partial thread is
// ever returned and no retries happen at this layer.
func (s *Service) Thread(ctx context.Context, handle, postID string) (Thread, error) {
	post, err := s.content.Post(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("fetching post %s: %w", postID, err)
	}

	if post.AuthorHandle != handle {
		logger.InfoCF("posts", "Post is a repost", map[string]any{
			"post_id":     postID,
			"author":      post.AuthorHandle,
			"reposted_by": handle,
		})
		reposter, err := s.accounts.Account(ctx, handle)
		if err != nil {
			return nil, fmt.Errorf("fetching reposter %s: %w", handle, err)
		}
		return RepostThread{Post: post, Reposter: reposter}, nil
	}

	switch {
	case post.ReplyToPostID != "":
		replies := make([]Post, 0, 4)
		currentID := post.ReplyToPostID
		// Walks until the root post. The upstream reply graph carries no
		// cycle guard, matching the upstream contract that ids reference
		// strictly older posts.
		for currentID != "" {
			parent, err := s.content.Post(ctx, currentID)
			if err != nil {
				return nil, fmt.Errorf("fetching ancestor %s: %w", currentID, err)
			}
			replies = append(replies, parent)
			currentID = parent.ReplyToPostID
		}

		var quoted *Post
		root := replies[len(replies)-1]
		if root.QuotedPostID != "" {
			// A failed quote fetch is tolerated here: the chain itself is
			// complete and the quote is decoration on the root.
			if q, err := s.content.Post(ctx, root.QuotedPostID); err == nil {
				quoted = &q
			}
		}

		logger.InfoCF("posts", "Built reply thread", map[string]any{
			"post_id":      postID,
			"chain_length": len(replies),
		})
		return ReplyThread{Post: post, Replies: replies, Quoted: quoted}, nil

	case post.QuotedPostID != "":
		original, err := s.content.Post(ctx, post.QuotedPostID)
		if err != nil {
			return nil, fmt.Errorf("fetching quoted post %s: %w", post.QuotedPostID, err)
		}
		return QuoteThread{Post: post, Original: original}, nil

	default:
		return SingleThread{Post: post}, nil
	}
}
