package posts

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves posts from a fixed map and fails for unknown ids.
type fakeFetcher struct {
	posts map[string]Post
	fail  map[string]error
	calls []string
}

func (f *fakeFetcher) Post(_ context.Context, id string) (Post, error) {
	f.calls = append(f.calls, id)
	if err, ok := f.fail[id]; ok {
		return Post{}, err
	}
	if p, ok := f.posts[id]; ok {
		return p, nil
	}
	return Post{}, fmt.Errorf("post %s: %w", id, ErrPostNotFound)
}

type fakeAccounts struct {
	accounts map[string]Account
}

func (f *fakeAccounts) Account(_ context.Context, handle string) (Account, error) {
	if a, ok := f.accounts[handle]; ok {
		return a, nil
	}
	return Account{}, fmt.Errorf("account %s: %w", handle, ErrAccountNotFound)
}

func (f *fakeAccounts) AccountExists(_ context.Context, handle string) (bool, error) {
	_, ok := f.accounts[handle]
	return ok, nil
}

type fakeIDs struct{}

func (fakeIDs) RecentPostIDs(context.Context, string, int) ([]string, error) { return nil, nil }
func (fakeIDs) PostID(string) (string, error)                                { return "", ErrPostNotFound }
func (fakeIDs) Handle(string) (string, error)                                { return "", ErrAccountNotFound }

func newTestService(fetcher *fakeFetcher, accounts *fakeAccounts) *Service {
	if accounts == nil {
		accounts = &fakeAccounts{accounts: map[string]Account{}}
	}
	return NewService(fakeIDs{}, fetcher, accounts)
}

func post(id, handle string, mutate ...func(*Post)) Post {
	p := Post{ID: id, AuthorHandle: handle, AuthorDisplayName: handle, Body: "post " + id}
	for _, m := range mutate {
		m(&p)
	}
	return p
}

func TestThread_Single(t *testing.T) {
	fetcher := &fakeFetcher{posts: map[string]Post{
		"100": post("100", "alice"),
	}}

	thread, err := newTestService(fetcher, nil).Thread(context.Background(), "alice", "100")
	require.NoError(t, err)

	single, ok := thread.(SingleThread)
	require.True(t, ok, "expected SingleThread, got %T", thread)
	assert.Equal(t, "100", single.Post.ID)
}

func TestThread_RepostDominatesReplyAndQuote(t *testing.T) {
	// The fetched post is a reply AND a quote, but its author differs
	// from the requested account: repost detection must win.
	fetcher := &fakeFetcher{posts: map[string]Post{
		"200": post("200", "alice", func(p *Post) {
			p.ReplyToPostID = "100"
			p.QuotedPostID = "50"
		}),
	}}
	accounts := &fakeAccounts{accounts: map[string]Account{
		"bob": {Handle: "bob", DisplayName: "Bob"},
	}}

	thread, err := newTestService(fetcher, accounts).Thread(context.Background(), "bob", "200")
	require.NoError(t, err)

	repost, ok := thread.(RepostThread)
	require.True(t, ok, "expected RepostThread, got %T", thread)
	assert.Equal(t, "alice", repost.Post.AuthorHandle)
	assert.Equal(t, "bob", repost.Reposter.Handle)
}

func TestThread_RepostUnknownReposterFails(t *testing.T) {
	fetcher := &fakeFetcher{posts: map[string]Post{
		"200": post("200", "alice"),
	}}

	_, err := newTestService(fetcher, nil).Thread(context.Background(), "ghost", "200")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestThread_ReplyChainOrderedNearestParentFirst(t *testing.T) {
	// root(100) <- reply1(101) <- reply2(102)
	fetcher := &fakeFetcher{posts: map[string]Post{
		"100": post("100", "alice"),
		"101": post("101", "alice", func(p *Post) { p.ReplyToPostID = "100" }),
		"102": post("102", "alice", func(p *Post) { p.ReplyToPostID = "101" }),
	}}

	thread, err := newTestService(fetcher, nil).Thread(context.Background(), "alice", "102")
	require.NoError(t, err)

	reply, ok := thread.(ReplyThread)
	require.True(t, ok, "expected ReplyThread, got %T", thread)
	assert.Equal(t, "102", reply.Post.ID)
	require.Len(t, reply.Replies, 2)
	assert.Equal(t, "101", reply.Replies[0].ID, "index 0 must be the immediate parent")
	assert.Equal(t, "100", reply.Replies[1].ID, "last index must be the chain root")
	assert.Nil(t, reply.Quoted)
}

func TestThread_QuoteOfRootAttachesToReplyThread(t *testing.T) {
	fetcher := &fakeFetcher{posts: map[string]Post{
		"50":  post("50", "carol"),
		"100": post("100", "alice", func(p *Post) { p.QuotedPostID = "50" }),
		"101": post("101", "alice", func(p *Post) { p.ReplyToPostID = "100" }),
		"102": post("102", "alice", func(p *Post) { p.ReplyToPostID = "101" }),
	}}

	thread, err := newTestService(fetcher, nil).Thread(context.Background(), "alice", "102")
	require.NoError(t, err)

	reply, ok := thread.(ReplyThread)
	require.True(t, ok)
	require.NotNil(t, reply.Quoted)
	assert.Equal(t, "50", reply.Quoted.ID)
}

func TestThread_QuoteOfRootFetchFailureIsTolerated(t *testing.T) {
	fetcher := &fakeFetcher{
		posts: map[string]Post{
			"100": post("100", "alice", func(p *Post) { p.QuotedPostID = "50" }),
			"101": post("101", "alice", func(p *Post) { p.ReplyToPostID = "100" }),
		},
		fail: map[string]error{"50": fmt.Errorf("post 50: %w", ErrPrivatePost)},
	}

	thread, err := newTestService(fetcher, nil).Thread(context.Background(), "alice", "101")
	require.NoError(t, err)

	reply, ok := thread.(ReplyThread)
	require.True(t, ok)
	assert.Nil(t, reply.Quoted, "quote of root is decoration; its failure must not abort the chain")
}

func TestThread_AncestorFetchFailureAborts(t *testing.T) {
	fetcher := &fakeFetcher{
		posts: map[string]Post{
			"101": post("101", "alice", func(p *Post) { p.ReplyToPostID = "100" }),
			"102": post("102", "alice", func(p *Post) { p.ReplyToPostID = "101" }),
		},
		fail: map[string]error{"100": fmt.Errorf("post 100: %w", ErrServiceUnavailable)},
	}

	thread, err := newTestService(fetcher, nil).Thread(context.Background(), "alice", "102")
	require.Error(t, err)
	assert.Nil(t, thread, "no partial thread on ancestor failure")
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestThread_Quote(t *testing.T) {
	fetcher := &fakeFetcher{posts: map[string]Post{
		"50":  post("50", "carol"),
		"200": post("200", "alice", func(p *Post) { p.QuotedPostID = "50" }),
	}}

	thread, err := newTestService(fetcher, nil).Thread(context.Background(), "alice", "200")
	require.NoError(t, err)

	quote, ok := thread.(QuoteThread)
	require.True(t, ok, "expected QuoteThread, got %T", thread)
	assert.Equal(t, "50", quote.Original.ID)
}

func TestThread_QuoteFetchFailureAborts(t *testing.T) {
	fetcher := &fakeFetcher{
		posts: map[string]Post{
			"200": post("200", "alice", func(p *Post) { p.QuotedPostID = "50" }),
		},
	}

	_, err := newTestService(fetcher, nil).Thread(context.Background(), "alice", "200")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestThread_RootPostFetchFailureAborts(t *testing.T) {
	fetcher := &fakeFetcher{posts: map[string]Post{}}

	_, err := newTestService(fetcher, nil).Thread(context.Background(), "alice", "404")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestPermalinks(t *testing.T) {
	p := post("42", "alice")
	assert.Equal(t, "https://x.com/alice/status/42", p.Permalink())
	assert.Equal(t, "https://x.com/alice", p.Account().ProfileURL())
}
