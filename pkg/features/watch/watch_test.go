package watch

import (
	"context"
	"fmt"
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postwing/postwing/pkg/chatstore"
	"github.com/postwing/postwing/pkg/features/mirror"
	"github.com/postwing/postwing/pkg/localization"
	"github.com/postwing/postwing/pkg/posts"
	"github.com/postwing/postwing/pkg/telegram"
)

type sentMessage struct {
	chat int64
	text string
}

type fakeSender struct {
	sent []sentMessage
}

func (f *fakeSender) SendMessage(_ context.Context, p *telego.SendMessageParams) (*telego.Message, error) {
	f.sent = append(f.sent, sentMessage{chat: p.ChatID.ID, text: p.Text})
	return &telego.Message{}, nil
}

func (f *fakeSender) SendMediaGroup(_ context.Context, _ *telego.SendMediaGroupParams) ([]telego.Message, error) {
	return nil, nil
}

func (f *fakeSender) SendVideo(_ context.Context, _ *telego.SendVideoParams) (*telego.Message, error) {
	return &telego.Message{}, nil
}

func (f *fakeSender) SendChatAction(_ context.Context, _ *telego.SendChatActionParams) error {
	return nil
}

func (f *fakeSender) DeleteMessage(_ context.Context, _ *telego.DeleteMessageParams) error {
	return nil
}

func (f *fakeSender) EditMessageText(_ context.Context, _ *telego.EditMessageTextParams) (*telego.Message, error) {
	return &telego.Message{}, nil
}

func (f *fakeSender) AnswerCallbackQuery(_ context.Context, _ *telego.AnswerCallbackQueryParams) error {
	return nil
}

func (f *fakeSender) AnswerInlineQuery(_ context.Context, _ *telego.AnswerInlineQueryParams) error {
	return nil
}

type fakeProvider struct {
	recent map[string][]string
	posts  map[string]posts.Post
	known  map[string]bool
}

func (f *fakeProvider) RecentPostIDs(_ context.Context, handle string, limit int) ([]string, error) {
	ids := f.recent[handle]
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (f *fakeProvider) PostID(string) (string, error) { return "", posts.ErrPostNotFound }

func (f *fakeProvider) Handle(string) (string, error) { return "", posts.ErrAccountNotFound }

func (f *fakeProvider) Post(_ context.Context, id string) (posts.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return posts.Post{}, fmt.Errorf("post %s: %w", id, posts.ErrPostNotFound)
	}
	return p, nil
}

func (f *fakeProvider) Account(_ context.Context, handle string) (posts.Account, error) {
	if !f.known[handle] {
		return posts.Account{}, fmt.Errorf("account %s: %w", handle, posts.ErrAccountNotFound)
	}
	return posts.Account{Handle: handle}, nil
}

func (f *fakeProvider) AccountExists(_ context.Context, handle string) (bool, error) {
	return f.known[handle], nil
}

func newFixture(t *testing.T, provider *fakeProvider) (*Executor, *Watcher, *fakeSender, chatstore.Store) {
	t.Helper()
	loc, err := localization.New()
	require.NoError(t, err)

	sender := &fakeSender{}
	store := chatstore.NewMemoryStore()
	service := posts.NewService(provider, provider, provider)
	renderer := mirror.NewRenderer(sender, loc, nil, nil)

	executor := NewExecutor(sender, store, loc, service)
	watcher := NewWatcher(store, service, renderer, loc, "* * * * *", 5)
	return executor, watcher, sender, store
}

func TestExecutor_WatchAndUnwatch(t *testing.T) {
	e, _, sender, store := newFixture(t, &fakeProvider{known: map[string]bool{"alice": true}})
	ctx := context.Background()

	assert.True(t, e.CanHandle(ctx, telegram.MessageUpdate{Command: telegram.CommandWatch}))
	assert.True(t, e.CanHandle(ctx, telegram.MessageUpdate{Command: telegram.CommandUnwatch}))
	assert.False(t, e.CanHandle(ctx, telegram.MessageUpdate{Command: telegram.CommandStart}))

	require.NoError(t, e.Handle(ctx, telegram.MessageUpdate{
		Chat: 10, Command: telegram.CommandWatch, CommandArg: "@alice",
	}))
	handles, err := store.WatchesForChat(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, handles, "leading @ is stripped")
	assert.Equal(t, "Now watching @alice. New posts will show up here.", sender.sent[0].text)

	require.NoError(t, e.Handle(ctx, telegram.MessageUpdate{
		Chat: 10, Command: telegram.CommandUnwatch, CommandArg: "alice",
	}))
	handles, err = store.WatchesForChat(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, handles)
}

func TestExecutor_UnknownAccount(t *testing.T) {
	e, _, sender, store := newFixture(t, &fakeProvider{})
	ctx := context.Background()

	require.NoError(t, e.Handle(ctx, telegram.MessageUpdate{
		Chat: 10, Command: telegram.CommandWatch, CommandArg: "nobody",
	}))

	handles, err := store.WatchesForChat(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, handles)
	assert.Equal(t, "Account @nobody was not found.", sender.sent[0].text)
}

func TestExecutor_MissingArgShowsUsage(t *testing.T) {
	e, _, sender, _ := newFixture(t, &fakeProvider{})

	require.NoError(t, e.Handle(context.Background(), telegram.MessageUpdate{
		Chat: 10, Command: telegram.CommandWatch,
	}))
	assert.Equal(t, "Usage: /watch <account handle>", sender.sent[0].text)
}

func TestWatcher_FirstCycleOnlyRecordsBaseline(t *testing.T) {
	provider := &fakeProvider{
		recent: map[string][]string{"alice": {"300", "200", "100"}},
		posts:  map[string]posts.Post{},
	}
	_, w, sender, store := newFixture(t, provider)
	ctx := context.Background()
	require.NoError(t, store.AddWatch(ctx, 10, "alice"))

	w.Cycle(ctx)

	assert.Empty(t, sender.sent, "no replay of the existing feed")
	last, err := store.LastSeenPostID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "300", last)
}

func TestWatcher_DeliversFreshPostsOldestFirst(t *testing.T) {
	provider := &fakeProvider{
		recent: map[string][]string{"alice": {"300", "200", "100"}},
		posts: map[string]posts.Post{
			"200": {ID: "200", AuthorHandle: "alice", AuthorDisplayName: "Alice", Body: "two"},
			"300": {ID: "300", AuthorHandle: "alice", AuthorDisplayName: "Alice", Body: "three"},
		},
	}
	_, w, sender, store := newFixture(t, provider)
	ctx := context.Background()
	require.NoError(t, store.AddWatch(ctx, 10, "alice"))
	require.NoError(t, store.SetLastSeenPostID(ctx, "alice", "100"))

	w.Cycle(ctx)

	require.Len(t, sender.sent, 2)
	assert.Contains(t, sender.sent[0].text, "two")
	assert.Contains(t, sender.sent[1].text, "three")
	assert.Contains(t, sender.sent[0].text, "New post from Alice:")

	last, err := store.LastSeenPostID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "300", last)
}

func TestWatcher_FansOutToAllSubscribedChats(t *testing.T) {
	provider := &fakeProvider{
		recent: map[string][]string{"alice": {"200", "100"}},
		posts: map[string]posts.Post{
			"200": {ID: "200", AuthorHandle: "alice", AuthorDisplayName: "Alice", Body: "two"},
		},
	}
	_, w, sender, store := newFixture(t, provider)
	ctx := context.Background()
	require.NoError(t, store.AddWatch(ctx, 10, "alice"))
	require.NoError(t, store.AddWatch(ctx, 11, "alice"))
	require.NoError(t, store.SetLastSeenPostID(ctx, "alice", "100"))

	w.Cycle(ctx)

	require.Len(t, sender.sent, 2)
	chats := []int64{sender.sent[0].chat, sender.sent[1].chat}
	assert.ElementsMatch(t, []int64{10, 11}, chats)
}

func TestFreshIDs(t *testing.T) {
	assert.Equal(t, []string{"300", "200"}, freshIDs([]string{"300", "200", "100"}, "100"))
	assert.Empty(t, freshIDs([]string{"300", "200"}, "300"))
	assert.Equal(t, []string{"300", "200"}, freshIDs([]string{"300", "200"}, "gone"),
		"aged-out marker treats the whole feed as fresh")
}

func TestWatcher_RunRejectsBadSchedule(t *testing.T) {
	_, w, _, _ := newFixture(t, &fakeProvider{})
	w.schedule = "not a cron"
	assert.Error(t, w.Run(context.Background()))
}
