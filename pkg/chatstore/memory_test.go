package chatstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_ChatLanguage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	lang, err := s.ChatLanguage(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, lang, "unset language reads back empty")

	require.NoError(t, s.SetChatLanguage(ctx, 1, "uk"))
	require.NoError(t, s.SetChatLanguage(ctx, 1, "en"))

	lang, err = s.ChatLanguage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "en", lang)

	lang, err = s.ChatLanguage(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, lang)
}

func TestMemoryStore_Watches(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.AddWatch(ctx, 1, "alice"))
	require.NoError(t, s.AddWatch(ctx, 1, "alice"), "duplicate watch is a no-op")
	require.NoError(t, s.AddWatch(ctx, 1, "bob"))
	require.NoError(t, s.AddWatch(ctx, 2, "alice"))

	handles, err := s.WatchesForChat(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, handles)

	all, err := s.Watches(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Watch{{1, "alice"}, {2, "alice"}, {1, "bob"}}, all)

	require.NoError(t, s.RemoveWatch(ctx, 1, "alice"))
	require.NoError(t, s.RemoveWatch(ctx, 3, "nobody"), "removing an absent watch is a no-op")

	handles, err = s.WatchesForChat(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, handles)
}

func TestMemoryStore_LastSeenPostID(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id, err := s.LastSeenPostID(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, s.SetLastSeenPostID(ctx, "alice", "100"))
	require.NoError(t, s.SetLastSeenPostID(ctx, "alice", "200"))

	id, err = s.LastSeenPostID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "200", id)
}
