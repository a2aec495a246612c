// Package chatstore persists per-chat preferences and account watch
// subscriptions. The gateway uses Postgres; tests and database-less
// deployments use the in-memory store.
package chatstore

import "context"

// Watch is one chat's subscription to an account's new posts.
type Watch struct {
	ChatID int64
	Handle string
}

// Store is the persistence surface shared by the language and watch
// features. An unset chat language reads back as the empty string.
type Store interface {
	ChatLanguage(ctx context.Context, chatID int64) (string, error)
	SetChatLanguage(ctx context.Context, chatID int64, lang string) error

	AddWatch(ctx context.Context, chatID int64, handle string) error
	RemoveWatch(ctx context.Context, chatID int64, handle string) error
	WatchesForChat(ctx context.Context, chatID int64) ([]string, error)
	Watches(ctx context.Context) ([]Watch, error)

	// LastSeenPostID tracks the watcher's high-water mark per account,
	// shared across all chats watching that account.
	LastSeenPostID(ctx context.Context, handle string) (string, error)
	SetLastSeenPostID(ctx context.Context, handle, postID string) error

	Close() error
}
