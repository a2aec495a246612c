package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"github.com/postwing/postwing/pkg/chatstore"
	"github.com/postwing/postwing/pkg/features/mirror"
	"github.com/postwing/postwing/pkg/localization"
	"github.com/postwing/postwing/pkg/logger"
	"github.com/postwing/postwing/pkg/posts"
	"github.com/postwing/postwing/pkg/telemetry"
)

const componentName = "watcher"

// Watcher polls watched accounts on a cron schedule and mirrors their
// new posts into every subscribed chat. The per-account high-water mark
// lives in the store, so restarts do not resend old posts.
type Watcher struct {
	store    chatstore.Store
	service  *posts.Service
	renderer *mirror.Renderer
	loc      *localization.Localizer
	schedule string
	limit    int
}

func NewWatcher(store chatstore.Store, service *posts.Service, renderer *mirror.Renderer, loc *localization.Localizer, schedule string, limit int) *Watcher {
	return &Watcher{
		store:    store,
		service:  service,
		renderer: renderer,
		loc:      loc,
		schedule: schedule,
		limit:    limit,
	}
}

// Run blocks, firing one poll cycle at each schedule tick, until ctx is
// cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if !gronx.New().IsValid(w.schedule) {
		return fmt.Errorf("invalid watch schedule %q", w.schedule)
	}
	logger.InfoCF(componentName, "watcher started", map[string]any{"schedule": w.schedule})

	for {
		next, err := gronx.NextTick(w.schedule, false)
		if err != nil {
			return fmt.Errorf("compute next tick: %w", err)
		}

		select {
		case <-time.After(time.Until(next)):
			w.Cycle(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Cycle runs one poll over all watched accounts. A failure on one
// account is logged and does not stop the others.
func (w *Watcher) Cycle(ctx context.Context) {
	if telemetry.WatchCycles != nil {
		telemetry.WatchCycles.Inc()
	}

	watches, err := w.store.Watches(ctx)
	if err != nil {
		logger.ErrorCF(componentName, "Listing watches failed", map[string]any{"error": err.Error()})
		return
	}

	chatsByHandle := make(map[string][]int64)
	for _, watch := range watches {
		chatsByHandle[watch.Handle] = append(chatsByHandle[watch.Handle], watch.ChatID)
	}

	for handle, chats := range chatsByHandle {
		if err := w.pollAccount(ctx, handle, chats); err != nil {
			logger.WarnCF(componentName, "Polling account failed", map[string]any{
				"handle": handle,
				"error":  err.Error(),
			})
		}
	}
}

func (w *Watcher) pollAccount(ctx context.Context, handle string, chats []int64) error {
	ids, err := w.service.RecentPostIDs(ctx, handle, w.limit)
	if err != nil {
		return fmt.Errorf("recent posts: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	lastSeen, err := w.store.LastSeenPostID(ctx, handle)
	if err != nil {
		return fmt.Errorf("read last seen: %w", err)
	}

	// First poll only records the baseline so an old feed is not
	// replayed into the chat.
	if lastSeen == "" {
		return w.store.SetLastSeenPostID(ctx, handle, ids[0])
	}

	fresh := freshIDs(ids, lastSeen)
	// Deliver oldest first so the chat reads chronologically.
	for i := len(fresh) - 1; i >= 0; i-- {
		if err := w.deliver(ctx, handle, fresh[i], chats); err != nil {
			return err
		}
	}

	return w.store.SetLastSeenPostID(ctx, handle, ids[0])
}

// freshIDs returns the prefix of ids (newest first) above the last seen
// id. When the last seen id aged out of the feed, everything is fresh.
func freshIDs(ids []string, lastSeen string) []string {
	for i, id := range ids {
		if id == lastSeen {
			return ids[:i]
		}
	}
	return ids
}

func (w *Watcher) deliver(ctx context.Context, handle, postID string, chats []int64) error {
	post, err := w.service.Post(ctx, postID)
	if err != nil {
		return fmt.Errorf("fetch post %s: %w", postID, err)
	}

	name := post.AuthorDisplayName
	if name == "" {
		name = "@" + handle
	}

	for _, chat := range chats {
		lang, _ := w.store.ChatLanguage(ctx, chat)
		header := w.loc.Message(lang, localization.KeyWatchNewPost, map[string]string{"name": name})
		if err := w.renderer.SendPost(ctx, chat, lang, post, header); err != nil {
			logger.WarnCF(componentName, "Delivering post failed", map[string]any{
				"chat_id": chat,
				"post_id": postID,
				"error":   err.Error(),
			})
		}
	}
	return nil
}
