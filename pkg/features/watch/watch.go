// Package watch follows accounts for a chat: /watch and /unwatch manage
// subscriptions and the Watcher delivers new posts on a cron schedule.
package watch

import (
	"context"
	"fmt"
	"strings"

	"github.com/mymmrac/telego"

	"github.com/postwing/postwing/pkg/chatstore"
	"github.com/postwing/postwing/pkg/localization"
	"github.com/postwing/postwing/pkg/posts"
	"github.com/postwing/postwing/pkg/telegram"
)

// Executor handles /watch and /unwatch.
type Executor struct {
	sender  telegram.Sender
	store   chatstore.Store
	loc     *localization.Localizer
	service *posts.Service
}

var _ telegram.Executor = (*Executor)(nil)

func NewExecutor(sender telegram.Sender, store chatstore.Store, loc *localization.Localizer, service *posts.Service) *Executor {
	return &Executor{sender: sender, store: store, loc: loc, service: service}
}

func (e *Executor) Priority() telegram.Priority { return telegram.PriorityMedium }

func (e *Executor) CanHandle(_ context.Context, upd telegram.Update) bool {
	msg, ok := upd.(telegram.MessageUpdate)
	return ok && (msg.Command == telegram.CommandWatch || msg.Command == telegram.CommandUnwatch)
}

func (e *Executor) Handle(ctx context.Context, upd telegram.Update) error {
	msg := upd.(telegram.MessageUpdate)
	lang, _ := e.store.ChatLanguage(ctx, msg.Chat)

	handle := strings.TrimPrefix(strings.TrimSpace(msg.CommandArg), "@")
	if handle == "" {
		return e.reply(ctx, msg.Chat, e.loc.Message(lang, localization.KeyWatchUsage, nil))
	}

	if msg.Command == telegram.CommandUnwatch {
		if err := e.store.RemoveWatch(ctx, msg.Chat, handle); err != nil {
			return fmt.Errorf("remove watch: %w", err)
		}
		return e.reply(ctx, msg.Chat, e.loc.Message(lang, localization.KeyWatchRemoved,
			map[string]string{"handle": handle}))
	}

	exists, err := e.service.AccountExists(ctx, handle)
	if err != nil {
		return fmt.Errorf("verify account %s: %w", handle, err)
	}
	if !exists {
		return e.reply(ctx, msg.Chat, e.loc.Message(lang, localization.KeyWatchNotFound,
			map[string]string{"handle": handle}))
	}

	if err := e.store.AddWatch(ctx, msg.Chat, handle); err != nil {
		return fmt.Errorf("add watch: %w", err)
	}
	return e.reply(ctx, msg.Chat, e.loc.Message(lang, localization.KeyWatchAdded,
		map[string]string{"handle": handle}))
}

func (e *Executor) reply(ctx context.Context, chat int64, text string) error {
	_, err := e.sender.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: chat},
		Text:   text,
	})
	return err
}
