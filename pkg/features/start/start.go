// Package start greets new chats and explains the available commands.
package start

import (
	"context"

	"github.com/mymmrac/telego"

	"github.com/postwing/postwing/pkg/chatstore"
	"github.com/postwing/postwing/pkg/localization"
	"github.com/postwing/postwing/pkg/telegram"
)

type Executor struct {
	sender telegram.Sender
	store  chatstore.Store
	loc    *localization.Localizer
}

var _ telegram.Executor = (*Executor)(nil)

func NewExecutor(sender telegram.Sender, store chatstore.Store, loc *localization.Localizer) *Executor {
	return &Executor{sender: sender, store: store, loc: loc}
}

func (e *Executor) Priority() telegram.Priority { return telegram.PriorityMedium }

func (e *Executor) CanHandle(_ context.Context, upd telegram.Update) bool {
	msg, ok := upd.(telegram.MessageUpdate)
	return ok && msg.Command == telegram.CommandStart
}

func (e *Executor) Handle(ctx context.Context, upd telegram.Update) error {
	msg := upd.(telegram.MessageUpdate)

	lang, _ := e.store.ChatLanguage(ctx, msg.Chat)
	_, err := e.sender.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: msg.Chat},
		Text:   e.loc.Message(lang, localization.KeyStart, nil),
	})
	return err
}
