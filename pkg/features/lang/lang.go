// Package lang lets a chat pick its display language via an inline
// keyboard. The choice is persisted per chat and applied to every
// rendered thread and bot message.
package lang

import (
	"context"
	"fmt"
	"strings"

	"github.com/mymmrac/telego"

	"github.com/postwing/postwing/pkg/chatstore"
	"github.com/postwing/postwing/pkg/localization"
	"github.com/postwing/postwing/pkg/telegram"
)

// callbackPrefix tags language-picker buttons so the callback executor
// recognizes its own presses.
const callbackPrefix = "lang:"

// CommandExecutor answers /lang with the language keyboard.
type CommandExecutor struct {
	sender telegram.Sender
	store  chatstore.Store
	loc    *localization.Localizer
}

var _ telegram.Executor = (*CommandExecutor)(nil)

func NewCommandExecutor(sender telegram.Sender, store chatstore.Store, loc *localization.Localizer) *CommandExecutor {
	return &CommandExecutor{sender: sender, store: store, loc: loc}
}

func (e *CommandExecutor) Priority() telegram.Priority { return telegram.PriorityMedium }

func (e *CommandExecutor) CanHandle(_ context.Context, upd telegram.Update) bool {
	msg, ok := upd.(telegram.MessageUpdate)
	return ok && msg.Command == telegram.CommandLang
}

func (e *CommandExecutor) Handle(ctx context.Context, upd telegram.Update) error {
	msg := upd.(telegram.MessageUpdate)

	lang, _ := e.store.ChatLanguage(ctx, msg.Chat)
	_, err := e.sender.SendMessage(ctx, &telego.SendMessageParams{
		ChatID:      telego.ChatID{ID: msg.Chat},
		Text:        e.loc.Message(lang, localization.KeyLangPrompt, nil),
		ReplyMarkup: keyboard(),
	})
	return err
}

func keyboard() *telego.InlineKeyboardMarkup {
	row := make([]telego.InlineKeyboardButton, 0, len(localization.Languages()))
	for _, l := range localization.Languages() {
		row = append(row, telego.InlineKeyboardButton{
			Text:         l.Name,
			CallbackData: callbackPrefix + l.Code,
		})
	}
	return &telego.InlineKeyboardMarkup{InlineKeyboard: [][]telego.InlineKeyboardButton{row}}
}

// CallbackExecutor applies a pressed language button: it stores the
// choice and replaces the keyboard message with a confirmation.
type CallbackExecutor struct {
	sender telegram.Sender
	store  chatstore.Store
	loc    *localization.Localizer
}

var _ telegram.Executor = (*CallbackExecutor)(nil)

func NewCallbackExecutor(sender telegram.Sender, store chatstore.Store, loc *localization.Localizer) *CallbackExecutor {
	return &CallbackExecutor{sender: sender, store: store, loc: loc}
}

func (e *CallbackExecutor) Priority() telegram.Priority { return telegram.PriorityMedium }

func (e *CallbackExecutor) CanHandle(_ context.Context, upd telegram.Update) bool {
	cb, ok := upd.(telegram.CallbackUpdate)
	return ok && strings.HasPrefix(cb.Data, callbackPrefix)
}

func (e *CallbackExecutor) Handle(ctx context.Context, upd telegram.Update) error {
	cb := upd.(telegram.CallbackUpdate)

	code := strings.TrimPrefix(cb.Data, callbackPrefix)
	if !localization.Supported(code) {
		return fmt.Errorf("unsupported language %q", code)
	}

	if err := e.store.SetChatLanguage(ctx, cb.Chat, code); err != nil {
		return fmt.Errorf("store chat language: %w", err)
	}

	if err := e.sender.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{
		CallbackQueryID: cb.QueryID,
	}); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}

	_, err := e.sender.EditMessageText(ctx, &telego.EditMessageTextParams{
		ChatID:    telego.ChatID{ID: cb.Chat},
		MessageID: int(cb.MessageID),
		Text: e.loc.Message(code, localization.KeyLangSet, map[string]string{
			"language": languageName(code),
		}),
	})
	return err
}

func languageName(code string) string {
	for _, l := range localization.Languages() {
		if l.Code == code {
			return l.Name
		}
	}
	return code
}
