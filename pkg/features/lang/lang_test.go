package lang

import (
	"context"
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postwing/postwing/pkg/chatstore"
	"github.com/postwing/postwing/pkg/localization"
	"github.com/postwing/postwing/pkg/telegram"
)

type fakeSender struct {
	messages  []*telego.SendMessageParams
	edits     []*telego.EditMessageTextParams
	callbacks []string
}

func (f *fakeSender) SendMessage(_ context.Context, p *telego.SendMessageParams) (*telego.Message, error) {
	f.messages = append(f.messages, p)
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

func (f *fakeSender) EditMessageText(_ context.Context, p *telego.EditMessageTextParams) (*telego.Message, error) {
	f.edits = append(f.edits, p)
	return &telego.Message{}, nil
}

func (f *fakeSender) AnswerCallbackQuery(_ context.Context, p *telego.AnswerCallbackQueryParams) error {
	f.callbacks = append(f.callbacks, p.CallbackQueryID)
	return nil
}

func (f *fakeSender) AnswerInlineQuery(_ context.Context, _ *telego.AnswerInlineQueryParams) error {
	return nil
}

func TestCommandExecutor_ShowsKeyboard(t *testing.T) {
	loc, err := localization.New()
	require.NoError(t, err)

	sender := &fakeSender{}
	e := NewCommandExecutor(sender, chatstore.NewMemoryStore(), loc)
	ctx := context.Background()

	assert.True(t, e.CanHandle(ctx, telegram.MessageUpdate{Command: telegram.CommandLang}))
	assert.False(t, e.CanHandle(ctx, telegram.MessageUpdate{Command: telegram.CommandStart}))

	require.NoError(t, e.Handle(ctx, telegram.MessageUpdate{Chat: 10, Command: telegram.CommandLang}))

	require.Len(t, sender.messages, 1)
	assert.Equal(t, "Pick a language:", sender.messages[0].Text)

	markup, ok := sender.messages[0].ReplyMarkup.(*telego.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 1)
	require.Len(t, markup.InlineKeyboard[0], len(localization.Languages()))
	assert.Equal(t, "lang:en", markup.InlineKeyboard[0][0].CallbackData)
}

func TestCallbackExecutor_StoresChoice(t *testing.T) {
	loc, err := localization.New()
	require.NoError(t, err)

	sender := &fakeSender{}
	store := chatstore.NewMemoryStore()
	e := NewCallbackExecutor(sender, store, loc)
	ctx := context.Background()

	assert.True(t, e.CanHandle(ctx, telegram.CallbackUpdate{Data: "lang:uk"}))
	assert.False(t, e.CanHandle(ctx, telegram.CallbackUpdate{Data: "other:uk"}))
	assert.False(t, e.CanHandle(ctx, telegram.MessageUpdate{Text: "lang:uk"}))

	require.NoError(t, e.Handle(ctx, telegram.CallbackUpdate{
		Chat: 10, MessageID: 5, QueryID: "cbq-1", Data: "lang:uk",
	}))

	lang, err := store.ChatLanguage(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "uk", lang)

	assert.Equal(t, []string{"cbq-1"}, sender.callbacks)
	require.Len(t, sender.edits, 1)
	assert.Equal(t, 5, sender.edits[0].MessageID)
	assert.Equal(t, "Мову змінено на Українська.", sender.edits[0].Text)
}

func TestCallbackExecutor_RejectsUnknownLanguage(t *testing.T) {
	loc, err := localization.New()
	require.NoError(t, err)

	store := chatstore.NewMemoryStore()
	e := NewCallbackExecutor(&fakeSender{}, store, loc)

	err = e.Handle(context.Background(), telegram.CallbackUpdate{Chat: 10, Data: "lang:xx"})
	assert.Error(t, err)

	lang, lerr := store.ChatLanguage(context.Background(), 10)
	require.NoError(t, lerr)
	assert.Empty(t, lang)
}
