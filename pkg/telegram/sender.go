package telegram

import (
	"context"

	"github.com/mymmrac/telego"
)

// Sender is the outbound surface executors use. *telego.Bot satisfies it
// directly; tests substitute a recording fake.
type Sender interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
	SendMediaGroup(ctx context.Context, params *telego.SendMediaGroupParams) ([]telego.Message, error)
	SendVideo(ctx context.Context, params *telego.SendVideoParams) (*telego.Message, error)
	SendChatAction(ctx context.Context, params *telego.SendChatActionParams) error
	DeleteMessage(ctx context.Context, params *telego.DeleteMessageParams) error
	EditMessageText(ctx context.Context, params *telego.EditMessageTextParams) (*telego.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *telego.AnswerCallbackQueryParams) error
	AnswerInlineQuery(ctx context.Context, params *telego.AnswerInlineQueryParams) error
}

var _ Sender = (*telego.Bot)(nil)
