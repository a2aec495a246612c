// Package ai answers /ask questions through an OpenAI-compatible chat
// completion endpoint.
package ai

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/postwing/postwing/pkg/chatstore"
	"github.com/postwing/postwing/pkg/localization"
	"github.com/postwing/postwing/pkg/telegram"
)

const systemPrompt = "You are a concise assistant inside a chat bot that mirrors social media threads. Answer briefly and in the language of the question."

// Completer produces an answer for a free-form question.
type Completer interface {
	Complete(ctx context.Context, question string) (string, error)
}

// OpenAIClient is the production Completer.
type OpenAIClient struct {
	client openai.Client
	model  string
}

var _ Completer = (*OpenAIClient)(nil)

func NewOpenAIClient(apiKey, apiBase, model string) *OpenAIClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if apiBase != "" {
		opts = append(opts, option.WithBaseURL(apiBase))
	}
	return &OpenAIClient{client: openai.NewClient(opts...), model: model}
}

func (c *OpenAIClient) Complete(ctx context.Context, question string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(question),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Executor handles /ask.
type Executor struct {
	sender    telegram.Sender
	store     chatstore.Store
	loc       *localization.Localizer
	completer Completer
}

var _ telegram.Executor = (*Executor)(nil)

func NewExecutor(sender telegram.Sender, store chatstore.Store, loc *localization.Localizer, completer Completer) *Executor {
	return &Executor{sender: sender, store: store, loc: loc, completer: completer}
}

func (e *Executor) Priority() telegram.Priority { return telegram.PriorityMedium }

func (e *Executor) CanHandle(_ context.Context, upd telegram.Update) bool {
	msg, ok := upd.(telegram.MessageUpdate)
	return ok && msg.Command == telegram.CommandAsk
}

func (e *Executor) Handle(ctx context.Context, upd telegram.Update) error {
	msg := upd.(telegram.MessageUpdate)
	lang, _ := e.store.ChatLanguage(ctx, msg.Chat)

	if msg.CommandArg == "" {
		_, err := e.sender.SendMessage(ctx, &telego.SendMessageParams{
			ChatID: telego.ChatID{ID: msg.Chat},
			Text:   e.loc.Message(lang, localization.KeyAskUsage, nil),
		})
		return err
	}

	_ = e.sender.SendChatAction(ctx, &telego.SendChatActionParams{
		ChatID: telego.ChatID{ID: msg.Chat},
		Action: telego.ChatActionTyping,
	})

	answer, err := e.completer.Complete(ctx, msg.CommandArg)
	if err != nil {
		return fmt.Errorf("answer question: %w", err)
	}

	_, err = e.sender.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: msg.Chat},
		Text:   answer,
	})
	return err
}
