// Package mirror turns post links into mirrored threads in the chat.
// It hosts the link executor, the inline-query executor, and the thread
// renderer they share.
package mirror

import (
	"context"
	"errors"
	"fmt"

	"github.com/mymmrac/telego"

	"github.com/postwing/postwing/pkg/chatstore"
	"github.com/postwing/postwing/pkg/localization"
	"github.com/postwing/postwing/pkg/logger"
	"github.com/postwing/postwing/pkg/posts"
	"github.com/postwing/postwing/pkg/telegram"
	"github.com/postwing/postwing/pkg/telemetry"
)

const componentName = "mirror"

// Executor mirrors a thread into the chat when a message contains a
// post link. It matches plain messages only; commands stay with their
// own executors.
type Executor struct {
	service  *posts.Service
	store    chatstore.Store
	loc      *localization.Localizer
	renderer *Renderer
}

var _ telegram.Executor = (*Executor)(nil)

func NewExecutor(service *posts.Service, store chatstore.Store, loc *localization.Localizer, renderer *Renderer) *Executor {
	return &Executor{service: service, store: store, loc: loc, renderer: renderer}
}

func (e *Executor) Priority() telegram.Priority { return telegram.PriorityMedium }

func (e *Executor) CanHandle(_ context.Context, upd telegram.Update) bool {
	msg, ok := upd.(telegram.MessageUpdate)
	if !ok || msg.Command != "" {
		return false
	}
	_, err := e.service.PostID(msg.Text)
	return err == nil
}

func (e *Executor) Handle(ctx context.Context, upd telegram.Update) error {
	msg := upd.(telegram.MessageUpdate)

	postID, err := e.service.PostID(msg.Text)
	if err != nil {
		return fmt.Errorf("extract post id: %w", err)
	}
	handle, err := e.service.Handle(msg.Text)
	if err != nil {
		return fmt.Errorf("extract handle: %w", err)
	}

	lang, err := e.store.ChatLanguage(ctx, msg.Chat)
	if err != nil {
		logger.WarnCF(componentName, "Falling back to default language", map[string]any{
			"chat_id": msg.Chat,
			"error":   err.Error(),
		})
	}
	if lang == "" {
		lang = localization.DefaultLanguage
	}

	e.renderer.Typing(ctx, msg.Chat)

	var thread posts.Thread
	var resolveErr error
	telemetry.TimeFunc(telemetry.ThreadResolveDuration, func() {
		thread, resolveErr = e.service.Thread(ctx, handle, postID)
	})
	if resolveErr != nil {
		if telemetry.ThreadsFailed != nil {
			telemetry.ThreadsFailed.Inc()
		}
		logger.WarnCF(componentName, "Thread resolution failed", map[string]any{
			"post_id": postID,
			"error":   resolveErr.Error(),
		})
		return e.renderer.SendError(ctx, msg.Chat, lang, resolveErr)
	}
	if telemetry.ThreadsResolved != nil {
		telemetry.ThreadsResolved.Inc()
	}

	return e.renderer.SendThread(ctx, msg.Chat, lang, thread)
}

// ErrorKey maps a resolution failure onto its user-facing message.
func ErrorKey(err error) localization.MessageKey {
	switch {
	case errors.Is(err, posts.ErrAccountNotFound):
		return localization.KeyErrAccountMissing
	case errors.Is(err, posts.ErrPostNotFound):
		return localization.KeyErrPostMissing
	case errors.Is(err, posts.ErrPrivatePost):
		return localization.KeyErrPrivate
	case errors.Is(err, posts.ErrRateLimited):
		return localization.KeyErrRateLimited
	case errors.Is(err, posts.ErrServiceUnavailable):
		return localization.KeyErrUnavailable
	default:
		return localization.KeyErrUnknown
	}
}

func chatID(id int64) telego.ChatID { return telego.ChatID{ID: id} }
