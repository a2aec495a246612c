package mirror

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mymmrac/telego"

	"github.com/postwing/postwing/pkg/localization"
	"github.com/postwing/postwing/pkg/posts"
	"github.com/postwing/postwing/pkg/telegram"
)

// InlineExecutor answers inline queries that contain a post link with
// the rendered post, so it can be dropped into any chat.
type InlineExecutor struct {
	service  *posts.Service
	renderer *Renderer
}

var _ telegram.Executor = (*InlineExecutor)(nil)

func NewInlineExecutor(service *posts.Service, renderer *Renderer) *InlineExecutor {
	return &InlineExecutor{service: service, renderer: renderer}
}

func (e *InlineExecutor) Priority() telegram.Priority { return telegram.PriorityHigh }

func (e *InlineExecutor) CanHandle(_ context.Context, upd telegram.Update) bool {
	q, ok := upd.(telegram.InlineQueryUpdate)
	if !ok {
		return false
	}
	_, err := e.service.PostID(q.Query)
	return err == nil
}

func (e *InlineExecutor) Handle(ctx context.Context, upd telegram.Update) error {
	q := upd.(telegram.InlineQueryUpdate)

	postID, err := e.service.PostID(q.Query)
	if err != nil {
		return fmt.Errorf("extract post id: %w", err)
	}

	post, err := e.service.Post(ctx, postID)
	if err != nil {
		// Inline answers cannot carry error messages; an empty result
		// set shows the user nothing matched.
		return e.sender().AnswerInlineQuery(ctx, &telego.AnswerInlineQueryParams{
			InlineQueryID: q.QueryID,
		})
	}

	return e.sender().AnswerInlineQuery(ctx, &telego.AnswerInlineQueryParams{
		InlineQueryID: q.QueryID,
		Results:       []telego.InlineQueryResult{e.result(ctx, post)},
	})
}

// result picks the inline representation: posts with photos answer with
// the last photo (the mosaic when one exists), everything else falls
// back to a text article. Video-only posts stay text; inline mode
// cannot stream a download.
func (e *InlineExecutor) result(ctx context.Context, post posts.Post) telego.InlineQueryResult {
	if len(post.MediaURLs) > 0 {
		photo := post.MediaURLs[len(post.MediaURLs)-1]
		return &telego.InlineQueryResultPhoto{
			Type:         telego.ResultTypePhoto,
			ID:           uuid.New().String(),
			PhotoURL:     photo,
			ThumbnailURL: photo,
			Title:        displayName(post.Account()),
			Caption:      e.renderer.formatPost(ctx, localization.DefaultLanguage, post, "", maxCaptionLen),
			ParseMode:    telego.ModeHTML,
		}
	}

	return &telego.InlineQueryResultArticle{
		Type:        telego.ResultTypeArticle,
		ID:          uuid.New().String(),
		Title:       displayName(post.Account()),
		Description: post.Body,
		InputMessageContent: &telego.InputTextMessageContent{
			MessageText: e.renderer.FormatPost(ctx, localization.DefaultLanguage, post, ""),
			ParseMode:   telego.ModeHTML,
		},
	}
}

func (e *InlineExecutor) sender() telegram.Sender { return e.renderer.sender }
