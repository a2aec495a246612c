package mirror

import (
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/mymmrac/telego"

	"github.com/postwing/postwing/pkg/localization"
	"github.com/postwing/postwing/pkg/logger"
	"github.com/postwing/postwing/pkg/posts"
	"github.com/postwing/postwing/pkg/telegram"
	"github.com/postwing/postwing/pkg/translate"
	"github.com/postwing/postwing/pkg/video"
)

// Telegram rejects texts over these sizes, so bodies are cut to fit;
// the permalink at the end always survives.
const (
	maxAlbumSize  = 10
	maxMessageLen = 4096
	maxCaptionLen = 1024
	ellipsis      = "…"
)

// Renderer turns resolved threads into chat messages. It is shared by
// the link executor and the account watcher so both render identically.
// translator and downloader are optional; absent ones degrade to the
// original text and remote video URLs.
type Renderer struct {
	sender     telegram.Sender
	loc        *localization.Localizer
	translator translate.Translator
	downloader *video.Downloader
}

func NewRenderer(sender telegram.Sender, loc *localization.Localizer, translator translate.Translator, downloader *video.Downloader) *Renderer {
	return &Renderer{sender: sender, loc: loc, translator: translator, downloader: downloader}
}

// Typing shows the typing indicator while a thread resolves. Failures
// are ignored; the indicator is cosmetic.
func (r *Renderer) Typing(ctx context.Context, chat int64) {
	_ = r.sender.SendChatAction(ctx, &telego.SendChatActionParams{
		ChatID: chatID(chat),
		Action: telego.ChatActionTyping,
	})
}

// SendError reports a resolution failure in the chat's language.
func (r *Renderer) SendError(ctx context.Context, chat int64, lang string, resolveErr error) error {
	_, err := r.sender.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: chatID(chat),
		Text:   r.loc.Message(lang, ErrorKey(resolveErr), nil),
	})
	return err
}

// SendThread renders a resolved thread into the chat, oldest post
// first so the conversation reads top to bottom.
func (r *Renderer) SendThread(ctx context.Context, chat int64, lang string, thread posts.Thread) error {
	switch t := thread.(type) {
	case posts.SingleThread:
		return r.SendPost(ctx, chat, lang, t.Post, "")

	case posts.RepostThread:
		header := r.loc.Message(lang, localization.KeyRepostedBy, map[string]string{
			"name": displayName(t.Reposter),
		})
		return r.SendPost(ctx, chat, lang, t.Post, header)

	case posts.QuoteThread:
		quoted := r.loc.Message(lang, localization.KeyQuoted, map[string]string{
			"name": displayName(t.Original.Account()),
		})
		if err := r.SendPost(ctx, chat, lang, t.Original, ""); err != nil {
			return err
		}
		return r.SendPost(ctx, chat, lang, t.Post, quoted)

	case posts.ReplyThread:
		if t.Quoted != nil {
			if err := r.SendPost(ctx, chat, lang, *t.Quoted, ""); err != nil {
				return err
			}
		}
		// Replies are stored nearest parent first; walk backwards so the
		// thread root is sent first.
		for i := len(t.Replies) - 1; i >= 0; i-- {
			if err := r.SendPost(ctx, chat, lang, t.Replies[i], ""); err != nil {
				return err
			}
		}
		header := ""
		if len(t.Replies) > 0 {
			header = r.loc.Message(lang, localization.KeyInReplyTo, map[string]string{
				"name": displayName(t.Replies[0].Account()),
			})
		}
		return r.SendPost(ctx, chat, lang, t.Post, header)

	default:
		return fmt.Errorf("unknown thread variant %T", thread)
	}
}

// SendPost renders one post, attaching its media. header is an optional
// line placed above the author.
func (r *Renderer) SendPost(ctx context.Context, chat int64, lang string, p posts.Post, header string) error {
	limit := maxMessageLen
	if len(p.VideoURLs) > 0 || len(p.MediaURLs) > 0 {
		limit = maxCaptionLen
	}
	text := r.formatPost(ctx, lang, p, header, limit)

	switch {
	case len(p.VideoURLs) > 0:
		return r.sendVideo(ctx, chat, p.VideoURLs[0], text)
	case len(p.MediaURLs) > 0:
		return r.sendAlbum(ctx, chat, p.MediaURLs, text)
	default:
		_, err := r.sender.SendMessage(ctx, &telego.SendMessageParams{
			ChatID:             chatID(chat),
			Text:               text,
			ParseMode:          telego.ModeHTML,
			LinkPreviewOptions: &telego.LinkPreviewOptions{IsDisabled: true},
		})
		return err
	}
}

// FormatPost builds the HTML body for one post, translating it into
// lang when a translator is configured and the post is foreign.
func (r *Renderer) FormatPost(ctx context.Context, lang string, p posts.Post, header string) string {
	return r.formatPost(ctx, lang, p, header, maxMessageLen)
}

func (r *Renderer) formatPost(ctx context.Context, lang string, p posts.Post, header string, limit int) string {
	body := p.Body
	if r.translator != nil && lang != "" && p.Language != "" && p.Language != lang {
		translated, err := r.translator.Translate(ctx, p.Body, lang)
		if err != nil {
			logger.WarnCF(componentName, "Translation failed, keeping original", map[string]any{
				"post_id": p.ID,
				"error":   err.Error(),
			})
		} else {
			body = translated
		}
	}

	text := composePost(p, header, body)
	// Shrink the body until the rendered text fits; escaping can expand
	// it again, so re-measure each cut.
	for utf8.RuneCountInString(text) > limit {
		runes := []rune(body)
		over := utf8.RuneCountInString(text) - limit
		cut := len(runes) - over - 1
		if cut <= 0 {
			text = composePost(p, header, ellipsis)
			break
		}
		body = strings.TrimRight(string(runes[:cut]), " \n") + ellipsis
		text = composePost(p, header, body)
	}
	return text
}

func composePost(p posts.Post, header, body string) string {
	text := ""
	if header != "" {
		text += html.EscapeString(header) + "\n"
	}
	text += fmt.Sprintf("<b>%s</b> (<a href=%q>@%s</a>)\n\n%s\n\n<a href=%q>x.com</a>",
		html.EscapeString(p.AuthorDisplayName),
		p.Account().ProfileURL(),
		html.EscapeString(p.AuthorHandle),
		html.EscapeString(body),
		p.Permalink(),
	)
	return text
}

func (r *Renderer) sendVideo(ctx context.Context, chat int64, videoURL, caption string) error {
	if r.downloader != nil && r.downloader.Available() {
		if path, err := r.downloader.Download(ctx, videoURL); err == nil {
			defer os.RemoveAll(filepath.Dir(path))
			f, openErr := os.Open(path)
			if openErr == nil {
				defer f.Close()
				_, sendErr := r.sender.SendVideo(ctx, &telego.SendVideoParams{
					ChatID:    chatID(chat),
					Video:     telego.InputFile{File: f},
					Caption:   caption,
					ParseMode: telego.ModeHTML,
				})
				return sendErr
			}
		} else {
			logger.WarnCF(componentName, "Video download failed, sending remote url", map[string]any{
				"url":   videoURL,
				"error": err.Error(),
			})
		}
	}

	_, err := r.sender.SendVideo(ctx, &telego.SendVideoParams{
		ChatID:    chatID(chat),
		Video:     telego.InputFile{URL: videoURL},
		Caption:   caption,
		ParseMode: telego.ModeHTML,
	})
	return err
}

func (r *Renderer) sendAlbum(ctx context.Context, chat int64, urls []string, caption string) error {
	if len(urls) > maxAlbumSize {
		urls = urls[:maxAlbumSize]
	}

	media := make([]telego.InputMedia, 0, len(urls))
	for i, u := range urls {
		photo := &telego.InputMediaPhoto{
			Type:  telego.MediaTypePhoto,
			Media: telego.InputFile{URL: u},
		}
		if i == 0 {
			photo.Caption = caption
			photo.ParseMode = telego.ModeHTML
		}
		media = append(media, photo)
	}

	_, err := r.sender.SendMediaGroup(ctx, &telego.SendMediaGroupParams{
		ChatID: chatID(chat),
		Media:  media,
	})
	return err
}

func displayName(a posts.Account) string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return "@" + a.Handle
}
