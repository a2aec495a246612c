// Package video mirrors short-form video links from platforms the post
// mirror does not cover, fetching them through yt-dlp.
package video

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mymmrac/telego"

	"github.com/postwing/postwing/pkg/chatstore"
	"github.com/postwing/postwing/pkg/localization"
	"github.com/postwing/postwing/pkg/logger"
	"github.com/postwing/postwing/pkg/telegram"
)

const componentName = "video"

var platformPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)https?://(?:www\.)?youtube\.com/shorts/[\w-]+`),
	regexp.MustCompile(`(?i)https://[\w.-]*tiktok\.com/`),
	regexp.MustCompile(`(?i)https://www\.instagram\.com/reels?/[\w-]+`),
}

// SupportedURL reports whether text is a video link from a platform
// yt-dlp can fetch directly.
func SupportedURL(text string) bool {
	for _, p := range platformPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// Downloader fetches a video URL to a local file.
type Downloader interface {
	Download(ctx context.Context, url string) (string, error)
}

// Executor downloads pasted video links and sends the file back to the
// chat, with a status message while the download runs.
type Executor struct {
	sender     telegram.Sender
	store      chatstore.Store
	loc        *localization.Localizer
	downloader Downloader
}

var _ telegram.Executor = (*Executor)(nil)

func NewExecutor(sender telegram.Sender, store chatstore.Store, loc *localization.Localizer, downloader Downloader) *Executor {
	return &Executor{sender: sender, store: store, loc: loc, downloader: downloader}
}

func (e *Executor) Priority() telegram.Priority { return telegram.PriorityMedium }

func (e *Executor) CanHandle(_ context.Context, upd telegram.Update) bool {
	msg, ok := upd.(telegram.MessageUpdate)
	return ok && msg.Command == "" && SupportedURL(strings.TrimSpace(msg.Text))
}

func (e *Executor) Handle(ctx context.Context, upd telegram.Update) error {
	msg := upd.(telegram.MessageUpdate)
	url := strings.TrimSpace(msg.Text)
	lang, _ := e.store.ChatLanguage(ctx, msg.Chat)

	_ = e.sender.SendChatAction(ctx, &telego.SendChatActionParams{
		ChatID: telego.ChatID{ID: msg.Chat},
		Action: telego.ChatActionUploadVideo,
	})

	status, err := e.sender.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: msg.Chat},
		Text:   e.loc.Message(lang, localization.KeyVideoDownloading, nil),
	})
	if err != nil {
		return err
	}

	path, err := e.downloader.Download(ctx, url)
	if err != nil {
		logger.WarnCF(componentName, "Video download failed", map[string]any{
			"url":   url,
			"error": err.Error(),
		})
		return e.reportFailure(ctx, msg.Chat, status, lang)
	}
	defer os.RemoveAll(filepath.Dir(path))

	f, err := os.Open(path)
	if err != nil {
		return e.reportFailure(ctx, msg.Chat, status, lang)
	}
	defer f.Close()

	if _, err := e.sender.SendVideo(ctx, &telego.SendVideoParams{
		ChatID: telego.ChatID{ID: msg.Chat},
		Video:  telego.InputFile{File: f},
	}); err != nil {
		return err
	}

	return e.sender.DeleteMessage(ctx, &telego.DeleteMessageParams{
		ChatID:    telego.ChatID{ID: msg.Chat},
		MessageID: status.MessageID,
	})
}

// reportFailure turns the status message into a user-facing failure
// notice; download errors are not executor errors.
func (e *Executor) reportFailure(ctx context.Context, chat int64, status *telego.Message, lang string) error {
	_, err := e.sender.EditMessageText(ctx, &telego.EditMessageTextParams{
		ChatID:    telego.ChatID{ID: chat},
		MessageID: status.MessageID,
		Text:      e.loc.Message(lang, localization.KeyVideoFailed, nil),
	})
	return err
}
