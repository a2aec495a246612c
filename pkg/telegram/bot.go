package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mymmrac/telego"

	"github.com/postwing/postwing/pkg/logger"
	"github.com/postwing/postwing/pkg/telemetry"
)

const componentBot = "telegram"

// NewBot builds the platform client. proxyURL is optional; when set all
// API traffic goes through it.
func NewBot(token, proxyURL string) (*telego.Bot, error) {
	opts := []telego.BotOption{telego.WithDefaultLogger(false, true)}
	if proxyURL != "" {
		pu, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		opts = append(opts, telego.WithHTTPClient(&http.Client{
			Timeout:   65 * time.Second,
			Transport: &http.Transport{Proxy: http.ProxyURL(pu)},
		}))
	}

	bot, err := telego.NewBot(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return bot, nil
}

// Listen long-polls the platform and feeds every supported update into
// the dispatcher. allowFrom restricts processing to the listed chat ids;
// empty means every chat is allowed. Returns when ctx is cancelled or
// the update stream closes.
func Listen(ctx context.Context, bot *telego.Bot, dispatcher *Dispatcher, allowFrom []int64) error {
	updates, err := bot.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout: 30,
		AllowedUpdates: []string{
			telego.MessageUpdates,
			telego.CallbackQueryUpdates,
			telego.InlineQueryUpdates,
		},
	})
	if err != nil {
		return fmt.Errorf("start long polling: %w", err)
	}

	logger.InfoC(componentBot, "listening for updates")
	for raw := range updates {
		telemetry.IncUpdatesReceived()
		upd, ok := Convert(raw)
		if !ok {
			logger.DebugCF(componentBot, "skipping unsupported update", map[string]any{"update_id": raw.UpdateID})
			continue
		}
		if !allowed(upd, allowFrom) {
			logger.DebugCF(componentBot, "skipping update from unlisted chat", map[string]any{"update_id": upd.UpdateID()})
			continue
		}
		dispatcher.Submit(ctx, upd)
	}
	return ctx.Err()
}

func allowed(upd Update, allowFrom []int64) bool {
	if len(allowFrom) == 0 {
		return true
	}
	chat, ok := upd.ChatID()
	if !ok {
		return true
	}
	for _, id := range allowFrom {
		if id == chat {
			return true
		}
	}
	return false
}
