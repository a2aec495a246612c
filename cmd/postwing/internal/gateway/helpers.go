package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/postwing/postwing/cmd/postwing/internal"
	"github.com/postwing/postwing/pkg/chatstore"
	"github.com/postwing/postwing/pkg/config"
	"github.com/postwing/postwing/pkg/features/ai"
	"github.com/postwing/postwing/pkg/features/lang"
	"github.com/postwing/postwing/pkg/features/mirror"
	"github.com/postwing/postwing/pkg/features/start"
	videofeature "github.com/postwing/postwing/pkg/features/video"
	"github.com/postwing/postwing/pkg/features/watch"
	"github.com/postwing/postwing/pkg/localization"
	"github.com/postwing/postwing/pkg/logger"
	"github.com/postwing/postwing/pkg/posts"
	"github.com/postwing/postwing/pkg/posts/fxmirror"
	"github.com/postwing/postwing/pkg/posts/nitter"
	"github.com/postwing/postwing/pkg/telegram"
	"github.com/postwing/postwing/pkg/telemetry"
	"github.com/postwing/postwing/pkg/translate"
	"github.com/postwing/postwing/pkg/video"
)

func gatewayCmd(debug bool) error {
	if debug {
		logger.SetLevel(logger.DEBUG)
		fmt.Println("🔍 Debug mode enabled")
	}

	cfg, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	telemetry.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	service := buildService(cfg)

	loc, err := localization.New()
	if err != nil {
		return fmt.Errorf("error loading locales: %w", err)
	}

	bot, err := telegram.NewBot(cfg.Telegram.Token, cfg.Telegram.Proxy)
	if err != nil {
		return fmt.Errorf("error creating bot: %w", err)
	}

	var translator translate.Translator
	if cfg.Translate.Enabled {
		translator = translate.NewGoogleTranslator(cfg.Translate.BaseURL)
		fmt.Println("✓ Translation enabled")
	}

	var downloader *video.Downloader
	if cfg.Video.Enabled {
		downloader = video.NewDownloader(cfg.Video.BinPath, time.Duration(cfg.Video.TimeoutMinutes)*time.Minute)
		if downloader.Available() {
			fmt.Println("✓ Video download enabled")
		} else {
			fmt.Printf("⚠ Video binary %q not found, falling back to remote urls\n", cfg.Video.BinPath)
		}
	}

	renderer := mirror.NewRenderer(bot, loc, translator, downloader)

	// Registration order is the tie-break order for equal-priority
	// executors, so commands come before the generic link handler.
	executors := []telegram.Executor{
		start.NewExecutor(bot, store, loc),
		lang.NewCommandExecutor(bot, store, loc),
		watch.NewExecutor(bot, store, loc, service),
	}
	if cfg.AI.Enabled {
		completer := ai.NewOpenAIClient(cfg.AI.APIKey, cfg.AI.APIBase, cfg.AI.Model)
		executors = append(executors, ai.NewExecutor(bot, store, loc, completer))
		fmt.Printf("✓ AI answers enabled (%s)\n", cfg.AI.Model)
	}
	if downloader != nil && downloader.Available() {
		executors = append(executors, videofeature.NewExecutor(bot, store, loc, downloader))
	}
	executors = append(executors,
		mirror.NewExecutor(service, store, loc, renderer),
		mirror.NewInlineExecutor(service, renderer),
		lang.NewCallbackExecutor(bot, store, loc),
	)

	dispatcher := telegram.NewDispatcher(executors)

	if cfg.Watch.Enabled {
		watcher := watch.NewWatcher(store, service, renderer, loc, cfg.Watch.Schedule, cfg.Watch.Limit)
		go func() {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.ErrorCF("watcher", "Watcher stopped", map[string]any{"error": err.Error()})
			}
		}()
		fmt.Printf("✓ Account watcher started (schedule %q)\n", cfg.Watch.Schedule)
	}

	httpServer := newHTTPServer(cfg, dispatcher)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorCF("gateway", "HTTP server error", map[string]any{"error": err.Error()})
		}
	}()

	allowFrom := parseAllowFrom(cfg.Telegram.AllowFrom)

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- telegram.Listen(ctx, bot, dispatcher, allowFrom)
	}()

	fmt.Printf("✓ Gateway started on %s:%d\n", cfg.Gateway.Host, cfg.Gateway.Port)
	fmt.Println("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case err := <-listenErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorCF("gateway", "Update stream ended", map[string]any{"error": err.Error()})
		}
	}

	fmt.Println("\nShutting down...")
	cancel()
	httpServer.Shutdown(context.Background())
	dispatcher.Wait()
	fmt.Println("✓ Gateway stopped")

	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (chatstore.Store, error) {
	if cfg.Database.URL == "" {
		fmt.Println("⚠ No database configured, chat preferences are in-memory only")
		return chatstore.NewMemoryStore(), nil
	}

	store, err := chatstore.OpenPostgres(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	fmt.Println("✓ Database connected")
	return store, nil
}

func buildService(cfg *config.Config) *posts.Service {
	content := fxmirror.NewClient(cfg.Mirror.FxBaseURL)
	feed := nitter.NewClient(cfg.Mirror.NitterBaseURL)
	return posts.NewService(feed, content, feed)
}

func newHTTPServer(cfg *config.Config, dispatcher *telegram.Dispatcher) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		telemetry.SetChatQueues(dispatcher.QueueCount())
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","chat_queues":%d}`, dispatcher.QueueCount())
	})

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Gateway.Host, cfg.Gateway.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func parseAllowFrom(entries []string) []int64 {
	var ids []int64
	for _, entry := range entries {
		id, err := strconv.ParseInt(entry, 10, 64)
		if err != nil {
			logger.WarnCF("gateway", "Ignoring non-numeric allow_from entry", map[string]any{"entry": entry})
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
