package telegram

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/postwing/postwing/pkg/logger"
	"github.com/postwing/postwing/pkg/telemetry"
)

// queueSize bounds each per-chat mailbox. Submit blocks once a chat
// falls this far behind, which backpressures the update feed instead of
// growing without bound.
const queueSize = 100

// Dispatcher fans inbound updates out into one ordered queue per chat.
// Exactly one worker goroutine drains each queue, so updates within a
// chat are processed strictly in arrival order while distinct chats
// progress concurrently. Updates without a chat id are handled on a
// detached goroutine with no ordering guarantee.
//
// Queues are created lazily on the first update for a chat and live for
// the process lifetime; idle chats are never evicted.
type Dispatcher struct {
	executors []Executor

	mu     sync.Mutex
	queues map[int64]chan Update

	wg sync.WaitGroup
}

// NewDispatcher creates a Dispatcher over a fixed executor list. The
// slice order is the registration order and is never mutated.
func NewDispatcher(executors []Executor) *Dispatcher {
	return &Dispatcher{
		executors: executors,
		queues:    make(map[int64]chan Update),
	}
}

// Submit routes one update into its chat's queue, creating the queue
// and its worker on first use. It blocks only when that chat's queue is
// full. The ctx passed here is the processing context for the update;
// cancelling it stops the workers draining already queued updates.
func (d *Dispatcher) Submit(ctx context.Context, upd Update) {
	chatID, ok := upd.ChatID()
	if !ok {
		id := uuid.New().String()
		logger.DebugCF("dispatcher", "Update without chat, processing detached", map[string]any{
			"update_id": upd.UpdateID(),
			"task_id":   id,
		})
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.process(ctx, upd)
		}()
		return
	}

	d.mu.Lock()
	queue, exists := d.queues[chatID]
	if !exists {
		queue = make(chan Update, queueSize)
		d.queues[chatID] = queue
		d.startWorker(ctx, chatID, queue)
	}
	d.mu.Unlock()

	select {
	case queue <- upd:
	case <-ctx.Done():
	}
}

// startWorker launches the single drain goroutine for one chat. An
// error or panic while processing one update is logged and the worker
// keeps draining; a failure in one chat never affects another.
func (d *Dispatcher) startWorker(ctx context.Context, chatID int64, queue chan Update) {
	logger.DebugCF("dispatcher", "Creating worker for chat", map[string]any{"chat_id": chatID})
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case upd := <-queue:
				d.process(ctx, upd)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// process routes one update to its executor and runs it, catching
// panics and logging errors at this boundary.
func (d *Dispatcher) process(ctx context.Context, upd Update) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorCF("dispatcher", "Panic while processing update", map[string]any{
				"update_id": upd.UpdateID(),
				"panic":     r,
			})
		}
	}()

	executor := Route(ctx, d.executors, upd)
	if executor == nil {
		telemetry.IncUpdatesDropped()
		logger.DebugCF("dispatcher", "No executor for update", map[string]any{
			"update_id": upd.UpdateID(),
			"type":      fmt.Sprintf("%T", upd),
		})
		return
	}

	logger.InfoCF("dispatcher", "Dispatching update", map[string]any{
		"update_id": upd.UpdateID(),
		"executor":  componentName(executor),
	})

	if err := executor.Handle(ctx, upd); err != nil {
		telemetry.IncExecutorFailures()
		logger.ErrorCF("dispatcher", "Executor failed", map[string]any{
			"update_id": upd.UpdateID(),
			"executor":  componentName(executor),
			"error":     err.Error(),
		})
	}
}

// QueueCount reports how many per-chat queues exist. Exposed for the
// health endpoint and metrics.
func (d *Dispatcher) QueueCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queues)
}

// Wait blocks until all detached tasks and workers have returned. Only
// meaningful after the processing context is cancelled.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func componentName(e Executor) string {
	return fmt.Sprintf("%T", e)
}
