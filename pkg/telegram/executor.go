package telegram

import (
	"context"

	"github.com/postwing/postwing/pkg/logger"
)

// Priority orders executors when several can handle the same update.
type Priority int

const (
	PriorityLow    Priority = -1
	PriorityMedium Priority = 0
	PriorityHigh   Priority = 1
)

// Executor is a self-contained update handler. Executors are mutually
// unaware; CanHandle must be cheap and side-effect free.
type Executor interface {
	Priority() Priority
	CanHandle(ctx context.Context, upd Update) bool
	Handle(ctx context.Context, upd Update) error
}

// Route selects the executor for an update from the registered list.
//
// Every executor's predicate is evaluated; among the matches, the
// highest priority wins and the earliest registered wins ties. A
// panicking predicate is treated as non-matching so one broken
// executor cannot block routing. Returns nil when nothing matches.
func Route(ctx context.Context, executors []Executor, upd Update) Executor {
	var selected Executor
	for _, e := range executors {
		if !safeCanHandle(ctx, e, upd) {
			continue
		}
		if selected == nil || e.Priority() > selected.Priority() {
			selected = e
		}
	}
	return selected
}

func safeCanHandle(ctx context.Context, e Executor, upd Update) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorCF("router", "Executor predicate panicked", map[string]any{
				"executor": componentName(e),
				"panic":    r,
			})
			ok = false
		}
	}()
	return e.CanHandle(ctx, upd)
}
