package worker

import (
	"context"
	"log/slog"

	audit "instructorhub/pkg/platform/audit"
)

// Worker drains audit events from a channel into a store. A failing store
// is logged and skipped so audit never blocks request handling.
type Worker struct {
	store  audit.Store
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run returns nil once the inbox is closed and drained, or ctx.Err() when
// cancelled first.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if err := w.store.Append(ctx, event); err != nil && w.logger != nil {
				w.logger.ErrorContext(ctx, "failed to append audit event",
					"error", err,
					"action", event.Action,
					"subject_id", event.SubjectID,
				)
			}
		}
	}
}
