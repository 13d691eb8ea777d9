package llmcall

import (
	"context"
	"log/slog"

	"github.com/jackzampolin/tamer/internal/completion"
)

// Recorder writes every finished completion to a Store. Write failures
// are logged and never surface to the caller.
type Recorder struct {
	store  *Store
	logger *slog.Logger
}

// NewRecorder creates a new LLM call recorder.
func NewRecorder(store *Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: store, logger: logger}
}

// Record implements completion.Recorder.
func (r *Recorder) Record(ctx context.Context, meta completion.CallMeta, res completion.Result) {
	if r.store == nil {
		return // No store configured, skip recording
	}

	call := FromResult(meta, res)
	// Record even when the caller was canceled; the call still happened.
	if err := r.store.Insert(context.WithoutCancel(ctx), call); err != nil {
		r.logger.Warn("failed to record LLM call",
			"request_id", call.RequestID,
			"prompt_key", call.PromptKey,
			"error", err)
	}
}
