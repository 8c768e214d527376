package monitor

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/timvw/draft-patrol/internal/events"
)

const defaultPollBackoff = 100 * time.Millisecond

// Loop is the top-level consumer of the update queue. Run blocks the calling
// goroutine until Stop is invoked or the context is canceled; Stop may be
// called from any goroutine and is observed at the top of the next poll
// iteration; an in-flight evaluation always completes.
//
// Evaluations run one at a time, in event order. That trades throughput for
// strict ordering and keeps the per-stream audit files free of interleaved
// writes.
type Loop struct {
	Queue     *events.Queue
	Evaluator *Evaluator
	Logger    *zap.Logger
	// PollBackoff is the suspend interval when the queue is empty.
	// Zero uses the 100ms default.
	PollBackoff time.Duration

	running atomic.Bool
	stopped atomic.Bool
}

func (l *Loop) log() *zap.Logger {
	if l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger
}

// Running reports whether Run is currently consuming the queue.
func (l *Loop) Running() bool {
	return l.running.Load()
}

// Stop requests a cooperative shutdown. Idempotent.
func (l *Loop) Stop() {
	l.stopped.Store(true)
}

// Run consumes the update queue until stopped. It never returns an error:
// every evaluation failure is handled locally and the loop survives an
// unbounded number of them.
func (l *Loop) Run(ctx context.Context) {
	backoff := l.PollBackoff
	if backoff <= 0 {
		backoff = defaultPollBackoff
	}

	l.stopped.Store(false)
	l.running.Store(true)
	defer l.running.Store(false)

	l.log().Info("monitoring loop started")

	for {
		if l.stopped.Load() || ctx.Err() != nil {
			l.log().Info("monitoring loop stopped")
			return
		}

		event, ok := l.Queue.TryDequeue()
		if !ok {
			time.Sleep(backoff)
			continue
		}

		l.dispatch(ctx, event)
	}
}

func (l *Loop) dispatch(ctx context.Context, event events.Event) {
	switch event.Kind {
	case events.KindDocSave:
		l.log().Info("dequeued document to monitor", zap.String("document_id", event.Payload))
		l.Evaluator.Evaluate(ctx, event.Payload)
	case events.KindPopContext:
		// Reserved hook for replaying context after the drafting process
		// pops it. Intentionally a no-op.
	default:
		l.log().Warn("ignoring unknown event kind",
			zap.String("kind", event.Kind),
			zap.String("payload", event.Payload))
	}
}
