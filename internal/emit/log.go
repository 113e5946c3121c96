package emit

import (
	"context"

	"github.com/rs/zerolog"
)

// LogEmitter implements Emitter by writing structured log lines through a
// zerolog.Logger, grounded on the teacher's LogEmitter (graph/emit/log.go)
// but backed by zerolog instead of bare fmt.Fprintf, matching the register
// the rest of this repo logs in.
type LogEmitter struct {
	logger zerolog.Logger
}

// NewLogEmitter builds a LogEmitter writing through logger.
func NewLogEmitter(logger zerolog.Logger) *LogEmitter {
	return &LogEmitter{logger: logger}
}

func (l *LogEmitter) Emit(event Event) {
	evt := l.logger.Info().
		Str("workflow_id", event.WorkflowID).
		Str("task_id", event.TaskID)
	for k, v := range event.Meta {
		evt = evt.Interface(k, v)
	}
	evt.Msg(event.Msg)
}

// EmitBatch emits every event in order. Errors are never returned for
// per-event logging failures (zerolog swallows its own write errors).
func (l *LogEmitter) EmitBatch(_ context.Context, events []Event) error {
	for _, e := range events {
		l.Emit(e)
	}
	return nil
}

// Flush is a no-op: LogEmitter writes synchronously with no internal
// buffer to drain.
func (l *LogEmitter) Flush(context.Context) error { return nil }

var _ Emitter = (*LogEmitter)(nil)
