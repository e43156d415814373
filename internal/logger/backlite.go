package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// TaskLogger adapts zap to the key/value logger the backlite task queue
// expects.
type TaskLogger struct {
	log *zap.SugaredLogger
}

func NewTaskLogger(log *zap.Logger) *TaskLogger {
	return &TaskLogger{log: log.Named("tasks").Sugar()}
}

func (l *TaskLogger) Info(message string, params ...any) {
	l.log.Infow(message, pairs(params)...)
}

func (l *TaskLogger) Error(message string, params ...any) {
	l.log.Errorw(message, pairs(params)...)
}

// pairs makes sure keys are strings; zap's sugared logger rejects the
// whole call otherwise.
func pairs(params []any) []any {
	out := make([]any, 0, len(params)+1)
	for i := 0; i < len(params); i += 2 {
		key := fmt.Sprint(params[i])
		if i+1 < len(params) {
			out = append(out, key, params[i+1])
		} else {
			out = append(out, "extra", params[i])
		}
	}
	return out
}
