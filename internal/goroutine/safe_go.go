package goroutine

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/hebammen-backend/internal/logger"
)

// Logger пишет сообщения о панике.
type Logger interface {
	Errorf(format string, args ...interface{})
}

// RecoveryHandler перехватывает panic в фоновых горутинах.
type RecoveryHandler struct {
	logger Logger
}

func NewRecoveryHandler(l Logger) *RecoveryHandler {
	return &RecoveryHandler{logger: l}
}

func (rh *RecoveryHandler) SafeGo(fn func()) {
	go func() {
		defer rh.recover()
		fn()
	}()
}

func (rh *RecoveryHandler) SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	go func() {
		defer rh.recover()
		fn(ctx)
	}()
}

func (rh *RecoveryHandler) recover() {
	if r := recover(); r != nil {
		rh.logger.Errorf("panic in goroutine: %v\nstack trace:\n%s", r, debug.Stack())
	}
}

// logrusLogger откладывает выбор логгера до момента паники, чтобы учитывать logger.Init.
type logrusLogger struct{}

func (logrusLogger) Errorf(format string, args ...interface{}) {
	logger.Get().WithFields(logrus.Fields{"component": "goroutine"}).Errorf(format, args...)
}

var DefaultRecoveryHandler = NewRecoveryHandler(logrusLogger{})

func SafeGo(fn func()) {
	DefaultRecoveryHandler.SafeGo(fn)
}

func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	DefaultRecoveryHandler.SafeGoWithContext(ctx, fn)
}

// Every вызывает fn сразу и затем с интервалом interval до отмены ctx.
// Паника в fn не останавливает цикл.
func Every(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	SafeGoWithContext(ctx, func(ctx context.Context) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			DefaultRecoveryHandler.run(ctx, fn)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	})
}

func (rh *RecoveryHandler) run(ctx context.Context, fn func(context.Context)) {
	defer rh.recover()
	fn(ctx)
}
