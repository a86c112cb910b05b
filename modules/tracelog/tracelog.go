// Package tracelog provides call-site-tagged structured logging for the
// muse engine. Every mutating repository operation logs its entry and
// outcome through this package rather than calling logrus directly, so the
// call-site location survives into internal error context.
package tracelog

import (
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
)

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// Location returns the function name and line number of the caller skip
// frames up the stack from Location itself.
func Location(skip int) (string, int) {
	pc, _, line, ok := runtime.Caller(skip)
	if !ok {
		return "?", line
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "?", line
	}
	return fn.Name(), line
}

// Errorf logs an error at the caller's location and returns it as a plain
// error, for paths that need a logged error without a typed kind.
func Errorf(format string, a ...any) error {
	fn, line := Location(2)
	msg := fmt.Sprintf(format, a...)
	logrus.Errorf("%s:%d %s", fn, line, msg)
	return fmt.Errorf("%s", msg)
}

// Debugf logs at debug level; used for per-object ingestion and other
// high-frequency internal steps.
func Debugf(format string, a ...any) {
	logrus.Debugf(format, a...)
}

// Infof logs at info level; used for ref moves, commit creation, and other
// user-visible mutations.
func Infof(format string, a ...any) {
	logrus.Infof(format, a...)
}

// Warnf logs at warn level; used for recoverable conditions such as a
// merge that left conflicts or a commit cache that could not be created.
func Warnf(format string, a ...any) {
	logrus.Warnf(format, a...)
}

// Internal logs an invariant violation at error level with full context and
// returns it unchanged, so callers can both propagate and have it logged in
// one call: `return tracelog.Internal(err)`.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	fn, line := Location(2)
	logrus.Errorf("internal invariant violation at %s:%d: %v", fn, line, err)
	return err
}
