package glnode

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards all records. Enabled returns false so callers
// skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger used by glnode and its sub-packages when
// a builder is not given its own logger. By default nothing is logged.
// Pass nil to restore silent behaviour.
//
// Log levels used:
//   - [slog.LevelDebug]: build traversal details.
//   - [slog.LevelWarn]: degraded output such as detected recursion, missing
//     geometry attributes or operations unsupported in the current shader stage.
//   - [slog.LevelError]: a node generated no code where a value was required.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current package logger. Safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// nodeAttr returns a log attribute identifying the node.
func nodeAttr(n Node) slog.Attr {
	if n == nil {
		return slog.String("node", "<nil>")
	}
	return slog.Group("node", slog.String("type", typeName(n)), slog.Uint64("id", n.NodeBase().ID()))
}
