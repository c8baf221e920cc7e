package logging

import (
	"io"
	"os"
	"strings"

	gokitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// NewLogger creates a logfmt logger writing to w, stamped with time and caller
// and filtered at the given level (debug, info, warn, error; default info).
func NewLogger(w io.Writer, lvl string) gokitlog.Logger {
	if w == nil {
		w = os.Stdout
	}
	logger := gokitlog.NewLogfmtLogger(gokitlog.NewSyncWriter(w))
	logger = level.NewFilter(logger, levelOption(lvl))
	logger = gokitlog.With(logger, "ts", gokitlog.DefaultTimestampUTC, "caller", gokitlog.DefaultCaller)
	return logger
}

// Nop returns a logger that discards everything, for tests
func Nop() gokitlog.Logger {
	return gokitlog.NewNopLogger()
}

func levelOption(lvl string) level.Option {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return level.AllowDebug()
	case "warn", "warning":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}
