package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger writes to w with "HH:MM:SS.ms" timestamps. At debug level it
// also reports the calling file and line.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		ReportCaller:    level <= log.DebugLevel,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// timer logs how long a command took once it is done.
type timer struct {
	logger *log.Logger
	start  time.Time
}

func newTimer(l *log.Logger) *timer {
	return &timer{logger: l, start: time.Now()}
}

// done logs msg at info level with keyvals and the elapsed duration, e.g.
// "Scan finished files=3 issues=1 duration=1.234s".
func (t *timer) done(msg string, keyvals ...any) {
	t.logger.Helper()
	keyvals = append(keyvals, "duration", time.Since(t.start).Round(time.Millisecond))
	t.logger.Info(msg, keyvals...)
}
