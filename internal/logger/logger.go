package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// New builds a LOKI logger writing to w. Debug lowers the level so that
// instruction traces show up.
func New(w io.Writer, debug, noColor bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportCaller:    debug,
		ReportTimestamp: false,
		Prefix:          "LOKI",
		Level:           log.WarnLevel,
	})

	if debug {
		l.SetLevel(log.DebugLevel)
	}

	l.SetColorProfile(termenv.ANSI256)
	if noColor {
		l.SetColorProfile(termenv.Ascii)
	}
	return l
}

// Init installs the default logger on stderr.
func Init(debug, noColor bool) {
	log.SetDefault(New(os.Stderr, debug, noColor))
}
