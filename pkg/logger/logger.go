package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Loggers holds the application loggers. Info-level output goes to stdout,
// errors to stderr.
type Loggers struct {
	InfoLogger  *slog.Logger
	ErrorLogger *slog.Logger
}

func SetupLogger(level string) (*Loggers, error) {
	return newLoggers(level, os.Stdout, os.Stderr)
}

func newLoggers(level string, out, errOut io.Writer) (*Loggers, error) {
	if level == "" {
		level = "info"
	}

	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	infoHandler := log.NewWithOptions(out, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})

	errorHandler := log.NewWithOptions(errOut, log.Options{
		Level:           log.ErrorLevel,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})

	return &Loggers{
		InfoLogger:  slog.New(infoHandler),
		ErrorLogger: slog.New(errorHandler),
	}, nil
}

// Discard returns loggers that drop everything. Useful in tests.
func Discard() *Loggers {
	l, _ := newLoggers("error", io.Discard, io.Discard)
	return l
}
