package renderer

import (
	"log"
	"os"

	"github.com/df07/go-studio-render/pkg/core"
)

// DefaultLogger implements core.Logger by writing through the standard logger to stderr
type DefaultLogger struct {
	logger *log.Logger
}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	dl.logger.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{logger: log.New(os.Stderr, "", log.LstdFlags)}
}

// nopLogger discards all output
type nopLogger struct{}

func (nopLogger) Printf(format string, args ...interface{}) {}

// NewNopLogger creates a logger that discards everything
func NewNopLogger() core.Logger {
	return nopLogger{}
}
