package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a zap-backed logger writing to w at the given level. Debug enables logr verbosity 1, which
// carries the reader's multi-line continuation messages.
func New(level string, w io.Writer) (logr.Logger, error) {
	lower := strings.ToLower(strings.TrimSpace(level))
	encoder := zap.NewProductionEncoderConfig()
	encoder.TimeKey = ""
	var zapLevel zapcore.Level
	switch lower {
	case "debug":
		encoder = zap.NewDevelopmentEncoderConfig()
		encoder.TimeKey = ""
		zapLevel = zapcore.DebugLevel
	case "info", "":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return logr.Logger{}, fmt.Errorf("unknown log level %q (expected debug, info, warn, or error)", level)
	}
	atomic := zap.NewAtomicLevelAt(zapLevel)
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoder), zapcore.AddSync(w), atomic)
	return zapr.NewLogger(zap.New(core)), nil
}
