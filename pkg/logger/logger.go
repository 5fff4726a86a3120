package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSize = 10
	maxBack = 5
	maxAge  = 30
)

// NewLogger writes to stdout and, when filePath is set, to a rotated file.
func NewLogger(filePath, serviceName, level string) (zerolog.Logger, error) {
	lvl := zerolog.DebugLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("parse log level %q: %w", level, err)
		}
		lvl = parsed
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
		NoColor:    false,
	}

	writers := []io.Writer{consoleWriter}
	if filePath != "" {
		writers = append(writers, newRotator(filePath))
	}

	multiWriter := zerolog.MultiLevelWriter(writers...)
	logger := zerolog.New(multiWriter).With().
		Timestamp().
		Caller().
		Str("service", serviceName).
		Logger().
		Level(lvl)

	logger.Info().
		Str("logsFilePath", filePath).
		Str("serviceName", serviceName).
		Str("level", lvl.String()).
		Msg("Logger initialized with file rotation")

	return logger, nil
}

func newRotator(filePath string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filePath, // log file location
		MaxSize:    maxSize,  // megabytes before rotation
		MaxBackups: maxBack,  // number of old files to retain
		MaxAge:     maxAge,   // days to retain rotated files
		Compress:   true,     // gzip old log files
	}
}
