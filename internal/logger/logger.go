package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New creates a zerolog logger from file-based configuration. Console output
// always goes to stderr; file output is rotated with lumberjack when enabled.
func New(cfg FileLogConfig) (zerolog.Logger, error) {
	var writers []io.Writer

	writers = append(writers, newConsoleWriter(cfg.LogFormat))

	if cfg.EnableFile {
		fileWriter, err := newFileWriter(cfg)
		if err != nil {
			return zerolog.Logger{}, err
		}
		writers = append(writers, fileWriter)
	}

	level := ParseLevel(cfg.LogLevel)
	multi := zerolog.MultiLevelWriter(writers...)
	log := zerolog.New(multi).Level(level).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(level)

	return log, nil
}

// newConsoleWriter returns a writer for the configured console format. The
// "json" format writes raw zerolog JSON; anything else gets the human console
// writer.
func newConsoleWriter(format string) io.Writer {
	if strings.EqualFold(format, "json") {
		return os.Stderr
	}
	return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
}

// newFileWriter returns a rotating file writer.
func newFileWriter(cfg FileLogConfig) (io.Writer, error) {
	logFile := cfg.LogFile
	if logFile == "" {
		logFile = DefaultLogFile
	}
	if dir := filepath.Dir(logFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	maxSize := cfg.MaxLogSizeMB
	if maxSize <= 0 {
		maxSize = DefaultMaxLogSizeMB
	}
	maxBackups := cfg.MaxLogBackups
	if maxBackups <= 0 {
		maxBackups = DefaultMaxLogBackups
	}

	return &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		LocalTime:  true,
	}, nil
}
