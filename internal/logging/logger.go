// Package logging provides the leveled logger used throughout stickerpress.
// It is a thin printf-style facade over zerolog: a ConsoleWriter for the
// terminal plus an optional plain-text file sink (--log).
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/backmassage/stickerpress/internal/config"
	"github.com/backmassage/stickerpress/internal/term"
)

// Logger wraps a zerolog.Logger with the printf-style methods the rest of
// the codebase calls. Success is an info-level event rendered green on TTYs.
type Logger struct {
	z    zerolog.Logger
	file *os.File
}

// NewLogger configures terminal colors from cfg, builds the console writer,
// and optionally opens the log file sink. Call Close when done if LogFile
// was set.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)

	console := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
		NoColor:    !term.Enabled(),
	}

	writers := []io.Writer{console}
	var file *os.File
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		file = f
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        f,
			TimeFormat: "2006-01-02 15:04:05",
			NoColor:    true,
		})
	}

	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339

	z := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().Logger()

	return &Logger{z: z, file: file}, nil
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...any) {
	l.z.Info().Msgf(format, args...)
}

// Success logs at INFO level with the message rendered green when colors
// are enabled, marking a completed conversion or passed check.
func (l *Logger) Success(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.z.Info().Msg(term.Green + msg + term.NC)
}

// Warn logs at WARN level.
func (l *Logger) Warn(format string, args ...any) {
	l.z.Warn().Msgf(format, args...)
}

// Error logs at ERROR level.
func (l *Logger) Error(format string, args ...any) {
	l.z.Error().Msgf(format, args...)
}

// Debug logs at DEBUG level; filtered out unless --verbose was given.
func (l *Logger) Debug(format string, args ...any) {
	l.z.Debug().Msgf(format, args...)
}
