package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"

	"pitchboard/internal/blobstore"
)

// swapped out by tests, which have no system clipboard
var (
	writeClipboard = clipboard.WriteAll
	readClipboard  = readClipboardText
)

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

// cleanClipboardText drops a byte order mark and surrounding whitespace that some
// clipboards add to copied text.
func cleanClipboardText(text string) string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.TrimSpace(text)
}

func parseLogLevel(s string) zerolog.Level {
	switch strings.ToUpper(s) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// setupLogger opens the log file named by the config. The terminal belongs to the
// editor, so nothing is ever logged to stdout. An empty log_file disables logging.
func setupLogger(config *Config) (zerolog.Logger, io.Closer, error) {
	path := config.logPath()
	if path == "" {
		return zerolog.Nop(), nopCloser{}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        file,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}).Level(parseLogLevel(config.LogLevel)).With().Timestamp().Logger()
	return logger, file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openBlobStore builds the backend named by config.Store.
func openBlobStore(config *Config) (blobstore.Store, io.Closer, error) {
	switch config.Store {
	case storeFile:
		dir := config.SaveDirectory
		if dir == "" {
			dir = "."
		}
		store, err := blobstore.NewDir(dir)
		if err != nil {
			return nil, nil, err
		}
		return store, nopCloser{}, nil
	case storeGData:
		store, err := blobstore.OpenGData(config.AppName)
		if err != nil {
			return nil, nil, err
		}
		return store, nopCloser{}, nil
	case storeSQLite:
		if config.SaveDirectory != "" {
			if err := os.MkdirAll(config.SaveDirectory, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create save directory: %w", err)
			}
		}
		store, err := blobstore.OpenSQLite(config.GetSavePath(sqliteFile))
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", config.Store)
	}
}
