// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RunLog appends one plain line per recorded failure to a file. The file
// and its directory are only created when the first line is recorded.
type RunLog struct {
	path string

	mu     sync.Mutex
	file   *os.File
	logger *zap.Logger
}

// NewRunLog creates a run log backed by path
func NewRunLog(path string) *RunLog {
	return &RunLog{path: path}
}

// Path returns the file the log appends to
func (l *RunLog) Path() string {
	return l.path
}

// Record appends message as a single line
func (l *RunLog) Record(message string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logger == nil {
		if err := l.open(); err != nil {
			return err
		}
	}

	l.logger.Info(message)
	return nil
}

// Close flushes the log. It is safe to call when nothing was recorded.
func (l *RunLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logger == nil {
		return nil
	}
	syncErr := l.logger.Sync()
	closeErr := l.file.Close()
	l.logger = nil
	l.file = nil
	if syncErr != nil {
		return syncErr
	}
	return closeErr
}

func (l *RunLog) open() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("error creating log directory: %w", err)
	}

	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error opening run log %s: %w", l.path, err)
	}

	// Message only: no timestamp, level or caller
	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey: "message",
		LineEnding: zapcore.DefaultLineEnding,
	})
	core := zapcore.NewCore(encoder, zapcore.AddSync(file), zapcore.InfoLevel)

	l.file = file
	l.logger = zap.New(core)
	return nil
}
