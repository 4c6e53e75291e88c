package activity

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FileLogger appends entries to a single file for its whole lifetime.
type FileLogger struct {
	file   *os.File
	logger *zap.Logger
	path   string
}

// NewFileLogger opens path for appending, creating parent directories.
func NewFileLogger(path string) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating activity log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening activity log: %w", err)
	}

	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey: "msg",
		LineEnding: zapcore.DefaultLineEnding,
	})
	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(f)), zapcore.InfoLevel)
	logger := zap.New(core, zap.ErrorOutput(zapcore.AddSync(&warnOnce{path: path})))

	return &FileLogger{file: f, logger: logger, path: path}, nil
}

// Record writes one line for entry. Write failures are not returned.
func (l *FileLogger) Record(entry Entry) {
	l.logger.Info(entry.Line())
}

// Close flushes and closes the underlying file.
func (l *FileLogger) Close() error {
	_ = l.logger.Sync()
	return l.file.Close()
}

// Path returns the file path of the activity log.
func (l *FileLogger) Path() string {
	return l.path
}

// NopLogger discards all entries.
type NopLogger struct{}

// Record is a no-op.
func (NopLogger) Record(Entry) {}

// warnOnce receives zap's internal write errors and surfaces the first one.
type warnOnce struct {
	path string
	once sync.Once
}

func (w *warnOnce) Write(p []byte) (int, error) {
	w.once.Do(func() {
		slog.Warn("Activity log write failed; further failures are suppressed",
			"path", w.path, "detail", Excerpt(string(p), 0))
	})
	return len(p), nil
}
