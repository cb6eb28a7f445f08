// Package file keeps the print action log as JSON lines on disk.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/corray333/backend-labs/adminlocal/internal/service/models/printlog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	DefaultPath = "logs/print-log.txt"

	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// PrintLogFileRepository appends one JSON object per line.
type PrintLogFileRepository struct {
	file *os.File
	core zapcore.Core
}

// NewPrintLogFileRepository opens path for appending, creating the
// directory when needed.
func NewPrintLogFileRepository(path string) (*PrintLogFileRepository, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create print log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open print log: %w", err)
	}

	encoder := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		EncodeTime:     zapcore.TimeEncoderOfLayout(timestampLayout),
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
	})

	return &PrintLogFileRepository{
		file: f,
		core: zapcore.NewCore(encoder, zapcore.Lock(f), zap.InfoLevel),
	}, nil
}

func (r *PrintLogFileRepository) Append(_ context.Context, entry printlog.Entry) error {
	err := r.core.Write(
		zapcore.Entry{Level: zap.InfoLevel, Time: entry.Timestamp.UTC()},
		[]zapcore.Field{
			zap.String("type", string(entry.Type)),
			zap.Stringp("orderId", entry.OrderID),
			zap.String("status", string(entry.Status)),
			zap.Stringp("error", entry.Error),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to append print log entry: %w", err)
	}

	return nil
}

// Close flushes and releases the log file.
func (r *PrintLogFileRepository) Close() error {
	if err := r.core.Sync(); err != nil {
		return err
	}

	return r.file.Close()
}
