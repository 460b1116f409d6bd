// File: pkg/audit/appender.go

package audit

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Appender - приёмник записей журнала
type Appender interface {
	// Append - записать entry
	Append(ctx context.Context, entry *Entry) error

	// Close - закрыть appender
	Close() error
}

// ========== WriterAppender ==========

// WriterAppender пишет записи в произвольный io.Writer (stdout, буфер
// в тестах). Writer не закрывается.
type WriterAppender struct {
	mu         sync.Mutex
	w          io.Writer
	formatJSON bool
}

// NewWriterAppender создает appender поверх io.Writer.
func NewWriterAppender(w io.Writer, formatJSON bool) *WriterAppender {
	return &WriterAppender{w: w, formatJSON: formatJSON}
}

func (wa *WriterAppender) Append(ctx context.Context, entry *Entry) error {
	wa.mu.Lock()
	defer wa.mu.Unlock()

	data, err := formatEntry(entry, wa.formatJSON)
	if err != nil {
		return err
	}
	_, err = wa.w.Write(data)
	return err
}

func (wa *WriterAppender) Close() error {
	return nil
}

// ========== FileAppender ==========

// FileAppender пишет записи в файл, по строке на запись.
type FileAppender struct {
	mu         sync.Mutex
	file       *os.File
	formatJSON bool
}

// NewFileAppender создает file appender; директория файла создаётся
// при необходимости.
func NewFileAppender(path string, formatJSON bool) (*FileAppender, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create audit directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit file: %w", err)
	}
	return &FileAppender{file: file, formatJSON: formatJSON}, nil
}

func (fa *FileAppender) Append(ctx context.Context, entry *Entry) error {
	fa.mu.Lock()
	defer fa.mu.Unlock()

	data, err := formatEntry(entry, fa.formatJSON)
	if err != nil {
		return err
	}
	if _, err := fa.file.Write(data); err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

func (fa *FileAppender) Close() error {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	return fa.file.Close()
}

func formatEntry(entry *Entry, formatJSON bool) ([]byte, error) {
	if formatJSON {
		data, err := entry.ToJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to marshal entry: %w", err)
		}
		return append(data, '\n'), nil
	}
	return []byte(entry.String() + "\n"), nil
}
