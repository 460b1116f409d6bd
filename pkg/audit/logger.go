// File: pkg/audit/logger.go

package audit

import (
	"context"
	"sync"
)

// Logger - основной интерфейс журнала
type Logger interface {
	Log(ctx context.Context, entry *Entry)
	LogSuccess(ctx context.Context, operation Operation) *Entry
	LogFailure(ctx context.Context, operation Operation, err error) *Entry
	Close() error
}

// Nop возвращает журнал, который ничего не пишет.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Log(ctx context.Context, entry *Entry) {}
func (nopLogger) LogSuccess(ctx context.Context, operation Operation) *Entry {
	return NewEntry(operation, StatusSuccess)
}
func (nopLogger) LogFailure(ctx context.Context, operation Operation, err error) *Entry {
	return NewEntry(operation, StatusFailure).WithError(err)
}
func (nopLogger) Close() error { return nil }

// AuditLogger пишет записи в appender'ы. В асинхронном режиме записи
// буферизуются каналом и пишутся отдельной горутиной; при переполнении
// буфера запись выполняется синхронно, чтобы ничего не терять.
type AuditLogger struct {
	appenders []Appender
	asyncMode bool

	entryChannel chan *Entry
	done         chan struct{}
	wg           sync.WaitGroup
	onError      func(error)

	closeOnce sync.Once
}

// Config - конфигурация журнала
type Config struct {
	// AsyncMode - асинхронная запись в appenders
	AsyncMode bool

	// BufferSize - размер буфера для асинхронного режима
	BufferSize int

	// OnError - callback при ошибке записи
	OnError func(error)
}

var _ Logger = (*AuditLogger)(nil)

// NewLogger создает журнал поверх appender'ов.
func NewLogger(config Config, appenders ...Appender) *AuditLogger {
	l := &AuditLogger{
		appenders: appenders,
		asyncMode: config.AsyncMode,
		done:      make(chan struct{}),
		onError:   config.OnError,
	}

	if l.asyncMode {
		bufferSize := config.BufferSize
		if bufferSize <= 0 {
			bufferSize = 1000
		}
		l.entryChannel = make(chan *Entry, bufferSize)
		l.wg.Add(1)
		go l.processEntries()
	}
	return l
}

// Log записывает entry. Ошибки appender'ов не прерывают вызывающего:
// журнал вспомогательный, сбой записи отдаётся в OnError.
func (l *AuditLogger) Log(ctx context.Context, entry *Entry) {
	if entry == nil {
		return
	}
	if l.asyncMode {
		select {
		case l.entryChannel <- entry:
			return
		case <-l.done:
			return
		default:
			// буфер переполнен, пишем синхронно
		}
	}
	l.writeEntry(ctx, entry)
}

// LogSuccess записывает успешную операцию.
func (l *AuditLogger) LogSuccess(ctx context.Context, operation Operation) *Entry {
	entry := NewEntry(operation, StatusSuccess)
	l.Log(ctx, entry)
	return entry
}

// LogFailure записывает неудачную операцию.
func (l *AuditLogger) LogFailure(ctx context.Context, operation Operation, err error) *Entry {
	entry := NewEntry(operation, StatusFailure).WithError(err)
	l.Log(ctx, entry)
	return entry
}

// Close останавливает фоновую горутину, дописывает буфер и закрывает
// appender'ы.
func (l *AuditLogger) Close() error {
	var firstErr error
	l.closeOnce.Do(func() {
		close(l.done)
		l.wg.Wait()
		for _, appender := range l.appenders {
			if err := appender.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	})
	return firstErr
}

func (l *AuditLogger) writeEntry(ctx context.Context, entry *Entry) {
	for _, appender := range l.appenders {
		if err := appender.Append(ctx, entry); err != nil && l.onError != nil {
			l.onError(err)
		}
	}
}

func (l *AuditLogger) processEntries() {
	defer l.wg.Done()
	for {
		select {
		case entry := <-l.entryChannel:
			l.writeEntry(context.Background(), entry)
		case <-l.done:
			// дописываем остаток буфера:
			for {
				select {
				case entry := <-l.entryChannel:
					l.writeEntry(context.Background(), entry)
				default:
					return
				}
			}
		}
	}
}
