// File: cmd/tradelogd/daemon.go

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ruslano69/tradelog/pkg/audit"
	"github.com/ruslano69/tradelog/pkg/backends"
	"github.com/ruslano69/tradelog/pkg/brokers"
	"github.com/ruslano69/tradelog/pkg/deadletter"
	"github.com/ruslano69/tradelog/pkg/ingest"
	"github.com/ruslano69/tradelog/pkg/storage"
	"github.com/ruslano69/tradelog/pkg/tradefeed"
)

const shutdownTimeout = 10 * time.Second

// runDaemon поднимает хранилище и гоняет консьюмера до сигнала
// завершения.
func runDaemon(cfg *DaemonConfig, setupOnly bool) error {
	log, err := newAuditLogger(cfg.Audit)
	if err != nil {
		return err
	}
	defer log.Close()

	backend, err := backends.New(cfg.Database)
	if err != nil {
		return err
	}

	store, err := storage.New(backend, cfg.Storage, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := store.Setup(ctx); err != nil {
		shutdownStore(store)
		return fmt.Errorf("schema setup: %w", err)
	}
	if setupOnly {
		return shutdownStore(store)
	}

	var recorder ingest.TradeRecorder = store.History()
	if cfg.Feed.Enabled {
		feed := tradefeed.Open(cfg.Feed.Config)
		defer feed.Close()
		if err := feed.Ping(ctx); err != nil {
			shutdownStore(store)
			return err
		}
		recorder = tradefeed.NewRecorder(recorder, feed, log)
	}

	broker, err := brokers.New(cfg.Broker)
	if err != nil {
		shutdownStore(store)
		return err
	}
	if err := broker.Connect(ctx); err != nil {
		shutdownStore(store)
		return fmt.Errorf("broker connect: %w", err)
	}
	defer broker.Close()

	consumer := ingest.NewConsumer(broker, recorder, log)
	if cfg.DeadLetter.Path != "" {
		rejects, err := deadletter.Open(cfg.DeadLetter)
		if err != nil {
			shutdownStore(store)
			return err
		}
		rejects.CleanupOld()
		consumer = consumer.WithDeadLetter(rejects)
	}

	runErr := consumer.Run(ctx)
	if errors.Is(runErr, context.Canceled) {
		runErr = nil // штатная остановка по сигналу
	}

	if err := shutdownStore(store); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// newAuditLogger собирает журнал по конфигурации; пустой путь пишет в
// stderr.
func newAuditLogger(cfg AuditSection) (audit.Logger, error) {
	var appender audit.Appender
	if cfg.Path != "" {
		fa, err := audit.NewFileAppender(cfg.Path, cfg.JSON)
		if err != nil {
			return nil, fmt.Errorf("audit log: %w", err)
		}
		appender = fa
	} else {
		appender = audit.NewWriterAppender(os.Stderr, cfg.JSON)
	}
	return audit.NewLogger(audit.Config{
		AsyncMode:  cfg.Async,
		BufferSize: cfg.BufferSize,
	}, appender), nil
}

// shutdownStore останавливает хранилище с собственным таймаутом:
// исходный контекст к этому моменту обычно уже отменён.
func shutdownStore(store *storage.Storage) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return store.Shutdown(ctx)
}
