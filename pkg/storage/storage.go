// File: pkg/storage/storage.go
//
// Пакет storage реализует журнал торговли поверх единственного
// сериализованного соединения с БД: дедуплицированные справочники
// игроков, миров, предметов и магазинов, факты сделок и запросы
// истории по селекторам с пагинацией.

package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ruslano69/tradelog/pkg/audit"
	"github.com/ruslano69/tradelog/pkg/backends"
	"github.com/ruslano69/tradelog/pkg/connector"
	"github.com/ruslano69/tradelog/pkg/ledger"
)

// defaultQueueSize — ёмкость очереди асинхронных задач по умолчанию.
const defaultQueueSize = 64

// Config настраивает хранилище.
type Config struct {
	// TablePrefix добавляется к именам всех таблиц и представлений.
	TablePrefix string `yaml:"table_prefix"`
	// QueueSize — ёмкость очереди асинхронных задач.
	QueueSize int `yaml:"queue_size"`
}

// Storage — фасад журнала торговли. Синхронные операции доступны
// через Players и History; асинхронные ставятся в очередь и
// исполняются одной фоновой горутиной в порядке поступления.
type Storage struct {
	c       *connector.Connector
	schema  *Schema
	players *PlayerStorage
	history *HistoryStorage
	log     audit.Logger

	mu     sync.Mutex
	closed bool
	tasks  chan func()
	wg     sync.WaitGroup
}

// New создает хранилище поверх бэкенда. Соединение устанавливается
// лениво, схема создаётся вызовом Setup. log может быть nil.
func New(backend backends.Backend, cfg Config, log audit.Logger) (*Storage, error) {
	if log == nil {
		log = audit.Nop()
	}
	c := connector.New(backend, log)
	schema, err := NewSchema(c.SQL(), cfg.TablePrefix)
	if err != nil {
		return nil, err
	}
	st := newStatements(c.SQL(), schema)

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	s := &Storage{
		c:      c,
		schema: schema,
		log:    log,
		tasks:  make(chan func(), queueSize),
	}
	s.players = newPlayerStorage(c, st)
	s.history = newHistoryStorage(c, schema, st, s.players)

	s.wg.Add(1)
	go s.worker()
	return s, nil
}

// Players возвращает хранилище профилей игроков.
func (s *Storage) Players() *PlayerStorage {
	return s.players
}

// History возвращает хранилище истории сделок.
func (s *Storage) History() *HistoryStorage {
	return s.history
}

// Connector возвращает коннектор хранилища.
func (s *Storage) Connector() *connector.Connector {
	return s.c
}

// Schema возвращает объекты схемы хранилища.
func (s *Storage) Schema() *Schema {
	return s.schema
}

// Setup создаёт таблицы и индексы и пересоздаёт представления.
// Идемпотентен, вызывается при каждом старте.
func (s *Storage) Setup(ctx context.Context) error {
	started := time.Now()
	if err := s.schema.Setup(ctx, s.c); err != nil {
		s.log.Log(ctx, audit.NewEntry(audit.OpSetup, audit.StatusFailure).
			WithResource(s.c.Backend().Type()).WithError(err))
		return err
	}
	s.log.Log(ctx, audit.NewEntry(audit.OpSetup, audit.StatusSuccess).
		WithResource(s.c.Backend().Type()).WithDuration(time.Since(started)))
	return nil
}

// ========== Асинхронные операции ==========

// Result — результат асинхронной операции.
type Result[T any] struct {
	Value T
	Err   error
}

func (s *Storage) submit(task func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return connector.ErrShutdown
	}
	s.tasks <- task
	return nil
}

func (s *Storage) worker() {
	defer s.wg.Done()
	for task := range s.tasks {
		task()
	}
}

// Async ставит операцию в очередь хранилища и возвращает канал с её
// результатом. Канал получает ровно одно значение.
func Async[T any](ctx context.Context, s *Storage, op func(ctx context.Context) (T, error)) <-chan Result[T] {
	out := make(chan Result[T], 1)
	err := s.submit(func() {
		value, opErr := op(ctx)
		out <- Result[T]{Value: value, Err: opErr}
	})
	if err != nil {
		out <- Result[T]{Err: err}
	}
	return out
}

// LogTradeAsync записывает сделку в фоне. Канал получает ровно одну
// ошибку (или nil).
func (s *Storage) LogTradeAsync(ctx context.Context, trade ledger.LoggedTrade) <-chan error {
	out := make(chan error, 1)
	err := s.submit(func() {
		out <- s.history.LogTrade(ctx, trade)
	})
	if err != nil {
		out <- err
	}
	return out
}

// ========== Остановка ==========

// Shutdown дожидается поставленных задач и закрывает соединение.
// Повторный вызов — ошибка.
func (s *Storage) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("storage: already shut down")
	}
	s.closed = true
	close(s.tasks)
	s.mu.Unlock()

	s.wg.Wait()
	return s.c.Shutdown(ctx)
}
