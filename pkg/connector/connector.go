// File: pkg/connector/connector.go

package connector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ruslano69/tradelog/pkg/audit"
	"github.com/ruslano69/tradelog/pkg/backends"
	"github.com/ruslano69/tradelog/pkg/sqlgen"
)

// ========== Константы повторов ==========

const (
	// connectionValidationTimeout ограничивает проверочный запрос
	// при валидации живого соединения.
	connectionValidationTimeout = 5 * time.Second

	// connectionMaxAttempts — число попыток установить соединение.
	connectionMaxAttempts = 3

	// connectionRetrySleep — пауза между попытками подключения.
	connectionRetrySleep = 500 * time.Millisecond

	// executeMaxAttempts — число попыток выполнить единицу работы.
	executeMaxAttempts = 10

	// executeRevalidateAfter — начиная с этой попытки перед повтором
	// делается пауза и повторная валидация соединения.
	executeRevalidateAfter = 3

	// executeRetrySleep — пауза между повторами единицы работы.
	executeRetrySleep = 200 * time.Millisecond
)

// ========== Connector ==========

// Connector держит ровно одно физическое соединение с БД и
// сериализует все операции через него. Последовательная модель
// упрощает согласованность: никакие два запроса не конкурируют
// за соединение, а повтор единицы работы всегда видит то же самое
// состояние кеша подготовленных запросов.
type Connector struct {
	backend backends.Backend
	gen     *sqlgen.SQL
	log     audit.Logger

	mu       sync.Mutex
	db       *sql.DB
	conn     *sql.Conn
	stmts    map[string]*sql.Stmt
	tx       *sql.Tx
	shutdown bool
}

// New создаёт коннектор поверх бэкенда. Соединение устанавливается
// лениво при первом Execute. log может быть nil.
func New(backend backends.Backend, log audit.Logger) *Connector {
	if log == nil {
		log = audit.Nop()
	}
	return &Connector{
		backend: backend,
		gen:     sqlgen.New(backend.Dialect()),
		log:     log,
		stmts:   make(map[string]*sql.Stmt),
	}
}

// SQL возвращает генератор запросов для диалекта бэкенда.
func (c *Connector) SQL() *sqlgen.SQL {
	return c.gen
}

// Backend возвращает бэкенд коннектора.
func (c *Connector) Backend() backends.Backend {
	return c.backend
}

// ========== Исполнение ==========

// Execute выполняет единицу работы на единственном соединении.
// Мьютекс удерживается на всё время работы, включая повторы:
// параллельные вызовы выстраиваются в очередь. При сбое работа
// повторяется до executeMaxAttempts раз; начиная с попытки
// executeRevalidateAfter перед повтором делается пауза и
// соединение проверяется заново.
//
// Методы Exec, Query, QueryRow и Transaction можно вызывать
// только изнутри переданной функции.
func (c *Connector) Execute(ctx context.Context, op string, work func(ctx context.Context) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shutdown {
		return ErrShutdown
	}
	if err := c.ensureConnection(ctx, false); err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= executeMaxAttempts; attempt++ {
		lastErr = work(ctx)
		if c.tx != nil {
			// незакрытая транзакция после work — ошибка контракта
			_ = c.tx.Rollback()
			c.tx = nil
			if lastErr == nil {
				lastErr = errors.New("work left an open transaction")
			}
		}
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil || errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			break
		}
		if attempt == executeMaxAttempts {
			break
		}
		if attempt >= executeRevalidateAfter {
			time.Sleep(executeRetrySleep)
			if err := c.ensureConnection(ctx, true); err != nil {
				return err
			}
		}
	}
	c.log.Log(ctx, audit.NewEntry(audit.OpQuery, audit.StatusFailure).
		WithResource(op).WithError(lastErr))
	return storageErr(op, lastErr)
}

// ExecuteResult — вариант Execute для работы, возвращающей значение.
func ExecuteResult[T any](ctx context.Context, c *Connector, op string, work func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := c.Execute(ctx, op, func(ctx context.Context) error {
		var werr error
		result, werr = work(ctx)
		return werr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// ========== Методы внутри Execute ==========

// Prepare возвращает подготовленный запрос из кеша, готовя его при
// первом обращении. Кеш ключуется текстом запроса и сбрасывается
// при переподключении. Вызывается только изнутри Execute.
func (c *Connector) Prepare(ctx context.Context, sqlText string) (*sql.Stmt, error) {
	if stmt, ok := c.stmts[sqlText]; ok {
		return stmt, nil
	}
	stmt, err := c.conn.PrepareContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("prepare %q: %w", sqlText, err)
	}
	c.stmts[sqlText] = stmt
	return stmt, nil
}

// Exec выполняет запрос без результата. Только изнутри Execute.
func (c *Connector) Exec(ctx context.Context, sqlText string, args ...any) (sql.Result, error) {
	stmt, err := c.Prepare(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	if c.tx != nil {
		return c.tx.StmtContext(ctx, stmt).ExecContext(ctx, args...)
	}
	return stmt.ExecContext(ctx, args...)
}

// Query выполняет запрос с множеством строк. Только изнутри Execute.
// Rows обязан быть закрыт до возврата из work.
func (c *Connector) Query(ctx context.Context, sqlText string, args ...any) (*sql.Rows, error) {
	stmt, err := c.Prepare(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	if c.tx != nil {
		return c.tx.StmtContext(ctx, stmt).QueryContext(ctx, args...)
	}
	return stmt.QueryContext(ctx, args...)
}

// QueryRow выполняет запрос с одной строкой. Только изнутри Execute.
func (c *Connector) QueryRow(ctx context.Context, sqlText string, args ...any) (*sql.Row, error) {
	stmt, err := c.Prepare(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	if c.tx != nil {
		return c.tx.StmtContext(ctx, stmt).QueryRowContext(ctx, args...), nil
	}
	return stmt.QueryRowContext(ctx, args...), nil
}

// Transaction исполняет work внутри транзакции на том же
// соединении. Ошибка work откатывает транзакцию, успех фиксирует.
// Вложенные транзакции запрещены. Только изнутри Execute.
func (c *Connector) Transaction(ctx context.Context, work func(ctx context.Context) error) error {
	if c.tx != nil {
		return errors.New("nested transaction")
	}
	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	c.tx = tx
	defer func() { c.tx = nil }()

	if err := work(ctx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetOrInsertID находит запись по lookup-запросу, а при её
// отсутствии вставляет новую с подавлением конфликта уникальности
// и возвращает идентификатор. Если вставка была проигнорирована
// из-за гонки с параллельной записью, повторный lookup разрешает
// её в пользу уже существующей строки. Только изнутри Execute.
func (c *Connector) GetOrInsertID(ctx context.Context, kind, lookupSQL string, lookupArgs []any, insertSQL string, insertArgs []any) (int64, error) {
	var id int64
	row, err := c.QueryRow(ctx, lookupSQL, lookupArgs...)
	if err != nil {
		return 0, err
	}
	err = row.Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup %s: %w", kind, err)
	}

	res, err := c.Exec(ctx, insertSQL, insertArgs...)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", kind, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", kind, err)
	}
	if affected > 0 {
		id, err = res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("insert %s: %w", kind, err)
		}
		c.log.Log(ctx, audit.NewEntry(audit.OpInsert, audit.StatusSuccess).
			WithResource(kind).WithRecordsAffected(1))
		return id, nil
	}

	// вставка подавлена: запись появилась между lookup и insert
	row, err = c.QueryRow(ctx, lookupSQL, lookupArgs...)
	if err != nil {
		return 0, err
	}
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("re-lookup %s: %w", kind, err)
	}
	return id, nil
}

// ========== Объекты схемы ==========

// CreateObject создаёт объект схемы, если его ещё нет. Для
// диалектов без IF NOT EXISTS существование проверяется запросом
// к системному каталогу внутри транзакции.
func (c *Connector) CreateObject(ctx context.Context, obj sqlgen.DBObject) error {
	op := "create " + obj.Kind().String() + " " + obj.Name()
	return c.Execute(ctx, op, func(ctx context.Context) error {
		existsSQL, existsArgs := c.objectExistsSQL(obj)
		if existsSQL == "" {
			_, err := c.Exec(ctx, obj.CreateSQL())
			return err
		}
		return c.Transaction(ctx, func(ctx context.Context) error {
			exists, err := c.objectExists(ctx, existsSQL, existsArgs)
			if err != nil {
				return err
			}
			if exists {
				return nil
			}
			_, err = c.Exec(ctx, obj.CreateSQL())
			return err
		})
	})
}

// DropObject удаляет объект схемы, если он существует.
func (c *Connector) DropObject(ctx context.Context, obj sqlgen.DBObject) error {
	op := "drop " + obj.Kind().String() + " " + obj.Name()
	return c.Execute(ctx, op, func(ctx context.Context) error {
		existsSQL, existsArgs := c.objectExistsSQL(obj)
		if existsSQL == "" {
			_, err := c.Exec(ctx, obj.DropSQL())
			return err
		}
		return c.Transaction(ctx, func(ctx context.Context) error {
			exists, err := c.objectExists(ctx, existsSQL, existsArgs)
			if err != nil {
				return err
			}
			if !exists {
				return nil
			}
			_, err = c.Exec(ctx, obj.DropSQL())
			return err
		})
	})
}

func (c *Connector) objectExistsSQL(obj sqlgen.DBObject) (string, []any) {
	switch o := obj.(type) {
	case *sqlgen.Index:
		return c.backend.IndexExistsSQL(o)
	case *sqlgen.Trigger:
		return c.backend.TriggerExistsSQL(o)
	default:
		return "", nil
	}
}

func (c *Connector) objectExists(ctx context.Context, existsSQL string, args []any) (bool, error) {
	row, err := c.QueryRow(ctx, existsSQL, args...)
	if err != nil {
		return false, err
	}
	var count int64
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// ========== Соединение ==========

// ensureConnection гарантирует живое соединение. При checkAlive
// существующее соединение валидируется запросом с таймаутом;
// мёртвое закрывается вместе с кешем и устанавливается заново.
func (c *Connector) ensureConnection(ctx context.Context, checkAlive bool) error {
	if c.conn != nil {
		if !checkAlive {
			return nil
		}
		if err := c.validate(ctx); err == nil {
			return nil
		}
		c.log.Log(ctx, audit.NewEntry(audit.OpConnect, audit.StatusFailure).
			WithResource(c.backend.Type()).
			WithDetail("connection validation failed, reconnecting"))
		c.closeConn()
	}

	var lastErr error
	for attempt := 1; attempt <= connectionMaxAttempts; attempt++ {
		lastErr = c.connect(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt < connectionMaxAttempts {
			time.Sleep(connectionRetrySleep)
		}
	}
	c.log.Log(ctx, audit.NewEntry(audit.OpConnect, audit.StatusFailure).
		WithResource(c.backend.Type()).WithError(lastErr))
	return storageErr("connect", lastErr)
}

func (c *Connector) connect(ctx context.Context) error {
	if c.db == nil {
		db, err := c.backend.Open(ctx)
		if err != nil {
			return err
		}
		c.db = db
	}
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return err
	}
	if err := c.backend.Setup(ctx, conn); err != nil {
		_ = conn.Close()
		return fmt.Errorf("post-connect setup: %w", err)
	}
	c.conn = conn
	c.log.Log(ctx, audit.NewEntry(audit.OpConnect, audit.StatusSuccess).
		WithResource(c.backend.Type()))
	return nil
}

func (c *Connector) validate(ctx context.Context) error {
	vctx, cancel := context.WithTimeout(ctx, connectionValidationTimeout)
	defer cancel()
	var one int64
	return c.conn.QueryRowContext(vctx, c.backend.ValidationQuery()).Scan(&one)
}

func (c *Connector) closeConn() {
	for _, stmt := range c.stmts {
		_ = stmt.Close()
	}
	c.stmts = make(map[string]*sql.Stmt)
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// ========== Остановка ==========

// Shutdown закрывает соединение и переводит коннектор в
// терминальное состояние. Повторный вызов — ошибка.
func (c *Connector) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shutdown {
		return storageErr("shutdown", errors.New("already shut down"))
	}
	c.shutdown = true

	c.closeConn()
	var err error
	if c.db != nil {
		err = c.db.Close()
		c.db = nil
	}
	if err != nil {
		c.log.Log(ctx, audit.NewEntry(audit.OpDisconnect, audit.StatusFailure).
			WithResource(c.backend.Type()).WithError(err))
		return storageErr("shutdown", err)
	}
	c.log.Log(ctx, audit.NewEntry(audit.OpDisconnect, audit.StatusSuccess).
		WithResource(c.backend.Type()))
	return nil
}

// IsShutdown сообщает, был ли коннектор остановлен.
func (c *Connector) IsShutdown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shutdown
}
