// File: pkg/backends/sqlite/backend.go

// Package sqlite реализует backend хранилища поверх SQLite
// (драйвер modernc.org/sqlite, без cgo).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // регистрация драйвера "sqlite"

	"github.com/ruslano69/tradelog/pkg/backends"
	"github.com/ruslano69/tradelog/pkg/sqlgen"
)

func init() {
	backends.Register("sqlite", func(cfg backends.Config) (backends.Backend, error) {
		return New(cfg)
	})
}

// Backend реализует backends.Backend для SQLite.
type Backend struct {
	path    string
	dialect Dialect
}

var _ backends.Backend = (*Backend)(nil)

// New создает SQLite backend. Path — путь к файлу базы данных либо
// ":memory:" для базы в памяти (используется в тестах).
func New(cfg backends.Config) (*Backend, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite: database path is required")
	}
	return &Backend{path: cfg.Path}, nil
}

func (b *Backend) Type() string {
	return "sqlite"
}

func (b *Backend) Dialect() sqlgen.Dialect {
	return b.dialect
}

// Open создает пул с единственным соединением. Для файловой базы
// создаётся родительский каталог.
func (b *Backend) Open(ctx context.Context) (*sql.DB, error) {
	dsn := b.path
	if !b.isMemory() && !strings.HasPrefix(dsn, "file:") {
		if dir := filepath.Dir(b.path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("sqlite: failed to create database directory: %w", err)
			}
		}
		dsn = "file:" + dsn
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open %q: %w", b.path, err)
	}
	// ровно одно физическое соединение: вся работа сериализуется
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

// Setup выполняет PRAGMA-настройку сессии.
func (b *Backend) Setup(ctx context.Context, conn *sql.Conn) error {
	pragmas := []string{
		// время ожидания блокировки небольшое: запросы и так
		// повторяются слоем connector
		"PRAGMA busy_timeout = 1000;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA recursive_triggers = OFF;",
	}
	for _, pragma := range pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("sqlite: %s failed: %w", strings.TrimSuffix(pragma, ";"), err)
		}
	}
	return nil
}

func (b *Backend) ValidationQuery() string {
	return "SELECT 1;"
}

// IndexExistsSQL возвращает "": SQLite поддерживает IF NOT EXISTS.
func (b *Backend) IndexExistsSQL(index *sqlgen.Index) (string, []any) {
	return "", nil
}

func (b *Backend) TriggerExistsSQL(trigger *sqlgen.Trigger) (string, []any) {
	return "", nil
}

func (b *Backend) isMemory() bool {
	return b.path == ":memory:" || strings.Contains(b.path, "mode=memory")
}
