// File: pkg/backends/mysql/backend.go

// Package mysql реализует backend хранилища поверх MySQL
// (драйвер github.com/go-sql-driver/mysql).
package mysql

import (
	"context"
	"database/sql"
	"fmt"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/ruslano69/tradelog/pkg/backends"
	"github.com/ruslano69/tradelog/pkg/sqlgen"
)

func init() {
	backends.Register("mysql", func(cfg backends.Config) (backends.Backend, error) {
		return New(cfg)
	})
}

// Backend реализует backends.Backend для MySQL.
type Backend struct {
	cfg     backends.Config
	dialect Dialect
}

var _ backends.Backend = (*Backend)(nil)

// New создает MySQL backend.
func New(cfg backends.Config) (*Backend, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("mysql: host is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("mysql: database name is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 3306
	}
	return &Backend{cfg: cfg}, nil
}

func (b *Backend) Type() string {
	return "mysql"
}

func (b *Backend) Dialect() sqlgen.Dialect {
	return b.dialect
}

// Open создает пул с единственным соединением.
func (b *Backend) Open(ctx context.Context) (*sql.DB, error) {
	mc := gomysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", b.cfg.Host, b.cfg.Port)
	mc.DBName = b.cfg.Database
	mc.User = b.cfg.User
	mc.Passwd = b.cfg.Password
	mc.Collation = "utf8mb4_bin"
	mc.ParseTime = true

	connector, err := gomysql.NewConnector(mc)
	if err != nil {
		return nil, fmt.Errorf("mysql: invalid connection config: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

// Setup настраивает сессию после подключения.
func (b *Backend) Setup(ctx context.Context, conn *sql.Conn) error {
	// safe-mode ограничивает часть запросов, отключаем:
	if _, err := conn.ExecContext(ctx, "SET SQL_SAFE_UPDATES = 0;"); err != nil {
		return fmt.Errorf("mysql: failed to disable safe updates: %w", err)
	}
	return nil
}

func (b *Backend) ValidationQuery() string {
	return "SELECT 1;"
}

// IndexExistsSQL возвращает запрос с boolean колонкой "exists":
// CREATE INDEX в MySQL не поддерживает IF NOT EXISTS. Имена
// связываются параметрами, так что все индексы проверяются одним
// подготовленным запросом.
func (b *Backend) IndexExistsSQL(index *sqlgen.Index) (string, []any) {
	return "SELECT COUNT(1) AS " + b.dialect.QuoteID("exists") +
			" FROM INFORMATION_SCHEMA.STATISTICS WHERE TABLE_SCHEMA=DATABASE()" +
			" AND TABLE_NAME=? AND INDEX_NAME=?;",
		[]any{index.Table(), index.Name()}
}

// TriggerExistsSQL — аналогично для триггеров.
func (b *Backend) TriggerExistsSQL(trigger *sqlgen.Trigger) (string, []any) {
	return "SELECT COUNT(1) AS " + b.dialect.QuoteID("exists") +
			" FROM INFORMATION_SCHEMA.TRIGGERS WHERE TRIGGER_SCHEMA=DATABASE()" +
			" AND TRIGGER_NAME=?;",
		[]any{trigger.Name()}
}
