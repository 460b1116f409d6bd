// File: pkg/backends/backend.go

// Package backends определяет интерфейс подключения к поддерживаемым
// СУБД (SQLite, MySQL) и фабрику для их создания по конфигурации.
package backends

import (
	"context"
	"database/sql"

	"github.com/ruslano69/tradelog/pkg/sqlgen"
)

// Backend представляет один тип СУБД: его диалект SQL и способ
// открытия физического подключения.
//
// Backend не держит состояние соединения: этим занимается
// pkg/connector, которому backend передаётся при создании.
type Backend interface {
	// Type возвращает тип СУБД (sqlite, mysql)
	Type() string

	// Dialect возвращает SQL-диалект backend'а
	Dialect() sqlgen.Dialect

	// Open создает пул database/sql, ограниченный одним соединением.
	// Соединение при этом не устанавливается: драйверы database/sql
	// подключаются лениво.
	Open(ctx context.Context) (*sql.DB, error)

	// Setup выполняет настройку сессии сразу после подключения
	// (PRAGMA у SQLite, сессионные переменные у MySQL)
	Setup(ctx context.Context, conn *sql.Conn) error

	// ValidationQuery возвращает запрос проверки живости соединения
	ValidationQuery() string

	// IndexExistsSQL возвращает запрос существования индекса с boolean
	// колонкой "exists" и его параметрами, либо "" если CREATE INDEX
	// поддерживает IF NOT EXISTS и отдельная проверка не нужна.
	// Имена передаются параметрами: один подготовленный запрос
	// обслуживает все индексы через кеш стейтментов.
	IndexExistsSQL(index *sqlgen.Index) (string, []any)

	// TriggerExistsSQL — аналогично для триггеров
	TriggerExistsSQL(trigger *sqlgen.Trigger) (string, []any)
}

// Config содержит параметры подключения к СУБД
type Config struct {
	Type     string `yaml:"type"`     // sqlite или mysql
	Path     string `yaml:"path"`     // путь к файлу БД (sqlite)
	Host     string `yaml:"host"`     // хост (mysql)
	Port     int    `yaml:"port"`     // порт (mysql, по умолчанию 3306)
	Database string `yaml:"database"` // имя базы (mysql)
	User     string `yaml:"user"`     // пользователь (mysql)
	Password string `yaml:"password"` // пароль (mysql)
}
