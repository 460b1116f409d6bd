// File: pkg/backends/sqlite/dialect.go

package sqlite

import "github.com/ruslano69/tradelog/pkg/sqlgen"

// Dialect реализует SQL-диалект SQLite.
type Dialect struct{}

var _ sqlgen.Dialect = Dialect{}

func (Dialect) Name() string {
	return "sqlite"
}

func (Dialect) QuoteID(identifier string) string {
	return "`" + identifier + "`"
}

func (Dialect) Ignore() string {
	return "OR IGNORE"
}

func (Dialect) AutoIncrement() string {
	return "AUTOINCREMENT"
}

// DateTimeType возвращает TEXT: временные метки хранятся строками.
func (Dialect) DateTimeType() string {
	return "TEXT"
}

func (Dialect) CurrentTime() string {
	return "strftime('%Y-%m-%d %H:%M:%f','now')"
}

func (d Dialect) UnixTimeMillis(dateTimeColumn string) string {
	// 2440587.5 = julianday('1970-01-01'), 86400000 = миллисекунд в сутках
	return "CAST((strftime('%J', " + d.QuoteID(dateTimeColumn) + ") - 2440587.5)*86400000 AS INTEGER)"
}

// JoinLimit: https://www.sqlite.org/limits.html
func (Dialect) JoinLimit() int {
	return 64
}

func (Dialect) TableExtra() string {
	return ""
}

func (Dialect) CreateViewPrefix() string {
	return "CREATE VIEW IF NOT EXISTS "
}

func (Dialect) SupportsIfNotExists(kind sqlgen.ObjectKind) bool {
	return true
}

func (Dialect) WrapTriggerBody(body string) string {
	return "BEGIN " + body + "; END"
}

func (d Dialect) DropIndexSQL(table, name string) string {
	return "DROP INDEX IF EXISTS " + d.QuoteID(name) + ";"
}
