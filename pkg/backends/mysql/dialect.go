// File: pkg/backends/mysql/dialect.go

package mysql

import "github.com/ruslano69/tradelog/pkg/sqlgen"

// Dialect реализует SQL-диалект MySQL.
type Dialect struct{}

var _ sqlgen.Dialect = Dialect{}

func (Dialect) Name() string {
	return "mysql"
}

func (Dialect) QuoteID(identifier string) string {
	return "`" + identifier + "`"
}

func (Dialect) Ignore() string {
	return "IGNORE"
}

func (Dialect) AutoIncrement() string {
	return "AUTO_INCREMENT"
}

// DateTimeType возвращает DATETIME(3): точность до миллисекунд.
func (Dialect) DateTimeType() string {
	return "DATETIME(3)"
}

func (Dialect) CurrentTime() string {
	return "NOW(3)"
}

func (d Dialect) UnixTimeMillis(dateTimeColumn string) string {
	return "CAST((UNIX_TIMESTAMP(" + d.QuoteID(dateTimeColumn) + ") * 1000) AS UNSIGNED INTEGER)"
}

// JoinLimit: https://dev.mysql.com/doc/refman/8.0/en/joins-limits.html
func (Dialect) JoinLimit() int {
	return 61
}

func (Dialect) TableExtra() string {
	return "ENGINE = InnoDB, DEFAULT CHARSET = utf8mb4, DEFAULT COLLATE = utf8mb4_bin"
}

// CreateViewPrefix: MySQL не поддерживает IF NOT EXISTS для
// представлений и вместо этого предлагает OR REPLACE.
func (Dialect) CreateViewPrefix() string {
	return "CREATE OR REPLACE VIEW "
}

// SupportsIfNotExists: для индексов и триггеров MySQL не поддерживает
// IF NOT EXISTS — существование проверяется отдельными запросами к
// INFORMATION_SCHEMA на уровне backend.
func (Dialect) SupportsIfNotExists(kind sqlgen.ObjectKind) bool {
	switch kind {
	case sqlgen.KindIndex, sqlgen.KindTrigger:
		return false
	default:
		return true
	}
}

func (Dialect) WrapTriggerBody(body string) string {
	return body
}

// DropIndexSQL: индекс удаляется через таблицу; IF EXISTS не
// поддерживается, существование проверяется отдельно.
func (d Dialect) DropIndexSQL(table, name string) string {
	return "DROP INDEX " + d.QuoteID(name) + " ON " + d.QuoteID(table) + ";"
}
