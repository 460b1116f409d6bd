// File: pkg/sqlgen/dialect.go

// Package sqlgen генерирует DDL/DML текст независимо от конкретного SQL
// диалекта. Построители (TableBuilder, IndexBuilder, ...) двухфазные:
// изменяемый построитель выдаёт неизменяемый объект схемы через Build(),
// после чего объект может только генерировать SQL.
package sqlgen

import "fmt"

// DefaultRoleDelimiter — разделитель ролей в именах колонок комбинированных
// представлений (например "shop_owner_name").
const DefaultRoleDelimiter = "_"

// ObjectKind определяет тип объекта схемы.
type ObjectKind int

const (
	KindTable ObjectKind = iota
	KindIndex
	KindView
	KindTrigger
)

// String возвращает имя типа объекта для сообщений об ошибках и аудита.
func (k ObjectKind) String() string {
	switch k {
	case KindTable:
		return "table"
	case KindIndex:
		return "index"
	case KindView:
		return "view"
	case KindTrigger:
		return "trigger"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Dialect описывает синтаксические особенности конкретной СУБД.
// Реализации находятся в pkg/backends/sqlite и pkg/backends/mysql.
type Dialect interface {
	// Name возвращает имя диалекта (sqlite, mysql)
	Name() string

	// QuoteID экранирует идентификатор (имя таблицы, колонки)
	QuoteID(identifier string) string

	// Ignore возвращает ключевое слово конфликт-игнорирующей вставки,
	// подставляемое в "INSERT {ignore} INTO"
	Ignore() string

	// AutoIncrement возвращает ключевое слово автоинкремента
	AutoIncrement() string

	// DateTimeType возвращает тип колонки для временных меток
	DateTimeType() string

	// CurrentTime возвращает выражение текущего времени в точности,
	// совместимой с DateTimeType
	CurrentTime() string

	// UnixTimeMillis возвращает выражение, преобразующее значение
	// datetime-колонки в миллисекунды unix-времени
	UnixTimeMillis(dateTimeColumn string) string

	// JoinLimit возвращает максимальное число таблиц в одном JOIN
	JoinLimit() int

	// TableExtra возвращает суффикс CREATE TABLE (движок, кодировка);
	// пустая строка если не требуется
	TableExtra() string

	// CreateViewPrefix возвращает начало оператора создания представления
	// ("CREATE VIEW IF NOT EXISTS " либо "CREATE OR REPLACE VIEW ")
	CreateViewPrefix() string

	// SupportsIfNotExists сообщает, поддерживает ли CREATE данного типа
	// объектов "IF NOT EXISTS". Если нет, существование проверяется
	// отдельным запросом на уровне backend.
	SupportsIfNotExists(kind ObjectKind) bool

	// WrapTriggerBody оборачивает тело триггера в синтаксис диалекта
	WrapTriggerBody(body string) string

	// DropIndexSQL возвращает оператор удаления индекса: у MySQL индекс
	// удаляется через таблицу, у SQLite — по имени
	DropIndexSQL(table, name string) string
}

// DBObject — создаваемый объект схемы. Генераторы SQL идемпотентны и
// ничего не исполняют.
type DBObject interface {
	Kind() ObjectKind
	Name() string
	CreateSQL() string
	DropSQL() string
}

// SQL привязывает построители объектов схемы к диалекту.
type SQL struct {
	dialect Dialect
}

// New создает генератор SQL для диалекта.
func New(dialect Dialect) *SQL {
	return &SQL{dialect: dialect}
}

// Dialect возвращает диалект генератора.
func (s *SQL) Dialect() Dialect {
	return s.dialect
}

// QuoteID экранирует идентификатор.
func (s *SQL) QuoteID(identifier string) string {
	return s.dialect.QuoteID(identifier)
}

// QualifiedColumn возвращает полное экранированное имя колонки.
func (s *SQL) QualifiedColumn(tableName, columnName string) string {
	return s.dialect.QuoteID(tableName) + "." + s.dialect.QuoteID(columnName)
}
