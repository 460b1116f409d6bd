// File: pkg/sqlgen/index.go

package sqlgen

import (
	"fmt"
	"strings"
)

// Index — неизменяемый построенный индекс.
type Index struct {
	sql     *SQL
	table   string
	name    string
	unique  bool
	columns []string
}

var _ DBObject = (*Index)(nil)

func (i *Index) Kind() ObjectKind {
	return KindIndex
}

func (i *Index) Name() string {
	return i.name
}

// Table возвращает имя индексируемой таблицы.
func (i *Index) Table() string {
	return i.table
}

func (i *Index) IsUnique() bool {
	return i.unique
}

// Columns возвращает индексируемые колонки в порядке объявления.
func (i *Index) Columns() []string {
	return i.columns
}

// CreateSQL возвращает оператор создания индекса. Если диалект не
// поддерживает IF NOT EXISTS для индексов, существование проверяется
// отдельно на уровне backend.
func (i *Index) CreateSQL() string {
	d := i.sql.dialect
	var sb strings.Builder
	sb.WriteString("CREATE")
	if i.unique {
		sb.WriteString(" UNIQUE")
	}
	sb.WriteString(" INDEX")
	if d.SupportsIfNotExists(KindIndex) {
		sb.WriteString(" IF NOT EXISTS")
	}
	sb.WriteByte(' ')
	sb.WriteString(d.QuoteID(i.name))
	sb.WriteString(" ON ")
	sb.WriteString(d.QuoteID(i.table))
	sb.WriteString(" (")
	for n, c := range i.columns {
		if n > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(d.QuoteID(c))
	}
	sb.WriteString(");")
	return sb.String()
}

// DropSQL возвращает оператор удаления индекса.
func (i *Index) DropSQL() string {
	return i.sql.dialect.DropIndexSQL(i.table, i.name)
}

// IndexBuilder накапливает определение индекса.
type IndexBuilder struct {
	sql     *SQL
	table   string
	name    string
	unique  bool
	columns []string
}

// Index создает построитель индекса.
func (s *SQL) Index() *IndexBuilder {
	return &IndexBuilder{sql: s}
}

// Table устанавливает индексируемую таблицу.
func (b *IndexBuilder) Table(table *Table) *IndexBuilder {
	b.table = table.Name()
	return b
}

// TableName устанавливает индексируемую таблицу по имени.
func (b *IndexBuilder) TableName(table string) *IndexBuilder {
	b.table = table
	return b
}

// Name устанавливает имя индекса. Если не задано, Build использует
// "<таблица>_<первая колонка>".
func (b *IndexBuilder) Name(name string) *IndexBuilder {
	b.name = name
	return b
}

// Unique делает индекс уникальным.
func (b *IndexBuilder) Unique() *IndexBuilder {
	b.unique = true
	return b
}

// Column добавляет индексируемую колонку.
func (b *IndexBuilder) Column(column *Column) *IndexBuilder {
	b.columns = append(b.columns, column.Name())
	return b
}

// ColumnName добавляет индексируемую колонку по имени.
func (b *IndexBuilder) ColumnName(column string) *IndexBuilder {
	b.columns = append(b.columns, column)
	return b
}

// Build валидирует и возвращает неизменяемый индекс.
func (b *IndexBuilder) Build() (*Index, error) {
	if b.table == "" {
		return nil, fmt.Errorf("index has no table")
	}
	if len(b.columns) == 0 {
		return nil, fmt.Errorf("index on %q has no columns", b.table)
	}
	name := b.name
	if name == "" {
		name = b.table + "_" + b.columns[0]
	}
	return &Index{
		sql:     b.sql,
		table:   b.table,
		name:    name,
		unique:  b.unique,
		columns: append([]string(nil), b.columns...),
	}, nil
}
