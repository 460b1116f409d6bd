// File: pkg/sqlgen/table.go

package sqlgen

import (
	"fmt"
	"strings"
)

// ========== Column ==========

// Column — неизменяемая колонка построенной таблицы.
type Column struct {
	table *Table
	name  string
	typ   string

	primaryKey    bool
	autoIncrement bool
	notNull       bool
	defaultValue  string // "" означает DEFAULT NULL
}

// Table возвращает таблицу колонки.
func (c *Column) Table() *Table {
	return c.table
}

// Name возвращает имя колонки.
func (c *Column) Name() string {
	return c.name
}

// Type возвращает тип колонки (нормализован к верхнему регистру).
func (c *Column) Type() string {
	return c.typ
}

func (c *Column) IsPrimaryKey() bool {
	return c.primaryKey
}

func (c *Column) IsAutoIncrement() bool {
	return c.autoIncrement
}

func (c *Column) IsNotNull() bool {
	return c.notNull
}

// Quoted возвращает экранированное имя колонки.
func (c *Column) Quoted() string {
	return c.table.sql.QuoteID(c.name)
}

// Qualified возвращает полное имя колонки вида `table`.`column`.
func (c *Column) Qualified() string {
	return c.table.sql.QualifiedColumn(c.table.name, c.name)
}

// SQL возвращает определение колонки для CREATE TABLE.
// DEFAULT указывается всегда явно: некоторые СУБД не различают явное и
// неявное значение по умолчанию.
func (c *Column) SQL() string {
	d := c.table.sql.dialect
	var sb strings.Builder
	sb.WriteString(c.Quoted())
	sb.WriteByte(' ')
	sb.WriteString(c.typ)
	if c.primaryKey {
		sb.WriteString(" PRIMARY KEY")
	}
	if c.autoIncrement {
		sb.WriteByte(' ')
		sb.WriteString(d.AutoIncrement())
	}
	if c.notNull {
		sb.WriteString(" NOT NULL")
	}
	sb.WriteString(" DEFAULT ")
	if c.defaultValue == "" {
		sb.WriteString("NULL")
	} else {
		sb.WriteString(c.defaultValue)
	}
	return sb.String()
}

// ColumnBuilder накапливает определение колонки до Build таблицы.
type ColumnBuilder struct {
	name string
	typ  string

	primaryKey    bool
	autoIncrement bool
	notNull       bool
	defaultValue  string
}

// Type устанавливает тип колонки.
func (b *ColumnBuilder) Type(typ string) *ColumnBuilder {
	b.typ = typ
	return b
}

// PrimaryKey помечает колонку первичным ключом.
func (b *ColumnBuilder) PrimaryKey() *ColumnBuilder {
	b.primaryKey = true
	return b
}

// AutoIncrement помечает колонку автоинкрементной.
func (b *ColumnBuilder) AutoIncrement() *ColumnBuilder {
	b.autoIncrement = true
	return b
}

// NotNull запрещает NULL-значения.
func (b *ColumnBuilder) NotNull() *ColumnBuilder {
	b.notNull = true
	return b
}

// Default устанавливает явное значение по умолчанию (SQL-литерал).
// "NULL" нормализуется к отсутствию значения.
func (b *ColumnBuilder) Default(value string) *ColumnBuilder {
	if strings.EqualFold(value, "NULL") {
		value = ""
	}
	b.defaultValue = value
	return b
}

// ========== ForeignKey ==========

// ForeignKey — неизменяемый внешний ключ построенной таблицы.
type ForeignKey struct {
	table            *Table
	column           string
	referencedTable  string
	referencedColumn string
	cascadeDelete    bool
}

func (fk *ForeignKey) Column() string {
	return fk.column
}

func (fk *ForeignKey) ReferencedTable() string {
	return fk.referencedTable
}

func (fk *ForeignKey) ReferencedColumn() string {
	return fk.referencedColumn
}

func (fk *ForeignKey) IsCascadeDelete() bool {
	return fk.cascadeDelete
}

// SQL возвращает определение внешнего ключа для CREATE TABLE.
func (fk *ForeignKey) SQL() string {
	s := fk.table.sql
	var sb strings.Builder
	sb.WriteString("FOREIGN KEY(")
	sb.WriteString(s.QuoteID(fk.column))
	sb.WriteString(") REFERENCES ")
	sb.WriteString(s.QuoteID(fk.referencedTable))
	sb.WriteByte('(')
	sb.WriteString(s.QuoteID(fk.referencedColumn))
	sb.WriteByte(')')
	if fk.cascadeDelete {
		sb.WriteString(" ON DELETE CASCADE")
	}
	return sb.String()
}

// ForeignKeyBuilder накапливает определение внешнего ключа.
type ForeignKeyBuilder struct {
	column           string
	referencedTable  string
	referencedColumn string
	cascadeDelete    bool
}

// Column устанавливает локальную колонку ключа.
func (b *ForeignKeyBuilder) Column(column string) *ForeignKeyBuilder {
	b.column = column
	return b
}

// References устанавливает целевую таблицу и колонку.
func (b *ForeignKeyBuilder) References(table, column string) *ForeignKeyBuilder {
	b.referencedTable = table
	b.referencedColumn = column
	return b
}

// CascadeDelete включает каскадное удаление.
func (b *ForeignKeyBuilder) CascadeDelete() *ForeignKeyBuilder {
	b.cascadeDelete = true
	return b
}

// ========== Table ==========

// Table — неизменяемая построенная таблица.
type Table struct {
	sql         *SQL
	name        string
	columns     []*Column
	foreignKeys []*ForeignKey
}

var _ DBObject = (*Table)(nil)

func (t *Table) Kind() ObjectKind {
	return KindTable
}

func (t *Table) Name() string {
	return t.name
}

// Quoted возвращает экранированное имя таблицы.
func (t *Table) Quoted() string {
	return t.sql.QuoteID(t.name)
}

// Columns возвращает колонки в порядке объявления.
func (t *Table) Columns() []*Column {
	return t.columns
}

// Column возвращает колонку по имени или nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.columns {
		if c.name == name {
			return c
		}
	}
	return nil
}

// ForeignKeys возвращает внешние ключи в порядке объявления.
func (t *Table) ForeignKeys() []*ForeignKey {
	return t.foreignKeys
}

// ForeignKey возвращает внешний ключ по локальной колонке или nil.
func (t *Table) ForeignKey(column string) *ForeignKey {
	for _, fk := range t.foreignKeys {
		if fk.column == column {
			return fk
		}
	}
	return nil
}

// CreateSQL возвращает оператор создания таблицы.
func (t *Table) CreateSQL() string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE IF NOT EXISTS ")
	sb.WriteString(t.Quoted())
	sb.WriteByte('(')
	for i, c := range t.columns {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(c.SQL())
	}
	for _, fk := range t.foreignKeys {
		sb.WriteByte(',')
		sb.WriteString(fk.SQL())
	}
	sb.WriteByte(')')
	if extra := t.sql.dialect.TableExtra(); extra != "" {
		sb.WriteByte(' ')
		sb.WriteString(extra)
	}
	sb.WriteByte(';')
	return sb.String()
}

// DropSQL возвращает оператор удаления таблицы.
func (t *Table) DropSQL() string {
	return "DROP TABLE IF EXISTS " + t.Quoted() + ";"
}

// TableBuilder накапливает определение таблицы.
type TableBuilder struct {
	sql         *SQL
	name        string
	columns     []*ColumnBuilder
	foreignKeys []*ForeignKeyBuilder
}

// Table создает построитель таблицы.
func (s *SQL) Table(name string) *TableBuilder {
	return &TableBuilder{sql: s, name: name}
}

// Column добавляет колонку и возвращает её построитель.
func (b *TableBuilder) Column(name string) *ColumnBuilder {
	cb := &ColumnBuilder{name: name}
	b.columns = append(b.columns, cb)
	return cb
}

// ForeignKey добавляет внешний ключ и возвращает его построитель.
func (b *TableBuilder) ForeignKey() *ForeignKeyBuilder {
	fb := &ForeignKeyBuilder{}
	b.foreignKeys = append(b.foreignKeys, fb)
	return fb
}

// Build валидирует накопленное определение и возвращает неизменяемую
// таблицу. Нарушение минимальных требований — ошибка программирования,
// не операционный сбой.
func (b *TableBuilder) Build() (*Table, error) {
	if b.name == "" {
		return nil, fmt.Errorf("table name is empty")
	}
	if len(b.columns) == 0 {
		return nil, fmt.Errorf("table %q has no columns", b.name)
	}

	t := &Table{sql: b.sql, name: b.name}
	for _, cb := range b.columns {
		if cb.name == "" {
			return nil, fmt.Errorf("table %q: column name is empty", b.name)
		}
		if cb.typ == "" {
			return nil, fmt.Errorf("table %q: column %q has no type", b.name, cb.name)
		}
		if t.Column(cb.name) != nil {
			return nil, fmt.Errorf("table %q: duplicate column %q", b.name, cb.name)
		}
		t.columns = append(t.columns, &Column{
			table:         t,
			name:          cb.name,
			typ:           strings.ToUpper(cb.typ),
			primaryKey:    cb.primaryKey,
			autoIncrement: cb.autoIncrement,
			notNull:       cb.notNull,
			defaultValue:  cb.defaultValue,
		})
	}
	for _, fb := range b.foreignKeys {
		if fb.column == "" || fb.referencedTable == "" || fb.referencedColumn == "" {
			return nil, fmt.Errorf("table %q: incomplete foreign key on %q", b.name, fb.column)
		}
		if t.Column(fb.column) == nil {
			return nil, fmt.Errorf("table %q: foreign key column %q does not exist", b.name, fb.column)
		}
		t.foreignKeys = append(t.foreignKeys, &ForeignKey{
			table:            t,
			column:           fb.column,
			referencedTable:  fb.referencedTable,
			referencedColumn: fb.referencedColumn,
			cascadeDelete:    fb.cascadeDelete,
		})
	}
	return t, nil
}
