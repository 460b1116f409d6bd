// File: pkg/sqlgen/view.go

package sqlgen

import "fmt"

// View — неизменяемое построенное представление: имя плюс SELECT.
type View struct {
	sql       *SQL
	name      string
	selectSQL string
}

var _ DBObject = (*View)(nil)

func (v *View) Kind() ObjectKind {
	return KindView
}

func (v *View) Name() string {
	return v.name
}

// Quoted возвращает экранированное имя представления.
func (v *View) Quoted() string {
	return v.sql.QuoteID(v.name)
}

// SelectSQL возвращает запрос представления (без завершающей ';').
func (v *View) SelectSQL() string {
	return v.selectSQL
}

// Column возвращает колонку представления по имени.
func (v *View) Column(name string) *ViewColumn {
	return &ViewColumn{view: v, name: name}
}

// CreateSQL возвращает оператор создания представления. Префикс зависит
// от диалекта: MySQL не поддерживает IF NOT EXISTS и использует
// CREATE OR REPLACE.
func (v *View) CreateSQL() string {
	return v.sql.dialect.CreateViewPrefix() + v.Quoted() + " AS " + v.selectSQL + ";"
}

// DropSQL возвращает оператор удаления представления.
func (v *View) DropSQL() string {
	return "DROP VIEW IF EXISTS " + v.Quoted() + ";"
}

// ViewBuilder накапливает определение представления.
type ViewBuilder struct {
	sql       *SQL
	name      string
	selectSQL string
}

// View создает построитель представления.
func (s *SQL) View(name string) *ViewBuilder {
	return &ViewBuilder{sql: s, name: name}
}

// Select устанавливает запрос представления (без завершающей ';').
func (b *ViewBuilder) Select(selectSQL string) *ViewBuilder {
	b.selectSQL = selectSQL
	return b
}

// Build валидирует и возвращает неизменяемое представление.
func (b *ViewBuilder) Build() (*View, error) {
	if b.name == "" {
		return nil, fmt.Errorf("view name is empty")
	}
	if b.selectSQL == "" {
		return nil, fmt.Errorf("view %q has no select", b.name)
	}
	return &View{sql: b.sql, name: b.name, selectSQL: b.selectSQL}, nil
}

// ViewColumn — колонка представления.
type ViewColumn struct {
	view *View
	name string
}

// Name возвращает имя колонки.
func (c *ViewColumn) Name() string {
	return c.name
}

// Quoted возвращает экранированное имя колонки.
func (c *ViewColumn) Quoted() string {
	return c.view.sql.QuoteID(c.name)
}

// Qualified возвращает полное имя вида `view`.`column`.
func (c *ViewColumn) Qualified() string {
	return c.view.sql.QualifiedColumn(c.view.name, c.name)
}
