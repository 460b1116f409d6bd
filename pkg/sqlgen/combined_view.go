// File: pkg/sqlgen/combined_view.go

package sqlgen

import (
	"fmt"
	"strings"
)

// ForeignKeyJoin описывает участие одного внешнего ключа в
// комбинированном представлении: таблица-источник с её ролью и
// присоединяемая таблица с ролью присоединения.
//
// Для таблицы верхнего уровня роль источника пустая. Роли образуют
// пространства имён колонок: повторные ссылки на одну и ту же таблицу
// (например item1/item2/result_item → items) различаются ролями.
type ForeignKeyJoin struct {
	Table       *Table
	Role        string // пустая для таблицы верхнего уровня
	JoinedTable *Table
	JoinedRole  string
	ForeignKey  *ForeignKey
}

func (j ForeignKeyJoin) validate() error {
	if j.Table == nil || j.JoinedTable == nil || j.ForeignKey == nil {
		return fmt.Errorf("join: table, joined table and foreign key are required")
	}
	if j.JoinedTable.Name() != j.ForeignKey.ReferencedTable() {
		return fmt.Errorf("join: table %q does not match foreign key target %q",
			j.JoinedTable.Name(), j.ForeignKey.ReferencedTable())
	}
	return nil
}

// CombinedView — представление, которое денормализует фактовую таблицу
// и список её внешних ключей в одну плоскую строку с ролевыми
// префиксами колонок.
type CombinedView struct {
	name          string
	table         *Table
	joins         []ForeignKeyJoin
	roleDelimiter string
	view          *View
}

var _ DBObject = (*CombinedView)(nil)

func (cv *CombinedView) Kind() ObjectKind {
	return KindView
}

func (cv *CombinedView) Name() string {
	return cv.name
}

// Table возвращает фактовую таблицу представления.
func (cv *CombinedView) Table() *Table {
	return cv.table
}

// View возвращает представление, стоящее за CombinedView.
func (cv *CombinedView) View() *View {
	return cv.view
}

// RoleDelimiter возвращает разделитель ролей.
func (cv *CombinedView) RoleDelimiter() string {
	return cv.roleDelimiter
}

// Column возвращает колонку представления по цепочке ролей:
// Column("name", "shop", "owner") → колонка "shop_owner_name".
func (cv *CombinedView) Column(column string, roles ...string) *ViewColumn {
	name := column
	if len(roles) > 0 {
		name = strings.Join(roles, cv.roleDelimiter) + cv.roleDelimiter + column
	}
	return cv.view.Column(name)
}

func (cv *CombinedView) CreateSQL() string {
	return cv.view.CreateSQL()
}

func (cv *CombinedView) DropSQL() string {
	return cv.view.DropSQL()
}

// CombinedViewBuilder накапливает определение комбинированного
// представления.
type CombinedViewBuilder struct {
	sql            *SQL
	name           string
	table          *Table
	joins          []ForeignKeyJoin
	roleDelimiter  string
	omitReferenced bool
}

// CombinedView создает построитель комбинированного представления.
func (s *SQL) CombinedView(name string) *CombinedViewBuilder {
	return &CombinedViewBuilder{sql: s, name: name, roleDelimiter: DefaultRoleDelimiter}
}

// Table устанавливает фактовую таблицу.
func (b *CombinedViewBuilder) Table(table *Table) *CombinedViewBuilder {
	b.table = table
	return b
}

// Join добавляет присоединение по внешнему ключу. Порядок присоединений
// сохраняется в SQL.
func (b *CombinedViewBuilder) Join(join ForeignKeyJoin) *CombinedViewBuilder {
	b.joins = append(b.joins, join)
	return b
}

// RoleDelimiter устанавливает разделитель ролей (по умолчанию "_").
func (b *CombinedViewBuilder) RoleDelimiter(delimiter string) *CombinedViewBuilder {
	b.roleDelimiter = delimiter
	return b
}

// OmitReferencedColumns исключает ссылочные id-колонки из вывода.
func (b *CombinedViewBuilder) OmitReferencedColumns(omit bool) *CombinedViewBuilder {
	b.omitReferenced = omit
	return b
}

// Build вычисляет SELECT представления и возвращает неизменяемый
// CombinedView.
func (b *CombinedViewBuilder) Build() (*CombinedView, error) {
	if b.name == "" {
		return nil, fmt.Errorf("combined view name is empty")
	}
	if b.table == nil {
		return nil, fmt.Errorf("combined view %q has no table", b.name)
	}
	for _, j := range b.joins {
		if err := j.validate(); err != nil {
			return nil, fmt.Errorf("combined view %q: %w", b.name, err)
		}
	}
	if limit := b.sql.dialect.JoinLimit(); len(b.joins)+1 > limit {
		return nil, fmt.Errorf("combined view %q: %d joined tables exceed dialect limit %d",
			b.name, len(b.joins)+1, limit)
	}

	selectSQL := b.sql.SelectCombinedSQL(b.table, b.joins, b.roleDelimiter, b.omitReferenced)
	view, err := b.sql.View(b.name).Select(selectSQL).Build()
	if err != nil {
		return nil, err
	}
	return &CombinedView{
		name:          b.name,
		table:         b.table,
		joins:         append([]ForeignKeyJoin(nil), b.joins...),
		roleDelimiter: b.roleDelimiter,
		view:          view,
	}, nil
}

// SelectCombinedSQL вычисляет SELECT комбинированного представления.
// Чистая функция от схемы: ничего не исполняет, соединения не требует.
// Запрос не завершается ';' чтобы его можно было встраивать.
//
// omitReferenced управляет включением ссылочных id-колонок в вывод.
func (s *SQL) SelectCombinedSQL(table *Table, joins []ForeignKeyJoin, roleDelimiter string, omitReferenced bool) string {
	var sb strings.Builder
	sb.WriteString("SELECT ")

	// рекурсивно разворачиваем колонки внешних ключей:
	first := true
	for _, column := range table.Columns() {
		for _, expanded := range s.expandForeignKeyColumns(column, "", joins, roleDelimiter, omitReferenced) {
			if !first {
				sb.WriteByte(',')
			}
			first = false
			sb.WriteString(expanded)
		}
	}

	sb.WriteString(" FROM ")
	sb.WriteString(table.Quoted())
	for _, join := range joins {
		sb.WriteString(" LEFT JOIN ")
		sb.WriteString(join.JoinedTable.Quoted())

		// ролевое имя таблицы-источника:
		role := join.Role
		if role == "" {
			role = join.Table.Name()
		}

		// ролевое имя присоединяемой таблицы:
		fk := join.ForeignKey
		var joinedRole string
		if join.JoinedRole == "" {
			joinedRole = fk.ReferencedTable()
		} else {
			if join.Role != "" {
				joinedRole = join.Role + roleDelimiter + join.JoinedRole
			} else {
				joinedRole = join.JoinedRole
			}
			sb.WriteByte(' ')
			sb.WriteString(s.QuoteID(joinedRole))
		}

		sb.WriteString(" ON ")
		sb.WriteString(s.QualifiedColumn(joinedRole, fk.ReferencedColumn()))
		sb.WriteByte('=')
		sb.WriteString(s.QualifiedColumn(role, fk.Column()))
	}
	return sb.String()
}

// expandForeignKeyColumns рекурсивно заменяет колонки внешних ключей
// колонками присоединённых таблиц с комбинированными ролями.
func (s *SQL) expandForeignKeyColumns(column *Column, role string, joins []ForeignKeyJoin, roleDelimiter string, omitReferenced bool) []string {
	tableName := column.Table().Name()
	columnName := column.Name()

	var join *ForeignKeyJoin
	for i := range joins {
		if tableName == joins[i].Table.Name() && columnName == joins[i].ForeignKey.Column() {
			join = &joins[i]
			break
		}
	}

	if join == nil {
		var rolePrefix, roleName string
		if role == "" {
			roleName = tableName
		} else {
			rolePrefix = role + roleDelimiter
			roleName = role
		}
		alias := s.QualifiedColumn(roleName, columnName) + " AS " + s.QuoteID(rolePrefix+columnName)
		return []string{alias}
	}

	// подстановка колонок присоединённой таблицы:
	var out []string
	for _, joinedColumn := range join.JoinedTable.Columns() {
		if omitReferenced && joinedColumn.Name() == join.ForeignKey.ReferencedColumn() {
			continue
		}

		// комбинируем роли источника и присоединения:
		var joinedRole string
		if role == "" || join.JoinedRole == "" {
			joinedRole = role + join.JoinedRole
		} else {
			joinedRole = role + roleDelimiter + join.JoinedRole
		}
		out = append(out, s.expandForeignKeyColumns(joinedColumn, joinedRole, joins, roleDelimiter, omitReferenced)...)
	}
	return out
}
