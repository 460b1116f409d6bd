// File: pkg/sqlgen/trigger.go

package sqlgen

import (
	"fmt"
	"strings"
)

// TriggerEvent — событие срабатывания триггера.
type TriggerEvent string

const (
	TriggerDelete TriggerEvent = "DELETE"
	TriggerInsert TriggerEvent = "INSERT"
	TriggerUpdate TriggerEvent = "UPDATE"
)

// Trigger — неизменяемый построенный триггер.
type Trigger struct {
	sql        *SQL
	table      string
	name       string
	after      bool
	event      TriggerEvent
	columns    []string // только для UPDATE OF, может быть пустым
	forEachRow bool
	whenExpr   string
	reaction   string
}

var _ DBObject = (*Trigger)(nil)

func (t *Trigger) Kind() ObjectKind {
	return KindTrigger
}

func (t *Trigger) Name() string {
	return t.name
}

// Table возвращает имя таблицы триггера.
func (t *Trigger) Table() string {
	return t.table
}

// CreateSQL возвращает оператор создания триггера. Тело оборачивается
// диалектом (SQLite: BEGIN ... END).
func (t *Trigger) CreateSQL() string {
	d := t.sql.dialect
	var sb strings.Builder
	sb.WriteString("CREATE TRIGGER")
	if d.SupportsIfNotExists(KindTrigger) {
		sb.WriteString(" IF NOT EXISTS")
	}
	sb.WriteByte(' ')
	sb.WriteString(d.QuoteID(t.name))
	if t.after {
		sb.WriteString(" AFTER ")
	} else {
		sb.WriteString(" BEFORE ")
	}
	sb.WriteString(string(t.event))
	if t.event == TriggerUpdate && len(t.columns) > 0 {
		sb.WriteString(" OF ")
		for i, c := range t.columns {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(d.QuoteID(c))
		}
	}
	sb.WriteString(" ON ")
	sb.WriteString(d.QuoteID(t.table))
	if t.forEachRow {
		sb.WriteString(" FOR EACH ROW")
	}
	if t.whenExpr != "" {
		sb.WriteString(" WHEN ")
		sb.WriteString(t.whenExpr)
	}
	sb.WriteByte(' ')
	sb.WriteString(d.WrapTriggerBody(t.reaction))
	sb.WriteByte(';')
	return sb.String()
}

// DropSQL возвращает оператор удаления триггера.
func (t *Trigger) DropSQL() string {
	return "DROP TRIGGER IF EXISTS " + t.sql.QuoteID(t.name) + ";"
}

// TriggerBuilder накапливает определение триггера.
type TriggerBuilder struct {
	sql        *SQL
	table      string
	name       string
	after      bool
	event      TriggerEvent
	columns    []string
	forEachRow bool
	whenExpr   string
	reaction   string
}

// Trigger создает построитель триггера (по умолчанию AFTER).
func (s *SQL) Trigger() *TriggerBuilder {
	return &TriggerBuilder{sql: s, after: true}
}

// Table устанавливает таблицу триггера.
func (b *TriggerBuilder) Table(table *Table) *TriggerBuilder {
	b.table = table.Name()
	return b
}

// TableName устанавливает таблицу триггера по имени.
func (b *TriggerBuilder) TableName(table string) *TriggerBuilder {
	b.table = table
	return b
}

// Name устанавливает имя триггера.
func (b *TriggerBuilder) Name(name string) *TriggerBuilder {
	b.name = name
	return b
}

// After переключает триггер в режим AFTER (по умолчанию).
func (b *TriggerBuilder) After() *TriggerBuilder {
	b.after = true
	return b
}

// Before переключает триггер в режим BEFORE.
func (b *TriggerBuilder) Before() *TriggerBuilder {
	b.after = false
	return b
}

// Event устанавливает событие срабатывания.
func (b *TriggerBuilder) Event(event TriggerEvent) *TriggerBuilder {
	b.event = event
	return b
}

// Column добавляет колонку для UPDATE OF.
func (b *TriggerBuilder) Column(column string) *TriggerBuilder {
	b.columns = append(b.columns, column)
	return b
}

// ForEachRow включает срабатывание на каждую строку.
func (b *TriggerBuilder) ForEachRow() *TriggerBuilder {
	b.forEachRow = true
	return b
}

// When устанавливает условие срабатывания.
func (b *TriggerBuilder) When(expr string) *TriggerBuilder {
	b.whenExpr = expr
	return b
}

// Reaction устанавливает тело триггера (без диалектной обёртки).
func (b *TriggerBuilder) Reaction(reaction string) *TriggerBuilder {
	b.reaction = reaction
	return b
}

// Build валидирует и возвращает неизменяемый триггер.
func (b *TriggerBuilder) Build() (*Trigger, error) {
	if b.table == "" || b.name == "" || b.event == "" || b.reaction == "" {
		return nil, fmt.Errorf("trigger %q: table, name, event and reaction are required", b.name)
	}
	return &Trigger{
		sql:        b.sql,
		table:      b.table,
		name:       b.name,
		after:      b.after,
		event:      b.event,
		columns:    append([]string(nil), b.columns...),
		forEachRow: b.forEachRow,
		whenExpr:   b.whenExpr,
		reaction:   b.reaction,
	}, nil
}
