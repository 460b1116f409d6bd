// File: pkg/storage/rows.go

package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// Временные метки хранятся в UTC как текст с миллисекундной
// точностью. Текстовый формат сортируется лексикографически и
// одинаково понимается обоими диалектами.
const timestampLayout = "2006-01-02 15:04:05.000"

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// parseTimeValue разбирает значение колонки даты-времени. MySQL с
// parseTime возвращает time.Time, SQLite — текст.
func parseTimeValue(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return parseTimeString(t)
	case []byte:
		return parseTimeString(string(t))
	case nil:
		return time.Time{}, fmt.Errorf("timestamp is NULL")
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

func parseTimeString(s string) (time.Time, error) {
	for _, layout := range []string{
		timestampLayout,
		"2006-01-02 15:04:05",
		time.RFC3339Nano,
		time.RFC3339,
	} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

// ========== rowValues ==========

// rowValues — строка результата, проиндексированная по именам
// колонок. Комбинированные представления отдают десятки ролевых
// колонок, позиционное сканирование для них нечитаемо.
type rowValues struct {
	values map[string]any
}

// scanRowValues вычитывает текущую строку rows по именам колонок.
func scanRowValues(rows *sql.Rows) (*rowValues, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	holders := make([]any, len(columns))
	for i := range holders {
		holders[i] = new(any)
	}
	if err := rows.Scan(holders...); err != nil {
		return nil, err
	}
	values := make(map[string]any, len(columns))
	for i, column := range columns {
		values[column] = *holders[i].(*any)
	}
	return &rowValues{values: values}, nil
}

func (r *rowValues) isNull(column string) bool {
	v, ok := r.values[column]
	return !ok || v == nil
}

func (r *rowValues) stringValue(column string) (string, error) {
	switch v := r.values[column].(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", fmt.Errorf("column %q is NULL", column)
	default:
		return "", fmt.Errorf("column %q: unsupported type %T", column, v)
	}
}

func (r *rowValues) intValue(column string) (int64, error) {
	switch v := r.values[column].(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case nil:
		return 0, fmt.Errorf("column %q is NULL", column)
	default:
		return 0, fmt.Errorf("column %q: unsupported type %T", column, v)
	}
}

func (r *rowValues) timeValue(column string) (time.Time, error) {
	t, err := parseTimeValue(r.values[column])
	if err != nil {
		return time.Time{}, fmt.Errorf("column %q: %w", column, err)
	}
	return t, nil
}
