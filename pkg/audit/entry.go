// File: pkg/audit/entry.go

// Package audit — операционный журнал хранилища: подключения, запросы,
// вставки сделок и экспорт. Записи уходят в настраиваемые appender'ы
// (файл, писатель), синхронно или через буферизованный канал.
package audit

import (
	"encoding/json"
	"fmt"
	"time"
)

// Operation - тип операции
type Operation string

const (
	OpConnect    Operation = "connect"
	OpDisconnect Operation = "disconnect"
	OpSetup      Operation = "setup"
	OpQuery      Operation = "query"
	OpInsert     Operation = "insert"
	OpDelete     Operation = "delete"
	OpExport     Operation = "export"
	OpIngest     Operation = "ingest"
)

// Status - статус выполнения операции
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Entry - запись операционного журнала
type Entry struct {
	// Timestamp - время операции
	Timestamp time.Time `json:"timestamp"`

	// Operation - тип операции
	Operation Operation `json:"operation"`

	// Status - статус выполнения
	Status Status `json:"status"`

	// Resource - затронутый ресурс (таблица, представление, файл)
	Resource string `json:"resource,omitempty"`

	// RecordsAffected - количество затронутых записей
	RecordsAffected int64 `json:"records_affected,omitempty"`

	// Duration - длительность операции
	Duration time.Duration `json:"duration,omitempty"`

	// ErrorMessage - сообщение об ошибке
	ErrorMessage string `json:"error_message,omitempty"`

	// Detail - дополнительные детали (селекторы запроса и т.п.)
	Detail string `json:"detail,omitempty"`
}

// NewEntry создает запись журнала с текущим временем.
func NewEntry(operation Operation, status Status) *Entry {
	return &Entry{
		Timestamp: time.Now(),
		Operation: operation,
		Status:    status,
	}
}

// WithResource устанавливает ресурс.
func (e *Entry) WithResource(resource string) *Entry {
	e.Resource = resource
	return e
}

// WithRecordsAffected устанавливает количество записей.
func (e *Entry) WithRecordsAffected(count int64) *Entry {
	e.RecordsAffected = count
	return e
}

// WithDuration устанавливает длительность.
func (e *Entry) WithDuration(duration time.Duration) *Entry {
	e.Duration = duration
	return e
}

// WithError устанавливает ошибку и переводит статус в failure.
func (e *Entry) WithError(err error) *Entry {
	if err != nil {
		e.ErrorMessage = err.Error()
		e.Status = StatusFailure
	}
	return e
}

// WithDetail устанавливает детали операции.
func (e *Entry) WithDetail(detail string) *Entry {
	e.Detail = detail
	return e
}

// ToJSON сериализует запись.
func (e *Entry) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// String возвращает однострочное текстовое представление.
func (e *Entry) String() string {
	s := fmt.Sprintf("%s %s %s", e.Timestamp.Format(time.RFC3339), e.Operation, e.Status)
	if e.Resource != "" {
		s += " resource=" + e.Resource
	}
	if e.Detail != "" {
		s += " detail=" + e.Detail
	}
	if e.RecordsAffected != 0 {
		s += fmt.Sprintf(" records=%d", e.RecordsAffected)
	}
	if e.Duration != 0 {
		s += fmt.Sprintf(" duration=%s", e.Duration)
	}
	if e.ErrorMessage != "" {
		s += " error=" + e.ErrorMessage
	}
	return s
}
