// File: pkg/deadletter/queue.go

// Package deadletter хранит сообщения брокера, отвергнутые консьюмером:
// нечитаемые сделки не возвращаются в очередь, а складываются в
// файловый журнал для разбора оператором.
package deadletter

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// причины попадания сообщения в журнал
const (
	ReasonMalformed   = "malformed"
	ReasonStoreFailed = "store_failed"
)

// Entry - одно отвергнутое сообщение
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason"`
	Error     string    `json:"error"`
	// Payload - исходное тело сообщения как пришло из брокера
	Payload []byte `json:"payload"`
}

// Config - конфигурация журнала отвергнутых сообщений
type Config struct {
	// Path - путь к файлу журнала
	Path string `yaml:"path"`

	// MaxSize - максимальное число записей; при превышении старые
	// записи удаляются
	MaxSize int `yaml:"max_size"`

	// RetentionPeriod - как долго хранить записи
	RetentionPeriod time.Duration `yaml:"retention_period"`
}

// Queue - файловый журнал отвергнутых сообщений. Каждое изменение
// сохраняется на диск сразу.
type Queue struct {
	mu      sync.RWMutex
	config  Config
	entries []Entry
	counter int
}

// Open создает журнал, подхватывая существующий файл если он есть.
func Open(config Config) (*Queue, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("dead letter queue: path is required")
	}
	q := &Queue{config: config, entries: make([]Entry, 0)}

	if _, err := os.Stat(config.Path); err == nil {
		if err := q.load(); err != nil {
			return nil, fmt.Errorf("failed to load dead letter queue: %w", err)
		}
	}
	return q, nil
}

// Add добавляет отвергнутое сообщение в журнал.
func (q *Queue) Add(reason string, payload []byte, cause error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.counter++
	entry := Entry{
		ID:        fmt.Sprintf("dl-%d-%d", time.Now().Unix(), q.counter),
		Timestamp: time.Now(),
		Reason:    reason,
		Payload:   payload,
	}
	if cause != nil {
		entry.Error = cause.Error()
	}
	q.entries = append(q.entries, entry)

	if q.config.MaxSize > 0 && len(q.entries) > q.config.MaxSize {
		q.entries = q.entries[len(q.entries)-q.config.MaxSize:]
	}

	q.saveUnsafe()
}

// Entries возвращает копию всех записей.
func (q *Queue) Entries() []Entry {
	q.mu.RLock()
	defer q.mu.RUnlock()

	result := make([]Entry, len(q.entries))
	copy(result, q.entries)
	return result
}

// Remove удаляет запись по ID.
func (q *Queue) Remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, entry := range q.entries {
		if entry.ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			q.saveUnsafe()
			return true
		}
	}
	return false
}

// Clear очищает журнал.
func (q *Queue) Clear() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = make([]Entry, 0)
	return q.saveUnsafe()
}

// CleanupOld удаляет записи старше периода хранения и возвращает их
// число.
func (q *Queue) CleanupOld() int {
	if q.config.RetentionPeriod == 0 {
		return 0
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	cutoff := time.Now().Add(-q.config.RetentionPeriod)
	kept := make([]Entry, 0, len(q.entries))
	removed := 0
	for _, entry := range q.entries {
		if entry.Timestamp.After(cutoff) {
			kept = append(kept, entry)
		} else {
			removed++
		}
	}
	if removed > 0 {
		q.entries = kept
		q.saveUnsafe()
	}
	return removed
}

// Size возвращает число записей.
func (q *Queue) Size() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.entries)
}

// Save сохраняет журнал в файл.
func (q *Queue) Save() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.saveUnsafe()
}

// saveUnsafe сохраняет без блокировки (вызывается когда lock уже взят)
func (q *Queue) saveUnsafe() error {
	data, err := json.MarshalIndent(q.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dead letter queue: %w", err)
	}
	if err := os.WriteFile(q.config.Path, data, 0644); err != nil {
		return fmt.Errorf("failed to write dead letter file: %w", err)
	}
	return nil
}

func (q *Queue) load() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	data, err := os.ReadFile(q.config.Path)
	if err != nil {
		return fmt.Errorf("failed to read dead letter file: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to unmarshal dead letter queue: %w", err)
	}
	q.entries = entries
	return nil
}

// Stats - сводка журнала
type Stats struct {
	TotalEntries int
	OldestEntry  time.Time
	NewestEntry  time.Time
	Reasons      map[string]int
}

// GetStats возвращает сводку по журналу.
func (q *Queue) GetStats() Stats {
	q.mu.RLock()
	defer q.mu.RUnlock()

	stats := Stats{
		TotalEntries: len(q.entries),
		Reasons:      make(map[string]int),
	}
	if len(q.entries) == 0 {
		return stats
	}
	stats.OldestEntry = q.entries[0].Timestamp
	stats.NewestEntry = q.entries[len(q.entries)-1].Timestamp
	for _, entry := range q.entries {
		stats.Reasons[entry.Reason]++
	}
	return stats
}
