// File: pkg/backends/factory.go

package backends

import (
	"fmt"
	"sort"
	"sync"
)

// Constructor - функция-конструктор backend'а по конфигурации
type Constructor func(cfg Config) (Backend, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Constructor)
)

// Register регистрирует конструктор backend'а для типа СУБД.
// Вызывается в init() пакетов backends/sqlite и backends/mysql.
func Register(dbType string, constructor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[dbType] = constructor
}

// IsRegistered проверяет, зарегистрирован ли backend для типа СУБД
func IsRegistered(dbType string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[dbType]
	return ok
}

// RegisteredTypes возвращает отсортированный список зарегистрированных типов
func RegisteredTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	types := make([]string, 0, len(registry))
	for dbType := range registry {
		types = append(types, dbType)
	}
	sort.Strings(types)
	return types
}

// New создает backend по конфигурации. Подключение не устанавливается:
// этим занимается connector при первом обращении.
func New(cfg Config) (Backend, error) {
	registryMu.RLock()
	constructor, ok := registry[cfg.Type]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown database type: %s (available types: %v)",
			cfg.Type, RegisteredTypes())
	}
	return constructor(cfg)
}
