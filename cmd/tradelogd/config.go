// File: cmd/tradelogd/config.go

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ruslano69/tradelog/pkg/backends"
	"github.com/ruslano69/tradelog/pkg/brokers"
	"github.com/ruslano69/tradelog/pkg/deadletter"
	"github.com/ruslano69/tradelog/pkg/storage"
	"github.com/ruslano69/tradelog/pkg/tradefeed"
)

// DaemonConfig — конфигурация tradelogd
type DaemonConfig struct {
	Database   backends.Config   `yaml:"database"`
	Storage    storage.Config    `yaml:"storage"`
	Broker     brokers.Config    `yaml:"broker"`
	Feed       FeedSection       `yaml:"feed"`
	DeadLetter deadletter.Config `yaml:"dead_letter"`
	Audit      AuditSection      `yaml:"audit"`
}

// FeedSection — параметры живой ленты сделок (Redis)
type FeedSection struct {
	Enabled bool `yaml:"enabled"`

	tradefeed.Config `yaml:",inline"`
}

// AuditSection — параметры операционного журнала
type AuditSection struct {
	// Path - файл журнала; пусто = stderr
	Path string `yaml:"path"`

	// JSON - писать записи в JSON вместо текстовых строк
	JSON bool `yaml:"json"`

	// Async - буферизованная асинхронная запись
	Async bool `yaml:"async"`

	// BufferSize - размер буфера асинхронного режима
	BufferSize int `yaml:"buffer_size"`
}

// loadConfig читает и валидирует YAML конфиг
func loadConfig(path string) (*DaemonConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}

	var cfg DaemonConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Database.Type == "" {
		return nil, fmt.Errorf("database: type is required (available: %v)", backends.RegisteredTypes())
	}
	if !backends.IsRegistered(cfg.Database.Type) {
		return nil, fmt.Errorf("database: unknown type %q (available: %v)",
			cfg.Database.Type, backends.RegisteredTypes())
	}
	if cfg.Broker.Type == "" {
		return nil, fmt.Errorf("broker: type is required (kafka/rabbitmq)")
	}
	if cfg.Feed.Enabled && cfg.Feed.Addr == "" {
		return nil, fmt.Errorf("feed: addr is required when feed is enabled")
	}

	return &cfg, nil
}
