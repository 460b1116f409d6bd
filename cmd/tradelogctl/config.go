// File: cmd/tradelogctl/config.go

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ruslano69/tradelog/pkg/backends"
	"github.com/ruslano69/tradelog/pkg/deadletter"
	"github.com/ruslano69/tradelog/pkg/storage"
	"github.com/ruslano69/tradelog/pkg/tradefeed"
)

// CtlConfig — конфигурация tradelogctl. Совместима с конфигом
// tradelogd: лишние секции (broker, audit) игнорируются.
type CtlConfig struct {
	Database   backends.Config   `yaml:"database"`
	Storage    storage.Config    `yaml:"storage"`
	Feed       tradefeed.Config  `yaml:"feed"`
	DeadLetter deadletter.Config `yaml:"dead_letter"`
}

// loadConfig читает и валидирует YAML конфиг
func loadConfig(path string) (*CtlConfig, error) {
	if path == "" {
		return nil, fmt.Errorf("--config is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}

	var cfg CtlConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Database.Type == "" {
		return nil, fmt.Errorf("database: type is required (available: %v)", backends.RegisteredTypes())
	}
	return &cfg, nil
}

// openStorage создает хранилище по конфигурации.
func openStorage(cfg *CtlConfig) (*storage.Storage, error) {
	backend, err := backends.New(cfg.Database)
	if err != nil {
		return nil, err
	}
	return storage.New(backend, cfg.Storage, nil)
}

// closeStorage останавливает хранилище с собственным таймаутом.
func closeStorage(store *storage.Storage) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: storage shutdown: %v\n", err)
	}
}
