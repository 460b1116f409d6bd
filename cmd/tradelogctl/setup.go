// File: cmd/tradelogctl/setup.go

package main

import (
	"context"
	"flag"
	"fmt"
)

// runSetup создает схему: таблицы, индексы и представления.
func runSetup(args []string) error {
	fs := flag.NewFlagSet("setup", flag.ExitOnError)
	configFile := fs.String("config", "", "path to config YAML (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return err
	}
	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	if err := store.Setup(context.Background()); err != nil {
		return fmt.Errorf("schema setup: %w", err)
	}
	fmt.Println("Schema created.")
	return nil
}
