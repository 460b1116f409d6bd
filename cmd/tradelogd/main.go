// File: cmd/tradelogd/main.go

package main

import (
	"flag"
	"fmt"
	"os"

	// DB backend registrations — подключить достаточно, остальное уже написано
	_ "github.com/ruslano69/tradelog/pkg/backends/mysql"
	_ "github.com/ruslano69/tradelog/pkg/backends/sqlite"
)

func main() {
	configFile := flag.String("config", "", "path to daemon config YAML (required)")
	setupOnly := flag.Bool("setup", false, "create schema and exit")
	flag.Parse()

	if *configFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: tradelogd --config <name>.yaml [--setup]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fmt.Fprintln(os.Stderr, "  --config  path to YAML config file (required)")
		fmt.Fprintln(os.Stderr, "  --setup   create tables, indexes and views, then exit")
		os.Exit(1)
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := runDaemon(cfg, *setupOnly); err != nil {
		fmt.Fprintf(os.Stderr, "Daemon error: %v\n", err)
		os.Exit(1)
	}
}
