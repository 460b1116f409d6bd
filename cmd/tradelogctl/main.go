// File: cmd/tradelogctl/main.go

package main

import (
	"fmt"
	"os"

	// DB backend registrations
	_ "github.com/ruslano69/tradelog/pkg/backends/mysql"
	_ "github.com/ruslano69/tradelog/pkg/backends/sqlite"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "setup":
		err = runSetup(os.Args[2:])
	case "history":
		err = runHistory(os.Args[2:])
	case "profile":
		err = runProfile(os.Args[2:])
	case "latest":
		err = runLatest(os.Args[2:])
	case "deadletter":
		err = runDeadLetter(os.Args[2:])
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: tradelogctl <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  setup      create tables, indexes and views")
	fmt.Fprintln(os.Stderr, "  history    query trading history")
	fmt.Fprintln(os.Stderr, "  profile    look up player profiles")
	fmt.Fprintln(os.Stderr, "  latest     show the latest trade from the live feed")
	fmt.Fprintln(os.Stderr, "  deadletter inspect or replay rejected broker messages")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Run 'tradelogctl <command> --help' for command flags.")
}
