// File: cmd/tradelogctl/deadletter.go

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/ruslano69/tradelog/pkg/deadletter"
	"github.com/ruslano69/tradelog/pkg/ingest"
)

// runDeadLetter работает с журналом отвергнутых сообщений: список,
// очистка, повторная запись.
func runDeadLetter(args []string) error {
	fs := flag.NewFlagSet("deadletter", flag.ExitOnError)
	configFile := fs.String("config", "", "path to config YAML (required)")
	clearAll := fs.Bool("clear", false, "remove all entries")
	replay := fs.Bool("replay", false, "retry writing rejected trades to storage")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return err
	}
	if cfg.DeadLetter.Path == "" {
		return fmt.Errorf("dead_letter: path is required for the deadletter command")
	}

	rejects, err := deadletter.Open(cfg.DeadLetter)
	if err != nil {
		return err
	}

	if *clearAll {
		if err := rejects.Clear(); err != nil {
			return err
		}
		fmt.Println("Dead letter queue cleared.")
		return nil
	}

	if *replay {
		return replayDeadLetters(cfg, rejects)
	}

	stats := rejects.GetStats()
	fmt.Printf("Entries: %d\n", stats.TotalEntries)
	for reason, count := range stats.Reasons {
		fmt.Printf("  %s: %d\n", reason, count)
	}
	for _, entry := range rejects.Entries() {
		fmt.Printf("%s  %s  %s  %s\n",
			entry.ID,
			entry.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			entry.Reason,
			entry.Error,
		)
	}
	return nil
}

// replayDeadLetters пытается записать отвергнутые сделки заново;
// успешно записанные удаляются из журнала.
func replayDeadLetters(cfg *CtlConfig, rejects *deadletter.Queue) error {
	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	ctx := context.Background()
	replayed, skipped := 0, 0
	for _, entry := range rejects.Entries() {
		trade, err := ingest.DecodeTrade(entry.Payload)
		if err != nil {
			skipped++
			continue
		}
		if err := store.History().LogTrade(ctx, trade); err != nil {
			return fmt.Errorf("replay %s: %w", entry.ID, err)
		}
		rejects.Remove(entry.ID)
		replayed++
	}
	fmt.Printf("Replayed %d trades, %d still undecodable.\n", replayed, skipped)
	return nil
}
