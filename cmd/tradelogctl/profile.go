// File: cmd/tradelogctl/profile.go

package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ruslano69/tradelog/pkg/ledger"
)

// runProfile ищет профили игроков по UUID или имени.
func runProfile(args []string) error {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	configFile := fs.String("config", "", "path to config YAML (required)")
	playerUUID := fs.String("uuid", "", "look up by player UUID")
	playerName := fs.String("name", "", "look up by player name (may match several profiles)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if (*playerUUID == "") == (*playerName == "") {
		return fmt.Errorf("exactly one of --uuid or --name is required")
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

	ctx := context.Background()
	if *playerUUID != "" {
		parsed, err := uuid.Parse(*playerUUID)
		if err != nil {
			return fmt.Errorf("invalid --uuid: %w", err)
		}
		profile, err := store.Players().GetProfile(ctx, parsed)
		if err != nil {
			return err
		}
		if profile == nil {
			fmt.Println("No profile found.")
			return nil
		}
		printProfile(*profile)
		return nil
	}

	profiles, err := store.Players().GetProfiles(ctx, *playerName)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		fmt.Println("No profiles found.")
		return nil
	}
	for _, profile := range profiles {
		printProfile(profile)
	}
	return nil
}

func printProfile(profile ledger.PlayerProfile) {
	fmt.Printf("%s  %s  first seen %s, last seen %s\n",
		profile.UUID,
		profile.Name,
		formatSeen(profile.FirstSeen),
		formatSeen(profile.LastSeen),
	)
}

func formatSeen(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}
