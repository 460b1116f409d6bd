// File: cmd/tradelogctl/latest.go

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/ruslano69/tradelog/pkg/ledger"
	"github.com/ruslano69/tradelog/pkg/tradefeed"
)

// runLatest показывает последнюю сделку из живой ленты Redis.
func runLatest(args []string) error {
	fs := flag.NewFlagSet("latest", flag.ExitOnError)
	configFile := fs.String("config", "", "path to config YAML (required)")
	follow := fs.Bool("follow", false, "subscribe and print trades as they arrive")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return err
	}
	if cfg.Feed.Addr == "" {
		return fmt.Errorf("feed: addr is required for the latest command")
	}

	feed := tradefeed.Open(cfg.Feed)
	defer feed.Close()

	ctx := context.Background()
	if err := feed.Ping(ctx); err != nil {
		return err
	}

	trade, err := feed.Latest(ctx)
	if err != nil {
		return err
	}
	if trade == nil {
		fmt.Println("No trades in the feed yet.")
	} else {
		printTradeLine(*trade)
	}

	if !*follow {
		return nil
	}

	sub, err := feed.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer sub.Close()
	for trade := range sub.Trades() {
		printTradeLine(trade)
	}
	return nil
}

func printTradeLine(trade ledger.LoggedTrade) {
	shop := trade.Shop.Name
	if trade.Shop.Owner != nil {
		shop += " (" + trade.Shop.Owner.Name + ")"
	}
	paid := fmt.Sprintf("%dx %s", trade.Item1.Amount, trade.Item1.Type)
	if trade.Item2 != nil {
		paid += fmt.Sprintf(" + %dx %s", trade.Item2.Amount, trade.Item2.Type)
	}
	fmt.Printf("%s  %s @ %s: %s -> %dx %s\n",
		trade.Timestamp.UTC().Format("2006-01-02 15:04:05"),
		trade.Player.Name,
		shop,
		paid,
		trade.Result.Amount,
		trade.Result.Type,
	)
}
