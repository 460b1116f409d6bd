// File: cmd/tradelogctl/history.go

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/ruslano69/tradelog/pkg/export"
	"github.com/ruslano69/tradelog/pkg/ledger"
)

// runHistory выполняет запрос истории торговли и печатает либо
// выгружает результат.
func runHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configFile := fs.String("config", "", "path to config YAML (required)")

	playerName := fs.String("player", "", "filter by trading player name")
	playerUUID := fs.String("player-uuid", "", "filter by trading player UUID")

	shopUUID := fs.String("shop-uuid", "", "filter by shop UUID")
	shopName := fs.String("shop-name", "", "filter by shop name")
	ownerName := fs.String("owner", "", "filter by shop owner name")
	ownerUUID := fs.String("owner-uuid", "", "filter by shop owner UUID")
	adminOnly := fs.Bool("admin", false, "admin shops only")
	playerShops := fs.Bool("player-shops", false, "player-owned shops only")

	page := fs.Int("page", 1, "page number, 1-based")
	perPage := fs.Int("per-page", 10, "trades per page")
	start := fs.Int("start", -1, "explicit range start, overrides --page")
	end := fs.Int("end", -1, "explicit range end (exclusive)")

	xlsxFile := fs.String("xlsx", "", "write result to XLSX file")
	archiveFile := fs.String("archive", "", "write result to zstd JSON-lines archive")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return err
	}

	player, err := buildPlayerSelector(*playerName, *playerUUID)
	if err != nil {
		return err
	}
	shop, err := buildShopSelector(*shopUUID, *shopName, *ownerName, *ownerUUID, *adminOnly, *playerShops)
	if err != nil {
		return err
	}
	pageRange, err := buildRange(*page, *perPage, *start, *end)
	if err != nil {
		return err
	}
	request, err := ledger.NewHistoryRequest(player, shop, pageRange)
	if err != nil {
		return err
	}

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	result, err := store.History().GetTradingHistory(context.Background(), request)
	if err != nil {
		return err
	}

	if *xlsxFile != "" {
		if err := export.ToXLSX(*result, *xlsxFile, ""); err != nil {
			return err
		}
		fmt.Printf("Wrote %d trades to %s\n", len(result.Trades), *xlsxFile)
		return nil
	}
	if *archiveFile != "" {
		if err := export.WriteArchiveFile(*archiveFile, result.Trades, export.DefaultCompressionLevel); err != nil {
			return err
		}
		fmt.Printf("Wrote %d trades to %s\n", len(result.Trades), *archiveFile)
		return nil
	}

	printHistory(result)
	return nil
}

func buildPlayerSelector(name, id string) (ledger.PlayerSelector, error) {
	switch {
	case name != "" && id != "":
		return ledger.PlayerSelector{}, fmt.Errorf("--player and --player-uuid are mutually exclusive")
	case id != "":
		parsed, err := uuid.Parse(id)
		if err != nil {
			return ledger.PlayerSelector{}, fmt.Errorf("invalid --player-uuid: %w", err)
		}
		return ledger.PlayerByUUID(parsed), nil
	case name != "":
		return ledger.PlayerByName(name), nil
	default:
		return ledger.AllPlayers(), nil
	}
}

func buildShopSelector(shopID, shopName, ownerName, ownerID string, adminOnly, playerShops bool) (ledger.ShopSelector, error) {
	if adminOnly && (playerShops || shopID != "" || shopName != "" || ownerName != "" || ownerID != "") {
		return ledger.ShopSelector{}, fmt.Errorf("--admin cannot be combined with other shop filters")
	}
	if adminOnly {
		return ledger.AdminShops(), nil
	}

	var owner uuid.UUID
	hasOwnerID := ownerID != ""
	if hasOwnerID {
		parsed, err := uuid.Parse(ownerID)
		if err != nil {
			return ledger.ShopSelector{}, fmt.Errorf("invalid --owner-uuid: %w", err)
		}
		owner = parsed
	}

	switch {
	case shopID != "" && shopName != "":
		return ledger.ShopSelector{}, fmt.Errorf("--shop-uuid and --shop-name are mutually exclusive")
	case shopID != "":
		parsed, err := uuid.Parse(shopID)
		if err != nil {
			return ledger.ShopSelector{}, fmt.Errorf("invalid --shop-uuid: %w", err)
		}
		if hasOwnerID {
			return ledger.ShopByUUIDOwnedBy(parsed, owner), nil
		}
		return ledger.ShopByUUID(parsed), nil
	case shopName != "":
		if hasOwnerID {
			return ledger.ShopByNameOwnedBy(shopName, owner), nil
		}
		return ledger.ShopByName(shopName), nil
	case hasOwnerID:
		return ledger.ShopsOwnedBy(owner), nil
	case ownerName != "":
		return ledger.ShopsOwnedByName(ownerName), nil
	case playerShops:
		return ledger.PlayerShops(), nil
	default:
		return ledger.AllShops(), nil
	}
}

func buildRange(page, perPage, start, end int) (ledger.Range, error) {
	if start >= 0 || end >= 0 {
		r, err := ledger.NewExplicitRange(start, end)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	r, err := ledger.NewPageRange(page, perPage)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// printHistory печатает результат таблицей на stdout.
func printHistory(result *ledger.HistoryResult) {
	if result.Player != nil {
		fmt.Printf("Player: %s (%s)\n", result.Player.Name, result.Player.UUID)
	}
	if result.Owner != nil {
		fmt.Printf("Owner:  %s (%s)\n", result.Owner.Name, result.Owner.UUID)
	}
	fmt.Printf("Total:  %d trades, showing %d\n\n", result.Total, len(result.Trades))
	if len(result.Trades) == 0 {
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tPLAYER\tSHOP\tOWNER\tPAID\tRECEIVED")
	for _, trade := range result.Trades {
		owner := "(admin)"
		if trade.Shop.Owner != nil {
			owner = trade.Shop.Owner.Name
		}
		paid := fmt.Sprintf("%dx %s", trade.Item1.Amount, trade.Item1.Type)
		if trade.Item2 != nil {
			paid += fmt.Sprintf(" + %dx %s", trade.Item2.Amount, trade.Item2.Type)
		}
		received := fmt.Sprintf("%dx %s", trade.Result.Amount, trade.Result.Type)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			trade.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			trade.Player.Name,
			trade.Shop.Name,
			owner,
			paid,
			received,
		)
	}
	w.Flush()
}
