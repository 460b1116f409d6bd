// File: pkg/export/xlsx.go

// Package export выгружает историю торговли во внешние форматы:
// XLSX-отчёты для людей и сжатые zstd архивы JSON-строк для машин.
package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ruslano69/tradelog/pkg/ledger"
)

// заголовки колонок отчёта, по одной сделке на строку
var historyHeaders = []string{
	"Timestamp",
	"Player",
	"Player UUID",
	"Shop",
	"Shop UUID",
	"Owner",
	"World",
	"X",
	"Y",
	"Z",
	"Item 1",
	"Amount 1",
	"Item 2",
	"Amount 2",
	"Result",
	"Result Amount",
}

// ToXLSX записывает результат запроса истории в Excel-файл.
//
// Example:
//
//	err := export.ToXLSX(result, "history.xlsx", "Trades")
func ToXLSX(result ledger.HistoryResult, filePath string, sheetName string) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheetName == "" {
		sheetName = "Trades"
	}

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for col, header := range historyHeaders {
		cell := columnName(col+1) + "1"
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, trade := range result.Trades {
		values := tradeRow(trade)
		for col, value := range values {
			cell := columnName(col+1) + strconv.Itoa(rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for col := range historyHeaders {
		colName := columnName(col + 1)
		width := 15.0
		if col == 0 {
			width = 22.0 // timestamp
		}
		f.SetColWidth(sheetName, colName, colName, width)
	}

	return f.SaveAs(filePath)
}

// tradeRow разворачивает сделку в значения колонок отчёта.
func tradeRow(trade ledger.LoggedTrade) []any {
	owner := ""
	if trade.Shop.Owner != nil {
		owner = trade.Shop.Owner.Name
	}
	world := trade.Shop.World.WorldName
	if world == "" {
		world = trade.Shop.World.ServerID
	}

	item2Type := ""
	item2Amount := any("")
	if trade.Item2 != nil {
		item2Type = trade.Item2.Type
		item2Amount = trade.Item2.Amount
	}

	return []any{
		trade.Timestamp.UTC().Format("2006-01-02 15:04:05"),
		trade.Player.Name,
		trade.Player.UUID.String(),
		trade.Shop.Name,
		trade.Shop.UUID.String(),
		owner,
		world,
		trade.Shop.X,
		trade.Shop.Y,
		trade.Shop.Z,
		trade.Item1.Type,
		trade.Item1.Amount,
		item2Type,
		item2Amount,
		trade.Result.Type,
		trade.Result.Amount,
	}
}

// columnName converts column number to Excel column name (1 -> A, 27 -> AA)
func columnName(n int) string {
	name := ""
	for n > 0 {
		n--
		name = string(rune('A'+n%26)) + name
		n /= 26
	}
	return name
}
