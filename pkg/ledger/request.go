// File: pkg/ledger/request.go

package ledger

import "fmt"

// HistoryRequest описывает запрос истории торговли: фильтр торгующего
// игрока, фильтр магазина и пагинация.
type HistoryRequest struct {
	Player PlayerSelector
	Shop   ShopSelector
	Range  Range
}

// NewHistoryRequest создает запрос с валидацией.
func NewHistoryRequest(player PlayerSelector, shop ShopSelector, r Range) (HistoryRequest, error) {
	if r == nil {
		return HistoryRequest{}, fmt.Errorf("history request: range is required")
	}
	return HistoryRequest{Player: player, Shop: shop, Range: r}, nil
}

// Validate проверяет полноту запроса.
func (r HistoryRequest) Validate() error {
	if r.Range == nil {
		return fmt.Errorf("history request: range is required")
	}
	return nil
}

// HistoryResult — ответ на запрос истории.
//
// Player и Owner — разрешённые профили, если селекторы их запрашивали;
// nil если фильтр не задан либо профиль не найден (ненайденный профиль —
// не ошибка, а пустой валидный результат).
type HistoryResult struct {
	Player *PlayerProfile
	Owner  *PlayerProfile
	Trades []LoggedTrade
	// Total — общее число совпавших сделок, независимое от
	// возвращённой страницы. Нужен для вычисления границ страниц.
	Total int
}

// EmptyHistoryResult создает пустой результат с разрешёнными профилями.
func EmptyHistoryResult(player, owner *PlayerProfile) HistoryResult {
	return HistoryResult{Player: player, Owner: owner, Trades: []LoggedTrade{}}
}
