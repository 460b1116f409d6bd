// File: pkg/ledger/shop.go

package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ShopInfo — исторический снимок магазина на момент сделки. Живой
// магазин мог быть с тех пор переименован, передан другому владельцу
// или удалён: один и тот же UUID может иметь несколько разных строк
// снимков.
type ShopInfo struct {
	UUID   uuid.UUID
	TypeID string
	// Owner nil означает админский магазин. Принадлежность
	// определяется только этим полем, никогда — строкой типа.
	Owner *PlayerProfile
	Name  string // может быть пустым
	World WorldInfo
	X     int
	Y     int
	Z     int
}

// NewShopInfo создает снимок магазина с валидацией.
func NewShopInfo(id uuid.UUID, typeID string, owner *PlayerProfile, name string, world WorldInfo, x, y, z int) (ShopInfo, error) {
	s := ShopInfo{UUID: id, TypeID: typeID, Owner: owner, Name: name, World: world, X: x, Y: y, Z: z}
	if err := s.Validate(); err != nil {
		return ShopInfo{}, err
	}
	return s, nil
}

// Validate проверяет инварианты снимка.
func (s ShopInfo) Validate() error {
	if s.UUID == uuid.Nil {
		return fmt.Errorf("shop: uuid is empty")
	}
	if s.TypeID == "" {
		return fmt.Errorf("shop %s: type id is empty", s.UUID)
	}
	if s.Owner != nil {
		if err := s.Owner.Validate(); err != nil {
			return fmt.Errorf("shop %s: %w", s.UUID, err)
		}
	}
	return s.World.Validate()
}

// IsAdminShop сообщает, является ли магазин админским (без владельца).
func (s ShopInfo) IsAdminShop() bool {
	return s.Owner == nil
}

// LoggedTrade — одна записанная сделка. Неизменяемая, только
// добавляется.
//
// Item1 и Result обязательны; Item2 присутствует только у сделок с
// двумя предметами оплаты. Порядок, в котором игрок разложил предметы
// в интерфейсе обмена, не записывается.
type LoggedTrade struct {
	Timestamp time.Time
	Player    PlayerProfile
	Shop      ShopInfo
	Item1     ItemInfo
	Item2     *ItemInfo
	Result    ItemInfo
}

// NewLoggedTrade создает запись сделки с валидацией.
func NewLoggedTrade(timestamp time.Time, player PlayerProfile, shop ShopInfo, item1 ItemInfo, item2 *ItemInfo, result ItemInfo) (LoggedTrade, error) {
	t := LoggedTrade{
		Timestamp: timestamp,
		Player:    player,
		Shop:      shop,
		Item1:     item1,
		Item2:     item2,
		Result:    result,
	}
	if err := t.Validate(); err != nil {
		return LoggedTrade{}, err
	}
	return t, nil
}

// Validate проверяет инварианты записи.
func (t LoggedTrade) Validate() error {
	if t.Timestamp.IsZero() {
		return fmt.Errorf("trade: timestamp is zero")
	}
	if err := t.Player.Validate(); err != nil {
		return fmt.Errorf("trade: %w", err)
	}
	if err := t.Shop.Validate(); err != nil {
		return fmt.Errorf("trade: %w", err)
	}
	if err := t.Item1.Validate(); err != nil {
		return fmt.Errorf("trade item1: %w", err)
	}
	if t.Item2 != nil {
		if err := t.Item2.Validate(); err != nil {
			return fmt.Errorf("trade item2: %w", err)
		}
	}
	if err := t.Result.Validate(); err != nil {
		return fmt.Errorf("trade result item: %w", err)
	}
	return nil
}
