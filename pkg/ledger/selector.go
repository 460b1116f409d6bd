// File: pkg/ledger/selector.go

package ledger

import (
	"fmt"

	"github.com/google/uuid"
)

// Селекторы — замкнутые размеченные объединения. Каждый вариант
// компилируется в конкретный SQL-шаблон на стороне хранилища, switch по
// Kind() обязан быть исчерпывающим: неизвестный вариант — ошибка
// программирования.

// PlayerSelectorKind перечисляет варианты фильтра торгующего игрока.
type PlayerSelectorKind int

const (
	PlayerKindAll PlayerSelectorKind = iota
	PlayerKindUUID
	PlayerKindName
)

// PlayerSelector выбирает торгующего игрока в запросе истории.
type PlayerSelector struct {
	kind PlayerSelectorKind
	uuid uuid.UUID
	name string
}

// AllPlayers не ограничивает торгующего игрока.
func AllPlayers() PlayerSelector {
	return PlayerSelector{kind: PlayerKindAll}
}

// PlayerByUUID выбирает игрока по точному UUID.
func PlayerByUUID(id uuid.UUID) PlayerSelector {
	return PlayerSelector{kind: PlayerKindUUID, uuid: id}
}

// PlayerByName выбирает игрока по имени. Если имя носили несколько
// исторических профилей, используется профиль с самым свежим LastSeen.
func PlayerByName(name string) PlayerSelector {
	return PlayerSelector{kind: PlayerKindName, name: name}
}

// Kind возвращает вариант селектора.
func (s PlayerSelector) Kind() PlayerSelectorKind {
	return s.kind
}

// UUID возвращает UUID для PlayerKindUUID.
func (s PlayerSelector) UUID() uuid.UUID {
	return s.uuid
}

// Name возвращает имя для PlayerKindName.
func (s PlayerSelector) Name() string {
	return s.name
}

// String возвращает представление для аудита.
func (s PlayerSelector) String() string {
	switch s.kind {
	case PlayerKindAll:
		return "players:all"
	case PlayerKindUUID:
		return "player:" + s.uuid.String()
	case PlayerKindName:
		return "player:" + s.name
	default:
		panic(fmt.Sprintf("unknown player selector kind: %d", s.kind))
	}
}

// ShopSelectorKind перечисляет варианты фильтра магазина.
type ShopSelectorKind int

const (
	ShopKindAll ShopSelectorKind = iota
	ShopKindAdmin
	ShopKindPlayer
	ShopKindByOwnerUUID
	ShopKindByOwnerName
	ShopKindByUUID
	ShopKindByName
)

// ShopSelector выбирает магазин в запросе истории.
//
// Варианты byUUID и byName дополнительно могут нести фильтр владельца:
// "магазин с этим именем, принадлежащий этому игроку".
type ShopSelector struct {
	kind      ShopSelectorKind
	shopUUID  uuid.UUID
	shopName  string
	ownerUUID uuid.UUID
	ownerName string
	hasOwner  bool
}

// AllShops не ограничивает магазин.
func AllShops() ShopSelector {
	return ShopSelector{kind: ShopKindAll}
}

// AdminShops выбирает только админские магазины (без владельца).
func AdminShops() ShopSelector {
	return ShopSelector{kind: ShopKindAdmin}
}

// PlayerShops выбирает только магазины игроков — точное дополнение
// AdminShops.
func PlayerShops() ShopSelector {
	return ShopSelector{kind: ShopKindPlayer}
}

// ShopsOwnedBy выбирает магазины владельца по его UUID.
func ShopsOwnedBy(ownerUUID uuid.UUID) ShopSelector {
	return ShopSelector{kind: ShopKindByOwnerUUID, ownerUUID: ownerUUID, hasOwner: true}
}

// ShopsOwnedByName выбирает магазины владельца по его имени.
func ShopsOwnedByName(ownerName string) ShopSelector {
	return ShopSelector{kind: ShopKindByOwnerName, ownerName: ownerName, hasOwner: true}
}

// ShopByUUID выбирает магазин по его UUID.
func ShopByUUID(shopUUID uuid.UUID) ShopSelector {
	return ShopSelector{kind: ShopKindByUUID, shopUUID: shopUUID}
}

// ShopByUUIDOwnedBy выбирает магазин по UUID с фильтром владельца.
func ShopByUUIDOwnedBy(shopUUID, ownerUUID uuid.UUID) ShopSelector {
	return ShopSelector{kind: ShopKindByUUID, shopUUID: shopUUID, ownerUUID: ownerUUID, hasOwner: true}
}

// ShopByName выбирает магазин по имени.
func ShopByName(shopName string) ShopSelector {
	return ShopSelector{kind: ShopKindByName, shopName: shopName}
}

// ShopByNameOwnedBy выбирает магазин по имени с фильтром владельца.
func ShopByNameOwnedBy(shopName string, ownerUUID uuid.UUID) ShopSelector {
	return ShopSelector{kind: ShopKindByName, shopName: shopName, ownerUUID: ownerUUID, hasOwner: true}
}

// Kind возвращает вариант селектора.
func (s ShopSelector) Kind() ShopSelectorKind {
	return s.kind
}

// ShopUUID возвращает UUID магазина для ShopKindByUUID.
func (s ShopSelector) ShopUUID() uuid.UUID {
	return s.shopUUID
}

// ShopName возвращает имя магазина для ShopKindByName.
func (s ShopSelector) ShopName() string {
	return s.shopName
}

// OwnerUUID возвращает UUID владельца и признак его наличия.
func (s ShopSelector) OwnerUUID() (uuid.UUID, bool) {
	if !s.hasOwner || s.kind == ShopKindByOwnerName {
		return uuid.Nil, false
	}
	return s.ownerUUID, s.hasOwner
}

// OwnerName возвращает имя владельца для ShopKindByOwnerName.
func (s ShopSelector) OwnerName() string {
	return s.ownerName
}

// HasOwnerFilter сообщает, несёт ли селектор фильтр владельца.
func (s ShopSelector) HasOwnerFilter() bool {
	return s.hasOwner
}

// String возвращает представление для аудита.
func (s ShopSelector) String() string {
	switch s.kind {
	case ShopKindAll:
		return "shops:all"
	case ShopKindAdmin:
		return "shops:admin"
	case ShopKindPlayer:
		return "shops:player"
	case ShopKindByOwnerUUID:
		return "shops:owner:" + s.ownerUUID.String()
	case ShopKindByOwnerName:
		return "shops:owner:" + s.ownerName
	case ShopKindByUUID:
		if s.hasOwner {
			return "shop:" + s.shopUUID.String() + ":owner:" + s.ownerUUID.String()
		}
		return "shop:" + s.shopUUID.String()
	case ShopKindByName:
		if s.hasOwner {
			return "shop:" + s.shopName + ":owner:" + s.ownerUUID.String()
		}
		return "shop:" + s.shopName
	default:
		panic(fmt.Sprintf("unknown shop selector kind: %d", s.kind))
	}
}
