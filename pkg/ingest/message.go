// File: pkg/ingest/message.go

// Package ingest принимает сделки из брокера сообщений: игровые серверы
// публикуют JSON-сообщения в очередь, консьюмер декодирует их и пишет
// в хранилище с ручным подтверждением доставки.
package ingest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ruslano69/tradelog/pkg/ledger"
)

// ProfileMessage — профиль игрока в проводном формате.
type ProfileMessage struct {
	UUID      string     `json:"uuid"`
	Name      string     `json:"name"`
	FirstSeen *time.Time `json:"first_seen,omitempty"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
}

// ItemMessage — предмет сделки в проводном формате. Data кодируется
// стандартным base64 пакета encoding/json.
type ItemMessage struct {
	Type   string `json:"type"`
	Data   []byte `json:"data,omitempty"`
	Amount int    `json:"amount"`
}

// ShopMessage — снимок магазина в проводном формате.
type ShopMessage struct {
	UUID   string          `json:"uuid"`
	Type   string          `json:"type"`
	Owner  *ProfileMessage `json:"owner,omitempty"`
	Name   string          `json:"name,omitempty"`
	Server string          `json:"server"`
	World  string          `json:"world,omitempty"`
	X      int             `json:"x"`
	Y      int             `json:"y"`
	Z      int             `json:"z"`
}

// TradeMessage — одна сделка в проводном формате очереди.
type TradeMessage struct {
	Timestamp time.Time      `json:"timestamp"`
	Player    ProfileMessage `json:"player"`
	Shop      ShopMessage    `json:"shop"`
	Item1     ItemMessage    `json:"item1"`
	Item2     *ItemMessage   `json:"item2,omitempty"`
	Result    ItemMessage    `json:"result"`
}

// EncodeTrade сериализует сделку в проводной формат.
func EncodeTrade(trade ledger.LoggedTrade) ([]byte, error) {
	if err := trade.Validate(); err != nil {
		return nil, fmt.Errorf("encode trade: %w", err)
	}
	msg := TradeMessage{
		Timestamp: trade.Timestamp.UTC(),
		Player:    profileMessage(trade.Player),
		Shop: ShopMessage{
			UUID:   trade.Shop.UUID.String(),
			Type:   trade.Shop.TypeID,
			Name:   trade.Shop.Name,
			Server: trade.Shop.World.ServerID,
			World:  trade.Shop.World.WorldName,
			X:      trade.Shop.X,
			Y:      trade.Shop.Y,
			Z:      trade.Shop.Z,
		},
		Item1:  itemMessage(trade.Item1),
		Result: itemMessage(trade.Result),
	}
	if trade.Shop.Owner != nil {
		owner := profileMessage(*trade.Shop.Owner)
		msg.Shop.Owner = &owner
	}
	if trade.Item2 != nil {
		item2 := itemMessage(*trade.Item2)
		msg.Item2 = &item2
	}
	return json.Marshal(msg)
}

// DecodeTrade разбирает проводное сообщение и валидирует результат.
func DecodeTrade(data []byte) (ledger.LoggedTrade, error) {
	var msg TradeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ledger.LoggedTrade{}, fmt.Errorf("decode trade: %w", err)
	}
	return msg.Trade()
}

// Trade преобразует проводное сообщение в доменную запись сделки.
func (m TradeMessage) Trade() (ledger.LoggedTrade, error) {
	player, err := m.Player.profile()
	if err != nil {
		return ledger.LoggedTrade{}, fmt.Errorf("decode trade player: %w", err)
	}

	shopUUID, err := uuid.Parse(m.Shop.UUID)
	if err != nil {
		return ledger.LoggedTrade{}, fmt.Errorf("decode trade shop uuid: %w", err)
	}
	var owner *ledger.PlayerProfile
	if m.Shop.Owner != nil {
		p, err := m.Shop.Owner.profile()
		if err != nil {
			return ledger.LoggedTrade{}, fmt.Errorf("decode trade shop owner: %w", err)
		}
		owner = &p
	}

	trade := ledger.LoggedTrade{
		Timestamp: m.Timestamp,
		Player:    player,
		Shop: ledger.ShopInfo{
			UUID:   shopUUID,
			TypeID: m.Shop.Type,
			Owner:  owner,
			Name:   m.Shop.Name,
			World:  ledger.WorldInfo{ServerID: m.Shop.Server, WorldName: m.Shop.World},
			X:      m.Shop.X,
			Y:      m.Shop.Y,
			Z:      m.Shop.Z,
		},
		Item1:  m.Item1.item(),
		Result: m.Result.item(),
	}
	if m.Item2 != nil {
		item2 := m.Item2.item()
		trade.Item2 = &item2
	}

	if err := trade.Validate(); err != nil {
		return ledger.LoggedTrade{}, fmt.Errorf("decode trade: %w", err)
	}
	return trade, nil
}

func profileMessage(p ledger.PlayerProfile) ProfileMessage {
	msg := ProfileMessage{UUID: p.UUID.String(), Name: p.Name}
	if !p.FirstSeen.IsZero() {
		t := p.FirstSeen.UTC()
		msg.FirstSeen = &t
	}
	if !p.LastSeen.IsZero() {
		t := p.LastSeen.UTC()
		msg.LastSeen = &t
	}
	return msg
}

func (m ProfileMessage) profile() (ledger.PlayerProfile, error) {
	id, err := uuid.Parse(m.UUID)
	if err != nil {
		return ledger.PlayerProfile{}, fmt.Errorf("invalid uuid %q: %w", m.UUID, err)
	}
	p := ledger.PlayerProfile{UUID: id, Name: m.Name}
	if m.FirstSeen != nil {
		p.FirstSeen = *m.FirstSeen
	}
	if m.LastSeen != nil {
		p.LastSeen = *m.LastSeen
	}
	return p, nil
}

func itemMessage(i ledger.ItemInfo) ItemMessage {
	return ItemMessage{Type: i.Type, Data: i.Data, Amount: i.Amount}
}

func (m ItemMessage) item() ledger.ItemInfo {
	return ledger.ItemInfo{Type: m.Type, Data: m.Data, Amount: m.Amount}
}
