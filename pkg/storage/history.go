// File: pkg/storage/history.go

package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ruslano69/tradelog/pkg/checksum"
	"github.com/ruslano69/tradelog/pkg/connector"
	"github.com/ruslano69/tradelog/pkg/ledger"
)

// HistoryStorage хранит журнал сделок: дедуплицированные миры,
// предметы и магазины плюс факты сделок, и отвечает на запросы
// истории по селекторам.
type HistoryStorage struct {
	c       *connector.Connector
	schema  *Schema
	st      *statements
	players *PlayerStorage
}

func newHistoryStorage(c *connector.Connector, schema *Schema, st *statements, players *PlayerStorage) *HistoryStorage {
	return &HistoryStorage{c: c, schema: schema, st: st, players: players}
}

// ========== Дедупликация справочников ==========

// getOrInsertWorld возвращает ключ мира. Вызывается изнутри Execute.
func (hs *HistoryStorage) getOrInsertWorld(ctx context.Context, world ledger.WorldInfo) (int64, error) {
	// отсутствующий мир хранится как пустая строка
	return hs.c.GetOrInsertID(ctx, "world info",
		hs.st.getWorldID, []any{world.ServerID, world.WorldName},
		hs.st.addWorld, []any{world.ServerID, world.WorldName})
}

// getOrInsertItem возвращает ключ предмета. Количество не хранится в
// справочнике: оно принадлежит сделке. Вызывается изнутри Execute.
func (hs *HistoryStorage) getOrInsertItem(ctx context.Context, item ledger.ItemInfo) (int64, error) {
	itemData := string(item.Data)
	hash := item.Checksum()
	return hs.c.GetOrInsertID(ctx, "item info",
		hs.st.getItemID, []any{hash, item.Type, itemData},
		hs.st.addItem, []any{item.Type, itemData, hash})
}

// getOrInsertShop возвращает ключ состояния магазина. Каждое
// изменение владельца, имени или позиции порождает новую запись:
// история ссылается на состояние магазина на момент сделки.
// Вызывается изнутри Execute.
func (hs *HistoryStorage) getOrInsertShop(ctx context.Context, shop ledger.ShopInfo) (int64, error) {
	shopUUID := shop.UUID.String()

	var ownerID any // nil для административного магазина
	ownerText := ""
	if shop.Owner != nil {
		id, err := hs.players.getOrInsertProfileID(ctx, *shop.Owner)
		if err != nil {
			return 0, err
		}
		ownerID = id
		ownerText = strconv.FormatInt(id, 10)
	}

	worldID, err := hs.getOrInsertWorld(ctx, shop.World)
	if err != nil {
		return 0, err
	}

	hash := checksum.Join32("|",
		shopUUID,
		shop.TypeID,
		ownerText,
		shop.Name,
		strconv.FormatInt(worldID, 10),
		strconv.Itoa(shop.X),
		strconv.Itoa(shop.Y),
		strconv.Itoa(shop.Z),
	)

	return hs.c.GetOrInsertID(ctx, "shop info",
		hs.st.getShopID, []any{hash, shopUUID, shop.TypeID, ownerID, ownerID, shop.Name, worldID, shop.X, shop.Y, shop.Z},
		hs.st.addShop, []any{shopUUID, shop.TypeID, ownerID, shop.Name, worldID, shop.X, shop.Y, shop.Z, hash})
}

// ========== Запись сделок ==========

// LogTrade записывает сделку. Все справочные записи создаются в
// одной транзакции со вставкой самой сделки.
func (hs *HistoryStorage) LogTrade(ctx context.Context, trade ledger.LoggedTrade) error {
	if err := trade.Validate(); err != nil {
		return err
	}
	return hs.c.Execute(ctx, "log trade", func(ctx context.Context) error {
		return hs.c.Transaction(ctx, func(ctx context.Context) error {
			playerID, err := hs.players.getOrInsertProfileID(ctx, trade.Player)
			if err != nil {
				return err
			}

			item1ID, err := hs.getOrInsertItem(ctx, trade.Item1)
			if err != nil {
				return err
			}
			var item2ID any // nil для односторонней сделки
			item2Amount := 0
			if trade.Item2 != nil {
				id, err := hs.getOrInsertItem(ctx, *trade.Item2)
				if err != nil {
					return err
				}
				item2ID = id
				item2Amount = trade.Item2.Amount
			}
			resultItemID, err := hs.getOrInsertItem(ctx, trade.Result)
			if err != nil {
				return err
			}

			shopID, err := hs.getOrInsertShop(ctx, trade.Shop)
			if err != nil {
				return err
			}

			_, err = hs.c.Exec(ctx, hs.st.addTrade,
				formatTime(trade.Timestamp),
				playerID,
				shopID,
				item1ID,
				trade.Item1.Amount,
				item2ID,
				item2Amount,
				resultItemID,
				trade.Result.Amount,
			)
			return err
		})
	})
}

// PurgeTradesOlderThan удаляет сделки старше заданного срока.
// TODO реализовать вместе с очисткой осиротевших справочных записей.
func (hs *HistoryStorage) PurgeTradesOlderThan(ctx context.Context, age time.Duration) error {
	return ErrNotImplemented
}

// ========== Запросы истории ==========

// requestContext накапливает состояние одного запроса истории.
type requestContext struct {
	playerID *int64
	ownerID  *int64
	total    int
}

// tradeQueryPlan — выбранный шаблон и его специфичные параметры.
// Специфичные параметры вставляются между идентификатором игрока
// (первый параметр, если есть) и limit/offset (последние параметры).
type tradeQueryPlan struct {
	query          tradeQuery
	specificParams func(rc *requestContext) []any
}

// GetTradingHistory возвращает страницу истории сделок по селекторам
// запроса. Подсчёт и выборка выполняются в одной транзакции, чтобы
// страница была согласована с общим числом сделок.
func (hs *HistoryStorage) GetTradingHistory(ctx context.Context, request ledger.HistoryRequest) (*ledger.HistoryResult, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	plan, err := hs.planTradeQuery(request.Shop)
	if err != nil {
		return nil, err
	}

	return connector.ExecuteResult(ctx, hs.c, "get trading history", func(ctx context.Context) (*ledger.HistoryResult, error) {
		var result *ledger.HistoryResult
		err := hs.c.Transaction(ctx, func(ctx context.Context) error {
			var err error
			result, err = hs.getTradingHistory(ctx, request, plan)
			return err
		})
		return result, err
	})
}

func (hs *HistoryStorage) getTradingHistory(ctx context.Context, request ledger.HistoryRequest, plan *tradeQueryPlan) (*ledger.HistoryResult, error) {
	rc := &requestContext{}

	// профиль игрока:
	lookupPlayer := false
	var playerProfile *storedProfile
	switch request.Player.Kind() {
	case ledger.PlayerKindAll:
	case ledger.PlayerKindName:
		lookupPlayer = true
		profiles, err := hs.players.getProfilesByName(ctx, request.Player.Name())
		if err != nil {
			return nil, err
		}
		if len(profiles) > 0 {
			playerProfile = profiles[0]
		}
	case ledger.PlayerKindUUID:
		var err error
		lookupPlayer = true
		playerProfile, err = hs.players.getProfileByUUID(ctx, request.Player.UUID())
		if err != nil {
			return nil, err
		}
	}
	if playerProfile != nil {
		rc.playerID = &playerProfile.id
	}

	// профиль владельца:
	lookupOwner := false
	var ownerProfile *storedProfile
	if name := request.Shop.OwnerName(); name != "" {
		lookupOwner = true
		profiles, err := hs.players.getProfilesByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if len(profiles) > 0 {
			ownerProfile = profiles[0]
		}
	} else if ownerUUID, ok := request.Shop.OwnerUUID(); ok {
		var err error
		lookupOwner = true
		ownerProfile, err = hs.players.getProfileByUUID(ctx, ownerUUID)
		if err != nil {
			return nil, err
		}
	}
	if ownerProfile != nil {
		rc.ownerID = &ownerProfile.id
	}

	emptyResult := func() *ledger.HistoryResult {
		r := ledger.EmptyHistoryResult(profileOrNil(playerProfile), profileOrNil(ownerProfile))
		return &r
	}

	// запрошенный, но неизвестный игрок или владелец — пустой
	// результат без обращения к сделкам:
	if (lookupPlayer && playerProfile == nil) || (lookupOwner && ownerProfile == nil) {
		return emptyResult(), nil
	}

	query := plan.query.forPlayer(rc.playerID != nil)
	params := make([]any, 0, 4)
	if rc.playerID != nil {
		params = append(params, *rc.playerID)
	}
	if plan.specificParams != nil {
		params = append(params, plan.specificParams(rc)...)
	}

	// общее число сделок:
	row, err := hs.c.QueryRow(ctx, hs.st.toCountSQL(query), params...)
	if err != nil {
		return nil, err
	}
	if err := row.Scan(&rc.total); err != nil {
		return nil, err
	}
	if rc.total == 0 {
		return emptyResult(), nil
	}

	// страница сделок:
	start, end := request.Range.Bounds(rc.total)
	pageParams := append(params, end-start, start) // limit, offset
	rows, err := hs.c.Query(ctx, query, pageParams...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []ledger.LoggedTrade
	for rows.Next() {
		values, err := scanRowValues(rows)
		if err != nil {
			return nil, err
		}
		trade, err := hs.parseTrade(values)
		if err != nil {
			return nil, err
		}
		trades = append(trades, *trade)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &ledger.HistoryResult{
		Player: profileOrNil(playerProfile),
		Owner:  profileOrNil(ownerProfile),
		Trades: trades,
		Total:  rc.total,
	}, nil
}

// planTradeQuery выбирает пару шаблонов и порядок специфичных
// параметров по селектору магазина.
func (hs *HistoryStorage) planTradeQuery(selector ledger.ShopSelector) (*tradeQueryPlan, error) {
	ownerParam := func(rc *requestContext) []any {
		return []any{*rc.ownerID}
	}

	switch selector.Kind() {
	case ledger.ShopKindAll:
		return &tradeQueryPlan{query: hs.st.trades[queryAllShops]}, nil
	case ledger.ShopKindAdmin:
		return &tradeQueryPlan{query: hs.st.trades[queryAdminShops]}, nil
	case ledger.ShopKindPlayer:
		return &tradeQueryPlan{query: hs.st.trades[queryPlayerShops]}, nil
	case ledger.ShopKindByOwnerUUID, ledger.ShopKindByOwnerName:
		return &tradeQueryPlan{query: hs.st.trades[queryWithOwner], specificParams: ownerParam}, nil
	case ledger.ShopKindByUUID:
		shopUUID := selector.ShopUUID().String()
		if !selector.HasOwnerFilter() {
			return &tradeQueryPlan{
				query:          hs.st.trades[queryWithShop],
				specificParams: func(*requestContext) []any { return []any{shopUUID} },
			}, nil
		}
		return &tradeQueryPlan{
			query:          hs.st.trades[queryWithOwnedShop],
			specificParams: func(rc *requestContext) []any { return []any{shopUUID, *rc.ownerID} },
		}, nil
	case ledger.ShopKindByName:
		shopName := selector.ShopName()
		if !selector.HasOwnerFilter() {
			return &tradeQueryPlan{
				query:          hs.st.trades[queryWithShopByName],
				specificParams: func(*requestContext) []any { return []any{shopName} },
			}, nil
		}
		return &tradeQueryPlan{
			query:          hs.st.trades[queryWithOwnedShopByName],
			specificParams: func(rc *requestContext) []any { return []any{shopName, *rc.ownerID} },
		}, nil
	default:
		return nil, fmt.Errorf("unknown shop selector kind: %v", selector.Kind())
	}
}

// ========== Разбор строк представления ==========

func (hs *HistoryStorage) parseTrade(row *rowValues) (*ledger.LoggedTrade, error) {
	delim := hs.schema.TradesView.RoleDelimiter()

	timestamp, err := row.timeValue(colTimestamp)
	if err != nil {
		return nil, err
	}

	playerProfile, err := parseStoredProfile(rolePlayer+delim, row)
	if err != nil {
		return nil, err
	}
	if playerProfile == nil {
		return nil, fmt.Errorf("trade row has no player")
	}

	shop, err := hs.parseShop(row)
	if err != nil {
		return nil, err
	}

	item1Amount, err := row.intValue(colItem1Amount)
	if err != nil {
		return nil, err
	}
	item2Amount, err := row.intValue(colItem2Amount)
	if err != nil {
		return nil, err
	}
	resultItemAmount, err := row.intValue(colResultItemAmount)
	if err != nil {
		return nil, err
	}

	item1, err := hs.parseItem(roleItem1, row, int(item1Amount))
	if err != nil {
		return nil, err
	}
	if item1 == nil {
		return nil, fmt.Errorf("trade row has no item1")
	}
	item2, err := hs.parseItem(roleItem2, row, int(item2Amount))
	if err != nil {
		return nil, err
	}
	result, err := hs.parseItem(roleResultItem, row, int(resultItemAmount))
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("trade row has no result item")
	}

	return &ledger.LoggedTrade{
		Timestamp: timestamp,
		Player:    playerProfile.profile,
		Shop:      *shop,
		Item1:     *item1,
		Item2:     item2,
		Result:    *result,
	}, nil
}

func (hs *HistoryStorage) parseShop(row *rowValues) (*ledger.ShopInfo, error) {
	delim := hs.schema.TradesView.RoleDelimiter()
	shopPrefix := roleShop + delim
	ownerPrefix := shopPrefix + roleOwner + delim
	worldPrefix := shopPrefix + roleWorld + delim

	uuidText, err := row.stringValue(shopPrefix + colUUID)
	if err != nil {
		return nil, err
	}
	shopUUID, err := uuid.Parse(uuidText)
	if err != nil {
		return nil, fmt.Errorf("shop uuid: %w", err)
	}
	typeID, err := row.stringValue(shopPrefix + colType)
	if err != nil {
		return nil, err
	}
	// NULL uuid владельца — административный магазин
	owner, err := parseStoredProfile(ownerPrefix, row)
	if err != nil {
		return nil, err
	}
	name, err := row.stringValue(shopPrefix + colName)
	if err != nil {
		return nil, err
	}
	world, err := parseWorld(worldPrefix, row)
	if err != nil {
		return nil, err
	}
	x, err := row.intValue(shopPrefix + colX)
	if err != nil {
		return nil, err
	}
	y, err := row.intValue(shopPrefix + colY)
	if err != nil {
		return nil, err
	}
	z, err := row.intValue(shopPrefix + colZ)
	if err != nil {
		return nil, err
	}

	return &ledger.ShopInfo{
		UUID:   shopUUID,
		TypeID: typeID,
		Owner:  profileOrNil(owner),
		Name:   name,
		World:  world,
		X:      int(x),
		Y:      int(y),
		Z:      int(z),
	}, nil
}

// parseItem разбирает предмет из ролевых колонок. NULL тип — предмета
// нет (item2 односторонней сделки).
func (hs *HistoryStorage) parseItem(role string, row *rowValues, amount int) (*ledger.ItemInfo, error) {
	prefix := role + hs.schema.TradesView.RoleDelimiter()
	if row.isNull(prefix + colType) {
		return nil, nil
	}
	itemType, err := row.stringValue(prefix + colType)
	if err != nil {
		return nil, err
	}
	itemData, err := row.stringValue(prefix + colData)
	if err != nil {
		return nil, err
	}
	var data []byte
	if itemData != "" {
		data = []byte(itemData)
	}
	return &ledger.ItemInfo{Type: itemType, Data: data, Amount: amount}, nil
}

func parseWorld(prefix string, row *rowValues) (ledger.WorldInfo, error) {
	serverID, err := row.stringValue(prefix + colServerID)
	if err != nil {
		return ledger.WorldInfo{}, err
	}
	worldName, err := row.stringValue(prefix + colName)
	if err != nil {
		return ledger.WorldInfo{}, err
	}
	return ledger.WorldInfo{ServerID: serverID, WorldName: worldName}, nil
}

func profileOrNil(sp *storedProfile) *ledger.PlayerProfile {
	if sp == nil {
		return nil
	}
	profile := sp.profile
	return &profile
}
