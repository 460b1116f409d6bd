// File: pkg/storage/statements.go

package storage

import (
	"strings"

	"github.com/ruslano69/tradelog/pkg/sqlgen"
)

// tradeQueryKind перечисляет фильтры по магазину для выборки сделок.
type tradeQueryKind int

const (
	queryAllShops tradeQueryKind = iota
	queryAdminShops
	queryPlayerShops
	queryWithOwner
	queryWithShop
	queryWithShopByName
	queryWithOwnedShop
	queryWithOwnedShopByName
)

// tradeQuery — пара шаблонов одного фильтра: для всех игроков и для
// конкретного игрока. Вариант с игроком добавляет player_id первым
// параметром, остальные параметры у пары совпадают.
type tradeQuery struct {
	allPlayers   string
	singlePlayer string
}

// forPlayer выбирает шаблон по наличию фильтра игрока.
func (q tradeQuery) forPlayer(hasPlayer bool) string {
	if hasPlayer {
		return q.singlePlayer
	}
	return q.allPlayers
}

// statements — все SQL-шаблоны хранилища, вычисленные один раз для
// конкретного диалекта и схемы.
type statements struct {
	orderSuffix string // " ORDER BY `timestamp` DESC"

	getPlayerIDByUUID string
	getPlayerByUUID   string
	getPlayersByName  string
	addPlayer         string
	updatePlayer      string
	removePlayer      string
	playerCount       string

	getWorldID string
	addWorld   string

	getItemID string
	addItem   string

	getShopID string
	addShop   string

	addTrade string

	trades map[tradeQueryKind]tradeQuery
}

func newStatements(gen *sqlgen.SQL, schema *Schema) *statements {
	st := &statements{trades: make(map[tradeQueryKind]tradeQuery)}

	players := schema.Players
	worlds := schema.Worlds
	items := schema.Items
	shops := schema.Shops
	trades := schema.Trades
	view := schema.TradesView

	qnID := func(t *sqlgen.Table) string { return t.Column(colID).Quoted() }

	// игроки
	st.getPlayerIDByUUID = "SELECT " + qnID(players) +
		" FROM " + players.Quoted() +
		" WHERE " + players.Column(colUUID).Quoted() + "=?" +
		" LIMIT 1;"
	st.getPlayerByUUID = "SELECT *" +
		" FROM " + players.Quoted() +
		" WHERE " + players.Column(colUUID).Quoted() + "=?" +
		" LIMIT 1;"
	st.getPlayersByName = "SELECT *" +
		" FROM " + players.Quoted() +
		" WHERE " + players.Column(colName).Quoted() + "=?" +
		" ORDER BY " + players.Column(colLastSeen).Quoted() + " DESC;"
	st.addPlayer = "INSERT " + gen.Dialect().Ignore() +
		" INTO " + players.Quoted() +
		" (" + players.Column(colUUID).Quoted() +
		"," + players.Column(colName).Quoted() +
		"," + players.Column(colFirstSeen).Quoted() +
		"," + players.Column(colLastSeen).Quoted() +
		") VALUES(?,?,?,?);"
	st.updatePlayer = "UPDATE " + players.Quoted() +
		" SET " + players.Column(colName).Quoted() + "=?" +
		"," + players.Column(colFirstSeen).Quoted() + "=?" +
		"," + players.Column(colLastSeen).Quoted() + "=?" +
		" WHERE " + players.Column(colUUID).Quoted() + "=?" +
		" AND " + players.Column(colLastSeen).Quoted() + "<?;"
	st.removePlayer = "DELETE FROM " + players.Quoted() +
		" WHERE " + players.Column(colUUID).Quoted() + "=?;"
	st.playerCount = "SELECT COUNT(*) FROM " + players.Quoted() + ";"

	// миры
	st.getWorldID = "SELECT " + qnID(worlds) +
		" FROM " + worlds.Quoted() +
		" WHERE " + worlds.Column(colServerID).Quoted() + "=?" +
		" AND " + worlds.Column(colName).Quoted() + "=?" +
		" LIMIT 1;"
	st.addWorld = "INSERT " + gen.Dialect().Ignore() +
		" INTO " + worlds.Quoted() +
		" (" + worlds.Column(colServerID).Quoted() +
		"," + worlds.Column(colName).Quoted() +
		") VALUES(?,?);"

	// предметы: поиск сперва по хешу, затем сверка содержимого
	st.getItemID = "SELECT " + qnID(items) +
		" FROM " + items.Quoted() +
		" WHERE " + items.Column(colHash).Quoted() + "=?" +
		" AND " + items.Column(colType).Quoted() + "=?" +
		" AND " + items.Column(colData).Quoted() + "=?" +
		" LIMIT 1;"
	st.addItem = "INSERT " + gen.Dialect().Ignore() +
		" INTO " + items.Quoted() +
		" (" + items.Column(colType).Quoted() +
		"," + items.Column(colData).Quoted() +
		"," + items.Column(colHash).Quoted() +
		") VALUES(?,?,?);"

	// магазины: owner_id сравнивается и по значению, и по NULL,
	// параметр владельца привязывается дважды
	st.getShopID = "SELECT " + qnID(shops) +
		" FROM " + shops.Quoted() +
		" WHERE " + shops.Column(colHash).Quoted() + "=?" +
		" AND " + shops.Column(colUUID).Quoted() + "=?" +
		" AND " + shops.Column(colType).Quoted() + "=?" +
		" AND " + shops.Column(colOwnerID).Quoted() + "=? OR (" + shops.Column(colOwnerID).Quoted() + " IS NULL AND ? IS NULL)" +
		" AND " + shops.Column(colName).Quoted() + "=?" +
		" AND " + shops.Column(colWorldID).Quoted() + "=?" +
		" AND " + shops.Column(colX).Quoted() + "=?" +
		" AND " + shops.Column(colY).Quoted() + "=?" +
		" AND " + shops.Column(colZ).Quoted() + "=?" +
		" LIMIT 1;"
	st.addShop = "INSERT " + gen.Dialect().Ignore() +
		" INTO " + shops.Quoted() +
		" (" + shops.Column(colUUID).Quoted() +
		"," + shops.Column(colType).Quoted() +
		"," + shops.Column(colOwnerID).Quoted() +
		"," + shops.Column(colName).Quoted() +
		"," + shops.Column(colWorldID).Quoted() +
		"," + shops.Column(colX).Quoted() +
		"," + shops.Column(colY).Quoted() +
		"," + shops.Column(colZ).Quoted() +
		"," + shops.Column(colHash).Quoted() +
		") VALUES(?,?,?,?,?,?,?,?,?);"

	// сделки
	st.addTrade = "INSERT " + gen.Dialect().Ignore() +
		" INTO " + trades.Quoted() +
		" (" + trades.Column(colTimestamp).Quoted() +
		"," + trades.Column(colPlayerID).Quoted() +
		"," + trades.Column(colShopID).Quoted() +
		"," + trades.Column(colItem1ID).Quoted() +
		"," + trades.Column(colItem1Amount).Quoted() +
		"," + trades.Column(colItem2ID).Quoted() +
		"," + trades.Column(colItem2Amount).Quoted() +
		"," + trades.Column(colResultItemID).Quoted() +
		"," + trades.Column(colResultItemAmount).Quoted() +
		") VALUES(?,?,?,?,?,?,?,?,?);"

	// выборки по комбинированному представлению сделок:
	// считается, что у игроцких магазинов владелец есть всегда,
	// а у административных — никогда
	viewName := gen.QuoteID(view.Name())
	playerID := view.Column(colID, rolePlayer).Quoted()
	shopOwnerID := view.Column(colID, roleShop, roleOwner).Quoted()
	shopUUID := view.Column(colUUID, roleShop).Quoted()
	shopName := view.Column(colName, roleShop).Quoted()

	st.orderSuffix = " ORDER BY " + gen.QuoteID(colTimestamp) + " DESC"
	pageSuffix := st.orderSuffix + " LIMIT ? OFFSET ?;"

	build := func(conditions ...string) tradeQuery {
		all := "SELECT * FROM " + viewName
		if len(conditions) > 0 {
			all += " WHERE " + strings.Join(conditions, " AND ")
		}
		single := "SELECT * FROM " + viewName +
			" WHERE " + strings.Join(append([]string{playerID + "=?"}, conditions...), " AND ")
		return tradeQuery{
			allPlayers:   all + pageSuffix,
			singlePlayer: single + pageSuffix,
		}
	}

	st.trades[queryAllShops] = build()
	st.trades[queryAdminShops] = build(shopOwnerID + " IS NULL")
	st.trades[queryPlayerShops] = build(shopOwnerID + " IS NOT NULL")
	st.trades[queryWithOwner] = build(shopOwnerID + "=?")
	st.trades[queryWithShop] = build(shopUUID + "=?")
	st.trades[queryWithShopByName] = build(shopName + "=?")
	st.trades[queryWithOwnedShop] = build(shopUUID+"=?", shopOwnerID+"=?")
	st.trades[queryWithOwnedShopByName] = build(shopName+"=?", shopOwnerID+"=?")

	return st
}

// toCountSQL превращает шаблон выборки сделок в запрос их числа:
// SELECT * заменяется на SELECT COUNT(*), сортировка и пагинация
// убираются. Текстовое преобразование сохраняет условия WHERE
// единственным источником правды.
func (st *statements) toCountSQL(query string) string {
	count := strings.Replace(query, "SELECT *", "SELECT COUNT(*)", 1)
	count = strings.Replace(count, st.orderSuffix, "", 1)
	count = strings.Replace(count, " LIMIT ? OFFSET ?", "", 1)
	return count
}
