// File: pkg/storage/schema.go

package storage

import (
	"context"
	"fmt"

	"github.com/ruslano69/tradelog/pkg/connector"
	"github.com/ruslano69/tradelog/pkg/sqlgen"
)

// ========== Роли и колонки ==========

// Роли таблиц в комбинированных представлениях. Роли образуют
// префиксы колонок: колонка uuid игрока в роли владельца магазина
// видна в представлении сделок как shop_owner_uuid.
const (
	rolePlayer     = "player"
	roleShop       = "shop"
	roleOwner      = "owner"
	roleWorld      = "world"
	roleItem1      = "item1"
	roleItem2      = "item2"
	roleResultItem = "result_item"
)

const (
	colID        = "id"
	colUUID      = "uuid"
	colName      = "name"
	colFirstSeen = "first_seen"
	colLastSeen  = "last_seen"

	colServerID = "server_id"

	colType = "type"
	colData = "data"
	colHash = "hash"

	colOwnerID = "owner_id"
	colWorldID = "world_id"
	colX       = "x"
	colY       = "y"
	colZ       = "z"

	colTimestamp        = "timestamp"
	colPlayerID         = rolePlayer + "_id"
	colShopID           = roleShop + "_id"
	colItem1ID          = roleItem1 + "_id"
	colItem1Amount      = roleItem1 + "_amount"
	colItem2ID          = roleItem2 + "_id"
	colItem2Amount      = roleItem2 + "_amount"
	colResultItemID     = roleResultItem + "_id"
	colResultItemAmount = roleResultItem + "_amount"
)

// ========== Schema ==========

// Schema — полный набор объектов БД журнала торговли: пять таблиц,
// их индексы и два комбинированных представления. Имена таблиц
// получают общий префикс, чтобы несколько развёртываний могли жить
// в одной базе.
type Schema struct {
	gen    *sqlgen.SQL
	prefix string

	Players *sqlgen.Table
	Worlds  *sqlgen.Table
	Items   *sqlgen.Table
	Shops   *sqlgen.Table
	Trades  *sqlgen.Table

	Indexes []*sqlgen.Index

	// ShopsView денормализует магазин вместе с владельцем и миром.
	ShopsView *sqlgen.CombinedView
	// TradesView денормализует сделку вместе с игроком, магазином
	// (включая его владельца и мир) и всеми предметами.
	TradesView *sqlgen.CombinedView
}

// NewSchema строит объекты схемы для диалекта gen. prefix может быть
// пустым.
func NewSchema(gen *sqlgen.SQL, prefix string) (*Schema, error) {
	s := &Schema{gen: gen, prefix: prefix}
	if err := s.build(); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	return s, nil
}

// Prefix возвращает префикс имён таблиц.
func (s *Schema) Prefix() string {
	return s.prefix
}

func (s *Schema) build() error {
	gen := s.gen
	dateTime := gen.Dialect().DateTimeType()
	var err error

	// players
	players := gen.Table(s.prefix + "players")
	players.Column(colID).Type("INTEGER").PrimaryKey().AutoIncrement().NotNull()
	players.Column(colUUID).Type("CHAR(36)").NotNull()
	players.Column(colName).Type("VARCHAR(32)").NotNull()
	players.Column(colFirstSeen).Type(dateTime).NotNull()
	players.Column(colLastSeen).Type(dateTime).NotNull()
	if s.Players, err = players.Build(); err != nil {
		return err
	}

	// worlds: пустое имя мира хранится как пустая строка, уникальность
	// задаётся парой (name, server_id) — в этом порядке индекс работает
	// и как индекс по имени
	worlds := gen.Table(s.prefix + "worlds")
	worlds.Column(colID).Type("INTEGER").PrimaryKey().AutoIncrement().NotNull()
	worlds.Column(colServerID).Type("VARCHAR(36)").NotNull()
	worlds.Column(colName).Type("VARCHAR(128)").NotNull()
	if s.Worlds, err = worlds.Build(); err != nil {
		return err
	}

	// items: hash ускоряет поиск полностью совпадающих строк, индекс по
	// длинной data-колонке не везде поддерживается
	items := gen.Table(s.prefix + "items")
	items.Column(colID).Type("INTEGER").PrimaryKey().AutoIncrement().NotNull()
	items.Column(colType).Type("VARCHAR(128)").NotNull()
	items.Column(colData).Type("VARCHAR(16384)").NotNull()
	items.Column(colHash).Type("INTEGER").NotNull()
	if s.Items, err = items.Build(); err != nil {
		return err
	}

	// shops: owner_id NULL означает административный магазин
	shops := gen.Table(s.prefix + "shops")
	shops.Column(colID).Type("INTEGER").PrimaryKey().AutoIncrement().NotNull()
	shops.Column(colUUID).Type("CHAR(36)").NotNull()
	shops.Column(colType).Type("VARCHAR(128)").NotNull()
	shops.Column(colOwnerID).Type("INTEGER")
	shops.Column(colName).Type("VARCHAR(128)").NotNull()
	shops.Column(colWorldID).Type("INTEGER").NotNull()
	shops.Column(colX).Type("INTEGER").NotNull()
	shops.Column(colY).Type("INTEGER").NotNull()
	shops.Column(colZ).Type("INTEGER").NotNull()
	shops.Column(colHash).Type("INTEGER").NotNull()
	shops.ForeignKey().Column(colOwnerID).References(s.Players.Name(), colID)
	shops.ForeignKey().Column(colWorldID).References(s.Worlds.Name(), colID)
	if s.Shops, err = shops.Build(); err != nil {
		return err
	}

	// trades: item2_id NULL означает одностороннюю сделку
	trades := gen.Table(s.prefix + "trades")
	trades.Column(colID).Type("INTEGER").PrimaryKey().AutoIncrement().NotNull()
	trades.Column(colTimestamp).Type(dateTime).NotNull()
	trades.Column(colPlayerID).Type("INTEGER").NotNull()
	trades.Column(colShopID).Type("INTEGER").NotNull()
	trades.Column(colItem1ID).Type("INTEGER").NotNull()
	trades.Column(colItem1Amount).Type("INTEGER").NotNull()
	trades.Column(colItem2ID).Type("INTEGER")
	trades.Column(colItem2Amount).Type("INTEGER").NotNull()
	trades.Column(colResultItemID).Type("INTEGER").NotNull()
	trades.Column(colResultItemAmount).Type("INTEGER").NotNull()
	trades.ForeignKey().Column(colPlayerID).References(s.Players.Name(), colID)
	trades.ForeignKey().Column(colShopID).References(s.Shops.Name(), colID)
	trades.ForeignKey().Column(colItem1ID).References(s.Items.Name(), colID)
	trades.ForeignKey().Column(colItem2ID).References(s.Items.Name(), colID)
	trades.ForeignKey().Column(colResultItemID).References(s.Items.Name(), colID)
	if s.Trades, err = trades.Build(); err != nil {
		return err
	}

	if err := s.buildIndexes(); err != nil {
		return err
	}
	return s.buildViews()
}

func (s *Schema) buildIndexes() error {
	gen := s.gen
	builders := []*sqlgen.IndexBuilder{
		gen.Index().Table(s.Players).ColumnName(colUUID).Unique(),
		gen.Index().Table(s.Players).ColumnName(colName),

		gen.Index().Table(s.Worlds).ColumnName(colName).ColumnName(colServerID).Unique(),

		gen.Index().Table(s.Items).ColumnName(colType),
		gen.Index().Table(s.Items).ColumnName(colHash),

		gen.Index().Table(s.Shops).ColumnName(colUUID),
		gen.Index().Table(s.Shops).ColumnName(colOwnerID),
		gen.Index().Table(s.Shops).ColumnName(colName),
		gen.Index().Table(s.Shops).ColumnName(colWorldID),
		gen.Index().Table(s.Shops).ColumnName(colHash),

		gen.Index().Table(s.Trades).ColumnName(colTimestamp),
		gen.Index().Table(s.Trades).ColumnName(colPlayerID),
		gen.Index().Table(s.Trades).ColumnName(colShopID),
		gen.Index().Table(s.Trades).ColumnName(colItem1ID),
		gen.Index().Table(s.Trades).ColumnName(colItem2ID),
		gen.Index().Table(s.Trades).ColumnName(colResultItemID),
	}
	s.Indexes = make([]*sqlgen.Index, 0, len(builders))
	for _, b := range builders {
		idx, err := b.Build()
		if err != nil {
			return err
		}
		s.Indexes = append(s.Indexes, idx)
	}
	return nil
}

func (s *Schema) buildViews() error {
	gen := s.gen

	fkOwner := s.Shops.ForeignKey(colOwnerID)
	fkWorld := s.Shops.ForeignKey(colWorldID)

	shopsView, err := gen.CombinedView(s.Shops.Name() + "_combined_view").
		Table(s.Shops).
		Join(sqlgen.ForeignKeyJoin{Table: s.Shops, JoinedTable: s.Players, JoinedRole: roleOwner, ForeignKey: fkOwner}).
		Join(sqlgen.ForeignKeyJoin{Table: s.Shops, JoinedTable: s.Worlds, JoinedRole: roleWorld, ForeignKey: fkWorld}).
		OmitReferencedColumns(false).
		Build()
	if err != nil {
		return err
	}
	s.ShopsView = shopsView

	tradesView, err := gen.CombinedView(s.Trades.Name() + "_combined_view").
		Table(s.Trades).
		Join(sqlgen.ForeignKeyJoin{Table: s.Trades, JoinedTable: s.Players, JoinedRole: rolePlayer, ForeignKey: s.Trades.ForeignKey(colPlayerID)}).
		Join(sqlgen.ForeignKeyJoin{Table: s.Trades, JoinedTable: s.Shops, JoinedRole: roleShop, ForeignKey: s.Trades.ForeignKey(colShopID)}).
		Join(sqlgen.ForeignKeyJoin{Table: s.Shops, Role: roleShop, JoinedTable: s.Players, JoinedRole: roleOwner, ForeignKey: fkOwner}).
		Join(sqlgen.ForeignKeyJoin{Table: s.Shops, Role: roleShop, JoinedTable: s.Worlds, JoinedRole: roleWorld, ForeignKey: fkWorld}).
		Join(sqlgen.ForeignKeyJoin{Table: s.Trades, JoinedTable: s.Items, JoinedRole: roleItem1, ForeignKey: s.Trades.ForeignKey(colItem1ID)}).
		Join(sqlgen.ForeignKeyJoin{Table: s.Trades, JoinedTable: s.Items, JoinedRole: roleItem2, ForeignKey: s.Trades.ForeignKey(colItem2ID)}).
		Join(sqlgen.ForeignKeyJoin{Table: s.Trades, JoinedTable: s.Items, JoinedRole: roleResultItem, ForeignKey: s.Trades.ForeignKey(colResultItemID)}).
		OmitReferencedColumns(false).
		Build()
	if err != nil {
		return err
	}
	s.TradesView = tradesView
	return nil
}

// Setup создаёт таблицы и индексы и пересоздаёт представления.
// Представления всегда сбрасываются и строятся заново: так не нужно
// отслеживать их актуальность между версиями схемы.
func (s *Schema) Setup(ctx context.Context, c *connector.Connector) error {
	for _, table := range []*sqlgen.Table{s.Players, s.Worlds, s.Items, s.Shops, s.Trades} {
		if err := c.CreateObject(ctx, table); err != nil {
			return err
		}
	}
	for _, idx := range s.Indexes {
		if err := c.CreateObject(ctx, idx); err != nil {
			return err
		}
	}
	for _, view := range []*sqlgen.CombinedView{s.ShopsView, s.TradesView} {
		if err := c.DropObject(ctx, view); err != nil {
			return err
		}
		if err := c.CreateObject(ctx, view); err != nil {
			return err
		}
	}
	return nil
}
