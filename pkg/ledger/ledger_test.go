// File: pkg/ledger/ledger_test.go

package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

var (
	aliceID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("alice"))
	bobID   = uuid.NewSHA1(uuid.NameSpaceOID, []byte("bob"))
	shopID  = uuid.NewSHA1(uuid.NameSpaceOID, []byte("shop"))
)

// ========== Пагинация ==========

func TestExplicitRange(t *testing.T) {
	r, err := NewExplicitRange(10, 25)
	if err != nil {
		t.Fatalf("NewExplicitRange: %v", err)
	}
	// явный интервал не зависит от total
	for _, total := range []int{0, 10, 1000} {
		start, end := r.Bounds(total)
		if start != 10 || end != 25 {
			t.Errorf("Bounds(%d) = [%d, %d), want [10, 25)", total, start, end)
		}
	}
}

func TestExplicitRangeValidation(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
	}{
		{"negative start", -1, 5},
		{"end equals start", 3, 3},
		{"end before start", 5, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewExplicitRange(tt.start, tt.end); err == nil {
				t.Errorf("NewExplicitRange(%d, %d) succeeded, want error", tt.start, tt.end)
			}
		})
	}
}

func TestPageRangeValidation(t *testing.T) {
	if _, err := NewPageRange(0, 10); err == nil {
		t.Error("NewPageRange(0, 10) succeeded, want error")
	}
	if _, err := NewPageRange(1, 0); err == nil {
		t.Error("NewPageRange(1, 0) succeeded, want error")
	}
}

func TestPageRangeBounds(t *testing.T) {
	tests := []struct {
		name          string
		page, perPage int
		total         int
		wantStart     int
		wantEnd       int
	}{
		{"first page", 1, 10, 35, 0, 10},
		{"middle page", 2, 10, 35, 10, 20},
		{"last partial page", 4, 10, 35, 30, 40},
		// страница за последней прижимается к последней
		{"past the end", 9, 10, 35, 30, 40},
		{"exact multiple", 3, 10, 30, 20, 30},
		{"empty result", 5, 10, 0, 0, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewPageRange(tt.page, tt.perPage)
			if err != nil {
				t.Fatalf("NewPageRange: %v", err)
			}
			start, end := r.Bounds(tt.total)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("Bounds(%d) = [%d, %d), want [%d, %d)",
					tt.total, start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestPageRangeMaxAndActualPage(t *testing.T) {
	r, err := NewPageRange(7, 10)
	if err != nil {
		t.Fatalf("NewPageRange: %v", err)
	}
	tests := []struct {
		total      int
		wantMax    int
		wantActual int
	}{
		{0, 1, 1},
		{1, 1, 1},
		{10, 1, 1},
		{11, 2, 2},
		{70, 7, 7},
		{71, 8, 7},
	}
	for _, tt := range tests {
		if got := r.MaxPage(tt.total); got != tt.wantMax {
			t.Errorf("MaxPage(%d) = %d, want %d", tt.total, got, tt.wantMax)
		}
		if got := r.ActualPage(tt.total); got != tt.wantActual {
			t.Errorf("ActualPage(%d) = %d, want %d", tt.total, got, tt.wantActual)
		}
	}
}

// ========== Предметы ==========

func TestItemInfoValidation(t *testing.T) {
	if _, err := NewItemInfo("", nil, 1); err == nil {
		t.Error("empty type accepted, want error")
	}
	if _, err := NewItemInfo("minecraft:emerald", nil, 0); err == nil {
		t.Error("zero amount accepted, want error")
	}
	if _, err := NewItemInfo("minecraft:emerald", nil, -3); err == nil {
		t.Error("negative amount accepted, want error")
	}
	if _, err := NewItemInfo("minecraft:emerald", nil, 1); err != nil {
		t.Errorf("valid item rejected: %v", err)
	}
}

func TestItemChecksum(t *testing.T) {
	withData := ItemInfo{Type: "minecraft:sword", Data: []byte(`{"ench":1}`), Amount: 1}
	sameContent := ItemInfo{Type: "minecraft:sword", Data: []byte(`{"ench":1}`), Amount: 64}
	noData := ItemInfo{Type: "minecraft:sword", Amount: 1}

	if withData.Checksum() != sameContent.Checksum() {
		t.Error("checksum depends on amount")
	}
	if withData.Checksum() == noData.Checksum() {
		t.Error("checksum ignores data blob")
	}
	// без данных сумма совпадает с суммой одного типа
	typeOnly := ItemInfo{Type: "minecraft:sword"}
	if noData.Checksum() != typeOnly.Checksum() {
		t.Error("checksum of data-less item differs from type-only checksum")
	}
}

func TestItemEquality(t *testing.T) {
	a := ItemInfo{Type: "minecraft:emerald", Data: []byte("x"), Amount: 5}
	b := ItemInfo{Type: "minecraft:emerald", Data: []byte("x"), Amount: 7}
	c := ItemInfo{Type: "minecraft:emerald", Data: []byte("y"), Amount: 5}

	if !a.ContentEquals(b) {
		t.Error("ContentEquals must ignore amount")
	}
	if a.Equals(b) {
		t.Error("Equals must compare amount")
	}
	if a.ContentEquals(c) {
		t.Error("ContentEquals must compare data")
	}
	if !a.Equals(a) {
		t.Error("Equals is not reflexive")
	}
}

// ========== Профили ==========

func TestProfileValidation(t *testing.T) {
	if _, err := NewProfile(uuid.Nil, "alice"); err == nil {
		t.Error("nil uuid accepted, want error")
	}
	if _, err := NewProfile(aliceID, ""); err == nil {
		t.Error("empty name accepted, want error")
	}
	p := PlayerProfile{
		UUID:      aliceID,
		Name:      "alice",
		FirstSeen: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		LastSeen:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := p.Validate(); err == nil {
		t.Error("first seen after last seen accepted, want error")
	}
}

type fakeDirectory map[uuid.UUID]Session

func (d fakeDirectory) Lookup(id uuid.UUID) (Session, bool) {
	s, ok := d[id]
	return s, ok
}

func TestProfileMerge(t *testing.T) {
	firstSeen := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	lastSeen := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	profile := PlayerProfile{UUID: aliceID, Name: "alice", FirstSeen: firstSeen, LastSeen: lastSeen}

	t.Run("nil directory", func(t *testing.T) {
		if got := profile.Merge(nil); got != profile {
			t.Errorf("Merge(nil) = %+v, want unchanged", got)
		}
	})

	t.Run("unknown player", func(t *testing.T) {
		if got := profile.Merge(fakeDirectory{}); got != profile {
			t.Errorf("Merge = %+v, want unchanged", got)
		}
	})

	t.Run("online player", func(t *testing.T) {
		dir := fakeDirectory{aliceID: {Name: "Alice_Renamed", Online: true}}
		before := time.Now()
		got := profile.Merge(dir)
		if got.Name != "Alice_Renamed" {
			t.Errorf("Name = %q, want current session name", got.Name)
		}
		if got.LastSeen.Before(before) {
			t.Errorf("LastSeen = %v, want now", got.LastSeen)
		}
	})

	t.Run("earlier first played wins", func(t *testing.T) {
		earlier := firstSeen.Add(-24 * time.Hour)
		dir := fakeDirectory{aliceID: {FirstPlayed: earlier}}
		if got := profile.Merge(dir); !got.FirstSeen.Equal(earlier) {
			t.Errorf("FirstSeen = %v, want %v", got.FirstSeen, earlier)
		}
	})

	t.Run("offline with newer last played", func(t *testing.T) {
		newer := lastSeen.Add(24 * time.Hour)
		dir := fakeDirectory{aliceID: {Name: "alice2", LastPlayed: newer}}
		got := profile.Merge(dir)
		if !got.LastSeen.Equal(newer) {
			t.Errorf("LastSeen = %v, want %v", got.LastSeen, newer)
		}
		if got.Name != "alice2" {
			t.Errorf("Name = %q, want %q", got.Name, "alice2")
		}
	})

	t.Run("offline with older last played", func(t *testing.T) {
		older := lastSeen.Add(-24 * time.Hour)
		dir := fakeDirectory{aliceID: {Name: "stale", LastPlayed: older}}
		got := profile.Merge(dir)
		if !got.LastSeen.Equal(lastSeen) {
			t.Errorf("LastSeen = %v, want unchanged %v", got.LastSeen, lastSeen)
		}
		if got.Name != "alice" {
			t.Errorf("Name = %q, want unchanged", got.Name)
		}
	})
}

// ========== Магазины и сделки ==========

func TestShopInfoValidation(t *testing.T) {
	world := WorldInfo{ServerID: "survival"}
	owner := &PlayerProfile{UUID: bobID, Name: "bob"}

	if _, err := NewShopInfo(uuid.Nil, "trade", owner, "", world, 0, 0, 0); err == nil {
		t.Error("nil uuid accepted, want error")
	}
	if _, err := NewShopInfo(shopID, "", owner, "", world, 0, 0, 0); err == nil {
		t.Error("empty type id accepted, want error")
	}
	if _, err := NewShopInfo(shopID, "trade", &PlayerProfile{}, "", world, 0, 0, 0); err == nil {
		t.Error("invalid owner accepted, want error")
	}
	if _, err := NewShopInfo(shopID, "trade", owner, "", WorldInfo{}, 0, 0, 0); err == nil {
		t.Error("empty server id accepted, want error")
	}
	shop, err := NewShopInfo(shopID, "trade", nil, "", world, 1, 64, -3)
	if err != nil {
		t.Fatalf("NewShopInfo: %v", err)
	}
	if !shop.IsAdminShop() {
		t.Error("shop without owner is not admin")
	}
}

func TestWorldInfo(t *testing.T) {
	if _, err := NewWorldInfo("", "world"); err == nil {
		t.Error("empty server id accepted, want error")
	}
	virtual, err := NewWorldInfo("survival", "")
	if err != nil {
		t.Fatalf("NewWorldInfo: %v", err)
	}
	if virtual.HasWorld() {
		t.Error("virtual shop world reports HasWorld")
	}
}

func TestLoggedTradeValidation(t *testing.T) {
	player := PlayerProfile{UUID: aliceID, Name: "alice"}
	shop := ShopInfo{UUID: shopID, TypeID: "trade", World: WorldInfo{ServerID: "survival"}}
	item := ItemInfo{Type: "minecraft:emerald", Amount: 3}
	ts := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	if _, err := NewLoggedTrade(time.Time{}, player, shop, item, nil, item); err == nil {
		t.Error("zero timestamp accepted, want error")
	}
	if _, err := NewLoggedTrade(ts, PlayerProfile{}, shop, item, nil, item); err == nil {
		t.Error("invalid player accepted, want error")
	}
	if _, err := NewLoggedTrade(ts, player, shop, ItemInfo{}, nil, item); err == nil {
		t.Error("invalid item1 accepted, want error")
	}
	if _, err := NewLoggedTrade(ts, player, shop, item, &ItemInfo{}, item); err == nil {
		t.Error("invalid item2 accepted, want error")
	}
	if _, err := NewLoggedTrade(ts, player, shop, item, nil, ItemInfo{}); err == nil {
		t.Error("invalid result accepted, want error")
	}
	if _, err := NewLoggedTrade(ts, player, shop, item, nil, item); err != nil {
		t.Errorf("valid trade rejected: %v", err)
	}
}

// ========== Запросы ==========

func TestHistoryRequestValidation(t *testing.T) {
	if _, err := NewHistoryRequest(AllPlayers(), AllShops(), nil); err == nil {
		t.Error("nil range accepted, want error")
	}
	r, err := NewPageRange(1, 20)
	if err != nil {
		t.Fatalf("NewPageRange: %v", err)
	}
	req, err := NewHistoryRequest(PlayerByName("alice"), AdminShops(), r)
	if err != nil {
		t.Fatalf("NewHistoryRequest: %v", err)
	}
	if err := req.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestEmptyHistoryResult(t *testing.T) {
	player := &PlayerProfile{UUID: aliceID, Name: "alice"}
	res := EmptyHistoryResult(player, nil)
	if res.Player != player || res.Owner != nil {
		t.Error("resolved profiles not carried over")
	}
	if res.Trades == nil || len(res.Trades) != 0 {
		t.Errorf("Trades = %v, want empty non-nil slice", res.Trades)
	}
	if res.Total != 0 {
		t.Errorf("Total = %d, want 0", res.Total)
	}
}

// ========== Селекторы ==========

func TestPlayerSelector(t *testing.T) {
	if got := AllPlayers().Kind(); got != PlayerKindAll {
		t.Errorf("Kind = %d, want PlayerKindAll", got)
	}
	byUUID := PlayerByUUID(aliceID)
	if byUUID.Kind() != PlayerKindUUID || byUUID.UUID() != aliceID {
		t.Errorf("PlayerByUUID = %+v", byUUID)
	}
	byName := PlayerByName("alice")
	if byName.Kind() != PlayerKindName || byName.Name() != "alice" {
		t.Errorf("PlayerByName = %+v", byName)
	}
}

func TestPlayerSelectorString(t *testing.T) {
	tests := []struct {
		selector PlayerSelector
		want     string
	}{
		{AllPlayers(), "players:all"},
		{PlayerByUUID(aliceID), "player:" + aliceID.String()},
		{PlayerByName("alice"), "player:alice"},
	}
	for _, tt := range tests {
		if got := tt.selector.String(); got != tt.want {
			t.Errorf("String = %q, want %q", got, tt.want)
		}
	}
}

func TestShopSelectorKinds(t *testing.T) {
	tests := []struct {
		name     string
		selector ShopSelector
		kind     ShopSelectorKind
		hasOwner bool
	}{
		{"all", AllShops(), ShopKindAll, false},
		{"admin", AdminShops(), ShopKindAdmin, false},
		{"player", PlayerShops(), ShopKindPlayer, false},
		{"owned by uuid", ShopsOwnedBy(bobID), ShopKindByOwnerUUID, true},
		{"owned by name", ShopsOwnedByName("bob"), ShopKindByOwnerName, true},
		{"by uuid", ShopByUUID(shopID), ShopKindByUUID, false},
		{"by uuid owned", ShopByUUIDOwnedBy(shopID, bobID), ShopKindByUUID, true},
		{"by name", ShopByName("market"), ShopKindByName, false},
		{"by name owned", ShopByNameOwnedBy("market", bobID), ShopKindByName, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.selector.Kind(); got != tt.kind {
				t.Errorf("Kind = %d, want %d", got, tt.kind)
			}
			if got := tt.selector.HasOwnerFilter(); got != tt.hasOwner {
				t.Errorf("HasOwnerFilter = %v, want %v", got, tt.hasOwner)
			}
		})
	}
}

func TestShopSelectorOwnerUUID(t *testing.T) {
	if _, ok := AllShops().OwnerUUID(); ok {
		t.Error("AllShops carries owner uuid")
	}
	// фильтр по имени владельца не несёт UUID
	if _, ok := ShopsOwnedByName("bob").OwnerUUID(); ok {
		t.Error("ShopsOwnedByName carries owner uuid")
	}
	if id, ok := ShopsOwnedBy(bobID).OwnerUUID(); !ok || id != bobID {
		t.Errorf("OwnerUUID = (%v, %v), want (%v, true)", id, ok, bobID)
	}
	if id, ok := ShopByNameOwnedBy("market", bobID).OwnerUUID(); !ok || id != bobID {
		t.Errorf("OwnerUUID = (%v, %v), want (%v, true)", id, ok, bobID)
	}
}

func TestShopSelectorString(t *testing.T) {
	tests := []struct {
		selector ShopSelector
		want     string
	}{
		{AllShops(), "shops:all"},
		{AdminShops(), "shops:admin"},
		{PlayerShops(), "shops:player"},
		{ShopsOwnedBy(bobID), "shops:owner:" + bobID.String()},
		{ShopsOwnedByName("bob"), "shops:owner:bob"},
		{ShopByUUID(shopID), "shop:" + shopID.String()},
		{ShopByUUIDOwnedBy(shopID, bobID), "shop:" + shopID.String() + ":owner:" + bobID.String()},
		{ShopByName("market"), "shop:market"},
		{ShopByNameOwnedBy("market", bobID), "shop:market:owner:" + bobID.String()},
	}
	for _, tt := range tests {
		if got := tt.selector.String(); got != tt.want {
			t.Errorf("String = %q, want %q", got, tt.want)
		}
	}
}
