package tradefeed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ruslano69/tradelog/pkg/ledger"
)

func newTestFeed(t *testing.T) *Feed {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return New(rdb, Config{})
}

func testTrade(t *testing.T) ledger.LoggedTrade {
	t.Helper()
	return ledger.LoggedTrade{
		Timestamp: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		Player: ledger.PlayerProfile{
			UUID: uuid.NewSHA1(uuid.NameSpaceOID, []byte("alice")),
			Name: "alice",
		},
		Shop: ledger.ShopInfo{
			UUID:   uuid.NewSHA1(uuid.NameSpaceOID, []byte("shop")),
			TypeID: "chestshop",
			World:  ledger.WorldInfo{ServerID: "srv-1", WorldName: "world"},
		},
		Item1:  ledger.ItemInfo{Type: "minecraft:emerald", Amount: 5},
		Result: ledger.ItemInfo{Type: "minecraft:bread", Amount: 16},
	}
}

// TestPublishAndLatest проверяет публикацию и чтение последней сделки
func TestPublishAndLatest(t *testing.T) {
	feed := newTestFeed(t)
	ctx := context.Background()
	trade := testTrade(t)

	if err := feed.Publish(ctx, trade); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	latest, err := feed.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest == nil {
		t.Fatal("Latest() = nil, want trade")
	}
	if !latest.Timestamp.Equal(trade.Timestamp) || latest.Player.UUID != trade.Player.UUID {
		t.Errorf("Latest() = %+v, want %+v", latest, trade)
	}
}

// TestLatestEmpty проверяет пустую ленту
func TestLatestEmpty(t *testing.T) {
	feed := newTestFeed(t)

	latest, err := feed.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest != nil {
		t.Errorf("Latest() = %+v, want nil", latest)
	}
}

// TestSubscribeReceivesPublished проверяет доставку через pub/sub
func TestSubscribeReceivesPublished(t *testing.T) {
	feed := newTestFeed(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub, err := feed.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Close()

	trade := testTrade(t)
	if err := feed.Publish(ctx, trade); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case got := <-sub.Trades():
		if got.Player.UUID != trade.Player.UUID {
			t.Errorf("received player %s, want %s", got.Player.UUID, trade.Player.UUID)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for published trade")
	}
}

// countingRecorder считает записанные сделки.
type countingRecorder struct {
	trades int
	err    error
}

func (r *countingRecorder) LogTrade(ctx context.Context, trade ledger.LoggedTrade) error {
	if r.err != nil {
		return r.err
	}
	r.trades++
	return nil
}

// TestRecorderPublishesAfterStore проверяет порядок запись → публикация
func TestRecorderPublishesAfterStore(t *testing.T) {
	feed := newTestFeed(t)
	ctx := context.Background()
	next := &countingRecorder{}
	recorder := NewRecorder(next, feed, nil)

	if err := recorder.LogTrade(ctx, testTrade(t)); err != nil {
		t.Fatalf("LogTrade() error = %v", err)
	}
	if next.trades != 1 {
		t.Errorf("recorded %d trades, want 1", next.trades)
	}
	latest, err := feed.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest == nil {
		t.Error("Latest() = nil, want published trade")
	}
}

// TestRecorderStoreFailureSkipsPublish проверяет, что отказ записи не
// публикует сделку
func TestRecorderStoreFailureSkipsPublish(t *testing.T) {
	feed := newTestFeed(t)
	ctx := context.Background()
	boom := errors.New("boom")
	recorder := NewRecorder(&countingRecorder{err: boom}, feed, nil)

	if err := recorder.LogTrade(ctx, testTrade(t)); !errors.Is(err, boom) {
		t.Fatalf("LogTrade() error = %v, want %v", err, boom)
	}
	latest, err := feed.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest != nil {
		t.Errorf("Latest() = %+v, want nil", latest)
	}
}
