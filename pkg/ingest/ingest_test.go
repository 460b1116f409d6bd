package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ruslano69/tradelog/pkg/deadletter"
	"github.com/ruslano69/tradelog/pkg/ledger"
)

var baseTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func testProfile(t *testing.T, name string) ledger.PlayerProfile {
	t.Helper()
	return ledger.PlayerProfile{
		UUID:      uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)),
		Name:      name,
		FirstSeen: baseTime.Add(-24 * time.Hour),
		LastSeen:  baseTime,
	}
}

func testTrade(t *testing.T) ledger.LoggedTrade {
	t.Helper()
	owner := testProfile(t, "bob")
	stick := ledger.ItemInfo{Type: "minecraft:stick", Amount: 2}
	return ledger.LoggedTrade{
		Timestamp: baseTime,
		Player:    testProfile(t, "alice"),
		Shop: ledger.ShopInfo{
			UUID:   uuid.NewSHA1(uuid.NameSpaceOID, []byte("shop-bob")),
			TypeID: "chestshop",
			Owner:  &owner,
			Name:   "Bob's Emporium",
			World:  ledger.WorldInfo{ServerID: "srv-1", WorldName: "world"},
			X:      10, Y: 64, Z: -3,
		},
		Item1:  ledger.ItemInfo{Type: "minecraft:emerald", Data: []byte(`{"tag":1}`), Amount: 5},
		Item2:  &stick,
		Result: ledger.ItemInfo{Type: "minecraft:diamond_sword", Amount: 1},
	}
}

// TestTradeCodecRoundTrip проверяет кодирование и декодирование сделки
func TestTradeCodecRoundTrip(t *testing.T) {
	trade := testTrade(t)

	payload, err := EncodeTrade(trade)
	if err != nil {
		t.Fatalf("EncodeTrade() error = %v", err)
	}

	decoded, err := DecodeTrade(payload)
	if err != nil {
		t.Fatalf("DecodeTrade() error = %v", err)
	}

	if !decoded.Timestamp.Equal(trade.Timestamp) {
		t.Errorf("timestamp = %v, want %v", decoded.Timestamp, trade.Timestamp)
	}
	if decoded.Player.UUID != trade.Player.UUID || decoded.Player.Name != trade.Player.Name {
		t.Errorf("player = %+v, want %+v", decoded.Player, trade.Player)
	}
	if !decoded.Player.LastSeen.Equal(trade.Player.LastSeen) {
		t.Errorf("player last seen = %v, want %v", decoded.Player.LastSeen, trade.Player.LastSeen)
	}
	if decoded.Shop.UUID != trade.Shop.UUID || decoded.Shop.Name != trade.Shop.Name {
		t.Errorf("shop = %+v, want %+v", decoded.Shop, trade.Shop)
	}
	if decoded.Shop.Owner == nil || decoded.Shop.Owner.UUID != trade.Shop.Owner.UUID {
		t.Errorf("shop owner = %+v, want %+v", decoded.Shop.Owner, trade.Shop.Owner)
	}
	if decoded.Shop.World != trade.Shop.World {
		t.Errorf("world = %+v, want %+v", decoded.Shop.World, trade.Shop.World)
	}
	if !decoded.Item1.Equals(trade.Item1) {
		t.Errorf("item1 = %+v, want %+v", decoded.Item1, trade.Item1)
	}
	if decoded.Item2 == nil || !decoded.Item2.Equals(*trade.Item2) {
		t.Errorf("item2 = %+v, want %+v", decoded.Item2, trade.Item2)
	}
	if !decoded.Result.Equals(trade.Result) {
		t.Errorf("result = %+v, want %+v", decoded.Result, trade.Result)
	}
}

// TestTradeCodecAdminShop проверяет сделку без владельца и без item2
func TestTradeCodecAdminShop(t *testing.T) {
	trade := testTrade(t)
	trade.Shop.Owner = nil
	trade.Item2 = nil

	payload, err := EncodeTrade(trade)
	if err != nil {
		t.Fatalf("EncodeTrade() error = %v", err)
	}
	decoded, err := DecodeTrade(payload)
	if err != nil {
		t.Fatalf("DecodeTrade() error = %v", err)
	}
	if decoded.Shop.Owner != nil {
		t.Errorf("expected nil owner, got %+v", decoded.Shop.Owner)
	}
	if decoded.Item2 != nil {
		t.Errorf("expected nil item2, got %+v", decoded.Item2)
	}
}

// TestDecodeTradeRejectsInvalid проверяет отбраковку неполных сообщений
func TestDecodeTradeRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `trade!`},
		{"empty object", `{}`},
		{"bad player uuid", `{"timestamp":"2026-03-14T12:00:00Z","player":{"uuid":"nope","name":"alice"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeTrade([]byte(tt.payload)); err == nil {
				t.Error("DecodeTrade() expected error, got nil")
			}
		})
	}
}

// errQueueDrained останавливает цикл консьюмера в тестах.
var errQueueDrained = errors.New("queue drained")

// fakeBroker отдаёт заготовленные сообщения и считает подтверждения.
type fakeBroker struct {
	messages [][]byte
	acks     int
	nacks    []bool // значения requeue в порядке вызовов
}

func (b *fakeBroker) Connect(ctx context.Context) error { return nil }
func (b *fakeBroker) Close() error                      { return nil }
func (b *fakeBroker) Ping(ctx context.Context) error    { return nil }
func (b *fakeBroker) BrokerType() string                { return "fake" }

func (b *fakeBroker) Send(ctx context.Context, message []byte) error {
	b.messages = append(b.messages, message)
	return nil
}

func (b *fakeBroker) Receive(ctx context.Context) ([]byte, error) {
	if len(b.messages) == 0 {
		return nil, errQueueDrained
	}
	msg := b.messages[0]
	b.messages = b.messages[1:]
	return msg, nil
}

func (b *fakeBroker) Ack(ctx context.Context) error {
	b.acks++
	return nil
}

func (b *fakeBroker) Nack(ctx context.Context, requeue bool) error {
	b.nacks = append(b.nacks, requeue)
	return nil
}

// fakeRecorder собирает сделки и отдает заготовленные ошибки.
type fakeRecorder struct {
	trades []ledger.LoggedTrade
	errs   []error // по одной на вызов, nil после исчерпания
}

func (r *fakeRecorder) LogTrade(ctx context.Context, trade ledger.LoggedTrade) error {
	var err error
	if len(r.errs) > 0 {
		err = r.errs[0]
		r.errs = r.errs[1:]
	}
	if err == nil {
		r.trades = append(r.trades, trade)
	}
	return err
}

// TestConsumerAcksStoredTrades проверяет happy path консьюмера
func TestConsumerAcksStoredTrades(t *testing.T) {
	trade := testTrade(t)
	payload, err := EncodeTrade(trade)
	if err != nil {
		t.Fatalf("EncodeTrade() error = %v", err)
	}

	broker := &fakeBroker{messages: [][]byte{payload, payload}}
	recorder := &fakeRecorder{}
	consumer := NewConsumer(broker, recorder, nil)

	err = consumer.Run(context.Background())
	if !errors.Is(err, errQueueDrained) {
		t.Fatalf("Run() error = %v, want %v", err, errQueueDrained)
	}

	if len(recorder.trades) != 2 {
		t.Errorf("recorded %d trades, want 2", len(recorder.trades))
	}
	if broker.acks != 2 {
		t.Errorf("acks = %d, want 2", broker.acks)
	}
	if len(broker.nacks) != 0 {
		t.Errorf("nacks = %v, want none", broker.nacks)
	}
}

// TestConsumerDropsMalformed проверяет отбрасывание нечитаемых сообщений
func TestConsumerDropsMalformed(t *testing.T) {
	trade := testTrade(t)
	payload, err := EncodeTrade(trade)
	if err != nil {
		t.Fatalf("EncodeTrade() error = %v", err)
	}

	broker := &fakeBroker{messages: [][]byte{[]byte("garbage"), payload}}
	recorder := &fakeRecorder{}
	consumer := NewConsumer(broker, recorder, nil)

	if err := consumer.Run(context.Background()); !errors.Is(err, errQueueDrained) {
		t.Fatalf("Run() error = %v, want %v", err, errQueueDrained)
	}

	if len(recorder.trades) != 1 {
		t.Errorf("recorded %d trades, want 1", len(recorder.trades))
	}
	if broker.acks != 1 {
		t.Errorf("acks = %d, want 1", broker.acks)
	}
	if len(broker.nacks) != 1 || broker.nacks[0] != false {
		t.Errorf("nacks = %v, want [false]", broker.nacks)
	}
}

// TestConsumerDeadLettersMalformed проверяет сохранение нечитаемых
// сообщений в журнал отвергнутых
func TestConsumerDeadLettersMalformed(t *testing.T) {
	rejects, err := deadletter.Open(deadletter.Config{
		Path: filepath.Join(t.TempDir(), "deadletter.json"),
	})
	if err != nil {
		t.Fatalf("deadletter.Open() error = %v", err)
	}

	broker := &fakeBroker{messages: [][]byte{[]byte("garbage")}}
	consumer := NewConsumer(broker, &fakeRecorder{}, nil).WithDeadLetter(rejects)

	if err := consumer.Run(context.Background()); !errors.Is(err, errQueueDrained) {
		t.Fatalf("Run() error = %v, want %v", err, errQueueDrained)
	}

	entries := rejects.Entries()
	if len(entries) != 1 {
		t.Fatalf("dead letter entries = %d, want 1", len(entries))
	}
	if entries[0].Reason != deadletter.ReasonMalformed {
		t.Errorf("reason = %q, want %q", entries[0].Reason, deadletter.ReasonMalformed)
	}
	if string(entries[0].Payload) != "garbage" {
		t.Errorf("payload = %q, want %q", entries[0].Payload, "garbage")
	}
}

// TestConsumerRequeuesOnStorageFailure проверяет возврат сделки в
// очередь при отказе хранилища
func TestConsumerRequeuesOnStorageFailure(t *testing.T) {
	trade := testTrade(t)
	payload, err := EncodeTrade(trade)
	if err != nil {
		t.Fatalf("EncodeTrade() error = %v", err)
	}

	broker := &fakeBroker{messages: [][]byte{payload}}
	recorder := &fakeRecorder{errs: []error{errors.New("disk full")}}
	consumer := NewConsumer(broker, recorder, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// даём консьюмеру обработать отказ, затем останавливаем
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	if err := consumer.Run(ctx); !errors.Is(err, context.Canceled) && !errors.Is(err, errQueueDrained) {
		t.Fatalf("Run() error = %v", err)
	}

	if len(recorder.trades) != 0 {
		t.Errorf("recorded %d trades, want 0", len(recorder.trades))
	}
	if len(broker.nacks) != 1 || broker.nacks[0] != true {
		t.Errorf("nacks = %v, want [true]", broker.nacks)
	}
}
