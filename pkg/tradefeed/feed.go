// File: pkg/tradefeed/feed.go

// Package tradefeed публикует записанные сделки в Redis: канал pub/sub
// для живых подписчиков (карты, оверлеи, мониторинг) плюс ключ с
// последней сделкой для подписчиков, подключившихся позже.
package tradefeed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ruslano69/tradelog/pkg/ingest"
	"github.com/ruslano69/tradelog/pkg/ledger"
)

const (
	defaultChannel   = "tradelog:trades"
	defaultLatestKey = "tradelog:latest"
	defaultLatestTTL = 24 * time.Hour
)

// Config - конфигурация ленты сделок
type Config struct {
	// Addr - адрес Redis (host:port)
	Addr string `yaml:"addr"`

	// Password - пароль Redis
	Password string `yaml:"password"`

	// DB - номер базы Redis
	DB int `yaml:"db"`

	// Channel - канал pub/sub для публикации сделок
	Channel string `yaml:"channel"`

	// LatestKey - ключ с последней опубликованной сделкой
	LatestKey string `yaml:"latest_key"`

	// LatestTTL - время жизни последней сделки
	LatestTTL time.Duration `yaml:"latest_ttl"`
}

// Feed публикует сделки в Redis и читает их обратно.
type Feed struct {
	rdb *redis.Client
	cfg Config
}

// New создает ленту поверх готового клиента Redis.
func New(rdb *redis.Client, cfg Config) *Feed {
	if cfg.Channel == "" {
		cfg.Channel = defaultChannel
	}
	if cfg.LatestKey == "" {
		cfg.LatestKey = defaultLatestKey
	}
	if cfg.LatestTTL == 0 {
		cfg.LatestTTL = defaultLatestTTL
	}
	return &Feed{rdb: rdb, cfg: cfg}
}

// Open создает ленту с собственным клиентом Redis по конфигурации.
func Open(cfg Config) *Feed {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return New(rdb, cfg)
}

// Publish публикует сделку в канал и обновляет ключ последней сделки.
func (f *Feed) Publish(ctx context.Context, trade ledger.LoggedTrade) error {
	payload, err := ingest.EncodeTrade(trade)
	if err != nil {
		return fmt.Errorf("tradefeed: %w", err)
	}
	if err := f.rdb.Publish(ctx, f.cfg.Channel, payload).Err(); err != nil {
		return fmt.Errorf("tradefeed: publish: %w", err)
	}
	if err := f.rdb.Set(ctx, f.cfg.LatestKey, payload, f.cfg.LatestTTL).Err(); err != nil {
		return fmt.Errorf("tradefeed: set latest: %w", err)
	}
	return nil
}

// Latest возвращает последнюю опубликованную сделку, nil если лента
// пуста или последняя сделка истекла.
func (f *Feed) Latest(ctx context.Context) (*ledger.LoggedTrade, error) {
	payload, err := f.rdb.Get(ctx, f.cfg.LatestKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tradefeed: get latest: %w", err)
	}
	trade, err := ingest.DecodeTrade(payload)
	if err != nil {
		return nil, fmt.Errorf("tradefeed: %w", err)
	}
	return &trade, nil
}

// Subscription - подписка на ленту сделок
type Subscription struct {
	pubsub *redis.PubSub
	trades chan ledger.LoggedTrade
}

// Trades возвращает канал входящих сделок. Канал закрывается при
// закрытии подписки; нечитаемые сообщения пропускаются.
func (s *Subscription) Trades() <-chan ledger.LoggedTrade {
	return s.trades
}

// Close завершает подписку.
func (s *Subscription) Close() error {
	return s.pubsub.Close()
}

// Subscribe открывает подписку на канал сделок.
func (f *Feed) Subscribe(ctx context.Context) (*Subscription, error) {
	pubsub := f.rdb.Subscribe(ctx, f.cfg.Channel)
	// дожидаемся подтверждения подписки, чтобы не терять сообщения
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("tradefeed: subscribe: %w", err)
	}

	sub := &Subscription{pubsub: pubsub, trades: make(chan ledger.LoggedTrade)}
	go func() {
		defer close(sub.trades)
		for msg := range pubsub.Channel() {
			trade, err := ingest.DecodeTrade([]byte(msg.Payload))
			if err != nil {
				continue
			}
			select {
			case sub.trades <- trade:
			case <-ctx.Done():
				return
			}
		}
	}()
	return sub, nil
}

// Ping проверяет доступность Redis.
func (f *Feed) Ping(ctx context.Context) error {
	if err := f.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("tradefeed: ping: %w", err)
	}
	return nil
}

// Close закрывает клиент Redis.
func (f *Feed) Close() error {
	return f.rdb.Close()
}
