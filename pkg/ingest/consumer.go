// File: pkg/ingest/consumer.go

package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/ruslano69/tradelog/pkg/audit"
	"github.com/ruslano69/tradelog/pkg/brokers"
	"github.com/ruslano69/tradelog/pkg/deadletter"
	"github.com/ruslano69/tradelog/pkg/ledger"
)

// задержка перед повтором после отказа хранилища
const recordRetrySleep = 1 * time.Second

// TradeRecorder — приёмник декодированных сделок. Реализуется
// хранилищем истории.
type TradeRecorder interface {
	LogTrade(ctx context.Context, trade ledger.LoggedTrade) error
}

// Consumer читает сообщения брокера и пишет сделки в хранилище.
//
// Подтверждение доставки ручное: сообщение уходит из очереди только
// после успешной записи. Нечитаемое сообщение отбрасывается без
// возврата в очередь, отказ хранилища возвращает сообщение на повтор.
type Consumer struct {
	broker   brokers.MessageBroker
	recorder TradeRecorder
	log      audit.Logger
	rejects  *deadletter.Queue
}

// NewConsumer создает консьюмера; nil log заменяется на no-op.
func NewConsumer(broker brokers.MessageBroker, recorder TradeRecorder, log audit.Logger) *Consumer {
	if log == nil {
		log = audit.Nop()
	}
	return &Consumer{broker: broker, recorder: recorder, log: log}
}

// WithDeadLetter включает журнал отвергнутых сообщений: нечитаемые
// сделки сохраняются в него перед отбрасыванием.
func (c *Consumer) WithDeadLetter(q *deadletter.Queue) *Consumer {
	c.rejects = q
	return c
}

// Run обрабатывает сообщения до отмены контекста или ошибки брокера.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		payload, err := c.broker.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Log(ctx, audit.NewEntry(audit.OpIngest, audit.StatusFailure).
				WithResource(c.broker.BrokerType()).
				WithError(err))
			return err
		}

		if err := c.process(ctx, payload); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// отказ хранилища: сообщение вернётся, не молотим очередь
			select {
			case <-time.After(recordRetrySleep):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// process обрабатывает одно сообщение. Ошибка означает отказ
// хранилища; ошибки декодирования поглощаются после отбрасывания
// сообщения.
func (c *Consumer) process(ctx context.Context, payload []byte) error {
	trade, err := DecodeTrade(payload)
	if err != nil {
		c.log.Log(ctx, audit.NewEntry(audit.OpIngest, audit.StatusFailure).
			WithResource(c.broker.BrokerType()).
			WithDetail("malformed message dropped").
			WithError(err))
		if c.rejects != nil {
			c.rejects.Add(deadletter.ReasonMalformed, payload, err)
		}
		if nackErr := c.broker.Nack(ctx, false); nackErr != nil {
			return nackErr
		}
		return nil
	}

	if err := c.recorder.LogTrade(ctx, trade); err != nil {
		c.log.Log(ctx, audit.NewEntry(audit.OpIngest, audit.StatusFailure).
			WithResource(c.broker.BrokerType()).
			WithDetail("trade requeued").
			WithError(err))
		if nackErr := c.broker.Nack(ctx, true); nackErr != nil {
			return errors.Join(err, nackErr)
		}
		return err
	}

	if err := c.broker.Ack(ctx); err != nil {
		c.log.Log(ctx, audit.NewEntry(audit.OpIngest, audit.StatusFailure).
			WithResource(c.broker.BrokerType()).
			WithDetail("acknowledge failed").
			WithError(err))
		return err
	}

	c.log.Log(ctx, audit.NewEntry(audit.OpIngest, audit.StatusSuccess).
		WithResource(c.broker.BrokerType()).
		WithRecordsAffected(1))
	return nil
}
