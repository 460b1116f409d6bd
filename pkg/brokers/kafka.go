// File: pkg/brokers/kafka.go

package brokers

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Kafka реализует MessageBroker для Apache Kafka.
type Kafka struct {
	config      Config
	writer      *kafka.Writer
	reader      *kafka.Reader
	lastMessage *kafka.Message // последнее полученное сообщение, ждёт Ack
}

var _ MessageBroker = (*Kafka)(nil)

// NewKafka создает Kafka-брокер.
func NewKafka(cfg Config) (*Kafka, error) {
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic name is required for Kafka")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker address is required for Kafka")
	}
	if cfg.ConsumerGroup == "" {
		cfg.ConsumerGroup = "tradelog-ingest"
	}
	return &Kafka{config: cfg}, nil
}

// Connect устанавливает соединение с Kafka.
func (k *Kafka) Connect(ctx context.Context) error {
	k.writer = &kafka.Writer{
		Addr:         kafka.TCP(k.config.Brokers...),
		Topic:        k.config.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll, // ждём подтверждения от всех реплик
		Async:        false,
		Compression:  kafka.Snappy,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
	}

	k.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:        k.config.Brokers,
		GroupID:        k.config.ConsumerGroup,
		Topic:          k.config.Topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
		StartOffset:    kafka.LastOffset,
		MaxWait:        1 * time.Second,
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: 1 * time.Second,
	})

	return k.Ping(ctx)
}

// Close закрывает writer и reader.
func (k *Kafka) Close() error {
	var errs []error
	if k.writer != nil {
		if err := k.writer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close writer: %w", err))
		}
	}
	if k.reader != nil {
		if err := k.reader.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close reader: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}
	return nil
}

// Send отправляет сообщение в topic.
func (k *Kafka) Send(ctx context.Context, message []byte) error {
	if k.writer == nil {
		return fmt.Errorf("not connected to Kafka")
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("trade-%d", time.Now().UnixNano())),
		Value: message,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	return nil
}

// Receive получает сообщение из topic. Offset не коммитится до Ack.
func (k *Kafka) Receive(ctx context.Context) ([]byte, error) {
	if k.reader == nil {
		return nil, fmt.Errorf("not connected to Kafka")
	}
	msg, err := k.reader.FetchMessage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch message: %w", err)
	}
	k.lastMessage = &msg
	return msg.Value, nil
}

// Ack коммитит offset последнего полученного сообщения.
func (k *Kafka) Ack(ctx context.Context) error {
	if k.lastMessage == nil {
		return fmt.Errorf("no message to commit")
	}
	if err := k.reader.CommitMessages(ctx, *k.lastMessage); err != nil {
		return fmt.Errorf("failed to commit message: %w", err)
	}
	k.lastMessage = nil
	return nil
}

// Nack отбрасывает сообщение без коммита offset: при requeue группа
// перечитает его после перезапуска или ребаланса. Kafka не имеет
// явного reject, поэтому достаточно не коммитить.
func (k *Kafka) Nack(ctx context.Context, requeue bool) error {
	if k.lastMessage == nil {
		return fmt.Errorf("no message to reject")
	}
	if !requeue {
		// сообщение пропускается: коммитим offset как обработанный
		return k.Ack(ctx)
	}
	k.lastMessage = nil
	return nil
}

// Ping проверяет доступность брокера и наличие topic.
func (k *Kafka) Ping(ctx context.Context) error {
	conn, err := kafka.DialContext(ctx, "tcp", k.config.Brokers[0])
	if err != nil {
		return fmt.Errorf("failed to dial Kafka broker: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ReadPartitions(k.config.Topic); err != nil {
		return fmt.Errorf("failed to read topic partitions: %w", err)
	}
	return nil
}

// BrokerType возвращает тип брокера.
func (k *Kafka) BrokerType() string {
	return "kafka"
}

// Stats возвращает статистику reader/writer.
func (k *Kafka) Stats() (readerStats kafka.ReaderStats, writerStats kafka.WriterStats) {
	if k.reader != nil {
		readerStats = k.reader.Stats()
	}
	if k.writer != nil {
		writerStats = k.writer.Stats()
	}
	return
}
