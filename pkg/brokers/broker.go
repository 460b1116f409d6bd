// File: pkg/brokers/broker.go

// Пакет brokers абстрагирует очереди сообщений, по которым внешние
// серверы доставляют записи сделок. Поддерживаются RabbitMQ и
// Apache Kafka.
package brokers

import (
	"context"
	"fmt"
)

// MessageBroker — универсальный интерфейс очереди сообщений с ручным
// подтверждением: полученная запись удаляется из очереди только после
// успешной записи в хранилище.
type MessageBroker interface {
	// Connect устанавливает соединение с брокером.
	Connect(ctx context.Context) error

	// Close закрывает соединение с брокером.
	Close() error

	// Send отправляет сообщение в очередь (тело — JSON записи сделки).
	Send(ctx context.Context, message []byte) error

	// Receive получает одно сообщение. Блокируется до появления
	// сообщения или отмены контекста. Сообщение остаётся в очереди
	// до вызова Ack.
	Receive(ctx context.Context) ([]byte, error)

	// Ack подтверждает последнее полученное сообщение. Вызывается
	// только после успешной обработки.
	Ack(ctx context.Context) error

	// Nack отклоняет последнее полученное сообщение; requeue
	// возвращает его в очередь для повторной доставки.
	Nack(ctx context.Context, requeue bool) error

	// Ping проверяет доступность брокера.
	Ping(ctx context.Context) error

	// BrokerType возвращает тип брокера (rabbitmq, kafka).
	BrokerType() string
}

// Config содержит параметры подключения к брокеру.
type Config struct {
	Type string `yaml:"type"` // rabbitmq, kafka

	// RabbitMQ
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Queue      string `yaml:"queue"`
	VHost      string `yaml:"vhost"`   // по умолчанию "/"
	UseTLS     bool   `yaml:"use_tls"` // amqps://
	Durable    bool   `yaml:"durable"`
	AutoDelete bool   `yaml:"auto_delete"`
	Exclusive  bool   `yaml:"exclusive"`

	// Kafka
	Brokers       []string `yaml:"brokers"`
	Topic         string   `yaml:"topic"`
	ConsumerGroup string   `yaml:"consumer_group"` // по умолчанию "tradelog-ingest"
}

// New создает MessageBroker по конфигурации.
func New(cfg Config) (MessageBroker, error) {
	switch cfg.Type {
	case "rabbitmq":
		return NewRabbitMQ(cfg)
	case "kafka":
		return NewKafka(cfg)
	default:
		return nil, fmt.Errorf("unsupported broker type: %s (supported: rabbitmq, kafka)", cfg.Type)
	}
}
