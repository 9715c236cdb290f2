package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/carrinho/internal/domain"
)

// HeaderEventType заголовок сообщения с типом события, чтобы потребители
// могли фильтровать события без разбора тела.
const HeaderEventType = "event_type"

// Producer публикует события корзины в Kafka. Ключ сообщения равен сессии.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *log.Entry
}

// NewProducer создаёт синхронный producer событий корзины.
//
// События одной сессии должны приходить потребителю в порядке сохранений:
// ключ сессии фиксирует партицию, а идемпотентный producer с одним запросом
// в полёте не переставляет и не дублирует сообщения при повторах брокера.
func NewProducer(brokers []string) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("create cart events producer: %w", err)
	}

	return newProducer(producer), nil
}

func newProducer(p sarama.SyncProducer) *Producer {
	return &Producer{
		producer: p,
		topic:    TopicCartEvents,
		logger:   log.WithField("component", "kafka-producer"),
	}
}

// CartChanged реализует domain.ChangeNotifier.
func (p *Producer) CartChanged(ctx context.Context, change domain.CartChange) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.publish(NewCartEvent(change))
}

func (p *Producer) publish(event *CartEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal cart event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.SessionID),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: event.Timestamp,
		Headers: []sarama.RecordHeader{
			{Key: []byte(HeaderEventType), Value: []byte(event.EventType)},
		},
	}

	entry := p.logger.WithFields(log.Fields{
		"session":    event.SessionID,
		"event_type": event.EventType,
		"event_id":   event.EventID,
	})

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		entry.WithError(err).Error("failed to publish cart event")
		return fmt.Errorf("publish cart event: %w", err)
	}

	entry.WithFields(log.Fields{
		"partition": partition,
		"offset":    offset,
	}).Debug("cart event published")
	return nil
}

// Close закрывает producer
func (p *Producer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("close cart events producer: %w", err)
	}
	return nil
}

var _ domain.ChangeNotifier = (*Producer)(nil)
