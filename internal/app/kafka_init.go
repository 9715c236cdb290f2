package app

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/carrinho/internal/messaging/kafka"
)

// initKafkaProducer создаёт producer событий корзины. Пустой список брокеров
// означает работу без Kafka (nil, nil).
func initKafkaProducer(brokers string, logger *log.Entry) (*kafka.Producer, error) {
	var list []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			list = append(list, b)
		}
	}
	if len(list) == 0 {
		return nil, nil
	}

	producer, err := kafka.NewProducer(list)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, cart events will not be published")
		return nil, err
	}

	logger.WithFields(log.Fields{
		"brokers": list,
		"topic":   kafka.TopicCartEvents,
	}).Info("kafka producer initialized")
	return producer, nil
}

func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}
	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
		return
	}
	logger.Info("kafka producer closed")
}
