package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher публикует события в топик Kafka
type KafkaPublisher struct {
	w *kafka.Writer
}

// NewKafkaPublisher создает синхронного писателя: ошибка публикации видна вызывающему
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// PublishSlotBooked пишет событие с ключом location/slot_id
func (p *KafkaPublisher) PublishSlotBooked(ctx context.Context, event SlotBookedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMarshal, err)
	}

	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   event.PartitionKey(),
		Value: body,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: kafka topic=%s: %w", ErrPublish, p.w.Topic, err)
	}

	return nil
}

// Close сбрасывает буфер и закрывает писателя
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
