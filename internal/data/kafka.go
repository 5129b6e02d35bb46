package data

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// KafkaSender writes events to Kafka topics named after the channel.
type KafkaSender struct {
	writer *kafka.Writer
}

// NewKafkaSender creates a synchronous Kafka writer over brokers.
func NewKafkaSender(brokers []string) *KafkaSender {
	return &KafkaSender{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			BatchTimeout:           10 * time.Millisecond,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

// Send implements event.Sender. The returned id is the message key.
func (k *KafkaSender) Send(ctx context.Context, channel string, payload []byte) (string, error) {
	id := uuid.NewString()
	err := k.writer.WriteMessages(ctx, kafka.Message{
		Topic: channel,
		Key:   []byte(id),
		Value: payload,
		Time:  time.Now(),
	})
	if err != nil {
		return "", fmt.Errorf("kafka: write %s: %w", channel, err)
	}
	return id, nil
}

// Close flushes and closes the writer.
func (k *KafkaSender) Close() error {
	return k.writer.Close()
}
