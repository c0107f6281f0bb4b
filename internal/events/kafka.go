package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// batchTimeout caps how long one event waits to fill a batch. The writer
// default is one second.
const batchTimeout = 10 * time.Millisecond

// KafkaPublisher writes events as JSON messages keyed by entity, so one
// entity's journals stay ordered within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           batchTimeout,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) PublishJournalPosted(ctx context.Context, e JournalPosted) error {
	msg, err := encode(e)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func encode(e JournalPosted) (kafka.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(e.EntityID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte("journal_posted")},
		},
	}, nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
