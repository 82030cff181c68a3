package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const writeTimeout = 5 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSender publishes messages for one channel to a topic consumed by
// the matching delivery worker.
type KafkaSender struct {
	channel Channel
	writer  messageWriter
	now     func() time.Time
}

func NewKafkaSender(brokers []string, topic string, channel Channel) *KafkaSender {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &KafkaSender{channel: channel, writer: w, now: time.Now}
}

func (s *KafkaSender) Send(ctx context.Context, destination, message string) error {
	if destination == "" {
		return ErrNoDestination
	}

	data, err := json.Marshal(Message{
		Channel:     s.channel,
		Destination: destination,
		Body:        message,
		SentAt:      s.now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := s.writer.WriteMessages(ctx, kafka.Message{Key: []byte(destination), Value: data}); err != nil {
		return fmt.Errorf("kafka: publish to %s failed: %w", s.channel, err)
	}
	return nil
}

func (s *KafkaSender) Close() error {
	return s.writer.Close()
}
