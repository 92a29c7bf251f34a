package output

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/foxseedlab/vox/internal/output"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes translations keyed by session so one session's
// segments stay ordered within a partition.
type KafkaSink struct {
	writer messageWriter
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
	}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Emit(ctx context.Context, out output.Output) error {
	msg, err := messageFor(out)
	if err != nil {
		return err
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

func messageFor(out output.Output) (kafka.Message, error) {
	value, err := json.Marshal(out)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode output: %w", err)
	}
	return kafka.Message{
		Key:   []byte(out.SessionID),
		Value: value,
		Time:  out.EmittedAt,
	}, nil
}
