package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

// KafkaPublisher writes events to a single topic, keyed by document number so
// that events of one document stay ordered.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	msg, err := Message(ctx, e)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Message encodes e and injects the trace context of ctx into the headers.
func Message(ctx context.Context, e Event) (kafka.Message, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode %s: %w", e.Type, err)
	}
	carrier := headerCarrier{{Key: "event-type", Value: []byte(e.Type)}}
	otel.GetTextMapPropagator().Inject(ctx, &carrier)
	return kafka.Message{
		Key:     []byte(e.Number),
		Value:   body,
		Headers: carrier,
		Time:    e.OccurredAt,
	}, nil
}

// headerCarrier adapts kafka headers to the otel TextMapCarrier interface.
type headerCarrier []kafka.Header

func (c *headerCarrier) Get(key string) string {
	for _, h := range *c {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Set(key, value string) {
	for i, h := range *c {
		if h.Key == key {
			(*c)[i].Value = []byte(value)
			return
		}
	}
	*c = append(*c, kafka.Header{Key: key, Value: []byte(value)})
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(*c))
	for _, h := range *c {
		keys = append(keys, h.Key)
	}
	return keys
}
