package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"auction-house/internal/config"
	"auction-house/utils"
)

// LogPublisher "delivers" notifications by logging them.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, n Notification) error {
	utils.Info("notification delivered", map[string]any{
		"kind":       n.Kind,
		"auction_id": n.AuctionID,
		"user_id":    n.UserID,
		"amount":     n.Amount,
	})
	return nil
}

// KafkaPublisher writes notifications as JSON to a topic, keyed by auction id.
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaPublisher builds a synchronous writer for cfg.Topic.
func NewKafkaPublisher(cfg config.Kafka) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		Logger:       kafkaLogger{},
		ErrorLogger:  kafkaLogger{err: true},
	}
	return &KafkaPublisher{writer: writer, topic: cfg.Topic}
}

func (k *KafkaPublisher) Publish(ctx context.Context, n Notification) error {
	value, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(n.AuctionID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(n.Kind)},
		},
	}
	return k.writer.WriteMessages(ctx, msg)
}

func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}

// Handler processes a notification consumed from the bus.
type Handler func(context.Context, Notification) error

// KafkaConsumer reads notifications published by KafkaPublisher.
type KafkaConsumer struct {
	reader *kafka.Reader
}

// NewKafkaConsumer joins cfg.ConsumerGroup on cfg.Topic.
func NewKafkaConsumer(cfg config.Kafka) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.ConsumerGroup,
		Topic:          cfg.Topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		Dialer: &kafka.Dialer{
			Timeout:  cfg.ConnectTimeout,
			ClientID: cfg.ClientID,
		},
	})
	return &KafkaConsumer{reader: reader}
}

// Consume blocks until ctx is done, committing each message once handler succeeds.
func (k *KafkaConsumer) Consume(ctx context.Context, handler Handler) error {
	for {
		msg, err := k.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			utils.Error("kafka fetch failed", map[string]any{"error": err.Error()})

			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		var n Notification
		if err := json.Unmarshal(msg.Value, &n); err != nil {
			// poison message, commit and move on
			utils.Error("notification decode failed", map[string]any{"offset": msg.Offset, "error": err.Error()})
		} else if err := handler(ctx, n); err != nil {
			utils.Error("notification handler failed", map[string]any{"offset": msg.Offset, "error": err.Error()})
			continue
		}

		if err := k.reader.CommitMessages(ctx, msg); err != nil {
			utils.Warn("kafka commit failed", map[string]any{"error": err.Error()})
		}
	}
}

func (k *KafkaConsumer) Close() error {
	return k.reader.Close()
}

type kafkaLogger struct {
	err bool
}

func (k kafkaLogger) Printf(msg string, args ...interface{}) {
	if k.err {
		log.Errorf(msg, args...)
		return
	}
	log.Debugf(msg, args...)
}
