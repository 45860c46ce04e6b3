package events

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewKafkaPublisher(brokers []string, logger *zap.Logger) Publisher {
	logger = logger.With(zap.String("component", "kafka_publisher"))
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		WriteTimeout:           10 * time.Second,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            3,
		AllowAutoTopicCreation: true,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error(fmt.Sprintf(msg, args...))
		}),
	}

	return &kafkaPublisher{
		writer: writer,
		logger: logger,
	}
}

// Publish writes synchronously so the relay only marks delivered messages as sent.
func (p *kafkaPublisher) Publish(ctx context.Context, topic, key string, value []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, p.writer.WriteTimeout)
	defer cancel()

	err := p.writer.WriteMessages(writeCtx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("write kafka message to %s: %w", topic, err)
	}

	p.logger.Debug("message published", zap.String("topic", topic), zap.String("key", key))
	return nil
}

func (p *kafkaPublisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("close kafka writer: %w", err)
	}
	return nil
}

// logPublisher stands in when no brokers are configured.
type logPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) Publisher {
	return &logPublisher{logger: logger.With(zap.String("component", "log_publisher"))}
}

func (p *logPublisher) Publish(_ context.Context, topic, key string, value []byte) error {
	p.logger.Info("event",
		zap.String("topic", topic),
		zap.String("key", key),
		zap.ByteString("payload", value),
	)
	return nil
}

func (p *logPublisher) Close() error { return nil }
