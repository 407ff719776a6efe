package services

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"fee-portal/logger"
)

// Publisher emits portal events to Kafka. Publishing is best-effort: the
// portal's behavior never depends on an event landing.
type Publisher struct {
	writer *kafka.Writer
	topic  string
	log    *logger.Logger
}

// NewPublisher builds a publisher for the given topic, or nil when no
// brokers are configured (callers treat a nil publisher as disabled).
func NewPublisher(brokers, topic string, log *logger.Logger) *Publisher {
	var validBrokers []string
	for _, b := range strings.Split(brokers, ",") {
		if b := strings.TrimSpace(b); b != "" {
			validBrokers = append(validBrokers, b)
		}
	}
	if len(validBrokers) == 0 {
		log.Info("Event publishing is disabled (no Kafka brokers configured)")
		return nil
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(validBrokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireAll,
	}

	log.Info("Event publisher initialized. Brokers=%v, Topic=%s", validBrokers, topic)
	return &Publisher{writer: writer, topic: topic, log: log}
}

// Publish marshals value to JSON and publishes it under key, retrying
// with exponential backoff.
func (p *Publisher) Publish(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		p.log.Error("Error marshaling event: %v", err)
		return err
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := p.writer.WriteMessages(writeCtx, msg)
		cancel()

		if err == nil {
			return nil
		}
		lastErr = err
		p.log.Warn("Event publish attempt %d failed: %v", attempt+1, err)

		if attempt < 2 {
			backoff := time.Duration(math.Pow(2, float64(attempt))) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
