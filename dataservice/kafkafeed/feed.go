// Package kafkafeed adapts the hosted backend's row-change topic to the
// portal's change-feed interface. The backend publishes one message per
// write to the students collection; the message body is irrelevant, so
// consumers only re-fetch.
package kafkafeed

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	errs "fee-portal/errors"
	"fee-portal/logger"
)

// Feed consumes a Kafka topic and fans each message out to subscribers.
type Feed struct {
	reader *kafka.Reader
	log    *logger.Logger
	stop   chan struct{}

	mu     sync.Mutex
	subs   map[int]func()
	nextID int
	closed bool
}

// New starts a consumer on the given change topic. Each portal instance
// joins its own consumer group so every instance observes every event.
func New(brokers []string, topic string, log *logger.Logger) *Feed {
	var validBrokers []string
	for _, b := range brokers {
		if b := strings.TrimSpace(b); b != "" {
			validBrokers = append(validBrokers, b)
		}
	}
	if len(validBrokers) == 0 {
		log.Warn("No valid Kafka brokers configured for change feed")
		return nil
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        validBrokers,
		Topic:          topic,
		GroupID:        "fee-portal-feed-" + uuid.NewString(),
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: time.Second,
	})

	f := &Feed{
		reader: reader,
		log:    log,
		stop:   make(chan struct{}),
		subs:   make(map[int]func()),
	}
	go f.consume()
	log.Info("Kafka change feed started. Brokers=%v, Topic=%s", validBrokers, topic)
	return f
}

func (f *Feed) consume() {
	for {
		select {
		case <-f.stop:
			return
		default:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			_, err := f.reader.ReadMessage(ctx)
			cancel()

			if err != nil {
				if err == context.DeadlineExceeded {
					continue
				}
				select {
				case <-f.stop:
					return
				case <-time.After(time.Second):
				}
				continue
			}

			f.broadcast()
		}
	}
}

func (f *Feed) broadcast() {
	f.mu.Lock()
	callbacks := make([]func(), 0, len(f.subs))
	for _, cb := range f.subs {
		callbacks = append(callbacks, cb)
	}
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
}

// Subscribe registers a no-payload callback for any students write and
// returns its release handle.
func (f *Feed) Subscribe(onChange func()) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, errs.E(errs.Service, "change feed is closed")
	}

	id := f.nextID
	f.nextID++
	f.subs[id] = onChange

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}, nil
}

// Close stops the consumer.
func (f *Feed) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.subs = make(map[int]func())
	f.mu.Unlock()

	close(f.stop)
	return f.reader.Close()
}
