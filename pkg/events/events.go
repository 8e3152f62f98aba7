// Package events publishes transaction state changes to Kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventTransactionCreated = "TransactionCreated"
	EventTransactionUpdated = "TransactionUpdated"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// TransactionPayload is the snapshot carried by every transaction event.
type TransactionPayload struct {
	TransactionID string    `json:"transaction_id"`
	RefID         string    `json:"ref_id"`
	UserID        string    `json:"user_id"`
	BuyerSkuCode  string    `json:"buyer_sku_code"`
	CustomerNo    string    `json:"customer_no"`
	Status        string    `json:"status"`
	SN            string    `json:"sn,omitempty"`
	Source        string    `json:"source"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Publisher interface {
	Publish(ctx context.Context, eventType string, p TransactionPayload) error
	Close() error
}

// NewEnvelope wraps p; the ref id doubles as correlation id and message key.
func NewEnvelope(producer, eventType string, p TransactionPayload) (Envelope, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: p.RefID,
		Payload:       b,
	}, nil
}

// Kafka publishes through an async writer fed by a bounded inbox. Publish
// never blocks on the broker; when the inbox is full the event is dropped
// and logged.
type Kafka struct {
	w        *kafka.Writer
	producer string
	inbox    chan kafka.Message
	done     chan struct{}
	log      *zap.Logger

	// mu guards closed and the inbox send against Close.
	mu     sync.RWMutex
	closed bool
}

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("events: publisher closed")

func NewKafka(brokers []string, topic, producer string, buf int, log *zap.Logger) *Kafka {
	log = log.With(zap.String("component", "events"), zap.String("topic", topic))
	k := &Kafka{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		},
		producer: producer,
		inbox:    make(chan kafka.Message, buf),
		done:     make(chan struct{}),
		log:      log,
	}
	go k.loop()
	return k
}

func (k *Kafka) loop() {
	defer close(k.done)
	for m := range k.inbox {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := k.w.WriteMessages(ctx, m); err != nil {
			k.log.Error("Failed to write event", zap.String("key", string(m.Key)), zap.Error(err))
		}
		cancel()
	}
}

func (k *Kafka) Publish(_ context.Context, eventType string, p TransactionPayload) error {
	env, err := NewEnvelope(k.producer, eventType, p)
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(p.RefID),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}

	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.closed {
		return ErrClosed
	}

	select {
	case k.inbox <- msg:
	default:
		k.log.Warn("Event inbox full, dropping event",
			zap.String("event_type", eventType),
			zap.String("ref_id", p.RefID))
	}
	return nil
}

// Close flushes queued events and closes the writer. Later calls are no-ops.
func (k *Kafka) Close() error {
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return nil
	}
	k.closed = true
	close(k.inbox)
	k.mu.Unlock()

	<-k.done
	return k.w.Close()
}

// Noop discards events; used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, TransactionPayload) error { return nil }
func (Noop) Close() error                                              { return nil }
