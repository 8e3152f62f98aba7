package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestNewEnvelope(t *testing.T) {
	p := TransactionPayload{RefID: "trx_1", Status: "SUKSES", Source: "webhook"}
	env, err := NewEnvelope("ppob-backend", EventTransactionUpdated, p)
	if err != nil {
		t.Fatalf("NewEnvelope() error = %v", err)
	}
	if env.EventID == "" || env.EventVersion != 1 || env.CorrelationID != "trx_1" {
		t.Errorf("envelope = %+v", env)
	}

	var got TransactionPayload
	if err := json.Unmarshal(env.Payload, &got); err != nil {
		t.Fatalf("payload decode: %v", err)
	}
	if got.Status != "SUKSES" || got.Source != "webhook" {
		t.Errorf("payload = %+v", got)
	}

	other, _ := NewEnvelope("ppob-backend", EventTransactionUpdated, p)
	if other.EventID == env.EventID {
		t.Error("event ids must be unique")
	}
}

func TestKafkaPublishAfterClose(t *testing.T) {
	k := NewKafka([]string{"127.0.0.1:1"}, "ppob.test", "ppob-backend", 4, zap.NewNop())
	if err := k.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	err := k.Publish(context.Background(), EventTransactionUpdated, TransactionPayload{RefID: "trx_late"})
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Publish() after Close = %v, want ErrClosed", err)
	}
	if err := k.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
