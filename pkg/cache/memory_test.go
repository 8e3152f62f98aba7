package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStatus(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Now()
	m.now = func() time.Time { return now }

	if s, _ := m.GetStatus(ctx, "trx_1"); s != nil {
		t.Fatalf("expected miss, got %+v", s)
	}

	m.SetStatus(ctx, Status{RefID: "trx_1", Status: "SUKSES", SN: "SN1"})
	s, err := m.GetStatus(ctx, "trx_1")
	if err != nil || s == nil || s.Status != "SUKSES" {
		t.Fatalf("GetStatus() = %+v, %v", s, err)
	}

	now = now.Add(TTLStatus + time.Second)
	if s, _ := m.GetStatus(ctx, "trx_1"); s != nil {
		t.Errorf("expired entry returned: %+v", s)
	}
}

func TestMemoryDedup(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if dup, _ := m.Seen(ctx, "k", time.Hour); dup {
		t.Fatal("first Seen() reported duplicate")
	}
	if dup, _ := m.Seen(ctx, "k", time.Hour); !dup {
		t.Fatal("second Seen() did not report duplicate")
	}
	m.Forget(ctx, "k")
	if dup, _ := m.Seen(ctx, "k", time.Hour); dup {
		t.Error("Seen() after Forget() reported duplicate")
	}
}

func TestNoop(t *testing.T) {
	var n Noop
	if dup, _ := n.Seen(context.Background(), "k", time.Hour); dup {
		t.Error("Noop.Seen() reported duplicate")
	}
	if s, _ := n.GetStatus(context.Background(), "x"); s != nil {
		t.Error("Noop.GetStatus() returned a value")
	}
}
