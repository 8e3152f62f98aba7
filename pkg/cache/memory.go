package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process StatusCache and Deduper for single-instance runs
// (STORAGE=memory) and tests.
type Memory struct {
	mu     sync.Mutex
	status map[string]entry[Status]
	seen   map[string]time.Time
	now    func() time.Time
}

type entry[T any] struct {
	val T
	exp time.Time
}

func NewMemory() *Memory {
	return &Memory{
		status: make(map[string]entry[Status]),
		seen:   make(map[string]time.Time),
		now:    time.Now,
	}
}

func (m *Memory) SetStatus(_ context.Context, s Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status[s.RefID] = entry[Status]{val: s, exp: m.now().Add(TTLStatus)}
	return nil
}

func (m *Memory) GetStatus(_ context.Context, refID string) (*Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.status[refID]
	if !ok || m.now().After(e.exp) {
		delete(m.status, refID)
		return nil, nil
	}
	s := e.val
	return &s, nil
}

func (m *Memory) DeleteStatus(_ context.Context, refID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.status, refID)
	return nil
}

func (m *Memory) Seen(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if exp, ok := m.seen[key]; ok && now.Before(exp) {
		return true, nil
	}
	m.seen[key] = now.Add(ttl)
	return false, nil
}

func (m *Memory) Forget(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, key)
	return nil
}
