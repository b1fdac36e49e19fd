package idempotency

import (
	"context"
	"sync"
	"time"
)

// sweepInterval bounds how often Save and Begin scan for expired entries.
const sweepInterval = time.Minute

type memoryEntry struct {
	record    *Record
	expiresAt time.Time
}

// Memory is a process-local Store used when redis is not configured. Replay
// only holds within a single API instance.
type Memory struct {
	mu      sync.Mutex
	now     func() time.Time
	records map[string]memoryEntry
	claims  map[string]time.Time

	nextSweep time.Time
}

func NewMemory() *Memory {
	return &Memory{
		now:     time.Now,
		records: make(map[string]memoryEntry),
		claims:  make(map[string]time.Time),
	}
}

func memoryKey(scope, key string) string {
	return scope + "\x00" + key
}

func (m *Memory) Load(_ context.Context, scope, key string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := memoryKey(scope, key)
	entry, ok := m.records[k]
	if !ok {
		return nil, nil
	}
	if !m.now().Before(entry.expiresAt) {
		delete(m.records, k)
		return nil, nil
	}
	copied := *entry.record
	return &copied, nil
}

func (m *Memory) Begin(_ context.Context, scope, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := memoryKey(scope, key)
	now := m.now()
	m.sweep(now)
	if until, held := m.claims[k]; held && now.Before(until) {
		return false, nil
	}
	m.claims[k] = now.Add(ttl)
	return true, nil
}

func (m *Memory) Save(_ context.Context, scope, key string, record Record, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := memoryKey(scope, key)
	now := m.now()
	m.sweep(now)
	m.records[k] = memoryEntry{record: &record, expiresAt: now.Add(ttl)}
	delete(m.claims, k)
	return nil
}

func (m *Memory) Abandon(_ context.Context, scope, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.claims, memoryKey(scope, key))
	return nil
}

// sweep drops expired records and claims. Callers hold m.mu.
func (m *Memory) sweep(now time.Time) {
	if now.Before(m.nextSweep) {
		return
	}
	m.nextSweep = now.Add(sweepInterval)
	for k, entry := range m.records {
		if !now.Before(entry.expiresAt) {
			delete(m.records, k)
		}
	}
	for k, until := range m.claims {
		if !now.Before(until) {
			delete(m.claims, k)
		}
	}
}

// Len reports how many unexpired records are held.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	now := m.now()
	for _, entry := range m.records {
		if now.Before(entry.expiresAt) {
			n++
		}
	}
	return n
}
