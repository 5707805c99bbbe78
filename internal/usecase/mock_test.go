package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"realscan/internal/domain/model"
)

// memCodeStore is a small in-memory CodeStore used by unit tests.
type memCodeStore struct {
	mu      sync.Mutex
	col     model.CodeCollection
	saveErr error // used by tests to simulate save failures
	saves   int
}

func newMemCodeStore() *memCodeStore {
	return &memCodeStore{col: model.EmptyCollection()}
}

func (m *memCodeStore) Load(ctx context.Context) (model.CodeCollection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := model.CodeCollection{Codes: append([]model.CodeRecord{}, m.col.Codes...)}
	return cp, nil
}

func (m *memCodeStore) Save(ctx context.Context, col model.CodeCollection) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.col = model.CodeCollection{Codes: append([]model.CodeRecord{}, col.Codes...)}
	return nil
}

func (m *memCodeStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.col.Codes)
}

// mockClock is a manually advanced clock for deterministic expiry tests.
type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock(now time.Time) *mockClock { return &mockClock{now: now} }

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testLogger() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}
