package inbox

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Memory is a process-local Store.
type Memory struct {
	mu     sync.RWMutex
	events []Event
	byID   map[uuid.UUID]int
}

func NewMemory() *Memory {
	return &Memory{byID: make(map[uuid.UUID]int)}
}

func (m *Memory) Save(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[e.ID]; ok {
		return ErrDuplicate
	}
	e.Body = slices.Clone(e.Body)
	m.byID[e.ID] = len(m.events)
	m.events = append(m.events, e)
	return nil
}

func (m *Memory) Get(ctx context.Context, id uuid.UUID) (Event, error) {
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.byID[id]
	if !ok {
		return Event{}, ErrNotFound
	}
	e := m.events[i]
	e.Body = slices.Clone(e.Body)
	return e, nil
}

func (m *Memory) List(ctx context.Context, limit int) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Event, 0, min(limit, len(m.events)))
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		e := m.events[i]
		e.Body = slices.Clone(e.Body)
		out = append(out, e)
	}
	return out, nil
}
