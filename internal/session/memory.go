package session

import (
	"context"
	"encoding/json"
	"sync"

	"expertise-backend/internal/photos"

	"github.com/google/uuid"
)

// Memory is an in-process store used in tests and when Redis is unavailable.
// States are kept JSON-encoded so the memory and Redis stores share the same
// serialization behavior.
type Memory struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string][]byte)}
}

func (m *Memory) Create(_ context.Context, limits photos.Limits) (*State, error) {
	state := NewState(uuid.New().String(), limits)
	data, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.items[state.ID] = data
	m.mu.Unlock()
	return state, nil
}

func (m *Memory) Get(_ context.Context, id string) (*State, error) {
	m.mu.RLock()
	data, ok := m.items[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (m *Memory) Save(_ context.Context, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.items[state.ID] = data
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.items, id)
	m.mu.Unlock()
	return nil
}
