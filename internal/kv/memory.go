package kv

import (
	"context"
	"sync"
)

// Memory хранит значения в памяти процесса. Используется в тестах и как
// запасной вариант, когда внешнее хранилище не сконфигурировано.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory создаёт пустое хранилище в памяти.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get возвращает значение по ключу.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	return v, ok, nil
}

// Set записывает значение по ключу.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

// Delete удаляет значение по ключу.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

// Close для хранилища в памяти ничего не делает.
func (m *Memory) Close() error { return nil }
